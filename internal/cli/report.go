package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/veriguard/veriguard/internal/artifact"
)

// reportCmd group
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Work with reports published as OCI artifacts",
	Long:  `Resolve and verify report artifacts stored in OCI registries.`,
}

// reportResolveCmd
var reportResolveCmd = &cobra.Command{
	Use:   "resolve <oci-reference>",
	Short: "Resolve a report reference to a pinned digest",
	Long: `Resolves an oci:// report reference against the registry and prints
the digest-pinned canonical form. Pin the canonical form in CI so later
runs evaluate exactly the report that was reviewed.

Example:
  veriguard report resolve oci://registry.example.com/reports/build:v1`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runReportResolve,
}

// reportVerifyCmd
var reportVerifyCmd = &cobra.Command{
	Use:   "verify <oci-reference@digest>",
	Short: "Verify that a pinned report digest still resolves",
	Long: `Fetches the manifest for a digest-pinned report reference and fails
if the registry no longer serves it.

Example:
  veriguard report verify oci://registry.example.com/reports/build@sha256:abc...`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runReportVerify,
}

func init() {
	reportCmd.AddCommand(reportResolveCmd)
	reportCmd.AddCommand(reportVerifyCmd)
}

// GetReportCmd export
func GetReportCmd() *cobra.Command {
	return reportCmd
}

func runReportResolve(cmd *cobra.Command, args []string) error {
	ref := args[0]
	if !artifact.IsOCIReference(ref) {
		return fmt.Errorf("not an OCI reference: %s (expected oci://...)", ref)
	}

	pin, err := artifact.NewPin(cmd.Context(), ref)
	if err != nil {
		return fmt.Errorf("failed to resolve reference: %w", err)
	}

	fmt.Printf("%s✓ resolved%s %s\n", colorGreen, colorReset, ref)
	fmt.Printf("  digest:    %s\n", pin.Digest)
	fmt.Printf("  canonical: %s\n", artifact.Canonical(pin))
	return nil
}

func runReportVerify(cmd *cobra.Command, args []string) error {
	ref := args[0]
	if !artifact.IsOCIReference(ref) {
		return fmt.Errorf("not an OCI reference: %s (expected oci://...)", ref)
	}

	pin, err := artifact.NewPin(cmd.Context(), ref)
	if err != nil {
		return fmt.Errorf("failed to parse reference: %w", err)
	}
	if pin.Digest == "" {
		return fmt.Errorf("reference is not digest-pinned: %s", ref)
	}

	if err := artifact.VerifyPin(cmd.Context(), pin); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	fmt.Printf("%s✓ verified%s %s\n", colorGreen, colorReset, artifact.Canonical(pin))
	return nil
}
