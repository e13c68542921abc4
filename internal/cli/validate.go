package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/veriguard/veriguard/internal/config"
	"github.com/veriguard/veriguard/internal/engine"
	"github.com/veriguard/veriguard/internal/observability/logging"
	"github.com/veriguard/veriguard/internal/observability/receipt"
)

// validateCmd checks the configuration without touching a report
var validateCmd = &cobra.Command{
	Use:   "validate --config <config>",
	Short: "Validate the check configuration",
	Long: `Parses the check configuration, reports the evaluation mode each check
will run in, and surfaces configuration diagnostics without evaluating
any report.

Example:
  veriguard validate --config veriguard.yaml`,
	SilenceUsage: true,
	RunE:         runValidate,
}

var validateConfigFlag string

func init() {
	validateCmd.Flags().StringVarP(&validateConfigFlag, "config", "c", defaultConfigPath, "Path to check configuration")
}

// GetValidateCmd export
func GetValidateCmd() *cobra.Command {
	return validateCmd
}

func runValidate(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	sess := receipt.Start(ctx, "veriguard validate", os.Args[1:])
	defer func() {
		_ = sess.Finish(err, receipt.WithConfig(validateConfigFlag))
	}()

	log := logging.From(ctx)
	start := time.Now()

	log.Event(ctx, "validate.start", nil)
	defer func() {
		log.Event(ctx, "validate.complete", map[string]any{
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}()

	checks, loadErr := config.Load(validateConfigFlag)
	if loadErr != nil {
		if ce, ok := config.AsConfigError(loadErr); ok {
			fmt.Printf("%s✗ %s%s\n", colorRed, validateConfigFlag, colorReset)
			fmt.Printf("  %s%s%s\n", colorRed, ce.Reason, colorReset)
			return fmt.Errorf("configuration invalid")
		}
		return loadErr
	}

	diagCount := 0
	for i := range checks {
		cfg := &checks[i]
		mode := engine.DetectMode(cfg.Requirements, cfg.Waivers)
		fmt.Printf("%s✓ %s%s (mode=%s)\n", colorGreen, cfg.Name, colorReset, mode)

		for _, diag := range engine.ConfigDiagnostics(cfg) {
			diagCount++
			fmt.Printf("  %s⚠ %s%s\n", colorYellow, diag, colorReset)
		}
	}

	if diagCount > 0 {
		fmt.Printf("\n%s%d check(s) valid, %d diagnostic(s)%s\n", colorYellow, len(checks), diagCount, colorReset)
	} else {
		fmt.Printf("\n%s%d check(s) valid%s\n", colorGreen, len(checks), colorReset)
	}
	return nil
}
