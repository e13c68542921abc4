package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/veriguard/veriguard/internal/differ"
)

// diffCmd represents the diff command
var diffCmd = &cobra.Command{
	Use:   "diff --baseline <old.json> --current <new.json>",
	Short: "Compare two saved check results for verdict drift",
	Long: `Diff compares a baseline check result (from 'veriguard check --output')
against a newer one and reports what changed, per check.

This is the semantic translator: it tells you exactly what changed
in human-readable terms, not just raw JSON patches.

Example:
  veriguard check --report old.json --output baseline.json
  veriguard check --report new.json --output current.json
  veriguard diff --baseline baseline.json --current current.json`,
	SilenceUsage: true,
	RunE:         runDiff,
}

var (
	diffBaselineFlag string
	diffCurrentFlag  string
	diffFailOnFlag   string
)

func init() {
	diffCmd.Flags().StringVar(&diffBaselineFlag, "baseline", "", "Path to the baseline result JSON")
	diffCmd.Flags().StringVar(&diffCurrentFlag, "current", "", "Path to the current result JSON")
	diffCmd.Flags().StringVar(&diffFailOnFlag, "fail-on", "critical", "Severity threshold for failure: critical, moderate, or info")
	_ = diffCmd.MarkFlagRequired("baseline")
	_ = diffCmd.MarkFlagRequired("current")
}

// GetDiffCmd returns the diff command
func GetDiffCmd() *cobra.Command {
	return diffCmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	failOn, err := ParseFailOnLevel(diffFailOnFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2) // Exit 2 = usage error
		return nil
	}

	baseline, err := loadSavedResult(diffBaselineFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1) // Exit 1 = runtime error
		return nil
	}
	current, err := loadSavedResult(diffCurrentFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
		return nil
	}

	checkDiffs, err := compareResults(baseline, current)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: diff failed: %v\n", err)
		os.Exit(1)
		return nil
	}

	hasDrift := false
	var worst differ.SeverityLevel
	for _, cd := range checkDiffs {
		if len(cd.Drifts) == 0 {
			continue
		}
		hasDrift = true
		for _, d := range cd.Drifts {
			if d.Severity > worst {
				worst = d.Severity
			}
		}
	}

	// Exit 0 = no drift (current matches baseline)
	if !hasDrift {
		fmt.Printf("%s✓ No drift detected - verdicts match baseline%s\n", colorGreen, colorReset)
		return nil
	}

	// Print header for changes
	fmt.Printf("\n%s╔══════════════════════════════════════╗%s\n", colorYellow, colorReset)
	fmt.Printf("%s║          DRIFT DETECTED              ║%s\n", colorYellow, colorReset)
	fmt.Printf("%s╚══════════════════════════════════════╝%s\n\n", colorYellow, colorReset)

	for _, cd := range checkDiffs {
		printCheckDiff(cd)
	}

	// Exit 1 = drift at or above the threshold
	if failOn.ShouldFail(worst) {
		os.Exit(1)
	}
	return nil
}

// checkDiff holds the drift items for one check name.
type checkDiff struct {
	Name    string
	Status  string // "added", "removed", or "changed"
	Drifts  []differ.DriftItem
	Summary []string
}

// compareResults pairs checks by name and diffs each pair. Checks present
// on only one side are reported as added or removed.
func compareResults(baseline, current *CheckResult) ([]checkDiff, error) {
	baseChecks := make(map[string]CheckVerdict, len(baseline.Checks))
	for _, cv := range baseline.Checks {
		baseChecks[cv.Name] = cv
	}
	curChecks := make(map[string]CheckVerdict, len(current.Checks))
	for _, cv := range current.Checks {
		curChecks[cv.Name] = cv
	}

	names := make([]string, 0, len(baseChecks)+len(curChecks))
	for name := range baseChecks {
		names = append(names, name)
	}
	for name := range curChecks {
		if _, ok := baseChecks[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var diffs []checkDiff
	for _, name := range names {
		base, inBase := baseChecks[name]
		cur, inCur := curChecks[name]

		switch {
		case !inBase:
			diffs = append(diffs, checkDiff{
				Name:   name,
				Status: "added",
				Drifts: []differ.DriftItem{{
					Type:       differ.DriftGroupAdded,
					Severity:   differ.SeverityModerate,
					Identifier: name,
					Message:    "check not present in baseline",
				}},
			})
		case !inCur:
			diffs = append(diffs, checkDiff{
				Name:   name,
				Status: "removed",
				Drifts: []differ.DriftItem{{
					Type:       differ.DriftGroupRemoved,
					Severity:   differ.SeverityCritical,
					Identifier: name,
					Message:    "check removed since baseline",
				}},
			})
		default:
			result, err := differ.Compare(base.Verdict, cur.Verdict)
			if err != nil {
				return nil, fmt.Errorf("comparing %s: %w", name, err)
			}
			diffs = append(diffs, checkDiff{
				Name:    name,
				Status:  "changed",
				Drifts:  result.Drifts,
				Summary: differ.Translate(result.Patches),
			})
		}
	}
	return diffs, nil
}

func printCheckDiff(cd checkDiff) {
	if len(cd.Drifts) == 0 {
		return
	}

	var icon string
	var headerColor string
	switch cd.Status {
	case "added":
		headerColor = colorYellow
		icon = "+"
	case "removed":
		headerColor = colorRed
		icon = "-"
	default:
		headerColor = colorYellow
		icon = "~"
	}

	fmt.Printf("%s[%s] %s%s\n", headerColor, icon, cd.Name, colorReset)

	for _, d := range cd.Drifts {
		color := getColorForSeverity(d.Severity)
		fmt.Printf("  %s• %s%s\n", color, d.Message, colorReset)
	}
	for _, line := range cd.Summary {
		fmt.Printf("    %s\n", line)
	}

	fmt.Println()
}

func getColorForSeverity(severity differ.SeverityLevel) string {
	switch severity {
	case differ.SeverityCritical:
		return colorRed
	case differ.SeverityModerate:
		return colorYellow
	case differ.SeveritySafe:
		return colorGreen
	default:
		return colorReset
	}
}

// FailOnLevel is the drift severity threshold for a failing exit.
type FailOnLevel string

const (
	FailOnCritical FailOnLevel = "critical"
	FailOnModerate FailOnLevel = "moderate"
	FailOnInfo     FailOnLevel = "info"
)

// ParseFailOnLevel from flag value
func ParseFailOnLevel(s string) (FailOnLevel, error) {
	switch strings.ToLower(s) {
	case "critical":
		return FailOnCritical, nil
	case "moderate":
		return FailOnModerate, nil
	case "info":
		return FailOnInfo, nil
	default:
		return "", fmt.Errorf("invalid fail-on level: %s (use critical, moderate, or info)", s)
	}
}

// ShouldFail reports whether the worst observed severity reaches the
// threshold.
func (l FailOnLevel) ShouldFail(worst differ.SeverityLevel) bool {
	switch l {
	case FailOnCritical:
		return worst >= differ.SeverityCritical
	case FailOnModerate:
		return worst >= differ.SeverityModerate
	case FailOnInfo:
		return true
	default:
		return worst >= differ.SeverityCritical
	}
}
