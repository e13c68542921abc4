package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/veriguard/veriguard/internal/artifact"
	"github.com/veriguard/veriguard/internal/cache"
	"github.com/veriguard/veriguard/internal/config"
	"github.com/veriguard/veriguard/internal/differ"
	"github.com/veriguard/veriguard/internal/engine"
	"github.com/veriguard/veriguard/internal/extract"
	"github.com/veriguard/veriguard/internal/models"
	"github.com/veriguard/veriguard/internal/observability"
	"github.com/veriguard/veriguard/internal/observability/logging"
	otelobs "github.com/veriguard/veriguard/internal/observability/otel"
	"github.com/veriguard/veriguard/internal/observability/receipt"
	"github.com/veriguard/veriguard/internal/policy"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// checkCmd classifies a report against the check configuration
var checkCmd = &cobra.Command{
	Use:   "check --config <config> --report <report>",
	Short: "Classify report findings against requirements and waivers",
	Long: `Extracts findings from a tool report, classifies them against each
configured check, and prints a pass/fail verdict per check.

The report may be a local file or an OCI artifact reference (oci://...).
Policy evaluation is optional and can be enabled with --policy.

Examples:
  # Check a local JSON report
  veriguard check --config veriguard.yaml --report lint-report.json

  # Check a line-oriented log with a regex extractor
  veriguard check --report build.log --extract regex --pattern '(?P<name>ERR-\d+)'

  # Check a report published as an OCI artifact
  veriguard check --report oci://registry.example.com/reports/build:v1

  # Apply the strict policy preset and emit JSON for CI
  veriguard check --report lint-report.json --policy=strict --format=json`,
	RunE:         runCheck,
	SilenceUsage: true,
}

var (
	checkConfigFlag       string
	checkReportFlag       string
	checkExtractFlag      string
	checkPatternFlag      string
	checkFormatFlag       string
	checkPolicyFlag       string
	checkOutputFlag       string
	checkCacheDirFlag     string
	checkArtifactFileFlag string
	checkBaselineFlag     string
)

func init() {
	checkCmd.Flags().StringVarP(&checkConfigFlag, "config", "c", defaultConfigPath, "Path to check configuration")
	checkCmd.Flags().StringVarP(&checkReportFlag, "report", "r", "", "Report file path or oci:// reference")
	checkCmd.Flags().StringVar(&checkExtractFlag, "extract", "json", "Report extractor: json or regex")
	checkCmd.Flags().StringVar(&checkPatternFlag, "pattern", "", "Regex with a (?P<name>...) group, required for --extract=regex")
	checkCmd.Flags().StringVar(&checkFormatFlag, "format", "text", "Output format: text or json")
	checkCmd.Flags().StringVar(&checkPolicyFlag, "policy", "", "Policy to apply: baseline, strict, or path to YAML file")
	checkCmd.Flags().StringVarP(&checkOutputFlag, "output", "o", "", "Write the full result JSON to this path")
	checkCmd.Flags().StringVar(&checkCacheDirFlag, "cache-dir", "", "Cache verdicts in this directory across runs")
	checkCmd.Flags().StringVar(&checkArtifactFileFlag, "artifact-file", "", "File to read inside an OCI report artifact")
	checkCmd.Flags().StringVar(&checkBaselineFlag, "baseline", "", "Saved result JSON to report drift against")
	_ = checkCmd.MarkFlagRequired("report")
}

// GetCheckCmd export
func GetCheckCmd() *cobra.Command {
	return checkCmd
}

func runCheck(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	sess := receipt.Start(ctx, "veriguard check", os.Args[1:])
	var receiptOpts []receipt.Option

	defer func() {
		receiptOpts = append(receiptOpts, receipt.WithConfig(checkConfigFlag))
		_ = sess.Finish(err, receiptOpts...)
	}()

	log := logging.From(ctx)
	start := time.Now()

	// Start OTel span if enabled
	if h := otelobs.From(ctx); h != nil {
		var span trace.Span
		ctx, span = h.Tracer.Start(ctx, "veriguard.check",
			trace.WithAttributes(
				attribute.String("veriguard.op_id", observability.OpID(ctx)),
				attribute.String("veriguard.command", "check"),
				attribute.String("veriguard.config", checkConfigFlag),
				attribute.String("veriguard.report", checkReportFlag),
			))
		defer func() {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed")
			} else {
				span.SetStatus(codes.Ok, "success")
			}
			span.End()
		}()
	}

	log.Event(ctx, "check.start", nil)

	var resultStatus string
	defer func() {
		log.Event(ctx, "check.complete", map[string]any{
			"duration_ms": time.Since(start).Milliseconds(),
			"result":      resultStatus,
		})
	}()

	// Validate format
	if checkFormatFlag != "text" && checkFormatFlag != "json" {
		resultStatus = "fail"
		return fmt.Errorf("invalid format: %s (use text or json)", checkFormatFlag)
	}

	extractor, exErr := buildExtractor(checkExtractFlag, checkPatternFlag)
	if exErr != nil {
		resultStatus = "fail"
		return exErr
	}

	// Load check configuration. A broken config produces the sentinel
	// verdict rather than a bare CLI error, so CI sees a stable shape.
	checks, cfgErr := config.Load(checkConfigFlag)
	if cfgErr != nil {
		if ce, ok := config.AsConfigError(cfgErr); ok {
			resultStatus = "fail"
			return emitConfigError(ce)
		}
		resultStatus = "fail"
		return cfgErr
	}

	// Fetch the report and extract findings
	var ociDigest string
	var findings []models.Finding

	if artifact.IsOCIReference(checkReportFlag) {
		pin, pinErr := artifact.NewPin(ctx, checkReportFlag)
		if pinErr != nil {
			resultStatus = "fail"
			return fmt.Errorf("failed to resolve report artifact: %w", pinErr)
		}
		ociDigest = pin.Digest

		data, fetchErr := artifact.FetchReport(ctx, checkReportFlag, checkArtifactFileFlag)
		if fetchErr != nil {
			resultStatus = "fail"
			return fmt.Errorf("failed to fetch report artifact: %w", fetchErr)
		}
		findings, err = extractor.Extract(ctx, bytes.NewReader(data))
		if err != nil {
			resultStatus = "fail"
			return fmt.Errorf("failed to extract findings from %s: %w", checkReportFlag, err)
		}
	} else {
		findings, err = extract.FromFile(ctx, checkReportFlag, extractor)
		if err != nil {
			if ce, ok := config.AsConfigError(err); ok {
				resultStatus = "fail"
				return emitConfigError(ce)
			}
			resultStatus = "fail"
			return err
		}
	}
	receiptOpts = append(receiptOpts, receipt.WithReport(checkReportFlag, ociDigest))

	log.Event(ctx, "check.extracted", map[string]any{
		"findings": len(findings),
		"checks":   len(checks),
	})

	// Verdict cache: in-memory per run, or a directory across runs
	var store cache.Cache = cache.NewMemory()
	if checkCacheDirFlag != "" {
		store = cache.NewDir(checkCacheDirFlag)
	}

	var verdicts []CheckVerdict
	var summaries []receipt.CheckSummary
	for i := range checks {
		cfg := &checks[i]

		key := cache.Key(cfg, findings)
		v, hit := store.Get(key)
		if !hit {
			v = engine.Evaluate(cfg, findings)
			_ = store.Set(key, v)
		}

		mode := engine.DetectMode(cfg.Requirements, cfg.Waivers)
		diags := engine.ConfigDiagnostics(cfg)

		verdicts = append(verdicts, CheckVerdict{
			Name:        cfg.Name,
			Mode:        mode.String(),
			Diagnostics: diags,
			Verdict:     v,
		})
		summaries = append(summaries, checkSummary(cfg.Name, mode.String(), v))
	}
	receiptOpts = append(receiptOpts, receipt.WithChecks(summaries))

	// Load and evaluate policy if specified
	var policyResults []models.PolicyResult
	var policyPreset string
	if checkPolicyFlag != "" {
		policyConfig, loadPolicyErr := loadPolicyWithPreset(checkPolicyFlag)
		if loadPolicyErr != nil {
			resultStatus = "fail"
			return fmt.Errorf("failed to load policy: %w", loadPolicyErr)
		}
		policyPreset = checkPolicyFlag

		policyEngine, engErr := policy.NewEngine()
		if engErr != nil {
			resultStatus = "fail"
			return fmt.Errorf("failed to create policy engine: %w", engErr)
		}

		for _, cv := range verdicts {
			input := policy.BuildVerdictInput(cv.Name, cv.Mode, cv.Verdict, cv.Diagnostics)
			results, evalErr := policyEngine.Evaluate(policyConfig, input.ToMap())
			if evalErr != nil {
				resultStatus = "fail"
				return fmt.Errorf("policy evaluation failed: %w", evalErr)
			}
			policyResults = append(policyResults, results...)
		}

		receiptOpts = append(receiptOpts, receipt.WithPolicy(
			policyPreset, policyStatus(policyResults), policyRuleHits(policyConfig, policyResults)))
	}

	// Build check result
	checkResult := BuildCheckResult(checkConfigFlag, checkReportFlag, verdicts, policyResults, policyPreset)

	// Output result
	if checkFormatFlag == "json" {
		jsonOutput, jsonErr := FormatJSONOutput(checkResult)
		if jsonErr != nil {
			resultStatus = "fail"
			return fmt.Errorf("failed to format JSON output: %w", jsonErr)
		}
		fmt.Println(string(jsonOutput))
	} else {
		fmt.Print(FormatTextOutput(checkResult))
	}

	if checkOutputFlag != "" {
		if writeErr := writeResultFile(checkOutputFlag, checkResult); writeErr != nil {
			resultStatus = "fail"
			return writeErr
		}
	}

	// Optional drift summary against a saved baseline
	if checkBaselineFlag != "" && checkFormatFlag == "text" {
		if driftErr := printBaselineDrift(ctx, checkBaselineFlag, checkResult, &receiptOpts); driftErr != nil {
			resultStatus = "fail"
			return driftErr
		}
	}

	// Determine exit code - use os.Exit to avoid Cobra error messages corrupting JSON
	if checkResult.Outcome == "FAIL" {
		resultStatus = "fail"
		// For JSON format, exit without returning error to avoid "Error: ..." corrupting stdout
		if checkFormatFlag == "json" {
			os.Exit(1)
		}
		// For text format, return error for visibility
		if checkResult.Policy != nil && !checkResult.Policy.Passed {
			return fmt.Errorf("policy check failed")
		}
		return fmt.Errorf("%d of %d check(s) failed",
			checkResult.Summary.Failed+checkResult.Summary.ConfigErrors, checkResult.Summary.Total)
	}

	resultStatus = "success"
	return nil
}

// buildExtractor from flags
func buildExtractor(kind, pattern string) (extract.Extractor, error) {
	switch kind {
	case "json":
		return extract.NewJSONExtractor(), nil
	case "regex":
		if pattern == "" {
			return nil, fmt.Errorf("--extract=regex requires --pattern")
		}
		return extract.NewRegexExtractor(pattern)
	default:
		return nil, fmt.Errorf("invalid extractor: %s (use json or regex)", kind)
	}
}

// emitConfigError prints the sentinel verdict for a broken configuration
// and reports failure through the normal exit path.
func emitConfigError(ce *config.Error) error {
	v := engine.ConfigErrorVerdict(ce.Reason)
	result := BuildCheckResult(checkConfigFlag, checkReportFlag, []CheckVerdict{
		{Name: "config", Verdict: v},
	}, nil, "")

	if checkFormatFlag == "json" {
		jsonOutput, jsonErr := FormatJSONOutput(result)
		if jsonErr != nil {
			return jsonErr
		}
		fmt.Println(string(jsonOutput))
		os.Exit(1)
	}
	fmt.Print(FormatTextOutput(result))
	return fmt.Errorf("configuration error: %s: %s", ce.Path, ce.Reason)
}

// checkSummary for the receipt
func checkSummary(name, mode string, v *models.Verdict) receipt.CheckSummary {
	s := receipt.CheckSummary{
		Name: name,
		Mode: mode,
	}
	if v == nil {
		return s
	}
	s.Value = v.Value
	s.Passed = v.IsPass
	s.Found = groupLen(v, models.GroupFound)
	s.Missing = groupLen(v, models.GroupMissing)
	s.Waived = groupLen(v, models.GroupWaived)
	s.Unused = groupLen(v, models.GroupUnusedWaiver)
	return s
}

func groupLen(v *models.Verdict, id string) int {
	if g, ok := v.Groups[id]; ok {
		return len(g.Members)
	}
	return 0
}

// policyStatus summarizes rule results as pass, warn, or fail.
func policyStatus(results []models.PolicyResult) string {
	status := "pass"
	for _, r := range results {
		if r.Passed {
			continue
		}
		if r.Severity == models.PolicySeverityError {
			return "fail"
		}
		status = "warn"
	}
	return status
}

// policyRuleHits collects failed rules with their control references.
func policyRuleHits(cfg *models.PolicyConfig, results []models.PolicyResult) []receipt.RuleHit {
	refs := make(map[string][]string, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		refs[rule.Name] = rule.ControlRefs
	}

	seen := make(map[string]bool)
	var hits []receipt.RuleHit
	for _, r := range results {
		if r.Passed || seen[r.RuleName] {
			continue
		}
		seen[r.RuleName] = true
		hits = append(hits, receipt.RuleHit{
			Name:        r.RuleName,
			Severity:    string(r.Severity),
			ControlRefs: refs[r.RuleName],
		})
	}
	return hits
}

// printBaselineDrift compares the fresh result against a saved baseline
// and prints the per-check drift. Informational only; drift never changes
// the check exit code (use 'veriguard diff' to gate on drift).
func printBaselineDrift(ctx context.Context, baselinePath string, current *CheckResult, receiptOpts *[]receipt.Option) error {
	baseline, err := loadSavedResult(baselinePath)
	if err != nil {
		return fmt.Errorf("failed to load baseline: %w", err)
	}

	checkDiffs, err := compareResults(baseline, current)
	if err != nil {
		return fmt.Errorf("baseline comparison failed: %w", err)
	}

	critical, benign := 0, 0
	for _, cd := range checkDiffs {
		for _, d := range cd.Drifts {
			if d.Severity >= differ.SeverityCritical {
				critical++
			} else {
				benign++
			}
		}
	}

	if critical+benign == 0 {
		fmt.Printf("%s✓ No drift against baseline %s%s\n", colorGreen, baselinePath, colorReset)
		return nil
	}

	fmt.Printf("\n%sDrift against baseline %s:%s\n", colorYellow, baselinePath, colorReset)
	for _, cd := range checkDiffs {
		printCheckDiff(cd)
	}

	logging.From(ctx).Event(ctx, "check.drift", map[string]any{
		"critical": critical,
		"benign":   benign,
	})
	*receiptOpts = append(*receiptOpts, receipt.WithDrift(critical, benign,
		fmt.Sprintf("%d critical, %d benign against %s", critical, benign, baselinePath)))
	return nil
}

// writeResultFile saves the result JSON, usable later as a diff baseline.
func writeResultFile(path string, result *CheckResult) error {
	data, err := FormatJSONOutput(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write result file: %w", err)
	}
	return nil
}
