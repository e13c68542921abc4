package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/veriguard/veriguard/internal/models"
	"github.com/veriguard/veriguard/internal/observability"
	"github.com/veriguard/veriguard/internal/observability/logging"
	otelobs "github.com/veriguard/veriguard/internal/observability/otel"
	"github.com/veriguard/veriguard/internal/observability/receipt"
	"github.com/veriguard/veriguard/internal/policy"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"
)

// policyCmd group
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Policy management commands",
	Long:  `Manage and enforce verdict policies.`,
}

// policyEvalCmd
var policyEvalCmd = &cobra.Command{
	Use:   "eval --verdicts <result.json>",
	Short: "Evaluate saved check results against a policy",
	Long: `Evaluate a saved check result (from 'veriguard check --output') against
YAML policies (CEL rules).

Example:
  veriguard check --report lint.json --output result.json
  veriguard policy eval --verdicts result.json --preset strict`,
	SilenceUsage: true,
	RunE:         runPolicyEval,
}

// policyValidateCmd
var policyValidateCmd = &cobra.Command{
	Use:          "validate",
	Short:        "Compile a policy file without evaluating it",
	SilenceUsage: true,
	RunE:         runPolicyValidate,
}

var (
	policyFileFlag     string
	policyPresetFlag   string
	policyVerdictsFlag string
)

func init() {
	for _, c := range []*cobra.Command{policyEvalCmd, policyValidateCmd} {
		c.Flags().StringVarP(&policyFileFlag, "policy", "P", "", "Path to policy YAML file")
		c.Flags().StringVar(&policyPresetFlag, "preset", "", "Built-in policy preset: baseline or strict")
	}
	policyEvalCmd.Flags().StringVar(&policyVerdictsFlag, "verdicts", "", "Path to a saved check result JSON")
	_ = policyEvalCmd.MarkFlagRequired("verdicts")

	policyCmd.AddCommand(policyEvalCmd)
	policyCmd.AddCommand(policyValidateCmd)
}

// GetPolicyCmd export
func GetPolicyCmd() *cobra.Command {
	return policyCmd
}

func runPolicyEval(cmd *cobra.Command, args []string) (err error) {
	// Start receipt session immediately for early-return coverage
	ctx := cmd.Context()
	sess := receipt.Start(ctx, "veriguard policy eval", os.Args[1:])
	var receiptHits []receipt.RuleHit
	var receiptStatus string
	var presetName string

	defer func() {
		_ = sess.Finish(err, receipt.WithPolicy(presetName, receiptStatus, receiptHits))
	}()

	log := logging.From(ctx)
	start := time.Now()

	// Start OTel span if enabled (before log.Event so trace_id is available)
	if h := otelobs.From(ctx); h != nil {
		var span trace.Span
		ctx, span = h.Tracer.Start(ctx, "veriguard.policy.eval",
			trace.WithAttributes(
				attribute.String("veriguard.op_id", observability.OpID(ctx)),
				attribute.String("veriguard.command", "policy eval"),
				attribute.String("veriguard.preset", policyPresetFlag),
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

	log.Event(ctx, "policy_eval.start", nil)

	var resultStatus string
	defer func() {
		log.Event(ctx, "policy_eval.complete", map[string]any{
			"duration_ms": time.Since(start).Milliseconds(),
			"result":      resultStatus,
		})
	}()

	policyConfig, loadErr := loadPolicyFromFlags()
	if loadErr != nil {
		resultStatus = "fail"
		receiptStatus = "fail"
		return fmt.Errorf("failed to load policy: %w", loadErr)
	}
	presetName = policyPresetFlag
	if presetName == "" {
		presetName = "custom"
	}

	fmt.Printf("%s%sPolicy:%s %s\n\n", colorBold, colorYellow, colorReset, policyConfig.Name)

	engine, engErr := policy.NewEngine()
	if engErr != nil {
		resultStatus = "fail"
		return fmt.Errorf("failed to create policy engine: %w", engErr)
	}

	if compErr := engine.CompileAndValidate(policyConfig); compErr != nil {
		resultStatus = "fail"
		return compErr
	}

	saved, loadResultErr := loadSavedResult(policyVerdictsFlag)
	if loadResultErr != nil {
		resultStatus = "fail"
		return loadResultErr
	}

	fmt.Printf("%s%sResults:%s\n", colorBold, colorYellow, colorReset)
	fmt.Println(strings.Repeat("-", 50))

	hasErrors := false
	hasWarnings := false
	for _, cv := range saved.Checks {
		fmt.Printf("%s%s%s\n", colorBold, cv.Name, colorReset)

		input := policy.BuildVerdictInput(cv.Name, cv.Mode, cv.Verdict, cv.Diagnostics)
		results, evalErr := engine.Evaluate(policyConfig, input.ToMap())
		if evalErr != nil {
			resultStatus = "fail"
			return fmt.Errorf("policy evaluation failed: %w", evalErr)
		}

		for _, result := range results {
			if result.Passed {
				fmt.Printf("%s✓%s %s\n", colorGreen, colorReset, result.RuleName)
				continue
			}
			if result.Severity == models.PolicySeverityWarn {
				hasWarnings = true
				fmt.Printf("%s⚠%s %s\n", colorYellow, colorReset, result.RuleName)
				fmt.Printf("  %s→ %s%s\n", colorYellow, result.FailureMsg, colorReset)
				receiptHits = append(receiptHits, receipt.RuleHit{Name: result.RuleName, Severity: "warn"})
			} else {
				hasErrors = true
				fmt.Printf("%s✗%s %s\n", colorRed, colorReset, result.RuleName)
				fmt.Printf("  %s→ %s%s\n", colorRed, result.FailureMsg, colorReset)
				receiptHits = append(receiptHits, receipt.RuleHit{Name: result.RuleName, Severity: "error"})
			}
		}
	}

	fmt.Println(strings.Repeat("-", 50))

	switch {
	case hasErrors:
		fmt.Printf("\n%s%s✗ Policy check failed%s\n", colorBold, colorRed, colorReset)
		receiptStatus = "fail"
		err = fmt.Errorf("policy check failed")
		os.Exit(1)
		return nil
	case hasWarnings:
		fmt.Printf("\n%s%s⚠ Policy check passed with warnings%s\n", colorBold, colorYellow, colorReset)
		resultStatus = "success"
		receiptStatus = "warn"
		return nil
	default:
		fmt.Printf("\n%s%s✓ All policy checks passed%s\n", colorBold, colorGreen, colorReset)
		resultStatus = "success"
		receiptStatus = "pass"
		return nil
	}
}

func runPolicyValidate(cmd *cobra.Command, args []string) error {
	policyConfig, err := loadPolicyFromFlags()
	if err != nil {
		return fmt.Errorf("failed to load policy: %w", err)
	}

	engine, err := policy.NewEngine()
	if err != nil {
		return fmt.Errorf("failed to create policy engine: %w", err)
	}
	if err := engine.CompileAndValidate(policyConfig); err != nil {
		return err
	}

	fmt.Printf("%s✓%s %s: %d rule(s) compile\n", colorGreen, colorReset, policyConfig.Name, len(policyConfig.Rules))
	return nil
}

// loadPolicyFromFlags resolves --preset then --policy; baseline by default.
func loadPolicyFromFlags() (*models.PolicyConfig, error) {
	if policyPresetFlag != "" {
		if p := policy.GetPreset(policyPresetFlag); p != nil {
			return p, nil
		}
		return nil, fmt.Errorf("unknown preset: %s (use 'baseline' or 'strict')", policyPresetFlag)
	}
	if policyFileFlag == "" {
		return policy.GetPreset("baseline"), nil
	}
	return loadPolicy(policyFileFlag)
}

// loadPolicyWithPreset resolves a single flag value that is either a
// preset name or a file path. Used by 'check --policy'.
func loadPolicyWithPreset(value string) (*models.PolicyConfig, error) {
	if p := policy.GetPreset(value); p != nil {
		return p, nil
	}
	return loadPolicy(value)
}

// loadPolicy from file
func loadPolicy(path string) (*models.PolicyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var config models.PolicyConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse policy YAML: %w", err)
	}

	if len(config.Rules) == 0 {
		return nil, fmt.Errorf("policy must have at least one rule")
	}

	return &config, nil
}

// loadSavedResult reads a CheckResult written by 'check --output'.
func loadSavedResult(path string) (*CheckResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read verdicts file: %w", err)
	}

	var result CheckResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse verdicts file: %w", err)
	}
	if len(result.Checks) == 0 {
		return nil, fmt.Errorf("verdicts file has no checks: %s", path)
	}
	return &result, nil
}
