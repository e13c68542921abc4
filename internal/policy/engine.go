package policy

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/veriguard/veriguard/internal/models"
)

// Engine is the policy evaluation engine using CEL
type Engine struct {
	env *cel.Env
}

func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("input", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{env: env}, nil
}

// Evaluate checks every rule against the verdict input. Broken rules
// become failed results rather than engine errors so one bad expression
// cannot abort the whole gate.
func (e *Engine) Evaluate(config *models.PolicyConfig, input map[string]interface{}) ([]models.PolicyResult, error) {
	results := make([]models.PolicyResult, 0, len(config.Rules))

	for _, rule := range config.Rules {
		results = append(results, e.evaluateRule(rule, input))
	}

	return results, nil
}

// evaluateRule
func (e *Engine) evaluateRule(rule models.PolicyRule, input map[string]interface{}) models.PolicyResult {
	severity := rule.Severity
	if severity == "" {
		severity = models.PolicySeverityError
	}

	fail := func(msg string) models.PolicyResult {
		return models.PolicyResult{
			RuleName:   rule.Name,
			Passed:     false,
			Severity:   severity,
			FailureMsg: msg,
		}
	}

	// compile
	ast, issues := e.env.Compile(rule.Expr)
	if issues != nil && issues.Err() != nil {
		return fail(fmt.Sprintf("CEL compile error: %v", issues.Err()))
	}

	// program
	prg, err := e.env.Program(ast)
	if err != nil {
		return fail(fmt.Sprintf("CEL program error: %v", err))
	}

	// eval
	out, _, err := prg.Eval(map[string]interface{}{
		"input": input,
	})
	if err != nil {
		return fail(fmt.Sprintf("CEL evaluation error: %v", err))
	}

	// check bool
	passed, ok := out.Value().(bool)
	if !ok {
		return fail(fmt.Sprintf("Rule expression must return boolean, got %T", out.Value()))
	}

	result := models.PolicyResult{
		RuleName: rule.Name,
		Passed:   passed,
		Severity: severity,
	}
	if !passed {
		result.FailureMsg = rule.FailureMsg
	}

	return result
}

// CompileAndValidate compiles every rule without evaluating, for
// `veriguard policy validate`.
func (e *Engine) CompileAndValidate(config *models.PolicyConfig) error {
	var errors []string

	for _, rule := range config.Rules {
		_, issues := e.env.Compile(rule.Expr)
		if issues != nil && issues.Err() != nil {
			errors = append(errors, fmt.Sprintf("rule %q: %v", rule.Name, issues.Err()))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("policy validation failed:\n  %s", strings.Join(errors, "\n  "))
	}

	return nil
}

// HasBlockingFailure reports whether any failed rule carries error
// severity. Warn failures are reported but do not gate the exit code.
func HasBlockingFailure(results []models.PolicyResult) bool {
	for _, r := range results {
		if !r.Passed && r.Severity == models.PolicySeverityError {
			return true
		}
	}
	return false
}
