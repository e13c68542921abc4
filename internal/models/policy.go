package models

// PolicySeverity of a rule.
type PolicySeverity string

const (
	PolicySeverityWarn  PolicySeverity = "warn"
	PolicySeverityError PolicySeverity = "error"
)

// PolicyConfig from yaml
type PolicyConfig struct {
	Name  string       `yaml:"name"`
	Rules []PolicyRule `yaml:"rules"`
}

// PolicyRule cel rule over the verdict input
type PolicyRule struct {
	Name       string         `yaml:"name"`
	Expr       string         `yaml:"expr"`
	FailureMsg string         `yaml:"failure_msg"`
	Severity   PolicySeverity `yaml:"severity"`

	// ControlRefs maps the rule to external compliance controls. Metadata
	// only; never consulted during evaluation.
	ControlRefs []string `yaml:"control_refs,omitempty"`
}

// PolicyResult eval result
type PolicyResult struct {
	RuleName   string
	Passed     bool
	Severity   PolicySeverity
	FailureMsg string
}
