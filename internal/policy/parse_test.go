package policy

import (
	"testing"

	"github.com/veriguard/veriguard/internal/models"
	"gopkg.in/yaml.v3"
)

func TestParsePolicy_NoMetadata(t *testing.T) {
	// YAML without control_refs should still parse correctly
	yamlContent := `
name: "Test Policy"
rules:
  - name: "test_rule"
    expr: 'input.is_pass'
    failure_msg: "Verdict did not pass"
    severity: error
`

	var config models.PolicyConfig
	if err := yaml.Unmarshal([]byte(yamlContent), &config); err != nil {
		t.Fatalf("failed to parse YAML without metadata: %v", err)
	}

	if config.Name != "Test Policy" {
		t.Errorf("name = %q, want %q", config.Name, "Test Policy")
	}

	if len(config.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(config.Rules))
	}

	rule := config.Rules[0]
	if rule.Name != "test_rule" {
		t.Errorf("rule name = %q, want %q", rule.Name, "test_rule")
	}
	if rule.Severity != models.PolicySeverityError {
		t.Errorf("severity = %q, want error", rule.Severity)
	}
	if rule.ControlRefs != nil {
		t.Errorf("ControlRefs should be nil, got %v", rule.ControlRefs)
	}
}

func TestParsePolicy_WithControlRefs(t *testing.T) {
	yamlContent := `
name: "Test Policy with Metadata"
rules:
  - name: "test_rule"
    expr: 'size(input.missing) == 0'
    failure_msg: "Required findings missing"
    severity: warn
    control_refs:
      - "ISO 26262: Part 8, 9.4"
      - "SOC2: CC7.2"
`

	var config models.PolicyConfig
	if err := yaml.Unmarshal([]byte(yamlContent), &config); err != nil {
		t.Fatalf("failed to parse YAML with metadata: %v", err)
	}

	if len(config.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(config.Rules))
	}

	rule := config.Rules[0]
	if len(rule.ControlRefs) != 2 {
		t.Errorf("expected 2 ControlRefs, got %d", len(rule.ControlRefs))
	}
	if rule.ControlRefs[0] != "ISO 26262: Part 8, 9.4" {
		t.Errorf("ControlRefs[0] = %q", rule.ControlRefs[0])
	}
}

func TestPresetMetadataPresent(t *testing.T) {
	// Embedded presets should map at least one rule to external controls
	tests := []struct {
		name string
	}{
		{"baseline"},
		{"strict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preset := GetPreset(tt.name)
			if preset == nil {
				t.Fatalf("preset %q not found", tt.name)
			}

			if len(preset.Rules) == 0 {
				t.Fatal("preset has no rules")
			}

			hasControlRefs := false
			for _, rule := range preset.Rules {
				if len(rule.ControlRefs) > 0 {
					hasControlRefs = true
					break
				}
			}
			if !hasControlRefs {
				t.Errorf("preset %q should have at least one rule with control_refs", tt.name)
			}
		})
	}
}

func TestMetadataDoesNotAffectEnforcement(t *testing.T) {
	// Regression test: same rule with/without metadata yields identical pass/fail
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	ruleWithout := models.PolicyRule{
		Name:       "test_rule",
		Expr:       `input.is_pass`,
		FailureMsg: "did not pass",
		Severity:   models.PolicySeverityError,
	}

	ruleWith := ruleWithout
	ruleWith.ControlRefs = []string{"ISO 26262: Part 8, 9.4", "SOC2: CC7.2"}

	configWithout := &models.PolicyConfig{Name: "Without Metadata", Rules: []models.PolicyRule{ruleWithout}}
	configWith := &models.PolicyConfig{Name: "With Metadata", Rules: []models.PolicyRule{ruleWith}}

	for _, verdict := range []*models.Verdict{passingVerdict(), failingVerdict()} {
		verdictInput := BuildVerdictInput("c", "requirement", verdict, nil)
		input := verdictInput.ToMap()

		resultsWithout, err := engine.Evaluate(configWithout, input)
		if err != nil {
			t.Fatalf("evaluate without metadata failed: %v", err)
		}
		resultsWith, err := engine.Evaluate(configWith, input)
		if err != nil {
			t.Fatalf("evaluate with metadata failed: %v", err)
		}

		if resultsWithout[0].Passed != resultsWith[0].Passed {
			t.Errorf("metadata changed pass/fail: without=%v, with=%v",
				resultsWithout[0].Passed, resultsWith[0].Passed)
		}
	}
}
