package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/veriguard/veriguard/internal/models"
)

func TestBuildExtractor(t *testing.T) {
	tests := []struct {
		name      string
		kind      string
		pattern   string
		shouldErr bool
	}{
		{"json", "json", "", false},
		{"regex with pattern", "regex", `(?P<name>ERR-\d+)`, false},
		{"regex without pattern", "regex", "", true},
		{"regex with bad pattern", "regex", `(?P<name>[`, true},
		{"unknown kind", "xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, err := buildExtractor(tt.kind, tt.pattern)
			if tt.shouldErr {
				if err == nil {
					t.Errorf("buildExtractor(%q, %q) expected error", tt.kind, tt.pattern)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildExtractor(%q, %q): %v", tt.kind, tt.pattern, err)
			}
			if ex == nil {
				t.Error("expected an extractor")
			}
		})
	}
}

func TestCheckSummary(t *testing.T) {
	cv := failingCheckVerdict("security")
	s := checkSummary(cv.Name, cv.Mode, cv.Verdict)

	if s.Name != "security" || s.Mode != "requirement+waiver" {
		t.Errorf("unexpected identity fields: %+v", s)
	}
	if s.Passed {
		t.Error("failing verdict must not summarize as passed")
	}
	if s.Missing != 1 || s.Unused != 1 || s.Found != 0 || s.Waived != 0 {
		t.Errorf("unexpected counts: %+v", s)
	}
}

func TestCheckSummary_NilVerdict(t *testing.T) {
	s := checkSummary("lint", "requirement", nil)
	if s.Name != "lint" || s.Passed || s.Value != "" {
		t.Errorf("unexpected summary for nil verdict: %+v", s)
	}
}

func TestPolicyStatus(t *testing.T) {
	tests := []struct {
		name    string
		results []models.PolicyResult
		want    string
	}{
		{"all passed", []models.PolicyResult{{Passed: true}}, "pass"},
		{"no results", nil, "pass"},
		{"warn only", []models.PolicyResult{
			{Passed: true},
			{Passed: false, Severity: models.PolicySeverityWarn},
		}, "warn"},
		{"error wins", []models.PolicyResult{
			{Passed: false, Severity: models.PolicySeverityWarn},
			{Passed: false, Severity: models.PolicySeverityError},
		}, "fail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policyStatus(tt.results); got != tt.want {
				t.Errorf("policyStatus = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPolicyRuleHits(t *testing.T) {
	cfg := &models.PolicyConfig{
		Name: "test",
		Rules: []models.PolicyRule{
			{Name: "rule_a", ControlRefs: []string{"SOC2 CC7.1"}},
			{Name: "rule_b"},
		},
	}
	results := []models.PolicyResult{
		{RuleName: "rule_a", Passed: false, Severity: models.PolicySeverityError},
		{RuleName: "rule_a", Passed: false, Severity: models.PolicySeverityError}, // second check, same rule
		{RuleName: "rule_b", Passed: true},
	}

	hits := policyRuleHits(cfg, results)
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1 (deduplicated)", len(hits))
	}
	if hits[0].Name != "rule_a" || hits[0].Severity != "error" {
		t.Errorf("unexpected hit: %+v", hits[0])
	}
	if len(hits[0].ControlRefs) != 1 || hits[0].ControlRefs[0] != "SOC2 CC7.1" {
		t.Errorf("control refs not carried: %+v", hits[0])
	}
}

func TestLoadPolicyWithPreset(t *testing.T) {
	p, err := loadPolicyWithPreset("baseline")
	if err != nil {
		t.Fatalf("preset name should resolve: %v", err)
	}
	if len(p.Rules) == 0 {
		t.Error("baseline preset has no rules")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	content := `name: Custom
rules:
  - name: must_pass
    expr: input.is_pass
    failure_msg: verdict failed
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err = loadPolicyWithPreset(path)
	if err != nil {
		t.Fatalf("file path should resolve: %v", err)
	}
	if p.Name != "Custom" || len(p.Rules) != 1 {
		t.Errorf("unexpected policy: %+v", p)
	}
}

func TestLoadPolicy_NoRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte("name: Empty\nrules: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadPolicy(path); err == nil {
		t.Error("expected error for a policy with no rules")
	}
}
