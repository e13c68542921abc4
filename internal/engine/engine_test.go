package engine

import (
	"reflect"
	"testing"

	"github.com/veriguard/veriguard/internal/models"
)

// scenarioConfig builds the shared two-pattern requirement configuration
// used across the end-to-end scenarios.
func scenarioConfig(waiverValue string, waiveItems ...models.WaiveItem) *models.CheckConfig {
	return &models.CheckConfig{
		Name: "lint_gate",
		Requirements: models.Requirements{
			Value:        models.Num(2),
			PatternItems: []string{"ERR-100", "ERR-200"},
		},
		Waivers: models.Waivers{
			Value:      models.FlexValue{Raw: waiverValue},
			WaiveItems: waiveItems,
		},
	}
}

func TestEvaluate_RequirementMode(t *testing.T) {
	cfg := scenarioConfig("N/A")
	v := Evaluate(cfg, findingsNamed("ERR-100"))

	if v.IsPass {
		t.Errorf("missing ERR-200 must fail the check")
	}

	found := v.Groups[models.GroupFound]
	if !reflect.DeepEqual(found.Members, []string{"ERR-100"}) {
		t.Errorf("found members = %v", found.Members)
	}
	missing := v.Groups[models.GroupMissing]
	if !reflect.DeepEqual(missing.Members, []string{"ERR-200"}) {
		t.Errorf("missing members = %v", missing.Members)
	}
}

func TestEvaluate_RequirementWaiverMode(t *testing.T) {
	cfg := scenarioConfig("1", models.WaiveString("ERR-200, # known false positive"))
	v := Evaluate(cfg, findingsNamed("ERR-100"))

	if !v.IsPass {
		t.Errorf("waived ERR-200 should let the check pass")
	}
	if _, ok := v.Groups[models.GroupMissing]; ok {
		t.Errorf("nothing is missing, ERROR01 must be omitted")
	}
	waived := v.Groups[models.GroupWaived]
	if !reflect.DeepEqual(waived.Members, []string{"ERR-200"}) {
		t.Errorf("waived members = %v", waived.Members)
	}
	if _, ok := v.Groups[models.GroupUnusedWaiver]; ok {
		t.Errorf("no waiver is unused, WARN01 must be omitted")
	}
}

func TestEvaluate_WaiverOnlyMode(t *testing.T) {
	cfg := &models.CheckConfig{
		Name: "latch_review",
		Requirements: models.Requirements{
			Value: models.NA(),
		},
		Waivers: models.Waivers{
			Value:      models.Num(1),
			WaiveItems: []models.WaiveItem{models.WaiveString("LATCH_A")},
		},
	}

	v := Evaluate(cfg, findingsNamed("LATCH_A", "LATCH_B"))

	if v.IsPass {
		t.Errorf("LATCH_B is uncovered, check must fail")
	}
	waived := v.Groups[models.GroupWaived]
	if !reflect.DeepEqual(waived.Members, []string{"LATCH_A"}) {
		t.Errorf("waived members = %v", waived.Members)
	}
	missing := v.Groups[models.GroupMissing]
	if !reflect.DeepEqual(missing.Members, []string{"LATCH_B"}) {
		t.Errorf("missing members = %v", missing.Members)
	}
}

func TestEvaluate_LegacyWaiverZeroShim(t *testing.T) {
	// Same inputs as the failing requirement scenario, but waivers.value
	// is exactly 0 rather than "N/A".
	cfg := scenarioConfig("0")
	v := Evaluate(cfg, findingsNamed("ERR-100"))

	if !v.IsPass {
		t.Errorf("legacy shim forces a pass")
	}
	d, ok := detailByName(v, "ERR-200")
	if !ok {
		t.Fatalf("ERR-200 detail missing")
	}
	if d.Severity != models.SeverityInfo || d.Tag != models.TagWaivedAsInfo {
		t.Errorf("ERR-200 = (%s %q), want downgraded INFO", d.Severity, d.Tag)
	}
}

func TestEvaluate_InfoOnlyMode(t *testing.T) {
	cfg := &models.CheckConfig{Name: "fyi"}
	v := Evaluate(cfg, findingsNamed("ANYTHING"))

	if !v.IsPass {
		t.Errorf("info-only checks always pass")
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	cfg := scenarioConfig("1",
		models.WaiveString("ERR-200, # known false positive"),
		models.WaiveString("NEVER-*"),
	)
	findings := findingsNamed("ERR-100", "NOISE")

	first := Evaluate(cfg, findings)
	second := Evaluate(cfg, findings)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs must produce identical verdicts\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestEvaluate_FindingMetadataCarried(t *testing.T) {
	cfg := scenarioConfig("N/A")
	v := Evaluate(cfg, []models.Finding{
		{Name: "ERR-100", LineNumber: 42, FilePath: "rtl/top.v"},
	})

	d, ok := detailByName(v, "ERR-100")
	if !ok {
		t.Fatalf("ERR-100 detail missing")
	}
	if d.LineNumber != 42 || d.FilePath != "rtl/top.v" {
		t.Errorf("finding metadata lost: %+v", d)
	}
}
