package engine

import (
	"testing"

	"github.com/veriguard/veriguard/internal/models"
)

func findingsNamed(names ...string) []models.Finding {
	fs := make([]models.Finding, len(names))
	for i, n := range names {
		fs[i] = models.Finding{Name: n}
	}
	return fs
}

func TestClassify_InfoOnly(t *testing.T) {
	b := Classify(ModeInfoOnly, findingsNamed("A", "B"), models.Requirements{}, WaiverMap{})

	if len(b.Found) != 2 {
		t.Fatalf("found = %d, want 2", len(b.Found))
	}
	if len(b.Missing) != 0 || len(b.Waived) != 0 {
		t.Errorf("info-only mode must not fill missing/waived buckets")
	}
}

func TestClassify_InfoOnlyEmptyPlaceholder(t *testing.T) {
	b := Classify(ModeInfoOnly, nil, models.Requirements{}, WaiverMap{})

	if len(b.Found) != 1 {
		t.Fatalf("found = %d, want 1 placeholder", len(b.Found))
	}
	if b.Found[0].Finding.Name != NoFindingsPlaceholder {
		t.Errorf("placeholder name = %q", b.Found[0].Finding.Name)
	}
}

func TestClassify_Requirement(t *testing.T) {
	// Scenario: two declared patterns, one present.
	req := models.Requirements{PatternItems: []string{"ERR-100", "ERR-200"}}
	b := Classify(ModeRequirement, findingsNamed("ERR-100"), req, WaiverMap{})

	if len(b.Found) != 1 || b.Found[0].Finding.Name != "ERR-100" {
		t.Errorf("found = %+v, want ERR-100", b.Found)
	}
	if len(b.Missing) != 1 || b.Missing[0].Finding.Name != "ERR-200" {
		t.Errorf("missing = %+v, want ERR-200", b.Missing)
	}
}

func TestClassify_RequirementExtrasIgnoredByDefault(t *testing.T) {
	req := models.Requirements{PatternItems: []string{"ERR-100"}}
	b := Classify(ModeRequirement, findingsNamed("ERR-100", "SURPRISE"), req, WaiverMap{})

	if len(b.Missing) != 0 {
		t.Errorf("extras must be ignored unless report_extras is set, missing = %+v", b.Missing)
	}
}

func TestClassify_RequirementReportExtras(t *testing.T) {
	req := models.Requirements{
		PatternItems: []string{"ERR-100"},
		ReportExtras: true,
	}
	b := Classify(ModeRequirement, findingsNamed("ERR-100", "SURPRISE"), req, WaiverMap{})

	if len(b.Missing) != 1 || b.Missing[0].Finding.Name != "SURPRISE" {
		t.Errorf("extra finding should be reported, missing = %+v", b.Missing)
	}
}

func TestClassify_RequirementWaiver(t *testing.T) {
	req := models.Requirements{PatternItems: []string{"ERR-100", "ERR-200"}}
	wm := ParseWaivers([]models.WaiveItem{models.WaiveString("ERR-200, # known false positive")})

	b := Classify(ModeRequirementWaiver, findingsNamed("ERR-100"), req, wm)

	if len(b.Found) != 1 || b.Found[0].Finding.Name != "ERR-100" {
		t.Errorf("found = %+v", b.Found)
	}
	if len(b.Missing) != 0 {
		t.Errorf("missing should be empty, got %+v", b.Missing)
	}
	if len(b.Waived) != 1 || b.Waived[0].Finding.Name != "ERR-200" {
		t.Fatalf("waived = %+v", b.Waived)
	}
	if b.Waived[0].Reason != "known false positive" {
		t.Errorf("waiver reason = %q", b.Waived[0].Reason)
	}
	if len(b.UnusedWaivers) != 0 {
		t.Errorf("unused waivers = %v, want none", b.UnusedWaivers)
	}
}

func TestClassify_RequirementWaiverUnused(t *testing.T) {
	req := models.Requirements{PatternItems: []string{"ERR-100"}}
	wm := ParseWaivers([]models.WaiveItem{models.WaiveString("NEVER-USED")})

	b := Classify(ModeRequirementWaiver, findingsNamed("ERR-100"), req, wm)

	if len(b.UnusedWaivers) != 1 || b.UnusedWaivers[0] != "NEVER-USED" {
		t.Errorf("unused waivers = %v", b.UnusedWaivers)
	}
}

func TestClassify_WaiverOnly(t *testing.T) {
	// Pattern items play no part in waiver-only mode.
	req := models.Requirements{PatternItems: []string{"IGNORED"}}
	wm := ParseWaivers([]models.WaiveItem{models.WaiveString("LATCH_A")})

	b := Classify(ModeWaiverOnly, findingsNamed("LATCH_A", "LATCH_B"), req, wm)

	if len(b.Waived) != 1 || b.Waived[0].Finding.Name != "LATCH_A" {
		t.Errorf("waived = %+v", b.Waived)
	}
	if len(b.Missing) != 1 || b.Missing[0].Finding.Name != "LATCH_B" {
		t.Errorf("missing = %+v", b.Missing)
	}
	if len(b.UnusedWaivers) != 0 {
		t.Errorf("unused waivers = %v", b.UnusedWaivers)
	}
}

func TestClassify_WaiverOnlyUnused(t *testing.T) {
	wm := ParseWaivers([]models.WaiveItem{
		models.WaiveString("LATCH_A"),
		models.WaiveString("STALE"),
	})

	b := Classify(ModeWaiverOnly, findingsNamed("LATCH_A"), models.Requirements{}, wm)

	if len(b.UnusedWaivers) != 1 || b.UnusedWaivers[0] != "STALE" {
		t.Errorf("unused waivers = %v, want [STALE]", b.UnusedWaivers)
	}
}

func TestClassify_PatternWithWildcard(t *testing.T) {
	req := models.Requirements{PatternItems: []string{"ERR-*"}}
	b := Classify(ModeRequirement, findingsNamed("ERR-100", "ERR-200"), req, WaiverMap{})

	if len(b.Found) != 2 {
		t.Errorf("wildcard pattern should collect every matching finding, found = %+v", b.Found)
	}
}
