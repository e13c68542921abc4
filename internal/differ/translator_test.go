package differ

import (
	"strings"
	"testing"

	"github.com/veriguard/veriguard/internal/models"
	"github.com/wI2L/jsondiff"
)

func TestTranslate_PassFlip(t *testing.T) {
	patches := jsondiff.Patch{
		{Type: jsondiff.OperationReplace, Path: "/is_pass"},
	}

	got := Translate(patches)
	if len(got) != 1 || !strings.Contains(got[0], "CRITICAL") {
		t.Errorf("translations = %v", got)
	}
}

func TestTranslate_Deduplicates(t *testing.T) {
	patches := jsondiff.Patch{
		{Type: jsondiff.OperationReplace, Path: "/details/0/severity"},
		{Type: jsondiff.OperationReplace, Path: "/details/1/severity"},
	}

	got := Translate(patches)
	if len(got) != 1 {
		t.Errorf("duplicate translations should collapse, got %v", got)
	}
}

func TestTranslate_Empty(t *testing.T) {
	if got := Translate(nil); got != nil {
		t.Errorf("nil patches should yield nil, got %v", got)
	}
}

func TestTranslate_GroupPaths(t *testing.T) {
	tests := []struct {
		name string
		op   jsondiff.Operation
		want string
	}{
		{
			name: "missing group add",
			op:   jsondiff.Operation{Type: jsondiff.OperationAdd, Path: "/groups/ERROR01/members/0"},
			want: "CRITICAL",
		},
		{
			name: "other group add",
			op:   jsondiff.Operation{Type: jsondiff.OperationAdd, Path: "/groups/INFO01/members/1"},
			want: "Group membership grew.",
		},
		{
			name: "value replace",
			op:   jsondiff.Operation{Type: jsondiff.OperationReplace, Path: "/value"},
			want: "Requirement value changed.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Translate(jsondiff.Patch{tt.op})
			if len(got) != 1 || !strings.Contains(got[0], tt.want) {
				t.Errorf("Translate = %v, want contains %q", got, tt.want)
			}
		})
	}
}

func TestSeverityString(t *testing.T) {
	tests := []struct {
		level SeverityLevel
		want  string
	}{
		{SeverityCritical, "critical"},
		{SeverityModerate, "moderate"},
		{SeveritySafe, "info"},
		{SeverityLevel(99), "unknown"},
	}

	for _, tt := range tests {
		if got := SeverityString(tt.level); got != tt.want {
			t.Errorf("SeverityString(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestSeverityChangeSeverity(t *testing.T) {
	if got := severityChangeSeverity(models.SeverityInfo, models.SeverityFail); got != SeverityCritical {
		t.Errorf("escalation should be critical, got %v", got)
	}
	if got := severityChangeSeverity(models.SeverityFail, models.SeverityInfo); got != SeverityModerate {
		t.Errorf("relaxation should be moderate, got %v", got)
	}
}
