package engine

import (
	"testing"

	"github.com/veriguard/veriguard/internal/models"
)

func TestParseWaivers(t *testing.T) {
	tests := []struct {
		name       string
		item       models.WaiveItem
		wantName   string
		wantReason string
	}{
		{"comma separator", models.WaiveString("foo, # bar"), "foo", "bar"},
		{"semicolon separator", models.WaiveString("foo ; # bar"), "foo", "bar"},
		{"structured record", models.WaiveRecord("foo", "bar"), "foo", "bar"},
		{"bare name", models.WaiveString("foo"), "foo", ""},
		{"reason without hash", models.WaiveString("foo; bar"), "foo", "bar"},
		{"whitespace trimmed", models.WaiveString("  foo  ,   bar  "), "foo", "bar"},
		{"structured record trimmed", models.WaiveRecord(" foo ", " bar "), "foo", "bar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wm := ParseWaivers([]models.WaiveItem{tt.item})
			if wm.Len() != 1 {
				t.Fatalf("expected 1 entry, got %d", wm.Len())
			}
			reason, ok := wm.Reasons[tt.wantName]
			if !ok {
				t.Fatalf("name %q not in map: %v", tt.wantName, wm.Reasons)
			}
			if reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", reason, tt.wantReason)
			}
		})
	}
}

func TestParseWaivers_SemicolonBeforeComma(t *testing.T) {
	// A string containing both separators is semicolon-delimited.
	wm := ParseWaivers([]models.WaiveItem{models.WaiveString("foo; left, right")})

	if reason := wm.Reasons["foo"]; reason != "left, right" {
		t.Errorf("reason = %q, want %q", reason, "left, right")
	}
}

func TestParseWaivers_DuplicateLastWins(t *testing.T) {
	// Pins observed legacy behavior: later occurrences silently overwrite
	// earlier ones; position in the order is kept from the first.
	wm := ParseWaivers([]models.WaiveItem{
		models.WaiveString("foo; # first"),
		models.WaiveString("bar"),
		models.WaiveString("foo; # second"),
	})

	if wm.Len() != 2 {
		t.Fatalf("expected 2 distinct names, got %d", wm.Len())
	}
	if wm.Reasons["foo"] != "second" {
		t.Errorf("duplicate name should keep the later reason, got %q", wm.Reasons["foo"])
	}
	if wm.Order[0] != "foo" || wm.Order[1] != "bar" {
		t.Errorf("order should keep first-occurrence positions, got %v", wm.Order)
	}
}

func TestParseWaivers_RawPreserved(t *testing.T) {
	wm := ParseWaivers([]models.WaiveItem{models.WaiveString("foo, # bar")})
	if wm.Raw["foo"] != "foo, # bar" {
		t.Errorf("raw = %q, want original string", wm.Raw["foo"])
	}
}

func TestParseWaivers_EmptyEntriesSkipped(t *testing.T) {
	wm := ParseWaivers([]models.WaiveItem{
		models.WaiveString(""),
		models.WaiveString("   "),
		models.WaiveString("; # reason without name"),
	})
	if wm.Len() != 0 {
		t.Errorf("expected no entries, got %v", wm.Order)
	}
}
