package engine

import (
	"strings"

	"github.com/veriguard/veriguard/internal/models"
)

// WaiverMap is the canonical form of the configured waiver entries:
// name→reason plus name→original-string for display, with configuration
// order preserved for deterministic matching.
type WaiverMap struct {
	Reasons map[string]string
	Raw     map[string]string
	Order   []string
}

// Len reports the number of distinct waiver names.
func (wm WaiverMap) Len() int {
	return len(wm.Order)
}

// ParseWaivers normalizes heterogeneous waiver items into a WaiverMap.
// String items are split on ';' before ',' (a string containing both is
// semicolon-delimited), with a leading '#' stripped from the reason.
// A duplicate name keeps its original position but its reason is
// overwritten by the later occurrence; that overwrite is observed legacy
// behavior and is pinned by tests.
func ParseWaivers(items []models.WaiveItem) WaiverMap {
	wm := WaiverMap{
		Reasons: make(map[string]string),
		Raw:     make(map[string]string),
	}

	for _, item := range items {
		var name, reason, raw string
		if item.IsStructured() {
			name = strings.TrimSpace(item.Name)
			reason = strings.TrimSpace(item.Reason)
			raw = name
		} else {
			raw = strings.TrimSpace(item.Raw)
			name, reason = splitWaiverText(raw)
		}

		if name == "" {
			continue
		}

		if _, seen := wm.Reasons[name]; !seen {
			wm.Order = append(wm.Order, name)
		}
		wm.Reasons[name] = reason
		wm.Raw[name] = raw
	}

	return wm
}

// splitWaiverText splits a free-text waiver entry into name and reason.
// Semicolon takes precedence over comma.
func splitWaiverText(s string) (name, reason string) {
	sep := strings.Index(s, ";")
	if sep < 0 {
		sep = strings.Index(s, ",")
	}
	if sep < 0 {
		return strings.TrimSpace(s), ""
	}

	name = strings.TrimSpace(s[:sep])
	reason = strings.TrimSpace(s[sep+1:])
	reason = strings.TrimSpace(strings.TrimPrefix(reason, "#"))
	return name, reason
}
