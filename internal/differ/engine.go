// Package differ compares a baseline verdict against a freshly computed
// one and reports drift as structured items plus raw JSON patches.
package differ

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/veriguard/veriguard/internal/models"
	"github.com/wI2L/jsondiff"
)

// DriftType enum
type DriftType string

const (
	DriftPassFlipped     DriftType = "PASS_FLIPPED"
	DriftValueChanged    DriftType = "VALUE_CHANGED"
	DriftDetailAdded     DriftType = "DETAIL_ADDED"
	DriftDetailRemoved   DriftType = "DETAIL_REMOVED"
	DriftSeverityChanged DriftType = "SEVERITY_CHANGED"
	DriftTagChanged      DriftType = "TAG_CHANGED"
	DriftGroupAdded      DriftType = "GROUP_ADDED"
	DriftGroupRemoved    DriftType = "GROUP_REMOVED"
	DriftGroupChanged    DriftType = "GROUP_CHANGED"
)

// DriftItem details
type DriftItem struct {
	Type       DriftType
	Severity   SeverityLevel
	Identifier string // detail name or group ID
	OldValue   string
	NewValue   string
	Message    string
}

// Result details
type Result struct {
	HasDrift bool
	Drifts   []DriftItem
	Patches  jsondiff.Patch // raw JSON patch between the two verdicts
}

// LoadBaseline reads a previously written verdict JSON file.
func LoadBaseline(path string) (*models.Verdict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline verdict: %w", err)
	}

	var v models.Verdict
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse baseline verdict: %w", err)
	}
	return &v, nil
}

// Compare baseline verdict vs current
func Compare(baseline, current *models.Verdict) (*Result, error) {
	result := &Result{
		HasDrift: false,
		Drifts:   []DriftItem{},
	}

	patches, err := jsondiff.Compare(baseline, current)
	if err != nil {
		return nil, fmt.Errorf("failed to compute verdict patch: %w", err)
	}
	result.Patches = patches

	if baseline.IsPass != current.IsPass {
		result.Drifts = append(result.Drifts, DriftItem{
			Type:       DriftPassFlipped,
			Severity:   passFlipSeverity(current.IsPass),
			Identifier: "is_pass",
			OldValue:   fmt.Sprintf("%v", baseline.IsPass),
			NewValue:   fmt.Sprintf("%v", current.IsPass),
			Message:    passFlipMessage(current.IsPass),
		})
	}

	if baseline.Value != current.Value {
		result.Drifts = append(result.Drifts, DriftItem{
			Type:       DriftValueChanged,
			Severity:   SeverityModerate,
			Identifier: "value",
			OldValue:   baseline.Value,
			NewValue:   current.Value,
			Message:    fmt.Sprintf("Requirement value changed from %q to %q.", baseline.Value, current.Value),
		})
	}

	result.Drifts = append(result.Drifts, compareDetails(baseline, current)...)
	result.Drifts = append(result.Drifts, compareGroups(baseline, current)...)

	result.HasDrift = len(result.Drifts) > 0
	return result, nil
}

// compareDetails helper
func compareDetails(baseline, current *models.Verdict) []DriftItem {
	var drifts []DriftItem

	baseByName := make(map[string]models.Detail)
	for _, d := range baseline.Details {
		baseByName[d.Name] = d
	}
	curByName := make(map[string]models.Detail)
	for _, d := range current.Details {
		curByName[d.Name] = d
	}

	// removed, in baseline order
	for _, d := range baseline.Details {
		if _, found := curByName[d.Name]; !found {
			drifts = append(drifts, DriftItem{
				Type:       DriftDetailRemoved,
				Severity:   SeverityModerate,
				Identifier: d.Name,
				OldValue:   string(d.Severity),
				Message:    fmt.Sprintf("Detail %q no longer reported.", d.Name),
			})
		}
	}

	// added and changed, in current order
	for _, d := range current.Details {
		old, found := baseByName[d.Name]
		if !found {
			drifts = append(drifts, DriftItem{
				Type:       DriftDetailAdded,
				Severity:   addedSeverity(d.Severity),
				Identifier: d.Name,
				NewValue:   string(d.Severity),
				Message:    fmt.Sprintf("New %s detail %q reported.", d.Severity, d.Name),
			})
			continue
		}

		if old.Severity != d.Severity {
			drifts = append(drifts, DriftItem{
				Type:       DriftSeverityChanged,
				Severity:   severityChangeSeverity(old.Severity, d.Severity),
				Identifier: d.Name,
				OldValue:   string(old.Severity),
				NewValue:   string(d.Severity),
				Message:    fmt.Sprintf("Detail %q moved from %s to %s.", d.Name, old.Severity, d.Severity),
			})
		}
		if old.Tag != d.Tag {
			drifts = append(drifts, DriftItem{
				Type:       DriftTagChanged,
				Severity:   SeverityModerate,
				Identifier: d.Name,
				OldValue:   old.Tag,
				NewValue:   d.Tag,
				Message:    fmt.Sprintf("Detail %q tag changed from %q to %q.", d.Name, old.Tag, d.Tag),
			})
		}
	}

	return drifts
}

// compareGroups helper
func compareGroups(baseline, current *models.Verdict) []DriftItem {
	var drifts []DriftItem

	ids := make(map[string]bool)
	for id := range baseline.Groups {
		ids[id] = true
	}
	for id := range current.Groups {
		ids[id] = true
	}

	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	// Deterministic order for stable output
	sort.Strings(sorted)

	for _, id := range sorted {
		old, inBase := baseline.Groups[id]
		cur, inCur := current.Groups[id]

		switch {
		case !inBase:
			drifts = append(drifts, DriftItem{
				Type:       DriftGroupAdded,
				Severity:   groupSeverity(id),
				Identifier: id,
				NewValue:   fmt.Sprintf("%d members", len(cur.Members)),
				Message:    fmt.Sprintf("Group %s appeared with %d members.", id, len(cur.Members)),
			})
		case !inCur:
			drifts = append(drifts, DriftItem{
				Type:       DriftGroupRemoved,
				Severity:   SeveritySafe,
				Identifier: id,
				OldValue:   fmt.Sprintf("%d members", len(old.Members)),
				Message:    fmt.Sprintf("Group %s is no longer present.", id),
			})
		case !equalMembers(old.Members, cur.Members):
			drifts = append(drifts, DriftItem{
				Type:       DriftGroupChanged,
				Severity:   groupSeverity(id),
				Identifier: id,
				OldValue:   fmt.Sprintf("%d members", len(old.Members)),
				NewValue:   fmt.Sprintf("%d members", len(cur.Members)),
				Message:    fmt.Sprintf("Group %s membership changed.", id),
			})
		}
	}

	return drifts
}

// equalMembers order-sensitive
func equalMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
