package policy

import (
	"sort"

	"github.com/veriguard/veriguard/internal/models"
)

// VerdictInput is the CEL evaluation context built from one check verdict
type VerdictInput struct {
	Check       string                 `json:"check"`
	Mode        string                 `json:"mode"`
	Value       string                 `json:"value"`
	IsPass      bool                   `json:"is_pass"`
	Counts      CountsInput            `json:"counts"`
	Missing     []string               `json:"missing"`
	Found       []string               `json:"found"`
	Waived      []string               `json:"waived"`
	Unused      []string               `json:"unused_waivers"`
	Groups      []string               `json:"groups"` // sorted group IDs
	Diagnostics []string               `json:"diagnostics"`
	Tags        map[string]interface{} `json:"tags"` // tag -> occurrence count
}

// CountsInput per severity
type CountsInput struct {
	Info  int `json:"info"`
	Warn  int `json:"warn"`
	Fail  int `json:"fail"`
	Total int `json:"total"`
}

// BuildVerdictInput from a verdict (deterministic)
func BuildVerdictInput(check, mode string, verdict *models.Verdict, diagnostics []string) VerdictInput {
	input := VerdictInput{
		Check:       check,
		Mode:        mode,
		Missing:     []string{},
		Found:       []string{},
		Waived:      []string{},
		Unused:      []string{},
		Groups:      []string{},
		Diagnostics: append([]string{}, diagnostics...),
		Tags:        map[string]interface{}{},
	}
	if verdict == nil {
		return input
	}

	input.Value = verdict.Value
	input.IsPass = verdict.IsPass

	for _, d := range verdict.Details {
		input.Counts.Total++
		switch d.Severity {
		case models.SeverityInfo:
			input.Counts.Info++
		case models.SeverityWarn:
			input.Counts.Warn++
		case models.SeverityFail:
			input.Counts.Fail++
		}
		if d.Tag != "" {
			n, _ := input.Tags[d.Tag].(int)
			input.Tags[d.Tag] = n + 1
		}
	}

	if g, ok := verdict.Groups[models.GroupMissing]; ok {
		input.Missing = append(input.Missing, g.Members...)
	}
	if g, ok := verdict.Groups[models.GroupFound]; ok {
		input.Found = append(input.Found, g.Members...)
	}
	if g, ok := verdict.Groups[models.GroupWaived]; ok {
		input.Waived = append(input.Waived, g.Members...)
	}
	if g, ok := verdict.Groups[models.GroupUnusedWaiver]; ok {
		input.Unused = append(input.Unused, g.Members...)
	}

	for id := range verdict.Groups {
		input.Groups = append(input.Groups, id)
	}
	// Deterministic sort
	sort.Strings(input.Groups)

	return input
}

// ToMap for CEL
func (p *VerdictInput) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"check":   p.Check,
		"mode":    p.Mode,
		"value":   p.Value,
		"is_pass": p.IsPass,
		"counts": map[string]interface{}{
			"info":  p.Counts.Info,
			"warn":  p.Counts.Warn,
			"fail":  p.Counts.Fail,
			"total": p.Counts.Total,
		},
		"missing":        stringSliceToInterface(p.Missing),
		"found":          stringSliceToInterface(p.Found),
		"waived":         stringSliceToInterface(p.Waived),
		"unused_waivers": stringSliceToInterface(p.Unused),
		"groups":         stringSliceToInterface(p.Groups),
		"diagnostics":    stringSliceToInterface(p.Diagnostics),
		"tags":           p.Tags,
	}
}

// stringSliceToInterface
func stringSliceToInterface(s []string) []interface{} {
	result := make([]interface{}, len(s))
	for i, v := range s {
		result[i] = v
	}
	return result
}
