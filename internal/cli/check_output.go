package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/veriguard/veriguard/internal/models"
)

// CheckResult output structure
type CheckResult struct {
	ConfigPath string          `json:"config"`
	ReportPath string          `json:"report"`
	Checks     []CheckVerdict  `json:"checks"`
	Policy     *PolicyDecision `json:"policy,omitempty"`
	Summary    ResultSummary   `json:"summary"`
	Outcome    string          `json:"outcome"` // "PASS" or "FAIL"
}

// CheckVerdict pairs one check with its verdict
type CheckVerdict struct {
	Name        string          `json:"name"`
	Mode        string          `json:"mode"`
	Diagnostics []string        `json:"diagnostics,omitempty"`
	Verdict     *models.Verdict `json:"verdict"`
}

// ResultSummary counts
type ResultSummary struct {
	Passed       int `json:"passed"`
	Failed       int `json:"failed"`
	ConfigErrors int `json:"config_errors"`
	Total        int `json:"total"`
}

// PolicyDecision result
type PolicyDecision struct {
	Preset  string   `json:"preset"`
	Passed  bool     `json:"passed"`
	Reasons []string `json:"reasons,omitempty"`
}

// BuildCheckResult from components
func BuildCheckResult(
	configPath string,
	reportPath string,
	checks []CheckVerdict,
	policyResults []models.PolicyResult,
	policyPreset string,
) *CheckResult {
	result := &CheckResult{
		ConfigPath: configPath,
		ReportPath: reportPath,
		Checks:     checks,
		Outcome:    "PASS",
	}

	for _, cv := range checks {
		result.Summary.Total++
		switch {
		case cv.Verdict == nil:
			result.Summary.Failed++
		case cv.Verdict.Value == models.ConfigErrorValue:
			result.Summary.ConfigErrors++
		case cv.Verdict.IsPass:
			result.Summary.Passed++
		default:
			result.Summary.Failed++
		}
	}

	// Build policy decision
	if len(policyResults) > 0 {
		decision := &PolicyDecision{
			Preset: policyPreset,
			Passed: true,
		}

		for _, pr := range policyResults {
			if !pr.Passed && pr.Severity == models.PolicySeverityError {
				decision.Passed = false
				decision.Reasons = append(decision.Reasons, fmt.Sprintf("%s: %s", pr.RuleName, pr.FailureMsg))
			}
		}

		result.Policy = decision
	}

	// Determine outcome
	if result.Summary.Failed > 0 || result.Summary.ConfigErrors > 0 {
		result.Outcome = "FAIL"
	}
	if result.Policy != nil && !result.Policy.Passed {
		result.Outcome = "FAIL"
	}

	return result
}

// groupOrder is the rendering order for verdict groups.
var groupOrder = []string{
	models.GroupMissing,
	models.GroupUnusedWaiver,
	models.GroupFound,
	models.GroupWaived,
	models.GroupLegacyWaiver,
}

// FormatTextOutput human readable
func FormatTextOutput(result *CheckResult) string {
	var sb strings.Builder

	policyName := "none"
	if result.Policy != nil {
		policyName = result.Policy.Preset
	}

	if result.Outcome == "PASS" {
		sb.WriteString(fmt.Sprintf("%sveriguard check: PASS%s (policy=%s)\n", colorGreen, colorReset, policyName))
	} else {
		sb.WriteString(fmt.Sprintf("%sveriguard check: FAIL%s (policy=%s)\n", colorRed, colorReset, policyName))
	}

	sb.WriteString(fmt.Sprintf("Config: %s\n", result.ConfigPath))
	sb.WriteString(fmt.Sprintf("Report: %s\n", result.ReportPath))
	sb.WriteString("\n")

	for _, cv := range result.Checks {
		formatCheckVerdict(&sb, cv)
	}

	sb.WriteString(fmt.Sprintf("Summary: %d passed, %d failed, %d config errors\n",
		result.Summary.Passed, result.Summary.Failed, result.Summary.ConfigErrors))

	// Policy decision
	if result.Policy != nil {
		if result.Policy.Passed {
			sb.WriteString(fmt.Sprintf("Policy: %sPASS%s\n", colorGreen, colorReset))
		} else {
			sb.WriteString(fmt.Sprintf("Policy: %sDENY%s\n", colorRed, colorReset))
			for _, reason := range result.Policy.Reasons {
				sb.WriteString(fmt.Sprintf("- %s\n", reason))
			}
		}
	}

	return sb.String()
}

// formatCheckVerdict one check block
func formatCheckVerdict(sb *strings.Builder, cv CheckVerdict) {
	v := cv.Verdict

	switch {
	case v == nil:
		sb.WriteString(fmt.Sprintf("%s✗ %s%s (no verdict)\n\n", colorRed, cv.Name, colorReset))
		return
	case v.Value == models.ConfigErrorValue:
		sb.WriteString(fmt.Sprintf("%s✗ %s%s (%s)\n", colorRed, cv.Name, colorReset, models.ConfigErrorValue))
	case v.IsPass:
		sb.WriteString(fmt.Sprintf("%s✓ %s%s (mode=%s, value=%s)\n", colorGreen, cv.Name, colorReset, cv.Mode, v.Value))
	default:
		sb.WriteString(fmt.Sprintf("%s✗ %s%s (mode=%s, value=%s)\n", colorRed, cv.Name, colorReset, cv.Mode, v.Value))
	}

	for _, diag := range cv.Diagnostics {
		sb.WriteString(fmt.Sprintf("  %s⚠ %s%s\n", colorYellow, diag, colorReset))
	}

	details := detailsByName(v.Details)

	for _, id := range groupOrder {
		group, ok := v.Groups[id]
		if !ok {
			continue
		}

		color := groupColor(id)
		sb.WriteString(fmt.Sprintf("  %s%s: %s (%d)%s\n", color, group.ID, group.Description, len(group.Members), colorReset))
		for _, member := range group.Members {
			formatMember(sb, member, details, color)
		}
	}

	sb.WriteString("\n")
}

// groupColor by group ID
func groupColor(id string) string {
	switch id {
	case models.GroupMissing:
		return colorRed
	case models.GroupUnusedWaiver:
		return colorYellow
	default:
		return ""
	}
}

func formatMember(sb *strings.Builder, member string, details map[string]models.Detail, color string) {
	d, ok := details[member]
	if !ok {
		sb.WriteString(fmt.Sprintf("  %s- %s%s\n", color, member, colorReset))
		return
	}

	line := fmt.Sprintf("  %s- %s [%s]", color, d.Name, d.Severity)
	if d.Tag != "" {
		line += " " + d.Tag
	}
	if d.Message != "" {
		line += ": " + d.Message
	}
	sb.WriteString(line + colorReset + "\n")
}

// detailsByName index; first occurrence wins when a name repeats, which
// keeps bucket records ahead of legacy waiver echoes.
func detailsByName(details []models.Detail) map[string]models.Detail {
	m := make(map[string]models.Detail, len(details))
	for _, d := range details {
		if _, seen := m[d.Name]; !seen {
			m[d.Name] = d
		}
	}
	return m
}

// FormatJSONOutput raw json
func FormatJSONOutput(result *CheckResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
