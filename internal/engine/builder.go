package engine

import (
	"fmt"

	"github.com/veriguard/veriguard/internal/models"
)

// Build converts classification buckets into a verdict: severity-tagged
// details in deterministic order, the pass flag, and named groups. When
// legacyWaiverZero is set (waiver value present and exactly 0, as opposed
// to "N/A") the legacy downgrade applies: every FAIL/WARN detail is
// rewritten to INFO with [WAIVED_AS_INFO], every configured waiver entry
// is echoed as INFO [WAIVED_INFO], and the verdict is forced to pass.
// That shim reproduces a prior configuration convention exactly.
func Build(mode Mode, value models.FlexValue, b Buckets, wm WaiverMap, legacyWaiverZero bool) *models.Verdict {
	v := &models.Verdict{
		Value:   value.String(),
		Details: []models.Detail{},
		Groups:  map[string]models.Group{},
	}

	for _, e := range b.Found {
		v.Details = append(v.Details, models.Detail{
			Name:       e.Finding.Name,
			Severity:   models.SeverityInfo,
			Message:    e.Reason,
			LineNumber: e.Finding.LineNumber,
			FilePath:   e.Finding.FilePath,
		})
	}
	for _, e := range b.Missing {
		v.Details = append(v.Details, models.Detail{
			Name:       e.Finding.Name,
			Severity:   models.SeverityFail,
			Message:    e.Reason,
			LineNumber: e.Finding.LineNumber,
			FilePath:   e.Finding.FilePath,
		})
	}
	for _, e := range b.Waived {
		v.Details = append(v.Details, models.Detail{
			Name:       e.Finding.Name,
			Severity:   models.SeverityInfo,
			Tag:        models.TagWaiver,
			Message:    waivedMessage(e),
			LineNumber: e.Finding.LineNumber,
			FilePath:   e.Finding.FilePath,
		})
	}
	for _, key := range b.UnusedWaivers {
		v.Details = append(v.Details, models.Detail{
			Name:     key,
			Severity: models.SeverityWarn,
			Tag:      models.TagWaiver,
			Message:  "configured waiver matched nothing in this run",
		})
	}

	v.IsPass = mode == ModeInfoOnly || len(b.Missing) == 0

	if legacyWaiverZero {
		applyLegacyWaiverZero(v, wm)
	}

	addGroup(v, models.GroupMissing, "Missing required findings", entryNames(b.Missing))
	addGroup(v, models.GroupUnusedWaiver, "Configured waivers that matched nothing", b.UnusedWaivers)
	addGroup(v, models.GroupFound, "Expected findings present", entryNames(b.Found))
	addGroup(v, models.GroupWaived, "Findings covered by waivers", entryNames(b.Waived))
	if legacyWaiverZero {
		addGroup(v, models.GroupLegacyWaiver, "Waiver entries echoed as informational", wm.Order)
	}

	return v
}

// applyLegacyWaiverZero rewrites failures and warnings in place, appends
// the waiver echo details, and forces the pass flag.
func applyLegacyWaiverZero(v *models.Verdict, wm WaiverMap) {
	for i := range v.Details {
		switch v.Details[i].Severity {
		case models.SeverityFail, models.SeverityWarn:
			v.Details[i].Severity = models.SeverityInfo
			v.Details[i].Tag = models.TagWaivedAsInfo
		}
	}

	for _, key := range wm.Order {
		msg := wm.Reasons[key]
		if msg == "" {
			msg = wm.Raw[key]
		}
		v.Details = append(v.Details, models.Detail{
			Name:     key,
			Severity: models.SeverityInfo,
			Tag:      models.TagWaivedInfo,
			Message:  msg,
		})
	}

	v.IsPass = true
}

// ConfigErrorVerdict builds the sentinel verdict for checks that never
// reached classification. Configuration errors are always surfaced as a
// single FAIL detail, never silently recovered.
func ConfigErrorVerdict(msg string) *models.Verdict {
	v := &models.Verdict{
		Value:  models.ConfigErrorValue,
		IsPass: false,
		Details: []models.Detail{{
			Name:     models.ConfigErrorValue,
			Severity: models.SeverityFail,
			Message:  msg,
		}},
		Groups: map[string]models.Group{},
	}
	addGroup(v, models.GroupMissing, "Configuration errors", []string{models.ConfigErrorValue})
	return v
}

// addGroup skips empty member lists entirely.
func addGroup(v *models.Verdict, id, description string, members []string) {
	if len(members) == 0 {
		return
	}
	v.Groups[id] = models.Group{
		ID:          id,
		Description: description,
		Members:     append([]string(nil), members...),
	}
}

func entryNames(entries []BucketEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Finding.Name)
	}
	return names
}

func waivedMessage(e BucketEntry) string {
	if e.Reason != "" {
		return fmt.Sprintf("waived by %q: %s", e.WaiverKey, e.Reason)
	}
	return fmt.Sprintf("waived by %q", e.WaiverKey)
}
