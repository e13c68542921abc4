package differ

import "github.com/veriguard/veriguard/internal/models"

// SeverityLevel 0=safe, 1=mod, 2=crit
type SeverityLevel int

const (
	SeveritySafe SeverityLevel = iota
	SeverityModerate
	SeverityCritical
)

// SeverityString to lowercase
func SeverityString(s SeverityLevel) string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityModerate:
		return "moderate"
	case SeveritySafe:
		return "info"
	default:
		return "unknown"
	}
}

// passFlipSeverity: pass to fail is critical, fail to pass is safe.
func passFlipSeverity(nowPass bool) SeverityLevel {
	if nowPass {
		return SeveritySafe
	}
	return SeverityCritical
}

func passFlipMessage(nowPass bool) string {
	if nowPass {
		return "Verdict now passes; it previously failed."
	}
	return "Verdict now fails; it previously passed."
}

// addedSeverity of a new detail follows its detail severity.
func addedSeverity(s models.Severity) SeverityLevel {
	switch s {
	case models.SeverityFail:
		return SeverityCritical
	case models.SeverityWarn:
		return SeverityModerate
	default:
		return SeveritySafe
	}
}

// severityChangeSeverity: escalation is worse than relaxation.
func severityChangeSeverity(old, cur models.Severity) SeverityLevel {
	rank := map[models.Severity]int{
		models.SeverityInfo: 0,
		models.SeverityWarn: 1,
		models.SeverityFail: 2,
	}
	if rank[cur] > rank[old] {
		return SeverityCritical
	}
	return SeverityModerate
}

// groupSeverity: movement in the failure group is the signal reviewers
// care about.
func groupSeverity(id string) SeverityLevel {
	switch id {
	case models.GroupMissing:
		return SeverityCritical
	case models.GroupUnusedWaiver:
		return SeverityModerate
	default:
		return SeveritySafe
	}
}
