package engine

import (
	"github.com/veriguard/veriguard/internal/models"
)

// NoFindingsPlaceholder is emitted in info-only mode when the extraction
// step produced nothing at all.
const NoFindingsPlaceholder = "(no findings)"

// BucketEntry is one classified candidate plus the metadata that put it in
// its bucket.
type BucketEntry struct {
	Finding   models.Finding
	Pattern   string // declared pattern involved, if any
	WaiverKey string // waiver entry that covered it, if any
	Reason    string
}

// Buckets is the classification outcome before verdict assembly.
type Buckets struct {
	Found         []BucketEntry
	Missing       []BucketEntry
	Waived        []BucketEntry
	UnusedWaivers []string
}

// Classify applies the mode-specific bucketing rules. Findings and
// configuration are read-only; ordering of the output is deterministic
// (pattern order, then finding order, then waiver configuration order).
func Classify(mode Mode, findings []models.Finding, req models.Requirements, wm WaiverMap) Buckets {
	switch mode {
	case ModeRequirement, ModeRequirementWaiver:
		return classifyAgainstPatterns(mode, findings, req, wm)
	case ModeWaiverOnly:
		return classifyAgainstWaivers(findings, wm)
	default:
		return classifyInfoOnly(findings)
	}
}

// classifyInfoOnly: every finding is informational. An empty report gets a
// single placeholder entry so the verdict is never silently empty.
func classifyInfoOnly(findings []models.Finding) Buckets {
	var b Buckets
	if len(findings) == 0 {
		b.Found = append(b.Found, BucketEntry{
			Finding: models.Finding{Name: NoFindingsPlaceholder},
			Reason:  "no findings reported",
		})
		return b
	}
	for _, f := range findings {
		b.Found = append(b.Found, BucketEntry{Finding: f, Reason: "reported"})
	}
	return b
}

// classifyAgainstPatterns handles the requirement modes. Each declared
// pattern is searched across the findings; a pattern with no match becomes
// a missing candidate. With waiver logic active, missing candidates get a
// second chance against the waiver entries.
func classifyAgainstPatterns(mode Mode, findings []models.Finding, req models.Requirements, wm WaiverMap) Buckets {
	var b Buckets

	defaultMode := req.MatchMode
	if defaultMode == "" {
		defaultMode = models.MatchModeExact
	}
	regexMode := req.RegexMode
	if regexMode == "" {
		regexMode = models.RegexModeSearch
	}

	matchedFindings := make(map[int]bool)
	usedWaivers := make(map[string]bool)

	for _, pattern := range req.PatternItems {
		found := false
		for i, f := range findings {
			res := Match(f.Name, pattern, defaultMode, regexMode)
			if !res.IsMatch {
				continue
			}
			found = true
			matchedFindings[i] = true
			b.Found = append(b.Found, BucketEntry{
				Finding: f,
				Pattern: pattern,
				Reason:  res.Reason,
			})
		}
		if found {
			continue
		}

		missing := BucketEntry{
			Finding: models.Finding{Name: pattern},
			Pattern: pattern,
			Reason:  "expected finding not present",
		}
		if mode == ModeRequirementWaiver {
			if key, ok := MatchWaiver(pattern, wm); ok {
				usedWaivers[key] = true
				b.Waived = append(b.Waived, BucketEntry{
					Finding:   models.Finding{Name: pattern},
					Pattern:   pattern,
					WaiverKey: key,
					Reason:    wm.Reasons[key],
				})
				continue
			}
		}
		b.Missing = append(b.Missing, missing)
	}

	// Findings that matched no declared pattern are ignored unless the
	// configuration opts into reporting them.
	if req.ReportExtras {
		for i, f := range findings {
			if matchedFindings[i] {
				continue
			}
			if mode == ModeRequirementWaiver {
				if key, ok := MatchWaiver(f.Name, wm); ok {
					usedWaivers[key] = true
					b.Waived = append(b.Waived, BucketEntry{
						Finding:   f,
						WaiverKey: key,
						Reason:    wm.Reasons[key],
					})
					continue
				}
			}
			b.Missing = append(b.Missing, BucketEntry{
				Finding: f,
				Reason:  "unexpected finding",
			})
		}
	}

	if mode == ModeRequirementWaiver {
		b.UnusedWaivers = unusedWaivers(wm, usedWaivers)
	}
	return b
}

// classifyAgainstWaivers handles waiver-only mode: no pattern items
// participate, every finding goes straight to the waiver entries.
func classifyAgainstWaivers(findings []models.Finding, wm WaiverMap) Buckets {
	var b Buckets
	usedWaivers := make(map[string]bool)

	for _, f := range findings {
		if key, ok := MatchWaiver(f.Name, wm); ok {
			usedWaivers[key] = true
			b.Waived = append(b.Waived, BucketEntry{
				Finding:   f,
				WaiverKey: key,
				Reason:    wm.Reasons[key],
			})
			continue
		}
		b.Missing = append(b.Missing, BucketEntry{
			Finding: f,
			Reason:  "finding not covered by any waiver",
		})
	}

	b.UnusedWaivers = unusedWaivers(wm, usedWaivers)
	return b
}

// unusedWaivers preserves configuration order.
func unusedWaivers(wm WaiverMap, used map[string]bool) []string {
	var unused []string
	for _, key := range wm.Order {
		if !used[key] {
			unused = append(unused, key)
		}
	}
	return unused
}
