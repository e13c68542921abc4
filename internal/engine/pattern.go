package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/veriguard/veriguard/internal/models"
)

// MatchKind identifies which strategy branch produced a match result.
// Used for diagnostics only, never for control flow.
type MatchKind string

const (
	KindAlternatives MatchKind = "alternatives"
	KindRegex        MatchKind = "regex"
	KindWildcard     MatchKind = "wildcard"
	KindExact        MatchKind = "exact"
	KindContains     MatchKind = "contains"
)

// regexPrefix marks an explicit regular-expression pattern.
const regexPrefix = "regex:"

// MatchResult is the outcome of evaluating one text against one pattern.
type MatchResult struct {
	IsMatch bool
	Reason  string
	Kind    MatchKind
}

// Match evaluates text against pattern using a fixed-priority strategy
// chain: alternation > explicit regex > wildcard > exact/contains. The
// first applicable branch wins; there is no fallback to a later branch,
// even when the chosen branch fails internally (an invalid regex is a
// non-match, not a wildcard retry).
func Match(text, pattern, defaultMode, regexMode string) MatchResult {
	switch {
	case strings.Contains(pattern, "|"):
		return matchAlternatives(text, pattern)
	case strings.HasPrefix(pattern, regexPrefix):
		return matchRegex(text, strings.TrimPrefix(pattern, regexPrefix), regexMode)
	case strings.ContainsAny(pattern, "*?"):
		return matchWildcard(text, pattern)
	default:
		if defaultMode == models.MatchModeExact {
			return matchExact(text, pattern)
		}
		return matchContains(text, pattern)
	}
}

// matchAlternatives: each alternative is tested for substring containment,
// not equality. That asymmetry is long-standing configuration behavior.
func matchAlternatives(text, pattern string) MatchResult {
	for _, alt := range strings.Split(pattern, "|") {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}
		if strings.Contains(text, alt) {
			return MatchResult{
				IsMatch: true,
				Reason:  fmt.Sprintf("alternative %q found in text", alt),
				Kind:    KindAlternatives,
			}
		}
	}
	return MatchResult{
		Reason: "no alternative found in text",
		Kind:   KindAlternatives,
	}
}

// matchRegex: "match" anchors at the start of the text, "search" matches
// anywhere. Compile failures are reported, never raised.
func matchRegex(text, expr, regexMode string) MatchResult {
	re, err := regexp.Compile(expr)
	if err != nil {
		return MatchResult{
			Reason: fmt.Sprintf("invalid regex %q: %v", expr, err),
			Kind:   KindRegex,
		}
	}

	var ok bool
	if regexMode == models.RegexModeMatch {
		loc := re.FindStringIndex(text)
		ok = loc != nil && loc[0] == 0
	} else {
		ok = re.MatchString(text)
	}

	if ok {
		return MatchResult{IsMatch: true, Reason: "regex matched", Kind: KindRegex}
	}
	return MatchResult{Reason: "regex did not match", Kind: KindRegex}
}

// matchWildcard: case-sensitive glob over the full string.
func matchWildcard(text, pattern string) MatchResult {
	re := regexp.MustCompile(globToRegexp(pattern, true))
	if re.MatchString(text) {
		return MatchResult{IsMatch: true, Reason: "wildcard matched", Kind: KindWildcard}
	}
	return MatchResult{Reason: "wildcard did not match", Kind: KindWildcard}
}

func matchExact(text, pattern string) MatchResult {
	if text == pattern {
		return MatchResult{IsMatch: true, Reason: "exact match", Kind: KindExact}
	}
	return MatchResult{Reason: "text does not equal pattern", Kind: KindExact}
}

func matchContains(text, pattern string) MatchResult {
	if strings.Contains(text, pattern) {
		return MatchResult{IsMatch: true, Reason: "pattern found in text", Kind: KindContains}
	}
	return MatchResult{Reason: "pattern not found in text", Kind: KindContains}
}

// globToRegexp converts a glob pattern ('*' and '?') to an anchored or
// unanchored regular expression. Everything else is quoted literally, so
// the result always compiles.
func globToRegexp(glob string, anchored bool) string {
	var sb strings.Builder
	if anchored {
		sb.WriteString("^")
	}
	for _, r := range glob {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if anchored {
		sb.WriteString("$")
	}
	return sb.String()
}
