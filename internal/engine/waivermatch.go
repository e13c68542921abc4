package engine

import (
	"regexp"
	"strings"
)

// MatchWaiver determines whether candidate is covered by any waiver entry,
// returning the matched key. Entries are tested in configuration order and
// the earliest match wins. An entry containing '*' is treated as a
// case-insensitive contains-pattern; anything else compares
// case-insensitively for equality. Matching is stateless; the classifier
// tracks which keys were used.
func MatchWaiver(candidate string, wm WaiverMap) (string, bool) {
	for _, key := range wm.Order {
		if strings.Contains(key, "*") {
			re, err := regexp.Compile("(?i)" + globToRegexp(key, false))
			if err == nil && re.MatchString(candidate) {
				return key, true
			}
			continue
		}
		if strings.EqualFold(key, candidate) {
			return key, true
		}
	}
	return "", false
}

// MatchAnyWaiver reports coverage without the matched key.
func MatchAnyWaiver(candidate string, wm WaiverMap) bool {
	_, ok := MatchWaiver(candidate, wm)
	return ok
}
