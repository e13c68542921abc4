package differ

import (
	"strings"

	"github.com/wI2L/jsondiff"
)

// Translate patches to english
func Translate(patches jsondiff.Patch) []string {
	if len(patches) == 0 {
		return nil
	}

	var translations []string
	seen := make(map[string]bool)

	for _, op := range patches {
		translation := translateOperation(op)
		if translation != "" && !seen[translation] {
			seen[translation] = true
			translations = append(translations, translation)
		}
	}

	return translations
}

func translateOperation(op jsondiff.Operation) string {
	path := op.Path

	switch op.Type {
	case jsondiff.OperationAdd:
		return translateAdd(path)
	case jsondiff.OperationRemove:
		return translateRemove(path)
	case jsondiff.OperationReplace:
		return translateReplace(path)
	default:
		return ""
	}
}

// translateAdd
func translateAdd(path string) string {
	pathLower := strings.ToLower(path)

	if strings.Contains(pathLower, "/details") {
		return "New detail reported."
	}
	if strings.Contains(pathLower, "/groups/error01") {
		return "⚠️  CRITICAL: Missing-findings group grew."
	}
	if strings.Contains(pathLower, "/groups/") {
		return "Group membership grew."
	}

	return "Verdict gained a new field."
}

// translateRemove
func translateRemove(path string) string {
	pathLower := strings.ToLower(path)

	if strings.Contains(pathLower, "/details") {
		return "A detail is no longer reported."
	}
	if strings.Contains(pathLower, "/groups/error01") {
		return "Missing-findings group shrank."
	}
	if strings.Contains(pathLower, "/groups/") {
		return "Group membership shrank."
	}

	return "Verdict lost a field."
}

// translateReplace
func translateReplace(path string) string {
	pathLower := strings.ToLower(path)

	if strings.HasSuffix(pathLower, "/is_pass") {
		return "⚠️  CRITICAL: Pass/fail outcome flipped."
	}
	if strings.HasSuffix(pathLower, "/value") {
		return "Requirement value changed."
	}
	if strings.Contains(pathLower, "/severity") {
		return "A detail changed severity."
	}
	if strings.Contains(pathLower, "/tag") {
		return "A detail changed its waiver tag."
	}
	if strings.Contains(pathLower, "/message") {
		return "Documentation update."
	}

	return "Verdict field modified."
}
