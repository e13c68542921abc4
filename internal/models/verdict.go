package models

// Severity of a verdict detail record.
type Severity string

const (
	SeverityInfo Severity = "INFO"
	SeverityWarn Severity = "WARN"
	SeverityFail Severity = "FAIL"
)

// Detail tags used alongside severity.
const (
	TagWaiver       = "[WAIVER]"
	TagWaivedAsInfo = "[WAIVED_AS_INFO]"
	TagWaivedInfo   = "[WAIVED_INFO]"
)

// ConfigErrorValue is the verdict value for checks that never reached
// classification because their configuration was unusable.
const ConfigErrorValue = "CONFIG_ERROR"

// Detail is one severity-tagged record in a verdict.
type Detail struct {
	Name       string   `json:"name"`
	Severity   Severity `json:"severity"`
	Tag        string   `json:"tag,omitempty"`
	Message    string   `json:"message,omitempty"`
	LineNumber int      `json:"line_number,omitempty"`
	FilePath   string   `json:"file_path,omitempty"`
}

// Group is a named, described collection of detail names.
type Group struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
}

// Stable group identifiers. A group with no members is omitted from the
// verdict entirely.
const (
	GroupMissing      = "ERROR01"
	GroupUnusedWaiver = "WARN01"
	GroupFound        = "INFO01"
	GroupWaived       = "INFO02"
	GroupLegacyWaiver = "INFO03"
)

// Verdict is the engine's structured pass/fail output.
type Verdict struct {
	Value   string           `json:"value"`
	IsPass  bool             `json:"is_pass"`
	Details []Detail         `json:"details"`
	Groups  map[string]Group `json:"groups"`
}
