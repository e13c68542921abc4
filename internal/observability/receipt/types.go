// Package receipt provides stable evidence artifacts for audit/compliance.
package receipt

// ReceiptSchemaVersion current
const ReceiptSchemaVersion = "1.0"

// Receipt structure
type Receipt struct {
	SchemaVersion string          `json:"schema_version"`
	OpID          string          `json:"op_id"`
	TsStart       string          `json:"ts_start"`
	TsEnd         string          `json:"ts_end"`
	Command       string          `json:"command"`
	Args          []string        `json:"args"`
	ArgsRedacted  bool            `json:"args_redacted,omitempty"` // true if any args were sanitized
	Result        Result          `json:"result"`
	Config        *ConfigRef      `json:"config,omitempty"`
	Report        *ReportRef      `json:"report,omitempty"`
	Checks        []CheckSummary  `json:"checks,omitempty"`
	Drift         *DriftSummary   `json:"drift,omitempty"`
	Policy        *PolicySummary  `json:"policy,omitempty"`
}

// Result status
type Result struct {
	Status string `json:"status"` // "success" or "fail"
	Error  string `json:"error,omitempty"`
}

// ConfigRef detail
type ConfigRef struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256,omitempty"`
}

// ReportRef detail. OCIDigest is set when the report was pulled from a
// registry instead of the filesystem.
type ReportRef struct {
	Path      string `json:"path"`
	SHA256    string `json:"sha256,omitempty"`
	OCIDigest string `json:"oci_digest,omitempty"`
}

// CheckSummary detail
type CheckSummary struct {
	Name    string `json:"name"`
	Mode    string `json:"mode"`
	Value   string `json:"value"`
	Passed  bool   `json:"passed"`
	Found   int    `json:"found"`
	Missing int    `json:"missing"`
	Waived  int    `json:"waived"`
	Unused  int    `json:"unused_waivers"`
}

// DriftSummary detail
type DriftSummary struct {
	Critical int    `json:"critical"`
	Benign   int    `json:"benign"`
	Summary  string `json:"summary,omitempty"`
}

// PolicySummary detail
type PolicySummary struct {
	Preset   string    `json:"preset,omitempty"` // baseline|strict|custom
	Status   string    `json:"status"`           // pass|warn|fail
	RulesHit []RuleHit `json:"rules_hit,omitempty"`
}

// RuleHit detail
type RuleHit struct {
	Name        string   `json:"name"`
	Severity    string   `json:"severity"` // warn|error
	ControlRefs []string `json:"control_refs,omitempty"`
}
