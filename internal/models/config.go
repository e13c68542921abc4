// Package models defines the shared data model for check configurations,
// findings, and verdicts.
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// NASentinel marks an absent numeric configuration value.
const NASentinel = "N/A"

// FlexValue is a configuration scalar that is either a number or the
// sentinel "N/A". The raw text is preserved so malformed values degrade
// to absent instead of erroring.
type FlexValue struct {
	Raw string
}

// NA returns the absent value.
func NA() FlexValue {
	return FlexValue{Raw: NASentinel}
}

// Num returns a numeric value.
func Num(n float64) FlexValue {
	return FlexValue{Raw: strconv.FormatFloat(n, 'f', -1, 64)}
}

// IsNA reports whether the value is absent or the "N/A" sentinel.
func (v FlexValue) IsNA() bool {
	s := strings.TrimSpace(v.Raw)
	return s == "" || strings.EqualFold(s, NASentinel)
}

// Number parses the value as a float. Returns false for "N/A" and for
// anything that does not parse; callers treat that as absent.
func (v FlexValue) Number() (float64, bool) {
	if v.IsNA() {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v.Raw), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsZero reports whether the value is present and exactly zero. This is
// distinct from "N/A" and drives the legacy waiver downgrade.
func (v FlexValue) IsZero() bool {
	n, ok := v.Number()
	return ok && n == 0
}

func (v FlexValue) String() string {
	if strings.TrimSpace(v.Raw) == "" {
		return NASentinel
	}
	return v.Raw
}

// UnmarshalYAML accepts numeric or string scalars.
func (v *FlexValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("value must be a scalar, got %s", kindName(node.Kind))
	}
	v.Raw = node.Value
	return nil
}

// MarshalYAML emits the raw scalar.
func (v FlexValue) MarshalYAML() (interface{}, error) {
	if n, ok := v.Number(); ok {
		return n, nil
	}
	return v.String(), nil
}

// UnmarshalJSON accepts numbers and strings.
func (v *FlexValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v.Raw = s
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("value must be a number or string: %s", string(data))
	}
	v.Raw = strconv.FormatFloat(n, 'f', -1, 64)
	return nil
}

// MarshalJSON emits a number when the value parses as one.
func (v FlexValue) MarshalJSON() ([]byte, error) {
	if n, ok := v.Number(); ok {
		return json.Marshal(n)
	}
	return json.Marshal(v.String())
}

// WaiveItem is one tolerated-exception entry. Configurations carry these
// either as free-text strings ("NAME; # reason") or structured records.
// The raw string form is preserved for display; separator parsing lives in
// the engine's waiver parser.
type WaiveItem struct {
	Name   string
	Reason string
	Raw    string
	// structured marks a {name,reason} record as opposed to a raw string
	structured bool
}

// WaiveString builds a free-text item.
func WaiveString(s string) WaiveItem {
	return WaiveItem{Raw: s}
}

// WaiveRecord builds a structured item.
func WaiveRecord(name, reason string) WaiveItem {
	return WaiveItem{Name: name, Reason: reason, structured: true}
}

// IsStructured reports whether the item came from a {name,reason} record.
func (w WaiveItem) IsStructured() bool {
	return w.structured
}

// UnmarshalYAML accepts both scalar and mapping forms.
func (w *WaiveItem) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		w.Raw = node.Value
		return nil
	case yaml.MappingNode:
		var rec struct {
			Name   string `yaml:"name"`
			Reason string `yaml:"reason"`
		}
		if err := node.Decode(&rec); err != nil {
			return fmt.Errorf("invalid waive item: %w", err)
		}
		w.Name = rec.Name
		w.Reason = rec.Reason
		w.structured = true
		return nil
	default:
		return fmt.Errorf("waive item must be a string or a {name,reason} record, got %s", kindName(node.Kind))
	}
}

// MarshalYAML round-trips the original form.
func (w WaiveItem) MarshalYAML() (interface{}, error) {
	if w.structured {
		return map[string]string{"name": w.Name, "reason": w.Reason}, nil
	}
	return w.Raw, nil
}

// UnmarshalJSON accepts both string and object forms.
func (w *WaiveItem) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		w.Raw = s
		return nil
	}
	var rec struct {
		Name   string `json:"name"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("waive item must be a string or a {name,reason} record: %w", err)
	}
	w.Name = rec.Name
	w.Reason = rec.Reason
	w.structured = true
	return nil
}

// MarshalJSON round-trips the original form.
func (w WaiveItem) MarshalJSON() ([]byte, error) {
	if w.structured {
		return json.Marshal(map[string]string{"name": w.Name, "reason": w.Reason})
	}
	return json.Marshal(w.Raw)
}

// Match mode constants for the default pattern branch.
const (
	MatchModeExact    = "exact"
	MatchModeContains = "contains"
)

// Regex mode constants for "regex:" patterns.
const (
	RegexModeMatch  = "match"  // anchored at start
	RegexModeSearch = "search" // anywhere in the text
)

// Requirements declares the expected findings for one check.
type Requirements struct {
	Value        FlexValue `yaml:"value" json:"value"`
	PatternItems []string  `yaml:"pattern_items" json:"pattern_items"`
	MatchMode    string    `yaml:"match_mode,omitempty" json:"match_mode,omitempty"`
	RegexMode    string    `yaml:"regex_mode,omitempty" json:"regex_mode,omitempty"`
	// ReportExtras controls whether findings matching no declared pattern
	// are reported as failures. Off by default: extras are ignored.
	ReportExtras bool `yaml:"report_extras,omitempty" json:"report_extras,omitempty"`
}

// Waivers declares the tolerated exceptions for one check.
type Waivers struct {
	Value      FlexValue   `yaml:"value" json:"value"`
	WaiveItems []WaiveItem `yaml:"waive_items" json:"waive_items"`
}

// CheckConfig is one check's full configuration.
type CheckConfig struct {
	Name         string       `yaml:"name" json:"name"`
	Requirements Requirements `yaml:"requirements" json:"requirements"`
	Waivers      Waivers      `yaml:"waivers" json:"waivers"`
}

// kindName helper
func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
