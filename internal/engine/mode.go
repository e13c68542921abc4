// Package engine implements the requirement/waiver classification engine:
// mode detection, pattern and waiver matching, bucketing, and verdict
// assembly. Everything here is pure and performs no I/O.
package engine

import (
	"fmt"

	"github.com/veriguard/veriguard/internal/models"
)

// Mode is the evaluation mode of one check. Exactly one mode is active per
// evaluation and it determines which buckets are meaningful.
type Mode int

const (
	// ModeInfoOnly has neither a value requirement nor waiver logic.
	// Findings are reported as informational and the check always passes.
	ModeInfoOnly Mode = iota + 1
	// ModeRequirement has a value requirement with pattern items.
	ModeRequirement
	// ModeRequirementWaiver adds waiver logic on top of ModeRequirement.
	ModeRequirementWaiver
	// ModeWaiverOnly has waiver logic without pattern items; every finding
	// is matched directly against the waiver entries.
	ModeWaiverOnly
)

func (m Mode) String() string {
	switch m {
	case ModeInfoOnly:
		return "info-only"
	case ModeRequirement:
		return "requirement"
	case ModeRequirementWaiver:
		return "requirement+waiver"
	case ModeWaiverOnly:
		return "waiver-only"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// DetectMode selects the evaluation mode from the two configuration values.
// Malformed numeric values degrade silently toward ModeInfoOnly; use
// ConfigDiagnostics to surface them as warnings.
func DetectMode(req models.Requirements, waiv models.Waivers) Mode {
	hasValue := hasValueRequirement(req)
	hasWaiver := hasWaiverLogic(waiv)

	switch {
	case hasValue && hasWaiver:
		return ModeRequirementWaiver
	case hasValue:
		return ModeRequirement
	case hasWaiver:
		return ModeWaiverOnly
	default:
		return ModeInfoOnly
	}
}

// hasValueRequirement: value present, numeric, >= 0, and at least one
// pattern item. Any parse failure yields false rather than an error.
func hasValueRequirement(req models.Requirements) bool {
	n, ok := req.Value.Number()
	return ok && n >= 0 && len(req.PatternItems) > 0
}

// hasWaiverLogic: waiver value present, numeric, and > 0. A value of
// exactly zero does not enable waiver logic; it triggers the legacy
// downgrade in the result builder instead.
func hasWaiverLogic(waiv models.Waivers) bool {
	n, ok := waiv.Value.Number()
	return ok && n > 0
}

// ConfigDiagnostics reports configuration smells that DetectMode degrades
// over silently: non-numeric values that are not the "N/A" sentinel, and a
// numeric requirement without pattern items.
func ConfigDiagnostics(cfg *models.CheckConfig) []string {
	var notes []string

	if !cfg.Requirements.Value.IsNA() {
		if _, ok := cfg.Requirements.Value.Number(); !ok {
			notes = append(notes, fmt.Sprintf("requirements.value %q is not numeric; treated as absent", cfg.Requirements.Value.Raw))
		} else if len(cfg.Requirements.PatternItems) == 0 {
			notes = append(notes, "requirements.value is set but pattern_items is empty; requirement ignored")
		}
	}

	if !cfg.Waivers.Value.IsNA() {
		if _, ok := cfg.Waivers.Value.Number(); !ok {
			notes = append(notes, fmt.Sprintf("waivers.value %q is not numeric; treated as absent", cfg.Waivers.Value.Raw))
		}
	}

	return notes
}
