// Package config loads check configuration documents from disk.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/veriguard/veriguard/internal/models"
	"gopkg.in/yaml.v3"
)

// Error is a configuration error: the check never reaches classification
// and the CLI surfaces it as a CONFIG_ERROR verdict.
type Error struct {
	Path   string
	Reason string
}

func (e *Error) Error() string {
	if e.Path == "" {
		return "config error: " + e.Reason
	}
	return fmt.Sprintf("config error in %s: %s", e.Path, e.Reason)
}

// AsConfigError unwraps err into *Error.
func AsConfigError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// document is the on-disk shape: either a multi-check file with a
// `checks:` list, or a single check at the top level.
type document struct {
	Checks []models.CheckConfig `yaml:"checks"`
}

// Load reads one YAML configuration file and returns its checks in
// declaration order. Missing, unreadable, empty, or undecodable files are
// all reported as *Error.
func Load(path string) ([]models.CheckConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Path: path, Reason: "file not found"}
		}
		return nil, &Error{Path: path, Reason: fmt.Sprintf("not readable: %v", err)}
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, &Error{Path: path, Reason: "file is empty"}
	}

	return Parse(path, data)
}

// Parse decodes configuration bytes; path is used only for error messages.
func Parse(path string, data []byte) ([]models.CheckConfig, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Path: path, Reason: fmt.Sprintf("invalid YAML: %v", err)}
	}

	if len(doc.Checks) > 0 {
		for i := range doc.Checks {
			if err := validate(&doc.Checks[i]); err != nil {
				return nil, &Error{Path: path, Reason: err.Error()}
			}
		}
		return doc.Checks, nil
	}

	// Single-check form.
	var single models.CheckConfig
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, &Error{Path: path, Reason: fmt.Sprintf("invalid YAML: %v", err)}
	}
	if err := validate(&single); err != nil {
		return nil, &Error{Path: path, Reason: err.Error()}
	}
	return []models.CheckConfig{single}, nil
}

// validate rejects only structurally unusable checks. Malformed numeric
// values are deliberately not errors here; mode detection degrades over
// them and ConfigDiagnostics surfaces them as warnings.
func validate(cfg *models.CheckConfig) error {
	if cfg.Name == "" {
		return errors.New("check is missing a name")
	}

	switch cfg.Requirements.MatchMode {
	case "", models.MatchModeExact, models.MatchModeContains:
	default:
		return fmt.Errorf("check %q: match_mode must be %q or %q", cfg.Name, models.MatchModeExact, models.MatchModeContains)
	}

	switch cfg.Requirements.RegexMode {
	case "", models.RegexModeMatch, models.RegexModeSearch:
	default:
		return fmt.Errorf("check %q: regex_mode must be %q or %q", cfg.Name, models.RegexModeMatch, models.RegexModeSearch)
	}

	return nil
}
