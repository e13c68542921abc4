// Package artifact resolves tool reports that are published as OCI
// artifacts, so CI can consume digest-pinned report content instead of
// mutable tags.
package artifact

import (
	"fmt"
	"strings"
)

// Scheme marks a report path as an OCI reference.
const Scheme = "oci://"

// IsOCIReference reports whether the given report location should be
// resolved through a registry rather than the local filesystem.
func IsOCIReference(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), Scheme)
}

// ReportRef is a parsed OCI reference to a published report.
type ReportRef struct {
	Registry   string
	Repository string
	Tag        string
	Digest     string
}

func (r *ReportRef) String() string {
	var sb strings.Builder

	if r.Registry != "" {
		sb.WriteString(r.Registry)
		sb.WriteString("/")
	}
	sb.WriteString(r.Repository)

	if r.Digest != "" {
		sb.WriteString("@")
		sb.WriteString(r.Digest)
	} else if r.Tag != "" {
		sb.WriteString(":")
		sb.WriteString(r.Tag)
	}

	return sb.String()
}

// ParseReportRef parses an `oci://` report location. The scheme prefix
// is optional so digest-pinned bare references also work.
func ParseReportRef(ref string) (*ReportRef, error) {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimPrefix(ref, Scheme)
	if ref == "" {
		return nil, fmt.Errorf("empty report reference")
	}

	result := &ReportRef{}

	if atIdx := strings.LastIndex(ref, "@"); atIdx != -1 {
		result.Digest = ref[atIdx+1:]
		ref = ref[:atIdx]
	}

	if colonIdx := strings.LastIndex(ref, ":"); colonIdx != -1 {
		slashIdx := strings.LastIndex(ref, "/")
		if colonIdx > slashIdx {
			result.Tag = ref[colonIdx+1:]
			ref = ref[:colonIdx]
		}
	}

	slashIdx := strings.Index(ref, "/")
	if slashIdx != -1 {
		possibleRegistry := ref[:slashIdx]
		if strings.Contains(possibleRegistry, ".") || strings.Contains(possibleRegistry, ":") {
			result.Registry = possibleRegistry
			ref = ref[slashIdx+1:]
		}
	}

	result.Repository = ref

	if result.Repository == "" {
		return nil, fmt.Errorf("invalid report reference: missing repository")
	}

	return result, nil
}
