package extract

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/veriguard/veriguard/internal/models"
)

// RegexExtractor applies one expression line-by-line to a raw text report.
// The expression must define a named capture group `name`; `line` and
// `file` groups are optional and populate the finding metadata.
type RegexExtractor struct {
	re *regexp.Regexp
}

// NewRegexExtractor compiles the expression and checks the capture groups.
func NewRegexExtractor(expr string) (*RegexExtractor, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid extraction regex: %w", err)
	}

	hasName := false
	for _, g := range re.SubexpNames() {
		if g == "name" {
			hasName = true
			break
		}
	}
	if !hasName {
		return nil, fmt.Errorf("extraction regex must define a (?P<name>...) group")
	}

	return &RegexExtractor{re: re}, nil
}

// Extract scans the report line by line. Lines that do not match are
// simply skipped; a report full of noise produces an empty finding list.
func (e *RegexExtractor) Extract(ctx context.Context, r io.Reader) ([]models.Finding, error) {
	var findings []models.Finding

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		m := e.re.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}

		f := models.Finding{}
		for i, g := range e.re.SubexpNames() {
			if i >= len(m) {
				break
			}
			switch g {
			case "name":
				f.Name = m[i]
			case "line":
				if n, err := strconv.Atoi(m[i]); err == nil {
					f.LineNumber = n
				}
			case "file":
				f.FilePath = m[i]
			}
		}
		if f.Name == "" {
			continue
		}
		findings = append(findings, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}

	return findings, nil
}
