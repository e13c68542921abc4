// Package extract turns raw tool reports into flat finding lists. The
// classification engine imposes no format on findings beyond a comparable
// name; extractors own all vendor-format knowledge.
package extract

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/veriguard/veriguard/internal/config"
	"github.com/veriguard/veriguard/internal/models"
)

// Extractor parses one report stream into findings.
type Extractor interface {
	Extract(ctx context.Context, r io.Reader) ([]models.Finding, error)
}

// FromFile opens and validates the report file, then runs the extractor.
// Missing or unreadable reports are configuration errors: the check never
// reaches classification.
func FromFile(ctx context.Context, path string, ex Extractor) ([]models.Finding, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &config.Error{Path: path, Reason: "report file not found"}
		}
		return nil, &config.Error{Path: path, Reason: fmt.Sprintf("report not readable: %v", err)}
	}
	defer f.Close()

	findings, err := ex.Extract(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to extract findings from %s: %w", path, err)
	}
	return findings, nil
}
