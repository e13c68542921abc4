package extract

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/veriguard/veriguard/internal/models"
)

// JSONExtractor reads findings that are already structured: either a JSON
// array of finding objects or JSONL (one object per line).
type JSONExtractor struct{}

// NewJSONExtractor constructor
func NewJSONExtractor() *JSONExtractor {
	return &JSONExtractor{}
}

// Extract decodes the stream. An empty report yields no findings and no
// error; the engine decides what an empty finding list means per mode.
func (e *JSONExtractor) Extract(ctx context.Context, r io.Reader) ([]models.Finding, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	// Array form first.
	if trimmed[0] == '[' {
		var findings []models.Finding
		if err := json.Unmarshal(trimmed, &findings); err != nil {
			return nil, fmt.Errorf("invalid findings array: %w", err)
		}
		return findings, nil
	}

	// JSONL form.
	var findings []models.Finding
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var f models.Finding
		if err := json.Unmarshal([]byte(line), &f); err != nil {
			return nil, fmt.Errorf("invalid finding on line %d: %w", lineNo, err)
		}
		findings = append(findings, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}

	return findings, nil
}
