package artifact

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/go-containerregistry/pkg/crane"
	"github.com/google/go-containerregistry/pkg/name"
)

// Pin records the digest a mutable reference resolved to, so later runs
// can detect republished reports.
type Pin struct {
	Reference string `json:"reference"`
	Digest    string `json:"digest"`
	PinnedAt  string `json:"pinned_at"`
}

// ResolveDigest resolves a report reference to its current digest.
func ResolveDigest(ctx context.Context, reportRef string) (string, error) {
	parsed, err := ParseReportRef(reportRef)
	if err != nil {
		return "", err
	}

	ref, err := name.ParseReference(parsed.String())
	if err != nil {
		return "", fmt.Errorf("failed to parse report reference: %w", err)
	}

	digest, err := crane.Digest(ref.String(), crane.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to resolve digest: %w", err)
	}

	return digest, nil
}

// NewPin resolves the reference and records the digest. References that
// already carry a digest are pinned as-is.
func NewPin(ctx context.Context, reportRef string) (*Pin, error) {
	parsed, err := ParseReportRef(reportRef)
	if err != nil {
		return nil, err
	}

	pin := &Pin{
		Reference: imageName(parsed),
		PinnedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	if parsed.Digest != "" {
		pin.Digest = parsed.Digest
		return pin, nil
	}

	digest, err := ResolveDigest(ctx, reportRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve report digest: %w", err)
	}
	pin.Digest = digest
	return pin, nil
}

// VerifyPin checks that the pinned digest is still fetchable.
func VerifyPin(ctx context.Context, pin *Pin) error {
	if pin.Digest == "" {
		return fmt.Errorf("report pin has no digest to verify")
	}

	_, err := crane.Manifest(Canonical(pin), crane.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("digest verification failed: %w", err)
	}

	return nil
}

// Canonical returns the digest-pinned reference.
func Canonical(pin *Pin) string {
	if pin.Digest == "" {
		return pin.Reference
	}
	return pin.Reference + "@" + pin.Digest
}

// imageName without tag or digest
func imageName(r *ReportRef) string {
	if r.Registry != "" {
		return r.Registry + "/" + r.Repository
	}
	return r.Repository
}

// FetchReport pulls the artifact and returns the report file content.
// filePath selects a file inside the artifact filesystem; when empty the
// first regular file wins, which covers single-file report artifacts.
func FetchReport(ctx context.Context, reportRef, filePath string) ([]byte, error) {
	parsed, err := ParseReportRef(reportRef)
	if err != nil {
		return nil, err
	}

	img, err := crane.Pull(parsed.String(), crane.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to export report artifact: %w", err)
	}

	var buf bytes.Buffer
	if err := crane.Export(img, &buf); err != nil {
		return nil, fmt.Errorf("failed to export report artifact: %w", err)
	}

	data, err := findInTar(&buf, filePath)
	if err != nil {
		return nil, fmt.Errorf("report %q: %w", parsed.String(), err)
	}
	return data, nil
}

// findInTar scans a tar stream for the named file, or the first regular
// file when name is empty.
func findInTar(r io.Reader, filePath string) ([]byte, error) {
	want := path.Clean("/" + filePath)

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read artifact content: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if filePath != "" && path.Clean("/"+hdr.Name) != want {
			continue
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", hdr.Name, err)
		}
		return data, nil
	}

	if filePath != "" {
		return nil, fmt.Errorf("file %q not found in artifact", filePath)
	}
	return nil, fmt.Errorf("artifact contains no regular files")
}
