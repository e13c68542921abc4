package artifact

import (
	"archive/tar"
	"bytes"
	"testing"
)

func TestIsOCIReference(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"oci://ghcr.io/org/reports:nightly", true},
		{"  oci://ghcr.io/org/reports", true},
		{"reports/lint.json", false},
		{"/abs/path/report.log", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsOCIReference(tt.in); got != tt.want {
			t.Errorf("IsOCIReference(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseReportRef(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ReportRef
	}{
		{
			name: "registry repo tag",
			in:   "oci://ghcr.io/org/reports:nightly",
			want: ReportRef{Registry: "ghcr.io", Repository: "org/reports", Tag: "nightly"},
		},
		{
			name: "digest pinned",
			in:   "ghcr.io/org/reports@sha256:abc123",
			want: ReportRef{Registry: "ghcr.io", Repository: "org/reports", Digest: "sha256:abc123"},
		},
		{
			name: "no registry",
			in:   "org/reports:v1",
			want: ReportRef{Repository: "org/reports", Tag: "v1"},
		},
		{
			name: "registry with port",
			in:   "localhost:5000/reports:dev",
			want: ReportRef{Registry: "localhost:5000", Repository: "reports", Tag: "dev"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReportRef(tt.in)
			if err != nil {
				t.Fatalf("ParseReportRef failed: %v", err)
			}
			if *got != tt.want {
				t.Errorf("ParseReportRef = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestParseReportRef_Invalid(t *testing.T) {
	for _, in := range []string{"", "oci://", "ghcr.io/"} {
		if _, err := ParseReportRef(in); err == nil {
			t.Errorf("ParseReportRef(%q) should fail", in)
		}
	}
}

func TestReportRefString_RoundTrip(t *testing.T) {
	refs := []string{
		"ghcr.io/org/reports:nightly",
		"ghcr.io/org/reports@sha256:abc123",
		"org/reports",
	}

	for _, in := range refs {
		parsed, err := ParseReportRef(in)
		if err != nil {
			t.Fatalf("ParseReportRef(%q) failed: %v", in, err)
		}
		if got := parsed.String(); got != in {
			t.Errorf("round trip %q -> %q", in, got)
		}
	}
}

func TestCanonical(t *testing.T) {
	pin := &Pin{Reference: "ghcr.io/org/reports", Digest: "sha256:abc"}
	if got := Canonical(pin); got != "ghcr.io/org/reports@sha256:abc" {
		t.Errorf("Canonical = %q", got)
	}

	unpinned := &Pin{Reference: "ghcr.io/org/reports"}
	if got := Canonical(unpinned); got != "ghcr.io/org/reports" {
		t.Errorf("Canonical without digest = %q", got)
	}
}

func makeTar(t *testing.T, files map[string]string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, content := range files {
		if err := tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0644,
			Size:     int64(len(content)),
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestFindInTar_NamedFile(t *testing.T) {
	buf := makeTar(t, map[string]string{
		"reports/lint.json": `[{"name":"ERR-100"}]`,
	})

	data, err := findInTar(buf, "reports/lint.json")
	if err != nil {
		t.Fatalf("findInTar failed: %v", err)
	}
	if string(data) != `[{"name":"ERR-100"}]` {
		t.Errorf("content = %q", data)
	}
}

func TestFindInTar_FirstFileWhenUnnamed(t *testing.T) {
	buf := makeTar(t, map[string]string{
		"report.log": "Warning: LATCH_A inferred",
	})

	data, err := findInTar(buf, "")
	if err != nil {
		t.Fatalf("findInTar failed: %v", err)
	}
	if len(data) == 0 {
		t.Errorf("expected content")
	}
}

func TestFindInTar_NotFound(t *testing.T) {
	buf := makeTar(t, map[string]string{"other.txt": "x"})

	if _, err := findInTar(buf, "report.json"); err == nil {
		t.Errorf("expected error for absent file")
	}
}
