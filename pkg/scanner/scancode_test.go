package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
)

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestParseScanCodeDetections(t *testing.T) {
	hits, err := ParseScanCode(readTestdata(t, "scancode-v32.json"), "left-pad")
	if err != nil {
		t.Fatal(err)
	}
	want := []Hit{
		{Expression: "WTFPL", Score: 100, File: "LICENSE", StartLine: 1, EndLine: 13},
		{Expression: "MIT AND WTFPL", Score: 80, File: "package.json", StartLine: 8, EndLine: 10},
		{Expression: "GPL-3.0-only", Score: 60, File: "test/fixture.js", StartLine: 1, EndLine: 4},
	}
	if len(hits) != len(want) {
		t.Fatalf("got %d hits: %+v", len(hits), hits)
	}
	for i := range want {
		if hits[i] != want[i] {
			t.Errorf("hit %d = %+v, want %+v", i, hits[i], want[i])
		}
	}
}

func TestParseScanCodeLegacy(t *testing.T) {
	hits, err := ParseScanCode(readTestdata(t, "scancode-legacy.json"), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits: %+v", len(hits), hits)
	}
	if h := hits[0]; h.Expression != "Apache-2.0" || h.Score != 100 || h.StartLine != 180 {
		t.Errorf("hit 0 = %+v", h)
	}
	if h := hits[1]; h.Expression != "Apache-2.0 OR LicenseRef-scancode-proprietary-foo" || h.Score != 50 || h.EndLine != 201 {
		t.Errorf("hit 1 = %+v", h)
	}
}

func TestParseScanCodeLegacyUnknownKeys(t *testing.T) {
	report := `{"files": [
		{"path": "COPYING", "type": "file",
		 "licenses": [
			{"key": "mit", "score": 70, "start_line": 1, "end_line": 3, "spdx_license_key": "MIT"},
			{"key": "mit", "score": 88, "start_line": 10, "end_line": 30, "spdx_license_key": "MIT"}
		 ],
		 "license_expressions": ["mit", "LicenseRef-acme OR commercial"]},
		{"path": "NOTICE", "type": "file",
		 "licenses": [],
		 "license_expressions": ["LicenseRef-acme"]}
	]}`
	hits, err := ParseScanCode([]byte(report), "")
	if err != nil {
		t.Fatal(err)
	}
	want := []Hit{
		{Expression: "MIT", Score: 88, File: "COPYING", StartLine: 10, EndLine: 30},
		{Expression: "LicenseRef-acme OR commercial", Score: 88, File: "COPYING", StartLine: 10, EndLine: 30},
	}
	if len(hits) != len(want) {
		t.Fatalf("got %d hits: %+v", len(hits), hits)
	}
	for i := range want {
		if hits[i] != want[i] {
			t.Errorf("hit %d = %+v, want %+v", i, hits[i], want[i])
		}
	}
}

func TestParseScanCodeInvalid(t *testing.T) {
	_, err := ParseScanCode([]byte("{not json"), "")
	if !errors.Is(err, errors.ErrCodeSource) {
		t.Errorf("err = %v, want SOURCE_ERROR", err)
	}
}

func TestMergeHits(t *testing.T) {
	hits, _ := ParseScanCode(readTestdata(t, "scancode-v32.json"), "left-pad")
	set := Merge(hits)
	if got := set.Licenses(); len(got) != 2 || got[0] != "MIT AND WTFPL" || got[1] != "WTFPL" {
		t.Errorf("Licenses = %v", got)
	}
	// (100 + 80) / 2
	if got := set.Confidence(); got != 90 {
		t.Errorf("Confidence = %d, want 90", got)
	}
}

func TestScanCodeCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a unix shell")
	}
	dir := t.TempDir()
	report := filepath.Join("testdata", "scancode-v32.json")
	abs, _ := filepath.Abs(report)
	script := filepath.Join(dir, "scancode")
	if err := os.WriteFile(script, []byte("#!/bin/sh\ncat "+abs+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	s := NewScanCode(script, log.New(os.Stderr))
	hits, err := s.Scan(context.Background(), filepath.Join(dir, "left-pad"))
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 3 {
		t.Errorf("got %d hits", len(hits))
	}

	failing := filepath.Join(dir, "broken")
	os.WriteFile(failing, []byte("#!/bin/sh\necho boom >&2\nexit 3\n"), 0o755)
	_, err = NewScanCode(failing, nil).Scan(context.Background(), dir)
	if !errors.Is(err, errors.ErrCodeSource) {
		t.Errorf("err = %v, want SOURCE_ERROR", err)
	}
}
