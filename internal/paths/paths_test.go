package paths

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOutPaths(t *testing.T) {
	base := t.TempDir()
	b := New(base)
	ts := time.Date(2025, 9, 30, 12, 0, 0, 0, time.UTC)

	wantDir := filepath.Join(base, "2025", "09", "30")
	if b.OutDir(ts) != wantDir {
		t.Fatalf("OutDir: got %q want %q", b.OutDir(ts), wantDir)
	}
	if b.Payload(ts) != filepath.Join(wantDir, "payload.json") {
		t.Fatalf("Payload path incorrect")
	}
	if b.Raw(ts) != filepath.Join(wantDir, "raw.txt") {
		t.Fatalf("Raw path incorrect")
	}
	if b.Meta(ts) != filepath.Join(wantDir, "meta.json") {
		t.Fatalf("Meta path incorrect")
	}
}

func TestDefaultBase(t *testing.T) {
	if New("").Base != "out" {
		t.Fatalf("expected default base dir")
	}
}

func TestEnsureOutDirAndOverwrite(t *testing.T) {
	base := t.TempDir()
	b := New(base)
	ts := time.Date(2025, 9, 30, 12, 0, 0, 0, time.UTC)

	if err := b.EnsureOutDir(ts); err != nil {
		t.Fatalf("EnsureOutDir error: %v", err)
	}
	payload := b.Payload(ts)
	if err := CheckOverwrite([]string{payload, ""}, false); err != nil {
		t.Fatalf("missing files should pass the guard: %v", err)
	}
	if err := os.WriteFile(payload, []byte("existing"), 0o644); err != nil {
		t.Fatalf("write existing: %v", err)
	}
	if err := CheckOverwrite([]string{payload}, false); err == nil {
		t.Fatalf("expected overwrite guard to fail")
	}
	if err := CheckOverwrite([]string{payload}, true); err != nil {
		t.Fatalf("overwrite=true should not error: %v", err)
	}
}
