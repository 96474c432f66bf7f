package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.txt")
	if err := os.WriteFile(path, []byte("x\n```json\n{\"a\":1}\n```\n```json\n{\"b\":2}\n```"), 0o644); err != nil {
		t.Fatalf("write raw: %v", err)
	}
	out := captureStdout(t)
	if code := run([]string{"extract", "--in", path}); code != 0 {
		t.Fatalf("extract returned non-zero: %d", code)
	}
	if out.String() != "{\"a\":1}\n" {
		t.Fatalf("extract mismatch: %q", out.String())
	}
}

func TestExtractFromStdinWithoutBlock(t *testing.T) {
	orig := stdin
	t.Cleanup(func() { stdin = orig })
	stdin = strings.NewReader("plain text")
	out := captureStdout(t)
	if code := run([]string{"extract"}); code != 0 {
		t.Fatalf("extract returned non-zero: %d", code)
	}
	if out.String() != "plain text\n" {
		t.Fatalf("extract mismatch: %q", out.String())
	}
}

func TestExtractMissingFile(t *testing.T) {
	if code := run([]string{"extract", "--in", filepath.Join(t.TempDir(), "nope")}); code != 1 {
		t.Fatalf("expected failure, got %d", code)
	}
}
