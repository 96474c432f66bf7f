package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	defaultBaseDir = "out"

	PayloadFilename = "payload.json"
	RawFilename     = "raw.txt"
	MetaFilename    = "meta.json"
)

// Builder constructs output paths rooted at Base (default "out").
type Builder struct {
	Base string
}

func New(base string) *Builder {
	if base == "" {
		base = defaultBaseDir
	}
	return &Builder{Base: base}
}

// OutDir returns the date-based output directory: Base/YYYY/MM/DD
func (b *Builder) OutDir(t time.Time) string {
	y, m, d := t.UTC().Date()
	return filepath.Join(b.Base, fmt.Sprintf("%04d", y), fmt.Sprintf("%02d", int(m)), fmt.Sprintf("%02d", d))
}

// Payload is where the extracted response is written.
func (b *Builder) Payload(t time.Time) string {
	return filepath.Join(b.OutDir(t), PayloadFilename)
}

// Raw is where the unprocessed response text is written.
func (b *Builder) Raw(t time.Time) string {
	return filepath.Join(b.OutDir(t), RawFilename)
}

func (b *Builder) Meta(t time.Time) string {
	return filepath.Join(b.OutDir(t), MetaFilename)
}

// EnsureOutDir creates the date-based directory if it does not exist.
func (b *Builder) EnsureOutDir(t time.Time) error {
	dir := b.OutDir(t)
	return os.MkdirAll(dir, 0o755)
}

// CheckOverwrite enforces overwrite behavior. If any path exists and overwrite is false, returns error.
func CheckOverwrite(paths []string, overwrite bool) error {
	if overwrite {
		return nil
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return fmt.Errorf("refusing to overwrite existing file: %s (use --overwrite)", p)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checking file: %s: %w", p, err)
		}
	}
	return nil
}
