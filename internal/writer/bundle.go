// Package writer puts a derived artifact set on disk. It is the
// structured-file collaborator of the catalogue: the catalogue model and
// the artifact derivation stay free of I/O, and everything that touches the
// filesystem lives here.
//
// Writing a bundle is idempotent. Files are truncated and rewritten whole,
// and optional artifacts that no longer apply (extra-bands, EAZY
// translation) are removed so the on-disk bundle always mirrors exactly one
// derivation.
package writer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// bundleExtensions are every file extension a bundle may produce, used
// when clearing stale artifacts for a catalogue name.
var bundleExtensions = []string{
	".fits", ".bands", ".bands_extra", ".eazy.bands", ".param", ".config", ".xlsx",
}

// PrepareDirectory creates the storage directory if needed and removes any
// stale artifacts left from a previous catalogue of the same name.
func PrepareDirectory(dir, name string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("prepare %s: %w", dir, err)
	}
	for _, ext := range bundleExtensions {
		path := filepath.Join(dir, name+ext)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove stale artifact %s: %w", path, err)
		}
	}
	return nil
}

// writeLines writes one line per entry with a trailing newline, creating or
// truncating the file.
func writeLines(path string, lines []string) error {
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// removeIfStale deletes an optional artifact that the current derivation
// did not produce.
func removeIfStale(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
