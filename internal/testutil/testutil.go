// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"io"
	"maps"
	"path/filepath"
	"slices"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// MustWriteFiles writes every name to data pair into fsys, creating parent
// directories.
func MustWriteFiles(t testing.TB, fsys afero.Fs, files map[string]string) {
	t.Helper()
	for _, name := range slices.Sorted(maps.Keys(files)) {
		if err := fsys.MkdirAll(filepath.Dir(name), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", name, err)
		}
		if err := afero.WriteFile(fsys, name, []byte(files[name]), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

// MustWriteZip writes a zip archive at name holding entries. Entries are
// stored in lexical order; names ending in "/" become directory entries.
func MustWriteZip(t testing.TB, fsys afero.Fs, name string, entries map[string]string) {
	t.Helper()
	if err := fsys.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	f, err := fsys.Create(name)
	if err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	defer MustClose(t, f)

	zw := zip.NewWriter(f)
	for _, entry := range slices.Sorted(maps.Keys(entries)) {
		w, err := zw.Create(entry)
		if err != nil {
			t.Fatalf("failed to add %s to %s: %v", entry, name, err)
		}
		if _, err := io.WriteString(w, entries[entry]); err != nil {
			t.Fatalf("failed to write %s to %s: %v", entry, name, err)
		}
	}
	MustClose(t, zw)
}

// MustReadAll drains and closes rc.
func MustReadAll(t testing.TB, rc io.ReadCloser) string {
	t.Helper()
	defer MustClose(t, rc)
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	return string(data)
}

// MustClose closes the given io.Closer.
// The test fails immediately if the close fails.
func MustClose(t testing.TB, c io.Closer) {
	t.Helper()
	if err := c.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}
}
