// SPDX-License-Identifier: MPL-2.0

package lookup

import (
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	"github.com/invowk/resourcekit/pkg/fspath"
	"github.com/invowk/resourcekit/pkg/protocol"
)

func writeJar(t *testing.T, fsys afero.Fs, path string, entries map[string]string) {
	t.Helper()

	f, err := fsys.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(w, content); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestArchiveRoot_Find(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeJar(t, fsys, "/app.jar", map[string]string{
		"lib/a.class":          "cafebabe",
		"example/resource.txt": "Krampus!",
	})
	protocols := protocol.DefaultRegistry(fsys)
	root := NewArchiveRoot(protocols, fspath.ToURL("/app.jar"), ArchiveOptions{})

	tests := []struct {
		name string
		want string
	}{
		{"lib/a.class", "jar:file:///app.jar!/lib/a.class"},
		{"lib/", "jar:file:///app.jar!/lib/"},
		{"", "jar:file:///app.jar!/"},
		{"lib", ""},
		{"missing", ""},
	}
	for _, tt := range tests {
		u, err := root.Find(tt.name)
		if err != nil {
			t.Fatalf("Find(%q) error = %v", tt.name, err)
		}
		got := ""
		if u != nil {
			got = u.String()
		}
		if got != tt.want {
			t.Errorf("Find(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}

	loader := NewLoader(Options{Roots: []Root{root}, Protocols: protocols})
	rc, err := loader.ResourceAsStream("example/resource.txt")
	if err != nil || rc == nil {
		t.Fatalf("ResourceAsStream() = %v, %v", rc, err)
	}
	if got := readAll(t, rc); got != "Krampus!" {
		t.Errorf("content = %q, want %q", got, "Krampus!")
	}
}

func TestArchiveRoot_ResetRereadsIndex(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeJar(t, fsys, "/app.jar", map[string]string{"a.txt": "a"})

	var hooks []func()
	root := NewArchiveRoot(protocol.DefaultRegistry(fsys), fspath.ToURL("/app.jar"), ArchiveOptions{
		OnReset: func(reset func()) { hooks = append(hooks, reset) },
	})
	if len(hooks) != 1 {
		t.Fatalf("registered %d reset hooks, want 1", len(hooks))
	}

	if u, _ := root.Find("b.txt"); u != nil {
		t.Fatal("b.txt should not exist yet")
	}
	writeJar(t, fsys, "/app.jar", map[string]string{"a.txt": "a", "b.txt": "b"})
	if u, _ := root.Find("b.txt"); u != nil {
		t.Error("index must stay cached until reset")
	}

	hooks[0]()
	if u, _ := root.Find("b.txt"); u == nil {
		t.Error("b.txt not found after reset")
	}
}

func TestArchiveRoot_MissingArchive(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	protocols := protocol.DefaultRegistry(fsys)
	root := NewArchiveRoot(protocols, fspath.ToURL("/none.jar"), ArchiveOptions{})

	if _, err := root.Find("a.txt"); err == nil {
		t.Error("Find() on a missing archive should fail")
	}
	loader := NewLoader(Options{Roots: []Root{root}, Protocols: protocols})
	if u := loader.Resource("a.txt"); u != nil {
		t.Errorf("Resource() = %s, want nil", u)
	}
	if _, err := loader.Resources("a.txt"); err == nil {
		t.Error("Resources() should surface the archive failure")
	}
}
