// SPDX-License-Identifier: MPL-2.0

package lookup

import (
	"errors"
	"slices"
	"testing"

	"github.com/spf13/afero"

	"github.com/invowk/resourcekit/pkg/dualio"
	"github.com/invowk/resourcekit/pkg/issue"
	"github.com/invowk/resourcekit/pkg/protocol"
	"github.com/invowk/resourcekit/pkg/scan"
)

func TestMemoryRoot_PutFindOpen(t *testing.T) {
	t.Parallel()

	protocols := protocol.DefaultRegistry(afero.NewMemMapFs())
	root := NewMemoryRoot(protocols)
	if err := root.Put("/example//resource.txt", []byte("Krampus!")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	loader := NewLoader(Options{Roots: []Root{root}, Protocols: protocols})
	rc, err := loader.ResourceAsStream("example/resource.txt")
	if err != nil || rc == nil {
		t.Fatalf("ResourceAsStream() = %v, %v", rc, err)
	}
	if got := readAll(t, rc); got != "Krampus!" {
		t.Errorf("content = %q, want %q", got, "Krampus!")
	}

	if u := loader.Resource("example/"); u == nil || u.Host != root.ID().String() {
		t.Errorf("Resource(example/) = %v, want a URL of the root", u)
	}
	if u := loader.Resource("example"); u != nil {
		t.Errorf("Resource(example) = %s, want nil", u)
	}

	if !root.Remove("example/resource.txt") {
		t.Error("Remove() = false for a stored name")
	}
	if HasResource(loader, "example/resource.txt") {
		t.Error("removed resource still resolves")
	}
}

func TestMemoryRoot_Target(t *testing.T) {
	t.Parallel()

	protocols := protocol.DefaultRegistry(afero.NewMemMapFs())
	root := NewMemoryRoot(protocols)

	dst, err := root.Target("out/data.bin")
	if err != nil {
		t.Fatalf("Target() error = %v", err)
	}
	if err := dualio.WriteAll(dst, []byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	loader := NewLoader(Options{Roots: []Root{root}, Protocols: protocols})
	src, ok := ResourceSource(loader, "out/data.bin")
	if !ok {
		t.Fatal("written resource not found")
	}
	data, err := dualio.ReadAll(src)
	if err != nil || !slices.Equal(data, []byte{1, 2, 3}) {
		t.Errorf("ReadAll() = %v, %v", data, err)
	}

	if _, err := root.Target("out/"); !errors.Is(err, issue.ErrInvalidArgument) {
		t.Errorf("Target(container) error = %v, want invalid argument", err)
	}
}

func TestMemoryRoot_DistinctRoots(t *testing.T) {
	t.Parallel()

	protocols := protocol.DefaultRegistry(afero.NewMemMapFs())
	a, b := NewMemoryRoot(protocols), NewMemoryRoot(protocols)
	if err := a.Put("x", []byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := b.Put("x", []byte("b")); err != nil {
		t.Fatal(err)
	}

	ua, _ := a.Find("x")
	ub, _ := b.Find("x")
	if ua.String() == ub.String() {
		t.Fatalf("roots share URL %s", ua)
	}
	rc, err := protocols.Open(ub)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := readAll(t, rc); got != "b" {
		t.Errorf("content = %q, want b", got)
	}
}

func TestMemoryFactory_Scan(t *testing.T) {
	t.Parallel()

	protocols := protocol.DefaultRegistry(afero.NewMemMapFs())
	root := NewMemoryRoot(protocols)
	for _, name := range []string{"a.txt", "dir/b.txt"} {
		if err := root.Put(name, []byte(name)); err != nil {
			t.Fatal(err)
		}
	}

	scanners := scan.DefaultRegistry(protocols)
	scanners.Register(MemoryFactory(protocols))

	names, err := scanners.Scan(scan.Offset{URL: root.URL()}, scan.DefaultFilter())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	got, err := scan.Collect(names)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"", "a.txt", "dir/", "dir/b.txt"}
	if !slices.Equal(got, want) {
		t.Errorf("Scan() = %q, want %q", got, want)
	}

	dir, _ := root.Find("dir/")
	names, err = scanners.Scan(scan.Offset{URL: dir, Name: "dir/"}, scan.DefaultFilter())
	if err != nil {
		t.Fatalf("Scan(dir/) error = %v", err)
	}
	got, _ = scan.Collect(names)
	if !slices.Equal(got, []string{"dir/", "dir/b.txt"}) {
		t.Errorf("Scan(dir/) = %q", got)
	}
}
