// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"slices"
	"testing"

	"github.com/spf13/afero"

	"github.com/invowk/resourcekit/internal/testutil"
	"github.com/invowk/resourcekit/pkg/dualio"
	"github.com/invowk/resourcekit/pkg/fspath"
	"github.com/invowk/resourcekit/pkg/lookup"
	"github.com/invowk/resourcekit/pkg/protocol"
	"github.com/invowk/resourcekit/pkg/scan"
)

type fixture struct {
	provider *Provider
	memory   *lookup.MemoryRoot
}

func newFixture(t *testing.T, writable bool) fixture {
	t.Helper()

	fsys := afero.NewMemMapFs()
	testutil.MustWriteFiles(t, fsys, map[string]string{"/cp/example/resource.txt": "Krampus!"})
	testutil.MustWriteZip(t, fsys, "/lib.jar", map[string]string{"example/archived.txt": "zipped"})

	protocols := protocol.DefaultRegistry(fsys)
	memory := lookup.NewMemoryRoot(protocols)
	loader := lookup.NewLoader(lookup.Options{
		Roots: []lookup.Root{
			lookup.NewDirRoot(fsys, "/cp"),
			lookup.NewArchiveRoot(protocols, fspath.ToURL("/lib.jar"), lookup.ArchiveOptions{}),
			memory,
		},
		Protocols: protocols,
	})

	scanners := scan.DefaultRegistry(protocols)
	scanners.Register(lookup.MemoryFactory(protocols))
	opts := ProviderOptions{Scanners: scanners}
	if writable {
		opts.Writer = memory
	}
	return fixture{provider: NewProvider(loader, opts), memory: memory}
}

func TestProvider_Item(t *testing.T) {
	t.Parallel()

	p := newFixture(t, false).provider

	tests := []struct {
		name string
		want Capability
	}{
		{"example/resource.txt", StaticContent},
		{"example/", StaticContainer},
		{"", StaticContainer},
		{"missing.txt", Capability{}},
		{"example", Capability{}},
	}
	for _, tt := range tests {
		if got := p.Item(tt.name).Capability(); got != tt.want {
			t.Errorf("Item(%q).Capability() = %+v, want %+v", tt.name, got, tt.want)
		}
	}

	it := p.Item("example/resource.txt")
	if it.URI() == nil || it.URI().String() != "file:///cp/example/resource.txt" {
		t.Errorf("URI() = %v", it.URI())
	}
	src, ok := it.Source()
	if !ok {
		t.Fatal("Source() unavailable for readable content")
	}
	data, err := dualio.ReadAll(src)
	if err != nil || string(data) != "Krampus!" {
		t.Errorf("ReadAll() = %q, %v", data, err)
	}
	if _, ok := it.Target(); ok {
		t.Error("Target() available without a writer")
	}
	if _, ok := p.Item("example/").Source(); ok {
		t.Error("containers have no source")
	}
}

func TestProvider_WritableItem(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, true)
	it := fx.provider.Item("notes/new.txt")
	if it.Capability().Exists() {
		t.Fatal("item should not exist before writing")
	}
	if !it.Capability().Writable {
		t.Fatal("content items are writable with a writer")
	}

	dst, ok := it.Target()
	if !ok {
		t.Fatal("Target() unavailable")
	}
	if err := dualio.WriteAll(dst, []byte("hello")); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	if !it.Capability().Exists() {
		t.Error("item should exist after writing")
	}
	if it.URI() != nil {
		t.Errorf("URI() = %s, want nil for a private scheme", it.URI())
	}
	src, _ := it.Source()
	data, err := dualio.ReadAll(src)
	if err != nil || string(data) != "hello" {
		t.Errorf("ReadAll() = %q, %v", data, err)
	}
}

func TestProvider_Items(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, false)
	if err := fx.memory.Put("example/memory.txt", []byte("m")); err != nil {
		t.Fatal(err)
	}

	items, err := fx.provider.Items("example/", scan.Filter{IncludeFiles: true})
	if err != nil {
		t.Fatalf("Items() error = %v", err)
	}
	var got []string
	for _, it := range items {
		got = append(got, it.Location().Name())
	}
	want := []string{"example/resource.txt", "example/archived.txt", "example/memory.txt"}
	if !slices.Equal(got, want) {
		t.Errorf("Items() = %v, want %v", got, want)
	}
	for _, it := range items {
		if _, ok := it.Source(); !ok {
			t.Errorf("item %s is not readable", it.Location())
		}
	}
}
