// SPDX-License-Identifier: MPL-2.0

package lookup

import (
	"io"
	"iter"
	"net/url"
	"strings"

	"github.com/invowk/resourcekit/pkg/protocol"
)

type (
	// Predicate selects URLs.
	Predicate func(u *url.URL) bool

	// Origin describes where a piece of code was loaded from.
	Origin struct {
		// Location is the code source: a directory or archive URL.
		Location *url.URL
		// Module names the module of the code; empty for unnamed code.
		Module string
		// Loader is the loader the code was loaded by.
		Loader ResourceLoader
		// ModuleLoader is the loader of the named module.
		ModuleLoader ResourceLoader
	}

	filtered struct {
		loader ResourceLoader
		accept Predicate
	}
)

// Filter restricts every operation of loader to URLs accepted by accept.
// Resource returns the first accepted URL across the whole delegation
// chain, not just the first URL found.
func Filter(loader ResourceLoader, accept Predicate) ResourceLoader {
	return &filtered{loader: loader, accept: accept}
}

// PrefixFilter accepts URLs whose string form starts with base.
func PrefixFilter(base *url.URL) Predicate {
	prefix := base.String()
	return func(u *url.URL) bool {
		return strings.HasPrefix(u.String(), prefix)
	}
}

// OriginFilter is PrefixFilter that also accepts entries of base when base
// is an archive file, which are addressed as jar:<base>!/<entry>.
func OriginFilter(base *url.URL) Predicate {
	direct := PrefixFilter(base)
	if !protocol.File.MatchesURL(base) || strings.HasSuffix(base.Path, "/") {
		return direct
	}
	inArchive := PrefixFilter(protocol.JarURL(base, ""))
	return func(u *url.URL) bool {
		return direct(u) || inArchive(u)
	}
}

// ForOrigin returns the loader code of origin o should use for resource
// discovery: the module loader for named modules, otherwise o.Loader
// restricted to resources below o.Location.
func ForOrigin(o Origin) ResourceLoader {
	if o.Module != "" && o.ModuleLoader != nil {
		return o.ModuleLoader
	}
	if o.Location == nil {
		return o.Loader
	}
	return Filter(o.Loader, OriginFilter(o.Location))
}

func (f *filtered) Resource(name string) *url.URL {
	for u := range f.All(name) {
		return u
	}
	return nil
}

func (f *filtered) ResourceAsStream(name string) (io.ReadCloser, error) {
	u := f.Resource(name)
	if u == nil {
		return nil, nil
	}
	return f.loader.Open(u)
}

func (f *filtered) Resources(name string) ([]*url.URL, error) {
	urls, err := f.loader.Resources(name)
	if err != nil {
		return nil, err
	}
	var accepted []*url.URL
	for _, u := range urls {
		if f.accept(u) {
			accepted = append(accepted, u)
		}
	}
	return accepted, nil
}

func (f *filtered) All(name string) iter.Seq[*url.URL] {
	return func(yield func(*url.URL) bool) {
		for u := range f.loader.All(name) {
			if f.accept(u) && !yield(u) {
				return
			}
		}
	}
}

func (f *filtered) Open(u *url.URL) (io.ReadCloser, error) {
	return f.loader.Open(u)
}
