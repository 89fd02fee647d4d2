// SPDX-License-Identifier: MPL-2.0

package lookup

import (
	"io"
	"iter"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/invowk/resourcekit/pkg/dualio"
	"github.com/invowk/resourcekit/pkg/protocol"
)

type (
	// ResourceLoader resolves resource names to URLs.
	ResourceLoader interface {
		// Resource returns the first URL for name, or nil.
		Resource(name string) *url.URL
		// ResourceAsStream opens the first URL for name. It returns nil, nil
		// when the resource does not exist.
		ResourceAsStream(name string) (io.ReadCloser, error)
		// Resources returns every URL for name across the delegation chain.
		Resources(name string) ([]*url.URL, error)
		// All lazily yields every URL for name.
		All(name string) iter.Seq[*url.URL]
		// Open opens a URL produced by this loader.
		Open(u *url.URL) (io.ReadCloser, error)
	}

	// Options configures a Loader.
	Options struct {
		// Name identifies the loader in log output.
		Name string
		// Parent is asked before the loader's own roots.
		Parent ResourceLoader
		// Roots are searched in order.
		Roots []Root
		// Protocols opens URLs. Defaults to protocol.DefaultRegistry over
		// the OS filesystem.
		Protocols *protocol.Registry
		// Logger defaults to the protocol registry logger.
		Logger *log.Logger
	}

	// Loader is a parent-first resource loader over a list of roots.
	Loader struct {
		name      string
		parent    ResourceLoader
		protocols *protocol.Registry
		logger    *log.Logger

		mu    sync.RWMutex
		roots []Root
	}
)

// NewLoader creates a loader.
func NewLoader(opts Options) *Loader {
	if opts.Protocols == nil {
		opts.Protocols = protocol.DefaultRegistry(afero.NewOsFs())
	}
	if opts.Logger == nil {
		opts.Logger = opts.Protocols.Logger()
	}
	return &Loader{
		name:      opts.Name,
		parent:    opts.Parent,
		protocols: opts.Protocols,
		logger:    opts.Logger,
		roots:     append([]Root(nil), opts.Roots...),
	}
}

// WithParent returns a loader over the same roots delegating to parent.
func (l *Loader) WithParent(parent ResourceLoader) *Loader {
	return &Loader{
		name:      l.name,
		parent:    parent,
		protocols: l.protocols,
		logger:    l.logger,
		roots:     l.Roots(),
	}
}

// Parent returns the parent loader, or nil.
func (l *Loader) Parent() ResourceLoader { return l.parent }

// Protocols returns the registry used to open URLs.
func (l *Loader) Protocols() *protocol.Registry { return l.protocols }

// AddRoot appends a root to the search order.
func (l *Loader) AddRoot(r Root) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.roots = append(l.roots, r)
}

// Roots returns the loader's own roots.
func (l *Loader) Roots() []Root {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Root(nil), l.roots...)
}

// Resource returns the first URL for name, asking the parent first. Root
// failures are logged and treated as absence.
func (l *Loader) Resource(name string) *url.URL {
	if l.parent != nil {
		if u := l.parent.Resource(name); u != nil {
			return u
		}
	}
	for _, r := range l.Roots() {
		u, err := r.Find(name)
		if err != nil {
			l.logger.Debug("resource lookup failed", "loader", l.name, "root", r, "name", name, "err", err)
			continue
		}
		if u != nil {
			return u
		}
	}
	return nil
}

// ResourceAsStream opens the first URL for name.
func (l *Loader) ResourceAsStream(name string) (io.ReadCloser, error) {
	u := l.Resource(name)
	if u == nil {
		return nil, nil
	}
	return l.Open(u)
}

// Resources returns the URLs of the parent followed by those of every root.
func (l *Loader) Resources(name string) ([]*url.URL, error) {
	var urls []*url.URL
	if l.parent != nil {
		parentURLs, err := l.parent.Resources(name)
		if err != nil {
			return nil, err
		}
		urls = append(urls, parentURLs...)
	}
	for _, r := range l.Roots() {
		u, err := r.Find(name)
		if err != nil {
			return nil, err
		}
		if u != nil {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

// All lazily yields the URLs Resources would return. Root failures are
// logged and skipped.
func (l *Loader) All(name string) iter.Seq[*url.URL] {
	return func(yield func(*url.URL) bool) {
		if l.parent != nil {
			for u := range l.parent.All(name) {
				if !yield(u) {
					return
				}
			}
		}
		for _, r := range l.Roots() {
			u, err := r.Find(name)
			if err != nil {
				l.logger.Debug("resource lookup failed", "loader", l.name, "root", r, "name", name, "err", err)
				continue
			}
			if u != nil && !yield(u) {
				return
			}
		}
	}
}

// Open opens u through the protocol registry.
func (l *Loader) Open(u *url.URL) (io.ReadCloser, error) {
	return l.protocols.Open(u)
}

// HasResource reports whether loader resolves name.
func HasResource(loader ResourceLoader, name string) bool {
	return loader.Resource(name) != nil
}

// ResourceCount returns the number of URLs loader resolves for name.
func ResourceCount(loader ResourceLoader, name string) int {
	n := 0
	for range loader.All(name) {
		n++
	}
	return n
}

// ResourceAsChannel opens the first URL for name as a channel. It returns
// nil, nil when the resource does not exist.
func ResourceAsChannel(loader ResourceLoader, name string) (dualio.ReadChannel, error) {
	rc, err := loader.ResourceAsStream(name)
	if err != nil || rc == nil {
		return nil, err
	}
	return dualio.ChannelFromReader(rc), nil
}

// ResourceSource returns a dual-access source over the first URL for name,
// or false when the resource does not exist.
func ResourceSource(loader ResourceLoader, name string) (dualio.Source, bool) {
	u := loader.Resource(name)
	if u == nil {
		return nil, false
	}
	return dualio.SourceFromURL(loader, u), true
}
