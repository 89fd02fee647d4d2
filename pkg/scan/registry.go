// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/invowk/resourcekit/pkg/issue"
	"github.com/invowk/resourcekit/pkg/protocol"
)

// ErrNoScanner is the cause reported when no factory matches a URL.
var ErrNoScanner = errors.New("no scanner for url")

type (
	// Factory creates scanners for one protocol. A nil Matcher means plain
	// protocol name equality.
	Factory struct {
		Protocol string
		New      func() Scanner
		Matcher  func(u *url.URL) bool
	}

	// Registry holds factories in registration order. It is safe for
	// concurrent use.
	Registry struct {
		mu        sync.RWMutex
		factories []Factory
	}
)

// Matches reports whether the factory can scan u.
func (f Factory) Matches(u *url.URL) bool {
	if u == nil {
		return false
	}
	if f.Matcher != nil {
		return f.Matcher(u)
	}
	return strings.EqualFold(f.Protocol, u.Scheme)
}

// Scanner returns a scanner from the factory.
func (f Factory) Scanner() Scanner { return f.New() }

// FileFactory returns the factory for file URLs.
func FileFactory(protocols *protocol.Registry) Factory {
	return Factory{
		Protocol: protocol.File.Name(),
		New: func() Scanner {
			return NewFileScanner(protocols.Fs(), protocols.Logger())
		},
	}
}

// JarFactory returns the factory for jar URLs.
func JarFactory(protocols *protocol.Registry) Factory {
	return Factory{
		Protocol: protocol.Jar.Name(),
		New: func() Scanner {
			return NewJarScanner(protocols)
		},
	}
}

// NewRegistry creates a registry holding factories in the given order.
func NewRegistry(factories ...Factory) *Registry {
	return &Registry{factories: append([]Factory(nil), factories...)}
}

// DefaultRegistry creates a registry with the file and jar factories.
func DefaultRegistry(protocols *protocol.Registry) *Registry {
	return NewRegistry(FileFactory(protocols), JarFactory(protocols))
}

// Register appends a factory. Earlier registrations keep precedence.
func (r *Registry) Register(f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories = append(r.factories, f)
}

// Match returns the first factory matching u.
func (r *Registry) Match(u *url.URL) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.factories {
		if f.Matches(u) {
			return f, true
		}
	}
	return Factory{}, false
}

// MatchAll returns every factory matching u, in registration order.
func (r *Registry) MatchAll(u *url.URL) []Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []Factory
	for _, f := range r.factories {
		if f.Matches(u) {
			matched = append(matched, f)
		}
	}
	return matched
}

// Scan scans offset with the first matching factory.
func (r *Registry) Scan(offset Offset, filter Filter) (Names, error) {
	f, ok := r.Match(offset.URL)
	if !ok {
		res := "<nil>"
		if offset.URL != nil {
			res = offset.URL.String()
		}
		return nil, issue.InvalidArgument("select scanner", res, ErrNoScanner)
	}
	return f.Scanner().Scan(offset, filter)
}
