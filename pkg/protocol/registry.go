// SPDX-License-Identifier: MPL-2.0

package protocol

import (
	"errors"
	"io"
	"maps"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/invowk/resourcekit/pkg/issue"
)

// ErrUnknownProtocol is the cause reported for URLs no handler is registered for.
var ErrUnknownProtocol = errors.New("unknown protocol")

type (
	// Handler opens URLs of one protocol for reading.
	Handler interface {
		Open(u *url.URL) (io.ReadCloser, error)
	}

	// HandlerFunc adapts a function to Handler.
	HandlerFunc func(u *url.URL) (io.ReadCloser, error)

	// Options configures a Registry.
	Options struct {
		// Fs backs the file protocol and local archive access.
		// Defaults to the OS filesystem.
		Fs afero.Fs
		// Logger receives debug output. Defaults to a discard logger.
		Logger *log.Logger
	}

	// Registry maps protocol names to handlers. It is safe for concurrent use.
	Registry struct {
		mu       sync.RWMutex
		handlers map[string]Handler
		fs       afero.Fs
		logger   *log.Logger
	}
)

// Open calls f(u).
func (f HandlerFunc) Open(u *url.URL) (io.ReadCloser, error) { return f(u) }

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Registry{
		handlers: make(map[string]Handler),
		fs:       opts.Fs,
		logger:   opts.Logger,
	}
}

// DefaultRegistry creates a registry with the file and jar handlers installed.
func DefaultRegistry(fs afero.Fs) *Registry {
	r := NewRegistry(Options{Fs: fs})
	r.installDefaults()
	return r
}

// NewDefaultRegistry is DefaultRegistry with full options.
func NewDefaultRegistry(opts Options) *Registry {
	r := NewRegistry(opts)
	r.installDefaults()
	return r
}

func (r *Registry) installDefaults() {
	r.Register(File.Name(), fileHandler{fs: r.fs})
	r.Register(Jar.Name(), jarHandler{registry: r})
}

// Fs returns the filesystem backing the file protocol.
func (r *Registry) Fs() afero.Fs { return r.fs }

// Logger returns the registry logger.
func (r *Registry) Logger() *log.Logger { return r.logger }

// Register installs h for the named protocol, replacing any previous handler.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[strings.ToLower(name)] = h
}

// LookupOrRegister returns the handler of the named protocol, registering
// the result of create first when there is none.
func (r *Registry) LookupOrRegister(name string, create func() Handler) Handler {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(name)
	if h, ok := r.handlers[key]; ok {
		return h
	}
	h := create()
	r.handlers[key] = h
	return h
}

// Unregister removes the handler of the named protocol.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, strings.ToLower(name))
}

// Lookup returns the handler of the named protocol.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[strings.ToLower(name)]
	return h, ok
}

// Protocols returns the registered protocol names in sorted order.
func (r *Registry) Protocols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.handlers))
}

// Open opens u with the handler of its protocol. Failures are KindIO errors
// unless the handler already classified them.
func (r *Registry) Open(u *url.URL) (io.ReadCloser, error) {
	if u == nil {
		return nil, issue.InvalidArgument("open url", "<nil>", errors.New("nil url"))
	}

	h, ok := r.Lookup(u.Scheme)
	if !ok {
		return nil, issue.NewErrorContext().
			WithKind(issue.KindInvalidArgument).
			WithOperation("open url").
			WithResource(u.String()).
			WithSuggestion("register a handler for protocol " + u.Scheme).
			Wrap(ErrUnknownProtocol).
			BuildError()
	}

	rc, err := h.Open(u)
	if err != nil {
		var ae *issue.ActionableError
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, issue.IO(err, "open url", u.String())
	}
	return rc, nil
}
