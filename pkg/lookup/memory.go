// SPDX-License-Identifier: MPL-2.0

package lookup

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/invowk/resourcekit/pkg/dualio"
	"github.com/invowk/resourcekit/pkg/issue"
	"github.com/invowk/resourcekit/pkg/location"
	"github.com/invowk/resourcekit/pkg/protocol"
	"github.com/invowk/resourcekit/pkg/scan"
)

// MemoryScheme is the protocol of memory root URLs: mem://<root-id>/<name>.
const MemoryScheme = "mem"

type (
	// MemoryRoot is a writable in-memory root. Each root has a random id
	// used as the URL host, so URLs of different roots never collide.
	MemoryRoot struct {
		id  uuid.UUID
		url *url.URL

		mu      sync.RWMutex
		entries map[string][]byte
	}

	// memoryHandler opens mem URLs of every root registered with it.
	memoryHandler struct {
		mu    sync.RWMutex
		roots map[string]*MemoryRoot
	}

	memoryScanner struct {
		handler *memoryHandler
	}

	// memoryWriter stores its buffer on Close.
	memoryWriter struct {
		bytes.Buffer
		root *MemoryRoot
		name string
	}
)

// NewMemoryRoot creates an empty memory root and makes its URLs openable
// through protocols.
func NewMemoryRoot(protocols *protocol.Registry) *MemoryRoot {
	id := uuid.New()
	r := &MemoryRoot{
		id:      id,
		url:     &url.URL{Scheme: MemoryScheme, Host: id.String(), Path: "/"},
		entries: make(map[string][]byte),
	}
	memoryHandlerOf(protocols).add(r)
	return r
}

// MemoryFactory returns the scan factory for mem URLs of roots created with
// protocols.
func MemoryFactory(protocols *protocol.Registry) scan.Factory {
	return scan.Factory{
		Protocol: MemoryScheme,
		New: func() scan.Scanner {
			return memoryScanner{handler: memoryHandlerOf(protocols)}
		},
	}
}

func memoryHandlerOf(protocols *protocol.Registry) *memoryHandler {
	h := protocols.LookupOrRegister(MemoryScheme, func() protocol.Handler {
		return &memoryHandler{roots: make(map[string]*MemoryRoot)}
	})
	mh, ok := h.(*memoryHandler)
	if !ok {
		panic(fmt.Sprintf("protocol %q is registered with a foreign handler %T", MemoryScheme, h))
	}
	return mh
}

// ID returns the root identity.
func (r *MemoryRoot) ID() uuid.UUID { return r.id }

// URL returns the root container URL.
func (r *MemoryRoot) URL() *url.URL {
	u := *r.url
	return &u
}

func (r *MemoryRoot) String() string { return r.url.String() }

// Put stores data under a content name. The data is copied.
func (r *MemoryRoot) Put(name string, data []byte) error {
	n, ok := location.NormalizeAsContent(name)
	if !ok || location.IsContainerName(name) {
		return issue.InvalidArgument("store resource", name, errors.New("not a content name"))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[n] = slices.Clone(data)
	return nil
}

// Remove deletes a content name. It reports whether the name existed.
func (r *MemoryRoot) Remove(name string) bool {
	n, ok := location.NormalizeAsContent(name)
	if !ok {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, existed := r.entries[n]
	delete(r.entries, n)
	return existed
}

// Target returns a dual-access target replacing the content of name when
// the opened stream or channel is closed.
func (r *MemoryRoot) Target(name string) (dualio.Target, error) {
	n, ok := location.NormalizeAsContent(name)
	if !ok || location.IsContainerName(name) {
		return nil, issue.InvalidArgument("open resource target", name, errors.New("not a content name"))
	}
	return dualio.TargetFromStream(r.entryURL(n).String(), func() (io.WriteCloser, error) {
		return &memoryWriter{root: r, name: n}, nil
	}), nil
}

// Find resolves stored content names and the containers implied by them.
func (r *MemoryRoot) Find(name string) (*url.URL, error) {
	loc := location.Parse(name)
	if loc.IsContainerRoot() {
		return r.URL(), nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if loc.IsContent() {
		if _, ok := r.entries[loc.Name()]; ok {
			return r.entryURL(loc.Name()), nil
		}
		return nil, nil
	}
	for n := range r.entries {
		if strings.HasPrefix(n, loc.Name()) {
			return r.entryURL(loc.Name()), nil
		}
	}
	return nil, nil
}

// names returns every stored name and implied container in lexical order.
func (r *MemoryRoot) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(r.entries))
	for n := range r.entries {
		seen[n] = struct{}{}
		for i := strings.Index(n, location.Separator); i >= 0; {
			seen[n[:i+1]] = struct{}{}
			next := strings.Index(n[i+1:], location.Separator)
			if next < 0 {
				break
			}
			i += next + 1
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (r *MemoryRoot) get(name string) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.entries[name]
	return data, ok
}

func (r *MemoryRoot) entryURL(name string) *url.URL {
	return &url.URL{Scheme: MemoryScheme, Host: r.id.String(), Path: "/" + name}
}

func (w *memoryWriter) Close() error {
	return w.root.Put(w.name, w.Bytes())
}

func (h *memoryHandler) add(r *MemoryRoot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.roots[r.id.String()] = r
}

func (h *memoryHandler) root(u *url.URL) (*MemoryRoot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.roots[u.Host]
	return r, ok
}

func (h *memoryHandler) Open(u *url.URL) (io.ReadCloser, error) {
	r, ok := h.root(u)
	if !ok {
		return nil, issue.IO(fs.ErrNotExist, "open memory resource", u.String())
	}
	name, ok := location.NormalizeAsContent(u.Path)
	if !ok || strings.HasSuffix(u.Path, location.Separator) {
		return nil, issue.IO(protocol.ErrNotReadable, "open memory resource", u.String())
	}
	data, ok := r.get(name)
	if !ok {
		return nil, issue.IO(fs.ErrNotExist, "open memory resource", u.String())
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Scan lists the names of a memory root starting with the offset URL path.
// The name equal to that path is the root.
func (s memoryScanner) Scan(offset scan.Offset, filter scan.Filter) (scan.Names, error) {
	if offset.URL == nil || !strings.EqualFold(offset.URL.Scheme, MemoryScheme) {
		return nil, issue.ProtocolMismatch(MemoryScheme, fmt.Sprint(offset.URL))
	}
	if err := filter.Validate(); err != nil {
		return nil, issue.InvalidArgument("scan memory root", offset.URL.String(), err)
	}
	r, ok := s.handler.root(offset.URL)
	if !ok {
		return nil, issue.IO(fs.ErrNotExist, "scan memory root", offset.URL.String())
	}

	prefix := location.Parse(offset.URL.Path).Name()
	var names []string
	if prefix == location.RootContainerName && filter.IncludeRoot {
		names = append(names, prefix)
	}
	for _, n := range r.names() {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		if filter.Accepts(n, n == prefix) {
			names = append(names, n)
		}
	}
	return scan.FromSlice(names), nil
}
