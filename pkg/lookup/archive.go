// SPDX-License-Identifier: MPL-2.0

package lookup

import (
	"net/url"
	"strings"

	"github.com/invowk/resourcekit/pkg/holder"
	"github.com/invowk/resourcekit/pkg/location"
	"github.com/invowk/resourcekit/pkg/protocol"
)

type (
	// ArchiveRoot resolves names to entries of a zip archive. The central
	// directory is read once and indexed until Reset.
	ArchiveRoot struct {
		protocols *protocol.Registry
		archive   *url.URL
		index     holder.ResettableContainer[map[string]struct{}]
	}

	// ArchiveOptions configures an ArchiveRoot.
	ArchiveOptions struct {
		// OnReset, if set, receives the index reset function.
		OnReset func(reset func())
	}
)

// NewArchiveRoot creates a root over the archive at archive, opened through
// protocols.
func NewArchiveRoot(protocols *protocol.Registry, archive *url.URL, opts ArchiveOptions) *ArchiveRoot {
	r := &ArchiveRoot{protocols: protocols, archive: archive}
	r.index = holder.ResettableWithHook(r.readIndex, opts.OnReset)
	return r
}

// Archive returns the archive URL.
func (r *ArchiveRoot) Archive() *url.URL { return r.archive }

// URL returns the jar URL of the archive root.
func (r *ArchiveRoot) URL() *url.URL { return protocol.JarURL(r.archive, "") }

func (r *ArchiveRoot) String() string { return r.archive.String() }

// Reset discards the entry index.
func (r *ArchiveRoot) Reset() {
	r.protocols.Logger().Debug("archive index reset", "url", r.archive.String())
	r.index.Reset()
}

// Find resolves name against the archive entries. Directories implied by
// entry paths resolve even without an explicit directory entry.
func (r *ArchiveRoot) Find(name string) (*url.URL, error) {
	loc := location.Parse(name)
	if loc.IsContainerRoot() {
		return r.URL(), nil
	}

	index, err := r.index.Item()
	if err != nil {
		return nil, err
	}
	if _, ok := index[loc.Name()]; !ok {
		return nil, nil
	}
	return protocol.JarURL(r.archive, loc.Name()), nil
}

func (r *ArchiveRoot) readIndex() (map[string]struct{}, error) {
	a, err := r.protocols.OpenArchive(r.archive)
	if err != nil {
		return nil, err
	}
	defer func() { _ = a.Close() }()

	index := make(map[string]struct{}, len(a.File))
	for _, name := range a.Names("") {
		index[name] = struct{}{}
		for dir := name; ; {
			i := strings.LastIndex(strings.TrimSuffix(dir, location.Separator), location.Separator)
			if i < 0 {
				break
			}
			dir = dir[:i+1]
			index[dir] = struct{}{}
		}
	}
	return index, nil
}
