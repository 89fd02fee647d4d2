// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"strings"

	"github.com/invowk/resourcekit/pkg/issue"
	"github.com/invowk/resourcekit/pkg/protocol"
)

type (
	// JarScanner lists archive entries addressed by jar URLs.
	JarScanner struct {
		registry *protocol.Registry
	}

	// jarNames owns the open archive until Close.
	jarNames struct {
		archive *protocol.Archive
		prefix  string
		filter  Filter
		pos     int
		name    string
		closed  bool
	}
)

// NewJarScanner creates a scanner that opens archives through registry.
func NewJarScanner(registry *protocol.Registry) *JarScanner {
	return &JarScanner{registry: registry}
}

// Scan lists every entry whose normalized name starts with the entry path of
// the offset URL. The prefix is matched as a plain string: "li" matches
// "lib/". The entry equal to the prefix is the root.
func (s *JarScanner) Scan(offset Offset, filter Filter) (Names, error) {
	archiveURL, entry, err := protocol.SplitJar(offset.URL)
	if err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, issue.InvalidArgument("scan archive", offset.URL.String(), err)
	}

	a, err := s.registry.OpenArchive(archiveURL)
	if err != nil {
		return nil, err
	}
	return &jarNames{
		archive: a,
		prefix:  protocol.EntryPrefix(entry),
		filter:  filter,
		pos:     -1,
	}, nil
}

func (n *jarNames) Next() bool {
	if n.closed {
		return false
	}
	for n.pos+1 < len(n.archive.File) {
		n.pos++
		name := protocol.EntryPrefix(n.archive.File[n.pos].Name)
		if !strings.HasPrefix(name, n.prefix) {
			continue
		}
		if n.filter.Accepts(name, name == n.prefix) {
			n.name = name
			return true
		}
	}
	n.name = ""
	return false
}

func (n *jarNames) Name() string { return n.name }

func (n *jarNames) Err() error { return nil }

// Close releases the archive. It is safe to call more than once.
func (n *jarNames) Close() error {
	if n.closed {
		return nil
	}
	n.closed = true
	n.name = ""
	return n.archive.Close()
}
