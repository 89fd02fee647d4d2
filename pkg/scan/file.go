// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/invowk/resourcekit/pkg/fspath"
	"github.com/invowk/resourcekit/pkg/issue"
	"github.com/invowk/resourcekit/pkg/location"
	"github.com/invowk/resourcekit/pkg/protocol"
)

type (
	// FileScanner walks directory trees addressed by file URLs.
	FileScanner struct {
		fs     afero.Fs
		logger *log.Logger
	}

	pendingPath struct {
		path string
		rel  string
		dir  bool
		root bool
	}

	// fileNames walks depth-first in lexical order, reading one directory
	// per expansion.
	fileNames struct {
		fs     afero.Fs
		url    string
		prefix string
		filter Filter
		stack  []pendingPath
		name   string
		err    error
	}
)

// NewFileScanner creates a scanner over fs. A nil logger discards output.
func NewFileScanner(fs afero.Fs, logger *log.Logger) *FileScanner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &FileScanner{fs: fs, logger: logger}
}

// Scan emits the offset name for the root, then for every path below it the
// offset name followed by the slash-separated relative path, with a trailing
// slash for directories. A regular file root yields the offset as content.
func (s *FileScanner) Scan(offset Offset, filter Filter) (Names, error) {
	if err := protocol.File.RequireMatch(offset.URL); err != nil {
		return nil, err
	}
	res := offset.URL.String()
	if err := filter.Validate(); err != nil {
		return nil, issue.InvalidArgument("scan directory", res, err)
	}

	root, err := fspath.FromURL(offset.URL)
	if err != nil {
		return nil, err
	}
	info, err := s.fs.Stat(root)
	if err != nil {
		return nil, issue.IO(err, "scan directory", res)
	}

	if !info.IsDir() {
		name, ok := location.NormalizeAsContent(offset.Name)
		if !ok {
			name = info.Name()
		}
		if !filter.IncludeRoot {
			return FromSlice(nil), nil
		}
		return FromSlice([]string{name}), nil
	}

	s.logger.Debug("scanning directory", "url", res)
	return &fileNames{
		fs:     s.fs,
		url:    res,
		prefix: location.NormalizeAsContainer(offset.Name),
		filter: filter,
		stack:  []pendingPath{{path: root, dir: true, root: true}},
	}, nil
}

func (n *fileNames) Next() bool {
	for len(n.stack) > 0 {
		p := n.stack[len(n.stack)-1]
		n.stack = n.stack[:len(n.stack)-1]

		if p.dir {
			if err := n.expand(p); err != nil {
				n.err = err
				n.stack = nil
				return false
			}
		}

		name := n.prefix + p.rel
		if n.filter.Accepts(name, p.root) {
			n.name = name
			return true
		}
	}
	n.name = ""
	return false
}

// expand pushes the children of p in reverse lexical order so that they pop
// in lexical order.
func (n *fileNames) expand(p pendingPath) error {
	entries, err := afero.ReadDir(n.fs, p.path)
	if err != nil {
		return issue.IO(err, "scan directory", n.url)
	}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		rel := p.rel + e.Name()
		if e.IsDir() {
			rel += location.Separator
		}
		n.stack = append(n.stack, pendingPath{
			path: filepath.Join(p.path, e.Name()),
			rel:  rel,
			dir:  e.IsDir(),
		})
	}
	return nil
}

func (n *fileNames) Name() string { return n.name }

func (n *fileNames) Err() error { return n.err }

func (n *fileNames) Close() error {
	n.stack = nil
	n.name = ""
	return nil
}
