// SPDX-License-Identifier: MPL-2.0

package protocol

import (
	"bytes"
	"io"
	"net/url"
	"strings"

	"github.com/klauspost/compress/zip"
	"go.uber.org/multierr"

	"github.com/invowk/resourcekit/pkg/fspath"
	"github.com/invowk/resourcekit/pkg/issue"
)

// Archive is an opened zip archive. Close releases the underlying file.
type Archive struct {
	*zip.Reader

	url    *url.URL
	closer io.Closer
	onDone func()
}

// OpenArchive opens the archive at u. Local file archives are read in place
// through the registry filesystem; any other URL is opened through its
// handler and buffered in memory.
func (r *Registry) OpenArchive(u *url.URL) (*Archive, error) {
	var (
		ra     io.ReaderAt
		size   int64
		closer io.Closer
	)

	if File.MatchesURL(u) {
		path, err := fspath.FromURL(u)
		if err != nil {
			return nil, err
		}
		f, err := r.fs.Open(path)
		if err != nil {
			return nil, issue.IO(err, "open archive", u.String())
		}
		info, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return nil, issue.IO(err, "stat archive", u.String())
		}
		ra, size, closer = f, info.Size(), f
	} else {
		rc, err := r.Open(u)
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		err = multierr.Append(err, rc.Close())
		if err != nil {
			return nil, issue.IO(err, "read archive", u.String())
		}
		ra, size = bytes.NewReader(data), int64(len(data))
	}

	zr, err := zip.NewReader(ra, size)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, issue.IO(err, "read archive", u.String())
	}

	r.logger.Debug("archive opened", "url", u.String(), "entries", len(zr.File))
	return &Archive{
		Reader: zr,
		url:    u,
		closer: closer,
		onDone: func() { r.logger.Debug("archive closed", "url", u.String()) },
	}, nil
}

// URL returns the archive URL.
func (a *Archive) URL() *url.URL { return a.url }

// Close releases the archive.
func (a *Archive) Close() error {
	if a.onDone != nil {
		a.onDone()
	}
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Entry returns the entry with the given name, compared after EntryPrefix
// normalization, or nil.
func (a *Archive) Entry(name string) *zip.File {
	name = EntryPrefix(name)
	for _, f := range a.File {
		if EntryPrefix(f.Name) == name {
			return f
		}
	}
	return nil
}

// Names returns the normalized names of all entries starting with prefix,
// in archive order.
func (a *Archive) Names(prefix string) []string {
	prefix = EntryPrefix(prefix)
	var names []string
	for _, f := range a.File {
		if name := EntryPrefix(f.Name); strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names
}

// EntryURL returns the jar URL of an entry of this archive.
func (a *Archive) EntryURL(entry string) *url.URL {
	return JarURL(a.url, entry)
}
