// SPDX-License-Identifier: MPL-2.0

package protocol

import (
	"errors"
	"io"
	"io/fs"
	"net/url"

	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/invowk/resourcekit/pkg/fspath"
	"github.com/invowk/resourcekit/pkg/issue"
)

// ErrNotReadable is the cause reported when a URL names a directory.
var ErrNotReadable = errors.New("not readable content")

type (
	fileHandler struct {
		fs afero.Fs
	}

	jarHandler struct {
		registry *Registry
	}

	// entryReader owns both the entry stream and its archive.
	entryReader struct {
		io.ReadCloser
		archive *Archive
	}
)

func (h fileHandler) Open(u *url.URL) (io.ReadCloser, error) {
	path, err := fspath.FromURL(u)
	if err != nil {
		return nil, err
	}
	f, err := h.fs.Open(path)
	if err != nil {
		return nil, issue.IO(err, "open file", u.String())
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, issue.IO(err, "stat file", u.String())
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, issue.IO(ErrNotReadable, "open file", u.String())
	}
	return f, nil
}

func (h jarHandler) Open(u *url.URL) (io.ReadCloser, error) {
	archiveURL, entry, err := SplitJar(u)
	if err != nil {
		return nil, err
	}
	a, err := h.registry.OpenArchive(archiveURL)
	if err != nil {
		return nil, err
	}

	f := a.Entry(entry)
	if f == nil {
		_ = a.Close()
		return nil, issue.IO(fs.ErrNotExist, "open archive entry", u.String())
	}
	if f.FileInfo().IsDir() {
		_ = a.Close()
		return nil, issue.IO(ErrNotReadable, "open archive entry", u.String())
	}

	rc, err := f.Open()
	if err != nil {
		_ = a.Close()
		return nil, issue.IO(err, "open archive entry", u.String())
	}
	return &entryReader{ReadCloser: rc, archive: a}, nil
}

func (r *entryReader) Close() error {
	return multierr.Append(r.ReadCloser.Close(), r.archive.Close())
}
