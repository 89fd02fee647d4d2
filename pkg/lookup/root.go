// SPDX-License-Identifier: MPL-2.0

package lookup

import (
	"errors"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/invowk/resourcekit/pkg/fspath"
	"github.com/invowk/resourcekit/pkg/issue"
	"github.com/invowk/resourcekit/pkg/location"
)

type (
	// Root is one element of a loader search path.
	Root interface {
		// Find returns the URL of name in this root, or nil when absent.
		Find(name string) (*url.URL, error)
		// URL returns the URL of the root container.
		URL() *url.URL
		String() string
	}

	// DirRoot resolves names below a directory.
	DirRoot struct {
		fs  afero.Fs
		dir string
		url *url.URL
	}
)

// NewDirRoot creates a root over dir in fs. A relative dir is resolved
// against the working directory, so returned URLs always open.
func NewDirRoot(fs afero.Fs, dir string) *DirRoot {
	dir = fspath.Abs(dir)
	return &DirRoot{fs: fs, dir: dir, url: fspath.DirURL(dir)}
}

// Dir returns the root directory.
func (r *DirRoot) Dir() string { return r.dir }

// URL returns the directory URL, with a trailing slash.
func (r *DirRoot) URL() *url.URL { return r.url }

func (r *DirRoot) String() string { return r.url.String() }

// Find resolves a content name to an existing regular file and a container
// name to an existing directory. Names escaping the root are absent.
func (r *DirRoot) Find(name string) (*url.URL, error) {
	loc := location.Parse(name)
	rel := strings.TrimSuffix(loc.Name(), location.Separator)

	path := filepath.Join(r.dir, filepath.FromSlash(rel))
	if back, err := fspath.RelSlash(r.dir, path); err != nil || back == ".." || strings.HasPrefix(back, "../") {
		return nil, nil
	}

	info, err := r.fs.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, issue.IO(err, "resolve resource", r.url.String()+rel)
	}

	switch {
	case loc.IsContainer() && info.IsDir():
		return fspath.DirURL(path), nil
	case loc.IsContent() && info.Mode().IsRegular():
		return fspath.ToURL(path), nil
	default:
		return nil, nil
	}
}
