// SPDX-License-Identifier: MPL-2.0

// Package fspath converts between filesystem paths and file URLs.
package fspath

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/invowk/resourcekit/pkg/issue"
)

const fileScheme = "file"

// ToURL returns the file URL of path. A relative path is resolved against
// the working directory, then cleaned and converted to forward slashes.
func ToURL(path string) *url.URL {
	p := filepath.ToSlash(Abs(path))
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return &url.URL{Scheme: fileScheme, Path: p}
}

// Abs returns the cleaned absolute form of path. When the working directory
// cannot be determined the cleaned path is returned unchanged.
func Abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// DirURL returns the file URL of a directory, with a trailing slash.
func DirURL(path string) *url.URL {
	u := ToURL(path)
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u
}

// FromURL returns the filesystem path of a file URL.
func FromURL(u *url.URL) (string, error) {
	if u == nil || !strings.EqualFold(u.Scheme, fileScheme) {
		res := "<nil>"
		if u != nil {
			res = u.String()
		}
		return "", issue.ProtocolMismatch(fileScheme, res)
	}

	p := u.Path
	if p == "" {
		// file:relative/path parses as opaque.
		p = u.Opaque
	}
	if runtime.GOOS == "windows" && len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	if p == "" {
		return "", issue.InvalidArgument("resolve file url", u.String(), fmt.Errorf("empty path"))
	}
	return filepath.FromSlash(p), nil
}

// RelSlash returns path relative to root using forward slashes.
func RelSlash(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("relative path of %s: %w", path, err)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}
