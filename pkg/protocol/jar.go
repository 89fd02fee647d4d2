// SPDX-License-Identifier: MPL-2.0

package protocol

import (
	"net/url"
	"strings"

	"github.com/invowk/resourcekit/pkg/issue"
)

// JarSeparator separates the archive URL from the entry name.
const JarSeparator = "!/"

// JarURL builds jar:<archive>!/<entry>. Leading slashes of entry are dropped.
func JarURL(archive *url.URL, entry string) *url.URL {
	entry = strings.TrimLeft(entry, "/")
	escaped := (&url.URL{Path: entry}).EscapedPath()
	return &url.URL{Scheme: Jar.Name(), Opaque: archive.String() + JarSeparator + escaped}
}

// SplitJar splits a jar URL at the first separator. Without a separator the
// whole scheme-specific part is the archive and the entry is empty.
func SplitJar(u *url.URL) (*url.URL, string, error) {
	if err := Jar.RequireMatch(u); err != nil {
		return nil, "", err
	}

	ssp := u.Opaque
	if ssp == "" {
		ssp = strings.TrimPrefix(u.String(), u.Scheme+":")
	}

	archivePart, entryPart, _ := strings.Cut(ssp, JarSeparator)
	archive, err := url.Parse(archivePart)
	if err != nil {
		return nil, "", issue.InvalidArgument("parse archive url", u.String(), err)
	}
	entry, err := url.PathUnescape(entryPart)
	if err != nil {
		return nil, "", issue.InvalidArgument("parse archive entry", u.String(), err)
	}
	return archive, entry, nil
}

// ArchiveURL returns the URL of the archive a jar URL points into.
func ArchiveURL(u *url.URL) (*url.URL, error) {
	archive, _, err := SplitJar(u)
	return archive, err
}

// EntryName returns the entry part of a jar URL, without a leading slash.
func EntryName(u *url.URL) (string, error) {
	_, entry, err := SplitJar(u)
	return entry, err
}

// EntryPrefix normalizes an entry path for prefix matching: leading slashes
// are stripped and runs of slashes collapsed. No trailing slash is added.
func EntryPrefix(entry string) string {
	var b strings.Builder
	b.Grow(len(entry))
	prevSlash := true
	for _, r := range entry {
		if r == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func describe(u *url.URL) string {
	if u == nil {
		return "<nil>"
	}
	return u.String()
}
