// SPDX-License-Identifier: MPL-2.0

package protocol

import (
	"net/url"
	"strings"

	"github.com/invowk/resourcekit/pkg/issue"
)

const (
	// KindCustom is any protocol that is not built in.
	KindCustom Kind = iota
	// KindFile is the local filesystem protocol.
	KindFile
	// KindJar addresses entries inside an archive.
	KindJar
	// KindHTTP is plain HTTP.
	KindHTTP
	// KindHTTPS is HTTP over TLS.
	KindHTTPS
)

var (
	// File is the file protocol.
	File = Protocol{name: "file", kind: KindFile}
	// Jar is the archive entry protocol.
	Jar = Protocol{name: "jar", kind: KindJar}
	// HTTP is the http protocol.
	HTTP = Protocol{name: "http", kind: KindHTTP}
	// HTTPS is the https protocol.
	HTTPS = Protocol{name: "https", kind: KindHTTPS}

	standard = []Protocol{File, Jar, HTTP, HTTPS}
)

type (
	// Kind tags the built-in protocols.
	Kind int

	// Protocol is a URL protocol name. Matching is case-insensitive.
	Protocol struct {
		name string
		kind Kind
	}

	// Scheme is an alias of Protocol.
	Scheme = Protocol
)

// New returns the protocol with the given name. Names of built-in protocols
// yield the built-in value.
func New(name string) Protocol {
	for _, p := range standard {
		if p.Matches(name) {
			return p
		}
	}
	return Protocol{name: name, kind: KindCustom}
}

// Standard returns the built-in protocol of u, if any.
func Standard(u *url.URL) (Protocol, bool) {
	for _, p := range standard {
		if p.MatchesURL(u) {
			return p, true
		}
	}
	return Protocol{}, false
}

// Name returns the protocol name.
func (p Protocol) Name() string { return p.name }

// Kind returns the built-in tag, KindCustom for other protocols.
func (p Protocol) Kind() Kind { return p.kind }

// String returns the protocol name.
func (p Protocol) String() string { return p.name }

// Matches reports whether name denotes this protocol.
func (p Protocol) Matches(name string) bool {
	return strings.EqualFold(p.name, name)
}

// MatchesURL reports whether u uses this protocol.
func (p Protocol) MatchesURL(u *url.URL) bool {
	return u != nil && p.Matches(u.Scheme)
}

// RequireMatch returns a protocol-mismatch error unless u uses this protocol.
func (p Protocol) RequireMatch(u *url.URL) error {
	if p.MatchesURL(u) {
		return nil
	}
	return issue.ProtocolMismatch(p.name, describe(u))
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindJar:
		return "jar"
	case KindHTTP:
		return "http"
	case KindHTTPS:
		return "https"
	default:
		return "custom"
	}
}
