// SPDX-License-Identifier: MPL-2.0

// Package location normalizes resource names into the container/content
// namespace used by loaders and scanners.
//
// A container name is either the root ("") or ends with "/". A content name
// never ends with "/". Names are slash separated and never start with "/",
// which matches how resources are named inside archives and loader roots.
package location

import "strings"

const (
	// RootContainerName names the root container. Unlike a Unix path the root
	// is the empty string, not "/".
	RootContainerName = ""

	// Separator separates name elements.
	Separator = "/"
)

// Location is a normalized resource name with its classification.
// The zero value is the root container.
type Location struct {
	name      string
	container bool
}

// New creates a location whose name is normalized as a container when
// container is true and as content otherwise. A content name that normalizes
// to nothing yields the root container.
func New(name string, container bool) Location {
	if container {
		return Location{name: NormalizeAsContainer(name), container: true}
	}
	if n, ok := NormalizeAsContent(name); ok {
		return Location{name: n}
	}
	return Location{name: RootContainerName, container: true}
}

// Container creates a container location.
func Container(name string) Location { return New(name, true) }

// Content creates a content location.
func Content(name string) Location { return New(name, false) }

// Parse classifies an already formed name by its trailing separator and
// normalizes it accordingly.
func Parse(name string) Location {
	return New(name, IsContainerName(name))
}

// Name returns the normalized resource name, usable directly with loaders.
func (l Location) Name() string { return l.name }

// String returns the resource name.
func (l Location) String() string { return l.name }

// IsContainer reports whether the location names a container.
func (l Location) IsContainer() bool { return l.container || l.name == RootContainerName }

// IsContent reports whether the location names content.
func (l Location) IsContent() bool { return !l.IsContainer() }

// IsContainerRoot reports whether the location is the root container.
func (l Location) IsContainerRoot() bool { return l.name == RootContainerName }

// Normalize returns the location with its name normalized again. Locations
// built by this package are already normalized, so this is the identity for
// them.
func (l Location) Normalize() Location { return New(l.name, l.IsContainer()) }

// Parent returns the container holding this location. The root is its own
// parent.
func (l Location) Parent() Location {
	if l.IsContainerRoot() {
		return l
	}
	trimmed := strings.TrimSuffix(l.name, Separator)
	i := strings.LastIndex(trimmed, Separator)
	if i < 0 {
		return Location{container: true}
	}
	return Location{name: trimmed[:i+1], container: true}
}

// Child resolves name relative to this location. Resolving against content
// resolves against its parent container. A child name ending in "/" yields a
// container.
func (l Location) Child(name string) Location {
	base := l
	if base.IsContent() {
		base = base.Parent()
	}
	return Parse(base.name + name)
}

// IsContainerName reports whether name denotes a container: the root ("" or
// "/") or any name ending in "/".
func IsContainerName(name string) bool {
	return name == RootContainerName || strings.HasSuffix(name, Separator)
}

// IsContentName reports whether name denotes content: a non-empty name not
// ending in "/".
func IsContentName(name string) bool {
	return name != RootContainerName && !strings.HasSuffix(name, Separator)
}

// IsContainerRootName reports whether name denotes the root container.
func IsContainerRootName(name string) bool {
	return name == RootContainerName || name == Separator
}

// NormalizeAsContainer collapses repeated separators, drops the leading
// separator and guarantees exactly one trailing separator. Empty names and
// names made of separators only normalize to the root "".
func NormalizeAsContainer(name string) string {
	n := strings.Trim(collapse(name), Separator)
	if n == "" {
		return RootContainerName
	}
	return n + Separator
}

// NormalizeAsContent collapses repeated separators and drops leading and
// trailing separators. It returns false when no content name remains.
func NormalizeAsContent(name string) (string, bool) {
	n := strings.Trim(collapse(name), Separator)
	return n, n != ""
}

// collapse replaces every run of separators with a single one.
func collapse(name string) string {
	if !strings.Contains(name, "//") {
		return name
	}
	var b strings.Builder
	b.Grow(len(name))
	prev := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '/' {
			if prev {
				continue
			}
			prev = true
		} else {
			prev = false
		}
		b.WriteByte(c)
	}
	return b.String()
}
