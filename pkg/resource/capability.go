// SPDX-License-Identifier: MPL-2.0

// Package resource exposes named resources as stateless items: identity,
// capability flags and dual-access read and write views.
package resource

var (
	// StaticContent describes existing read-only content.
	StaticContent = Capability{Existing: true, Readable: true}
	// StaticContainer describes an existing container that can be listed.
	StaticContainer = Capability{Existing: true, Traversable: true}
)

// Capability describes what can be done with a resource.
type Capability struct {
	Existing    bool
	Readable    bool
	Writable    bool
	Traversable bool
}

// Exists reports whether the resource exists.
func (c Capability) Exists() bool { return c.Existing }
