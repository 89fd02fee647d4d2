// SPDX-License-Identifier: MPL-2.0

// Package kit assembles a ready-to-use resource stack from configuration:
// protocol handlers, scanners, a loader over the configured roots with an
// in-memory overlay, an optional lookup cache, a resource provider and a
// change watcher that invalidates every cached view.
package kit
