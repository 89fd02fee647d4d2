// SPDX-License-Identifier: MPL-2.0

// Package protocol names URL protocols and dispatches URL opening to
// registered handlers.
//
// A Registry is an explicit object handed to every collaborator that needs
// to open a URL; there is no process-wide registry. DefaultRegistry knows
// the file and jar protocols. HTTP and HTTPS are recognised by Standard but
// have no built-in handler.
//
// Jar URLs take the form jar:<archive-url>!/<entry>, for example
// jar:file:///opt/app.jar!/lib/a.class.
package protocol
