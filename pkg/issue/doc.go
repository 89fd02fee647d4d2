// SPDX-License-Identifier: MPL-2.0

// Package issue provides the error taxonomy shared by every resourcekit package.
//
// Absence of a resource is never an error; it is reported as a nil URL, a nil
// reader or an empty slice. Everything else is an *ActionableError tagged with
// a Kind:
//   - KindIO: a read, scan or archive-open failure, wrapping the original cause
//   - KindProtocolMismatch: a URL handed to an operation bound to another protocol
//   - KindInvalidArgument: a malformed argument detected at the call site
//   - KindConfiguration: an irrecoverable setup problem
//
// Use errors.Is with the matching sentinel (ErrIO, ErrProtocolMismatch, ...)
// to classify an error without depending on the concrete type.
package issue
