// SPDX-License-Identifier: MPL-2.0

// Package dualio exposes binary content behind a dual-access contract.
//
// A Source can be opened either as a stream (io.ReadCloser) or as a channel
// (ReadChannel); a Target likewise as io.WriteCloser or WriteChannel. Callers
// pick one mode per logical operation and both modes yield the same bytes.
// When only one mode is backed by a real opener, the other is derived by a
// thin adapter that forwards every call without buffering.
//
// Openers report failures as errors. Failures, and panics whose value is an
// error, are converted at this boundary into issue.KindIO errors naming the
// resource and the access mode.
package dualio
