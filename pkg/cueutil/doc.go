// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against embedded schemas.
//
// Validation follows three steps: compile the schema, compile the document
// and unify it with a schema definition, then validate the result. Errors
// are reported with JSON-path style locations:
//
//	config.cue: scan.patterns[1]: conflicting values 1 and string
package cueutil
