// SPDX-License-Identifier: MPL-2.0

// Package scan enumerates the names below a resource URL.
//
// Scanning is protocol specific: FileScanner walks a directory tree and
// JarScanner lists archive entries. A Registry picks the scanner for a URL,
// first match wins. Scanners return a Names cursor which must be closed;
// Collect drains and closes one.
package scan
