// SPDX-License-Identifier: MPL-2.0

// Package lookup resolves resource names to URLs across an ordered set of
// roots, the way a class loader resolves classpath resources.
//
// A Loader asks its parent first, then its own roots in order. Names are
// normalized before lookup: "dir/" and "/dir" both address the directory,
// "a//b.txt" addresses "a/b.txt". Absence is reported as a nil URL or an
// empty result, never as an error.
package lookup
