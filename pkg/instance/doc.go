// SPDX-License-Identifier: MPL-2.0

// Package instance aggregates instances produced by registered suppliers.
//
// A Loader flattens the output of every supplier in registration order,
// drops nil entries and memoizes the result until Reload or Reset. Suppliers
// may come from Discover, which reads provider-configuration resources of
// the form META-INF/services/<service> through a resource loader.
package instance
