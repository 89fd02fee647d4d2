// SPDX-License-Identifier: MPL-2.0

// Package testutil builds resource fixtures for tests: file trees and zip
// archives on any afero filesystem. Helpers fail the test immediately on
// error.
package testutil
