// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/multierr"
)

// ErrInvalidPattern is returned for malformed filter patterns.
var ErrInvalidPattern = errors.New("invalid filter pattern")

type (
	// Filter selects which names a scan emits.
	Filter struct {
		IncludeRoot        bool
		IncludeFiles       bool
		IncludeDirectories bool
		// Patterns are doublestar globs matched against emitted names with
		// any trailing slash removed. Empty means every name. The root is
		// never subject to patterns.
		Patterns []string
	}

	// Offset is the starting point of a scan: the URL of the subtree root
	// and the resource name it was resolved from.
	Offset struct {
		URL  *url.URL
		Name string
	}

	// Names is a lazy, finite, non-restartable cursor over scanned names.
	//
	//	names, err := scanner.Scan(offset, filter)
	//	if err != nil { ... }
	//	defer names.Close()
	//	for names.Next() { use(names.Name()) }
	//	if err := names.Err(); err != nil { ... }
	Names interface {
		Next() bool
		Name() string
		Err() error
		Close() error
	}

	// Scanner enumerates the names below an offset.
	Scanner interface {
		Scan(offset Offset, filter Filter) (Names, error)
	}

	sliceNames struct {
		names []string
		pos   int
	}
)

// DefaultFilter emits every name.
func DefaultFilter() Filter {
	return Filter{IncludeRoot: true, IncludeFiles: true, IncludeDirectories: true}
}

// Validate checks the filter patterns.
func (f Filter) Validate() error {
	for _, p := range f.Patterns {
		if _, err := doublestar.Match(p, ""); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidPattern, p, err)
		}
	}
	return nil
}

// Accepts reports whether a name passes the filter.
func (f Filter) Accepts(name string, root bool) bool {
	if root {
		return f.IncludeRoot
	}
	if strings.HasSuffix(name, "/") {
		if !f.IncludeDirectories {
			return false
		}
	} else if !f.IncludeFiles {
		return false
	}
	return f.matchesPatterns(name)
}

func (f Filter) matchesPatterns(name string) bool {
	if len(f.Patterns) == 0 {
		return true
	}
	name = strings.TrimSuffix(name, "/")
	for _, p := range f.Patterns {
		if matched, err := doublestar.Match(p, name); err == nil && matched {
			return true
		}
	}
	return false
}

// Collect drains names into a slice and closes the cursor.
func Collect(names Names) (result []string, err error) {
	defer func() { err = multierr.Append(err, names.Close()) }()

	for names.Next() {
		result = append(result, names.Name())
	}
	if err := names.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// FromSlice returns a cursor over a fixed list of names.
func FromSlice(names []string) Names {
	return &sliceNames{names: names, pos: -1}
}

func (s *sliceNames) Next() bool {
	if s.pos+1 >= len(s.names) {
		s.pos = len(s.names)
		return false
	}
	s.pos++
	return true
}

func (s *sliceNames) Name() string {
	if s.pos < 0 || s.pos >= len(s.names) {
		return ""
	}
	return s.names[s.pos]
}

func (s *sliceNames) Err() error { return nil }

func (s *sliceNames) Close() error { return nil }
