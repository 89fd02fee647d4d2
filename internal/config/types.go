// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
)

const (
	// RootKindDir serves resources from a directory tree.
	RootKindDir RootKind = "dir"
	// RootKindArchive serves resources from a zip or jar archive.
	RootKindArchive RootKind = "archive"

	// DefaultCacheSize is the default number of cached lookups.
	DefaultCacheSize = 1024
	// DefaultDebounce is the default delay before change events fire.
	DefaultDebounce = 500 * time.Millisecond
	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
)

var (
	// ErrInvalidRootKind is returned when a RootKind value is not recognized.
	ErrInvalidRootKind = errors.New("invalid root kind")
	// ErrInvalidRoot is the sentinel error wrapped by InvalidRootError.
	ErrInvalidRoot = errors.New("invalid root")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// RootKind selects how a loader root is served.
	RootKind string

	// Root is one loader root.
	Root struct {
		// Path is a directory or an archive file. Relative paths resolve
		// against the directory of the config file that declared them.
		Path string `json:"path" mapstructure:"path"`
		// Kind defaults to "dir".
		Kind RootKind `json:"kind,omitempty" mapstructure:"kind"`
	}

	// CacheConfig configures the lookup cache.
	CacheConfig struct {
		// Size is the maximum number of cached lookups. 0 disables caching.
		Size int `json:"size" mapstructure:"size"`
	}

	// ScanConfig configures the default scan filter.
	ScanConfig struct {
		IncludeRoot        bool     `json:"include_root" mapstructure:"include_root"`
		IncludeFiles       bool     `json:"include_files" mapstructure:"include_files"`
		IncludeDirectories bool     `json:"include_directories" mapstructure:"include_directories"`
		Patterns           []string `json:"patterns" mapstructure:"patterns"`
	}

	// WatchConfig configures change watching of directory roots.
	WatchConfig struct {
		Enabled  bool          `json:"enabled" mapstructure:"enabled"`
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
		Ignore   []string      `json:"ignore" mapstructure:"ignore"`
	}

	// LogConfig configures logging.
	LogConfig struct {
		Level string `json:"level" mapstructure:"level"`
	}

	// Config holds the resourcekit configuration.
	Config struct {
		Roots []Root      `json:"roots" mapstructure:"roots"`
		Cache CacheConfig `json:"cache" mapstructure:"cache"`
		Scan  ScanConfig  `json:"scan" mapstructure:"scan"`
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
		Log   LogConfig   `json:"log" mapstructure:"log"`
	}

	// InvalidRootError is returned when a Root has invalid fields.
	// It wraps ErrInvalidRoot for errors.Is() compatibility.
	InvalidRootError struct {
		Index       int
		FieldErrors []error
	}

	// InvalidConfigError collects every validation failure of a Config.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// String returns the string representation of the RootKind.
func (k RootKind) String() string { return string(k) }

// IsValid returns whether the RootKind is known. The empty kind is valid
// and means RootKindDir.
func (k RootKind) IsValid() (bool, []error) {
	switch k {
	case "", RootKindDir, RootKindArchive:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q (valid: dir, archive)", ErrInvalidRootKind, string(k))}
	}
}

// EffectiveKind returns the kind with the empty default applied.
func (r Root) EffectiveKind() RootKind {
	if r.Kind == "" {
		return RootKindDir
	}
	return r.Kind
}

func (r Root) isValid(index int) (bool, []error) {
	var errs []error
	if strings.TrimSpace(r.Path) == "" {
		errs = append(errs, errors.New("path must not be empty"))
	}
	if valid, fieldErrs := r.Kind.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidRootError{Index: index, FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidRootError.
func (e *InvalidRootError) Error() string {
	return fmt.Sprintf("roots[%d]: %v", e.Index, errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidRoot and the field errors.
func (e *InvalidRootError) Unwrap() []error {
	return append([]error{ErrInvalidRoot}, e.FieldErrors...)
}

// IsValid checks the constraints Viper-decoded values can violate: root
// kinds, cache size, glob patterns and the log level.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	for i, r := range c.Roots {
		if valid, fieldErrs := r.isValid(i); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if c.Cache.Size < 0 {
		errs = append(errs, fmt.Errorf("cache.size: must not be negative, got %d", c.Cache.Size))
	}
	for i, p := range c.Scan.Patterns {
		if _, err := doublestar.Match(p, ""); err != nil {
			errs = append(errs, fmt.Errorf("scan.patterns[%d]: invalid pattern %q", i, p))
		}
	}
	for i, p := range c.Watch.Ignore {
		if _, err := doublestar.Match(p, ""); err != nil {
			errs = append(errs, fmt.Errorf("watch.ignore[%d]: invalid pattern %q", i, p))
		}
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce: must not be negative, got %s", c.Watch.Debounce))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	lines := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		lines = append(lines, err.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(lines, "; "))
}

// Unwrap returns ErrInvalidConfig and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// LogLevel returns the parsed log level, falling back to info.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Roots: []Root{},
		Cache: CacheConfig{Size: DefaultCacheSize},
		Scan: ScanConfig{
			IncludeRoot:        false,
			IncludeFiles:       true,
			IncludeDirectories: true,
			Patterns:           []string{},
		},
		Watch: WatchConfig{
			Enabled:  false,
			Debounce: DefaultDebounce,
			Ignore:   []string{},
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}
