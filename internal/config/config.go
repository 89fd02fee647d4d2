// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invowk/resourcekit/pkg/cueutil"
	"github.com/invowk/resourcekit/pkg/issue"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "resourcekit"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// EnvPrefix prefixes environment overrides, e.g. RESOURCEKIT_CACHE_SIZE.
	EnvPrefix = "RESOURCEKIT"

	extCUE  = ".cue"
	extTOML = ".toml"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the resourcekit configuration directory under the
// platform user config directory.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// loadWithOptions performs option-driven config loading. It returns the
// config and the path of the file it was read from, or "" when only
// defaults and environment were used.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := resolveConfigFile(opts)
	if err != nil {
		return nil, "", err
	}
	if resolvedPath != "" {
		if err := mergeFile(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithKind(issue.KindConfiguration).
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE or TOML syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", issue.Configuration("parse configuration", err)
	}

	if resolvedPath != "" {
		resolveRoots(&cfg, filepath.Dir(resolvedPath))
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithKind(issue.KindConfiguration).
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Root kinds are 'dir' or 'archive'").
			WithSuggestion("Log levels are 'debug', 'info', 'warn' or 'error'").
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("roots", defaults.Roots)
	v.SetDefault("cache.size", defaults.Cache.Size)
	v.SetDefault("scan.include_root", defaults.Scan.IncludeRoot)
	v.SetDefault("scan.include_files", defaults.Scan.IncludeFiles)
	v.SetDefault("scan.include_directories", defaults.Scan.IncludeDirectories)
	v.SetDefault("scan.patterns", defaults.Scan.Patterns)
	v.SetDefault("watch.enabled", defaults.Watch.Enabled)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("watch.ignore", defaults.Watch.Ignore)
	v.SetDefault("log.level", defaults.Log.Level)
}

// resolveConfigFile picks the file to load. An explicit file must exist.
// Otherwise config.cue is preferred over config.toml in the config
// directory, and no file at all means defaults.
func resolveConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithKind(issue.KindConfiguration).
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", issue.Configuration("locate configuration", err)
		}
	}
	for _, ext := range []string{extCUE, extTOML} {
		if p := filepath.Join(dir, ConfigFileName+ext); fileExists(p) {
			return p, nil
		}
	}
	return "", nil
}

// mergeFile decodes a CUE or TOML file into a map and merges it into Viper,
// preserving defaults and environment overrides.
func mergeFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var configMap map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case extTOML:
		configMap, err = decodeTOML(data, path)
	default:
		configMap, err = cueutil.DecodeMap(configSchema, "#Config", data, path)
	}
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// decodeTOML reads a TOML document, rejecting keys the CUE schema would
// reject as well.
func decodeTOML(data []byte, path string) (map[string]any, error) {
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return nil, err
	}
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for key := range m {
		if !knownSections[key] {
			return nil, fmt.Errorf("%s: unknown section %q", path, key)
		}
	}
	return m, nil
}

var knownSections = map[string]bool{
	"roots": true,
	"cache": true,
	"scan":  true,
	"watch": true,
	"log":   true,
}

func resolveRoots(cfg *Config, baseDir string) {
	for i, r := range cfg.Roots {
		if r.Path != "" && !filepath.IsAbs(r.Path) {
			cfg.Roots[i].Path = filepath.Join(baseDir, r.Path)
		}
	}
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
