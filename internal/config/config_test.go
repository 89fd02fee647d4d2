// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/invowk/resourcekit/pkg/cueutil"
	"github.com/invowk/resourcekit/pkg/issue"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()

	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	def := DefaultConfig()
	if cfg.Cache.Size != def.Cache.Size || cfg.Watch.Debounce != def.Watch.Debounce || cfg.Log.Level != def.Log.Level {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if len(cfg.Roots) != 0 {
		t.Errorf("Roots = %v, want none", cfg.Roots)
	}
}

func TestLoad_CUE(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.cue", `
roots: [
	{path: "res"},
	{path: "/opt/lib/app.jar", kind: "archive"},
]
cache: size: 16
scan: {
	include_root: true
	patterns: ["**/*.txt"]
}
watch: {
	enabled: true
	debounce: "250ms"
	ignore: ["**/*.tmp"]
}
log: level: "debug"
`)

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("resolved path = %q", path)
	}
	if len(cfg.Roots) != 2 {
		t.Fatalf("Roots = %+v", cfg.Roots)
	}
	if cfg.Roots[0].Path != filepath.Join(dir, "res") || cfg.Roots[0].EffectiveKind() != RootKindDir {
		t.Errorf("Roots[0] = %+v", cfg.Roots[0])
	}
	if cfg.Roots[1].Kind != RootKindArchive {
		t.Errorf("Roots[1] = %+v", cfg.Roots[1])
	}
	if cfg.Cache.Size != 16 {
		t.Errorf("Cache.Size = %d", cfg.Cache.Size)
	}
	if !cfg.Scan.IncludeRoot || !cfg.Scan.IncludeFiles || len(cfg.Scan.Patterns) != 1 {
		t.Errorf("Scan = %+v", cfg.Scan)
	}
	if !cfg.Watch.Enabled || cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("Watch = %+v", cfg.Watch)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoad_TOML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", `
[cache]
size = 8

[scan]
include_directories = false

[[roots]]
path = "lib.zip"
kind = "archive"
`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Cache.Size != 8 {
		t.Errorf("Cache.Size = %d", cfg.Cache.Size)
	}
	if cfg.Scan.IncludeDirectories || !cfg.Scan.IncludeFiles {
		t.Errorf("Scan = %+v", cfg.Scan)
	}
	if len(cfg.Roots) != 1 || cfg.Roots[0].Path != filepath.Join(dir, "lib.zip") {
		t.Errorf("Roots = %+v", cfg.Roots)
	}
}

func TestLoad_CUEPreferredOverTOML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.cue", `cache: size: 1`)
	writeConfig(t, dir, "config.toml", "[cache]\nsize = 2\n")

	cfg, err := Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Cache.Size != 1 {
		t.Errorf("Cache.Size = %d, want the CUE value", cfg.Cache.Size)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := writeConfig(t, dir, "custom.toml", "[log]\nlevel = \"warn\"\n")

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: p})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if path != p || cfg.Log.Level != "warn" {
		t.Errorf("path = %q, level = %q", path, cfg.Log.Level)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue")})
	if !issue.IsKind(err, issue.KindConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || !ae.HasSuggestions() {
		t.Errorf("expected actionable error with suggestions, got %v", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"cue schema type", "config.cue", `cache: size: "big"`, "cache.size"},
		{"cue unknown field", "config.cue", `colour: "red"`, "colour"},
		{"cue bad kind", "config.cue", `roots: [{path: "a", kind: "tar"}]`, "roots[0].kind"},
		{"cue bad duration", "config.cue", `watch: debounce: "soon"`, "watch.debounce"},
		{"cue syntax", "config.cue", `cache: {`, "config.cue"},
		{"toml syntax", "config.toml", "[cache\n", "config.toml"},
		{"toml unknown section", "config.toml", "[colour]\nx = 1\n", "colour"},
		{"toml bad kind", "config.toml", "[[roots]]\npath = \"a\"\nkind = \"tar\"\n", "invalid root kind"},
		{"toml bad level", "config.toml", "[log]\nlevel = \"loud\"\n", "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeConfig(t, dir, tt.file, tt.content)

			_, err := Load(context.Background(), LoadOptions{ConfigDirPath: dir})
			if err == nil {
				t.Fatal("expected error")
			}
			if !issue.IsKind(err, issue.KindConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_TooLarge(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", "# "+strings.Repeat("x", int(cueutil.DefaultMaxFileSize)))

	_, err := Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if !errors.Is(err, cueutil.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.cue", `cache: size: 4
log: level: "debug"`)
	t.Setenv("RESOURCEKIT_CACHE_SIZE", "64")
	t.Setenv("RESOURCEKIT_WATCH_DEBOUNCE", "2s")
	t.Setenv("RESOURCEKIT_SCAN_INCLUDE_ROOT", "true")

	cfg, err := Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Cache.Size != 64 {
		t.Errorf("Cache.Size = %d, want env override", cfg.Cache.Size)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("Watch.Debounce = %s", cfg.Watch.Debounce)
	}
	if !cfg.Scan.IncludeRoot {
		t.Error("Scan.IncludeRoot should come from the environment")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want file value", cfg.Log.Level)
	}
}

func TestConfigDir(t *testing.T) {
	t.Parallel()

	dir, err := ConfigDir()
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}
	if filepath.Base(dir) != AppName {
		t.Errorf("ConfigDir() = %q", dir)
	}
}
