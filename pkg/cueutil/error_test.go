// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()

		if err := FormatError(nil, "config.cue"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("plain error keeps file name and message", func(t *testing.T) {
		t.Parallel()

		err := FormatError(errors.New("boom"), "config.cue")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "config.cue") || !strings.Contains(err.Error(), "boom") {
			t.Errorf("unexpected message %q", err)
		}
	})
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path []string
		want string
	}{
		{"empty", nil, ""},
		{"single", []string{"cache"}, "cache"},
		{"nested", []string{"scan", "patterns"}, "scan.patterns"},
		{"index", []string{"roots", "0", "kind"}, "roots[0].kind"},
		{"trailing index", []string{"scan", "patterns", "3"}, "scan.patterns[3]"},
		{"leading number", []string{"0", "kind"}, "0.kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := formatPath(tt.path); got != tt.want {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 100), 100, "config.cue"); err != nil {
		t.Errorf("exact limit: %v", err)
	}
	if err := CheckFileSize(nil, 100, "config.cue"); err != nil {
		t.Errorf("empty: %v", err)
	}

	err := CheckFileSize(make([]byte, 101), 100, "config.cue")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	for _, want := range []string{"config.cue", "101", "100"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should contain %q", err, want)
		}
	}
}
