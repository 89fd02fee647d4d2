// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"errors"
	"net/url"
	"slices"
	"testing"

	"github.com/spf13/afero"

	"github.com/invowk/resourcekit/pkg/protocol"
)

type fixedScanner []string

func (s fixedScanner) Scan(Offset, Filter) (Names, error) { return FromSlice(s), nil }

func TestFactory_Matches(t *testing.T) {
	t.Parallel()

	u, _ := url.Parse("file:///tmp/x")
	tests := []struct {
		name    string
		factory Factory
		want    bool
	}{
		{"protocol equality", Factory{Protocol: "file"}, true},
		{"case insensitive", Factory{Protocol: "FILE"}, true},
		{"other protocol", Factory{Protocol: "jar"}, false},
		{"matcher wins", Factory{Protocol: "file", Matcher: func(*url.URL) bool { return false }}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.factory.Matches(u); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistry_FirstMatchWins(t *testing.T) {
	t.Parallel()

	r := NewRegistry(
		Factory{Protocol: "mem", New: func() Scanner { return fixedScanner{"first"} }},
		Factory{Protocol: "mem", New: func() Scanner { return fixedScanner{"second"} }},
	)
	u := &url.URL{Scheme: "mem", Host: "x"}

	if got := len(r.MatchAll(u)); got != 2 {
		t.Errorf("MatchAll() returned %d factories, want 2", got)
	}
	names, err := r.Scan(Offset{URL: u}, DefaultFilter())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	got, _ := Collect(names)
	if !slices.Equal(got, []string{"first"}) {
		t.Errorf("Scan() = %q, want [first]", got)
	}
}

func TestRegistry_Default(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry(protocol.DefaultRegistry(afero.NewMemMapFs()))
	for _, raw := range []string{"file:///a", "jar:file:///a.jar!/x"} {
		u, _ := url.Parse(raw)
		f, ok := r.Match(u)
		if !ok || !f.Matches(u) {
			t.Errorf("Match(%s) found no factory", raw)
		}
	}

	_, err := r.Scan(Offset{URL: &url.URL{Scheme: "https", Host: "example.com"}}, DefaultFilter())
	if !errors.Is(err, ErrNoScanner) {
		t.Errorf("Scan(https) error = %v, want ErrNoScanner", err)
	}
}
