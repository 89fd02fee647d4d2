// SPDX-License-Identifier: MPL-2.0

package protocol

import (
	"errors"
	"net/url"
	"testing"

	"github.com/invowk/resourcekit/pkg/issue"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return u
}

func TestProtocol_Matches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		protocol Protocol
		name     string
		want     bool
	}{
		{File, "file", true},
		{File, "FILE", true},
		{Jar, "jar", true},
		{Jar, "file", false},
		{New("mem"), "Mem", true},
		{HTTPS, "http", false},
	}

	for _, tt := range tests {
		t.Run(tt.protocol.Name()+"/"+tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.protocol.Matches(tt.name); got != tt.want {
				t.Errorf("%s.Matches(%q) = %v, want %v", tt.protocol, tt.name, got, tt.want)
			}
		})
	}
}

func TestNew_BuiltinKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want Kind
	}{
		{"file", KindFile},
		{"JAR", KindJar},
		{"http", KindHTTP},
		{"https", KindHTTPS},
		{"mem", KindCustom},
	}

	for _, tt := range tests {
		if got := New(tt.name).Kind(); got != tt.want {
			t.Errorf("New(%q).Kind() = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestStandard(t *testing.T) {
	t.Parallel()

	p, ok := Standard(mustParse(t, "jar:file:///a.jar!/x"))
	if !ok || p != Jar {
		t.Errorf("Standard(jar url) = %v, %v; want jar, true", p, ok)
	}
	if _, ok := Standard(mustParse(t, "mem://1234/a")); ok {
		t.Error("Standard(mem url) should not match a built-in")
	}
	if _, ok := Standard(nil); ok {
		t.Error("Standard(nil) should not match")
	}
}

func TestRequireMatch(t *testing.T) {
	t.Parallel()

	if err := File.RequireMatch(mustParse(t, "file:///tmp/a")); err != nil {
		t.Errorf("RequireMatch(file url) = %v, want nil", err)
	}
	err := File.RequireMatch(mustParse(t, "jar:file:///tmp/a.jar!/x"))
	if !errors.Is(err, issue.ErrProtocolMismatch) {
		t.Errorf("RequireMatch(jar url) = %v, want protocol mismatch", err)
	}
}

func TestSplitJar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		archive string
		entry   string
	}{
		{"jar:file:///opt/app.jar!/lib/a.class", "file:///opt/app.jar", "lib/a.class"},
		{"jar:file:///opt/app.jar!/", "file:///opt/app.jar", ""},
		{"jar:file:///opt/app.jar", "file:///opt/app.jar", ""},
		{"jar:file:///opt/app.jar!/a!/b", "file:///opt/app.jar", "a!/b"},
		{"jar:file:///opt/app.jar!/with%20space.txt", "file:///opt/app.jar", "with space.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			archive, entry, err := SplitJar(mustParse(t, tt.raw))
			if err != nil {
				t.Fatalf("SplitJar() error = %v", err)
			}
			if archive.String() != tt.archive || entry != tt.entry {
				t.Errorf("SplitJar() = (%s, %q), want (%s, %q)", archive, entry, tt.archive, tt.entry)
			}
		})
	}
}

func TestSplitJar_WrongProtocol(t *testing.T) {
	t.Parallel()

	_, _, err := SplitJar(mustParse(t, "file:///opt/app.jar"))
	if !errors.Is(err, issue.ErrProtocolMismatch) {
		t.Errorf("SplitJar(file url) = %v, want protocol mismatch", err)
	}
}

func TestJarURL_RoundTrip(t *testing.T) {
	t.Parallel()

	archive := mustParse(t, "file:///opt/app.jar")
	u := JarURL(archive, "/dir/with space.txt")
	if got := u.String(); got != "jar:file:///opt/app.jar!/dir/with%20space.txt" {
		t.Errorf("JarURL() = %q", got)
	}

	reparsed := mustParse(t, u.String())
	entry, err := EntryName(reparsed)
	if err != nil || entry != "dir/with space.txt" {
		t.Errorf("EntryName() = %q, %v; want %q", entry, err, "dir/with space.txt")
	}
}

func TestEntryPrefix(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":          "",
		"/":         "",
		"lib/":      "lib/",
		"//lib//a":  "lib/a",
		"li":        "li",
		"/a/b/c/":   "a/b/c/",
		"a///b.txt": "a/b.txt",
	}
	for in, want := range tests {
		if got := EntryPrefix(in); got != want {
			t.Errorf("EntryPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}
