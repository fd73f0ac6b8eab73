// SPDX-License-Identifier: MPL-2.0

package staticfact

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/hostfacts/hostfacts/internal/testutil"
)

func newTestExpander(t *testing.T) *Expander {
	t.Helper()
	fs := afero.NewMemMapFs()
	testutil.WriteFiles(t, fs, map[string]string{
		"/etc/facts.d/b.fact":         "b=1",
		"/etc/facts.d/a.fact":         "a=1",
		"/etc/facts.d/c.txt":          "c=1",
		"/etc/facts.d/dir.fact/":      "",
		"/etc/local.fact":             "l=1",
		"/home/ops/.facts.d/one.fact": "o=1",
	})
	return NewExpander(fs, "/home/ops")
}

func TestExpander_Expand(t *testing.T) {
	t.Parallel()

	e := newTestExpander(t)

	tests := []struct {
		name    string
		pattern string
		baseDir string
		want    []string
	}{
		{
			name:    "wildcard sorted and files only",
			pattern: "/etc/facts.d/*.fact",
			want:    []string{"/etc/facts.d/a.fact", "/etc/facts.d/b.fact"},
		},
		{
			name:    "single file",
			pattern: "/etc/local.fact",
			want:    []string{"/etc/local.fact"},
		},
		{
			name:    "missing file is empty",
			pattern: "/no/such/file",
			want:    []string{},
		},
		{
			name:    "wildcard in missing directory is empty",
			pattern: "/no/such/*.fact",
			want:    []string{},
		},
		{
			name:    "directory is not a match",
			pattern: "/etc/facts.d",
			want:    []string{},
		},
		{
			name:    "tilde expands to home",
			pattern: "~/.facts.d/*.fact",
			baseDir: "/etc",
			want:    []string{"/home/ops/.facts.d/one.fact"},
		},
		{
			name:    "relative to including directory",
			pattern: "local.fact",
			baseDir: "/etc",
			want:    []string{"/etc/local.fact"},
		},
		{
			name:    "dot-dot resolved",
			pattern: "../etc/facts.d/../local.fact",
			baseDir: "/etc",
			want:    []string{"/etc/local.fact"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := e.Expand(filepath.FromSlash(tt.pattern), filepath.FromSlash(tt.baseDir))
			if err != nil {
				t.Fatalf("Expand(%q) error: %v", tt.pattern, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Expand(%q) mismatch (-want +got):\n%s", tt.pattern, diff)
			}
		})
	}
}

func TestExpander_ExpandBadPattern(t *testing.T) {
	t.Parallel()

	e := newTestExpander(t)

	_, err := e.Expand("/etc/facts.d/[a", "/")
	if !errors.Is(err, filepath.ErrBadPattern) {
		t.Fatalf("Expand() error = %v, want filepath.ErrBadPattern", err)
	}
}

func TestExpander_Canonicalize(t *testing.T) {
	t.Parallel()

	e := NewExpander(afero.NewMemMapFs(), "/home/ops")
	noHome := NewExpander(afero.NewMemMapFs(), "")

	tests := []struct {
		name     string
		expander *Expander
		pattern  string
		baseDir  string
		want     string
	}{
		{name: "absolute", expander: e, pattern: "/etc/./facts.conf", baseDir: "/x", want: "/etc/facts.conf"},
		{name: "home alone", expander: e, pattern: "~", want: "/home/ops"},
		{name: "home prefix", expander: e, pattern: "~/.facts.d/*.fact", want: "/home/ops/.facts.d/*.fact"},
		{name: "other user untouched", expander: e, pattern: "~root/x", baseDir: "/etc", want: "/etc/~root/x"},
		{name: "relative", expander: e, pattern: "facts.d/a.fact", baseDir: "/etc", want: "/etc/facts.d/a.fact"},
		{name: "relative without base", expander: e, pattern: "facts.conf", want: "facts.conf"},
		{name: "no home configured", expander: noHome, pattern: "~/x", baseDir: "/etc", want: "/etc/~/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.expander.Canonicalize(tt.pattern, tt.baseDir)
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("Canonicalize(%q, %q) = %q, want %q", tt.pattern, tt.baseDir, got, tt.want)
			}
		})
	}
}
