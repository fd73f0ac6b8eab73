// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestWriteFiles(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	WriteFiles(t, fs, map[string]string{
		"/etc/facts.conf":       "foo=bar\n",
		"/etc/facts.d/a.fact":   "answer=42\n",
		"/etc/facts.d/empty.d/": "",
	})

	data, err := afero.ReadFile(fs, "/etc/facts.d/a.fact")
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(data) != "answer=42\n" {
		t.Errorf("content = %q, want %q", data, "answer=42\n")
	}

	info, err := fs.Stat("/etc/facts.d/empty.d")
	if err != nil || !info.IsDir() {
		t.Errorf("expected directory /etc/facts.d/empty.d, stat = %v, %v", info, err)
	}
}

func TestWriteOSFiles(t *testing.T) {
	t.Parallel()

	root := WriteOSFiles(t, t.TempDir(), map[string]string{
		"facts.conf":     "include facts.d/*.fact\n",
		"facts.d/a.fact": "answer=42\n",
	})

	data, err := os.ReadFile(filepath.Join(root, "facts.d", "a.fact"))
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(data) != "answer=42\n" {
		t.Errorf("content = %q, want %q", data, "answer=42\n")
	}
}

func TestMustSetenv_UnsetsNewVariable(t *testing.T) {
	const key = "HOSTFACTS_TESTUTIL_UNSET_ME"
	cleanup := MustSetenv(t, key, "1")
	if os.Getenv(key) != "1" {
		t.Fatalf("%s not set", key)
	}
	cleanup()
	if _, ok := os.LookupEnv(key); ok {
		t.Errorf("%s still set after cleanup", key)
	}
}
