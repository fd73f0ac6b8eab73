// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hostfacts/hostfacts/internal/testutil"
)

func TestProvider_LoadDefaults(t *testing.T) {
	t.Parallel()

	p := NewProvider()
	cfg, err := p.Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MaxDepth != DefaultConfig().MaxDepth {
		t.Errorf("MaxDepth = %d, want default", cfg.MaxDepth)
	}
	if p.Source() != "" {
		t.Errorf("Source() = %q, want empty for defaults", p.Source())
	}
}

func TestProvider_LoadRecordsSource(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteOSFiles(t, t.TempDir(), map[string]string{
		"config.cue": "parallelism: 4\n",
	})

	p := NewProvider()
	cfg, err := p.Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Parallelism != 4 {
		t.Errorf("Parallelism = %d, want 4", cfg.Parallelism)
	}
	if want := filepath.Join(dir, "config.cue"); p.Source() != want {
		t.Errorf("Source() = %q, want %q", p.Source(), want)
	}
}

func TestProvider_LoadCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewProvider().Load(ctx, LoadOptions{}); err == nil {
		t.Fatal("Load() with canceled context should fail")
	}
}
