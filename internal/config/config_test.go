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

	"github.com/google/go-cmp/cmp"

	"github.com/hostfacts/hostfacts/internal/issue"
	"github.com/hostfacts/hostfacts/internal/testutil"
)

func loadFile(t *testing.T, content string) (*Config, error) {
	t.Helper()
	dir := testutil.WriteOSFiles(t, t.TempDir(), map[string]string{"config.cue": content})
	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(dir, "config.cue"),
	})
	return cfg, err
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.MaxDepth != 8 {
		t.Errorf("expected default max_depth 8, got %d", cfg.MaxDepth)
	}
	if cfg.Parallelism != 1 {
		t.Errorf("expected default parallelism 1, got %d", cfg.Parallelism)
	}
	if len(cfg.Roots) != 0 {
		t.Errorf("expected no configured roots, got %v", cfg.Roots)
	}
	if cfg.Output.Format != FormatText {
		t.Errorf("expected default format text, got %s", cfg.Output.Format)
	}
	if cfg.Log.Level != LogLevelInfo {
		t.Errorf("expected default log level info, got %s", cfg.Log.Level)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("expected default debounce 500ms, got %s", cfg.Watch.Debounce)
	}
	if ok, errs := cfg.IsValid(); !ok {
		t.Errorf("default config should be valid: %v", errs)
	}
}

func TestConfigDir(t *testing.T) {
	t.Cleanup(testutil.MustSetenv(t, "XDG_CONFIG_HOME", "/tmp/test-xdg-config"))

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if want := filepath.Join("/tmp/test-xdg-config", AppName); dir != want {
		t.Errorf("ConfigDir() = %s, want %s", dir, want)
	}

	t.Cleanup(testutil.MustSetenv(t, "XDG_CONFIG_HOME", ""))
	home := t.TempDir()
	t.Cleanup(testutil.SetHomeDir(t, home))

	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if want := filepath.Join(home, ".config", AppName); dir != want {
		t.Errorf("ConfigDir() = %s, want %s", dir, want)
	}
}

func TestConfigDir_Override(t *testing.T) {
	SetConfigDirOverride("/custom/dir")
	t.Cleanup(Reset)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if dir != "/custom/dir" {
		t.Errorf("ConfigDir() = %s, want /custom/dir", dir)
	}

	path, err := ConfigFilePath()
	if err != nil {
		t.Fatalf("ConfigFilePath() returned error: %v", err)
	}
	if path != "/custom/dir/config.cue" {
		t.Errorf("ConfigFilePath() = %s", path)
	}
}

func TestLoad_FullFile(t *testing.T) {
	t.Parallel()

	cfg, err := loadFile(t, `
roots: ["/srv/facts.conf", "/etc/facts.conf"]
max_depth: 12
parallelism: 4
output: {
	format: "json"
	prefix: "site_"
}
log: level: "debug"
watch: debounce: "2s"
`)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	want := &Config{
		Roots:       []RootPath{"/srv/facts.conf", "/etc/facts.conf"},
		MaxDepth:    12,
		Parallelism: 4,
		Output:      OutputConfig{Format: FormatJSON, Prefix: "site_"},
		Log:         LogConfig{Level: LogLevelDebug},
		Watch:       WatchConfig{Debounce: 2 * time.Second},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := loadFile(t, "output: format: \"yaml\"\n")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Output.Format != FormatYAML {
		t.Errorf("format = %s, want yaml", cfg.Output.Format)
	}
	if cfg.MaxDepth != 8 || cfg.Parallelism != 1 || cfg.Watch.Debounce != DefaultDebounce {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"depth too large", "max_depth: 100\n", "max_depth"},
		{"depth zero", "max_depth: 0\n", "max_depth"},
		{"parallelism zero", "parallelism: 0\n", "parallelism"},
		{"unknown format", "output: format: \"xml\"\n", "output.format"},
		{"unknown key", "colour: \"red\"\n", "colour"},
		{"bad debounce", "watch: debounce: \"soon\"\n", "watch.debounce"},
		{"blank root", "roots: [\"  \"]\n", "roots[0]"},
		{"syntax error", "max_depth: {\n", "config.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := loadFile(t, tt.content)
			if err == nil {
				t.Fatal("expected load to fail")
			}

			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("expected *issue.ActionableError, got %T", err)
			}
			if ae.Operation != "load configuration" {
				t.Errorf("Operation = %q", ae.Operation)
			}
			if len(ae.Suggestions) == 0 {
				t.Error("expected suggestions")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.cue")
	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: missing})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *issue.ActionableError, got %T", err)
	}
	if ae.Resource != missing {
		t.Errorf("Resource = %q, want %q", ae.Resource, missing)
	}
}

func TestLoad_FileTooLarge(t *testing.T) {
	t.Parallel()

	_, err := loadFile(t, "// "+strings.Repeat("x", maxConfigFileSize)+"\n")
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Fatalf("expected size error, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Cleanup(testutil.MustSetenv(t, "HOSTFACTS_MAX_DEPTH", "3"))
	t.Cleanup(testutil.MustSetenv(t, "HOSTFACTS_OUTPUT_FORMAT", "env"))
	t.Cleanup(testutil.MustSetenv(t, "HOSTFACTS_WATCH_DEBOUNCE", "1s"))

	cfg, err := loadFile(t, "max_depth: 12\noutput: format: \"json\"\n")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want env override 3", cfg.MaxDepth)
	}
	if cfg.Output.Format != FormatEnv {
		t.Errorf("Format = %s, want env override", cfg.Output.Format)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Debounce = %s, want 1s", cfg.Watch.Debounce)
	}
}

func TestLoad_InvalidEnvOverride(t *testing.T) {
	t.Cleanup(testutil.MustSetenv(t, "HOSTFACTS_PARALLELISM", "0"))

	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrInvalidParallelism) {
		t.Errorf("error should wrap ErrInvalidParallelism, got %v", err)
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Operation != "validate configuration" {
		t.Errorf("expected validate configuration error, got %v", err)
	}
}

func TestLoad_UserDirBeforeWorkingDir(t *testing.T) {
	userDir := testutil.WriteOSFiles(t, t.TempDir(), map[string]string{"config.cue": "max_depth: 5\n"})
	workDir := testutil.WriteOSFiles(t, t.TempDir(), map[string]string{"config.cue": "max_depth: 6\n"})
	t.Cleanup(testutil.MustChdir(t, workDir))

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: userDir})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.MaxDepth != 5 {
		t.Errorf("MaxDepth = %d, want 5 from user dir", cfg.MaxDepth)
	}
	if path != filepath.Join(userDir, "config.cue") {
		t.Errorf("path = %q", path)
	}

	cfg, path, err = loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.MaxDepth != 6 || path != "config.cue" {
		t.Errorf("expected ./config.cue fallback, got depth %d from %q", cfg.MaxDepth, path)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	src := DefaultConfig()
	src.Roots = []RootPath{"/srv/facts.conf"}
	src.MaxDepth = 16
	src.Parallelism = 3
	src.Output = OutputConfig{Format: FormatTOML, Prefix: "dc_"}
	src.Log.Level = LogLevelWarn
	src.Watch.Debounce = 750 * time.Millisecond

	got, err := loadFile(t, GenerateCUE(src))
	if err != nil {
		t.Fatalf("generated CUE does not load: %v", err)
	}
	if diff := cmp.Diff(src, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateCUE_DefaultsLoad(t *testing.T) {
	t.Parallel()

	got, err := loadFile(t, GenerateCUE(DefaultConfig()))
	if err != nil {
		t.Fatalf("default CUE does not load: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), got); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hostfacts")
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	path, err := CreateDefaultConfig()
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error: %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if string(data) != GenerateCUE(DefaultConfig()) {
		t.Error("written file should contain the generated defaults")
	}

	// An existing file is left alone.
	if err := os.WriteFile(path, []byte("max_depth: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateDefaultConfig(); err != nil {
		t.Fatalf("second CreateDefaultConfig() error: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "max_depth: 2\n" {
		t.Errorf("existing config overwritten: %q", data)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"max_depth"}, "max_depth"},
		{[]string{"output", "format"}, "output.format"},
		{[]string{"roots", "0"}, "roots[0]"},
		{[]string{"0"}, "0"},
	}

	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestFormatCUEError_NonCUE(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")
	err := formatCUEError(base, "config.cue")
	if !errors.Is(err, base) {
		t.Error("non-CUE errors should stay wrapped")
	}
	if formatCUEError(nil, "config.cue") != nil {
		t.Error("nil error should stay nil")
	}
}
