// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hostfacts/hostfacts/internal/config"
	"github.com/hostfacts/hostfacts/pkg/staticfact"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: every Cobra command handler receives an App reference and
	// delegates through its service interfaces (Config, Facts).
	App struct {
		Config ConfigProvider
		Facts  FactService
		stdout io.Writer
		stderr io.Writer
		logger *slog.Logger
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp. Tests supply an in-memory
	// filesystem and buffers.
	Dependencies struct {
		Config ConfigProvider
		Facts  FactService
		// Fs is the filesystem facts files are read from.
		Fs afero.Fs
		// HomeDir replaces a leading "~" in roots and include patterns.
		HomeDir string
		// WorkDir anchors relative root paths.
		WorkDir string
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// ResolveRequest captures the inputs of one resolution run.
	ResolveRequest struct {
		// Roots are the root facts files, in precedence order.
		Roots []string
		// MaxDepth bounds single-file include nesting.
		MaxDepth int
		// Parallelism is the number of files of one flat include read concurrently.
		Parallelism int
		// Logger receives diagnostics as they are produced.
		Logger *slog.Logger
	}

	// FactService resolves facts files. Implementations never fail: every
	// problem is reported as a diagnostic in the Result.
	FactService interface {
		Resolve(ctx context.Context, req ResolveRequest) *staticfact.Result
	}

	// ConfigProvider loads configuration using explicit options.
	// This abstraction enables testing with custom config sources.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// fsFactService resolves facts from an afero filesystem.
	fsFactService struct {
		fs      afero.Fs
		homeDir string
		workDir string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Facts == nil {
		if deps.Fs == nil {
			deps.Fs = afero.NewOsFs()
		}
		if deps.WorkDir == "" {
			if wd, err := os.Getwd(); err == nil {
				deps.WorkDir = wd
			}
		}
		deps.Facts = &fsFactService{fs: deps.Fs, homeDir: deps.HomeDir, workDir: deps.WorkDir}
	}

	return &App{
		Config: deps.Config,
		Facts:  deps.Facts,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		logger: newLogger(deps.Stderr, config.LogLevelInfo),
	}, nil
}

// Resolve runs one resolution with a fresh Resolver.
func (s *fsFactService) Resolve(ctx context.Context, req ResolveRequest) *staticfact.Result {
	r := staticfact.New(staticfact.Options{
		Fs:          s.fs,
		HomeDir:     s.homeDir,
		WorkDir:     s.workDir,
		MaxDepth:    req.MaxDepth,
		Parallelism: req.Parallelism,
		Logger:      req.Logger,
	})
	return r.Resolve(ctx, req.Roots...)
}

// loadConfig loads the configuration honoring --config and installs a logger
// at the effective level: --verbose wins over --log-level, which wins over
// the configured log.level.
func (a *App) loadConfig(ctx context.Context, flags *rootFlagValues) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if flags.logLevel != "" {
		level = config.LogLevel(flags.logLevel)
		if valid, errs := level.IsValid(); !valid {
			return nil, errs[0]
		}
	}
	if flags.verbose {
		level = config.LogLevelDebug
	}
	a.logger = newLogger(a.stderr, level)

	return cfg, nil
}

// newLogger returns a slog.Logger backed by a charmbracelet/log handler
// writing to w with the hostfacts prefix.
func newLogger(w io.Writer, level config.LogLevel) *slog.Logger {
	lvl, err := charmlog.ParseLevel(string(level))
	if err != nil {
		lvl = charmlog.InfoLevel
	}
	return slog.New(charmlog.NewWithOptions(w, charmlog.Options{
		Prefix: config.AppName,
		Level:  lvl,
	}))
}
