// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hostfacts/hostfacts/internal/config"
	"github.com/hostfacts/hostfacts/internal/issue"
	"github.com/hostfacts/hostfacts/internal/publish"
	"github.com/hostfacts/hostfacts/internal/watch"
	"github.com/hostfacts/hostfacts/pkg/staticfact"

	"github.com/spf13/cobra"
)

type (
	// resolveFlagValues holds the flags of 'hostfacts resolve'.
	resolveFlagValues struct {
		resolutionFlagValues
		format          string
		prefix          string
		strict          bool
		watch           bool
		showDiagnostics bool
	}

	// resolveSettings is the effective configuration of one resolve invocation.
	resolveSettings struct {
		req       ResolveRequest
		publisher publish.Publisher
		prefix    string
		debounce  time.Duration
	}
)

func newResolveCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &resolveFlagValues{}

	cmd := &cobra.Command{
		Use:   "resolve [root...]",
		Short: "Resolve and print every fact",
		Long: `Resolve facts from the root files and print them.

Roots default to the 'roots' configuration key, or /etc/facts.conf followed
by /etc/facter/facts.conf. Facts defined earlier always win over later
definitions of the same name.`,
		Example: `  hostfacts resolve
  hostfacts resolve --format json
  hostfacts resolve --format env --prefix facter_ ./site.conf
  hostfacts resolve --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, app, rootFlags, flags, args)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format: text, json, toml, yaml, env (default from config)")
	cmd.Flags().StringVar(&flags.prefix, "prefix", "", "prefix prepended to every fact name (default from config)")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "exit with status 2 when any warning is reported")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "resolve again whenever a facts file changes")
	cmd.Flags().BoolVar(&flags.showDiagnostics, "show-diagnostics", false, "print diagnostics to stderr")

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return publish.Formats(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runResolve(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *resolveFlagValues, args []string) error {
	// Strict mode exits on warnings, watch mode never exits on its own.
	if flags.strict && flags.watch {
		return fmt.Errorf("--strict and --watch cannot be used together")
	}

	ctx := cmd.Context()
	cfg, err := app.loadConfig(ctx, rootFlags)
	if err != nil {
		return err
	}

	settings, err := newResolveSettings(cmd, app, cfg, flags, args)
	if err != nil {
		return err
	}

	res := app.Facts.Resolve(ctx, settings.req)
	if err := emitResult(app, settings, flags, res); err != nil {
		return err
	}

	if flags.watch {
		return runWatchMode(ctx, app, settings, flags, res)
	}

	if flags.strict {
		if n := len(res.Warnings()); n > 0 {
			return &ExitError{Code: ExitWarnings, Err: fmt.Errorf("%d warning(s) reported", n)}
		}
	}

	return nil
}

func newResolveSettings(cmd *cobra.Command, app *App, cfg *config.Config, flags *resolveFlagValues, args []string) (resolveSettings, error) {
	req, err := flags.request(cmd, cfg, app.logger, args)
	if err != nil {
		return resolveSettings{}, err
	}

	format := string(cfg.Output.Format)
	if cmd.Flags().Changed("format") {
		format = flags.format
	}
	publisher, err := publish.ForFormat(format)
	if err != nil {
		return resolveSettings{}, issue.NewErrorContext().
			WithOperation("select output format").
			WithResource(format).
			WithSuggestion("Use one of the supported formats with --format").
			WithIssue(issue.UnknownFormatId).
			Wrap(err).
			BuildError()
	}

	prefix := cfg.Output.Prefix
	if cmd.Flags().Changed("prefix") {
		prefix = flags.prefix
		if prefix != "" && !staticfact.ValidName(prefix) {
			return resolveSettings{}, &config.InvalidPrefixError{Value: prefix}
		}
	}

	return resolveSettings{
		req:       req,
		publisher: publisher,
		prefix:    prefix,
		debounce:  cfg.Watch.Debounce,
	}, nil
}

// emitResult prints the diagnostics (when requested) to stderr and the
// facts to stdout.
func emitResult(app *App, settings resolveSettings, flags *resolveFlagValues, res *staticfact.Result) error {
	if flags.showDiagnostics {
		renderDiagnostics(app.stderr, res.Diagnostics, true)
	}
	if err := settings.publisher.Publish(app.stdout, publish.NewFactSet(res.Facts, settings.prefix)); err != nil {
		return fmt.Errorf("failed to publish facts: %w", err)
	}
	return nil
}

// runWatchMode watches everything the first result depends on and resolves
// again on changes. The watched set is refreshed after every run, since an
// edit can add or remove includes. It blocks until ctx is cancelled.
func runWatchMode(ctx context.Context, app *App, settings resolveSettings, flags *resolveFlagValues, res *staticfact.Result) error {
	var w *watch.Watcher

	onChange := func(ctx context.Context, changed []string) error {
		app.logger.Info("facts files changed, resolving again", "files", len(changed))
		next := app.Facts.Resolve(ctx, settings.req)
		if err := emitResult(app, settings, flags, next); err != nil {
			return err
		}
		return w.Update(next.WatchDirs(), next.WatchPatterns())
	}

	w, err := watch.New(watch.Config{
		Dirs:     res.WatchDirs(),
		Patterns: res.WatchPatterns(),
		Debounce: settings.debounce,
		Logger:   app.logger,
		OnChange: onChange,
	})
	if err != nil {
		return watchFailed(err)
	}

	fmt.Fprintf(app.stderr, "%s Watching %d directories for changes (Ctrl+C to stop)...\n",
		VerboseHighlightStyle.Render("→"), len(w.Dirs()))

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return watchFailed(err)
	}
	return nil
}

func watchFailed(err error) error {
	return issue.NewErrorContext().
		WithOperation("watch facts files").
		WithSuggestion("Make sure the directories of the root files exist").
		WithSuggestion("On Linux, raise fs.inotify.max_user_watches").
		WithIssue(issue.WatchFailedId).
		Wrap(err).
		BuildError()
}
