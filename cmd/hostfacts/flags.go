// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"log/slog"

	"github.com/hostfacts/hostfacts/internal/config"

	"github.com/spf13/cobra"
)

// resolutionFlagValues holds the flags shared by every command that resolves facts.
type resolutionFlagValues struct {
	maxDepth int
	parallel int
}

func (f *resolutionFlagValues) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", 0, "maximum include nesting depth, 1..64 (default from config)")
	cmd.Flags().IntVarP(&f.parallel, "parallel", "p", 0, "files of one wildcard include read concurrently (default from config)")
}

// request builds a ResolveRequest from the configuration, overridden by
// positional root arguments and explicitly set flags.
func (f *resolutionFlagValues) request(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, roots []string) (ResolveRequest, error) {
	req := ResolveRequest{
		Roots:       cfg.RootPaths(),
		MaxDepth:    cfg.MaxDepth,
		Parallelism: cfg.Parallelism,
		Logger:      logger,
	}
	if len(roots) > 0 {
		req.Roots = roots
	}

	if cmd.Flags().Changed("max-depth") {
		if f.maxDepth < 1 || f.maxDepth > config.MaxDepthLimit {
			return ResolveRequest{}, &config.OutOfRangeError{
				Field: "--max-depth", Value: f.maxDepth, Min: 1, Max: config.MaxDepthLimit, Sentinel: config.ErrInvalidMaxDepth,
			}
		}
		req.MaxDepth = f.maxDepth
	}
	if cmd.Flags().Changed("parallel") {
		if f.parallel < 1 {
			return ResolveRequest{}, &config.OutOfRangeError{
				Field: "--parallel", Value: f.parallel, Min: 1, Sentinel: config.ErrInvalidParallelism,
			}
		}
		req.Parallelism = f.parallel
	}

	return req, nil
}
