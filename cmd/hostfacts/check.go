// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &resolutionFlagValues{}

	cmd := &cobra.Command{
		Use:   "check [root...]",
		Short: "Report problems in facts files",
		Long: `Resolve facts and print the diagnostics instead of the facts.

The exit status is 2 when any warning is reported. Informational
diagnostics, such as an absent optional root, are only shown with --verbose.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := app.loadConfig(ctx, rootFlags)
			if err != nil {
				return err
			}

			req, err := flags.request(cmd, cfg, app.logger, args)
			if err != nil {
				return err
			}

			res := app.Facts.Resolve(ctx, req)
			renderDiagnostics(app.stdout, res.Diagnostics, rootFlags.verbose)

			warnings := res.Warnings()
			if len(warnings) == 0 {
				fmt.Fprintf(app.stdout, "%s %d facts from %d files, no warnings\n",
					SuccessStyle.Render("✓"), len(res.Facts), len(res.Sources))
				return nil
			}

			renderExplainHint(app.stdout, warnings)
			return &ExitError{Code: ExitWarnings, Err: fmt.Errorf("%d warning(s) in facts files", len(warnings))}
		},
	}

	flags.register(cmd)

	return cmd
}
