// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/hostfacts/hostfacts/internal/issue"

	"github.com/spf13/cobra"
)

func newGetCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &resolutionFlagValues{}

	cmd := &cobra.Command{
		Use:   "get <name> [root...]",
		Short: "Print the value of a single fact",
		Long: `Resolve facts and print the value of one of them.

The exit status is 1 when the fact is not defined.`,
		Example: `  hostfacts get role
  VALUE=$(hostfacts get datacenter ./site.conf)`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := app.loadConfig(ctx, rootFlags)
			if err != nil {
				return err
			}

			req, err := flags.request(cmd, cfg, app.logger, args[1:])
			if err != nil {
				return err
			}

			name := args[0]
			res := app.Facts.Resolve(ctx, req)
			value, ok := res.Facts[name]
			if !ok {
				return &ExitError{
					Code: ExitFactNotFound,
					Err: issue.NewErrorContext().
						WithOperation("get fact").
						WithResource(name).
						WithSuggestion("Run 'hostfacts resolve' to list every fact").
						WithIssue(issue.FactNotFoundId).
						Wrap(fmt.Errorf("fact %q is not defined", name)).
						BuildError(),
				}
			}

			fmt.Fprintln(app.stdout, value)
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}
