// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/hostfacts/hostfacts/internal/issue"

	"github.com/spf13/cobra"
)

func newExplainCommand(app *App) *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "explain <issue>",
		Short: "Explain a diagnostic or error",
		Long: `Print the catalog entry for an issue. Diagnostic codes such as
duplicate_key are accepted as well as issue names such as duplicate-key.`,
		Example: `  hostfacts explain duplicate-key
  hostfacts explain include_cycle`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return issue.Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, ok := issue.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown issue %q (known: %s)", args[0], strings.Join(issue.Names(), ", "))
			}

			rendered, err := entry.Render(style)
			if err != nil {
				return fmt.Errorf("failed to render issue %q: %w", entry.Name(), err)
			}
			fmt.Fprint(app.stdout, rendered)
			return nil
		},
	}

	cmd.Flags().StringVar(&style, "style", "dark", "glamour style: dark, light, notty, or a style file path")

	return cmd
}
