// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/hostfacts/hostfacts/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `hostfacts config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage hostfacts configuration",
		Long: `Manage hostfacts configuration.

Configuration is read from the first of:
  - the file given with --config
  - $XDG_CONFIG_HOME/hostfacts/config.cue (default ~/.config/hostfacts/config.cue)
  - ./config.cue

Every key can be overridden with a HOSTFACTS_<KEY> environment variable,
for example HOSTFACTS_OUTPUT_FORMAT=json or HOSTFACTS_MAX_DEPTH=4.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, app, rootFlags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context(), rootFlags)
			if err != nil {
				return err
			}

			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App, rootFlags *rootFlagValues) error {
	cfg, err := app.loadConfig(cmd.Context(), rootFlags)
	if err != nil {
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	out := app.stdout

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)

	source := ""
	if p, ok := app.Config.(interface{ Source() string }); ok {
		source = p.Source()
	}
	if source != "" {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), source)
	} else {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%s:\n", keyStyle.Render("roots"))
	if len(cfg.Roots) == 0 {
		for _, root := range cfg.RootPaths() {
			fmt.Fprintf(out, "  - %s %s\n", valueStyle.Render(root), SubtitleStyle.Render("(default)"))
		}
	} else {
		for _, root := range cfg.Roots {
			fmt.Fprintf(out, "  - %s\n", valueStyle.Render(string(root)))
		}
	}

	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("max_depth"), valueStyle.Render(strconv.Itoa(cfg.MaxDepth)))
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("parallelism"), valueStyle.Render(strconv.Itoa(cfg.Parallelism)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("output"))
	fmt.Fprintf(out, "  format: %s\n", valueStyle.Render(string(cfg.Output.Format)))
	fmt.Fprintf(out, "  prefix: %s\n", valueStyle.Render(strconv.Quote(cfg.Output.Prefix)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("log"))
	fmt.Fprintf(out, "  level: %s\n", valueStyle.Render(string(cfg.Log.Level)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("watch"))
	fmt.Fprintf(out, "  debounce: %s\n", valueStyle.Render(cfg.Watch.Debounce.String()))

	return nil
}

func initConfig(app *App) error {
	cfgPath, err := config.ConfigFilePath()
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(cfgPath); statErr == nil {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), cfgPath)
		return nil
	}

	if _, err := config.CreateDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), cfgPath)
	return nil
}

func showConfigPath(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.ConfigFilePath()
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(app.stdout, "Config file: %s\n", cfgPath)
	return nil
}
