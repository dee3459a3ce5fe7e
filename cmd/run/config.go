// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/resdir/run/internal/config"
)

// Output formats of `run config show`.
const (
	formatText = "text"
	formatCUE  = "cue"
	formatTOML = "toml"
	formatJSON = "json"
)

// newConfigCommand creates the `run config` command tree.
func newConfigCommand(app *App, flags *globalFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage run configuration",
		Long: `Manage run configuration.

Configuration is stored in:
  - Linux: ~/.config/run/config.cue
  - macOS: ~/Library/Application Support/run/config.cue
  - Windows: %APPDATA%\run\config.cue

RUN_CLIENT_DIRECTORY, RESDIR_REGISTRY_URL, RUN_LOCAL_RESOURCES and
RUN_LOG_LEVEL override the file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfig(cmd, flags, format)
		},
	}
	showCmd.Flags().StringVar(&format, "format", formatText, "output format (text, cue, toml, json)")
	cfgCmd.AddCommand(showCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.configPath(flags)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(app.Stdout, path)
			return err
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.configPath(flags)
			if err != nil {
				return err
			}
			created, err := config.CreateDefaultConfig(filepath.Dir(path))
			if err != nil {
				return app.fail(nil, flags, err, "create configuration", path)
			}
			_, err = fmt.Fprintf(app.Stdout, "%s %s\n", SuccessStyle.Render("✓"), created)
			return err
		},
	})

	return cfgCmd
}

// configPath is the --config file, or config.cue in the platform directory.
func (a *App) configPath(flags *globalFlags) (string, error) {
	if flags.configPath != "" {
		return flags.configPath, nil
	}
	dir, err := config.ConfigDirFromEnv(a.LookupEnv)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt), nil
}

func (a *App) showConfig(cmd *cobra.Command, flags *globalFlags, format string) error {
	cfg, path, err := a.loadConfig(cmd.Context(), flags)
	if err != nil {
		return a.fail(nil, flags, err, "load configuration", flags.configPath)
	}

	switch format {
	case formatCUE:
		_, err = io.WriteString(a.Stdout, config.GenerateCUE(cfg))
	case formatTOML:
		var out string
		if out, err = config.GenerateTOML(cfg); err == nil {
			_, err = io.WriteString(a.Stdout, out)
		}
	case formatJSON:
		enc := json.NewEncoder(a.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(cfg)
	case formatText:
		err = a.printConfig(cfg, path)
	default:
		return fmt.Errorf("unknown format %q (expected %s, %s, %s or %s)", format, formatText, formatCUE, formatTOML, formatJSON)
	}
	return err
}

func (a *App) printConfig(cfg *config.Config, path string) error {
	w := a.Stdout
	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	rows := []struct{ key, value string }{
		{"client_directory", cfg.ClientDir(a.HomeDir)},
		{"registry.url", orNone(cfg.Registry.URL)},
		{"registry.resource", cfg.Registry.Resource},
		{"local_resources", orNone(cfg.LocalResourcesDir(a.HomeDir))},
		{"log_level", cfg.LogLevel.String()},
		{"ui.color_scheme", cfg.UI.ColorScheme.String()},
		{"ui.verbose", fmt.Sprint(cfg.UI.Verbose)},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render(r.key), SuccessStyle.Render(r.value)); err != nil {
			return err
		}
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
