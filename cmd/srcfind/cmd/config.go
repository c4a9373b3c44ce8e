package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/srcfind/configs"
	"github.com/Aman-CERP/srcfind/internal/config"
	srcerrors "github.com/Aman-CERP/srcfind/internal/errors"
	"github.com/Aman-CERP/srcfind/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage srcfind configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/srcfind/config.yaml)
  3. Project config (.srcfind.yaml or .srcfind.yml at the project root)
  4. Environment variables (SRCFIND_*)
  5. Command-line flags`,
		Example: `  # Create user config with the defaults
  srcfind config init

  # Create .srcfind.yaml in the current project
  srcfind config init --project

  # Show effective configuration
  srcfind config show`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force   bool
		project bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the defaults",
		Long: `Write the default configuration to the user config file, or with
--project to .srcfind.yaml at the project root.

An existing file is left alone unless --force is given, in which case it
is backed up first. The last 3 backups are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.GetUserConfigPath()
			if project {
				cwd, err := os.Getwd()
				if err != nil {
					return srcerrors.InternalError("failed to get current directory", err)
				}
				root, err := config.FindProjectRoot(cwd)
				if err != nil {
					return srcerrors.New(srcerrors.ErrCodeInvalidPath, err.Error(), err)
				}
				return runConfigInit(cmd, filepath.Join(root, config.ProjectConfigFile), force, projectTemplate)
			}
			return runConfigInit(cmd, path, force, defaultYAML)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file after backing it up")
	cmd.Flags().BoolVar(&project, "project", false, "Write .srcfind.yaml at the project root")

	return cmd
}

// defaultYAML writes the defaults as plain YAML.
func defaultYAML(path string) error {
	return config.NewConfig().WriteYAML(path)
}

// projectTemplate writes the commented project template.
func projectTemplate(path string) error {
	return os.WriteFile(path, []byte(configs.ProjectConfigTemplate), 0o644)
}

func runConfigInit(cmd *cobra.Command, path string, force bool, write func(string) error) error {
	out := output.New(cmd.OutOrStdout())

	if _, err := os.Stat(path); err == nil {
		if !force {
			out.Warning("Configuration already exists")
			out.Statusf("📁", "Location: %s", path)
			out.Newline()
			out.Status("💡", "Use --force to replace it with the defaults (a backup is kept)")
			return nil
		}

		backup, err := config.BackupFile(path)
		if err != nil {
			return srcerrors.New(srcerrors.ErrCodeWriteFailed, "failed to back up configuration", err)
		}
		out.Statusf("💾", "Backup: %s", backup)
	}

	if err := write(path); err != nil {
		return srcerrors.New(srcerrors.ErrCodeWriteFailed, "failed to write configuration", err).
			WithDetail("path", path)
	}

	out.Success("Wrote default configuration")
	out.Statusf("📁", "Location: %s", path)
	out.Status("📋", "Run 'srcfind config show' to see the merged result")
	return nil
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		defaults   bool
	)

	cmd := &cobra.Command{
		Use:   "show [path]",
		Short: "Show effective configuration",
		Long: `Show the configuration that applies to path (default ".") after
merging defaults, the user config, the project config and SRCFIND_*
environment variables.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, pathArg(args), jsonOutput, defaults)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "Show the hardcoded defaults only")

	return cmd
}

func runConfigShow(cmd *cobra.Command, path string, jsonOutput, defaults bool) error {
	cfg := config.NewConfig()
	if !defaults {
		info, err := os.Stat(path)
		if err != nil {
			return srcerrors.PathError(path, err)
		}
		if cfg, err = loadConfig(path, info.IsDir()); err != nil {
			return err
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	out := output.New(cmd.OutOrStdout())
	out.Header("Configuration sources")
	out.KeyValue("defaults", "built in")
	for _, src := range cfg.Sources {
		out.KeyValue("overridden by", src)
	}
	out.Newline()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return srcerrors.InternalError("failed to marshal config", err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
	return err
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}
