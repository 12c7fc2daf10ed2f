package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Iron-Ham/cfoundation/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify cfoundation configuration",
	Long: `View or modify cfoundation configuration.

Without arguments, displays the effective configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration as YAML",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  cfoundation config set timer.interval_ms 250
  cfoundation config set notify.backend local

Valid keys:
  timer.interval_ms         - Repeat interval in milliseconds (0 fires once)
  timer.leeway_ms           - Allowed delivery delay in milliseconds
  timer.ticks               - Ticks 'timer run' waits for
  timer.executor            - Options: queue, pool
  notify.backend            - Options: file, local
  notify.dir                - Directory shared by file centers
  notify.poll_interval_ms   - Fallback poll interval in milliseconds
  logging.level             - Options: debug, info, warn, error
  logging.dir               - Log directory (empty logs to stderr)
  logging.max_size_mb       - Log size before rotation
  logging.max_backups       - Rotated log files to keep
  dispatch.pool_size        - Worker count of pool executors`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/cfoundation/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

// configKeys maps settable keys to their value kind.
var configKeys = map[string]string{
	"timer.interval_ms":       "int",
	"timer.leeway_ms":         "int",
	"timer.ticks":             "int",
	"timer.executor":          "string",
	"notify.backend":          "string",
	"notify.dir":              "string",
	"notify.poll_interval_ms": "int",
	"logging.level":           "string",
	"logging.dir":             "string",
	"logging.max_size_mb":     "int",
	"logging.max_backups":     "int",
	"dispatch.pool_size":      "int",
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	kind, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'cfoundation config set --help' to see valid keys", key)
	}

	var typed any = value
	if kind == "int" {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		typed = n
	}

	viper.Set(key, typed)
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	configFile := config.ConfigFile()
	if err := writeConfig(configFile, cfg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, typed)
	fmt.Fprintf(out, "Config saved to %s\n", render(out, mutedStyle, configFile))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'cfoundation config set' to modify values", configFile)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	if err := writeConfig(configFile, config.Default()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", render(out, okStyle, "Created config file at"), configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), config.ConfigFile())
	return nil
}

func writeConfig(path string, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
