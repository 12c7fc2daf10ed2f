package cmd

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/cfoundation/internal/config"
	"github.com/Iron-Ham/cfoundation/internal/dispatch"
	"github.com/Iron-Ham/cfoundation/internal/logging"
	"github.com/Iron-Ham/cfoundation/internal/notify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "cfoundation",
	Short: "Timers, executors and cross-process notifications",
	Long: `cfoundation drives the timer source, executors and notification
centers from the command line. Timers run on a serial queue or a worker
pool, and release notifications can be watched from another process
through a shared directory.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/cfoundation/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-dir", "", "directory for cfoundation.log (default: stderr)")
	rootCmd.PersistentFlags().String("notify-backend", "", "notification backend: file or local")
	rootCmd.PersistentFlags().String("notify-dir", "", "directory shared by file notification centers")
	bindFlags()
}

// bindFlags binds the global flags to their viper keys. Tests call it again
// after viper.Reset.
func bindFlags() {
	flags := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("logging.dir", flags.Lookup("log-dir"))
	_ = viper.BindPFlag("notify.backend", flags.Lookup("notify-backend"))
	_ = viper.BindPFlag("notify.dir", flags.Lookup("notify-dir"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CFOUNDATION")
	// e.g., CFOUNDATION_TIMER_INTERVAL_MS for timer.interval_ms
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	logger, err := logging.NewRotatingLogger(cfg.Logging.Dir, cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger.WithComponent("cli"), nil
}

func newCenter(cfg *config.Config, logger *logging.Logger) (notify.Center, error) {
	if cfg.Notify.Backend == "local" {
		return notify.NewLocalCenter(notify.WithLogger(logger)), nil
	}
	center, err := notify.NewFileCenter(cfg.Notify.Dir,
		notify.WithLogger(logger),
		notify.WithPollInterval(cfg.Notify.PollInterval()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open notification center: %w", err)
	}
	return center, nil
}

// newExecutor returns the executor ticks run on and a function that waits
// for its outstanding work.
func newExecutor(cfg *config.Config, logger *logging.Logger) (dispatch.Executor, func()) {
	if cfg.Timer.Executor == "pool" {
		pool := dispatch.NewPool("cli-pool", cfg.Dispatch.PoolSize, dispatch.WithLogger(logger))
		return pool, pool.Wait
	}
	queue := dispatch.NewQueue("cli", dispatch.WithLogger(logger))
	return queue, queue.Close
}
