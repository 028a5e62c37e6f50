package main

import (
	"log/slog"
	"os"

	"wsync/internal/config"
	"wsync/internal/slogutil"
	"wsync/internal/version"

	"github.com/spf13/cobra"
)

var (
	// workDirFlag is the CLI --dir flag value; config and default store
	// paths resolve against it.
	workDirFlag string
	logLevel    string
	logFormat   string
)

var rootCmd = &cobra.Command{
	Use:   "wsync",
	Short: "wsync - checksum-driven workspace snapshot synchronization",
	Long: `wsync ingests workspaces into a content-addressed asset store, serves
those assets over HTTP, and reconstructs full workspace snapshots on the
consumer side by pulling only the assets a snapshot's checksums name.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("wsync version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&workDirFlag, "dir", ".",
		"Working directory holding the .wsync config and stores")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Log format: human or json (default from config)")
}

// loadConfig reads the config for the working directory and applies the
// logging flag overrides. Precedence: CLI flag > config file > default.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(workDirFlag)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slogutil.NewLogger(os.Stderr, slogutil.LevelFromString(cfg.Logging.Level), cfg.Logging.Format)
}
