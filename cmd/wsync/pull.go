package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"wsync/internal/checksum"
	"wsync/internal/engine"
	"wsync/internal/source"

	"github.com/spf13/cobra"
)

var (
	pullRemote  string
	pullJSON    bool
	pullNoCache bool
)

var pullCmd = &cobra.Command{
	Use:   "pull <root-checksum>",
	Short: "Pull a workspace snapshot from a remote provider",
	Long: `Reconstruct the full workspace snapshot a root checksum names by
fetching its assets from a remote provider. Assets already present in the
local cache are not fetched again.`,
	Args: cobra.ExactArgs(1),
	RunE: runPull,
}

func init() {
	rootCmd.AddCommand(pullCmd)

	pullCmd.Flags().StringVar(&pullRemote, "remote", "", "Provider base URL (default from config)")
	pullCmd.Flags().BoolVar(&pullJSON, "json", false, "Print the full snapshot as JSON")
	pullCmd.Flags().BoolVar(&pullNoCache, "no-cache", false, "Skip the local cache and fetch everything")
}

func runPull(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	root, err := checksum.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid root checksum: %w", err)
	}

	remoteURL := cfg.Remote.URL
	if pullRemote != "" {
		remoteURL = pullRemote
	}
	if remoteURL == "" {
		return fmt.Errorf("no remote configured, set remote.url or pass --remote")
	}

	var src source.AssetSource = source.NewRemoteSource(remoteURL, logger,
		source.WithHTTPClient(&http.Client{Timeout: cfg.Remote.Timeout()}),
		source.WithMaxRetries(cfg.Remote.MaxRetries),
		source.WithRetryBaseDelay(cfg.Remote.RetryBaseDelay()),
	)

	if cfg.Cache.Enabled && !pullNoCache {
		cachePath := resolvePath(cfg.Cache.Path)
		if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
		cache, err := source.OpenSQLiteStore(cachePath, logger)
		if err != nil {
			return err
		}
		defer cache.Close()
		src = source.NewCachingSource(src, cache, logger)
	}

	start := time.Now()
	snapshot, err := engine.New(src, engine.WithLogger(logger)).ReconstructSolution(cmd.Context(), root)
	if err != nil {
		return err
	}
	logger.Info("Pulled snapshot",
		"root", root.String(),
		"projects", len(snapshot.Projects),
		"durationMs", time.Since(start).Milliseconds(),
	)

	if pullJSON {
		return printSnapshotJSON(snapshot)
	}
	printSnapshotSummary(snapshot)
	return nil
}
