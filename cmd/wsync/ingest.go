package main

import (
	"fmt"
	"path/filepath"

	"wsync/internal/provider"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <manifest>",
	Short: "Ingest a workspace into the asset store",
	Long: `Decompose the workspace a manifest describes into content-addressed
assets and store them. Document paths resolve relative to the manifest's
directory. Prints the root checksum consumers pull against.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	manifestPath := args[0]
	manifest, err := provider.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	root, err := provider.NewIngester(store, logger).Ingest(cmd.Context(), manifest, filepath.Dir(manifestPath))
	if err != nil {
		return err
	}

	fmt.Println(root.String())
	return nil
}
