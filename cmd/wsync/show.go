package main

import (
	"encoding/json"
	"fmt"
	"os"

	"wsync/internal/checksum"
	"wsync/internal/engine"
	"wsync/internal/state"

	"github.com/spf13/cobra"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <root-checksum>",
	Short: "Show a snapshot from the local asset store",
	Long: `Reconstruct a snapshot entirely from the local store and print its
structure. Fails if any asset the snapshot references is missing locally.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the full snapshot as JSON")
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	root, err := checksum.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid root checksum: %w", err)
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	snapshot, err := engine.New(store, engine.WithLogger(logger)).ReconstructSolution(cmd.Context(), root)
	if err != nil {
		return err
	}

	if showJSON {
		return printSnapshotJSON(snapshot)
	}
	printSnapshotSummary(snapshot)
	return nil
}

func printSnapshotJSON(snapshot *state.SolutionInfo) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot)
}

func printSnapshotSummary(snapshot *state.SolutionInfo) {
	fmt.Printf("solution %s", snapshot.Attributes.Name)
	if snapshot.Attributes.Version != "" {
		fmt.Printf(" (version %s)", snapshot.Attributes.Version)
	}
	fmt.Printf(", %d projects\n", len(snapshot.Projects))

	for _, project := range snapshot.Projects {
		fmt.Printf("  project %s [%s]", project.Attributes.Name, project.Attributes.Language)
		fmt.Printf(": %d documents", len(project.Documents))
		if n := len(project.AdditionalDocuments); n > 0 {
			fmt.Printf(", %d additional", n)
		}
		if n := len(project.AnalyzerConfigDocuments); n > 0 {
			fmt.Printf(", %d analyzer configs", n)
		}
		if n := len(project.ProjectReferences); n > 0 {
			fmt.Printf(", %d project refs", n)
		}
		fmt.Println()
		for _, doc := range project.Documents {
			fmt.Printf("    %s (%d bytes)\n", doc.Attributes.FilePath, len(doc.Text))
		}
	}
}
