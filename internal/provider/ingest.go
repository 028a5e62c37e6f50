package provider

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"wsync/internal/asset"
	"wsync/internal/checksum"
	"wsync/internal/source"
	"wsync/internal/state"
)

// Ingester decomposes a workspace manifest into content-addressed assets.
// IDs derive from solution/project/document names, so ingesting the same
// manifest and file contents twice yields the same root checksum.
type Ingester struct {
	store  source.Store
	logger *slog.Logger
}

// NewIngester creates an ingester writing into store.
func NewIngester(store source.Store, logger *slog.Logger) *Ingester {
	return &Ingester{store: store, logger: logger}
}

// Ingest writes every asset the manifest describes and returns the root
// (solution state) checksum. Document paths resolve relative to baseDir.
func (ing *Ingester) Ingest(ctx context.Context, manifest *Manifest, baseDir string) (checksum.Checksum, error) {
	if err := manifest.Validate(); err != nil {
		return checksum.Zero, err
	}

	projectSums := make([]checksum.Checksum, 0, len(manifest.Projects))
	for _, project := range manifest.Projects {
		sum, err := ing.ingestProject(ctx, manifest, project, baseDir)
		if err != nil {
			return checksum.Zero, fmt.Errorf("ingest project %s: %w", project.Name, err)
		}
		projectSums = append(projectSums, sum)
	}

	attrSum, err := ing.put(ctx, asset.KindSolutionAttributes, state.SolutionAttributes{
		ID:      state.DeriveSolutionID(manifest.Solution),
		Name:    manifest.Solution,
		Version: manifest.Version,
	})
	if err != nil {
		return checksum.Zero, err
	}

	versionsSum, err := ing.put(ctx, asset.KindGeneratorVersions, state.GeneratorVersions{})
	if err != nil {
		return checksum.Zero, err
	}

	root, err := ing.put(ctx, asset.KindSolutionState, state.SolutionStateChecksums{
		Attributes:         attrSum,
		GeneratorVersions:  versionsSum,
		Projects:           checksum.NewCollection(projectSums),
		AnalyzerReferences: checksum.NewCollection(nil),
	})
	if err != nil {
		return checksum.Zero, err
	}

	ing.logger.Info("Ingested solution",
		"solution", manifest.Solution,
		"projects", len(manifest.Projects),
		"root", root.String(),
	)
	return root, nil
}

func (ing *Ingester) ingestProject(ctx context.Context, manifest *Manifest, project ManifestProject, baseDir string) (checksum.Checksum, error) {
	projectID := state.DeriveProjectID(manifest.Solution, project.Name)

	attrSum, err := ing.put(ctx, asset.KindProjectAttributes, state.ProjectAttributes{
		ID:           projectID,
		Name:         project.Name,
		Language:     project.Language,
		AssemblyName: project.AssemblyName,
		FilePath:     project.FilePath,
		OutputPath:   project.OutputPath,
	})
	if err != nil {
		return checksum.Zero, err
	}

	compSum, err := ing.put(ctx, asset.KindCompilationOptions, state.CompilationOptions{
		Language:   project.Language,
		OutputKind: project.OutputKind,
		OutputPath: project.OutputPath,
	})
	if err != nil {
		return checksum.Zero, err
	}

	parseSum, err := ing.put(ctx, asset.KindParseOptions, state.ParseOptions{
		Language:            project.Language,
		LanguageVersion:     project.LanguageVersion,
		PreprocessorSymbols: project.PreprocessorSymbols,
	})
	if err != nil {
		return checksum.Zero, err
	}

	projectRefSums := make([]checksum.Checksum, 0, len(project.ProjectReferences))
	for _, ref := range project.ProjectReferences {
		sum, err := ing.put(ctx, asset.KindProjectReference, state.ProjectReference{
			ProjectID: state.DeriveProjectID(manifest.Solution, ref),
		})
		if err != nil {
			return checksum.Zero, err
		}
		projectRefSums = append(projectRefSums, sum)
	}

	metadataRefSums := make([]checksum.Checksum, 0, len(project.MetadataReferences))
	for _, ref := range project.MetadataReferences {
		sum, err := ing.put(ctx, asset.KindMetadataReference, state.MetadataReference{FilePath: ref})
		if err != nil {
			return checksum.Zero, err
		}
		metadataRefSums = append(metadataRefSums, sum)
	}

	analyzerRefSums := make([]checksum.Checksum, 0, len(project.AnalyzerReferences))
	for _, ref := range project.AnalyzerReferences {
		sum, err := ing.put(ctx, asset.KindAnalyzerReference, state.AnalyzerReference{FullPath: ref})
		if err != nil {
			return checksum.Zero, err
		}
		analyzerRefSums = append(analyzerRefSums, sum)
	}

	documents, err := ing.ingestDocuments(ctx, projectID, project.Documents, baseDir)
	if err != nil {
		return checksum.Zero, err
	}
	additional, err := ing.ingestDocuments(ctx, projectID, project.AdditionalDocuments, baseDir)
	if err != nil {
		return checksum.Zero, err
	}
	analyzerConfigs, err := ing.ingestDocuments(ctx, projectID, project.AnalyzerConfigDocuments, baseDir)
	if err != nil {
		return checksum.Zero, err
	}

	return ing.put(ctx, asset.KindProjectState, state.ProjectStateChecksums{
		ProjectID:               projectID,
		Attributes:              attrSum,
		CompilationOptions:      compSum,
		ParseOptions:            parseSum,
		ProjectReferences:       checksum.NewCollection(projectRefSums),
		MetadataReferences:      checksum.NewCollection(metadataRefSums),
		AnalyzerReferences:      checksum.NewCollection(analyzerRefSums),
		Documents:               documents,
		AdditionalDocuments:     additional,
		AnalyzerConfigDocuments: analyzerConfigs,
	})
}

// ingestDocuments reads each document's text and stores the attribute and
// text payloads, preserving manifest order in the triple-collection.
func (ing *Ingester) ingestDocuments(ctx context.Context, projectID state.ProjectID, paths []string, baseDir string) (state.DocumentChecksumsAndIDs, error) {
	docs := state.DocumentChecksumsAndIDs{}
	for _, docPath := range paths {
		text, err := os.ReadFile(filepath.Join(baseDir, docPath))
		if err != nil {
			return state.DocumentChecksumsAndIDs{}, fmt.Errorf("failed to read document %s: %w", docPath, err)
		}

		docID := state.DeriveDocumentID(projectID, docPath)
		attrSum, err := ing.put(ctx, asset.KindDocumentAttributes, state.DocumentAttributes{
			ID:       docID,
			Name:     filepath.Base(docPath),
			FilePath: docPath,
		})
		if err != nil {
			return state.DocumentChecksumsAndIDs{}, err
		}

		textSum, err := ing.store.PutAsset(ctx, state.TextRecord(text))
		if err != nil {
			return state.DocumentChecksumsAndIDs{}, fmt.Errorf("failed to store text of %s: %w", docPath, err)
		}

		docs.Attributes = append(docs.Attributes, attrSum)
		docs.Texts = append(docs.Texts, textSum)
		docs.IDs = append(docs.IDs, docID)
	}
	return docs, nil
}

// put encodes a payload and stores it under its checksum.
func (ing *Ingester) put(ctx context.Context, kind asset.Kind, v any) (checksum.Checksum, error) {
	rec, err := state.Encode(kind, v)
	if err != nil {
		return checksum.Zero, err
	}
	return ing.store.PutAsset(ctx, rec)
}
