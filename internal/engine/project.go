package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"wsync/internal/asset"
	"wsync/internal/checksum"
	"wsync/internal/state"
)

// ErrUnsupportedLanguage matches any UnsupportedLanguageError via errors.Is.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// UnsupportedLanguageError reports a project whose declared language has no
// registered builder in this engine. Fatal for the whole reconstruction.
type UnsupportedLanguageError struct {
	ProjectID state.ProjectID
	Language  string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("project %s declares unsupported language %q", e.ProjectID, e.Language)
}

// Is makes errors.Is(err, ErrUnsupportedLanguage) work.
func (e *UnsupportedLanguageError) Is(target error) bool {
	return target == ErrUnsupportedLanguage
}

// reconstructProject materializes one project. Attributes resolve first (the
// language gate and options normalization depend on them); the options,
// reference collections and document bulk-warm then run concurrently.
func (e *Engine) reconstructProject(ctx context.Context, projectState state.ProjectStateChecksums) (state.ProjectInfo, error) {
	owner := string(projectState.ProjectID)

	attrs, err := fetchPayload[state.ProjectAttributes](ctx, e,
		asset.NewOwnedPath(asset.KindProjectAttributes, owner), projectState.Attributes)
	if err != nil {
		return state.ProjectInfo{}, err
	}
	if !e.languages.Supports(attrs.Language) {
		return state.ProjectInfo{}, &UnsupportedLanguageError{ProjectID: projectState.ProjectID, Language: attrs.Language}
	}

	info := state.ProjectInfo{Attributes: attrs}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		opts, err := fetchPayload[state.CompilationOptions](gctx, e,
			asset.NewOwnedPath(asset.KindCompilationOptions, owner), projectState.CompilationOptions)
		if err != nil {
			return err
		}
		info.CompilationOptions = opts.Normalize(attrs)
		return nil
	})

	g.Go(func() error {
		var err error
		info.ParseOptions, err = fetchPayload[state.ParseOptions](gctx, e,
			asset.NewOwnedPath(asset.KindParseOptions, owner), projectState.ParseOptions)
		return err
	})

	g.Go(func() error {
		var err error
		info.ProjectReferences, err = fetchOrdered[state.ProjectReference](gctx, e,
			asset.NewOwnedPath(asset.KindProjectReference, owner), projectState.ProjectReferences)
		return err
	})

	g.Go(func() error {
		var err error
		info.MetadataReferences, err = fetchOrdered[state.MetadataReference](gctx, e,
			asset.NewOwnedPath(asset.KindMetadataReference, owner), projectState.MetadataReferences)
		return err
	})

	g.Go(func() error {
		var err error
		info.AnalyzerReferences, err = fetchOrdered[state.AnalyzerReference](gctx, e,
			asset.NewOwnedPath(asset.KindAnalyzerReference, owner), projectState.AnalyzerReferences)
		return err
	})

	g.Go(func() error {
		return e.reconstructDocuments(gctx, owner, projectState, &info)
	})

	if err := g.Wait(); err != nil {
		return state.ProjectInfo{}, err
	}
	return info, nil
}

// reconstructDocuments bulk-warms the attribute and text payloads of all
// three document kinds with two deduplicated batch fetches, then builds each
// document by index-aligned lookup. Without the bulk step a project with N
// documents would pay O(N) serialized round trips.
func (e *Engine) reconstructDocuments(ctx context.Context, owner string, projectState state.ProjectStateChecksums, info *state.ProjectInfo) error {
	kinds := []state.DocumentChecksumsAndIDs{
		projectState.Documents,
		projectState.AdditionalDocuments,
		projectState.AnalyzerConfigDocuments,
	}

	total := 0
	for _, docs := range kinds {
		total += docs.Len()
	}
	attrSums := make([]checksum.Checksum, 0, total)
	textSums := make([]checksum.Checksum, 0, total)
	for _, docs := range kinds {
		attrSums = append(attrSums, docs.Attributes...)
		textSums = append(textSums, docs.Texts...)
	}

	var (
		attrRecords map[checksum.Checksum]asset.Record
		textRecords map[checksum.Checksum]asset.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		attrRecords, err = e.fetchSet(gctx, asset.NewOwnedPath(asset.KindDocumentAttributes, owner), attrSums)
		return err
	})
	g.Go(func() error {
		var err error
		textRecords, err = e.fetchSet(gctx, asset.NewOwnedPath(asset.KindDocumentText, owner), textSums)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	var err error
	if info.Documents, err = buildDocuments(projectState.Documents, attrRecords, textRecords); err != nil {
		return fmt.Errorf("documents: %w", err)
	}
	if info.AdditionalDocuments, err = buildDocuments(projectState.AdditionalDocuments, attrRecords, textRecords); err != nil {
		return fmt.Errorf("additional documents: %w", err)
	}
	if info.AnalyzerConfigDocuments, err = buildDocuments(projectState.AnalyzerConfigDocuments, attrRecords, textRecords); err != nil {
		return fmt.Errorf("analyzer config documents: %w", err)
	}
	return nil
}

// buildDocuments expands the warmed records back out to every document
// position. Output order matches the triple-collection exactly; index i of
// attributes, texts and ids must refer to the same logical document.
func buildDocuments(docs state.DocumentChecksumsAndIDs, attrRecords, textRecords map[checksum.Checksum]asset.Record) ([]state.DocumentInfo, error) {
	out := make([]state.DocumentInfo, docs.Len())
	for i := 0; i < docs.Len(); i++ {
		attrs, err := state.Decode[state.DocumentAttributes](attrRecords[docs.Attributes[i]], asset.KindDocumentAttributes)
		if err != nil {
			return nil, err
		}
		if attrs.ID != docs.IDs[i] {
			return nil, fmt.Errorf("document %d: attributes carry id %s, record names %s", i, attrs.ID, docs.IDs[i])
		}

		text := textRecords[docs.Texts[i]]
		if text.Kind != asset.KindDocumentText {
			return nil, fmt.Errorf("document %d: text checksum resolved to kind %s", i, text.Kind)
		}
		out[i] = state.DocumentInfo{
			Attributes: attrs,
			Text:       string(text.Data),
		}
	}
	return out, nil
}
