// Package engine implements checksum-driven reconstruction of a workspace
// snapshot. Given only a root checksum and an AssetSource, it expands
// checksum records into payloads, fanning out across independent subtrees
// and converging into one fully populated, order-preserving snapshot.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"wsync/internal/asset"
	"wsync/internal/checksum"
	"wsync/internal/slogutil"
	"wsync/internal/source"
	"wsync/internal/state"
)

// Engine reconstructs workspace snapshots from an AssetSource. It holds no
// mutable state across calls; one Engine may serve many concurrent
// reconstructions.
type Engine struct {
	source    source.AssetSource
	languages state.LanguageSet
	logger    *slog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLanguages replaces the set of project languages the engine can build.
func WithLanguages(languages state.LanguageSet) Option {
	return func(e *Engine) { e.languages = languages }
}

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an engine over the given source.
func New(src source.AssetSource, opts ...Option) *Engine {
	e := &Engine{
		source:    src,
		languages: state.DefaultLanguages(),
		logger:    slogutil.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ReconstructSolution is the sole public entry point: it expands the root
// checksum into a fully materialized solution snapshot. On any failure
// (missing asset, checksum mismatch, unsupported language, cancellation) no
// partial snapshot is returned; the first failing branch cancels its
// siblings best-effort.
func (e *Engine) ReconstructSolution(ctx context.Context, root checksum.Checksum) (*state.SolutionInfo, error) {
	start := time.Now()

	solState, err := fetchPayload[state.SolutionStateChecksums](ctx, e, asset.NewPath(asset.KindSolutionState), root)
	if err != nil {
		return nil, fmt.Errorf("fetch solution state %s: %w", root, err)
	}

	var (
		attrs             state.SolutionAttributes
		generatorVersions state.GeneratorVersions
		analyzerRefs      []state.AnalyzerReference
		projects          = make([]state.ProjectInfo, solState.Projects.Len())
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		attrs, err = fetchPayload[state.SolutionAttributes](gctx, e, asset.NewPath(asset.KindSolutionAttributes), solState.Attributes)
		return err
	})

	g.Go(func() error {
		var err error
		generatorVersions, err = fetchPayload[state.GeneratorVersions](gctx, e, asset.NewPath(asset.KindGeneratorVersions), solState.GeneratorVersions)
		return err
	})

	g.Go(func() error {
		var err error
		analyzerRefs, err = fetchOrdered[state.AnalyzerReference](gctx, e, asset.NewPath(asset.KindAnalyzerReference), solState.AnalyzerReferences)
		return err
	})

	// One bulk request for every project record, then one branch per project.
	// The fan-out writes into a preallocated slice indexed by the root
	// collection's order, so arrival order never leaks into the output.
	g.Go(func() error {
		records, err := e.fetchSet(gctx, asset.NewPath(asset.KindProjectState), solState.Projects.Children())
		if err != nil {
			return fmt.Errorf("fetch project states: %w", err)
		}

		pg, pctx := errgroup.WithContext(gctx)
		for i := 0; i < solState.Projects.Len(); i++ {
			rec := records[solState.Projects.At(i)]
			pg.Go(func() error {
				projectState, err := state.Decode[state.ProjectStateChecksums](rec, asset.KindProjectState)
				if err != nil {
					return err
				}
				if err := projectState.Validate(); err != nil {
					return err
				}
				info, err := e.reconstructProject(pctx, projectState)
				if err != nil {
					return fmt.Errorf("project %s: %w", projectState.ProjectID, err)
				}
				projects[i] = info
				return nil
			})
		}
		return pg.Wait()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.Debug("Reconstructed solution",
		"root", root.String(),
		"projects", len(projects),
		"duration", time.Since(start).String(),
	)

	return &state.SolutionInfo{
		Attributes:         attrs,
		GeneratorVersions:  generatorVersions,
		Projects:           projects,
		AnalyzerReferences: analyzerRefs,
	}, nil
}

// fetchOne resolves a single checksum and verifies the payload against it.
func (e *Engine) fetchOne(ctx context.Context, path asset.Path, sum checksum.Checksum) (asset.Record, error) {
	rec, err := e.source.GetAsset(ctx, path, sum)
	if err != nil {
		return asset.Record{}, err
	}
	if actual := rec.Checksum(); actual != sum {
		return asset.Record{}, &source.MismatchError{Kind: rec.Kind, Expected: sum, Actual: actual}
	}
	return rec, nil
}

// fetchSet resolves a possibly duplicate-bearing list of checksums with one
// batched request over the deduplicated set, verifying every payload. The
// returned map re-expands to every referencing position at join time.
func (e *Engine) fetchSet(ctx context.Context, path asset.Path, sums []checksum.Checksum) (map[checksum.Checksum]asset.Record, error) {
	unique := dedupe(sums)
	out := make(map[checksum.Checksum]asset.Record, len(unique))
	if len(unique) == 0 {
		return out, nil
	}

	var mu sync.Mutex
	var verifyErr error
	err := e.source.GetAssets(ctx, path, unique, func(sum checksum.Checksum, rec asset.Record) {
		mu.Lock()
		defer mu.Unlock()
		if verifyErr != nil {
			return
		}
		if actual := rec.Checksum(); actual != sum {
			verifyErr = &source.MismatchError{Kind: rec.Kind, Expected: sum, Actual: actual}
			return
		}
		out[sum] = rec
	})
	if err != nil {
		return nil, err
	}
	if verifyErr != nil {
		return nil, verifyErr
	}
	for _, sum := range unique {
		if _, ok := out[sum]; !ok {
			return nil, &source.NotFoundError{Path: path, Checksum: sum}
		}
	}
	return out, nil
}

// fetchPayload resolves and decodes one typed payload.
func fetchPayload[T any](ctx context.Context, e *Engine, path asset.Path, sum checksum.Checksum) (T, error) {
	rec, err := e.fetchOne(ctx, path, sum)
	if err != nil {
		var zero T
		return zero, err
	}
	return state.Decode[T](rec, path.Kind)
}

// fetchOrdered batch-fetches a checksum collection and decodes the results
// back into the collection's original order.
func fetchOrdered[T any](ctx context.Context, e *Engine, path asset.Path, col checksum.Collection) ([]T, error) {
	records, err := e.fetchSet(ctx, path, col.Children())
	if err != nil {
		return nil, err
	}
	out := make([]T, col.Len())
	for i := 0; i < col.Len(); i++ {
		v, err := state.Decode[T](records[col.At(i)], path.Kind)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// dedupe collapses duplicates preserving first-seen order, so the underlying
// source is asked for each distinct checksum exactly once per call.
func dedupe(sums []checksum.Checksum) []checksum.Checksum {
	seen := make(map[checksum.Checksum]struct{}, len(sums))
	out := make([]checksum.Checksum, 0, len(sums))
	for _, sum := range sums {
		if _, ok := seen[sum]; ok {
			continue
		}
		seen[sum] = struct{}{}
		out = append(out, sum)
	}
	return out
}
