package source

import (
	"context"
	"errors"
	"log/slog"

	"wsync/internal/asset"
	"wsync/internal/checksum"
)

// CachingSource layers a local store over an upstream source. Batch fetches
// warm the local store, so the engine's follow-up single-item lookups hit
// locally instead of paying another round trip. Tolerates a partially
// populated cache: resident assets are served locally, the rest are fetched
// upstream.
type CachingSource struct {
	upstream AssetSource
	cache    Store
	logger   *slog.Logger
}

// NewCachingSource wraps upstream with the given local cache.
func NewCachingSource(upstream AssetSource, cache Store, logger *slog.Logger) *CachingSource {
	return &CachingSource{
		upstream: upstream,
		cache:    cache,
		logger:   logger,
	}
}

// GetAsset serves from the cache when resident, otherwise fetches upstream
// and writes through.
func (c *CachingSource) GetAsset(ctx context.Context, path asset.Path, sum checksum.Checksum) (asset.Record, error) {
	rec, err := c.cache.GetAsset(ctx, path, sum)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrAssetNotFound) {
		return asset.Record{}, err
	}

	rec, err = c.upstream.GetAsset(ctx, path, sum)
	if err != nil {
		return asset.Record{}, err
	}
	if _, err := c.cache.PutAsset(ctx, rec); err != nil {
		return asset.Record{}, err
	}
	return rec, nil
}

// GetAssets serves resident assets from the cache and fetches only the
// missing remainder upstream in one batch, writing results through.
func (c *CachingSource) GetAssets(ctx context.Context, path asset.Path, sums []checksum.Checksum, onEach func(checksum.Checksum, asset.Record)) error {
	seen := make(map[checksum.Checksum]struct{}, len(sums))
	missing := make([]checksum.Checksum, 0, len(sums))

	for _, sum := range sums {
		if _, ok := seen[sum]; ok {
			continue
		}
		seen[sum] = struct{}{}

		rec, err := c.cache.GetAsset(ctx, path, sum)
		if err == nil {
			onEach(sum, rec)
			continue
		}
		if !errors.Is(err, ErrAssetNotFound) {
			return err
		}
		missing = append(missing, sum)
	}

	if len(missing) == 0 {
		return nil
	}
	if c.logger != nil {
		c.logger.Debug("Fetching assets from upstream",
			"kind", string(path.Kind),
			"missing", len(missing),
			"resident", len(seen)-len(missing),
		)
	}

	var putErr error
	err := c.upstream.GetAssets(ctx, path, missing, func(sum checksum.Checksum, rec asset.Record) {
		if putErr != nil {
			return
		}
		if _, err := c.cache.PutAsset(ctx, rec); err != nil {
			putErr = err
			return
		}
		onEach(sum, rec)
	})
	if err != nil {
		return err
	}
	return putErr
}
