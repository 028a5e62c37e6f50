// Package source defines the AssetSource boundary the synchronization engine
// consumes, together with the concrete sources: an in-memory store, a
// SQLite-backed persistent store, an HTTP remote source, and a caching
// wrapper that composes a remote with a local store.
package source

import (
	"context"

	"wsync/internal/asset"
	"wsync/internal/checksum"
)

// AssetSource resolves checksums to typed payload records. Implementations
// must be safe for concurrent use by many in-flight reconstructions, and
// resolving the same checksum repeatedly must be idempotent and
// side-effect-free from the caller's perspective.
type AssetSource interface {
	// GetAsset resolves exactly one checksum. It fails with a NotFoundError
	// if the checksum is unknown to the source and with the context error if
	// cancelled before completion.
	GetAsset(ctx context.Context, path asset.Path, sum checksum.Checksum) (asset.Record, error)

	// GetAssets resolves a deduplicated set of checksums, invoking onEach
	// once per checksum as each result becomes available, in no guaranteed
	// order. The whole call fails if any requested checksum cannot be
	// resolved; callers must not rely on which onEach invocations happened
	// before the failure.
	GetAssets(ctx context.Context, path asset.Path, sums []checksum.Checksum, onEach func(checksum.Checksum, asset.Record)) error
}

// Store is an AssetSource that also accepts writes. The provider's ingester
// and the consumer's local cache both write through this interface.
type Store interface {
	AssetSource

	// PutAsset stores a record under its content checksum and returns that
	// checksum. Storing the same record twice is a no-op.
	PutAsset(ctx context.Context, rec asset.Record) (checksum.Checksum, error)
}
