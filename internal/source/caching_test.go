package source

import (
	"context"
	"sync"
	"testing"

	"wsync/internal/asset"
	"wsync/internal/checksum"
	"wsync/internal/slogutil"
)

// countingSource wraps a source and counts how often each checksum is
// requested upstream.
type countingSource struct {
	inner AssetSource

	mu     sync.Mutex
	single map[checksum.Checksum]int
	batch  map[checksum.Checksum]int
}

func newCountingSource(inner AssetSource) *countingSource {
	return &countingSource{
		inner:  inner,
		single: make(map[checksum.Checksum]int),
		batch:  make(map[checksum.Checksum]int),
	}
}

func (c *countingSource) GetAsset(ctx context.Context, path asset.Path, sum checksum.Checksum) (asset.Record, error) {
	c.mu.Lock()
	c.single[sum]++
	c.mu.Unlock()
	return c.inner.GetAsset(ctx, path, sum)
}

func (c *countingSource) GetAssets(ctx context.Context, path asset.Path, sums []checksum.Checksum, onEach func(checksum.Checksum, asset.Record)) error {
	c.mu.Lock()
	for _, sum := range sums {
		c.batch[sum]++
	}
	c.mu.Unlock()
	return c.inner.GetAssets(ctx, path, sums, onEach)
}

func TestCachingSourceWarmsSingleLookups(t *testing.T) {
	ctx := context.Background()
	upstream := NewMemoryStore()
	sum, _ := upstream.PutAsset(ctx, asset.Record{Kind: asset.KindDocumentText, Data: []byte("hello")})

	counting := newCountingSource(upstream)
	cached := NewCachingSource(counting, NewMemoryStore(), slogutil.NewDiscardLogger())
	path := asset.NewPath(asset.KindDocumentText)

	err := cached.GetAssets(ctx, path, []checksum.Checksum{sum}, func(checksum.Checksum, asset.Record) {})
	if err != nil {
		t.Fatalf("GetAssets failed: %v", err)
	}

	// The follow-up single lookup must hit the warmed cache.
	if _, err := cached.GetAsset(ctx, path, sum); err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}
	if counting.single[sum] != 0 {
		t.Errorf("warmed lookup went upstream %d times, expected 0", counting.single[sum])
	}
	if counting.batch[sum] != 1 {
		t.Errorf("batch requested checksum %d times upstream, expected 1", counting.batch[sum])
	}
}

func TestCachingSourceFetchesOnlyMissing(t *testing.T) {
	ctx := context.Background()
	upstream := NewMemoryStore()
	a, _ := upstream.PutAsset(ctx, asset.Record{Kind: asset.KindDocumentText, Data: []byte("a")})
	b, _ := upstream.PutAsset(ctx, asset.Record{Kind: asset.KindDocumentText, Data: []byte("b")})

	local := NewMemoryStore()
	if _, err := local.PutAsset(ctx, asset.Record{Kind: asset.KindDocumentText, Data: []byte("a")}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	counting := newCountingSource(upstream)
	cached := NewCachingSource(counting, local, slogutil.NewDiscardLogger())

	delivered := make(map[checksum.Checksum]int)
	err := cached.GetAssets(ctx, asset.NewPath(asset.KindDocumentText), []checksum.Checksum{a, b},
		func(sum checksum.Checksum, _ asset.Record) { delivered[sum]++ })
	if err != nil {
		t.Fatalf("GetAssets failed: %v", err)
	}

	if delivered[a] != 1 || delivered[b] != 1 {
		t.Errorf("delivered = %v, expected each exactly once", delivered)
	}
	if counting.batch[a] != 0 {
		t.Error("resident asset must not be fetched upstream")
	}
	if counting.batch[b] != 1 {
		t.Errorf("missing asset fetched %d times upstream, expected 1", counting.batch[b])
	}
}

func TestCachingSourceWriteThrough(t *testing.T) {
	ctx := context.Background()
	upstream := NewMemoryStore()
	sum, _ := upstream.PutAsset(ctx, asset.Record{Kind: asset.KindDocumentText, Data: []byte("hello")})

	local := NewMemoryStore()
	cached := NewCachingSource(upstream, local, slogutil.NewDiscardLogger())

	if _, err := cached.GetAsset(ctx, asset.NewPath(asset.KindDocumentText), sum); err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}
	if local.Len() != 1 {
		t.Errorf("local cache holds %d assets after fetch, expected 1", local.Len())
	}
}
