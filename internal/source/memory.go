package source

import (
	"context"
	"sync"

	"wsync/internal/asset"
	"wsync/internal/checksum"
)

// MemoryStore is a map-backed asset store. It serves as the provider's
// in-process store and as the fixture source in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	assets map[checksum.Checksum]asset.Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assets: make(map[checksum.Checksum]asset.Record),
	}
}

// PutAsset stores a record under its content checksum.
func (s *MemoryStore) PutAsset(_ context.Context, rec asset.Record) (checksum.Checksum, error) {
	sum := rec.Checksum()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[sum]; !ok {
		data := make([]byte, len(rec.Data))
		copy(data, rec.Data)
		s.assets[sum] = asset.Record{Kind: rec.Kind, Data: data}
	}
	return sum, nil
}

// GetAsset resolves one checksum.
func (s *MemoryStore) GetAsset(ctx context.Context, path asset.Path, sum checksum.Checksum) (asset.Record, error) {
	if err := ctx.Err(); err != nil {
		return asset.Record{}, err
	}

	s.mu.RLock()
	rec, ok := s.assets[sum]
	s.mu.RUnlock()

	if !ok {
		return asset.Record{}, &NotFoundError{Path: path, Checksum: sum}
	}
	return rec, nil
}

// GetAssets resolves a set of checksums. Map iteration makes delivery order
// intentionally arbitrary, which keeps callers honest about the "no order
// guarantee" contract.
func (s *MemoryStore) GetAssets(ctx context.Context, path asset.Path, sums []checksum.Checksum, onEach func(checksum.Checksum, asset.Record)) error {
	requested := make(map[checksum.Checksum]struct{}, len(sums))
	for _, sum := range sums {
		requested[sum] = struct{}{}
	}

	for sum := range requested {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.mu.RLock()
		rec, ok := s.assets[sum]
		s.mu.RUnlock()

		if !ok {
			return &NotFoundError{Path: path, Checksum: sum}
		}
		onEach(sum, rec)
	}
	return nil
}

// Len returns the number of distinct assets stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assets)
}
