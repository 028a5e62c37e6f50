package source

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"wsync/internal/asset"
	"wsync/internal/checksum"
	"wsync/internal/slogutil"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "assets.db"), slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("OpenSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	rec := asset.Record{Kind: asset.KindDocumentText, Data: []byte("hello world, compressed at rest")}
	sum, err := store.PutAsset(ctx, rec)
	if err != nil {
		t.Fatalf("PutAsset failed: %v", err)
	}

	got, err := store.GetAsset(ctx, asset.NewPath(asset.KindDocumentText), sum)
	if err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}
	if string(got.Data) != string(rec.Data) {
		t.Errorf("GetAsset data = %q, expected %q", got.Data, rec.Data)
	}
	if got.Kind != rec.Kind {
		t.Errorf("GetAsset kind = %s, expected %s", got.Kind, rec.Kind)
	}
}

func TestSQLiteStorePutIdempotent(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	rec := asset.Record{Kind: asset.KindDocumentText, Data: []byte("same")}

	first, err := store.PutAsset(ctx, rec)
	if err != nil {
		t.Fatalf("first PutAsset failed: %v", err)
	}
	second, err := store.PutAsset(ctx, rec)
	if err != nil {
		t.Fatalf("second PutAsset failed: %v", err)
	}
	if first != second {
		t.Errorf("idempotent put returned %s then %s", first, second)
	}
}

func TestSQLiteStoreNotFound(t *testing.T) {
	store := openTestStore(t)
	missing := checksum.ForBytes("document-text", []byte("absent"))

	_, err := store.GetAsset(context.Background(), asset.NewPath(asset.KindDocumentText), missing)
	if !errors.Is(err, ErrAssetNotFound) {
		t.Errorf("GetAsset error = %v, expected ErrAssetNotFound", err)
	}
}

func TestSQLiteStoreBatch(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	a, _ := store.PutAsset(ctx, asset.Record{Kind: asset.KindDocumentAttributes, Data: []byte(`{"n":"a"}`)})
	b, _ := store.PutAsset(ctx, asset.Record{Kind: asset.KindDocumentAttributes, Data: []byte(`{"n":"b"}`)})

	got := make(map[checksum.Checksum]int)
	err := store.GetAssets(ctx, asset.NewPath(asset.KindDocumentAttributes), []checksum.Checksum{a, b},
		func(sum checksum.Checksum, _ asset.Record) { got[sum]++ })
	if err != nil {
		t.Fatalf("GetAssets failed: %v", err)
	}
	if got[a] != 1 || got[b] != 1 {
		t.Errorf("each checksum must be delivered exactly once, got %v", got)
	}
}
