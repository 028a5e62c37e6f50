package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"wsync/internal/asset"
	"wsync/internal/checksum"
)

// SQLiteStore is a persistent content-addressed asset store. Payloads are
// zstd-compressed at rest and verified against their checksum on read.
type SQLiteStore struct {
	conn    *sql.DB
	logger  *slog.Logger
	dbPath  string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// OpenSQLiteStore opens or creates the asset database at dbPath.
func OpenSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset database: %w", err)
	}

	// Set pragmas for performance and reliability
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-16000", // 16MB cache
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	store := &SQLiteStore{
		conn:    conn,
		logger:  logger,
		dbPath:  dbPath,
		encoder: encoder,
		decoder: decoder,
	}
	if err := store.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize asset schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS assets (
			checksum TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			size INTEGER NOT NULL,
			data BLOB NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_assets_kind ON assets(kind);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the database connection and compression state.
func (s *SQLiteStore) Close() error {
	s.encoder.Close()
	s.decoder.Close()
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// PutAsset stores a record under its content checksum. Re-storing the same
// content is a no-op.
func (s *SQLiteStore) PutAsset(ctx context.Context, rec asset.Record) (checksum.Checksum, error) {
	sum := rec.Checksum()
	compressed := s.encoder.EncodeAll(rec.Data, nil)

	_, err := s.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO assets (checksum, kind, size, data, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, sum.String(), string(rec.Kind), len(rec.Data), compressed, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return checksum.Zero, fmt.Errorf("failed to store asset %s: %w", sum, err)
	}
	return sum, nil
}

// GetAsset resolves one checksum, decompressing and verifying the payload.
func (s *SQLiteStore) GetAsset(ctx context.Context, path asset.Path, sum checksum.Checksum) (asset.Record, error) {
	if err := ctx.Err(); err != nil {
		return asset.Record{}, err
	}

	var kind string
	var compressed []byte
	err := s.conn.QueryRowContext(ctx, `
		SELECT kind, data FROM assets WHERE checksum = ?
	`, sum.String()).Scan(&kind, &compressed)
	if err == sql.ErrNoRows {
		return asset.Record{}, &NotFoundError{Path: path, Checksum: sum}
	}
	if err != nil {
		return asset.Record{}, fmt.Errorf("asset lookup failed: %w", err)
	}

	data, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return asset.Record{}, fmt.Errorf("failed to decompress asset %s: %w", sum, err)
	}

	rec := asset.Record{Kind: asset.Kind(kind), Data: data}
	if actual := rec.Checksum(); actual != sum {
		return asset.Record{}, &MismatchError{Kind: rec.Kind, Expected: sum, Actual: actual}
	}
	return rec, nil
}

// GetAssets resolves a set of checksums one row at a time. The store is
// local, so the per-row round trip the batch contract exists to avoid is not
// a concern here.
func (s *SQLiteStore) GetAssets(ctx context.Context, path asset.Path, sums []checksum.Checksum, onEach func(checksum.Checksum, asset.Record)) error {
	requested := make(map[checksum.Checksum]struct{}, len(sums))
	for _, sum := range sums {
		requested[sum] = struct{}{}
	}

	for sum := range requested {
		rec, err := s.GetAsset(ctx, path, sum)
		if err != nil {
			return err
		}
		onEach(sum, rec)
	}
	return nil
}
