package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested catalog row doesn't exist
var ErrNotFound = errors.New("not found")

// CollectionRow is the catalog record for one collection.
type CollectionRow struct {
	Name      string
	ModelID   string
	Dimension int
	DocCount  int64
	NextSeq   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Catalog is the SQLite-backed collection catalog.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens (creating if needed) the catalog database at dbPath
// and applies pending migrations.
func OpenCatalog(dbPath string) (*Catalog, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Close closes the database connection
func (c *Catalog) Close() error {
	return c.db.Close()
}

// CreateCollection inserts a catalog row for a new collection.
func (c *Catalog) CreateCollection(ctx context.Context, name, modelID string, dimension int) (*CollectionRow, error) {
	now := time.Now().UTC()
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO collections (name, model_id, dimension, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		name, modelID, dimension, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	return &CollectionRow{
		Name:      name,
		ModelID:   modelID,
		Dimension: dimension,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetCollection returns the catalog row for name, or ErrNotFound.
func (c *Catalog) GetCollection(ctx context.Context, name string) (*CollectionRow, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT name, model_id, dimension, doc_count, next_seq, created_at, updated_at
		FROM collections WHERE name = ?`, name)

	var rec CollectionRow
	err := row.Scan(&rec.Name, &rec.ModelID, &rec.Dimension, &rec.DocCount,
		&rec.NextSeq, &rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", name, err)
	}
	return &rec, nil
}

// ListCollections returns all catalog rows ordered by name.
func (c *Catalog) ListCollections(ctx context.Context) ([]CollectionRow, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT name, model_id, dimension, doc_count, next_seq, created_at, updated_at
		FROM collections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []CollectionRow
	for rows.Next() {
		var rec CollectionRow
		if err := rows.Scan(&rec.Name, &rec.ModelID, &rec.Dimension, &rec.DocCount,
			&rec.NextSeq, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collection row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteCollection removes the catalog row for name, returning ErrNotFound
// when no row existed.
func (c *Catalog) DeleteCollection(ctx context.Context, name string) error {
	res, err := c.db.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AllocateSeqs reserves count sequence numbers for name and bumps the
// document count in the same transaction. It returns the first reserved
// sequence number.
func (c *Catalog) AllocateSeqs(ctx context.Context, name string, count int) (int64, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var next int64
	err = tx.QueryRowContext(ctx, "SELECT next_seq FROM collections WHERE name = ?", name).Scan(&next)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read next_seq for %s: %w", name, err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE collections
		SET next_seq = next_seq + ?, doc_count = doc_count + ?, updated_at = ?
		WHERE name = ?`,
		count, count, time.Now().UTC(), name)
	if err != nil {
		return 0, fmt.Errorf("failed to advance next_seq for %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return next, nil
}
