package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

// Repository provides access to media metadata storage.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new media repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordColumns = `filename, original_name, mime_type, size_bytes,
COALESCE(url, ''), COALESCE(public_id, ''), data, folder, created_at, updated_at`

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.Filename,
		&rec.OriginalName,
		&rec.MimeType,
		&rec.SizeBytes,
		&rec.URL,
		&rec.PublicID,
		&rec.Data,
		&rec.Folder,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	return rec, err
}

// FindByFilename fetches the record keyed by the given filename.
func (r *Repository) FindByFilename(ctx context.Context, filename string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM media_files WHERE filename = $1;`, recordColumns)

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, filename))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrMediaNotFound
		}
		return Record{}, fmt.Errorf("find media record: %w", err)
	}
	return rec, nil
}

// Insert stores a new media record. The filename must not already exist;
// a duplicate key surfaces as an error for the caller to count.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := fmt.Sprintf(`
INSERT INTO media_files (filename, original_name, mime_type, size_bytes, url, public_id, data, folder)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8)
RETURNING %s;`, recordColumns)

	stored, err := scanRecord(r.pool.QueryRow(ctx, query,
		rec.Filename,
		rec.OriginalName,
		rec.MimeType,
		rec.SizeBytes,
		rec.URL,
		rec.PublicID,
		rec.Data,
		rec.Folder,
	))
	if err != nil {
		return Record{}, fmt.Errorf("insert media record: %w", err)
	}
	return stored, nil
}

// UpsertRemote attaches remote provenance to the record for filename,
// creating it if absent. Once a URL is in place the remote copy is
// authoritative, so any inline blob is dropped; its size is kept.
func (r *Repository) UpsertRemote(ctx context.Context, filename, url, publicID, mimeType string, folder Folder) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := fmt.Sprintf(`
INSERT INTO media_files (filename, original_name, mime_type, size_bytes, url, public_id, folder)
VALUES ($1, $1, $2, 0, NULLIF($3, ''), NULLIF($4, ''), $5)
ON CONFLICT (filename) DO UPDATE SET
	url = COALESCE(NULLIF(EXCLUDED.url, ''), media_files.url),
	public_id = COALESCE(NULLIF(EXCLUDED.public_id, ''), media_files.public_id),
	mime_type = EXCLUDED.mime_type,
	folder = EXCLUDED.folder,
	data = CASE
		WHEN COALESCE(NULLIF(EXCLUDED.url, ''), media_files.url) IS NULL THEN media_files.data
		ELSE NULL
	END,
	updated_at = now()
RETURNING %s;`, recordColumns)

	stored, err := scanRecord(r.pool.QueryRow(ctx, query, filename, mimeType, url, publicID, folder))
	if err != nil {
		return Record{}, fmt.Errorf("upsert media record: %w", err)
	}
	return stored, nil
}

// Count returns the total number of media records.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM media_files;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count media records: %w", err)
	}
	return n, nil
}
