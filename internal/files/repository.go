package files

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates a missing file.
	ErrNotFound = errors.New("files: not found")
	// ErrInUse indicates a file still referenced by print jobs.
	ErrInUse = errors.New("files: referenced by print jobs")
)

const fileColumns = `id, user_id, original_filename, stored_name, content_type, size_bytes, pages, created_at`

// Repository provides PostgreSQL backed persistence for uploaded files.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanFile(row pgx.Row) (*File, error) {
	var f File
	err := row.Scan(&f.ID, &f.UserID, &f.OriginalFilename, &f.StoredName, &f.ContentType, &f.SizeBytes, &f.Pages, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// Create inserts a new file record.
func (r *Repository) Create(ctx context.Context, f File) (*File, error) {
	return scanFile(r.pool.QueryRow(ctx, fmt.Sprintf(`INSERT INTO files
	(user_id, original_filename, stored_name, content_type, size_bytes, pages, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW()) RETURNING %s`, fileColumns),
		f.UserID, f.OriginalFilename, f.StoredName, f.ContentType, f.SizeBytes, f.Pages))
}

// Get loads a file by id.
func (r *Repository) Get(ctx context.Context, id int64) (*File, error) {
	return scanFile(r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM files WHERE id=$1`, fileColumns), id))
}

// ListByUser returns a user's uploads, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]File, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM files WHERE user_id=$1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT %s FROM files WHERE user_id=$1
ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, fileColumns), userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.UserID, &f.OriginalFilename, &f.StoredName, &f.ContentType, &f.SizeBytes, &f.Pages, &f.CreatedAt); err != nil {
			return nil, 0, err
		}
		results = append(results, f)
	}
	return results, total, rows.Err()
}

// Delete removes a file record. Files referenced by print jobs are refused.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	var referenced bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM print_jobs WHERE file_id=$1)`, id).Scan(&referenced); err != nil {
		return err
	}
	if referenced {
		return ErrInUse
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM files WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
