package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates a missing user.
	ErrNotFound = errors.New("users: not found")
	// ErrDuplicate indicates a phone or email already registered.
	ErrDuplicate = errors.New("users: already registered")
)

const userColumns = `id, name, email, phone, address, gstin, role, blocked, password_hash, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for users.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &u.GSTIN, &u.Role, &u.Blocked, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user record.
func (r *Repository) Create(ctx context.Context, u User) (*User, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`INSERT INTO users (name, email, phone, address, gstin, role, blocked, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()) RETURNING %s`, userColumns),
		u.Name, u.Email, u.Phone, u.Address, u.GSTIN, u.Role, u.Blocked, u.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return created, nil
}

// Get loads a user by id.
func (r *Repository) Get(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM users WHERE id=$1`, userColumns), id))
}

// GetByPhone loads a user by phone number.
func (r *Repository) GetByPhone(ctx context.Context, phone string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM users WHERE phone=$1`, userColumns), phone))
}

// List returns users matching the filters plus the total match count.
func (r *Repository) List(ctx context.Context, req ListUsersRequest) ([]User, int, error) {
	conditions := []string{"TRUE"}
	var args []any
	argPos := 1

	if req.Blocked != nil {
		conditions = append(conditions, fmt.Sprintf("blocked = $%d", argPos))
		args = append(args, *req.Blocked)
		argPos++
	}
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR phone ILIKE $%d OR email ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM users %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM users %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &u.GSTIN, &u.Role, &u.Blocked, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		results = append(results, u)
	}
	return results, total, rows.Err()
}

// UpdateProfile applies partial profile updates.
func (r *Repository) UpdateProfile(ctx context.Context, id int64, req UpdateProfileRequest) (*User, error) {
	query := "UPDATE users SET updated_at = NOW()"
	var args []any
	argPos := 1

	if req.Name != nil {
		query += fmt.Sprintf(", name = $%d", argPos)
		args = append(args, *req.Name)
		argPos++
	}
	if req.Email != nil {
		query += fmt.Sprintf(", email = $%d", argPos)
		args = append(args, *req.Email)
		argPos++
	}
	if req.Address != nil {
		query += fmt.Sprintf(", address = $%d", argPos)
		args = append(args, *req.Address)
		argPos++
	}
	if req.GSTIN != nil {
		query += fmt.Sprintf(", gstin = $%d", argPos)
		args = append(args, *req.GSTIN)
		argPos++
	}

	query += fmt.Sprintf(" WHERE id = $%d RETURNING %s", argPos, userColumns)
	args = append(args, id)

	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

// SetBlocked flips the blocked flag.
func (r *Repository) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET blocked=$2, updated_at=NOW() WHERE id=$1`, id, blocked)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
