package pricingrules

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates a missing pricing configuration record.
var ErrNotFound = errors.New("pricingrules: not found")

// Repository provides PostgreSQL backed persistence for pricing configuration.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LoadRuleSet fetches the complete pricing configuration in one snapshot.
func (r *Repository) LoadRuleSet(ctx context.Context) (*RuleSet, error) {
	rs := &RuleSet{}

	rows, err := r.pool.Query(ctx, `SELECT id, min_quantity, percent, amount, active, created_at, updated_at FROM discount_rules ORDER BY min_quantity`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var d DiscountRule
		if err := rows.Scan(&d.ID, &d.MinQuantity, &d.Percent, &d.Amount, &d.Active, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		rs.Discounts = append(rs.Discounts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	combRows, err := r.pool.Query(ctx, `SELECT id, color, paper, quality, side, rate_per_page, gst_percent, active, created_at, updated_at FROM service_combinations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer combRows.Close()
	for combRows.Next() {
		var c ServiceCombination
		if err := combRows.Scan(&c.ID, &c.Color, &c.Paper, &c.Quality, &c.Side, &c.RatePerPage, &c.GSTPercent, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		rs.Combinations = append(rs.Combinations, c)
	}
	if err := combRows.Err(); err != nil {
		return nil, err
	}

	bindRows, err := r.pool.Query(ctx, `SELECT id, type, rate, active, created_at, updated_at FROM binding_options ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer bindRows.Close()
	for bindRows.Next() {
		var b BindingOption
		if err := bindRows.Scan(&b.ID, &b.Type, &b.Rate, &b.Active, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		rs.Bindings = append(rs.Bindings, b)
	}
	if err := bindRows.Err(); err != nil {
		return nil, err
	}

	return rs, nil
}

// CreateDiscountRule inserts a new discount rule.
func (r *Repository) CreateDiscountRule(ctx context.Context, req UpsertDiscountRuleRequest) (*DiscountRule, error) {
	var d DiscountRule
	err := r.pool.QueryRow(ctx, `INSERT INTO discount_rules (min_quantity, percent, amount, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING id, min_quantity, percent, amount, active, created_at, updated_at`,
		req.MinQuantity, req.Percent, req.Amount, req.Active).
		Scan(&d.ID, &d.MinQuantity, &d.Percent, &d.Amount, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDiscountRule replaces the fields of an existing rule.
func (r *Repository) UpdateDiscountRule(ctx context.Context, id int64, req UpsertDiscountRuleRequest) (*DiscountRule, error) {
	var d DiscountRule
	err := r.pool.QueryRow(ctx, `UPDATE discount_rules SET min_quantity=$2, percent=$3, amount=$4, active=$5, updated_at=NOW()
WHERE id=$1 RETURNING id, min_quantity, percent, amount, active, created_at, updated_at`,
		id, req.MinQuantity, req.Percent, req.Amount, req.Active).
		Scan(&d.ID, &d.MinQuantity, &d.Percent, &d.Amount, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// DeleteDiscountRule removes a rule.
func (r *Repository) DeleteDiscountRule(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM discount_rules WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateServiceCombination inserts a new printable configuration.
func (r *Repository) CreateServiceCombination(ctx context.Context, req UpsertServiceCombinationRequest) (*ServiceCombination, error) {
	var c ServiceCombination
	err := r.pool.QueryRow(ctx, `INSERT INTO service_combinations (color, paper, quality, side, rate_per_page, gst_percent, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
RETURNING id, color, paper, quality, side, rate_per_page, gst_percent, active, created_at, updated_at`,
		req.Color, req.Paper, req.Quality, req.Side, req.RatePerPage, req.GSTPercent, req.Active).
		Scan(&c.ID, &c.Color, &c.Paper, &c.Quality, &c.Side, &c.RatePerPage, &c.GSTPercent, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateServiceCombination replaces the fields of an existing combination.
func (r *Repository) UpdateServiceCombination(ctx context.Context, id int64, req UpsertServiceCombinationRequest) (*ServiceCombination, error) {
	var c ServiceCombination
	err := r.pool.QueryRow(ctx, `UPDATE service_combinations SET color=$2, paper=$3, quality=$4, side=$5, rate_per_page=$6, gst_percent=$7, active=$8, updated_at=NOW()
WHERE id=$1 RETURNING id, color, paper, quality, side, rate_per_page, gst_percent, active, created_at, updated_at`,
		id, req.Color, req.Paper, req.Quality, req.Side, req.RatePerPage, req.GSTPercent, req.Active).
		Scan(&c.ID, &c.Color, &c.Paper, &c.Quality, &c.Side, &c.RatePerPage, &c.GSTPercent, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// DeleteServiceCombination removes a combination.
func (r *Repository) DeleteServiceCombination(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM service_combinations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateBindingOption inserts a new binding option.
func (r *Repository) CreateBindingOption(ctx context.Context, req UpsertBindingOptionRequest) (*BindingOption, error) {
	var b BindingOption
	err := r.pool.QueryRow(ctx, `INSERT INTO binding_options (type, rate, active, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id, type, rate, active, created_at, updated_at`,
		req.Type, req.Rate, req.Active).
		Scan(&b.ID, &b.Type, &b.Rate, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBindingOption replaces the fields of an existing binding option.
func (r *Repository) UpdateBindingOption(ctx context.Context, id int64, req UpsertBindingOptionRequest) (*BindingOption, error) {
	var b BindingOption
	err := r.pool.QueryRow(ctx, `UPDATE binding_options SET type=$2, rate=$3, active=$4, updated_at=NOW()
WHERE id=$1 RETURNING id, type, rate, active, created_at, updated_at`,
		id, req.Type, req.Rate, req.Active).
		Scan(&b.ID, &b.Type, &b.Rate, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// DeleteBindingOption removes a binding option.
func (r *Repository) DeleteBindingOption(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM binding_options WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
