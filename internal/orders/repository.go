package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lipiprint/lipiprint/internal/platform/db"
)

// ErrNotFound indicates a missing order.
var ErrNotFound = errors.New("orders: not found")

const orderColumns = `o.id, o.user_id, o.status, o.delivery_type, o.delivery_address, o.is_intra_state,
	o.subtotal, o.discount, o.gst, o.cgst, o.sgst, o.igst, o.delivery_fee, o.total_amount, o.grand_total,
	o.awb_number, o.courier_name, o.expected_delivery_date, o.invoice_path, o.created_at, o.updated_at`

// Repository provides PostgreSQL backed persistence for orders.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get loads an order with its customer snapshot, print jobs and breakdown.
func (r *Repository) Get(ctx context.Context, id int64) (*Order, error) {
	query := fmt.Sprintf(`SELECT %s,
		COALESCE(u.name, ''), COALESCE(u.email, ''), COALESCE(u.phone, ''), COALESCE(u.address, ''), COALESCE(u.gstin, '')
	FROM orders o
	LEFT JOIN users u ON u.id = o.user_id
	WHERE o.id = $1`, orderColumns)

	var o Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.UserID, &o.Status, &o.DeliveryType, &o.DeliveryAddress, &o.IsIntraState,
		&o.Subtotal, &o.Discount, &o.GST, &o.CGST, &o.SGST, &o.IGST, &o.DeliveryFee, &o.TotalAmount, &o.GrandTotal,
		&o.AWBNumber, &o.CourierName, &o.ExpectedDeliveryDate, &o.InvoicePath, &o.CreatedAt, &o.UpdatedAt,
		&o.Customer.Name, &o.Customer.Email, &o.Customer.Phone, &o.Customer.Address, &o.Customer.GSTIN,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	jobs, err := r.listPrintJobs(ctx, id)
	if err != nil {
		return nil, err
	}
	o.PrintJobs = jobs

	breakdown, err := r.listBreakdown(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Breakdown = breakdown

	return &o, nil
}

func (r *Repository) listPrintJobs(ctx context.Context, orderID int64) ([]PrintJob, error) {
	rows, err := r.pool.Query(ctx, `SELECT pj.id, pj.order_id, pj.file_id,
		COALESCE(f.original_filename, ''), COALESCE(f.pages, 0), pj.copies, pj.options, pj.status, pj.created_at
	FROM print_jobs pj
	LEFT JOIN files f ON f.id = pj.file_id
	WHERE pj.order_id = $1
	ORDER BY pj.id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var jobs []PrintJob
	for rows.Next() {
		var job PrintJob
		if err := rows.Scan(&job.ID, &job.OrderID, &job.FileID, &job.FileName, &job.Pages, &job.Copies, &job.Options, &job.Status, &job.CreatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *Repository) listBreakdown(ctx context.Context, orderID int64) ([]BreakdownItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, order_id, description, quantity, hsn, rate, amount, discount, total, print_options, line_order
	FROM order_breakdown WHERE order_id = $1 ORDER BY line_order, id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BreakdownItem
	for rows.Next() {
		var item BreakdownItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.Description, &item.Quantity, &item.HSN, &item.Rate, &item.Amount, &item.Discount, &item.Total, &item.PrintOptions, &item.LineOrder); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// List returns orders matching the filters plus the total match count.
func (r *Repository) List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	conditions := []string{"TRUE"}
	var args []any
	argPos := 1

	if req.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("o.user_id = $%d", argPos))
		args = append(args, *req.UserID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("o.created_at >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("o.created_at <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders o %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s,
		COALESCE(u.name, ''), COALESCE(u.email, ''), COALESCE(u.phone, ''), COALESCE(u.address, ''), COALESCE(u.gstin, '')
	FROM orders o
	LEFT JOIN users u ON u.id = o.user_id
	%s
	ORDER BY o.created_at DESC, o.id DESC
	LIMIT $%d OFFSET $%d`, orderColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.Status, &o.DeliveryType, &o.DeliveryAddress, &o.IsIntraState,
			&o.Subtotal, &o.Discount, &o.GST, &o.CGST, &o.SGST, &o.IGST, &o.DeliveryFee, &o.TotalAmount, &o.GrandTotal,
			&o.AWBNumber, &o.CourierName, &o.ExpectedDeliveryDate, &o.InvoicePath, &o.CreatedAt, &o.UpdatedAt,
			&o.Customer.Name, &o.Customer.Email, &o.Customer.Phone, &o.Customer.Address, &o.Customer.GSTIN,
		); err != nil {
			return nil, 0, err
		}
		results = append(results, o)
	}
	return results, total, rows.Err()
}

// Create persists the order with its print jobs and breakdown atomically.
func (r *Repository) Create(ctx context.Context, o Order) (int64, error) {
	var orderID int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO orders
	(user_id, status, delivery_type, delivery_address, is_intra_state,
	 subtotal, discount, gst, cgst, sgst, igst, delivery_fee, total_amount, grand_total,
	 created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
RETURNING id`,
			o.UserID, o.Status, o.DeliveryType, o.DeliveryAddress, o.IsIntraState,
			o.Subtotal, o.Discount, o.GST, o.CGST, o.SGST, o.IGST, o.DeliveryFee, o.TotalAmount, o.GrandTotal,
		).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, job := range o.PrintJobs {
			if _, err := tx.Exec(ctx, `INSERT INTO print_jobs (order_id, file_id, copies, options, status, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())`, orderID, job.FileID, job.Copies, job.Options, job.Status); err != nil {
				return fmt.Errorf("insert print job: %w", err)
			}
		}

		for i, item := range o.Breakdown {
			lineOrder := item.LineOrder
			if lineOrder == 0 {
				lineOrder = i + 1
			}
			if _, err := tx.Exec(ctx, `INSERT INTO order_breakdown
	(order_id, description, quantity, hsn, rate, amount, discount, total, print_options, line_order)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				orderID, item.Description, item.Quantity, item.HSN, item.Rate, item.Amount, item.Discount, item.Total, item.PrintOptions, lineOrder); err != nil {
				return fmt.Errorf("insert breakdown item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

// UpdateStatusFrom moves an order to a new status only while it still holds
// the expected one. Concurrent lifecycle calls lose the race here instead of
// silently overwriting each other.
func (r *Repository) UpdateStatusFrom(ctx context.Context, id int64, from, to OrderStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status=$3, updated_at=NOW() WHERE id=$1 AND status=$2`, id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id=$1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrInvalidTransition
	}
	return nil
}

// UpdateShipment records courier assignment details.
func (r *Repository) UpdateShipment(ctx context.Context, id int64, awb, courier string, expected *time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET awb_number=$2, courier_name=$3, expected_delivery_date=$4, updated_at=NOW() WHERE id=$1`,
		id, awb, courier, expected)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetInvoicePath stores the location of the rendered invoice artefact.
func (r *Repository) SetInvoicePath(ctx context.Context, id int64, path string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET invoice_path=$2, updated_at=NOW() WHERE id=$1`, id, path)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByStatus returns the ids of orders currently in the given status.
func (r *Repository) ListByStatus(ctx context.Context, status OrderStatus) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM orders WHERE status=$1 ORDER BY id`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
