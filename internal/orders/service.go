package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/lipiprint/lipiprint/internal/pricingrules"
	"github.com/lipiprint/lipiprint/internal/shared"
)

var (
	// ErrInvalidTransition indicates an illegal status change.
	ErrInvalidTransition = errors.New("orders: invalid status transition")
	// ErrNotShippable indicates shipment details on a non-delivery order.
	ErrNotShippable = errors.New("orders: order is not a delivery order")
	// ErrDuplicateRequest indicates an idempotency key replay.
	ErrDuplicateRequest = errors.New("orders: duplicate create request")
)

// Store is the persistence surface the service depends on.
type Store interface {
	Get(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error)
	Create(ctx context.Context, o Order) (int64, error)
	UpdateStatusFrom(ctx context.Context, id int64, from, to OrderStatus) error
	UpdateShipment(ctx context.Context, id int64, awb, courier string, expected *time.Time) error
	SetInvoicePath(ctx context.Context, id int64, path string) error
	ListByStatus(ctx context.Context, status OrderStatus) ([]int64, error)
}

// FileMeta is the slice of file information needed for pricing and display.
type FileMeta struct {
	Name  string
	Pages int
}

// FileCatalog resolves uploaded file metadata.
type FileCatalog interface {
	Meta(ctx context.Context, id int64) (FileMeta, error)
}

// Quoter prices print jobs against the active configuration.
type Quoter interface {
	Quote(ctx context.Context, req pricingrules.QuoteRequest) (*pricingrules.Quote, error)
}

// InvoiceEnqueuer schedules background invoice generation.
type InvoiceEnqueuer interface {
	EnqueueInvoiceGenerate(ctx context.Context, orderID int64) error
}

// Auditor records administrative actions.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyGuard deduplicates create requests.
type IdempotencyGuard interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// MetricsRecorder counts business events.
type MetricsRecorder interface {
	OrderCreated()
}

// ServiceConfig tunes order pricing behaviour.
type ServiceConfig struct {
	// DeliveryFee is the flat home-delivery charge in rupees.
	DeliveryFee float64
}

// Service implements the order lifecycle.
type Service struct {
	repo        Store
	files       FileCatalog
	quoter      Quoter
	audit       Auditor
	idempotency IdempotencyGuard
	enqueuer    InvoiceEnqueuer
	metrics     MetricsRecorder
	logger      *slog.Logger
	cfg         ServiceConfig
}

// NewService constructs the order service. Auditor, guard, enqueuer and
// metrics may be nil; the corresponding side effects are skipped.
func NewService(
	repo Store,
	files FileCatalog,
	quoter Quoter,
	audit Auditor,
	idempotency IdempotencyGuard,
	enqueuer InvoiceEnqueuer,
	metrics MetricsRecorder,
	logger *slog.Logger,
	cfg ServiceConfig,
) *Service {
	if cfg.DeliveryFee <= 0 {
		cfg.DeliveryFee = 30
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		files:       files,
		quoter:      quoter,
		audit:       audit,
		idempotency: idempotency,
		enqueuer:    enqueuer,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
	}
}

// Create prices and persists a new order for the user.
func (s *Service) Create(ctx context.Context, userID int64, req CreateOrderRequest) (*Order, error) {
	if s.idempotency != nil && req.IdempotencyKey != "" {
		if err := s.idempotency.CheckAndInsert(ctx, req.IdempotencyKey, "orders"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return nil, ErrDuplicateRequest
			}
			return nil, fmt.Errorf("idempotency check: %w", err)
		}
	}

	order, err := s.buildOrder(ctx, userID, req)
	if err != nil {
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, err
	}

	orderID, err := s.repo.Create(ctx, *order)
	if err != nil {
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, fmt.Errorf("create order: %w", err)
	}

	if s.metrics != nil {
		s.metrics.OrderCreated()
	}
	s.recordAudit(ctx, userID, "order.create", orderID, map[string]any{
		"delivery_type": req.DeliveryType,
		"print_jobs":    len(req.PrintJobs),
	})

	return s.repo.Get(ctx, orderID)
}

func (s *Service) buildOrder(ctx context.Context, userID int64, req CreateOrderRequest) (*Order, error) {
	var (
		jobSpecs  []pricingrules.JobSpec
		printJobs []PrintJob
	)
	for _, jobReq := range req.PrintJobs {
		meta, err := s.files.Meta(ctx, jobReq.FileID)
		if err != nil {
			return nil, fmt.Errorf("resolve file %d: %w", jobReq.FileID, err)
		}
		opts := ParsePrintOptions(jobReq.Options)
		copies := jobReq.Copies
		if copies < 1 {
			copies = 1
		}
		jobSpecs = append(jobSpecs, pricingrules.JobSpec{
			Description: meta.Name,
			Color:       opts.Get("color"),
			Paper:       opts.Get("paper"),
			Quality:     opts.Get("quality"),
			Side:        opts.Get("side"),
			Binding:     opts.Get("binding"),
			Pages:       meta.Pages,
			Copies:      copies,
		})
		printJobs = append(printJobs, PrintJob{
			FileID:  jobReq.FileID,
			Copies:  copies,
			Options: jobReq.Options,
			Status:  PrintJobStatusQueued,
		})
	}

	deliveryFee := 0.0
	if req.DeliveryType == DeliveryTypeDelivery {
		deliveryFee = s.cfg.DeliveryFee
	}

	quote, err := s.quoter.Quote(ctx, pricingrules.QuoteRequest{
		Jobs:        jobSpecs,
		DeliveryFee: deliveryFee,
		IntraState:  req.IsIntraState,
	})
	if err != nil {
		return nil, fmt.Errorf("quote order: %w", err)
	}

	amounts := quote.Amounts
	rawTotal := amounts.Subtotal - amounts.Discount + amounts.TotalGST() + amounts.Delivery

	breakdown := make([]BreakdownItem, 0, len(quote.Lines))
	for i, line := range quote.Lines {
		breakdown = append(breakdown, BreakdownItem{
			Description:  line.Description,
			Quantity:     line.Quantity,
			HSN:          line.HSN,
			Rate:         line.Rate,
			Amount:       line.Amount,
			Discount:     line.Discount,
			Total:        line.Total,
			PrintOptions: line.PrintOptions,
			LineOrder:    i + 1,
		})
	}

	return &Order{
		UserID:          userID,
		Status:          OrderStatusPending,
		DeliveryType:    req.DeliveryType,
		DeliveryAddress: req.DeliveryAddress,
		IsIntraState:    req.IsIntraState,
		Subtotal:        amounts.Subtotal,
		Discount:        amounts.Discount,
		GST:             amounts.GST,
		CGST:            amounts.CGST,
		SGST:            amounts.SGST,
		IGST:            amounts.IGST,
		DeliveryFee:     amounts.Delivery,
		TotalAmount:     rawTotal,
		GrandTotal:      float64(quote.GrandTotal),
		PrintJobs:       printJobs,
		Breakdown:       breakdown,
	}, nil
}

func (s *Service) releaseKey(ctx context.Context, key string) {
	if s.idempotency == nil || key == "" {
		return
	}
	if err := s.idempotency.Delete(ctx, key); err != nil {
		s.logger.Warn("release idempotency key", slog.Any("error", err))
	}
}

// Get returns an order by id.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.Get(ctx, id)
}

// List returns orders matching the filters.
func (s *Service) List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	return s.repo.List(ctx, req)
}

// UpdateStatus moves an order along its lifecycle. Reaching PRINTED schedules
// invoice generation.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status OrderStatus, actorID int64) (*Order, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(existing.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, existing.Status, status)
	}
	if err := s.repo.UpdateStatusFrom(ctx, id, existing.Status, status); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, existing.Status, status)
		}
		return nil, fmt.Errorf("update status: %w", err)
	}

	if status == OrderStatusPrinted && s.enqueuer != nil {
		if err := s.enqueuer.EnqueueInvoiceGenerate(ctx, id); err != nil {
			s.logger.Warn("enqueue invoice generation", slog.Int64("order_id", id), slog.Any("error", err))
		}
	}

	s.recordAudit(ctx, actorID, "order.status", id, map[string]any{
		"from": existing.Status,
		"to":   status,
	})
	return s.repo.Get(ctx, id)
}

// AssignShipment attaches courier details and moves the order out for delivery.
func (s *Service) AssignShipment(ctx context.Context, id int64, req AssignShipmentRequest, actorID int64) (*Order, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.DeliveryType != DeliveryTypeDelivery {
		return nil, ErrNotShippable
	}
	if existing.Status != OrderStatusPrinted && existing.Status != OrderStatusOutForDelivery {
		return nil, fmt.Errorf("%w: shipment requires PRINTED order, got %s", ErrInvalidTransition, existing.Status)
	}

	if err := s.repo.UpdateShipment(ctx, id, req.AWBNumber, req.CourierName, req.ExpectedDeliveryDate); err != nil {
		return nil, fmt.Errorf("update shipment: %w", err)
	}
	if existing.Status == OrderStatusPrinted {
		if err := s.repo.UpdateStatusFrom(ctx, id, OrderStatusPrinted, OrderStatusOutForDelivery); err != nil {
			return nil, fmt.Errorf("update status: %w", err)
		}
	}

	s.recordAudit(ctx, actorID, "order.ship", id, map[string]any{
		"awb":     req.AWBNumber,
		"courier": req.CourierName,
	})
	return s.repo.Get(ctx, id)
}

// Cancel terminates a non-final order.
func (s *Service) Cancel(ctx context.Context, id int64, reason string, actorID int64) (*Order, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(existing.Status, OrderStatusCancelled) {
		return nil, fmt.Errorf("%w: order is already final", ErrInvalidTransition)
	}
	if err := s.repo.UpdateStatusFrom(ctx, id, existing.Status, OrderStatusCancelled); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: order already moved on", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	s.recordAudit(ctx, actorID, "order.cancel", id, map[string]any{"reason": reason})
	return s.repo.Get(ctx, id)
}

// AttachInvoice records the stored invoice artefact for an order.
func (s *Service) AttachInvoice(ctx context.Context, id int64, path string) error {
	return s.repo.SetInvoicePath(ctx, id, path)
}

// ListByStatus exposes order ids in a given status for background jobs.
func (s *Service) ListByStatus(ctx context.Context, status OrderStatus) ([]int64, error) {
	return s.repo.ListByStatus(ctx, status)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, orderID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "order",
		EntityID: strconv.FormatInt(orderID, 10),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("audit record", slog.String("action", action), slog.Any("error", err))
	}
}
