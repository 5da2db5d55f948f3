package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lipiprint/lipiprint/internal/orders"
)

// OrderSource loads orders and records generated artefacts.
type OrderSource interface {
	Get(ctx context.Context, id int64) (*orders.Order, error)
	AttachInvoice(ctx context.Context, id int64, path string) error
}

// Renderer converts HTML to PDF bytes.
type Renderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// MetricsRecorder counts business events.
type MetricsRecorder interface {
	InvoiceGenerated()
}

// Service renders invoices and stores the PDF artefacts on disk.
type Service struct {
	composer *Composer
	orders   OrderSource
	renderer Renderer
	dir      string
	metrics  MetricsRecorder
	logger   *slog.Logger
}

// NewService constructs the invoice service. Metrics may be nil.
func NewService(composer *Composer, orderSource OrderSource, renderer Renderer, dir string, metrics MetricsRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		composer: composer,
		orders:   orderSource,
		renderer: renderer,
		dir:      dir,
		metrics:  metrics,
		logger:   logger,
	}
}

// ComposeHTML loads the order and renders its invoice HTML.
func (s *Service) ComposeHTML(ctx context.Context, orderID int64) (string, *orders.Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return "", nil, err
	}
	html, err := s.composer.Compose(o)
	if err != nil {
		return "", nil, err
	}
	return html, o, nil
}

// Generate renders the invoice PDF, stores it under the invoice number and
// attaches the path to the order.
func (s *Service) Generate(ctx context.Context, orderID int64) (string, error) {
	html, o, err := s.ComposeHTML(ctx, orderID)
	if err != nil {
		return "", err
	}

	pdf, err := s.renderer.RenderHTML(ctx, html)
	if err != nil {
		return "", fmt.Errorf("render pdf: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("invoice dir: %w", err)
	}
	path := filepath.Join(s.dir, Number(o.ID)+".pdf")
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", fmt.Errorf("write invoice: %w", err)
	}

	if err := s.orders.AttachInvoice(ctx, o.ID, path); err != nil {
		return "", fmt.Errorf("attach invoice: %w", err)
	}
	if s.metrics != nil {
		s.metrics.InvoiceGenerated()
	}
	s.logger.Info("invoice generated", slog.Int64("order_id", o.ID), slog.String("path", path))
	return path, nil
}
