package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/lipiprint/lipiprint/internal/jobs"
)

// InvoiceGenerator renders and stores the invoice for an order.
type InvoiceGenerator interface {
	Generate(ctx context.Context, orderID int64) (string, error)
}

// InvoiceGenerateJob handles invoice:generate tasks.
type InvoiceGenerateJob struct {
	Invoices InvoiceGenerator
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewInvoiceGenerateJob initialises the invoice generation handler.
func NewInvoiceGenerateJob(invoices InvoiceGenerator, logger *slog.Logger, metrics *jobmetrics.Metrics) *InvoiceGenerateJob {
	return &InvoiceGenerateJob{Invoices: invoices, Logger: logger, Metrics: metrics}
}

// Handle executes the invoice generation logic.
func (j *InvoiceGenerateJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Invoices == nil {
		return errors.New("invoice generate: handler not configured")
	}
	var payload InvoiceGeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.OrderID <= 0 {
		return asynq.SkipRetry
	}

	start := time.Now()
	tracker := j.metrics().Track(TaskInvoiceGenerate)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int64("order_id", payload.OrderID))
	path, err := j.Invoices.Generate(ctx, payload.OrderID)
	if err != nil {
		resultErr = err
		logger.Error("invoice generation failed", slog.Any("error", err))
		return resultErr
	}
	logger.Info("invoice stored",
		slog.String("path", path),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *InvoiceGenerateJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *InvoiceGenerateJob) metrics() *jobmetrics.Metrics {
	return j.Metrics
}
