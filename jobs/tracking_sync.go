package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/lipiprint/lipiprint/internal/jobs"
	"github.com/lipiprint/lipiprint/internal/orders"
	"github.com/lipiprint/lipiprint/internal/tracking"
)

const defaultTrackingConcurrency = 4

// OrderTracker is the slice of the order service needed for tracking sweeps.
type OrderTracker interface {
	ListByStatus(ctx context.Context, status orders.OrderStatus) ([]int64, error)
	Get(ctx context.Context, id int64) (*orders.Order, error)
	UpdateStatus(ctx context.Context, id int64, status orders.OrderStatus, actorID int64) (*orders.Order, error)
}

// TrackingSyncJob polls the courier for every order out for delivery and marks
// delivered shipments.
type TrackingSyncJob struct {
	Orders  OrderTracker
	Carrier tracking.Client
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewTrackingSyncJob initialises the tracking sweep handler.
func NewTrackingSyncJob(orderTracker OrderTracker, carrier tracking.Client, logger *slog.Logger, metrics *jobmetrics.Metrics) *TrackingSyncJob {
	return &TrackingSyncJob{Orders: orderTracker, Carrier: carrier, Logger: logger, Metrics: metrics}
}

// Handle executes one tracking sweep.
func (j *TrackingSyncJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Orders == nil || j.Carrier == nil {
		return errors.New("tracking sync: handler not configured")
	}
	var payload TrackingSyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	concurrency := payload.Concurrency
	if concurrency <= 0 {
		concurrency = defaultTrackingConcurrency
	}

	start := time.Now()
	tracker := j.metrics().Track(TaskTrackingSync)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	ids, err := j.Orders.ListByStatus(ctx, orders.OrderStatusOutForDelivery)
	if err != nil {
		resultErr = err
		logger.Error("list shipments", slog.Any("error", err))
		return resultErr
	}
	if len(ids) == 0 {
		return nil
	}

	var delivered atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, id := range ids {
		g.Go(func() error {
			done, err := j.syncOne(gctx, id)
			if err != nil {
				// one bad shipment does not fail the sweep
				logger.Warn("sync shipment", slog.Int64("order_id", id), slog.Any("error", err))
				return nil
			}
			if done {
				delivered.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		resultErr = err
		return resultErr
	}

	logger.Info("tracking sweep completed",
		slog.Int("shipments", len(ids)),
		slog.Int64("delivered", delivered.Load()),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *TrackingSyncJob) syncOne(ctx context.Context, orderID int64) (bool, error) {
	o, err := j.Orders.Get(ctx, orderID)
	if err != nil {
		return false, err
	}
	if o.AWBNumber == nil || *o.AWBNumber == "" {
		return false, nil
	}
	info, err := j.Carrier.Track(ctx, *o.AWBNumber)
	if err != nil {
		if errors.Is(err, tracking.ErrNotTracked) {
			return false, nil
		}
		return false, err
	}
	if info.Status != tracking.StatusDelivered {
		return false, nil
	}
	if _, err := j.Orders.UpdateStatus(ctx, orderID, orders.OrderStatusDelivered, 0); err != nil {
		return false, err
	}
	return true, nil
}

func (j *TrackingSyncJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *TrackingSyncJob) metrics() *jobmetrics.Metrics {
	return j.Metrics
}
