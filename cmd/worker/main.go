package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lipiprint/lipiprint/internal/app"
	"github.com/lipiprint/lipiprint/internal/files"
	"github.com/lipiprint/lipiprint/internal/invoice"
	jobmetrics "github.com/lipiprint/lipiprint/internal/jobs"
	"github.com/lipiprint/lipiprint/internal/orders"
	"github.com/lipiprint/lipiprint/internal/platform/cache"
	"github.com/lipiprint/lipiprint/internal/platform/db"
	"github.com/lipiprint/lipiprint/internal/pricingrules"
	"github.com/lipiprint/lipiprint/internal/shared"
	"github.com/lipiprint/lipiprint/internal/tracking"
	"github.com/lipiprint/lipiprint/jobs"
	"github.com/lipiprint/lipiprint/report"
)

type fileCatalog struct {
	svc *files.Service
}

func (c fileCatalog) Meta(ctx context.Context, id int64) (orders.FileMeta, error) {
	name, pages, err := c.svc.Meta(ctx, id)
	if err != nil {
		return orders.FileMeta{}, err
	}
	return orders.FileMeta{Name: name, Pages: pages}, nil
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)

	filesRepo := files.NewRepository(pool)
	filesService := files.NewService(filesRepo, cfg.FileStorageDir, logger)

	pricingRepo := pricingrules.NewRepository(pool)
	pricingCache := pricingrules.NewCache(redisClient, 10*time.Minute)
	pricingService := pricingrules.NewService(pricingRepo, pricingCache)

	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(
		ordersRepo,
		fileCatalog{svc: filesService},
		pricingService,
		auditLogger,
		nil,
		nil,
		nil,
		logger,
		orders.ServiceConfig{DeliveryFee: cfg.DeliveryFee},
	)

	composer, err := invoice.NewComposer(invoice.CompanyInfo{
		Name:    cfg.CompanyName,
		Address: cfg.CompanyAddress,
		GSTIN:   cfg.CompanyGSTIN,
		Phone:   cfg.CompanyPhone,
		Email:   cfg.CompanyEmail,
	})
	if err != nil {
		logger.Error("init invoice composer", slog.Any("error", err))
		os.Exit(1)
	}
	pdfClient := report.NewClient(cfg.GotenbergURL)
	invoiceService := invoice.NewService(composer, ordersService, pdfClient, cfg.InvoiceStorageDir, nil, logger)

	metrics := jobmetrics.NewMetrics(nil)
	invoiceJob := jobs.NewInvoiceGenerateJob(invoiceService, logger, metrics)
	trackingJob := jobs.NewTrackingSyncJob(ordersService, tracking.NewStubClient(), logger, metrics)

	trackingTask, err := jobs.NewTrackingSyncTask(jobs.TrackingSyncPayload{})
	if err != nil {
		logger.Error("build tracking task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskInvoiceGenerate, Handler: invoiceJob.Handle},
			{Type: jobs.TaskTrackingSync, Handler: trackingJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/30 * * * *", Task: trackingTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
