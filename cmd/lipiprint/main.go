package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lipiprint/lipiprint/internal/app"
	"github.com/lipiprint/lipiprint/internal/auth"
	"github.com/lipiprint/lipiprint/internal/files"
	"github.com/lipiprint/lipiprint/internal/invoice"
	"github.com/lipiprint/lipiprint/internal/observability"
	"github.com/lipiprint/lipiprint/internal/orders"
	"github.com/lipiprint/lipiprint/internal/platform/cache"
	"github.com/lipiprint/lipiprint/internal/platform/db"
	"github.com/lipiprint/lipiprint/internal/pricingrules"
	"github.com/lipiprint/lipiprint/internal/shared"
	"github.com/lipiprint/lipiprint/internal/users"
	"github.com/lipiprint/lipiprint/jobs"
	"github.com/lipiprint/lipiprint/report"
)

// fileCatalog adapts the file service to the order pricing pipeline.
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
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
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

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	tokenStore := auth.NewTokenStore(redisClient, cfg.TokenTTL)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, auditLogger, logger)
	usersHandler := users.NewHandler(usersService)
	authHandler := users.NewAuthHandler(usersService, tokenStore)

	filesRepo := files.NewRepository(pool)
	filesService := files.NewService(filesRepo, cfg.FileStorageDir, logger)
	filesHandler := files.NewHandler(filesService)

	pricingRepo := pricingrules.NewRepository(pool)
	pricingCache := pricingrules.NewCache(redisClient, 10*time.Minute)
	pricingService := pricingrules.NewService(pricingRepo, pricingCache)
	pricingHandler := pricingrules.NewHandler(logger, pricingService)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(
		ordersRepo,
		fileCatalog{svc: filesService},
		pricingService,
		auditLogger,
		idempotencyStore,
		jobClient,
		metrics,
		logger,
		orders.ServiceConfig{DeliveryFee: cfg.DeliveryFee},
	)
	ordersHandler := orders.NewHandler(ordersService)

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
	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, logger)
	invoiceService := invoice.NewService(composer, ordersService, reportClient, cfg.InvoiceStorageDir, metrics, logger)
	invoiceHandler := invoice.NewHandler(invoiceService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		TokenStore:     tokenStore,
		AuthResolver:   usersService,
		AuthHandler:    authHandler,
		UsersHandler:   usersHandler,
		FilesHandler:   filesHandler,
		OrdersHandler:  ordersHandler,
		PricingHandler: pricingHandler,
		InvoiceHandler: invoiceHandler,
		ReportHandler:  reportHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
