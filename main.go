package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Zhima-Mochi/minishop-orders/internal/application"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/account"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/audit"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/catalog"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/checkout"
	appOrder "github.com/Zhima-Mochi/minishop-orders/internal/application/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/orderitem"
	appPayment "github.com/Zhima-Mochi/minishop-orders/internal/application/payment"
	"github.com/Zhima-Mochi/minishop-orders/internal/config"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/kafka"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/localcache"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/rediscache"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/sqlstore"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/pkg/logging"
	httppresentation "github.com/Zhima-Mochi/minishop-orders/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/minishop-orders/internal/presentation/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	baseLogger, err := logging.NewLogger(logging.Options{
		Service: cfg.ServiceName,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
	})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	oteltrace.Setup()
	logger := zaplogger.New(baseLogger)
	tel := infraobs.NewPrometheus(oteltrace.New(cfg.ServiceName), logger, registry)
	systemLogger := logger.With(observability.F("component", "main"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, health, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	items := orderitem.NewService(store, cfg.Pricing, tel)
	payments := appPayment.NewService(store, tel)
	deps := httppresentation.Deps{
		Orders:     appOrder.NewService(store, items, tel),
		OrderItems: items,
		Payments:   payments,
		Checkout:   checkout.NewProcessOrderUseCase(store, items, payments, tel),
		Accounts:   account.NewService(store, tel),
		Health:     health,
		Metrics:    promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	}

	var productCache catalog.ProductCache
	if cfg.RedisAddr != "" {
		rdb := rediscache.NewClient(cfg.RedisAddr)
		defer func() { _ = rdb.Close() }()
		productCache = rediscache.NewProductCache(rdb, cfg.ProductCacheTTL, tel)
		deps.Limiter = httppresentation.NewRateLimiter(rediscache.NewWindowCounter(rdb), cfg.RateLimit, cfg.RateLimitWindow, logger)
		systemLogger.Info("redis_enabled", observability.F("addr", cfg.RedisAddr))
	} else if cfg.ProductCacheSize > 0 {
		productCache = localcache.NewProductCache(cfg.ProductCacheSize, cfg.ProductCacheTTL)
	}
	deps.Catalog = catalog.NewService(store, productCache, tel)

	bus := outbox.NewBus(logger, outbox.WithHandlerTimeout(cfg.EventHandlerTimeout))
	bus.Start(ctx)
	audit.New(workerpresentation.NewSubscriber(bus, tel), tel).Start()

	// Fanout stops at the first failure, so the broker goes first and a
	// failed send leaves the record pending without reaching subscribers.
	var publishers outbox.Fanout
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, tel)
		if err != nil {
			return err
		}
		defer func() { _ = producer.Close() }()
		publishers = append(publishers, producer)
		systemLogger.Info("kafka_enabled", observability.F("topic", cfg.KafkaTopic))
	}
	publishers = append(publishers, bus)
	relay := outbox.NewRelay(store, publishers, tel,
		outbox.WithInterval(cfg.OutboxPollInterval),
		outbox.WithBatchSize(cfg.OutboxBatchSize),
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httppresentation.NewHandler(deps, tel).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		systemLogger.Info("http_server_start", observability.F("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return relay.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			systemLogger.Error("http_server_shutdown_error", observability.F("error", err))
			return err
		}
		systemLogger.Info("http_server_stopped")
		return nil
	})
	runErr := g.Wait()

	// Hand whatever is still pending to subscribers before exit.
	finalCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if _, err := relay.DrainOnce(finalCtx); err != nil {
		systemLogger.Warn("outbox_final_drain_failed", observability.F("error", err))
	}
	bus.Stop(finalCtx)
	return runErr
}

// openStore selects the in-memory store or a database/sql backed one.
func openStore(ctx context.Context, cfg config.Config) (application.Store, application.Pinger, func(), error) {
	if cfg.DBDriver == config.DriverMemory {
		return memory.NewStore(), nil, func() {}, nil
	}
	driver, err := sqlstore.DriverFor(cfg.DBDriver)
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := sqlstore.Open(ctx, driver, cfg.DBDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	return store, store, func() { _ = store.Close() }, nil
}
