package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erp/orderentry/internal/application/orderentry"
	"github.com/erp/orderentry/internal/domain/catalog"
	"github.com/erp/orderentry/internal/domain/trade"
	"github.com/erp/orderentry/internal/infrastructure/cache"
	"github.com/erp/orderentry/internal/infrastructure/config"
	"github.com/erp/orderentry/internal/infrastructure/logger"
	"github.com/erp/orderentry/internal/infrastructure/persistence"
	"github.com/erp/orderentry/internal/infrastructure/telemetry"
	"github.com/erp/orderentry/internal/interfaces/http/handler"
	"github.com/erp/orderentry/internal/interfaces/http/middleware"
	"github.com/erp/orderentry/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting order entry",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	if lp.IsEnabled() {
		log = telemetry.BridgeLogger(log, telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, lp, logger.ParseLevel(cfg.Log.Level)))
	}

	profiling := cfg.Telemetry.Profiling
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           profiling.Enabled,
		ServerAddress:     profiling.ServerAddress,
		ApplicationName:   profiling.ApplicationName,
		BasicAuthUser:     profiling.BasicAuthUser,
		BasicAuthPassword: profiling.BasicAuthPassword,
		ProfileMutex:      profiling.ProfileMutex,
		ProfileBlock:      profiling.ProfileBlock,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	// Span profiles need the profiler running first
	if profiler.IsEnabled() && profiling.SpanProfiles {
		if err := tp.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(log, logger.MapGormLogLevel(cfg.Log.Level)),
		persistence.WithTracing(telemetry.DBTracingConfig{
			Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        "postgresql",
		}),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	products := persistence.NewGormCatalogRepository(db.DB)
	batches := persistence.NewGormBatchRepository(db.DB)
	stock := persistence.NewGormStockRepository(db.DB)

	localCache := cache.NewMemoryStockCache(cache.WithTTL(cfg.Stock.CacheTTL))
	var stockCache orderentry.StockCache = localCache
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unreachable, shared stock cache will miss until it recovers",
				zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		}
		sharedCache := cache.NewRedisStockCache(client,
			cache.WithKeyPrefix(cfg.Redis.KeyPrefix),
			cache.WithRedisTTL(cfg.Stock.CacheTTL),
			cache.WithRedisLogger(log),
		)
		defer func() {
			if err := sharedCache.Close(); err != nil {
				log.Error("Error closing redis", zap.Error(err))
			}
		}()
		stockCache = cache.NewTieredStockCache(localCache, sharedCache)
		log.Info("Shared stock cache enabled", zap.String("addr", cfg.Redis.Addr()))
	}

	meter := mp.Meter("orderentry")
	recorder, err := telemetry.NewEngineMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create engine metrics", zap.Error(err))
	}

	service := orderentry.NewService(products, batches, stock,
		orderentry.WithLogger(log),
		orderentry.WithRecorder(recorder),
		orderentry.WithStockCache(stockCache),
		orderentry.WithDefaults(orderentry.Defaults{
			TaxMode:    trade.TaxMode(cfg.Pricing.DefaultTaxMode),
			VATApplies: cfg.Pricing.DefaultVATApplies,
			RateType:   catalog.RateType(cfg.Pricing.DefaultRateType),
			VATRate:    cfg.Pricing.VATRate,
		}),
		orderentry.WithPrefetchDelay(cfg.Stock.Debounce),
		orderentry.WithLookupTimeout(cfg.Stock.LookupTimeout),
	)
	defer service.Close()

	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to set up request validation", zap.Error(err))
	}
	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		logger.GinMiddleware(log),
		middleware.SpanEnricher(),
		middleware.Profiling(middleware.ProfilingConfig{
			Enabled:   profiler.IsEnabled(),
			SkipPaths: []string{"/health"},
		}),
	)

	engine.GET("/health", handler.NewHealthHandler(db, service.Registry()).Check)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.BodyLimit(cfg.HTTP.MaxBodyBytes), httpMetrics)
	r.Register(handler.NewEntryHandler(service).Routes())
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tp.Shutdown,
		"meter":  mp.Shutdown,
		"logger": lp.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.String("provider", name), zap.Error(err))
		}
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler stop failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
