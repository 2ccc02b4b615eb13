package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/pharmaops/backend/internal/application/catalog"
	financeapp "github.com/pharmaops/backend/internal/application/finance"
	partnerapp "github.com/pharmaops/backend/internal/application/partner"
	reportapp "github.com/pharmaops/backend/internal/application/report"
	tradeapp "github.com/pharmaops/backend/internal/application/trade"
	"github.com/pharmaops/backend/internal/domain/report"
	"github.com/pharmaops/backend/internal/infrastructure/auth"
	"github.com/pharmaops/backend/internal/infrastructure/cache"
	"github.com/pharmaops/backend/internal/infrastructure/config"
	"github.com/pharmaops/backend/internal/infrastructure/logger"
	"github.com/pharmaops/backend/internal/infrastructure/persistence"
	"github.com/pharmaops/backend/internal/infrastructure/storage"
	"github.com/pharmaops/backend/internal/infrastructure/telemetry"
	"github.com/pharmaops/backend/internal/interfaces/http/handler"
	"github.com/pharmaops/backend/internal/interfaces/http/middleware"
	"github.com/pharmaops/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "1.0.0"

//	@title			PharmaOps Backend API
//	@version		1.0
//	@description	Pharmacy inventory ledger and reporting API

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() { _ = log.Sync() }()

	log.Info("Starting PharmaOps backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry providers are no-ops when disabled
	exporters := telemetry.ExporterConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
	}
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.TracerConfig{
		ExporterConfig: exporters,
		SamplingRatio:  cfg.Telemetry.SamplingRatio,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, exporters, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	lp, err := telemetry.NewLoggerProvider(ctx, exporters, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = lp.Bridge(log, zapcore.InfoLevel)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.Profiling.Enabled,
		ServerAddress:     cfg.Telemetry.Profiling.ServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Telemetry.Profiling.BasicAuthPassword,
		ProfileTypes:      cfg.Telemetry.Profiling.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Telemetry.Profiling.SpanProfiles {
		tp.EnableSpanProfiles()
	}

	gormLogger := logger.NewGormLogger(log,
		logger.MapGormLogLevel(cfg.Log.Level),
		cfg.Database.SlowQueryThresh,
	)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	// sqlite has no migration files; its schema comes from the models
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.DefaultDBTracingConfig()
		dbTracing.Enabled = true
		dbTracing.SlowQueryThresh = cfg.Database.SlowQueryThresh
		if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	meter := mp.Meter("github.com/pharmaops/backend")
	ledgerMetrics, err := telemetry.NewLedgerMetrics(meter)
	if err != nil {
		log.Warn("Ledger metrics disabled", zap.Error(err))
	}

	reportCache, err := cache.NewReportCacheFactory(cfg.Redis, cfg.Report, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to create report cache", zap.Error(err))
	}
	if reportCache != nil {
		defer func() { _ = reportCache.Close() }()
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	batchRepo := persistence.NewGormBatchItemRepository(db.DB)
	purchaseRepo := persistence.NewGormPurchaseRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	// Services
	productService := catalogapp.NewProductService(productRepo, log)
	productService.SetPharmacyScopedSKUs(cfg.Inventory.SKUScope == config.SKUScopePharmacy)
	supplierService := partnerapp.NewSupplierService(supplierRepo, log)
	transactionService := financeapp.NewTransactionService(transactionRepo, log)
	purchaseService := tradeapp.NewPurchaseService(scope, purchaseRepo, log)
	purchaseService.SetLedgerMetrics(ledgerMetrics)
	saleService := tradeapp.NewSaleService(scope, saleRepo, batchRepo, log)
	saleService.SetLedgerMetrics(ledgerMetrics)

	reportService := reportapp.NewReportService(reportRepo, log)
	reportService.SetLedgerMetrics(ledgerMetrics)
	reportService.SetOptions(report.Options{
		ExpiringWindowDays: cfg.Inventory.ExpiringWindowDays,
		ExpiringSoonDays:   cfg.Inventory.ExpiringSoonDays,
		TopN:               cfg.Inventory.TopN,
	}, cfg.Inventory.ExpiryThresholdDays)

	// A nil cache must stay a nil interface in the services
	if reportCache != nil {
		reportService.SetCache(reportCache)
		productService.SetReportInvalidator(reportCache)
		supplierService.SetReportInvalidator(reportCache)
		transactionService.SetReportInvalidator(reportCache)
		purchaseService.SetReportInvalidator(reportCache)
		saleService.SetReportInvalidator(reportCache)
	}

	// Handlers
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, db)
	reportHandler := handler.NewReportHandler(reportService)
	if cfg.Storage.Enabled {
		archive, err := storage.NewS3ExportArchive(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create export archive", zap.Error(err))
		}
		bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := archive.EnsureBucket(bucketCtx); err != nil {
			log.Warn("Export bucket check failed", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
		}
		cancel()
		reportHandler.SetArchive(archive)
	}

	middleware.SetupValidator()

	engine := router.NewEngine(router.EngineConfig{
		Env:         cfg.App.Env,
		HTTP:        cfg.HTTP,
		ServiceName: cfg.Telemetry.ServiceName,
		Tracing:     cfg.Telemetry.Enabled,
		Meter:       meter,
		Health:      systemHandler.Health,
		Logger:      log,
	})

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	var validator middleware.TokenValidator
	if cfg.JWT.Secret != "" {
		validator = auth.NewJWTService(cfg.JWT)
	} else {
		log.Warn("JWT secret not set; principals are read from the " + middleware.PharmacyIDHeader + " header")
	}
	r.Use(router.APIMiddleware(cfg.App.Env, validator, log,
		r.BasePath()+"/system/ping",
		r.BasePath()+"/system/info",
	)...)

	r.Register(systemHandler).
		Register(handler.NewProductHandler(productService)).
		Register(handler.NewSupplierHandler(supplierService)).
		Register(handler.NewTransactionHandler(transactionService)).
		Register(handler.NewPurchaseHandler(purchaseService)).
		Register(handler.NewSaleHandler(saleService)).
		Register(reportHandler)
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
		log.Warn("Profiler shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
