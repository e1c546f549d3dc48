package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/beezio/marketplace/internal/application/catalog"
	importapp "github.com/beezio/marketplace/internal/application/import"
	integrationapp "github.com/beezio/marketplace/internal/application/integration"
	"github.com/beezio/marketplace/internal/domain/catalog"
	"github.com/beezio/marketplace/internal/infrastructure/auth"
	"github.com/beezio/marketplace/internal/infrastructure/cache"
	"github.com/beezio/marketplace/internal/infrastructure/config"
	"github.com/beezio/marketplace/internal/infrastructure/ecommerce"
	"github.com/beezio/marketplace/internal/infrastructure/logger"
	"github.com/beezio/marketplace/internal/infrastructure/persistence"
	"github.com/beezio/marketplace/internal/infrastructure/telemetry"
	"github.com/beezio/marketplace/internal/interfaces/http/handler"
	"github.com/beezio/marketplace/internal/interfaces/http/middleware"
	"github.com/beezio/marketplace/internal/interfaces/http/router"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	tel := cfg.Telemetry

	// The OTEL log bridge needs a logger of its own before the main one exists
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           tel.Enabled && tel.LogsEnabled,
		CollectorEndpoint: tel.CollectorEndpoint,
		ServiceName:       tel.ServiceName,
		Insecure:          tel.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}

	log, err := logger.New(logCfg, logProvider.ZapCore())
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting marketplace",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tel.Enabled,
		CollectorEndpoint: tel.CollectorEndpoint,
		SamplingRatio:     tel.SamplingRatio,
		ServiceName:       tel.ServiceName,
		Insecure:          tel.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tel.Enabled && tel.MetricsEnabled,
		CollectorEndpoint: tel.CollectorEndpoint,
		ExportInterval:    tel.MetricsInterval,
		ServiceName:       tel.ServiceName,
		Insecure:          tel.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:            tel.ProfilingEnabled,
		ServerAddress:      tel.PyroscopeEndpoint,
		ApplicationName:    tel.ServiceName,
		ProfileAllocations: true,
		ProfileGoroutines:  true,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(tel.DBSlowQueryThresh),
		logger.WithFullSQL(tel.DBLogFullSQL),
	)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         tel.Enabled && tel.DBTraceEnabled,
		LogFullSQL:      tel.DBLogFullSQL,
		SlowQueryThresh: tel.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Shared job registry: Redis when configured, in-memory otherwise outside production
	registry, err := cache.NewJobRegistryFactory(cfg.Redis, cfg.Import.JobTTL,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateRegistry()
	if err != nil {
		log.Fatal("Failed to create job registry", zap.Error(err))
	}

	providers, err := ecommerce.NewDefaultRegistry(providerSettings(cfg.Providers))
	if err != nil {
		log.Fatal("Failed to configure providers", zap.Error(err))
	}
	log.Info("Providers registered", zap.Any("providers", providers.Providers()))

	policy, err := cfg.Pricing.Policy()
	if err != nil {
		log.Fatal("Invalid pricing policy", zap.Error(err))
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	ownerRepo := persistence.NewGormOwnerRepository(db.DB)
	categoryRepo := cache.NewCachedCategoryRepository(
		persistence.NewGormCategoryRepository(db.DB), cfg.Import.CategoryCacheTTL)

	resolver := catalogapp.NewResolver(categoryRepo, ownerRepo, catalogapp.RolePolicy{
		PrivilegedIdentities: cfg.Import.PrivilegedIdentities,
		PrivilegedRole:       catalog.OwnerRole(cfg.Import.PrivilegedRole),
		DefaultRole:          catalog.OwnerRole(cfg.Import.DefaultRole),
	},
		catalogapp.WithLogger(log),
		catalogapp.WithFallbackCategory(cfg.Import.FallbackCategory),
	)
	startCtx, startCancel := context.WithTimeout(ctx, 10*time.Second)
	if _, err := resolver.EnsureFallbackCategory(startCtx); err != nil {
		log.Warn("Fallback category unavailable; unmatched labels will import without a category", zap.Error(err))
	}
	startCancel()

	serverImporter, err := persistence.NewServerImporter(db, cfg.Import.ServerMode)
	if err != nil {
		log.Fatal("Failed to configure server import path", zap.Error(err))
	}

	importMetrics, err := telemetry.NewImportMetrics(meterProvider.Meter("marketplace/import"))
	if err != nil {
		log.Fatal("Failed to create import metrics", zap.Error(err))
	}

	orchestrator := importapp.NewOrchestrator(
		providers,
		resolver,
		serverImporter,
		productRepo,
		registry,
		policy,
		importapp.Config{
			FetchTimeout:   cfg.Import.FetchTimeout,
			PersistTimeout: cfg.Import.PersistTimeout,
			MaxConcurrent:  cfg.Import.MaxConcurrent,
		},
		importapp.WithLogger(log),
		importapp.WithMetrics(importMetrics),
	)

	// Application services
	catalogService := integrationapp.NewCatalogService(providers, productRepo, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo)
	orphanService := catalogapp.NewOrphanService(productRepo, cfg.Import.OrphanListLimit)

	// Handlers
	handlers := router.Handlers{
		System: handler.NewSystemHandler(cfg.App.Name, version, map[string]handler.HealthCheck{
			"database": db.Ping,
			"job_registry": func(ctx context.Context) error {
				_, err := registry.InFlight(ctx)
				return err
			},
		}),
		Providers:  handler.NewProviderHandler(catalogService),
		Pricing:    handler.NewPricingHandler(orchestrator),
		Imports:    handler.NewImportHandler(orchestrator, orphanService),
		Categories: handler.NewCategoryHandler(categoryService),
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	// Order matters: request ID first so every later layer can log it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(middleware.Secure())

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if tracerProvider.IsEnabled() {
		engine.Use(middleware.Tracing(tel.ServiceName))
		engine.Use(middleware.SpanEnricher())
	}
	engine.Use(middleware.HTTPMetrics(meterProvider.Meter("marketplace/http")))
	if profiler.IsEnabled() {
		engine.Use(middleware.Profiling())
	}

	var verifier *auth.TokenVerifier
	if cfg.JWT.Secret != "" {
		verifier = auth.NewTokenVerifier(cfg.JWT)
	}

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitPerSecond > 0 {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitPerSecond, cfg.HTTP.RateLimitBurst, 10*time.Minute)
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.IdentityMiddleware(middleware.IdentityConfig{
		Verifier:            verifier,
		AllowHeaderIdentity: cfg.JWT.AllowHeaderIdentity,
		Logger:              log,
	}))
	router.RegisterMarketplace(engine, r, handlers, middleware.RateLimit(limiter))

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := registry.Close(); err != nil {
		log.Error("Error closing job registry", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	_ = logProvider.Shutdown(shutdownCtx)
}

// providerSettings maps the providers config section onto adapter settings
func providerSettings(p config.ProvidersConfig) ecommerce.Settings {
	client := func(c config.ProviderConfig) ecommerce.ClientSettings {
		return ecommerce.ClientSettings{
			TimeoutSeconds:    c.TimeoutSeconds,
			RequestsPerSecond: c.RequestsPerSecond,
			Burst:             c.Burst,
		}
	}

	printful := ecommerce.NewPrintfulConfig()
	if p.Printful.BaseURL != "" {
		printful.APIBaseURL = p.Printful.BaseURL
	}
	if p.Printful.Currency != "" {
		printful.Currency = p.Printful.Currency
	}
	printful.ClientSettings = client(p.Printful)

	shopify := ecommerce.NewShopifyConfig()
	if p.Shopify.APIVersion != "" {
		shopify.APIVersion = p.Shopify.APIVersion
	}
	shopify.ClientSettings = client(p.Shopify)

	cj := ecommerce.NewCJConfig()
	if p.CJDropshipping.BaseURL != "" {
		cj.APIBaseURL = p.CJDropshipping.BaseURL
	}
	if p.CJDropshipping.Currency != "" {
		cj.Currency = p.CJDropshipping.Currency
	}
	cj.ClientSettings = client(p.CJDropshipping)

	return ecommerce.Settings{
		Printful: *printful,
		Shopify:  *shopify,
		CJ:       *cj,
		Enabled:  p.Enabled,
	}
}
