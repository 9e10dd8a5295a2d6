package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/Ramsey-B/sorrel/config"
	"github.com/Ramsey-B/sorrel/internal/handlers"
	"github.com/Ramsey-B/sorrel/internal/repositories/aggregation"
	"github.com/Ramsey-B/sorrel/internal/repositories/clauselink"
	"github.com/Ramsey-B/sorrel/internal/repositories/documentlink"
	"github.com/Ramsey-B/sorrel/internal/repositories/participation"
	"github.com/Ramsey-B/sorrel/pkg/backfill"
	"github.com/Ramsey-B/sorrel/pkg/database"
	"github.com/Ramsey-B/sorrel/pkg/health"
	"github.com/Ramsey-B/sorrel/pkg/middleware"
	"github.com/Ramsey-B/sorrel/pkg/redis"
	"github.com/Ramsey-B/sorrel/pkg/registry"
	"github.com/Ramsey-B/sorrel/pkg/startup"
	"github.com/Ramsey-B/sorrel/pkg/tracing"
	"github.com/Ramsey-B/sorrel/pkg/tracing/exporters"
)

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger := newZapLogger(cfg)
	defer func() { _ = zapLogger.Sync() }()
	logger := zapadapter.NewZapEctoLogger(zapLogger, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := setupTracing(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to set up tracing")
	}
	defer shutdownTracing()

	var (
		db          *database.DatabaseInstance
		redisClient *redis.Client
		checker     *health.Checker
		e           *echo.Echo
		serverErr   = make(chan error, 1)
	)

	s := startup.NewStartup(logger, cfg.StartupMaxAttempts)

	s.AddDependency(&startup.FuncDependency{
		Name: "database",
		StartFn: func(ctx context.Context) error {
			var err error
			db, err = database.Connect(ctx, database.ConnectionConfig{
				Host:            cfg.DatabaseHost,
				Port:            cfg.DatabasePort,
				UserName:        cfg.DatabaseUserName,
				Password:        cfg.DatabasePassword,
				Name:            cfg.DatabaseName,
				SSLMode:         cfg.DatabaseSSLMode,
				MaxOpenConns:    cfg.DatabaseMaxOpenConns,
				MaxIdleConns:    cfg.DatabaseMaxIdleConns,
				ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
			}, logger)
			return err
		},
		StopFn: func(ctx context.Context) error {
			return db.Close()
		},
	})

	s.AddDependency(&startup.FuncDependency{
		Name:     "migrations",
		Requires: []string{"database"},
		StartFn: func(ctx context.Context) error {
			driver, err := db.MigrationDriver()
			if err != nil {
				return err
			}
			ms := database.NewMigrationService(logger, &database.MigrationConfig{
				MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
				Version:             uint(cfg.DatabaseMigrationVersion),
				Force:               cfg.DatabaseMigrationForce,
			})
			return ms.Migrate(cfg.DatabaseName, driver)
		},
	})

	if cfg.RedisEnabled {
		s.AddDependency(&startup.FuncDependency{
			Name: "redis",
			StartFn: func(ctx context.Context) error {
				var err error
				redisClient, err = redis.NewClient(redis.Config{
					Host:     cfg.RedisHost,
					Port:     cfg.RedisPort,
					Password: cfg.RedisPassword,
					DB:       cfg.RedisDB,
				}, logger)
				return err
			},
			StopFn: func(ctx context.Context) error {
				return redisClient.Close()
			},
		})
	}

	httpRequires := []string{"migrations"}
	if cfg.RedisEnabled {
		httpRequires = append(httpRequires, "redis")
	}
	s.AddDependency(&startup.FuncDependency{
		Name:     "http-server",
		Requires: httpRequires,
		StartFn: func(ctx context.Context) error {
			checker = health.NewChecker(db, redisClient, cfg.Version)
			e = buildServer(cfg, logger, db, redisClient, checker)

			go func() {
				addr := fmt.Sprintf(":%d", cfg.Port)
				if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
					serverErr <- err
				}
			}()

			checker.SetReady(true)
			return nil
		},
		StopFn: func(ctx context.Context) error {
			checker.SetReady(false)
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	})

	if err := s.Start(ctx); err != nil {
		logger.WithError(err).Fatal("startup failed")
	}

	logger.Infof("%s listening on port %d", cfg.AppName, cfg.Port)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.WithError(err).Error("http server failed")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		logger.WithError(err).Error("shutdown failed")
	}
}

func buildServer(cfg config.Config, logger ectologger.Logger, db database.DB, redisClient *redis.Client, checker *health.Checker) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.ReadHeaderTimeout = time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	e.GET("/live", checker.LivenessHandler)
	e.GET("/ready", checker.ReadinessHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	entities := registry.NewRegistry(db, logger)
	participationRepo := participation.NewRepository(db, logger, entities)
	documentLinkRepo := documentlink.NewRepository(db, logger, entities)
	clauseLinkRepo := clauselink.NewRepository(db, logger, entities)
	aggregationRepo := aggregation.NewRepository(db, logger)

	api := e.Group("/api/v1")
	handlers.NewParticipationHandler(participationRepo).RegisterRoutes(api)
	handlers.NewDocumentLinkHandler(documentLinkRepo).RegisterRoutes(api)
	handlers.NewClauseLinkHandler(clauseLinkRepo).RegisterRoutes(api)
	handlers.NewAggregationHandler(aggregationRepo).RegisterRoutes(api)

	if cfg.AdminEndpointsEnabled {
		var locker *redis.Locker
		if redisClient != nil {
			locker = redis.NewLocker(redisClient, "sorrel:backfill:")
		}
		adapter := backfill.NewAdapter(db, logger, locker)
		handlers.NewBackfillHandler(adapter).RegisterRoutes(api)
		handlers.NewTenantHandler(participationRepo, documentLinkRepo, clauseLinkRepo, logger).RegisterRoutes(api)
	}

	return e
}

func newZapLogger(cfg config.Config) *zap.Logger {
	if cfg.PrettyLogs {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}

func setupTracing(ctx context.Context, cfg config.Config) (func(), error) {
	if !cfg.TracingEnabled {
		return func() {}, nil
	}

	var exporter sdktrace.SpanExporter
	if cfg.TracingExporter == "otlp" {
		otlpConfig := exporters.DefaultOTLPConfig()
		otlpConfig.Endpoint = cfg.TracingOTLPEndpoint
		var err error
		exporter, err = exporters.NewOTLPExporter(ctx, otlpConfig)
		if err != nil {
			return nil, err
		}
	} else {
		exporter = &exporters.ConsoleExporter{}
	}

	provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(provider)
	tracing.SetTracer(provider.Tracer(cfg.AppName))

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = provider.Shutdown(shutdownCtx)
	}, nil
}
