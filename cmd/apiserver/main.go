// API server entry point for the PaidUp debt-recovery engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paidup/paidup/internal/application/claims"
	"github.com/paidup/paidup/internal/config"
	"github.com/paidup/paidup/internal/domain/deadline"
	"github.com/paidup/paidup/internal/domain/document"
	"github.com/paidup/paidup/internal/domain/interest"
	"github.com/paidup/paidup/internal/infrastructure/database/postgres"
	"github.com/paidup/paidup/internal/infrastructure/database/postgres/repositories"
	"github.com/paidup/paidup/internal/infrastructure/database/redis"
	"github.com/paidup/paidup/internal/infrastructure/forms"
	"github.com/paidup/paidup/internal/infrastructure/messaging/kafka"
	"github.com/paidup/paidup/internal/infrastructure/monitoring/logging"
	"github.com/paidup/paidup/internal/infrastructure/monitoring/prometheus"
	"github.com/paidup/paidup/internal/infrastructure/storage/minio"
	httpserver "github.com/paidup/paidup/internal/interfaces/http"
	"github.com/paidup/paidup/internal/interfaces/http/handlers"
	"github.com/paidup/paidup/internal/interfaces/http/middleware"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	migrationsDir := flag.String("migrations", "internal/infrastructure/database/postgres/migrations", "path to SQL migrations")
	flag.Parse()

	if err := run(*configPath, *migrationsDir); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(configPath, migrationsDir string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: config file not loaded, using env and defaults: %v\n", err)
		cfg, err = config.LoadFromEnv()
		if err != nil {
			return err
		}
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
	if err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}
	logging.SetDefault(logger)

	logger.Info("starting paidup api server", logging.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics
	metrics, err := prometheus.NewMetrics(prometheus.MetricsConfig{
		Namespace:            "paidup",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	})
	if err != nil {
		return err
	}

	// Postgres
	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := postgres.RunMigrations(postgres.BuildDSN(cfg.Database), migrationsDir); err != nil {
		return err
	}

	queryObserver := repositories.WithQueryObserver(func(operation string, elapsed time.Duration) {
		metrics.DBQueryDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	})
	claimRepo := repositories.NewClaimRepository(conn.Pool(), logger, queryObserver)
	deadlineRepo := repositories.NewDeadlineRepository(conn.Pool(), logger, queryObserver)

	// Redis document cache; optional.
	var (
		builderCache document.Cache
		invalidator  claims.DocumentCacheInvalidator
	)
	redisClient, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, document caching disabled", logging.Err(err))
	} else {
		defer func() { _ = redisClient.Close() }()
		docCache := redis.NewDocumentCache(
			redis.NewCache(redisClient, logger), cfg.Redis.DefaultTTL,
			redis.WithHitMissCounters(
				func() { metrics.CacheHitsTotal.WithLabelValues("document").Inc() },
				func() { metrics.CacheMissesTotal.WithLabelValues("document").Inc() },
			))
		builderCache = docCache
		invalidator = docCache
	}

	// Kafka producer; a disabled config no-ops.
	producer := kafka.NewProducer(cfg.Kafka, logger)
	defer func() { _ = producer.Close() }()

	// Form N1 filler and archive backed by object storage; optional.
	var (
		filler   claims.FormFiller
		archiver claims.FormArchiver
	)
	storageClient, err := minio.NewClient(cfg.MinIO, logger)
	if err != nil {
		logger.Warn("object storage unavailable, form rendering disabled", logging.Err(err))
	} else {
		templateStore := minio.NewTemplateStore(storageClient, cfg.Forms.TemplateObjectKey, logger)
		filler = forms.NewFiller(templateStore, forms.Pinned{
			PageCount:    cfg.Forms.PinnedPageCount,
			PageWidthPt:  cfg.Forms.PinnedPageWidthPt,
			PageHeightPt: cfg.Forms.PinnedPageHeightPt,
			TolerancePt:  cfg.Forms.DimTolerancePt,
		}, logger)
		archiver = minio.NewFilledFormArchive(storageClient, logger)
	}

	// Domain components
	calc := interest.NewCalculator(interest.NewRates(
		cfg.Interest.StatutoryRatePercent,
		cfg.Interest.BaseRatePercent,
		cfg.Interest.CountyCourtRatePercent,
	))
	protocol := deadline.Protocol{
		FirstChaserAfterDays:      cfg.Protocol.FirstChaserAfterDays,
		FinalDemandAfterDays:      cfg.Protocol.FinalDemandAfterDays,
		LBASuggestedAfterDays:     cfg.Protocol.LBASuggestedAfterDays,
		ResponseWindowIndividual:  cfg.Protocol.ResponseWindowIndividual,
		ResponseWindowCompany:     cfg.Protocol.ResponseWindowCompany,
		CourtFilingGraceAfterDays: cfg.Protocol.CourtFilingGraceAfterDays,
	}

	service := claims.NewService(claims.Deps{
		Claims:      claimRepo,
		Deadlines:   deadlineRepo,
		Scheduler:   deadline.NewScheduler(protocol),
		Calculator:  calc,
		Recommender: document.NewRecommender(calc, protocol, cfg.Protocol.ChaserRecommendedOverdueBy),
		Builder:     document.NewBuilder(builderCache),
		Filler:      filler,
		Archiver:    archiver,
		Publisher:   producer,
		DocCache:    invalidator,
		Metrics:     metrics,
		Logger:      logger,
	})

	// HTTP
	checks := map[string]handlers.HealthChecker{
		"postgres": conn.HealthCheck,
	}
	if redisClient != nil {
		checks["redis"] = redisClient.Ping
	}
	if storageClient != nil {
		checks["object_storage"] = storageClient.HealthCheck
	}

	corsCfg := middleware.DefaultCORSConfig()
	rateCfg := middleware.DefaultRateLimitConfig()
	router := httpserver.NewRouter(httpserver.RouterConfig{
		ClaimHandler:  handlers.NewClaimHandler(service, logger),
		HealthHandler: handlers.NewHealthHandler(checks),
		Logger:        logger,
		Metrics:       metrics,
		CORS:          &corsCfg,
		RateLimit:     &rateCfg,
	})
	server := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	return server.Stop(context.Background())
}
