package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/jobledger/internal/adapter/http"
	"github.com/iho/jobledger/internal/adapter/http/handler"
	"github.com/iho/jobledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/jobledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/jobledger/internal/adapter/repository/redis"
	"github.com/iho/jobledger/internal/infrastructure/config"
	"github.com/iho/jobledger/internal/infrastructure/eventpublisher"
	"github.com/iho/jobledger/internal/infrastructure/logger"
	"github.com/iho/jobledger/internal/infrastructure/metrics"
	"github.com/iho/jobledger/internal/infrastructure/postgres"
	"github.com/iho/jobledger/internal/infrastructure/redis"
	"github.com/iho/jobledger/internal/usecase"
)

func main() {
	// .env is optional, real deployments use the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	jobRepo := postgresRepo.NewJobRepository(pool)
	schemaRepo := postgresRepo.NewSchemaRepository(pool)
	settingsRepo := postgresRepo.NewSettingsRepository(pool)
	snapshotRepo := postgresRepo.NewSnapshotRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Use cases
	jobUC := usecase.NewJobUseCase(jobRepo, cache, idGen, m)
	calcUC := usecase.NewCalcUseCase(txManager, jobRepo, schemaRepo, settingsRepo, snapshotRepo, outboxRepo, idGen, cache, m).
		WithRetrier(postgresRepo.NewRetrier())
	schemaUC := usecase.NewSchemaUseCase(schemaRepo, settingsRepo, idGen)
	settingsUC := usecase.NewSettingsUseCase(settingsRepo, idGen)

	// Handlers
	jobHandler := handler.NewJobHandler(jobUC)
	calcHandler := handler.NewCalcHandler(calcUC)
	schemaHandler := handler.NewSchemaHandler(schemaUC)
	settingsHandler := handler.NewSettingsHandler(settingsUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		JobHandler:       jobHandler,
		CalcHandler:      calcHandler,
		SchemaHandler:    schemaHandler,
		SettingsHandler:  settingsHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		Logger:           log,
		RateLimiter:      rateLimiter,
	})

	// Outbox worker publishes finalize events; without brokers it logs them.
	workerLog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	sink, closeSink := newEventSink(cfg.KafkaBrokers, cfg.KafkaTopic, workerLog)
	defer func() {
		if err := closeSink(); err != nil {
			log.Error().Err(err).Msg("failed to close event sink")
		}
	}()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  sink,
		Logger:     workerLog,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
	})

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	go func() {
		if err := publisher.Start(workerCtx); err != nil && workerCtx.Err() == nil {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	go runOutboxRetention(workerCtx, outboxRepo, cfg.OutboxRetentionAge, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// newEventSink picks the outbox destination: Kafka when brokers are
// configured, structured log output otherwise.
func newEventSink(brokers []string, topic string, log *slog.Logger) (eventpublisher.Publisher, func() error) {
	if len(brokers) == 0 {
		return eventpublisher.NewLogPublisher(log), func() error { return nil }
	}
	kp := eventpublisher.NewKafkaPublisher(brokers, topic)
	return kp, kp.Close
}

// runOutboxRetention periodically prunes published outbox rows older
// than the retention age.
func runOutboxRetention(ctx context.Context, repo usecase.OutboxRepository, age time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeletePublished(ctx, time.Now().Add(-age)); err != nil {
				log.Error().Err(err).Msg("failed to prune published outbox events")
			}
		}
	}
}
