package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/janitor-service/internal/app/janitor/config"
	"storefront/janitor-service/internal/app/janitor/handler"
	"storefront/janitor-service/internal/app/janitor/processor"
	"storefront/janitor-service/internal/app/janitor/repository"
	"storefront/janitor-service/internal/app/janitor/service"
	"storefront/pkg/logger"
	"storefront/pkg/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const serviceName = "janitor-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Log.Level)
	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, serviceName, cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === POSTGRESQL ===
	pool, err := connectDB(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.DBName).Msg("Connected to PostgreSQL")

	// === REDIS ===
	redisClient, err := connectRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("address", cfg.Redis.Address()).Msg("Connected to Redis")

	// === ХРАНИЛИЩЕ ИЗОБРАЖЕНИЙ ===
	files, err := storage.Open(ctx, cfg.Storage.Open())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize file storage")
	}
	logger.Info().Str("driver", cfg.Storage.Driver).Msg("Initialized file storage")

	imageRepo := repository.NewImageKeyRepository(pool)
	stateRepo := repository.NewSweepStateRepository(redisClient, cfg.Redis.ReportTTL)
	sweeper := service.NewSweeper(files, imageRepo, stateRepo, cfg.Cron.GracePeriod, cfg.Cron.LockTTL)

	// === CRON ===
	cronScheduler := processor.NewCronScheduler(sweeper)
	if err := cronScheduler.Start(ctx, cfg.Cron.Schedule); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.Cron.Schedule).Msg("Failed to start cron scheduler")
	}
	defer cronScheduler.Stop()

	// === KAFKA ===
	if len(cfg.Kafka.Brokers) > 0 {
		consumer := processor.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, sweeper)
		consumer.Start(ctx)
		defer consumer.Stop()
		logger.Info().Str("topic", cfg.Kafka.Topic).Str("group", cfg.Kafka.GroupID).Msg("Kafka consumer started")
	} else {
		logger.Info().Msg("KAFKA_BROKERS is empty, sweeping on schedule only")
	}

	// === HEALTHCHECK ===
	healthHandler := handler.NewHealthCheckHandler(imageRepo, stateRepo, sweeper, cfg.Cron.StaleAfter)
	mux := http.NewServeMux()
	healthHandler.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("Starting healthcheck HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Janitor Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP server forced to shutdown")
	}

	logger.Info().Msg("Janitor Service stopped gracefully")
}

// connectDB делает 10 попыток с паузой 3 секунды: база в docker-compose поднимается позже
func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	for i := 0; i < 10; i++ {
		pool, err = pgxpool.New(ctx, cfg.DSN())
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn().Int("attempt", i+1).Err(err).Msg("Failed to connect to database, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
	})

	var err error
	for i := 0; i < 10; i++ {
		if err = client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		logger.Warn().Int("attempt", i+1).Err(err).Msg("Failed to connect to Redis, retrying...")
		time.Sleep(3 * time.Second)
	}

	client.Close()
	return nil, fmt.Errorf("failed to connect to Redis after 10 attempts: %w", err)
}
