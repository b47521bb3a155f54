package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"storefront/pkg/logger"
	"storefront/pkg/metrics"
	"storefront/pkg/storage"
	"storefront/shop-service/internal/app/shop/config"
	"storefront/shop-service/internal/app/shop/handler"
	"storefront/shop-service/internal/app/shop/repository"
	"storefront/shop-service/internal/app/shop/service"
	"storefront/shop-service/internal/app/shop/util"
)

const serviceName = "shop-service"

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
		} else {
			logger.Info().Str("logstash_addr", cfg.Log.LogstashAddr).Msg("Connected to Logstash")
		}
	}

	// === POSTGRESQL ===
	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := db.Use(metrics.NewGormPlugin(serviceName)); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register metrics plugin")
	}
	if err := repository.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database")
	}
	logger.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Msg("Connected to PostgreSQL")

	// === REDIS ===
	redisClient, err := util.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB, serviceName)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("address", cfg.Redis.Address()).Msg("Connected to Redis")

	// === KAFKA ===
	var publisher util.MessagePublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, serviceName)
		defer kafkaProducer.Close()
		publisher = kafkaProducer
		logger.Info().Str("topic", cfg.Kafka.Topic).Msg("Initialized Kafka producer")
	} else {
		logger.Warn().Msg("KAFKA_BROKERS is empty, events are not published")
	}

	// === ХРАНИЛИЩЕ ИЗОБРАЖЕНИЙ ===
	files, err := storage.Open(context.Background(), cfg.Storage.Open())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize file storage")
	}
	media := handler.MediaConfig{URLPrefix: cfg.Storage.MediaPrefix()}
	if local, ok := files.(*storage.LocalStorage); ok {
		media.Root = local.Root()
	}
	logger.Info().Str("driver", cfg.Storage.Driver).Msg("Initialized file storage")

	// === СЕРВИСЫ ===
	store := repository.NewStore(db)
	tokenRepo := repository.NewRedisTokenRepository(redisClient.Client(), serviceName)
	jwtManager := util.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessDuration)

	accountService := service.NewAccountService(store, tokenRepo, jwtManager, publisher, files)
	catalogService := service.NewCatalogService(store, redisClient, publisher, files)
	cartService := service.NewCartService(store)
	orderService := service.NewOrderService(store, publisher)

	router := handler.SetupRoutes(handler.Handlers{
		Accounts: handler.NewAccountHandler(accountService),
		Catalog:  handler.NewCatalogHandler(catalogService),
		Carts:    handler.NewCartHandler(cartService),
		Orders:   handler.NewOrderHandler(orderService),
	}, handler.NewAuthMiddleware(accountService), media)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Shop Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Shop Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Shop Service stopped gracefully")
}

// connectDB делает 10 попыток с паузой 3 секунды: при старте в docker-compose база поднимается позже
func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else {
				pingErr := sqlDB.Ping()
				if pingErr != nil {
					err = pingErr
				} else {
					sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
					sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
					sqlDB.SetConnMaxLifetime(5 * time.Minute)
					sqlDB.SetConnMaxIdleTime(1 * time.Minute)
					return db, nil
				}
			}
		}
		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to database, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}
