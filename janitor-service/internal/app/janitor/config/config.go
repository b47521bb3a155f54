package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"storefront/pkg/storage"

	"github.com/joho/godotenv"
)

// Config содержит все настройки janitor-service
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Storage  StorageConfig
	Cron     CronConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port string // порт healthcheck и /metrics
}

// DatabaseConfig - та же база, что у shop-service; janitor только читает images
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxConns int32
}

// RedisConfig - блокировка прохода и отчет о последнем проходе
type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	ReportTTL time.Duration
}

// KafkaConfig - пустой Brokers отключает проходы по событиям, остается только cron
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// StorageConfig совпадает с настройками хранилища shop-service
type StorageConfig struct {
	Driver       string
	MediaRoot    string
	MediaURL     string
	Bucket       string
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	PublicURL    string
}

type CronConfig struct {
	Schedule    string        // стандартное cron-выражение или @every
	GracePeriod time.Duration // файлы моложе не удаляются
	LockTTL     time.Duration
	StaleAfter  time.Duration // после этого отчет в /health помечается устаревшим
}

type LogConfig struct {
	Level        string
	LogstashAddr string
}

// Load загружает конфигурацию из .env (если есть) и переменных окружения
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8081"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "storefront"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 4)),
		},
		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnv("REDIS_PORT", "6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        redisDB,
			ReportTTL: getEnvDuration("JANITOR_REPORT_TTL", 7*24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "shop_events"),
			GroupID: getEnv("KAFKA_GROUP_ID", "janitor-group"),
		},
		Storage: StorageConfig{
			Driver:       getEnv("STORAGE_DRIVER", storage.DriverLocal),
			MediaRoot:    getEnv("MEDIA_ROOT", "./media"),
			MediaURL:     getEnv("MEDIA_URL", "/media/"),
			Bucket:       getEnv("STORAGE_BUCKET", ""),
			Endpoint:     getEnv("STORAGE_ENDPOINT", ""),
			Region:       getEnv("STORAGE_REGION", "us-east-1"),
			AccessKey:    getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:    getEnv("STORAGE_SECRET_KEY", ""),
			UsePathStyle: getEnvBool("STORAGE_USE_PATH_STYLE", true),
			PublicURL:    getEnv("STORAGE_PUBLIC_URL", ""),
		},
		Cron: CronConfig{
			Schedule:    getEnv("JANITOR_SCHEDULE", "0 3 * * *"),
			GracePeriod: getEnvDuration("JANITOR_GRACE_PERIOD", time.Hour),
			LockTTL:     getEnvDuration("JANITOR_LOCK_TTL", 30*time.Minute),
			StaleAfter:  getEnvDuration("JANITOR_STALE_AFTER", 48*time.Hour),
		},
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}

	if cfg.Storage.Driver != storage.DriverLocal && cfg.Storage.Driver != storage.DriverS3 {
		return nil, fmt.Errorf("invalid STORAGE_DRIVER value %q", cfg.Storage.Driver)
	}
	if cfg.Cron.GracePeriod < 0 {
		return nil, fmt.Errorf("invalid JANITOR_GRACE_PERIOD value %s", cfg.Cron.GracePeriod)
	}

	return cfg, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode, c.MaxConns,
	)
}

func (c *ServerConfig) Address() string {
	return ":" + c.Port
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *StorageConfig) Open() storage.Config {
	return storage.Config{
		Driver:    c.Driver,
		MediaRoot: c.MediaRoot,
		MediaURL:  c.MediaURL,
		S3: storage.S3Config{
			Endpoint:     c.Endpoint,
			Region:       c.Region,
			Bucket:       c.Bucket,
			AccessKey:    c.AccessKey,
			SecretKey:    c.SecretKey,
			UsePathStyle: c.UsePathStyle,
			PublicURL:    c.PublicURL,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
