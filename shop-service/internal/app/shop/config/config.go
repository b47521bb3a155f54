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

// Config содержит все настройки shop-service
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8080)
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string // disable/require/verify-full

	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig - кеш списков категорий и единиц, черный список токенов
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int // 0-15
}

// KafkaConfig - топик событий магазина. Пустой Brokers отключает публикацию.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type JWTConfig struct {
	Secret         string
	AccessDuration time.Duration
}

// StorageConfig - где лежат изображения товаров: local или s3
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
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "storefront"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getEnv("KAFKA_TOPIC", "shop_events"),
		},
		JWT: JWTConfig{
			Secret:         getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
			AccessDuration: getEnvDuration("JWT_ACCESS_DURATION", 24*time.Hour),
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
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}

	if cfg.Storage.Driver != storage.DriverLocal && cfg.Storage.Driver != storage.DriverS3 {
		return nil, fmt.Errorf("invalid STORAGE_DRIVER value %q", cfg.Storage.Driver)
	}

	return cfg, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Open переводит настройки в конфигурацию pkg/storage
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

// MediaPrefix - путь маршрута раздачи файлов без завершающего слэша
func (c *StorageConfig) MediaPrefix() string {
	prefix := strings.TrimSuffix(c.MediaURL, "/")
	if prefix == "" || strings.Contains(prefix, "://") {
		return "/media"
	}
	return prefix
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

// getEnvDuration понимает "15m", "24h" и т.п.
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
