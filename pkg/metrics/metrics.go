package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Пример запроса PromQL: rate(http_requests_total{service="shop-service"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

// HttpRequestsInFlight - текущее количество обрабатываемых запросов
var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Database Метрики
// =============================================================================

// DbQueryDuration - время выполнения SQL запросов
var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "table"},
)

// DbErrors - счётчик ошибок базы данных
var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis Метрики
// =============================================================================

var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key_prefix"},
)

var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key_prefix"},
)

var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"},
)

var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka Метрики
// =============================================================================

var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"},
)

// =============================================================================
// Business Метрики (storefront)
// =============================================================================

// --- Accounts ---

// ShopRegistrations - регистрации покупателей
var ShopRegistrations = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "shop_registrations_total",
		Help: "Total number of customer registrations",
	},
)

// ShopLogins - попытки входа
var ShopLogins = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shop_logins_total",
		Help: "Total number of login attempts",
	},
	[]string{"status"}, // success, failed
)

// ShopTokensIssued - выданные токены
var ShopTokensIssued = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "shop_tokens_issued_total",
		Help: "Total number of access tokens issued",
	},
)

// --- Catalog ---

// CatalogWrites - изменения каталога
var CatalogWrites = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shop_catalog_writes_total",
		Help: "Total number of catalog writes",
	},
	[]string{"entity", "operation"}, // entity: unit, category, product; operation: create, update, delete
)

// ValidationFailures - отклонённые записи
var ValidationFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shop_validation_failures_total",
		Help: "Total number of writes rejected by validation",
	},
	[]string{"entity"},
)

// CascadeRowsDeleted - строки, удалённые или обнулённые каскадом
var CascadeRowsDeleted = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shop_cascade_rows_total",
		Help: "Total number of rows removed or nulled by cascading deletes",
	},
	[]string{"table", "policy"}, // policy: cascade, set_null
)

// StoredFiles - операции с файлами изображений
var StoredFiles = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shop_stored_files_total",
		Help: "Total number of image file operations",
	},
	[]string{"operation", "status"}, // operation: save, delete
)

// --- Orders ---

// OrdersCreated - созданные заказы
var OrdersCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	},
)

// OrdersTotal - общая сумма заказов
var OrdersTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "orders_total_amount",
		Help: "Total amount of all orders",
	},
)

// --- Janitor ---

// JanitorFilesSwept - удалённые осиротевшие файлы
var JanitorFilesSwept = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "janitor_files_swept_total",
		Help: "Total number of orphaned files handled by the janitor",
	},
	[]string{"status"}, // deleted, failed
)

// JanitorSweepDuration - время одного прохода
var JanitorSweepDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "janitor_sweep_duration_seconds",
		Help:    "Duration of a janitor sweep",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	},
)
