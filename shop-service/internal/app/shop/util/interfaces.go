package util

import (
	"context"
	"time"

	"storefront/shop-service/internal/app/shop/entity"
)

// CatalogCache кеширует списки справочников каталога
type CatalogCache interface {
	SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error
	GetCategories(ctx context.Context) ([]entity.Category, error)
	DeleteCategories(ctx context.Context) error
	SetUnits(ctx context.Context, units []entity.Unit, ttl time.Duration) error
	GetUnits(ctx context.Context) ([]entity.Unit, error)
	DeleteUnits(ctx context.Context) error
}

// MessagePublisher интерфейс для отправки событий в Kafka
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
