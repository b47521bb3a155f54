package repository

import (
	"context"
	"errors"
	"time"

	"storefront/janitor-service/internal/app/janitor/entity"
)

var (
	// ErrSweepLocked - проход уже выполняет другой экземпляр janitor
	ErrSweepLocked = errors.New("sweep is already running")
	// ErrNoReport - ни одного прохода еще не было
	ErrNoReport = errors.New("no sweep report")
)

// ImageKeyRepository читает таблицу images базы shop-service
type ImageKeyRepository interface {
	// ReferencedKeys возвращает ключи из keys, на которые есть строка в images
	ReferencedKeys(ctx context.Context, keys []string) (map[string]struct{}, error)

	Ping(ctx context.Context) error
}

// SweepStateRepository хранит в Redis блокировку прохода и отчет о последнем проходе
type SweepStateRepository interface {
	// AcquireLock ставит блокировку на ttl. Возвращает функцию снятия или ErrSweepLocked.
	AcquireLock(ctx context.Context, ttl time.Duration) (func(context.Context) error, error)

	SaveReport(ctx context.Context, report *entity.SweepReport) error

	// LastReport возвращает ErrNoReport, если отчета нет
	LastReport(ctx context.Context) (*entity.SweepReport, error)

	Ping(ctx context.Context) error
}
