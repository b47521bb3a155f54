package service

import (
	"context"

	"storefront/janitor-service/internal/app/janitor/entity"
)

// SweeperInterface - проход по хранилищу изображений товаров
type SweeperInterface interface {
	// Sweep удаляет файлы без строки в images. Если проход уже идет в другом экземпляре,
	// возвращает repository.ErrSweepLocked.
	Sweep(ctx context.Context, trigger string) (*entity.SweepReport, error)

	// LastReport возвращает итог последнего прохода (repository.ErrNoReport, если проходов не было)
	LastReport(ctx context.Context) (*entity.SweepReport, error)
}
