package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/pkg/logger"
	"storefront/pkg/metrics"
	"storefront/pkg/storage"
	"storefront/shop-service/internal/app/shop/entity"
	"storefront/shop-service/internal/app/shop/repository"
	"storefront/shop-service/internal/app/shop/util"
	"storefront/shop-service/internal/app/shop/validation"

	"github.com/google/uuid"
)

const catalogCacheTTL = time.Hour

// CatalogService обрабатывает бизнес-логику каталога: единицы, категории и товары.
// Списки единиц и категорий кешируются в Redis, изменения товаров публикуются в Kafka.
type CatalogService struct {
	store     repository.Store
	cache     util.CatalogCache
	publisher util.MessagePublisher
	files     storage.FileStorage
}

func NewCatalogService(
	store repository.Store,
	cache util.CatalogCache,
	publisher util.MessagePublisher,
	files storage.FileStorage,
) *CatalogService {
	return &CatalogService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		files:     files,
	}
}

// === UNITS ===

func (s *CatalogService) CreateUnit(ctx context.Context, req *entity.CreateUnitRequest) (*entity.Unit, error) {
	unit, err := entity.NewUnit(strings.TrimSpace(req.Name), strings.TrimSpace(req.Symbol))
	if err != nil {
		return nil, trackValidation("unit", err)
	}

	if err := s.store.Units().Create(ctx, unit); err != nil {
		return nil, fmt.Errorf("failed to create unit: %w", err)
	}

	metrics.CatalogWrites.WithLabelValues("unit", "create").Inc()
	s.invalidateUnits(ctx)
	return unit, nil
}

func (s *CatalogService) GetUnit(ctx context.Context, id uuid.UUID) (*entity.Unit, error) {
	unit, err := s.store.Units().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUnitNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}
	return unit, nil
}

// ListUnits отдает список из кеша, при промахе читает БД и заполняет кеш
func (s *CatalogService) ListUnits(ctx context.Context) ([]entity.Unit, error) {
	if s.cache != nil {
		units, err := s.cache.GetUnits(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to read units cache")
		} else if units != nil {
			return units, nil
		}
	}

	units, err := s.store.Units().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetUnits(ctx, units, catalogCacheTTL); err != nil {
			logger.Warn().Err(err).Msg("failed to cache units")
		}
	}
	return units, nil
}

func (s *CatalogService) UpdateUnit(ctx context.Context, id uuid.UUID, req *entity.UpdateUnitRequest) (*entity.Unit, error) {
	unit, err := s.GetUnit(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		unit.Name = strings.TrimSpace(*req.Name)
	}
	if req.Symbol != nil {
		unit.Symbol = strings.TrimSpace(*req.Symbol)
	}
	if err := unit.Validate(); err != nil {
		return nil, trackValidation("unit", err)
	}

	if err := s.store.Units().Update(ctx, unit); err != nil {
		return nil, fmt.Errorf("failed to update unit: %w", err)
	}

	metrics.CatalogWrites.WithLabelValues("unit", "update").Inc()
	s.invalidateUnits(ctx)
	return unit, nil
}

// DeleteUnit удаляет единицу вместе с ее товарами. Для каждого товара публикуется PRODUCT_DELETED,
// итог каскада уходит в UNIT_DELETED.
func (s *CatalogService) DeleteUnit(ctx context.Context, id uuid.UUID) error {
	var products []entity.Product
	var res *repository.DeleteResult

	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		var err error
		if products, err = tx.Products().ListByUnit(ctx, id); err != nil {
			return err
		}
		res, err = tx.Delete(ctx, repository.TableUnits, id)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnitNotFound
		}
		return fmt.Errorf("failed to delete unit: %w", err)
	}

	removeFiles(ctx, s.files, res.Files)
	metrics.CatalogWrites.WithLabelValues("unit", "delete").Inc()
	s.invalidateUnits(ctx)

	for i := range products {
		publish(ctx, s.publisher, products[i].ID.String(), s.productEvent(entity.EventProductDeleted, &products[i], nil))
	}
	publish(ctx, s.publisher, id.String(), entity.UnitEvent{
		EventType: entity.EventUnitDeleted,
		UnitID:    id,
		Removed:   res.Deleted,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func (s *CatalogService) invalidateUnits(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteUnits(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate units cache")
	}
}

// === CATEGORIES ===

func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	category, err := entity.NewCategory(strings.TrimSpace(req.Name), req.ParentID)
	if err != nil {
		return nil, trackValidation("category", err)
	}

	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		if err := checkParent(ctx, tx, category.ParentID); err != nil {
			return err
		}
		return tx.Categories().Create(ctx, category)
	})
	if err != nil {
		if errors.Is(err, validation.ErrInvalid) {
			return nil, trackValidation("category", err)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	metrics.CatalogWrites.WithLabelValues("category", "create").Inc()
	s.invalidateCategories(ctx)
	return category, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.store.Categories().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// ListCategories получает все категории с кешированием в Redis
func (s *CatalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	if s.cache != nil {
		categories, err := s.cache.GetCategories(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to read categories cache")
		} else if categories != nil {
			return categories, nil
		}
	}

	categories, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, categories, catalogCacheTTL); err != nil {
			logger.Warn().Err(err).Msg("failed to cache categories")
		}
	}
	return categories, nil
}

// UpdateCategory - частичное обновление. Пустой parent_id отвязывает категорию от родителя.
func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	var category *entity.Category

	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		var err error
		category, err = tx.Categories().GetByID(ctx, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			category.Name = strings.TrimSpace(*req.Name)
		}
		if req.ParentID != nil {
			raw := strings.TrimSpace(*req.ParentID)
			if raw == "" {
				category.ParentID = nil
			} else {
				parentID, err := uuid.Parse(raw)
				if err != nil {
					return validation.Invalid("parent_id", "Must be a valid UUID.")
				}
				if err := checkParent(ctx, tx, &parentID); err != nil {
					return err
				}
				category.ParentID = &parentID
			}
		}

		if err := category.Validate(); err != nil {
			return err
		}
		return tx.Categories().Update(ctx, category)
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			return nil, ErrCategoryNotFound
		case errors.Is(err, validation.ErrInvalid):
			return nil, trackValidation("category", err)
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	metrics.CatalogWrites.WithLabelValues("category", "update").Inc()
	s.invalidateCategories(ctx)
	return category, nil
}

// DeleteCategory удаляет категорию; у дочерних категорий parent_id становится NULL
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.Delete(ctx, repository.TableCategories, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	metrics.CatalogWrites.WithLabelValues("category", "delete").Inc()
	s.invalidateCategories(ctx)
	return nil
}

func (s *CatalogService) invalidateCategories(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate categories cache")
	}
}

func checkParent(ctx context.Context, tx repository.Store, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if _, err := tx.Categories().GetByID(ctx, *parentID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return validation.MissingReference("parent_id", invalidPK(parentID))
		}
		return err
	}
	return nil
}
