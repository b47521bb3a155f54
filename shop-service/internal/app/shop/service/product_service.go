package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/pkg/logger"
	"storefront/pkg/metrics"
	"storefront/pkg/storage"
	"storefront/shop-service/internal/app/shop/entity"
	"storefront/shop-service/internal/app/shop/repository"
	"storefront/shop-service/internal/app/shop/validation"

	"github.com/google/uuid"
)

const (
	DefaultProductLimit = 20
	MaxProductLimit     = 100
)

// CreateProduct сохраняет товар, связи с категориями и изображение в одной транзакции.
// Файл изображения пишется в хранилище до транзакции и удаляется, если транзакция не прошла.
func (s *CatalogService) CreateProduct(ctx context.Context, form *entity.ProductForm) (*entity.ProductResponse, error) {
	var params entity.ProductParams
	if err := applyForm(form, &params, true); err != nil {
		return nil, trackValidation("product", err)
	}

	imageKey, err := s.saveImage(ctx, form.Image)
	if err != nil {
		return nil, err
	}

	var product *entity.Product
	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		unitID, err := resolveUnit(ctx, tx.Units(), form.Unit)
		if err != nil {
			return err
		}
		params.UnitID = unitID

		categoryIDs, err := resolveCategories(ctx, tx.Categories(), CategoryNames(form.Categories))
		if err != nil {
			return err
		}

		product, err = entity.NewProduct(params)
		if err != nil {
			return err
		}
		if err := tx.Products().Create(ctx, product); err != nil {
			return err
		}
		if err := tx.Products().SetCategories(ctx, product.ID, categoryIDs); err != nil {
			return err
		}
		return s.attachImage(ctx, tx, product.ID, imageKey)
	})
	if err != nil {
		s.discardImage(ctx, imageKey)
		return nil, s.productError("create", err)
	}

	metrics.CatalogWrites.WithLabelValues("product", "create").Inc()
	publish(ctx, s.publisher, product.ID.String(), s.productEvent(entity.EventProductCreated, product, nil))

	return s.GetProduct(ctx, product.ID)
}

// UpdateProduct - частичное обновление, PUT и PATCH ведут себя одинаково.
// Переданные категории заменяют текущий набор, новое изображение заменяет старые.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, form *entity.ProductForm) (*entity.ProductResponse, error) {
	imageKey, err := s.saveImage(ctx, form.Image)
	if err != nil {
		return nil, err
	}

	var product *entity.Product
	var oldFiles []string
	var removed map[string]int64

	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		var err error
		product, err = tx.Products().GetByID(ctx, id)
		if err != nil {
			return err
		}

		params := productParams(product)
		if err := applyForm(form, &params, false); err != nil {
			return err
		}
		if form.Unit != nil {
			if params.UnitID, err = resolveUnit(ctx, tx.Units(), form.Unit); err != nil {
				return err
			}
		}

		product.Name = params.Name
		product.Description = params.Description
		product.Price = params.Price
		product.Discount = params.Discount
		product.UnitID = params.UnitID
		product.QuantityPerUnit = params.QuantityPerUnit
		product.Currency = params.Currency
		if err := product.Validate(); err != nil {
			return err
		}
		if err := tx.Products().Update(ctx, product); err != nil {
			return err
		}

		if form.HasCategories {
			categoryIDs, err := resolveCategories(ctx, tx.Categories(), CategoryNames(form.Categories))
			if err != nil {
				return err
			}
			if err := tx.Products().SetCategories(ctx, product.ID, categoryIDs); err != nil {
				return err
			}
		}

		if imageKey != "" {
			images, err := tx.Images().ListByProduct(ctx, product.ID)
			if err != nil {
				return err
			}
			if len(images) > 0 {
				ids := make([]uuid.UUID, 0, len(images))
				for _, img := range images {
					ids = append(ids, img.ID)
				}
				res, err := tx.Delete(ctx, repository.TableImages, ids...)
				if err != nil {
					return err
				}
				oldFiles = res.Files
				removed = res.Deleted
			}
			return s.attachImage(ctx, tx, product.ID, imageKey)
		}
		return nil
	})
	if err != nil {
		s.discardImage(ctx, imageKey)
		return nil, s.productError("update", err)
	}

	removeFiles(ctx, s.files, oldFiles)
	metrics.CatalogWrites.WithLabelValues("product", "update").Inc()
	publish(ctx, s.publisher, product.ID.String(), s.productEvent(entity.EventProductUpdated, product, removed))

	return s.GetProduct(ctx, product.ID)
}

// DeleteProduct удаляет товар каскадом; позиции заказов сохраняются с product_id = NULL
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to get product: %w", err)
	}

	res, err := s.store.Delete(ctx, repository.TableProducts, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	removeFiles(ctx, s.files, res.Files)
	metrics.CatalogWrites.WithLabelValues("product", "delete").Inc()
	publish(ctx, s.publisher, id.String(), s.productEvent(entity.EventProductDeleted, product, res.Deleted))

	return nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.ProductResponse, error) {
	product, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	responses, err := s.productResponses(ctx, []entity.Product{*product})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// ListProducts возвращает страницу товаров; limit ограничен MaxProductLimit
func (s *CatalogService) ListProducts(ctx context.Context, limit, offset int) (*entity.ProductListResponse, error) {
	if limit <= 0 {
		limit = DefaultProductLimit
	}
	if limit > MaxProductLimit {
		limit = MaxProductLimit
	}
	if offset < 0 {
		offset = 0
	}

	products, total, err := s.store.Products().List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	responses, err := s.productResponses(ctx, products)
	if err != nil {
		return nil, err
	}

	return &entity.ProductListResponse{
		Products: responses,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

// productResponses дополняет товары единицей, категориями и ссылкой на изображение
func (s *CatalogService) productResponses(ctx context.Context, products []entity.Product) ([]entity.ProductResponse, error) {
	productIDs := make([]uuid.UUID, 0, len(products))
	unitIDs := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		productIDs = append(productIDs, p.ID)
		unitIDs = append(unitIDs, p.UnitID)
	}

	units, err := s.store.Units().ListByIDs(ctx, unitIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load units: %w", err)
	}
	categories, err := s.store.Categories().ListByProducts(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	images, err := s.store.Images().FirstByProducts(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}

	responses := make([]entity.ProductResponse, 0, len(products))
	for _, p := range products {
		resp := entity.ProductResponse{
			ID:                p.ID,
			Name:              p.Name,
			Description:       p.Description,
			Price:             p.Price,
			Discount:          p.Discount,
			QuantityPerUnit:   p.QuantityPerUnit,
			Currency:          p.Currency,
			CategoriesDetails: []entity.CategoryDetails{},
			CreatedAt:         p.CreatedAt,
			UpdatedAt:         p.UpdatedAt,
		}
		if unit, ok := units[p.UnitID]; ok {
			resp.UnitDetails = entity.UnitDetails{ID: unit.ID, Name: unit.Name, Symbol: unit.Symbol}
		}
		for _, c := range categories[p.ID] {
			resp.CategoriesDetails = append(resp.CategoriesDetails, entity.CategoryDetails{ID: c.ID, Name: c.Name})
		}
		if img, ok := images[p.ID]; ok {
			url := s.files.URL(img.ImageFile)
			resp.ImageURL = &url
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *CatalogService) saveImage(ctx context.Context, upload *entity.ImageUpload) (string, error) {
	if upload == nil {
		return "", nil
	}

	key := storage.NewKey(storage.ProductImagesPrefix, upload.Filename)
	if err := s.files.Save(ctx, key, upload.Content, upload.ContentType); err != nil {
		metrics.StoredFiles.WithLabelValues("save", "error").Inc()
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	metrics.StoredFiles.WithLabelValues("save", "success").Inc()
	return key, nil
}

func (s *CatalogService) attachImage(ctx context.Context, tx repository.Store, productID uuid.UUID, key string) error {
	if key == "" {
		return nil
	}
	image, err := entity.NewImage(productID, key)
	if err != nil {
		return err
	}
	return tx.Images().Create(ctx, image)
}

func (s *CatalogService) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.files.Delete(ctx, key); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("failed to discard uploaded image")
	}
}

func (s *CatalogService) productError(op string, err error) error {
	var notFound *NotFoundError
	switch {
	case errors.As(err, &notFound):
		return err
	case errors.Is(err, repository.ErrProductNotFound):
		return ErrProductNotFound
	case errors.Is(err, validation.ErrInvalid):
		return trackValidation("product", err)
	}
	return fmt.Errorf("failed to %s product: %w", op, err)
}

func (s *CatalogService) productEvent(eventType string, p *entity.Product, removed map[string]int64) entity.ProductEvent {
	return entity.ProductEvent{
		EventType: eventType,
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Currency:  p.Currency,
		Removed:   removed,
		Timestamp: time.Now().UTC(),
	}
}
