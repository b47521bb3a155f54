package repository

import (
	"context"
	"time"

	"storefront/shop-service/internal/app/shop/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type unitRepository struct {
	db *gorm.DB
}

// NewUnitRepository создает репозиторий единиц измерения
func NewUnitRepository(db *gorm.DB) UnitRepository {
	return &unitRepository{db: db}
}

func (r *unitRepository) Create(ctx context.Context, unit *entity.Unit) error {
	return mapError(r.db.WithContext(ctx).Create(unit).Error, ErrUnitNotFound)
}

func (r *unitRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Unit, error) {
	var unit entity.Unit
	if err := r.db.WithContext(ctx).First(&unit, "id = ?", id).Error; err != nil {
		return nil, mapError(err, ErrUnitNotFound)
	}
	return &unit, nil
}

// GetByName ищет единицу по точному имени; при совпадении нескольких берётся единица с наименьшим id
func (r *unitRepository) GetByName(ctx context.Context, name string) (*entity.Unit, error) {
	var unit entity.Unit
	if err := r.db.WithContext(ctx).Where("name = ?", name).Order("id").First(&unit).Error; err != nil {
		return nil, mapError(err, ErrUnitNotFound)
	}
	return &unit, nil
}

func (r *unitRepository) List(ctx context.Context) ([]entity.Unit, error) {
	var units []entity.Unit
	if err := r.db.WithContext(ctx).Order("name").Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

func (r *unitRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]entity.Unit, error) {
	result := make(map[uuid.UUID]entity.Unit, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var units []entity.Unit
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&units).Error; err != nil {
		return nil, err
	}
	for _, u := range units {
		result[u.ID] = u
	}
	return result, nil
}

func (r *unitRepository) Update(ctx context.Context, unit *entity.Unit) error {
	result := r.db.WithContext(ctx).Save(unit)
	if result.Error != nil {
		return mapError(result.Error, ErrUnitNotFound)
	}
	return nil
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository создает репозиторий категорий
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return mapError(r.db.WithContext(ctx).Create(category).Error, ErrCategoryNotFound)
}

func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, mapError(err, ErrCategoryNotFound)
	}
	return &category, nil
}

func (r *categoryRepository) GetByNames(ctx context.Context, names []string) (map[string]entity.Category, error) {
	result := make(map[string]entity.Category, len(names))
	if len(names) == 0 {
		return result, nil
	}
	var categories []entity.Category
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Order("created_at").Find(&categories).Error; err != nil {
		return nil, err
	}
	for _, c := range categories {
		if _, ok := result[c.Name]; !ok {
			result[c.Name] = c
		}
	}
	return result, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) ListByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]entity.Category, error) {
	result := make(map[uuid.UUID][]entity.Category, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	type row struct {
		ProductID uuid.UUID
		ID        uuid.UUID
		Name      string
		ParentID  *uuid.UUID
		CreatedAt time.Time
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("product_categories pc").
		Select("pc.product_id, c.id, c.name, c.parent_id, c.created_at").
		Joins("JOIN categories c ON c.id = pc.category_id").
		Where("pc.product_id IN ?", productIDs).
		Order("c.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, rw := range rows {
		result[rw.ProductID] = append(result[rw.ProductID], entity.Category{
			ID:        rw.ID,
			Name:      rw.Name,
			ParentID:  rw.ParentID,
			CreatedAt: rw.CreatedAt,
		})
	}
	return result, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	return mapError(r.db.WithContext(ctx).Save(category).Error, ErrCategoryNotFound)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return mapError(r.db.WithContext(ctx).Create(product).Error, ErrProductNotFound)
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, mapError(err, ErrProductNotFound)
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, limit, offset int) ([]entity.Product, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []entity.Product
	query := r.db.WithContext(ctx).Order("created_at DESC").Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]entity.Product, error) {
	result := make(map[uuid.UUID]entity.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var products []entity.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

func (r *productRepository) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]entity.Product, error) {
	var products []entity.Product
	if err := r.db.WithContext(ctx).Where("unit_id = ?", unitID).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return mapError(r.db.WithContext(ctx).Save(product).Error, ErrProductNotFound)
}

func (r *productRepository) SetCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("product_id = ?", productID).Delete(&entity.ProductCategory{}).Error; err != nil {
		return err
	}

	seen := make(map[uuid.UUID]struct{}, len(categoryIDs))
	links := make([]entity.ProductCategory, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		links = append(links, entity.ProductCategory{ID: uuid.New(), ProductID: productID, CategoryID: id})
	}
	if len(links) == 0 {
		return nil
	}
	return mapError(db.Create(&links).Error, ErrCategoryNotFound)
}

func (r *productRepository) CountCategories(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ProductCategory{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository создает репозиторий изображений товаров
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *entity.Image) error {
	return mapError(r.db.WithContext(ctx).Create(image).Error, ErrProductNotFound)
}

func (r *imageRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]entity.Image, error) {
	var images []entity.Image
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("created_at").Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (r *imageRepository) FirstByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]entity.Image, error) {
	result := make(map[uuid.UUID]entity.Image, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}
	var images []entity.Image
	if err := r.db.WithContext(ctx).Where("product_id IN ?", productIDs).Order("created_at").Find(&images).Error; err != nil {
		return nil, err
	}
	for _, img := range images {
		if _, ok := result[img.ProductID]; !ok {
			result[img.ProductID] = img
		}
	}
	return result, nil
}
