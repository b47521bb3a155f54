package repository

import (
	"context"

	"storefront/shop-service/internal/app/shop/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository создает репозиторий корзин
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(ctx context.Context, cart *entity.Cart) error {
	return mapError(r.db.WithContext(ctx).Create(cart).Error, ErrAccountNotFound)
}

func (r *cartRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Cart, error) {
	var cart entity.Cart
	if err := r.db.WithContext(ctx).First(&cart, "id = ?", id).Error; err != nil {
		return nil, mapError(err, ErrCartNotFound)
	}
	return &cart, nil
}

func (r *cartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Cart, error) {
	var carts []entity.Cart
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&carts).Error; err != nil {
		return nil, err
	}
	return carts, nil
}

func (r *cartRepository) AddItem(ctx context.Context, item *entity.CartItem) error {
	return mapError(r.db.WithContext(ctx).Create(item).Error, ErrCartItemNotFound)
}

func (r *cartRepository) GetItem(ctx context.Context, cartID, itemID uuid.UUID) (*entity.CartItem, error) {
	var item entity.CartItem
	err := r.db.WithContext(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).First(&item).Error
	if err != nil {
		return nil, mapError(err, ErrCartItemNotFound)
	}
	return &item, nil
}

func (r *cartRepository) UpdateItem(ctx context.Context, item *entity.CartItem) error {
	return mapError(r.db.WithContext(ctx).Save(item).Error, ErrCartItemNotFound)
}

func (r *cartRepository) ListItems(ctx context.Context, cartIDs ...uuid.UUID) ([]entity.CartItem, error) {
	var items []entity.CartItem
	if len(cartIDs) == 0 {
		return items, nil
	}
	if err := r.db.WithContext(ctx).Where("cart_id IN ?", cartIDs).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) CountItems(ctx context.Context, cartID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.CartItem{}).Where("cart_id = ?", cartID).Count(&count).Error
	return count, err
}

type wishlistRepository struct {
	db *gorm.DB
}

// NewWishlistRepository создает репозиторий списков желаний
func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) Create(ctx context.Context, wishlist *entity.Wishlist) error {
	return mapError(r.db.WithContext(ctx).Create(wishlist).Error, ErrAccountNotFound)
}

func (r *wishlistRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*entity.Wishlist, error) {
	var wishlist entity.Wishlist
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").First(&wishlist).Error; err != nil {
		return nil, mapError(err, ErrWishlistNotFound)
	}
	return &wishlist, nil
}

func (r *wishlistRepository) AddProduct(ctx context.Context, wishlistID, productID uuid.UUID) error {
	link := entity.WishlistProduct{WishlistID: wishlistID, ProductID: productID}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
	return mapError(err, ErrProductNotFound)
}

func (r *wishlistRepository) RemoveProduct(ctx context.Context, wishlistID, productID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Delete(&entity.WishlistProduct{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *wishlistRepository) ListProducts(ctx context.Context, wishlistID uuid.UUID) ([]entity.WishlistProduct, error) {
	var links []entity.WishlistProduct
	if err := r.db.WithContext(ctx).Where("wishlist_id = ?", wishlistID).Order("added_at").Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}
