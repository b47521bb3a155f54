package repository

import (
	"fmt"

	"storefront/shop-service/internal/app/shop/entity"

	"gorm.io/gorm"
)

// Models - все таблицы сервиса в порядке создания
func Models() []interface{} {
	return []interface{}{
		&entity.Account{},
		&entity.CustomerProfile{},
		&entity.Unit{},
		&entity.Category{},
		&entity.Product{},
		&entity.ProductCategory{},
		&entity.Image{},
		&entity.Cart{},
		&entity.CartItem{},
		&entity.Wishlist{},
		&entity.WishlistProduct{},
		&entity.Order{},
		&entity.OrderItem{},
	}
}

// Migrate создаёт и обновляет схему БД
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
