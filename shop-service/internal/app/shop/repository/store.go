package repository

import (
	"context"
	"fmt"

	"storefront/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormStore struct {
	db       *gorm.DB
	cascader *Cascader
}

// NewStore создаёт Store поверх GORM с каскадными правилами DefaultSchema
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db, cascader: NewCascader(DefaultSchema)}
}

func (s *gormStore) Units() UnitRepository {
	return &unitRepository{db: s.db}
}

func (s *gormStore) Categories() CategoryRepository {
	return &categoryRepository{db: s.db}
}

func (s *gormStore) Products() ProductRepository {
	return &productRepository{db: s.db}
}

func (s *gormStore) Images() ImageRepository {
	return &imageRepository{db: s.db}
}

func (s *gormStore) Carts() CartRepository {
	return &cartRepository{db: s.db}
}

func (s *gormStore) Wishlists() WishlistRepository {
	return &wishlistRepository{db: s.db}
}

func (s *gormStore) Orders() OrderRepository {
	return &orderRepository{db: s.db}
}

func (s *gormStore) Accounts() AccountRepository {
	return &accountRepository{db: s.db}
}

func (s *gormStore) WithinTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx, cascader: s.cascader})
	})
}

func (s *gormStore) Delete(ctx context.Context, table string, ids ...uuid.UUID) (*DeleteResult, error) {
	var result *DeleteResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := s.cascader.Delete(tx, table, ids)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete from %s: %w", table, mapError(err, ErrNotFound))
	}

	if result.Deleted[table] == 0 {
		return result, ErrNotFound
	}

	for t, n := range result.Deleted {
		metrics.CascadeRowsDeleted.WithLabelValues(t, "cascade").Add(float64(n))
	}
	for t, n := range result.Nulled {
		metrics.CascadeRowsDeleted.WithLabelValues(t, "set_null").Add(float64(n))
	}

	return result, nil
}
