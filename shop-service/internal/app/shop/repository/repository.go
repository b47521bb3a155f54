package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/shop-service/internal/app/shop/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrUnitNotFound     = errors.New("unit not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrWishlistNotFound = errors.New("wishlist not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrForeignKey       = errors.New("foreign key violation")
)

type UnitRepository interface {
	Create(ctx context.Context, unit *entity.Unit) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Unit, error)
	GetByName(ctx context.Context, name string) (*entity.Unit, error)
	List(ctx context.Context) ([]entity.Unit, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]entity.Unit, error)
	Update(ctx context.Context, unit *entity.Unit) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	// GetByNames возвращает первую найденную категорию для каждого имени, отсутствующих имён в карте нет
	GetByNames(ctx context.Context, names []string) (map[string]entity.Category, error)
	List(ctx context.Context) ([]entity.Category, error)
	ListByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]entity.Product, int64, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]entity.Product, error)
	ListByUnit(ctx context.Context, unitID uuid.UUID) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// SetCategories заменяет связи товара с категориями
	SetCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error
	CountCategories(ctx context.Context, productID uuid.UUID) (int64, error)
}

type ImageRepository interface {
	Create(ctx context.Context, image *entity.Image) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]entity.Image, error)
	// FirstByProducts возвращает самое раннее изображение каждого товара
	FirstByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]entity.Image, error)
}

type CartRepository interface {
	Create(ctx context.Context, cart *entity.Cart) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Cart, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Cart, error)
	AddItem(ctx context.Context, item *entity.CartItem) error
	GetItem(ctx context.Context, cartID, itemID uuid.UUID) (*entity.CartItem, error)
	UpdateItem(ctx context.Context, item *entity.CartItem) error
	ListItems(ctx context.Context, cartIDs ...uuid.UUID) ([]entity.CartItem, error)
	CountItems(ctx context.Context, cartID uuid.UUID) (int64, error)
}

type WishlistRepository interface {
	Create(ctx context.Context, wishlist *entity.Wishlist) error
	GetByUser(ctx context.Context, userID uuid.UUID) (*entity.Wishlist, error)
	// AddProduct идемпотентен: повторное добавление не создаёт дубликат
	AddProduct(ctx context.Context, wishlistID, productID uuid.UUID) error
	RemoveProduct(ctx context.Context, wishlistID, productID uuid.UUID) (bool, error)
	ListProducts(ctx context.Context, wishlistID uuid.UUID) ([]entity.WishlistProduct, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type AccountRepository interface {
	Create(ctx context.Context, user *entity.CustomerUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CustomerUser, error)
	GetByUsername(ctx context.Context, username string) (*entity.CustomerUser, error)
	// ExistsUsername и ExistsEmail игнорируют запись exclude (при обновлении собственного профиля)
	ExistsUsername(ctx context.Context, username string, exclude uuid.UUID) (bool, error)
	ExistsEmail(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
	Update(ctx context.Context, user *entity.CustomerUser) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// TokenRepository хранит чёрный список отозванных access токенов
type TokenRepository interface {
	AddToBlacklist(ctx context.Context, token string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

// Store объединяет репозитории над одним соединением или одной транзакцией
type Store interface {
	Units() UnitRepository
	Categories() CategoryRepository
	Products() ProductRepository
	Images() ImageRepository
	Carts() CartRepository
	Wishlists() WishlistRepository
	Orders() OrderRepository
	Accounts() AccountRepository
	// Delete удаляет строки table по id вместе с зависимыми строками согласно DefaultSchema
	Delete(ctx context.Context, table string, ids ...uuid.UUID) (*DeleteResult, error)
	// WithinTransaction выполняет fn в одной транзакции; ошибка fn откатывает все изменения
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
}

// mapError приводит ошибки драйверов к ошибкам репозитория
func mapError(err error, notFound error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrForeignKey
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return ErrDuplicateKey
		case "23503": // foreign_key_violation
			return ErrForeignKey
		}
	}

	// SQLite в тестах возвращает только текст ошибки
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return ErrDuplicateKey
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ErrForeignKey
	}

	return err
}
