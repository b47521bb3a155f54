package service

import (
	"context"

	"storefront/shop-service/internal/app/shop/entity"

	"github.com/google/uuid"
)

type CatalogServiceInterface interface {
	CreateUnit(ctx context.Context, req *entity.CreateUnitRequest) (*entity.Unit, error)
	GetUnit(ctx context.Context, id uuid.UUID) (*entity.Unit, error)
	ListUnits(ctx context.Context) ([]entity.Unit, error)
	UpdateUnit(ctx context.Context, id uuid.UUID, req *entity.UpdateUnitRequest) (*entity.Unit, error)
	DeleteUnit(ctx context.Context, id uuid.UUID) error

	CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	ListCategories(ctx context.Context) ([]entity.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *entity.UpdateCategoryRequest) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateProduct(ctx context.Context, form *entity.ProductForm) (*entity.ProductResponse, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.ProductResponse, error)
	ListProducts(ctx context.Context, limit, offset int) (*entity.ProductListResponse, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, form *entity.ProductForm) (*entity.ProductResponse, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type CartServiceInterface interface {
	CreateCart(ctx context.Context, userID uuid.UUID) (*entity.CartResponse, error)
	ListCarts(ctx context.Context, userID uuid.UUID) ([]entity.CartResponse, error)
	GetCart(ctx context.Context, userID, cartID uuid.UUID) (*entity.CartResponse, error)
	DeleteCart(ctx context.Context, userID, cartID uuid.UUID) error
	AddItem(ctx context.Context, userID, cartID uuid.UUID, req *entity.AddCartItemRequest) (*entity.CartResponse, error)
	UpdateItem(ctx context.Context, userID, cartID, itemID uuid.UUID, req *entity.UpdateCartItemRequest) (*entity.CartResponse, error)
	RemoveItem(ctx context.Context, userID, cartID, itemID uuid.UUID) error

	GetWishlist(ctx context.Context, userID uuid.UUID) (*entity.WishlistResponse, error)
	AddToWishlist(ctx context.Context, userID uuid.UUID, req *entity.AddWishlistProductRequest) (*entity.WishlistResponse, error)
	RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error
}

type OrderServiceInterface interface {
	Checkout(ctx context.Context, userID uuid.UUID, req *entity.CheckoutRequest) (*entity.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]entity.Order, error)
	GetOrder(ctx context.Context, principal *Principal, orderID uuid.UUID) (*entity.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, req *entity.UpdateOrderStatusRequest) (*entity.Order, error)
}

type AccountServiceInterface interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.TokenResponse, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.TokenResponse, error)
	Logout(ctx context.Context, principal *Principal) error
	Authenticate(ctx context.Context, token string) (*Principal, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *entity.UpdateProfileRequest) error
	ChangePassword(ctx context.Context, userID uuid.UUID, req *entity.ChangePasswordRequest) error
	DeleteAccount(ctx context.Context, principal *Principal) error
}
