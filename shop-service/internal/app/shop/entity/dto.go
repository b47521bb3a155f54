package entity

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// === CATALOG ===

type CreateUnitRequest struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

type UpdateUnitRequest struct {
	Name   *string `json:"name"`
	Symbol *string `json:"symbol"`
}

type CreateCategoryRequest struct {
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// UpdateCategoryRequest - частичное обновление. Пустая строка в parent_id отвязывает категорию от родителя.
type UpdateCategoryRequest struct {
	Name     *string `json:"name"`
	ParentID *string `json:"parent_id"`
}

// ImageUpload - загруженный файл изображения
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// ProductForm - сырые поля формы товара. nil означает, что поле не передано.
type ProductForm struct {
	Name            *string
	Description     *string
	Price           *string
	Discount        *string
	Unit            *string
	QuantityPerUnit *string
	Currency        *string
	// Categories - значения повторяющегося поля categories, каждое может содержать имена через запятую
	Categories    []string
	HasCategories bool
	Image         *ImageUpload
}

type UnitDetails struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Symbol string    `json:"symbol"`
}

type CategoryDetails struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type ProductResponse struct {
	ID                uuid.UUID         `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Price             decimal.Decimal   `json:"price"`
	Discount          int               `json:"discount"`
	QuantityPerUnit   decimal.Decimal   `json:"quantity_per_unit"`
	Currency          string            `json:"currency"`
	UnitDetails       UnitDetails       `json:"unit_details"`
	CategoriesDetails []CategoryDetails `json:"categories_details"`
	ImageURL          *string           `json:"image_url"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int64             `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

type UnitListResponse struct {
	Units []Unit `json:"units"`
	Total int    `json:"total"`
}

type CategoryListResponse struct {
	Categories []Category `json:"categories"`
	Total      int        `json:"total"`
}

// === CARTS & WISHLISTS ===

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CartItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    int             `json:"discount"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Currency    string          `json:"currency"`
}

type CartResponse struct {
	ID        uuid.UUID          `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Items     []CartItemResponse `json:"items"`
	Total     decimal.Decimal    `json:"total"`
}

type AddWishlistProductRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

type WishlistProductResponse struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	AddedAt  time.Time       `json:"added_at"`
}

type WishlistResponse struct {
	ID       uuid.UUID                 `json:"id"`
	Products []WishlistProductResponse `json:"products"`
}

// === ORDERS ===

type CheckoutRequest struct {
	CartID uuid.UUID `json:"cart_id" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// === ACCOUNTS ===

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	PhoneNumber     string `json:"phone_number"`
	DateOfBirth     string `json:"date_of_birth"`
	ShippingAddress string `json:"shipping_address"`
	BillingAddress  string `json:"billing_address"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type ProfileResponse struct {
	Username        string  `json:"username"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Email           string  `json:"email"`
	PhoneNumber     string  `json:"phone_number"`
	DateOfBirth     *string `json:"date_of_birth"`
	ShippingAddress string  `json:"shipping_address"`
	BillingAddress  string  `json:"billing_address"`
}

// UpdateProfileRequest - частичное обновление профиля, пароль меняется только через /password/change
type UpdateProfileRequest struct {
	Username        *string `json:"username"`
	Email           *string `json:"email"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	PhoneNumber     *string `json:"phone_number"`
	DateOfBirth     *string `json:"date_of_birth"`
	ShippingAddress *string `json:"shipping_address"`
	BillingAddress  *string `json:"billing_address"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type DetailResponse struct {
	Detail string `json:"detail"`
}

// NewProfileResponse собирает ответ /profile из учётной записи и профиля
func NewProfileResponse(u *CustomerUser) ProfileResponse {
	resp := ProfileResponse{
		Username:        u.Account.Username,
		FirstName:       u.Profile.FirstName,
		LastName:        u.Profile.LastName,
		Email:           u.Account.Email,
		PhoneNumber:     u.Profile.PhoneNumber,
		ShippingAddress: u.Profile.ShippingAddress,
		BillingAddress:  u.Profile.BillingAddress,
	}
	if u.Profile.DateOfBirth != nil {
		dob := u.Profile.DateOfBirth.Format(DateLayout)
		resp.DateOfBirth = &dob
	}
	return resp
}
