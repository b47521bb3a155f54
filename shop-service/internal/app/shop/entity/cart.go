package entity

import (
	"time"

	"storefront/shop-service/internal/app/shop/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart - корзина пользователя. У пользователя может быть несколько корзин.
type Cart struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index" validate:"required"`
	User      *Account  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" validate:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;<-:create"`
}

func (Cart) TableName() string {
	return "carts"
}

func NewCart(userID uuid.UUID) (*Cart, error) {
	c := &Cart{ID: uuid.New(), UserID: userID}
	if err := validation.Struct(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cart) BeforeSave(tx *gorm.DB) error {
	return validation.Struct(c)
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CartItem - позиция корзины. Количество проверяется при сохранении, а не ограничением БД.
type CartItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CartID    uuid.UUID `json:"cart_id" gorm:"type:uuid;not null;index" validate:"required"`
	Cart      *Cart     `json:"-" gorm:"constraint:OnDelete:CASCADE" validate:"-"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index" validate:"required"`
	Product   *Product  `json:"-" gorm:"constraint:OnDelete:CASCADE" validate:"-"`
	Quantity  int       `json:"quantity" gorm:"not null" validate:"gt=0"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

func NewCartItem(cartID, productID uuid.UUID, quantity int) (*CartItem, error) {
	item := &CartItem{ID: uuid.New(), CartID: cartID, ProductID: productID, Quantity: quantity}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

func (i *CartItem) Validate() error {
	return validation.Struct(i)
}

func (i *CartItem) BeforeSave(tx *gorm.DB) error {
	return i.Validate()
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Wishlist - список желаний, создаётся при первом обращении
type Wishlist struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index" validate:"required"`
	User      *Account  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" validate:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Wishlist) TableName() string {
	return "wishlists"
}

func NewWishlist(userID uuid.UUID) (*Wishlist, error) {
	w := &Wishlist{ID: uuid.New(), UserID: userID}
	if err := validation.Struct(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Wishlist) BeforeSave(tx *gorm.DB) error {
	return validation.Struct(w)
}

func (w *Wishlist) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// WishlistProduct - связь список желаний-товар, пара уникальна за счёт составного ключа
type WishlistProduct struct {
	WishlistID uuid.UUID `json:"wishlist_id" gorm:"type:uuid;primaryKey"`
	Wishlist   *Wishlist `json:"-" gorm:"constraint:OnDelete:CASCADE" validate:"-"`
	ProductID  uuid.UUID `json:"product_id" gorm:"type:uuid;primaryKey;index"`
	Product    *Product  `json:"-" gorm:"constraint:OnDelete:CASCADE" validate:"-"`
	AddedAt    time.Time `json:"added_at" gorm:"autoCreateTime"`
}

func (WishlistProduct) TableName() string {
	return "wishlist_products"
}
