package entity

import (
	"time"

	"storefront/shop-service/internal/app/shop/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const OrderStatusPending = "pending"

// Order - заказ. Статус - свободный текст.
type Order struct {
	ID         uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index" validate:"required"`
	User       *Account        `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" validate:"-"`
	TotalPrice decimal.Decimal `json:"total_price" gorm:"type:decimal(12,2);not null"`
	Currency   string          `json:"currency" gorm:"size:3;not null" validate:"required,max=3,slug"`
	Status     string          `json:"status" gorm:"size:50;not null" validate:"required,max=50"`
	CreatedAt  time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	Items      []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" validate:"-"`
}

func (Order) TableName() string {
	return "orders"
}

// NewOrder собирает заказ из позиций и считает итог по снимкам цен и скидок
func NewOrder(userID uuid.UUID, currency string, items []OrderItem) (*Order, error) {
	order := &Order{
		ID:       uuid.New(),
		UserID:   userID,
		Currency: currency,
		Status:   OrderStatusPending,
		Items:    items,
	}

	var errs validation.Errors
	if len(items) == 0 {
		errs = errs.Add("items", "Order must contain at least one item.")
	}

	total := decimal.Zero
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		errs, _ = errs.Merge(order.Items[i].Validate())
		total = total.Add(order.Items[i].LineTotal())
	}
	order.TotalPrice = total

	errs, err := errs.Merge(order.Validate())
	if err != nil {
		return nil, err
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return order, nil
}

func (o *Order) Validate() error {
	errs, err := validation.Errors{}.Merge(validation.Struct(o))
	if err != nil {
		return err
	}
	if o.TotalPrice.IsNegative() {
		errs = errs.Add("total_price", "Total price cannot be negative.")
	}
	return errs.Err()
}

func (o *Order) BeforeSave(tx *gorm.DB) error {
	return o.Validate()
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem - позиция заказа со снимком цены и скидки на момент покупки.
// После удаления товара product_id становится NULL, название остаётся.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID      `json:"product_id" gorm:"type:uuid;index"`
	Product     *Product        `json:"-" gorm:"constraint:OnDelete:SET NULL" validate:"-"`
	ProductName string          `json:"product_name" gorm:"size:200;not null" validate:"required,max=200"`
	Quantity    int             `json:"quantity" gorm:"not null" validate:"gt=0"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(9,2);not null" validate:"gt=0"`
	Discount    int             `json:"discount" gorm:"not null;default:0" validate:"min=0,max=100"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i *OrderItem) Validate() error {
	return validation.Struct(i)
}

func (i *OrderItem) BeforeSave(tx *gorm.DB) error {
	return i.Validate()
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// LineTotal - сумма позиции: цена со скидкой, округлённая до копеек, умноженная на количество
func (i *OrderItem) LineTotal() decimal.Decimal {
	return ApplyDiscount(i.Price, i.Discount).Mul(decimal.NewFromInt(int64(i.Quantity)))
}
