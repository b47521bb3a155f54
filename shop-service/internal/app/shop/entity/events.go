package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Типы событий топика shop_events
const (
	EventProductCreated = "PRODUCT_CREATED"
	EventProductUpdated = "PRODUCT_UPDATED"
	EventProductDeleted = "PRODUCT_DELETED"
	EventOrderCreated   = "ORDER_CREATED"
	EventUserRegistered = "USER_REGISTERED"
	EventUserDeleted    = "USER_DELETED"
	EventUnitDeleted    = "UNIT_DELETED"
)

// ProductEvent - событие изменения товара
type ProductEvent struct {
	EventType string           `json:"event_type"`
	ProductID uuid.UUID        `json:"product_id"`
	Name      string           `json:"name,omitempty"`
	Price     decimal.Decimal  `json:"price"`
	Currency  string           `json:"currency,omitempty"`
	Removed   map[string]int64 `json:"removed,omitempty"` // строки, удалённые каскадом
	Timestamp time.Time        `json:"timestamp"`
}

// OrderEvent - событие оформления заказа
type OrderEvent struct {
	EventType  string          `json:"event_type"`
	OrderID    uuid.UUID       `json:"order_id"`
	UserID     uuid.UUID       `json:"user_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Currency   string          `json:"currency"`
	Status     string          `json:"status"`
	ItemsCount int             `json:"items_count"`
	Timestamp  time.Time       `json:"timestamp"`
}

// AccountEvent - регистрация или удаление пользователя
type AccountEvent struct {
	EventType string           `json:"event_type"`
	UserID    uuid.UUID        `json:"user_id"`
	Username  string           `json:"username"`
	Removed   map[string]int64 `json:"removed,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// UnitEvent - удаление единицы измерения вместе с ее товарами
type UnitEvent struct {
	EventType string           `json:"event_type"`
	UnitID    uuid.UUID        `json:"unit_id"`
	Removed   map[string]int64 `json:"removed,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}
