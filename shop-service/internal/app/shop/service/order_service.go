package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/pkg/metrics"
	"storefront/shop-service/internal/app/shop/entity"
	"storefront/shop-service/internal/app/shop/repository"
	"storefront/shop-service/internal/app/shop/util"
	"storefront/shop-service/internal/app/shop/validation"

	"github.com/google/uuid"
)

// OrderService оформляет заказы из корзин
type OrderService struct {
	store     repository.Store
	publisher util.MessagePublisher
}

func NewOrderService(store repository.Store, publisher util.MessagePublisher) *OrderService {
	return &OrderService{store: store, publisher: publisher}
}

// Checkout превращает корзину в заказ: фиксирует цены и скидки позиций, считает итог и удаляет корзину.
// Все товары заказа должны быть в одной валюте.
func (s *OrderService) Checkout(ctx context.Context, userID uuid.UUID, req *entity.CheckoutRequest) (*entity.Order, error) {
	var order *entity.Order

	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		if _, err := ownCart(ctx, tx, userID, req.CartID); err != nil {
			return err
		}

		cartItems, err := tx.Carts().ListItems(ctx, req.CartID)
		if err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return validation.Invalid("cart_id", "Cart is empty.")
		}

		ids := make([]uuid.UUID, 0, len(cartItems))
		for _, item := range cartItems {
			ids = append(ids, item.ProductID)
		}
		products, err := tx.Products().ListByIDs(ctx, ids)
		if err != nil {
			return err
		}

		currency := ""
		items := make([]entity.OrderItem, 0, len(cartItems))
		for _, ci := range cartItems {
			product, ok := products[ci.ProductID]
			if !ok {
				return validation.MissingReference("product_id", invalidPK(ci.ProductID))
			}
			if currency == "" {
				currency = product.Currency
			} else if !strings.EqualFold(currency, product.Currency) {
				return validation.Invalid("cart_id", "All products in an order must share one currency.")
			}

			productID := product.ID
			items = append(items, entity.OrderItem{
				ProductID:   &productID,
				ProductName: product.Name,
				Quantity:    ci.Quantity,
				Price:       product.Price,
				Discount:    product.Discount,
			})
		}

		order, err = entity.NewOrder(userID, currency, items)
		if err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}

		_, err = tx.Delete(ctx, repository.TableCarts, req.CartID)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrCartNotFound), errors.Is(err, ErrForbidden):
			return nil, err
		case errors.Is(err, validation.ErrInvalid):
			return nil, trackValidation("order", err)
		}
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	metrics.OrdersCreated.Inc()
	metrics.OrdersTotal.Add(order.TotalPrice.InexactFloat64())

	publish(ctx, s.publisher, order.ID.String(), entity.OrderEvent{
		EventType:  entity.EventOrderCreated,
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		Currency:   order.Currency,
		Status:     order.Status,
		ItemsCount: len(order.Items),
		Timestamp:  time.Now().UTC(),
	})

	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]entity.Order, error) {
	orders, err := s.store.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder отдает заказ владельцу или суперпользователю
func (s *OrderService) GetOrder(ctx context.Context, principal *Principal, orderID uuid.UUID) (*entity.Order, error) {
	order, err := s.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order.UserID != principal.UserID && !principal.IsSuperuser {
		return nil, ErrForbidden
	}
	return order, nil
}

// UpdateStatus задает статус заказа; статус - произвольный текст до 50 символов
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req *entity.UpdateOrderStatusRequest) (*entity.Order, error) {
	status := strings.TrimSpace(req.Status)
	if err := validation.Var("status", status, "required,max=50"); err != nil {
		return nil, trackValidation("order", err)
	}

	if err := s.store.Orders().UpdateStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return s.store.Orders().GetByID(ctx, orderID)
}
