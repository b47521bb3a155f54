package service

import (
	"context"
	"testing"

	"storefront/shop-service/internal/app/shop/entity"
	"storefront/shop-service/internal/app/shop/repository"
	"storefront/shop-service/internal/app/shop/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderService_CheckoutSnapshotsAndConsumesCart(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	seedCatalog(t, env)
	user := env.register(t, "buyer01")
	apples := createProduct(t, env, "100.00", "10", "USD")
	pears := createProduct(t, env, "30.50", "0", "USD")

	cart, err := env.carts.CreateCart(ctx, user.UserID)
	require.NoError(t, err)
	_, err = env.carts.AddItem(ctx, user.UserID, cart.ID, &entity.AddCartItemRequest{ProductID: apples.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = env.carts.AddItem(ctx, user.UserID, cart.ID, &entity.AddCartItemRequest{ProductID: pears.ID, Quantity: 3})
	require.NoError(t, err)

	// Act
	order, err := env.orders.Checkout(ctx, user.UserID, &entity.CheckoutRequest{CartID: cart.ID})

	// Assert
	require.NoError(t, err)
	// 90.00 + 3 * 30.50
	assert.True(t, decimal.RequireFromString("181.50").Equal(order.TotalPrice), order.TotalPrice.String())
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Equal(t, "USD", order.Currency)
	assert.Len(t, order.Items, 2)
	assert.Zero(t, env.count(t, repository.TableCarts))
	assert.Zero(t, env.count(t, repository.TableCartItems))
	assert.Contains(t, env.publisher.EventTypes(), entity.EventOrderCreated)

	// цена в заказе не меняется вслед за товаром
	_, err = env.catalog.UpdateProduct(ctx, apples.ID, &entity.ProductForm{Price: str("500.00")})
	require.NoError(t, err)
	saved, err := env.orders.GetOrder(ctx, user, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("181.50").Equal(saved.TotalPrice))
}

func TestOrderService_DeletedProductKeepsOrderItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedCatalog(t, env)
	user := env.register(t, "buyer01")
	product := createProduct(t, env, "10.00", "0", "USD")
	cart, err := env.carts.CreateCart(ctx, user.UserID)
	require.NoError(t, err)
	_, err = env.carts.AddItem(ctx, user.UserID, cart.ID, &entity.AddCartItemRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	order, err := env.orders.Checkout(ctx, user.UserID, &entity.CheckoutRequest{CartID: cart.ID})
	require.NoError(t, err)

	require.NoError(t, env.catalog.DeleteProduct(ctx, product.ID))

	saved, err := env.orders.GetOrder(ctx, user, order.ID)
	require.NoError(t, err)
	require.Len(t, saved.Items, 1)
	assert.Nil(t, saved.Items[0].ProductID)
	assert.Equal(t, "Test Product", saved.Items[0].ProductName)
}

func TestOrderService_CheckoutRejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedCatalog(t, env)
	user := env.register(t, "buyer01")
	other := env.register(t, "other01")

	cart, err := env.carts.CreateCart(ctx, user.UserID)
	require.NoError(t, err)

	_, err = env.orders.Checkout(ctx, user.UserID, &entity.CheckoutRequest{CartID: cart.ID})
	assert.ErrorIs(t, err, validation.ErrInvalid, "empty cart")

	_, err = env.orders.Checkout(ctx, other.UserID, &entity.CheckoutRequest{CartID: cart.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.orders.Checkout(ctx, user.UserID, &entity.CheckoutRequest{CartID: uuid.New()})
	assert.ErrorIs(t, err, ErrCartNotFound)

	usd := createProduct(t, env, "10.00", "0", "USD")
	eur := createProduct(t, env, "10.00", "0", "EUR")
	_, err = env.carts.AddItem(ctx, user.UserID, cart.ID, &entity.AddCartItemRequest{ProductID: usd.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = env.carts.AddItem(ctx, user.UserID, cart.ID, &entity.AddCartItemRequest{ProductID: eur.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = env.orders.Checkout(ctx, user.UserID, &entity.CheckoutRequest{CartID: cart.ID})
	assert.ErrorIs(t, err, validation.ErrInvalid, "mixed currencies")
	assert.Equal(t, int64(1), env.count(t, repository.TableCarts))
	assert.Zero(t, env.count(t, repository.TableOrders))
}

func TestOrderService_StatusAndVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedCatalog(t, env)
	user := env.register(t, "buyer01")
	other := env.register(t, "other01")
	product := createProduct(t, env, "10.00", "0", "USD")
	cart, err := env.carts.CreateCart(ctx, user.UserID)
	require.NoError(t, err)
	_, err = env.carts.AddItem(ctx, user.UserID, cart.ID, &entity.AddCartItemRequest{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	order, err := env.orders.Checkout(ctx, user.UserID, &entity.CheckoutRequest{CartID: cart.ID})
	require.NoError(t, err)

	_, err = env.orders.GetOrder(ctx, other, order.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	admin := &Principal{UserID: uuid.New(), IsSuperuser: true}
	_, err = env.orders.GetOrder(ctx, admin, order.ID)
	assert.NoError(t, err)

	updated, err := env.orders.UpdateStatus(ctx, order.ID, &entity.UpdateOrderStatusRequest{Status: "shipped"})
	require.NoError(t, err)
	assert.Equal(t, "shipped", updated.Status)

	_, err = env.orders.UpdateStatus(ctx, order.ID, &entity.UpdateOrderStatusRequest{Status: " "})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = env.orders.UpdateStatus(ctx, uuid.New(), &entity.UpdateOrderStatusRequest{Status: "shipped"})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	orders, err := env.orders.ListOrders(ctx, user.UserID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}
