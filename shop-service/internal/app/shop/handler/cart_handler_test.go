package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"storefront/shop-service/internal/app/shop/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createCart(t *testing.T, srv *testServer, token string) entity.CartResponse {
	t.Helper()
	w := srv.doJSON(t, http.MethodPost, "/carts", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var cart entity.CartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	return cart
}

func TestCartHandler_AddItem_Totals(t *testing.T) {
	// Arrange
	srv := newTestServer(t)
	seedCatalog(t, srv)
	token := srv.register(t, "buyer01")
	product := createProduct(t, srv, token, nil)
	cart := createCart(t, srv, token)

	// Act
	w := srv.doJSON(t, http.MethodPost, "/carts/"+cart.ID.String()+"/items", token, entity.AddCartItemRequest{
		ProductID: product.ID,
		Quantity:  2,
	})

	// Assert
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var updated entity.CartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 2, updated.Items[0].Quantity)
	assert.True(t, updated.Total.Equal(mustDecimal(t, "180")), updated.Total.String())
}

func TestCartHandler_AddItem_RejectsNonPositiveQuantity(t *testing.T) {
	srv := newTestServer(t)
	seedCatalog(t, srv)
	token := srv.register(t, "buyer01")
	product := createProduct(t, srv, token, nil)
	cart := createCart(t, srv, token)

	for _, quantity := range []int{0, -1} {
		w := srv.doJSON(t, http.MethodPost, "/carts/"+cart.ID.String()+"/items", token, entity.AddCartItemRequest{
			ProductID: product.ID,
			Quantity:  quantity,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NotEmpty(t, fields(t, w)["quantity"])
	}
	assert.Equal(t, int64(0), srv.count(t, "cart_items"))
}

func TestCartHandler_AddItem_MissingProduct(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "buyer01")
	cart := createCart(t, srv, token)

	w := srv.doJSON(t, http.MethodPost, "/carts/"+cart.ID.String()+"/items", token, entity.AddCartItemRequest{
		ProductID: uuid.New(),
		Quantity:  1,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, fields(t, w)["product_id"])
}

func TestCartHandler_OtherUsersCart(t *testing.T) {
	// Arrange
	srv := newTestServer(t)
	owner := srv.register(t, "buyer01")
	stranger := srv.register(t, "buyer02")
	cart := createCart(t, srv, owner)

	// Act
	get := srv.doJSON(t, http.MethodGet, "/carts/"+cart.ID.String(), stranger, nil)
	del := srv.doJSON(t, http.MethodDelete, "/carts/"+cart.ID.String(), stranger, nil)

	// Assert
	assert.Equal(t, http.StatusForbidden, get.Code)
	assert.Equal(t, http.StatusForbidden, del.Code)
	assert.Equal(t, int64(1), srv.count(t, "carts"))
}

func TestCartHandler_UpdateAndRemoveItem(t *testing.T) {
	srv := newTestServer(t)
	seedCatalog(t, srv)
	token := srv.register(t, "buyer01")
	product := createProduct(t, srv, token, nil)
	cart := createCart(t, srv, token)
	w := srv.doJSON(t, http.MethodPost, "/carts/"+cart.ID.String()+"/items", token, entity.AddCartItemRequest{ProductID: product.ID, Quantity: 1})
	require.Equal(t, http.StatusCreated, w.Code)
	var withItem entity.CartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &withItem))
	itemPath := "/carts/" + cart.ID.String() + "/items/" + withItem.Items[0].ID.String()

	w = srv.doJSON(t, http.MethodPut, itemPath, token, entity.UpdateCartItemRequest{Quantity: 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated entity.CartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, 3, updated.Items[0].Quantity)

	w = srv.doJSON(t, http.MethodDelete, itemPath, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(0), srv.count(t, "cart_items"))

	w = srv.doJSON(t, http.MethodDelete, itemPath, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartHandler_Wishlist(t *testing.T) {
	// Arrange
	srv := newTestServer(t)
	seedCatalog(t, srv)
	token := srv.register(t, "buyer01")
	product := createProduct(t, srv, token, nil)

	// Act
	w := srv.doJSON(t, http.MethodPost, "/wishlist/products", token, entity.AddWishlistProductRequest{ProductID: product.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = srv.doJSON(t, http.MethodPost, "/wishlist/products", token, entity.AddWishlistProductRequest{ProductID: product.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	// Assert
	w = srv.doJSON(t, http.MethodGet, "/wishlist", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var wishlist entity.WishlistResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wishlist))
	require.Len(t, wishlist.Products, 1)
	assert.Equal(t, product.ID, wishlist.Products[0].ID)

	w = srv.doJSON(t, http.MethodDelete, "/wishlist/products/"+product.ID.String(), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(0), srv.count(t, "wishlist_products"))
}

func TestOrderHandler_Checkout(t *testing.T) {
	// Arrange
	srv := newTestServer(t)
	seedCatalog(t, srv)
	token := srv.register(t, "buyer01")
	product := createProduct(t, srv, token, nil)
	cart := createCart(t, srv, token)
	w := srv.doJSON(t, http.MethodPost, "/carts/"+cart.ID.String()+"/items", token, entity.AddCartItemRequest{ProductID: product.ID, Quantity: 2})
	require.Equal(t, http.StatusCreated, w.Code)

	// Act
	w = srv.doJSON(t, http.MethodPost, "/orders", token, entity.CheckoutRequest{CartID: cart.ID})

	// Assert
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order entity.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.True(t, order.TotalPrice.Equal(mustDecimal(t, "180")), order.TotalPrice.String())
	assert.Equal(t, "pending", order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Test Product", order.Items[0].ProductName)

	w = srv.doJSON(t, http.MethodGet, "/carts/"+cart.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.doJSON(t, http.MethodGet, "/orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])
}

func TestOrderHandler_Checkout_EmptyCart(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "buyer01")
	cart := createCart(t, srv, token)

	w := srv.doJSON(t, http.MethodPost, "/orders", token, entity.CheckoutRequest{CartID: cart.ID})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"Cart is empty."}, fields(t, w)["cart_id"])
	assert.Equal(t, int64(0), srv.count(t, "orders"))
}

func TestOrderHandler_StatusAndVisibility(t *testing.T) {
	// Arrange
	srv := newTestServer(t)
	admin := seedCatalog(t, srv)
	token := srv.register(t, "buyer01")
	stranger := srv.register(t, "buyer02")
	product := createProduct(t, srv, token, nil)
	cart := createCart(t, srv, token)
	w := srv.doJSON(t, http.MethodPost, "/carts/"+cart.ID.String()+"/items", token, entity.AddCartItemRequest{ProductID: product.ID, Quantity: 1})
	require.Equal(t, http.StatusCreated, w.Code)
	w = srv.doJSON(t, http.MethodPost, "/orders", token, entity.CheckoutRequest{CartID: cart.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	var order entity.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	orderPath := "/orders/" + order.ID.String()

	// Act & Assert
	w = srv.doJSON(t, http.MethodGet, orderPath, stranger, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.doJSON(t, http.MethodPut, orderPath+"/status", token, entity.UpdateOrderStatusRequest{Status: "shipped"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.doJSON(t, http.MethodPut, orderPath+"/status", admin, entity.UpdateOrderStatusRequest{Status: "shipped"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "shipped", decode(t, w)["status"])

	w = srv.doJSON(t, http.MethodGet, orderPath, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
