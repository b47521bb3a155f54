package handler

import (
	"net/http"

	"storefront/shop-service/internal/app/shop/entity"
	"storefront/shop-service/internal/app/shop/service"

	"github.com/gin-gonic/gin"
)

// CartHandler - корзины и список желаний текущего пользователя
type CartHandler struct {
	cartService service.CartServiceInterface
}

func NewCartHandler(cartService service.CartServiceInterface) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// === CARTS HANDLERS ===

func (h *CartHandler) CreateCart(c *gin.Context) {
	principal := mustPrincipal(c)
	if principal == nil {
		return
	}

	cart, err := h.cartService.CreateCart(c.Request.Context(), principal.UserID)
	if err != nil {
		handleError(c, err, "Failed to create cart")
		return
	}

	c.JSON(http.StatusCreated, cart)
}

func (h *CartHandler) ListCarts(c *gin.Context) {
	principal := mustPrincipal(c)
	if principal == nil {
		return
	}

	carts, err := h.cartService.ListCarts(c.Request.Context(), principal.UserID)
	if err != nil {
		handleError(c, err, "Failed to get carts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"carts": carts, "total": len(carts)})
}

func (h *CartHandler) GetCart(c *gin.Context) {
	principal := mustPrincipal(c)
	if principal == nil {
		return
	}
	cartID, ok := parseID(c, "id", "Cart")
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(c.Request.Context(), principal.UserID, cartID)
	if err != nil {
		handleError(c, err, "Failed to get cart")
		return
	}

	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) DeleteCart(c *gin.Context) {
	principal := mustPrincipal(c)
	if principal == nil {
		return
	}
	cartID, ok := parseID(c, "id", "Cart")
	if !ok {
		return
	}

	if err := h.cartService.DeleteCart(c.Request.Context(), principal.UserID, cartID); err != nil {
		handleError(c, err, "Failed to delete cart")
		return
	}

	c.Status(http.StatusNoContent)
}

// AddItem обрабатывает POST /carts/:id/items
func (h *CartHandler) AddItem(c *gin.Context) {
	principal := mustPrincipal(c)
	if principal == nil {
		return
	}
	cartID, ok := parseID(c, "id", "Cart")
	if !ok {
		return
	}

	var req entity.AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), principal.UserID, cartID, &req)
	if err != nil {
		handleError(c, err, "Failed to add item")
		return
	}

	c.JSON(http.StatusCreated, cart)
}

// UpdateItem обрабатывает PUT /carts/:id/items/:item_id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	principal := mustPrincipal(c)
	if principal == nil {
		return
	}
	cartID, ok := parseID(c, "id", "Cart")
	if !ok {
		return
	}
	itemID, ok := parseID(c, "item_id", "Cart item")
	if !ok {
		return
	}

	var req entity.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.UpdateItem(c.Request.Context(), principal.UserID, cartID, itemID, &req)
	if err != nil {
		handleError(c, err, "Failed to update item")
		return
	}

	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	principal := mustPrincipal(c)
	if principal == nil {
		return
	}
	cartID, ok := parseID(c, "id", "Cart")
	if !ok {
		return
	}
	itemID, ok := parseID(c, "item_id", "Cart item")
	if !ok {
		return
	}

	if err := h.cartService.RemoveItem(c.Request.Context(), principal.UserID, cartID, itemID); err != nil {
		handleError(c, err, "Failed to remove item")
		return
	}

	c.Status(http.StatusNoContent)
}

// === WISHLIST HANDLERS ===

// GetWishlist обрабатывает GET /wishlist; список создается при первом обращении
func (h *CartHandler) GetWishlist(c *gin.Context) {
	principal := mustPrincipal(c)
	if principal == nil {
		return
	}

	wishlist, err := h.cartService.GetWishlist(c.Request.Context(), principal.UserID)
	if err != nil {
		handleError(c, err, "Failed to get wishlist")
		return
	}

	c.JSON(http.StatusOK, wishlist)
}

func (h *CartHandler) AddToWishlist(c *gin.Context) {
	principal := mustPrincipal(c)
	if principal == nil {
		return
	}

	var req entity.AddWishlistProductRequest
	if !bindJSON(c, &req) {
		return
	}

	wishlist, err := h.cartService.AddToWishlist(c.Request.Context(), principal.UserID, &req)
	if err != nil {
		handleError(c, err, "Failed to add product to wishlist")
		return
	}

	c.JSON(http.StatusCreated, wishlist)
}

func (h *CartHandler) RemoveFromWishlist(c *gin.Context) {
	principal := mustPrincipal(c)
	if principal == nil {
		return
	}
	productID, ok := parseID(c, "product_id", "Product")
	if !ok {
		return
	}

	if err := h.cartService.RemoveFromWishlist(c.Request.Context(), principal.UserID, productID); err != nil {
		handleError(c, err, "Failed to remove product from wishlist")
		return
	}

	c.Status(http.StatusNoContent)
}
