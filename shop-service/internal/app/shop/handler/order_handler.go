package handler

import (
	"net/http"

	"storefront/shop-service/internal/app/shop/entity"
	"storefront/shop-service/internal/app/shop/service"

	"github.com/gin-gonic/gin"
)

// OrderHandler обрабатывает HTTP запросы для заказов
type OrderHandler struct {
	orderService service.OrderServiceInterface
}

func NewOrderHandler(orderService service.OrderServiceInterface) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Checkout обрабатывает POST /orders: заказ собирается из корзины, корзина удаляется
func (h *OrderHandler) Checkout(c *gin.Context) {
	principal := mustPrincipal(c)
	if principal == nil {
		return
	}

	var req entity.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Checkout(c.Request.Context(), principal.UserID, &req)
	if err != nil {
		handleError(c, err, "Failed to create order")
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	principal := mustPrincipal(c)
	if principal == nil {
		return
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), principal.UserID)
	if err != nil {
		handleError(c, err, "Failed to get orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": len(orders)})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	principal := mustPrincipal(c)
	if principal == nil {
		return
	}
	orderID, ok := parseID(c, "id", "Order")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), principal, orderID)
	if err != nil {
		handleError(c, err, "Failed to get order")
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateStatus обрабатывает PUT /orders/:id/status (только суперпользователь)
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := parseID(c, "id", "Order")
	if !ok {
		return
	}

	var req entity.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, &req)
	if err != nil {
		handleError(c, err, "Failed to update order status")
		return
	}

	c.JSON(http.StatusOK, order)
}
