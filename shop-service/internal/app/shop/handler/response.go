package handler

import (
	"errors"
	"net/http"

	"storefront/pkg/logger"
	"storefront/shop-service/internal/app/shop/service"
	"storefront/shop-service/internal/app/shop/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgForbidden = "You do not have permission to perform this action."

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"error":   http.StatusText(status),
		"message": message,
	})
}

// handleError переводит ошибку сервиса в HTTP ответ
func handleError(c *gin.Context, err error, fallback string) {
	var fieldErrs validation.Errors
	var notFound *service.NotFoundError

	switch {
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   http.StatusText(http.StatusBadRequest),
			"message": "Validation failed",
			"fields":  fieldErrs.Fields(),
		})
	case errors.As(err, &notFound):
		respondError(c, http.StatusNotFound, notFound.Message)
	case errors.Is(err, service.ErrUnitNotFound):
		respondError(c, http.StatusNotFound, "Unit not found")
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, http.StatusNotFound, "Category not found")
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, http.StatusNotFound, "Product not found")
	case errors.Is(err, service.ErrCartNotFound):
		respondError(c, http.StatusNotFound, "Cart not found")
	case errors.Is(err, service.ErrCartItemNotFound):
		respondError(c, http.StatusNotFound, "Cart item not found")
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, http.StatusNotFound, "Order not found")
	case errors.Is(err, service.ErrAccountNotFound):
		respondError(c, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrWrongCredentials):
		respondError(c, http.StatusBadRequest, "Wrong Credentials")
	case errors.Is(err, service.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, msgForbidden)
	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		respondError(c, http.StatusInternalServerError, fallback)
	}
}

// parseID читает uuid из параметра пути; при ошибке сразу отвечает 404
func parseID(c *gin.Context, param, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		respondError(c, http.StatusNotFound, what+" not found")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON разбирает тело запроса; ошибки разбора отдаются как 400
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
