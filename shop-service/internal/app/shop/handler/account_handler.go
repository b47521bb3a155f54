package handler

import (
	"net/http"

	"storefront/shop-service/internal/app/shop/entity"
	"storefront/shop-service/internal/app/shop/service"

	"github.com/gin-gonic/gin"
)

// AccountHandler - регистрация, вход и профиль покупателя
type AccountHandler struct {
	accountService service.AccountServiceInterface
}

func NewAccountHandler(accountService service.AccountServiceInterface) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// Register обрабатывает POST /register
func (h *AccountHandler) Register(c *gin.Context) {
	var req entity.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.accountService.Register(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login обрабатывает POST /login
func (h *AccountHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.accountService.Login(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err, "Failed to login")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout обрабатывает POST /logout, токен попадает в черный список до истечения срока
func (h *AccountHandler) Logout(c *gin.Context) {
	principal := mustPrincipal(c)
	if principal == nil {
		return
	}

	if err := h.accountService.Logout(c.Request.Context(), principal); err != nil {
		handleError(c, err, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, entity.DetailResponse{Detail: "Successfully logged out"})
}

func (h *AccountHandler) GetProfile(c *gin.Context) {
	principal := mustPrincipal(c)
	if principal == nil {
		return
	}

	profile, err := h.accountService.GetProfile(c.Request.Context(), principal.UserID)
	if err != nil {
		handleError(c, err, "Failed to get profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	principal := mustPrincipal(c)
	if principal == nil {
		return
	}

	var req entity.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.accountService.UpdateProfile(c.Request.Context(), principal.UserID, &req); err != nil {
		handleError(c, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, entity.DetailResponse{Detail: "Profile updated"})
}

// DeleteProfile обрабатывает DELETE /profile: удаляет учетную запись со всеми зависимыми данными
func (h *AccountHandler) DeleteProfile(c *gin.Context) {
	principal := mustPrincipal(c)
	if principal == nil {
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), principal); err != nil {
		handleError(c, err, "Failed to delete account")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AccountHandler) ChangePassword(c *gin.Context) {
	principal := mustPrincipal(c)
	if principal == nil {
		return
	}

	var req entity.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.accountService.ChangePassword(c.Request.Context(), principal.UserID, &req); err != nil {
		handleError(c, err, "Failed to change password")
		return
	}

	c.JSON(http.StatusOK, entity.DetailResponse{Detail: "Password changed successfully"})
}
