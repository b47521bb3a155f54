package handler

import (
	"net/http"
	"strings"

	"storefront/shop-service/internal/app/shop/service"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

type AuthMiddleware struct {
	accounts service.AccountServiceInterface
}

func NewAuthMiddleware(accounts service.AccountServiceInterface) *AuthMiddleware {
	return &AuthMiddleware{accounts: accounts}
}

// Authenticate требует заголовок "Authorization: Bearer <token>" и кладет Principal в контекст
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondError(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
			c.Abort()
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			respondError(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		principal, err := m.accounts.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			handleError(c, err, "Failed to authenticate")
			c.Abort()
			return
		}

		c.Set(principalKey, principal)
		c.Set("user_id", principal.UserID.String())

		c.Next()
	}
}

// RequireSuperuser пропускает только суперпользователей; ставится после Authenticate
func (m *AuthMiddleware) RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := currentPrincipal(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
			c.Abort()
			return
		}
		if !principal.IsSuperuser {
			respondError(c, http.StatusForbidden, msgForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}

func currentPrincipal(c *gin.Context) (*service.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*service.Principal)
	return principal, ok && principal != nil
}

// mustPrincipal используется в обработчиках за Authenticate
func mustPrincipal(c *gin.Context) *service.Principal {
	principal, ok := currentPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return nil
	}
	return principal
}
