package handler

import (
	"net/http"

	"storefront/pkg/logger"
	"storefront/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "shop-service"

type Handlers struct {
	Accounts *AccountHandler
	Catalog  *CatalogHandler
	Carts    *CartHandler
	Orders   *OrderHandler
}

// MediaConfig - раздача загруженных файлов; пустой Root отключает маршрут (файлы отдает S3)
type MediaConfig struct {
	URLPrefix string
	Root      string
}

// SetupRoutes настраивает все маршруты shop-service
func SetupRoutes(h Handlers, authMiddleware *AuthMiddleware, media MediaConfig) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowWildcard:    true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if media.Root != "" {
		prefix := media.URLPrefix
		if prefix == "" {
			prefix = "/media"
		}
		router.StaticFS(prefix, gin.Dir(media.Root, false))
	}

	authenticated := authMiddleware.Authenticate()
	superuser := authMiddleware.RequireSuperuser()

	// Учетные записи
	router.POST("/register", h.Accounts.Register)
	router.POST("/login", h.Accounts.Login)
	account := router.Group("")
	account.Use(authenticated)
	{
		account.POST("/logout", h.Accounts.Logout)
		account.GET("/profile", h.Accounts.GetProfile)
		account.PUT("/profile", h.Accounts.UpdateProfile)
		account.DELETE("/profile", h.Accounts.DeleteProfile)
		account.POST("/password/change", h.Accounts.ChangePassword)
	}

	// Единицы и категории: чтение публичное, запись только для суперпользователя
	units := router.Group("/units")
	{
		units.GET("", h.Catalog.ListUnits)
		units.GET("/:id", h.Catalog.GetUnit)
		units.POST("", authenticated, superuser, h.Catalog.CreateUnit)
		units.PUT("/:id", authenticated, superuser, h.Catalog.UpdateUnit)
		units.DELETE("/:id", authenticated, superuser, h.Catalog.DeleteUnit)
	}

	categories := router.Group("/categories")
	{
		categories.GET("", h.Catalog.ListCategories)
		categories.GET("/:id", h.Catalog.GetCategory)
		categories.POST("", authenticated, superuser, h.Catalog.CreateCategory)
		categories.PUT("/:id", authenticated, superuser, h.Catalog.UpdateCategory)
		categories.DELETE("/:id", authenticated, superuser, h.Catalog.DeleteCategory)
	}

	products := router.Group("/products")
	{
		products.GET("", h.Catalog.ListProducts)
		products.GET("/:id", h.Catalog.GetProduct)
		products.POST("", authenticated, h.Catalog.CreateProduct)
		products.PUT("/:id", authenticated, h.Catalog.UpdateProduct)
		products.PATCH("/:id", authenticated, h.Catalog.UpdateProduct)
		products.DELETE("/:id", authenticated, h.Catalog.DeleteProduct)
	}

	carts := router.Group("/carts")
	carts.Use(authenticated)
	{
		carts.GET("", h.Carts.ListCarts)
		carts.POST("", h.Carts.CreateCart)
		carts.GET("/:id", h.Carts.GetCart)
		carts.DELETE("/:id", h.Carts.DeleteCart)
		carts.POST("/:id/items", h.Carts.AddItem)
		carts.PUT("/:id/items/:item_id", h.Carts.UpdateItem)
		carts.DELETE("/:id/items/:item_id", h.Carts.RemoveItem)
	}

	wishlist := router.Group("/wishlist")
	wishlist.Use(authenticated)
	{
		wishlist.GET("", h.Carts.GetWishlist)
		wishlist.POST("/products", h.Carts.AddToWishlist)
		wishlist.DELETE("/products/:product_id", h.Carts.RemoveFromWishlist)
	}

	orders := router.Group("/orders")
	orders.Use(authenticated)
	{
		orders.POST("", h.Orders.Checkout)
		orders.GET("", h.Orders.ListOrders)
		orders.GET("/:id", h.Orders.GetOrder)
		orders.PUT("/:id/status", superuser, h.Orders.UpdateStatus)
	}

	return router
}
