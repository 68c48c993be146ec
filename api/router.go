package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inventory_api/internal/catalog"
	"inventory_api/internal/database"
	"inventory_api/internal/sales"
)

// Models lists every table the API needs, in migration order.
func Models() []any {
	return append(catalog.Models(), sales.Models()...)
}

// InitRoutes registers the inventory endpoints on the given Gin engine.
// It builds the storages on the injected database handle, then the services
// and handlers, and binds each HTTP method and path to its handler.
func InitRoutes(e *gin.Engine, db *database.DB, logger *zap.Logger) {
	e.Use(Recovery(logger), RequestLogger(logger), CORS())

	catalogService := catalog.NewService(catalog.NewGormStorage(db.Gorm()), logger)
	catalogHandler := NewCatalogHandler(catalogService, logger)

	salesService := sales.NewService(sales.NewGormStorage(db.Gorm()), logger)
	salesHandler := NewSalesHandler(salesService, logger)

	e.POST("/sales", salesHandler.handleCreateSale)
	e.GET("/sales", salesHandler.handleGetSales)
	e.GET("/sales/:id", salesHandler.handleGetSale)

	products := e.Group("/products")
	products.GET("", catalogHandler.handleListProducts)
	products.GET("/:id", catalogHandler.handleGetProduct)
	products.POST("", catalogHandler.handleCreateProduct)
	products.PUT("/:id", catalogHandler.handleUpdateProduct)
	products.DELETE("/:id", catalogHandler.handleDeleteProduct)
	products.PATCH("/:id/stock", catalogHandler.handleAdjustStock)

	branches := e.Group("/branches")
	branches.GET("", catalogHandler.handleListBranches)
	branches.GET("/:id", catalogHandler.handleGetBranch)
	branches.POST("", catalogHandler.handleCreateBranch)
	branches.PUT("/:id", catalogHandler.handleUpdateBranch)
	branches.DELETE("/:id", catalogHandler.handleDeleteBranch)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	e.GET("/health", func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			logger.Error("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
