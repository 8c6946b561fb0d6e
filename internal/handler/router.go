package handler

import (
	"net/http"
	"time"

	"github.com/bitfantasy/nimo-mdm/internal/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version 构建版本，编译时注入
var Version = "dev"

// NewRouter 组装全部路由
func NewRouter(h *Handlers, logger *zap.Logger, jwtSecret string) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(),
	)

	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Format(time.RFC3339)})
	})
	router.GET("/health/ready", func(c *gin.Context) {
		if h.ReadyCheck != nil {
			if err := h.ReadyCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": Version})
	})

	api := router.Group("/api/v1")
	api.POST("/auth/login", h.Login)

	authed := api.Group("")
	authed.Use(middleware.JWTAuth(jwtSecret))
	{
		authed.POST("/auth/refresh", h.RefreshToken)
		authed.GET("/auth/me", h.Me)

		authed.GET("/categories", h.ListCategories)
		authed.POST("/categories", h.CreateCategory)
		authed.GET("/categories/:id", h.GetCategory)
		authed.PUT("/categories/:id", h.UpdateCategory)
		authed.DELETE("/categories/:id", h.DeleteCategory)

		authed.GET("/items", h.ListItems)
		authed.POST("/items", h.CreateItem)
		authed.GET("/items/low_stock", h.LowStockItems)
		authed.GET("/items/export", h.ExportItems)
		authed.GET("/items/:id", h.GetItem)
		authed.PUT("/items/:id", h.UpdateItem)
		authed.DELETE("/items/:id", h.DeleteItem)

		authed.GET("/suppliers", h.ListSuppliers)
		authed.POST("/suppliers", h.CreateSupplier)
		authed.GET("/suppliers/:id", h.GetSupplier)
		authed.PUT("/suppliers/:id", h.UpdateSupplier)
		authed.DELETE("/suppliers/:id", h.DeleteSupplier)

		authed.GET("/item-suppliers", h.ListItemSuppliers)
		authed.POST("/item-suppliers", h.CreateItemSupplier)
		authed.GET("/item-suppliers/:id", h.GetItemSupplier)
		authed.PUT("/item-suppliers/:id", h.UpdateItemSupplier)
		authed.DELETE("/item-suppliers/:id", h.DeleteItemSupplier)

		authed.GET("/boms", h.ListBOMs)
		authed.POST("/boms", h.CreateBOM)
		authed.GET("/boms/:id", h.GetBOM)
		authed.PUT("/boms/:id", h.UpdateBOM)
		authed.DELETE("/boms/:id", h.DeleteBOM)
		authed.POST("/boms/:id/submit", h.SubmitBOM)
		authed.POST("/boms/:id/approve", h.ApproveBOM)
		authed.POST("/boms/:id/activate", h.ActivateBOM)
		authed.POST("/boms/:id/deactivate", h.DeactivateBOM)
		authed.POST("/boms/:id/validate", h.ValidateBOM)
		authed.GET("/boms/:id/with_external_data", h.BOMWithExternalData)
		authed.GET("/boms/:id/export", h.ExportBOM)

		authed.GET("/bom-components", h.ListBOMComponents)
		authed.POST("/bom-components", h.CreateBOMComponent)
		authed.GET("/bom-components/:id", h.GetBOMComponent)
		authed.PUT("/bom-components/:id", h.UpdateBOMComponent)
		authed.DELETE("/bom-components/:id", h.DeleteBOMComponent)

		authed.GET("/bom-validations", h.ListBOMValidations)
		authed.POST("/bom-validations", h.CreateBOMValidation)
		authed.GET("/bom-validations/:id", h.GetBOMValidation)

		authed.GET("/bom-change-history", h.ListBOMChangeHistory)
		authed.GET("/bom-change-history/:id", h.GetBOMChangeHistory)
	}

	return router
}
