package layouts

import (
	"cinebook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupLayoutRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Public read access for seat maps.
	layouts := rg.Group("/layouts")
	{
		layouts.GET("/:id", controller.GetLayout)
	}

	// Vendor-managed layout lifecycle.
	vendorLayouts := rg.Group("/vendor/layouts")
	vendorLayouts.Use(middleware.JWTAuth(), middleware.RequireRoles("VENDOR", "ADMIN"))
	{
		vendorLayouts.POST("", controller.CreateLayout)
		vendorLayouts.GET("", controller.ListMyLayouts)
		vendorLayouts.PUT("/:id/seats", controller.ReplaceSeats)
	}
}
