package theaters

import (
	"cinebook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupTheaterRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Public discovery.
	theaters := rg.Group("/theaters")
	{
		theaters.GET("", controller.ListTheatersByCity)
		theaters.GET("/:id", controller.GetTheater)
		theaters.GET("/:id/screens", controller.ListScreens)
	}

	// Vendor-managed theater lifecycle.
	vendorTheaters := rg.Group("/vendor/theaters")
	vendorTheaters.Use(middleware.JWTAuth(), middleware.RequireRoles("VENDOR", "ADMIN"))
	{
		vendorTheaters.POST("", controller.CreateTheater)
		vendorTheaters.GET("", controller.ListMyTheaters)
		vendorTheaters.POST("/:id/screens", controller.CreateScreen)
	}
}
