package shows

import (
	"cinebook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupShowRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Public discovery and seat maps.
	shows := rg.Group("/shows")
	{
		shows.GET("", controller.ListShows)
		shows.GET("/:id", controller.GetShow)
		shows.GET("/:id/seats", controller.GetSeatMap)
	}

	// Seat selection needs an authenticated user of any role.
	authShows := rg.Group("/shows")
	authShows.Use(middleware.JWTAuth())
	{
		authShows.POST("/:id/seats/select", controller.SelectSeats)
	}

	// Vendor-managed show lifecycle.
	vendorShows := rg.Group("/vendor/shows")
	vendorShows.Use(middleware.JWTAuth(), middleware.RequireRoles("VENDOR", "ADMIN"))
	{
		vendorShows.POST("", controller.CreateShow)
		vendorShows.GET("", controller.ListMyShows)
		vendorShows.PATCH("/:id/status", controller.UpdateShowStatus)
	}
}
