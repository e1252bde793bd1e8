package bookings

import (
	"cinebook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, webhookHandler *WebhookHandler) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth())
	{
		bookings.POST("", controller.CreateBooking)
		bookings.GET("", controller.ListMyBookings)
		bookings.GET("/:id", controller.GetBooking)
	}

	// Gateway callbacks authenticate via signature, not JWT.
	rg.POST("/webhook/stripe", webhookHandler.HandleStripeWebhook)
}
