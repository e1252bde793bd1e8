package bookings

import (
	"net/http"

	"cinebook/internal/shared/middleware"
	"cinebook/internal/shared/utils/apperror"
	"cinebook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) CreateBooking(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	booking, err := c.service.CreateBooking(ctx.Request.Context(), userID, req)
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to create booking", nil, apperror.Message(err))
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Booking created", booking, nil)
}

func (c *Controller) GetBooking(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to get booking", nil, apperror.Message(err))
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved", booking, nil)
}

func (c *Controller) ListMyBookings(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	bookings, err := c.service.ListMyBookings(ctx.Request.Context(), userID)
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to list bookings", nil, apperror.Message(err))
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved", bookings, nil)
}
