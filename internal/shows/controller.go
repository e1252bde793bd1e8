package shows

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

func (c *Controller) CreateShow(ctx *gin.Context) {
	vendorID, ok := middleware.UserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	var req CreateShowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	show, err := c.service.CreateShow(ctx.Request.Context(), vendorID, req)
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to create show", nil, apperror.Message(err))
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Show created", show, nil)
}

func (c *Controller) GetShow(ctx *gin.Context) {
	show, err := c.service.GetShow(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to get show", nil, apperror.Message(err))
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Show retrieved", show, nil)
}

func (c *Controller) ListShows(ctx *gin.Context) {
	if screenID := ctx.Query("screen_id"); screenID != "" {
		shows, err := c.service.ListShowsByScreen(ctx.Request.Context(), screenID)
		if err != nil {
			response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to list shows", nil, apperror.Message(err))
			return
		}
		response.RespondJSON(ctx, "success", http.StatusOK, "Shows retrieved", shows, nil)
		return
	}

	movieID := ctx.Query("movie_id")
	if movieID == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "screen_id or movie_id is required", nil, "missing filter")
		return
	}

	shows, err := c.service.ListShowsByMovie(ctx.Request.Context(), movieID)
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to list shows", nil, apperror.Message(err))
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Shows retrieved", shows, nil)
}

func (c *Controller) ListMyShows(ctx *gin.Context) {
	vendorID, ok := middleware.UserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	shows, err := c.service.ListVendorShows(ctx.Request.Context(), vendorID)
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to list shows", nil, apperror.Message(err))
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Shows retrieved", shows, nil)
}

func (c *Controller) UpdateShowStatus(ctx *gin.Context) {
	vendorID, ok := middleware.UserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	var req UpdateShowStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	show, err := c.service.UpdateShowStatus(ctx.Request.Context(), vendorID, ctx.Param("id"), req)
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to update show", nil, apperror.Message(err))
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Show updated", show, nil)
}

func (c *Controller) SelectSeats(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	var req SelectSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	result, err := c.service.SelectSeats(ctx.Request.Context(), userID, ctx.Param("id"), req)
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to select seats", nil, apperror.Message(err))
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seats held", result, nil)
}

func (c *Controller) GetSeatMap(ctx *gin.Context) {
	seatMap, err := c.service.GetSeatMap(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to get seat map", nil, apperror.Message(err))
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat map retrieved", seatMap, nil)
}
