package layouts

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

func (c *Controller) CreateLayout(ctx *gin.Context) {
	vendorID, ok := middleware.UserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	var req CreateLayoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	layout, err := c.service.CreateLayout(ctx.Request.Context(), vendorID, req)
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to create layout", nil, apperror.Message(err))
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Seat layout created", layout, nil)
}

func (c *Controller) GetLayout(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Layout ID is required", nil, "missing layout ID")
		return
	}

	layout, err := c.service.GetLayout(ctx.Request.Context(), id)
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to get layout", nil, apperror.Message(err))
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat layout retrieved", layout, nil)
}

func (c *Controller) ListMyLayouts(ctx *gin.Context) {
	vendorID, ok := middleware.UserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	list, err := c.service.ListVendorLayouts(ctx.Request.Context(), vendorID)
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to list layouts", nil, apperror.Message(err))
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat layouts retrieved", list, nil)
}

func (c *Controller) ReplaceSeats(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Layout ID is required", nil, "missing layout ID")
		return
	}

	var req ReplaceSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	layout, err := c.service.ReplaceSeats(ctx.Request.Context(), id, req)
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to replace seats", nil, apperror.Message(err))
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Layout seats replaced", layout, nil)
}
