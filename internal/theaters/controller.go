package theaters

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

func (c *Controller) CreateTheater(ctx *gin.Context) {
	vendorID, ok := middleware.UserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	var req CreateTheaterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	theater, err := c.service.CreateTheater(ctx.Request.Context(), vendorID, req)
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to create theater", nil, apperror.Message(err))
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Theater created", theater, nil)
}

func (c *Controller) GetTheater(ctx *gin.Context) {
	theater, err := c.service.GetTheater(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to get theater", nil, apperror.Message(err))
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Theater retrieved", theater, nil)
}

func (c *Controller) ListMyTheaters(ctx *gin.Context) {
	vendorID, ok := middleware.UserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	list, err := c.service.ListVendorTheaters(ctx.Request.Context(), vendorID)
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to list theaters", nil, apperror.Message(err))
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Theaters retrieved", list, nil)
}

func (c *Controller) ListTheatersByCity(ctx *gin.Context) {
	city := ctx.Query("city")

	list, err := c.service.ListTheatersByCity(ctx.Request.Context(), city)
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to list theaters", nil, apperror.Message(err))
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Theaters retrieved", list, nil)
}

func (c *Controller) CreateScreen(ctx *gin.Context) {
	vendorID, ok := middleware.UserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	var req CreateScreenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	screen, err := c.service.CreateScreen(ctx.Request.Context(), vendorID, ctx.Param("id"), req)
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to create screen", nil, apperror.Message(err))
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Screen created", screen, nil)
}

func (c *Controller) ListScreens(ctx *gin.Context) {
	screens, err := c.service.ListScreens(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", apperror.StatusCode(err), "Failed to list screens", nil, apperror.Message(err))
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Screens retrieved", screens, nil)
}
