package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/service"
	"github.com/jwalitptl/dental-api/internal/service/catalog"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Handler struct {
	svc *catalog.Service
}

func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := middleware.RequireRoles(model.AdminRoles...)

	services := r.Group("/services")
	{
		services.GET("", h.ListServices)
		services.GET("/:id", h.GetService)
		services.POST("", admin, h.CreateService)
		services.PUT("/:id", admin, h.UpdateService)
		services.DELETE("/:id", admin, h.DeleteService)
	}
}

func (h *Handler) ListServices(c *gin.Context) {
	skip, limit, err := httputil.SkipLimit(c, 100, 1000)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	activeOnly, err := httputil.QueryBool(c, "active_only", true)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	services, err := h.svc.ListServices(c.Request.Context(), handler.CurrentUser(c).ClinicID, activeOnly, skip, limit)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(services))
}

func (h *Handler) GetService(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	svc, err := h.svc.GetService(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(svc))
}

func (h *Handler) CreateService(c *gin.Context) {
	var req model.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	svc, err := h.svc.CreateService(c.Request.Context(), handler.CurrentUser(c), req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(svc))
}

func (h *Handler) UpdateService(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	var req model.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	svc, err := h.svc.UpdateService(c.Request.Context(), id, req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(svc))
}

func (h *Handler) DeleteService(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if err := h.svc.DeleteService(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(service.Message{Message: "Service deactivated"}))
}
