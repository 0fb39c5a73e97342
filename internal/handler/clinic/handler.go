package clinic

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/service"
	"github.com/jwalitptl/dental-api/internal/service/clinic"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Handler struct {
	svc *clinic.Service
}

func NewHandler(svc *clinic.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := middleware.RequireRoles(model.AdminRoles...)
	staff := middleware.RequireRoles(model.RegistrarOrAboveRole...)

	clinics := r.Group("/clinics")
	{
		clinics.GET("", admin, h.ListClinics)
		clinics.GET("/current", h.CurrentClinic)
		clinics.GET("/:id", staff, h.GetClinic)
		clinics.POST("", admin, h.CreateClinic)
		clinics.PUT("/:id", admin, h.UpdateClinic)
		clinics.DELETE("/:id", admin, h.DeleteClinic)
	}
}

func (h *Handler) ListClinics(c *gin.Context) {
	skip, limit, err := httputil.SkipLimit(c, 100, 1000)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	clinics, err := h.svc.ListClinics(c.Request.Context(), skip, limit)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinics))
}

func (h *Handler) CurrentClinic(c *gin.Context) {
	clinic, err := h.svc.CurrentClinic(c.Request.Context(), handler.CurrentUser(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinic))
}

func (h *Handler) GetClinic(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	clinic, err := h.svc.GetClinic(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinic))
}

func (h *Handler) CreateClinic(c *gin.Context) {
	var req model.CreateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	clinic, err := h.svc.CreateClinic(c.Request.Context(), req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(clinic))
}

func (h *Handler) UpdateClinic(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	var req model.UpdateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	clinic, err := h.svc.UpdateClinic(c.Request.Context(), id, req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinic))
}

func (h *Handler) DeleteClinic(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if err := h.svc.DeleteClinic(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(service.Message{Message: "Clinic deactivated"}))
}
