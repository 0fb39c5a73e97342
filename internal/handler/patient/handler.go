package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/service"
	"github.com/jwalitptl/dental-api/internal/service/patient"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Handler struct {
	svc *patient.Service
}

func NewHandler(svc *patient.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := middleware.RequireRoles(model.AdminRoles...)
	registrar := middleware.RequireRoles(model.RegistrarOrAboveRole...)

	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.POST("", registrar, h.CreatePatient)
		patients.POST("/search", h.SearchPatients)
		patients.GET("/iin/:iin", h.GetPatientByIIN)
		patients.GET("/phone/:phone", h.GetPatientByPhone)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", registrar, h.UpdatePatient)
		patients.DELETE("/:id", admin, h.DeletePatient)
	}
}

func (h *Handler) ListPatients(c *gin.Context) {
	page, size, err := httputil.PageSize(c, 10, 500)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	list, err := h.svc.ListPatients(c.Request.Context(), c.Query("search"), page, size)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	p, err := h.svc.CreatePatient(c.Request.Context(), req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(p))
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	p, err := h.svc.GetPatient(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) GetPatientByIIN(c *gin.Context) {
	p, err := h.svc.GetByIIN(c.Request.Context(), c.Param("iin"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) GetPatientByPhone(c *gin.Context) {
	p, err := h.svc.GetByPhone(c.Request.Context(), c.Param("phone"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	p, err := h.svc.UpdatePatient(c.Request.Context(), id, req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if err := h.svc.DeletePatient(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(service.Message{Message: "Patient deleted successfully"}))
}

func (h *Handler) SearchPatients(c *gin.Context) {
	var req model.PatientSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	patients, err := h.svc.SearchPatients(c.Request.Context(), req.Query)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}
