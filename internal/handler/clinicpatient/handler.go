package clinicpatient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/service"
	"github.com/jwalitptl/dental-api/internal/service/clinicpatient"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Handler struct {
	svc *clinicpatient.Service
}

func NewHandler(svc *clinicpatient.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	cp := r.Group("/clinic-patients", middleware.RequireRoles(model.MedicalStaffRoles...))
	{
		cp.GET("", h.ListClinicPatients)
		cp.GET("/doctors-stats", h.DoctorStats)
		cp.GET("/search", h.SearchPatients)
		cp.POST("", h.AddPatient)
		cp.PUT("/:id", h.UpdateClinicPatient)
		cp.DELETE("/:id", h.RemovePatient)
	}
}

func (h *Handler) ListClinicPatients(c *gin.Context) {
	clinicID, err := service.RequireClinic(handler.CurrentUser(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	page, size, err := httputil.PageSize(c, 20, 100)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	doctorID, err := httputil.QueryInt64(c, "doctor_id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	list, err := h.svc.ListClinicPatients(c.Request.Context(), clinicID, doctorID, c.Query("search"), page, size)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}

func (h *Handler) DoctorStats(c *gin.Context) {
	clinicID, err := service.RequireClinic(handler.CurrentUser(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	stats, err := h.svc.DoctorStats(c.Request.Context(), clinicID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}

func (h *Handler) AddPatient(c *gin.Context) {
	clinicID, err := service.RequireClinic(handler.CurrentUser(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	patientID, err := httputil.QueryInt64(c, "patient_id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if patientID == nil {
		handler.RespondError(c, apperrors.BadRequest("patient_id is required", nil))
		return
	}
	cp, err := h.svc.AddPatient(c.Request.Context(), clinicID, *patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(cp))
}

func (h *Handler) UpdateClinicPatient(c *gin.Context) {
	clinicID, err := service.RequireClinic(handler.CurrentUser(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	var req model.UpdateClinicPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	cp, err := h.svc.UpdateClinicPatient(c.Request.Context(), clinicID, id, req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(cp))
}

func (h *Handler) RemovePatient(c *gin.Context) {
	clinicID, err := service.RequireClinic(handler.CurrentUser(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if err := h.svc.RemovePatient(c.Request.Context(), clinicID, id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(service.Message{Message: "Patient removed from clinic"}))
}

func (h *Handler) SearchPatients(c *gin.Context) {
	clinicID, err := service.RequireClinic(handler.CurrentUser(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	hits, err := h.svc.SearchPatients(c.Request.Context(), clinicID, c.Query("query"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(hits))
}
