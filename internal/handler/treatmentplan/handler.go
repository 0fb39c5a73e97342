package treatmentplan

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/service"
	"github.com/jwalitptl/dental-api/internal/service/treatmentplan"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Handler struct {
	svc *treatmentplan.Service
}

func NewHandler(svc *treatmentplan.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	plans := r.Group("/treatment-plans", middleware.RequireRoles(model.MedicalStaffRoles...))
	{
		plans.GET("", h.ListPlans)
		plans.POST("", h.CreatePlan)
		plans.GET("/patient/:patient_id", h.ListPatientPlans)
		plans.GET("/patient/:patient_id/services", h.ListPatientServices)
		plans.GET("/:id", h.GetPlan)
		plans.PUT("/:id", h.UpdatePlan)
		plans.DELETE("/:id", h.DeletePlan)
		plans.POST("/:id/update-from-order", h.UpdateFromOrder)
	}
}

func (h *Handler) ListPlans(c *gin.Context) {
	var (
		filter model.TreatmentPlanFilter
		err    error
	)
	if filter.Skip, filter.Limit, err = httputil.SkipLimit(c, 100, 1000); err != nil {
		handler.RespondError(c, err)
		return
	}
	if filter.PatientID, err = httputil.QueryInt64(c, "patient_id"); err != nil {
		handler.RespondError(c, err)
		return
	}
	if filter.DoctorID, err = httputil.QueryInt64(c, "doctor_id"); err != nil {
		handler.RespondError(c, err)
		return
	}

	plans, err := h.svc.ListPlans(c.Request.Context(), handler.CurrentUser(c), filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(plans))
}

func (h *Handler) CreatePlan(c *gin.Context) {
	var req model.CreateTreatmentPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	plan, err := h.svc.CreatePlan(c.Request.Context(), handler.CurrentUser(c), req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(plan))
}

func (h *Handler) ListPatientPlans(c *gin.Context) {
	patientID, err := httputil.ParamInt64(c, "patient_id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	plans, err := h.svc.ListPatientPlans(c.Request.Context(), patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(plans))
}

func (h *Handler) ListPatientServices(c *gin.Context) {
	patientID, err := httputil.ParamInt64(c, "patient_id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	lines, err := h.svc.ListPatientServices(c.Request.Context(), patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(lines))
}

func (h *Handler) GetPlan(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	plan, err := h.svc.GetPlan(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(plan))
}

func (h *Handler) UpdatePlan(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	var req model.UpdateTreatmentPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	plan, err := h.svc.UpdatePlan(c.Request.Context(), id, req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(plan))
}

func (h *Handler) DeletePlan(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if err := h.svc.DeletePlan(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(service.Message{Message: "Treatment plan deleted successfully"}))
}

func (h *Handler) UpdateFromOrder(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	var lines []model.OrderServiceLine
	if err := c.ShouldBindJSON(&lines); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	res, err := h.svc.UpdateFromOrder(c.Request.Context(), id, lines)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(res))
}
