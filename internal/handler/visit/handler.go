package visit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/service"
	"github.com/jwalitptl/dental-api/internal/service/visit"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Handler struct {
	svc *visit.Service
}

func NewHandler(svc *visit.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	visits := r.Group("/visits", middleware.RequireRoles(model.MedicalStaffRoles...))
	{
		visits.GET("", h.ListVisits)
		visits.POST("", h.CreateVisit)
		visits.GET("/patient/:patient_id", h.ListByParam("patient_id"))
		visits.GET("/doctor/:doctor_id", h.ListByParam("doctor_id"))
		visits.GET("/:id", h.GetVisit)
		visits.PUT("/:id", h.UpdateVisit)
		visits.DELETE("/:id", h.DeleteVisit)
	}
}

func (h *Handler) ListVisits(c *gin.Context) {
	patientID, err := httputil.QueryInt64(c, "patient_id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	doctorID, err := httputil.QueryInt64(c, "doctor_id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	h.list(c, patientID, doctorID)
}

// ListByParam lists visits filtered by the patient_id or doctor_id path param
func (h *Handler) ListByParam(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httputil.ParamInt64(c, param)
		if err != nil {
			handler.RespondError(c, err)
			return
		}
		if param == "patient_id" {
			h.list(c, &id, nil)
			return
		}
		h.list(c, nil, &id)
	}
}

func (h *Handler) list(c *gin.Context, patientID, doctorID *int64) {
	page, size, err := httputil.PageSize(c, 20, 100)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	list, err := h.svc.ListVisits(c.Request.Context(), patientID, doctorID, page, size)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}

func (h *Handler) CreateVisit(c *gin.Context) {
	var req model.CreateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	v, err := h.svc.CreateVisit(c.Request.Context(), req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(v))
}

func (h *Handler) GetVisit(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	v, err := h.svc.GetVisit(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(v))
}

func (h *Handler) UpdateVisit(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	var req model.UpdateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	v, err := h.svc.UpdateVisit(c.Request.Context(), id, req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(v))
}

func (h *Handler) DeleteVisit(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if err := h.svc.DeleteVisit(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(service.Message{Message: "Visit deleted successfully"}))
}
