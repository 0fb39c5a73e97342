package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/service"
	"github.com/jwalitptl/dental-api/internal/service/appointment"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Handler struct {
	svc *appointment.Service
}

func NewHandler(svc *appointment.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments", middleware.RequireRoles(model.RegistrarOrAboveRole...))
	{
		appointments.GET("", h.ListAppointments)
		appointments.POST("", h.CreateAppointment)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.DELETE("/:id", h.CancelAppointment)
	}
}

func (h *Handler) ListAppointments(c *gin.Context) {
	params, err := listParams(c)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	appointments, err := h.svc.ListAppointments(c.Request.Context(), params)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func listParams(c *gin.Context) (appointment.ListParams, error) {
	var (
		p   appointment.ListParams
		err error
	)
	if p.Skip, p.Limit, err = httputil.SkipLimit(c, appointment.DefaultLimit, 1000); err != nil {
		return p, err
	}
	if p.PatientID, err = httputil.QueryInt64(c, "patient_id"); err != nil {
		return p, err
	}
	if p.DoctorID, err = httputil.QueryInt64(c, "doctor_id"); err != nil {
		return p, err
	}
	if p.CurrentWeekOnly, err = httputil.QueryBool(c, "current_week_only", false); err != nil {
		return p, err
	}
	if p.StartDate, err = httputil.QueryTime(c, "start_date"); err != nil {
		return p, err
	}
	if p.EndDate, err = httputil.QueryTime(c, "end_date"); err != nil {
		return p, err
	}
	p.Status = c.Query("status")
	return p, nil
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	appt, err := h.svc.CreateAppointment(c.Request.Context(), handler.CurrentUser(c), req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(appt))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	appt, err := h.svc.GetAppointment(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appt))
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	appt, err := h.svc.UpdateAppointment(c.Request.Context(), handler.CurrentUser(c), id, req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appt))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if err := h.svc.CancelAppointment(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(service.Message{Message: "Appointment cancelled"}))
}
