package toothservice

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/service"
	"github.com/jwalitptl/dental-api/internal/service/toothservice"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Handler struct {
	svc *toothservice.Service
}

func NewHandler(svc *toothservice.Service) *Handler {
	return &Handler{svc: svc}
}

type deletedCount struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	ts := r.Group("/tooth-services", middleware.RequireRoles(model.MedicalStaffRoles...))
	{
		ts.POST("", h.CreateToothService)
		ts.GET("/treatment-plan/:plan_id", h.ListByPlan)
		ts.DELETE("/treatment-plan/:plan_id", h.DeleteByPlan)
		ts.PUT("/:id", h.UpdateToothService)
		ts.DELETE("/:id", h.DeleteToothService)
	}
}

func (h *Handler) CreateToothService(c *gin.Context) {
	var req model.CreateToothServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	ts, err := h.svc.CreateToothService(c.Request.Context(), req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(ts))
}

func (h *Handler) ListByPlan(c *gin.Context) {
	planID, err := httputil.ParamInt64(c, "plan_id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	rows, err := h.svc.ListByPlan(c.Request.Context(), planID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(rows))
}

func (h *Handler) UpdateToothService(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	var req model.UpdateToothServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	ts, err := h.svc.UpdateToothService(c.Request.Context(), id, req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(ts))
}

func (h *Handler) DeleteToothService(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if err := h.svc.DeleteToothService(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(service.Message{Message: "Tooth service deleted successfully"}))
}

func (h *Handler) DeleteByPlan(c *gin.Context) {
	planID, err := httputil.ParamInt64(c, "plan_id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	n, err := h.svc.DeleteByPlan(c.Request.Context(), planID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(deletedCount{
		Message: "Tooth services deleted successfully",
		Deleted: n,
	}))
}
