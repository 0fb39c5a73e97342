package treatmentorder

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/service"
	"github.com/jwalitptl/dental-api/internal/service/treatmentorder"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Handler struct {
	svc *treatmentorder.Service
}

func NewHandler(svc *treatmentorder.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/treatment-orders", middleware.RequireRoles(model.MedicalStaffRoles...))
	{
		orders.GET("", h.ListOrders)
		orders.POST("", h.CreateOrder)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id", h.UpdateOrder)
		orders.DELETE("/:id", h.DeleteOrder)
	}
}

func (h *Handler) ListOrders(c *gin.Context) {
	skip, limit, err := httputil.SkipLimit(c, 100, 1000)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	clinicID, err := httputil.QueryInt64(c, "clinic_id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	orders, err := h.svc.ListOrders(c.Request.Context(), handler.CurrentUser(c), clinicID, c.Query("search"), skip, limit)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(orders))
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req model.CreateTreatmentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	order, err := h.svc.CreateOrder(c.Request.Context(), handler.CurrentUser(c), req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(order))
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	order, err := h.svc.GetOrder(c.Request.Context(), handler.CurrentUser(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(order))
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	var req model.UpdateTreatmentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	order, err := h.svc.UpdateOrder(c.Request.Context(), handler.CurrentUser(c), id, req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(order))
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if err := h.svc.DeleteOrder(c.Request.Context(), handler.CurrentUser(c), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(service.Message{Message: "Treatment order deleted successfully"}))
}
