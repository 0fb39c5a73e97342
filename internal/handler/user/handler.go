package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/service"
	"github.com/jwalitptl/dental-api/internal/service/user"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Handler struct {
	svc *user.Service
}

func NewHandler(svc *user.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := middleware.RequireRoles(model.AdminRoles...)

	users := r.Group("/users")
	{
		users.GET("", admin, h.ListUsers)
		users.GET("/doctors", h.ListDoctors)
		users.POST("", admin, h.CreateUser)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", admin, h.UpdateUser)
		users.DELETE("/:id", admin, h.DeleteUser)
		users.POST("/:id/activate", admin, h.ActivateUser)
		users.POST("/:id/deactivate", admin, h.DeactivateUser)
	}
}

func (h *Handler) ListUsers(c *gin.Context) {
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
	users, err := h.svc.ListUsers(c.Request.Context(), clinicID, skip, limit)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(users))
}

func (h *Handler) ListDoctors(c *gin.Context) {
	clinicID, err := httputil.QueryInt64(c, "clinic_id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	doctors, err := h.svc.ListDoctors(c.Request.Context(), handler.CurrentUser(c), clinicID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	u, err := h.svc.CreateUser(c.Request.Context(), req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(u))
}

func (h *Handler) GetUser(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	u, err := h.svc.GetUser(c.Request.Context(), handler.CurrentUser(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(u))
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	u, err := h.svc.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(u))
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if err := h.svc.DeleteUser(c.Request.Context(), handler.CurrentUser(c), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(service.Message{Message: "User deleted successfully"}))
}

func (h *Handler) ActivateUser(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	u, err := h.svc.ActivateUser(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(u))
}

func (h *Handler) DeactivateUser(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	u, err := h.svc.DeactivateUser(c.Request.Context(), handler.CurrentUser(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(u))
}
