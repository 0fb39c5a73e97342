package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/service/auth"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the public login route. loginGuards run before it,
// typically a stricter rate limit.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, loginGuards ...gin.HandlerFunc) {
	r.POST("/auth/login", append(loginGuards, h.Login)...)
}

// RegisterProtectedRoutes mounts routes that need an authenticated user
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/auth/me", h.Me)
}

// Login accepts form fields or JSON with username (phone) and password.
// The token is written bare, as OAuth2 password grant clients expect.
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(handler.CurrentUser(c)))
}
