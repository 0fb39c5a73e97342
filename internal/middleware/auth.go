package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/model"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

// Authenticator resolves a bearer token to an active user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// Authenticate requires a valid bearer token and stores the user in the context
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			handler.RespondError(c, apperrors.Unauthorized("Not authenticated", nil))
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			handler.RespondError(c, err)
			return
		}

		handler.SetCurrentUser(c, user)
		c.Next()
	}
}

// RequireRoles rejects users whose role is not listed with 403
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := handler.CurrentUser(c)
		if user == nil {
			handler.RespondError(c, apperrors.Unauthorized("Not authenticated", nil))
			return
		}
		if !user.HasRole(roles...) {
			handler.RespondError(c, apperrors.Forbidden(""))
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
