package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/model"
)

// CurrentUserKey is the gin context key holding the authenticated *model.User
const CurrentUserKey = "current_user"

func SetCurrentUser(c *gin.Context, user *model.User) {
	c.Set(CurrentUserKey, user)
}

// CurrentUser returns the authenticated user or nil on public routes
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}
