package middleware

import (
	"reviewhub/internal/apperr"
	"reviewhub/internal/microservices/http-api/policy"

	"github.com/gin-gonic/gin"
)

// Authorize rejects callers that may not perform action on kind at all,
// before the body is read. Author checks on single objects stay in the
// services, which load the object first.
func Authorize(action policy.Action, kind policy.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.CanPerform(ActorFrom(c), action, policy.On(kind)).Err(); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// RequireAuthenticated rejects anonymous callers. Used on writes to
// authored objects, where 403 can only be decided after loading them.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ActorFrom(c).Authenticated {
			abortWithError(c, apperr.ErrUnauthenticated)
			return
		}
		c.Next()
	}
}

func abortWithError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	c.AbortWithStatusJSON(appErr.HTTPStatus(), gin.H{"error": appErr.Message})
}
