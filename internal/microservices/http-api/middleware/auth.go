package middleware

import (
	"net/http"
	"strings"

	"reviewhub/internal/apperr"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// Authenticate resolves the bearer token, if any, to an actor.
// Requests without an Authorization header continue as anonymous; whether
// that is enough is decided per action by the policy package. A header that
// is present but invalid is rejected here.
func Authenticate(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(actorKey, policy.Anonymous())
			c.Next()
			return
		}

		// format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			appErr := apperr.From(err)
			c.AbortWithStatusJSON(appErr.HTTPStatus(), gin.H{"error": appErr.Message})
			return
		}

		c.Set(actorKey, policy.ActorFromUser(user))
		c.Next()
	}
}

// ActorFrom returns the caller set by Authenticate; anonymous when unset.
func ActorFrom(c *gin.Context) policy.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(policy.Actor); ok {
			return actor
		}
	}
	return policy.Anonymous()
}
