// internal/common/auth/middleware.go
package auth

import (
	"context"
	"strings"

	"healing-guide/internal/common/errors"

	"github.com/gin-gonic/gin"
)

const tokenInfoKey = "auth.tokenInfo"

// TokenValidator introspects bearer tokens.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*TokenInfo, error)
}

// Responder writes error responses.
type Responder interface {
	Respond(c *gin.Context, err error)
}

// RequireAdmin guards a route group with a Keycloak bearer token carrying
// role. A nil validator rejects every request with 503.
func RequireAdmin(validator TokenValidator, role string, responder Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if validator == nil {
			responder.Respond(c, errors.NewServiceUnavailableError("Admin authentication", "keycloak not configured"))
			return
		}

		token, ok := extractBearerToken(c.GetHeader("Authorization"))
		if !ok {
			responder.Respond(c, errors.NewUnauthorizedError("missing or malformed authorization header"))
			return
		}

		info, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			responder.Respond(c, err)
			return
		}

		if role != "" && !info.HasRole(role) {
			responder.Respond(c, errors.NewUnauthorizedError("insufficient role"))
			return
		}

		c.Set(tokenInfoKey, info)
		c.Next()
	}
}

// TokenInfoFrom returns the introspected token stored by RequireAdmin.
func TokenInfoFrom(c *gin.Context) (*TokenInfo, bool) {
	v, ok := c.Get(tokenInfoKey)
	if !ok {
		return nil, false
	}
	info, ok := v.(*TokenInfo)
	return info, ok
}

func extractBearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
