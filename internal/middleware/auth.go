package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/platewise/backend/internal/models"
	"github.com/platewise/backend/internal/service"
)

const (
	// ContextUserKey holds the authenticated *models.User in the gin context.
	ContextUserKey = "user"
	// ContextTokenKey holds the raw bearer token.
	ContextTokenKey = "token"

	// ForwardedAuthHeader carries the credential when a gateway in front of
	// the service has consumed Authorization.
	ForwardedAuthHeader = "X-Forwarded-Authorization"

	msgNoCredentials = "authentication credentials were not provided"
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type userCtxKey struct{}

// AuthMiddleware creates a middleware that authenticates bearer tokens
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.Request)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgNoCredentials})
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": reason(err, service.ErrUnauthenticated)})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextTokenKey, token)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), userCtxKey{}, user))
		c.Next()
	}
}

// bearerToken reads "Bearer <token>" from Authorization, falling back to
// the forwarded header. The header must hold exactly two fields.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		header = r.Header.Get(ForwardedAuthHeader)
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// CurrentUser returns the user set by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// UserFromContext returns the authenticated user carried by a request
// context.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userCtxKey{}).(*models.User)
	return user, ok && user != nil
}

// reason strips the sentinel prefix so clients see "token has expired"
// rather than "unauthenticated: token has expired".
func reason(err, sentinel error) string {
	msg := err.Error()
	if trimmed := strings.TrimPrefix(msg, sentinel.Error()+": "); trimmed != "" {
		return trimmed
	}
	return msg
}
