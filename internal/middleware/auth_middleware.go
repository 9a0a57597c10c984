package middleware

import (
	"context"
	"strings"

	"github.com/AlShabiliBadia/Shorter-links/internal/apperrors"
	"github.com/AlShabiliBadia/Shorter-links/internal/model"
	"github.com/gin-gonic/gin"
)

const currentUserKey = "auth.user"

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, bool)
}

// Authenticate attaches the user behind a valid bearer token. Requests without one continue
// as anonymous.
func Authenticate(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if user, ok := a.Authenticate(c.Request.Context(), token); ok {
				c.Set(currentUserKey, user)
			}
		}
		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401. It must run after Authenticate.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			_ = c.Error(apperrors.UnauthenticatedError())
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}

// CurrentPrincipal is the caller as a Principal; Anonymous without a valid token.
func CurrentPrincipal(c *gin.Context) model.Principal {
	if user, ok := CurrentUser(c); ok {
		return user.Principal()
	}
	return model.Anonymous()
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
