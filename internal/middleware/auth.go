package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"peerlearn.app/server/internal/session"
)

type AuthMiddleware struct {
	sessions session.Resolver
}

func NewAuthMiddleware(sessions session.Resolver) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// RequireAuth guards the JSON API. Unlike the page gate it never redirects;
// clients get a status code and deal with it.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(session.CookieName)
		res := m.sessions.Resolve(c.Request.Context(), token)

		switch res.State {
		case session.ProviderError:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session service unavailable"})
			c.Abort()

		case session.Unauthenticated:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()

		case session.Authenticated:
			c.Set("account_id", res.Session.AccountID)
			c.Set("account_email", res.Session.Email)
			c.Next()
		}
	}
}
