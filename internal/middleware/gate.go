package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"peerlearn.app/server/internal/log"
	"peerlearn.app/server/internal/metrics"
	"peerlearn.app/server/internal/session"
)

const (
	LoginPath     = "/auth/login"
	DashboardPath = "/dashboard"
)

// protectedPrefixes are the page routes that require a session. A match is
// the prefix itself or anything nested under it.
var protectedPrefixes = []string{
	"/dashboard",
	"/profile",
	"/study-rooms",
	"/notes",
	"/quizzes",
}

// authPages are reachable only without a session; a signed-in visitor is
// sent back to the dashboard.
var authPages = []string{
	"/auth/login",
	"/auth/signup",
}

// Gate guards page routes based on the resolved session. It never renders
// anything itself: it either redirects, fails closed, or lets the request
// through with the account id attached.
type Gate struct {
	sessions session.Resolver
}

func NewGate(sessions session.Resolver) *Gate {
	return &Gate{sessions: sessions}
}

func (g *Gate) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		protected := matchesPrefix(path, protectedPrefixes)
		authPage := matchesPrefix(path, authPages)

		if !protected && !authPage {
			c.Next()
			return
		}

		token, _ := c.Cookie(session.CookieName)
		res := g.sessions.Resolve(c.Request.Context(), token)
		metrics.SessionResolutions.WithLabelValues(stateLabel(res.State)).Inc()

		switch res.State {
		case session.ProviderError:
			// fail closed on protected pages, open on auth pages
			if protected {
				log.L().Error("session provider unavailable",
					zap.String("path", path),
					zap.Error(res.Err))
				c.AbortWithStatus(http.StatusServiceUnavailable)
				return
			}
			c.Next()

		case session.Unauthenticated:
			if protected {
				c.Redirect(http.StatusTemporaryRedirect, LoginPath)
				c.Abort()
				return
			}
			c.Next()

		case session.Authenticated:
			if authPage {
				c.Redirect(http.StatusTemporaryRedirect, DashboardPath)
				c.Abort()
				return
			}
			c.Set("account_id", res.Session.AccountID)
			c.Next()
		}
	}
}

func stateLabel(s session.State) string {
	switch s {
	case session.Authenticated:
		return "authenticated"
	case session.ProviderError:
		return "provider_error"
	default:
		return "unauthenticated"
	}
}

func matchesPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
