package middleware

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"peerlearn.app/server/internal/session"
)

func newAPIRouter(resolver session.Resolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api")
	api.Use(NewAuthMiddleware(resolver).RequireAuth())
	api.GET("/dashboard", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("account_id"))
	})
	return router
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	router := newAPIRouter(&fakeResolver{res: session.Resolution{State: session.Unauthenticated}})

	if w := get(router, "/api/dashboard"); w.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthFailsClosedOnProviderError(t *testing.T) {
	router := newAPIRouter(&fakeResolver{res: session.Resolution{
		State: session.ProviderError,
		Err:   errors.New("redis: connection refused"),
	}})

	if w := get(router, "/api/dashboard"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("code = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestRequireAuthPassesAccountID(t *testing.T) {
	router := newAPIRouter(&fakeResolver{res: session.Resolution{
		State:   session.Authenticated,
		Session: &session.Session{ID: "s1", AccountID: "acc-7"},
	}})

	w := get(router, "/api/dashboard")
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", w.Code)
	}
	if w.Body.String() != "acc-7" {
		t.Fatalf("account_id = %q, want acc-7", w.Body.String())
	}
}
