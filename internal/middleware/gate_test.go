package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"peerlearn.app/server/internal/session"
)

type fakeResolver struct {
	res   session.Resolution
	calls int
}

func (f *fakeResolver) Resolve(ctx context.Context, token string) session.Resolution {
	f.calls++
	return f.res
}

func newGateRouter(resolver session.Resolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewGate(resolver).Handle())

	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	for _, path := range []string{
		"/", "/auth/login", "/auth/signup", "/dashboard", "/profile",
		"/study-rooms", "/notes", "/quizzes", "/about",
	} {
		router.GET(path, ok)
	}
	router.GET("/dashboard/settings", ok)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGateRedirectsAnonymousFromProtectedPages(t *testing.T) {
	router := newGateRouter(&fakeResolver{res: session.Resolution{State: session.Unauthenticated}})

	for _, path := range []string{"/dashboard", "/profile", "/study-rooms", "/notes", "/quizzes", "/dashboard/settings"} {
		w := get(router, path)
		if w.Code != http.StatusTemporaryRedirect {
			t.Errorf("GET %s code = %d, want %d", path, w.Code, http.StatusTemporaryRedirect)
			continue
		}
		if loc := w.Header().Get("Location"); loc != "/auth/login" {
			t.Errorf("GET %s location = %q, want /auth/login", path, loc)
		}
	}
}

func TestGateRedirectsSignedInFromAuthPages(t *testing.T) {
	router := newGateRouter(&fakeResolver{res: session.Resolution{
		State:   session.Authenticated,
		Session: &session.Session{ID: "s1", AccountID: "acc-1"},
	}})

	for _, path := range []string{"/auth/login", "/auth/signup"} {
		w := get(router, path)
		if w.Code != http.StatusTemporaryRedirect {
			t.Errorf("GET %s code = %d, want %d", path, w.Code, http.StatusTemporaryRedirect)
			continue
		}
		if loc := w.Header().Get("Location"); loc != "/dashboard" {
			t.Errorf("GET %s location = %q, want /dashboard", path, loc)
		}
	}
}

func TestGateLetsSignedInThroughProtectedPages(t *testing.T) {
	router := newGateRouter(&fakeResolver{res: session.Resolution{
		State:   session.Authenticated,
		Session: &session.Session{ID: "s1", AccountID: "acc-1"},
	}})

	for _, path := range []string{"/dashboard", "/profile", "/study-rooms", "/notes", "/quizzes"} {
		if w := get(router, path); w.Code != http.StatusOK {
			t.Errorf("GET %s code = %d, want 200", path, w.Code)
		}
	}
}

func TestGateLetsAnonymousThroughAuthPages(t *testing.T) {
	router := newGateRouter(&fakeResolver{res: session.Resolution{State: session.Unauthenticated}})

	for _, path := range []string{"/auth/login", "/auth/signup"} {
		if w := get(router, path); w.Code != http.StatusOK {
			t.Errorf("GET %s code = %d, want 200", path, w.Code)
		}
	}
}

func TestGateIgnoresUnmatchedPaths(t *testing.T) {
	resolver := &fakeResolver{res: session.Resolution{State: session.Unauthenticated}}
	router := newGateRouter(resolver)

	for _, path := range []string{"/", "/about"} {
		if w := get(router, path); w.Code != http.StatusOK {
			t.Errorf("GET %s code = %d, want 200", path, w.Code)
		}
	}
	if resolver.calls != 0 {
		t.Errorf("resolver called %d times on unmatched paths, want 0", resolver.calls)
	}
}

func TestGateFailsClosedOnProviderError(t *testing.T) {
	router := newGateRouter(&fakeResolver{res: session.Resolution{
		State: session.ProviderError,
		Err:   errors.New("redis: connection refused"),
	}})

	if w := get(router, "/dashboard"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("protected page code = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	// auth pages keep working while the provider is down
	if w := get(router, "/auth/login"); w.Code != http.StatusOK {
		t.Errorf("auth page code = %d, want 200", w.Code)
	}
}

func TestGateIsIdempotentAcrossRepeats(t *testing.T) {
	router := newGateRouter(&fakeResolver{res: session.Resolution{State: session.Unauthenticated}})

	for i := 0; i < 3; i++ {
		w := get(router, "/dashboard")
		if w.Code != http.StatusTemporaryRedirect || w.Header().Get("Location") != "/auth/login" {
			t.Fatalf("repeat %d: code=%d location=%q", i, w.Code, w.Header().Get("Location"))
		}
	}
}

func TestGateSetsAccountID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewGate(&fakeResolver{res: session.Resolution{
		State:   session.Authenticated,
		Session: &session.Session{ID: "s1", AccountID: "acc-42"},
	}}).Handle())
	router.GET("/dashboard", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("account_id"))
	})

	w := get(router, "/dashboard")
	if w.Body.String() != "acc-42" {
		t.Fatalf("account_id = %q, want acc-42", w.Body.String())
	}
}
