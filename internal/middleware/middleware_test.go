package middleware_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"diagnostic-portal-api/internal/apperr"
	"diagnostic-portal-api/internal/auth"
	"diagnostic-portal-api/internal/middleware"
	"diagnostic-portal-api/internal/model"
	"diagnostic-portal-api/internal/store/memory"
)

const secret = "middleware-test-secret-0123456789"

func TestAuthAttachesPrincipal(t *testing.T) {
	users := memory.NewUsers()
	uid := uuid.New().String()
	users.CreateUser(context.Background(), &model.User{ID: uid, Mobile: "1"})
	mw := middleware.Auth(auth.NewVerifier(secret, users, nil))

	tok, _ := auth.MakeToken(uid, secret, time.Hour)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	err := mw(func(c echo.Context) error {
		seen, _ = middleware.UserID(c.Request().Context())
		p, ok := middleware.PrincipalFrom(c.Request().Context())
		if !ok || p.UserID != uid {
			t.Errorf("principal not attached: %+v", p)
		}
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != uid {
		t.Errorf("expected uid %s, got %q", uid, seen)
	}
}

func TestAuthRejectsWithoutCallingNext(t *testing.T) {
	mw := middleware.Auth(auth.NewVerifier(secret, memory.NewUsers(), nil))
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	if called {
		t.Fatal("next must not run without a token")
	}
	if apperr.KindOf(err) != apperr.Unauthenticated {
		t.Errorf("expected Unauthenticated, got %v", err)
	}
}

func TestUserIDMissing(t *testing.T) {
	if _, ok := middleware.UserID(context.Background()); ok {
		t.Error("empty context must not yield a user")
	}
}

func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := middleware.NewRateLimiter(ctx, 0.001, 2)
	h := middleware.RateLimit(rl)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e := echo.New()
	call := func(ip string) error {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = ip + ":1234"
		return h(e.NewContext(req, httptest.NewRecorder()))
	}

	for i := 0; i < 2; i++ {
		if err := call("10.0.0.1"); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	err := call("10.0.0.1")
	if apperr.KindOf(err) != apperr.TooManyRequests {
		t.Fatalf("expected TooManyRequests, got %v", err)
	}
	// other clients have their own bucket
	if err := call("10.0.0.2"); err != nil {
		t.Fatalf("second client: %v", err)
	}
}

func TestRecoveryAndLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		ae := apperr.From(err)
		c.JSON(ae.Kind.Status(), map[string]string{"error": ae.Public()})
	}
	e.Use(middleware.Logger(log), middleware.Recovery(log))
	e.GET("/boom", func(c echo.Context) error { panic("kaboom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "kaboom") {
		t.Error("panic detail leaked to client")
	}
	if !strings.Contains(buf.String(), "panic recovered") || !strings.Contains(buf.String(), `"status":500`) {
		t.Errorf("expected panic and request log lines, got %s", buf.String())
	}
}
