package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"diagnostic-portal-api/internal/apperr"
	"diagnostic-portal-api/internal/auth"
	"diagnostic-portal-api/internal/middleware"
	"diagnostic-portal-api/internal/model"
	"diagnostic-portal-api/internal/store"
)

// Stores are the persistence handles a Handler works against.
type Stores struct {
	Users        store.Users
	Appointments store.Owned[model.Appointment]
	Reports      store.Owned[model.Report]
}

type Handler struct {
	users        store.Users
	appointments store.Owned[model.Appointment]
	reports      store.Owned[model.Report]
	secret       string
	ttl          time.Duration
	revoked      auth.Denylist
}

// New builds a Handler. revoked may be nil, in which case logout does not
// invalidate the presented token.
func New(st Stores, secret string, ttl time.Duration, revoked auth.Denylist) *Handler {
	return &Handler{
		users:        st.Users,
		appointments: st.Appointments,
		reports:      st.Reports,
		secret:       secret,
		ttl:          ttl,
		revoked:      revoked,
	}
}

// Routes mounts the API. rl may be nil to disable rate limiting.
func (h *Handler) Routes(e *echo.Echo, v *auth.Verifier, rl *middleware.RateLimiter) {
	e.GET("/", h.Root)

	var limit []echo.MiddlewareFunc
	if rl != nil {
		limit = append(limit, middleware.RateLimit(rl))
	}
	authed := middleware.Auth(v)

	a := e.Group("/auth")
	a.POST("/register", h.Register, limit...)
	a.POST("/login", h.Login, limit...)
	a.GET("/me", h.Me, authed)
	a.POST("/logout", h.Logout, authed)

	appts := e.Group("/appointments", authed)
	appts.POST("", h.CreateAppointment)
	appts.GET("", h.ListAppointments)
	appts.GET("/:id", h.GetAppointment)
	appts.PUT("/:id", h.UpdateAppointment)
	appts.DELETE("/:id", h.DeleteAppointment)

	reports := e.Group("/reports", authed)
	reports.POST("", h.CreateReport)
	reports.GET("", h.ListReports)
	reports.GET("/:id", h.GetReport)
}

// NewRouter assembles the echo instance with the ambient middleware chain.
func NewRouter(h *Handler, v *auth.Verifier, rl *middleware.RateLimiter, log zerolog.Logger, origins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) { c.Set("request_id", id) },
	}))
	e.Use(middleware.Logger(log))
	e.Use(middleware.Recovery(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: origins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomw.BodyLimit("1M"))

	h.Routes(e, v, rl)
	return e
}

func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "msg": "Diagnostic portal API"})
}

// ErrorHandler renders every failure as {"error": message}. Internal causes
// never reach the body; the request logger records them.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, msg := http.StatusInternalServerError, "Server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch status {
		case http.StatusNotFound:
			msg = "Not found"
		case http.StatusBadRequest:
			msg = "Invalid request body"
		default:
			msg = http.StatusText(status)
		}
	} else {
		ae := apperr.From(err)
		status, msg = ae.Kind.Status(), ae.Public()
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, echo.Map{"error": msg})
}

func uid(c echo.Context) string {
	id, _ := middleware.UserID(c.Request().Context())
	return id
}

func storeErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.Missing()
	case errors.Is(err, store.ErrConflict):
		return apperr.Duplicate("Already exists")
	}
	return apperr.Wrap(err)
}

// timestamps are kept at millisecond precision so every backend round-trips
// them unchanged
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
