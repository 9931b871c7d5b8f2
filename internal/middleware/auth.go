package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"diagnostic-portal-api/internal/auth"
)

type ctxKey string

const (
	UserIDKey    ctxKey = "uid"
	PrincipalKey ctxKey = "principal"
)

// Auth rejects the request unless the Authorization header carries a valid
// token for an existing user. The principal is stored on the request
// context; handlers must take identity from there and nowhere else.
func Auth(v *auth.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			p, err := v.Verify(req.Context(), req.Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}

			ctx := context.WithValue(req.Context(), UserIDKey, p.UserID)
			ctx = context.WithValue(ctx, PrincipalKey, p)
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

func UserID(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(UserIDKey).(string)
	return uid, ok && uid != ""
}

func PrincipalFrom(ctx context.Context) (*auth.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(*auth.Principal)
	return p, ok
}
