package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"diagnostic-portal-api/internal/apperr"
	"diagnostic-portal-api/internal/auth"
	"diagnostic-portal-api/internal/middleware"
	"diagnostic-portal-api/internal/model"
	"diagnostic-portal-api/internal/store"
)

type registerRequest struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

type loginRequest struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	req.Mobile = strings.TrimSpace(req.Mobile)
	req.Email = strings.TrimSpace(req.Email)

	if req.Mobile == "" || req.Password == "" {
		return apperr.Invalid("mobile and password required")
	}
	if len(req.Password) < 8 {
		return apperr.Invalid("password too short")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return apperr.Wrap(err)
	}

	u := &model.User{
		ID:           uuid.New().String(),
		FullName:     req.FullName,
		Email:        req.Email,
		Mobile:       req.Mobile,
		Avatar:       req.Avatar,
		PasswordHash: hash,
		CreatedAt:    now(),
	}
	if err := h.users.CreateUser(c.Request().Context(), u); err != nil {
		// unique violation = dup mobile or email, but don't reveal which
		if errors.Is(err, store.ErrConflict) {
			return apperr.Duplicate("Registration failed")
		}
		return apperr.Wrap(err)
	}

	return h.issue(c, u)
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Mobile == "" || req.Password == "" {
		return apperr.Invalid("mobile and password required")
	}

	u, err := h.users.UserByMobile(c.Request().Context(), strings.TrimSpace(req.Mobile))
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Unauthorized("Invalid credentials", nil)
	} else if err != nil {
		return apperr.Wrap(err)
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return apperr.Unauthorized("Invalid credentials", nil)
	}

	return h.issue(c, u)
}

func (h *Handler) issue(c echo.Context, u *model.User) error {
	tok, err := auth.MakeToken(u.ID, h.secret, h.ttl)
	if err != nil {
		return apperr.Wrap(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "token": tok, "user": userView(u)})
}

func (h *Handler) Me(c echo.Context) error {
	u, err := h.users.UserByID(c.Request().Context(), uid(c))
	if err != nil {
		return storeErr(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "user": userView(u)})
}

// Logout revokes the presented token until its natural expiry.
func (h *Handler) Logout(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c.Request().Context())
	if ok && h.revoked != nil && p.TokenID != "" {
		if err := h.revoked.Revoke(c.Request().Context(), p.TokenID, p.ExpiresAt); err != nil {
			return apperr.Wrap(err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "msg": "Logged out"})
}
