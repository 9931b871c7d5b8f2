package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"diagnostic-portal-api/internal/apperr"
	"diagnostic-portal-api/internal/store"
)

// Principal is the identity resolved from a verified bearer token.
type Principal struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

type Verifier struct {
	secret  string
	users   store.Users
	revoked Denylist
}

// NewVerifier builds a Verifier. revoked may be nil when logout revocation
// is not in use.
func NewVerifier(secret string, users store.Users, revoked Denylist) *Verifier {
	return &Verifier{secret: secret, users: users, revoked: revoked}
}

// Verify checks an Authorization header value. Every failure caused by the
// credential is Unauthenticated; a failing backend is Internal.
func (v *Verifier) Verify(ctx context.Context, header string) (*Principal, error) {
	raw := bearer(header)
	if raw == "" {
		return nil, apperr.Unauthorized("No token", nil)
	}

	claims, err := ParseToken(raw, v.secret)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid token", err)
	}

	if v.revoked != nil && claims.ID != "" {
		gone, err := v.revoked.Revoked(ctx, claims.ID)
		if err != nil {
			return nil, apperr.Wrap(fmt.Errorf("denylist: %w", err))
		}
		if gone {
			return nil, apperr.Unauthorized("Token revoked", nil)
		}
	}

	// the subject must still exist; a token outliving its account is rejected
	if _, err := v.users.UserByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Unauthorized("User not found", err)
		}
		return nil, apperr.Wrap(fmt.Errorf("load principal: %w", err))
	}

	p := &Principal{UserID: claims.UserID, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

// token from Authorization: Bearer <jwt>
func bearer(header string) string {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}
