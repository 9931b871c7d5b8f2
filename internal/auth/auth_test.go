package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"diagnostic-portal-api/internal/apperr"
	"diagnostic-portal-api/internal/auth"
	"diagnostic-portal-api/internal/model"
	"diagnostic-portal-api/internal/store/memory"
)

const secret = "test-secret-with-enough-length-1234"

func TestPasswordHash(t *testing.T) {
	h, err := auth.HashPassword("testpass123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !auth.CheckPassword(h, "testpass123") {
		t.Error("correct password rejected")
	}
	if auth.CheckPassword(h, "wrongpassword") {
		t.Error("wrong password accepted")
	}
}

func TestAccessTokenExpiry(t *testing.T) {
	tok, err := auth.MakeToken("test-uid", secret, 15*time.Minute)
	if err != nil {
		t.Fatalf("make token: %v", err)
	}

	claims, err := auth.ParseToken(tok, secret)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != "test-uid" {
		t.Errorf("uid mismatch: %s", claims.UserID)
	}
	if claims.ID == "" {
		t.Error("missing jti")
	}

	diff := time.Until(claims.ExpiresAt.Time)
	if diff < 14*time.Minute || diff > 16*time.Minute {
		t.Errorf("expected ~15min expiry, got %v", diff)
	}
}

func TestAlgorithmConfusion(t *testing.T) {
	tok, _ := auth.MakeToken("uid", secret, time.Hour)
	if _, err := auth.ParseToken(tok, secret); err != nil {
		t.Fatalf("valid token failed: %v", err)
	}

	// wrong secret fails
	if _, err := auth.ParseToken(tok, "wrong-secret"); err == nil {
		t.Fatal("expected error for wrong secret")
	}

	// garbage token fails
	if _, err := auth.ParseToken("not.a.token", secret); err == nil {
		t.Fatal("expected error for garbage token")
	}

	// alg=none is refused
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, auth.Claims{
		UserID: "uid",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := auth.ParseToken(none, secret); err == nil {
		t.Fatal("expected error for alg=none")
	}
}

func TestTokenWithoutExpiryRejected(t *testing.T) {
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{UserID: "uid"}).SignedString([]byte(secret))
	if _, err := auth.ParseToken(tok, secret); err == nil {
		t.Fatal("expected error for token without exp")
	}
}

// ----- verifier -----

func newVerifier(t *testing.T) (*auth.Verifier, *memory.Users, auth.Denylist, string) {
	t.Helper()
	users := memory.NewUsers()
	uid := uuid.New().String()
	if err := users.CreateUser(context.Background(), &model.User{ID: uid, Mobile: "9876543210"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	deny := auth.NewMemoryDenylist(ctx)
	return auth.NewVerifier(secret, users, deny), users, deny, uid
}

func expectUnauthenticated(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	if k := apperr.KindOf(err); k != apperr.Unauthenticated {
		t.Errorf("expected Unauthenticated, got %v", k)
	}
}

func TestVerifyValid(t *testing.T) {
	v, _, _, uid := newVerifier(t)
	tok, _ := auth.MakeToken(uid, secret, time.Hour)

	for _, h := range []string{"Bearer " + tok, "bearer " + tok, "  Bearer   " + tok} {
		p, err := v.Verify(context.Background(), h)
		if err != nil {
			t.Fatalf("%q: %v", h, err)
		}
		if p.UserID != uid {
			t.Errorf("principal mismatch: %s", p.UserID)
		}
		if p.TokenID == "" || p.ExpiresAt.IsZero() {
			t.Errorf("principal missing token metadata: %+v", p)
		}
	}
}

func TestVerifyRejects(t *testing.T) {
	v, _, _, uid := newVerifier(t)
	good, _ := auth.MakeToken(uid, secret, time.Hour)

	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte(secret))

	parts := strings.Split(good, ".")
	flip := "A"
	if strings.HasPrefix(parts[2], "A") {
		flip = "B"
	}
	tampered := parts[0] + "." + parts[1] + "." + flip + parts[2][1:]
	foreign, _ := auth.MakeToken(uid, "another-secret", time.Hour)

	tests := []struct {
		name   string
		header string
	}{
		{"empty", ""},
		{"no scheme", good},
		{"basic scheme", "Basic " + good},
		{"bearer without token", "Bearer "},
		{"malformed", "Bearer abc.def"},
		{"expired", "Bearer " + expired},
		{"tampered", "Bearer " + tampered},
		{"wrong secret", "Bearer " + foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.header)
			expectUnauthenticated(t, err)
		})
	}
}

func TestVerifyOrphanedSubject(t *testing.T) {
	v, users, _, uid := newVerifier(t)
	tok, _ := auth.MakeToken(uid, secret, time.Hour)

	users.DeleteUser(context.Background(), uid)
	_, err := v.Verify(context.Background(), "Bearer "+tok)
	expectUnauthenticated(t, err)

	ghost, _ := auth.MakeToken(uuid.New().String(), secret, time.Hour)
	_, err = v.Verify(context.Background(), "Bearer "+ghost)
	expectUnauthenticated(t, err)
}

func TestVerifyRevoked(t *testing.T) {
	v, _, deny, uid := newVerifier(t)
	tok, _ := auth.MakeToken(uid, secret, time.Hour)

	p, err := v.Verify(context.Background(), "Bearer "+tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := deny.Revoke(context.Background(), p.TokenID, p.ExpiresAt); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	_, err = v.Verify(context.Background(), "Bearer "+tok)
	expectUnauthenticated(t, err)

	// a fresh token for the same user is unaffected
	fresh, _ := auth.MakeToken(uid, secret, time.Hour)
	if _, err := v.Verify(context.Background(), "Bearer "+fresh); err != nil {
		t.Fatalf("fresh token: %v", err)
	}
}

func TestMemoryDenylistExpires(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := auth.NewMemoryDenylist(ctx)

	_ = d.Revoke(ctx, "old", time.Now().Add(-time.Second))
	if gone, _ := d.Revoked(ctx, "old"); gone {
		t.Error("entry past its expiry should not count")
	}
	_ = d.Revoke(ctx, "live", time.Now().Add(time.Hour))
	if gone, _ := d.Revoked(ctx, "live"); !gone {
		t.Error("live entry should be revoked")
	}
}
