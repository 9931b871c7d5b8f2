package auth_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"diagnostic-portal-api/internal/auth"
)

func TestRedisDenylist(t *testing.T) {
	_ = godotenv.Load("../../.env")
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	rdb, err := auth.OpenRedis(ctx, url)
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })

	d := auth.NewRedisDenylist(rdb)
	jti := uuid.New().String()

	if gone, err := d.Revoked(ctx, jti); err != nil || gone {
		t.Fatalf("fresh jti: gone=%v err=%v", gone, err)
	}
	if err := d.Revoke(ctx, jti, time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if gone, err := d.Revoked(ctx, jti); err != nil || !gone {
		t.Fatalf("revoked jti: gone=%v err=%v", gone, err)
	}

	// already expired tokens are not stored
	old := uuid.New().String()
	if err := d.Revoke(ctx, old, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("revoke expired: %v", err)
	}
	if gone, _ := d.Revoked(ctx, old); gone {
		t.Error("expired token should not be stored")
	}
}
