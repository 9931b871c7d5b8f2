package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"diagnostic-portal-api/internal/config"
)

func TestNewLogger_Level(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		l := newLogger(&config.Config{Env: "production", LogLevel: tt.in})
		if got := l.GetLevel(); got != tt.want {
			t.Errorf("LOG_LEVEL=%q: got %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestOpenBackend_Memory(t *testing.T) {
	ctx := context.Background()
	b, err := openBackend(ctx, &config.Config{StoreDriver: config.DriverMemory}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.close()

	if err := b.migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := b.ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if b.stores.Users == nil || b.stores.Appointments == nil || b.stores.Reports == nil {
		t.Fatal("stores not wired")
	}
}

func TestOpenBackend_UnknownDriver(t *testing.T) {
	if _, err := openBackend(context.Background(), &config.Config{StoreDriver: "sqlite"}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestOpenDenylist_MemoryWithoutRedis(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d, closeFn, err := openDenylist(ctx, &config.Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeFn()
	if ok, _ := d.Revoked(ctx, "anything"); ok {
		t.Fatal("fresh denylist reports revoked")
	}
}
