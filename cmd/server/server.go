package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"diagnostic-portal-api/internal/auth"
	"diagnostic-portal-api/internal/config"
	"diagnostic-portal-api/internal/handler"
	"diagnostic-portal-api/internal/middleware"
	"diagnostic-portal-api/internal/store/memory"
	"diagnostic-portal-api/internal/store/mongo"
	"diagnostic-portal-api/internal/store/postgres"
)

// backend is an opened store driver.
type backend struct {
	stores  handler.Stores
	ping    func(context.Context) error
	migrate func(context.Context) error
	close   func()
}

func openBackend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*backend, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := postgres.Open(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, err
		}
		logger.Info().Msg("connected to postgres")
		st := postgres.New(pool)
		return &backend{
			stores: handler.Stores{Users: st, Appointments: st.Appointments, Reports: st.Reports},
			ping:   st.Ping,
			migrate: func(ctx context.Context) error {
				applied, err := st.Migrate(ctx)
				for _, name := range applied {
					logger.Info().Str("file", name).Msg("migration applied")
				}
				return err
			},
			close: pool.Close,
		}, nil

	case config.DriverMongo:
		st, err := mongo.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("database", cfg.MongoDatabase).Msg("connected to mongo")
		return &backend{
			stores:  handler.Stores{Users: st, Appointments: st.Appointments, Reports: st.Reports},
			ping:    st.Ping,
			migrate: st.EnsureIndexes,
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := st.Close(ctx); err != nil {
					logger.Warn().Err(err).Msg("mongo disconnect")
				}
			},
		}, nil

	case config.DriverMemory:
		logger.Warn().Msg("using in-memory store, data is lost on exit")
		st := memory.New()
		return &backend{
			stores:  handler.Stores{Users: st.Users, Appointments: st.Appointments, Reports: st.Reports},
			ping:    func(context.Context) error { return nil },
			migrate: func(context.Context) error { return nil },
			close:   func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openDenylist(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (auth.Denylist, func(), error) {
	if cfg.RedisURL == "" {
		logger.Info().Msg("token revocation kept in memory")
		return auth.NewMemoryDenylist(ctx), func() {}, nil
	}
	rdb, err := auth.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Msg("token revocation backed by redis")
	return auth.NewRedisDenylist(rdb), func() { _ = rdb.Close() }, nil
}

func runServer(parent context.Context, cfg *config.Config, logger zerolog.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close()
	if err := b.migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	revoked, closeRevoked, err := openDenylist(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRevoked()

	h := handler.New(b.stores, cfg.JWTSecret, cfg.TokenTTL, revoked)
	v := auth.NewVerifier(cfg.JWTSecret, b.stores.Users, revoked)
	rl := middleware.NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)
	e := handler.NewRouter(h, v, rl, logger, cfg.CORSOrigins)

	// grpc health endpoint for orchestrators
	hs := health.NewServer()
	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	errc := make(chan error, 2)
	go func() {
		logger.Info().Str("addr", lis.Addr().String()).Msg("grpc health on")
		if err := gs.Serve(lis); err != nil {
			errc <- fmt.Errorf("grpc: %w", err)
		}
	}()
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("driver", cfg.StoreDriver).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http: %w", err)
		}
	}()
	go watchStore(ctx, b.ping, hs, logger)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errc:
	}

	logger.Info().Msg("shutting down server")
	hs.Shutdown()
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	gs.GracefulStop()
	logger.Info().Msg("server stopped")
	return runErr
}

// watchStore flips the health status when the store stops answering pings.
func watchStore(ctx context.Context, ping func(context.Context) error, hs *health.Server, logger zerolog.Logger) {
	t := time.NewTicker(15 * time.Second)
	defer t.Stop()
	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := ping(pctx)
			cancel()
			switch {
			case err != nil && serving:
				logger.Error().Err(err).Msg("store unreachable")
				hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
				serving = false
			case err == nil && !serving:
				logger.Info().Msg("store reachable again")
				hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
				serving = true
			}
		}
	}
}
