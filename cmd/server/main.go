package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"qrpass/internal/platform/config"
	"qrpass/internal/platform/httpserver"
	"qrpass/internal/platform/logger"
	platformmetrics "qrpass/internal/platform/metrics"
	"qrpass/internal/platform/redis"
	httptransport "qrpass/internal/transport/http"
	"qrpass/internal/token"
	tokenmetrics "qrpass/internal/token/metrics"
	"qrpass/internal/token/service"
	"qrpass/internal/token/store"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokenMetrics := tokenmetrics.New(prometheus.DefaultRegisterer)
	httpMetrics := platformmetrics.New(prometheus.DefaultRegisterer)

	var (
		st     service.Store
		health httptransport.HealthChecker
	)
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		log.Warn("using in-memory record store; records are lost on restart")
		st = token.NewMemoryStore()
	default:
		pingCtx, cancel := context.WithTimeout(ctx, cfg.Redis.DialTimeout)
		client, err := redis.New(pingCtx, cfg.Redis)
		cancel()
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		st = store.NewRedis(client, store.WithRedisMetrics(tokenMetrics))
		health = client
	}

	svc, err := token.NewService(st, cfg, log, tokenMetrics)
	if err != nil {
		return fmt.Errorf("build token service: %w", err)
	}
	if cfg.Operators.Len() == 0 {
		log.Warn("no operators provisioned; issuance is disabled", "env", "ADMIN_USERS")
	}

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Logger:         log,
		Metrics:        httpMetrics,
		Health:         health,
		MetricsHandler: promhttp.Handler(),
		RequestTimeout: 15 * time.Second,
		FallbackURL:    cfg.AuthorityBaseURL,
		Modules:        []httptransport.Module{token.NewHandler(svc, cfg, log)},
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting qrpass", "addr", cfg.Addr, "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", slog.Any("error", err))
		return err
	}
	return nil
}
