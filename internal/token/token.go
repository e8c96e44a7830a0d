// Package token issues short-lived verification tokens and answers
// verification lookups for them.
package token

import (
	"log/slog"

	"qrpass/internal/platform/config"
	"qrpass/internal/token/handler"
	"qrpass/internal/token/metrics"
	"qrpass/internal/token/service"
	"qrpass/internal/token/store"
)

// Service exposes token issuance, resolution and certificate checks.
type Service = service.Service

// Handler wires HTTP endpoints to the token service.
type Handler = handler.Handler

// NewService constructs the token service from process configuration.
func NewService(st service.Store, cfg config.Server, logger *slog.Logger, m *metrics.Metrics) (*Service, error) {
	return service.New(st, cfg.AuthorityBaseURL,
		service.WithLogger(logger),
		service.WithMetrics(m),
		service.WithDefaultTTL(cfg.DefaultTTL),
		service.WithLocale(cfg.DefaultLocale),
		service.WithQRScale(cfg.QRScale),
		service.WithCollisionRetries(cfg.IDCollisionRetries),
	)
}

// NewHandler constructs the HTTP handler for token routes.
func NewHandler(s *Service, cfg config.Server, logger *slog.Logger) *Handler {
	return handler.New(s, handler.Config{
		PublicHost: cfg.PublicHost,
		HomeURL:    cfg.AuthorityBaseURL,
		Operators:  cfg.Operators,
	}, logger)
}

// NewMemoryStore returns a process-local record store.
func NewMemoryStore() *store.InMemoryStore {
	return store.NewInMemory()
}
