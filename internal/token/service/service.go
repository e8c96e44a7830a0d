package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"qrpass/internal/token/generator"
	"qrpass/internal/token/metrics"
	"qrpass/internal/token/qr"
	dErrors "qrpass/pkg/domain-errors"
	"qrpass/pkg/platform/sentinel"
)

// Store is the ephemeral record store the service reads and writes.
type Store interface {
	Exists(ctx context.Context, id string) (bool, error)
	WriteFields(ctx context.Context, id string, fields map[string]string) error
	SetExpiry(ctx context.Context, id string, ttl time.Duration) error
	ReadAll(ctx context.Context, id string) (map[string]string, error)
}

// Encoder renders a URL into image bytes.
type Encoder interface {
	Encode(content string, scale int) ([]byte, error)
}

const (
	DefaultTTL              = time.Hour
	DefaultLocale           = "ru"
	DefaultCollisionRetries = 3
)

// Service issues verification tokens and resolves them for verifiers.
type Service struct {
	store            Store
	authorityBaseURL string
	generator        generator.Generator
	encoder          Encoder
	logger           *slog.Logger
	metrics          *metrics.Metrics
	tracer           trace.Tracer
	defaultTTL       time.Duration
	locale           string
	qrScale          int
	collisionRetries int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithGenerator(g generator.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.generator = g
		}
	}
}

func WithEncoder(e Encoder) Option {
	return func(s *Service) {
		if e != nil {
			s.encoder = e
		}
	}
}

// WithDefaultTTL sets the validity used when a request carries none.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.defaultTTL = ttl
		}
	}
}

func WithLocale(locale string) Option {
	return func(s *Service) {
		if locale != "" {
			s.locale = locale
		}
	}
}

func WithQRScale(scale int) Option {
	return func(s *Service) {
		if scale > 0 {
			s.qrScale = scale
		}
	}
}

// WithCollisionRetries bounds how many times Issue regenerates an identifier
// that is already live. Zero disables the existence check.
func WithCollisionRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.collisionRetries = n
		}
	}
}

// New constructs a Service. authorityBaseURL is where unknown identifiers are
// redirected.
func New(store Store, authorityBaseURL string, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if authorityBaseURL == "" {
		return nil, fmt.Errorf("authority base URL is required")
	}
	s := &Service{
		store:            store,
		authorityBaseURL: authorityBaseURL,
		generator:        generator.New(),
		encoder:          qr.NewEncoder(),
		logger:           slog.Default(),
		tracer:           otel.Tracer("qrpass/internal/token/service"),
		defaultTTL:       DefaultTTL,
		locale:           DefaultLocale,
		qrScale:          qr.DefaultScale,
		collisionRetries: DefaultCollisionRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// storeError translates an infrastructure failure into a domain error.
func storeError(err error, msg string) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
