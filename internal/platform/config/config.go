package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"
)

// Server captures process-level configuration. It is loaded once at start
// and passed explicitly to every component.
type Server struct {
	Addr string
	// PublicHost, when set, is embedded in verification URLs instead of the
	// Host header of the issuing request.
	PublicHost string
	// AuthorityBaseURL is where unknown identifiers are redirected.
	AuthorityBaseURL   string
	DefaultLocale      string
	DefaultTTL         time.Duration
	QRScale            int
	IDCollisionRetries int
	StoreBackend       string
	Redis              RedisConfig
	Log                LogConfig
	Operators          Operators
}

// RedisConfig configures the shared ephemeral record store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string
	Format string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var errs []string
	intVar := func(key string, def int) int {
		v, err := intFromEnv(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}
	durVar := func(key string, def time.Duration) time.Duration {
		v, err := durationFromEnv(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}

	cfg := Server{
		Addr:               stringFromEnv("QRPASS_ADDR", ":8080"),
		PublicHost:         os.Getenv("PUBLIC_HOST"),
		AuthorityBaseURL:   strings.TrimRight(os.Getenv("AUTHORITY_BASE_URL"), "/"),
		DefaultLocale:      stringFromEnv("DEFAULT_LOCALE", "ru"),
		DefaultTTL:         time.Duration(intVar("DEFAULT_TTL_SECONDS", 3600)) * time.Second,
		QRScale:            intVar("QR_SCALE", 4),
		IDCollisionRetries: intVar("ID_COLLISION_RETRIES", 3),
		StoreBackend:       stringFromEnv("STORE_BACKEND", StoreBackendRedis),
		Redis: RedisConfig{
			URL:          stringFromEnv("REDIS_URL", "redis://localhost:6379/0"),
			PoolSize:     intVar("REDIS_POOL_SIZE", 10),
			MinIdleConns: intVar("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durVar("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durVar("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durVar("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Log: LogConfig{
			Level:  stringFromEnv("LOG_LEVEL", "info"),
			Format: stringFromEnv("LOG_FORMAT", "json"),
		},
	}

	if cfg.AuthorityBaseURL == "" {
		errs = append(errs, "AUTHORITY_BASE_URL is required")
	}
	switch cfg.StoreBackend {
	case StoreBackendRedis, StoreBackendMemory:
	default:
		errs = append(errs, fmt.Sprintf("STORE_BACKEND must be %q or %q", StoreBackendRedis, StoreBackendMemory))
	}
	if len(errs) > 0 {
		return Server{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}

	ops, err := OperatorsFromEnv(os.Getenv)
	if err != nil {
		return Server{}, err
	}
	cfg.Operators = ops
	return cfg, nil
}

func stringFromEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intFromEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}

func durationFromEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("%s must be a duration", key)
	}
	return v, nil
}
