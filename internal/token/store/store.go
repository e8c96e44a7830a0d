// Package store holds token records: one field map per identifier with a
// per-key time-to-live. Expiry is enforced by the backend and observed only as
// absence.
package store

import (
	"context"
	"time"
)

// KeyPrefix namespaces token records in shared backends.
const KeyPrefix = "qrpass:token:"

// Store is the ephemeral record store used by the token service.
type Store interface {
	// Exists reports whether a live record is stored under id.
	Exists(ctx context.Context, id string) (bool, error)
	// WriteFields sets all fields in one atomic write.
	WriteFields(ctx context.Context, id string, fields map[string]string) error
	// SetExpiry attaches a TTL to the record. A non-positive ttl removes it.
	SetExpiry(ctx context.Context, id string, ttl time.Duration) error
	// ReadAll returns every field, or an empty map when the record is absent
	// or expired.
	ReadAll(ctx context.Context, id string) (map[string]string, error)
}

// Key returns the backend key for id.
func Key(id string) string {
	return KeyPrefix + id
}
