package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("AUTHORITY_BASE_URL", "https://authority.example/")
	t.Setenv("ADMIN_USERS", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "https://authority.example", cfg.AuthorityBaseURL)
	assert.Equal(t, "ru", cfg.DefaultLocale)
	assert.Equal(t, time.Hour, cfg.DefaultTTL)
	assert.Equal(t, 4, cfg.QRScale)
	assert.Equal(t, 3, cfg.IDCollisionRetries)
	assert.Equal(t, StoreBackendRedis, cfg.StoreBackend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 0, cfg.Operators.Len())
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	t.Run("authority is required", func(t *testing.T) {
		t.Setenv("AUTHORITY_BASE_URL", "")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AUTHORITY_BASE_URL")
	})

	t.Run("malformed numbers and backends are reported together", func(t *testing.T) {
		t.Setenv("AUTHORITY_BASE_URL", "https://authority.example")
		t.Setenv("QR_SCALE", "big")
		t.Setenv("STORE_BACKEND", "postgres")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "QR_SCALE")
		assert.Contains(t, err.Error(), "STORE_BACKEND")
	})
}

func TestOperatorsFromEnv(t *testing.T) {
	env := map[string]string{
		"ADMIN_USERS":        "1",
		"USER_0_USERNAME":    "admin",
		"USER_0_PASSWORD":    "password",
		"USER_0_FIRST_NAME":  "Иван",
		"USER_0_LAST_NAME":   "Иванов",
		"USER_0_SECOND_NAME": "Иванович",
		"USER_0_B_DAY":       "2020-01-01",
		"USER_0_SERIES":      "12",
		"USER_0_NUMBER":      "789",
		"USER_0_TIMEZONE":    "Europe/Moscow",
	}
	ops, err := operatorsFromEnv(func(k string) string { return env[k] }, bcrypt.MinCost)
	require.NoError(t, err)
	require.Equal(t, 1, ops.Len())

	op, ok := ops.Lookup("admin")
	require.True(t, ok)
	assert.Equal(t, "Иванов", op.Identity.LastName)
	assert.Equal(t, "Europe/Moscow", op.Identity.Timezone)

	_, ok = ops.Authenticate("admin", "password")
	assert.True(t, ok)
	_, ok = ops.Authenticate("admin", "wrong")
	assert.False(t, ok)
	_, ok = ops.Authenticate("ghost", "password")
	assert.False(t, ok)
}

func TestOperatorsFromEnvErrors(t *testing.T) {
	t.Run("count must be numeric", func(t *testing.T) {
		_, err := operatorsFromEnv(func(k string) string {
			if k == "ADMIN_USERS" {
				return "many"
			}
			return ""
		}, bcrypt.MinCost)
		assert.Error(t, err)
	})

	t.Run("missing password is rejected", func(t *testing.T) {
		env := map[string]string{"ADMIN_USERS": "1", "USER_0_USERNAME": "admin"}
		_, err := operatorsFromEnv(func(k string) string { return env[k] }, bcrypt.MinCost)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "USER_0")
	})

	t.Run("duplicate usernames are rejected", func(t *testing.T) {
		a, err := NewOperator("admin", "a", Identity{}, bcrypt.MinCost)
		require.NoError(t, err)
		b, err := NewOperator("admin", "b", Identity{}, bcrypt.MinCost)
		require.NoError(t, err)
		_, err = NewOperators(a, b)
		assert.Error(t, err)
	})
}

func TestAuthenticateComparesForUnknownUsers(t *testing.T) {
	op, err := NewOperator("admin", "password", Identity{}, bcrypt.MinCost)
	require.NoError(t, err)
	ops, err := NewOperators(op)
	require.NoError(t, err)

	calls := 0
	orig := compareHash
	compareHash = func(hash, password []byte) error {
		calls++
		return orig(hash, password)
	}
	t.Cleanup(func() { compareHash = orig })

	for _, tc := range []struct {
		name, user, password string
		ok                   bool
	}{
		{"known user", "admin", "password", true},
		{"wrong password", "admin", "wrong", false},
		{"unknown user", "ghost", "password", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			calls = 0
			_, ok := ops.Authenticate(tc.user, tc.password)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, 1, calls, "every attempt runs exactly one hash comparison")
		})
	}

	t.Run("decoy matches the operator cost", func(t *testing.T) {
		cost, err := bcrypt.Cost(ops.decoy)
		require.NoError(t, err)
		assert.Equal(t, bcrypt.MinCost, cost)
	})
}
