package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("STATUS_TRANSITIONS", "")
	t.Setenv("SUBSCRIPTION_BACKEND", "")
	t.Setenv("NOTIFY_PERMISSION", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "permissive", cfg.Store.StatusTransitions)
	assert.Equal(t, 10, cfg.Store.CodeMaxAttempts)
	assert.True(t, cfg.Store.Seed)
	assert.Equal(t, BackendMemory, cfg.Notification.SubscriptionBackend)
	assert.Equal(t, "default", cfg.Notification.Permission)
	assert.Equal(t, "http://localhost:3000", cfg.Technician.BaseURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STATUS_TRANSITIONS", "STRICT")
	t.Setenv("CODE_MAX_ATTEMPTS", "3")
	t.Setenv("STORE_SEED", "false")
	t.Setenv("EVENTS_ASYNC_WORKERS", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.App.Addr())
	assert.Equal(t, "strict", cfg.Store.StatusTransitions)
	assert.Equal(t, 3, cfg.Store.CodeMaxAttempts)
	assert.False(t, cfg.Store.Seed)
	assert.Equal(t, 4, cfg.Events.AsyncWorkers)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"unknown store backend":      {"STORE_BACKEND", "sqlite"},
		"postgres without dsn":       {"STORE_BACKEND", "postgres"},
		"unknown transition mode":    {"STATUS_TRANSITIONS", "graph"},
		"unknown subscription store": {"SUBSCRIPTION_BACKEND", "memcached"},
		"unknown permission":         {"NOTIFY_PERMISSION", "maybe"},
		"non numeric redis db":       {"REDIS_DB", "first"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("POSTGRES_DSN", "")
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestTimeouts(t *testing.T) {
	assert.Equal(t, time.Duration(0), AppConfig{RequestTimeoutSeconds: 0}.RequestTimeout())
	assert.Equal(t, 5*time.Second, AppConfig{RequestTimeoutSeconds: 5}.RequestTimeout())
	assert.Equal(t, 10*time.Second, TechnicianConfig{}.Timeout())
	assert.Equal(t, 2*time.Second, TechnicianConfig{TimeoutSeconds: 2}.Timeout())
}
