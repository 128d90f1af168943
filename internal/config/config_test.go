package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load()

	req.NoError(err)
	req.Equal(5000, cfg.Server.Port)
	req.Equal("Todos", cfg.Chat.BroadcastTarget)
	req.Equal(15*time.Second, cfg.Chat.SweepInterval)
	req.Equal(10*time.Second, cfg.Chat.HeartbeatTimeout)
	req.False(cfg.RateLimit.Enabled)
}

func TestLoad_DatabaseURLFallback(t *testing.T) {
	req := require.New(t)
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/batepapo")

	cfg, err := Load()

	req.NoError(err)
	req.Equal("postgres://localhost/batepapo", cfg.Database.DSN)
}

func TestLoad_Overrides(t *testing.T) {
	req := require.New(t)
	t.Setenv("STORAGE_DRIVER", "badger")
	t.Setenv("BADGER_PATH", "/tmp/chat")
	t.Setenv("CHAT_SWEEP_INTERVAL", "2s")
	t.Setenv("CHAT_HEARTBEAT_TIMEOUT", "1500ms")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")

	cfg, err := Load()

	req.NoError(err)
	req.Equal(StorageDriverBadger, cfg.Storage.Driver)
	req.Equal(2*time.Second, cfg.Chat.SweepInterval)
	req.Equal(1500*time.Millisecond, cfg.Chat.HeartbeatTimeout)
	req.True(cfg.RateLimit.Enabled)
	req.Equal(5, cfg.RateLimit.Requests)
}

func TestLoad_Invalid(t *testing.T) {
	for _, tc := range []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "mongo"}},
		{"postgres without dsn", map[string]string{"STORAGE_DRIVER": "postgres", "DATABASE_DSN": "", "DATABASE_URL": ""}},
		{"zero sweep concurrency", map[string]string{"STORAGE_DRIVER": "memory", "CHAT_SWEEP_CONCURRENCY": "0"}},
		{"negative timeout", map[string]string{"STORAGE_DRIVER": "memory", "CHAT_HEARTBEAT_TIMEOUT": "-1s"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}
