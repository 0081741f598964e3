package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []byte("s3cret"), cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpiresIn)
	assert.Equal(t, 50, cfg.Rooms.HistoryLimit)
	assert.Equal(t, 256, cfg.Rooms.SendBuffer)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.Telemetry.Endpoint)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", ":9090")
	t.Setenv("HISTORY_LIMIT", "20")
	t.Setenv("HUB_IDLE_TIMEOUT", "30s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, 20, cfg.Rooms.HistoryLimit)
	assert.Equal(t, 30*time.Second, cfg.Rooms.HubIdleTimeout)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing secret",
			env:     map[string]string{"JWT_SECRET": ""},
			wantErr: "JWT_SECRET",
		},
		{
			name:    "bad duration",
			env:     map[string]string{"JWT_SECRET": "x", "READ_TIMEOUT": "soon"},
			wantErr: "READ_TIMEOUT",
		},
		{
			name:    "bad integer",
			env:     map[string]string{"JWT_SECRET": "x", "WS_SEND_BUFFER": "many"},
			wantErr: "WS_SEND_BUFFER",
		},
		{
			name:    "history limit above 50",
			env:     map[string]string{"JWT_SECRET": "x", "HISTORY_LIMIT": "500"},
			wantErr: "HISTORY_LIMIT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
