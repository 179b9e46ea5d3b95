package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shellchat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
endpoint: wss://api.example.com/ws
model_id: amazon.nova-lite-v1:0
reconnect_delay: 10s
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "wss://api.example.com/ws", cfg.Endpoint)
	require.Equal(t, "amazon.nova-lite-v1:0", cfg.ModelID)
	require.Equal(t, 10*time.Second, cfg.ReconnectDelay)
	// untouched defaults survive
	require.Equal(t, time.Second, cfg.SendRetryDelay)
	require.Equal(t, "interactive-labs", cfg.CacheName)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	path := writeConfig(t, "endpoint: wss://file.example.com/ws\n")
	t.Setenv("SHELLCHAT_ENDPOINT", "wss://env.example.com/ws")
	t.Setenv("SHELLCHAT_RECONNECT_DELAY", "250ms")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "wss://env.example.com/ws", cfg.Endpoint)
	require.Equal(t, 250*time.Millisecond, cfg.ReconnectDelay)
}

func TestValidate_RejectsBadEndpoints(t *testing.T) {
	cfg := Default()
	require.ErrorContains(t, cfg.Validate(), "endpoint is required")

	cfg.Endpoint = "https://api.example.com/ws"
	require.ErrorContains(t, cfg.Validate(), "not ws or wss")

	cfg.Endpoint = "wss://api.example.com/ws"
	require.NoError(t, cfg.Validate())
}

func TestValidate_TokenEndpointNeedsUserID(t *testing.T) {
	cfg := Default()
	cfg.Endpoint = "wss://api.example.com/ws"
	cfg.TokenEndpoint = "https://api.example.com/token"
	require.ErrorContains(t, cfg.Validate(), "user_id is required")

	cfg.UserID = "user-1"
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
