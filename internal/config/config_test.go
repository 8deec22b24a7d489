package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.BindAddr)
	assert.Equal(t, 50*time.Millisecond, cfg.Network.TickRate)
	assert.Equal(t, 60, cfg.RateLimit.MessagesPerSecond)
	assert.False(t, cfg.Database.Enabled)
	assert.True(t, cfg.Save.AllowUnsigned)
}

func TestLoadOverlaysFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	body := `
[server]
bind_addr = "127.0.0.1:9000"

[network]
tick_rate = "25ms"
read_timeout = "2m"

[rate_limit]
messages_per_second = 30

[save]
mac_key = "0badc0de"
allow_unsigned = false
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.BindAddr)
	assert.Equal(t, 25*time.Millisecond, cfg.Network.TickRate)
	assert.Equal(t, 2*time.Minute, cfg.Network.ReadTimeout)
	assert.Equal(t, 30, cfg.RateLimit.MessagesPerSecond)
	assert.Equal(t, "0badc0de", cfg.Save.MACKey)
	assert.False(t, cfg.Save.AllowUnsigned)

	// untouched sections keep defaults
	assert.Equal(t, "/ws", cfg.Server.WSPath)
	assert.Equal(t, 3*time.Second, cfg.Game.RespawnDelay)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nname="), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
