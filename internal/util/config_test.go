package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 4, cfg.PingCount)
	assert.Equal(t, 30, cfg.TraceMaxHops)
	assert.Equal(t, 2*time.Second, cfg.ScanTimeout)
	assert.Equal(t, "255.255.255.255", cfg.WOLBroadcast)
	assert.Equal(t, 9, cfg.WOLPort)
	assert.Equal(t, 8080, cfg.WebPort)
	assert.True(t, cfg.HistoryEnabled)
	assert.Equal(t, ".netkit", filepath.Base(cfg.DataDir))
}

func TestLoadConfigFromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "netkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ping_count: 7
trace_wait: 5s
dns_server: 1.1.1.1
history_enabled: false
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.PingCount)
	assert.Equal(t, 5*time.Second, cfg.TraceWait)
	assert.Equal(t, "1.1.1.1", cfg.DNSServer)
	assert.False(t, cfg.HistoryEnabled)
	assert.Equal(t, 30, cfg.TraceMaxHops)
}

func TestLoadConfigEnvironment(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NETKIT_WEB_PORT", "9999")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.WebPort)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	assert.DirExists(t, dir)
}
