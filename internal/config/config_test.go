package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 10000, cfg.Server.Port)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, "data.csv", cfg.Dashboard.DataFile)
	assert.Equal(t, 10, cfg.Dashboard.PageSize)
	assert.Equal(t, 6, cfg.Dashboard.RadarSize)
	assert.Equal(t, "Consumption", cfg.AutoLoad.Consumption)
	assert.Equal(t, "Consumption", cfg.AutoLoad.RadarValue)
	assert.Equal(t, "Monthly Consumption (kWh)", cfg.Upload.Consumption)
	assert.Equal(t, "CO2 Offset (kg)", cfg.Upload.RadarValue)
	assert.Equal(t, "Cluster", cfg.Upload.Cluster)
	assert.Empty(t, cfg.AutoLoad.Cluster)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 8080
  read_timeout: 5s
dashboard:
  data_file: households.csv
rate_per_kwh: 0.21
autoload:
  consumption: kWh
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "unset keys keep defaults")
	assert.Equal(t, "households.csv", cfg.Dashboard.DataFile)
	assert.Equal(t, 0.21, cfg.RatePerKWh)
	assert.Equal(t, "kWh", cfg.AutoLoad.Consumption)
	assert.Equal(t, "Location", cfg.AutoLoad.Location)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8080\n"), 0600))

	t.Setenv("PERSONADASH_SERVER_PORT", "9090")
	t.Setenv("PERSONADASH_DASHBOARD_DATA_FILE", "env.csv")
	t.Setenv("PERSONADASH_SERVER_DEBUG", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "env.csv", cfg.Dashboard.DataFile)
	assert.False(t, cfg.Server.Debug)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad yaml", content: "server: [\n"},
		{name: "port out of range", content: "server:\n  port: 70000\n"},
		{name: "unknown log level", content: "logging:\n  level: loud\n"},
		{name: "page size zero", content: "dashboard:\n  page_size: 0\n"},
		{name: "empty consumption column", content: "upload:\n  consumption: \"\"\n"},
		{name: "mqtt without broker", content: "mqtt:\n  enabled: true\n"},
		{name: "home assistant without token", content: "home_assistant:\n  enabled: true\n  url: http://ha.local\n  entity_id: sensor.x\n"},
		{name: "negative rate", content: "rate_per_kwh: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Server.Port = 12345
	cfg.HomeAssistant = HAConfig{Enabled: true, URL: "http://ha.local:8123", Token: "t", EntityID: "sensor.mean"}

	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestProfile(t *testing.T) {
	cfg := Default()

	p, err := cfg.Profile("upload")
	require.NoError(t, err)
	assert.Equal(t, "Cluster", p.Cluster)

	p, err = cfg.Profile("autoload")
	require.NoError(t, err)
	assert.Equal(t, "Consumption", p.Consumption)

	_, err = cfg.Profile("other")
	assert.Error(t, err)
}

func TestServerConfig_Addr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:10000", Default().Server.Addr())
}
