package config

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/perfctl/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadWithFile(t *testing.T, contents string) (*Config, error) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "perfctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	t.Setenv("PERFCTL_CONFIG", path)

	oldArgs := os.Args
	os.Args = []string{"perfctl"}
	t.Cleanup(func() { os.Args = oldArgs })

	return Load()
}

func TestDefaults(t *testing.T) {
	cfg, err := loadWithFile(t, "")
	require.NoError(t, err)

	assert.Equal(t, defaultInterval, cfg.Interval)
	assert.Equal(t, defaultDRSInterval, cfg.DRSInterval)
	assert.Equal(t, defaultThermalInterval, cfg.ThermalInterval)
	assert.Empty(t, cfg.PerformanceMode)
	assert.Less(t, cfg.Aggressiveness, 0.0)
	assert.Zero(t, cfg.TargetFPS)
	assert.Zero(t, cfg.MaxTemperature)
	assert.InDelta(t, defaultMaxRAMPct, cfg.MaxRAMPct, 0.001)
	assert.True(t, cfg.EnableDRS)
	assert.True(t, cfg.EnableLOD)
	assert.True(t, cfg.EnableThermal)
	assert.False(t, cfg.Monitor)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.History)
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := loadWithFile(t, `
performance_mode = "battery_saver"
aggressiveness = 0.5
target_fps = 90
max_temperature = 45.0
max_ram_pct = 85.0
enable_lod = false
monitor = true
log_level = "debug"
history = true
history_db = "/tmp/perfctl-test.db"
brand = "Samsung"
model = "Galaxy S24 Ultra"
ram_mb = 12288
`)
	require.NoError(t, err)

	assert.Equal(t, "battery_saver", cfg.PerformanceMode)
	assert.InDelta(t, 0.5, cfg.Aggressiveness, 0.001)
	assert.Equal(t, 90, cfg.TargetFPS)
	assert.InDelta(t, 45.0, cfg.MaxTemperature, 0.001)
	assert.InDelta(t, 85.0, cfg.MaxRAMPct, 0.001)
	assert.False(t, cfg.EnableLOD)
	assert.True(t, cfg.EnableDRS)
	assert.True(t, cfg.Monitor)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.History)
	assert.Equal(t, "/tmp/perfctl-test.db", cfg.HistoryDB)
	assert.Equal(t, "Samsung", cfg.Brand)
	assert.Equal(t, 12288, cfg.RAMMB)
}

func TestOutOfRangeValuesClampSilently(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		check    func(t *testing.T, cfg *Config)
	}{
		{
			name:     "target fps above ceiling",
			contents: "target_fps = 500",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, maxTargetFPS, cfg.TargetFPS)
			},
		},
		{
			name:     "target fps below floor",
			contents: "target_fps = 5",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, minTargetFPS, cfg.TargetFPS)
			},
		},
		{
			name:     "aggressiveness above one",
			contents: "aggressiveness = 3.0",
			check: func(t *testing.T, cfg *Config) {
				assert.InDelta(t, maxAggressiveness, cfg.Aggressiveness, 0.001)
			},
		},
		{
			name:     "temperature out of range",
			contents: "max_temperature = 95.0",
			check: func(t *testing.T, cfg *Config) {
				assert.InDelta(t, maxTemperature, cfg.MaxTemperature, 0.001)
			},
		},
		{
			name:     "ram threshold below floor",
			contents: "max_ram_pct = 10.0",
			check: func(t *testing.T, cfg *Config) {
				assert.InDelta(t, minRAMThreshold, cfg.MaxRAMPct, 0.001)
			},
		},
		{
			name:     "non-positive interval falls back to default",
			contents: "interval = 0",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, defaultInterval, cfg.Interval)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadWithFile(t, tt.contents)
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestInvalidLogLevelRejected(t *testing.T) {
	_, err := loadWithFile(t, `log_level = "shout"`)
	require.Error(t, err)
}

func TestModeMapping(t *testing.T) {
	tests := []struct {
		value string
		want  profile.PerformanceMode
	}{
		{"", profile.ModeHighPerformance},
		{"battery_saver", profile.ModeBatterySaver},
		{"Balanced", profile.ModeBalanced},
		{"high_performance", profile.ModeHighPerformance},
		{"high-performance", profile.ModeHighPerformance},
		{"overdrive", profile.ModeHighPerformance}, // unknown falls back
	}

	for _, tt := range tests {
		cfg := &Config{PerformanceMode: tt.value}
		assert.Equal(t, tt.want, cfg.Mode(profile.ModeHighPerformance), "value %q", tt.value)
	}
}
