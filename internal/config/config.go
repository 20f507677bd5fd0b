// Package config loads the daemon configuration from a TOML file,
// environment variables (PERFCTL_ prefix), and command-line flags, in
// ascending precedence. Out-of-range numeric values are clamped silently to
// the nearest valid bound; any subset of options may be supplied.
package config

import (
	"os"
	"strings"

	"codeberg.org/mutker/perfctl/internal/errors"
	"codeberg.org/mutker/perfctl/internal/logger"
	"codeberg.org/mutker/perfctl/internal/profile"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultInterval        = 1
	defaultDRSInterval     = 1
	defaultThermalInterval = 2
	defaultMaxRAMPct       = 90.0
	defaultHistoryDB       = "/var/lib/perfctl/history.db"

	minTargetFPS, maxTargetFPS           = 15, 240
	minTemperature, maxTemperature       = 30.0, 70.0
	minRAMThreshold, maxRAMThreshold     = 50.0, 98.0
	minAggressiveness, maxAggressiveness = 0.0, 1.0
)

type Config struct {
	Interval        int     `mapstructure:"interval"`
	DRSInterval     int     `mapstructure:"drs_interval"`
	ThermalInterval int     `mapstructure:"thermal_interval"`
	PerformanceMode string  `mapstructure:"performance_mode"`
	Aggressiveness  float64 `mapstructure:"aggressiveness"`
	TargetFPS       int     `mapstructure:"target_fps"`
	MaxTemperature  float64 `mapstructure:"max_temperature"`
	MaxRAMPct       float64 `mapstructure:"max_ram_pct"`
	EnableDRS       bool    `mapstructure:"enable_drs"`
	EnableLOD       bool    `mapstructure:"enable_lod"`
	EnableThermal   bool    `mapstructure:"enable_thermal"`
	Monitor         bool    `mapstructure:"monitor"`
	Debug           bool    `mapstructure:"debug"`
	Verbose         bool    `mapstructure:"verbose"`
	LogLevel        string  `mapstructure:"log_level"`
	History         bool    `mapstructure:"history"`
	HistoryDB       string  `mapstructure:"history_db"`

	// Device identity overrides for hosts where probing is unavailable.
	Brand    string `mapstructure:"brand"`
	Model    string `mapstructure:"model"`
	Codename string `mapstructure:"codename"`
	Chipset  string `mapstructure:"chipset"`
	RAMMB    int    `mapstructure:"ram_mb"`
}

func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	setDefaults(v)

	flags := pflag.NewFlagSet("perfctl", pflag.ContinueOnError)
	flags.Int("interval", defaultInterval, "Coordinator cycle interval in seconds")
	flags.String("performance-mode", "", "Performance mode: battery_saver, balanced or high_performance")
	flags.Float64("aggressiveness", -1, "Optimization aggressiveness [0,1]")
	flags.Int("target-fps", 0, "Target frame rate")
	flags.Float64("max-temperature", 0, "Maximum temperature threshold in °C")
	flags.Bool("monitor", false, "Only monitor telemetry and controller state")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	// Flags override file and environment values, but only when set.
	flagToKey := map[string]string{
		"interval":         "interval",
		"performance-mode": "performance_mode",
		"aggressiveness":   "aggressiveness",
		"target-fps":       "target_fps",
		"max-temperature":  "max_temperature",
		"monitor":          "monitor",
		"debug":            "debug",
		"verbose":          "verbose",
	}
	flags.Visit(func(f *pflag.Flag) {
		if key, ok := flagToKey[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})

	v.SetEnvPrefix("PERFCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if !isValidLogLevel(config.LogLevel) {
		return nil, errFactory.WithData(errors.ErrInvalidLogLevel, config.LogLevel)
	}

	config.clamp()

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interval", defaultInterval)
	v.SetDefault("drs_interval", defaultDRSInterval)
	v.SetDefault("thermal_interval", defaultThermalInterval)
	v.SetDefault("performance_mode", "")
	v.SetDefault("aggressiveness", -1.0)
	v.SetDefault("target_fps", 0)
	v.SetDefault("max_temperature", 0.0)
	v.SetDefault("max_ram_pct", defaultMaxRAMPct)
	v.SetDefault("enable_drs", true)
	v.SetDefault("enable_lod", true)
	v.SetDefault("enable_thermal", true)
	v.SetDefault("monitor", false)
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("history", false)
	v.SetDefault("history_db", defaultHistoryDB)
	v.SetDefault("brand", "")
	v.SetDefault("model", "")
	v.SetDefault("codename", "")
	v.SetDefault("chipset", "")
	v.SetDefault("ram_mb", 0)
}

func readConfigFile(v *viper.Viper) error {
	errFactory := errors.New()

	if path := os.Getenv("PERFCTL_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file").WithData(err.Error())
		}
		return nil
	}

	v.SetConfigName("perfctl")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/perfctl")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file").WithData(err.Error())
		}
	}

	return nil
}

// clamp silently pulls out-of-range values to the nearest valid bound.
// Sentinel values (zero or negative "unset" markers) pass through.
func (c *Config) clamp() {
	if c.Interval < 1 {
		c.Interval = defaultInterval
	}
	if c.DRSInterval < 1 {
		c.DRSInterval = defaultDRSInterval
	}
	if c.ThermalInterval < 1 {
		c.ThermalInterval = defaultThermalInterval
	}

	if c.TargetFPS != 0 {
		c.TargetFPS = clampInt(c.TargetFPS, minTargetFPS, maxTargetFPS)
	}
	if c.Aggressiveness >= 0 {
		c.Aggressiveness = clampFloat(c.Aggressiveness, minAggressiveness, maxAggressiveness)
	}
	if c.MaxTemperature != 0 {
		c.MaxTemperature = clampFloat(c.MaxTemperature, minTemperature, maxTemperature)
	}
	c.MaxRAMPct = clampFloat(c.MaxRAMPct, minRAMThreshold, maxRAMThreshold)
}

// Mode maps the configured performance mode onto the domain enum. An empty
// value defers to the device profile's recommendation; an unrecognized one
// falls back to it with a warning.
func (c *Config) Mode(recommended profile.PerformanceMode) profile.PerformanceMode {
	switch strings.ToLower(c.PerformanceMode) {
	case "":
		return recommended
	case "battery_saver", "battery-saver":
		return profile.ModeBatterySaver
	case "balanced":
		return profile.ModeBalanced
	case "high_performance", "high-performance":
		return profile.ModeHighPerformance
	default:
		logger.Warn().
			Str("performance_mode", c.PerformanceMode).
			Str("fallback", recommended.String()).
			Msg("Unrecognized performance mode")
		return recommended
	}
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warning", "error":
		return true
	default:
		return false
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
