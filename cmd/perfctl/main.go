package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"codeberg.org/mutker/perfctl/internal/config"
	"codeberg.org/mutker/perfctl/internal/drs"
	"codeberg.org/mutker/perfctl/internal/governor"
	"codeberg.org/mutker/perfctl/internal/history"
	"codeberg.org/mutker/perfctl/internal/lod"
	"codeberg.org/mutker/perfctl/internal/logger"
	"codeberg.org/mutker/perfctl/internal/pid"
	"codeberg.org/mutker/perfctl/internal/profile"
	"codeberg.org/mutker/perfctl/internal/telemetry"
	"codeberg.org/mutker/perfctl/internal/thermal"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove PID file")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
	}
	logger.Info().Msg("Exiting...")
}

func run(ctx context.Context) error {
	frames := telemetry.NewFrameFeed()
	provider := telemetry.NewSystemProvider(frames)

	prof := resolveProfile()
	logger.Info().
		Str("brand", prof.Brand).
		Str("model", prof.Model).
		Str("tier", prof.Tier.String()).
		Float64("optimization_multiplier", prof.OptimizationMultiplier).
		Msg("Device profile resolved")

	drsCtl := drs.New()
	lodCtl := lod.New()
	thermalCtl := thermal.New()

	drsCtl.InitializeForDevice(&prof)
	lodCtl.InitializeForDevice(&prof)
	thermalCtl.InitializeForDevice(&prof)

	// Thermal throttle drives resolution and quality through the shared
	// optimization contract.
	thermalCtl.AddTarget(drsCtl)
	thermalCtl.AddTarget(lodCtl.ThrottleAdapter())

	gov := governor.New(provider, &prof, drsCtl, lodCtl, thermalCtl, governor.Config{
		Interval:        time.Duration(cfg.Interval) * time.Second,
		DRSInterval:     time.Duration(cfg.DRSInterval) * time.Second,
		ThermalInterval: time.Duration(cfg.ThermalInterval) * time.Second,
		Mode:            cfg.Mode(prof.RecommendedMode),
		Aggressiveness:  cfg.Aggressiveness,
		TargetFPS:       float64(cfg.TargetFPS),
		MaxTemperatureC: cfg.MaxTemperature,
		MaxRAMPct:       cfg.MaxRAMPct,
		EnableDRS:       cfg.EnableDRS,
		EnableLOD:       cfg.EnableLOD,
		EnableThermal:   cfg.EnableThermal,
		Monitor:         cfg.Monitor,
	})

	collector, err := history.NewService(history.Config{
		Enabled: cfg.History,
		DBPath:  cfg.HistoryDB,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := collector.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close session history")
		}
	}()

	gov.Subscribe(func(ev governor.Event) {
		rec := &history.Event{
			Timestamp: ev.Timestamp,
			Category:  ev.Category,
			Magnitude: ev.Magnitude,
			Reasons:   strings.Join(ev.Reasons, ","),
		}
		if err := collector.RecordEvent(ctx, rec); err != nil {
			logger.Error().Err(err).Msg("failed to record optimization event")
		}
	})
	gov.SubscribeSnapshot(func(s governor.Snapshot) {
		rec := &history.Snapshot{
			Timestamp:       s.Sample.Timestamp,
			FPS:             s.Sample.FPS,
			RAMUsagePct:     s.Sample.RAMUsagePct,
			CPUUsagePct:     s.Sample.CPUUsagePct,
			TemperatureC:    s.Sample.TemperatureC,
			ThermalState:    s.ThermalState.String(),
			Throttle:        s.ThrottleStrength,
			ResolutionScale: s.ResolutionScale,
			LODLevel:        s.LODLevel,
			Corrected:       s.Corrected,
		}
		if err := collector.RecordSnapshot(ctx, rec); err != nil {
			logger.Error().Err(err).Msg("failed to record telemetry snapshot")
		}
	})

	return gov.Run(ctx)
}

// resolveProfile builds the device identity from config overrides and host
// probing, then resolves it against the static profile table. Resolution
// never fails; unknown devices get a synthesized profile.
func resolveProfile() profile.DeviceProfile {
	brand := cfg.Brand
	model := cfg.Model
	codename := cfg.Codename
	chipset := cfg.Chipset
	ramMB := cfg.RAMMB

	if ramMB <= 0 {
		ramMB = telemetry.TotalRAMMB()
	}

	return profile.Resolve(profile.NewStaticStore(), brand, model, codename, ramMB, chipset)
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
