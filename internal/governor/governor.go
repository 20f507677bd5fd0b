// Package governor coordinates the three optimization controllers. Each
// cycle it samples telemetry once, checks the same values against every
// threshold, and routes a combined correction strength to the violated
// paths. Recovery is deliberately slower than correction: corrections are
// immediate and proportional, recovery is a fixed debounced step.
package governor

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/perfctl/internal/drs"
	"codeberg.org/mutker/perfctl/internal/lod"
	"codeberg.org/mutker/perfctl/internal/logger"
	"codeberg.org/mutker/perfctl/internal/profile"
	"codeberg.org/mutker/perfctl/internal/telemetry"
	"codeberg.org/mutker/perfctl/internal/thermal"
)

const (
	DefaultInterval = 1 * time.Second

	fpsViolationFactor = 0.9
	fpsComfortFactor   = 1.1
	comfortFactor      = 0.8

	// Each additional violated condition raises strength by 20%.
	reasonStackFactor = 0.2

	recoveryDebounce = 10 * time.Second
	recoveryStep     = 0.1

	defaultMaxRAMPct = 90.0
)

// Config carries the coordinator's tunable surface. Zero values fall back
// to defaults; out-of-range values are clamped by the caller (config layer).
type Config struct {
	Interval        time.Duration
	ThermalInterval time.Duration
	DRSInterval     time.Duration

	Mode            profile.PerformanceMode
	Aggressiveness  float64 // <0 means "use mode default"
	TargetFPS       float64 // <=0 means "use mode default"
	MaxTemperatureC float64 // <=0 means "use device profile"
	MaxRAMPct       float64 // <=0 means default

	EnableDRS     bool
	EnableLOD     bool
	EnableThermal bool
	Monitor       bool
}

type Governor struct {
	mu sync.Mutex

	provider telemetry.Provider
	prof     *profile.DeviceProfile
	drs      *drs.Controller
	lod      *lod.Controller
	thermal  *thermal.Controller
	purger   CachePurger

	cfg            Config
	mode           profile.PerformanceMode
	aggressiveness float64
	targetFPS      float64
	maxTemp        float64
	maxRAM         float64

	lastAdjustment time.Time
	subscribers    []func(Event)
	snapshotSubs   []func(Snapshot)
	lastSnapshot   Snapshot
}

// modeDefaults returns the base target FPS and aggressiveness for a mode,
// before device scaling.
func modeDefaults(mode profile.PerformanceMode) (fps, aggressiveness float64) {
	switch mode {
	case profile.ModeBatterySaver:
		return 30, 0.3
	case profile.ModeHighPerformance:
		return 120, 1.0
	default:
		return 60, 0.7
	}
}

func New(
	provider telemetry.Provider,
	prof *profile.DeviceProfile,
	drsCtl *drs.Controller,
	lodCtl *lod.Controller,
	thermalCtl *thermal.Controller,
	cfg Config,
) *Governor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.ThermalInterval <= 0 {
		cfg.ThermalInterval = thermal.DefaultInterval
	}
	if cfg.DRSInterval <= 0 {
		cfg.DRSInterval = drs.DefaultInterval
	}
	if cfg.MaxRAMPct <= 0 {
		cfg.MaxRAMPct = defaultMaxRAMPct
	}

	g := &Governor{
		provider: provider,
		prof:     prof,
		drs:      drsCtl,
		lod:      lodCtl,
		thermal:  thermalCtl,
		cfg:      cfg,
		maxRAM:   cfg.MaxRAMPct,
	}

	g.maxTemp = cfg.MaxTemperatureC
	if g.maxTemp <= 0 {
		g.maxTemp = prof.Thermal.Critical
	}

	g.applyMode(cfg.Mode, cfg.Aggressiveness, cfg.TargetFPS)

	return g
}

// SetCachePurger wires the engine cache-clear hook for the memory path.
func (g *Governor) SetCachePurger(p CachePurger) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.purger = p
}

// Subscribe registers an optimization-event observer.
func (g *Governor) Subscribe(fn func(Event)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.subscribers = append(g.subscribers, fn)
}

// SubscribeSnapshot registers a per-cycle snapshot observer.
func (g *Governor) SubscribeSnapshot(fn func(Snapshot)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.snapshotSubs = append(g.snapshotSubs, fn)
}

// SetMode changes the performance mode and propagates the derived target
// FPS and aggressiveness to all controllers before the next cycle.
func (g *Governor) SetMode(mode profile.PerformanceMode) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.applyMode(mode, -1, 0)
	g.emit(Event{
		Timestamp: time.Now(),
		Category:  CategoryModeChange,
		Magnitude: g.aggressiveness,
		Reasons:   []string{mode.String()},
	})
}

// SetAggressiveness overrides the mode's default aggressiveness.
func (g *Governor) SetAggressiveness(a float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.aggressiveness = clamp01(a)
}

func (g *Governor) applyMode(mode profile.PerformanceMode, aggressiveness, targetFPS float64) {
	baseFPS, baseAggr := modeDefaults(mode)

	g.mode = mode
	g.targetFPS = clampFPS(baseFPS * g.prof.OptimizationMultiplier)
	if targetFPS > 0 {
		g.targetFPS = clampFPS(targetFPS)
	}
	g.aggressiveness = clamp01(baseAggr * g.prof.OptimizationMultiplier)
	if aggressiveness >= 0 {
		g.aggressiveness = clamp01(aggressiveness)
	}

	g.drs.SetTargetFPS(g.targetFPS)

	logger.Info().
		Str("mode", mode.String()).
		Float64("target_fps", g.targetFPS).
		Float64("aggressiveness", g.aggressiveness).
		Msg("Performance mode applied")
}

// Cycle runs one coordinator pass. Telemetry is sampled exactly once; the
// same sample drives every decision in the pass.
func (g *Governor) Cycle(now time.Time) Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	sample := telemetry.Snapshot(g.provider, now)

	var reasons []string
	if sample.FPS < g.targetFPS*fpsViolationFactor {
		reasons = append(reasons, ReasonLowFPS)
	}
	if sample.RAMUsagePct > g.maxRAM {
		reasons = append(reasons, ReasonHighRAM)
	}
	if sample.TemperatureC > g.maxTemp {
		reasons = append(reasons, ReasonHighTemp)
	}

	corrected := false
	if len(reasons) > 0 && !g.cfg.Monitor {
		g.correct(now, sample, reasons)
		corrected = true
	} else if g.healthy(sample) && !g.cfg.Monitor {
		g.recover(now)
	}

	g.lastSnapshot = Snapshot{
		Sample:           sample,
		ThermalState:     g.thermal.State(),
		ThrottleStrength: g.thermal.Strength(),
		ResolutionScale:  g.drs.Scale(),
		LODLevel:         g.lod.Level(),
		Corrected:        corrected,
	}

	for _, fn := range g.snapshotSubs {
		fn(g.lastSnapshot)
	}

	return g.lastSnapshot
}

func (g *Governor) correct(now time.Time, sample telemetry.Sample, reasons []string) {
	strength := g.aggressiveness *
		(1 + reasonStackFactor*float64(len(reasons)-1)) *
		g.prof.OptimizationMultiplier
	strength = clamp01(strength)

	for _, reason := range reasons {
		switch reason {
		case ReasonLowFPS:
			if g.cfg.EnableDRS {
				g.drs.ApplyOptimization(strength)
			}
			if g.cfg.EnableLOD {
				g.lod.ApplyOptimization(1 - strength)
			}
		case ReasonHighRAM:
			if g.purger != nil {
				g.purger.PurgeCaches()
			}
			if g.cfg.EnableLOD {
				g.lod.ApplyMemoryOptimization(strength)
			}
		case ReasonHighTemp:
			if g.cfg.EnableThermal {
				g.thermal.RequestThrottle(strength)
			}
		}
	}

	g.lastAdjustment = now

	logger.Debug().
		Float64("strength", strength).
		Strs("reasons", reasons).
		Float64("fps", sample.FPS).
		Float64("ram_pct", sample.RAMUsagePct).
		Float64("temperature", sample.TemperatureC).
		Msg("Correction applied")

	g.emit(Event{
		Timestamp: now,
		Category:  CategoryCorrection,
		Magnitude: strength,
		Reasons:   reasons,
	})
}

// healthy reports whether every metric is comfortably inside its threshold.
func (g *Governor) healthy(sample telemetry.Sample) bool {
	return sample.FPS > g.targetFPS*fpsComfortFactor &&
		sample.RAMUsagePct < g.maxRAM*comfortFactor &&
		sample.TemperatureC < g.maxTemp*comfortFactor
}

// recover issues the fixed de-escalation nudge to DRS and LOD. The thermal
// throttle is deliberately excluded: its strength decays only through its
// own recovery rate.
func (g *Governor) recover(now time.Time) {
	if !g.lastAdjustment.IsZero() && now.Sub(g.lastAdjustment) < recoveryDebounce {
		return
	}
	if g.drsAtMax() && g.lod.Level() >= 1.0 {
		return
	}

	if g.cfg.EnableDRS {
		g.drs.ReduceOptimization(recoveryStep)
	}
	if g.cfg.EnableLOD {
		g.lod.ReduceOptimization(recoveryStep)
	}
	g.lastAdjustment = now

	g.emit(Event{
		Timestamp: now,
		Category:  CategoryRecovery,
		Magnitude: recoveryStep,
	})
}

func (g *Governor) drsAtMax() bool {
	return g.drs.Scale() >= g.prof.Resolution.Max
}

// Run drives all controller ticks from one goroutine until the context is
// cancelled, then resets every controller to its neutral state.
func (g *Governor) Run(ctx context.Context) error {
	coordTicker := time.NewTicker(g.cfg.Interval)
	defer coordTicker.Stop()
	drsTicker := time.NewTicker(g.cfg.DRSInterval)
	defer drsTicker.Stop()
	thermalTicker := time.NewTicker(g.cfg.ThermalInterval)
	defer thermalTicker.Stop()

	if g.cfg.Monitor {
		logger.Info().Msg("Monitor mode activated. Logging device status...")
	}

	for {
		select {
		case <-ctx.Done():
			g.Stop()
			return nil
		case now := <-coordTicker.C:
			snapshot := g.Cycle(now)
			g.logSnapshot(snapshot)
		case now := <-drsTicker.C:
			if g.cfg.EnableDRS && !g.cfg.Monitor {
				g.drs.Tick(now, g.provider.SampleFPS(), true)
			}
		case now := <-thermalTicker.C:
			if g.cfg.EnableThermal && !g.cfg.Monitor {
				g.thermal.Tick(now, g.provider.SampleTemperatureC(), true)
			}
		}
	}
}

// Stop halts corrective behavior and flushes every controller to its
// maximum-quality state in a single pass.
func (g *Governor) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.drs.StopOptimization()
	g.lod.StopOptimization()
	g.thermal.StopOptimization()
	logger.Info().Msg("Controllers reset to neutral state")
}

// LastSnapshot returns the most recent cycle snapshot.
func (g *Governor) LastSnapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastSnapshot
}

// Mode returns the active performance mode.
func (g *Governor) Mode() profile.PerformanceMode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// Aggressiveness returns the active aggressiveness dial.
func (g *Governor) Aggressiveness() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.aggressiveness
}

// TargetFPS returns the active frame-rate goal.
func (g *Governor) TargetFPS() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.targetFPS
}

func (g *Governor) emit(ev Event) {
	for _, fn := range g.subscribers {
		fn(ev)
	}
}

func (g *Governor) logSnapshot(s Snapshot) {
	logger.Info().
		Float64("fps", s.Sample.FPS).
		Float64("ram_pct", s.Sample.RAMUsagePct).
		Float64("cpu_pct", s.Sample.CPUUsagePct).
		Float64("temperature", s.Sample.TemperatureC).
		Str("thermal_state", s.ThermalState.String()).
		Float64("throttle", s.ThrottleStrength).
		Float64("resolution_scale", s.ResolutionScale).
		Float64("lod_level", s.LODLevel).
		Bool("corrected", s.Corrected).
		Msg("")
}

func clampFPS(fps float64) float64 {
	if fps < 15 {
		return 15
	}
	if fps > 240 {
		return 240
	}

	return fps
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}

	return v
}
