package governor_test

import (
	"testing"
	"time"

	"codeberg.org/mutker/perfctl/internal/drs"
	"codeberg.org/mutker/perfctl/internal/governor"
	"codeberg.org/mutker/perfctl/internal/lod"
	"codeberg.org/mutker/perfctl/internal/profile"
	"codeberg.org/mutker/perfctl/internal/telemetry"
	"codeberg.org/mutker/perfctl/internal/thermal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	provider *telemetry.StaticProvider
	drs      *drs.Controller
	lod      *lod.Controller
	thermal  *thermal.Controller
	gov      *governor.Governor
	events   []governor.Event
}

func ultraProfile() *profile.DeviceProfile {
	return &profile.DeviceProfile{
		Brand: "Samsung", Model: "Galaxy S24 Ultra",
		Tier:                   profile.TierFlagship,
		Thermal:                profile.ThermalThresholds{Normal: 38, Warning: 42, Critical: 48},
		Resolution:             profile.ScaleBounds{Min: 0.6, Max: 1.2},
		OptimizationMultiplier: 1.0,
		DRSMultiplier:          1.2,
		LODMultiplier:          1.0,
	}
}

func newFixture(t *testing.T, cfg governor.Config) *fixture {
	t.Helper()

	prof := ultraProfile()
	f := &fixture{
		provider: telemetry.NewStaticProvider(),
		drs:      drs.New(),
		lod:      lod.New(),
		thermal:  thermal.New(),
	}
	f.drs.InitializeForDevice(prof)
	f.lod.InitializeForDevice(prof)
	f.thermal.InitializeForDevice(prof)

	f.gov = governor.New(f.provider, prof, f.drs, f.lod, f.thermal, cfg)
	f.gov.Subscribe(func(ev governor.Event) {
		f.events = append(f.events, ev)
	})

	return f
}

func allEnabled() governor.Config {
	return governor.Config{
		Mode:           profile.ModeBalanced,
		Aggressiveness: -1,
		EnableDRS:      true,
		EnableLOD:      true,
		EnableThermal:  true,
	}
}

func (f *fixture) lastEvent(t *testing.T) governor.Event {
	t.Helper()
	require.NotEmpty(t, f.events)

	return f.events[len(f.events)-1]
}

func TestModeDefaults(t *testing.T) {
	tests := []struct {
		mode     profile.PerformanceMode
		wantFPS  float64
		wantAggr float64
	}{
		{profile.ModeBatterySaver, 30, 0.3},
		{profile.ModeBalanced, 60, 0.7},
		{profile.ModeHighPerformance, 120, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			cfg := allEnabled()
			cfg.Mode = tt.mode
			f := newFixture(t, cfg)

			assert.Equal(t, tt.wantFPS, f.gov.TargetFPS())
			assert.InDelta(t, tt.wantAggr, f.gov.Aggressiveness(), 1e-9)
			// Propagated synchronously to DRS.
			assert.Equal(t, tt.wantFPS, f.drs.TargetFPS())
		})
	}
}

func TestHealthyCycleDoesNothing(t *testing.T) {
	f := newFixture(t, allEnabled())
	f.provider.Set(70, 30, 40, 30, 30) // comfortably healthy, nothing degraded

	f.gov.Cycle(time.Unix(100, 0))

	assert.Empty(t, f.events)
	assert.Equal(t, 1.2, f.drs.Scale())
	assert.Equal(t, 1.0, f.lod.Level())
}

func TestLowFPSRoutesToDRSAndLOD(t *testing.T) {
	f := newFixture(t, allEnabled())
	f.provider.Set(40, 30, 40, 30, 30) // below 60×0.9

	f.gov.Cycle(time.Unix(100, 0))

	ev := f.lastEvent(t)
	assert.Equal(t, governor.CategoryCorrection, ev.Category)
	assert.Equal(t, []string{governor.ReasonLowFPS}, ev.Reasons)
	// Single violation: strength = aggressiveness × 1 × multiplier = 0.7
	assert.InDelta(t, 0.7, ev.Magnitude, 1e-9)
	assert.Less(t, f.drs.Scale(), 1.2)
	// LOD receives 1 - strength as its performance ratio.
	assert.InDelta(t, 0.3, f.lod.Level(), 1e-9)
	// Thermal untouched by an FPS violation.
	assert.Equal(t, 0.0, f.thermal.Strength())
}

func TestStackedViolationsRaiseStrength(t *testing.T) {
	f := newFixture(t, allEnabled())
	f.provider.Set(40, 30, 95, 30, 30) // FPS and RAM violated

	f.gov.Cycle(time.Unix(100, 0))

	ev := f.lastEvent(t)
	require.Len(t, ev.Reasons, 2)
	// 0.7 × (1 + 0.2×1) × 1.0 = 0.84
	assert.InDelta(t, 0.84, ev.Magnitude, 1e-9)
}

func TestStrengthClampedToOne(t *testing.T) {
	cfg := allEnabled()
	cfg.Mode = profile.ModeHighPerformance
	f := newFixture(t, cfg)
	f.provider.Set(10, 60, 99, 90, 90) // all three violated at aggressiveness 1.0

	f.gov.Cycle(time.Unix(100, 0))

	assert.LessOrEqual(t, f.lastEvent(t).Magnitude, 1.0)
}

type fakePurger struct {
	purges int
}

func (p *fakePurger) PurgeCaches() { p.purges++ }

func TestHighRAMRoutesToMemoryPath(t *testing.T) {
	f := newFixture(t, allEnabled())
	purger := &fakePurger{}
	f.gov.SetCachePurger(purger)
	f.provider.Set(70, 30, 95, 30, 30) // only RAM violated

	f.gov.Cycle(time.Unix(100, 0))

	assert.Equal(t, 1, purger.purges)
	assert.Less(t, f.lod.Level(), 1.0)
	// DRS is not part of the memory path.
	assert.Equal(t, 1.2, f.drs.Scale())
}

func TestHighTemperatureRoutesToThermal(t *testing.T) {
	f := newFixture(t, allEnabled())
	f.provider.Set(70, 55, 40, 30, 30) // only temperature violated (max = critical 48)

	f.gov.Cycle(time.Unix(100, 0))

	// The throttle floor takes effect on the thermal controller's own tick.
	f.thermal.Tick(time.Unix(101, 0), 55, true)
	f.thermal.Tick(time.Unix(103, 0), 55, true)

	assert.Greater(t, f.thermal.Strength(), 0.0)
}

func TestRecoveryIsDebouncedFixedStep(t *testing.T) {
	f := newFixture(t, allEnabled())

	// Degrade first.
	f.provider.Set(40, 30, 40, 30, 30)
	f.gov.Cycle(time.Unix(100, 0))
	degradedScale := f.drs.Scale()
	degradedLevel := f.lod.Level()
	require.Less(t, degradedScale, 1.2)

	// Healthy but within the debounce window: no recovery.
	f.provider.Set(70, 30, 40, 30, 30)
	f.gov.Cycle(time.Unix(105, 0))
	assert.Equal(t, degradedScale, f.drs.Scale())
	assert.Equal(t, degradedLevel, f.lod.Level())

	// Past the debounce window: one fixed nudge.
	f.gov.Cycle(time.Unix(111, 0))
	ev := f.lastEvent(t)
	assert.Equal(t, governor.CategoryRecovery, ev.Category)
	assert.InDelta(t, 0.1, ev.Magnitude, 1e-9)
	assert.Greater(t, f.drs.Scale(), degradedScale)
	assert.InDelta(t, degradedLevel+0.1, f.lod.Level(), 1e-9)

	// And debounced again right after.
	scale := f.drs.Scale()
	f.gov.Cycle(time.Unix(112, 0))
	assert.Equal(t, scale, f.drs.Scale())
}

func TestRecoveryRequiresComfortableMargins(t *testing.T) {
	f := newFixture(t, allEnabled())

	f.provider.Set(40, 30, 40, 30, 30)
	f.gov.Cycle(time.Unix(100, 0))
	degraded := f.drs.Scale()

	// Above the violation floor but not comfortably: 60×1.1 = 66 needed.
	f.provider.Set(62, 30, 40, 30, 30)
	f.gov.Cycle(time.Unix(200, 0))

	assert.Equal(t, degraded, f.drs.Scale())
}

func TestMonitorModeNeverActuates(t *testing.T) {
	cfg := allEnabled()
	cfg.Monitor = true
	f := newFixture(t, cfg)
	f.provider.Set(10, 60, 99, 90, 90)

	f.gov.Cycle(time.Unix(100, 0))

	assert.Empty(t, f.events)
	assert.Equal(t, 1.2, f.drs.Scale())
	assert.Equal(t, 1.0, f.lod.Level())
	assert.Equal(t, 0.0, f.thermal.Strength())
}

func TestDisabledComponentsAreSkipped(t *testing.T) {
	cfg := allEnabled()
	cfg.EnableDRS = false
	cfg.EnableLOD = false
	f := newFixture(t, cfg)
	f.provider.Set(40, 30, 40, 30, 30)

	f.gov.Cycle(time.Unix(100, 0))

	// The violation is still recorded, but nothing moved.
	assert.NotEmpty(t, f.events)
	assert.Equal(t, 1.2, f.drs.Scale())
	assert.Equal(t, 1.0, f.lod.Level())
}

func TestSetModePropagatesBeforeNextCycle(t *testing.T) {
	f := newFixture(t, allEnabled())

	f.gov.SetMode(profile.ModeBatterySaver)

	assert.Equal(t, 30.0, f.gov.TargetFPS())
	assert.Equal(t, 30.0, f.drs.TargetFPS())
	assert.Equal(t, governor.CategoryModeChange, f.lastEvent(t).Category)
}

func TestStopResetsAllControllers(t *testing.T) {
	f := newFixture(t, allEnabled())
	f.provider.Set(10, 60, 99, 90, 90)
	f.gov.Cycle(time.Unix(100, 0))
	require.Less(t, f.drs.Scale(), 1.2)

	f.gov.Stop()

	assert.Equal(t, 1.2, f.drs.Scale())
	assert.Equal(t, 1.0, f.lod.Level())
	assert.Equal(t, 0.0, f.thermal.Strength())
}

func TestSnapshotUsesSingleSample(t *testing.T) {
	f := newFixture(t, allEnabled())
	f.provider.Set(40, 45, 70, 50, 60)

	s := f.gov.Cycle(time.Unix(100, 0))

	assert.Equal(t, 40.0, s.Sample.FPS)
	assert.Equal(t, 45.0, s.Sample.TemperatureC)
	assert.Equal(t, 70.0, s.Sample.RAMUsagePct)
	assert.True(t, s.Corrected)
	assert.Equal(t, time.Unix(100, 0), s.Sample.Timestamp)
}
