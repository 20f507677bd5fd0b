// Package thermal converts smoothed device temperature into a throttle
// strength in [0,1]. Heating is answered quickly (application rate) and
// cooling released slowly (recovery rate) so the controller fails toward
// safety and recovers conservatively.
package thermal

import (
	"sync"
	"time"

	"codeberg.org/mutker/perfctl/internal/logger"
	"codeberg.org/mutker/perfctl/internal/profile"
	"codeberg.org/mutker/perfctl/internal/ring"
)

const (
	DefaultInterval = 2 * time.Second

	temperatureWindowSize = 10
	emergencyOffsetC      = 7.0

	warmStrength        = 0.1
	warningBandFloor    = 0.2
	warningBandCeil     = 0.6
	criticalBandFloor   = 0.6
	criticalBandCeil    = 0.9
	propagationMinimum  = 0.01
	fpsCeilingThreshold = 0.7
	emergencyFPSCeiling = 30.0

	// Strength change per second. Application must outpace recovery.
	defaultApplicationRate = 0.25
	defaultRecoveryRate    = 0.05
)

type Controller struct {
	mu sync.RWMutex

	prof        *profile.DeviceProfile
	temps       *ring.Buffer
	state       State
	strength    float64
	targetFloor float64
	lastTick    time.Time

	applicationRate float64
	recoveryRate    float64

	targets       []Applier
	limiter       FrameLimiter
	subscribers   []func(Event)
	ceilingActive bool
}

func New() *Controller {
	return &Controller{
		temps:           ring.New(temperatureWindowSize),
		applicationRate: defaultApplicationRate,
		recoveryRate:    defaultRecoveryRate,
	}
}

// InitializeForDevice binds the device thresholds. May arrive after
// construction; until then every tick is a warning-level no-op.
func (c *Controller) InitializeForDevice(prof *profile.DeviceProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prof = prof
	logger.Debug().
		Float64("normal", prof.Thermal.Normal).
		Float64("warning", prof.Thermal.Warning).
		Float64("critical", prof.Thermal.Critical).
		Float64("emergency", prof.Thermal.Critical+emergencyOffsetC).
		Msg("Thermal controller initialized for device")
}

// AddTarget registers a controller to nudge while throttling is active.
func (c *Controller) AddTarget(t Applier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.targets = append(c.targets, t)
}

// SetFrameLimiter registers the emergency frame-rate ceiling lever.
func (c *Controller) SetFrameLimiter(fl FrameLimiter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limiter = fl
}

// Subscribe registers a state-transition observer. Called synchronously,
// at most once per tick.
func (c *Controller) Subscribe(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// RequestThrottle raises the target strength floor for the next approach
// step. Out-of-range values are clamped; decay afterwards happens only
// through the recovery rate.
func (c *Controller) RequestThrottle(strength float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prof == nil {
		logger.Warn().Msg("Throttle requested before device initialization, ignoring")
		return
	}

	strength = clamp01(strength)
	if strength > c.targetFloor {
		c.targetFloor = strength
	}
}

// Tick runs one control step. sampleOK=false means the telemetry read
// failed; the last smoothed value persists and only the approach step runs.
func (c *Controller) Tick(now time.Time, tempC float64, sampleOK bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prof == nil {
		logger.Warn().Msg("Thermal tick before device initialization, ignoring")
		return
	}

	if sampleOK {
		c.temps.Push(tempC)
	}
	if c.temps.Len() == 0 {
		return
	}

	smoothed := c.temps.Mean()
	c.transition(now, smoothed)

	target := c.targetStrength(smoothed)
	if c.targetFloor > target {
		target = c.targetFloor
	}
	c.targetFloor = 0

	dt := 0.0
	if !c.lastTick.IsZero() {
		dt = now.Sub(c.lastTick).Seconds()
	}
	c.lastTick = now

	c.approach(target, dt)
	c.propagate()
}

func (c *Controller) transition(now time.Time, smoothed float64) {
	next := c.classify(smoothed)
	if next == c.state {
		return
	}

	ev := Event{
		Timestamp:    now,
		Previous:     c.state,
		Current:      next,
		TemperatureC: smoothed,
	}
	c.state = next

	logger.Info().
		Str("previous", ev.Previous.String()).
		Str("current", ev.Current.String()).
		Float64("temperature", smoothed).
		Msg("Thermal state changed")

	for _, fn := range c.subscribers {
		fn(ev)
	}
}

// classify picks the highest severity whose threshold the smoothed
// temperature meets. Monotonic in temperature by construction.
func (c *Controller) classify(smoothed float64) State {
	t := c.prof.Thermal
	switch {
	case smoothed >= t.Critical+emergencyOffsetC:
		return StateEmergency
	case smoothed >= t.Critical:
		return StateCritical
	case smoothed >= t.Warning:
		return StateWarning
	case smoothed >= t.Normal:
		return StateWarm
	default:
		return StateNormal
	}
}

func (c *Controller) targetStrength(smoothed float64) float64 {
	t := c.prof.Thermal
	emergency := t.Critical + emergencyOffsetC

	switch c.state {
	case StateNormal:
		return 0
	case StateWarm:
		return warmStrength
	case StateWarning:
		return lerp(warningBandFloor, warningBandCeil, band(smoothed, t.Warning, t.Critical))
	case StateCritical:
		return lerp(criticalBandFloor, criticalBandCeil, band(smoothed, t.Critical, emergency))
	default:
		return 1.0
	}
}

// approach moves strength toward target, rate-limited per second of wall
// time so behavior is independent of the tick interval.
func (c *Controller) approach(target, dt float64) {
	if c.strength < target {
		c.strength = minf(target, c.strength+c.applicationRate*dt)
	} else if c.strength > target {
		c.strength = maxf(target, c.strength-c.recoveryRate*dt)
	}
	c.strength = clamp01(c.strength)
}

func (c *Controller) propagate() {
	if c.strength > propagationMinimum {
		for _, t := range c.targets {
			t.ApplyOptimization(c.strength)
		}
	}

	if c.limiter == nil {
		return
	}
	if c.strength > fpsCeilingThreshold && !c.ceilingActive {
		c.limiter.SetFPSCeiling(emergencyFPSCeiling)
		c.ceilingActive = true
		logger.Warn().
			Float64("strength", c.strength).
			Float64("fps_ceiling", emergencyFPSCeiling).
			Msg("Emergency frame-rate ceiling engaged")
	} else if c.strength <= fpsCeilingThreshold && c.ceilingActive {
		c.limiter.ClearFPSCeiling()
		c.ceilingActive = false
		logger.Info().Msg("Emergency frame-rate ceiling released")
	}
}

// StopOptimization resets to zero throttle in a single step, regardless of
// prior state. Used on coordinator stop and process teardown.
func (c *Controller) StopOptimization() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.strength = 0
	c.state = StateNormal
	c.targetFloor = 0
	c.temps.Reset()
	c.lastTick = time.Time{}
	if c.ceilingActive && c.limiter != nil {
		c.limiter.ClearFPSCeiling()
	}
	c.ceilingActive = false
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Controller) Strength() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.strength
}

// SmoothedTemperature returns the current windowed mean.
func (c *Controller) SmoothedTemperature() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.temps.Mean()
}

func band(v, lo, hi float64) float64 {
	if hi <= lo {
		return 1
	}

	return clamp01((v - lo) / (hi - lo))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(v float64) float64 {
	return minf(1, maxf(0, v))
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}

	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}

	return b
}
