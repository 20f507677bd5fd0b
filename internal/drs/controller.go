// Package drs implements dynamic resolution scaling: a feedback loop that
// trades render resolution for frame rate. The scale output always stays
// within the device profile's bounds.
package drs

import (
	"sync"
	"time"

	"codeberg.org/mutker/perfctl/internal/logger"
	"codeberg.org/mutker/perfctl/internal/profile"
	"codeberg.org/mutker/perfctl/internal/ring"
)

const (
	DefaultInterval      = 1 * time.Second
	DefaultStabilization = 5 * time.Second

	fpsWindowSize = 10
	lowFPSRatio   = 0.85
	highFPSRatio  = 1.10
	baseStep      = 0.05

	// Emergency corrections move at double the feedback step.
	correctionStepFactor = 2
)

type Controller struct {
	mu sync.Mutex

	prof      *profile.DeviceProfile
	scale     float64
	targetFPS float64
	fps       *ring.Buffer

	step          float64
	stabilization time.Duration
	lastChange    time.Time

	subscribers []func(ChangeEvent)
}

func New() *Controller {
	return &Controller{
		fps:           ring.New(fpsWindowSize),
		step:          baseStep,
		stabilization: DefaultStabilization,
	}
}

// InitializeForDevice binds scale bounds and the device step multiplier,
// and starts at maximum quality.
func (c *Controller) InitializeForDevice(prof *profile.DeviceProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prof = prof
	c.scale = prof.Resolution.Max
	c.step = baseStep * prof.DRSMultiplier

	logger.Debug().
		Float64("min_scale", prof.Resolution.Min).
		Float64("max_scale", prof.Resolution.Max).
		Float64("step", c.step).
		Msg("DRS controller initialized for device")
}

// SetTargetFPS sets the frame-rate goal. Out-of-range values clamp to
// [15,240].
func (c *Controller) SetTargetFPS(fps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fps < 15 {
		fps = 15
	} else if fps > 240 {
		fps = 240
	}
	c.targetFPS = fps
}

// SetStabilization overrides the minimum time between feedback adjustments.
func (c *Controller) SetStabilization(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d > 0 {
		c.stabilization = d
	}
}

// Subscribe registers a change observer, called synchronously on every
// scale change.
func (c *Controller) Subscribe(fn func(ChangeEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// Tick runs one feedback step: refresh the FPS window, and adjust the scale
// by one step when the mean strays from the target band and the
// stabilization window has passed.
func (c *Controller) Tick(now time.Time, fps float64, sampleOK bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prof == nil {
		logger.Warn().Msg("DRS tick before device initialization, ignoring")
		return
	}

	if sampleOK {
		c.fps.Push(fps)
	}
	if c.fps.Len() == 0 || c.targetFPS <= 0 {
		return
	}

	if !c.lastChange.IsZero() && now.Sub(c.lastChange) < c.stabilization {
		return
	}

	mean := c.fps.Mean()
	ratio := mean / c.targetFPS

	switch {
	case ratio < lowFPSRatio:
		c.setScale(c.scale-c.step, now, mean, ReasonFPSLow)
	case ratio > highFPSRatio:
		c.setScale(c.scale+c.step, now, mean, ReasonFPSHeadroom)
	}
}

// ApplyOptimization moves the scale toward lerp(max, min, strength) at
// double the feedback step. This is the only path that bypasses the
// stabilization window; it exists for emergency thermal response.
func (c *Controller) ApplyOptimization(strength float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prof == nil {
		logger.Warn().Msg("DRS correction before device initialization, ignoring")
		return
	}

	strength = clamp01(strength)
	bounds := c.prof.Resolution
	target := bounds.Max + (bounds.Min-bounds.Max)*strength

	step := c.step * correctionStepFactor
	next := c.scale
	if next > target {
		next = maxf(target, next-step)
	} else if next < target {
		next = minf(target, next+step)
	}

	c.setScale(next, time.Now(), c.fps.Mean(), ReasonCorrection)
}

// ReduceOptimization nudges the scale back toward maximum quality. The
// amount is in strength units; the resulting raise is capped at one
// feedback step per call so recovery stays gradual.
func (c *Controller) ReduceOptimization(amount float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prof == nil {
		logger.Warn().Msg("DRS recovery before device initialization, ignoring")
		return
	}

	amount = clamp01(amount)
	bounds := c.prof.Resolution
	raise := minf(amount*(bounds.Max-bounds.Min), c.step)

	c.setScale(c.scale+raise, time.Now(), c.fps.Mean(), ReasonRecovery)
}

// StopOptimization resets to maximum quality in a single assignment.
func (c *Controller) StopOptimization() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prof == nil {
		return
	}

	c.fps.Reset()
	c.lastChange = time.Time{}
	c.setScale(c.prof.Resolution.Max, time.Now(), 0, ReasonReset)
}

func (c *Controller) Scale() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scale
}

func (c *Controller) TargetFPS() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.targetFPS
}

// setScale clamps, records, and notifies. Callers hold the lock. No event
// fires when the clamped value equals the current scale.
func (c *Controller) setScale(next float64, now time.Time, observedFPS float64, reason string) {
	bounds := c.prof.Resolution
	next = minf(bounds.Max, maxf(bounds.Min, next))
	if next == c.scale {
		return
	}

	c.scale = next
	c.lastChange = now

	logger.Debug().
		Float64("scale", next).
		Float64("observed_fps", observedFPS).
		Str("reason", reason).
		Msg("Resolution scale changed")

	ev := ChangeEvent{
		Timestamp:   now,
		Scale:       next,
		ObservedFPS: observedFPS,
		Reason:      reason,
	}
	for _, fn := range c.subscribers {
		fn(ev)
	}
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
