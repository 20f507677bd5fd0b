package drs_test

import (
	"testing"
	"time"

	"codeberg.org/mutker/perfctl/internal/drs"
	"codeberg.org/mutker/perfctl/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() *profile.DeviceProfile {
	return &profile.DeviceProfile{
		Brand: "Samsung", Model: "Galaxy S24 Ultra",
		Resolution:    profile.ScaleBounds{Min: 0.6, Max: 1.2},
		DRSMultiplier: 1.2,
	}
}

func newController(t *testing.T) *drs.Controller {
	t.Helper()
	c := drs.New()
	c.InitializeForDevice(testProfile())
	c.SetTargetFPS(60)

	return c
}

func TestStartsAtMaximumScale(t *testing.T) {
	c := newController(t)
	assert.Equal(t, 1.2, c.Scale())
}

func TestLowFPSDecreasesOneStepWithinStabilization(t *testing.T) {
	c := newController(t)

	var events []drs.ChangeEvent
	c.Subscribe(func(ev drs.ChangeEvent) {
		events = append(events, ev)
	})

	// Flat 30 FPS against a 60 FPS target, ticked once per second for less
	// than the stabilization window after the first change.
	now := time.Unix(0, 0)
	for i := 0; i < 5; i++ {
		c.Tick(now, 30, true)
		now = now.Add(time.Second)
	}

	require.Len(t, events, 1)
	assert.Equal(t, drs.ReasonFPSLow, events[0].Reason)
	assert.InDelta(t, 30.0, events[0].ObservedFPS, 1e-9)
	// One step: 0.05 × 1.2 device multiplier
	assert.InDelta(t, 1.2-0.06, c.Scale(), 1e-9)
}

func TestHighFPSIncreasesScale(t *testing.T) {
	c := newController(t)

	// Pull the scale down first.
	now := time.Unix(0, 0)
	c.Tick(now, 30, true)
	require.Less(t, c.Scale(), 1.2)

	// Refill the window with high FPS past the stabilization gate.
	now = now.Add(time.Minute)
	for i := 0; i < 10; i++ {
		c.Tick(now, 90, true)
		now = now.Add(time.Second)
	}
	now = now.Add(time.Minute)
	c.Tick(now, 90, true)

	assert.InDelta(t, 1.2, c.Scale(), 1e-9)
}

func TestScaleNeverLeavesBounds(t *testing.T) {
	c := newController(t)

	now := time.Unix(0, 0)
	for i := 0; i < 500; i++ {
		c.Tick(now, 10, true)
		now = now.Add(10 * time.Second)
	}
	assert.GreaterOrEqual(t, c.Scale(), 0.6)

	for i := 0; i < 50; i++ {
		c.ApplyOptimization(1.0)
	}
	assert.GreaterOrEqual(t, c.Scale(), 0.6)

	for i := 0; i < 500; i++ {
		c.ReduceOptimization(1.0)
	}
	assert.LessOrEqual(t, c.Scale(), 1.2)
}

func TestApplyOptimizationBypassesStabilization(t *testing.T) {
	c := newController(t)

	var events []drs.ChangeEvent
	c.Subscribe(func(ev drs.ChangeEvent) {
		events = append(events, ev)
	})

	// Two immediate corrections: both must move the scale, no gate.
	c.ApplyOptimization(1.0)
	c.ApplyOptimization(1.0)

	require.Len(t, events, 2)
	// Double step per correction: 2 × 0.06
	assert.InDelta(t, 1.2-2*0.12, c.Scale(), 1e-9)
	for _, ev := range events {
		assert.Equal(t, drs.ReasonCorrection, ev.Reason)
	}
}

func TestApplyOptimizationIdempotentAtTarget(t *testing.T) {
	c := newController(t)

	// Walk all the way to the strength-1.0 target.
	for i := 0; i < 50; i++ {
		c.ApplyOptimization(1.0)
	}
	require.InDelta(t, 0.6, c.Scale(), 1e-9)

	var events int
	c.Subscribe(func(drs.ChangeEvent) { events++ })

	c.ApplyOptimization(1.0)

	assert.Equal(t, 0, events)
	assert.InDelta(t, 0.6, c.Scale(), 1e-9)
}

func TestReduceOptimizationZeroIsNoOp(t *testing.T) {
	c := newController(t)
	c.ApplyOptimization(0.5)
	before := c.Scale()

	var events int
	c.Subscribe(func(drs.ChangeEvent) { events++ })

	c.ReduceOptimization(0)

	assert.Equal(t, before, c.Scale())
	assert.Equal(t, 0, events)
}

func TestReduceOptimizationIsGradual(t *testing.T) {
	c := newController(t)
	for i := 0; i < 50; i++ {
		c.ApplyOptimization(1.0)
	}
	require.InDelta(t, 0.6, c.Scale(), 1e-9)

	c.ReduceOptimization(1.0)

	// Raise capped at one feedback step.
	assert.InDelta(t, 0.6+0.06, c.Scale(), 1e-9)
}

func TestStopOptimizationRestoresMaximum(t *testing.T) {
	c := newController(t)
	for i := 0; i < 50; i++ {
		c.ApplyOptimization(1.0)
	}
	require.Less(t, c.Scale(), 1.2)

	c.StopOptimization()

	assert.Equal(t, 1.2, c.Scale())
}

func TestTargetFPSClamped(t *testing.T) {
	c := newController(t)

	c.SetTargetFPS(500)
	assert.Equal(t, 240.0, c.TargetFPS())

	c.SetTargetFPS(1)
	assert.Equal(t, 15.0, c.TargetFPS())
}

func TestUninitializedIsNoOp(t *testing.T) {
	c := drs.New()
	c.SetTargetFPS(60)

	c.Tick(time.Unix(0, 0), 30, true)
	c.ApplyOptimization(1.0)
	c.ReduceOptimization(0.5)
	c.StopOptimization()

	assert.Equal(t, 0.0, c.Scale())
}
