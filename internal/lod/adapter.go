package lod

// ThrottleAdapter converts the throttle-strength contract used by the
// thermal controller and governor (1 = maximum correction) into this
// controller's performance-ratio contract (1 = full quality).
type ThrottleAdapter struct {
	c *Controller
}

func (c *Controller) ThrottleAdapter() *ThrottleAdapter {
	return &ThrottleAdapter{c: c}
}

func (a *ThrottleAdapter) ApplyOptimization(strength float64) {
	a.c.ApplyOptimization(1 - clamp01(strength))
}
