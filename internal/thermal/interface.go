package thermal

import "time"

// State is the thermal severity level, ordered from coolest to hottest.
type State int

const (
	StateNormal State = iota
	StateWarm
	StateWarning
	StateCritical
	StateEmergency
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateWarm:
		return "warm"
	case StateWarning:
		return "warning"
	case StateCritical:
		return "critical"
	case StateEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// Event records a state transition. Immutable once emitted.
type Event struct {
	Timestamp    time.Time
	Previous     State
	Current      State
	TemperatureC float64
}

// Applier receives corrective nudges when throttling is active. The DRS
// controller satisfies this directly; the LOD controller is wired through a
// strength→ratio adapter.
type Applier interface {
	ApplyOptimization(strength float64)
}

// FrameLimiter caps the render loop's frame rate. Used only above the
// emergency propagation threshold.
type FrameLimiter interface {
	SetFPSCeiling(fps float64)
	ClearFPSCeiling()
}
