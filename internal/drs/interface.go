package drs

import "time"

// ChangeEvent is emitted whenever the resolution scale changes.
type ChangeEvent struct {
	Timestamp   time.Time
	Scale       float64
	ObservedFPS float64
	Reason      string
}

// Change reasons.
const (
	ReasonFPSLow      = "fps_low"
	ReasonFPSHeadroom = "fps_headroom"
	ReasonCorrection  = "correction"
	ReasonRecovery    = "recovery"
	ReasonReset       = "reset"
)
