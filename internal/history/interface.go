package history

import (
	"context"
	"time"
)

// Collector persists per-cycle snapshots and optimization events for
// post-session reporting.
type Collector interface {
	RecordSnapshot(ctx context.Context, rec *Snapshot) error
	RecordEvent(ctx context.Context, rec *Event) error
	Close() error
}

// Snapshot is one persisted coordinator cycle.
type Snapshot struct {
	Timestamp       time.Time
	FPS             float64
	RAMUsagePct     float64
	CPUUsagePct     float64
	TemperatureC    float64
	ThermalState    string
	Throttle        float64
	ResolutionScale float64
	LODLevel        float64
	Corrected       bool
}

// Event is one persisted optimization event.
type Event struct {
	Timestamp time.Time
	Category  string
	Magnitude float64
	Reasons   string
}
