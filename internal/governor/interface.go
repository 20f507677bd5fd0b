package governor

import (
	"time"

	"codeberg.org/mutker/perfctl/internal/telemetry"
	"codeberg.org/mutker/perfctl/internal/thermal"
)

// Violation reasons collected per cycle.
const (
	ReasonLowFPS   = "fps_below_target"
	ReasonHighRAM  = "ram_above_limit"
	ReasonHighTemp = "temperature_above_limit"
)

// Event categories.
const (
	CategoryCorrection = "correction"
	CategoryRecovery   = "recovery"
	CategoryMemory     = "memory"
	CategoryModeChange = "mode_change"
)

// Event is an immutable optimization log record, consumed read-only by the
// overlay/UI layer and the session history store.
type Event struct {
	Timestamp time.Time
	Category  string
	Magnitude float64
	Reasons   []string
}

// Snapshot is the per-cycle state exposed for logging and history.
type Snapshot struct {
	Sample           telemetry.Sample
	ThermalState     thermal.State
	ThrottleStrength float64
	ResolutionScale  float64
	LODLevel         float64
	Corrected        bool
}

// CachePurger releases engine-side caches under memory pressure. Optional;
// wired by the embedding layer.
type CachePurger interface {
	PurgeCaches()
}
