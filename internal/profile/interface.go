package profile

// PerformanceMode selects the target frame rate and default aggressiveness
// for the optimization coordinator.
type PerformanceMode int

const (
	ModeBatterySaver PerformanceMode = iota
	ModeBalanced
	ModeHighPerformance
)

func (m PerformanceMode) String() string {
	switch m {
	case ModeBatterySaver:
		return "battery_saver"
	case ModeBalanced:
		return "balanced"
	case ModeHighPerformance:
		return "high_performance"
	default:
		return "unknown"
	}
}

// Tier classifies a device by overall capability. Derived, never stored.
type Tier int

const (
	TierEntry Tier = iota
	TierMid
	TierHigh
	TierFlagship
)

func (t Tier) String() string {
	switch t {
	case TierEntry:
		return "entry"
	case TierMid:
		return "mid"
	case TierHigh:
		return "high"
	case TierFlagship:
		return "flagship"
	default:
		return "unknown"
	}
}

// Domain types for type safety and validation
type (
	// ThermalThresholds are in degrees Celsius of smoothed skin/SoC
	// temperature. Warm begins at Normal; Emergency is Critical plus a
	// fixed offset owned by the thermal controller.
	ThermalThresholds struct {
		Normal, Warning, Critical float64
	}

	// ScaleBounds bound the DRS resolution scale output.
	ScaleBounds struct {
		Min, Max float64
	}
)

// DeviceProfile is an immutable per-device tuning bundle. It is constructed
// once by Resolve and shared read-only by every controller.
type DeviceProfile struct {
	Brand    string
	Model    string
	Codename string
	Chipset  string
	RAMMB    int
	Tier     Tier

	Thermal    ThermalThresholds
	Resolution ScaleBounds

	// OptimizationMultiplier scales the coordinator's combined correction
	// strength; DRSMultiplier and LODMultiplier scale the per-controller
	// step sizes.
	OptimizationMultiplier float64
	DRSMultiplier          float64
	LODMultiplier          float64

	RecommendedMode PerformanceMode
}

// Row is a tuning record held by a Store. Identity columns are matched
// case-insensitively by the resolver.
type Row struct {
	Brand    string
	Model    string
	Codename string

	Thermal                ThermalThresholds
	Resolution             ScaleBounds
	OptimizationMultiplier float64
	DRSMultiplier          float64
	LODMultiplier          float64
	Tier                   Tier
	RecommendedMode        PerformanceMode
}

// Store resolves device identities to tuning rows. A miss is a normal
// outcome, not an error.
type Store interface {
	// Lookup finds an exact (brand, model|codename) match.
	Lookup(brand, model, codename string) (Row, bool)

	// LookupBrand finds the brand-level default row.
	LookupBrand(brand string) (Row, bool)
}
