// Package profile maps a device identity to an immutable tuning bundle.
// Resolution never fails: an exact table match is preferred, then a
// brand-level default, then a generic profile synthesized from the RAM tier
// and chipset name. The most conservative tuning wins when no signal is
// available.
package profile

import "strings"

// RAM tier boundaries in MB.
const (
	ramTier1 = 4096
	ramTier2 = 6144
	ramTier3 = 8192
	ramTier4 = 12288
	ramTier5 = 16384
)

// Chipset name fragments that indicate a flagship SoC. Matched as
// case-insensitive substrings.
var flagshipChipsets = []string{
	"snapdragon 8",
	"dimensity 9",
	"exynos 24",
	"tensor g3",
	"tensor g4",
	"kirin 9",
	"apple a17",
	"apple a18",
}

// Resolve builds the DeviceProfile for the given identity. Pure function of
// its inputs; the returned profile is never nil-equivalent and is safe for
// concurrent read.
func Resolve(store Store, brand, model, codename string, ramMB int, chipset string) DeviceProfile {
	if row, ok := store.Lookup(brand, model, codename); ok {
		return fromRow(row, brand, model, codename, ramMB, chipset)
	}

	if row, ok := store.LookupBrand(brand); ok {
		return fromRow(row, brand, model, codename, ramMB, chipset)
	}

	return synthesize(brand, model, codename, ramMB, chipset)
}

func fromRow(row Row, brand, model, codename string, ramMB int, chipset string) DeviceProfile {
	return DeviceProfile{
		Brand:                  brand,
		Model:                  model,
		Codename:               codename,
		Chipset:                chipset,
		RAMMB:                  ramMB,
		Tier:                   row.Tier,
		Thermal:                row.Thermal,
		Resolution:             row.Resolution,
		OptimizationMultiplier: row.OptimizationMultiplier,
		DRSMultiplier:          row.DRSMultiplier,
		LODMultiplier:          row.LODMultiplier,
		RecommendedMode:        row.RecommendedMode,
	}
}

// synthesize derives a generic profile from the RAM tier, bumped one tier
// when the chipset names a flagship SoC.
func synthesize(brand, model, codename string, ramMB int, chipset string) DeviceProfile {
	tier := ramTier(ramMB)
	if isFlagshipChipset(chipset) && tier < TierFlagship {
		tier++
	}

	p := DeviceProfile{
		Brand:           brand,
		Model:           model,
		Codename:        codename,
		Chipset:         chipset,
		RAMMB:           ramMB,
		Tier:            tier,
		RecommendedMode: ModeBalanced,
	}

	switch tier {
	case TierFlagship:
		p.Thermal = ThermalThresholds{Normal: 37, Warning: 41, Critical: 46}
		p.Resolution = ScaleBounds{Min: 0.55, Max: 1.1}
		p.OptimizationMultiplier = 1.0
		p.DRSMultiplier = 1.1
		p.LODMultiplier = 1.2
		p.RecommendedMode = ModeHighPerformance
	case TierHigh:
		p.Thermal = ThermalThresholds{Normal: 36, Warning: 40, Critical: 45}
		p.Resolution = ScaleBounds{Min: 0.5, Max: 1.0}
		p.OptimizationMultiplier = 0.9
		p.DRSMultiplier = 1.0
		p.LODMultiplier = 1.0
	case TierMid:
		p.Thermal = ThermalThresholds{Normal: 35, Warning: 39, Critical: 43}
		p.Resolution = ScaleBounds{Min: 0.5, Max: 1.0}
		p.OptimizationMultiplier = 0.75
		p.DRSMultiplier = 0.85
		p.LODMultiplier = 0.8
	default: // TierEntry: most conservative tuning
		p.Thermal = ThermalThresholds{Normal: 34, Warning: 38, Critical: 42}
		p.Resolution = ScaleBounds{Min: 0.45, Max: 1.0}
		p.OptimizationMultiplier = 0.6
		p.DRSMultiplier = 0.7
		p.LODMultiplier = 0.5
		p.RecommendedMode = ModeBatterySaver
	}

	return p
}

func ramTier(ramMB int) Tier {
	switch {
	case ramMB >= ramTier5:
		return TierFlagship
	case ramMB >= ramTier4:
		return TierHigh
	case ramMB >= ramTier3:
		return TierHigh
	case ramMB >= ramTier2:
		return TierMid
	case ramMB >= ramTier1:
		return TierMid
	default:
		return TierEntry
	}
}

func isFlagshipChipset(chipset string) bool {
	c := strings.ToLower(chipset)
	for _, fragment := range flagshipChipsets {
		if strings.Contains(c, fragment) {
			return true
		}
	}

	return false
}
