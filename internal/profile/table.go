package profile

import "strings"

// staticStore is the built-in tuning table. Keys are normalized
// "brand/model" and "brand/codename" pairs.
type staticStore struct {
	devices map[string]Row
	brands  map[string]Row
}

func NewStaticStore() Store {
	s := &staticStore{
		devices: make(map[string]Row),
		brands:  make(map[string]Row),
	}

	for i := range deviceRows {
		row := deviceRows[i]
		if row.Model != "" {
			s.devices[deviceKey(row.Brand, row.Model)] = row
		}
		if row.Codename != "" {
			s.devices[deviceKey(row.Brand, row.Codename)] = row
		}
	}
	for i := range brandRows {
		row := brandRows[i]
		s.brands[normalize(row.Brand)] = row
	}

	return s
}

func (s *staticStore) Lookup(brand, model, codename string) (Row, bool) {
	if model != "" {
		if row, ok := s.devices[deviceKey(brand, model)]; ok {
			return row, true
		}
	}
	if codename != "" {
		if row, ok := s.devices[deviceKey(brand, codename)]; ok {
			return row, true
		}
	}

	return Row{}, false
}

func (s *staticStore) LookupBrand(brand string) (Row, bool) {
	row, ok := s.brands[normalize(brand)]
	return row, ok
}

func deviceKey(brand, device string) string {
	return normalize(brand) + "/" + normalize(device)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Per-device tuning. Thresholds come from observed skin-temperature throttle
// points; multipliers from session telemetry across the supported catalog.
var deviceRows = []Row{
	{
		Brand: "Samsung", Model: "Galaxy S24 Ultra", Codename: "e3q",
		Thermal:                ThermalThresholds{Normal: 38, Warning: 42, Critical: 48},
		Resolution:             ScaleBounds{Min: 0.6, Max: 1.2},
		OptimizationMultiplier: 1.0,
		DRSMultiplier:          1.2,
		LODMultiplier:          1.3,
		Tier:                   TierFlagship,
		RecommendedMode:        ModeHighPerformance,
	},
	{
		Brand: "Samsung", Model: "Galaxy S23", Codename: "dm1q",
		Thermal:                ThermalThresholds{Normal: 37, Warning: 41, Critical: 46},
		Resolution:             ScaleBounds{Min: 0.55, Max: 1.1},
		OptimizationMultiplier: 1.0,
		DRSMultiplier:          1.1,
		LODMultiplier:          1.2,
		Tier:                   TierFlagship,
		RecommendedMode:        ModeHighPerformance,
	},
	{
		Brand: "Samsung", Model: "Galaxy A54", Codename: "a54x",
		Thermal:                ThermalThresholds{Normal: 36, Warning: 40, Critical: 44},
		Resolution:             ScaleBounds{Min: 0.5, Max: 1.0},
		OptimizationMultiplier: 0.8,
		DRSMultiplier:          0.9,
		LODMultiplier:          0.8,
		Tier:                   TierMid,
		RecommendedMode:        ModeBalanced,
	},
	{
		Brand: "Google", Model: "Pixel 8 Pro", Codename: "husky",
		Thermal:                ThermalThresholds{Normal: 36, Warning: 40, Critical: 45},
		Resolution:             ScaleBounds{Min: 0.55, Max: 1.0},
		OptimizationMultiplier: 0.9,
		DRSMultiplier:          1.0,
		LODMultiplier:          1.1,
		Tier:                   TierFlagship,
		RecommendedMode:        ModeBalanced,
	},
	{
		Brand: "Google", Model: "Pixel 7a", Codename: "lynx",
		Thermal:                ThermalThresholds{Normal: 35, Warning: 39, Critical: 43},
		Resolution:             ScaleBounds{Min: 0.5, Max: 1.0},
		OptimizationMultiplier: 0.8,
		DRSMultiplier:          0.9,
		LODMultiplier:          0.9,
		Tier:                   TierMid,
		RecommendedMode:        ModeBalanced,
	},
	{
		Brand: "Xiaomi", Model: "14 Pro", Codename: "shennong",
		Thermal:                ThermalThresholds{Normal: 38, Warning: 43, Critical: 48},
		Resolution:             ScaleBounds{Min: 0.6, Max: 1.2},
		OptimizationMultiplier: 1.0,
		DRSMultiplier:          1.2,
		LODMultiplier:          1.25,
		Tier:                   TierFlagship,
		RecommendedMode:        ModeHighPerformance,
	},
	{
		Brand: "OnePlus", Model: "12", Codename: "waffle",
		Thermal:                ThermalThresholds{Normal: 38, Warning: 42, Critical: 47},
		Resolution:             ScaleBounds{Min: 0.6, Max: 1.15},
		OptimizationMultiplier: 1.0,
		DRSMultiplier:          1.15,
		LODMultiplier:          1.2,
		Tier:                   TierFlagship,
		RecommendedMode:        ModeHighPerformance,
	},
}

// Brand-level fallbacks for models not in the table.
var brandRows = []Row{
	{
		Brand:                  "Samsung",
		Thermal:                ThermalThresholds{Normal: 36, Warning: 40, Critical: 45},
		Resolution:             ScaleBounds{Min: 0.5, Max: 1.0},
		OptimizationMultiplier: 0.9,
		DRSMultiplier:          1.0,
		LODMultiplier:          1.0,
		Tier:                   TierHigh,
		RecommendedMode:        ModeBalanced,
	},
	{
		Brand:                  "Google",
		Thermal:                ThermalThresholds{Normal: 35, Warning: 39, Critical: 44},
		Resolution:             ScaleBounds{Min: 0.5, Max: 1.0},
		OptimizationMultiplier: 0.85,
		DRSMultiplier:          0.95,
		LODMultiplier:          1.0,
		Tier:                   TierHigh,
		RecommendedMode:        ModeBalanced,
	},
	{
		Brand:                  "Xiaomi",
		Thermal:                ThermalThresholds{Normal: 36, Warning: 41, Critical: 46},
		Resolution:             ScaleBounds{Min: 0.5, Max: 1.0},
		OptimizationMultiplier: 0.9,
		DRSMultiplier:          1.0,
		LODMultiplier:          1.0,
		Tier:                   TierHigh,
		RecommendedMode:        ModeBalanced,
	},
	{
		Brand:                  "OnePlus",
		Thermal:                ThermalThresholds{Normal: 36, Warning: 41, Critical: 46},
		Resolution:             ScaleBounds{Min: 0.5, Max: 1.0},
		OptimizationMultiplier: 0.9,
		DRSMultiplier:          1.0,
		LODMultiplier:          1.0,
		Tier:                   TierHigh,
		RecommendedMode:        ModeBalanced,
	},
	{
		Brand:                  "Motorola",
		Thermal:                ThermalThresholds{Normal: 35, Warning: 39, Critical: 43},
		Resolution:             ScaleBounds{Min: 0.5, Max: 1.0},
		OptimizationMultiplier: 0.75,
		DRSMultiplier:          0.85,
		LODMultiplier:          0.85,
		Tier:                   TierMid,
		RecommendedMode:        ModeBalanced,
	},
}
