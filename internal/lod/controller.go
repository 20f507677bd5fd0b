// Package lod degrades per-category rendering quality (meshes, textures,
// shaders, particles, shadows, post-processing) from a single scalar level
// in [0,1]. The automatic path drives geometric, texture, particle, and
// shader quality; shadows and post-processing change only through explicit
// setters.
package lod

import (
	"math"
	"sync"
	"time"

	"codeberg.org/mutker/perfctl/internal/logger"
	"codeberg.org/mutker/perfctl/internal/profile"
)

const (
	minTextureSize = 64

	shadowLowBand    = 0.2
	shadowMediumBand = 0.5
	shadowHighBand   = 0.8
	shadowDistMin    = 20.0
	shadowDistMax    = 150.0

	particleCutoff = 0.2

	// Memory pressure corrects more steeply than the frame-time path and
	// kills non-essential particle systems outright above this strength.
	memorySteepness    = 1.5
	memoryParticleKill = 0.7

	lodBiasFloor = 0.3
)

type Controller struct {
	mu sync.Mutex

	prof           *profile.DeviceProfile
	level          float64
	maxTextureSize int
	enabled        map[Category]bool
	settings       Settings

	subscribers []func(ChangeEvent)
}

func New() *Controller {
	enabled := make(map[Category]bool)
	for cat := CategoryGeometric; cat <= CategoryPostProcess; cat++ {
		enabled[cat] = true
	}

	return &Controller{
		enabled: enabled,
	}
}

// InitializeForDevice binds the device multiplier and texture budget, and
// starts at full quality.
func (c *Controller) InitializeForDevice(prof *profile.DeviceProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prof = prof
	c.maxTextureSize = textureBudget(prof.Tier)
	c.resetToFullQuality()

	logger.Debug().
		Int("max_texture_size", c.maxTextureSize).
		Float64("lod_multiplier", prof.LODMultiplier).
		Msg("LOD controller initialized for device")
}

// Subscribe registers a change observer, called synchronously per change.
func (c *Controller) Subscribe(fn func(ChangeEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// SetCategoryEnabled toggles one quality domain in or out of the automatic
// path. Disabling restores that category to full quality.
func (c *Controller) SetCategoryEnabled(cat Category, enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.enabled[cat] = enabled
	if !enabled && c.prof != nil {
		c.applyCategory(cat, 1.0)
	}
}

// ApplyOptimization recomputes quality from a performance ratio in [0,1]
// (1 = full quality), scaled by the device LOD multiplier. Drives the
// geometric, texture, particle, and shader categories.
func (c *Controller) ApplyOptimization(performanceRatio float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prof == nil {
		logger.Warn().Msg("LOD optimization before device initialization, ignoring")
		return
	}

	ratio := clamp01(performanceRatio * c.prof.LODMultiplier)
	if ratio == c.level {
		return
	}
	c.level = ratio

	for _, cat := range []Category{CategoryGeometric, CategoryTexture, CategoryParticle, CategoryShader} {
		if c.enabled[cat] {
			c.applyCategory(cat, ratio)
		}
	}

	c.notify(ReasonPerformance)
}

// ApplyMemoryOptimization corrects for memory pressure. Steeper than the
// performance path, and the only path allowed to act independently of it:
// RAM exhaustion needs blunter correction than frame-time smoothing allows.
func (c *Controller) ApplyMemoryOptimization(strength float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prof == nil {
		logger.Warn().Msg("LOD memory optimization before device initialization, ignoring")
		return
	}

	strength = clamp01(strength)
	ratio := clamp01(1 - strength*memorySteepness)

	if ratio < c.level {
		c.level = ratio
	}
	if c.enabled[CategoryTexture] {
		c.applyCategory(CategoryTexture, ratio)
	}
	if c.enabled[CategoryParticle] {
		c.applyCategory(CategoryParticle, ratio)
		if strength > memoryParticleKill {
			c.settings.EssentialOnly = true
			logger.Info().
				Float64("strength", strength).
				Msg("Non-essential particle systems disabled under memory pressure")
		}
	}

	c.notify(ReasonMemory)
}

// ReduceOptimization restores quality gradually: the level rises by amount,
// clamped to 1.0, and the automatic categories follow.
func (c *Controller) ReduceOptimization(amount float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prof == nil {
		logger.Warn().Msg("LOD recovery before device initialization, ignoring")
		return
	}

	amount = clamp01(amount)
	next := minf(1.0, c.level+amount)
	if next == c.level {
		return
	}
	c.level = next

	for _, cat := range []Category{CategoryGeometric, CategoryTexture, CategoryParticle, CategoryShader} {
		if c.enabled[cat] {
			c.applyCategory(cat, next)
		}
	}
	if next >= 1.0 {
		c.settings.EssentialOnly = false
	}

	c.notify(ReasonRecovery)
}

// SetShadowQuality sets the stepped shadow band from a ratio. Explicit-only
// path; the automatic pipeline never touches shadows.
func (c *Controller) SetShadowQuality(ratio float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prof == nil || !c.enabled[CategoryShadow] {
		return
	}

	c.applyShadow(clamp01(ratio))
	c.notify(ReasonExplicit)
}

// SetPostProcessLevel sets post-processing intensity. Explicit-only path.
func (c *Controller) SetPostProcessLevel(ratio float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prof == nil || !c.enabled[CategoryPostProcess] {
		return
	}

	c.settings.PostProcessRatio = clamp01(ratio)
	c.notify(ReasonExplicit)
}

// SetAudioLevel sets audio detail. Explicit-only path.
func (c *Controller) SetAudioLevel(ratio float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prof == nil || !c.enabled[CategoryAudio] {
		return
	}

	c.settings.AudioRatio = clamp01(ratio)
	c.notify(ReasonExplicit)
}

// StopOptimization resets to full quality in a single assignment. Quality
// regressions never persist once the controller is intentionally disabled.
func (c *Controller) StopOptimization() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prof == nil {
		return
	}

	c.resetToFullQuality()
	c.notify(ReasonReset)
}

func (c *Controller) Level() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

func (c *Controller) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// applyCategory maps the ratio onto one category's concrete settings.
// Callers hold the lock.
func (c *Controller) applyCategory(cat Category, ratio float64) {
	switch cat {
	case CategoryGeometric:
		c.settings.GeometricRatio = ratio
	case CategoryTexture:
		c.settings.TextureSize = textureSize(c.maxTextureSize, ratio)
	case CategoryParticle:
		c.settings.ParticleEmissionScale = ratio
		c.settings.ParticleMaxScale = ratio
		c.settings.ParticlesEnabled = ratio >= particleCutoff
	case CategoryShader:
		c.settings.LODBias = lodBiasFloor + (1-lodBiasFloor)*ratio
		c.settings.PixelLightCount = pixelLights(ratio)
	case CategoryShadow:
		c.applyShadow(ratio)
	case CategoryPostProcess:
		c.settings.PostProcessRatio = ratio
	case CategoryAudio:
		c.settings.AudioRatio = ratio
	}
}

func (c *Controller) applyShadow(ratio float64) {
	switch {
	case ratio < shadowLowBand:
		c.settings.Shadow = ShadowOff
	case ratio < shadowMediumBand:
		c.settings.Shadow = ShadowLow
	case ratio < shadowHighBand:
		c.settings.Shadow = ShadowMedium
	default:
		c.settings.Shadow = ShadowHigh
	}
	c.settings.ShadowDrawDistance = shadowDistMin + (shadowDistMax-shadowDistMin)*ratio
}

func (c *Controller) resetToFullQuality() {
	c.level = 1.0
	c.settings = Settings{
		GeometricRatio:        1.0,
		TextureSize:           c.maxTextureSize,
		LODBias:               1.0,
		PixelLightCount:       4,
		ParticleEmissionScale: 1.0,
		ParticleMaxScale:      1.0,
		ParticlesEnabled:      true,
		EssentialOnly:         false,
		Shadow:                ShadowHigh,
		ShadowDrawDistance:    shadowDistMax,
		PostProcessRatio:      1.0,
		AudioRatio:            1.0,
	}
}

func (c *Controller) notify(reason string) {
	ev := ChangeEvent{
		Timestamp: time.Now(),
		Level:     c.level,
		Reason:    reason,
	}
	for _, fn := range c.subscribers {
		fn(ev)
	}
}

// textureSize maps ratio to the closest power of two of the scaled budget,
// clamped to [64, max].
func textureSize(maxSize int, ratio float64) int {
	scaled := float64(maxSize) * ratio
	if scaled < minTextureSize {
		return minTextureSize
	}

	exp := math.Round(math.Log2(scaled))
	size := int(math.Pow(2, exp))
	if size < minTextureSize {
		size = minTextureSize
	}
	if size > maxSize {
		size = maxSize
	}

	return size
}

// pixelLights steps the per-pixel light budget by ratio band.
func pixelLights(ratio float64) int {
	switch {
	case ratio < 0.3:
		return 0
	case ratio < 0.6:
		return 1
	case ratio < 0.8:
		return 2
	default:
		return 4
	}
}

func textureBudget(tier profile.Tier) int {
	switch tier {
	case profile.TierFlagship:
		return 4096
	case profile.TierHigh:
		return 2048
	case profile.TierMid:
		return 2048
	default:
		return 1024
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
