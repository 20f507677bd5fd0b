package lod

import "time"

// Category identifies an independently toggle-able quality domain.
type Category int

const (
	CategoryGeometric Category = iota
	CategoryTexture
	CategoryShader
	CategoryParticle
	CategoryAudio
	CategoryShadow
	CategoryPostProcess
)

func (c Category) String() string {
	switch c {
	case CategoryGeometric:
		return "geometric"
	case CategoryTexture:
		return "texture"
	case CategoryShader:
		return "shader"
	case CategoryParticle:
		return "particle"
	case CategoryAudio:
		return "audio"
	case CategoryShadow:
		return "shadow"
	case CategoryPostProcess:
		return "post_process"
	default:
		return "unknown"
	}
}

// ShadowQuality is the stepped shadow band.
type ShadowQuality int

const (
	ShadowOff ShadowQuality = iota
	ShadowLow
	ShadowMedium
	ShadowHigh
)

func (q ShadowQuality) String() string {
	switch q {
	case ShadowOff:
		return "off"
	case ShadowLow:
		return "low"
	case ShadowMedium:
		return "medium"
	case ShadowHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Settings is the rendered quality configuration derived from the current
// level. Consumed read-only by the render layer.
type Settings struct {
	GeometricRatio        float64
	TextureSize           int
	LODBias               float64
	PixelLightCount       int
	ParticleEmissionScale float64
	ParticleMaxScale      float64
	ParticlesEnabled      bool
	EssentialOnly         bool
	Shadow                ShadowQuality
	ShadowDrawDistance    float64
	PostProcessRatio      float64
	AudioRatio            float64
}

// ChangeEvent is emitted when the overall level or a category changes.
type ChangeEvent struct {
	Timestamp time.Time
	Level     float64
	Reason    string
}

// Change reasons.
const (
	ReasonPerformance = "performance"
	ReasonMemory      = "memory"
	ReasonRecovery    = "recovery"
	ReasonExplicit    = "explicit"
	ReasonReset       = "reset"
)
