package telemetry

import "time"

// Provider is the hardware telemetry boundary. Every call must return within
// a bounded time and must not fail: on acquisition problems a last-known or
// default value is returned instead.
type Provider interface {
	SampleFPS() float64
	SampleTemperatureC() float64
	SampleRAMUsagePct() float64
	SampleCPUUsagePct() float64
	SampleGPUUsagePct() float64
}

// Sample is one coherent telemetry snapshot. The coordinator samples once
// per cycle and feeds the same values to every controller decision in that
// cycle.
type Sample struct {
	FPS          float64
	RAMUsagePct  float64
	CPUUsagePct  float64
	GPUUsagePct  float64
	TemperatureC float64
	Timestamp    time.Time
}

// Snapshot reads all channels from the provider at once.
func Snapshot(p Provider, now time.Time) Sample {
	return Sample{
		FPS:          p.SampleFPS(),
		RAMUsagePct:  p.SampleRAMUsagePct(),
		CPUUsagePct:  p.SampleCPUUsagePct(),
		GPUUsagePct:  p.SampleGPUUsagePct(),
		TemperatureC: p.SampleTemperatureC(),
		Timestamp:    now,
	}
}
