package telemetry

import "sync"

// StaticProvider returns fixed values set by the caller. Used in tests and
// by replay tooling.
type StaticProvider struct {
	mu   sync.RWMutex
	fps  float64
	temp float64
	ram  float64
	cpu  float64
	gpu  float64
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

func (p *StaticProvider) Set(fps, tempC, ramPct, cpuPct, gpuPct float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fps = fps
	p.temp = tempC
	p.ram = ramPct
	p.cpu = cpuPct
	p.gpu = gpuPct
}

func (p *StaticProvider) SetFPS(fps float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fps = fps
}

func (p *StaticProvider) SetTemperatureC(tempC float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.temp = tempC
}

func (p *StaticProvider) SetRAMUsagePct(ramPct float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ram = ramPct
}

func (p *StaticProvider) SampleFPS() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fps
}

func (p *StaticProvider) SampleTemperatureC() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.temp
}

func (p *StaticProvider) SampleRAMUsagePct() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ram
}

func (p *StaticProvider) SampleCPUUsagePct() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cpu
}

func (p *StaticProvider) SampleGPUUsagePct() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.gpu
}
