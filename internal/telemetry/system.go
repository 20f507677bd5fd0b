package telemetry

import (
	"strings"
	"sync"
	"time"

	"codeberg.org/mutker/perfctl/internal/logger"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Thermal sensor name fragments, in preference order. The first sensor
// matching a fragment wins; otherwise the hottest reported sensor is used.
var thermalSensorPriority = []string{"skin", "soc", "cpu", "gpu", "battery"}

// SystemProvider samples host telemetry through gopsutil. Every sampling
// error degrades to the last known value; the provider never blocks beyond
// the underlying syscall and never returns an error to the control tick.
type SystemProvider struct {
	frames *FrameFeed

	mu       sync.Mutex
	lastTemp float64
	lastRAM  float64
	lastCPU  float64
	lastGPU  float64
}

func NewSystemProvider(frames *FrameFeed) *SystemProvider {
	return &SystemProvider{frames: frames}
}

func (p *SystemProvider) SampleFPS() float64 {
	if p.frames == nil {
		return 0
	}

	return p.frames.FPS(time.Now())
}

func (p *SystemProvider) SampleTemperatureC() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	sensors, err := host.SensorsTemperatures()
	if err != nil || len(sensors) == 0 {
		logger.Debug().Err(err).Msg("Thermal sensor read failed, using last known value")
		return p.lastTemp
	}

	if temp, ok := pickSensor(sensors); ok {
		p.lastTemp = temp
	}

	return p.lastTemp
}

func (p *SystemProvider) SampleRAMUsagePct() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	vm, err := mem.VirtualMemory()
	if err != nil {
		logger.Debug().Err(err).Msg("RAM sample failed, using last known value")
		return p.lastRAM
	}

	p.lastRAM = vm.UsedPercent

	return p.lastRAM
}

func (p *SystemProvider) SampleCPUUsagePct() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Zero interval: diff against the previous call, never sleeps the tick.
	percentages, err := cpu.Percent(0, false)
	if err != nil || len(percentages) == 0 {
		logger.Debug().Err(err).Msg("CPU sample failed, using last known value")
		return p.lastCPU
	}

	p.lastCPU = percentages[0]

	return p.lastCPU
}

func (p *SystemProvider) SampleGPUUsagePct() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	// No portable GPU load source on this device class; estimate from the
	// GPU thermal sensor when present, otherwise hold the last known value.
	sensors, err := host.SensorsTemperatures()
	if err != nil {
		return p.lastGPU
	}
	for i := range sensors {
		if strings.Contains(strings.ToLower(sensors[i].SensorKey), "gpu") && sensors[i].High > 0 {
			p.lastGPU = clampPct(sensors[i].Temperature / sensors[i].High * 100)
			break
		}
	}

	return p.lastGPU
}

// TotalRAMMB reports the host's physical memory in megabytes, or 0 when it
// cannot be determined.
func TotalRAMMB() int {
	vm, err := mem.VirtualMemory()
	if err != nil {
		logger.Debug().Err(err).Msg("Total RAM probe failed")
		return 0
	}

	return int(vm.Total / (1024 * 1024))
}

func pickSensor(sensors []host.TemperatureStat) (float64, bool) {
	for _, fragment := range thermalSensorPriority {
		for i := range sensors {
			if strings.Contains(strings.ToLower(sensors[i].SensorKey), fragment) {
				return sensors[i].Temperature, true
			}
		}
	}

	hottest := 0.0
	found := false
	for i := range sensors {
		if sensors[i].Temperature > hottest {
			hottest = sensors[i].Temperature
			found = true
		}
	}

	return hottest, found
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}

	return v
}
