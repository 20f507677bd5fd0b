package telemetry

import (
	"sync"
	"time"

	"codeberg.org/mutker/perfctl/internal/ring"
)

const (
	frameWindowSize = 60
	// After this long without a frame the feed reports 0 FPS rather than a
	// stale average.
	frameStaleAfter = 2 * time.Second
)

// FrameFeed receives frame-presented timestamps from the embedding render
// loop and derives the current frame rate from a fixed window of frame
// intervals. Safe for concurrent use.
type FrameFeed struct {
	mu        sync.Mutex
	intervals *ring.Buffer
	lastFrame time.Time
}

func NewFrameFeed() *FrameFeed {
	return &FrameFeed{
		intervals: ring.New(frameWindowSize),
	}
}

// FramePresented records one rendered frame at the given time.
func (f *FrameFeed) FramePresented(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.lastFrame.IsZero() {
		if dt := now.Sub(f.lastFrame).Seconds(); dt > 0 {
			f.intervals.Push(dt)
		}
	}
	f.lastFrame = now
}

// FPS returns the frame rate over the current window, or 0 when no frames
// have arrived recently.
func (f *FrameFeed) FPS(now time.Time) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.lastFrame.IsZero() || now.Sub(f.lastFrame) > frameStaleAfter {
		return 0
	}

	mean := f.intervals.Mean()
	if mean <= 0 {
		return 0
	}

	return 1 / mean
}
