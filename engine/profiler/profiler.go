// Package profiler logs frame rate and memory statistics at a fixed interval.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-timewarp/common"
)

// Stats is one reporting window of the profiler.
type Stats struct {
	// FPS is the average frame rate across the window.
	FPS float64
	// FrameTime is the average time between ticks.
	FrameTime time.Duration
	// HeapMB is the live heap size.
	HeapMB float64
	// AllocRateMB is the heap allocation rate in MB per second across the window.
	AllocRateMB float64
	// GCCount is the total number of completed collections.
	GCCount uint32
	// MaxPause is the longest collection pause that finished within the window.
	MaxPause time.Duration
	// SysMB is the memory obtained from the OS.
	SysMB float64
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Statistics are logged at Info level once per interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	now            func() time.Time
}

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often statistics are reported.
//
// Parameters:
//   - interval: the reporting interval, ignored unless positive
//
// Returns:
//   - ProfilerOption: functional option to set the interval
func WithInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// NewProfiler creates a new Profiler that reports once per second by default.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame. When the interval has elapsed it gathers and logs
// the statistics for the window and starts a new one.
//
// Returns:
//   - Stats: the statistics of the finished window, zero if none finished
//   - bool: true if a window finished on this tick
func (p *Profiler) Tick() (Stats, bool) {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	seconds := elapsed.Seconds()

	stats := Stats{
		FPS:         float64(p.frameCount) / seconds,
		FrameTime:   elapsed / time.Duration(p.frameCount),
		HeapMB:      toMB(p.memStats.Alloc),
		AllocRateMB: toMB(p.memStats.TotalAlloc-p.lastTotalAlloc) / seconds,
		GCCount:     p.memStats.NumGC,
		MaxPause:    p.maxPauseSince(p.lastGCCount),
		SysMB:       toMB(p.memStats.Sys),
	}

	common.Logger().Info("frame stats",
		"fps", stats.FPS,
		"frame_time", stats.FrameTime,
		"heap_mb", stats.HeapMB,
		"alloc_rate_mb", stats.AllocRateMB,
		"gc", stats.GCCount,
		"max_pause", stats.MaxPause,
		"sys_mb", stats.SysMB,
	)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return stats, true
}

// maxPauseSince returns the longest pause among collections numbered from start onward.
// PauseNs is a circular buffer of the last 256 pauses.
func (p *Profiler) maxPauseSince(start uint32) time.Duration {
	count := p.memStats.NumGC
	if count-start > 256 {
		start = count - 256
	}
	var maxPause uint64
	for i := start; i < count; i++ {
		maxPause = max(maxPause, p.memStats.PauseNs[i%256])
	}
	return time.Duration(maxPause)
}

func toMB(b uint64) float64 {
	return float64(b) / 1024 / 1024
}
