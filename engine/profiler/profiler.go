package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-render/engine/logger"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"go.uber.org/zap"
)

// Report is one interval's worth of frame and memory statistics.
type Report struct {
	Frames      int
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64

	// Render sums the frame statistics recorded during the interval.
	Render renderer.FrameStats
}

// Profiler tracks frame rate, memory and render statistics and logs them at a fixed interval.
// Not safe for concurrent use; call it from the frame loop.
type Profiler struct {
	log            *zap.Logger
	now            func() time.Time
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	render         renderer.FrameStats
	last           Report
}

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often Tick reports. Defaults to 1 second.
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithLogger sets the logger reports are written to.
func WithLogger(l *zap.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		if l != nil {
			p.log = l.Named("profiler")
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProfiler creates a new Profiler. The interval starts now.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		log:            logger.Nop(),
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Record adds one pass's statistics to the current interval.
func (p *Profiler) Record(s renderer.FrameStats) {
	p.render.Surfaces += s.Surfaces
	p.render.Opaque += s.Opaque
	p.render.Skybox += s.Skybox
	p.render.Transparent += s.Transparent
	p.render.UI += s.UI
	p.render.ProgramSwitches += s.ProgramSwitches
	p.render.TextureSwitches += s.TextureSwitches
	p.render.MeshSwitches += s.MeshSwitches
	p.render.Draws += s.Draws
	p.render.SkippedNotReady += s.SkippedNotReady
	p.render.Errors += s.Errors
}

// Tick should be called once per frame to track frame timing.
// Logs a report when the update interval has elapsed.
//
// Returns:
//   - bool: true if a report was produced this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	r := Report{
		Frames:      p.frameCount,
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
		Render:      p.render,
	}
	r.LastPauseUs, r.MaxPauseUs = gcPauses(&p.memStats, p.lastGCCount)

	p.log.Info("frame report",
		zap.Int("frames", r.Frames),
		zap.Float64("fps", r.FPS),
		zap.Float64("heap_mb", r.HeapMB),
		zap.Float64("alloc_rate_mb", r.AllocRateMB),
		zap.Float64("sys_mb", r.SysMB),
		zap.Uint32("gc", r.GCCount),
		zap.Uint64("gc_last_us", r.LastPauseUs),
		zap.Uint64("gc_max_us", r.MaxPauseUs),
		zap.Int("draws", r.Render.Draws),
		zap.Int("surfaces", r.Render.Surfaces),
		zap.Int("program_switches", r.Render.ProgramSwitches),
		zap.Int("texture_switches", r.Render.TextureSwitches),
		zap.Int("mesh_switches", r.Render.MeshSwitches),
		zap.Int("not_ready", r.Render.SkippedNotReady),
		zap.Int("errors", r.Render.Errors),
	)

	p.last = r
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = r.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.render = renderer.FrameStats{}
	return true
}

// Last returns the most recent report.
func (p *Profiler) Last() Report {
	return p.last
}

// gcPauses returns the latest GC pause and the longest pause since GC number since.
// PauseNs is a circular buffer of the last 256 pauses.
func gcPauses(m *runtime.MemStats, since uint32) (last, longest uint64) {
	gcCount := m.NumGC
	if gcCount == 0 {
		return 0, 0
	}
	last = m.PauseNs[(gcCount-1)%256] / 1000
	start := since
	if gcCount-start > 256 {
		start = gcCount - 256
	}
	for i := start; i < gcCount; i++ {
		longest = max(longest, m.PauseNs[i%256]/1000)
	}
	return last, longest
}
