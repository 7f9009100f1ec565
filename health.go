package trellis

import (
	"runtime"
	"time"
)

// PerformanceSample is one captured snapshot of render health.
type PerformanceSample struct {
	// FPS is frames drawn divided by elapsed time over the sample window.
	FPS float64
	// FrameTimeMs is the average draw duration per frame in milliseconds.
	FrameTimeMs float64
	// DrawCalls is the average number of backend draw calls per frame.
	DrawCalls float64
	// NodeCount and VisibleNodeCount are the scene size and the post-cull
	// count at sampling time.
	NodeCount        int
	VisibleNodeCount int
	// MemoryMB is the process heap in use, in mebibytes.
	MemoryMB float64
	Time     time.Time
}

// HealthReport aggregates the sample history.
type HealthReport struct {
	Samples         int
	AvgFPS          float64
	MinFPS          float64
	MaxFPS          float64
	Sub30FPSSamples int
	Sub20FPSSamples int
	AvgFrameTimeMs  float64
	AvgDrawCalls    float64
	PeakMemoryMB    float64
}

// HealthMonitor observes the frame loop and keeps a bounded history of
// periodic samples. It never influences rendering; the engine reads its
// numbers when deciding whether the active backend is struggling.
type HealthMonitor struct {
	samples []PerformanceSample
	head    int
	count   int

	interval float64

	// accumulators since the last sample
	elapsed   float64
	frames    int
	drawCalls int
	drawTime  time.Duration
}

// NewHealthMonitor creates a monitor holding windowSize samples taken every
// interval. windowSize <= 0 selects 300 samples, interval <= 0 one second.
func NewHealthMonitor(windowSize int, interval time.Duration) *HealthMonitor {
	if windowSize <= 0 {
		windowSize = 300
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &HealthMonitor{
		samples:  make([]PerformanceSample, windowSize),
		interval: interval.Seconds(),
	}
}

// recordFrame accumulates one drawn frame. Called from Engine.Draw.
func (m *HealthMonitor) recordFrame(drawCalls int, drawTime time.Duration) {
	m.frames++
	m.drawCalls += drawCalls
	m.drawTime += drawTime
}

// tick advances the sampling clock by dt seconds and captures a sample when
// the interval elapses. Called from Engine.Update.
func (m *HealthMonitor) tick(dt float64, nodeCount, visibleCount int, now time.Time) {
	m.elapsed += dt
	if m.elapsed < m.interval {
		return
	}

	s := PerformanceSample{
		NodeCount:        nodeCount,
		VisibleNodeCount: visibleCount,
		Time:             now,
	}
	if m.elapsed > 0 {
		s.FPS = float64(m.frames) / m.elapsed
	}
	if m.frames > 0 {
		s.FrameTimeMs = float64(m.drawTime) / float64(time.Millisecond) / float64(m.frames)
		s.DrawCalls = float64(m.drawCalls) / float64(m.frames)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	s.MemoryMB = float64(mem.HeapAlloc) / (1 << 20)

	m.push(s)

	m.elapsed = 0
	m.frames = 0
	m.drawCalls = 0
	m.drawTime = 0
}

func (m *HealthMonitor) push(s PerformanceSample) {
	m.samples[m.head] = s
	m.head = (m.head + 1) % len(m.samples)
	if m.count < len(m.samples) {
		m.count++
	}
}

// SampleCount returns the number of captured samples, at most the window
// size.
func (m *HealthMonitor) SampleCount() int {
	return m.count
}

// Current returns the most recent sample. ok is false before the first
// sample lands.
func (m *HealthMonitor) Current() (s PerformanceSample, ok bool) {
	if m.count == 0 {
		return PerformanceSample{}, false
	}
	idx := (m.head - 1 + len(m.samples)) % len(m.samples)
	return m.samples[idx], true
}

// at returns the i-th sample counting back from the most recent (0 =
// newest).
func (m *HealthMonitor) at(i int) PerformanceSample {
	idx := (m.head - 1 - i + 2*len(m.samples)) % len(m.samples)
	return m.samples[idx]
}

// AverageFPS returns the mean FPS over the most recent lastN samples, or 0
// when no samples exist. lastN <= 0 averages the whole history.
func (m *HealthMonitor) AverageFPS(lastN int) float64 {
	if m.count == 0 {
		return 0
	}
	n := m.count
	if lastN > 0 && lastN < n {
		n = lastN
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += m.at(i).FPS
	}
	return sum / float64(n)
}

// AverageFrameTime returns the mean frame time in milliseconds over the
// most recent lastN samples, or 0 when no samples exist.
func (m *HealthMonitor) AverageFrameTime(lastN int) float64 {
	if m.count == 0 {
		return 0
	}
	n := m.count
	if lastN > 0 && lastN < n {
		n = lastN
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += m.at(i).FrameTimeMs
	}
	return sum / float64(n)
}

// History appends the sample history to buf in chronological order and
// returns it.
func (m *HealthMonitor) History(buf []PerformanceSample) []PerformanceSample {
	for i := m.count - 1; i >= 0; i-- {
		buf = append(buf, m.at(i))
	}
	return buf
}

// Report aggregates the whole sample history.
func (m *HealthMonitor) Report() HealthReport {
	r := HealthReport{Samples: m.count}
	if m.count == 0 {
		return r
	}

	r.MinFPS = m.at(0).FPS
	r.MaxFPS = r.MinFPS
	for i := 0; i < m.count; i++ {
		s := m.at(i)
		r.AvgFPS += s.FPS
		r.AvgFrameTimeMs += s.FrameTimeMs
		r.AvgDrawCalls += s.DrawCalls
		if s.FPS < r.MinFPS {
			r.MinFPS = s.FPS
		}
		if s.FPS > r.MaxFPS {
			r.MaxFPS = s.FPS
		}
		if s.FPS < 30 {
			r.Sub30FPSSamples++
		}
		if s.FPS < 20 {
			r.Sub20FPSSamples++
		}
		if s.MemoryMB > r.PeakMemoryMB {
			r.PeakMemoryMB = s.MemoryMB
		}
	}
	n := float64(m.count)
	r.AvgFPS /= n
	r.AvgFrameTimeMs /= n
	r.AvgDrawCalls /= n
	return r
}

// reset drops the history and accumulators. The engine calls this after a
// backend rollback so the new backend is judged on its own samples.
func (m *HealthMonitor) reset() {
	m.head = 0
	m.count = 0
	m.elapsed = 0
	m.frames = 0
	m.drawCalls = 0
	m.drawTime = 0
}
