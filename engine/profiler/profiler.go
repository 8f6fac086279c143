package profiler

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/ximhear/songdo/common"
)

// FrameStats is a point-in-time copy of the pipeline counters for one
// reporting interval.
type FrameStats struct {
	// Tested is the number of instances run through the culling test.
	Tested uint64
	// Visible is the number of instances that survived culling.
	Visible uint64
	// Overflow is the number of visible instances dropped to capacity
	// truncation.
	Overflow uint64
	// DeadlineMisses counts frames that republished the previous visible
	// set because the cull barrier missed the frame deadline.
	DeadlineMisses uint64
	// DrawRecords is the number of indirect draw records encoded.
	DrawRecords uint64
}

// Profiler tracks frame rate, memory statistics and pipeline counters for
// performance monitoring. Outputs stats to the log at a configurable
// interval. Counter methods are safe to call from the parallel cull phase.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	tested         atomic.Uint64
	visible        atomic.Uint64
	overflow       atomic.Uint64
	deadlineMisses atomic.Uint64
	drawRecords    atomic.Uint64
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// AddCullStats records one frame's culling outcome.
//
// Parameters:
//   - tested: instances run through the culling test
//   - visible: instances kept
func (p *Profiler) AddCullStats(tested, visible int) {
	p.tested.Add(uint64(tested))
	p.visible.Add(uint64(visible))
}

// AddOverflow records instances dropped to capacity truncation.
//
// Parameters:
//   - dropped: the overflow count for the frame
func (p *Profiler) AddOverflow(dropped int) {
	if dropped > 0 {
		p.overflow.Add(uint64(dropped))
	}
}

// AddDeadlineMiss records a frame that fell back to the previous visible set.
func (p *Profiler) AddDeadlineMiss() {
	p.deadlineMisses.Add(1)
}

// AddDrawRecords records the number of indirect draw records encoded.
//
// Parameters:
//   - records: the record count for the frame
func (p *Profiler) AddDrawRecords(records int) {
	p.drawRecords.Add(uint64(records))
}

// Snapshot returns the accumulated pipeline counters without resetting them.
//
// Returns:
//   - FrameStats: the counter values
func (p *Profiler) Snapshot() FrameStats {
	return FrameStats{
		Tested:         p.tested.Load(),
		Visible:        p.visible.Load(),
		Overflow:       p.overflow.Load(),
		DeadlineMisses: p.deadlineMisses.Load(),
		DrawRecords:    p.drawRecords.Load(),
	}
}

// Tick should be called once per frame to track frame timing.
// Logs performance and pipeline statistics when the update interval has
// elapsed. Statistics include: FPS, heap usage, allocation rate, GC
// count/pause times, and the culling/overflow counters for the interval.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	// Alloc: Bytes of allocated heap objects (live memory)
	// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
	}

	stats := FrameStats{
		Tested:         p.tested.Swap(0),
		Visible:        p.visible.Swap(0),
		Overflow:       p.overflow.Swap(0),
		DeadlineMisses: p.deadlineMisses.Swap(0),
		DrawRecords:    p.drawRecords.Swap(0),
	}

	common.LogInfo("profiler: fps %.2f | heap %.2f MB | alloc %.2f MB/s | gc %d (last %d µs) | tested %d visible %d overflow %d deadline-misses %d draws %d",
		fps, allocMB, allocRateMB, gcCount, lastPauseUs,
		stats.Tested, stats.Visible, stats.Overflow, stats.DeadlineMisses, stats.DrawRecords)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
