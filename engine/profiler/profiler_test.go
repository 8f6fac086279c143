package profiler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilerCounters(t *testing.T) {
	p := NewProfiler()

	p.AddCullStats(100, 60)
	p.AddCullStats(50, 10)
	p.AddOverflow(5)
	p.AddOverflow(0)
	p.AddOverflow(-3)
	p.AddDeadlineMiss()
	p.AddDrawRecords(4)

	stats := p.Snapshot()
	assert.Equal(t, uint64(150), stats.Tested)
	assert.Equal(t, uint64(70), stats.Visible)
	assert.Equal(t, uint64(5), stats.Overflow)
	assert.Equal(t, uint64(1), stats.DeadlineMisses)
	assert.Equal(t, uint64(4), stats.DrawRecords)

	// Snapshot does not reset.
	assert.Equal(t, stats, p.Snapshot())
}

func TestProfilerCountersConcurrent(t *testing.T) {
	p := NewProfiler()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				p.AddCullStats(2, 1)
			}
		}()
	}
	wg.Wait()

	stats := p.Snapshot()
	assert.Equal(t, uint64(16000), stats.Tested)
	assert.Equal(t, uint64(8000), stats.Visible)
}

func TestProfilerTickInterval(t *testing.T) {
	p := NewProfiler()
	p.updateInterval = 10 * time.Millisecond

	assert.False(t, p.Tick())

	p.AddCullStats(10, 4)
	time.Sleep(15 * time.Millisecond)
	require.True(t, p.Tick())

	// Counters reset after a logged tick.
	stats := p.Snapshot()
	assert.Zero(t, stats.Tested)
	assert.Zero(t, stats.Visible)
}
