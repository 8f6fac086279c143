package lod

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectorValidation(t *testing.T) {
	_, err := NewSelector([]float32{10, 100}, 0)
	assert.NoError(t, err)

	_, err = NewSelector(nil, 0)
	assert.NoError(t, err)

	_, err = NewSelector([]float32{100, 10}, 0)
	assert.Error(t, err, "descending breakpoints")

	_, err = NewSelector([]float32{10, 10}, 0)
	assert.Error(t, err, "duplicate breakpoints")

	_, err = NewSelector([]float32{0, 10}, 0)
	assert.Error(t, err, "non-positive breakpoint")

	_, err = NewSelector([]float32{10}, -1)
	assert.Error(t, err, "negative hysteresis")
}

func TestSelectSpecDistances(t *testing.T) {
	s, err := NewSelector([]float32{10, 100}, 0)
	require.NoError(t, err)

	assert.Equal(t, uint32(0), s.Select(5))
	assert.Equal(t, uint32(1), s.Select(50))
	assert.Equal(t, uint32(2), s.Select(500))
	assert.Equal(t, 3, s.Levels())
}

func TestSelectBreakpointEqualityResolvesToLowerDetail(t *testing.T) {
	s, err := NewSelector([]float32{10, 100}, 0)
	require.NoError(t, err)

	assert.Equal(t, uint32(1), s.Select(10))
	assert.Equal(t, uint32(2), s.Select(100))
}

func TestSelectMonotonic(t *testing.T) {
	s, err := NewSelector([]float32{5, 25, 125, 625}, 0)
	require.NoError(t, err)

	var prev uint32
	for d := float32(0); d < 1000; d += 0.25 {
		level := s.Select(d)
		assert.GreaterOrEqual(t, level, prev, "LOD must never decrease with distance (d=%v)", d)
		prev = level
	}
	assert.Equal(t, uint32(4), prev)
}

func TestSelectEmptyBreakpoints(t *testing.T) {
	s, err := NewSelector(nil, 0)
	require.NoError(t, err)

	assert.Equal(t, uint32(0), s.Select(1e9))
	assert.Equal(t, 1, s.Levels())
}

func TestSelectNaNFailsOpen(t *testing.T) {
	s, err := NewSelector([]float32{10}, 0)
	require.NoError(t, err)

	assert.Equal(t, uint32(0), s.Select(math32.NaN()))
}

func TestSelectStableHysteresis(t *testing.T) {
	s, err := NewSelector([]float32{10, 100}, 2)
	require.NoError(t, err)

	// Oscillating just past the boundary: level holds at the previous value.
	assert.Equal(t, uint32(0), s.SelectStable(10.5, 0), "within margin, keep detail")
	assert.Equal(t, uint32(1), s.SelectStable(12.5, 0), "margin cleared, drop detail")

	// Coming back toward the camera: symmetric hold below the boundary.
	assert.Equal(t, uint32(1), s.SelectStable(9.5, 1), "within margin, keep coarse")
	assert.Equal(t, uint32(0), s.SelectStable(7.5, 1), "margin cleared, regain detail")

	// Agreement needs no margin.
	assert.Equal(t, uint32(1), s.SelectStable(50, 1))

	// Multi-level jumps resolve immediately.
	assert.Equal(t, uint32(2), s.SelectStable(500, 0))
	assert.Equal(t, uint32(0), s.SelectStable(5, 2))
}

func TestSelectStableStalePrevResyncs(t *testing.T) {
	s, err := NewSelector([]float32{10}, 2)
	require.NoError(t, err)

	// prev from an older, longer breakpoint set.
	assert.Equal(t, uint32(1), s.SelectStable(50, 7))
}

func TestSelectStableZeroMarginMatchesSelect(t *testing.T) {
	s, err := NewSelector([]float32{10, 100}, 0)
	require.NoError(t, err)

	for _, d := range []float32{0, 9.999, 10, 10.001, 99, 100, 101, 1e6} {
		assert.Equal(t, s.Select(d), s.SelectStable(d, 0), "d=%v", d)
		assert.Equal(t, s.Select(d), s.SelectStable(d, 2), "d=%v", d)
	}
}
