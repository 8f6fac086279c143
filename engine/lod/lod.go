// package lod assigns a discrete detail level per visible instance from its
// camera distance. Thresholds are configuration, not code: the selector is
// built from an ordered breakpoint sequence and an optional hysteresis
// margin that suppresses flicker when the camera oscillates near a boundary.
package lod

import (
	"fmt"
	"sort"

	"github.com/chewxy/math32"
)

// Selector maps camera distance to a LOD level.
// Level = number of breakpoints the distance meets or exceeds, so a distance
// exactly equal to a breakpoint resolves to the lower-detail side. The
// mapping is monotonically non-decreasing in distance by construction.
type Selector struct {
	breakpoints []float32
	hysteresis  float32
}

// NewSelector creates a Selector from an ascending breakpoint sequence.
//
// Parameters:
//   - breakpoints: distance thresholds in ascending order; may be empty, in
//     which case every instance gets level 0
//   - hysteresis: margin an instance's distance must cross a breakpoint by
//     before its level changes between frames; 0 disables hysteresis
//
// Returns:
//   - *Selector: the configured selector
//   - error: an error if the breakpoints are not strictly ascending and
//     positive, or the margin is negative
func NewSelector(breakpoints []float32, hysteresis float32) (*Selector, error) {
	if hysteresis < 0 || math32.IsNaN(hysteresis) {
		return nil, fmt.Errorf("lod: hysteresis margin must be >= 0, got %v", hysteresis)
	}
	for i, b := range breakpoints {
		if math32.IsNaN(b) || b <= 0 {
			return nil, fmt.Errorf("lod: breakpoint %d must be a positive distance, got %v", i, b)
		}
	}
	if !sort.SliceIsSorted(breakpoints, func(a, b int) bool { return breakpoints[a] < breakpoints[b] }) {
		return nil, fmt.Errorf("lod: breakpoints must be strictly ascending")
	}
	for i := 1; i < len(breakpoints); i++ {
		if breakpoints[i] == breakpoints[i-1] {
			return nil, fmt.Errorf("lod: duplicate breakpoint %v", breakpoints[i])
		}
	}

	s := &Selector{
		breakpoints: append([]float32(nil), breakpoints...),
		hysteresis:  hysteresis,
	}
	return s, nil
}

// Levels returns the number of distinct levels the selector can assign.
//
// Returns:
//   - int: breakpoint count + 1
func (s *Selector) Levels() int {
	return len(s.breakpoints) + 1
}

// Select returns the LOD level for a camera distance, ignoring history.
// A NaN distance fails open to level 0 (full detail).
//
// Parameters:
//   - distance: camera-to-instance distance
//
// Returns:
//   - uint32: the assigned level; 0 is the most detailed
func (s *Selector) Select(distance float32) uint32 {
	var level uint32
	for _, b := range s.breakpoints {
		if distance >= b {
			level++
		}
	}
	return level
}

// SelectStable returns the LOD level for a camera distance, holding the
// previous frame's level unless the distance has crossed the boundary
// between the two levels by more than the hysteresis margin. Jumps of more
// than one level always resolve to the raw selection; hysteresis only
// steadies single-boundary oscillation.
//
// Parameters:
//   - distance: camera-to-instance distance
//   - prev: the level assigned in the previous frame
//
// Returns:
//   - uint32: the assigned level
func (s *Selector) SelectStable(distance float32, prev uint32) uint32 {
	raw := s.Select(distance)
	if raw == prev || s.hysteresis == 0 {
		return raw
	}
	if prev > uint32(len(s.breakpoints)) {
		// Stale level from an older breakpoint set: resynchronize.
		return raw
	}

	if raw == prev+1 {
		// Moving toward less detail across breakpoints[prev]: require the
		// distance to clear the boundary by the margin.
		if distance < s.breakpoints[prev]+s.hysteresis {
			return prev
		}
		return raw
	}
	if prev >= 1 && raw == prev-1 {
		// Moving toward more detail across breakpoints[prev-1].
		if distance > s.breakpoints[prev-1]-s.hysteresis {
			return prev
		}
		return raw
	}
	return raw
}
