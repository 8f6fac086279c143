// package config holds the tunable parameters of the frame pipeline. The
// source material leaves bounding shapes, LOD thresholds and capacity limits
// implementation-defined, so they live here as explicit configuration
// rather than constants: a TOML file, defaults for every field, and an
// optional file watcher that swaps the active snapshot atomically.
package config

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/ximhear/songdo/common"
)

// Pipeline is one immutable configuration snapshot. Per-frame code reads a
// snapshot pointer once at frame start; reloads never mutate a snapshot in
// place.
type Pipeline struct {
	// LODBreakpoints are the ascending camera-distance thresholds between
	// detail levels, in meters.
	LODBreakpoints []float32 `toml:"lod_breakpoints"`

	// LODHysteresis is the distance margin an instance must cross a
	// breakpoint by before its level changes between frames, in meters.
	LODHysteresis float32 `toml:"lod_hysteresis"`

	// InstanceCapacity bounds the packed instance buffer per frame.
	// Overflow truncates nearest-first and is counted, never fatal.
	InstanceCapacity int `toml:"instance_capacity"`

	// CullWorkers is the worker count for the parallel cull/LOD phase.
	CullWorkers int `toml:"cull_workers"`

	// FrameDeadlineMS caps how long the frame driver waits on the cull
	// barrier before republishing the previous frame's visible set.
	// 0 disables the deadline.
	FrameDeadlineMS int `toml:"frame_deadline_ms"`

	// ChunkSize is the square chunk edge used when grouping city content
	// into cullable units, in meters.
	ChunkSize float32 `toml:"chunk_size"`
}

// Default returns the built-in configuration.
//
// Returns:
//   - Pipeline: defaults suitable for a mid-size city scene
func Default() Pipeline {
	return Pipeline{
		LODBreakpoints:   []float32{150, 400, 1200},
		LODHysteresis:    10,
		InstanceCapacity: 65536,
		CullWorkers:      max(runtime.NumCPU()-1, 1),
		FrameDeadlineMS:  12,
		ChunkSize:        500,
	}
}

// FrameDeadline returns the cull-barrier deadline as a duration.
//
// Returns:
//   - time.Duration: the deadline; 0 means wait indefinitely
func (p *Pipeline) FrameDeadline() time.Duration {
	return time.Duration(p.FrameDeadlineMS) * time.Millisecond
}

// Validate checks the snapshot for values the pipeline cannot run with.
//
// Returns:
//   - error: the first problem found, or nil
func (p *Pipeline) Validate() error {
	for i, b := range p.LODBreakpoints {
		if b <= 0 {
			return fmt.Errorf("config: lod_breakpoints[%d] must be positive, got %v", i, b)
		}
	}
	if !sort.SliceIsSorted(p.LODBreakpoints, func(a, b int) bool {
		return p.LODBreakpoints[a] < p.LODBreakpoints[b]
	}) {
		return fmt.Errorf("config: lod_breakpoints must be ascending")
	}
	if p.LODHysteresis < 0 {
		return fmt.Errorf("config: lod_hysteresis must be >= 0, got %v", p.LODHysteresis)
	}
	if p.InstanceCapacity < 0 {
		return fmt.Errorf("config: instance_capacity must be >= 0, got %d", p.InstanceCapacity)
	}
	if p.CullWorkers < 1 {
		return fmt.Errorf("config: cull_workers must be >= 1, got %d", p.CullWorkers)
	}
	if p.FrameDeadlineMS < 0 {
		return fmt.Errorf("config: frame_deadline_ms must be >= 0, got %d", p.FrameDeadlineMS)
	}
	if p.ChunkSize <= 0 {
		return fmt.Errorf("config: chunk_size must be positive, got %v", p.ChunkSize)
	}
	return nil
}

// Load reads a TOML file and merges it over the defaults. Fields absent from
// the file keep their default values.
//
// Parameters:
//   - path: the TOML file path
//
// Returns:
//   - Pipeline: the merged, validated snapshot
//   - error: an error if the file cannot be read, parsed, or validated
func Load(path string) (Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML bytes and merges them over the defaults.
//
// Parameters:
//   - data: TOML document bytes
//
// Returns:
//   - Pipeline: the merged, validated snapshot
//   - error: an error if decoding or validation fails
func Parse(data []byte) (Pipeline, error) {
	var file Pipeline
	if err := toml.Unmarshal(data, &file); err != nil {
		return Pipeline{}, fmt.Errorf("config: parsing: %w", err)
	}

	def := Default()
	merged := Pipeline{
		LODBreakpoints:   file.LODBreakpoints,
		LODHysteresis:    common.Coalesce(file.LODHysteresis, def.LODHysteresis),
		InstanceCapacity: common.Coalesce(file.InstanceCapacity, def.InstanceCapacity),
		CullWorkers:      common.Coalesce(file.CullWorkers, def.CullWorkers),
		FrameDeadlineMS:  common.Coalesce(file.FrameDeadlineMS, def.FrameDeadlineMS),
		ChunkSize:        common.Coalesce(file.ChunkSize, def.ChunkSize),
	}
	if merged.LODBreakpoints == nil {
		merged.LODBreakpoints = def.LODBreakpoints
	}

	if err := merged.Validate(); err != nil {
		return Pipeline{}, err
	}
	return merged, nil
}
