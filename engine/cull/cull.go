// package cull implements the per-instance visibility test of the frame
// pipeline: coarse bounding-volume checks against the view frustum. Tests
// are O(1) per instance; no per-triangle work ever happens here. Instances
// with malformed volumes fail open (always visible) so bad asset data can
// never silently drop renderable content.
package cull

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/ximhear/songdo/common"
)

// VolumeKind discriminates the bounding volume representation of an instance.
type VolumeKind uint8

const (
	// VolumeNone marks a missing bounding volume; such instances are
	// always visible.
	VolumeNone VolumeKind = iota
	// VolumeSphere tests the instance with a world-space bounding sphere.
	VolumeSphere
	// VolumeAABB tests the instance with a world-space bounding box.
	VolumeAABB
)

// Volume is a world-space bounding volume, sphere or box. The zero value is
// VolumeNone (always visible).
type Volume struct {
	Kind   VolumeKind
	Sphere common.Sphere
	AABB   common.AABB
}

// SphereVolume wraps a world-space sphere as a Volume.
//
// Parameters:
//   - s: the bounding sphere
//
// Returns:
//   - Volume: the sphere volume
func SphereVolume(s common.Sphere) Volume {
	return Volume{Kind: VolumeSphere, Sphere: s}
}

// AABBVolume wraps a world-space box as a Volume.
//
// Parameters:
//   - b: the bounding box
//
// Returns:
//   - Volume: the box volume
func AABBVolume(b common.AABB) Volume {
	return Volume{Kind: VolumeAABB, AABB: b}
}

// Valid reports whether the volume carries usable geometry for plane tests.
//
// Returns:
//   - bool: true if the volume can be culled against
func (v Volume) Valid() bool {
	switch v.Kind {
	case VolumeSphere:
		return v.Sphere.Valid()
	case VolumeAABB:
		return v.AABB.Valid()
	default:
		return false
	}
}

// Center returns the volume's representative point, used as the LOD distance
// reference. A missing volume yields the origin.
//
// Returns:
//   - mgl32.Vec3: the volume center
func (v Volume) Center() mgl32.Vec3 {
	switch v.Kind {
	case VolumeSphere:
		return v.Sphere.Center
	case VolumeAABB:
		return v.AABB.Center()
	default:
		return mgl32.Vec3{}
	}
}

// Visible tests a volume against the frustum. Conservative: partial overlaps
// and exact plane contact are kept. A missing or malformed volume is treated
// as always-visible and reported once as a data-integrity warning keyed by
// source.
//
// Parameters:
//   - f: the current frame's frustum
//   - v: the world-space bounding volume
//   - source: identifier for the owning instance pool, used to key the
//     malformed-volume warning
//
// Returns:
//   - bool: true if the instance must be kept for this frame
func Visible(f *common.Frustum, v Volume, source string) bool {
	switch v.Kind {
	case VolumeSphere:
		if !v.Sphere.Valid() {
			common.LogWarnThrottled("cull:"+source,
				"malformed bounding sphere in %s; instance kept visible", source)
			return true
		}
		return f.IntersectsSphere(v.Sphere)
	case VolumeAABB:
		if !v.AABB.Valid() {
			common.LogWarnThrottled("cull:"+source,
				"malformed bounding box in %s; instance kept visible", source)
			return true
		}
		return f.IntersectsAABB(v.AABB)
	default:
		common.LogWarnThrottled("cull:"+source,
			"missing bounding volume in %s; instance kept visible", source)
		return true
	}
}

// DistanceTo returns the distance from the camera to the volume's
// representative point.
//
// Parameters:
//   - camera: world-space camera position
//   - v: the instance volume
//
// Returns:
//   - float32: the Euclidean distance to the volume center
func DistanceTo(camera mgl32.Vec3, v Volume) float32 {
	return v.Center().Sub(camera).Len()
}

// Span is a half-open index range [Start, End) over an instance pool.
type Span struct {
	Start int
	End   int
}

// Len returns the number of items the span covers.
//
// Returns:
//   - int: End - Start
func (s Span) Len() int {
	return s.End - s.Start
}

// Partitions splits n items into at most parts contiguous spans of
// near-equal size. The split depends only on n and parts, so partition-to-
// output-slot mapping is deterministic across frames and runs; merged
// results keep pool order regardless of worker completion order.
//
// Parameters:
//   - n: total item count
//   - parts: requested partition count; clamped to [1, n]
//
// Returns:
//   - []Span: the contiguous spans, in pool order; empty if n == 0
func Partitions(n, parts int) []Span {
	if n <= 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	if parts > n {
		parts = n
	}

	spans := make([]Span, parts)
	base := n / parts
	rem := n % parts
	start := 0
	for i := range parts {
		size := base
		if i < rem {
			size++
		}
		spans[i] = Span{Start: start, End: start + size}
		start += size
	}
	return spans
}
