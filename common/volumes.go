package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Sphere is a bounding sphere in world space.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Valid reports whether the sphere is usable for culling.
// Spheres with NaN components or a non-positive radius are malformed;
// callers should treat instances carrying them as always-visible.
//
// Returns:
//   - bool: true if the sphere can be tested against planes
func (s Sphere) Valid() bool {
	if math32.IsNaN(s.Radius) || s.Radius <= 0 {
		return false
	}
	for i := range 3 {
		if math32.IsNaN(s.Center[i]) {
			return false
		}
	}
	return true
}

// Valid reports whether the box is usable for culling.
// Boxes with NaN components or inverted extents are malformed.
//
// Returns:
//   - bool: true if the box can be tested against planes
func (b AABB) Valid() bool {
	for i := range 3 {
		if math32.IsNaN(b.Min[i]) || math32.IsNaN(b.Max[i]) {
			return false
		}
		if b.Min[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Center returns the geometric center of the box.
//
// Returns:
//   - mgl32.Vec3: the midpoint between Min and Max
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Union grows the box to also enclose other.
//
// Parameters:
//   - other: the box to merge in
//
// Returns:
//   - AABB: the smallest box enclosing both inputs
func (b AABB) Union(other AABB) AABB {
	out := b
	for i := range 3 {
		if other.Min[i] < out.Min[i] {
			out.Min[i] = other.Min[i]
		}
		if other.Max[i] > out.Max[i] {
			out.Max[i] = other.Max[i]
		}
	}
	return out
}

// TransformSphere maps a model-space bounding sphere to world space under a
// model matrix. The radius is scaled by the largest axis scale so the result
// stays conservative under non-uniform scaling.
//
// Parameters:
//   - s: the model-space sphere
//   - model: the instance's model-to-world matrix
//
// Returns:
//   - Sphere: the world-space sphere
func TransformSphere(s Sphere, model mgl32.Mat4) Sphere {
	center := mgl32.TransformCoordinate(s.Center, model)

	sx := model.Col(0).Vec3().Len()
	sy := model.Col(1).Vec3().Len()
	sz := model.Col(2).Vec3().Len()
	scale := math32.Max(sx, math32.Max(sy, sz))

	return Sphere{Center: center, Radius: s.Radius * scale}
}

// TransformAABB maps a model-space bounding box to world space under a model
// matrix, producing the axis-aligned box enclosing all eight transformed
// corners.
//
// Parameters:
//   - b: the model-space box
//   - model: the instance's model-to-world matrix
//
// Returns:
//   - AABB: the world-space box
func TransformAABB(b AABB, model mgl32.Mat4) AABB {
	var out AABB
	first := true
	for _, x := range [2]float32{b.Min.X(), b.Max.X()} {
		for _, y := range [2]float32{b.Min.Y(), b.Max.Y()} {
			for _, z := range [2]float32{b.Min.Z(), b.Max.Z()} {
				p := mgl32.TransformCoordinate(mgl32.Vec3{x, y, z}, model)
				if first {
					out.Min, out.Max = p, p
					first = false
					continue
				}
				for i := range 3 {
					if p[i] < out.Min[i] {
						out.Min[i] = p[i]
					}
					if p[i] > out.Max[i] {
						out.Max[i] = p[i]
					}
				}
			}
		}
	}
	return out
}
