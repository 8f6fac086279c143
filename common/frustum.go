package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// SignedDistance returns the signed distance from a point to the plane.
// Positive values are on the side the normal points toward.
//
// Parameters:
//   - p: the point to test
//
// Returns:
//   - float32: the signed distance
func (pl Plane) SignedDistance(p mgl32.Vec3) float32 {
	return pl.Normal[0]*p.X() + pl.Normal[1]*p.Y() + pl.Normal[2]*p.Z() + pl.Distance
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far

	// degenerate is set when plane extraction could not produce six usable
	// planes (near-singular view-projection matrix). A degenerate frustum
	// culls nothing.
	degenerate bool
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// degenerateNormalEpsilon is the squared normal length below which an
// extracted plane is considered unusable.
const degenerateNormalEpsilon = 1e-12

// ExtractFrustumFromMatrix extracts frustum planes from a view-projection matrix.
// The matrix should be the combined Projection * View matrix.
// Uses the Gribb/Hartmann method for plane extraction.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// A singular or near-singular input yields a frustum whose Degenerate method
// reports true; callers must treat such a frustum as "cull nothing" rather
// than rejecting geometry against garbage planes.
//
// Parameters:
//   - viewProj: the combined view-projection matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes in the order
//     left, right, bottom, top, near, far
func ExtractFrustumFromMatrix(viewProj mgl32.Mat4) Frustum {
	var f Frustum
	m := [16]float32(viewProj)

	// For column-major matrix M, element M[row][col] is at index col*4 + row

	// Left plane: row3 + row0
	f.Planes[FrustumLeft].Normal[0] = m[3] + m[0]
	f.Planes[FrustumLeft].Normal[1] = m[7] + m[4]
	f.Planes[FrustumLeft].Normal[2] = m[11] + m[8]
	f.Planes[FrustumLeft].Distance = m[15] + m[12]

	// Right plane: row3 - row0
	f.Planes[FrustumRight].Normal[0] = m[3] - m[0]
	f.Planes[FrustumRight].Normal[1] = m[7] - m[4]
	f.Planes[FrustumRight].Normal[2] = m[11] - m[8]
	f.Planes[FrustumRight].Distance = m[15] - m[12]

	// Bottom plane: row3 + row1
	f.Planes[FrustumBottom].Normal[0] = m[3] + m[1]
	f.Planes[FrustumBottom].Normal[1] = m[7] + m[5]
	f.Planes[FrustumBottom].Normal[2] = m[11] + m[9]
	f.Planes[FrustumBottom].Distance = m[15] + m[13]

	// Top plane: row3 - row1
	f.Planes[FrustumTop].Normal[0] = m[3] - m[1]
	f.Planes[FrustumTop].Normal[1] = m[7] - m[5]
	f.Planes[FrustumTop].Normal[2] = m[11] - m[9]
	f.Planes[FrustumTop].Distance = m[15] - m[13]

	// Near plane: row3 + row2
	f.Planes[FrustumNear].Normal[0] = m[3] + m[2]
	f.Planes[FrustumNear].Normal[1] = m[7] + m[6]
	f.Planes[FrustumNear].Normal[2] = m[11] + m[10]
	f.Planes[FrustumNear].Distance = m[15] + m[14]

	// Far plane: row3 - row2
	f.Planes[FrustumFar].Normal[0] = m[3] - m[2]
	f.Planes[FrustumFar].Normal[1] = m[7] - m[6]
	f.Planes[FrustumFar].Normal[2] = m[11] - m[10]
	f.Planes[FrustumFar].Distance = m[15] - m[14]

	// Normalize all planes so signed-distance tests are comparable across planes.
	for i := range f.Planes {
		if !f.normalizePlane(i) {
			f.degenerate = true
		}
	}

	return f
}

// normalizePlane normalizes a frustum plane so that the normal has unit length.
// Reports whether the plane had a usable (non-vanishing) normal.
func (f *Frustum) normalizePlane(index int) bool {
	p := &f.Planes[index]
	lenSq := p.Normal[0]*p.Normal[0] +
		p.Normal[1]*p.Normal[1] +
		p.Normal[2]*p.Normal[2]
	if lenSq < degenerateNormalEpsilon {
		return false
	}

	invLen := 1.0 / math32.Sqrt(lenSq)
	p.Normal[0] *= invLen
	p.Normal[1] *= invLen
	p.Normal[2] *= invLen
	p.Distance *= invLen
	return true
}

// Degenerate reports whether plane extraction failed to produce six usable
// planes. Culling against a degenerate frustum must keep everything.
//
// Returns:
//   - bool: true if the frustum is unusable for culling
func (f *Frustum) Degenerate() bool {
	return f.degenerate
}

// IntersectsSphere tests a bounding sphere against all six frustum planes.
// The test is conservative: spheres partially inside are kept, and a sphere
// exactly touching a plane (signed distance zero) counts as visible.
//
// Parameters:
//   - s: the bounding sphere in world space
//
// Returns:
//   - bool: true if the sphere is at least partially inside the frustum
func (f *Frustum) IntersectsSphere(s Sphere) bool {
	if f.degenerate {
		return true
	}
	for i := range f.Planes {
		if f.Planes[i].SignedDistance(s.Center)+s.Radius < 0 {
			return false
		}
	}
	return true
}

// IntersectsAABB tests an axis-aligned bounding box against all six frustum
// planes using the support point toward each plane normal (the "positive
// vertex" test). Conservative: partial overlaps are kept.
//
// Parameters:
//   - b: the bounding box in world space
//
// Returns:
//   - bool: true if the box is at least partially inside the frustum
func (f *Frustum) IntersectsAABB(b AABB) bool {
	if f.degenerate {
		return true
	}
	for i := range f.Planes {
		pl := &f.Planes[i]

		// Support point: the box corner furthest along the plane normal.
		var p mgl32.Vec3
		if pl.Normal[0] > 0 {
			p[0] = b.Max.X()
		} else {
			p[0] = b.Min.X()
		}
		if pl.Normal[1] > 0 {
			p[1] = b.Max.Y()
		} else {
			p[1] = b.Min.Y()
		}
		if pl.Normal[2] > 0 {
			p[2] = b.Max.Z()
		} else {
			p[2] = b.Min.Z()
		}

		if pl.SignedDistance(p) < 0 {
			return false
		}
	}
	return true
}
