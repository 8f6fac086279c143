package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testViewProj() mgl32.Mat4 {
	// Camera at origin looking down -Z. 90 deg FOV, aspect 1, near 1, far 100.
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1.0, 1.0, 100.0)
	view := mgl32.LookAtV(
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{0, 0, -1},
		mgl32.Vec3{0, 1, 0},
	)
	return proj.Mul4(view)
}

func TestExtractFrustumNormalizedPlanes(t *testing.T) {
	f := ExtractFrustumFromMatrix(testViewProj())
	require.False(t, f.Degenerate())

	for i, p := range f.Planes {
		length := math32.Sqrt(p.Normal[0]*p.Normal[0] + p.Normal[1]*p.Normal[1] + p.Normal[2]*p.Normal[2])
		assert.InDelta(t, 1.0, length, 1e-5, "plane %d should have a unit normal", i)
	}

	// Looking down -Z: the near plane faces away from the camera (-Z), the
	// far plane faces back toward it (+Z).
	assert.Less(t, f.Planes[FrustumNear].Normal[2], float32(0))
	assert.Greater(t, f.Planes[FrustumFar].Normal[2], float32(0))
}

func TestExtractFrustumOrder(t *testing.T) {
	f := ExtractFrustumFromMatrix(testViewProj())

	// With a symmetric projection looking down -Z, the left plane normal
	// points +X and the right plane normal points -X; same pattern for
	// bottom/top on Y.
	assert.Greater(t, f.Planes[FrustumLeft].Normal[0], float32(0))
	assert.Less(t, f.Planes[FrustumRight].Normal[0], float32(0))
	assert.Greater(t, f.Planes[FrustumBottom].Normal[1], float32(0))
	assert.Less(t, f.Planes[FrustumTop].Normal[1], float32(0))
}

func TestExtractFrustumDegenerate(t *testing.T) {
	var zero mgl32.Mat4
	f := ExtractFrustumFromMatrix(zero)
	assert.True(t, f.Degenerate())

	// A degenerate frustum culls nothing.
	assert.True(t, f.IntersectsSphere(Sphere{Center: mgl32.Vec3{1e6, 1e6, 1e6}, Radius: 0.1}))
	assert.True(t, f.IntersectsAABB(AABB{Min: mgl32.Vec3{1e6, 0, 0}, Max: mgl32.Vec3{1e6 + 1, 1, 1}}))
}

func TestIntersectsAABB(t *testing.T) {
	f := ExtractFrustumFromMatrix(testViewProj())

	tests := []struct {
		name     string
		min, max mgl32.Vec3
		expected bool
	}{
		{"inside center", mgl32.Vec3{-1, -1, -10}, mgl32.Vec3{1, 1, -5}, true},
		{"outside left", mgl32.Vec3{-20, -1, -10}, mgl32.Vec3{-15, 1, -5}, false},
		{"outside right", mgl32.Vec3{15, -1, -10}, mgl32.Vec3{20, 1, -5}, false},
		{"outside behind near", mgl32.Vec3{-1, -1, 2}, mgl32.Vec3{1, 1, 5}, false},
		{"outside far", mgl32.Vec3{-1, -1, -200}, mgl32.Vec3{1, 1, -150}, false},
		{"intersecting left plane", mgl32.Vec3{-15, -1, -10}, mgl32.Vec3{-5, 1, -5}, true},
		{"encompassing", mgl32.Vec3{-1000, -1000, -1000}, mgl32.Vec3{1000, 1000, 1000}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := f.IntersectsAABB(AABB{Min: tc.min, Max: tc.max})
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestIntersectsSphere(t *testing.T) {
	f := ExtractFrustumFromMatrix(testViewProj())

	tests := []struct {
		name     string
		center   mgl32.Vec3
		radius   float32
		expected bool
	}{
		{"inside", mgl32.Vec3{0, 0, -10}, 1, true},
		{"outside left", mgl32.Vec3{-50, 0, -10}, 1, false},
		{"outside far", mgl32.Vec3{0, 0, -200}, 1, false},
		{"straddling far", mgl32.Vec3{0, 0, -100}, 2, true},
		{"behind camera", mgl32.Vec3{0, 0, 10}, 1, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := f.IntersectsSphere(Sphere{Center: tc.center, Radius: tc.radius})
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestIntersectsSphereBoundaryIsVisible(t *testing.T) {
	// Hand-built frustum: single meaningful plane x >= 0 and five permissive
	// planes, so the boundary condition can be tested exactly.
	var f Frustum
	f.Planes[0] = Plane{Normal: [3]float32{1, 0, 0}, Distance: 0}
	for i := 1; i < 6; i++ {
		f.Planes[i] = Plane{Normal: [3]float32{0, 1, 0}, Distance: 1e9}
	}

	// Sphere center exactly on the plane: signed distance + radius > 0.
	assert.True(t, f.IntersectsSphere(Sphere{Center: mgl32.Vec3{0, 0, 0}, Radius: 1}))
	// Sphere tangent from the outside: signed distance + radius == 0, kept
	// by conservative inclusion.
	assert.True(t, f.IntersectsSphere(Sphere{Center: mgl32.Vec3{-1, 0, 0}, Radius: 1}))
	// Strictly outside.
	assert.False(t, f.IntersectsSphere(Sphere{Center: mgl32.Vec3{-1.001, 0, 0}, Radius: 1}))
}

func TestTransformSphere(t *testing.T) {
	s := Sphere{Center: mgl32.Vec3{1, 0, 0}, Radius: 2}
	model := mgl32.Translate3D(10, 0, 0).Mul4(mgl32.Scale3D(2, 3, 1))

	out := TransformSphere(s, model)
	assert.InDelta(t, 12, out.Center.X(), 1e-5)
	// Radius scales by the largest axis scale to stay conservative.
	assert.InDelta(t, 6, out.Radius, 1e-5)
}

func TestTransformAABB(t *testing.T) {
	b := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	model := mgl32.HomogRotate3DY(mgl32.DegToRad(45)).Mul4(mgl32.Scale3D(1, 2, 1))

	out := TransformAABB(b, model)
	require.True(t, out.Valid())
	// A rotated unit cube grows to sqrt(2) on X/Z.
	assert.InDelta(t, -math32.Sqrt(2), out.Min.X(), 1e-4)
	assert.InDelta(t, math32.Sqrt(2), out.Max.X(), 1e-4)
	assert.InDelta(t, -2, out.Min.Y(), 1e-4)
	assert.InDelta(t, 2, out.Max.Y(), 1e-4)
}

func TestVolumeValidity(t *testing.T) {
	nan := math32.NaN()

	assert.True(t, Sphere{Center: mgl32.Vec3{0, 0, 0}, Radius: 1}.Valid())
	assert.False(t, Sphere{Radius: 0}.Valid())
	assert.False(t, Sphere{Radius: -1}.Valid())
	assert.False(t, Sphere{Center: mgl32.Vec3{nan, 0, 0}, Radius: 1}.Valid())

	assert.True(t, AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}.Valid())
	assert.False(t, AABB{Min: mgl32.Vec3{2, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}.Valid())
	assert.False(t, AABB{Min: mgl32.Vec3{nan, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}.Valid())
}
