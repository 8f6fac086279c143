package cull

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ximhear/songdo/common"
)

func testFrustum() common.Frustum {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1.0, 1.0, 100.0)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	return common.ExtractFrustumFromMatrix(proj.Mul4(view))
}

func TestVisibleSphere(t *testing.T) {
	f := testFrustum()

	inside := SphereVolume(common.Sphere{Center: mgl32.Vec3{0, 0, -10}, Radius: 1})
	outside := SphereVolume(common.Sphere{Center: mgl32.Vec3{0, 0, 50}, Radius: 1})

	assert.True(t, Visible(&f, inside, "buildings"))
	assert.False(t, Visible(&f, outside, "buildings"))
}

func TestVisibleAABB(t *testing.T) {
	f := testFrustum()

	inside := AABBVolume(common.AABB{Min: mgl32.Vec3{-1, -1, -10}, Max: mgl32.Vec3{1, 1, -5}})
	outside := AABBVolume(common.AABB{Min: mgl32.Vec3{200, -1, -10}, Max: mgl32.Vec3{210, 1, -5}})

	assert.True(t, Visible(&f, inside, "terrain"))
	assert.False(t, Visible(&f, outside, "terrain"))
}

func TestVisibleFailsOpen(t *testing.T) {
	f := testFrustum()

	// Missing volume.
	assert.True(t, Visible(&f, Volume{}, "buildings"))

	// Malformed sphere, far outside the frustum: still kept.
	bad := SphereVolume(common.Sphere{Center: mgl32.Vec3{0, 0, 500}, Radius: math32.NaN()})
	assert.True(t, Visible(&f, bad, "buildings"))

	// Inverted box.
	badBox := AABBVolume(common.AABB{Min: mgl32.Vec3{5, 0, 0}, Max: mgl32.Vec3{-5, 1, 1}})
	assert.True(t, Visible(&f, badBox, "roads"))
}

func TestVisibleDegenerateFrustumCullsNothing(t *testing.T) {
	var zero mgl32.Mat4
	f := common.ExtractFrustumFromMatrix(zero)
	require.True(t, f.Degenerate())

	v := SphereVolume(common.Sphere{Center: mgl32.Vec3{1e7, 0, 0}, Radius: 0.5})
	assert.True(t, Visible(&f, v, "buildings"))
}

func TestDistanceTo(t *testing.T) {
	cam := mgl32.Vec3{0, 0, 0}

	s := SphereVolume(common.Sphere{Center: mgl32.Vec3{3, 4, 0}, Radius: 1})
	assert.InDelta(t, 5, DistanceTo(cam, s), 1e-5)

	b := AABBVolume(common.AABB{Min: mgl32.Vec3{2, 0, 0}, Max: mgl32.Vec3{4, 0, 0}})
	assert.InDelta(t, 3, DistanceTo(cam, b), 1e-5)
}

func TestPartitionsCoverAllItemsInOrder(t *testing.T) {
	tests := []struct {
		n, parts int
	}{
		{0, 4}, {1, 4}, {7, 3}, {8, 4}, {1000, 7}, {3, 16}, {5, 0},
	}

	for _, tc := range tests {
		spans := Partitions(tc.n, tc.parts)
		if tc.n == 0 {
			assert.Empty(t, spans)
			continue
		}

		total := 0
		next := 0
		for _, sp := range spans {
			assert.Equal(t, next, sp.Start, "spans must be contiguous (n=%d parts=%d)", tc.n, tc.parts)
			assert.Greater(t, sp.Len(), 0)
			total += sp.Len()
			next = sp.End
		}
		assert.Equal(t, tc.n, total)
	}
}

func TestPartitionsDeterministic(t *testing.T) {
	a := Partitions(1003, 8)
	b := Partitions(1003, 8)
	assert.Equal(t, a, b)
}

func TestVolumeCenter(t *testing.T) {
	s := SphereVolume(common.Sphere{Center: mgl32.Vec3{1, 2, 3}, Radius: 1})
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, s.Center())

	b := AABBVolume(common.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{2, 4, 6}})
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, b.Center())

	assert.Equal(t, mgl32.Vec3{}, Volume{}.Center())
}
