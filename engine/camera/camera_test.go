package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ximhear/songdo/common"
)

func TestCameraDefaultsIdentityWithoutController(t *testing.T) {
	c := NewCamera()

	assert.Equal(t, mgl32.Ident4(), c.ViewMatrix())
	assert.NotEqual(t, mgl32.Ident4(), c.ProjectionMatrix())
	assert.Equal(t, mgl32.Vec3{}, c.Position())
}

func TestCameraMatricesFromController(t *testing.T) {
	ctrl := NewCameraController(
		WithTarget(mgl32.Vec3{0, 0, 0}),
		WithRadius(100),
		WithAzimuth(0),
		WithElevation(0.1),
	)
	c := NewCamera(
		WithController(ctrl),
		WithAspect(16.0/9.0),
		WithNear(1),
		WithFar(2000),
	)

	pos := ctrl.Position()
	view := c.ViewMatrix()

	// The view matrix maps the camera position to the origin.
	p := view.Mul4x1(pos.Vec4(1))
	assert.InDelta(t, 0, p.X(), 1e-4)
	assert.InDelta(t, 0, p.Y(), 1e-4)
	assert.InDelta(t, 0, p.Z(), 1e-4)

	vp := c.ViewProjectionMatrix()
	assert.Equal(t, c.ProjectionMatrix().Mul4(view), vp)
}

func TestCameraFrustumTracksMatrices(t *testing.T) {
	ctrl := NewCameraController(WithRadius(200))
	c := NewCamera(WithController(ctrl), WithFar(1000))

	f := c.Frustum()
	require.False(t, f.Degenerate())

	// The orbit target sits inside the frustum.
	assert.True(t, f.IntersectsSphere(common.Sphere{Center: ctrl.Target(), Radius: 1}))

	// A point far behind the camera is outside.
	behind := ctrl.Position().Add(ctrl.Position().Sub(ctrl.Target()).Normalize().Mul(100))
	assert.False(t, f.IntersectsSphere(common.Sphere{Center: behind, Radius: 1}))

	// Orbiting invalidates the old frustum on the next Update.
	for i := 0; i < 60; i++ {
		ctrl.OrbitRight()
	}
	c.Update()
	assert.NotEqual(t, f, c.Frustum())
}

func TestControllerSphericalPosition(t *testing.T) {
	ctrl := NewCameraController(
		WithTarget(mgl32.Vec3{10, 0, 20}),
		WithRadius(100),
		WithAzimuth(0),
		WithElevation(0),
		WithElevationBounds(0, 1.5),
	)

	// azimuth 0, elevation 0 puts the camera radius units along +Z from the target.
	pos := ctrl.Position()
	assert.InDelta(t, 10, pos.X(), 1e-4)
	assert.InDelta(t, 0, pos.Y(), 1e-4)
	assert.InDelta(t, 120, pos.Z(), 1e-4)

	ctrl.SetElevation(1.5)
	pos = ctrl.Position()
	assert.Greater(t, pos.Y(), float32(99))
}

func TestControllerZoomClampsToBounds(t *testing.T) {
	ctrl := NewCameraController(
		WithRadius(100),
		WithRadiusBounds(50, 150),
		WithZoomSpeed(10),
	)

	ctrl.Zoom(100)
	assert.Equal(t, float32(50), ctrl.Radius())

	ctrl.Zoom(-100)
	assert.Equal(t, float32(150), ctrl.Radius())
}

func TestControllerPanPreservesOrbit(t *testing.T) {
	ctrl := NewCameraController(
		WithRadius(100),
		WithPanSpeed(2),
	)

	before := ctrl.Position().Sub(ctrl.Target())
	ctrl.PanRight(5)
	ctrl.PanForward(-3)
	after := ctrl.Position().Sub(ctrl.Target())

	assert.InDelta(t, before.X(), after.X(), 1e-4)
	assert.InDelta(t, before.Y(), after.Y(), 1e-4)
	assert.InDelta(t, before.Z(), after.Z(), 1e-4)
	assert.Equal(t, float32(100), ctrl.Radius())
}

func TestControllerPanNeverChangesAltitude(t *testing.T) {
	ctrl := NewCameraController(WithElevation(0.8))

	y := ctrl.Position().Y()
	ctrl.PanForward(10)
	ctrl.PanRight(-7)
	assert.InDelta(t, y, ctrl.Position().Y(), 1e-4)
}
