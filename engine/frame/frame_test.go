package frame

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ximhear/songdo/common"
	"github.com/ximhear/songdo/engine/camera"
	"github.com/ximhear/songdo/engine/light"
)

func testCamera() camera.Camera {
	ctrl := camera.NewCameraController(
		camera.WithTarget(mgl32.Vec3{0, 0, 0}),
		camera.WithRadius(300),
	)
	return camera.NewCamera(
		camera.WithController(ctrl),
		camera.WithAspect(16.0/9.0),
		camera.WithFar(2000),
	)
}

func TestBuildSamplesCameraOnce(t *testing.T) {
	cam := testCamera()
	sun := light.NewSun()

	ctx := Build(42, 1.5, 0.016, cam, sun)

	assert.Equal(t, uint64(42), ctx.Index)
	assert.Equal(t, float32(1.5), ctx.Time)
	assert.Equal(t, float32(0.016), ctx.DeltaTime)
	assert.Equal(t, cam.Position(), ctx.CameraPosition)
	assert.Equal(t, cam.ViewProjectionMatrix(), ctx.ViewProjection)
	assert.Equal(t, cam.Frustum(), ctx.Frustum)
}

func TestBuildUniformsMatchContext(t *testing.T) {
	cam := testCamera()
	sun := light.NewSun()

	ctx := Build(1, 2.0, 0.016, cam, sun)

	assert.Equal(t, [16]float32(ctx.ViewProjection), ctx.Uniforms.ViewProjectionMatrix)
	assert.Equal(t, [3]float32(ctx.CameraPosition), ctx.Uniforms.CameraPosition)
	assert.Equal(t, float32(2.0), ctx.Uniforms.Time)

	// Light direction is flipped toward the sun and stays normalized.
	dir := mgl32.Vec3(ctx.Uniforms.LightDirection)
	assert.InDelta(t, 1.0, dir.Len(), 1e-5)
	assert.Positive(t, dir.Y())
	assert.Equal(t, [3]float32(sun.Color()), ctx.Uniforms.LightColor)
	assert.Equal(t, [3]float32(sun.Ambient()), ctx.Uniforms.AmbientColor)
}

func TestBuildWithoutSun(t *testing.T) {
	ctx := Build(0, 0, 0, testCamera(), nil)

	assert.Equal(t, [3]float32{}, ctx.Uniforms.LightDirection)
	assert.Equal(t, [3]float32{}, ctx.Uniforms.LightColor)
}

func TestBuildFrustumUsable(t *testing.T) {
	ctx := Build(0, 0, 0, testCamera(), nil)

	require.False(t, ctx.Frustum.Degenerate())
	assert.True(t, ctx.Frustum.IntersectsSphere(common.Sphere{Center: mgl32.Vec3{0, 0, 0}, Radius: 5}))
}
