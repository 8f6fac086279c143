// Package frame builds the immutable per-frame context consumed by the
// culling and batching stages. A Context is assembled once at the frame
// boundary from the camera and sun state and never mutated afterwards, so
// every pipeline stage in the frame observes the same matrices and frustum.
package frame

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ximhear/songdo/common"
	"github.com/ximhear/songdo/engine/camera"
	"github.com/ximhear/songdo/engine/light"
	"github.com/ximhear/songdo/engine/shadertypes"
)

// Context is the immutable input state of one frame.
type Context struct {
	// Index is the monotonically increasing frame number.
	Index uint64
	// Time is seconds since pipeline start.
	Time float32
	// DeltaTime is seconds since the previous frame.
	DeltaTime float32

	// CameraPosition is the world-space camera position for the frame.
	CameraPosition mgl32.Vec3
	// ViewProjection is the combined matrix the frustum was extracted from.
	ViewProjection mgl32.Mat4
	// Frustum is the world-space culling frustum for the frame.
	Frustum common.Frustum

	// Uniforms is the fully populated per-frame uniform block, ready to
	// marshal into the GPU uniform buffer.
	Uniforms shadertypes.GPUUniforms
}

// Build assembles a Context from the current camera and sun state.
// The camera's matrices are sampled exactly once, so the frustum and the
// uniform matrices are guaranteed to agree even if the camera moves while
// the frame is in flight.
//
// Parameters:
//   - index: the frame number
//   - elapsed: seconds since pipeline start
//   - dt: seconds since the previous frame
//   - cam: the camera to sample (must not be nil)
//   - sun: the directional light to sample (may be nil, leaving light fields zero)
//
// Returns:
//   - Context: the assembled frame context
func Build(index uint64, elapsed, dt float32, cam camera.Camera, sun light.Sun) Context {
	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()
	viewProj := cam.ViewProjectionMatrix()
	pos := cam.Position()

	ctx := Context{
		Index:          index,
		Time:           elapsed,
		DeltaTime:      dt,
		CameraPosition: pos,
		ViewProjection: viewProj,
		Frustum:        cam.Frustum(),
	}

	ctx.Uniforms = shadertypes.GPUUniforms{
		ViewMatrix:           [16]float32(view),
		ProjectionMatrix:     [16]float32(proj),
		ViewProjectionMatrix: [16]float32(viewProj),
		CameraPosition:       [3]float32(pos),
		Time:                 elapsed,
	}

	if sun != nil {
		// The uniform block carries the direction toward the light for N·L
		// shading; Sun.Direction points from the sun toward the ground.
		ctx.Uniforms.LightDirection = [3]float32(sun.Direction().Mul(-1))
		ctx.Uniforms.LightColor = [3]float32(sun.Color())
		ctx.Uniforms.AmbientColor = [3]float32(sun.Ambient())
	}

	return ctx
}
