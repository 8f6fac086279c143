package renderer

import (
	"sync"

	"github.com/ximhear/songdo/engine/scene"
	"github.com/ximhear/songdo/engine/shadertypes"
	"github.com/ximhear/songdo/engine/window"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backend RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pendingClearColor    *[4]float64
	instanceCapacity     int
	drawCapacity         int
	terrainSlots         int
}

// Renderer submits published frames to the GPU. The geometry pools are
// uploaded once up front; per frame only the uniform, instance, and indirect
// argument buffers are rewritten before the render pass is encoded.
//
// The Renderer owns the GPU device, surface, fixed buffer slots, and the
// three city render pipelines, all held behind the RendererBackend seam.
type Renderer interface {
	// UploadBuildingMesh uploads the shared building mesh. All LOD levels
	// live in one vertex/index buffer pair; the registry's index ranges
	// select a level at draw time via the indirect argument records.
	//
	// Parameters:
	//   - vertices: the mesh vertices across all LOD levels
	//   - indices: the mesh indices across all LOD levels
	//
	// Returns:
	//   - error: an error if buffer creation fails
	UploadBuildingMesh(vertices []shadertypes.GPUVertex, indices []uint32) error

	// UploadRoadMesh uploads the shared road ribbon mesh. Visible segments
	// are drawn as index sub-ranges of this one buffer pair.
	//
	// Parameters:
	//   - vertices: the tessellated road vertices for the whole city
	//   - indices: the road indices for the whole city
	//
	// Returns:
	//   - error: an error if buffer creation fails
	UploadRoadMesh(vertices []shadertypes.GPURoadVertex, indices []uint32) error

	// UploadTerrainMesh uploads the terrain grid authored on the unit
	// square; each patch's uniforms place it in world space at draw time.
	//
	// Parameters:
	//   - vertices: the terrain grid vertices
	//   - indices: the terrain grid indices
	//
	// Returns:
	//   - error: an error if buffer creation fails
	UploadTerrainMesh(vertices []shadertypes.GPUVertex, indices []uint32) error

	// RenderFrame writes the frame's uniform, instance, terrain, and
	// indirect argument buffers, encodes one render pass drawing the
	// visible terrain patches, road segments, and building batches, and
	// presents the result.
	//
	// Parameters:
	//   - out: a published frame; nil frames are skipped without error
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	RenderFrame(out *scene.FrameOutput) error

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// A call to Resize is required after changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// Release frees the GPU buffers, pipelines, and surface owned by the renderer.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer presenting to the given window's surface
// through the WebGPU backend.
//
// Parameters:
//   - win: the window whose surface the renderer presents to
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the given options
func NewRenderer(win window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:               &sync.Mutex{},
		instanceCapacity: 65536,
		drawCapacity:     1024,
		terrainSlots:     64,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x // default
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	r.backend = newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, msaa, backendCapacities{
		instances:    r.instanceCapacity,
		draws:        r.drawCapacity,
		terrainSlots: r.terrainSlots,
	})

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(*r.pendingClearColor)
	}

	r.backend.ConfigureSurface(win.Width(), win.Height())
	return r
}

func (r *renderer) UploadBuildingMesh(vertices []shadertypes.GPUVertex, indices []uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.UploadBuildingMesh(vertices, indices)
}

func (r *renderer) UploadRoadMesh(vertices []shadertypes.GPURoadVertex, indices []uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.UploadRoadMesh(vertices, indices)
}

func (r *renderer) UploadTerrainMesh(vertices []shadertypes.GPUVertex, indices []uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.UploadTerrainMesh(vertices, indices)
}

func (r *renderer) RenderFrame(out *scene.FrameOutput) error {
	if out == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.RenderFrame(out)
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Release()
}
