package renderer

// PresentMode selects how finished frames reach the display surface.
type PresentMode int

const (
	// PresentModeVSync holds each frame for the next vertical blank. The
	// frame rate is pinned to the monitor's refresh rate and never tears.
	// This is the default, and what the city demo ships with.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents as soon as a frame is ready. Lowest
	// latency, may tear; useful for profiling the pipeline unthrottled.
	PresentModeUncapped
)

// MSAASampleCount is the multisample count for the color and depth targets.
// WebGPU guarantees 1 and 4 on every adapter; 8 and 16 depend on the
// hardware and fall back at surface configuration when unsupported.
type MSAASampleCount uint32

const (
	// MSAAOff renders single-sampled.
	MSAAOff MSAASampleCount = 1

	// MSAA4x is the default: universally supported and enough to smooth
	// the thin building edges a dense city silhouettes against the sky.
	MSAA4x MSAASampleCount = 4

	// MSAA8x is adapter-dependent.
	MSAA8x MSAASampleCount = 8

	// MSAA16x is adapter-dependent.
	MSAA16x MSAASampleCount = 16
)

// RendererBackend is what the Renderer front end drives: surface and device
// ownership, the static mesh uploads, and per-frame submission. The only
// implementation is the WebGPU backend; the seam stays so a second graphics
// API can slot in behind the same Renderer surface.
type RendererBackend interface {
	wgpuRendererBackend
}
