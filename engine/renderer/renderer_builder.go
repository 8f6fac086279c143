package renderer

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the renderer.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
// Higher values (MSAA8x, MSAA16x) are adapter-dependent and may not be supported
// by all hardware.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff, MSAA4x, MSAA8x, or MSAA16x)
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe). Useful for benchmarking CPU vs GPU rendering performance.
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithClearColor sets the render pass clear color. The default is a dark sky tone.
//
// Parameters:
//   - red, green, blue, alpha: the clear color channels in linear 0..1
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(red, green, blue, alpha float64) RendererBuilderOption {
	return func(r *renderer) {
		c := [4]float64{red, green, blue, alpha}
		r.pendingClearColor = &c
	}
}

// WithInstanceCapacity sets the size of the GPU instance buffer in instances.
// Frames carrying more packed instances than this are truncated on submit.
// Should match the pipeline config's instance capacity. Defaults to 65536.
//
// Parameters:
//   - capacity: the maximum number of building instances per frame
//
// Returns:
//   - RendererBuilderOption: a function that applies the instance capacity option to a renderer
func WithInstanceCapacity(capacity int) RendererBuilderOption {
	return func(r *renderer) {
		if capacity > 0 {
			r.instanceCapacity = capacity
		}
	}
}

// WithDrawCapacity sets the size of the GPU indirect argument buffer in draw
// records. Defaults to 1024.
//
// Parameters:
//   - capacity: the maximum number of indirect draw records per frame
//
// Returns:
//   - RendererBuilderOption: a function that applies the draw capacity option to a renderer
func WithDrawCapacity(capacity int) RendererBuilderOption {
	return func(r *renderer) {
		if capacity > 0 {
			r.drawCapacity = capacity
		}
	}
}

// WithTerrainSlots sets the number of terrain patches drawable per frame.
// Each slot is one 256-byte-aligned block in the terrain uniform buffer.
// Defaults to 64.
//
// Parameters:
//   - slots: the maximum number of visible terrain patches per frame
//
// Returns:
//   - RendererBuilderOption: a function that applies the terrain slots option to a renderer
func WithTerrainSlots(slots int) RendererBuilderOption {
	return func(r *renderer) {
		if slots > 0 {
			r.terrainSlots = slots
		}
	}
}
