package renderer

import (
	_ "embed"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/ximhear/songdo/common"
	"github.com/ximhear/songdo/engine/scene"
	"github.com/ximhear/songdo/engine/shadertypes"
)

//go:embed assets/city_building.wgsl
var buildingShaderSource string

//go:embed assets/city_road.wgsl
var roadShaderSource string

//go:embed assets/city_terrain.wgsl
var terrainShaderSource string

// terrainUniformStride is the spacing between terrain patch uniform blocks.
// WebGPU requires dynamic uniform offsets to be 256-byte aligned.
const terrainUniformStride = 256

// backendCapacities sizes the per-frame GPU buffers at device init.
type backendCapacities struct {
	instances    int
	draws        int
	terrainSlots int
}

// meshBuffers is one uploaded vertex/index buffer pair.
type meshBuffers struct {
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int
}

func (m *meshBuffers) release() {
	if m.vertexBuffer != nil {
		m.vertexBuffer.Release()
		m.vertexBuffer = nil
	}
	if m.indexBuffer != nil {
		m.indexBuffer.Release()
		m.indexBuffer = nil
	}
	m.indexCount = 0
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTextureView      *wgpu.TextureView
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)
	sampleCount MSAASampleCount  // MSAA sample count for the main render pass
	clearColor  wgpu.Color

	capacities backendCapacities

	// Fixed per-frame buffers, rewritten on every RenderFrame.
	uniformBuffer        *wgpu.Buffer
	instanceBuffer       *wgpu.Buffer
	indirectBuffer       *wgpu.Buffer
	terrainUniformBuffer *wgpu.Buffer

	sceneLayout    *wgpu.BindGroupLayout
	instanceLayout *wgpu.BindGroupLayout
	terrainLayout  *wgpu.BindGroupLayout

	sceneBindGroup    *wgpu.BindGroup // group 0: frame uniforms
	instanceBindGroup *wgpu.BindGroup // group 1 on the building pipeline
	terrainBindGroup  *wgpu.BindGroup // group 1 on the terrain pipeline, dynamic offset

	buildingPipeline *wgpu.RenderPipeline
	roadPipeline     *wgpu.RenderPipeline
	terrainPipeline  *wgpu.RenderPipeline

	buildingMesh meshBuffers
	roadMesh     meshBuffers
	terrainMesh  meshBuffers

	// Frame state while a render pass is open
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue

	// ConfigureSurface is a wrapper for boilerplate logic required when calling ConfigureSurface on a surface.
	// This is required when the surface size changes, such as when the window is resized.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the render pass clear color.
	//
	// Parameters:
	//   - color: the clear color channels in linear 0..1
	SetClearColor(color [4]float64)

	// UploadBuildingMesh creates the building vertex/index buffers and uploads the mesh data.
	//
	// Parameters:
	//   - vertices: the mesh vertices across all LOD levels
	//   - indices: the mesh indices across all LOD levels
	//
	// Returns:
	//   - error: an error if buffer creation fails
	UploadBuildingMesh(vertices []shadertypes.GPUVertex, indices []uint32) error

	// UploadRoadMesh creates the road vertex/index buffers and uploads the mesh data.
	//
	// Parameters:
	//   - vertices: the tessellated road vertices
	//   - indices: the road indices
	//
	// Returns:
	//   - error: an error if buffer creation fails
	UploadRoadMesh(vertices []shadertypes.GPURoadVertex, indices []uint32) error

	// UploadTerrainMesh creates the terrain grid vertex/index buffers and uploads the mesh data.
	//
	// Parameters:
	//   - vertices: the terrain grid vertices on the unit square
	//   - indices: the terrain grid indices
	//
	// Returns:
	//   - error: an error if buffer creation fails
	UploadTerrainMesh(vertices []shadertypes.GPUVertex, indices []uint32) error

	// RenderFrame writes the frame's GPU buffers, encodes the city render
	// pass, submits it, and presents the surface.
	//
	// Parameters:
	//   - out: the published frame to draw
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	RenderFrame(out *scene.FrameOutput) error

	// Release frees all GPU resources owned by the backend.
	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, capacities backendCapacities) wgpuRendererBackend {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: sampleCount,
		clearColor:  wgpu.Color{R: 0.05, G: 0.07, B: 0.12, A: 1.0},
		capacities:  capacities,
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		// Indirect draw records carry non-zero firstInstance values so the
		// shader's instance_index lands inside the batch's buffer window.
		RequiredFeatures: []wgpu.FeatureName{wgpu.FeatureNameIndirectFirstInstance},
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(err)
	}
	w.device = d
	w.queue = d.GetQueue()

	w.createFrameBuffers()
	w.createBindGroups()

	return w
}

// createFrameBuffers allocates the fixed per-frame buffer slots.
func (b *wgpuRendererBackendImpl) createFrameBuffers() {
	var u shadertypes.GPUUniforms
	var inst shadertypes.GPUBuildingInstance
	var args shadertypes.GPUDrawIndexedArgs

	mustBuffer := func(label string, size uint64, usage wgpu.BufferUsage) *wgpu.Buffer {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: label,
			Size:  size,
			Usage: usage,
		})
		if err != nil {
			panic(err)
		}
		return buf
	}

	b.uniformBuffer = mustBuffer(
		shadertypes.BufferIndexUniforms.String(),
		uint64(u.Size()),
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst,
	)
	b.instanceBuffer = mustBuffer(
		shadertypes.BufferIndexInstances.String(),
		uint64(inst.Size()*b.capacities.instances),
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst,
	)
	// Indirect args buffer needs the Indirect usage flag for DrawIndexedIndirect.
	b.indirectBuffer = mustBuffer(
		"indirect args",
		uint64(args.Size()*b.capacities.draws),
		wgpu.BufferUsageIndirect|wgpu.BufferUsageCopyDst,
	)
	b.terrainUniformBuffer = mustBuffer(
		"terrain uniforms",
		uint64(terrainUniformStride*b.capacities.terrainSlots),
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst,
	)
}

// createBindGroups builds the three bind groups shared by every frame.
func (b *wgpuRendererBackendImpl) createBindGroups() {
	var u shadertypes.GPUUniforms
	var terr shadertypes.GPUTerrainUniforms

	sceneLayout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Scene Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64(u.Size()),
				},
			},
		},
	})
	if err != nil {
		panic(err)
	}
	b.sceneBindGroup = b.mustBindGroup("Scene", sceneLayout, []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: b.uniformBuffer, Size: wgpu.WholeSize},
	})

	instanceLayout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Instance Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeReadOnlyStorage,
				},
			},
		},
	})
	if err != nil {
		panic(err)
	}
	b.instanceBindGroup = b.mustBindGroup("Instance", instanceLayout, []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: b.instanceBuffer, Size: wgpu.WholeSize},
	})

	terrainLayout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Terrain Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   uint64(terr.Size()),
				},
			},
		},
	})
	if err != nil {
		panic(err)
	}
	b.terrainBindGroup = b.mustBindGroup("Terrain", terrainLayout, []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: b.terrainUniformBuffer, Size: uint64(terr.Size())},
	})

	b.sceneLayout = sceneLayout
	b.instanceLayout = instanceLayout
	b.terrainLayout = terrainLayout
}

func (b *wgpuRendererBackendImpl) mustBindGroup(label string, layout *wgpu.BindGroupLayout, entries []wgpu.BindGroupEntry) *wgpu.BindGroup {
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		panic(err)
	}
	return bg
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if msaaEnabled {
		// Create the MSAA texture that the render pass draws into; the resolved
		// result is written to the swapchain view as the ResolveTarget.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}
	} else {
		// No MSAA — the render pass draws directly to the swapchain view.
		b.msaaTextureView = nil
	}

	// Depth texture sample count must match the color attachment.
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	// Build the cached render pass descriptor for the main render target.
	// When MSAA is enabled, View is the MSAA texture and ResolveTarget is
	// set per-frame to the swapchain view. When disabled, View is set
	// per-frame to the swapchain view and ResolveTarget remains nil.
	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard // Don't store MSAA data, just resolve
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:          b.msaaTextureView, // nil when MSAA is off; set per frame
				ResolveTarget: nil,               // set per-frame when MSAA is on
				LoadOp:        wgpu.LoadOpClear,
				StoreOp:       storeOp,
				ClearValue:    b.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView, // Persistent until resize
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard, // Depth not needed after resolving
			DepthClearValue: 1.0,
		},
	}

	// Pipelines target the surface format, which is only known here.
	if b.buildingPipeline == nil {
		b.createPipelines()
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) SetClearColor(color [4]float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearColor = wgpu.Color{R: color[0], G: color[1], B: color[2], A: color[3]}
	if b.renderPassDescriptor != nil {
		b.renderPassDescriptor.ColorAttachments[0].ClearValue = b.clearColor
	}
}

// createPipelines builds the building, road, and terrain render pipelines.
// Called once, after the first surface configuration fixes the format.
func (b *wgpuRendererBackendImpl) createPipelines() {
	var vert shadertypes.GPUVertex
	var roadVert shadertypes.GPURoadVertex

	standardVertexLayout := wgpu.VertexBufferLayout{
		ArrayStride: uint64(vert.Size()),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{
				Format:         wgpu.VertexFormatFloat32x3,
				Offset:         0,
				ShaderLocation: uint32(shadertypes.VertexAttributePosition),
			},
			{
				Format:         wgpu.VertexFormatFloat32x3,
				Offset:         12,
				ShaderLocation: uint32(shadertypes.VertexAttributeNormal),
			},
			{
				Format:         wgpu.VertexFormatFloat32x2,
				Offset:         24,
				ShaderLocation: uint32(shadertypes.VertexAttributeTexcoord),
			},
		},
	}

	roadVertexLayout := wgpu.VertexBufferLayout{
		ArrayStride: uint64(roadVert.Size()),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 16, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32, Offset: 24, ShaderLocation: 2},
			{Format: wgpu.VertexFormatUint32, Offset: 28, ShaderLocation: 3},
		},
	}

	b.buildingPipeline = b.mustRenderPipeline(
		"city building",
		buildingShaderSource,
		[]*wgpu.BindGroupLayout{b.sceneLayout, b.instanceLayout},
		standardVertexLayout,
		wgpu.CullModeBack,
	)
	b.roadPipeline = b.mustRenderPipeline(
		"city road",
		roadShaderSource,
		[]*wgpu.BindGroupLayout{b.sceneLayout},
		roadVertexLayout,
		wgpu.CullModeNone,
	)
	b.terrainPipeline = b.mustRenderPipeline(
		"city terrain",
		terrainShaderSource,
		[]*wgpu.BindGroupLayout{b.sceneLayout, b.terrainLayout},
		standardVertexLayout,
		wgpu.CullModeBack,
	)
}

func (b *wgpuRendererBackendImpl) mustRenderPipeline(label, source string, bindGroupLayouts []*wgpu.BindGroupLayout, vertexLayout wgpu.VertexBufferLayout, cullMode wgpu.CullMode) *wgpu.RenderPipeline {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		panic(err)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		panic(err)
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  label + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{vertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		panic(err)
	}
	return created
}

func (b *wgpuRendererBackendImpl) uploadMesh(label string, mesh *meshBuffers, vertexData []byte, indices []uint32) error {
	mesh.release()

	if len(vertexData) == 0 || len(indices) == 0 {
		return errors.New("mesh upload requires vertex and index data")
	}

	vbuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	b.queue.WriteBuffer(vbuf, 0, vertexData)

	indexData := common.SliceToBytes(indices)
	ibuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Index Buffer",
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vbuf.Release()
		return err
	}
	b.queue.WriteBuffer(ibuf, 0, indexData)

	mesh.vertexBuffer = vbuf
	mesh.indexBuffer = ibuf
	mesh.indexCount = len(indices)
	return nil
}

func (b *wgpuRendererBackendImpl) UploadBuildingMesh(vertices []shadertypes.GPUVertex, indices []uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uploadMesh("Building", &b.buildingMesh, common.SliceToBytes(vertices), indices)
}

func (b *wgpuRendererBackendImpl) UploadRoadMesh(vertices []shadertypes.GPURoadVertex, indices []uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uploadMesh("Road", &b.roadMesh, common.SliceToBytes(vertices), indices)
}

func (b *wgpuRendererBackendImpl) UploadTerrainMesh(vertices []shadertypes.GPUVertex, indices []uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uploadMesh("Terrain", &b.terrainMesh, common.SliceToBytes(vertices), indices)
}

func (b *wgpuRendererBackendImpl) RenderFrame(out *scene.FrameOutput) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Defensive: if a previous frame's surface texture is still held, avoid
	// attempting to acquire another one. This prevents wgpu-native validation
	// errors like "Surface image is already acquired" when frames overlap.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	instances := out.Instances
	if len(instances) > b.capacities.instances {
		common.LogWarnThrottled("renderer-instances",
			"renderer: frame carries %d instances, GPU buffer holds %d; truncating",
			len(instances), b.capacities.instances)
		instances = instances[:b.capacities.instances]
	}
	draws := out.Draws
	if len(draws) > b.capacities.draws {
		common.LogWarnThrottled("renderer-draws",
			"renderer: frame carries %d draw records, GPU buffer holds %d; truncating",
			len(draws), b.capacities.draws)
		draws = draws[:b.capacities.draws]
	}
	terrain := out.Terrain
	if len(terrain) > b.capacities.terrainSlots {
		common.LogWarnThrottled("renderer-terrain",
			"renderer: frame carries %d terrain patches, %d slots available; truncating",
			len(terrain), b.capacities.terrainSlots)
		terrain = terrain[:b.capacities.terrainSlots]
	}

	uniforms := out.Frame.Uniforms
	b.queue.WriteBuffer(b.uniformBuffer, 0, uniforms.Marshal())
	if len(instances) > 0 {
		b.queue.WriteBuffer(b.instanceBuffer, 0, common.SliceToBytes(instances))
	}
	if len(draws) > 0 {
		b.queue.WriteBuffer(b.indirectBuffer, 0, common.SliceToBytes(draws))
	}
	for i := range terrain {
		b.queue.WriteBuffer(b.terrainUniformBuffer, uint64(i*terrainUniformStride), terrain[i].Marshal())
	}

	if err := b.beginFrame(); err != nil {
		return err
	}

	if b.terrainMesh.indexCount > 0 && len(terrain) > 0 {
		b.framePass.SetPipeline(b.terrainPipeline)
		b.framePass.SetBindGroup(0, b.sceneBindGroup, nil)
		b.framePass.SetVertexBuffer(0, b.terrainMesh.vertexBuffer, 0, wgpu.WholeSize)
		b.framePass.SetIndexBuffer(b.terrainMesh.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		for i := range terrain {
			b.framePass.SetBindGroup(1, b.terrainBindGroup, []uint32{uint32(i * terrainUniformStride)})
			b.framePass.DrawIndexed(uint32(b.terrainMesh.indexCount), 1, 0, 0, 0)
		}
	}

	if b.roadMesh.indexCount > 0 && len(out.Roads) > 0 {
		b.framePass.SetPipeline(b.roadPipeline)
		b.framePass.SetBindGroup(0, b.sceneBindGroup, nil)
		b.framePass.SetVertexBuffer(0, b.roadMesh.vertexBuffer, 0, wgpu.WholeSize)
		b.framePass.SetIndexBuffer(b.roadMesh.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		for _, seg := range out.Roads {
			b.framePass.DrawIndexed(seg.IndexCount, 1, seg.IndexStart, 0, 0)
		}
	}

	if b.buildingMesh.indexCount > 0 && len(draws) > 0 {
		b.framePass.SetPipeline(b.buildingPipeline)
		b.framePass.SetBindGroup(0, b.sceneBindGroup, nil)
		b.framePass.SetBindGroup(1, b.instanceBindGroup, nil)
		b.framePass.SetVertexBuffer(0, b.buildingMesh.vertexBuffer, 0, wgpu.WholeSize)
		b.framePass.SetIndexBuffer(b.buildingMesh.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		var args shadertypes.GPUDrawIndexedArgs
		stride := uint64(args.Size())
		for i := range draws {
			b.framePass.DrawIndexedIndirect(b.indirectBuffer, uint64(i)*stride)
		}
	}

	b.endFrame()
	b.present()
	return nil
}

func (b *wgpuRendererBackendImpl) beginFrame() error {
	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	// When MSAA is enabled, the MSAA texture is the color attachment View and
	// the swapchain view is the ResolveTarget. When MSAA is off, the swapchain
	// view is the color attachment View directly and ResolveTarget is nil.
	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) endFrame() {
	b.framePass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.framePass = nil
		b.frameSurface = nil
		b.frameView = nil
		return
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil
}

func (b *wgpuRendererBackendImpl) present() {
	// If no frame surface is held, nothing to present.
	if b.frameSurface == nil {
		return
	}

	// Present the acquired surface image and release local references.
	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buildingMesh.release()
	b.roadMesh.release()
	b.terrainMesh.release()

	for _, buf := range []*wgpu.Buffer{b.uniformBuffer, b.instanceBuffer, b.indirectBuffer, b.terrainUniformBuffer} {
		if buf != nil {
			buf.Release()
		}
	}
	b.uniformBuffer = nil
	b.instanceBuffer = nil
	b.indirectBuffer = nil
	b.terrainUniformBuffer = nil
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}
