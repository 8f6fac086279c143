package shadertypes

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct.
// Matches GPUVertex layout exactly (32 bytes, tightly packed vertex stride).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU representation of a single mesh vertex.
// Matches the WGSL VertexInput struct layout exactly (see GPUVertexSource).
// Size: 32 bytes (tightly packed; vertex buffers use packed attribute
// strides, not std430 vector alignment).
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: vertex normal for lighting (12 bytes)
	TexCoord [2]float32 // offset 24: UV texture coordinate (8 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 32)
	putF32(buf, 0, g.Position[:])
	putF32(buf, 12, g.Normal[:])
	putF32(buf, 24, g.TexCoord[:])
	return buf
}

// GPUUniformsSource is the canonical WGSL definition of the Uniforms struct.
// Matches GPUUniforms layout exactly (256 bytes, 16-byte vector stride).
//
//go:embed assets/uniforms.wgsl
var GPUUniformsSource string

// GPUUniforms is the per-frame uniform block: camera matrices, camera
// position, elapsed time and lighting state.
// Matches the WGSL Uniforms struct layout exactly (see GPUUniformsSource).
// Size: 256 bytes. Every vec3 is padded to a 16-byte stride; the padding
// words are written as zero and never read on either side of the boundary,
// and exist solely to keep the following field offsets stable.
type GPUUniforms struct {
	ViewMatrix           [16]float32 // offset   0: world-to-view transform (mat4x4<f32>)
	ProjectionMatrix     [16]float32 // offset  64: view-to-clip transform (mat4x4<f32>)
	ViewProjectionMatrix [16]float32 // offset 128: Projection * View product (mat4x4<f32>)
	CameraPosition       [3]float32  // offset 192: world-space camera position (vec3<f32>)
	Time                 float32     // offset 204: elapsed scene time in seconds (fills vec3 gap)
	LightDirection       [3]float32  // offset 208: normalized direction toward the light (vec3<f32>)
	Pad1                 float32     // offset 220: padding to 16-byte stride
	LightColor           [3]float32  // offset 224: light RGB intensity (vec3<f32>)
	Pad2                 float32     // offset 236: padding to 16-byte stride
	AmbientColor         [3]float32  // offset 240: ambient RGB term (vec3<f32>)
	Pad3                 float32     // offset 252: padding to 256 bytes
}

// Size returns the size of the GPUUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (256)
func (g *GPUUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUUniforms struct into a byte buffer suitable for GPU upload.
// Padding words are written as zero.
//
// Returns:
//   - []byte: 256-byte buffer ready for GPU upload
func (g *GPUUniforms) Marshal() []byte {
	buf := make([]byte, 256)
	putF32(buf, 0, g.ViewMatrix[:])
	putF32(buf, 64, g.ProjectionMatrix[:])
	putF32(buf, 128, g.ViewProjectionMatrix[:])
	putF32(buf, 192, g.CameraPosition[:])
	binary.LittleEndian.PutUint32(buf[204:], math.Float32bits(g.Time))
	putF32(buf, 208, g.LightDirection[:])
	binary.LittleEndian.PutUint32(buf[220:], 0) // Pad1
	putF32(buf, 224, g.LightColor[:])
	binary.LittleEndian.PutUint32(buf[236:], 0) // Pad2
	putF32(buf, 240, g.AmbientColor[:])
	binary.LittleEndian.PutUint32(buf[252:], 0) // Pad3
	return buf
}

// GPUBuildingInstanceSource is the canonical WGSL definition of the
// BuildingInstance struct. Matches GPUBuildingInstance layout exactly
// (96 bytes, std430 aligned).
//
//go:embed assets/building_instance.wgsl
var GPUBuildingInstanceSource string

// GPUBuildingInstance is the per-instance record for one renderable
// building. Many instances share one base mesh; the packed instance buffer
// holds one of these per visible building, in batch order.
// Matches the WGSL BuildingInstance struct layout exactly (see
// GPUBuildingInstanceSource). Size: 96 bytes.
type GPUBuildingInstance struct {
	ModelMatrix  [16]float32 // offset  0: model-to-world transform (mat4x4<f32>)
	Color        [4]float32  // offset 64: facade RGBA tint (vec4<f32>)
	TextureIndex uint32      // offset 80: TextureIndex slot for the facade texture
	Height       float32     // offset 84: building height in meters
	LodLevel     uint32      // offset 88: detail tier selected for this frame
	Pad          uint32      // offset 92: padding to 96 bytes
}

// Size returns the size of the GPUBuildingInstance struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUBuildingInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUBuildingInstance struct into a byte buffer suitable for GPU upload.
// The padding word is written as zero.
//
// Returns:
//   - []byte: 96-byte buffer ready for GPU upload
func (g *GPUBuildingInstance) Marshal() []byte {
	buf := make([]byte, 96)
	putF32(buf, 0, g.ModelMatrix[:])
	putF32(buf, 64, g.Color[:])
	binary.LittleEndian.PutUint32(buf[80:], g.TextureIndex)
	binary.LittleEndian.PutUint32(buf[84:], math.Float32bits(g.Height))
	binary.LittleEndian.PutUint32(buf[88:], g.LodLevel)
	binary.LittleEndian.PutUint32(buf[92:], 0) // Pad
	return buf
}

// GPUTerrainUniformsSource is the canonical WGSL definition of the
// TerrainUniforms struct. Matches GPUTerrainUniforms layout exactly (32 bytes).
//
//go:embed assets/terrain_uniforms.wgsl
var GPUTerrainUniformsSource string

// GPUTerrainUniforms describes one terrain patch.
// Matches the WGSL TerrainUniforms struct layout exactly (see
// GPUTerrainUniformsSource). Size: 32 bytes.
// Invariant: GridWidth * GridHeight equals the patch heightmap's sample
// count; the vertex shader indexes the heightmap with these dimensions.
type GPUTerrainUniforms struct {
	TerrainOrigin [2]float32 // offset  0: world-space XZ origin of the patch (vec2<f32>)
	TerrainSize   [2]float32 // offset  8: world-space XZ extent of the patch (vec2<f32>)
	HeightScale   float32    // offset 16: multiplier applied to heightmap samples
	TextureTiling float32    // offset 20: texture repeat factor across the patch
	GridWidth     uint32     // offset 24: heightmap grid width in cells
	GridHeight    uint32     // offset 28: heightmap grid height in cells
}

// Size returns the size of the GPUTerrainUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUTerrainUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUTerrainUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPUTerrainUniforms) Marshal() []byte {
	buf := make([]byte, 32)
	putF32(buf, 0, g.TerrainOrigin[:])
	putF32(buf, 8, g.TerrainSize[:])
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(g.HeightScale))
	binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(g.TextureTiling))
	binary.LittleEndian.PutUint32(buf[24:], g.GridWidth)
	binary.LittleEndian.PutUint32(buf[28:], g.GridHeight)
	return buf
}

// GPURoadVertexSource is the canonical WGSL definition of the RoadVertex
// struct. Matches GPURoadVertex layout exactly (32 bytes).
//
//go:embed assets/road_vertex.wgsl
var GPURoadVertexSource string

// GPURoadVertex is one vertex of a tessellated road ribbon. Width varies per
// vertex to support tapering segments; RoadType selects shading and lane
// markings in the fragment shader.
// Matches the WGSL RoadVertex struct layout exactly (see GPURoadVertexSource).
// Size: 32 bytes.
type GPURoadVertex struct {
	Position [3]float32 // offset  0: vertex position in world space (12 bytes)
	Pad      float32    // offset 12: padding to 16-byte vector stride
	TexCoord [2]float32 // offset 16: UV along and across the ribbon (8 bytes)
	Width    float32    // offset 24: road width in meters at this vertex
	RoadType uint32     // offset 28: road classification tag
}

// Size returns the size of the GPURoadVertex struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPURoadVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPURoadVertex struct into a byte buffer suitable for GPU upload.
// The padding word is written as zero.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPURoadVertex) Marshal() []byte {
	buf := make([]byte, 32)
	putF32(buf, 0, g.Position[:])
	binary.LittleEndian.PutUint32(buf[12:], 0) // Pad
	putF32(buf, 16, g.TexCoord[:])
	binary.LittleEndian.PutUint32(buf[24:], math.Float32bits(g.Width))
	binary.LittleEndian.PutUint32(buf[28:], g.RoadType)
	return buf
}

// GPUFrustumPlanesSource is the canonical WGSL definition of the
// FrustumPlanes struct. Matches GPUFrustumPlanes layout exactly (96 bytes).
//
//go:embed assets/frustum_planes.wgsl
var GPUFrustumPlanesSource string

// GPUFrustumPlanes carries the six clip planes for GPU-side culling, each a
// plane equation with the unit normal in xyz and the distance in w. The
// order is fixed as left, right, bottom, top, near, far; consumers rely on
// the near/far pair sitting at indices 4 and 5.
// Matches the WGSL FrustumPlanes struct layout exactly (see
// GPUFrustumPlanesSource). Size: 96 bytes (6 x vec4<f32>).
type GPUFrustumPlanes struct {
	Planes [6][4]float32 // offset 0: plane equations, normal.xyz + distance.w
}

// Size returns the size of the GPUFrustumPlanes struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUFrustumPlanes) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUFrustumPlanes struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 96-byte buffer ready for GPU upload
func (g *GPUFrustumPlanes) Marshal() []byte {
	buf := make([]byte, 96)
	for i := range 6 {
		putF32(buf, i*16, g.Planes[i][:])
	}
	return buf
}

// GPUDrawIndexedArgsSource is the canonical WGSL definition of the
// DrawIndexedArgs struct. Matches GPUDrawIndexedArgs layout exactly (20 bytes).
//
//go:embed assets/indirect_args.wgsl
var GPUDrawIndexedArgsSource string

// GPUDrawIndexedArgs is one indirect draw record, consumed directly by the
// GPU's DrawIndexedIndirect mechanism. One record per batch; the argument
// buffer is rebuilt every frame the visible set changes.
// Matches the WGSL DrawIndexedArgs struct layout exactly (see
// GPUDrawIndexedArgsSource). Size: 20 bytes (4 x u32 + 1 x i32).
type GPUDrawIndexedArgs struct {
	IndexCount    uint32 // offset  0: number of indices in the batch's mesh range
	InstanceCount uint32 // offset  4: number of instances drawn by this record
	IndexStart    uint32 // offset  8: first index within the shared index buffer
	BaseVertex    int32  // offset 12: signed offset added to each index value
	BaseInstance  uint32 // offset 16: batch's starting offset in the packed instance buffer
}

// Size returns the size of the GPUDrawIndexedArgs struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (20)
func (g *GPUDrawIndexedArgs) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUDrawIndexedArgs struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 20-byte buffer ready for GPU upload
func (g *GPUDrawIndexedArgs) Marshal() []byte {
	buf := make([]byte, 20)
	binary.LittleEndian.PutUint32(buf[0:4], g.IndexCount)
	binary.LittleEndian.PutUint32(buf[4:8], g.InstanceCount)
	binary.LittleEndian.PutUint32(buf[8:12], g.IndexStart)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(g.BaseVertex))
	binary.LittleEndian.PutUint32(buf[16:20], g.BaseInstance)
	return buf
}

// putF32 writes a float32 slice at the given byte offset, little-endian.
func putF32(buf []byte, offset int, vals []float32) {
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[offset+i*4:], math.Float32bits(v))
	}
}
