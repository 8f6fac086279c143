package shadertypes

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The GPU contract is bit-exact: these assertions pin every struct size and
// field offset so an accidental reorder or added field fails loudly instead
// of silently corrupting buffers.

func TestGPUVertexLayout(t *testing.T) {
	var v GPUVertex
	assert.Equal(t, uintptr(32), unsafe.Sizeof(v))
	assert.Equal(t, uintptr(0), unsafe.Offsetof(v.Position))
	assert.Equal(t, uintptr(12), unsafe.Offsetof(v.Normal))
	assert.Equal(t, uintptr(24), unsafe.Offsetof(v.TexCoord))
}

func TestGPUUniformsLayout(t *testing.T) {
	var u GPUUniforms
	assert.Equal(t, uintptr(256), unsafe.Sizeof(u))
	assert.Equal(t, uintptr(0), unsafe.Offsetof(u.ViewMatrix))
	assert.Equal(t, uintptr(64), unsafe.Offsetof(u.ProjectionMatrix))
	assert.Equal(t, uintptr(128), unsafe.Offsetof(u.ViewProjectionMatrix))
	assert.Equal(t, uintptr(192), unsafe.Offsetof(u.CameraPosition))
	assert.Equal(t, uintptr(204), unsafe.Offsetof(u.Time))
	assert.Equal(t, uintptr(208), unsafe.Offsetof(u.LightDirection))
	assert.Equal(t, uintptr(224), unsafe.Offsetof(u.LightColor))
	assert.Equal(t, uintptr(240), unsafe.Offsetof(u.AmbientColor))
}

func TestGPUBuildingInstanceLayout(t *testing.T) {
	var b GPUBuildingInstance
	assert.Equal(t, uintptr(96), unsafe.Sizeof(b))
	assert.Equal(t, uintptr(0), unsafe.Offsetof(b.ModelMatrix))
	assert.Equal(t, uintptr(64), unsafe.Offsetof(b.Color))
	assert.Equal(t, uintptr(80), unsafe.Offsetof(b.TextureIndex))
	assert.Equal(t, uintptr(84), unsafe.Offsetof(b.Height))
	assert.Equal(t, uintptr(88), unsafe.Offsetof(b.LodLevel))
	assert.Equal(t, uintptr(92), unsafe.Offsetof(b.Pad))
}

func TestGPUTerrainUniformsLayout(t *testing.T) {
	var u GPUTerrainUniforms
	assert.Equal(t, uintptr(32), unsafe.Sizeof(u))
	assert.Equal(t, uintptr(0), unsafe.Offsetof(u.TerrainOrigin))
	assert.Equal(t, uintptr(8), unsafe.Offsetof(u.TerrainSize))
	assert.Equal(t, uintptr(16), unsafe.Offsetof(u.HeightScale))
	assert.Equal(t, uintptr(20), unsafe.Offsetof(u.TextureTiling))
	assert.Equal(t, uintptr(24), unsafe.Offsetof(u.GridWidth))
	assert.Equal(t, uintptr(28), unsafe.Offsetof(u.GridHeight))
}

func TestGPURoadVertexLayout(t *testing.T) {
	var v GPURoadVertex
	assert.Equal(t, uintptr(32), unsafe.Sizeof(v))
	assert.Equal(t, uintptr(0), unsafe.Offsetof(v.Position))
	assert.Equal(t, uintptr(16), unsafe.Offsetof(v.TexCoord))
	assert.Equal(t, uintptr(24), unsafe.Offsetof(v.Width))
	assert.Equal(t, uintptr(28), unsafe.Offsetof(v.RoadType))
}

func TestGPUFrustumPlanesLayout(t *testing.T) {
	var p GPUFrustumPlanes
	assert.Equal(t, uintptr(96), unsafe.Sizeof(p))
}

func TestGPUDrawIndexedArgsLayout(t *testing.T) {
	var a GPUDrawIndexedArgs
	assert.Equal(t, uintptr(20), unsafe.Sizeof(a))
	assert.Equal(t, uintptr(0), unsafe.Offsetof(a.IndexCount))
	assert.Equal(t, uintptr(4), unsafe.Offsetof(a.InstanceCount))
	assert.Equal(t, uintptr(8), unsafe.Offsetof(a.IndexStart))
	assert.Equal(t, uintptr(12), unsafe.Offsetof(a.BaseVertex))
	assert.Equal(t, uintptr(16), unsafe.Offsetof(a.BaseInstance))
}

func TestGPUUniformsMarshalPadding(t *testing.T) {
	u := GPUUniforms{
		Time:           1.5,
		LightDirection: [3]float32{0, -1, 0},
		// Deliberately dirty padding: Marshal must still write zeros.
		Pad1: 99,
		Pad2: 99,
		Pad3: 99,
	}
	buf := u.Marshal()
	require.Len(t, buf, 256)

	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[220:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[236:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[252:]))
	assert.Equal(t, math.Float32bits(1.5), binary.LittleEndian.Uint32(buf[204:]))
}

func TestGPUDrawIndexedArgsMarshalSignedBaseVertex(t *testing.T) {
	a := GPUDrawIndexedArgs{
		IndexCount:    36,
		InstanceCount: 128,
		IndexStart:    72,
		BaseVertex:    -16,
		BaseInstance:  512,
	}
	buf := a.Marshal()
	require.Len(t, buf, 20)

	assert.Equal(t, uint32(36), binary.LittleEndian.Uint32(buf[0:]))
	assert.Equal(t, uint32(128), binary.LittleEndian.Uint32(buf[4:]))
	assert.Equal(t, uint32(72), binary.LittleEndian.Uint32(buf[8:]))
	assert.Equal(t, int32(-16), int32(binary.LittleEndian.Uint32(buf[12:])))
	assert.Equal(t, uint32(512), binary.LittleEndian.Uint32(buf[16:]))
}

func TestGPUBuildingInstanceMarshalMatchesMemoryLayout(t *testing.T) {
	// The packed instance buffer is uploaded via an unsafe bulk view; this
	// pins the explicit Marshal and the in-memory layout to each other so
	// the bulk path stays correct on little-endian targets.
	b := GPUBuildingInstance{
		Color:        [4]float32{0.1, 0.2, 0.3, 1.0},
		TextureIndex: 2,
		Height:       48,
		LodLevel:     1,
	}
	for i := range 16 {
		b.ModelMatrix[i] = float32(i)
	}

	mem := unsafe.Slice((*byte)(unsafe.Pointer(&b)), 96)
	assert.Equal(t, b.Marshal(), []byte(mem))
}

func TestIndexValues(t *testing.T) {
	// The integer values are the contract; symbolic renames are fine,
	// renumbering is not.
	assert.EqualValues(t, 0, BufferIndexVertices)
	assert.EqualValues(t, 1, BufferIndexUniforms)
	assert.EqualValues(t, 2, BufferIndexInstances)
	assert.EqualValues(t, 3, BufferIndexMaterials)
	assert.EqualValues(t, 4, BufferIndexModelMatrix)

	assert.EqualValues(t, 0, TextureIndexColor)
	assert.EqualValues(t, 1, TextureIndexNormal)
	assert.EqualValues(t, 2, TextureIndexHeightmap)

	assert.EqualValues(t, 0, VertexAttributePosition)
	assert.EqualValues(t, 1, VertexAttributeNormal)
	assert.EqualValues(t, 2, VertexAttributeTexcoord)
	assert.EqualValues(t, 3, VertexAttributeColor)

	assert.True(t, BufferIndexModelMatrix.Valid())
	assert.False(t, BufferIndex(5).Valid())
	assert.True(t, TextureIndexHeightmap.Valid())
	assert.False(t, TextureIndex(3).Valid())
}
