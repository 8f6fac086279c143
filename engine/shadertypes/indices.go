// package shadertypes defines the binary contract between the CPU-side scene
// pipeline and the GPU shading pipeline: buffer/texture/attribute index
// assignments and the fixed-layout structs that cross the boundary.
//
// Index values and struct layouts are the contract. Shaders address buffers
// and textures purely by these integers; there are no named bindings. Any
// change to an index value, field order, or padding is a breaking change and
// must bump LayoutVersion instead of being silently absorbed.
package shadertypes

import "fmt"

// LayoutVersion identifies the current binary layout of every struct and
// index assignment in this package. Producers stamp it into buffer metadata;
// consumers refuse to read a buffer stamped with a different version.
const LayoutVersion uint32 = 1

// BufferIndex addresses one of the fixed GPU buffer slots.
// The integer values are shared with the shader side and must not change.
type BufferIndex uint32

const (
	BufferIndexVertices    BufferIndex = 0
	BufferIndexUniforms    BufferIndex = 1
	BufferIndexInstances   BufferIndex = 2
	BufferIndexMaterials   BufferIndex = 3
	BufferIndexModelMatrix BufferIndex = 4

	bufferIndexCount = 5
)

// Valid reports whether the index addresses a defined buffer slot.
//
// Returns:
//   - bool: true if the index is one of the five contract slots
func (b BufferIndex) Valid() bool {
	return b < bufferIndexCount
}

// String returns the slot name for logging.
//
// Returns:
//   - string: the human-readable slot name
func (b BufferIndex) String() string {
	switch b {
	case BufferIndexVertices:
		return "vertices"
	case BufferIndexUniforms:
		return "uniforms"
	case BufferIndexInstances:
		return "instances"
	case BufferIndexMaterials:
		return "materials"
	case BufferIndexModelMatrix:
		return "modelMatrix"
	default:
		return fmt.Sprintf("bufferIndex(%d)", uint32(b))
	}
}

// TextureIndex addresses one of the fixed GPU texture slots.
type TextureIndex uint32

const (
	TextureIndexColor     TextureIndex = 0
	TextureIndexNormal    TextureIndex = 1
	TextureIndexHeightmap TextureIndex = 2

	textureIndexCount = 3
)

// Valid reports whether the index addresses a defined texture slot.
//
// Returns:
//   - bool: true if the index is one of the three contract slots
func (t TextureIndex) Valid() bool {
	return t < textureIndexCount
}

// String returns the slot name for logging.
//
// Returns:
//   - string: the human-readable slot name
func (t TextureIndex) String() string {
	switch t {
	case TextureIndexColor:
		return "color"
	case TextureIndexNormal:
		return "normal"
	case TextureIndexHeightmap:
		return "heightmap"
	default:
		return fmt.Sprintf("textureIndex(%d)", uint32(t))
	}
}

// VertexAttribute addresses one of the fixed vertex attribute locations.
type VertexAttribute uint32

const (
	VertexAttributePosition VertexAttribute = 0
	VertexAttributeNormal   VertexAttribute = 1
	VertexAttributeTexcoord VertexAttribute = 2
	VertexAttributeColor    VertexAttribute = 3
)
