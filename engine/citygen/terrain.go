package citygen

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ximhear/songdo/common"
	"github.com/ximhear/songdo/engine/shadertypes"
)

// TerrainPatch describes one heightmapped ground patch. The uniforms travel
// to the GPU verbatim; the bounds feed the culling engine.
type TerrainPatch struct {
	Uniforms shadertypes.GPUTerrainUniforms
	Bounds   common.AABB
}

// NewTerrainPatch builds a terrain patch descriptor and validates the grid
// invariant: gridWidth*gridHeight must equal the number of heightmap samples
// the patch will be rendered with.
//
// Parameters:
//   - origin: world-space XZ origin of the patch
//   - size: world-space XZ extent of the patch in meters
//   - heightScale: multiplier applied to heightmap samples
//   - tiling: texture repeat factor across the patch
//   - gridWidth: heightmap grid width in cells
//   - gridHeight: heightmap grid height in cells
//   - samples: heightmap sample count backing the patch
//
// Returns:
//   - TerrainPatch: the patch descriptor
//   - error: error if the grid does not match the sample count
func NewTerrainPatch(origin, size mgl32.Vec2, heightScale, tiling float32, gridWidth, gridHeight uint32, samples int) (TerrainPatch, error) {
	if gridWidth == 0 || gridHeight == 0 {
		return TerrainPatch{}, fmt.Errorf("citygen: terrain grid must be non-empty, got %dx%d", gridWidth, gridHeight)
	}
	if int(gridWidth)*int(gridHeight) != samples {
		return TerrainPatch{}, fmt.Errorf("citygen: terrain grid %dx%d does not match %d heightmap samples", gridWidth, gridHeight, samples)
	}
	if size.X() <= 0 || size.Y() <= 0 {
		return TerrainPatch{}, fmt.Errorf("citygen: terrain size must be positive, got %v", size)
	}

	return TerrainPatch{
		Uniforms: shadertypes.GPUTerrainUniforms{
			TerrainOrigin: [2]float32(origin),
			TerrainSize:   [2]float32(size),
			HeightScale:   heightScale,
			TextureTiling: tiling,
			GridWidth:     gridWidth,
			GridHeight:    gridHeight,
		},
		Bounds: common.AABB{
			Min: mgl32.Vec3{origin.X(), 0, origin.Y()},
			Max: mgl32.Vec3{origin.X() + size.X(), heightScale, origin.Y() + size.Y()},
		},
	}, nil
}
