package citygen

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// City is the full output of one generation run.
type City struct {
	Buildings []Building
	Roads     []Road
	Terrain   TerrainPatch
	Chunks    []Chunk
}

// Generator produces deterministic procedural city content. The same seed
// and options always yield the same City.
type Generator struct {
	seed         int64
	extent       float32 // square city edge in meters, centered on the origin
	blockSpacing float32 // distance between grid roads in meters
	density      float32 // probability a lot receives a building
	chunkSize    float32
	heightScale  float32
	gridCells    uint32 // terrain heightmap cells per axis
}

// GeneratorOption is a functional option for configuring a Generator.
type GeneratorOption func(*Generator)

// WithExtent sets the square city edge length in meters.
func WithExtent(extent float32) GeneratorOption {
	return func(g *Generator) {
		g.extent = extent
	}
}

// WithBlockSpacing sets the distance between grid roads in meters.
func WithBlockSpacing(spacing float32) GeneratorOption {
	return func(g *Generator) {
		g.blockSpacing = spacing
	}
}

// WithDensity sets the probability in [0,1] that a lot receives a building.
func WithDensity(density float32) GeneratorOption {
	return func(g *Generator) {
		g.density = mgl32.Clamp(density, 0, 1)
	}
}

// WithChunkSize sets the chunk edge used for chunk assignment.
func WithChunkSize(size float32) GeneratorOption {
	return func(g *Generator) {
		g.chunkSize = size
	}
}

// WithTerrainDetail sets the terrain height scale and heightmap cells per axis.
func WithTerrainDetail(heightScale float32, cells uint32) GeneratorOption {
	return func(g *Generator) {
		g.heightScale = heightScale
		g.gridCells = cells
	}
}

// NewGenerator creates a Generator for the given seed with city-block
// defaults: a 2 km square, 100 m blocks, 70% lot occupancy.
//
// Parameters:
//   - seed: the deterministic seed
//   - options: functional options to configure the generator
//
// Returns:
//   - *Generator: the configured generator
func NewGenerator(seed int64, options ...GeneratorOption) *Generator {
	g := &Generator{
		seed:         seed,
		extent:       2000,
		blockSpacing: 100,
		density:      0.7,
		chunkSize:    DefaultChunkSize,
		heightScale:  20,
		gridCells:    64,
	}
	for _, option := range options {
		option(g)
	}
	return g
}

// buildingArchetypes weights the generated building mix toward the
// residential/commercial profile of a dense new town.
var buildingArchetypes = []struct {
	typ       BuildingType
	weight    int
	minLevels int
	maxLevels int
}{
	{BuildingApartments, 30, 10, 40},
	{BuildingOffice, 15, 8, 30},
	{BuildingCommercial, 15, 3, 8},
	{BuildingRetail, 10, 1, 3},
	{BuildingResidential, 20, 2, 5},
	{BuildingHouse, 10, 1, 2},
}

// Generate produces the full city: a Manhattan grid of roads at the block
// spacing, jittered buildings on the lots between them, one terrain patch
// covering the extent, and the chunk assignment of everything.
//
// Returns:
//   - City: the generated city
//   - error: error if the terrain descriptor cannot be built
func (g *Generator) Generate() (City, error) {
	rng := rand.New(rand.NewSource(g.seed))

	half := g.extent / 2
	city := City{}

	// Grid roads first so lot placement can inset away from them.
	lineCount := int(g.extent/g.blockSpacing) + 1
	var roadID uint64
	for i := 0; i < lineCount; i++ {
		offset := -half + float32(i)*g.blockSpacing
		typ := gridRoadType(i)

		// North-south line.
		city.Roads = append(city.Roads, Road{
			ID:    roadID,
			Type:  typ,
			Width: RoadWidth(0, 0, typ),
			Points: []mgl32.Vec3{
				{offset, 0, -half},
				{offset, 0, 0},
				{offset, 0, half},
			},
		})
		roadID++

		// East-west line.
		city.Roads = append(city.Roads, Road{
			ID:    roadID,
			Type:  typ,
			Width: RoadWidth(0, 0, typ),
			Points: []mgl32.Vec3{
				{-half, 0, offset},
				{0, 0, offset},
				{half, 0, offset},
			},
		})
		roadID++
	}

	// Buildings: one candidate lot per block, jittered inside the block so
	// towers do not sit on the road lines.
	var buildingID uint64
	totalWeight := 0
	for _, a := range buildingArchetypes {
		totalWeight += a.weight
	}
	for bx := 0; bx < lineCount-1; bx++ {
		for bz := 0; bz < lineCount-1; bz++ {
			if rng.Float32() > g.density {
				continue
			}

			pick := rng.Intn(totalWeight)
			arch := buildingArchetypes[0]
			for _, a := range buildingArchetypes {
				if pick < a.weight {
					arch = a
					break
				}
				pick -= a.weight
			}

			levels := arch.minLevels + rng.Intn(arch.maxLevels-arch.minLevels+1)
			footprint := mgl32.Vec2{
				15 + rng.Float32()*25,
				15 + rng.Float32()*25,
			}

			// Keep the footprint diagonal inside the block interior.
			margin := footprint.Len()/2 + 5
			usable := g.blockSpacing - 2*margin
			if usable <= 0 {
				continue
			}
			pos := mgl32.Vec3{
				-half + float32(bx)*g.blockSpacing + margin + rng.Float32()*usable,
				0,
				-half + float32(bz)*g.blockSpacing + margin + rng.Float32()*usable,
			}

			city.Buildings = append(city.Buildings, Building{
				ID:        buildingID,
				Type:      arch.typ,
				Position:  pos,
				Rotation:  rng.Float32() * math32.Pi / 12,
				Footprint: footprint,
				Height:    BuildingHeight(0, levels, arch.typ),
				Color:     facadeColor(rng),
			})
			buildingID++
		}
	}

	terrain, err := NewTerrainPatch(
		mgl32.Vec2{-half, -half},
		mgl32.Vec2{g.extent, g.extent},
		g.heightScale,
		g.extent/50,
		g.gridCells, g.gridCells,
		int(g.gridCells)*int(g.gridCells),
	)
	if err != nil {
		return City{}, err
	}
	city.Terrain = terrain

	city.Chunks = AssignChunks(city.Buildings, city.Roads, g.chunkSize)
	return city, nil
}

// gridRoadType grades the road hierarchy: every eighth line is primary,
// every fourth secondary, the rest residential.
func gridRoadType(line int) RoadType {
	switch {
	case line%8 == 0:
		return RoadPrimary
	case line%4 == 0:
		return RoadSecondary
	default:
		return RoadResidential
	}
}

// facadeColor picks a muted facade tint with full alpha.
func facadeColor(rng *rand.Rand) mgl32.Vec4 {
	base := 0.55 + rng.Float32()*0.25
	return mgl32.Vec4{
		base + rng.Float32()*0.15,
		base + rng.Float32()*0.15,
		base + rng.Float32()*0.2,
		1,
	}
}
