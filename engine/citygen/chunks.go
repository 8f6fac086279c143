package citygen

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ximhear/songdo/common"
)

// ChunkCoord identifies a square chunk on the ground grid.
type ChunkCoord struct {
	X int32
	Y int32
}

// Chunk is one cullable unit of city content: the indices of the buildings
// and roads assigned to it and the union of their bounds.
type Chunk struct {
	Coord     ChunkCoord
	Buildings []int
	Roads     []int
	Bounds    common.AABB
}

// chunkForPoint returns the chunk containing an XZ position.
func chunkForPoint(x, z, chunkSize float32) ChunkCoord {
	return ChunkCoord{
		X: int32(math32.Floor(x / chunkSize)),
		Y: int32(math32.Floor(z / chunkSize)),
	}
}

// AssignChunks groups buildings and roads into square chunks of the given
// edge length. Buildings land in the chunk containing their footprint
// center; a road is assigned to every chunk one of its polyline points falls
// in, so long roads appear in several chunks. Chunk bounds are the union of
// the member bounds, which may extend past the grid cell for content that
// straddles an edge. Chunks are returned in deterministic (X, then Y) order.
//
// Parameters:
//   - buildings: the building pool
//   - roads: the road pool
//   - chunkSize: square chunk edge in meters (<= 0 falls back to DefaultChunkSize)
//
// Returns:
//   - []Chunk: the populated chunks in grid order
func AssignChunks(buildings []Building, roads []Road, chunkSize float32) []Chunk {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	chunks := map[ChunkCoord]*Chunk{}
	get := func(c ChunkCoord) *Chunk {
		if ch, ok := chunks[c]; ok {
			return ch
		}
		ch := &Chunk{Coord: c}
		chunks[c] = ch
		return ch
	}

	for i, b := range buildings {
		ch := get(chunkForPoint(b.Position.X(), b.Position.Z(), chunkSize))
		ch.Buildings = append(ch.Buildings, i)
		ch.Bounds = unionInto(ch.Bounds, b.Bounds(), len(ch.Buildings)+len(ch.Roads) == 1)
	}

	for i, r := range roads {
		seen := map[ChunkCoord]bool{}
		for _, p := range r.Points {
			c := chunkForPoint(p.X(), p.Z(), chunkSize)
			if seen[c] {
				continue
			}
			seen[c] = true
			ch := get(c)
			ch.Roads = append(ch.Roads, i)
			ch.Bounds = unionInto(ch.Bounds, r.Bounds(), len(ch.Buildings)+len(ch.Roads) == 1)
		}
	}

	out := make([]Chunk, 0, len(chunks))
	for _, ch := range chunks {
		out = append(out, *ch)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Coord.X != out[j].Coord.X {
			return out[i].Coord.X < out[j].Coord.X
		}
		return out[i].Coord.Y < out[j].Coord.Y
	})
	return out
}

// unionInto folds a member box into the chunk bounds, seeding the bounds on
// the first member instead of unioning with the zero box at the origin.
func unionInto(acc, box common.AABB, first bool) common.AABB {
	if first {
		return box
	}
	return acc.Union(box)
}

// CellBounds returns the nominal grid-cell AABB of a chunk coordinate,
// ignoring member overhang. Useful for visualizing the grid.
//
// Parameters:
//   - c: the chunk coordinate
//   - chunkSize: square chunk edge in meters
//   - maxHeight: vertical extent to give the cell
//
// Returns:
//   - common.AABB: the grid cell box
func CellBounds(c ChunkCoord, chunkSize, maxHeight float32) common.AABB {
	minX := float32(c.X) * chunkSize
	minZ := float32(c.Y) * chunkSize
	return common.AABB{
		Min: mgl32.Vec3{minX, 0, minZ},
		Max: mgl32.Vec3{minX + chunkSize, maxHeight, minZ + chunkSize},
	}
}
