// Package citygen produces the live city content the visibility pipeline
// consumes: building instances with real-world height heuristics, road
// polylines tessellated into ribbon vertices, terrain patch descriptors, and
// a square chunk grid that groups everything into cullable units.
//
// Generation is fully deterministic for a given seed so frame-level tests
// and repeated runs see identical pools.
package citygen

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ximhear/songdo/common"
)

// MetersPerLevel converts a building's floor count to a height estimate.
const MetersPerLevel = 3.0

// MetersPerLane converts a road's lane count to a width estimate.
const MetersPerLane = 3.5

// DefaultChunkSize is the square chunk edge in meters.
const DefaultChunkSize = 500.0

// BuildingType classifies a building for height defaults.
type BuildingType string

const (
	BuildingApartments  BuildingType = "apartments"
	BuildingCommercial  BuildingType = "commercial"
	BuildingOffice      BuildingType = "office"
	BuildingRetail      BuildingType = "retail"
	BuildingIndustrial  BuildingType = "industrial"
	BuildingWarehouse   BuildingType = "warehouse"
	BuildingResidential BuildingType = "residential"
	BuildingHouse       BuildingType = "house"
	BuildingGeneric     BuildingType = "yes"
)

var defaultBuildingHeights = map[BuildingType]float32{
	BuildingApartments:  30.0,
	BuildingCommercial:  15.0,
	BuildingOffice:      25.0,
	BuildingRetail:      8.0,
	BuildingIndustrial:  12.0,
	BuildingWarehouse:   10.0,
	BuildingResidential: 10.0,
	BuildingHouse:       8.0,
	BuildingGeneric:     10.0,
}

// BuildingHeight resolves a building's height in meters. An explicit height
// wins, then floor count at MetersPerLevel per floor, then the per-type
// default, then 10 m.
//
// Parameters:
//   - explicit: tagged height in meters, <= 0 when absent
//   - levels: floor count, <= 0 when absent
//   - typ: the building classification
//
// Returns:
//   - float32: the resolved height in meters
func BuildingHeight(explicit float32, levels int, typ BuildingType) float32 {
	if explicit > 0 {
		return explicit
	}
	if levels > 0 {
		return float32(levels) * MetersPerLevel
	}
	if h, ok := defaultBuildingHeights[typ]; ok {
		return h
	}
	return 10.0
}

// RoadType classifies a road segment. The numeric value travels to the GPU
// in GPURoadVertex.RoadType, so the ordering is part of the shader contract.
type RoadType uint32

const (
	RoadMotorway RoadType = iota
	RoadTrunk
	RoadPrimary
	RoadSecondary
	RoadTertiary
	RoadResidential
	RoadService
	RoadFootway
	RoadCycleway
	RoadPath
)

var defaultRoadWidths = map[RoadType]float32{
	RoadMotorway:    14.0,
	RoadTrunk:       12.0,
	RoadPrimary:     10.0,
	RoadSecondary:   8.0,
	RoadTertiary:    7.0,
	RoadResidential: 6.0,
	RoadService:     4.0,
	RoadFootway:     2.0,
	RoadCycleway:    2.5,
	RoadPath:        1.5,
}

// RoadWidth resolves a road's width in meters. An explicit width wins, then
// lane count at MetersPerLane per lane, then the per-type default, then 6 m.
//
// Parameters:
//   - explicit: tagged width in meters, <= 0 when absent
//   - lanes: lane count, <= 0 when absent
//   - typ: the road classification
//
// Returns:
//   - float32: the resolved width in meters
func RoadWidth(explicit float32, lanes int, typ RoadType) float32 {
	if explicit > 0 {
		return explicit
	}
	if lanes > 0 {
		return float32(lanes) * MetersPerLane
	}
	if w, ok := defaultRoadWidths[typ]; ok {
		return w
	}
	return 6.0
}

// Building is one generated building footprint.
type Building struct {
	ID       uint64
	Type     BuildingType
	Position mgl32.Vec3 // ground-level footprint center
	Rotation float32    // yaw in radians
	// Footprint is the XZ extent of the footprint in meters.
	Footprint mgl32.Vec2
	Height    float32
	Color     mgl32.Vec4
}

// Scale returns the non-uniform scale that maps a unit cube (1x1x1, base at
// y=0) onto this building's footprint and height.
//
// Returns:
//   - mgl32.Vec3: the model scale
func (b Building) Scale() mgl32.Vec3 {
	return mgl32.Vec3{b.Footprint.X(), b.Height, b.Footprint.Y()}
}

// ModelMatrix returns the building's model-to-world transform.
//
// Returns:
//   - mgl32.Mat4: the model matrix
func (b Building) ModelMatrix() mgl32.Mat4 {
	return common.BuildModelMatrix(b.Position, mgl32.Vec3{0, b.Rotation, 0}, b.Scale())
}

// Bounds returns a conservative world-space AABB around the building. The
// footprint diagonal covers any yaw, so the box never clips a rotated corner.
//
// Returns:
//   - common.AABB: the world-space bounding box
func (b Building) Bounds() common.AABB {
	half := b.Footprint.Len() / 2
	return common.AABB{
		Min: mgl32.Vec3{b.Position.X() - half, b.Position.Y(), b.Position.Z() - half},
		Max: mgl32.Vec3{b.Position.X() + half, b.Position.Y() + b.Height, b.Position.Z() + half},
	}
}

// Road is one generated road polyline.
type Road struct {
	ID     uint64
	Type   RoadType
	Width  float32
	Points []mgl32.Vec3
}

// Bounds returns the world-space AABB of the polyline, inflated by half the
// road width on each side.
//
// Returns:
//   - common.AABB: the world-space bounding box
func (r Road) Bounds() common.AABB {
	if len(r.Points) == 0 {
		return common.AABB{}
	}
	box := common.AABB{Min: r.Points[0], Max: r.Points[0]}
	for _, p := range r.Points[1:] {
		box = box.Union(common.AABB{Min: p, Max: p})
	}
	half := r.Width / 2
	box.Min = box.Min.Sub(mgl32.Vec3{half, 0, half})
	box.Max = box.Max.Add(mgl32.Vec3{half, 0.1, half})
	return box
}
