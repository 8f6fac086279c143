package citygen

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ximhear/songdo/engine/shadertypes"
)

// roadSurfaceLift raises the ribbon slightly above the ground plane to avoid
// z-fighting with the terrain.
const roadSurfaceLift = 0.05

// metersPerUV is the ribbon length that advances the v texture coordinate by 1.
const metersPerUV = 10.0

// TessellateRoad expands a road polyline into a ribbon of GPURoadVertex pairs
// plus triangle indices. Each polyline point yields a left/right vertex pair
// offset half the road width along the perpendicular of the averaged tangent;
// interior points use the average of the adjacent segment directions so the
// ribbon stays continuous through corners. u runs 0..1 across the ribbon and
// v advances one unit per 10 m of road length. Points closer than 1 mm to
// their predecessor are skipped.
//
// Returns nil slices for polylines with fewer than two points.
//
// Parameters:
//   - r: the road to tessellate
//
// Returns:
//   - []shadertypes.GPURoadVertex: ribbon vertices, two per surviving point
//   - []uint32: triangle indices, two triangles per quad
func TessellateRoad(r Road) ([]shadertypes.GPURoadVertex, []uint32) {
	if len(r.Points) < 2 {
		return nil, nil
	}

	halfWidth := r.Width / 2
	vertices := make([]shadertypes.GPURoadVertex, 0, len(r.Points)*2)
	indices := make([]uint32, 0, (len(r.Points)-1)*6)

	var accumulated float32
	emitted := 0
	for i, p := range r.Points {
		var dir mgl32.Vec3
		switch {
		case i == 0:
			dir = r.Points[1].Sub(p)
		case i == len(r.Points)-1:
			dir = p.Sub(r.Points[i-1])
		default:
			dir = r.Points[i+1].Sub(r.Points[i-1])
		}
		dir[1] = 0
		if dir.LenSqr() < 1e-6 {
			continue
		}
		dir = dir.Normalize()
		perp := mgl32.Vec3{-dir.Z(), 0, dir.X()}

		if i > 0 {
			accumulated += p.Sub(r.Points[i-1]).Len()
		}
		v := accumulated / metersPerUV

		left := p.Add(perp.Mul(halfWidth))
		right := p.Sub(perp.Mul(halfWidth))

		vertices = append(vertices,
			shadertypes.GPURoadVertex{
				Position: [3]float32{left.X(), roadSurfaceLift, left.Z()},
				TexCoord: [2]float32{0, v},
				Width:    r.Width,
				RoadType: uint32(r.Type),
			},
			shadertypes.GPURoadVertex{
				Position: [3]float32{right.X(), roadSurfaceLift, right.Z()},
				TexCoord: [2]float32{1, v},
				Width:    r.Width,
				RoadType: uint32(r.Type),
			},
		)
		emitted++

		if emitted > 1 {
			base := uint32((emitted - 2) * 2)
			indices = append(indices,
				base, base+1, base+2,
				base+1, base+3, base+2,
			)
		}
	}

	if emitted < 2 {
		return nil, nil
	}
	return vertices, indices
}
