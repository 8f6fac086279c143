// package batch turns the frame's visible, LOD-tagged instances into the two
// buffers the GPU consumes: the packed instance stream and the indirect draw
// argument buffer. Both are rebuilt every frame the visible set changes and
// published together; their offsets must agree without extra indirection.
package batch

import (
	"sort"

	"github.com/ximhear/songdo/common"
	"github.com/ximhear/songdo/engine/mesh"
	"github.com/ximhear/songdo/engine/shadertypes"
)

// Key identifies one draw batch. Instances sharing a key render with one
// indirect draw record.
type Key struct {
	MeshID  uint32
	Lod     uint32
	Texture shadertypes.TextureIndex
}

// less orders keys ascending by mesh, then LOD, then texture. This order is
// the packed buffer order and the draw record order; it is a pure function
// of the key, never of input iteration order.
func (k Key) less(other Key) bool {
	if k.MeshID != other.MeshID {
		return k.MeshID < other.MeshID
	}
	if k.Lod != other.Lod {
		return k.Lod < other.Lod
	}
	return k.Texture < other.Texture
}

// Candidate is one visible instance awaiting packing. The Instance payload is
// a copy: the builder never touches the scene's source pools.
type Candidate struct {
	Key      Key
	Instance shadertypes.GPUBuildingInstance

	// Distance is the camera distance used as truncation priority when the
	// visible set exceeds capacity; nearer instances win.
	Distance float32

	// Order is the candidate's index in the source pool, fixing the
	// intra-batch ordering regardless of how candidates were collected.
	Order int
}

// Batch describes one contiguous run of the packed instance buffer.
type Batch struct {
	Key Key

	// First is the batch's starting offset in the packed buffer; it becomes
	// BaseInstance in the draw record.
	First uint32

	// Count is the number of instances packed for this batch.
	Count uint32

	// MinDistance is the smallest camera distance among the batch's
	// instances, used as the batch's truncation priority.
	MinDistance float32
}

// Stream is the packed result for one frame.
type Stream struct {
	// Instances is the packed instance buffer in batch order, no gaps.
	Instances []shadertypes.GPUBuildingInstance

	// Batches lists the contiguous runs of Instances, in the same order.
	Batches []Batch

	// Overflow is the number of visible instances dropped because the
	// packed buffer capacity was exceeded this frame.
	Overflow int
}

// Builder packs candidates into instance streams. A Builder is stateless
// between frames apart from its capacity and may be shared by value.
type Builder struct {
	capacity int
}

// NewBuilder creates a Builder with a packed-buffer capacity.
//
// Parameters:
//   - capacity: maximum instances per frame; <= 0 means unbounded
//
// Returns:
//   - Builder: the configured builder
func NewBuilder(capacity int) Builder {
	return Builder{capacity: capacity}
}

// Build groups candidates by key, orders batches deterministically, and
// packs instances contiguously. Within a batch instances appear in source
// pool order. If the candidate count exceeds capacity, whole batches are
// kept nearest-first and the first batch that does not fit keeps only its
// nearest instances; the final packed order is still canonical key order.
//
// Parameters:
//   - candidates: the frame's visible, LOD-tagged instances
//
// Returns:
//   - Stream: the packed instance stream with batch table and overflow count
func (b Builder) Build(candidates []Candidate) Stream {
	if len(candidates) == 0 {
		return Stream{}
	}

	groups := make(map[Key][]Candidate)
	for _, c := range candidates {
		groups[c.Key] = append(groups[c.Key], c)
	}

	keys := make([]Key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, z int) bool { return keys[a].less(keys[z]) })

	for _, k := range keys {
		g := groups[k]
		sort.Slice(g, func(a, z int) bool { return g[a].Order < g[z].Order })
	}

	// Capacity budgeting: nearest batches keep their instances first.
	budget := b.budgets(keys, groups, len(candidates))

	var stream Stream
	stream.Instances = make([]shadertypes.GPUBuildingInstance, 0, min(len(candidates), b.effectiveCapacity(len(candidates))))
	for _, k := range keys {
		g := groups[k]
		keep := budget[k]
		if keep == 0 {
			stream.Overflow += len(g)
			continue
		}
		if keep < len(g) {
			stream.Overflow += len(g) - keep
			g = nearestN(g, keep)
		}

		first := uint32(len(stream.Instances))
		minDist := g[0].Distance
		for _, c := range g {
			stream.Instances = append(stream.Instances, c.Instance)
			if c.Distance < minDist {
				minDist = c.Distance
			}
		}
		stream.Batches = append(stream.Batches, Batch{
			Key:         k,
			First:       first,
			Count:       uint32(len(g)),
			MinDistance: minDist,
		})
	}
	return stream
}

func (b Builder) effectiveCapacity(n int) int {
	if b.capacity <= 0 || b.capacity > n {
		return n
	}
	return b.capacity
}

// budgets decides how many instances each batch may pack. Batches are
// granted budget in ascending order of their minimum camera distance (ties
// broken by canonical key order), so the nearest content survives overflow.
func (b Builder) budgets(keys []Key, groups map[Key][]Candidate, total int) map[Key]int {
	capacity := b.effectiveCapacity(total)
	budget := make(map[Key]int, len(keys))
	if capacity >= total {
		for _, k := range keys {
			budget[k] = len(groups[k])
		}
		return budget
	}

	type prio struct {
		key  Key
		dist float32
	}
	order := make([]prio, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		minDist := g[0].Distance
		for _, c := range g[1:] {
			if c.Distance < minDist {
				minDist = c.Distance
			}
		}
		order = append(order, prio{key: k, dist: minDist})
	}
	sort.SliceStable(order, func(a, z int) bool {
		if order[a].dist != order[z].dist {
			return order[a].dist < order[z].dist
		}
		return order[a].key.less(order[z].key)
	})

	remaining := capacity
	for _, p := range order {
		n := len(groups[p.key])
		if n > remaining {
			n = remaining
		}
		budget[p.key] = n
		remaining -= n
		if remaining == 0 {
			break
		}
	}
	return budget
}

// nearestN keeps the n nearest candidates of a batch, then restores source
// pool order among the survivors.
func nearestN(g []Candidate, n int) []Candidate {
	byDist := append([]Candidate(nil), g...)
	sort.SliceStable(byDist, func(a, z int) bool {
		if byDist[a].Distance != byDist[z].Distance {
			return byDist[a].Distance < byDist[z].Distance
		}
		return byDist[a].Order < byDist[z].Order
	})
	kept := byDist[:n]
	sort.Slice(kept, func(a, z int) bool { return kept[a].Order < kept[z].Order })
	return kept
}

// EncodeDraws emits one indirect draw record per batch, in batch order. The
// mesh registry supplies each batch's index range for its LOD level. A batch
// whose mesh is missing from the registry encodes a zero-index record (draws
// nothing) rather than failing the frame, and is reported as a
// data-integrity warning.
//
// Parameters:
//   - stream: the packed stream from Build
//   - registry: the mesh registry resolving index ranges
//
// Returns:
//   - []shadertypes.GPUDrawIndexedArgs: one record per batch, aligned with
//     stream.Batches
func EncodeDraws(stream *Stream, registry mesh.Registry) []shadertypes.GPUDrawIndexedArgs {
	if len(stream.Batches) == 0 {
		return nil
	}

	args := make([]shadertypes.GPUDrawIndexedArgs, 0, len(stream.Batches))
	for _, bt := range stream.Batches {
		var r mesh.LODRange
		if info := registry.ByID(bt.Key.MeshID); info != nil {
			r = info.RangeFor(bt.Key.Lod)
		} else {
			common.LogWarnThrottled("batch:mesh",
				"draw batch references unknown mesh id %d; encoding empty record", bt.Key.MeshID)
		}
		args = append(args, shadertypes.GPUDrawIndexedArgs{
			IndexCount:    r.IndexCount,
			InstanceCount: bt.Count,
			IndexStart:    r.IndexStart,
			BaseVertex:    r.BaseVertex,
			BaseInstance:  bt.First,
		})
	}
	return args
}
