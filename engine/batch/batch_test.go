package batch

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ximhear/songdo/common"
	"github.com/ximhear/songdo/engine/mesh"
	"github.com/ximhear/songdo/engine/shadertypes"
)

func candidate(meshID, lodLevel uint32, tex shadertypes.TextureIndex, order int, dist float32) Candidate {
	return Candidate{
		Key:      Key{MeshID: meshID, Lod: lodLevel, Texture: tex},
		Instance: shadertypes.GPUBuildingInstance{LodLevel: lodLevel, Height: float32(order)},
		Distance: dist,
		Order:    order,
	}
}

func TestBuildSingleBatch(t *testing.T) {
	b := NewBuilder(0)
	cands := []Candidate{
		candidate(0, 0, shadertypes.TextureIndexColor, 0, 5),
		candidate(0, 0, shadertypes.TextureIndexColor, 1, 50),
		candidate(0, 0, shadertypes.TextureIndexColor, 2, 500),
	}

	s := b.Build(cands)
	require.Len(t, s.Batches, 1)
	assert.Equal(t, uint32(0), s.Batches[0].First)
	assert.Equal(t, uint32(3), s.Batches[0].Count)
	assert.Len(t, s.Instances, 3)
	assert.Zero(t, s.Overflow)
	assert.Equal(t, float32(5), s.Batches[0].MinDistance)
}

func TestBuildBatchOrderIsDeterministic(t *testing.T) {
	cands := []Candidate{
		candidate(1, 0, shadertypes.TextureIndexColor, 0, 10),
		candidate(0, 1, shadertypes.TextureIndexNormal, 1, 10),
		candidate(0, 0, shadertypes.TextureIndexColor, 2, 10),
		candidate(0, 1, shadertypes.TextureIndexColor, 3, 10),
		candidate(1, 0, shadertypes.TextureIndexColor, 4, 10),
	}

	b := NewBuilder(0)
	reference := b.Build(cands)

	wantKeys := []Key{
		{MeshID: 0, Lod: 0, Texture: shadertypes.TextureIndexColor},
		{MeshID: 0, Lod: 1, Texture: shadertypes.TextureIndexColor},
		{MeshID: 0, Lod: 1, Texture: shadertypes.TextureIndexNormal},
		{MeshID: 1, Lod: 0, Texture: shadertypes.TextureIndexColor},
	}
	require.Len(t, reference.Batches, len(wantKeys))
	for i, bt := range reference.Batches {
		assert.Equal(t, wantKeys[i], bt.Key)
	}

	// Shuffling the input changes nothing: batch order is a function of
	// keys, intra-batch order a function of source pool order.
	rng := rand.New(rand.NewSource(42))
	for range 10 {
		shuffled := append([]Candidate(nil), cands...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got := b.Build(shuffled)
		assert.Equal(t, reference, got)
	}
}

func TestBuildOffsetsContiguous(t *testing.T) {
	var cands []Candidate
	for i := range 50 {
		cands = append(cands, candidate(uint32(i%3), uint32(i%2), shadertypes.TextureIndexColor, i, float32(i)))
	}

	s := NewBuilder(0).Build(cands)

	var next uint32
	var total uint32
	for _, bt := range s.Batches {
		assert.Equal(t, next, bt.First, "batches must tile the packed buffer with no gaps")
		next += bt.Count
		total += bt.Count
	}
	assert.Equal(t, uint32(len(s.Instances)), total)
	assert.Equal(t, len(cands), len(s.Instances))
}

func TestBuildIntraBatchSourceOrder(t *testing.T) {
	// Heights encode the source order; a packed batch must preserve it.
	cands := []Candidate{
		candidate(0, 0, shadertypes.TextureIndexColor, 7, 1),
		candidate(0, 0, shadertypes.TextureIndexColor, 2, 9),
		candidate(0, 0, shadertypes.TextureIndexColor, 5, 3),
	}

	s := NewBuilder(0).Build(cands)
	require.Len(t, s.Instances, 3)
	assert.Equal(t, float32(2), s.Instances[0].Height)
	assert.Equal(t, float32(5), s.Instances[1].Height)
	assert.Equal(t, float32(7), s.Instances[2].Height)
}

func TestBuildOverflowTruncation(t *testing.T) {
	// Spec scenario: capacity 1000, 1200 visible -> 1000 packed, 200 dropped.
	var cands []Candidate
	for i := range 1200 {
		// Two batches; the far batch holds the 600 most distant instances.
		meshID := uint32(0)
		dist := float32(10 + i%600)
		if i >= 600 {
			meshID = 1
			dist = float32(5000 + i)
		}
		cands = append(cands, candidate(meshID, 0, shadertypes.TextureIndexColor, i, dist))
	}

	s := NewBuilder(1000).Build(cands)

	assert.Len(t, s.Instances, 1000)
	assert.Equal(t, 200, s.Overflow)

	// The near batch survives whole; the far batch lost 200 instances.
	require.Len(t, s.Batches, 2)
	assert.Equal(t, uint32(600), s.Batches[0].Count)
	assert.Equal(t, uint32(400), s.Batches[1].Count)

	// Packed order is still canonical key order even though budgeting ran
	// nearest-first.
	assert.Equal(t, uint32(0), s.Batches[0].Key.MeshID)
	assert.Equal(t, uint32(0), s.Batches[0].First)
	assert.Equal(t, uint32(600), s.Batches[1].First)
}

func TestBuildOverflowKeepsNearestWithinBatch(t *testing.T) {
	var cands []Candidate
	for i := range 10 {
		cands = append(cands, candidate(0, 0, shadertypes.TextureIndexColor, i, float32(100-i*10)))
	}

	s := NewBuilder(4).Build(cands)
	require.Len(t, s.Instances, 4)
	assert.Equal(t, 6, s.Overflow)

	// The four nearest are the last four by order (distances 40,30,20,10),
	// restored to source order after selection.
	for i, inst := range s.Instances {
		assert.Equal(t, float32(6+i), inst.Height)
	}
}

func TestBuildEmpty(t *testing.T) {
	s := NewBuilder(100).Build(nil)
	assert.Empty(t, s.Instances)
	assert.Empty(t, s.Batches)
	assert.Zero(t, s.Overflow)
}

func registryWithMeshes(t *testing.T, n int) mesh.Registry {
	t.Helper()
	r := mesh.NewRegistry()
	for i := range n {
		_, err := r.Register(mesh.Info{
			Name: string(rune('a' + i)),
			Ranges: []mesh.LODRange{
				{IndexCount: uint32(100 * (i + 1)), IndexStart: uint32(10 * i), BaseVertex: int32(-i)},
				{IndexCount: uint32(10 * (i + 1)), IndexStart: uint32(10*i + 5), BaseVertex: int32(-i)},
			},
			Bounds:  common.Sphere{Center: mgl32.Vec3{}, Radius: 1},
			Texture: shadertypes.TextureIndexColor,
		})
		require.NoError(t, err)
	}
	return r
}

func TestEncodeDraws(t *testing.T) {
	reg := registryWithMeshes(t, 2)

	cands := []Candidate{
		candidate(0, 0, shadertypes.TextureIndexColor, 0, 5),
		candidate(0, 0, shadertypes.TextureIndexColor, 1, 6),
		candidate(0, 1, shadertypes.TextureIndexColor, 2, 50),
		candidate(1, 0, shadertypes.TextureIndexColor, 3, 7),
	}
	s := NewBuilder(0).Build(cands)
	args := EncodeDraws(&s, reg)
	require.Len(t, args, 3)

	// Records follow packed batch order and carry LOD-specific ranges.
	assert.Equal(t, uint32(100), args[0].IndexCount)
	assert.Equal(t, uint32(2), args[0].InstanceCount)
	assert.Equal(t, uint32(0), args[0].BaseInstance)

	assert.Equal(t, uint32(10), args[1].IndexCount, "LOD 1 uses the coarse range")
	assert.Equal(t, uint32(1), args[1].InstanceCount)
	assert.Equal(t, uint32(2), args[1].BaseInstance)

	assert.Equal(t, uint32(200), args[2].IndexCount)
	assert.Equal(t, int32(-1), args[2].BaseVertex)
	assert.Equal(t, uint32(3), args[2].BaseInstance)

	// Frame invariants: records tile the packed buffer exactly.
	var sum uint32
	for _, a := range args {
		assert.LessOrEqual(t, a.BaseInstance+a.InstanceCount, uint32(len(s.Instances)))
		sum += a.InstanceCount
	}
	assert.Equal(t, uint32(len(s.Instances)), sum)
}

func TestEncodeDrawsUnknownMesh(t *testing.T) {
	reg := registryWithMeshes(t, 1)

	cands := []Candidate{
		candidate(0, 0, shadertypes.TextureIndexColor, 0, 5),
		candidate(9, 0, shadertypes.TextureIndexColor, 1, 5),
	}
	s := NewBuilder(0).Build(cands)
	args := EncodeDraws(&s, reg)
	require.Len(t, args, 2)

	// The unknown mesh encodes an empty record instead of failing the frame.
	assert.Equal(t, uint32(0), args[1].IndexCount)
	assert.Equal(t, uint32(1), args[1].InstanceCount)
}

func TestEncodeDrawsEmptyStream(t *testing.T) {
	reg := registryWithMeshes(t, 1)
	s := Stream{}
	assert.Nil(t, EncodeDraws(&s, reg))
}
