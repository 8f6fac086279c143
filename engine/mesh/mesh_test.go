package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ximhear/songdo/common"
	"github.com/ximhear/songdo/engine/shadertypes"
)

func validInfo(name string) Info {
	return Info{
		Name: name,
		Ranges: []LODRange{
			{IndexCount: 36, IndexStart: 0, BaseVertex: 0},
			{IndexCount: 12, IndexStart: 36, BaseVertex: 0},
		},
		Bounds:  common.Sphere{Center: mgl32.Vec3{0, 0.5, 0}, Radius: 1},
		Texture: shadertypes.TextureIndexColor,
	}
}

func TestRegisterAssignsDenseIDs(t *testing.T) {
	r := NewRegistry()

	a, err := r.Register(validInfo("building_tower"))
	require.NoError(t, err)
	b, err := r.Register(validInfo("building_block"))
	require.NoError(t, err)

	assert.Equal(t, uint32(0), a.ID)
	assert.Equal(t, uint32(1), b.ID)
	assert.NotEqual(t, a.UUID, b.UUID)
	assert.Equal(t, 2, r.Count())

	assert.Same(t, a, r.ByID(0))
	assert.Same(t, b, r.ByName("building_block"))
	assert.Nil(t, r.ByID(7))
	assert.Nil(t, r.ByName("missing"))
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry()

	_, err := r.Register(Info{})
	assert.Error(t, err)

	_, err = r.Register(Info{Name: "no_ranges"})
	assert.Error(t, err)

	_, err = r.Register(validInfo("dup"))
	require.NoError(t, err)
	_, err = r.Register(validInfo("dup"))
	assert.Error(t, err)
}

func TestRegisterDefaultsInvalidTexture(t *testing.T) {
	r := NewRegistry()

	info := validInfo("bad_texture")
	info.Texture = shadertypes.TextureIndex(9)
	stored, err := r.Register(info)
	require.NoError(t, err)

	assert.Equal(t, shadertypes.TextureIndexColor, stored.Texture)
}

func TestRangeForClampsToCoarsest(t *testing.T) {
	info := validInfo("clamp")

	assert.Equal(t, uint32(36), info.RangeFor(0).IndexCount)
	assert.Equal(t, uint32(12), info.RangeFor(1).IndexCount)
	// Levels past the coarsest tier reuse it.
	assert.Equal(t, uint32(12), info.RangeFor(5).IndexCount)

	empty := Info{}
	assert.Equal(t, LODRange{}, empty.RangeFor(0))
}

func TestAllReturnsAscendingIDOrder(t *testing.T) {
	r := NewRegistry()
	names := []string{"c", "a", "b"}
	for _, n := range names {
		_, err := r.Register(validInfo(n))
		require.NoError(t, err)
	}

	all := r.All()
	require.Len(t, all, 3)
	for i, info := range all {
		assert.Equal(t, uint32(i), info.ID)
	}
	// Registration order defines IDs, not name order.
	assert.Equal(t, "c", all[0].Name)
}
