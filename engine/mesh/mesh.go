// package mesh is the pipeline's view of the asset system: a registry of
// base meshes with their per-LOD index ranges, model-space bounding volumes,
// and resolved texture slots. The asset importer populates it at load time;
// the per-frame pipeline only reads it.
package mesh

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ximhear/songdo/common"
	"github.com/ximhear/songdo/engine/shadertypes"
)

// LODRange is the index-buffer range for one detail tier of a mesh, supplied
// by the asset importer. BaseVertex is signed: meshes packed behind a shared
// vertex buffer may address their vertices with a negative relative offset.
type LODRange struct {
	IndexCount uint32
	IndexStart uint32
	BaseVertex int32
}

// Info describes one registered base mesh.
type Info struct {
	// Name is the importer-facing mesh identifier.
	Name string

	// ID is the dense registry index used for batch ordering. Assigned at
	// registration in ascending order; stable for the registry's lifetime.
	ID uint32

	// UUID is the stable external handle for the mesh asset.
	UUID uuid.UUID

	// Ranges holds one index range per LOD, finest first. LOD levels past
	// the last range reuse the coarsest entry.
	Ranges []LODRange

	// Bounds is the model-space bounding sphere used for culling and LOD
	// distance. A malformed sphere makes instances of this mesh
	// always-visible (fail-open).
	Bounds common.Sphere

	// BoundsAABB is the model-space bounding box, for consumers that prefer
	// box tests (terrain chunks, road chunks).
	BoundsAABB common.AABB

	// Texture is the facade texture slot instances of this mesh sample.
	Texture shadertypes.TextureIndex
}

// RangeFor returns the index range for a LOD level, clamping past the
// coarsest available tier.
//
// Parameters:
//   - lod: the selected detail level
//
// Returns:
//   - LODRange: the range to draw for that level
func (i *Info) RangeFor(lod uint32) LODRange {
	if len(i.Ranges) == 0 {
		return LODRange{}
	}
	if int(lod) >= len(i.Ranges) {
		return i.Ranges[len(i.Ranges)-1]
	}
	return i.Ranges[lod]
}

// Registry is the interface for the mesh registry.
// Registration happens at asset-load time; per-frame consumers only call the
// read methods, which are safe for concurrent use.
type Registry interface {
	// Register adds a mesh to the registry and assigns it the next dense ID.
	// Registering a name twice is an error; the registry is append-only.
	//
	// Parameters:
	//   - info: the mesh description; Name and at least one LODRange are required
	//
	// Returns:
	//   - *Info: the stored record with ID and UUID populated
	//   - error: an error if the record is incomplete or the name is taken
	Register(info Info) (*Info, error)

	// ByID retrieves a mesh by its dense registry ID.
	//
	// Parameters:
	//   - id: the registry ID
	//
	// Returns:
	//   - *Info: the mesh record, or nil if unknown
	ByID(id uint32) *Info

	// ByName retrieves a mesh by its importer-facing name.
	//
	// Parameters:
	//   - name: the mesh name
	//
	// Returns:
	//   - *Info: the mesh record, or nil if unknown
	ByName(name string) *Info

	// All returns every registered mesh in ascending ID order.
	//
	// Returns:
	//   - []*Info: the registered meshes
	All() []*Info

	// Count returns the number of registered meshes.
	//
	// Returns:
	//   - int: the mesh count
	Count() int
}

type registry struct {
	mu     sync.RWMutex
	byID   []*Info
	byName map[string]*Info
}

// Ensure registry implements Registry interface.
var _ Registry = &registry{}

// NewRegistry creates an empty mesh registry.
//
// Returns:
//   - Registry: the new registry
func NewRegistry() Registry {
	return &registry{
		byName: make(map[string]*Info),
	}
}

func (r *registry) Register(info Info) (*Info, error) {
	if info.Name == "" {
		return nil, fmt.Errorf("mesh: Register requires a name")
	}
	if len(info.Ranges) == 0 {
		return nil, fmt.Errorf("mesh: Register %q requires at least one LOD range", info.Name)
	}
	if !info.Texture.Valid() {
		// Out-of-range texture indices are an asset defect, not a frame
		// failure: default to the color slot and surface a warning.
		common.LogWarnThrottled("mesh:texture:"+info.Name,
			"mesh %q references unknown texture slot %d, defaulting to %s",
			info.Name, uint32(info.Texture), shadertypes.TextureIndexColor)
		info.Texture = shadertypes.TextureIndexColor
	}
	if !info.Bounds.Valid() {
		common.LogWarnThrottled("mesh:bounds:"+info.Name,
			"mesh %q has a malformed bounding sphere; its instances will never be culled", info.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[info.Name]; exists {
		return nil, fmt.Errorf("mesh: %q is already registered", info.Name)
	}

	stored := info
	stored.ID = uint32(len(r.byID))
	stored.UUID = uuid.New()
	r.byID = append(r.byID, &stored)
	r.byName[stored.Name] = &stored
	return &stored, nil
}

func (r *registry) ByID(id uint32) *Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.byID) {
		return nil
	}
	return r.byID[id]
}

func (r *registry) ByName(name string) *Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

func (r *registry) All() []*Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Info, len(r.byID))
	copy(out, r.byID)
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

func (r *registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
