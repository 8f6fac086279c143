package scene

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ximhear/songdo/common"
	"github.com/ximhear/songdo/engine/batch"
	"github.com/ximhear/songdo/engine/camera"
	"github.com/ximhear/songdo/engine/citygen"
	"github.com/ximhear/songdo/engine/config"
	"github.com/ximhear/songdo/engine/cull"
	"github.com/ximhear/songdo/engine/frame"
	"github.com/ximhear/songdo/engine/light"
	"github.com/ximhear/songdo/engine/lod"
	"github.com/ximhear/songdo/engine/mesh"
	"github.com/ximhear/songdo/engine/profiler"
	"github.com/ximhear/songdo/engine/shadertypes"
)

// Building is one instanced building in the scene's pool.
type Building struct {
	ID      uint64
	Mesh    uint32
	Model   mgl32.Mat4
	Color   mgl32.Vec4
	Texture shadertypes.TextureIndex
	Height  float32
	Volume  cull.Volume
}

// RoadSegment is one cullable run of the shared road vertex/index buffers.
type RoadSegment struct {
	ID         uint64
	IndexStart uint32
	IndexCount uint32
	Bounds     common.AABB
}

// buildingEntry is the pool-internal record: the building plus the LOD level
// it was assigned last frame, which feeds the selector's hysteresis.
type buildingEntry struct {
	Building
	prevLod uint32
}

// FrameOutput is one fully assembled frame, published atomically. Readers
// either see the previous frame or this one, never a mix.
type FrameOutput struct {
	// Frame is the immutable context the frame was built from.
	Frame frame.Context

	// Instances is the packed GPU instance buffer for the frame.
	Instances []shadertypes.GPUBuildingInstance

	// Batches lists the contiguous runs of Instances.
	Batches []batch.Batch

	// Draws is the indirect draw argument buffer, one record per batch.
	Draws []shadertypes.GPUDrawIndexedArgs

	// Terrain holds the uniforms of every terrain patch visible this frame.
	Terrain []shadertypes.GPUTerrainUniforms

	// Roads lists the visible road segments' index ranges.
	Roads []RoadSegment

	// Tested and Visible count the building instances run through culling
	// and kept; Overflow counts instances dropped to capacity truncation.
	Tested   int
	Visible  int
	Overflow int
}

// Scene owns the live city pools and drives the per-frame visibility
// pipeline: snapshot, parallel cull+LOD, stream build, indirect encode, and
// atomic publish. Pool edits and Tick must not run concurrently with each
// other; published outputs may be read from any goroutine at any time.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Sun returns the scene's directional light, or nil.
	Sun() light.Sun

	// Registry returns the mesh registry draws are encoded against.
	Registry() mesh.Registry

	// AddBuilding adds a building to the pool and assigns it an ID.
	//
	// Parameters:
	//   - b: the building to add (ID field is overwritten)
	//
	// Returns:
	//   - uint64: the assigned ID
	AddBuilding(b Building) uint64

	// RemoveBuilding removes a building from the pool by ID.
	//
	// Parameters:
	//   - id: the building's ID
	//
	// Returns:
	//   - bool: true if a building was removed
	RemoveBuilding(id uint64) bool

	// AddTerrain adds a terrain patch as a cullable unit.
	//
	// Parameters:
	//   - patch: the patch descriptor
	AddTerrain(patch citygen.TerrainPatch)

	// AddRoadSegment adds a road segment as a cullable unit.
	//
	// Parameters:
	//   - seg: the segment descriptor (ID field is overwritten)
	//
	// Returns:
	//   - uint64: the assigned ID
	AddRoadSegment(seg RoadSegment) uint64

	// Populate ingests a generated city: every building becomes a pool
	// instance rendered with the given mesh, each chunk's road content
	// becomes one cullable segment of the provided index ranges, and the
	// terrain patch is added.
	//
	// Parameters:
	//   - city: the generated city
	//   - meshID: the registry mesh to render buildings with
	//   - roadRanges: per-road index ranges in the shared road index buffer,
	//     parallel to city.Roads; nil skips road registration
	Populate(city citygen.City, meshID uint32, roadRanges []RoadSegment)

	// BuildingCount returns the number of buildings in the pool.
	BuildingCount() int

	// Tick advances time and runs the full frame pipeline once. On success
	// the new FrameOutput is published; when the cull barrier misses the
	// frame deadline the previous output is republished unchanged and a
	// deadline miss is recorded.
	//
	// Parameters:
	//   - dt: seconds since the previous tick
	Tick(dt float32)

	// Output returns the most recently published frame, or nil before the
	// first Tick.
	Output() *FrameOutput

	// Profiler returns the scene's telemetry counters.
	Profiler() *profiler.Profiler

	// Close releases the scene's config watcher.
	Close()
}

type sceneImpl struct {
	mu *sync.Mutex

	name string

	cam  camera.Camera
	sun  light.Sun
	reg  mesh.Registry
	cfg  *config.Watcher
	prof *profiler.Profiler

	buildings []buildingEntry
	terrain   []citygen.TerrainPatch
	roads     []RoadSegment
	nextID    uint64

	// selector is rebuilt only when the config snapshot pointer changes.
	selector    *lod.Selector
	selectorCfg *config.Pipeline

	frameIndex uint64
	elapsed    float32
	taskSeq    int

	output atomic.Pointer[FrameOutput]

	// cullPool manages a bounded set of reusable goroutines for the
	// parallel cull+LOD phase. Workers persist across frames.
	cullPool    worker.DynamicWorkerPool
	cullWorkers int
}

var _ Scene = &sceneImpl{}

// NewScene creates a Scene with the given camera and mesh registry. Both are
// required and NewScene panics if either is nil. Without a config watcher
// option the built-in defaults apply.
//
// Parameters:
//   - name: the scene's identifier
//   - cam: the camera to attach (must not be nil)
//   - reg: the mesh registry (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, reg mesh.Registry, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if reg == nil {
		panic("scene: NewScene requires a non-nil mesh Registry")
	}

	s := &sceneImpl{
		mu:     &sync.Mutex{},
		name:   name,
		cam:    cam,
		reg:    reg,
		prof:   profiler.NewProfiler(),
		nextID: 1,
	}

	for _, option := range options {
		option(s)
	}

	if s.cfg == nil {
		s.cfg = config.NewStaticWatcher(config.Default())
	}
	if s.cullWorkers == 0 {
		s.cullWorkers = s.cfg.Current().CullWorkers
	}
	if s.cullWorkers < 1 {
		s.cullWorkers = 1
	}

	// Queue size of 256 accommodates the partition task counts with headroom.
	s.cullPool = worker.NewDynamicWorkerPool(s.cullWorkers, 256, 1*time.Second)

	return s
}

func (s *sceneImpl) Name() string {
	return s.name
}

func (s *sceneImpl) Camera() camera.Camera {
	return s.cam
}

func (s *sceneImpl) Sun() light.Sun {
	return s.sun
}

func (s *sceneImpl) Registry() mesh.Registry {
	return s.reg
}

func (s *sceneImpl) Profiler() *profiler.Profiler {
	return s.prof
}

func (s *sceneImpl) AddBuilding(b Building) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.nextID
	s.nextID++
	s.buildings = append(s.buildings, buildingEntry{Building: b})
	return b.ID
}

func (s *sceneImpl) RemoveBuilding(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.buildings {
		if s.buildings[i].ID == id {
			s.buildings = append(s.buildings[:i], s.buildings[i+1:]...)
			return true
		}
	}
	return false
}

func (s *sceneImpl) AddTerrain(patch citygen.TerrainPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terrain = append(s.terrain, patch)
}

func (s *sceneImpl) AddRoadSegment(seg RoadSegment) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	seg.ID = s.nextID
	s.nextID++
	s.roads = append(s.roads, seg)
	return seg.ID
}

func (s *sceneImpl) Populate(city citygen.City, meshID uint32, roadRanges []RoadSegment) {
	info := s.reg.ByID(meshID)
	for _, b := range city.Buildings {
		volume := cull.AABBVolume(b.Bounds())
		if info != nil && info.Bounds.Valid() {
			// Prefer the mesh's sphere bounds transformed by the model
			// matrix; the sphere test is cheaper than the AABB test.
			volume = cull.SphereVolume(common.TransformSphere(info.Bounds, b.ModelMatrix()))
		}
		s.AddBuilding(Building{
			Mesh:    meshID,
			Model:   b.ModelMatrix(),
			Color:   b.Color,
			Texture: shadertypes.TextureIndexColor,
			Height:  b.Height,
			Volume:  volume,
		})
	}

	for i, rng := range roadRanges {
		if i >= len(city.Roads) {
			break
		}
		rng.Bounds = city.Roads[i].Bounds()
		s.AddRoadSegment(rng)
	}

	s.AddTerrain(city.Terrain)
}

func (s *sceneImpl) BuildingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buildings)
}

func (s *sceneImpl) Output() *FrameOutput {
	return s.output.Load()
}

func (s *sceneImpl) Close() {
	if s.cfg != nil {
		s.cfg.Close()
	}
}

// partitionResult carries one worker's output: the visible candidates of its
// span and the LOD level assigned to every building in the span. Workers
// write only into their own result slot, so a frame that beats the deadline
// merges race-free and a frame that misses simply abandons the slice.
type partitionResult struct {
	candidates []batch.Candidate
	lods       []uint32
}

func (s *sceneImpl) Tick(dt float32) {
	cfg := s.cfg.Current()
	if cfg != s.selectorCfg {
		sel, err := lod.NewSelector(cfg.LODBreakpoints, cfg.LODHysteresis)
		if err != nil {
			common.LogWarn("scene %s: rejecting LOD config: %v", s.name, err)
			sel, _ = lod.NewSelector(config.Default().LODBreakpoints, config.Default().LODHysteresis)
		}
		s.selector = sel
		s.selectorCfg = cfg
	}

	s.cam.Update()
	if s.sun != nil {
		s.sun.Advance(dt)
	}

	s.mu.Lock()
	s.frameIndex++
	s.elapsed += dt
	ctx := frame.Build(s.frameIndex, s.elapsed, dt, s.cam, s.sun)

	// Copy the pool under the lock. A frame that misses its deadline leaves
	// workers culling past Tick's return; the copy keeps those orphans off
	// the live pool, so later edits and LOD write-backs never race them.
	snapshot := append([]buildingEntry(nil), s.buildings...)
	terrain := s.terrain
	roads := s.roads
	s.mu.Unlock()

	// Orphaned workers must also never touch scene fields a later frame
	// may swap, so the selector rides into the span as a captured value.
	selector := s.selector

	// Parallel cull + LOD over fixed partitions. Each partition writes its
	// own result slot; the merge below walks slots in partition order, so
	// the output is identical no matter which worker finishes first.
	spans := cull.Partitions(len(snapshot), s.cullWorkers)
	results := make([]partitionResult, len(spans))
	var wg sync.WaitGroup
	for i, span := range spans {
		wg.Add(1)
		slot := i
		sp := span
		s.taskSeq++
		s.cullPool.SubmitTask(worker.Task{
			ID: s.taskSeq,
			Do: func() (any, error) {
				defer wg.Done()
				cullSpan(&ctx, selector, snapshot, sp, &results[slot])
				return nil, nil
			},
		})
	}

	if !waitWithDeadline(&wg, cfg.FrameDeadline()) {
		// Republish the previous frame rather than stalling; the workers
		// finish into orphaned result slots.
		s.prof.AddDeadlineMiss()
		if prev := s.output.Load(); prev != nil {
			out := *prev
			out.Frame = ctx
			s.output.Store(&out)
		}
		s.prof.Tick()
		return
	}

	// Merge in partition order and write assigned LODs back for hysteresis.
	var candidates []batch.Candidate
	for i, span := range spans {
		candidates = append(candidates, results[i].candidates...)
		s.mu.Lock()
		for j := span.Start; j < span.End && j < len(s.buildings); j++ {
			s.buildings[j].prevLod = results[i].lods[j-span.Start]
		}
		s.mu.Unlock()
	}

	out := &FrameOutput{
		Frame:   ctx,
		Tested:  len(snapshot),
		Visible: len(candidates),
	}

	// Terrain and road counts stay small; cull them inline.
	for _, patch := range terrain {
		if cull.Visible(&ctx.Frustum, cull.AABBVolume(patch.Bounds), "terrain") {
			out.Terrain = append(out.Terrain, patch.Uniforms)
		}
	}
	for _, seg := range roads {
		if cull.Visible(&ctx.Frustum, cull.AABBVolume(seg.Bounds), "road") {
			out.Roads = append(out.Roads, seg)
		}
	}

	stream := batch.NewBuilder(cfg.InstanceCapacity).Build(candidates)
	out.Instances = stream.Instances
	out.Batches = stream.Batches
	out.Overflow = stream.Overflow
	out.Draws = batch.EncodeDraws(&stream, s.reg)

	s.output.Store(out)

	s.prof.AddCullStats(out.Tested, out.Visible)
	s.prof.AddOverflow(out.Overflow)
	s.prof.AddDrawRecords(len(out.Draws))
	s.prof.Tick()
}

// cullSpan runs the per-instance cull and LOD selection for one partition.
// It reads only its arguments: a worker orphaned by a deadline miss keeps
// running after Tick returns, so nothing here may touch live scene state.
func cullSpan(ctx *frame.Context, selector *lod.Selector, snapshot []buildingEntry, span cull.Span, result *partitionResult) {
	result.lods = make([]uint32, span.Len())
	for i := span.Start; i < span.End; i++ {
		entry := &snapshot[i]
		result.lods[i-span.Start] = entry.prevLod

		if !cull.Visible(&ctx.Frustum, entry.Volume, "building") {
			continue
		}

		distance := cull.DistanceTo(ctx.CameraPosition, entry.Volume)
		level := selector.SelectStable(distance, entry.prevLod)
		result.lods[i-span.Start] = level

		result.candidates = append(result.candidates, batch.Candidate{
			Key: batch.Key{
				MeshID:  entry.Mesh,
				Lod:     level,
				Texture: entry.Texture,
			},
			Instance: shadertypes.GPUBuildingInstance{
				ModelMatrix:  [16]float32(entry.Model),
				Color:        [4]float32(entry.Color),
				TextureIndex: uint32(entry.Texture),
				Height:       entry.Height,
				LodLevel:     level,
			},
			Distance: distance,
			Order:    i,
		})
	}
}

// waitWithDeadline waits for the barrier, giving up after the deadline.
// A zero deadline waits forever.
func waitWithDeadline(wg *sync.WaitGroup, deadline time.Duration) bool {
	if deadline <= 0 {
		wg.Wait()
		return true
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(deadline)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}
