package scene

import (
	"github.com/ximhear/songdo/engine/config"
	"github.com/ximhear/songdo/engine/light"
)

// SceneBuilderOption is a functional option for configuring a Scene.
type SceneBuilderOption func(*sceneImpl)

// WithSun attaches a directional light to the scene. Its state is sampled
// into the frame uniforms every tick.
//
// Parameters:
//   - sun: the light to attach
//
// Returns:
//   - SceneBuilderOption: functional option to set the sun
func WithSun(sun light.Sun) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.sun = sun
	}
}

// WithConfigWatcher attaches a pipeline configuration source. The scene reads
// the watcher's current snapshot at the top of every tick, so hot reloads
// take effect on the next frame. The scene takes ownership and closes the
// watcher on Close.
//
// Parameters:
//   - w: the configuration watcher
//
// Returns:
//   - SceneBuilderOption: functional option to set the config source
func WithConfigWatcher(w *config.Watcher) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.cfg = w
	}
}

// WithCullWorkers overrides the worker count for the parallel cull phase.
// Values below 1 are clamped to 1.
//
// Parameters:
//   - workers: number of cull workers
//
// Returns:
//   - SceneBuilderOption: functional option to set the worker count
func WithCullWorkers(workers int) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.cullWorkers = workers
	}
}
