package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	def := Default()
	assert.NoError(t, def.Validate())
	assert.Positive(t, def.InstanceCapacity)
	assert.GreaterOrEqual(t, def.CullWorkers, 1)
}

func TestParseMergesOverDefaults(t *testing.T) {
	doc := []byte(`
lod_breakpoints = [10.0, 100.0]
instance_capacity = 1000
`)
	p, err := Parse(doc)
	require.NoError(t, err)

	assert.Equal(t, []float32{10, 100}, p.LODBreakpoints)
	assert.Equal(t, 1000, p.InstanceCapacity)

	// Unset fields keep defaults.
	def := Default()
	assert.Equal(t, def.LODHysteresis, p.LODHysteresis)
	assert.Equal(t, def.CullWorkers, p.CullWorkers)
	assert.Equal(t, def.ChunkSize, p.ChunkSize)
}

func TestParseEmptyDocumentIsDefault(t *testing.T) {
	p, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"descending breakpoints": "lod_breakpoints = [100.0, 10.0]",
		"negative hysteresis":    "lod_hysteresis = -1.0",
		"negative capacity":      "instance_capacity = -5",
		"negative deadline":      "frame_deadline_ms = -1",
		"zero chunk":             "chunk_size = -10.0",
		"broken toml":            "lod_breakpoints = [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestFrameDeadline(t *testing.T) {
	p := Pipeline{FrameDeadlineMS: 12}
	assert.Equal(t, 12*time.Millisecond, p.FrameDeadline())

	p.FrameDeadlineMS = 0
	assert.Equal(t, time.Duration(0), p.FrameDeadline())
}

func TestWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.toml")
	require.NoError(t, os.WriteFile(path, []byte("instance_capacity = 500\n"), 0o644))

	reloaded := make(chan *Pipeline, 1)
	w, err := NewWatcher(path, func(p *Pipeline) { reloaded <- p })
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, 500, w.Current().InstanceCapacity)

	require.NoError(t, os.WriteFile(path, []byte("instance_capacity = 900\n"), 0o644))

	select {
	case p := <-reloaded:
		assert.Equal(t, 900, p.InstanceCapacity)
		assert.Equal(t, 900, w.Current().InstanceCapacity)
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback not invoked")
	}
}

func TestWatcherKeepsSnapshotOnBadReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.toml")
	require.NoError(t, os.WriteFile(path, []byte("instance_capacity = 500\n"), 0o644))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	defer w.Close()

	before := w.Current()
	require.NoError(t, os.WriteFile(path, []byte("instance_capacity = [broken\n"), 0o644))

	// The watcher logs and keeps serving the previous snapshot.
	assert.Eventually(t, func() bool {
		return w.Current() == before
	}, 2*time.Second, 50*time.Millisecond)
	assert.Equal(t, 500, w.Current().InstanceCapacity)
}

func TestStaticWatcher(t *testing.T) {
	p := Default()
	p.InstanceCapacity = 7
	w := NewStaticWatcher(p)
	defer w.Close()

	assert.Equal(t, 7, w.Current().InstanceCapacity)
}
