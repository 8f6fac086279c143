package light

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSunDirectionNormalizedAndDownward(t *testing.T) {
	s := NewSun()

	dir := s.Direction()
	assert.InDelta(t, 1.0, dir.Len(), 1e-5)
	assert.Negative(t, dir.Y())
}

func TestSunDirectionFromAngles(t *testing.T) {
	// Sun straight overhead: light travels straight down.
	s := NewSun(WithAngles(0, math32.Pi/2))

	dir := s.Direction()
	assert.InDelta(t, 0, dir.X(), 1e-5)
	assert.InDelta(t, -1, dir.Y(), 1e-5)
	assert.InDelta(t, 0, dir.Z(), 1e-5)

	// Sun on the horizon at azimuth 0 (+Z): light travels toward -Z.
	s.SetAngles(0, 0)
	dir = s.Direction()
	assert.InDelta(t, 0, dir.Y(), 1e-5)
	assert.InDelta(t, -1, dir.Z(), 1e-5)
}

func TestSunAdvance(t *testing.T) {
	s := NewSun(WithAngles(0, 1), WithDaySpeed(0.5))

	s.Advance(2)
	assert.InDelta(t, 1.0, s.Azimuth(), 1e-5)
	assert.InDelta(t, 1.0, s.Elevation(), 1e-5)

	frozen := NewSun(WithAngles(0.3, 1))
	frozen.Advance(10)
	assert.Equal(t, float32(0.3), frozen.Azimuth())
}

func TestSunBuilderOptions(t *testing.T) {
	s := NewSun(
		WithColor(mgl32.Vec3{1, 0.5, 0.25}),
		WithAmbient(mgl32.Vec3{0.1, 0.1, 0.1}),
	)

	assert.Equal(t, mgl32.Vec3{1, 0.5, 0.25}, s.Color())
	assert.Equal(t, mgl32.Vec3{0.1, 0.1, 0.1}, s.Ambient())
}
