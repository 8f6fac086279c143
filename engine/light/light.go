package light

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// sunImpl is the implementation of the Sun interface.
type sunImpl struct {
	mu *sync.Mutex

	azimuth   float32 // Horizontal angle of the sun around the Y axis
	elevation float32 // Vertical angle above the horizon
	color     mgl32.Vec3
	ambient   mgl32.Vec3
	daySpeed  float32 // Radians of azimuth per second of animation, 0 disables
}

// Sun is the single directional light for the city. It has no position, only
// a direction derived from azimuth/elevation angles, and contributes a flat
// ambient term. The scene samples Direction/Color/Ambient once per frame when
// building the frame uniforms.
type Sun interface {
	// Direction returns the normalized world-space direction the light
	// travels, pointing from the sun toward the ground.
	//
	// Returns:
	//   - mgl32.Vec3: normalized light direction
	Direction() mgl32.Vec3

	// Color returns the RGB color of the direct sunlight.
	//
	// Returns:
	//   - mgl32.Vec3: color as (r, g, b)
	Color() mgl32.Vec3

	// Ambient returns the flat ambient RGB contribution.
	//
	// Returns:
	//   - mgl32.Vec3: ambient color as (r, g, b)
	Ambient() mgl32.Vec3

	// Azimuth returns the sun's horizontal angle around the Y axis.
	//
	// Returns:
	//   - float32: azimuth in radians
	Azimuth() float32

	// Elevation returns the sun's angle above the horizon.
	//
	// Returns:
	//   - float32: elevation in radians
	Elevation() float32

	// Advance rotates the sun's azimuth by the configured day speed.
	// A zero day speed makes this a no-op.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Advance(dt float32)

	// SetAngles sets the sun's azimuth and elevation directly.
	//
	// Parameters:
	//   - azimuth: horizontal angle in radians
	//   - elevation: angle above the horizon in radians
	SetAngles(azimuth, elevation float32)

	// SetColor sets the direct sunlight color.
	//
	// Parameters:
	//   - color: RGB color
	SetColor(color mgl32.Vec3)

	// SetAmbient sets the ambient contribution.
	//
	// Parameters:
	//   - ambient: RGB color
	SetAmbient(ambient mgl32.Vec3)
}

var _ Sun = &sunImpl{}

// NewSun creates a directional light with late-morning defaults: warm white
// direct light from 50 degrees above the horizon and a cool dim ambient term.
//
// Parameters:
//   - options: functional options to configure the light
//
// Returns:
//   - Sun: the newly created light
func NewSun(options ...SunBuilderOption) Sun {
	s := &sunImpl{
		mu:        &sync.Mutex{},
		azimuth:   math32.Pi / 4,
		elevation: 50.0 * (math32.Pi / 180.0),
		color:     mgl32.Vec3{1.0, 0.96, 0.9},
		ambient:   mgl32.Vec3{0.25, 0.27, 0.32},
		daySpeed:  0,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *sunImpl) Direction() mgl32.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.direction()
}

// direction derives the light direction from the sun angles. The sun sits at
// (azimuth, elevation) on the sky dome, so light travels opposite that vector.
// Caller must hold the mutex.
func (s *sunImpl) direction() mgl32.Vec3 {
	cosElev := math32.Cos(s.elevation)
	return mgl32.Vec3{
		-cosElev * math32.Sin(s.azimuth),
		-math32.Sin(s.elevation),
		-cosElev * math32.Cos(s.azimuth),
	}.Normalize()
}

func (s *sunImpl) Color() mgl32.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.color
}

func (s *sunImpl) Ambient() mgl32.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ambient
}

func (s *sunImpl) Azimuth() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.azimuth
}

func (s *sunImpl) Elevation() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elevation
}

func (s *sunImpl) Advance(dt float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.daySpeed == 0 {
		return
	}
	s.azimuth += s.daySpeed * dt
	if s.azimuth > 2*math32.Pi {
		s.azimuth -= 2 * math32.Pi
	}
}

func (s *sunImpl) SetAngles(azimuth, elevation float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.azimuth = azimuth
	s.elevation = elevation
}

func (s *sunImpl) SetColor(color mgl32.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.color = color
}

func (s *sunImpl) SetAmbient(ambient mgl32.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ambient = ambient
}
