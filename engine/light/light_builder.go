package light

import "github.com/go-gl/mathgl/mgl32"

// SunBuilderOption is a functional option for configuring a Sun.
type SunBuilderOption func(*sunImpl)

// WithAngles sets the initial azimuth and elevation of the sun.
//
// Parameters:
//   - azimuth: horizontal angle in radians
//   - elevation: angle above the horizon in radians
//
// Returns:
//   - SunBuilderOption: functional option to set the sun angles
func WithAngles(azimuth, elevation float32) SunBuilderOption {
	return func(s *sunImpl) {
		s.azimuth = azimuth
		s.elevation = elevation
	}
}

// WithColor sets the direct sunlight color.
//
// Parameters:
//   - color: RGB color
//
// Returns:
//   - SunBuilderOption: functional option to set the light color
func WithColor(color mgl32.Vec3) SunBuilderOption {
	return func(s *sunImpl) {
		s.color = color
	}
}

// WithAmbient sets the ambient contribution.
//
// Parameters:
//   - ambient: RGB color
//
// Returns:
//   - SunBuilderOption: functional option to set the ambient color
func WithAmbient(ambient mgl32.Vec3) SunBuilderOption {
	return func(s *sunImpl) {
		s.ambient = ambient
	}
}

// WithDaySpeed enables time-of-day animation. Each Advance(dt) call rotates
// the sun's azimuth by speed*dt radians.
//
// Parameters:
//   - speed: radians per second of animation
//
// Returns:
//   - SunBuilderOption: functional option to set the day speed
func WithDaySpeed(speed float32) SunBuilderOption {
	return func(s *sunImpl) {
		s.daySpeed = speed
	}
}
