package camera

import "github.com/Carmen-Shannon/oxy-timewarp/engine/timewarp"

// DefaultSensitivity is the orientation change in radians per pixel of pointer motion.
const DefaultSensitivity = 0.001

// OrientationController accumulates absolute pointer positions into a head orientation.
// Horizontal motion drives yaw and vertical motion drives pitch. The first sample only
// establishes the reference position and contributes no rotation. The orientation is never reset.
type OrientationController interface {
	// Sample feeds the current absolute pointer position and accumulates the scaled delta
	// from the previous sample.
	//
	// Parameters:
	//   - x, y: pointer position in pixels
	Sample(x, y float64)

	// Orientation returns the accumulated orientation.
	//
	// Returns:
	//   - timewarp.Orientation: yaw and pitch in radians
	Orientation() timewarp.Orientation

	// Sensitivity returns the radians added per pixel of pointer motion.
	Sensitivity() float32

	// SetSensitivity sets the radians added per pixel of pointer motion.
	//
	// Parameters:
	//   - sensitivity: radians per pixel
	SetSensitivity(sensitivity float32)
}
