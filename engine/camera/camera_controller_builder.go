package camera

import "github.com/Carmen-Shannon/oxy-timewarp/engine/timewarp"

// OrientationControllerOption is a functional option for configuring an OrientationController.
type OrientationControllerOption func(*orientationControllerImpl)

// WithSensitivity sets the radians added per pixel of pointer motion.
//
// Parameters:
//   - sensitivity: radians per pixel
//
// Returns:
//   - OrientationControllerOption: functional option to set the sensitivity
func WithSensitivity(sensitivity float32) OrientationControllerOption {
	return func(oc *orientationControllerImpl) {
		oc.sensitivity = sensitivity
	}
}

// WithOrientation sets the orientation the controller starts from.
//
// Parameters:
//   - o: the starting orientation
//
// Returns:
//   - OrientationControllerOption: functional option to set the starting orientation
func WithOrientation(o timewarp.Orientation) OrientationControllerOption {
	return func(oc *orientationControllerImpl) {
		oc.orientation = o
	}
}
