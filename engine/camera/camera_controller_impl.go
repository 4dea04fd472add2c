package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-timewarp/engine/timewarp"
)

type orientationControllerImpl struct {
	mu *sync.Mutex

	orientation timewarp.Orientation
	sensitivity float32

	// Reference pointer position, valid once sampled is set
	sampled bool
	lastX   float64
	lastY   float64
}

var _ OrientationController = &orientationControllerImpl{}

// NewOrientationController creates an OrientationController starting at the identity orientation
// with DefaultSensitivity.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - OrientationController: the newly created controller
func NewOrientationController(options ...OrientationControllerOption) OrientationController {
	oc := &orientationControllerImpl{
		mu:          &sync.Mutex{},
		sensitivity: DefaultSensitivity,
	}
	for _, option := range options {
		option(oc)
	}
	return oc
}

func (oc *orientationControllerImpl) Sample(x, y float64) {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	if oc.sampled {
		oc.orientation.Yaw += float32(x-oc.lastX) * oc.sensitivity
		oc.orientation.Pitch += float32(y-oc.lastY) * oc.sensitivity
	}
	oc.sampled = true
	oc.lastX, oc.lastY = x, y
}

func (oc *orientationControllerImpl) Orientation() timewarp.Orientation {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.orientation
}

func (oc *orientationControllerImpl) Sensitivity() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.sensitivity
}

func (oc *orientationControllerImpl) SetSensitivity(sensitivity float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.sensitivity = sensitivity
}
