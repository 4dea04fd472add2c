package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-timewarp/common"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/timewarp"
)

const (
	// DefaultFovDegrees is the vertical field of view of a new camera.
	DefaultFovDegrees = 60
	DefaultNear       = 0.1
	DefaultFar        = 1000
)

type cameraImpl struct {
	mu *sync.Mutex

	eye common.Vector3
	up  common.Vector3

	fov    float32
	aspect float32
	near   float32
	far    float32

	controller OrientationController
}

// Camera defines the interface for the fixed-position camera the demo renders from.
// The camera owns the eye, the up vector and the perspective settings. Its view direction is BaseForward
// turned by the orientation of the attached OrientationController, so the camera can only rotate in place.
type Camera interface {
	// Eye returns the camera's world-space position.
	//
	// Returns:
	//   - common.Vector3: the eye position
	Eye() common.Vector3

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - common.Vector3: the up vector
	Up() common.Vector3

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// SetAspect sets the aspect ratio used by Projection.
	//
	// Parameters:
	//   - aspect: width divided by height
	SetAspect(aspect float32)

	// Controller returns the attached OrientationController, or nil if none is attached.
	Controller() OrientationController

	// SetController attaches an OrientationController to the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl OrientationController)

	// Orientation returns the controller's accumulated orientation, or the identity orientation with no controller.
	//
	// Returns:
	//   - timewarp.Orientation: the current orientation
	Orientation() timewarp.Orientation

	// StaleView returns the view matrix for the identity orientation.
	//
	// Returns:
	//   - common.Matrix: the stale view
	StaleView() common.Matrix

	// CurrentView returns the view matrix for the controller's current orientation.
	//
	// Returns:
	//   - common.Matrix: the current view
	CurrentView() common.Matrix

	// Projection returns the perspective projection for the camera's settings.
	//
	// Returns:
	//   - common.Matrix: the projection matrix
	Projection() common.Matrix
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera at timewarp.DefaultEye looking along timewarp.BaseForward
// with a 60 degree vertical field of view and planes at 0.1 and 1000.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		eye:    timewarp.DefaultEye,
		up:     timewarp.DefaultUp,
		fov:    common.DegreesToRadians(DefaultFovDegrees),
		aspect: 1.0,
		near:   DefaultNear,
		far:    DefaultFar,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Eye() common.Vector3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) Up() common.Vector3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *cameraImpl) Controller() OrientationController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl OrientationController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

func (c *cameraImpl) Orientation() timewarp.Orientation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return timewarp.Orientation{}
	}
	return c.controller.Orientation()
}

func (c *cameraImpl) StaleView() common.Matrix {
	c.mu.Lock()
	defer c.mu.Unlock()
	return timewarp.ComputeStaleView(c.eye, c.up)
}

func (c *cameraImpl) CurrentView() common.Matrix {
	o := c.Orientation()

	c.mu.Lock()
	defer c.mu.Unlock()
	return timewarp.ComputeCurrentView(c.eye, c.up, o)
}

func (c *cameraImpl) Projection() common.Matrix {
	c.mu.Lock()
	defer c.mu.Unlock()
	return timewarp.ComputeProjection(c.fov, c.aspect, c.near, c.far)
}
