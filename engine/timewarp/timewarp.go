// Package timewarp holds the rotational timewarp math: building the stale and current views, deriving the
// corrective transform between them, and the CPU mirror of the texture-coordinate remap the warp pass performs on the GPU.
//
// All matrices follow the row-major, row-vector, left-handed convention of common.Matrix.
package timewarp

import (
	"github.com/Carmen-Shannon/oxy-timewarp/common"
)

var (
	// BaseForward is the view direction of the identity orientation.
	BaseForward = common.Vector3{0, 0, 1}
	// DefaultEye is the fixed camera position.
	DefaultEye = common.Vector3{0, 1, -8}
	// DefaultUp is the fixed camera up vector.
	DefaultUp = common.Vector3{0, 1, 0}
)

// Orientation is the accumulated head orientation, in radians.
// Yaw rotates about the world Y axis and is driven by horizontal pointer motion.
// Pitch rotates about the X axis and is driven by vertical pointer motion.
type Orientation struct {
	Yaw   float32
	Pitch float32
}

// IsIdentity reports whether o applies no rotation.
func (o Orientation) IsIdentity() bool {
	return o.Yaw == 0 && o.Pitch == 0
}

// Matrix returns the rotation for o: yaw about Y followed by pitch about X, in row-vector order.
func (o Orientation) Matrix() common.Matrix {
	return common.RotationY(o.Yaw).Mul(common.RotationX(o.Pitch))
}

// Rotate applies o to the direction v.
//
// Parameters:
//   - o: the orientation to apply
//   - v: the direction to rotate
//
// Returns:
//   - common.Vector3: the rotated direction
func Rotate(o Orientation, v common.Vector3) common.Vector3 {
	if o.IsIdentity() {
		return v
	}
	return o.Matrix().TransformNormal(v)
}

// ComputeStaleView returns the view matrix looking along BaseForward with no orientation applied.
// This is the pose the scene is considered to have been rendered at.
func ComputeStaleView(eye, up common.Vector3) common.Matrix {
	return common.LookTo(eye, BaseForward, up)
}

// ComputeCurrentView returns the view matrix looking along BaseForward rotated by o.
// A rotated forward that collapses onto up yields the identity view.
func ComputeCurrentView(eye, up common.Vector3, o Orientation) common.Matrix {
	return common.LookTo(eye, Rotate(o, BaseForward), up)
}

// ComputeProjection returns the left-handed perspective projection shared by both passes.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: surface width divided by height
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - common.Matrix: the projection matrix
func ComputeProjection(fovY, aspect, near, far float32) common.Matrix {
	return common.PerspectiveFov(fovY, aspect, near, far)
}

// ComputeCorrective returns inverse(staleView) * currentView, the transform that carries the stale
// pose onto the current one: staleView * corrective == currentView.
// Identical views short-circuit to the exact identity. A singular stale view is treated as identity.
func ComputeCorrective(staleView, currentView common.Matrix) common.Matrix {
	if staleView == currentView {
		return common.Identity()
	}
	invStale, _ := common.Invert(staleView)
	return invStale.Mul(currentView)
}

// ComputeWarpMatrix returns the matrix handed to the warp vertex stage: the inverse of the corrective transform.
// It maps a direction in the current view back to the stale view the intermediate target was rendered with.
// Identical views yield the exact identity, and a singular corrective falls back to identity.
//
// Parameters:
//   - staleView: the view the scene was rendered with
//   - currentView: the live view
//
// Returns:
//   - common.Matrix: the warp matrix
func ComputeWarpMatrix(staleView, currentView common.Matrix) common.Matrix {
	if staleView == currentView {
		return common.Identity()
	}
	warp, _ := common.Invert(ComputeCorrective(staleView, currentView))
	return warp
}

// RemapTexCoord evaluates, on the CPU, the remap the warp vertex shader applies to one grid vertex.
// The vertex's texture coordinate is treated as a screen position in the current view, turned into a
// view-space direction through the projection, carried into the stale view by warp, and projected back
// into the intermediate target's texture space.
//
// Parameters:
//   - uv: the grid vertex texture coordinate, [0, 1] with v pointing down
//   - warp: the matrix returned by ComputeWarpMatrix
//   - projection: the projection shared by both passes
//
// Returns:
//   - [2]float32: the texture coordinate to sample in the intermediate target
//   - bool: false when the direction lands behind the stale camera and has no valid coordinate
func RemapTexCoord(uv [2]float32, warp, projection common.Matrix) ([2]float32, bool) {
	ndcX := uv[0]*2 - 1
	ndcY := 1 - uv[1]*2

	dir := common.Vector4{ndcX / projection.At(0, 0), ndcY / projection.At(1, 1), 1, 0}
	rotated := warp.Transform(dir)
	clip := projection.Transform(common.Vector4{rotated[0], rotated[1], rotated[2], 1})
	if clip[3] <= 0 {
		return [2]float32{-1, -1}, false
	}

	x := clip[0] / clip[3]
	y := clip[1] / clip[3]
	return [2]float32{x*0.5 + 0.5, 0.5 - y*0.5}, true
}
