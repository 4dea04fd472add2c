package timewarp

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-timewarp/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func testProjection() common.Matrix {
	return ComputeProjection(common.DegreesToRadians(60), 1280.0/720.0, 0.1, 1000)
}

func TestIdentityOrientationGivesIdentityWarp(t *testing.T) {
	stale := ComputeStaleView(DefaultEye, DefaultUp)
	current := ComputeCurrentView(DefaultEye, DefaultUp, Orientation{})

	assert.Equal(t, stale, current)
	assert.Equal(t, common.Identity(), ComputeCorrective(stale, current))
	assert.Equal(t, common.Identity(), ComputeWarpMatrix(stale, current))
}

func TestEqualOrientationsGiveIdentityWarp(t *testing.T) {
	o := Orientation{Yaw: 0.4, Pitch: -0.25}
	a := ComputeCurrentView(DefaultEye, DefaultUp, o)
	b := ComputeCurrentView(DefaultEye, DefaultUp, o)

	assert.Equal(t, common.Identity(), ComputeWarpMatrix(a, b))
}

func TestCorrectiveRoundTrip(t *testing.T) {
	stale := ComputeStaleView(DefaultEye, DefaultUp)

	cases := []Orientation{
		{Yaw: 0.01},
		{Pitch: 0.01},
		{Yaw: 0.5, Pitch: -0.3},
		{Yaw: -1.2, Pitch: 0.7},
		{Yaw: 3.0, Pitch: 1.0},
	}
	for _, o := range cases {
		current := ComputeCurrentView(DefaultEye, DefaultUp, o)
		corrective := ComputeCorrective(stale, current)

		assert.True(t, stale.Mul(corrective).ApproxEqual(current, eps), "orientation %+v", o)

		warp := ComputeWarpMatrix(stale, current)
		assert.True(t, corrective.Mul(warp).ApproxEqual(common.Identity(), eps), "orientation %+v", o)
	}
}

func TestDegenerateOrientationStaysFinite(t *testing.T) {
	stale := ComputeStaleView(DefaultEye, DefaultUp)
	// Pitching a quarter turn points the camera straight down the up axis.
	current := ComputeCurrentView(DefaultEye, DefaultUp, Orientation{Pitch: 3.14159265 / 2})

	warp := ComputeWarpMatrix(stale, current)
	assert.True(t, warp.IsFinite())

	assert.True(t, ComputeWarpMatrix(common.Matrix{}, current).IsFinite())
}

func TestRotate(t *testing.T) {
	v := Rotate(Orientation{}, BaseForward)
	assert.Equal(t, BaseForward, v)

	v = Rotate(Orientation{Yaw: 3.14159265 / 2}, BaseForward)
	assert.InDelta(t, 1, v[0], eps)
	assert.InDelta(t, 0, v[2], eps)

	// Positive pitch tilts the forward vector downward.
	v = Rotate(Orientation{Pitch: 0.3}, BaseForward)
	assert.Less(t, v[1], float32(0))
}

func TestRemapIdentityIsNoOp(t *testing.T) {
	proj := testProjection()
	const n = 65
	for y := 0; y < n; y += 8 {
		for x := 0; x < n; x += 8 {
			uv := [2]float32{float32(x) / (n - 1), float32(y) / (n - 1)}
			got, ok := RemapTexCoord(uv, common.Identity(), proj)
			require.True(t, ok)
			assert.InDelta(t, uv[0], got[0], eps)
			assert.InDelta(t, uv[1], got[1], eps)
		}
	}
}

func TestRemapFollowsYaw(t *testing.T) {
	proj := testProjection()
	stale := ComputeStaleView(DefaultEye, DefaultUp)
	current := ComputeCurrentView(DefaultEye, DefaultUp, Orientation{Yaw: 0.1})
	warp := ComputeWarpMatrix(stale, current)

	// Turning right moves the stale image left, so the screen centre samples right of centre.
	got, ok := RemapTexCoord([2]float32{0.5, 0.5}, warp, proj)
	require.True(t, ok)
	assert.Greater(t, got[0], float32(0.5))
	assert.InDelta(t, 0.5, got[1], eps)
}

func TestRemapBehindCamera(t *testing.T) {
	proj := testProjection()
	stale := ComputeStaleView(DefaultEye, DefaultUp)
	current := ComputeCurrentView(DefaultEye, DefaultUp, Orientation{Yaw: 3.14159265})
	warp := ComputeWarpMatrix(stale, current)

	_, ok := RemapTexCoord([2]float32{0.5, 0.5}, warp, proj)
	assert.False(t, ok)
}

func TestCorrectiveGrowsWithYaw(t *testing.T) {
	stale := ComputeStaleView(DefaultEye, DefaultUp)
	var o Orientation
	prevYaw := float32(-1)
	prevComponent := float32(-1)
	for frame := 0; frame < 60; frame++ {
		o.Yaw += 10 * 0.001
		corrective := ComputeCorrective(stale, ComputeCurrentView(DefaultEye, DefaultUp, o))

		assert.Greater(t, o.Yaw, prevYaw)
		assert.Greater(t, corrective.At(0, 2), prevComponent)
		prevYaw = o.Yaw
		prevComponent = corrective.At(0, 2)
	}
}
