package l2derive

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gaze.report/internal/gaze/l1samples"
)

const tol = 1e-9

type vec = l1samples.Vec3

func TestAnglesInvariantUnderPositiveScaling(t *testing.T) {
	dirs := []vec{
		{X: 0.1, Y: 0.2, Z: 1},
		{X: -0.5, Y: 0.3, Z: 0.8},
		{X: 0.7, Y: -0.7, Z: 0.1},
		{X: 0, Y: 0, Z: 1},
		{X: 0.2, Y: 0.1, Z: -1},
		{X: 1, Y: 0.5, Z: 1},
	}
	for _, d := range dirs {
		h, v := HorizontalAngle(d), VerticalAngle(d)
		for _, s := range []float64{1e-300, 1e-170, 1e-6, 0.5, 3, 1e6, 1e160, 1e300} {
			assert.InDelta(t, h, HorizontalAngle(d.Scale(s)), tol, "horizontal %v x%v", d, s)
			assert.InDelta(t, v, VerticalAngle(d.Scale(s)), tol, "vertical %v x%v", d, s)
		}
	}
}

func TestKnownAngles(t *testing.T) {
	tests := []struct {
		name string
		v    vec
		h, p float64
	}{
		{"straight ahead", vec{X: 0, Y: 0, Z: 1}, 0, 0},
		{"45 right", vec{X: 1, Y: 0, Z: 1}, 45, 0},
		{"45 left", vec{X: -1, Y: 0, Z: 1}, -45, 0},
		{"straight up", vec{X: 0, Y: 1, Z: 0}, 0, 90},
		{"straight down unnormalised", vec{X: 0, Y: -2, Z: 0}, 0, -90},
		{"behind", vec{X: 0, Y: 0, Z: -1}, 180, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.h, HorizontalAngle(tt.v), tol)
			assert.InDelta(t, tt.p, VerticalAngle(tt.v), tol)
		})
	}
}

func TestNormalizeExtremeMagnitudes(t *testing.T) {
	for _, s := range []float64{1e-170, 1e160} {
		u, ok := Normalize(vec{X: 1, Y: 0.5, Z: 1}.Scale(s))
		require.True(t, ok, "scale %v", s)
		assert.InDelta(t, 1.0, u.Norm(), 1e-12)
		assert.InDelta(t, 45.0, HorizontalAngle(u), tol)
		assert.InDelta(t, degrees(math.Asin(1.0/3)), VerticalAngle(u), tol)
	}
}

func TestZeroVectorReadsAsZero(t *testing.T) {
	u, ok := Normalize(vec{})
	assert.False(t, ok)
	assert.Equal(t, vec{}, u)
	assert.Zero(t, HorizontalAngle(vec{}))
	assert.Zero(t, VerticalAngle(vec{}))
	assert.Zero(t, EyeDiopters(vec{}, vec{}, Left, TargetRelative, 1))
	assert.False(t, math.IsNaN(EyeDiopters(vec{}, vec{X: 1, Y: 0, Z: 1}, Right, TargetRelative, 1)))
}

func TestEyeDiopters_LookingAtTargetIsZero(t *testing.T) {
	targets := []vec{{X: 0, Y: 0, Z: 2}, {X: 0.3, Y: 0.1, Z: 2}, {X: -0.4, Y: -0.2, Z: 1.5}}
	for _, target := range targets {
		for _, eye := range []Eye{Left, Right} {
			assert.InDelta(t, 0, EyeDiopters(target, target, eye, TargetRelative, 1), tol, "%s eye at %v", eye, target)
			// direction parallel to target but different length
			assert.InDelta(t, 0, EyeDiopters(target.Scale(0.1), target, eye, TargetRelative, 0.9), tol)
		}
	}
}

func TestEyeDiopters_SignConvention(t *testing.T) {
	dir := vec{X: 0.1, Y: 0, Z: 1}
	want := math.Atan2(0.1, 1) * 180 / math.Pi

	assert.InDelta(t, want, EyeDiopters(dir, vec{X: 0, Y: 0, Z: 1}, Right, TargetRelative, 1), tol)
	assert.InDelta(t, -want, EyeDiopters(dir, vec{X: 0, Y: 0, Z: 1}, Left, TargetRelative, 1), tol)

	// left eye rotated outward (towards -x) reads positive
	assert.Greater(t, EyeDiopters(vec{X: -0.1, Y: 0, Z: 1}, vec{X: 0, Y: 0, Z: 1}, Left, TargetRelative, 1), 0.0)
}

func TestEyeDiopters_ConversionRatio(t *testing.T) {
	dir := vec{X: 0.2, Y: 0, Z: 1}
	base := EyeDiopters(dir, vec{X: 0, Y: 0, Z: 1}, Right, TargetRelative, 1)
	assert.InDelta(t, base/0.9, EyeDiopters(dir, vec{X: 0, Y: 0, Z: 1}, Right, TargetRelative, 0.9), tol)
}

func TestEyeAngleOnlyIsOnAxisTargetRelative(t *testing.T) {
	dir := vec{X: 0.25, Y: -0.1, Z: 1}
	offAxis := vec{X: 0.5, Y: 0, Z: 1}
	for _, eye := range []Eye{Left, Right} {
		onAxis := EyeDiopters(dir, vec{X: 0, Y: 0, Z: 3}, eye, TargetRelative, 1)
		assert.InDelta(t, onAxis, EyeDiopters(dir, offAxis, eye, EyeAngleOnly, 1), tol)
	}
}

func TestVergence(t *testing.T) {
	s := l1samples.Sample{
		LeftEyePos:    vec{X: -0.03, Y: 0, Z: 0},
		RightEyePos:   vec{X: 0.03, Y: 0, Z: 0},
		VergencePoint: vec{X: 0, Y: 0, Z: 1},
	}
	dist, angle := Vergence(s, 0.069)
	assert.InDelta(t, 1.0, dist, tol)
	assert.InDelta(t, 2*math.Atan(0.03)*180/math.Pi, angle, tol)

	// coincident eye positions fall back to the configured IPD
	s.LeftEyePos, s.RightEyePos = vec{}, vec{}
	_, angle = Vergence(s, 0.069)
	assert.InDelta(t, 2*math.Atan(0.0345)*180/math.Pi, angle, tol)

	s.VergencePoint = vec{}
	dist, angle = Vergence(s, 0.069)
	assert.Zero(t, dist)
	assert.Zero(t, angle)
}

func TestModeAndEyeStrings(t *testing.T) {
	assert.Equal(t, "target-relative", TargetRelative.String())
	assert.Equal(t, "eye-angle-only", EyeAngleOnly.String())
	assert.Equal(t, "unknown", DiopterMode(9).String())
	assert.Equal(t, "left", Left.String())
	assert.Equal(t, "right", Right.String())
}
