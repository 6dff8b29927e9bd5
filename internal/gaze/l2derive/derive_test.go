package l2derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gaze.report/internal/config"
	"github.com/banshee-data/gaze.report/internal/gaze/l1samples"
)

func TestDerive_PreservesCountAndOrder(t *testing.T) {
	samples := []l1samples.Sample{
		{Timestamp: 0, LeftEyeDir: vec{X: 0, Y: 0, Z: 1}, RightEyeDir: vec{X: 0, Y: 0, Z: 1}, TargetCenter: vec{X: 0, Y: 0, Z: 2}},
		{Timestamp: 1, LeftEyeDir: vec{X: -0.1, Y: 0, Z: 1}, RightEyeDir: vec{X: 0.1, Y: 0.1, Z: 1}, TargetCenter: vec{X: 0, Y: 0, Z: 2}},
		{Timestamp: 2, LeftEyeDir: vec{}, RightEyeDir: vec{X: 0, Y: 0, Z: 1}, TargetCenter: vec{X: 0, Y: 0, Z: 2}},
	}

	ds := Derive(samples, DefaultConfig())
	require.Len(t, ds, len(samples))
	for i := range ds {
		assert.Equal(t, samples[i], ds[i].Sample)
	}

	assert.Zero(t, ds[0].LeftDiopters)
	assert.Zero(t, ds[0].RightDiopters)
	assert.Greater(t, ds[1].LeftDiopters, 0.0)
	assert.Greater(t, ds[1].RightDiopters, 0.0)
	assert.InDelta(t, VerticalAngle(vec{X: 0.1, Y: 0.1, Z: 1}), ds[1].RightVertical, tol)
	assert.InDelta(t, HorizontalAngle(vec{X: -0.1, Y: 0, Z: 1}), ds[1].LeftHorizontal, tol)

	assert.False(t, ds[0].Degenerate)
	assert.True(t, ds[2].Degenerate)
	assert.Zero(t, ds[2].LeftDiopters)
	assert.Equal(t, 1, CountDegenerate(ds))
}

func TestDerive_Empty(t *testing.T) {
	assert.Empty(t, Derive(nil, DefaultConfig()))
}

func TestConfigFromAnalysis(t *testing.T) {
	cfg, err := config.FromMap(map[string]float64{
		"DIOPTER_MODE":                 config.DiopterModeEyeAngleOnly,
		"DIOPTER_TO_DEGREE_CONVERSION": 0.9,
		"IPD_METERS":                   0.06,
	})
	require.NoError(t, err)

	got := ConfigFromAnalysis(cfg)
	assert.Equal(t, Config{Mode: EyeAngleOnly, DegreesPerDiopter: 0.9, IPDMeters: 0.06}, got)
	assert.Equal(t, Config{Mode: TargetRelative, DegreesPerDiopter: 1, IPDMeters: 0.069}, DefaultConfig())
}

func TestColumn(t *testing.T) {
	ds := []DerivedSample{
		{Sample: l1samples.Sample{Timestamp: 1}, LeftDiopters: 2, RightVertical: 3},
		{Sample: l1samples.Sample{Timestamp: 4}, LeftDiopters: 5, RightVertical: 6},
	}
	assert.Equal(t, []float64{1, 4}, Column(ds, FieldTimestamp))
	assert.Equal(t, []float64{2, 5}, Column(ds, FieldLeftDiopters))
	assert.Equal(t, []float64{3, 6}, Column(ds, FieldRightVertical))
	assert.Equal(t, "LeftDiopters", FieldLeftDiopters.String())
	assert.Equal(t, "unknown", Field(99).String())
	assert.Len(t, TrackedFields, 4)
}
