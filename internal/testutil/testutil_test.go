package testutil

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gaze.report/internal/gaze/l1samples"
	"github.com/banshee-data/gaze.report/internal/gaze/l2derive"
)

func TestAssertNoError(t *testing.T) {
	t.Parallel()

	AssertNoError(t, nil)
}

func TestAssertNoError_FailurePath(t *testing.T) {
	t.Parallel()

	ok := t.Run("unexpected error", func(t *testing.T) {
		AssertNoError(t, errors.New("boom"))
	})
	if ok {
		t.Fatal("expected subtest to fail when error is non-nil")
	}
}

func TestAssertError_FailurePath(t *testing.T) {
	t.Parallel()

	AssertError(t, errors.New("expected"))
	ok := t.Run("missing error", func(t *testing.T) {
		AssertError(t, nil)
	})
	if ok {
		t.Fatal("expected subtest to fail when error is nil")
	}
}

func TestGazeSample_DerivesRequestedDiopters(t *testing.T) {
	t.Parallel()

	ds := l2derive.DeriveSample(GazeSample(0.5, 2.5, -1.25), l2derive.DefaultConfig())
	assert.Equal(t, 0.5, ds.Timestamp)
	assert.InDelta(t, 2.5, ds.LeftDiopters, 1e-9)
	assert.InDelta(t, -1.25, ds.RightDiopters, 1e-9)
	assert.InDelta(t, 0.0, ds.LeftVertical, 1e-12)
	assert.False(t, ds.Degenerate)
}

func TestScenarioAndSteadyGaze(t *testing.T) {
	t.Parallel()

	s := Scenario(3, 0.25, func(i int) (float64, float64) { return float64(i), -float64(i) })
	require.Len(t, s, 3)
	assert.Equal(t, []float64{0, 0.25, 0.5}, l1samples.Timestamps(s))

	for _, smp := range SteadyGaze(4, 0.1) {
		ds := l2derive.DeriveSample(smp, l2derive.DefaultConfig())
		assert.InDelta(t, 0.0, ds.LeftDiopters, 1e-12)
		assert.InDelta(t, 0.0, ds.RightDiopters, 1e-12)
	}
}

func TestCSV_RoundTripsThroughReader(t *testing.T) {
	t.Parallel()

	in := Scenario(5, 0.01, func(i int) (float64, float64) { return 0.1 * float64(i), 0.2 })
	text := CSV(t, in)
	assert.True(t, strings.HasPrefix(text, "Timestamp,LeftEyeDirX,"))

	out, err := l1samples.ReadCSV(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
