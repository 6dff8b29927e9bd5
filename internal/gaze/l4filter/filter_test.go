package l4filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gaze.report/internal/config"
	"github.com/banshee-data/gaze.report/internal/gaze/l1samples"
	"github.com/banshee-data/gaze.report/internal/gaze/l2derive"
)

func series(n int, f func(i int) (ld, lv, rd, rv float64)) []l2derive.DerivedSample {
	ds := make([]l2derive.DerivedSample, n)
	for i := range ds {
		ld, lv, rd, rv := f(i)
		ds[i] = l2derive.DerivedSample{
			Sample:        l1samples.Sample{Timestamp: float64(i) * 0.01},
			LeftDiopters:  ld,
			LeftVertical:  lv,
			RightDiopters: rd,
			RightVertical: rv,
		}
	}
	return ds
}

func TestFilterGlobal_RemovesInjectedExtreme(t *testing.T) {
	const spike = 137
	ds := series(200, func(i int) (float64, float64, float64, float64) {
		ld := math.Sin(float64(i) * 0.7)
		if i == spike {
			ld = 100
		}
		return ld, math.Cos(float64(i) * 0.3), math.Sin(float64(i) * 0.5), 0
	})

	res := FilterGlobal(ds, 3.0)
	assert.Equal(t, []int{spike}, res.Rejected)
	assert.Len(t, res.Kept, len(ds)-1)
	assert.NotContains(t, res.KeptIndex, spike)
}

func TestFilterGlobal_AllEqualKeepsEverything(t *testing.T) {
	ds := series(25, func(int) (float64, float64, float64, float64) { return 1.5, -2, 1.5, -2 })
	res := FilterGlobal(ds, 3.0)
	assert.Empty(t, res.Rejected)
	assert.Equal(t, ds, res.Kept)
}

func TestFilterGlobal_ShortSeries(t *testing.T) {
	assert.Empty(t, FilterGlobal(nil, 3).Kept)

	one := series(1, func(int) (float64, float64, float64, float64) { return 5, 5, 5, 5 })
	res := FilterGlobal(one, 3)
	assert.Equal(t, []int{0}, res.KeptIndex)
}

func TestFilterWindowed(t *testing.T) {
	ds := series(30, func(i int) (float64, float64, float64, float64) {
		switch i {
		case 3:
			return 50, 0, 0, 0 // inside the warm-up window: kept
		case 15:
			return 1e-9, 0, 0, 0 // zero-variance window: any deviation rejects
		case 20:
			return 0, 0, 0, -40
		}
		return 0, 0, 0, 0
	})

	res := FilterWindowed(ds, 10, 3.0)
	assert.Equal(t, []int{15, 20}, res.Rejected)
	require.Len(t, res.Kept, 28)
	for i, idx := range res.KeptIndex {
		assert.Equal(t, ds[idx], res.Kept[i])
	}
}

func TestFilterWindowed_FirstWindowAlwaysKept(t *testing.T) {
	ds := series(10, func(i int) (float64, float64, float64, float64) {
		return float64(i * i * i), 0, 0, 0
	})
	res := FilterWindowed(ds, 10, 0)
	assert.Empty(t, res.Rejected)
}

func TestFilterWindowed_UsesUnfilteredHistory(t *testing.T) {
	// Two consecutive spikes. The second is tested against a window that
	// still contains the first, so it survives even though the first was
	// rejected.
	ds := series(15, func(i int) (float64, float64, float64, float64) {
		if i == 12 || i == 13 {
			return 10, 0, 0, 0
		}
		return 0, 0, 0, 0
	})
	res := FilterWindowed(ds, 10, 3.0)
	assert.Equal(t, []int{12}, res.Rejected)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	ds := series(40, func(i int) (float64, float64, float64, float64) {
		return math.Sin(float64(i)), float64(i % 3), 0, 1
	})
	before := append([]l2derive.DerivedSample(nil), ds...)

	for _, p := range []Policy{Windowed, Global} {
		Apply(ds, Config{Policy: p, Window: 5, Multiplier: 1})
	}
	assert.Equal(t, before, ds)
}

func TestApply_PolicySelection(t *testing.T) {
	ds := series(12, func(i int) (float64, float64, float64, float64) {
		if i == 2 {
			return 100, 0, 0, 0
		}
		return 0, 0, 0, 0
	})
	// index 2 sits inside the windowed warm-up but is a global outlier
	assert.Empty(t, Apply(ds, Config{Policy: Windowed, Window: 10, Multiplier: 3}).Rejected)
	assert.Equal(t, []int{2}, Apply(ds, Config{Policy: Global, Multiplier: 3}).Rejected)
}

func TestConfigFromAnalysis(t *testing.T) {
	assert.Equal(t, Config{Policy: Windowed, Window: 10, Multiplier: 3}, ConfigFromAnalysis(config.EmptyAnalysisConfig()))

	cfg, err := config.FromMap(map[string]float64{"OUTLIER_POLICY": config.OutlierPolicyGlobal})
	require.NoError(t, err)
	assert.Equal(t, Global, ConfigFromAnalysis(cfg).Policy)
	assert.Equal(t, "global", Global.String())
	assert.Equal(t, "windowed", Windowed.String())
}
