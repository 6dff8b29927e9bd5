package l4filter

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/gaze.report/internal/config"
	"github.com/banshee-data/gaze.report/internal/gaze/l2derive"
)

// Policy selects the outlier statistics window.
type Policy int

const (
	Windowed Policy = iota
	Global
)

func (p Policy) String() string {
	switch p {
	case Windowed:
		return "windowed"
	case Global:
		return "global"
	default:
		return "unknown"
	}
}

// Config holds outlier filter parameters.
type Config struct {
	Policy     Policy
	Window     int     // trailing window length for Windowed
	Multiplier float64 // k in |x - mean| > k*std
}

// ConfigFromAnalysis builds a Config from a loaded AnalysisConfig.
func ConfigFromAnalysis(cfg *config.AnalysisConfig) Config {
	p := Windowed
	if cfg.GetOutlierPolicy() == config.OutlierPolicyGlobal {
		p = Global
	}
	return Config{
		Policy:     p,
		Window:     cfg.GetOutlierWindowSize(),
		Multiplier: cfg.GetOutlierThresholdMultiplier(),
	}
}

// Result is the filtered series. KeptIndex[i] is the index in the input of
// Kept[i]; Rejected lists the dropped input indices in order.
type Result struct {
	Kept      []l2derive.DerivedSample
	KeptIndex []int
	Rejected  []int
}

// Apply filters ds according to cfg.
func Apply(ds []l2derive.DerivedSample, cfg Config) Result {
	if cfg.Policy == Global {
		return FilterGlobal(ds, cfg.Multiplier)
	}
	return FilterWindowed(ds, cfg.Window, cfg.Multiplier)
}

// moments holds mean and sample standard deviation for each tracked field.
type moments struct {
	mean, std [4]float64
}

func computeMoments(ds []l2derive.DerivedSample) moments {
	var m moments
	col := make([]float64, len(ds))
	for f, field := range l2derive.TrackedFields {
		for i := range ds {
			col[i] = field.Value(&ds[i])
		}
		if len(col) < 2 {
			// Sample std is undefined; NaN makes every comparison false.
			m.mean[f], m.std[f] = stat.Mean(col, nil), math.NaN()
			continue
		}
		if floats.Min(col) == floats.Max(col) {
			// Summation can drift by an ulp; a constant column is exact.
			m.mean[f], m.std[f] = col[0], 0
			continue
		}
		m.mean[f], m.std[f] = stat.MeanStdDev(col, nil)
	}
	return m
}

// outlier reports whether any tracked value of d lies more than k standard
// deviations from the mean. A zero std gives a zero threshold, so any
// deviation at all is rejected while exact repeats are kept.
func (m moments) outlier(d *l2derive.DerivedSample, k float64) bool {
	for f, field := range l2derive.TrackedFields {
		if math.Abs(field.Value(d)-m.mean[f]) > k*m.std[f] {
			return true
		}
	}
	return false
}

// FilterGlobal keeps samples within k standard deviations of the whole-series
// mean on all tracked signals.
func FilterGlobal(ds []l2derive.DerivedSample, k float64) Result {
	m := computeMoments(ds)
	return selectWhere(ds, func(i int) bool {
		return !m.outlier(&ds[i], k)
	})
}

// FilterWindowed tests sample i against the mean and std of the window
// samples immediately before it, drawn from the unfiltered series. The first
// window samples have no history and are always kept.
func FilterWindowed(ds []l2derive.DerivedSample, window int, k float64) Result {
	if window < 1 {
		window = 1
	}
	return selectWhere(ds, func(i int) bool {
		if i < window {
			return true
		}
		return !computeMoments(ds[i-window:i]).outlier(&ds[i], k)
	})
}

func selectWhere(ds []l2derive.DerivedSample, keep func(i int) bool) Result {
	res := Result{
		Kept:      make([]l2derive.DerivedSample, 0, len(ds)),
		KeptIndex: make([]int, 0, len(ds)),
	}
	for i := range ds {
		if keep(i) {
			res.Kept = append(res.Kept, ds[i])
			res.KeptIndex = append(res.KeptIndex, i)
		} else {
			res.Rejected = append(res.Rejected, i)
		}
	}
	return res
}
