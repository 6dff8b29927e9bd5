package l6alignment

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/gaze.report/internal/config"
	"github.com/banshee-data/gaze.report/internal/gaze/l2derive"
)

// EyeBaseline is the mean alignment of one eye.
type EyeBaseline struct {
	Diopter  float64 `json:"diopter"`
	Vertical float64 `json:"vertical_deg"`
}

// StableWindow is the time span of the samples whose diopters both sit
// within the stable threshold of the baseline. The samples need not be
// contiguous in the input; Count says how many qualified.
type StableWindow struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Count     int     `json:"count"`
}

// Summary is the alignment recommendation for one run.
type Summary struct {
	SampleCount      int           `json:"sample_count"`
	BaselineDiopter  float64       `json:"baseline_diopter"`
	BaselineVertical float64       `json:"baseline_vertical_deg"`
	LeftBaseline     EyeBaseline   `json:"left_baseline"`
	RightBaseline    EyeBaseline   `json:"right_baseline"`
	StableWindow     *StableWindow `json:"stable_window"`
}

// Config holds the summarizer parameters.
type Config struct {
	StableThreshold float64
}

// ConfigFromAnalysis builds a Config from a loaded AnalysisConfig.
func ConfigFromAnalysis(cfg *config.AnalysisConfig) Config {
	return Config{StableThreshold: cfg.GetStableSampleThreshold()}
}

// Summarize computes per-eye means, the grand-mean baseline across both
// eyes, and the stable window. An empty series yields a zero Summary.
func Summarize(filtered []l2derive.DerivedSample, cfg Config) Summary {
	s := Summary{SampleCount: len(filtered)}
	if len(filtered) == 0 {
		return s
	}

	s.LeftBaseline = EyeBaseline{
		Diopter:  stat.Mean(l2derive.Column(filtered, l2derive.FieldLeftDiopters), nil),
		Vertical: stat.Mean(l2derive.Column(filtered, l2derive.FieldLeftVertical), nil),
	}
	s.RightBaseline = EyeBaseline{
		Diopter:  stat.Mean(l2derive.Column(filtered, l2derive.FieldRightDiopters), nil),
		Vertical: stat.Mean(l2derive.Column(filtered, l2derive.FieldRightVertical), nil),
	}
	s.BaselineDiopter = (s.LeftBaseline.Diopter + s.RightBaseline.Diopter) / 2
	s.BaselineVertical = (s.LeftBaseline.Vertical + s.RightBaseline.Vertical) / 2

	for i := range filtered {
		d := &filtered[i]
		if math.Abs(d.LeftDiopters-s.BaselineDiopter) >= cfg.StableThreshold ||
			math.Abs(d.RightDiopters-s.BaselineDiopter) >= cfg.StableThreshold {
			continue
		}
		if s.StableWindow == nil {
			s.StableWindow = &StableWindow{StartTime: d.Timestamp}
		}
		s.StableWindow.EndTime = d.Timestamp
		s.StableWindow.Count++
	}
	return s
}
