package l5events

import "github.com/banshee-data/gaze.report/internal/config"

// Saccade is a fast movement between StartIndex (first sample above the
// velocity threshold) and EndIndex (first sample back below it).
// PeakVelocity is a windowed backward difference, so its unit is degrees
// per sample rather than per second.
type Saccade struct {
	StartIndex   int     `json:"start_index"`
	EndIndex     int     `json:"end_index"`
	Amplitude    float64 `json:"amplitude_deg"`
	Duration     float64 `json:"duration_s"`
	PeakVelocity float64 `json:"peak_velocity_deg_per_sample"`
}

// Fixation is a run of sample-to-sample stability lasting at least the
// configured minimum duration.
type Fixation struct {
	StartIndex int     `json:"start_index"`
	EndIndex   int     `json:"end_index"`
	Duration   float64 `json:"duration_s"`
	Location   float64 `json:"location_diopters"` // mean diopter value over the run
	Stable     int     `json:"stable_deltas"`     // consecutive stable sample-to-sample deltas
}

// FusionWindow is a run where both eyes' horizontal angles agree within the
// fusion tolerance.
type FusionWindow struct {
	StartIndex    int     `json:"start_index"`
	EndIndex      int     `json:"end_index"`
	StartTime     float64 `json:"start_time"`
	EndTime       float64 `json:"end_time"`
	Duration      float64 `json:"duration_s"`
	MeanDisparity float64 `json:"mean_disparity_deg"`
}

// Config holds the detector thresholds.
type Config struct {
	DegreesPerDiopter          float64
	SaccadeVelocityThreshold   float64
	FixationStabilityThreshold float64
	FixationMinDuration        float64
	FusionTolerance            float64
	FusionMinDuration          float64
}

// ConfigFromAnalysis builds a Config from a loaded AnalysisConfig.
func ConfigFromAnalysis(cfg *config.AnalysisConfig) Config {
	return Config{
		DegreesPerDiopter:          cfg.GetDiopterToDegreeConversion(),
		SaccadeVelocityThreshold:   cfg.GetSaccadeVelocityThreshold(),
		FixationStabilityThreshold: cfg.GetFixationStabilityThreshold(),
		FixationMinDuration:        cfg.GetFixationMinDuration(),
		FusionTolerance:            cfg.GetFusionTolerance(),
		FusionMinDuration:          cfg.GetFusionMinDuration(),
	}
}
