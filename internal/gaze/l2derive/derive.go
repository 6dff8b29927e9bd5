package l2derive

import (
	"github.com/banshee-data/gaze.report/internal/config"
	"github.com/banshee-data/gaze.report/internal/gaze/l1samples"
)

// DerivedSample is a Sample plus its per-eye angular measures. Diopter fields
// use the outward-positive convention of EyeDiopters; angles are degrees.
type DerivedSample struct {
	l1samples.Sample

	LeftDiopters     float64
	RightDiopters    float64
	LeftVertical     float64
	RightVertical    float64
	TargetHorizontal float64
	TargetVertical   float64

	// Raw eye yaw, used for binocular fusion.
	LeftHorizontal  float64
	RightHorizontal float64

	VergenceDistance float64 // metres
	VergenceAngle    float64 // degrees

	// Degenerate is set when any eye or target vector had zero length.
	Degenerate bool
}

// Config holds the geometric transform parameters.
type Config struct {
	Mode              DiopterMode
	DegreesPerDiopter float64
	IPDMeters         float64
}

// DefaultConfig returns the transform defaults: target-relative, ratio 1.0.
func DefaultConfig() Config {
	return ConfigFromAnalysis(config.EmptyAnalysisConfig())
}

// ConfigFromAnalysis builds a Config from a loaded AnalysisConfig.
func ConfigFromAnalysis(cfg *config.AnalysisConfig) Config {
	mode := TargetRelative
	if cfg.GetDiopterMode() == config.DiopterModeEyeAngleOnly {
		mode = EyeAngleOnly
	}
	return Config{
		Mode:              mode,
		DegreesPerDiopter: cfg.GetDiopterToDegreeConversion(),
		IPDMeters:         cfg.GetIPDMeters(),
	}
}

// DeriveSample computes the DerivedSample for one Sample.
func DeriveSample(s l1samples.Sample, cfg Config) DerivedSample {
	th, tv := TargetAngles(s.TargetCenter)
	dist, angle := Vergence(s, cfg.IPDMeters)
	return DerivedSample{
		Sample:           s,
		LeftDiopters:     EyeDiopters(s.LeftEyeDir, s.TargetCenter, Left, cfg.Mode, cfg.DegreesPerDiopter),
		RightDiopters:    EyeDiopters(s.RightEyeDir, s.TargetCenter, Right, cfg.Mode, cfg.DegreesPerDiopter),
		LeftVertical:     VerticalAngle(s.LeftEyeDir),
		RightVertical:    VerticalAngle(s.RightEyeDir),
		TargetHorizontal: th,
		TargetVertical:   tv,
		LeftHorizontal:   HorizontalAngle(s.LeftEyeDir),
		RightHorizontal:  HorizontalAngle(s.RightEyeDir),
		VergenceDistance: dist,
		VergenceAngle:    angle,
		Degenerate:       s.LeftEyeDir.Norm() == 0 || s.RightEyeDir.Norm() == 0 || s.TargetCenter.Norm() == 0,
	}
}

// Derive maps every sample to a DerivedSample, preserving order and count.
func Derive(samples []l1samples.Sample, cfg Config) []DerivedSample {
	out := make([]DerivedSample, len(samples))
	for i := range samples {
		out[i] = DeriveSample(samples[i], cfg)
	}
	return out
}

// CountDegenerate returns how many samples had a zero-length vector.
func CountDegenerate(ds []DerivedSample) int {
	n := 0
	for i := range ds {
		if ds[i].Degenerate {
			n++
		}
	}
	return n
}
