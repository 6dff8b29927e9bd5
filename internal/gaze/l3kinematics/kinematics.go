// Package l3kinematics owns Layer 3 (Kinematics): windowed velocity and
// acceleration of scalar angular signals.
package l3kinematics

import "github.com/banshee-data/gaze.report/internal/config"

// BackwardDifference returns a slice the same length as values where entry i
// is (values[i] - values[i-window]) / window for i >= window and 0 before
// that. A window below 1 is treated as 1.
//
// The divisor is the window length in samples, not elapsed time, so the
// units are "per window-sample".
func BackwardDifference(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	w := float64(window)
	for i := window; i < len(values); i++ {
		out[i] = (values[i] - values[i-window]) / w
	}
	return out
}

// Velocity is the backward difference of an angular signal.
func Velocity(values []float64, window int) []float64 {
	return BackwardDifference(values, window)
}

// Acceleration is the backward difference of a velocity series. It is the
// composition of two backward differences rather than a separate formula.
func Acceleration(velocity []float64, window int) []float64 {
	return BackwardDifference(velocity, window)
}

// Series holds index-aligned velocity and acceleration for one eye.
type Series struct {
	Velocity     []float64
	Acceleration []float64
}

// Config holds the two window lengths.
type Config struct {
	VelocityWindow     int
	AccelerationWindow int
}

// ConfigFromAnalysis builds a Config from a loaded AnalysisConfig.
func ConfigFromAnalysis(cfg *config.AnalysisConfig) Config {
	return Config{
		VelocityWindow:     cfg.GetVelocityWindowSize(),
		AccelerationWindow: cfg.GetAccelerationWindowSize(),
	}
}

// Compute derives the kinematic series for one signal.
func Compute(values []float64, cfg Config) Series {
	v := Velocity(values, cfg.VelocityWindow)
	return Series{
		Velocity:     v,
		Acceleration: Acceleration(v, cfg.AccelerationWindow),
	}
}
