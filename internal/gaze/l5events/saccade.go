package l5events

import "math"

// DetectSaccades segments one eye's signal using its velocity series. A
// saccade opens when |velocity| exceeds the threshold and closes on the
// first sample where |velocity| falls below it. Amplitude and peak velocity
// are converted back from diopters to degrees.
//
// diopters, velocity and timestamps must be index-aligned; the shortest
// length bounds the scan.
func DetectSaccades(diopters, velocity, timestamps []float64, cfg Config) []Saccade {
	n := min(len(diopters), len(velocity), len(timestamps))
	if n < 2 {
		return nil
	}

	var (
		saccades  []Saccade
		inSaccade bool
		start     int
	)
	thr := cfg.SaccadeVelocityThreshold
	for i := 0; i < n; i++ {
		speed := math.Abs(velocity[i])
		switch {
		case !inSaccade && speed > thr:
			inSaccade = true
			start = i
		case inSaccade && speed < thr:
			inSaccade = false
			saccades = append(saccades, Saccade{
				StartIndex:   start,
				EndIndex:     i,
				Amplitude:    (diopters[i] - diopters[start]) * cfg.DegreesPerDiopter,
				Duration:     timestamps[i] - timestamps[start],
				PeakVelocity: peakAbs(velocity[start:i+1]) * cfg.DegreesPerDiopter,
			})
		}
	}
	return saccades
}

func peakAbs(v []float64) float64 {
	peak := 0.0
	for _, x := range v {
		peak = math.Max(peak, math.Abs(x))
	}
	return peak
}
