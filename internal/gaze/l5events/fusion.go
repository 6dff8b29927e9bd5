package l5events

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DetectFusion finds binocular fusion windows: runs of consecutive samples
// where |left[i] - right[i]| <= FusionTolerance, lasting at least
// FusionMinDuration. left and right are the eyes' raw horizontal angles in
// degrees.
func DetectFusion(left, right, timestamps []float64, cfg Config) []FusionWindow {
	n := min(len(left), len(right), len(timestamps))
	if n < 2 {
		return nil
	}

	var (
		windows []FusionWindow
		fused   bool
		start   int
	)
	disparity := make([]float64, n)
	emit := func(end int) {
		duration := timestamps[end] - timestamps[start]
		if end > start && duration >= cfg.FusionMinDuration {
			windows = append(windows, FusionWindow{
				StartIndex:    start,
				EndIndex:      end,
				StartTime:     timestamps[start],
				EndTime:       timestamps[end],
				Duration:      duration,
				MeanDisparity: stat.Mean(disparity[start:end+1], nil),
			})
		}
	}
	for i := 0; i < n; i++ {
		disparity[i] = math.Abs(left[i] - right[i])
		within := disparity[i] <= cfg.FusionTolerance
		switch {
		case within && !fused:
			fused = true
			start = i
		case !within && fused:
			fused = false
			emit(i - 1)
		}
	}
	return windows
}
