package l5events

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DetectFixations segments one eye's diopter signal into fixations. Sample i
// is stable when |d[i] - d[i-1]| is below the stability threshold. A stable
// run starting at i-1 closes at the sample before the first unstable delta
// and is kept only if it lasts at least FixationMinDuration.
func DetectFixations(diopters, timestamps []float64, cfg Config) []Fixation {
	n := min(len(diopters), len(timestamps))
	if n < 2 {
		return nil
	}

	var (
		fixations   []Fixation
		inFixation  bool
		start       int
		stableCount int
	)
	for i := 1; i < n; i++ {
		if math.Abs(diopters[i]-diopters[i-1]) < cfg.FixationStabilityThreshold {
			if !inFixation {
				inFixation = true
				start = i - 1
			}
			stableCount++
			continue
		}
		if inFixation {
			inFixation = false
			end := i - 1
			duration := timestamps[end] - timestamps[start]
			if duration >= cfg.FixationMinDuration {
				fixations = append(fixations, Fixation{
					StartIndex: start,
					EndIndex:   end,
					Duration:   duration,
					Location:   stat.Mean(diopters[start:end+1], nil),
					Stable:     stableCount,
				})
			}
		}
		stableCount = 0
	}
	return fixations
}
