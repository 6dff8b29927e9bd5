package report

import (
	"encoding/json"
	"io"

	"github.com/banshee-data/gaze.report/internal/gaze/l5events"
	"github.com/banshee-data/gaze.report/internal/gaze/l6alignment"
	"github.com/banshee-data/gaze.report/internal/gaze/pipeline"
	"github.com/banshee-data/gaze.report/internal/version"
)

// ClusterSummary is the exported view of a k-means assignment.
type ClusterSummary struct {
	Sizes      []int       `json:"sizes"`
	Centroids  [][]float64 `json:"centroids"`
	Iterations int         `json:"iterations"`
	Inertia    float64     `json:"inertia"`
}

// Export is the machine-readable result of one run.
type Export struct {
	Version         string                             `json:"version"`
	SampleCount     int                                `json:"sample_count"`
	FilteredCount   int                                `json:"filtered_count"`
	RejectedCount   int                                `json:"rejected_count"`
	DegenerateCount int                                `json:"degenerate_count"`
	Summary         l6alignment.Summary                `json:"summary"`
	Left            pipeline.EyeEvents                 `json:"left"`
	Right           pipeline.EyeEvents                 `json:"right"`
	Fusion          []l5events.FusionWindow            `json:"fusion"`
	Clusters        ClusterSummary                     `json:"clusters"`
	Statistics      map[string]l6alignment.Description `json:"statistics"`
	Correlation     l6alignment.Correlation            `json:"correlation"`
}

// NewExport builds the export view of res.
func NewExport(res *pipeline.Result) Export {
	return Export{
		Version:         version.Version,
		SampleCount:     len(res.Derived),
		FilteredCount:   len(res.Filtered),
		RejectedCount:   len(res.Rejected),
		DegenerateCount: res.Degenerate,
		Summary:         res.Summary,
		Left:            res.Left,
		Right:           res.Right,
		Fusion:          res.Fusion,
		Clusters: ClusterSummary{
			Sizes:      res.Clusters.Sizes(),
			Centroids:  res.Clusters.Centroids,
			Iterations: res.Clusters.Iterations,
			Inertia:    res.Clusters.Inertia,
		},
		Statistics:  res.Statistics,
		Correlation: res.Correlation,
	}
}

// WriteJSON writes the indented export of res.
func WriteJSON(w io.Writer, res *pipeline.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExport(res))
}
