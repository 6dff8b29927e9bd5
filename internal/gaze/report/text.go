package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/banshee-data/gaze.report/internal/gaze/l5events"
	"github.com/banshee-data/gaze.report/internal/gaze/pipeline"
	"github.com/banshee-data/gaze.report/internal/units"
)

// TextOptions controls how angles are printed. Diopter values are always
// printed as diopters.
type TextOptions struct {
	Units             string
	DegreesPerDiopter float64
}

// DefaultTextOptions prints angles in degrees.
func DefaultTextOptions() TextOptions {
	return TextOptions{Units: units.DEG, DegreesPerDiopter: 1}
}

func (o TextOptions) angle(deg float64) string {
	u := o.Units
	if !units.IsValid(u) {
		u = units.DEG
	}
	ratio := o.DegreesPerDiopter
	if ratio <= 0 {
		ratio = 1
	}
	return fmt.Sprintf("%.2f%s", units.ConvertAngle(deg, u, ratio), units.Symbol(u))
}

// WriteText writes the console report.
func WriteText(w io.Writer, res *pipeline.Result, o TextOptions) error {
	ew := &errWriter{w: w}

	ew.printf("Analysed %d samples: %d kept, %d rejected as outliers", len(res.Derived), len(res.Filtered), len(res.Rejected))
	if res.Degenerate > 0 {
		ew.printf(", %d with degenerate vectors", res.Degenerate)
	}
	ew.printf("\n")

	writeFixations(ew, "Left", res.Left.Fixations)
	writeFixations(ew, "Right", res.Right.Fixations)
	writeSaccades(ew, "Left", res.Left.Saccades, o)
	writeSaccades(ew, "Right", res.Right.Saccades, o)

	ew.printf("\nNumber of Fusion Windows: %d\n", len(res.Fusion))
	for _, f := range res.Fusion {
		ew.printf("  Fusion: %.2fs - %.2fs (%.4fs), Mean Disparity: %s\n", f.StartTime, f.EndTime, f.Duration, o.angle(f.MeanDisparity))
	}

	if len(res.Filtered) > 0 {
		ew.printf("\nEye Diopter Statistics:\n")
		tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(tw, "\tcount\tmean\tstd\tmin\t25%%\t50%%\t75%%\tmax\t\n")
		for _, f := range pipeline.StatisticsFields {
			d := res.Statistics[f.String()]
			fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t\n",
				f, d.Count, d.Mean, d.Std, d.Min, d.Q25, d.Median, d.Q75, d.Max)
		}
		tw.Flush()

		ew.printf("\nClusters: %d (sizes %v, inertia %.4f)\n", len(res.Clusters.Centroids), res.Clusters.Sizes(), res.Clusters.Inertia)
	}

	s := res.Summary
	ew.printf("\nRecommended Base Alignment (Left Eye):\n")
	ew.printf("  Diopters: %.2f\n", s.LeftBaseline.Diopter)
	ew.printf("  Vertical: %s\n", o.angle(s.LeftBaseline.Vertical))
	ew.printf("\nRecommended Base Alignment (Right Eye):\n")
	ew.printf("  Diopters: %.2f\n", s.RightBaseline.Diopter)
	ew.printf("  Vertical: %s\n", o.angle(s.RightBaseline.Vertical))
	ew.printf("\nRecommended Base Alignment (Both Eyes):\n")
	ew.printf("  Diopters: %.2f\n", s.BaselineDiopter)
	ew.printf("  Vertical: %s\n", o.angle(s.BaselineVertical))

	if s.StableWindow == nil {
		ew.printf("\nNo stable sample found within the criteria.\n")
	} else {
		ew.printf("\nStable Sample Time Range (for Fine Alignment):\n")
		ew.printf("  Start Time: %.2f\n", s.StableWindow.StartTime)
		ew.printf("  End Time: %.2f\n", s.StableWindow.EndTime)
		ew.printf("  Samples: %d\n", s.StableWindow.Count)
	}
	return ew.err
}

func writeFixations(ew *errWriter, eye string, fs []l5events.Fixation) {
	ew.printf("\nNumber of %s Fixations: %d\n", eye, len(fs))
	for _, f := range fs {
		ew.printf("  %s Fixation: Duration: %.4fs, Location: %.2f diopters\n", eye, f.Duration, f.Location)
	}
}

func writeSaccades(ew *errWriter, eye string, ss []l5events.Saccade, o TextOptions) {
	ew.printf("\nNumber of %s Saccades: %d\n", eye, len(ss))
	for _, s := range ss {
		ew.printf("  %s Saccade: Duration: %.4fs, Amplitude: %s, Peak Velocity: %s/sample\n",
			eye, s.Duration, o.angle(s.Amplitude), o.angle(s.PeakVelocity))
	}
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...interface{}) {
	fmt.Fprintf(e, format, args...)
}
