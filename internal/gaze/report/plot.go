package report

import (
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/gaze.report/internal/fsutil"
	"github.com/banshee-data/gaze.report/internal/gaze/l2derive"
	"github.com/banshee-data/gaze.report/internal/gaze/pipeline"
	"github.com/banshee-data/gaze.report/internal/monitoring"
)

const histogramBins = 30

var (
	leftColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	rightColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// histogramFields get one distribution plot each.
var histogramFields = []l2derive.Field{
	l2derive.FieldLeftDiopters,
	l2derive.FieldRightDiopters,
	l2derive.FieldTargetHorizontal,
	l2derive.FieldLeftVertical,
	l2derive.FieldRightVertical,
	l2derive.FieldTargetVertical,
}

type namedPlot struct {
	file string
	p    *plot.Plot
}

// PlotPNG renders the time-series, kinematics, cluster scatter and histogram
// plots of the filtered series into dir and returns the written paths. An
// empty filtered series writes nothing.
func PlotPNG(fsys fsutil.FileSystem, dir string, res *pipeline.Result) ([]string, error) {
	if len(res.Filtered) == 0 {
		monitoring.Warnf("no filtered samples, skipping plots")
		return nil, nil
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create plot dir: %w", err)
	}

	var plots []namedPlot
	add := func(file string, p *plot.Plot, err error) error {
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		plots = append(plots, namedPlot{file, p})
		return nil
	}

	ts := l2derive.Column(res.Filtered, l2derive.FieldTimestamp)
	steps := []func() error{
		func() error {
			p, err := timeSeriesPlot("Eye Movement in Diopters Over Time", "Diopters", ts,
				l2derive.Column(res.Filtered, l2derive.FieldLeftDiopters),
				l2derive.Column(res.Filtered, l2derive.FieldRightDiopters))
			return add("diopters.png", p, err)
		},
		func() error {
			p, err := timeSeriesPlot("Vertical Eye Movement Over Time", "Vertical Angle (Degrees)", ts,
				l2derive.Column(res.Filtered, l2derive.FieldLeftVertical),
				l2derive.Column(res.Filtered, l2derive.FieldRightVertical))
			return add("vertical.png", p, err)
		},
		func() error {
			p, err := timeSeriesPlot("Eye Velocity Over Time", "Velocity (Diopters/sample)", ts,
				atIndices(res.LeftKinematics.Velocity, res.KeptIndex),
				atIndices(res.RightKinematics.Velocity, res.KeptIndex))
			return add("velocity.png", p, err)
		},
		func() error {
			p, err := timeSeriesPlot("Eye Acceleration Over Time", "Acceleration (Diopters/sample²)", ts,
				atIndices(res.LeftKinematics.Acceleration, res.KeptIndex),
				atIndices(res.RightKinematics.Acceleration, res.KeptIndex))
			return add("acceleration.png", p, err)
		},
		func() error {
			p, err := clusterScatter("Left Eye Movement", res, l2derive.FieldLeftDiopters, l2derive.FieldLeftVertical)
			return add("scatter_left.png", p, err)
		},
		func() error {
			p, err := clusterScatter("Right Eye Movement", res, l2derive.FieldRightDiopters, l2derive.FieldRightVertical)
			return add("scatter_right.png", p, err)
		},
	}
	for _, f := range histogramFields {
		steps = append(steps, func() error {
			p, err := histogram(f, l2derive.Column(res.Filtered, f))
			return add(fmt.Sprintf("hist_%s.png", f), p, err)
		})
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	written := make([]string, 0, len(plots))
	for _, np := range plots {
		path := filepath.Join(dir, np.file)
		if err := savePNG(fsys, np.p, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func savePNG(fsys fsutil.FileSystem, p *plot.Plot, path string) error {
	wt, err := p.WriterTo(14*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func atIndices(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

func xys(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	return pts
}

func timeSeriesPlot(title, ylabel string, ts, left, right []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Timestamp"
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())

	for _, s := range []struct {
		name string
		y    []float64
		c    color.Color
	}{{"Left", left, leftColor}, {"Right", right, rightColor}} {
		line, err := plotter.NewLine(xys(ts, s.y))
		if err != nil {
			return nil, err
		}
		line.Color = s.c
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}
	p.Legend.Top = true
	return p, nil
}

func clusterScatter(title string, res *pipeline.Result, xf, yf l2derive.Field) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Diopters"
	p.Y.Label.Text = "Vertical Angle (Degrees)"
	p.Add(plotter.NewGrid())

	k := len(res.Clusters.Centroids)
	groups := make([]plotter.XYs, k)
	for i := range res.Filtered {
		l := res.Clusters.Labels[i]
		d := &res.Filtered[i]
		groups[l] = append(groups[l], plotter.XY{X: xf.Value(d), Y: yf.Value(d)})
	}
	colors := generateColors(k)
	for c, pts := range groups {
		if len(pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle = draw.GlyphStyle{Color: colors[c], Radius: vg.Points(2), Shape: draw.CircleGlyph{}}
		p.Add(sc)
		p.Legend.Add(fmt.Sprintf("cluster %d", c), sc)
	}
	return p, nil
}

func histogram(f l2derive.Field, values []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s Distribution", f)
	p.X.Label.Text = f.String()
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(plotter.Values(values), histogramBins)
	if err != nil {
		return nil, err
	}
	h.FillColor = leftColor
	p.Add(h)
	return p, nil
}

// generateColors returns n evenly spaced hues.
func generateColors(n int) []color.Color {
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(max(n, 1))
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}
	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q
	return uint8(hueToRGB(p, q, h+1.0/3.0) * 255),
		uint8(hueToRGB(p, q, h) * 255),
		uint8(hueToRGB(p, q, h-1.0/3.0) * 255)
}

func hueToRGB(p, q, t float64) float64 {
	switch {
	case t < 0:
		t++
	case t > 1:
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
