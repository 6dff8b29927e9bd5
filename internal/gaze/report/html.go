package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/gaze.report/internal/gaze/l2derive"
	"github.com/banshee-data/gaze.report/internal/gaze/pipeline"
)

var coolwarm = []string{"#3b4cc0", "#7396f5", "#b0cbfc", "#dddddd", "#f6bfa6", "#e7745b", "#b40426"}

// RenderHTML writes a static chart page for res: diopter and vertical time
// series, velocity, cluster scatters, event counts and the correlation
// heatmap.
func RenderHTML(w io.Writer, res *pipeline.Result) error {
	page := components.NewPage()
	page.SetPageTitle("Gaze Alignment Report")

	if len(res.Filtered) > 0 {
		ts := l2derive.Column(res.Filtered, l2derive.FieldTimestamp)
		page.AddCharts(
			lineChart("Eye Movement in Diopters", "Diopters", ts,
				l2derive.Column(res.Filtered, l2derive.FieldLeftDiopters),
				l2derive.Column(res.Filtered, l2derive.FieldRightDiopters)),
			lineChart("Vertical Eye Movement", "Vertical Angle (Degrees)", ts,
				l2derive.Column(res.Filtered, l2derive.FieldLeftVertical),
				l2derive.Column(res.Filtered, l2derive.FieldRightVertical)),
			lineChart("Eye Velocity", "Velocity (Diopters/sample)", ts,
				atIndices(res.LeftKinematics.Velocity, res.KeptIndex),
				atIndices(res.RightKinematics.Velocity, res.KeptIndex)),
			scatterChart("Left Eye Movement", res, l2derive.FieldLeftDiopters, l2derive.FieldLeftVertical),
			scatterChart("Right Eye Movement", res, l2derive.FieldRightDiopters, l2derive.FieldRightVertical),
		)
	}
	page.AddCharts(eventsChart(res), correlationHeatmap(res))

	return page.Render(w)
}

func lineChart(title, ylabel string, ts, left, right []float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Timestamp", NameLocation: "middle", NameGap: 25, Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: ylabel, Scale: opts.Bool(true)}),
	)
	lineOpts := charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})
	line.AddSeries("Left", lineData(ts, left), lineOpts).
		AddSeries("Right", lineData(ts, right), lineOpts)
	return line
}

func lineData(x, y []float64) []opts.LineData {
	data := make([]opts.LineData, len(x))
	for i := range x {
		data[i] = opts.LineData{Value: []interface{}{x[i], y[i]}}
	}
	return data
}

func scatterChart(title string, res *pipeline.Result, xf, yf l2derive.Field) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "600px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("k=%d", len(res.Clusters.Centroids))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Diopters", NameLocation: "middle", NameGap: 25, Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Vertical Angle (Degrees)", Scale: opts.Bool(true)}),
	)

	groups := make([][]opts.ScatterData, len(res.Clusters.Centroids))
	for i := range res.Filtered {
		d := &res.Filtered[i]
		l := res.Clusters.Labels[i]
		groups[l] = append(groups[l], opts.ScatterData{Value: []interface{}{xf.Value(d), yf.Value(d)}})
	}
	for c, data := range groups {
		scatter.AddSeries(fmt.Sprintf("cluster %d", c), data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))
	}
	return scatter
}

func eventsChart(res *pipeline.Result) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "600px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Detected Events", Subtitle: fmt.Sprintf("fusion windows=%d", len(res.Fusion))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis([]string{"Saccades", "Fixations"}).
		AddSeries("Left", []opts.BarData{{Value: len(res.Left.Saccades)}, {Value: len(res.Left.Fixations)}},
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)})).
		AddSeries("Right", []opts.BarData{{Value: len(res.Right.Saccades)}, {Value: len(res.Right.Fixations)}},
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	return bar
}

// correlationHeatmap plots res.Correlation; undefined entries render blank.
func correlationHeatmap(res *pipeline.Result) *charts.HeatMap {
	c := res.Correlation
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "800px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Correlation Matrix of Eye and Target Movements"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: c.Fields, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: c.Fields, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        -1,
			Max:        1,
			InRange:    &opts.VisualMapInRange{Color: coolwarm},
		}),
	)

	data := make([]opts.HeatMapData, 0, len(c.Fields)*len(c.Fields))
	for i, row := range c.Values {
		for j, v := range row {
			var cell interface{} = math.Round(v*100) / 100
			if math.IsNaN(v) || math.IsInf(v, 0) {
				cell = "-"
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{j, i, cell}})
		}
	}
	hm.SetXAxis(c.Fields).AddSeries("correlation", data, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	return hm
}
