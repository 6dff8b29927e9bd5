package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/banshee-data/gaze.report/internal/config"
	"github.com/banshee-data/gaze.report/internal/gaze/cluster"
	"github.com/banshee-data/gaze.report/internal/gaze/l1samples"
	"github.com/banshee-data/gaze.report/internal/gaze/l2derive"
	"github.com/banshee-data/gaze.report/internal/gaze/l3kinematics"
	"github.com/banshee-data/gaze.report/internal/gaze/l4filter"
	"github.com/banshee-data/gaze.report/internal/gaze/l5events"
	"github.com/banshee-data/gaze.report/internal/gaze/l6alignment"
	"github.com/banshee-data/gaze.report/internal/timeutil"
)

// Config bundles the per-layer configuration for one run.
type Config struct {
	Derive     l2derive.Config
	Kinematics l3kinematics.Config
	Filter     l4filter.Config
	Events     l5events.Config
	Cluster    cluster.Config
	Alignment  l6alignment.Config

	// Clock times the run. Nil uses the wall clock.
	Clock timeutil.Clock
}

// ConfigFromAnalysis fans a loaded AnalysisConfig out to every layer.
func ConfigFromAnalysis(cfg *config.AnalysisConfig) Config {
	return Config{
		Derive:     l2derive.ConfigFromAnalysis(cfg),
		Kinematics: l3kinematics.ConfigFromAnalysis(cfg),
		Filter:     l4filter.ConfigFromAnalysis(cfg),
		Events:     l5events.ConfigFromAnalysis(cfg),
		Cluster:    cluster.ConfigFromAnalysis(cfg),
		Alignment:  l6alignment.ConfigFromAnalysis(cfg),
	}
}

// StatisticsFields are described in Result.Statistics.
var StatisticsFields = []l2derive.Field{
	l2derive.FieldLeftDiopters,
	l2derive.FieldRightDiopters,
	l2derive.FieldLeftVertical,
	l2derive.FieldRightVertical,
	l2derive.FieldTargetHorizontal,
	l2derive.FieldTargetVertical,
	l2derive.FieldVergenceDistance,
	l2derive.FieldVergenceAngle,
}

// EyeEvents are the events detected on one eye's diopter signal.
type EyeEvents struct {
	Saccades  []l5events.Saccade  `json:"saccades"`
	Fixations []l5events.Fixation `json:"fixations"`
}

// Result is everything one run produces. Event indices refer to Derived,
// which is the unfiltered series.
type Result struct {
	Derived    []l2derive.DerivedSample
	Filtered   []l2derive.DerivedSample
	KeptIndex  []int
	Rejected   []int
	Degenerate int

	LeftKinematics  l3kinematics.Series
	RightKinematics l3kinematics.Series

	Left   EyeEvents
	Right  EyeEvents
	Fusion []l5events.FusionWindow

	Clusters    cluster.Assignment
	Summary     l6alignment.Summary
	Statistics  map[string]l6alignment.Description
	Correlation l6alignment.Correlation

	Elapsed time.Duration
}

type stage struct {
	name string
	run  func(*Result)
}

// Run executes every stage in order. ctx is checked before each stage; a
// cancelled run returns ctx.Err() wrapped with the stage it stopped at.
func Run(ctx context.Context, samples []l1samples.Sample, cfg Config) (*Result, error) {
	if len(samples) == 0 {
		return nil, l1samples.ErrEmptyInput
	}
	clock := cfg.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	start := clock.Now()
	res := &Result{}

	stages := []stage{
		{"derive", func(r *Result) { derive(r, samples, cfg.Derive) }},
		{"kinematics", func(r *Result) { kinematics(r, cfg.Kinematics) }},
		{"events", func(r *Result) { events(r, cfg.Events) }},
		{"filter", func(r *Result) { filter(r, cfg.Filter) }},
		{"cluster", func(r *Result) { clusterStage(r, cfg.Cluster) }},
		{"summarize", func(r *Result) { summarize(r, cfg.Alignment) }},
		{"statistics", statistics},
	}
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline stopped before %s: %w", s.name, err)
		}
		s.run(res)
	}

	res.Elapsed = clock.Since(start)
	diagf("[Pipeline] %d samples analysed in %v", len(res.Derived), res.Elapsed)
	return res, nil
}

func derive(r *Result, samples []l1samples.Sample, cfg l2derive.Config) {
	r.Derived = l2derive.Derive(samples, cfg)
	r.Degenerate = l2derive.CountDegenerate(r.Derived)
	if r.Degenerate > 0 {
		opsf("[Derive] %d of %d samples had a zero-length direction vector", r.Degenerate, len(r.Derived))
	}
	diagf("[Derive] %d samples, mode=%s, %.3f deg/diopter", len(r.Derived), cfg.Mode, cfg.DegreesPerDiopter)
	for i := range r.Derived {
		d := &r.Derived[i]
		tracef("[Derive] t=%.3f L=%.3f/%.3f R=%.3f/%.3f", d.Timestamp, d.LeftDiopters, d.LeftVertical, d.RightDiopters, d.RightVertical)
	}
}

func kinematics(r *Result, cfg l3kinematics.Config) {
	r.LeftKinematics = l3kinematics.Compute(l2derive.Column(r.Derived, l2derive.FieldLeftDiopters), cfg)
	r.RightKinematics = l3kinematics.Compute(l2derive.Column(r.Derived, l2derive.FieldRightDiopters), cfg)
	diagf("[Kinematics] velocity window=%d acceleration window=%d", cfg.VelocityWindow, cfg.AccelerationWindow)
}

func events(r *Result, cfg l5events.Config) {
	ts := l2derive.Column(r.Derived, l2derive.FieldTimestamp)
	left := l2derive.Column(r.Derived, l2derive.FieldLeftDiopters)
	right := l2derive.Column(r.Derived, l2derive.FieldRightDiopters)

	r.Left = EyeEvents{
		Saccades:  l5events.DetectSaccades(left, r.LeftKinematics.Velocity, ts, cfg),
		Fixations: l5events.DetectFixations(left, ts, cfg),
	}
	r.Right = EyeEvents{
		Saccades:  l5events.DetectSaccades(right, r.RightKinematics.Velocity, ts, cfg),
		Fixations: l5events.DetectFixations(right, ts, cfg),
	}
	r.Fusion = l5events.DetectFusion(
		l2derive.Column(r.Derived, l2derive.FieldLeftHorizontal),
		l2derive.Column(r.Derived, l2derive.FieldRightHorizontal),
		ts, cfg)

	diagf("[Events] left: %d saccades %d fixations; right: %d saccades %d fixations; %d fusion windows",
		len(r.Left.Saccades), len(r.Left.Fixations), len(r.Right.Saccades), len(r.Right.Fixations), len(r.Fusion))
	for _, f := range r.Left.Fixations {
		tracef("[Events] left fixation [%d,%d] %.3fs at %.3f", f.StartIndex, f.EndIndex, f.Duration, f.Location)
	}
	for _, f := range r.Right.Fixations {
		tracef("[Events] right fixation [%d,%d] %.3fs at %.3f", f.StartIndex, f.EndIndex, f.Duration, f.Location)
	}
}

func filter(r *Result, cfg l4filter.Config) {
	fr := l4filter.Apply(r.Derived, cfg)
	r.Filtered, r.KeptIndex, r.Rejected = fr.Kept, fr.KeptIndex, fr.Rejected
	if len(r.Filtered) == 0 {
		opsf("[Filter] every sample was rejected (policy=%s, k=%.2f)", cfg.Policy, cfg.Multiplier)
	}
	diagf("[Filter] policy=%s kept %d rejected %d", cfg.Policy, len(r.Filtered), len(r.Rejected))
}

func clusterStage(r *Result, cfg cluster.Config) {
	r.Clusters = cluster.Cluster(r.Filtered, cfg)
	diagf("[Cluster] k=%d iterations=%d inertia=%.4f sizes=%v", cfg.K, r.Clusters.Iterations, r.Clusters.Inertia, r.Clusters.Sizes())
}

func summarize(r *Result, cfg l6alignment.Config) {
	r.Summary = l6alignment.Summarize(r.Filtered, cfg)
	if r.Summary.StableWindow == nil {
		diagf("[Summary] no stable sample within %.2f diopters of %.3f", cfg.StableThreshold, r.Summary.BaselineDiopter)
		return
	}
	diagf("[Summary] baseline %.3f D / %.3f deg, stable %.3f-%.3f (%d samples)",
		r.Summary.BaselineDiopter, r.Summary.BaselineVertical,
		r.Summary.StableWindow.StartTime, r.Summary.StableWindow.EndTime, r.Summary.StableWindow.Count)
}

func statistics(r *Result) {
	r.Statistics = l6alignment.DescribeFields(r.Filtered, StatisticsFields)
	r.Correlation = l6alignment.CorrelationMatrix(r.Filtered)
}
