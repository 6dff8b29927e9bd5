package sqlite

import (
	"encoding/json"
	"fmt"

	"github.com/banshee-data/gaze.report/internal/config"
	"github.com/banshee-data/gaze.report/internal/gaze/l2derive"
	"github.com/banshee-data/gaze.report/internal/gaze/pipeline"
)

// RunFromResult builds the run record for a pipeline result. cfg may be nil.
func RunFromResult(sourcePath string, res *pipeline.Result, cfg *config.AnalysisConfig) (*AnalysisRun, error) {
	run := &AnalysisRun{
		SourcePath:       sourcePath,
		SampleCount:      len(res.Derived),
		FilteredCount:    len(res.Filtered),
		RejectedCount:    len(res.Rejected),
		DegenerateCount:  res.Degenerate,
		BaselineDiopter:  res.Summary.BaselineDiopter,
		BaselineVertical: res.Summary.BaselineVertical,
	}
	if w := res.Summary.StableWindow; w != nil {
		start, end := w.StartTime, w.EndTime
		run.StableStart, run.StableEnd, run.StableCount = &start, &end, w.Count
	}

	summary, err := json.Marshal(res.Summary)
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	run.SummaryJSON = summary

	if cfg != nil {
		params, err := json.Marshal(cfg.Resolved())
		if err != nil {
			return nil, fmt.Errorf("marshal config: %w", err)
		}
		run.ConfigJSON = params
	}
	return run, nil
}

// EventsFromResult flattens the detected saccades, fixations and fusion
// windows into storable events.
func EventsFromResult(res *pipeline.Result) []Event {
	var events []Event
	for _, eye := range []struct {
		name   string
		events pipeline.EyeEvents
	}{{EyeLeft, res.Left}, {EyeRight, res.Right}} {
		for _, s := range eye.events.Saccades {
			peak := s.PeakVelocity
			events = append(events, Event{
				Eye:        eye.name,
				Kind:       KindSaccade,
				StartIndex: s.StartIndex,
				EndIndex:   s.EndIndex,
				StartTime:  timeAt(res.Derived, s.StartIndex),
				EndTime:    timeAt(res.Derived, s.EndIndex),
				Duration:   s.Duration,
				Value:      s.Amplitude,
				Peak:       &peak,
			})
		}
		for _, f := range eye.events.Fixations {
			events = append(events, Event{
				Eye:        eye.name,
				Kind:       KindFixation,
				StartIndex: f.StartIndex,
				EndIndex:   f.EndIndex,
				StartTime:  timeAt(res.Derived, f.StartIndex),
				EndTime:    timeAt(res.Derived, f.EndIndex),
				Duration:   f.Duration,
				Value:      f.Location,
			})
		}
	}
	for _, w := range res.Fusion {
		events = append(events, Event{
			Eye:        EyeBoth,
			Kind:       KindFusion,
			StartIndex: w.StartIndex,
			EndIndex:   w.EndIndex,
			StartTime:  w.StartTime,
			EndTime:    w.EndTime,
			Duration:   w.Duration,
			Value:      w.MeanDisparity,
		})
	}
	return events
}

func timeAt(ds []l2derive.DerivedSample, i int) float64 {
	if i < 0 || i >= len(ds) {
		return 0
	}
	return ds[i].Timestamp
}

// SaveResult stores the run and its events in one transaction, returning the
// new run ID.
func (s *AnalysisRunStore) SaveResult(sourcePath string, res *pipeline.Result, cfg *config.AnalysisConfig) (string, error) {
	run, err := RunFromResult(sourcePath, res, cfg)
	if err != nil {
		return "", err
	}
	if err := s.InsertRunWithEvents(run, EventsFromResult(res)); err != nil {
		return "", err
	}
	return run.RunID, nil
}
