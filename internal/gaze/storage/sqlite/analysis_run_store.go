// Package sqlite persists analysis runs and their detected events.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/gaze.report/internal/timeutil"
)

// ErrRunNotFound is returned when a run ID has no stored row.
var ErrRunNotFound = errors.New("analysis run not found")

// AnalysisRun is the persisted summary of one analysed recording.
type AnalysisRun struct {
	RunID            string          `json:"run_id"`
	SourcePath       string          `json:"source_path"`
	CreatedAt        int64           `json:"created_at"`
	SampleCount      int             `json:"sample_count"`
	FilteredCount    int             `json:"filtered_count"`
	RejectedCount    int             `json:"rejected_count"`
	DegenerateCount  int             `json:"degenerate_count"`
	BaselineDiopter  float64         `json:"baseline_diopter"`
	BaselineVertical float64         `json:"baseline_vertical"`
	StableStart      *float64        `json:"stable_start,omitempty"`
	StableEnd        *float64        `json:"stable_end,omitempty"`
	StableCount      int             `json:"stable_count"`
	ConfigJSON       json.RawMessage `json:"config_json,omitempty"`
	SummaryJSON      json.RawMessage `json:"summary_json,omitempty"`
}

// Event eyes and kinds.
const (
	EyeLeft  = "left"
	EyeRight = "right"
	EyeBoth  = "both"

	KindSaccade  = "saccade"
	KindFixation = "fixation"
	KindFusion   = "fusion"
)

// Event is one detected saccade, fixation or fusion window. Value holds the
// saccade amplitude, fixation location or mean fusion disparity; Peak is
// only set for saccades.
type Event struct {
	RunID      string   `json:"run_id"`
	Eye        string   `json:"eye"`
	Kind       string   `json:"kind"`
	StartIndex int      `json:"start_index"`
	EndIndex   int      `json:"end_index"`
	StartTime  float64  `json:"start_time"`
	EndTime    float64  `json:"end_time"`
	Duration   float64  `json:"duration"`
	Value      float64  `json:"value"`
	Peak       *float64 `json:"peak,omitempty"`
}

// AnalysisRunStore provides persistence for analysis runs.
type AnalysisRunStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

// NewAnalysisRunStore creates a new AnalysisRunStore. A nil clock uses the
// wall clock for CreatedAt.
func NewAnalysisRunStore(db *sql.DB, clock timeutil.Clock) *AnalysisRunStore {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &AnalysisRunStore{db: db, clock: clock}
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Prepare(query string) (*sql.Stmt, error)
}

// Insert persists a new run. If RunID is empty, a UUID is generated.
func (s *AnalysisRunStore) Insert(run *AnalysisRun) error {
	s.prepareRun(run)
	return retryOnBusy(func() error {
		return insertRun(s.db, run)
	})
}

func (s *AnalysisRunStore) prepareRun(run *AnalysisRun) {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = s.clock.Now().UnixNano()
	}
}

func insertRun(db execer, run *AnalysisRun) error {
	_, err := db.Exec(`
		INSERT INTO analysis_runs (
			run_id, source_path, created_at,
			sample_count, filtered_count, rejected_count, degenerate_count,
			baseline_diopter, baseline_vertical,
			stable_start, stable_end, stable_count,
			config_json, summary_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.SourcePath, run.CreatedAt,
		run.SampleCount, run.FilteredCount, run.RejectedCount, run.DegenerateCount,
		run.BaselineDiopter, run.BaselineVertical,
		nullFloat(run.StableStart), nullFloat(run.StableEnd), run.StableCount,
		nullJSON(run.ConfigJSON), nullJSON(run.SummaryJSON),
	)
	if err != nil {
		return fmt.Errorf("insert analysis run: %w", err)
	}
	return nil
}

const runColumns = `
	run_id, source_path, created_at,
	sample_count, filtered_count, rejected_count, degenerate_count,
	baseline_diopter, baseline_vertical,
	stable_start, stable_end, stable_count,
	config_json, summary_json`

// Get returns a single run by ID.
func (s *AnalysisRunStore) Get(runID string) (*AnalysisRun, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM analysis_runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, err
}

// List returns the most recent runs, newest first. A limit <= 0 returns all.
func (s *AnalysisRunStore) List(limit int) ([]*AnalysisRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`SELECT `+runColumns+`
		FROM analysis_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query analysis runs: %w", err)
	}
	defer rows.Close()

	var runs []*AnalysisRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Delete removes a run and, through the foreign key, its events.
func (s *AnalysisRunStore) Delete(runID string) error {
	return retryOnBusy(func() error {
		result, err := s.db.Exec(`DELETE FROM analysis_runs WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("delete analysis run: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil
	})
}

// InsertEvents stores events for runID in a single transaction.
func (s *AnalysisRunStore) InsertEvents(runID string, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	return retryOnBusy(func() error {
		return s.inTx(func(tx *sql.Tx) error {
			return insertEvents(tx, runID, events)
		})
	})
}

// InsertRunWithEvents stores run and its events atomically: if any event
// fails, the run is not kept either.
func (s *AnalysisRunStore) InsertRunWithEvents(run *AnalysisRun, events []Event) error {
	s.prepareRun(run)
	return retryOnBusy(func() error {
		return s.inTx(func(tx *sql.Tx) error {
			if err := insertRun(tx, run); err != nil {
				return err
			}
			return insertEvents(tx, run.RunID, events)
		})
	})
}

func (s *AnalysisRunStore) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func insertEvents(db execer, runID string, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	stmt, err := db.Prepare(`
		INSERT INTO analysis_events (
			run_id, eye, kind, start_index, end_index,
			start_time, end_time, duration, value, peak
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare event insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(
			runID, e.Eye, e.Kind, e.StartIndex, e.EndIndex,
			e.StartTime, e.EndTime, e.Duration, e.Value, nullFloat(e.Peak),
		); err != nil {
			return fmt.Errorf("insert %s %s event: %w", e.Eye, e.Kind, err)
		}
	}
	return nil
}

// ListEvents returns the events of runID ordered by kind, eye and start index.
func (s *AnalysisRunStore) ListEvents(runID string) ([]Event, error) {
	rows, err := s.db.Query(`
		SELECT run_id, eye, kind, start_index, end_index,
		       start_time, end_time, duration, value, peak
		FROM analysis_events
		WHERE run_id = ?
		ORDER BY kind, eye, start_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query analysis events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var peak sql.NullFloat64
		if err := rows.Scan(
			&e.RunID, &e.Eye, &e.Kind, &e.StartIndex, &e.EndIndex,
			&e.StartTime, &e.EndTime, &e.Duration, &e.Value, &peak,
		); err != nil {
			return nil, fmt.Errorf("scan analysis event row: %w", err)
		}
		if peak.Valid {
			e.Peak = &peak.Float64
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*AnalysisRun, error) {
	var r AnalysisRun
	var stableStart, stableEnd sql.NullFloat64
	var configStr, summaryStr sql.NullString
	err := row.Scan(
		&r.RunID, &r.SourcePath, &r.CreatedAt,
		&r.SampleCount, &r.FilteredCount, &r.RejectedCount, &r.DegenerateCount,
		&r.BaselineDiopter, &r.BaselineVertical,
		&stableStart, &stableEnd, &r.StableCount,
		&configStr, &summaryStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan analysis run: %w", err)
	}
	if stableStart.Valid {
		r.StableStart = &stableStart.Float64
	}
	if stableEnd.Valid {
		r.StableEnd = &stableEnd.Float64
	}
	if configStr.Valid {
		r.ConfigJSON = json.RawMessage(configStr.String)
	}
	if summaryStr.Valid {
		r.SummaryJSON = json.RawMessage(summaryStr.String)
	}
	return &r, nil
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullJSON(v json.RawMessage) interface{} {
	if len(v) == 0 {
		return nil
	}
	return string(v)
}
