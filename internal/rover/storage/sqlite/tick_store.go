package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one recorded session.
type Run struct {
	RunID       string `json:"run_id"`
	StartedAtNs int64  `json:"started_at_ns"`
	EndedAtNs   *int64 `json:"ended_at_ns,omitempty"`
	Notes       string `json:"notes,omitempty"`
	TickCount   int    `json:"tick_count"`
}

// TickRecord is one control tick as recorded in the log.
type TickRecord struct {
	Seq           int     `json:"seq"`
	TimestampNs   int64   `json:"timestamp_ns"`
	HasPose       bool    `json:"has_pose"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Yaw           float64 `json:"yaw"`
	Vel           float64 `json:"vel"`
	ModeFrom      string  `json:"mode_from"`
	ModeEvaluated string  `json:"mode_evaluated"`
	ModeTo        string  `json:"mode_to"`
	GroundPixels  int     `json:"ground_pixels"`
	SamplePixels  int     `json:"sample_pixels"`
	MeanDist      float64 `json:"mean_dist"`
	MeanAngle     float64 `json:"mean_angle"`
	FoundSample   bool    `json:"found_sample"`
	Throttle      float64 `json:"throttle"`
	Steer         float64 `json:"steer"`
	Brake         float64 `json:"brake"`
	SendPickup    bool    `json:"send_pickup"`
}

// TickStore provides persistence for runs and their ticks.
type TickStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewTickStore creates a new TickStore.
func NewTickStore(db *sql.DB) *TickStore {
	return &TickStore{db: db, now: time.Now}
}

// StartRun creates a new run and returns its ID.
func (s *TickStore) StartRun(notes string) (string, error) {
	runID := uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO rover_runs (run_id, started_at_ns, notes) VALUES (?, ?, ?)`,
		runID, s.now().UnixNano(), nullString(notes),
	)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return runID, nil
}

// RecordTick appends one tick to a run.
func (s *TickStore) RecordTick(runID string, rec TickRecord) error {
	query := `
		INSERT INTO rover_ticks (
			run_id, seq, timestamp_ns, has_pose, x, y, yaw, vel,
			mode_from, mode_evaluated, mode_to,
			ground_pixels, sample_pixels, mean_dist, mean_angle, found_sample,
			throttle, steer, brake, send_pickup
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		runID, rec.Seq, rec.TimestampNs, rec.HasPose, rec.X, rec.Y, rec.Yaw, rec.Vel,
		rec.ModeFrom, rec.ModeEvaluated, rec.ModeTo,
		rec.GroundPixels, rec.SamplePixels, rec.MeanDist, rec.MeanAngle, rec.FoundSample,
		rec.Throttle, rec.Steer, rec.Brake, rec.SendPickup,
	)
	if err != nil {
		return fmt.Errorf("record tick %d: %w", rec.Seq, err)
	}
	return nil
}

// ListTicks returns every tick of a run in sequence order.
func (s *TickStore) ListTicks(runID string) ([]TickRecord, error) {
	query := `
		SELECT seq, timestamp_ns, has_pose, x, y, yaw, vel,
		       mode_from, mode_evaluated, mode_to,
		       ground_pixels, sample_pixels, mean_dist, mean_angle, found_sample,
		       throttle, steer, brake, send_pickup
		FROM rover_ticks
		WHERE run_id = ?
		ORDER BY seq
	`
	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("list ticks: %w", err)
	}
	defer rows.Close()

	var ticks []TickRecord
	for rows.Next() {
		var r TickRecord
		err := rows.Scan(
			&r.Seq, &r.TimestampNs, &r.HasPose, &r.X, &r.Y, &r.Yaw, &r.Vel,
			&r.ModeFrom, &r.ModeEvaluated, &r.ModeTo,
			&r.GroundPixels, &r.SamplePixels, &r.MeanDist, &r.MeanAngle, &r.FoundSample,
			&r.Throttle, &r.Steer, &r.Brake, &r.SendPickup,
		)
		if err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		ticks = append(ticks, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticks: %w", err)
	}
	return ticks, nil
}

// EndRun stamps the run's end time and tick count.
func (s *TickStore) EndRun(runID string) error {
	query := `
		UPDATE rover_runs
		SET ended_at_ns = ?,
		    tick_count = (SELECT COUNT(*) FROM rover_ticks WHERE run_id = ?)
		WHERE run_id = ?
	`
	res, err := s.db.Exec(query, s.now().UnixNano(), runID, runID)
	if err != nil {
		return fmt.Errorf("end run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("end run: unknown run %s", runID)
	}
	return nil
}

// GetRun returns a run by ID.
func (s *TickStore) GetRun(runID string) (*Run, error) {
	r := &Run{}
	var endedAt sql.NullInt64
	var notes sql.NullString
	err := s.db.QueryRow(
		`SELECT run_id, started_at_ns, ended_at_ns, notes, tick_count FROM rover_runs WHERE run_id = ?`,
		runID,
	).Scan(&r.RunID, &r.StartedAtNs, &endedAt, &notes, &r.TickCount)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	if endedAt.Valid {
		r.EndedAtNs = &endedAt.Int64
	}
	if notes.Valid {
		r.Notes = notes.String
	}
	return r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
