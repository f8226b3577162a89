package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Run is one ledger row: what a conversion read, wrote and measured.
type Run struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    time.Time
	CaptureDir    string
	GyroLog       string
	GcsvPath      string
	ProfilePath   string
	Status        string
	Error         string
	SampleCount   int
	DurationSec   float64
	RateHz        float64
	ShutterSkewNs *int64
	FocalLength   *float64
	FPS           *float64
	Orientation   string
	Calibration   string
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// RecordRun inserts r. An empty ID is filled with NewRunID and written
// back to r.
func (db *DB) RecordRun(r *Run) error {
	if r.ID == "" {
		r.ID = NewRunID()
	} else if _, err := uuid.Parse(r.ID); err != nil {
		return fmt.Errorf("invalid run id %q: %w", r.ID, err)
	}
	if r.Status == "" {
		r.Status = StatusOK
	}

	_, err := db.Exec(`
		INSERT INTO runs (
			run_id, started_at, finished_at, capture_dir, gyro_log, gcsv_path,
			profile_path, status, error, sample_count, duration_sec, rate_hz,
			shutter_skew_ns, focal_length, fps, orientation, calibration
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, formatTime(r.StartedAt), formatTime(r.FinishedAt), r.CaptureDir, r.GyroLog, r.GcsvPath,
		r.ProfilePath, r.Status, r.Error, r.SampleCount, r.DurationSec, r.RateHz,
		nullInt64(r.ShutterSkewNs), nullFloat64(r.FocalLength), nullFloat64(r.FPS), r.Orientation, r.Calibration,
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", r.ID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := db.Query(`
		SELECT run_id, started_at, finished_at, capture_dir, gyro_log, gcsv_path,
			profile_path, status, error, sample_count, duration_sec, rate_hz,
			shutter_skew_ns, focal_length, fps, orientation, calibration
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
			skew              sql.NullInt64
			focal, fps        sql.NullFloat64
		)
		if err := rows.Scan(
			&r.ID, &started, &finished, &r.CaptureDir, &r.GyroLog, &r.GcsvPath,
			&r.ProfilePath, &r.Status, &r.Error, &r.SampleCount, &r.DurationSec, &r.RateHz,
			&skew, &focal, &fps, &r.Orientation, &r.Calibration,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if r.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if r.FinishedAt, err = parseTime(finished); err != nil {
			return nil, err
		}
		if skew.Valid {
			r.ShutterSkewNs = &skew.Int64
		}
		if focal.Valid {
			r.FocalLength = &focal.Float64
		}
		if fps.Valid {
			r.FPS = &fps.Float64
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// Times are stored as UTC RFC 3339 text so lexical order is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored time %q: %w", s, err)
	}
	return t, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullFloat64(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
