package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewTimeLog is the payload for CreateTimeLog. A nil EndTime records an
// ongoing, open-ended log.
type NewTimeLog struct {
	ProjectID   string
	UserID      string
	StartTime   time.Time
	EndTime     *time.Time
	Description *string
}

// CreateTimeLog records a work interval against a project. An end time
// before the start time is rejected before any row is written.
func (s *Store) CreateTimeLog(ctx context.Context, n NewTimeLog) (*TimeLog, error) {
	if n.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: start time is required", ErrInvalidInput)
	}
	if n.EndTime != nil && n.EndTime.Before(n.StartTime) {
		return nil, fmt.Errorf("%w: end time must be after start time", ErrInvalidInput)
	}
	if _, err := s.ProjectByID(ctx, n.ProjectID, n.UserID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tl := &TimeLog{
		ID:          uuid.NewString(),
		ProjectID:   n.ProjectID,
		UserID:      n.UserID,
		StartTime:   n.StartTime.UTC(),
		EndTime:     n.EndTime,
		Description: n.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if tl.EndTime != nil {
		utc := tl.EndTime.UTC()
		tl.EndTime = &utc
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO time_logs
		(id, project_id, user_id, start_time, end_time, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tl.ID, tl.ProjectID, tl.UserID, tl.StartTime, tl.EndTime, tl.Description,
		tl.CreatedAt, tl.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert time log: %w", err)
	}
	return tl, nil
}

// TimeLogsByProject lists a project's logs, newest start first.
func (s *Store) TimeLogsByProject(ctx context.Context, projectID, userID string) ([]TimeLog, error) {
	if _, err := s.ProjectByID(ctx, projectID, userID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, project_id, user_id, start_time, end_time, description, created_at, updated_at
		FROM time_logs WHERE project_id = ? ORDER BY start_time DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list time logs: %w", err)
	}
	defer rows.Close()

	var logs []TimeLog
	for rows.Next() {
		var tl TimeLog
		if err := rows.Scan(&tl.ID, &tl.ProjectID, &tl.UserID, &tl.StartTime, &tl.EndTime,
			&tl.Description, &tl.CreatedAt, &tl.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan time log: %w", err)
		}
		logs = append(logs, tl)
	}
	return logs, rows.Err()
}

// SumLoggedTime totals a set of logs as of now. Ongoing logs count up to
// now; any interval that would come out negative (an end before its start
// that slipped past validation) is clamped to zero so it cannot corrupt
// the aggregate.
func SumLoggedTime(logs []TimeLog, now time.Time) time.Duration {
	var total time.Duration
	for _, tl := range logs {
		end := now
		if tl.EndTime != nil {
			end = *tl.EndTime
		}
		if d := end.Sub(tl.StartTime); d > 0 {
			total += d
		}
	}
	return total
}

// TotalLoggedTime sums a project's logs as of now.
func (s *Store) TotalLoggedTime(ctx context.Context, projectID, userID string, now time.Time) (time.Duration, error) {
	logs, err := s.TimeLogsByProject(ctx, projectID, userID)
	if err != nil {
		return 0, err
	}
	return SumLoggedTime(logs, now), nil
}
