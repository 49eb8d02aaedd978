package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Activity actions.
const (
	ActionIdeaCaptured   = "idea_captured"
	ActionScoresUpdated  = "scores_updated"
	ActionStatusChanged  = "status_changed"
	ActionMilestoneMoved = "milestone_moved"
	ActionIdeaConverted  = "idea_converted"
	ActionProjectShipped = "project_shipped"
	ActionTimeLogged     = "time_logged"
)

// RecordActivity appends an entry to the activity log. Metadata may be nil.
func (s *Store) RecordActivity(ctx context.Context, userID string, ideaID *string, action string, metadata map[string]any) error {
	meta := "{}"
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		meta = string(b)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO activity_log
		(id, user_id, idea_id, action, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, ideaID, action, meta, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// RecentActivity returns the user's newest activity entries.
func (s *Store) RecentActivity(ctx context.Context, userID string, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, idea_id, action, metadata, created_at
		FROM activity_log WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var entries []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.IdeaID, &a.Action, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}
