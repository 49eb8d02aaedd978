package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Milestone statuses, one per kanban column.
const (
	MilestonePending    = "pending"
	MilestoneInProgress = "in_progress"
	MilestoneCompleted  = "completed"
	MilestoneBlocked    = "blocked"
)

var milestoneStatuses = map[string]bool{
	MilestonePending:    true,
	MilestoneInProgress: true,
	MilestoneCompleted:  true,
	MilestoneBlocked:    true,
}

// ValidMilestoneStatus reports whether status names a kanban column.
func ValidMilestoneStatus(status string) bool {
	return milestoneStatuses[status]
}

const milestoneColumns = `id, idea_id, title, description, status, due_date, order_index, created_at`

// CreateMilestone inserts a pending milestone at the end of its idea's
// pending column.
func (s *Store) CreateMilestone(ctx context.Context, ideaID, userID, title, description string, dueDate *string) (*Milestone, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if _, err := s.IdeaByID(ctx, ideaID, userID); err != nil {
		return nil, err
	}

	var maxIndex int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(order_index), 0) FROM milestones WHERE idea_id = ? AND status = ?`,
		ideaID, MilestonePending).Scan(&maxIndex)
	if err != nil {
		return nil, fmt.Errorf("max order index: %w", err)
	}

	m := &Milestone{
		ID:          uuid.NewString(),
		IdeaID:      ideaID,
		Title:       title,
		Description: description,
		Status:      MilestonePending,
		DueDate:     dueDate,
		OrderIndex:  maxIndex + 1,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO milestones
		(id, idea_id, title, description, status, due_date, order_index, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.IdeaID, m.Title, m.Description, m.Status, m.DueDate, m.OrderIndex, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert milestone: %w", err)
	}
	return m, nil
}

// MilestonesByIdea lists an idea's milestones ordered by position, with
// ties falling back to insertion order.
func (s *Store) MilestonesByIdea(ctx context.Context, ideaID, userID string) ([]Milestone, error) {
	if _, err := s.IdeaByID(ctx, ideaID, userID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+milestoneColumns+` FROM milestones WHERE idea_id = ? ORDER BY order_index, created_at`,
		ideaID)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	var milestones []Milestone
	for rows.Next() {
		var m Milestone
		if err := rows.Scan(&m.ID, &m.IdeaID, &m.Title, &m.Description, &m.Status,
			&m.DueDate, &m.OrderIndex, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

// MilestoneByID fetches a milestone scoped through its idea's owner.
func (s *Store) MilestoneByID(ctx context.Context, id, userID string) (*Milestone, error) {
	row := s.db.QueryRowContext(ctx, `SELECT m.id, m.idea_id, m.title, m.description, m.status, m.due_date, m.order_index, m.created_at
		FROM milestones m JOIN ideas i ON i.id = m.idea_id
		WHERE m.id = ? AND i.user_id = ?`, id, userID)
	var m Milestone
	err := row.Scan(&m.ID, &m.IdeaID, &m.Title, &m.Description, &m.Status,
		&m.DueDate, &m.OrderIndex, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan milestone: %w", err)
	}
	return &m, nil
}

// MoveMilestone drags a milestone to a destination column and position.
// Any status is reachable from any other. toIndex < 0 appends at the end
// of the destination column; otherwise milestones at or after toIndex are
// shifted down to make room. The whole move is one transaction.
func (s *Store) MoveMilestone(ctx context.Context, id, userID, toStatus string, toIndex int) (*Milestone, error) {
	if !milestoneStatuses[toStatus] {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, toStatus)
	}
	m, err := s.MilestoneByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if toIndex < 0 {
		var maxIndex int
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(order_index), 0) FROM milestones WHERE idea_id = ? AND status = ? AND id != ?`,
			m.IdeaID, toStatus, id).Scan(&maxIndex)
		if err != nil {
			return nil, fmt.Errorf("max order index: %w", err)
		}
		toIndex = maxIndex + 1
	} else {
		_, err := tx.ExecContext(ctx,
			`UPDATE milestones SET order_index = order_index + 1
			WHERE idea_id = ? AND status = ? AND order_index >= ? AND id != ?`,
			m.IdeaID, toStatus, toIndex, id)
		if err != nil {
			return nil, fmt.Errorf("shift column: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE milestones SET status = ?, order_index = ? WHERE id = ?`,
		toStatus, toIndex, id); err != nil {
		return nil, fmt.Errorf("move milestone: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	m.Status = toStatus
	m.OrderIndex = toIndex
	return m, nil
}
