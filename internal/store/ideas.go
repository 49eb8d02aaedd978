package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/10xdev4u-alt/plan/internal/scoring"
)

// ErrInvalidInput is returned for validation failures caught before any
// row is touched.
var ErrInvalidInput = errors.New("store: invalid input")

var ideaCategories = map[string]bool{
	CategoryTech:     true,
	CategoryBusiness: true,
	CategoryContent:  true,
	CategoryLife:     true,
	CategoryRandom:   true,
}

var ideaStatuses = map[string]bool{
	IdeaCaptured:   true,
	IdeaValidating: true,
	IdeaValidated:  true,
	IdeaPlanning:   true,
	IdeaBuilding:   true,
	IdeaShipped:    true,
	IdeaArchived:   true,
}

// NewIdea is the payload for CreateIdea. Absent scores stay NULL.
type NewIdea struct {
	Title           string
	Description     string
	Category        string
	ImpactScore     *int
	EffortScore     *int
	ExcitementScore *int
	Tags            []string
	Mood            string
	UserID          string
}

const ideaColumns = `id, title, description, category, status,
	impact_score, effort_score, excitement_score, priority_score,
	tags, mood, user_id, created_at, updated_at`

// CreateIdea inserts a new idea with status captured. The priority score is
// derived immediately when all three sub-scores are supplied.
func (s *Store) CreateIdea(ctx context.Context, n NewIdea) (*Idea, error) {
	if n.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if n.Category == "" {
		n.Category = CategoryRandom
	}
	if !ideaCategories[n.Category] {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, n.Category)
	}
	for _, sc := range []*int{n.ImpactScore, n.EffortScore, n.ExcitementScore} {
		if sc != nil && !scoring.ValidScore(*sc) {
			return nil, fmt.Errorf("%w: scores must be between %d and %d", ErrInvalidInput, scoring.MinScore, scoring.MaxScore)
		}
	}

	priority := derivePriority(n.ImpactScore, n.EffortScore, n.ExcitementScore)
	if n.Tags == nil {
		n.Tags = []string{}
	}
	tags, err := json.Marshal(n.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	now := time.Now().UTC()
	idea := &Idea{
		ID:              uuid.NewString(),
		Title:           n.Title,
		Description:     n.Description,
		Category:        n.Category,
		Status:          IdeaCaptured,
		ImpactScore:     n.ImpactScore,
		EffortScore:     n.EffortScore,
		ExcitementScore: n.ExcitementScore,
		PriorityScore:   priority,
		Tags:            n.Tags,
		Mood:            n.Mood,
		UserID:          n.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO ideas
		(id, title, description, category, status, impact_score, effort_score, excitement_score, priority_score, tags, mood, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		idea.ID, idea.Title, idea.Description, idea.Category, idea.Status,
		idea.ImpactScore, idea.EffortScore, idea.ExcitementScore, idea.PriorityScore,
		string(tags), idea.Mood, idea.UserID, idea.CreatedAt, idea.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert idea: %w", err)
	}
	return idea, nil
}

// IdeaByID fetches a single idea scoped to its owner.
func (s *Store) IdeaByID(ctx context.Context, id, userID string) (*Idea, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+ideaColumns+` FROM ideas WHERE id = ? AND user_id = ?`, id, userID)
	return scanIdea(row)
}

// ListIdeas returns the owner's ideas ordered by priority descending with
// unscored ideas last, then newest first. Filter is "" or "all" for
// everything, "high-priority" for priority > 15, or an idea status.
func (s *Store) ListIdeas(ctx context.Context, userID, filter string) ([]Idea, error) {
	query := `SELECT ` + ideaColumns + ` FROM ideas WHERE user_id = ?`
	args := []any{userID}

	switch filter {
	case "", "all":
	case "high-priority":
		query += ` AND priority_score > 15`
	default:
		if !ideaStatuses[filter] {
			return nil, fmt.Errorf("%w: unknown filter %q", ErrInvalidInput, filter)
		}
		query += ` AND status = ?`
		args = append(args, filter)
	}
	query += ` ORDER BY priority_score IS NULL, priority_score DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	defer rows.Close()

	var ideas []Idea
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, *idea)
	}
	return ideas, rows.Err()
}

// ScoreUpdate carries a partial sub-score mutation. Nil fields are left
// untouched.
type ScoreUpdate struct {
	ImpactScore     *int
	EffortScore     *int
	ExcitementScore *int
}

// UpdateIdeaScores applies a partial score update and recomputes the
// priority score, keeping the derived-value invariant: priority is set
// exactly when all three sub-scores are present.
func (s *Store) UpdateIdeaScores(ctx context.Context, id, userID string, u ScoreUpdate) (*Idea, error) {
	for _, sc := range []*int{u.ImpactScore, u.EffortScore, u.ExcitementScore} {
		if sc != nil && !scoring.ValidScore(*sc) {
			return nil, fmt.Errorf("%w: scores must be between %d and %d", ErrInvalidInput, scoring.MinScore, scoring.MaxScore)
		}
	}

	idea, err := s.IdeaByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if u.ImpactScore != nil {
		idea.ImpactScore = u.ImpactScore
	}
	if u.EffortScore != nil {
		idea.EffortScore = u.EffortScore
	}
	if u.ExcitementScore != nil {
		idea.ExcitementScore = u.ExcitementScore
	}
	idea.PriorityScore = derivePriority(idea.ImpactScore, idea.EffortScore, idea.ExcitementScore)
	idea.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `UPDATE ideas
		SET impact_score = ?, effort_score = ?, excitement_score = ?, priority_score = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		idea.ImpactScore, idea.EffortScore, idea.ExcitementScore, idea.PriorityScore,
		idea.UpdatedAt, id, userID)
	if err != nil {
		return nil, fmt.Errorf("update scores: %w", err)
	}
	return idea, nil
}

// UpdateIdeaStatus moves an idea along its lifecycle.
func (s *Store) UpdateIdeaStatus(ctx context.Context, id, userID, status string) (*Idea, error) {
	if !ideaStatuses[status] {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE ideas SET status = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		status, time.Now().UTC(), id, userID)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.IdeaByID(ctx, id, userID)
}

func derivePriority(impact, effort, excitement *int) *float64 {
	if impact == nil || effort == nil || excitement == nil {
		return nil
	}
	p := scoring.Priority(*impact, *effort, *excitement)
	return &p
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdea(row rowScanner) (*Idea, error) {
	var idea Idea
	var tags string
	err := row.Scan(&idea.ID, &idea.Title, &idea.Description, &idea.Category, &idea.Status,
		&idea.ImpactScore, &idea.EffortScore, &idea.ExcitementScore, &idea.PriorityScore,
		&tags, &idea.Mood, &idea.UserID, &idea.CreatedAt, &idea.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan idea: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &idea.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return &idea, nil
}
