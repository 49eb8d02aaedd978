package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func makeSlug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

var projectStatuses = map[string]bool{
	ProjectActive:    true,
	ProjectPaused:    true,
	ProjectCompleted: true,
	ProjectAbandoned: true,
}

const projectColumns = `id, idea_id, name, slug, github_url, live_url, status, user_id, created_at`

// ConvertIdea promotes an idea into an active project and moves the idea
// to status building, in one transaction. The project slug is derived from
// the name.
func (s *Store) ConvertIdea(ctx context.Context, ideaID, userID, name string) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := s.IdeaByID(ctx, ideaID, userID); err != nil {
		return nil, err
	}

	p := &Project{
		ID:        uuid.NewString(),
		IdeaID:    ideaID,
		Name:      name,
		Slug:      makeSlug(name),
		Status:    ProjectActive,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO projects
		(id, idea_id, name, slug, github_url, live_url, status, user_id, created_at)
		VALUES (?, ?, ?, ?, NULL, NULL, ?, ?, ?)`,
		p.ID, p.IdeaID, p.Name, p.Slug, p.Status, p.UserID, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE ideas SET status = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		IdeaBuilding, time.Now().UTC(), ideaID, userID)
	if err != nil {
		return nil, fmt.Errorf("update idea status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return p, nil
}

// ProjectByID fetches a project scoped to its owner.
func (s *Store) ProjectByID(ctx context.Context, id, userID string) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ? AND user_id = ?`, id, userID)
	var p Project
	err := row.Scan(&p.ID, &p.IdeaID, &p.Name, &p.Slug, &p.GithubURL, &p.LiveURL,
		&p.Status, &p.UserID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return &p, nil
}

// ListProjects returns the owner's projects, newest first.
func (s *Store) ListProjects(ctx context.Context, userID string) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.IdeaID, &p.Name, &p.Slug, &p.GithubURL, &p.LiveURL,
			&p.Status, &p.UserID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ProjectUpdate carries a partial project edit. Nil fields are untouched;
// setting a URL to the empty string clears it.
type ProjectUpdate struct {
	Name      *string
	GithubURL *string
	LiveURL   *string
	Status    *string
}

// UpdateProject applies a partial edit from the edit modal.
func (s *Store) UpdateProject(ctx context.Context, id, userID string, u ProjectUpdate) (*Project, error) {
	p, err := s.ProjectByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if u.Name != nil {
		if *u.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		p.Name = *u.Name
	}
	if u.GithubURL != nil {
		p.GithubURL = nilIfEmpty(*u.GithubURL)
	}
	if u.LiveURL != nil {
		p.LiveURL = nilIfEmpty(*u.LiveURL)
	}
	if u.Status != nil {
		if !projectStatuses[*u.Status] {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *u.Status)
		}
		p.Status = *u.Status
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, github_url = ?, live_url = ?, status = ? WHERE id = ? AND user_id = ?`,
		p.Name, p.GithubURL, p.LiveURL, p.Status, id, userID)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

// ShipProject marks a project completed and its originating idea shipped,
// in one transaction.
func (s *Store) ShipProject(ctx context.Context, id, userID string) (*Project, error) {
	p, err := s.ProjectByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE projects SET status = ? WHERE id = ? AND user_id = ?`,
		ProjectCompleted, id, userID); err != nil {
		return nil, fmt.Errorf("complete project: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE ideas SET status = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		IdeaShipped, time.Now().UTC(), p.IdeaID, userID); err != nil {
		return nil, fmt.Errorf("ship idea: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	p.Status = ProjectCompleted
	return p, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
