package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// EnsureProfile creates the profile if it does not exist and refreshes its
// API token otherwise. Used at startup to sync configured users, the way
// admin accounts are synced from config.
func (s *Store) EnsureProfile(ctx context.Context, id, token string, username *string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM profiles WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check profile: %w", err)
	}
	// Empty tokens are stored as NULL so tokenless system profiles (the
	// webhook owner) do not collide on the unique index.
	if exists {
		_, err = s.db.ExecContext(ctx,
			`UPDATE profiles SET api_token = ? WHERE id = ?`, nilIfEmpty(token), id)
	} else {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO profiles (id, username, api_token, created_at) VALUES (?, ?, ?, ?)`,
			id, username, nilIfEmpty(token), time.Now().UTC())
	}
	if err != nil {
		return fmt.Errorf("ensure profile: %w", err)
	}
	return nil
}

// ProfileByToken resolves a bearer token to its profile.
func (s *Store) ProfileByToken(ctx context.Context, token string) (*Profile, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, full_name, avatar_url, api_token, created_at FROM profiles WHERE api_token = ?`,
		token)
	var p Profile
	err := row.Scan(&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.APIToken, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return &p, nil
}
