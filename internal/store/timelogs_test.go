package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProject(t *testing.T, s *Store) *Project {
	t.Helper()
	ctx := context.Background()
	idea, err := s.CreateIdea(ctx, NewIdea{Title: "timed", UserID: testUser})
	require.NoError(t, err)
	p, err := s.ConvertIdea(ctx, idea.ID, testUser, idea.Title)
	require.NoError(t, err)
	return p
}

func TestCreateTimeLogValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s)

	_, err := s.CreateTimeLog(ctx, NewTimeLog{ProjectID: p.ID, UserID: testUser})
	assert.ErrorIs(t, err, ErrInvalidInput)

	start := time.Now().UTC()
	end := start.Add(-time.Hour)
	_, err = s.CreateTimeLog(ctx, NewTimeLog{
		ProjectID: p.ID,
		UserID:    testUser,
		StartTime: start,
		EndTime:   &end,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTotalLoggedTimeOngoingIncreases(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s)

	now := time.Now().UTC().Truncate(time.Second)
	_, err := s.CreateTimeLog(ctx, NewTimeLog{
		ProjectID: p.ID,
		UserID:    testUser,
		StartTime: now.Add(-30 * time.Minute),
	})
	require.NoError(t, err)

	first, err := s.TotalLoggedTime(ctx, p.ID, testUser, now)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, first)

	// An open log counts up to the observation time, so the total grows
	// strictly between reads.
	second, err := s.TotalLoggedTime(ctx, p.ID, testUser, now.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 35*time.Minute, second)
	assert.Greater(t, second, first)
}

func TestTotalLoggedTimeClampsNegativeInterval(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s)

	// A reversed interval written behind the validation's back must not
	// drag the aggregate below zero.
	now := time.Now().UTC().Truncate(time.Second)
	_, err := s.db.ExecContext(ctx, `INSERT INTO time_logs
		(id, project_id, user_id, start_time, end_time, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, NULL, ?, ?)`,
		uuid.NewString(), p.ID, testUser, now, now.Add(-2*time.Hour), now, now)
	require.NoError(t, err)

	total, err := s.TotalLoggedTime(ctx, p.ID, testUser, now)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), total)

	// A valid closed log alongside it still counts in full.
	end := now
	start := now.Add(-45 * time.Minute)
	_, err = s.CreateTimeLog(ctx, NewTimeLog{
		ProjectID: p.ID,
		UserID:    testUser,
		StartTime: start,
		EndTime:   &end,
	})
	require.NoError(t, err)

	total, err = s.TotalLoggedTime(ctx, p.ID, testUser, now)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, total)
}
