package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/10xdev4u-alt/plan/internal/events"
	"github.com/10xdev4u-alt/plan/internal/store"
	"github.com/10xdev4u-alt/plan/internal/telegram"
)

const (
	testUserID  = "11111111-1111-1111-1111-111111111111"
	testToken   = "test-token"
	testOwnerID = "22222222-2222-2222-2222-222222222222"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "plan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	require.NoError(t, st.EnsureProfile(ctx, testUserID, testToken, nil))
	require.NoError(t, st.EnsureProfile(ctx, testOwnerID, "", nil))

	bus, err := events.NewBus(zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(bus.Close)

	srv, err := NewServer(st, bus, telegram.NewClient(""), zap.NewNop(), &Config{
		WebhookOwnerID: testOwnerID,
	})
	require.NoError(t, err)
	return srv, st
}

func doJSON(t *testing.T, srv *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestNewServerValidation(t *testing.T) {
	_, err := NewServer(nil, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
}

func TestRequestMetricsCollapseUnmatchedPaths(t *testing.T) {
	srv, _ := newTestServer(t)

	// Distinct bogus paths must land on one shared label, not one series
	// per scanned path.
	for _, path := range []string{"/no/such/route", "/another/bogus/one"} {
		rec := doJSON(t, srv, http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	count := testutil.ToFloat64(srv.metrics.httpRequests.WithLabelValues(http.MethodGet, "unmatched", "404"))
	assert.Equal(t, 2.0, count)
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/ideas", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/ideas", nil, "wrong-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateIdeaDefaults(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/ideas",
		map[string]any{"title": "Build a birdhouse"}, testToken)
	require.Equal(t, http.StatusCreated, rec.Code)

	var idea IdeaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &idea))
	assert.Equal(t, "Build a birdhouse", idea.Title)
	assert.Equal(t, store.CategoryTech, idea.Category)
	assert.Equal(t, store.IdeaCaptured, idea.Status)
	require.NotNil(t, idea.PriorityScore)
	assert.InDelta(t, 10.0, *idea.PriorityScore, 1e-9)
	assert.Equal(t, "strong-candidate", idea.Recommendation.Tier)
}

func TestCreateIdeaRequiresTitle(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/ideas",
		map[string]any{"description": "no title"}, testToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCaptureTranscript(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/ideas/capture",
		map[string]any{"transcript": "Buy milk\nfor the week"}, testToken)
	require.Equal(t, http.StatusCreated, rec.Code)

	var idea IdeaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &idea))
	assert.Equal(t, "Buy milk", idea.Title)
	assert.Equal(t, "Buy milk\nfor the week", idea.Description)
	assert.Equal(t, store.CategoryRandom, idea.Category)
	assert.Nil(t, idea.PriorityScore)
	assert.Equal(t, "low-priority", idea.Recommendation.Tier)
	assert.Equal(t, "neutral", string(idea.Badge))
}

func TestListIdeasDecorated(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, title := range []string{"first", "second"} {
		rec := doJSON(t, srv, http.MethodPost, "/api/v1/ideas",
			map[string]any{"title": title}, testToken)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/ideas", nil, testToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var ideas []IdeaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ideas))
	require.Len(t, ideas, 2)
	for _, idea := range ideas {
		assert.NotEmpty(t, idea.Recommendation.Tier)
		assert.NotEmpty(t, string(idea.Badge))
	}
}

func TestUpdateScoresAndStatus(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/ideas",
		map[string]any{"title": "score me"}, testToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created IdeaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, srv, http.MethodPatch, "/api/v1/ideas/"+created.ID+"/scores",
		map[string]any{"impact_score": 10, "effort_score": 1, "excitement_score": 10}, testToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated IdeaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.NotNil(t, updated.PriorityScore)
	assert.InDelta(t, 29.0, *updated.PriorityScore, 1e-9)
	assert.Equal(t, "must-build", updated.Recommendation.Tier)
	assert.Equal(t, "high", string(updated.Badge))

	rec = doJSON(t, srv, http.MethodPatch, "/api/v1/ideas/"+created.ID+"/status",
		map[string]any{"status": store.IdeaValidating}, testToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPatch, "/api/v1/ideas/"+created.ID+"/status",
		map[string]any{"status": "bogus"}, testToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetIdeaNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/ideas/nope", nil, testToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMilestoneBoardFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/ideas",
		map[string]any{"title": "kanban idea"}, testToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	var idea IdeaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &idea))

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/ideas/"+idea.ID+"/milestones",
		map[string]any{"title": "design"}, testToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	var m store.Milestone
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, store.MilestonePending, m.Status)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/ideas/"+idea.ID+"/milestones", nil, testToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var cols []BoardColumn
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cols))
	require.Len(t, cols, 4)
	assert.Equal(t, store.MilestonePending, cols[0].Status)
	assert.Equal(t, "Pending", cols[0].Label)
	require.Len(t, cols[0].Milestones, 1)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/milestones/"+m.ID+"/move",
		map[string]any{"to_status": store.MilestoneInProgress}, testToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var moved store.Milestone
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &moved))
	assert.Equal(t, store.MilestoneInProgress, moved.Status)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/milestones/"+m.ID+"/move",
		map[string]any{"to_status": "nowhere"}, testToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConvertAndShipFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/ideas",
		map[string]any{"title": "Side Project"}, testToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	var idea IdeaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &idea))

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/ideas/"+idea.ID+"/convert",
		map[string]any{}, testToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	var project store.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))
	assert.Equal(t, "Side Project", project.Name)
	assert.Equal(t, "side-project", project.Slug)
	assert.Equal(t, store.ProjectActive, project.Status)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/ideas/"+idea.ID, nil, testToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail IdeaDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, store.IdeaBuilding, detail.Status)

	rec = doJSON(t, srv, http.MethodPatch, "/api/v1/projects/"+project.ID,
		map[string]any{"github_url": "https://github.com/example/side-project"}, testToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/projects/"+project.ID+"/ship", nil, testToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var shipped store.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &shipped))
	assert.Equal(t, store.ProjectCompleted, shipped.Status)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/ideas/"+idea.ID, nil, testToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, store.IdeaShipped, detail.Status)
}

func TestTimeLogs(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/ideas",
		map[string]any{"title": "timed"}, testToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	var idea IdeaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &idea))

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/ideas/"+idea.ID+"/convert", map[string]any{}, testToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	var project store.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/projects/"+project.ID+"/timelogs",
		map[string]any{
			"start_time": "2026-08-30T10:00:00Z",
			"end_time":   "2026-08-30T11:30:00Z",
		}, testToken)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/projects/"+project.ID+"/timelogs",
		map[string]any{
			"start_time": "2026-08-30T12:00:00Z",
			"end_time":   "2026-08-30T11:00:00Z",
		}, testToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/projects/"+project.ID+"/timelogs", nil, testToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var logs TimeLogsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	require.Len(t, logs.Logs, 1)
	assert.Equal(t, 90, logs.TotalMinutes)
}

func TestActivityFeed(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/ideas",
		map[string]any{"title": "tracked"}, testToken)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/activity", nil, testToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []ActivityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.NotEmpty(t, entries)
	assert.Equal(t, store.ActionIdeaCaptured, entries[0].Action)
	assert.NotEmpty(t, entries[0].Age)
}
