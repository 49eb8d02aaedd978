package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/10xdev4u-alt/plan/internal/events"
	"github.com/10xdev4u-alt/plan/internal/scoring"
	"github.com/10xdev4u-alt/plan/internal/store"
)

// maxTitleLen caps titles derived from free-form captured text.
const maxTitleLen = 255

// defaultScore pre-fills the three sub-scores on manual capture, matching
// the capture modal's slider defaults.
const defaultScore = 5

// IdeaResponse is an idea decorated with its display classifications.
type IdeaResponse struct {
	store.Idea
	Recommendation scoring.Recommendation `json:"recommendation"`
	Badge          scoring.Severity       `json:"badge"`
}

func decorateIdea(idea store.Idea) IdeaResponse {
	return IdeaResponse{
		Idea:           idea,
		Recommendation: scoring.Recommend(idea.PriorityScore),
		Badge:          scoring.Badge(idea.PriorityScore),
	}
}

type createIdeaRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	ImpactScore     *int     `json:"impact_score"`
	EffortScore     *int     `json:"effort_score"`
	ExcitementScore *int     `json:"excitement_score"`
	Tags            []string `json:"tags"`
	Mood            string   `json:"mood"`
}

func (s *Server) handleCreateIdea(c echo.Context) error {
	p := currentProfile(c)

	var req createIdeaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Title) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if req.Category == "" {
		req.Category = store.CategoryTech
	}
	if req.ImpactScore == nil {
		req.ImpactScore = intPtr(defaultScore)
	}
	if req.EffortScore == nil {
		req.EffortScore = intPtr(defaultScore)
	}
	if req.ExcitementScore == nil {
		req.ExcitementScore = intPtr(defaultScore)
	}

	idea, err := s.store.CreateIdea(c.Request().Context(), store.NewIdea{
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		Category:        req.Category,
		ImpactScore:     req.ImpactScore,
		EffortScore:     req.EffortScore,
		ExcitementScore: req.ExcitementScore,
		Tags:            req.Tags,
		Mood:            req.Mood,
		UserID:          p.ID,
	})
	if err != nil {
		return s.storeError(c, err)
	}

	s.afterCapture(c, idea, sourceManual)
	return c.JSON(http.StatusCreated, decorateIdea(*idea))
}

type captureTranscriptRequest struct {
	Transcript string `json:"transcript"`
}

// handleCaptureTranscript turns a voice transcript into a captured idea:
// the first line becomes the title, the whole text the description.
func (s *Server) handleCaptureTranscript(c echo.Context) error {
	p := currentProfile(c)

	var req captureTranscriptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	text := strings.TrimSpace(req.Transcript)
	if text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "transcript is required")
	}

	idea, err := s.store.CreateIdea(c.Request().Context(), store.NewIdea{
		Title:       titleFromText(text),
		Description: text,
		Category:    store.CategoryRandom,
		UserID:      p.ID,
	})
	if err != nil {
		return s.storeError(c, err)
	}

	s.afterCapture(c, idea, sourceVoice)
	return c.JSON(http.StatusCreated, decorateIdea(*idea))
}

// afterCapture handles the bookkeeping every capture path shares: the
// activity entry, the change event, and the capture counter. None of it
// affects the response.
func (s *Server) afterCapture(c echo.Context, idea *store.Idea, source string) {
	ctx := c.Request().Context()
	if err := s.store.RecordActivity(ctx, idea.UserID, &idea.ID, store.ActionIdeaCaptured,
		map[string]any{"title": idea.Title, "source": source}); err != nil {
		s.logger.Warn("record activity failed", zap.Error(err))
	}
	if err := s.bus.PublishIdeaChange(events.Event{Type: events.TypeInsert, Idea: *idea}); err != nil {
		s.logger.Warn("publish idea change failed", zap.Error(err))
	}
	s.metrics.ideasCaptured.WithLabelValues(source).Inc()
}

func (s *Server) handleListIdeas(c echo.Context) error {
	p := currentProfile(c)

	ideas, err := s.store.ListIdeas(c.Request().Context(), p.ID, c.QueryParam("filter"))
	if err != nil {
		return s.storeError(c, err)
	}

	out := make([]IdeaResponse, 0, len(ideas))
	for _, idea := range ideas {
		out = append(out, decorateIdea(idea))
	}
	return c.JSON(http.StatusOK, out)
}

// IdeaDetailResponse is the idea detail view: the decorated idea plus its
// milestones in board order.
type IdeaDetailResponse struct {
	IdeaResponse
	Milestones []store.Milestone `json:"milestones"`
}

func (s *Server) handleGetIdea(c echo.Context) error {
	p := currentProfile(c)
	ctx := c.Request().Context()

	idea, err := s.store.IdeaByID(ctx, c.Param("id"), p.ID)
	if err != nil {
		return s.storeError(c, err)
	}
	milestones, err := s.store.MilestonesByIdea(ctx, idea.ID, p.ID)
	if err != nil {
		return s.storeError(c, err)
	}
	return c.JSON(http.StatusOK, IdeaDetailResponse{
		IdeaResponse: decorateIdea(*idea),
		Milestones:   milestones,
	})
}

type updateScoresRequest struct {
	ImpactScore     *int `json:"impact_score"`
	EffortScore     *int `json:"effort_score"`
	ExcitementScore *int `json:"excitement_score"`
}

func (s *Server) handleUpdateScores(c echo.Context) error {
	p := currentProfile(c)
	ctx := c.Request().Context()

	var req updateScoresRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	idea, err := s.store.UpdateIdeaScores(ctx, c.Param("id"), p.ID, store.ScoreUpdate{
		ImpactScore:     req.ImpactScore,
		EffortScore:     req.EffortScore,
		ExcitementScore: req.ExcitementScore,
	})
	if err != nil {
		return s.storeError(c, err)
	}

	meta := map[string]any{}
	if idea.PriorityScore != nil {
		meta["priority_score"] = *idea.PriorityScore
	}
	if err := s.store.RecordActivity(ctx, p.ID, &idea.ID, store.ActionScoresUpdated, meta); err != nil {
		s.logger.Warn("record activity failed", zap.Error(err))
	}
	if err := s.bus.PublishIdeaChange(events.Event{Type: events.TypeUpdate, Idea: *idea}); err != nil {
		s.logger.Warn("publish idea change failed", zap.Error(err))
	}
	return c.JSON(http.StatusOK, decorateIdea(*idea))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateIdeaStatus(c echo.Context) error {
	p := currentProfile(c)
	ctx := c.Request().Context()

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	idea, err := s.store.UpdateIdeaStatus(ctx, c.Param("id"), p.ID, req.Status)
	if err != nil {
		return s.storeError(c, err)
	}

	if err := s.store.RecordActivity(ctx, p.ID, &idea.ID, store.ActionStatusChanged,
		map[string]any{"status": idea.Status}); err != nil {
		s.logger.Warn("record activity failed", zap.Error(err))
	}
	if err := s.bus.PublishIdeaChange(events.Event{Type: events.TypeUpdate, Idea: *idea}); err != nil {
		s.logger.Warn("publish idea change failed", zap.Error(err))
	}
	return c.JSON(http.StatusOK, decorateIdea(*idea))
}

// handleIdeaStream bridges the change bus onto a server-sent-events
// response. Only events for the caller's own ideas are forwarded.
func (s *Server) handleIdeaStream(c echo.Context) error {
	p := currentProfile(c)

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	ch := make(chan events.Event, 16)
	sub, err := s.bus.SubscribeIdeaChanges(func(ev events.Event) {
		if ev.Idea.UserID != p.ID {
			return
		}
		select {
		case ch <- ev:
		default:
			// Slow consumer; the client refetches on the next event.
		}
	})
	if err != nil {
		return s.storeError(c, err)
	}
	defer func(sub *nats.Subscription) {
		if err := sub.Unsubscribe(); err != nil {
			s.logger.Warn("unsubscribe failed", zap.Error(err))
		}
	}(sub)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-ch:
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Warn("marshal stream event failed", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

// titleFromText derives an idea title from captured free text: the first
// line, capped at 255 characters.
func titleFromText(text string) string {
	title, _, _ := strings.Cut(text, "\n")
	title = strings.TrimSpace(title)
	if r := []rune(title); len(r) > maxTitleLen {
		title = string(r[:maxTitleLen])
	}
	return title
}

func intPtr(v int) *int { return &v }
