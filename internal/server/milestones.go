package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/10xdev4u-alt/plan/internal/board"
	"github.com/10xdev4u-alt/plan/internal/store"
)

type createMilestoneRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
}

func (s *Server) handleCreateMilestone(c echo.Context) error {
	p := currentProfile(c)

	var req createMilestoneRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	m, err := s.store.CreateMilestone(c.Request().Context(), c.Param("id"), p.ID,
		req.Title, req.Description, req.DueDate)
	if err != nil {
		return s.storeError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// BoardColumn is one kanban column in display order.
type BoardColumn struct {
	Status     string            `json:"status"`
	Label      string            `json:"label"`
	Milestones []store.Milestone `json:"milestones"`
}

// handleListMilestones returns an idea's milestones grouped into board
// columns.
func (s *Server) handleListMilestones(c echo.Context) error {
	p := currentProfile(c)

	milestones, err := s.store.MilestonesByIdea(c.Request().Context(), c.Param("id"), p.ID)
	if err != nil {
		return s.storeError(c, err)
	}

	cols := board.Group(milestones)
	out := make([]BoardColumn, 0, len(board.Statuses()))
	for _, status := range board.Statuses() {
		ms := cols[status]
		if ms == nil {
			ms = []store.Milestone{}
		}
		out = append(out, BoardColumn{Status: status, Label: board.Label(status), Milestones: ms})
	}
	return c.JSON(http.StatusOK, out)
}

type moveMilestoneRequest struct {
	ToStatus string `json:"to_status"`
	ToIndex  *int   `json:"to_index"`
}

// handleMoveMilestone drops a milestone into a column. A missing index
// appends at the end of the target column.
func (s *Server) handleMoveMilestone(c echo.Context) error {
	p := currentProfile(c)
	ctx := c.Request().Context()

	var req moveMilestoneRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	current, err := s.store.MilestoneByID(ctx, c.Param("id"), p.ID)
	if err != nil {
		return s.storeError(c, err)
	}
	if !board.CanMove(current.Status, req.ToStatus) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid board transition")
	}

	toIndex := -1
	if req.ToIndex != nil {
		toIndex = *req.ToIndex
	}
	m, err := s.store.MoveMilestone(ctx, current.ID, p.ID, req.ToStatus, toIndex)
	if err != nil {
		return s.storeError(c, err)
	}

	if err := s.store.RecordActivity(ctx, p.ID, &m.IdeaID, store.ActionMilestoneMoved,
		map[string]any{"milestone": m.Title, "status": m.Status}); err != nil {
		s.logger.Warn("record activity failed", zap.Error(err))
	}
	return c.JSON(http.StatusOK, m)
}
