package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/10xdev4u-alt/plan/internal/store"
)

type createTimeLogRequest struct {
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Description *string    `json:"description"`
}

func (s *Server) handleCreateTimeLog(c echo.Context) error {
	p := currentProfile(c)
	ctx := c.Request().Context()

	var req createTimeLogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	log, err := s.store.CreateTimeLog(ctx, store.NewTimeLog{
		ProjectID:   c.Param("id"),
		UserID:      p.ID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
	})
	if err != nil {
		return s.storeError(c, err)
	}

	if err := s.store.RecordActivity(ctx, p.ID, nil, store.ActionTimeLogged,
		map[string]any{"project_id": log.ProjectID}); err != nil {
		s.logger.Warn("record activity failed", zap.Error(err))
	}
	return c.JSON(http.StatusCreated, log)
}

// TimeLogsResponse lists a project's logs newest-first with the running
// total. Ongoing logs count up to now, so the total grows between reads.
type TimeLogsResponse struct {
	Logs         []store.TimeLog `json:"logs"`
	TotalMinutes int             `json:"total_minutes"`
}

func (s *Server) handleListTimeLogs(c echo.Context) error {
	p := currentProfile(c)
	ctx := c.Request().Context()

	logs, err := s.store.TimeLogsByProject(ctx, c.Param("id"), p.ID)
	if err != nil {
		return s.storeError(c, err)
	}
	total := store.SumLoggedTime(logs, time.Now().UTC())
	if logs == nil {
		logs = []store.TimeLog{}
	}
	return c.JSON(http.StatusOK, TimeLogsResponse{
		Logs:         logs,
		TotalMinutes: int(total.Minutes()),
	})
}
