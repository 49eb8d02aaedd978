package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/10xdev4u-alt/plan/internal/events"
	"github.com/10xdev4u-alt/plan/internal/store"
)

type convertIdeaRequest struct {
	Name string `json:"name"`
}

// handleConvertIdea promotes an idea into a tracked project. With no name
// given the project takes the idea's title.
func (s *Server) handleConvertIdea(c echo.Context) error {
	p := currentProfile(c)
	ctx := c.Request().Context()

	var req convertIdeaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	idea, err := s.store.IdeaByID(ctx, c.Param("id"), p.ID)
	if err != nil {
		return s.storeError(c, err)
	}
	name := req.Name
	if name == "" {
		name = idea.Title
	}

	project, err := s.store.ConvertIdea(ctx, idea.ID, p.ID, name)
	if err != nil {
		return s.storeError(c, err)
	}

	if err := s.store.RecordActivity(ctx, p.ID, &idea.ID, store.ActionIdeaConverted,
		map[string]any{"project": project.Name}); err != nil {
		s.logger.Warn("record activity failed", zap.Error(err))
	}
	if updated, err := s.store.IdeaByID(ctx, idea.ID, p.ID); err == nil {
		if err := s.bus.PublishIdeaChange(events.Event{Type: events.TypeUpdate, Idea: *updated}); err != nil {
			s.logger.Warn("publish idea change failed", zap.Error(err))
		}
	}
	return c.JSON(http.StatusCreated, project)
}

func (s *Server) handleListProjects(c echo.Context) error {
	p := currentProfile(c)

	projects, err := s.store.ListProjects(c.Request().Context(), p.ID)
	if err != nil {
		return s.storeError(c, err)
	}
	if projects == nil {
		projects = []store.Project{}
	}
	return c.JSON(http.StatusOK, projects)
}

type updateProjectRequest struct {
	Name      *string `json:"name"`
	GithubURL *string `json:"github_url"`
	LiveURL   *string `json:"live_url"`
	Status    *string `json:"status"`
}

func (s *Server) handleUpdateProject(c echo.Context) error {
	p := currentProfile(c)

	var req updateProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	project, err := s.store.UpdateProject(c.Request().Context(), c.Param("id"), p.ID, store.ProjectUpdate{
		Name:      req.Name,
		GithubURL: req.GithubURL,
		LiveURL:   req.LiveURL,
		Status:    req.Status,
	})
	if err != nil {
		return s.storeError(c, err)
	}
	return c.JSON(http.StatusOK, project)
}

// handleShipProject marks a project completed and its idea shipped.
func (s *Server) handleShipProject(c echo.Context) error {
	p := currentProfile(c)
	ctx := c.Request().Context()

	project, err := s.store.ShipProject(ctx, c.Param("id"), p.ID)
	if err != nil {
		return s.storeError(c, err)
	}

	if err := s.store.RecordActivity(ctx, p.ID, &project.IdeaID, store.ActionProjectShipped,
		map[string]any{"project": project.Name}); err != nil {
		s.logger.Warn("record activity failed", zap.Error(err))
	}
	if idea, err := s.store.IdeaByID(ctx, project.IdeaID, p.ID); err == nil {
		if err := s.bus.PublishIdeaChange(events.Event{Type: events.TypeUpdate, Idea: *idea}); err != nil {
			s.logger.Warn("publish idea change failed", zap.Error(err))
		}
	}
	return c.JSON(http.StatusOK, project)
}
