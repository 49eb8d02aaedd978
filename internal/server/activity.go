package server

import (
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"

	"github.com/10xdev4u-alt/plan/internal/store"
)

// ActivityResponse is an activity entry with a humanized age for the feed.
type ActivityResponse struct {
	store.Activity
	Age string `json:"age"`
}

func (s *Server) handleActivity(c echo.Context) error {
	p := currentProfile(c)

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}

	entries, err := s.store.RecentActivity(c.Request().Context(), p.ID, limit)
	if err != nil {
		return s.storeError(c, err)
	}

	out := make([]ActivityResponse, 0, len(entries))
	for _, a := range entries {
		out = append(out, ActivityResponse{Activity: a, Age: humanize.Time(a.CreatedAt)})
	}
	return c.JSON(http.StatusOK, out)
}
