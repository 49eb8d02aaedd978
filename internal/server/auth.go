package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/10xdev4u-alt/plan/internal/store"
)

const profileKey = "profile"

// requireProfile resolves the bearer token to a profile and stows it in
// the request context. Requests without a valid token get 401, the API
// analog of the login redirect.
func (s *Server) requireProfile(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}

		p, err := s.store.ProfileByToken(c.Request().Context(), token)
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		if err != nil {
			return s.storeError(c, err)
		}
		c.Set(profileKey, p)
		return next(c)
	}
}

func currentProfile(c echo.Context) *store.Profile {
	if p, ok := c.Get(profileKey).(*store.Profile); ok {
		return p
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

func isInvalidInput(err error) bool {
	return errors.Is(err, store.ErrInvalidInput)
}
