package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// POST /api/storybooks/:id/narration/generate
func (s *Server) handleNarrateAll(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book := s.bookByID(c.Param("id"))
	if book == nil {
		return echo.NewHTTPError(http.StatusNotFound, "storybook not found")
	}

	summary := s.Studio.NarrateAll(s.Ctx, book, s.Settings)
	if err := s.persist(); err != nil {
		return persistError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

// POST /api/storybooks/:id/pages/:num/narration
func (s *Server) handleNarratePage(c echo.Context) error {
	num, err := strconv.Atoi(c.Param("num"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid page number")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book := s.bookByID(c.Param("id"))
	if book == nil {
		return echo.NewHTTPError(http.StatusNotFound, "storybook not found")
	}

	if err := s.Studio.Narrate(c.Request().Context(), book, num, s.Settings); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	if err := s.persist(); err != nil {
		return persistError(err)
	}
	return c.JSON(http.StatusOK, book.PageByNumber(num))
}
