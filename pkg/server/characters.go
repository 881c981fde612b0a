package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// POST /api/storybooks/:id/characters/generate
func (s *Server) handleGenerateReferences(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book := s.bookByID(c.Param("id"))
	if book == nil {
		return echo.NewHTTPError(http.StatusNotFound, "storybook not found")
	}

	summary := s.Studio.AllCharacterReferences(s.Ctx, book, s.Settings)
	if err := s.persist(); err != nil {
		return persistError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

// POST /api/storybooks/:id/characters/:name/reference
func (s *Server) handleGenerateReference(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book := s.bookByID(c.Param("id"))
	if book == nil {
		return echo.NewHTTPError(http.StatusNotFound, "storybook not found")
	}

	if err := s.Studio.CharacterReference(c.Request().Context(), book, c.Param("name"), s.Settings); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	if err := s.persist(); err != nil {
		return persistError(err)
	}
	return c.JSON(http.StatusOK, book.Characters)
}
