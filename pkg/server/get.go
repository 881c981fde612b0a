package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fable/pkg/schema"
)

func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "Fable Storybook API",
		"status":  "ok",
	})
}

func (s *Server) handleListBooks(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Books == nil {
		return c.JSON(http.StatusOK, []schema.Storybook{})
	}
	return c.JSON(http.StatusOK, s.Books)
}

func (s *Server) handleGetBook(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book := s.bookByID(c.Param("id"))
	if book == nil {
		return echo.NewHTTPError(http.StatusNotFound, "storybook not found")
	}
	return c.JSON(http.StatusOK, book)
}

func (s *Server) handleGetSettings(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.Settings)
}
