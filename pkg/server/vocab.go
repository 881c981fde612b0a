package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// POST /api/storybooks/:id/vocabulary/generate
func (s *Server) handleGenerateVocabulary(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book := s.bookByID(c.Param("id"))
	if book == nil {
		return echo.NewHTTPError(http.StatusNotFound, "storybook not found")
	}

	summary := s.Studio.AllVocabularyCards(s.Ctx, book, s.Settings)
	if err := s.persist(); err != nil {
		return persistError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

type vocabReq struct {
	Word string `json:"word"`
}

// POST /api/storybooks/:id/vocabulary
func (s *Server) handleVocabularyCard(c echo.Context) error {
	var req vocabReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	req.Word = strings.TrimSpace(req.Word)
	if req.Word == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "word is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book := s.bookByID(c.Param("id"))
	if book == nil {
		return echo.NewHTTPError(http.StatusNotFound, "storybook not found")
	}

	card, err := s.Studio.VocabularyCard(c.Request().Context(), book, req.Word, s.Settings)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	if err := s.persist(); err != nil {
		return persistError(err)
	}
	return c.JSON(http.StatusOK, card)
}
