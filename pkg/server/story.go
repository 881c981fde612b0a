package server

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"fable/pkg/schema"
	"fable/pkg/store"
	"fable/pkg/utils"
)

// POST /api/storybooks
func (s *Server) handleCreateBook(c echo.Context) error {
	var req schema.StoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	log.Infof("Generating storybook about %q", utils.LimitStr(req.Topic, 64))

	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.Studio.ComposeStory(c.Request().Context(), req, s.Settings)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	s.Books = append(s.Books, *book)
	if err := s.persist(); err != nil {
		return persistError(err)
	}
	return c.JSON(http.StatusCreated, book)
}

// DELETE /api/storybooks/:id
func (s *Server) handleDeleteBook(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")
	for i := range s.Books {
		if s.Books[i].ID == id {
			s.Books = append(s.Books[:i], s.Books[i+1:]...)
			if err := s.persist(); err != nil {
				return persistError(err)
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "storybook not found")
}

// POST /api/storybooks/:id/quiz/generate
func (s *Server) handleGenerateQuiz(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book := s.bookByID(c.Param("id"))
	if book == nil {
		return echo.NewHTTPError(http.StatusNotFound, "storybook not found")
	}
	if err := s.Studio.ComposeQuizzes(c.Request().Context(), book, s.Settings); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	if err := s.persist(); err != nil {
		return persistError(err)
	}
	return c.JSON(http.StatusOK, book.Quizzes)
}

// PUT /api/settings
func (s *Server) handlePutSettings(c echo.Context) error {
	var settings schema.Settings
	if err := c.Bind(&settings); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.Settings = settings
	if err := s.Store.SaveSettings(settings); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, settings)
}

// persistError translates store failures: a full snapshot asks the user to
// clear space, everything else is a plain server error.
func persistError(err error) error {
	if errors.Is(err, store.ErrPersistence) {
		return echo.NewHTTPError(http.StatusInsufficientStorage, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
