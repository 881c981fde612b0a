package server

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"fable/pkg/schema"
	"fable/pkg/studio"
)

// POST /api/storybooks/:id/illustrations/generate?mode=parallel|sequential&confirm=
// With confirm=false only the duration estimate is returned, so the UI can
// ask the user before starting a long batch.
func (s *Server) handleIllustrateAll(c echo.Context) error {
	mode := studio.BatchMode(c.QueryParam("mode"))
	if mode != "" && mode != studio.Parallel && mode != studio.Sequential {
		return echo.NewHTTPError(http.StatusBadRequest, "mode must be parallel or sequential")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// No explicit mode: fall back to the saved preference.
	if mode == "" {
		mode = studio.Parallel
		if s.Settings.SequentialMode {
			mode = studio.Sequential
		}
	}

	book := s.bookByID(c.Param("id"))
	if book == nil {
		return echo.NewHTTPError(http.StatusNotFound, "storybook not found")
	}

	missing := studio.MissingIllustrations(book)
	estimate := studio.Estimate(mode, missing)
	if c.QueryParam("confirm") == "false" {
		return c.JSON(http.StatusOK, map[string]any{
			"items":             missing,
			"estimated_seconds": int(estimate.Seconds()),
		})
	}

	log.Infof("Illustrating %d pages of %q (%s, est. %s)", missing, book.Title, mode, estimate)

	summary := s.Studio.IllustrateAll(s.Ctx, book, mode, s.Settings, func(b *schema.Storybook) error {
		// Mid-batch persistence keeps partial progress; quota errors are
		// logged here and surfaced by the final save below.
		if err := s.persist(); err != nil {
			log.Warnf("mid-batch persist failed: %v", err)
			return err
		}
		return nil
	})

	if err := s.persist(); err != nil {
		return persistError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

type illustrateReq struct {
	EditNote   string   `json:"edit_note,omitempty"`
	References []string `json:"references,omitempty"`
}

// POST /api/storybooks/:id/pages/:num/illustration
func (s *Server) handleIllustratePage(c echo.Context) error {
	num, err := strconv.Atoi(c.Param("num"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid page number")
	}
	var req illustrateReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book := s.bookByID(c.Param("id"))
	if book == nil {
		return echo.NewHTTPError(http.StatusNotFound, "storybook not found")
	}
	page := book.PageByNumber(num)
	if page == nil {
		return echo.NewHTTPError(http.StatusNotFound, "page not found")
	}

	if req.EditNote != "" {
		page.EditNote = req.EditNote
	}

	if err := s.Studio.Illustrate(c.Request().Context(), book, num, req.References, s.Settings); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	if err := s.persist(); err != nil {
		return persistError(err)
	}
	return c.JSON(http.StatusOK, page)
}
