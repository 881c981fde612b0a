package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"fable/pkg/media"
	"fable/pkg/utils"
)

// GET /api/storybooks/:id/pages/:num/illustration.webp
// Downloads a page's illustration re-encoded as WebP.
func (s *Server) handleExportIllustration(c echo.Context) error {
	num, err := strconv.Atoi(c.Param("num"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid page number")
	}

	s.mu.Lock()
	book := s.bookByID(c.Param("id"))
	if book == nil {
		s.mu.Unlock()
		return echo.NewHTTPError(http.StatusNotFound, "storybook not found")
	}
	page := book.PageByNumber(num)
	if page == nil || page.Image == "" {
		s.mu.Unlock()
		return echo.NewHTTPError(http.StatusNotFound, "no illustration for that page")
	}
	title, image := book.Title, page.Image
	s.mu.Unlock()

	data, _, err := media.Inline(c.Request().Context(), image)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	encoded, err := media.ToWebP(data)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	filename := utils.SanitizeFilename(fmt.Sprintf("%s-page%d.webp", title, num))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "image/webp", encoded)
}
