package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"fable/pkg/schema"
	"fable/pkg/store"
	"fable/pkg/studio"
	"fable/pkg/utils"
)

// Server owns the in-memory storybook collection and exposes the generation
// workflows over HTTP. Handlers hold mu for their whole body: generation is
// long-running but the model is one shared collection, exactly one writer at
// a time keeps page/character slot writes trivially safe.
type Server struct {
	Echo   *echo.Echo
	Studio *studio.Studio
	Store  *store.Store

	// Ctx is the application context. Batch generation runs on it, not on the
	// request context, so a dropped connection does not abort a running batch.
	Ctx context.Context

	mu       sync.Mutex
	Books    []schema.Storybook
	Settings schema.Settings
}

func NewServer(ctx context.Context, st *studio.Studio, snapshots *store.Store) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.CORS())
	e.HTTPErrorHandler = errorHandler

	s := &Server{
		Echo:     e,
		Studio:   st,
		Store:    snapshots,
		Ctx:      ctx,
		Settings: schema.DefaultSettings(),
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)

	api := s.Echo.Group("/api")

	api.GET("/storybooks", s.handleListBooks)
	api.POST("/storybooks", s.handleCreateBook)
	api.GET("/storybooks/:id", s.handleGetBook)
	api.DELETE("/storybooks/:id", s.handleDeleteBook)

	api.POST("/storybooks/:id/characters/generate", s.handleGenerateReferences)
	api.POST("/storybooks/:id/characters/:name/reference", s.handleGenerateReference)

	api.POST("/storybooks/:id/illustrations/generate", s.handleIllustrateAll)
	api.POST("/storybooks/:id/pages/:num/illustration", s.handleIllustratePage)
	api.GET("/storybooks/:id/pages/:num/illustration.webp", s.handleExportIllustration)

	api.POST("/storybooks/:id/vocabulary/generate", s.handleGenerateVocabulary)
	api.POST("/storybooks/:id/vocabulary", s.handleVocabularyCard)

	api.POST("/storybooks/:id/quiz/generate", s.handleGenerateQuiz)

	api.POST("/storybooks/:id/narration/generate", s.handleNarrateAll)
	api.POST("/storybooks/:id/pages/:num/narration", s.handleNarratePage)

	api.GET("/settings", s.handleGetSettings)
	api.PUT("/settings", s.handlePutSettings)
}

// errorHandler renders every handler error in the standard JSON error shape.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}
	if err := c.JSON(code, utils.ErrJSON(msg)); err != nil {
		log.Errorf("failed to render error response: %v", err)
	}
}

func (s *Server) Start(addr string) error {
	log.Infof("Server listening at %s", addr)
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("Shutting down server...")

	s.mu.Lock()
	saveErr := s.Store.Save(s.Books)
	s.mu.Unlock()

	if err := s.Echo.Shutdown(ctx); err != nil {
		return err
	}
	return saveErr
}

// bookByID returns a pointer into Books. Callers must hold mu.
func (s *Server) bookByID(id string) *schema.Storybook {
	for i := range s.Books {
		if s.Books[i].ID == id {
			return &s.Books[i]
		}
	}
	return nil
}

// persist snapshots the collection; quota problems are the caller's to
// surface. Callers must hold mu.
func (s *Server) persist() error {
	return s.Store.Save(s.Books)
}
