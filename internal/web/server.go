// Package web provides the HTTP server exposing the sync API.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mkallberg/pagesync/internal/config"
	"github.com/mkallberg/pagesync/internal/core"
	"github.com/mkallberg/pagesync/internal/notion"
	"github.com/mkallberg/pagesync/internal/web/middleware"
)

// SyncService is the part of the sync engine the HTTP layer drives.
// Satisfied by *core.Syncer.
type SyncService interface {
	SyncRow(ctx context.Context, rowID string) core.SyncResult
	Status() core.SyncStatus
	History() []core.HistoryEntry
	Mappings() []core.ColumnMapping
}

// PageFetcher reads pages back from Notion. Satisfied by *notion.Client.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageID string) (*notion.Page, error)
}

// Server is the HTTP server for the sync service.
type Server struct {
	syncer SyncService
	pages  PageFetcher
	cfg    *config.Config
	router *chi.Mux
	server *http.Server
}

// NewServer creates a Server wired to the given sync engine. pages may
// be nil, which disables the page read-back route.
func NewServer(syncer SyncService, pages PageFetcher, cfg *config.Config) *Server {
	s := &Server{
		syncer: syncer,
		pages:  pages,
		cfg:    cfg,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(&s.cfg.Security))

		r.Post("/sync/{rowID}", s.handleSyncRow)
		r.Get("/status", s.handleStatus)
		r.Get("/history", s.handleHistory)
		r.Get("/mappings", s.handleMappings)

		if s.pages != nil {
			r.Get("/pages/{pageID}", s.handleFetchPage)
		}
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
