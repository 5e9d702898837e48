package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/deckhand-ai/deckhand/internal/api/handlers"
	appMiddleware "github.com/deckhand-ai/deckhand/internal/api/middlewares"
	"github.com/deckhand-ai/deckhand/internal/config"
	"github.com/deckhand-ai/deckhand/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, users *services.UserService, projects *services.ProjectService, documents *services.DocumentService, links *services.ShareLinkService, chat *services.ChatService) *Server {
	authHandler := handlers.NewAuthHandler(users, cfg.JWTSecret)
	projectHandler := handlers.NewProjectHandler(projects, links)
	docHandler := handlers.NewDocumentHandler(documents, projects)
	chatHandler := handlers.NewChatHandler(chat)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// investor chat, keyed by the share-link token
		api.Post("/chat/{link_token}", chatHandler.Ask)

		// founder endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWT(cfg.JWTSecret))

			protected.Post("/projects", projectHandler.Create)
			protected.Get("/projects", projectHandler.List)
			protected.Delete("/projects/{project_id}", projectHandler.Delete)
			protected.Post("/projects/{project_id}/links", projectHandler.CreateShareLink)

			protected.Post("/projects/{project_id}/documents", docHandler.Upload)
			protected.Get("/projects/{project_id}/documents", docHandler.List)
			protected.Get("/documents/{document_id}", docHandler.Get)
			protected.Delete("/documents/{document_id}", docHandler.Delete)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
