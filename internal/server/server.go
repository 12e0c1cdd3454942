package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/waldiez/waldiez-go/internal/auth"
	"github.com/waldiez/waldiez-go/internal/database"
	"github.com/waldiez/waldiez-go/internal/handlers"
	mw "github.com/waldiez/waldiez-go/internal/middleware"
	"github.com/waldiez/waldiez-go/internal/scheduler"
	"github.com/waldiez/waldiez-go/internal/secrets"
	ws "github.com/waldiez/waldiez-go/internal/websocket"
)

type Server struct {
	Router    *chi.Mux
	DB        *database.DB
	Auth      *auth.Service
	Secrets   *secrets.Manager
	Scheduler *scheduler.Scheduler
	WSHub     *ws.Hub
}

type Config struct {
	DB        *database.DB
	Auth      *auth.Service
	Secrets   *secrets.Manager
	Scheduler *scheduler.Scheduler
	DataDir   string
	Port      int
}

func New(cfg Config) *Server {
	s := &Server{
		Router:    chi.NewRouter(),
		DB:        cfg.DB,
		Auth:      cfg.Auth,
		Secrets:   cfg.Secrets,
		Scheduler: cfg.Scheduler,
		WSHub:     ws.NewHub(cfg.Auth, cfg.Port),
	}

	s.setupMiddleware()
	s.setupRoutes(cfg.DataDir, cfg.Port)

	return s
}

func (s *Server) setupMiddleware() {
	s.Router.Use(chiMiddleware.RealIP)
	s.Router.Use(mw.RequestID)
	s.Router.Use(mw.SecurityHeaders)
	s.Router.Use(mw.Logger)
	s.Router.Use(mw.CORS)
	s.Router.Use(chiMiddleware.Recoverer)
}

func (s *Server) setupRoutes(dataDir string, port int) {
	authHandler := handlers.NewAuthHandler(s.DB, s.Auth)
	setupHandler := handlers.NewSetupHandler(s.DB, s.Auth)
	flowsHandler := handlers.NewFlowsHandler(s.DB, s.Secrets, s.WSHub, s.Scheduler)
	settingsHandler := handlers.NewSettingsHandler(s.DB, s.Secrets)
	logsHandler := handlers.NewLogsHandler(s.DB)
	systemHandler := handlers.NewSystemHandler(s.DB, dataDir, port)

	s.Router.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Route("/auth", func(r chi.Router) {
			r.With(mw.RateLimit(10, time.Minute)).Post("/login", authHandler.Login)
		})

		r.Route("/setup", func(r chi.Router) {
			r.With(mw.RateLimit(5, time.Minute)).Get("/status", setupHandler.Status)
			r.With(mw.RateLimit(5, time.Minute)).Post("/init", setupHandler.Init)
		})

		// Public health check (used by desktop shell polling)
		r.Get("/system/health", systemHandler.Health)

		// WebSocket (auth handled internally)
		r.Get("/ws", s.WSHub.HandleWS)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(mw.Auth(s.Auth))
			r.Use(mw.CSRFProtection)

			// Auth
			r.Post("/auth/logout", authHandler.Logout)
			r.Post("/auth/change-password", authHandler.ChangePassword)
			r.Get("/auth/me", authHandler.Me)
			r.Put("/auth/profile", authHandler.UpdateProfile)

			// Flows
			r.Route("/flows", func(r chi.Router) {
				r.Get("/", flowsHandler.List)
				r.Post("/", flowsHandler.Create)
				r.Post("/validate", flowsHandler.Validate)
				r.Get("/{id}", flowsHandler.Get)
				r.Put("/{id}", flowsHandler.Update)
				r.Delete("/{id}", flowsHandler.Delete)
				r.Get("/{id}/export", flowsHandler.Export)
				r.Get("/{id}/links", flowsHandler.Links)
				r.Get("/{id}/graph", flowsHandler.Graph)
				r.Get("/{id}/snapshots", flowsHandler.ListSnapshots)
				r.Post("/{id}/snapshots", flowsHandler.CreateSnapshot)
				r.Post("/{id}/snapshots/{snapshotId}/restore", flowsHandler.RestoreSnapshot)
			})

			// Logs
			r.Get("/logs", logsHandler.List)
			r.Get("/logs/stats", logsHandler.Stats)
			r.Get("/logs/flows/{id}", logsHandler.FlowLogs)

			// System
			r.Get("/system/info", systemHandler.Info)

			// Settings
			r.Get("/settings", settingsHandler.Get)
			r.Put("/settings", settingsHandler.Update)
		})
	})

	s.Router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		http.NotFound(w, r)
	})
}
