package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aurahq/aura_service/internal/config"
	httphandler "github.com/aurahq/aura_service/internal/handler/http"
	"github.com/aurahq/aura_service/internal/middleware"
)

// HTTPServer represents the HTTP server.
type HTTPServer struct {
	server *http.Server
	log    zerolog.Logger
}

// NewHTTPServer creates a new HTTP server.
func NewHTTPServer(
	cfg *config.Config,
	log zerolog.Logger,
	healthHandler *httphandler.HealthHandler,
	topicHandler *httphandler.TopicHandler,
	bookHandler *httphandler.BookHandler,
	speechHandler *httphandler.SpeechHandler,
	reportHandler *httphandler.ReportHandler,
	catalogHandler *httphandler.CatalogHandler,
) *HTTPServer {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(chimiddleware.Compress(5))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   cfg.CORSAllowedMethods,
		AllowedHeaders:   cfg.CORSAllowedHeaders,
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (public)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Speech-on-topic assessment
		r.Route("/assessments/topic", func(r chi.Router) {
			r.Post("/", topicHandler.Create)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", topicHandler.Get)
				r.Post("/spin", topicHandler.Spin)
				r.Post("/topic", topicHandler.SelectTopic)
				r.Post("/confirm", topicHandler.Confirm)
				r.Post("/change", topicHandler.ChangeTopic)
				r.Post("/speech", topicHandler.SubmitSpeech)
				r.Post("/answers/start", topicHandler.StartAnswers)
				r.Post("/answers", topicHandler.SubmitAnswers)
				r.Post("/continue", topicHandler.Continue)
				r.Post("/reset", topicHandler.Reset)
				r.Get("/events", topicHandler.Events)
			})
		})

		// Book-summary assessment
		r.Route("/assessments/book", func(r chi.Router) {
			r.Post("/", bookHandler.Create)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", bookHandler.Get)
				r.Post("/spin", bookHandler.Spin)
				r.Post("/title", bookHandler.SelectBook)
				r.Post("/confirm", bookHandler.Confirm)
				r.Post("/change", bookHandler.ChangeBook)
				r.Post("/timer", bookHandler.SelectTimer)
				r.Post("/reading/finish", bookHandler.FinishReading)
				r.Post("/answers/rapid", bookHandler.SubmitRapidFire)
				r.Post("/answers/followup", bookHandler.SubmitFollowUp)
				r.Post("/continue", bookHandler.Continue)
				r.Post("/reset", bookHandler.Reset)
				r.Get("/events", bookHandler.Events)
			})
		})

		// Transcription
		r.Post("/transcribe", speechHandler.Transcribe)

		// Reports
		r.Post("/reports/email", reportHandler.SendEmail)
		r.Get("/reports/recent", reportHandler.ListRecent)

		// Catalogs
		r.Get("/catalogs/topics", catalogHandler.Topics)
		r.Get("/catalogs/books", catalogHandler.Books)
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &HTTPServer{
		server: server,
		log:    log,
	}
}

// Start starts the HTTP server.
func (s *HTTPServer) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
