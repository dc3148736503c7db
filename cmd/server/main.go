package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aurahq/aura_service/internal/client"
	"github.com/aurahq/aura_service/internal/config"
	"github.com/aurahq/aura_service/internal/handler/http"
	"github.com/aurahq/aura_service/internal/logger"
	"github.com/aurahq/aura_service/internal/repository"
	"github.com/aurahq/aura_service/internal/server"
	"github.com/aurahq/aura_service/internal/service"
	"github.com/aurahq/aura_service/internal/session"
	"github.com/aurahq/aura_service/internal/spin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info().Str("env", cfg.Environment).Msg("Starting aura_service")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the generation model. Vertex AI Gemini is the primary
	// provider, OpenAI the fallback.
	var chatModel service.ChatModel
	var geminiClient *client.GeminiClient

	switch {
	case cfg.AIProvider == "openai" && cfg.OpenAIAPIKey != "":
		chatModel = client.NewOpenAIClient(cfg.OpenAIAPIKey)
		log.Info().Msg("OpenAI client initialized")
	case cfg.GCPProjectID != "":
		geminiClient, err = client.NewGeminiClient(ctx, cfg.GCPProjectID, cfg.GCPLocation)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			chatModel = geminiClient.WithModel(cfg.GeminiModel)
			log.Info().Str("model", cfg.GeminiModel).Msg("Gemini client initialized")
		}
	}
	if chatModel == nil && cfg.OpenAIAPIKey != "" {
		chatModel = client.NewOpenAIClient(cfg.OpenAIAPIKey)
		log.Info().Msg("OpenAI client initialized as fallback")
	}
	if chatModel == nil {
		log.Fatal().Msg("No generation provider configured (set GCP_PROJECT_ID or OPENAI_API_KEY)")
	}

	// Initialize transcription client
	deepgramClient := client.NewDeepgramClient(cfg.DeepgramAPIKey, cfg.DeepgramModel)
	if cfg.DeepgramAPIKey == "" {
		log.Warn().Msg("DEEPGRAM_API_KEY not set, transcription will be unavailable")
	}

	// Initialize Redis client
	var redisClient *client.RedisClient
	if cfg.RedisURL != "" {
		redisClient, err = client.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Redis client")
			redisClient = nil
		} else {
			log.Info().Msg("Redis client initialized")
		}
	} else {
		log.Warn().Msg("REDIS_URL not set, event polling disabled")
	}

	// Initialize Cloudflare R2 client
	var cloudflareClient *client.CloudflareClient
	if cfg.CloudflareAccessKeyID != "" && cfg.CloudflareSecretKey != "" && cfg.CloudflareR2Endpoint != "" && cfg.CloudflareBucketName != "" {
		cloudflareClient, err = client.NewCloudflareClient(ctx,
			cfg.CloudflareAccessKeyID,
			cfg.CloudflareSecretKey,
			cfg.CloudflareR2Endpoint,
			cfg.CloudflareBucketName,
			cfg.CloudflarePublicURL,
		)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Cloudflare client")
		} else {
			log.Info().Msg("Cloudflare R2 client initialized")
		}
	} else {
		log.Warn().Msg("Cloudflare configuration missing, skipping R2 initialization")
	}

	// Initialize Postgres client
	var postgresClient *client.PostgresClient
	if cfg.DatabaseURL != "" {
		postgresClient, err = client.NewPostgresClient(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Postgres client")
			postgresClient = nil
		} else {
			log.Info().Msg("Postgres client initialized")
		}
	} else {
		log.Warn().Msg("DATABASE_URL not set, report archive disabled")
	}

	// Initialize repositories
	var reportRepo repository.ReportRepository
	if postgresClient != nil {
		reportRepo = repository.NewPostgresReportRepository(postgresClient)
	}

	// Initialize session store
	store := session.NewStore(cfg.SessionTTL, log)
	store.StartSweeper(ctx)

	// Initialize services
	spinOpts := []spin.Option{
		spin.WithTiming(cfg.SpinDuration, 300*time.Millisecond, time.Second),
	}
	eventQueue := service.NewEventQueue(redisClient, cfg.SessionTTL, log)
	aiService := service.NewAIService(chatModel, log)
	topicService := service.NewTopicService(store, aiService, eventQueue, reportRepo, cfg.GenerationTimeout, cfg.AnswerWindow, spinOpts, log)
	bookService := service.NewBookService(store, aiService, eventQueue, reportRepo, cfg.GenerationTimeout, spinOpts, log)
	speechService := service.NewSpeechService(deepgramClient, cloudflareClient, log)
	emailService := service.NewEmailService(service.SMTPConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		SenderName:  cfg.SMTPSenderName,
		SenderEmail: cfg.SMTPSenderEmail,
	}, log)

	// Initialize handlers
	healthHandler := http.NewHealthHandler()
	topicHandler := http.NewTopicHandler(log, topicService)
	bookHandler := http.NewBookHandler(log, bookService)
	speechHandler := http.NewSpeechHandler(log, speechService)
	reportHandler := http.NewReportHandler(log, emailService, reportRepo)
	catalogHandler := http.NewCatalogHandler()

	// Initialize HTTP server
	httpServer := server.NewHTTPServer(cfg, log, healthHandler, topicHandler, bookHandler, speechHandler, reportHandler, catalogHandler)

	// Start server
	go func() {
		if err := httpServer.Start(); err != nil {
			log.Error().Err(err).Msg("HTTP server error")
			cancel()
		}
	}()

	log.Info().
		Str("http_addr", cfg.HTTPAddress()).
		Msg("Server started")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("Shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down server...")
	healthHandler.SetReady(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Close clients
	if geminiClient != nil {
		geminiClient.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}
	if postgresClient != nil {
		postgresClient.Close()
	}

	log.Info().Msg("Server stopped")
}
