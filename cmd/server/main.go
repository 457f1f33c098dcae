package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"codegpt/internal/config"
	"codegpt/internal/handler"
	"codegpt/internal/llm"
	"codegpt/internal/middleware"
	"codegpt/internal/service"
	"codegpt/internal/store"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
	)

	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set; completion calls will fail")
	}

	// Model defaults registry (embedded YAML)
	registry, err := llm.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load model registry: %v", err)
	}

	// Completion gateway
	gateway := llm.NewClient(
		cfg.OpenAIBaseURL,
		cfg.OpenAIAPIKey,
		cfg.DefaultModel,
		cfg.LLMTimeout,
		registry,
	)
	logger.Info("completion gateway ready",
		"model", gateway.Model(),
		"timeout", cfg.LLMTimeout.String(),
	)

	// In-memory conversation store, owned here and handed to the service.
	chatStore := store.New()

	// Services and handlers
	chatService := service.NewChatService(chatStore, gateway, logger)
	chatHandler := handler.NewChatHandler(chatService, logger)

	pageHandler, err := handler.NewPageHandler(logger)
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Page and health
	mux.HandleFunc("GET /{$}", pageHandler.Index)
	mux.HandleFunc("GET /health", chatHandler.HealthCheck)

	// Chat routes
	mux.HandleFunc("GET /api/chats", chatHandler.ListChats)
	mux.HandleFunc("POST /api/chats", chatHandler.CreateChat)
	mux.HandleFunc("GET /api/messages", chatHandler.GetMessages)
	mux.HandleFunc("POST /api/chat", chatHandler.SendMessage)
	mux.HandleFunc("POST /api/reset", chatHandler.ResetChat)
	mux.HandleFunc("POST /api/chats/delete", chatHandler.DeleteChat)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Logging → Routes
	h = middleware.RequestLogger(logger)(h)
	h = middleware.Recovery(logger)(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
	})
	h = corsHandler.Handler(h)

	// Create HTTP server. The write timeout leaves headroom for the
	// completion round trip.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLMTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
