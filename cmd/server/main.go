// Package main is the entry point for the Calendar Mentor backend.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calendar-mentor/backend/internal/api"
	"github.com/calendar-mentor/backend/internal/api/handlers"
	"github.com/calendar-mentor/backend/internal/assistant"
	"github.com/calendar-mentor/backend/internal/calendar"
	"github.com/calendar-mentor/backend/internal/config"
	"github.com/calendar-mentor/backend/internal/storage"
	"github.com/calendar-mentor/backend/internal/voice"
	"github.com/calendar-mentor/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	configPath := flag.String("config", "./config.yaml", "Path to the YAML configuration file")
	addr := flag.String("addr", "", "HTTP server address (overrides config)")
	dataDir := flag.String("data", "", "Data directory (overrides config)")
	staticDir := flag.String("static", "./static", "Directory for static frontend files")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *addr != "" {
		cfg.Listen = *addr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(cfg.Listen); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}
	log.Printf("Starting Calendar Mentor backend (version: %s)...", version)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory %q: %v", cfg.DataDir, err)
	}

	stores, cleanup, err := openStores(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer cleanup()

	// WebSocket hub and live-update broadcaster
	hub := websocket.NewHub()
	go hub.Run()
	broadcaster := websocket.NewEventBroadcaster(hub)

	// Language-understanding service
	chatClient := assistant.NewOpenAIClient(assistant.OpenAIConfig{
		APIKey:       cfg.OpenAI.APIKey,
		Organization: cfg.OpenAI.Organization,
		Model:        cfg.OpenAI.Model,
	})
	if !chatClient.Configured() {
		log.Println("Warning: OpenAI credentials missing, commands will answer the configuration message")
	}

	interpreter := assistant.NewInterpreter(chatClient)
	dispatcher := assistant.NewDispatcher(stores, broadcaster)
	taskManager := assistant.NewTaskManager(chatClient, stores.Tasks, broadcaster)

	// Voice adapter: capture and playback degrade independently.
	var voiceIO assistant.VoiceIO
	var announcer calendar.Announcer
	if cfg.VoiceEnabled {
		adapter := voice.NewAdapter(
			voice.NewExecRecorder(),
			voice.NewExecPlayer(),
			voice.NewSTTClient(voice.STTConfig{APIKey: cfg.STT.APIKey, URL: cfg.STT.URL}),
			voice.NewTTSClient(voice.TTSConfig{APIKey: cfg.TTS.APIKey, URL: cfg.TTS.URL, Voice: cfg.TTSVoice}),
		)
		voiceIO = adapter
		announcer = adapter
	}

	assistantHandler := assistant.NewHandler(interpreter, dispatcher, voiceIO, broadcaster)

	// Reminder scheduler
	reminderScheduler := calendar.NewReminderScheduler(stores.Events, broadcaster, announcer, cfg.ReminderLeadMin)
	if err := reminderScheduler.Start(); err != nil {
		log.Printf("Warning: Failed to start reminder scheduler: %v", err)
	}

	router := api.NewRouter(api.Services{
		Stores:      stores,
		Hub:         hub,
		Broadcaster: broadcaster,
		Assistant:   assistantHandler,
		Dispatcher:  dispatcher,
		TaskManager: taskManager,
		Chat:        chatClient,
		Status: handlers.StatusInfo{
			AssistantConfigured: chatClient.Configured(),
			VoiceAvailable:      voiceIO != nil && voiceIO.Available(),
		},
		StaticDir: *staticDir,
	})

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Listen)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	reminderScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// openStores opens the configured storage backend. CSV is the default;
// sqlite keeps the same load/replace semantics in one database file.
func openStores(cfg *config.Config) (*storage.Stores, func(), error) {
	switch cfg.StorageBackend {
	case "sqlite":
		db, err := storage.NewDB(cfg.DataDir + "/calendar-mentor.db")
		if err != nil {
			return nil, nil, err
		}
		if err := storage.RunMigrations(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Println("Database migrations complete")
		return storage.NewSQLiteStores(db), func() { db.Close() }, nil
	default:
		return storage.NewCSVStores(cfg.DataDir), func() {}, nil
	}
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return http.ErrAbortHandler
	}
	return nil
}
