package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"

	"bankmail/internal/api/handlers"
	"bankmail/internal/api/middleware"
	"bankmail/internal/config"
	"bankmail/internal/ingest"
	"bankmail/internal/logger"
	"bankmail/internal/profile"
	"bankmail/internal/queue"
)

func main() {
	// Flags override the environment for local runs
	var (
		port    = flag.String("port", "", "HTTP server port (overrides BANKMAIL_PORT)")
		project = flag.String("project", "", "Google Cloud project hosting Firestore (overrides BANKMAIL_PROJECT)")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *project != "" {
		cfg.Project = *project
	}

	ctx := context.Background()

	// Pick the queue backend. Without a project there is nothing durable to
	// write to, so fall back to an in-memory queue for local development.
	var (
		txQueue      queue.Queue
		profileStore handlers.ProfileStore
	)
	if cfg.Project != "" {
		fsClient, err := firestore.NewClient(ctx, cfg.Project)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Firestore client")
		}
		defer fsClient.Close()

		txQueue = queue.NewFirestore(fsClient)
		profileStore = profile.NewStore(fsClient)
	} else {
		log.Warn().Msg("No project configured - using in-memory queue, staged transactions will not survive a restart")
		txQueue = queue.NewMemory()
	}

	orchestrator := ingest.New(txQueue, log)

	// Initialize handlers
	syncHandler := handlers.NewSyncHandler(orchestrator, cfg.MaxResults, log)
	queueHandler := handlers.NewQueueHandler(txQueue, log)
	profileHandler := handlers.NewProfileHandler(profileStore, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/sync", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			syncHandler.Sync(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/queue", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			queueHandler.List(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/queue/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			entryID := strings.TrimPrefix(r.URL.Path, "/api/queue/")
			if entryID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Entry ID is required")
				return
			}
			queueHandler.Remove(w, r, entryID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			profileHandler.Get(w, r)
		case http.MethodPut:
			profileHandler.Save(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(mux),
				),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // a sync cycle fans out one fetch per message
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
