package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"bankmail/internal/crawler"
	"bankmail/internal/ingest"
	"bankmail/internal/logger"
	"bankmail/internal/queue"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	token := flag.String("token", "", "OAuth bearer token with read-only Gmail scope")
	user := flag.String("user", "", "User id owning the ingestion queue")
	project := flag.String("project", "", "Google Cloud project hosting Firestore")
	maxResults := flag.Int64("max-results", crawler.DefaultMaxResults, "Maximum candidate messages to fetch")
	flag.Parse()

	if *token == "" || *user == "" || *project == "" {
		log.Fatal().Msg("Error: --token, --user and --project are required")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Add logger to context
	ctx = logger.WithContext(ctx, log)

	fsClient, err := firestore.NewClient(ctx, *project)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Firestore client")
	}
	defer fsClient.Close()

	orchestrator := ingest.New(queue.NewFirestore(fsClient), log)

	log.Info().Str("user_id", *user).Msg("Starting ingestion cycle")

	report, err := orchestrator.Sync(ctx, *token, *user, *maxResults)
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	if report.Found == 0 {
		fmt.Println("No bank emails found.")
		return
	}
	fmt.Printf("Queued %d of %d transactions (%d failed).\n", report.Queued, report.Found, report.Failed)
	for _, msg := range report.Errors {
		fmt.Println("  push error:", msg)
	}
}
