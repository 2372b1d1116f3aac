package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/sigainv/siga-backend/internal/aws"
	"github.com/sigainv/siga-backend/internal/config"
	"github.com/sigainv/siga-backend/internal/database"
	"github.com/sigainv/siga-backend/internal/logging"
	"github.com/sigainv/siga-backend/internal/queue"
)

// overdueCheckInterval controls how often the worker scans for loans past
// their expected return date.
const overdueCheckInterval = 24 * time.Hour

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := logging.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	emailSvc, err := aws.NewSESService(context.Background(), cfg.AWS)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	taskQueue, err := queue.NewQueue(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to queue: %v", err)
	}
	defer taskQueue.Close()

	// Periodic scan for overdue loans, delivered through the same queue the
	// low stock alerts use.
	go func() {
		ticker := time.NewTicker(overdueCheckInterval)
		defer ticker.Stop()
		for range ticker.C {
			loans, err := db.Queries().ListOverdueLoans(context.Background())
			if err != nil {
				logging.Error("Overdue loan scan failed", "error", err)
				continue
			}
			if len(loans) == 0 {
				continue
			}
			if _, err := taskQueue.Enqueue(queue.TypeOverdueLoans, queue.OverdueLoansPayload{Loans: loans}); err != nil {
				logging.Error("Failed to enqueue overdue loans alert", "error", err)
			}
		}
	}()

	worker := queue.NewWorker(&cfg.Redis, emailSvc, cfg.AWS.AlertEmail)

	log.Println("Starting queue worker...")
	if err := worker.Start(); err != nil {
		log.Fatalf("Worker failed to start: %v", err)
	}
	select {}
}
