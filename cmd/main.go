package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/sigainv/siga-backend/internal/config"
	"github.com/sigainv/siga-backend/internal/container"
	"github.com/sigainv/siga-backend/internal/logging"
	"github.com/sigainv/siga-backend/internal/middleware"
)

func main() {
	// .env is optional, real deployments use environment variables
	_ = godotenv.Load()

	cfg := config.Load()
	if err := logging.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	c, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer c.Cleanup()

	r := chi.NewMux()
	r.Use(middleware.NewCORSHandler(&cfg.CORS))
	r.Use(middleware.RequestContext)
	r.Use(middleware.LoggingMiddleware)
	r.Mount("/", c.Server.Routes(c.AuthMW))

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Server.Port)
	s := &http.Server{
		Handler: r,
		Addr:    addr,
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down server...")
		c.Cleanup()
		os.Exit(0)
	}()

	log.Printf("Server starting on %s", addr)
	log.Fatal(s.ListenAndServe())
}
