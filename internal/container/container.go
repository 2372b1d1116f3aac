package container

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/sigainv/siga-backend/internal/api"
	"github.com/sigainv/siga-backend/internal/auth"
	"github.com/sigainv/siga-backend/internal/aws"
	"github.com/sigainv/siga-backend/internal/config"
	"github.com/sigainv/siga-backend/internal/database"
	"github.com/sigainv/siga-backend/internal/image"
	"github.com/sigainv/siga-backend/internal/logging"
	"github.com/sigainv/siga-backend/internal/queue"
	"github.com/sigainv/siga-backend/internal/workflow"
)

type Container struct {
	Config      *config.Config
	Database    *database.Database
	Queue       *queue.TaskQueue
	RedisClient *redis.Client
	Sessions    *auth.Store
	AuthMW      *auth.Middleware
	Server      *api.Server
	Worker      *queue.Worker
}

func New(cfg *config.Config) (*Container, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	taskQueue, err := queue.NewQueue(&cfg.Redis)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Two separate Redis connection pools are used: the asynq task
	// queue manages its own connection, and this client holds session
	// state.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	sessions := auth.NewStore(redisClient, cfg.Session.TTL)
	authMW := auth.NewMiddleware(sessions, cfg.Session.CookieName, api.Responder{})

	images := image.NewProcessor(cfg.Uploads.Dir, cfg.Uploads.MaxSizeBytes)

	requests := workflow.NewRequestService(db.Pool(), db.Queries(), taskQueue)
	loans := workflow.NewLoanService(db.Pool(), db.Queries())
	corporate := workflow.NewCorporateService(db.Pool(), db.Queries())

	sesService, err := aws.NewSESService(context.Background(), cfg.AWS)
	if err != nil {
		db.Close()
		return nil, err
	}

	worker := queue.NewWorker(&cfg.Redis, sesService, cfg.AWS.AlertEmail)

	server := api.NewServer(cfg, db, sessions, requests, loans, corporate, images)

	logging.Info("Connected to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port)

	return &Container{
		Config:      cfg,
		Database:    db,
		Queue:       taskQueue,
		RedisClient: redisClient,
		Sessions:    sessions,
		AuthMW:      authMW,
		Server:      server,
		Worker:      worker,
	}, nil
}

func (c *Container) Cleanup() {
	if c.Queue != nil {
		c.Queue.Close()
		logging.Info("Queue client closed")
	}
	if c.Worker != nil {
		c.Worker.Close()
		logging.Info("Worker closed")
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
		logging.Info("Redis client closed")
	}
	if c.Database != nil {
		c.Database.Close()
		logging.Info("Database connection closed")
	}
}
