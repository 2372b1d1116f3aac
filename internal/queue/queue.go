package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/sigainv/siga-backend/internal/config"
	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/internal/email"
	"github.com/sigainv/siga-backend/internal/logging"
)

const (
	TypeEmailDelivery = "email:delivery"
	TypeLowStock      = "inventory:low_stock"
	TypeOverdueLoans  = "loans:overdue"
)

type EmailDeliveryPayload struct {
	To      string
	Subject string
	Body    string
}

type LowStockPayload struct {
	Material db.Material
}

type OverdueLoansPayload struct {
	Loans []db.Loan
}

type TaskQueue struct {
	client *asynq.Client
}

func NewQueue(cfg *config.RedisConfig) (*TaskQueue, error) {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Activate and test the connection
	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis queue: %w", err)
	}

	logging.Info("Connected to Redis task queue")
	return &TaskQueue{client: client}, nil
}

func (q *TaskQueue) Enqueue(taskType string, data interface{}) (*asynq.TaskInfo, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return q.client.Enqueue(asynq.NewTask(taskType, payload))
}

func (q *TaskQueue) Close() error {
	return q.client.Close()
}

// NotifyLowStock satisfies the workflow notifier by queueing the alert so
// email delivery never blocks a request transaction.
func (q *TaskQueue) NotifyLowStock(ctx context.Context, material db.Material) error {
	_, err := q.Enqueue(TypeLowStock, LowStockPayload{Material: material})
	return err
}

// EmailService is the sender the worker delivers through.
type EmailService interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type Worker struct {
	server       *asynq.Server
	emailService EmailService
	alertEmail   string
}

func NewWorker(cfg *config.RedisConfig, emailService EmailService, alertEmail string) *Worker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logging.Error("process task failed", "type", task.Type(), "payload", string(task.Payload()), "error", err)
			}),
		},
	)

	return &Worker{
		server:       server,
		emailService: emailService,
		alertEmail:   alertEmail,
	}
}

func (w *Worker) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEmailDelivery, w.HandleEmailDelivery)
	mux.HandleFunc(TypeLowStock, w.HandleLowStock)
	mux.HandleFunc(TypeOverdueLoans, w.HandleOverdueLoans)

	return w.server.Start(mux)
}

func (w *Worker) Close() {
	if w.server != nil {
		w.server.Shutdown()
	}
}

func (w *Worker) HandleEmailDelivery(ctx context.Context, t *asynq.Task) error {
	var p EmailDeliveryPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	logging.Info("Sending email", "to", p.To, "subject", p.Subject)
	if err := w.emailService.SendEmail(ctx, p.To, p.Subject, p.Body); err != nil {
		return fmt.Errorf("emailService.SendEmail failed: %w", err)
	}
	return nil
}

func (w *Worker) HandleLowStock(ctx context.Context, t *asynq.Task) error {
	var p LowStockPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	subject, body := email.LowStockMessage(p.Material)
	logging.Info("Sending low stock alert", "material_id", p.Material.ID)
	if err := w.emailService.SendEmail(ctx, w.alertEmail, subject, body); err != nil {
		return fmt.Errorf("emailService.SendEmail failed: %w", err)
	}
	return nil
}

func (w *Worker) HandleOverdueLoans(ctx context.Context, t *asynq.Task) error {
	var p OverdueLoansPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	if len(p.Loans) == 0 {
		return nil
	}

	subject, body := email.OverdueLoansMessage(p.Loans)
	logging.Info("Sending overdue loans alert", "count", len(p.Loans))
	if err := w.emailService.SendEmail(ctx, w.alertEmail, subject, body); err != nil {
		return fmt.Errorf("emailService.SendEmail failed: %w", err)
	}
	return nil
}
