package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/alxdev/echocheck-backend/internal/mailer"
	"github.com/alxdev/echocheck-backend/pkg/logger"
	"github.com/alxdev/echocheck-backend/pkg/queue"
)

// MailWorker drains the email queues and hands each task to the mailer.
type MailWorker struct {
	BaseWorker
	mailer mailer.Mailer
	queue  queue.Queue
}

func NewMailWorker(cfg *Config, m mailer.Mailer, q queue.Queue, log logger.Logger) *MailWorker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues:      cfg.Queues,
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				return time.Duration(n) * time.Minute
			},
		},
	)

	w := &MailWorker{
		BaseWorker: BaseWorker{
			server:   server,
			mux:      asynq.NewServeMux(),
			logger:   log,
			stopChan: make(chan struct{}),
		},
		mailer: m,
		queue:  q,
	}

	w.registerHandlers()
	return w
}

func (w *MailWorker) registerHandlers() {
	w.mux.HandleFunc(queue.TaskTypeVerificationEmail, w.handleVerificationEmail)
	w.mux.HandleFunc(queue.TaskTypeWelcomeEmail, w.handleWelcomeEmail)
}

func (w *MailWorker) handleVerificationEmail(ctx context.Context, t *asynq.Task) error {
	task, err := w.decodeTask(t)
	if err != nil {
		return err
	}

	var payload queue.VerificationEmailPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal verification payload: %w", err)
	}
	if payload.Email == "" || payload.Code == "" {
		return fmt.Errorf("invalid verification payload: missing email or code")
	}

	w.logger.Info("sending verification email",
		logger.String("taskId", task.ID),
		logger.String("to", payload.Email),
		logger.String("purpose", string(payload.Purpose)),
	)

	expiresIn := time.Duration(payload.ExpiresInMinutes) * time.Minute
	err = w.mailer.SendVerificationCode(ctx, payload.Email, payload.Code, payload.Purpose, expiresIn)
	return w.finish(ctx, task, err)
}

func (w *MailWorker) handleWelcomeEmail(ctx context.Context, t *asynq.Task) error {
	task, err := w.decodeTask(t)
	if err != nil {
		return err
	}

	var payload queue.WelcomeEmailPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal welcome payload: %w", err)
	}
	if payload.Email == "" {
		return fmt.Errorf("invalid welcome payload: missing email")
	}

	w.logger.Info("sending welcome email",
		logger.String("taskId", task.ID),
		logger.String("to", payload.Email),
	)

	err = w.mailer.SendWelcome(ctx, payload.Email)
	return w.finish(ctx, task, err)
}

func (w *MailWorker) decodeTask(t *asynq.Task) (*queue.Task, error) {
	var task queue.Task
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		w.logger.Error("failed to unmarshal task",
			logger.Error(err),
			logger.String("payload", string(t.Payload())),
		)
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	if task.ID == "" || len(task.Payload) == 0 {
		return nil, fmt.Errorf("invalid task data: missing required fields")
	}
	return &task, nil
}

// finish records the task outcome and propagates delivery errors so asynq
// retries them.
func (w *MailWorker) finish(ctx context.Context, task *queue.Task, deliveryErr error) error {
	status := &queue.TaskStatus{
		TaskID:     task.ID,
		Status:     queue.StatusCompleted,
		StartedAt:  task.CreatedAt,
		FinishedAt: time.Now().UTC(),
	}
	if deliveryErr != nil {
		status.Status = queue.StatusFailed
		status.Error = deliveryErr.Error()
	}

	if err := w.queue.SaveFinalStatus(ctx, status); err != nil {
		w.logger.Error("failed to save task status",
			logger.String("taskId", task.ID),
			logger.Error(err),
		)
	}

	if deliveryErr != nil {
		w.logger.Error("email delivery failed",
			logger.String("taskId", task.ID),
			logger.Error(deliveryErr),
		)
		return deliveryErr
	}

	w.logger.Info("email task completed", logger.String("taskId", task.ID))
	return nil
}

func (w *MailWorker) Start(ctx context.Context) error {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			w.logger.Error("worker server stopped", logger.Error(err))
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			w.Stop()
		case <-w.stopChan:
		}
	}()

	return nil
}
