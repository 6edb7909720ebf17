// Package queue wraps asynq for background email delivery. Handlers enqueue
// and return immediately; the worker process drains the queues and records
// final task status in redis.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/alxdev/echocheck-backend/internal/models"
)

// Task types handled by the mail worker.
const (
	TaskTypeVerificationEmail = "email:verification"
	TaskTypeWelcomeEmail      = "email:welcome"
)

// Task statuses written to redis.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const (
	statusKeyPrefix = "email_task_status:"
	statusTTL       = 24 * time.Hour
)

// Queue is what the API handlers and the worker depend on.
type Queue interface {
	Enqueue(ctx context.Context, task *Task) error
	SaveFinalStatus(ctx context.Context, status *TaskStatus) error
	Close() error
}

// Task is the unit of work carried through asynq. Payload holds the typed
// per-type payload as raw JSON.
type Task struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

// TaskStatus is the terminal record for a task, kept in redis for a day.
type TaskStatus struct {
	TaskID     string    `json:"taskId"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// VerificationEmailPayload carries one emailed code.
type VerificationEmailPayload struct {
	Email            string                     `json:"email"`
	Code             string                     `json:"code"`
	Purpose          models.VerificationPurpose `json:"purpose"`
	ExpiresInMinutes int                        `json:"expiresInMinutes"`
}

// WelcomeEmailPayload greets a freshly verified account.
type WelcomeEmailPayload struct {
	Email string `json:"email"`
}

// NewVerificationEmailTask builds a code-delivery task with a fresh ID.
func NewVerificationEmailTask(email, code string, purpose models.VerificationPurpose, expiresIn time.Duration) (*Task, error) {
	payload, err := json.Marshal(VerificationEmailPayload{
		Email:            email,
		Code:             code,
		Purpose:          purpose,
		ExpiresInMinutes: int(expiresIn.Minutes()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return &Task{
		ID:        uuid.New().String(),
		Type:      TaskTypeVerificationEmail,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewWelcomeEmailTask builds a welcome-email task with a fresh ID.
func NewWelcomeEmailTask(email string) (*Task, error) {
	payload, err := json.Marshal(WelcomeEmailPayload{Email: email})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return &Task{
		ID:        uuid.New().String(),
		Type:      TaskTypeWelcomeEmail,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Config holds queue connection and retry settings.
type Config struct {
	RedisAddr   string
	RedisDB     int
	MaxRetry    int
	TaskTimeout time.Duration
}

// AsynqQueue is the redis-backed Queue used in production.
type AsynqQueue struct {
	client      *asynq.Client
	redis       *redis.Client
	maxRetry    int
	taskTimeout time.Duration
}

func New(cfg *Config) *AsynqQueue {
	redisOpt := asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	}

	maxRetry := cfg.MaxRetry
	if maxRetry <= 0 {
		maxRetry = 3
	}
	taskTimeout := cfg.TaskTimeout
	if taskTimeout <= 0 {
		taskTimeout = time.Minute
	}

	return &AsynqQueue{
		client: asynq.NewClient(redisOpt),
		redis: redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		}),
		maxRetry:    maxRetry,
		taskTimeout: taskTimeout,
	}
}

// Enqueue puts the task on its queue. Verification codes ride the critical
// queue since a user is actively waiting on them.
func (q *AsynqQueue) Enqueue(ctx context.Context, task *Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	opts := []asynq.Option{
		asynq.MaxRetry(q.maxRetry),
		asynq.Timeout(q.taskTimeout),
		asynq.TaskID(task.ID),
	}
	switch task.Type {
	case TaskTypeVerificationEmail:
		opts = append(opts, asynq.Queue("critical"))
	default:
		opts = append(opts, asynq.Queue("default"))
	}

	t := asynq.NewTask(task.Type, payload, opts...)
	if _, err := q.client.EnqueueContext(ctx, t); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// SaveFinalStatus records the task outcome under a TTL'd redis key.
func (q *AsynqQueue) SaveFinalStatus(ctx context.Context, status *TaskStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	key := statusKeyPrefix + status.TaskID
	if err := q.redis.Set(ctx, key, data, statusTTL).Err(); err != nil {
		return fmt.Errorf("failed to save status: %w", err)
	}
	return nil
}

func (q *AsynqQueue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	return q.redis.Close()
}
