package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alxdev/echocheck-backend/internal/auth"
	"github.com/alxdev/echocheck-backend/internal/classifier"
	"github.com/alxdev/echocheck-backend/internal/extract"
	"github.com/alxdev/echocheck-backend/internal/store"
	"github.com/alxdev/echocheck-backend/pkg/logger"
	"github.com/alxdev/echocheck-backend/pkg/metrics"
	"github.com/alxdev/echocheck-backend/pkg/queue"
)

// DatabasePinger reports whether the backing database is reachable.
type DatabasePinger interface {
	Connected(ctx context.Context) bool
}

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Extractor  *extract.Extractor
	Classifier classifier.Client
	Users      store.Users
	Codes      store.Codes
	Feedback   store.Feedback
	Tokens     *auth.TokenManager
	Queue      queue.Queue
	Database   DatabasePinger
	Metrics    *metrics.Metrics
	Logger     logger.Logger
	CodeTTL    time.Duration
	CodeLength int
}

type Handlers struct {
	Classify *ClassifyHandler
	Auth     *AuthHandler
	Feedback *FeedbackHandler
	Health   *HealthHandler
}

func NewHandlers(d Deps) *Handlers {
	return &Handlers{
		Classify: NewClassifyHandler(d.Extractor, d.Classifier, d.Metrics, d.Logger),
		Auth:     NewAuthHandler(d.Users, d.Codes, d.Tokens, d.Queue, d.Logger, d.CodeTTL, d.CodeLength),
		Feedback: NewFeedbackHandler(d.Feedback, d.Logger),
		Health:   NewHealthHandler(d.Classifier, d.Database, d.Logger),
	}
}

// ErrorResponse is the error body for every endpoint. Error is a stable
// machine-readable code, Message the human-readable explanation.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func handleError(c *gin.Context, log logger.Logger, status int, code, message string, err error) {
	log.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.String("code", code),
		logger.Error(err),
	)

	c.JSON(status, ErrorResponse{Error: code, Message: message})
}
