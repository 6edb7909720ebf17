package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alxdev/echocheck-backend/internal/classifier"
	"github.com/alxdev/echocheck-backend/pkg/logger"
)

const (
	apiName    = "EchoCheck API"
	apiVersion = "1.0.0"
)

type HealthHandler struct {
	classifier classifier.Client
	db         DatabasePinger
	logger     logger.Logger
}

type HealthResponse struct {
	Status            string `json:"status"`
	ModelLoaded       bool   `json:"model_loaded"`
	ModelName         string `json:"model_name"`
	DatabaseConnected bool   `json:"database_connected"`
}

func NewHealthHandler(cl classifier.Client, db DatabasePinger, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		classifier: cl,
		db:         db,
		logger:     log,
	}
}

// Root serves the service banner.
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        apiName,
		"version":     apiVersion,
		"description": "Political stance classification API",
		"health":      "/health",
		"metrics":     "/metrics",
	})
}

// Check probes the classifier and the database. The endpoint always answers
// 200; degraded state is carried in the body.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()

	modelUp := h.classifier.Healthy(ctx)
	dbUp := h.db.Connected(ctx)

	status := "healthy"
	if !modelUp || !dbUp {
		status = "degraded"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:            status,
		ModelLoaded:       modelUp,
		ModelName:         h.classifier.ModelName(),
		DatabaseConnected: dbUp,
	})
}
