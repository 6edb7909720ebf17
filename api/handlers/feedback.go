package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alxdev/echocheck-backend/api/middleware"
	"github.com/alxdev/echocheck-backend/internal/models"
	"github.com/alxdev/echocheck-backend/internal/store"
	"github.com/alxdev/echocheck-backend/pkg/logger"
)

const maxListLimit = 100

// FeedbackHandler collects user verdicts on classification results and
// serves aggregate views of them.
type FeedbackHandler struct {
	feedback store.Feedback
	logger   logger.Logger
}

// FeedbackRequest uses pointers for the fields whose zero value is a legal
// submission, otherwise binding would reject them.
type FeedbackRequest struct {
	Text            string   `json:"text" binding:"required"`
	ModelPrediction string   `json:"model_prediction" binding:"required"`
	ModelConfidence *float64 `json:"model_confidence" binding:"required"`
	ActualLabel     string   `json:"actual_label" binding:"required"`
	IsCorrect       *bool    `json:"is_correct" binding:"required"`
}

type FeedbackResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func NewFeedbackHandler(fb store.Feedback, log logger.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedback: fb,
		logger:   log,
	}
}

// Submit stores one feedback entry for the authenticated user.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.logger, http.StatusBadRequest, "invalid_request", "All feedback fields are required", err)
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.Header("WWW-Authenticate", "Bearer")
		handleError(c, h.logger, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
		return
	}

	fb := &models.Feedback{
		Text:            req.Text,
		ModelPrediction: req.ModelPrediction,
		ModelConfidence: *req.ModelConfidence,
		ActualLabel:     req.ActualLabel,
		IsCorrect:       *req.IsCorrect,
		UserID:          user.ID,
	}

	if err := h.feedback.Insert(c.Request.Context(), fb); err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "feedback_failed", "Failed to submit feedback", err)
		return
	}

	c.JSON(http.StatusOK, FeedbackResponse{
		ID:        fb.ID.Hex(),
		Message:   "Feedback submitted successfully",
		CreatedAt: fb.CreatedAt,
	})
}

// Stats returns totals and the accuracy rate over all feedback.
func (h *FeedbackHandler) Stats(c *gin.Context) {
	stats, err := h.feedback.Stats(c.Request.Context())
	if err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "stats_failed", "Failed to get feedback stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Recent lists the newest feedback entries.
func (h *FeedbackHandler) Recent(c *gin.Context) {
	limit := listLimit(c, 10)

	list, err := h.feedback.Recent(c.Request.Context(), limit)
	if err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "feedback_failed", "Failed to list feedback", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(list), "feedback": list})
}

// Incorrect lists feedback where the model got it wrong, newest first.
func (h *FeedbackHandler) Incorrect(c *gin.Context) {
	limit := listLimit(c, 50)

	list, err := h.feedback.Incorrect(c.Request.Context(), limit)
	if err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "feedback_failed", "Failed to list feedback", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(list), "feedback": list})
}

func listLimit(c *gin.Context, fallback int64) int64 {
	raw := c.Query("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return fallback
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}
