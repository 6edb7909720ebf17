package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alxdev/echocheck-backend/internal/models"
)

func submitFeedback(t *testing.T, env *testEnv, user *models.User, isCorrect bool) {
	t.Helper()
	rec := env.postJSON(t, "/api/v1/feedback", map[string]any{
		"text":             "The senate passed the infrastructure bill today.",
		"model_prediction": "center",
		"model_confidence": 0.92,
		"actual_label":     "center",
		"is_correct":       isCorrect,
	}, env.accessHeader(t, user)...)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSubmitFeedback(t *testing.T) {
	env := newTestEnv(t)
	user := env.users.add("user@example.com", "password123", true)

	rec := env.postJSON(t, "/api/v1/feedback", map[string]any{
		"text":             "The senate passed the infrastructure bill today.",
		"model_prediction": "center",
		"model_confidence": 0.92,
		"actual_label":     "left",
		"is_correct":       false,
	}, env.accessHeader(t, user)...)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp FeedbackResponse
	decodeJSON(t, rec, &resp)
	require.Equal(t, "Feedback submitted successfully", resp.Message)
	require.NotEmpty(t, resp.ID)
	require.False(t, resp.CreatedAt.IsZero())

	require.Len(t, env.fb.entries, 1)
	entry := env.fb.entries[0]
	require.Equal(t, user.ID, entry.UserID)
	require.False(t, entry.IsCorrect)
	require.Equal(t, "left", entry.ActualLabel)
}

// is_correct=false is a meaningful value and must pass validation.
func TestSubmitFeedbackFalseIsCorrect(t *testing.T) {
	env := newTestEnv(t)
	user := env.users.add("user@example.com", "password123", true)

	submitFeedback(t, env, user, false)
	require.Len(t, env.fb.entries, 1)
}

func TestSubmitFeedbackMissingFields(t *testing.T) {
	env := newTestEnv(t)
	user := env.users.add("user@example.com", "password123", true)

	rec := env.postJSON(t, "/api/v1/feedback", map[string]any{
		"text":             "Some text",
		"model_prediction": "center",
	}, env.accessHeader(t, user)...)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitFeedbackRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postJSON(t, "/api/v1/feedback", map[string]any{
		"text":             "Some text",
		"model_prediction": "center",
		"model_confidence": 0.5,
		"actual_label":     "center",
		"is_correct":       true,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFeedbackStats(t *testing.T) {
	env := newTestEnv(t)
	user := env.users.add("user@example.com", "password123", true)

	submitFeedback(t, env, user, true)
	submitFeedback(t, env, user, true)
	submitFeedback(t, env, user, false)

	rec := env.get(t, "/api/v1/feedback/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.FeedbackStats
	decodeJSON(t, rec, &stats)
	require.Equal(t, int64(3), stats.TotalFeedback)
	require.Equal(t, int64(2), stats.CorrectPredictions)
	require.Equal(t, int64(1), stats.IncorrectPredictions)
	require.InDelta(t, 0.6667, stats.AccuracyRate, 1e-9)
}

func TestFeedbackStatsEmpty(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/api/v1/feedback/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.FeedbackStats
	decodeJSON(t, rec, &stats)
	require.Zero(t, stats.TotalFeedback)
	require.Zero(t, stats.AccuracyRate)
}

func TestFeedbackRecent(t *testing.T) {
	env := newTestEnv(t)
	user := env.users.add("user@example.com", "password123", true)

	for i := 0; i < 5; i++ {
		submitFeedback(t, env, user, true)
	}

	rec := env.get(t, "/api/v1/feedback/recent?limit=3", env.accessHeader(t, user)...)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count    int               `json:"count"`
		Feedback []models.Feedback `json:"feedback"`
	}
	decodeJSON(t, rec, &resp)
	require.Equal(t, 3, resp.Count)
	require.Len(t, resp.Feedback, 3)
}

func TestFeedbackRecentLimitClamped(t *testing.T) {
	env := newTestEnv(t)
	user := env.users.add("user@example.com", "password123", true)
	submitFeedback(t, env, user, true)

	for _, query := range []string{"?limit=100000", "?limit=-5", "?limit=abc", ""} {
		rec := env.get(t, "/api/v1/feedback/recent"+query, env.accessHeader(t, user)...)
		require.Equal(t, http.StatusOK, rec.Code, query)
	}
}

func TestFeedbackIncorrect(t *testing.T) {
	env := newTestEnv(t)
	user := env.users.add("user@example.com", "password123", true)

	submitFeedback(t, env, user, true)
	submitFeedback(t, env, user, false)
	submitFeedback(t, env, user, true)

	rec := env.get(t, "/api/v1/feedback/incorrect", env.accessHeader(t, user)...)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count    int               `json:"count"`
		Feedback []models.Feedback `json:"feedback"`
	}
	decodeJSON(t, rec, &resp)
	require.Equal(t, 1, resp.Count)
	require.False(t, resp.Feedback[0].IsCorrect)
}

func TestFeedbackListingsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/v1/feedback/recent", "/api/v1/feedback/incorrect"} {
		rec := env.get(t, path)
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}
