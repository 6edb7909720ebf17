package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alxdev/echocheck-backend/internal/models"
)

func TestNewVerificationEmailTask(t *testing.T) {
	task, err := NewVerificationEmailTask("user@example.com", "123456", models.PurposeRegistration, 10*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, task.ID)
	require.Equal(t, TaskTypeVerificationEmail, task.Type)
	require.False(t, task.CreatedAt.IsZero())

	var payload VerificationEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload, &payload))
	require.Equal(t, "user@example.com", payload.Email)
	require.Equal(t, "123456", payload.Code)
	require.Equal(t, models.PurposeRegistration, payload.Purpose)
	require.Equal(t, 10, payload.ExpiresInMinutes)
}

func TestNewWelcomeEmailTask(t *testing.T) {
	task, err := NewWelcomeEmailTask("user@example.com")
	require.NoError(t, err)
	require.Equal(t, TaskTypeWelcomeEmail, task.Type)

	var payload WelcomeEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload, &payload))
	require.Equal(t, "user@example.com", payload.Email)
}

func TestTaskIDsAreUnique(t *testing.T) {
	a, err := NewWelcomeEmailTask("a@example.com")
	require.NoError(t, err)
	b, err := NewWelcomeEmailTask("b@example.com")
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
}

func TestTaskRoundTrip(t *testing.T) {
	task, err := NewVerificationEmailTask("user@example.com", "654321", models.PurposeLogin, 10*time.Minute)
	require.NoError(t, err)

	data, err := json.Marshal(task)
	require.NoError(t, err)

	var decoded Task
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, task.ID, decoded.ID)
	require.Equal(t, task.Type, decoded.Type)

	var payload VerificationEmailPayload
	require.NoError(t, json.Unmarshal(decoded.Payload, &payload))
	require.Equal(t, "654321", payload.Code)
}
