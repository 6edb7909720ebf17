// Package classifier talks to the stance-classification sidecar. The model
// itself is opaque to this service; everything goes over HTTP/JSON.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Prediction is the sidecar's answer for one text.
type Prediction struct {
	Prediction    string             `json:"prediction"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// Client is what the handlers depend on.
type Client interface {
	Predict(ctx context.Context, text string) (*Prediction, error)
	Healthy(ctx context.Context) bool
	ModelName() string
}

// Config holds the sidecar connection settings.
type Config struct {
	Endpoint string
	Model    string
	Timeout  time.Duration
}

// HTTPClient implements Client against the model sidecar.
type HTTPClient struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

func NewHTTPClient(cfg Config) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type predictRequest struct {
	Text string `json:"text"`
}

type predictResponse struct {
	Prediction    string             `json:"prediction"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
	Error         string             `json:"error,omitempty"`
}

func (c *HTTPClient) Predict(ctx context.Context, text string) (*Prediction, error) {
	reqData, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/predict", bytes.NewReader(reqData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var result predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("classifier error: %s", result.Error)
	}
	if result.Prediction == "" {
		return nil, fmt.Errorf("classifier returned no prediction")
	}

	return &Prediction{
		Prediction:    result.Prediction,
		Confidence:    result.Confidence,
		Probabilities: result.Probabilities,
	}, nil
}

// Healthy reports whether the sidecar answers its health endpoint.
func (c *HTTPClient) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func (c *HTTPClient) ModelName() string {
	return c.model
}

func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
