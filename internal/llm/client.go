package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/psephos-ai/psephos-go/internal/config"
)

// Client talks to the narrative text-generation sidecar service over HTTP.
// It implements interfaces.NarrativeGenerator.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	maxTokens  int
	logger     *logrus.Logger
}

// GenerateRequest is the request body of the /v1/generate endpoint.
type GenerateRequest struct {
	Model     string `json:"model,omitempty"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

// GenerateResponse is the response body of the /v1/generate endpoint.
type GenerateResponse struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

// ErrorResponse is the service's error body shape.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewClient creates a narrative service client from configuration.
func NewClient(cfg *config.LLMConfig, logger *logrus.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.ServiceURL, "/"),
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		logger:     logger,
	}
}

// GenerateNarrative requests free-text narrative for a structured prompt.
// Empty content from the service is treated as an error so the caller's
// fallback handling applies uniformly.
func (c *Client) GenerateNarrative(ctx context.Context, prompt string) (string, error) {
	var response GenerateResponse
	req := GenerateRequest{
		Model:     c.model,
		Prompt:    prompt,
		MaxTokens: c.maxTokens,
	}
	if err := c.makeRequest(ctx, http.MethodPost, "/v1/generate", req, &response); err != nil {
		return "", err
	}
	if strings.TrimSpace(response.Text) == "" {
		return "", fmt.Errorf("narrative service returned empty content")
	}
	return response.Text, nil
}

// HealthCheck verifies the narrative service is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.makeRequest(ctx, http.MethodGet, "/health", nil, &struct{}{})
}

func (c *Client) makeRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.WithError(err).Debug("Error closing response body")
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errorResp ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err == nil && errorResp.Error != "" {
			return fmt.Errorf("narrative service error (%d): %s", resp.StatusCode, errorResp.Error)
		}
		return fmt.Errorf("narrative service error (%d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}
