package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psephos-ai/psephos-go/internal/config"
)

func testClient(serviceURL string) *Client {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewClient(&config.LLMConfig{
		ServiceURL: serviceURL,
		Model:      "narrative-v1",
		MaxTokens:  512,
		Timeout:    5,
	}, logger)
}

func TestGenerateNarrative(t *testing.T) {
	var got GenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(GenerateResponse{Text: "Alpha is projected to win.", Model: "narrative-v1"})
	}))
	defer server.Close()

	client := testClient(server.URL)
	text, err := client.GenerateNarrative(context.Background(), "summarize the forecast")

	require.NoError(t, err)
	assert.Equal(t, "Alpha is projected to win.", text)
	assert.Equal(t, "narrative-v1", got.Model)
	assert.Equal(t, "summarize the forecast", got.Prompt)
	assert.Equal(t, 512, got.MaxTokens)
}

func TestGenerateNarrativeServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "model overloaded"})
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.GenerateNarrative(context.Background(), "prompt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestGenerateNarrativeNonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.GenerateNarrative(context.Background(), "prompt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "bad gateway")
}

func TestGenerateNarrativeEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(GenerateResponse{Text: "   "})
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.GenerateNarrative(context.Background(), "prompt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty content")
}

func TestGenerateNarrativeUnreachableService(t *testing.T) {
	client := testClient("http://127.0.0.1:1")

	_, err := client.GenerateNarrative(context.Background(), "prompt")

	assert.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	assert.NoError(t, client.HealthCheck(context.Background()))
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	client := testClient("http://localhost:3002/")
	assert.Equal(t, "http://localhost:3002", client.baseURL)
}
