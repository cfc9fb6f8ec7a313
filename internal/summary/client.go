// Package summary talks to the external chat-completion provider that
// generates thread summaries.
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shipits/internal/config"
)

// ErrNotConfigured is returned when the provider endpoint or key is unset.
// Callers treat this as "feature disabled", not as a failure.
var ErrNotConfigured = fmt.Errorf("summary provider not configured")

// Client generates comment-thread summaries via a chat-completion API.
type Client struct {
	endpoint    string
	apiKey      string
	deployment  string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

// NewClient builds a client from config. The returned client is usable even
// when unconfigured; Summarize then returns ErrNotConfigured.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		endpoint:    cfg.SummaryAPIEndpoint,
		apiKey:      cfg.SummaryAPIKey,
		deployment:  cfg.SummaryDeployment,
		maxTokens:   cfg.SummaryMaxTokens,
		temperature: cfg.SummaryTemperature,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether the client can reach a provider.
func (c *Client) Configured() bool {
	return c.endpoint != "" && c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const systemPrompt = "You summarize a project's comment thread for students skimming the page. " +
	"Write at most four sentences covering the main feedback themes and any open questions. " +
	"Do not quote commenters by name."

// Summarize sends the thread text to the provider and returns the summary.
func (c *Client) Summarize(ctx context.Context, thread string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model: c.deployment,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: thread},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("summary provider request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading summary provider response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("summary provider returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decoding summary provider response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("summary provider error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("summary provider returned no content")
	}

	return parsed.Choices[0].Message.Content, nil
}
