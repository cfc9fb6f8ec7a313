package summary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shipits/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeNotConfigured(t *testing.T) {
	t.Parallel()

	client := NewClient(&config.Config{})
	_, err := client.Summarize(context.Background(), "some thread")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSummarizeSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "user", req.Messages[1].Role)

		json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{
				{Message: chatMessage{Role: "assistant", Content: "Feedback is positive overall."}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(&config.Config{
		SummaryAPIEndpoint: srv.URL,
		SummaryAPIKey:      "test-key",
		SummaryDeployment:  "gpt-4o-mini",
		SummaryMaxTokens:   400,
		SummaryTemperature: 0.3,
	})

	got, err := client.Summarize(context.Background(), "comment one\ncomment two")
	require.NoError(t, err)
	assert.Equal(t, "Feedback is positive overall.", got)
}

func TestSummarizeProviderFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(&config.Config{
		SummaryAPIEndpoint: srv.URL,
		SummaryAPIKey:      "test-key",
		SummaryDeployment:  "gpt-4o-mini",
	})

	_, err := client.Summarize(context.Background(), "thread")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}

func TestSummarizeEmptyChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer srv.Close()

	client := NewClient(&config.Config{
		SummaryAPIEndpoint: srv.URL,
		SummaryAPIKey:      "test-key",
	})

	_, err := client.Summarize(context.Background(), "thread")
	require.Error(t, err)
}
