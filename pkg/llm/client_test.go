package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func testConfig() Config {
	return Config{
		BaseURL: "http://upstream",
		APIKey:  "sk-test",
		Model:   "gpt-4",
		Timeout: 2 * time.Second,
	}
}

func jsonResponse(status int, v any) *http.Response {
	b, _ := json.Marshal(v)
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(b)),
	}
}

func TestCompleteSendsChatRequest(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "/v1/chat/completions", req.URL.Path)
			assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))

			var in chatCompletionRequest
			require.NoError(t, json.NewDecoder(req.Body).Decode(&in))
			assert.Equal(t, "gpt-4", in.Model)
			assert.Equal(t, 4000, in.MaxTokens)
			assert.InDelta(t, 0.2, in.Temperature, 1e-9)
			require.Len(t, in.Messages, 2)
			assert.Equal(t, "system", in.Messages[0].Role)
			assert.Equal(t, "user", in.Messages[1].Role)
			assert.Equal(t, "build a timetable", in.Messages[1].Content)

			return jsonResponse(http.StatusOK, map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"content": `{"timetable":[]}`}},
				},
			}), nil
		}),
	}

	c, err := NewWithHTTPClient(testConfig(), client)
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), CompletionRequest{
		System:      "you schedule",
		User:        "build a timetable",
		MaxTokens:   4000,
		Temperature: 0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"timetable":[]}`, text)
}

func TestCompleteReturnsHTTPErrorOnNon2xx(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusTooManyRequests, map[string]any{"error": "rate limited"}), nil
		}),
	}
	c, err := NewWithHTTPClient(testConfig(), client)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), CompletionRequest{User: "x"})
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
}

func TestCompleteEmptyChoices(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, map[string]any{"choices": []any{}}), nil
		}),
	}
	c, err := NewWithHTTPClient(testConfig(), client)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), CompletionRequest{User: "x"})
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestNewRequiresAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = " "
	_, err := New(cfg)
	assert.Error(t, err)
}
