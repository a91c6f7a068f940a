package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fazeel2019/Upskill-sub000/internal/config"
)

func newTestClient(url string) *OpenAIClient {
	return NewOpenAIClient(config.AIConfig{
		APIKey:  "sk-test",
		BaseURL: url,
		Model:   "test-model",
		Timeout: 5 * time.Second,
	}, zerolog.Nop())
}

func TestGenerateJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req responsesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Len(t, req.Input, 2)
		assert.Equal(t, "json_schema", req.Text.Format["type"])
		assert.Equal(t, true, req.Text.Format["strict"])

		_, _ = w.Write([]byte(`{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"{\"category\":\"STEM\"}"}]}]}`))
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL).GenerateJSON(context.Background(), "sys", "user", "post_category", categorizeSchema)
	require.NoError(t, err)
	assert.Equal(t, "STEM", out["category"])
}

func TestGenerateJSONRefusal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[{"type":"message","role":"assistant","content":[{"type":"refusal","refusal":"no"}]}]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GenerateJSON(context.Background(), "sys", "user", "post_category", categorizeSchema)
	assert.ErrorIs(t, err, ErrModelOutput)
}

func TestGenerateJSONHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GenerateJSON(context.Background(), "sys", "user", "post_category", categorizeSchema)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
}

func TestGenerateJSONNotConfigured(t *testing.T) {
	c := NewOpenAIClient(config.AIConfig{BaseURL: "http://unused"}, zerolog.Nop())
	_, err := c.GenerateJSON(context.Background(), "sys", "user", "post_category", categorizeSchema)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
