package translation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"archive-backend/application/ports"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func completion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]string{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func TestTranslate(t *testing.T) {
	// Arrange
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion(`{"title":"Hello","content":"# Body","description":""}`)))
	}))
	defer srv.Close()
	c := NewClient(srv.URL+"/v1/", "key", "gpt-test", zap.NewNop())

	// Act
	out, err := c.Translate(context.Background(), ports.TranslationRequest{
		Title: "안녕", Content: "# 본문", TargetLanguage: "en",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, &ports.Translation{Title: "Hello", Content: "# Body"}, out)
	assert.Equal(t, "gpt-test", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[0].Content, "English")
	assert.Contains(t, got.Messages[1].Content, "안녕")
}

func TestTranslateFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"api error", http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`, "rate limited"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
		{"not json", http.StatusOK, completion("Hello there"), "failed to parse"},
		{"incomplete", http.StatusOK, completion(`{"title":"Hello"}`), "missing title or content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()
			c := NewClient(srv.URL, "key", "gpt-test", zap.NewNop())

			_, err := c.Translate(context.Background(), ports.TranslationRequest{Title: "t", Content: "c", TargetLanguage: "en"})

			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestTranslateWithoutKeyOrLanguage(t *testing.T) {
	c := NewClient("http://unused", "", "gpt-test", zap.NewNop())
	_, err := c.Translate(context.Background(), ports.TranslationRequest{TargetLanguage: "en"})
	assert.ErrorIs(t, err, ErrUnconfigured)

	c = NewClient("http://unused", "key", "gpt-test", zap.NewNop())
	_, err = c.Translate(context.Background(), ports.TranslationRequest{TargetLanguage: "fr"})
	assert.ErrorContains(t, err, "unsupported")
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := NewClient(srv.URL, "key", "gpt-test", zap.NewNop())
	req := ports.TranslationRequest{Title: "t", Content: "c", TargetLanguage: "en"}

	for i := 0; i < 3; i++ {
		_, err := c.Translate(context.Background(), req)
		require.Error(t, err)
	}
	_, err := c.Translate(context.Background(), req)

	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(3), calls.Load())
}
