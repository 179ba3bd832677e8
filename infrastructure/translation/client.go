// Package translation calls an OpenAI-compatible chat completions API to translate articles.
package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"archive-backend/application/ports"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var languageNames = map[string]string{
	"en": "English",
}

// ErrUnconfigured is returned when no API key is set
var ErrUnconfigured = errors.New("translation API key is not configured")

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat map[string]any `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client implements ports.Translator
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	apiKey  string
	model   string
	logger  *zap.Logger
}

// NewClient creates a client for the API rooted at baseURL, e.g. https://api.openai.com/v1
func NewClient(baseURL, apiKey, model string, logger *zap.Logger) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(60*time.Second).
			SetHeader("Content-Type", "application/json"),
		apiKey: apiKey,
		model:  model,
		logger: logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "translation",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c
}

// Translate asks the model for a JSON object with title, content and description
func (c *Client) Translate(ctx context.Context, req ports.TranslationRequest) (*ports.Translation, error) {
	if c.apiKey == "" {
		return nil, ErrUnconfigured
	}
	language, ok := languageNames[req.TargetLanguage]
	if !ok {
		return nil, fmt.Errorf("unsupported target language %q", req.TargetLanguage)
	}

	out, err := c.breaker.Execute(func() (any, error) {
		return c.complete(ctx, buildMessages(req, language))
	})
	if err != nil {
		return nil, err
	}
	return out.(*ports.Translation), nil
}

func (c *Client) complete(ctx context.Context, messages []chatMessage) (*ports.Translation, error) {
	var resp chatResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(chatRequest{
			Model:          c.model,
			Messages:       messages,
			Temperature:    0.2,
			ResponseFormat: map[string]any{"type": "json_object"},
		}).
		SetResult(&resp).
		SetError(&resp).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("translation request failed: %w", err)
	}
	if res.IsError() {
		if resp.Error != nil {
			return nil, fmt.Errorf("translation API error (%d): %s", res.StatusCode(), resp.Error.Message)
		}
		return nil, fmt.Errorf("translation API returned status %d", res.StatusCode())
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in translation response")
	}

	var t ports.Translation
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &t); err != nil {
		return nil, fmt.Errorf("failed to parse translation: %w", err)
	}
	if t.Title == "" || t.Content == "" {
		return nil, errors.New("translation is missing title or content")
	}

	c.logger.Debug("Translation completed", zap.Int("contentLength", len(t.Content)))
	return &t, nil
}

func buildMessages(req ports.TranslationRequest, language string) []chatMessage {
	input, _ := json.Marshal(map[string]string{
		"title":       req.Title,
		"content":     req.Content,
		"description": req.Description,
	})
	system := fmt.Sprintf(`You translate blog articles into %s.
Keep markdown, code blocks and links intact. Reply with a JSON object with the string fields
"title", "content" and "description", translated from the input object. Leave description empty if the input's is empty.`, language)

	return []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: string(input)},
	}
}
