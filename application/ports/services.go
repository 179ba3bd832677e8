package ports

import (
	"context"
	"io"
	"time"
)

// ObjectStore keeps uploaded images
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// TranslationRequest is the text to translate
type TranslationRequest struct {
	Title          string
	Content        string
	Description    string
	TargetLanguage string
}

// Translation is the translated text
type Translation struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Description string `json:"description,omitempty"`
}

// Translator calls the hosted language model
type Translator interface {
	Translate(ctx context.Context, req TranslationRequest) (*Translation, error)
}

// SiteMetadata is what a page says about itself
type SiteMetadata struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	FaviconURL  string `json:"favicon_url,omitempty"`
	Description string `json:"description,omitempty"`
}

// MetadataFetcher reads a page's title, favicon and description
type MetadataFetcher interface {
	Fetch(ctx context.Context, url string) (*SiteMetadata, error)
}

// Event is a domain event published for downstream consumers such as the search indexer
type Event struct {
	Type        string    `json:"type"`
	AggregateID string    `json:"aggregateId"`
	OccurredAt  time.Time `json:"occurredAt"`
	Payload     any       `json:"payload,omitempty"`
}

// EventPublisher delivers domain events
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// NopPublisher drops every event
type NopPublisher struct{}

// Publish implements EventPublisher
func (NopPublisher) Publish(context.Context, ...Event) error { return nil }
