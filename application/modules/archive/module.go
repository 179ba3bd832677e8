// Package archive implements the article actions: authoring, lookup and listing.
package archive

import (
	"context"
	"fmt"
	"time"

	"archive-backend/application/actions"
	"archive-backend/application/ports"
	"archive-backend/domain/article"
	pkgerrors "archive-backend/pkg/errors"
	"archive-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event types published after successful mutations
const (
	EventArticleCreated = "ArticleCreated"
	EventArticleUpdated = "ArticleUpdated"
	EventArticleDeleted = "ArticleDeleted"
)

// Config names the article table and its indexes
type Config struct {
	Table                    string
	PathnameIndex            string
	StatusPublishedDateIndex string
	StatusUpdatedDateIndex   string
	GSI1PublishedDateIndex   string
	GSI1UpdatedDateIndex     string
}

// DefaultConfig returns the index names the table is provisioned with
func DefaultConfig(table string) Config {
	return Config{
		Table:                    table,
		PathnameIndex:            "pathname-index",
		StatusPublishedDateIndex: "status-published_date-index",
		StatusUpdatedDateIndex:   "status-updated_date-index",
		GSI1PublishedDateIndex:   "GSI1-published_date-index",
		GSI1UpdatedDateIndex:     "GSI1-updated_date-index",
	}
}

// Module serves the archive actions
type Module struct {
	store  ports.Store
	events ports.EventPublisher
	cfg    Config
	clock  utils.Clock
	newID  func() string
	logger *zap.Logger
}

// Option customizes a Module
type Option func(*Module)

// WithClock pins the time source
func WithClock(c utils.Clock) Option {
	return func(m *Module) { m.clock = c }
}

// WithIDGenerator replaces uuid generation
func WithIDGenerator(fn func() string) Option {
	return func(m *Module) { m.newID = fn }
}

// NewModule creates the archive module
func NewModule(store ports.Store, events ports.EventPublisher, cfg Config, logger *zap.Logger, opts ...Option) *Module {
	if events == nil {
		events = ports.NopPublisher{}
	}
	m := &Module{
		store:  store,
		events: events,
		cfg:    cfg,
		clock:  utils.SystemClock,
		newID:  uuid.NewString,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Actions returns the archive registrations
func (m *Module) Actions() []actions.Registration {
	return []actions.Registration{
		actions.Handle(actions.CreateArticle, m.CreateArticle),
		actions.Handle(actions.UpdateArticle, m.UpdateArticle),
		actions.Handle(actions.DeleteArticle, m.DeleteArticle),
		actions.Handle(actions.DeleteArticles, m.DeleteArticles),
		actions.Handle(actions.GetArticle, m.GetArticle),
		actions.Handle(actions.GetArticles, m.GetArticles),
		actions.Handle(actions.GetAllArticles, m.GetAllArticles),
		actions.Handle(actions.GetArticlesByStatus, m.GetArticlesByStatus),
		actions.Handle(actions.GetArticlesByTypeStatus, m.GetArticlesByTypeStatus),
		actions.Handle(actions.GetArticleByPathname, m.GetArticleByPathname),
		actions.Handle(actions.GetAllPublishedArticles, m.GetAllPublishedArticles),
		actions.Handle(actions.GetPublishedArticleByPathname, m.GetPublishedArticleByPathname),
	}
}

// findByID reads the article's stored record; the sort key is only known after this read.
func (m *Module) findByID(ctx context.Context, id string) (*article.Record, error) {
	page, err := m.store.QueryItems(ctx, ports.QueryInput{
		Table:          m.cfg.Table,
		PartitionKey:   "pk",
		PartitionValue: article.PartitionKey(id),
		Limit:          1,
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query article", err)
	}
	if len(page.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("article")
	}

	var rec article.Record
	if err := attributevalue.UnmarshalMap(page.Items[0], &rec); err != nil {
		return nil, fmt.Errorf("failed to decode article: %w", err)
	}
	return &rec, nil
}

func tableKey(pk string, createdAt int64) (ports.Key, error) {
	key, err := attributevalue.MarshalMap(ItemKey{PK: pk, CreatedAt: createdAt})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal article key: %w", err)
	}
	return key, nil
}

func decodeRecords(items []ports.Item) ([]article.Record, error) {
	records := make([]article.Record, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &records); err != nil {
		return nil, fmt.Errorf("failed to decode articles: %w", err)
	}
	return records, nil
}

// publish never fails the action; downstream indexing catches up from later events.
func (m *Module) publish(ctx context.Context, eventType string, rec article.Record) {
	evt := ports.Event{
		Type:        eventType,
		AggregateID: rec.ID,
		OccurredAt:  m.now(),
		Payload:     rec,
	}
	if err := m.events.Publish(ctx, evt); err != nil {
		m.logger.Warn("Failed to publish article event",
			zap.String("type", eventType),
			zap.String("articleId", rec.ID),
			zap.Error(err),
		)
	}
}

func (m *Module) now() time.Time {
	if m.clock == nil {
		return time.Now()
	}
	return m.clock()
}
