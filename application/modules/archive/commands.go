package archive

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"archive-backend/application/ports"
	"archive-backend/domain/article"
	"archive-backend/pkg/common"
	pkgerrors "archive-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"go.uber.org/zap"
)

// CreateArticle stores a new article with a generated id.
// Pathname uniqueness is left to the caller, which checks getArticleByPathname first.
func (m *Module) CreateArticle(ctx context.Context, p CreateArticlePayload) (ArticleResult, error) {
	a := p.Article
	if err := a.Validate(); err != nil {
		return ArticleResult{}, err
	}

	now := m.clock.NowMillis()
	a.ID = m.newID()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.PublishedDate == 0 {
		a.PublishedDate = now
	}
	if a.UpdatedDate == 0 {
		a.UpdatedDate = now
	}

	rec := article.NewRecord(a)
	if err := m.store.CreateItem(ctx, m.cfg.Table, rec); err != nil {
		return ArticleResult{}, pkgerrors.NewDatabaseError("create article", err)
	}

	m.logger.Info("Article created",
		zap.String("articleId", a.ID),
		zap.String("GSI1PK", rec.GSI1PK),
	)
	m.publish(ctx, EventArticleCreated, rec)
	return ArticleResult{Success: true, Article: &rec}, nil
}

// UpdateArticle applies a partial update. The current record is read first to learn its sort key;
// the read and the write are not atomic, so a concurrent writer wins or loses silently.
func (m *Module) UpdateArticle(ctx context.Context, p UpdateArticlePayload) (ArticleResult, error) {
	current, err := m.findByID(ctx, p.ID)
	if err != nil {
		return ArticleResult{}, err
	}

	merged := current.Article
	changes := newChangeSet()

	if err := requiredField(changes, "title", p.Title, &merged.Title); err != nil {
		return ArticleResult{}, err
	}
	if err := requiredField(changes, "content", p.Content, &merged.Content); err != nil {
		return ArticleResult{}, err
	}
	if err := requiredField(changes, "status", p.Status, &merged.Status); err != nil {
		return ArticleResult{}, err
	}
	if err := requiredField(changes, "type", p.Type, &merged.Type); err != nil {
		return ArticleResult{}, err
	}
	if err := requiredField(changes, "published_date", p.PublishedDate, &merged.PublishedDate); err != nil {
		return ArticleResult{}, err
	}
	if err := requiredField(changes, "updated_date", p.UpdatedDate, &merged.UpdatedDate); err != nil {
		return ArticleResult{}, err
	}
	optionalField(changes, "description", p.Description, &merged.Description)
	optionalField(changes, "intl", p.Intl, &merged.Intl)
	optionalField(changes, "keywords", p.Keywords, &merged.Keywords)
	optionalField(changes, "pathname", p.Pathname, &merged.Pathname)
	optionalField(changes, "url", p.URL, &merged.URL)
	optionalField(changes, "site", p.Site, &merged.Site)
	optionalField(changes, "thumbnail_img_url", p.ThumbnailImgURL, &merged.ThumbnailImgURL)
	optionalField(changes, "origin_title", p.OriginTitle, &merged.OriginTitle)
	if p.IsRecommended.Cleared() {
		merged.IsRecommended = nil
		changes.remove("is_recommended")
	} else if p.IsRecommended.Present() {
		v := p.IsRecommended.Value
		merged.IsRecommended = &v
		changes.set("is_recommended", v)
	}

	if err := merged.Validate(); err != nil {
		return ArticleResult{}, err
	}

	if p.Type.Set || p.Status.Set {
		changes.set("GSI1PK", article.GSI1PK(merged.Type, merged.Status))
	}

	// updated_at strictly increases even when the clock has not advanced
	merged.UpdatedAt = max(m.clock.NowMillis(), current.UpdatedAt+1)
	changes.set("updated_at", merged.UpdatedAt)

	key, err := tableKey(current.PK, current.CreatedAt)
	if err != nil {
		return ArticleResult{}, err
	}
	item, err := m.store.UpdateItem(ctx, ports.UpdateInput{
		Table:  m.cfg.Table,
		Key:    key,
		Set:    changes.sets,
		Remove: changes.removes,
	})
	if err != nil {
		return ArticleResult{}, pkgerrors.NewDatabaseError("update article", err)
	}

	var rec article.Record
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return ArticleResult{}, fmt.Errorf("failed to decode article: %w", err)
	}

	m.logger.Info("Article updated",
		zap.String("articleId", rec.ID),
		zap.Int("setCount", len(changes.sets)),
		zap.Int("removeCount", len(changes.removes)),
	)
	m.publish(ctx, EventArticleUpdated, rec)
	return ArticleResult{Success: true, Article: &rec}, nil
}

// DeleteArticle removes one article. A miss is NOT_FOUND and performs no write.
func (m *Module) DeleteArticle(ctx context.Context, p IDPayload) (SuccessResult, error) {
	current, err := m.findByID(ctx, p.ID)
	if err != nil {
		return SuccessResult{}, err
	}

	key, err := tableKey(current.PK, current.CreatedAt)
	if err != nil {
		return SuccessResult{}, err
	}
	err = m.store.DeleteItem(ctx, ports.DeleteInput{
		Table:         m.cfg.Table,
		Key:           key,
		RequireExists: "pk",
	})
	if errors.Is(err, ports.ErrConditionFailed) {
		return SuccessResult{}, pkgerrors.NewNotFoundError("article")
	}
	if err != nil {
		return SuccessResult{}, pkgerrors.NewDatabaseError("delete article", err)
	}

	m.logger.Info("Article deleted", zap.String("articleId", current.ID))
	m.publish(ctx, EventArticleDeleted, *current)
	return SuccessResult{Success: true}, nil
}

// DeleteArticles deletes in chunks of MaxBatchWrite, one chunk after another.
// Keys the store leaves unprocessed, or whose chunk failed outright, are reported back
// so the caller can retry them with another deleteArticles call.
func (m *Module) DeleteArticles(ctx context.Context, p KeysPayload) (DeleteArticlesResult, error) {
	result := DeleteArticlesResult{UnprocessedItems: []ItemKey{}}

	for start := 0; start < len(p.Items); start += ports.MaxBatchWrite {
		end := min(start+ports.MaxBatchWrite, len(p.Items))
		chunk := p.Items[start:end]

		keys := make([]ports.Key, 0, len(chunk))
		for _, item := range chunk {
			key, err := tableKey(item.PK, item.CreatedAt)
			if err != nil {
				return DeleteArticlesResult{}, err
			}
			keys = append(keys, key)
		}

		unprocessed, err := m.store.BatchDeleteItems(ctx, m.cfg.Table, keys)
		if err != nil {
			m.logger.Error("Batch delete chunk failed",
				zap.Int("chunkStart", start),
				zap.Int("chunkSize", len(chunk)),
				zap.Error(err),
			)
			result.UnprocessedItems = append(result.UnprocessedItems, chunk...)
			continue
		}

		failed := make(map[ItemKey]bool, len(unprocessed))
		for _, key := range unprocessed {
			var k ItemKey
			if err := attributevalue.UnmarshalMap(key, &k); err != nil {
				return DeleteArticlesResult{}, fmt.Errorf("failed to decode unprocessed key: %w", err)
			}
			failed[k] = true
			result.UnprocessedItems = append(result.UnprocessedItems, k)
		}

		for _, item := range chunk {
			if failed[item] {
				continue
			}
			result.DeletedCount++
			m.publish(ctx, EventArticleDeleted, article.Record{
				PK:      item.PK,
				Article: article.Article{ID: article.IDFromPartitionKey(item.PK), CreatedAt: item.CreatedAt},
			})
		}
	}

	result.Success = len(result.UnprocessedItems) == 0
	m.logger.Info("Articles deleted",
		zap.Int("requested", len(p.Items)),
		zap.Int("deleted", result.DeletedCount),
		zap.Int("unprocessed", len(result.UnprocessedItems)),
	)
	return result, nil
}

type changeSet struct {
	sets    map[string]any
	removes []string
}

func newChangeSet() *changeSet {
	return &changeSet{sets: make(map[string]any)}
}

func (c *changeSet) set(name string, value any) {
	c.sets[name] = value
}

func (c *changeSet) remove(name string) {
	c.removes = append(c.removes, name)
}

func requiredField[T any](c *changeSet, name string, p common.Patch[T], dst *T) error {
	if p.Cleared() {
		return pkgerrors.NewValidationError(fmt.Sprintf("%s cannot be removed", name))
	}
	if p.Present() {
		*dst = p.Value
		c.set(name, p.Value)
	}
	return nil
}

// optionalField treats an empty value like null so sparse index keys such as pathname are never blank
func optionalField[T any](c *changeSet, name string, p common.Patch[T], dst *T) {
	switch {
	case p.Cleared(), p.Present() && reflect.ValueOf(&p.Value).Elem().IsZero():
		var zero T
		*dst = zero
		c.remove(name)
	case p.Present():
		*dst = p.Value
		c.set(name, p.Value)
	}
}
