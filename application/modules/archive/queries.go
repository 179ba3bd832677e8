package archive

import (
	"context"
	"fmt"

	"archive-backend/application/ports"
	"archive-backend/domain/article"
	pkgerrors "archive-backend/pkg/errors"
)

// GetArticle returns one article by id
func (m *Module) GetArticle(ctx context.Context, p IDPayload) (ArticleResult, error) {
	rec, err := m.findByID(ctx, p.ID)
	if err != nil {
		return ArticleResult{}, err
	}
	return ArticleResult{Article: rec}, nil
}

// GetArticles fetches articles by table key in one batch read. Missing keys are skipped.
func (m *Module) GetArticles(ctx context.Context, p KeysPayload) (ArticlesResult, error) {
	if len(p.Items) > ports.MaxBatchGet {
		return ArticlesResult{}, pkgerrors.NewValidationError(fmt.Sprintf("at most %d items can be fetched at once", ports.MaxBatchGet))
	}

	keys := make([]ports.Key, 0, len(p.Items))
	for _, item := range p.Items {
		key, err := tableKey(item.PK, item.CreatedAt)
		if err != nil {
			return ArticlesResult{}, err
		}
		keys = append(keys, key)
	}

	items, err := m.store.BatchGetItems(ctx, m.cfg.Table, keys)
	if err != nil {
		return ArticlesResult{}, pkgerrors.NewDatabaseError("batch get articles", err)
	}
	records, err := decodeRecords(items)
	if err != nil {
		return ArticlesResult{}, err
	}
	return ArticlesResult{Articles: records}, nil
}

// GetAllArticles scans every article regardless of status, optionally of one type
func (m *Module) GetAllArticles(ctx context.Context, p ScanPayload) (PageResult, error) {
	start, err := p.LastEvaluatedKey.Key()
	if err != nil {
		return PageResult{}, pkgerrors.NewValidationError("invalid lastEvaluatedKey").WithCause(err)
	}

	filters := []ports.Condition{ports.Equal("entity", article.EntityType)}
	if p.Type != "" {
		filters = append(filters, ports.Equal("type", string(p.Type)))
	}

	page, err := m.store.ScanItems(ctx, ports.ScanInput{
		Table:             m.cfg.Table,
		Filters:           filters,
		Limit:             p.Limit,
		ExclusiveStartKey: start,
	})
	if err != nil {
		return PageResult{}, pkgerrors.NewDatabaseError("scan articles", err)
	}
	return toPageResult(page)
}

// GetArticlesByStatus lists one status ordered by published or updated date
func (m *Module) GetArticlesByStatus(ctx context.Context, p StatusListPayload) (PageResult, error) {
	return m.listByStatus(ctx, p.Status, p.ListOptions)
}

// GetAllPublishedArticles is the public listing of published articles
func (m *Module) GetAllPublishedArticles(ctx context.Context, p ListPayload) (PageResult, error) {
	return m.listByStatus(ctx, article.StatusPublished, p.ListOptions)
}

// GetArticlesByTypeStatus lists one type/status combination
func (m *Module) GetArticlesByTypeStatus(ctx context.Context, p TypeStatusListPayload) (PageResult, error) {
	index := m.cfg.GSI1PublishedDateIndex
	if p.OrderBy == OrderByUpdatedDate {
		index = m.cfg.GSI1UpdatedDateIndex
	}
	return m.list(ctx, index, "GSI1PK", article.GSI1PK(p.Type, p.Status), p.ListOptions)
}

func (m *Module) listByStatus(ctx context.Context, status article.Status, opts ListOptions) (PageResult, error) {
	index := m.cfg.StatusPublishedDateIndex
	if opts.OrderBy == OrderByUpdatedDate {
		index = m.cfg.StatusUpdatedDateIndex
	}
	return m.list(ctx, index, "status", string(status), opts)
}

func (m *Module) list(ctx context.Context, index, partitionKey, partitionValue string, opts ListOptions) (PageResult, error) {
	start, err := opts.LastEvaluatedKey.Key()
	if err != nil {
		return PageResult{}, pkgerrors.NewValidationError("invalid lastEvaluatedKey").WithCause(err)
	}

	page, err := m.store.QueryItems(ctx, ports.QueryInput{
		Table:             m.cfg.Table,
		Index:             index,
		PartitionKey:      partitionKey,
		PartitionValue:    partitionValue,
		Limit:             opts.Limit,
		ExclusiveStartKey: start,
		ScanIndexForward:  opts.SortOrder == SortAsc,
	})
	if err != nil {
		return PageResult{}, pkgerrors.NewDatabaseError("query articles", err)
	}
	return toPageResult(page)
}

// GetArticleByPathname returns the first article indexed under the pathname, whatever its status.
// The index is not unique; additional matches are ignored.
func (m *Module) GetArticleByPathname(ctx context.Context, p PathnamePayload) (ArticleResult, error) {
	return m.findByPathname(ctx, p.Pathname, nil)
}

// GetPublishedArticleByPathname is the public lookup; drafts and private articles are NOT_FOUND.
func (m *Module) GetPublishedArticleByPathname(ctx context.Context, p PathnamePayload) (ArticleResult, error) {
	return m.findByPathname(ctx, p.Pathname, []ports.Condition{ports.Equal("status", string(article.StatusPublished))})
}

func (m *Module) findByPathname(ctx context.Context, pathname string, filters []ports.Condition) (ArticleResult, error) {
	page, err := m.store.QueryItems(ctx, ports.QueryInput{
		Table:          m.cfg.Table,
		Index:          m.cfg.PathnameIndex,
		PartitionKey:   "pathname",
		PartitionValue: pathname,
		Filters:        filters,
	})
	if err != nil {
		return ArticleResult{}, pkgerrors.NewDatabaseError("query article by pathname", err)
	}
	if len(page.Items) == 0 {
		return ArticleResult{}, pkgerrors.NewNotFoundError("article")
	}

	records, err := decodeRecords(page.Items[:1])
	if err != nil {
		return ArticleResult{}, err
	}
	return ArticleResult{Article: &records[0]}, nil
}

func toPageResult(page *ports.Page) (PageResult, error) {
	records, err := decodeRecords(page.Items)
	if err != nil {
		return PageResult{}, err
	}
	cursor, err := ports.CursorFromKey(page.LastEvaluatedKey)
	if err != nil {
		return PageResult{}, err
	}
	return PageResult{Items: records, LastEvaluatedKey: cursor}, nil
}
