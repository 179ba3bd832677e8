package archive

import (
	"fmt"

	"archive-backend/application/ports"
	"archive-backend/domain/article"
	"archive-backend/pkg/common"
	pkgerrors "archive-backend/pkg/errors"
)

// Ordering and direction values accepted by list actions
const (
	OrderByPublishedDate = "published_date"
	OrderByUpdatedDate   = "updated_date"
	SortAsc              = "asc"
	SortDesc             = "desc"
)

// ItemKey is the full table key of an article, the unit of batch operations
type ItemKey struct {
	PK        string `json:"pk" dynamodbav:"pk" validate:"required"`
	CreatedAt int64  `json:"created_at" dynamodbav:"created_at"`
}

// CreateArticlePayload carries the new article's fields. id and timestamps are assigned on create.
type CreateArticlePayload struct {
	article.Article
}

// IDPayload addresses one article
type IDPayload struct {
	ID string `json:"id" validate:"required"`
}

// PathnamePayload addresses an article by pathname
type PathnamePayload struct {
	Pathname string `json:"pathname" validate:"required"`
}

// KeysPayload addresses several articles by table key
type KeysPayload struct {
	Items []ItemKey `json:"items" validate:"required,min=1,dive"`
}

// UpdateArticlePayload is a partial update. Absent fields are untouched; null removes optional fields.
type UpdateArticlePayload struct {
	ID              string                       `json:"id" validate:"required"`
	Title           common.Patch[string]         `json:"title"`
	Description     common.Patch[string]         `json:"description"`
	Content         common.Patch[string]         `json:"content"`
	Status          common.Patch[article.Status] `json:"status"`
	Type            common.Patch[article.Type]   `json:"type"`
	PublishedDate   common.Patch[int64]          `json:"published_date"`
	UpdatedDate     common.Patch[int64]          `json:"updated_date"`
	Intl            common.Patch[*article.Intl]  `json:"intl"`
	Keywords        common.Patch[[]string]       `json:"keywords"`
	Pathname        common.Patch[string]         `json:"pathname"`
	URL             common.Patch[string]         `json:"url"`
	Site            common.Patch[*article.Site]  `json:"site"`
	ThumbnailImgURL common.Patch[string]         `json:"thumbnail_img_url"`
	IsRecommended   common.Patch[bool]           `json:"is_recommended"`
	OriginTitle     common.Patch[string]         `json:"origin_title"`
}

// ListOptions controls ordering and paging of list actions
type ListOptions struct {
	OrderBy          string       `json:"orderBy" validate:"omitempty,oneof=published_date updated_date"`
	SortOrder        string       `json:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Limit            int32        `json:"limit" validate:"min=0"`
	LastEvaluatedKey ports.Cursor `json:"lastEvaluatedKey"`
}

// ListPayload lists every published article
type ListPayload struct {
	ListOptions
}

// StatusListPayload lists by status
type StatusListPayload struct {
	Status article.Status `json:"status" validate:"required"`
	ListOptions
}

// Validate checks the status enum
func (p *StatusListPayload) Validate() error {
	if !p.Status.Valid() {
		return pkgerrors.NewValidationError(fmt.Sprintf("invalid article status %q", p.Status))
	}
	return nil
}

// TypeStatusListPayload lists by type and status
type TypeStatusListPayload struct {
	Type   article.Type   `json:"type" validate:"required"`
	Status article.Status `json:"status" validate:"required"`
	ListOptions
}

// Validate checks both enums
func (p *TypeStatusListPayload) Validate() error {
	if !p.Type.Valid() {
		return pkgerrors.NewValidationError(fmt.Sprintf("invalid article type %q", p.Type))
	}
	if !p.Status.Valid() {
		return pkgerrors.NewValidationError(fmt.Sprintf("invalid article status %q", p.Status))
	}
	return nil
}

// ScanPayload walks every article, optionally of one type
type ScanPayload struct {
	Type             article.Type `json:"type"`
	Limit            int32        `json:"limit" validate:"min=0"`
	LastEvaluatedKey ports.Cursor `json:"lastEvaluatedKey"`
}

// Validate checks the optional type
func (p *ScanPayload) Validate() error {
	if p.Type != "" && !p.Type.Valid() {
		return pkgerrors.NewValidationError(fmt.Sprintf("invalid article type %q", p.Type))
	}
	return nil
}

// ArticleResult is returned by create, update and single lookups
type ArticleResult struct {
	Success bool            `json:"success,omitempty"`
	Article *article.Record `json:"article"`
}

// ArticlesResult is returned by batch get
type ArticlesResult struct {
	Articles []article.Record `json:"articles"`
}

// SuccessResult acknowledges a delete
type SuccessResult struct {
	Success bool `json:"success"`
}

// DeleteArticlesResult reports a batch delete. UnprocessedItems can be sent back to deleteArticles as is.
type DeleteArticlesResult struct {
	Success          bool      `json:"success"`
	DeletedCount     int       `json:"deletedCount"`
	UnprocessedItems []ItemKey `json:"unprocessedItems"`
}

// PageResult is one page of a listing
type PageResult struct {
	Items            []article.Record `json:"items"`
	LastEvaluatedKey ports.Cursor     `json:"lastEvaluatedKey,omitempty"`
}
