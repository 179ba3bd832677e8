// Package article holds the archive's article entity and its persisted key layout.
package article

import (
	"fmt"
	"strings"

	pkgerrors "archive-backend/pkg/errors"
)

// Type is the article variant
type Type string

const (
	TypePost   Type = "post"
	TypeShorts Type = "shorts"
	TypeClip   Type = "clip"
)

// Status is the publication state
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusPrivate   Status = "private"
)

// EntityType marks article items so they can be listed independently of type or status.
const EntityType = "ARTICLE"

const pkPrefix = "ARTICLE#"

// Valid reports whether t is a known type
func (t Type) Valid() bool {
	switch t {
	case TypePost, TypeShorts, TypeClip:
		return true
	}
	return false
}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusPrivate:
		return true
	}
	return false
}

// IntlContent is a translated rendition of an article
type IntlContent struct {
	Title       string `json:"title" dynamodbav:"title"`
	Content     string `json:"content" dynamodbav:"content"`
	Description string `json:"description,omitempty" dynamodbav:"description,omitempty"`
}

// Intl groups translations by language
type Intl struct {
	En *IntlContent `json:"en,omitempty" dynamodbav:"en,omitempty"`
}

// Site describes where a clipped article came from
type Site struct {
	Title       string `json:"title" dynamodbav:"title"`
	Link        string `json:"link" dynamodbav:"link"`
	FaviconURL  string `json:"favicon_url,omitempty" dynamodbav:"favicon_url,omitempty"`
	Description string `json:"description,omitempty" dynamodbav:"description,omitempty"`
}

// Article is a post, a short, or a clip of an external page
type Article struct {
	ID              string   `json:"id" dynamodbav:"id"`
	Title           string   `json:"title" dynamodbav:"title"`
	Description     string   `json:"description,omitempty" dynamodbav:"description,omitempty"`
	Content         string   `json:"content" dynamodbav:"content"`
	Status          Status   `json:"status" dynamodbav:"status"`
	Type            Type     `json:"type" dynamodbav:"type"`
	PublishedDate   int64    `json:"published_date" dynamodbav:"published_date"`
	UpdatedDate     int64    `json:"updated_date" dynamodbav:"updated_date"`
	Intl            *Intl    `json:"intl,omitempty" dynamodbav:"intl,omitempty"`
	Keywords        []string `json:"keywords,omitempty" dynamodbav:"keywords,omitempty"`
	Pathname        string   `json:"pathname,omitempty" dynamodbav:"pathname,omitempty"`
	URL             string   `json:"url,omitempty" dynamodbav:"url,omitempty"`
	Site            *Site    `json:"site,omitempty" dynamodbav:"site,omitempty"`
	ThumbnailImgURL string   `json:"thumbnail_img_url,omitempty" dynamodbav:"thumbnail_img_url,omitempty"`
	IsRecommended   *bool    `json:"is_recommended,omitempty" dynamodbav:"is_recommended,omitempty"`
	OriginTitle     string   `json:"origin_title,omitempty" dynamodbav:"origin_title,omitempty"`
	CreatedAt       int64    `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt       int64    `json:"updated_at" dynamodbav:"updated_at"`
}

// Record is the persisted shape: the article plus its derived keys.
// created_at doubles as the table sort key.
type Record struct {
	PK     string `json:"pk" dynamodbav:"pk"`
	GSI1PK string `json:"GSI1PK" dynamodbav:"GSI1PK"`
	Entity string `json:"entity" dynamodbav:"entity"`
	Article
}

// PartitionKey builds the table partition key for an article id
func PartitionKey(id string) string {
	return pkPrefix + id
}

// IDFromPartitionKey reverses PartitionKey
func IDFromPartitionKey(pk string) string {
	return strings.TrimPrefix(pk, pkPrefix)
}

// GSI1PK is the composite type/status attribute used for filtered listing.
// It is always derived, never accepted from callers.
func GSI1PK(t Type, s Status) string {
	return fmt.Sprintf("%s/%s", t, s)
}

// NewRecord derives every key attribute from the article
func NewRecord(a Article) Record {
	return Record{
		PK:      PartitionKey(a.ID),
		GSI1PK:  GSI1PK(a.Type, a.Status),
		Entity:  EntityType,
		Article: a,
	}
}

// Validate enforces field enums and the post/shorts versus clip variant rules
func (a *Article) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return pkgerrors.NewValidationError("title is required")
	}
	if !a.Type.Valid() {
		return pkgerrors.NewValidationError(fmt.Sprintf("invalid article type %q", a.Type))
	}
	if !a.Status.Valid() {
		return pkgerrors.NewValidationError(fmt.Sprintf("invalid article status %q", a.Status))
	}

	switch a.Type {
	case TypePost, TypeShorts:
		if a.Pathname == "" {
			return pkgerrors.NewValidationError(fmt.Sprintf("pathname is required for %s articles", a.Type))
		}
		if a.URL != "" || a.Site != nil {
			return pkgerrors.NewValidationError(fmt.Sprintf("url and site are not allowed for %s articles", a.Type))
		}
	case TypeClip:
		if a.URL == "" || a.Site == nil {
			return pkgerrors.NewValidationError("url and site are required for clip articles")
		}
		if a.Pathname != "" {
			return pkgerrors.NewValidationError("pathname is not allowed for clip articles")
		}
	}
	return nil
}
