// Package utils implements helper actions backed by external services: translation and page metadata.
package utils

import (
	"context"

	"archive-backend/application/actions"
	"archive-backend/application/ports"
	"archive-backend/domain/article"
	pkgerrors "archive-backend/pkg/errors"

	"go.uber.org/zap"
)

// DefaultTargetLanguage is used when a translate payload names none
const DefaultTargetLanguage = "en"

// Module serves the utils actions
type Module struct {
	translator ports.Translator
	fetcher    ports.MetadataFetcher
	logger     *zap.Logger
}

// NewModule creates the utils module
func NewModule(translator ports.Translator, fetcher ports.MetadataFetcher, logger *zap.Logger) *Module {
	return &Module{
		translator: translator,
		fetcher:    fetcher,
		logger:     logger,
	}
}

// Actions returns the utils registrations
func (m *Module) Actions() []actions.Registration {
	return []actions.Registration{
		actions.Handle(actions.Translate, m.Translate),
		actions.Handle(actions.GetSiteMetadata, m.GetSiteMetadata),
	}
}

// TranslatePayload is the text of an article to translate
type TranslatePayload struct {
	Title          string `json:"title" validate:"required"`
	Content        string `json:"content" validate:"required"`
	Description    string `json:"description"`
	TargetLanguage string `json:"targetLanguage" validate:"omitempty,oneof=en"`
}

// TranslateResult is shaped like an article's intl field
type TranslateResult struct {
	Intl article.Intl `json:"intl"`
}

// SiteMetadataPayload names the page to inspect
type SiteMetadataPayload struct {
	URL string `json:"url" validate:"required,url"`
}

// SiteMetadataResult is shaped like a clip's site field
type SiteMetadataResult struct {
	Site article.Site `json:"site"`
}

// Translate renders the article text in the target language
func (m *Module) Translate(ctx context.Context, p TranslatePayload) (TranslateResult, error) {
	if p.TargetLanguage == "" {
		p.TargetLanguage = DefaultTargetLanguage
	}

	out, err := m.translator.Translate(ctx, ports.TranslationRequest{
		Title:          p.Title,
		Content:        p.Content,
		Description:    p.Description,
		TargetLanguage: p.TargetLanguage,
	})
	if err != nil {
		return TranslateResult{}, pkgerrors.NewExternalError("translation", err)
	}

	m.logger.Info("Article translated",
		zap.String("targetLanguage", p.TargetLanguage),
		zap.Int("contentLength", len(out.Content)),
	)
	return TranslateResult{Intl: article.Intl{En: &article.IntlContent{
		Title:       out.Title,
		Content:     out.Content,
		Description: out.Description,
	}}}, nil
}

// GetSiteMetadata reads a page's title, favicon and description for clip articles
func (m *Module) GetSiteMetadata(ctx context.Context, p SiteMetadataPayload) (SiteMetadataResult, error) {
	meta, err := m.fetcher.Fetch(ctx, p.URL)
	if err != nil {
		return SiteMetadataResult{}, pkgerrors.NewExternalError("site metadata", err)
	}
	return SiteMetadataResult{Site: article.Site{
		Title:       meta.Title,
		Link:        meta.Link,
		FaviconURL:  meta.FaviconURL,
		Description: meta.Description,
	}}, nil
}
