package article

import (
	"testing"

	pkgerrors "archive-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestGSI1PK(t *testing.T) {
	assert.Equal(t, "post/draft", GSI1PK(TypePost, StatusDraft))
	assert.Equal(t, "clip/published", GSI1PK(TypeClip, StatusPublished))
}

func TestNewRecordDerivesKeys(t *testing.T) {
	rec := NewRecord(Article{ID: "abc", Type: TypeShorts, Status: StatusPrivate, CreatedAt: 42})

	assert.Equal(t, "ARTICLE#abc", rec.PK)
	assert.Equal(t, "shorts/private", rec.GSI1PK)
	assert.Equal(t, EntityType, rec.Entity)
	assert.Equal(t, "abc", IDFromPartitionKey(rec.PK))
	assert.Equal(t, int64(42), rec.CreatedAt)
}

func TestValidate(t *testing.T) {
	site := &Site{Title: "Example", Link: "https://example.com"}

	tests := []struct {
		name    string
		article Article
		wantErr string
	}{
		{"post ok", Article{Title: "t", Type: TypePost, Status: StatusDraft, Pathname: "p"}, ""},
		{"shorts ok", Article{Title: "t", Type: TypeShorts, Status: StatusPublished, Pathname: "p"}, ""},
		{"clip ok", Article{Title: "t", Type: TypeClip, Status: StatusDraft, URL: "https://example.com/a", Site: site}, ""},
		{"missing title", Article{Type: TypePost, Status: StatusDraft, Pathname: "p"}, "title is required"},
		{"bad type", Article{Title: "t", Type: "essay", Status: StatusDraft}, "invalid article type"},
		{"bad status", Article{Title: "t", Type: TypePost, Status: "gone", Pathname: "p"}, "invalid article status"},
		{"post needs pathname", Article{Title: "t", Type: TypePost, Status: StatusDraft}, "pathname is required"},
		{"post forbids url", Article{Title: "t", Type: TypePost, Status: StatusDraft, Pathname: "p", URL: "https://x"}, "not allowed for post"},
		{"post forbids site", Article{Title: "t", Type: TypeShorts, Status: StatusDraft, Pathname: "p", Site: site}, "not allowed for shorts"},
		{"clip needs url", Article{Title: "t", Type: TypeClip, Status: StatusDraft, Site: site}, "required for clip"},
		{"clip needs site", Article{Title: "t", Type: TypeClip, Status: StatusDraft, URL: "https://x"}, "required for clip"},
		{"clip forbids pathname", Article{Title: "t", Type: TypeClip, Status: StatusDraft, URL: "https://x", Site: site, Pathname: "p"}, "pathname is not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.article.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
			assert.True(t, pkgerrors.IsValidation(err))
		})
	}
}
