package actions

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	pkgerrors "archive-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoPayload struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count"`
}

func (p *echoPayload) Validate() error {
	if p.Count < 0 {
		return pkgerrors.NewValidationError("count must not be negative")
	}
	return nil
}

type echoResult struct {
	Name string `json:"name"`
}

func echo(_ context.Context, p echoPayload) (echoResult, error) {
	return echoResult{Name: p.Name}, nil
}

func TestHandle_Success(t *testing.T) {
	reg := Handle(GetArticle, echo)

	result := reg.Action.Run(context.Background(), json.RawMessage(`{"name":"a"}`))

	assert.False(t, result.Failed())
	assert.Equal(t, echoResult{Name: "a"}, result.Data)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(context.Context, echoPayload) (echoResult, error)
		payload string
		code    string
		message string
	}{
		{"malformed json", echo, `{"name":`, pkgerrors.CodeInvalidPayload, ""},
		{"missing payload fails validation", echo, ``, pkgerrors.CodeValidation, "name is required"},
		{"payload validate method", echo, `{"name":"a","count":-1}`, pkgerrors.CodeValidation, "count must not be negative"},
		{
			"app error code passes through",
			func(context.Context, echoPayload) (echoResult, error) {
				return echoResult{}, pkgerrors.NewNotFoundError("article")
			},
			`{"name":"a"}`, pkgerrors.CodeNotFound, "article not found",
		},
		{
			"plain error becomes action failure",
			func(context.Context, echoPayload) (echoResult, error) {
				return echoResult{}, errors.New("throttled")
			},
			`{"name":"a"}`, "CREATE_ARTICLE_FAILED", "throttled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Handle(CreateArticle, tt.fn).Action.Run(context.Background(), json.RawMessage(tt.payload))

			require.True(t, result.Failed())
			assert.Nil(t, result.Data)
			assert.Equal(t, tt.code, result.Error.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, result.Error.Message)
			}
		})
	}
}

func TestFailureCode(t *testing.T) {
	assert.Equal(t, "CREATE_ARTICLE_FAILED", FailureCode("createArticle"))
	assert.Equal(t, "GET_ALL_PUBLISHED_ARTICLES_FAILED", FailureCode("getAllPublishedArticles"))
	assert.Equal(t, "TRANSLATE_FAILED", FailureCode("translate"))
}

func TestRegistry_Resolve(t *testing.T) {
	r, err := NewRegistry([]Registration{Handle(GetAllPublishedArticles, echo), Handle(GetArticle, echo)})
	require.NoError(t, err)

	route, err := r.Resolve("archive", "getAllPublishedArticles")
	require.NoError(t, err)
	assert.True(t, route.SkipAuth)

	route, err = r.Resolve("archive", "getArticle")
	require.NoError(t, err)
	assert.False(t, route.SkipAuth)

	_, err = r.Resolve("nope", "getArticle")
	assert.ErrorIs(t, err, ErrModuleNotFound)

	_, err = r.Resolve("archive", "nope")
	assert.ErrorIs(t, err, ErrActionNotFound)

	assert.Equal(t, []Tag{GetAllPublishedArticles, GetArticle}, r.Tags())
}

func TestRegistry_RejectsBadRegistrations(t *testing.T) {
	_, err := NewRegistry([]Registration{Handle(GetArticle, echo)}, []Registration{Handle(GetArticle, echo)})
	assert.ErrorContains(t, err, "already registered")

	_, err = NewRegistry([]Registration{Handle(Tag{"archive", "unknown"}, echo)})
	assert.ErrorContains(t, err, "not in the catalog")
}

func TestRegistry_Complete(t *testing.T) {
	r, err := NewRegistry([]Registration{Handle(GetArticle, echo)})
	require.NoError(t, err)

	assert.Len(t, r.Missing(), len(Catalog)-1)
	assert.Error(t, r.Complete())
}

func TestCatalogHasNoDuplicates(t *testing.T) {
	seen := map[Tag]bool{}
	for _, e := range Catalog {
		assert.False(t, seen[e.Tag], "duplicate tag %s", e.Tag)
		seen[e.Tag] = true
	}
}
