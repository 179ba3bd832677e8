package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!doctype html>
<html><head>
  <title> Plain title </title>
  <meta name="description" content="plain description">
  <meta property="og:title" content="OG title">
  <link rel="shortcut icon" href="/static/icon.png">
  <link rel="canonical" href="https://blog.example.com/post">
</head><body></body></html>`

func TestParse(t *testing.T) {
	meta, err := Parse([]byte(page), "https://blog.example.com/post?utm=1")

	require.NoError(t, err)
	assert.Equal(t, "OG title", meta.Title)
	assert.Equal(t, "plain description", meta.Description)
	assert.Equal(t, "https://blog.example.com/post", meta.Link)
	assert.Equal(t, "https://blog.example.com/static/icon.png", meta.FaviconURL)
}

func TestParseFallbacks(t *testing.T) {
	meta, err := Parse([]byte(`<html><head></head></html>`), "https://example.com/a/b")

	require.NoError(t, err)
	assert.Equal(t, "example.com", meta.Title)
	assert.Equal(t, "https://example.com/a/b", meta.Link)
	assert.Equal(t, "https://example.com/favicon.ico", meta.FaviconURL)
	assert.Empty(t, meta.Description)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/old":
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
		case "/new":
			assert.Contains(t, r.Header.Get("User-Agent"), "archive-bot")
			_, _ = w.Write([]byte(`<html><head><title>New</title></head></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	f := NewFetcher()

	meta, err := f.Fetch(context.Background(), srv.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, "New", meta.Title)
	assert.Equal(t, srv.URL+"/new", meta.Link)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "404")
}
