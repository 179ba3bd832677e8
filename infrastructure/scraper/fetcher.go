// Package scraper reads site metadata from a page's HTML head.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"archive-backend/application/ports"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const userAgent = "Mozilla/5.0 (compatible; archive-bot/1.0)"

// Fetcher implements ports.MetadataFetcher
type Fetcher struct {
	client *resty.Client
}

// NewFetcher creates a fetcher with a bounded timeout and a couple of retries
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: resty.New().
			SetTimeout(10*time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(500*time.Millisecond).
			SetHeader("User-Agent", userAgent).
			SetHeader("Accept", "text/html,application/xhtml+xml"),
	}
}

// Fetch downloads pageURL and extracts its title, favicon and description.
// Open Graph values win over the plain tags. Link is the final URL after redirects.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*ports.SiteMetadata, error) {
	resp, err := f.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode(), pageURL)
	}

	final := pageURL
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		final = raw.Request.URL.String()
	}
	return Parse(resp.Body(), final)
}

// Parse extracts metadata from an HTML document served at pageURL
func Parse(body []byte, pageURL string) (*ports.SiteMetadata, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	meta := &ports.SiteMetadata{
		Title:       firstNonEmpty(metaContent(doc, "og:title"), doc.Find("head title").First().Text()),
		Link:        pageURL,
		Description: firstNonEmpty(metaContent(doc, "og:description"), metaContent(doc, "description")),
	}
	if canonical, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok {
		meta.Link = resolve(base, canonical)
	}

	favicon := "/favicon.ico"
	doc.Find("link[rel]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel := strings.ToLower(s.AttrOr("rel", ""))
		href := s.AttrOr("href", "")
		if href != "" && strings.Contains(rel, "icon") {
			favicon = href
			return false
		}
		return true
	})
	meta.FaviconURL = resolve(base, favicon)

	if meta.Title == "" {
		meta.Title = base.Host
	}
	return meta, nil
}

// metaContent reads <meta property=name> or <meta name=name>
func metaContent(doc *goquery.Document, name string) string {
	sel := doc.Find(fmt.Sprintf(`meta[property="%s"], meta[name="%s"]`, name, name)).First()
	return strings.TrimSpace(sel.AttrOr("content", ""))
}

func resolve(base *url.URL, ref string) string {
	u, err := base.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return u.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
