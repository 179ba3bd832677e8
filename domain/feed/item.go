// Package feed declares feed entries collected from RSS sources or the crawler.
// No action reads or writes them yet.
package feed

// Source is where a feed item was collected from
type Source string

const (
	SourceRSS     Source = "rss"
	SourceCrawler Source = "crawler"
)

// Item is a collected feed entry
type Item struct {
	ID          string `json:"id" dynamodbav:"id"`
	Source      Source `json:"source" dynamodbav:"source"`
	Title       string `json:"title" dynamodbav:"title"`
	Link        string `json:"link" dynamodbav:"link"`
	Description string `json:"description,omitempty" dynamodbav:"description,omitempty"`
	PublishedAt int64  `json:"published_at,omitempty" dynamodbav:"published_at,omitempty"`
	CreatedAt   int64  `json:"created_at" dynamodbav:"created_at"`
}

// Valid reports whether s is a known source
func (s Source) Valid() bool {
	return s == SourceRSS || s == SourceCrawler
}
