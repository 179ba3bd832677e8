// Package bookmark holds the dashboard's bookmark groups
package bookmark

import (
	"fmt"
	"strings"
)

const pkPrefix = "BOOKMARKGROUP#"

// Item is a single bookmark embedded in a group
type Item struct {
	ID          string `json:"id" dynamodbav:"id"`
	Title       string `json:"title" dynamodbav:"title" validate:"required"`
	Description string `json:"description,omitempty" dynamodbav:"description,omitempty"`
	URL         string `json:"url" dynamodbav:"url" validate:"required,url"`
	FaviconURL  string `json:"favicon_url,omitempty" dynamodbav:"favicon_url,omitempty"`
}

// Group is an ordered, collapsible list of bookmarks
type Group struct {
	ID          string `json:"id" dynamodbav:"id"`
	Title       string `json:"title" dynamodbav:"title"`
	Description string `json:"description,omitempty" dynamodbav:"description,omitempty"`
	Collapsed   bool   `json:"collapsed" dynamodbav:"collapsed"`
	Order       int    `json:"order" dynamodbav:"order"`
	Items       []Item `json:"items" dynamodbav:"items"`
	CreatedAt   int64  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   int64  `json:"updated_at" dynamodbav:"updated_at"`
}

// Record is the persisted group with its composite key
type Record struct {
	PK string `json:"pk" dynamodbav:"pk"`
	SK string `json:"sk" dynamodbav:"sk"`
	Group
}

// PartitionKey builds the partition key for a group id
func PartitionKey(id string) string {
	return pkPrefix + id
}

// SortKey builds the sort key; it embeds created_at, so it never changes after creation.
func SortKey(createdAt int64, id string) string {
	return fmt.Sprintf("%s%d#%s", pkPrefix, createdAt, id)
}

// IDFromPartitionKey reverses PartitionKey
func IDFromPartitionKey(pk string) string {
	return strings.TrimPrefix(pk, pkPrefix)
}

// NewRecord derives the key pair for g
func NewRecord(g Group) Record {
	if g.Items == nil {
		g.Items = []Item{}
	}
	return Record{
		PK:    PartitionKey(g.ID),
		SK:    SortKey(g.CreatedAt, g.ID),
		Group: g,
	}
}
