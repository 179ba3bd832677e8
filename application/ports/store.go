package ports

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item is a raw store record
type Item = map[string]types.AttributeValue

// Key locates a single item: partition key plus sort key, and index keys for cursors.
type Key = map[string]types.AttributeValue

// ErrConditionFailed is returned when a conditional write does not hold
var ErrConditionFailed = errors.New("conditional check failed")

// Condition is an equality test on a top-level attribute
type Condition struct {
	Name  string
	Value any
}

// Equal builds an equality condition
func Equal(name string, value any) Condition {
	return Condition{Name: name, Value: value}
}

// QueryInput selects items sharing one partition key value, on the table or an index
type QueryInput struct {
	Table             string
	Index             string
	PartitionKey      string
	PartitionValue    any
	Filters           []Condition
	Limit             int32
	ExclusiveStartKey Key
	ScanIndexForward  bool
}

// ScanInput walks a whole table or index
type ScanInput struct {
	Table             string
	Index             string
	Filters           []Condition
	Limit             int32
	ExclusiveStartKey Key
}

// Page is one slice of a query or scan. A nil LastEvaluatedKey means the listing is complete.
type Page struct {
	Items            []Item
	LastEvaluatedKey Key
}

// UpdateInput sets and removes top-level attributes of an existing key.
// Values in Set are marshalled with attributevalue.
type UpdateInput struct {
	Table  string
	Key    Key
	Set    map[string]any
	Remove []string
}

// DeleteInput removes one item. When RequireExists names an attribute the delete is
// conditional on it existing and fails with ErrConditionFailed otherwise.
type DeleteInput struct {
	Table         string
	Key           Key
	RequireExists string
}

// Store is the key-value store adapter every module persists through.
// Implementations log and return store errors; they never retry.
type Store interface {
	CreateItem(ctx context.Context, table string, item any) error
	GetItem(ctx context.Context, table string, key Key) (Item, error)
	UpdateItem(ctx context.Context, in UpdateInput) (Item, error)
	DeleteItem(ctx context.Context, in DeleteInput) error
	QueryItems(ctx context.Context, in QueryInput) (*Page, error)
	ScanItems(ctx context.Context, in ScanInput) (*Page, error)
	BatchGetItems(ctx context.Context, table string, keys []Key) ([]Item, error)
	// BatchDeleteItems sends at most MaxBatchWrite keys and returns the ones the store left unprocessed
	BatchDeleteItems(ctx context.Context, table string, keys []Key) ([]Key, error)
}

// Batch limits imposed by DynamoDB
const (
	MaxBatchWrite = 25
	MaxBatchGet   = 100
)
