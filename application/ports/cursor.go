package ports

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

// Cursor is the JSON form of a LastEvaluatedKey. Clients must send it back unmodified.
type Cursor map[string]any

// CursorFromKey converts a store key to its wire form. An empty key yields a nil cursor.
func CursorFromKey(key Key) (Cursor, error) {
	if len(key) == 0 {
		return nil, nil
	}
	var c Cursor
	if err := attributevalue.UnmarshalMap(key, &c); err != nil {
		return nil, fmt.Errorf("failed to encode cursor: %w", err)
	}
	return c, nil
}

// Key converts the cursor back to a store key. A nil cursor yields a nil key.
func (c Cursor) Key() (Key, error) {
	if len(c) == 0 {
		return nil, nil
	}
	key, err := attributevalue.MarshalMap(map[string]any(c))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cursor: %w", err)
	}
	return key, nil
}
