package memory

import (
	"context"
	"fmt"
	"testing"

	"archive-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	PK      string `dynamodbav:"pk"`
	Created int64  `dynamodbav:"created_at"`
	Status  string `dynamodbav:"status,omitempty"`
	Kind    string `dynamodbav:"kind,omitempty"`
	Updated int64  `dynamodbav:"updated_date"`
}

func newTestStore() *Store {
	return NewStore(Table{
		Name:         "rows",
		PartitionKey: "pk",
		SortKey:      "created_at",
		Indexes: []Index{
			{Name: "status-updated", PartitionKey: "status", SortKey: "updated_date"},
		},
	})
}

func key(pk string, created int64) ports.Key {
	return ports.Key{
		"pk":         &types.AttributeValueMemberS{Value: pk},
		"created_at": &types.AttributeValueMemberN{Value: fmt.Sprint(created)},
	}
}

func seed(t *testing.T, s *Store, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		// updated dates collide in pairs to exercise tie ordering
		r := row{PK: fmt.Sprintf("ROW#%02d", i), Created: int64(i), Status: "published", Kind: []string{"a", "b"}[i%2], Updated: int64(1000 + i/2)}
		require.NoError(t, s.CreateItem(context.Background(), "rows", r))
	}
}

func decodeRows(t *testing.T, items []ports.Item) []row {
	t.Helper()
	var out []row
	require.NoError(t, attributevalue.UnmarshalListOfMaps(items, &out))
	return out
}

func TestStore_CreateAndGet(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.CreateItem(ctx, "rows", row{PK: "ROW#1", Created: 5}))
	assert.Equal(t, 1, s.Len("rows"))

	item, err := s.GetItem(ctx, "rows", key("ROW#1", 5))
	require.NoError(t, err)
	require.NotNil(t, item)

	miss, err := s.GetItem(ctx, "rows", key("ROW#1", 6))
	require.NoError(t, err)
	assert.Nil(t, miss)

	err = s.CreateItem(ctx, "missing", row{PK: "x"})
	assert.Error(t, err)
}

func TestStore_UpdateItem(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	require.NoError(t, s.CreateItem(ctx, "rows", row{PK: "ROW#1", Created: 5, Status: "draft", Kind: "a"}))

	out, err := s.UpdateItem(ctx, ports.UpdateInput{
		Table:  "rows",
		Key:    key("ROW#1", 5),
		Set:    map[string]any{"status": "published"},
		Remove: []string{"kind"},
	})
	require.NoError(t, err)

	var got row
	require.NoError(t, attributevalue.UnmarshalMap(out, &got))
	assert.Equal(t, "published", got.Status)
	assert.Empty(t, got.Kind)
	assert.Equal(t, int64(5), got.Created)

	_, err = s.UpdateItem(ctx, ports.UpdateInput{Table: "rows", Key: key("ROW#1", 5), Set: map[string]any{"created_at": 9}})
	assert.Error(t, err)
}

func TestStore_DeleteItemCondition(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	require.NoError(t, s.CreateItem(ctx, "rows", row{PK: "ROW#1", Created: 5}))

	err := s.DeleteItem(ctx, ports.DeleteInput{Table: "rows", Key: key("ROW#2", 5), RequireExists: "pk"})
	assert.ErrorIs(t, err, ports.ErrConditionFailed)

	require.NoError(t, s.DeleteItem(ctx, ports.DeleteInput{Table: "rows", Key: key("ROW#1", 5), RequireExists: "pk"}))
	assert.Equal(t, 0, s.Len("rows"))

	// unconditional deletes of missing items succeed
	assert.NoError(t, s.DeleteItem(ctx, ports.DeleteInput{Table: "rows", Key: key("ROW#1", 5)}))
}

func TestStore_QueryOrderAndPagination(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	seed(t, s, 11)

	for _, forward := range []bool{true, false} {
		t.Run(fmt.Sprintf("forward=%v", forward), func(t *testing.T) {
			in := ports.QueryInput{
				Table:            "rows",
				Index:            "status-updated",
				PartitionKey:     "status",
				PartitionValue:   "published",
				ScanIndexForward: forward,
			}

			full, err := s.QueryItems(ctx, in)
			require.NoError(t, err)
			require.Nil(t, full.LastEvaluatedKey)
			all := decodeRows(t, full.Items)
			require.Len(t, all, 11)

			for i := 1; i < len(all); i++ {
				if forward {
					assert.LessOrEqual(t, all[i-1].Updated, all[i].Updated)
				} else {
					assert.GreaterOrEqual(t, all[i-1].Updated, all[i].Updated)
				}
			}

			var paged []row
			in.Limit = 3
			pages := 0
			for {
				page, err := s.QueryItems(ctx, in)
				require.NoError(t, err)
				paged = append(paged, decodeRows(t, page.Items)...)
				pages++
				if page.LastEvaluatedKey == nil {
					break
				}
				in.ExclusiveStartKey = page.LastEvaluatedKey
			}
			assert.Equal(t, all, paged)
			assert.Equal(t, 4, pages)
		})
	}
}

func TestStore_QueryLimitBeforeFilter(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	seed(t, s, 6)

	page, err := s.QueryItems(ctx, ports.QueryInput{
		Table:            "rows",
		Index:            "status-updated",
		PartitionKey:     "status",
		PartitionValue:   "published",
		Filters:          []ports.Condition{ports.Equal("kind", "a")},
		Limit:            4,
		ScanIndexForward: true,
	})
	require.NoError(t, err)

	// four items evaluated, two of them match
	assert.Len(t, page.Items, 2)
	assert.NotNil(t, page.LastEvaluatedKey)
	assert.Contains(t, page.LastEvaluatedKey, "updated_date")
	assert.Contains(t, page.LastEvaluatedKey, "pk")
}

func TestStore_QueryRejectsWrongKey(t *testing.T) {
	s := newTestStore()

	_, err := s.QueryItems(context.Background(), ports.QueryInput{Table: "rows", Index: "status-updated", PartitionKey: "kind", PartitionValue: "a"})
	assert.Error(t, err)

	_, err = s.QueryItems(context.Background(), ports.QueryInput{Table: "rows", Index: "nope", PartitionKey: "status", PartitionValue: "a"})
	assert.Error(t, err)
}

func TestStore_SparseIndex(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	require.NoError(t, s.CreateItem(ctx, "rows", row{PK: "ROW#1", Created: 1}))

	page, err := s.ScanItems(ctx, ports.ScanInput{Table: "rows", Index: "status-updated"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestStore_ScanPagination(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	seed(t, s, 7)

	in := ports.ScanInput{Table: "rows", Limit: 2}
	seen := map[string]bool{}
	for {
		page, err := s.ScanItems(ctx, in)
		require.NoError(t, err)
		for _, r := range decodeRows(t, page.Items) {
			assert.False(t, seen[r.PK], "duplicate %s", r.PK)
			seen[r.PK] = true
		}
		if page.LastEvaluatedKey == nil {
			break
		}
		in.ExclusiveStartKey = page.LastEvaluatedKey
	}
	assert.Len(t, seen, 7)
}

func TestStore_BatchOperations(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	seed(t, s, 4)

	items, err := s.BatchGetItems(ctx, "rows", []ports.Key{key("ROW#00", 0), key("ROW#03", 3), key("ROW#99", 99)})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	s.FailBatchDelete = func(k ports.Key) bool {
		return k["pk"].(*types.AttributeValueMemberS).Value == "ROW#01"
	}
	unprocessed, err := s.BatchDeleteItems(ctx, "rows", []ports.Key{key("ROW#00", 0), key("ROW#01", 1)})
	require.NoError(t, err)
	assert.Equal(t, []ports.Key{key("ROW#01", 1)}, unprocessed)
	assert.Equal(t, 3, s.Len("rows"))

	tooMany := make([]ports.Key, ports.MaxBatchWrite+1)
	for i := range tooMany {
		tooMany[i] = key("ROW#00", 0)
	}
	_, err = s.BatchDeleteItems(ctx, "rows", tooMany)
	assert.Error(t, err)
}
