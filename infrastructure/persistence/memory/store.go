// Package memory is an in-process ports.Store for tests and local runs.
// It evaluates queries the way DynamoDB does for the cases the modules rely on:
// sort-key ordering, Limit counted before filters, and LastEvaluatedKey positioning.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strconv"
	"strings"
	"sync"

	"archive-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Index is a secondary index key schema. SortKey may be empty.
type Index struct {
	Name         string
	PartitionKey string
	SortKey      string
}

// Table is a table key schema with its secondary indexes
type Table struct {
	Name         string
	PartitionKey string
	SortKey      string
	Indexes      []Index
}

// Store keeps items per table in memory
type Store struct {
	mu     sync.RWMutex
	tables map[string]*table

	// FailBatchDelete, when set, marks keys a batch delete leaves unprocessed.
	FailBatchDelete func(key ports.Key) bool
}

type table struct {
	schema Table
	items  map[string]ports.Item
}

var _ ports.Store = (*Store)(nil)

// NewStore creates a store with the given tables
func NewStore(tables ...Table) *Store {
	s := &Store{tables: make(map[string]*table, len(tables))}
	for _, t := range tables {
		s.tables[t.Name] = &table{schema: t, items: make(map[string]ports.Item)}
	}
	return s
}

// Len returns the number of items in a table
func (s *Store) Len(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[name]
	if !ok {
		return 0
	}
	return len(t.items)
}

func (s *Store) table(name string) (*table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %s does not exist", name)
	}
	return t, nil
}

// CreateItem stores item, replacing any item with the same key
func (s *Store) CreateItem(_ context.Context, name string, item any) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(name)
	if err != nil {
		return err
	}
	id, err := t.primaryKey(av)
	if err != nil {
		return err
	}
	t.items[id] = av
	return nil
}

// GetItem returns a copy of the item, or nil
func (s *Store) GetItem(_ context.Context, name string, key ports.Key) (ports.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(name)
	if err != nil {
		return nil, err
	}
	id, err := t.primaryKey(key)
	if err != nil {
		return nil, err
	}
	item, ok := t.items[id]
	if !ok {
		return nil, nil
	}
	return maps.Clone(item), nil
}

// UpdateItem applies the changes, creating the item from its key when missing as DynamoDB does
func (s *Store) UpdateItem(_ context.Context, in ports.UpdateInput) (ports.Item, error) {
	if len(in.Set) == 0 && len(in.Remove) == 0 {
		return nil, fmt.Errorf("update has no changes")
	}

	set := make(map[string]types.AttributeValue, len(in.Set))
	for name, value := range in.Set {
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", name, err)
		}
		set[name] = av
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(in.Table)
	if err != nil {
		return nil, err
	}
	id, err := t.primaryKey(in.Key)
	if err != nil {
		return nil, err
	}

	item, ok := t.items[id]
	if !ok {
		item = maps.Clone(in.Key)
	} else {
		item = maps.Clone(item)
	}
	for name, av := range set {
		if name == t.schema.PartitionKey || name == t.schema.SortKey {
			return nil, fmt.Errorf("cannot update key attribute %s", name)
		}
		item[name] = av
	}
	for _, name := range in.Remove {
		delete(item, name)
	}

	t.items[id] = item
	return maps.Clone(item), nil
}

// DeleteItem removes an item; with RequireExists a miss is ErrConditionFailed
func (s *Store) DeleteItem(_ context.Context, in ports.DeleteInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(in.Table)
	if err != nil {
		return err
	}
	id, err := t.primaryKey(in.Key)
	if err != nil {
		return err
	}

	item, ok := t.items[id]
	if in.RequireExists != "" {
		if !ok {
			return ports.ErrConditionFailed
		}
		if _, has := item[in.RequireExists]; !has {
			return ports.ErrConditionFailed
		}
	}
	delete(t.items, id)
	return nil
}

// QueryItems returns the items of one partition in sort-key order
func (s *Store) QueryItems(_ context.Context, in ports.QueryInput) (*ports.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(in.Table)
	if err != nil {
		return nil, err
	}
	schema, err := t.keySchema(in.Index)
	if err != nil {
		return nil, err
	}
	if schema.PartitionKey != in.PartitionKey {
		return nil, fmt.Errorf("%s is not the partition key of %s", in.PartitionKey, schema.Name)
	}

	want, err := attributevalue.Marshal(in.PartitionValue)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal partition value: %w", err)
	}

	var candidates []ports.Item
	for _, item := range t.items {
		if !schema.covers(item) {
			continue
		}
		if equalAV(item[schema.PartitionKey], want) {
			candidates = append(candidates, item)
		}
	}

	order := t.ordering(schema, false)
	sort.SliceStable(candidates, func(i, j int) bool {
		c := order(candidates[i], candidates[j])
		if in.ScanIndexForward {
			return c < 0
		}
		return c > 0
	})

	return t.page(candidates, schema, in.ExclusiveStartKey, in.Limit, in.Filters, func(a, b ports.Item) int {
		if in.ScanIndexForward {
			return order(a, b)
		}
		return -order(a, b)
	}), nil
}

// ScanItems walks a table or index in a stable key order
func (s *Store) ScanItems(_ context.Context, in ports.ScanInput) (*ports.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(in.Table)
	if err != nil {
		return nil, err
	}
	schema, err := t.keySchema(in.Index)
	if err != nil {
		return nil, err
	}

	var candidates []ports.Item
	for _, item := range t.items {
		if schema.covers(item) {
			candidates = append(candidates, item)
		}
	}

	order := t.ordering(schema, true)
	sort.SliceStable(candidates, func(i, j int) bool {
		return order(candidates[i], candidates[j]) < 0
	})

	return t.page(candidates, schema, in.ExclusiveStartKey, in.Limit, in.Filters, order), nil
}

// BatchGetItems returns the items that exist, skipping misses
func (s *Store) BatchGetItems(_ context.Context, name string, keys []ports.Key) ([]ports.Item, error) {
	if len(keys) > ports.MaxBatchGet {
		return nil, fmt.Errorf("batch get accepts at most %d keys, got %d", ports.MaxBatchGet, len(keys))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(name)
	if err != nil {
		return nil, err
	}

	var out []ports.Item
	for _, key := range keys {
		id, err := t.primaryKey(key)
		if err != nil {
			return nil, err
		}
		if item, ok := t.items[id]; ok {
			out = append(out, maps.Clone(item))
		}
	}
	return out, nil
}

// BatchDeleteItems deletes up to MaxBatchWrite keys. Keys rejected by FailBatchDelete are returned.
func (s *Store) BatchDeleteItems(_ context.Context, name string, keys []ports.Key) ([]ports.Key, error) {
	if len(keys) > ports.MaxBatchWrite {
		return nil, fmt.Errorf("batch delete accepts at most %d keys, got %d", ports.MaxBatchWrite, len(keys))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(name)
	if err != nil {
		return nil, err
	}

	var unprocessed []ports.Key
	for _, key := range keys {
		if s.FailBatchDelete != nil && s.FailBatchDelete(key) {
			unprocessed = append(unprocessed, key)
			continue
		}
		id, err := t.primaryKey(key)
		if err != nil {
			return nil, err
		}
		delete(t.items, id)
	}
	return unprocessed, nil
}

// keySchema resolves the table itself for an empty name
func (t *table) keySchema(index string) (Index, error) {
	if index == "" {
		return Index{Name: t.schema.Name, PartitionKey: t.schema.PartitionKey, SortKey: t.schema.SortKey}, nil
	}
	for _, idx := range t.schema.Indexes {
		if idx.Name == index {
			return idx, nil
		}
	}
	return Index{}, fmt.Errorf("index %s does not exist on %s", index, t.schema.Name)
}

func (t *table) primaryKey(item map[string]types.AttributeValue) (string, error) {
	pk, ok := item[t.schema.PartitionKey]
	if !ok {
		return "", fmt.Errorf("missing partition key %s", t.schema.PartitionKey)
	}
	id := scalar(pk)
	if t.schema.SortKey != "" {
		sk, ok := item[t.schema.SortKey]
		if !ok {
			return "", fmt.Errorf("missing sort key %s", t.schema.SortKey)
		}
		id += "|" + scalar(sk)
	}
	return id, nil
}

// ordering compares by the index keys, then the table keys so that equal index
// sort values keep a deterministic order. Scans also order by partition key.
func (t *table) ordering(schema Index, byPartition bool) func(a, b ports.Item) int {
	var attrs []string
	if byPartition {
		attrs = append(attrs, schema.PartitionKey)
	}
	if schema.SortKey != "" {
		attrs = append(attrs, schema.SortKey)
	}
	attrs = append(attrs, t.schema.PartitionKey)
	if t.schema.SortKey != "" {
		attrs = append(attrs, t.schema.SortKey)
	}

	return func(a, b ports.Item) int {
		for _, name := range attrs {
			if c := compareAV(a[name], b[name]); c != 0 {
				return c
			}
		}
		return 0
	}
}

// page skips past the start key, evaluates at most limit items and filters what it evaluated
func (t *table) page(sorted []ports.Item, schema Index, start ports.Key, limit int32, filters []ports.Condition, order func(a, b ports.Item) int) *ports.Page {
	i := 0
	if len(start) > 0 {
		for i < len(sorted) && order(sorted[i], start) <= 0 {
			i++
		}
	}

	end := len(sorted)
	if limit > 0 && i+int(limit) < end {
		end = i + int(limit)
	}

	page := &ports.Page{Items: []ports.Item{}}
	for _, item := range sorted[i:end] {
		if matches(item, filters) {
			page.Items = append(page.Items, maps.Clone(item))
		}
	}

	if end < len(sorted) && end > i {
		page.LastEvaluatedKey = t.keyOf(sorted[end-1], schema)
	}
	return page
}

func (t *table) keyOf(item ports.Item, schema Index) ports.Key {
	key := ports.Key{}
	for _, name := range []string{t.schema.PartitionKey, t.schema.SortKey, schema.PartitionKey, schema.SortKey} {
		if name == "" {
			continue
		}
		if av, ok := item[name]; ok {
			key[name] = av
		}
	}
	return key
}

// covers reports whether item carries the index keys; indexes are sparse
func (idx Index) covers(item ports.Item) bool {
	if _, ok := item[idx.PartitionKey]; !ok {
		return false
	}
	if idx.SortKey != "" {
		if _, ok := item[idx.SortKey]; !ok {
			return false
		}
	}
	return true
}

func matches(item ports.Item, filters []ports.Condition) bool {
	for _, f := range filters {
		want, err := attributevalue.Marshal(f.Value)
		if err != nil || !equalAV(item[f.Name], want) {
			return false
		}
	}
	return true
}

func equalAV(a, b types.AttributeValue) bool {
	if a == nil || b == nil {
		return false
	}
	if kind(a) != kind(b) {
		return false
	}
	return compareAV(a, b) == 0
}

// compareAV orders numbers numerically and everything else by its string form
func compareAV(a, b types.AttributeValue) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	an, aok := a.(*types.AttributeValueMemberN)
	bn, bok := b.(*types.AttributeValueMemberN)
	if aok && bok {
		x, errX := strconv.ParseFloat(an.Value, 64)
		y, errY := strconv.ParseFloat(bn.Value, 64)
		if errX == nil && errY == nil {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	if c := strings.Compare(kind(a), kind(b)); c != 0 {
		return c
	}
	return strings.Compare(scalar(a), scalar(b))
}

func kind(av types.AttributeValue) string {
	switch av.(type) {
	case *types.AttributeValueMemberS:
		return "S"
	case *types.AttributeValueMemberN:
		return "N"
	case *types.AttributeValueMemberBOOL:
		return "BOOL"
	case *types.AttributeValueMemberNULL:
		return "NULL"
	default:
		return fmt.Sprintf("%T", av)
	}
}

func scalar(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	case *types.AttributeValueMemberBOOL:
		return strconv.FormatBool(v.Value)
	default:
		return fmt.Sprintf("%v", v)
	}
}
