// Package dashboard implements the bookmark group actions.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"archive-backend/application/actions"
	"archive-backend/application/ports"
	"archive-backend/domain/bookmark"
	"archive-backend/pkg/common"
	pkgerrors "archive-backend/pkg/errors"
	"archive-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Module serves the dashboard actions
type Module struct {
	store  ports.Store
	table  string
	clock  utils.Clock
	newID  func() string
	logger *zap.Logger
}

// Option customizes a Module
type Option func(*Module)

// WithClock pins the time source
func WithClock(c utils.Clock) Option {
	return func(m *Module) { m.clock = c }
}

// WithIDGenerator replaces uuid generation
func WithIDGenerator(fn func() string) Option {
	return func(m *Module) { m.newID = fn }
}

// NewModule creates the dashboard module over the bookmark table
func NewModule(store ports.Store, table string, logger *zap.Logger, opts ...Option) *Module {
	m := &Module{
		store:  store,
		table:  table,
		clock:  utils.SystemClock,
		newID:  uuid.NewString,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Actions returns the dashboard registrations
func (m *Module) Actions() []actions.Registration {
	return []actions.Registration{
		actions.Handle(actions.CreateBookmarkGroup, m.CreateBookmarkGroup),
		actions.Handle(actions.UpdateBookmarkGroup, m.UpdateBookmarkGroup),
		actions.Handle(actions.DeleteBookmarkGroup, m.DeleteBookmarkGroup),
		actions.Handle(actions.GetBookmarkGroup, m.GetBookmarkGroup),
		actions.Handle(actions.GetAllBookmarkGroups, m.GetAllBookmarkGroups),
	}
}

// CreateGroupPayload is a new bookmark group
type CreateGroupPayload struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Collapsed   bool            `json:"collapsed"`
	Order       int             `json:"order"`
	Items       []bookmark.Item `json:"items" validate:"dive"`
}

// UpdateGroupPayload is a partial update; items replace the stored list as a whole
type UpdateGroupPayload struct {
	ID          string                        `json:"id" validate:"required"`
	Title       common.Patch[string]          `json:"title"`
	Description common.Patch[string]          `json:"description"`
	Collapsed   common.Patch[bool]            `json:"collapsed"`
	Order       common.Patch[int]             `json:"order"`
	Items       common.Patch[[]bookmark.Item] `json:"items"`
}

// Validate checks the replacement items, which struct tags cannot reach inside a patch
func (p *UpdateGroupPayload) Validate() error {
	if p.Title.Cleared() || (p.Title.Present() && p.Title.Value == "") {
		return pkgerrors.NewValidationError("title is required")
	}
	for _, item := range p.Items.Value {
		if err := utils.ValidateStruct(item); err != nil {
			return pkgerrors.NewValidationError("invalid bookmark: " + err.Error())
		}
	}
	return nil
}

// IDPayload addresses one group
type IDPayload struct {
	ID string `json:"id" validate:"required"`
}

// ListPayload pages through every group
type ListPayload struct {
	Limit            int32        `json:"limit" validate:"min=0"`
	LastEvaluatedKey ports.Cursor `json:"lastEvaluatedKey"`
}

// GroupResult carries one group
type GroupResult struct {
	Success       bool             `json:"success,omitempty"`
	BookmarkGroup *bookmark.Record `json:"bookmarkGroup"`
}

// SuccessResult acknowledges a delete
type SuccessResult struct {
	Success bool `json:"success"`
}

// PageResult is one page of groups sorted by order
type PageResult struct {
	Items            []bookmark.Record `json:"items"`
	LastEvaluatedKey ports.Cursor      `json:"lastEvaluatedKey,omitempty"`
}

// CreateBookmarkGroup stores a new group
func (m *Module) CreateBookmarkGroup(ctx context.Context, p CreateGroupPayload) (GroupResult, error) {
	now := m.clock.NowMillis()
	rec := bookmark.NewRecord(bookmark.Group{
		ID:          m.newID(),
		Title:       p.Title,
		Description: p.Description,
		Collapsed:   p.Collapsed,
		Order:       p.Order,
		Items:       m.assignItemIDs(p.Items),
		CreatedAt:   now,
		UpdatedAt:   now,
	})

	if err := m.store.CreateItem(ctx, m.table, rec); err != nil {
		return GroupResult{}, pkgerrors.NewDatabaseError("create bookmark group", err)
	}

	m.logger.Info("Bookmark group created", zap.String("groupId", rec.ID), zap.Int("items", len(rec.Items)))
	return GroupResult{Success: true, BookmarkGroup: &rec}, nil
}

// UpdateBookmarkGroup applies a partial update after reading the group's sort key
func (m *Module) UpdateBookmarkGroup(ctx context.Context, p UpdateGroupPayload) (GroupResult, error) {
	current, err := m.findByID(ctx, p.ID)
	if err != nil {
		return GroupResult{}, err
	}

	set := map[string]any{}
	var remove []string
	if p.Title.Present() {
		set["title"] = p.Title.Value
	}
	switch {
	case p.Description.Cleared(), p.Description.Present() && p.Description.Value == "":
		remove = append(remove, "description")
	case p.Description.Present():
		set["description"] = p.Description.Value
	}
	if p.Collapsed.Present() {
		set["collapsed"] = p.Collapsed.Value
	}
	if p.Order.Present() {
		set["order"] = p.Order.Value
	}
	if p.Items.Set {
		set["items"] = m.assignItemIDs(p.Items.Value)
	}
	set["updated_at"] = max(m.clock.NowMillis(), current.UpdatedAt+1)

	item, err := m.store.UpdateItem(ctx, ports.UpdateInput{
		Table:  m.table,
		Key:    groupKey(current),
		Set:    set,
		Remove: remove,
	})
	if err != nil {
		return GroupResult{}, pkgerrors.NewDatabaseError("update bookmark group", err)
	}

	var rec bookmark.Record
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return GroupResult{}, fmt.Errorf("failed to decode bookmark group: %w", err)
	}
	m.logger.Info("Bookmark group updated", zap.String("groupId", rec.ID))
	return GroupResult{Success: true, BookmarkGroup: &rec}, nil
}

// DeleteBookmarkGroup removes one group; a miss is NOT_FOUND
func (m *Module) DeleteBookmarkGroup(ctx context.Context, p IDPayload) (SuccessResult, error) {
	current, err := m.findByID(ctx, p.ID)
	if err != nil {
		return SuccessResult{}, err
	}

	err = m.store.DeleteItem(ctx, ports.DeleteInput{Table: m.table, Key: groupKey(current), RequireExists: "pk"})
	if errors.Is(err, ports.ErrConditionFailed) {
		return SuccessResult{}, pkgerrors.NewNotFoundError("bookmark group")
	}
	if err != nil {
		return SuccessResult{}, pkgerrors.NewDatabaseError("delete bookmark group", err)
	}

	m.logger.Info("Bookmark group deleted", zap.String("groupId", current.ID))
	return SuccessResult{Success: true}, nil
}

// GetBookmarkGroup returns one group
func (m *Module) GetBookmarkGroup(ctx context.Context, p IDPayload) (GroupResult, error) {
	rec, err := m.findByID(ctx, p.ID)
	if err != nil {
		return GroupResult{}, err
	}
	return GroupResult{BookmarkGroup: rec}, nil
}

// GetAllBookmarkGroups scans one page of groups. Ordering by order applies within the page.
func (m *Module) GetAllBookmarkGroups(ctx context.Context, p ListPayload) (PageResult, error) {
	start, err := p.LastEvaluatedKey.Key()
	if err != nil {
		return PageResult{}, pkgerrors.NewValidationError("invalid lastEvaluatedKey").WithCause(err)
	}

	page, err := m.store.ScanItems(ctx, ports.ScanInput{
		Table:             m.table,
		Limit:             p.Limit,
		ExclusiveStartKey: start,
	})
	if err != nil {
		return PageResult{}, pkgerrors.NewDatabaseError("scan bookmark groups", err)
	}

	records := make([]bookmark.Record, 0, len(page.Items))
	if err := attributevalue.UnmarshalListOfMaps(page.Items, &records); err != nil {
		return PageResult{}, fmt.Errorf("failed to decode bookmark groups: %w", err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Order < records[j].Order
	})

	cursor, err := ports.CursorFromKey(page.LastEvaluatedKey)
	if err != nil {
		return PageResult{}, err
	}
	return PageResult{Items: records, LastEvaluatedKey: cursor}, nil
}

func (m *Module) findByID(ctx context.Context, id string) (*bookmark.Record, error) {
	page, err := m.store.QueryItems(ctx, ports.QueryInput{
		Table:          m.table,
		PartitionKey:   "pk",
		PartitionValue: bookmark.PartitionKey(id),
		Limit:          1,
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query bookmark group", err)
	}
	if len(page.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("bookmark group")
	}

	var rec bookmark.Record
	if err := attributevalue.UnmarshalMap(page.Items[0], &rec); err != nil {
		return nil, fmt.Errorf("failed to decode bookmark group: %w", err)
	}
	return &rec, nil
}

func (m *Module) assignItemIDs(items []bookmark.Item) []bookmark.Item {
	out := make([]bookmark.Item, len(items))
	for i, item := range items {
		if item.ID == "" {
			item.ID = m.newID()
		}
		out[i] = item
	}
	return out
}

func groupKey(rec *bookmark.Record) ports.Key {
	key, _ := attributevalue.MarshalMap(struct {
		PK string `dynamodbav:"pk"`
		SK string `dynamodbav:"sk"`
	}{rec.PK, rec.SK})
	return key
}
