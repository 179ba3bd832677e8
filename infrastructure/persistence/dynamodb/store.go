// Package dynamodb implements the key-value store adapter on AWS DynamoDB.
package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"archive-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// API is the subset of the DynamoDB client the store uses
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Store implements ports.Store using DynamoDB
type Store struct {
	client API
	logger *zap.Logger
}

var _ ports.Store = (*Store)(nil)

// NewStore creates a new Store
func NewStore(client API, logger *zap.Logger) *Store {
	return &Store{
		client: client,
		logger: logger,
	}
}

// CreateItem writes item as a single put
func (s *Store) CreateItem(ctx context.Context, table string, item any) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      av,
	})
	if err != nil {
		s.logger.Error("Failed to put item", zap.String("table", table), zap.Error(err))
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

// GetItem reads one item by its full key; a miss returns a nil item.
func (s *Store) GetItem(ctx context.Context, table string, key ports.Key) (ports.Item, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       key,
	})
	if err != nil {
		s.logger.Error("Failed to get item", zap.String("table", table), zap.Error(err))
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return out.Item, nil
}

// UpdateItem applies SET and REMOVE clauses and returns the item as stored afterwards
func (s *Store) UpdateItem(ctx context.Context, in ports.UpdateInput) (ports.Item, error) {
	if len(in.Set) == 0 && len(in.Remove) == 0 {
		return nil, errors.New("update has no changes")
	}

	var update expression.UpdateBuilder
	for name, value := range in.Set {
		update = update.Set(expression.Name(name), expression.Value(value))
	}
	for _, name := range in.Remove {
		update = update.Remove(expression.Name(name))
	}

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build update expression: %w", err)
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(in.Table),
		Key:                       in.Key,
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		s.logger.Error("Failed to update item", zap.String("table", in.Table), zap.Error(err))
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return out.Attributes, nil
}

// DeleteItem removes one item, optionally only if it exists
func (s *Store) DeleteItem(ctx context.Context, in ports.DeleteInput) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(in.Table),
		Key:       in.Key,
	}

	if in.RequireExists != "" {
		expr, err := expression.NewBuilder().
			WithCondition(expression.AttributeExists(expression.Name(in.RequireExists))).
			Build()
		if err != nil {
			return fmt.Errorf("failed to build condition expression: %w", err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
	}

	if _, err := s.client.DeleteItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ports.ErrConditionFailed
		}
		s.logger.Error("Failed to delete item", zap.String("table", in.Table), zap.Error(err))
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// QueryItems runs a partition-key query and returns one page
func (s *Store) QueryItems(ctx context.Context, in ports.QueryInput) (*ports.Page, error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key(in.PartitionKey).Equal(expression.Value(in.PartitionValue)))
	if filter, ok := filterCondition(in.Filters); ok {
		builder = builder.WithFilter(filter)
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(in.Table),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(in.ScanIndexForward),
		ExclusiveStartKey:         in.ExclusiveStartKey,
	}
	if in.Index != "" {
		input.IndexName = aws.String(in.Index)
	}
	if in.Limit > 0 {
		input.Limit = aws.Int32(in.Limit)
	}

	out, err := s.client.Query(ctx, input)
	if err != nil {
		s.logger.Error("Failed to query items",
			zap.String("table", in.Table),
			zap.String("index", in.Index),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to query items: %w", err)
	}

	return &ports.Page{Items: out.Items, LastEvaluatedKey: out.LastEvaluatedKey}, nil
}

// ScanItems returns one page of a table or index scan
func (s *Store) ScanItems(ctx context.Context, in ports.ScanInput) (*ports.Page, error) {
	input := &dynamodb.ScanInput{
		TableName:         aws.String(in.Table),
		ExclusiveStartKey: in.ExclusiveStartKey,
	}
	if in.Index != "" {
		input.IndexName = aws.String(in.Index)
	}
	if in.Limit > 0 {
		input.Limit = aws.Int32(in.Limit)
	}
	if filter, ok := filterCondition(in.Filters); ok {
		expr, err := expression.NewBuilder().WithFilter(filter).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build scan expression: %w", err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	out, err := s.client.Scan(ctx, input)
	if err != nil {
		s.logger.Error("Failed to scan items", zap.String("table", in.Table), zap.Error(err))
		return nil, fmt.Errorf("failed to scan items: %w", err)
	}

	return &ports.Page{Items: out.Items, LastEvaluatedKey: out.LastEvaluatedKey}, nil
}

// BatchGetItems fetches up to MaxBatchGet keys in one request.
// Unprocessed keys are logged and dropped; the caller sees only what came back.
func (s *Store) BatchGetItems(ctx context.Context, table string, keys []ports.Key) ([]ports.Item, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if len(keys) > ports.MaxBatchGet {
		return nil, fmt.Errorf("batch get accepts at most %d keys, got %d", ports.MaxBatchGet, len(keys))
	}

	out, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
		RequestItems: map[string]types.KeysAndAttributes{
			table: {Keys: keys},
		},
	})
	if err != nil {
		s.logger.Error("Failed to batch get items", zap.String("table", table), zap.Error(err))
		return nil, fmt.Errorf("failed to batch get items: %w", err)
	}

	if unprocessed, ok := out.UnprocessedKeys[table]; ok && len(unprocessed.Keys) > 0 {
		s.logger.Warn("Batch get left keys unprocessed",
			zap.String("table", table),
			zap.Int("count", len(unprocessed.Keys)),
		)
	}
	return out.Responses[table], nil
}

// BatchDeleteItems deletes up to MaxBatchWrite keys in one BatchWriteItem call
func (s *Store) BatchDeleteItems(ctx context.Context, table string, keys []ports.Key) ([]ports.Key, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if len(keys) > ports.MaxBatchWrite {
		return nil, fmt.Errorf("batch delete accepts at most %d keys, got %d", ports.MaxBatchWrite, len(keys))
	}

	requests := make([]types.WriteRequest, 0, len(keys))
	for _, key := range keys {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: key},
		})
	}

	out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{table: requests},
	})
	if err != nil {
		s.logger.Error("Failed to batch delete items", zap.String("table", table), zap.Error(err))
		return nil, fmt.Errorf("failed to batch delete items: %w", err)
	}

	var unprocessed []ports.Key
	for _, req := range out.UnprocessedItems[table] {
		if req.DeleteRequest != nil {
			unprocessed = append(unprocessed, req.DeleteRequest.Key)
		}
	}
	if len(unprocessed) > 0 {
		s.logger.Warn("Batch delete left items unprocessed",
			zap.String("table", table),
			zap.Int("count", len(unprocessed)),
		)
	}
	return unprocessed, nil
}

func filterCondition(filters []ports.Condition) (expression.ConditionBuilder, bool) {
	if len(filters) == 0 {
		return expression.ConditionBuilder{}, false
	}
	cond := expression.Name(filters[0].Name).Equal(expression.Value(filters[0].Value))
	for _, f := range filters[1:] {
		cond = cond.And(expression.Name(f.Name).Equal(expression.Value(f.Value)))
	}
	return cond, true
}
