package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// Store provides entity CRUD and index-aware queries over one wide table.
type Store struct {
	client DynamoDBAPI
	config Config
	logger *zap.Logger
}

// New creates a Store around an injected client handle. A nil logger
// disables anomaly logging.
func New(client DynamoDBAPI, config Config, logger *zap.Logger) *Store {
	config.validate()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		client: client,
		config: config,
		logger: logger,
	}
}

// primaryKey builds the (model, id) table key.
func primaryKey(model, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"model": &types.AttributeValueMemberS{Value: model},
		"id":    &types.AttributeValueMemberS{Value: id},
	}
}

// validateKey checks the required addressing fields of a write.
func validateKey(e *Entity) error {
	if e.Model == "" {
		return fmt.Errorf("%w: missing model", ErrValidation)
	}
	if e.ID == "" {
		return fmt.Errorf("%w: missing id", ErrValidation)
	}
	return nil
}

// Get retrieves an entity by primary key. Pure read, no index side effects.
func (s *Store) Get(ctx context.Context, model, id string) (*Entity, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.TableName),
		Key:       primaryKey(model, id),
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, ErrNotFound
	}

	var e Entity
	if err := attributevalue.UnmarshalMap(result.Item, &e); err != nil {
		return nil, fmt.Errorf("unmarshal entity: %w", err)
	}
	return &e, nil
}

// Put creates an entity: resolves the OU if unset, defaults the sequence to
// the creation time in milliseconds, stamps createdAt/updatedAt, runs the
// indexer with no suffix, and writes the full item. Returns the stored copy.
func (s *Store) Put(ctx context.Context, e Entity) (*Entity, error) {
	if err := validateKey(&e); err != nil {
		return nil, err
	}

	now := time.Now()
	if e.OU == "" {
		e.OU = CalculateOU(nil)
	}
	if e.Sequence == 0 {
		e.Sequence = now.UnixMilli()
	}
	nowISO := now.UTC().Format(time.RFC3339)
	e.CreatedAt = nowISO
	e.UpdatedAt = nowISO

	e = IndexEntity(e, Suffix{})
	if err := s.writeItem(ctx, e, false); err != nil {
		return nil, err
	}
	return &e, nil
}

// Update re-stamps updatedAt, re-runs the indexer with the entity's current
// lifecycle suffix, and replaces the full item. Updating a still-archived
// entity therefore preserves its archived indexing. Fails with ErrNotFound
// if the entity does not exist.
func (s *Store) Update(ctx context.Context, e Entity) (*Entity, error) {
	if err := validateKey(&e); err != nil {
		return nil, err
	}

	e.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	e = IndexEntity(e, e.Suffix())
	if err := s.writeItem(ctx, e, true); err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete soft-deletes an entity: sets deletedAt, recombines the suffix with
// any existing archive state, re-indexes and writes back. The item remains
// retrievable by primary key and by deleted-aware queries.
func (s *Store) Delete(ctx context.Context, model, id string) (*Entity, error) {
	return s.transition(ctx, model, id, func(e *Entity, now string) {
		if e.DeletedAt == "" {
			e.DeletedAt = now
		}
	})
}

// Archive marks an entity archived, symmetric to Delete. The two flags are
// orthogonal and combine on the index keys in canonical order.
func (s *Store) Archive(ctx context.Context, model, id string) (*Entity, error) {
	return s.transition(ctx, model, id, func(e *Entity, now string) {
		if e.ArchivedAt == "" {
			e.ArchivedAt = now
		}
	})
}

// transition applies a lifecycle stamp to an existing entity and writes it
// back with re-derived index keys. If the write step fails the entity keeps
// its pre-operation state; single-item puts are atomic in the store.
func (s *Store) transition(ctx context.Context, model, id string, stamp func(e *Entity, now string)) (*Entity, error) {
	current, err := s.Get(ctx, model, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	stamp(current, now)
	current.UpdatedAt = now

	e := IndexEntity(*current, current.Suffix())
	if err := s.writeItem(ctx, e, true); err != nil {
		return nil, err
	}
	return &e, nil
}

// Destroy hard-deletes the primary item. The store maintains the secondary
// indexes from the item's attributes, so no compensating index writes are
// needed.
func (s *Store) Destroy(ctx context.Context, model, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.config.TableName),
		Key:       primaryKey(model, id),
	})
	return err
}

// writeItem marshals and puts the full item. With mustExist the put is
// conditioned on the item already being present and a conditional failure
// maps to ErrNotFound.
func (s *Store) writeItem(ctx context.Context, e Entity, mustExist bool) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal entity: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.config.TableName),
		Item:      item,
	}

	if mustExist {
		expr, err := expression.NewBuilder().
			WithCondition(expression.AttributeExists(expression.Name("model"))).
			Build()
		if err != nil {
			return fmt.Errorf("build condition: %w", err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
