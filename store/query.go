package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/jacentio/strata/internal/cursor"
)

// QueryOptions configures an index query.
type QueryOptions struct {
	// Limit caps the number of items per page (0 = store default).
	Limit int32

	// Ascending orders by sequence ascending. Default is descending,
	// most-recent-first.
	Ascending bool

	// Archived and Deleted select suffixed visibility. Suffix matching is
	// exact: Archived alone never returns deleted-only entities.
	Archived bool
	Deleted  bool

	// StartKey is the opaque continuation cursor from a previous Page.
	StartKey string
}

// Page is one page of query results. Cursor is non-empty when more items
// exist beyond the requested limit.
type Page struct {
	Items  []Entity
	Cursor string
}

// QueryByOU returns the children of an OU for one model, ordered by
// sequence.
func (s *Store) QueryByOU(ctx context.Context, ou, model string, opts QueryOptions) (*Page, error) {
	return s.queryIndex(ctx, s.config.OUIndex, "indexOu", BuildIndexOU(ou, model), opts)
}

// QueryByClass returns entities of one category within an OU.
func (s *Store) QueryByClass(ctx context.Context, ou, model, class string, opts QueryOptions) (*Page, error) {
	return s.queryIndex(ctx, s.config.ClassIndex, "indexClass", BuildIndexClass(ou, model, class), opts)
}

// QueryByType returns entities of one type discriminant within an OU.
func (s *Store) QueryByType(ctx context.Context, ou, model, typ string, opts QueryOptions) (*Page, error) {
	return s.queryIndex(ctx, s.config.TypeIndex, "indexType", BuildIndexType(ou, model, typ), opts)
}

// QueryByAlias is a point lookup: each (ou, model, alias) is expected to be
// unique. Returns ErrNotFound when no entity matches.
func (s *Store) QueryByAlias(ctx context.Context, ou, model, alias string, opts QueryOptions) (*Entity, error) {
	return s.pointLookup(ctx, s.config.AliasIndex, "indexAlias", BuildIndexAlias(ou, model, alias), opts)
}

// QueryByXID is a point lookup by external-system ID, with the same
// uniqueness expectation as QueryByAlias.
func (s *Store) QueryByXID(ctx context.Context, ou, model, xid string, opts QueryOptions) (*Entity, error) {
	return s.pointLookup(ctx, s.config.XIDIndex, "indexXid", BuildIndexXID(ou, model, xid), opts)
}

// queryIndex runs one suffix-exact partition query against an index and
// translates the page boundary into an opaque cursor.
func (s *Store) queryIndex(ctx context.Context, indexName, keyAttr, partitionKey string, opts QueryOptions) (*Page, error) {
	suffix := Suffix{Archived: opts.Archived, Deleted: opts.Deleted}
	partitionKey += suffix.String()

	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key(keyAttr).Equal(expression.Value(partitionKey))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build key condition: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.TableName),
		IndexName:                 aws.String(indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(opts.Ascending),
	}
	if opts.Limit > 0 {
		input.Limit = aws.Int32(opts.Limit)
	}
	if opts.StartKey != "" {
		startKey, err := cursor.Decode(opts.StartKey)
		if err != nil {
			return nil, err
		}
		input.ExclusiveStartKey = startKey
	}

	result, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, err
	}

	var items []Entity
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
		return nil, fmt.Errorf("unmarshal page: %w", err)
	}

	page := &Page{Items: items}
	if len(result.LastEvaluatedKey) > 0 {
		token, err := cursor.Encode(result.LastEvaluatedKey)
		if err != nil {
			return nil, err
		}
		page.Cursor = token
	}
	return page, nil
}

// pointLookup queries an index expected to hold at most one item per key.
// More than one match is a data-integrity violation: it is logged for
// investigation and the first result is returned best-effort.
func (s *Store) pointLookup(ctx context.Context, indexName, keyAttr, partitionKey string, opts QueryOptions) (*Entity, error) {
	opts.Limit = 2
	opts.StartKey = ""

	page, err := s.queryIndex(ctx, indexName, keyAttr, partitionKey, opts)
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, ErrNotFound
	}
	if len(page.Items) > 1 || page.Cursor != "" {
		s.logger.Warn("point-lookup index returned multiple matches",
			zap.String("index", indexName),
			zap.String("key", partitionKey),
		)
	}
	return &page.Items[0], nil
}
