package store_test

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDB emulates the single-table DynamoDB behavior the store relies on:
// keyed get/put/delete plus partition-exact index queries with sequence
// ordering, limits and ExclusiveStartKey pagination. Items keep insertion
// order so equal sequences tie-break the way the real store does.
type fakeDB struct {
	items []map[string]types.AttributeValue
}

func attrS(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func attrN(item map[string]types.AttributeValue, name string) int64 {
	if v, ok := item[name].(*types.AttributeValueMemberN); ok {
		n, _ := strconv.ParseInt(v.Value, 10, 64)
		return n
	}
	return 0
}

func sameKey(item, key map[string]types.AttributeValue) bool {
	return attrS(item, "model") == attrS(key, "model") && attrS(item, "id") == attrS(key, "id")
}

func (f *fakeDB) find(key map[string]types.AttributeValue) int {
	for i, item := range f.items {
		if sameKey(item, key) {
			return i
		}
	}
	return -1
}

func (f *fakeDB) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if i := f.find(params.Key); i >= 0 {
		return &dynamodb.GetItemOutput{Item: f.items[i]}, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeDB) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	i := f.find(params.Item)

	// The store's only put condition is attribute_exists on the partition
	// key, i.e. the item must already be present.
	if params.ConditionExpression != nil && i < 0 {
		return nil, &types.ConditionalCheckFailedException{}
	}

	if i >= 0 {
		f.items[i] = params.Item
	} else {
		f.items = append(f.items, params.Item)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDB) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if i := f.find(params.Key); i >= 0 {
		f.items = append(f.items[:i], f.items[i+1:]...)
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDB) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	keyAttr, keyValue, err := parseKeyCondition(params)
	if err != nil {
		return nil, err
	}

	var matched []map[string]types.AttributeValue
	for _, item := range f.items {
		if attrS(item, keyAttr) == keyValue {
			matched = append(matched, item)
		}
	}

	ascending := params.ScanIndexForward == nil || *params.ScanIndexForward
	sort.SliceStable(matched, func(i, j int) bool {
		if ascending {
			return attrN(matched[i], "sequence") < attrN(matched[j], "sequence")
		}
		return attrN(matched[i], "sequence") > attrN(matched[j], "sequence")
	})

	start := 0
	if params.ExclusiveStartKey != nil {
		for i, item := range matched {
			if sameKey(item, params.ExclusiveStartKey) {
				start = i + 1
				break
			}
		}
	}
	matched = matched[start:]

	out := &dynamodb.QueryOutput{}
	if params.Limit != nil && int(*params.Limit) < len(matched) {
		page := matched[:*params.Limit]
		last := page[len(page)-1]
		out.Items = page
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"model":  last["model"],
			"id":     last["id"],
			keyAttr:  last[keyAttr],
			"sequence": last["sequence"],
		}
		return out, nil
	}
	out.Items = matched
	return out, nil
}

// parseKeyCondition resolves the single "#name = :value" equality produced
// by the expression builder.
func parseKeyCondition(params *dynamodb.QueryInput) (attr, value string, err error) {
	if params.KeyConditionExpression == nil {
		return "", "", fmt.Errorf("fake: missing key condition")
	}
	parts := strings.Split(*params.KeyConditionExpression, " = ")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("fake: unsupported key condition %q", *params.KeyConditionExpression)
	}

	attr, ok := params.ExpressionAttributeNames[strings.TrimSpace(parts[0])]
	if !ok {
		return "", "", fmt.Errorf("fake: unresolved name %q", parts[0])
	}
	v, ok := params.ExpressionAttributeValues[strings.TrimSpace(parts[1])]
	if !ok {
		return "", "", fmt.Errorf("fake: unresolved value %q", parts[1])
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", "", fmt.Errorf("fake: non-string key value")
	}
	return attr, s.Value, nil
}
