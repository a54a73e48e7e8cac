// Package cursor encodes DynamoDB pagination keys as opaque continuation
// tokens that callers can hand back on the next page request.
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// attr is the wire form of one key attribute. Index pages only ever carry
// string and number key attributes.
type attr struct {
	S *string `json:"s,omitempty"`
	N *string `json:"n,omitempty"`
}

// Encode serializes a LastEvaluatedKey into an opaque token.
// An empty key encodes to "".
func Encode(key map[string]types.AttributeValue) (string, error) {
	if len(key) == 0 {
		return "", nil
	}

	m := make(map[string]attr, len(key))
	for name, v := range key {
		switch av := v.(type) {
		case *types.AttributeValueMemberS:
			s := av.Value
			m[name] = attr{S: &s}
		case *types.AttributeValueMemberN:
			n := av.Value
			m[name] = attr{N: &n}
		default:
			return "", fmt.Errorf("cursor: unsupported attribute type %T for %q", v, name)
		}
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode deserializes a token back into an ExclusiveStartKey.
// The empty token decodes to nil.
func Decode(token string) (map[string]types.AttributeValue, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("cursor: malformed token: %w", err)
	}
	var m map[string]attr
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("cursor: malformed token: %w", err)
	}

	key := make(map[string]types.AttributeValue, len(m))
	for name, a := range m {
		switch {
		case a.S != nil:
			key[name] = &types.AttributeValueMemberS{Value: *a.S}
		case a.N != nil:
			key[name] = &types.AttributeValueMemberN{Value: *a.N}
		default:
			return nil, fmt.Errorf("cursor: empty attribute %q", name)
		}
	}
	return key, nil
}
