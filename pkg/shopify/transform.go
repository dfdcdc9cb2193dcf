package shopify

import (
	"encoding/json"
	"fmt"
)

// Record is a domain object with an externally assigned id.
type Record interface {
	RecordID() string
}

// Transformer turns a raw response into domain models.
type Transformer[T any] interface {
	FromResponse(resp *Response) (T, error)
	FromArrayResponse(resp *Response) ([]T, error)
}

// JSONTransformer decodes models wrapped in a documented top-level key, such
// as {"product": {...}} and {"products": [...]}.
type JSONTransformer[T any] struct {
	SingleKey     string
	CollectionKey string
}

// NewJSONTransformer returns a transformer for the given envelope keys.
func NewJSONTransformer[T any](singleKey, collectionKey string) JSONTransformer[T] {
	return JSONTransformer[T]{SingleKey: singleKey, CollectionKey: collectionKey}
}

// FromResponse decodes the object under SingleKey.
func (t JSONTransformer[T]) FromResponse(resp *Response) (T, error) {
	var out T
	raw, err := attribute(resp, t.SingleKey)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: decoding %q: %w", ErrInvalidInput, t.SingleKey, err)
	}
	return out, nil
}

// FromArrayResponse decodes the array under CollectionKey. A JSON null is an
// empty page.
func (t JSONTransformer[T]) FromArrayResponse(resp *Response) ([]T, error) {
	raw, err := attribute(resp, t.CollectionKey)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decoding %q: %w", ErrInvalidInput, t.CollectionKey, err)
	}
	return out, nil
}

// attribute returns the raw value of a top-level key.
func attribute(resp *Response, key string) (json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if resp == nil || len(resp.Body) == 0 {
		return nil, &MissingAttributeError{Attribute: key}
	}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", ErrInvalidInput, err)
	}
	raw, ok := envelope[key]
	if !ok {
		return nil, &MissingAttributeError{Attribute: key}
	}
	return raw, nil
}
