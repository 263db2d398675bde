package bucketmap

import (
	"encoding/json"
	"reflect"

	"github.com/pkg/errors"
)

// ============================================================================
// Bulk Loading
// ============================================================================

// FromSlices creates a BucketMap from parallel key and value slices,
// inserting keys[i] -> values[i] in order. It returns an error wrapping
// ErrInvalidArgument, and no map, if the slices differ in length.
func FromSlices[K comparable, V any](
	keys []K,
	values []V,
	options ...func(*MapConfig),
) (*BucketMap[K, V], error) {
	if len(keys) != len(values) {
		return nil, errors.Wrapf(ErrInvalidArgument,
			"%d keys but %d values", len(keys), len(values))
	}
	m := New[K, V](options...)
	for i := range keys {
		m.Set(keys[i], values[i])
	}
	return m, nil
}

// FromRows creates a BucketMap from untyped rows, each of which must hold
// exactly two elements: a K and a V. A nil element is accepted where K or V
// can be nil. On the first malformed row it returns an error wrapping
// ErrInvalidArgument and no map.
//
// Usage:
//
//	m, err := FromRows[int, string]([][]any{{1, "one"}, {2, "two"}})
func FromRows[K comparable, V any](
	rows [][]any,
	options ...func(*MapConfig),
) (*BucketMap[K, V], error) {
	pairs := make([]Pair[K, V], 0, len(rows))
	for i, row := range rows {
		if len(row) != 2 {
			return nil, invalidRow(i, "want 2 elements, got %d", len(row))
		}
		k, ok := assign[K](row[0])
		if !ok {
			return nil, invalidRow(i, "key %v (%T) is not a %v",
				row[0], row[0], reflect.TypeFor[K]())
		}
		v, ok := assign[V](row[1])
		if !ok {
			return nil, invalidRow(i, "value %v (%T) is not a %v",
				row[1], row[1], reflect.TypeFor[V]())
		}
		pairs = append(pairs, Pair[K, V]{Key: k, Value: v})
	}
	return NewFromPairs(pairs, options...), nil
}

// assign converts an untyped element to T, treating nil as T's zero value
// when T is nilable.
func assign[T any](x any) (T, bool) {
	if x == nil {
		switch reflect.TypeFor[T]().Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice,
			reflect.Chan, reflect.Func, reflect.UnsafePointer:
			return *new(T), true
		default:
			return *new(T), false
		}
	}
	t, ok := x.(T)
	return t, ok
}

// ============================================================================
// JSON
// ============================================================================

// MarshalJSON encodes the map as an array of [key, value] arrays in
// iteration order.
func (m *BucketMap[K, V]) MarshalJSON() ([]byte, error) {
	rows := make([][2]any, 0, m.Len())
	m.Range(func(k K, v V) bool {
		rows = append(rows, [2]any{k, v})
		return true
	})
	return json.Marshal(rows)
}

// UnmarshalJSON replaces the contents of the map with the pairs of an array
// of [key, value] arrays, inserted in order. The configuration of m is kept.
// If any row is malformed the map is left unchanged and the error wraps
// ErrInvalidArgument. A JSON null is a no-op.
func (m *BucketMap[K, V]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return errors.Wrapf(ErrInvalidArgument, "decode pairs: %v", err)
	}

	m.lazyInit()
	loaded := *m
	loaded.buckets = make([][]Pair[K, V], m.initCap)
	loaded.size = 0
	for i, raw := range rows {
		var row []json.RawMessage
		if err := json.Unmarshal(raw, &row); err != nil {
			return invalidRow(i, "%v", err)
		}
		if len(row) != 2 {
			return invalidRow(i, "want 2 elements, got %d", len(row))
		}
		var k K
		if err := json.Unmarshal(row[0], &k); err != nil {
			return invalidRow(i, "key: %v", err)
		}
		var v V
		if err := json.Unmarshal(row[1], &v); err != nil {
			return invalidRow(i, "value: %v", err)
		}
		loaded.Set(k, v)
	}
	*m = loaded
	return nil
}
