package bucketmap

import "fmt"

// Pair is a single key/value association stored in a bucket.
//
// Pairs returned by Items are copies; changing them does not affect the map.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// MakePair is shorthand for Pair{Key: key, Value: value} with inferred types.
func MakePair[K comparable, V any](key K, value V) Pair[K, V] {
	return Pair[K, V]{Key: key, Value: value}
}

// String formats the pair as [key value].
func (p Pair[K, V]) String() string {
	return fmt.Sprintf("[%v %v]", p.Key, p.Value)
}
