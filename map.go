package bucketmap

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// BucketMap is a separately chained hash map: an array of buckets, each an
// ordered list of key/value pairs, that doubles its bucket count when the
// load factor reaches 3/4 and halves it when the load factor drops to 1/4.
//
// Core properties:
//   - Any comparable key, including zero values such as nil, false and 0
//   - Presence is decided by key equality, never by the stored value
//   - Deterministic iteration order: bucket by bucket, then insertion order
//     within a bucket; the order changes after every resize
//
// Usage recommendations:
//   - Direct declaration: var m BucketMap[string, int]
//   - Configured: New[string, int](WithCapacity(64), WithLogger(l))
//
// Notes:
//   - BucketMap is not safe for concurrent use; see SyncMap.
//   - The zero value is an empty map with the default configuration.
type BucketMap[K comparable, V any] struct {
	buckets [][]Pair[K, V]
	size    int

	growths uint32
	shrinks uint32

	keyHash      func(K) uint64
	valEqual     func(V, V) bool
	logger       *zap.Logger
	initCap      int     // WithCapacity
	minCap       int     // WithMinCapacity
	growFactor   float64 // WithLoadFactors
	shrinkFactor float64 // WithLoadFactors
	shrinkOn     bool    // !WithGrowOnly
}

// New creates an empty BucketMap.
//
// Parameters:
//   - options: configuration options (WithCapacity, WithLogger, etc.)
func New[K comparable, V any](options ...func(*MapConfig)) *BucketMap[K, V] {
	m := &BucketMap[K, V]{}
	m.withOptions(options...)
	return m
}

// NewFromPairs creates a BucketMap and inserts pairs in order, so a later
// duplicate key overwrites an earlier one. Resizes may happen while loading.
func NewFromPairs[K comparable, V any](
	pairs []Pair[K, V],
	options ...func(*MapConfig),
) *BucketMap[K, V] {
	m := New[K, V](options...)
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return m
}

func (m *BucketMap[K, V]) withOptions(options ...func(*MapConfig)) {
	var cfg MapConfig
	for _, o := range options {
		o(&cfg)
	}
	m.init(&cfg)
}

func (m *BucketMap[K, V]) init(cfg *MapConfig) {
	m.keyHash, m.valEqual = resolveConfig[K, V](cfg)
	m.logger = cfg.logger
	m.initCap = cfg.capacity
	m.minCap = cfg.minCapacity
	m.growFactor = cfg.growFactor
	m.shrinkFactor = cfg.shrinkFactor
	m.shrinkOn = !cfg.growOnly
	m.buckets = make([][]Pair[K, V], m.initCap)
	m.size = 0
}

// lazyInit gives the zero value its default configuration.
func (m *BucketMap[K, V]) lazyInit() {
	if m.buckets == nil {
		var cfg MapConfig
		m.init(&cfg)
	}
}

// locate finds the bucket a key belongs to and the key's position within it.
// pos is -1 when the key is absent; only the one bucket is scanned.
func (m *BucketMap[K, V]) locate(key K) (idx, pos int) {
	idx = bucketIndex(m.keyHash(key), len(m.buckets))
	for i := range m.buckets[idx] {
		if m.buckets[idx][i].Key == key {
			return idx, i
		}
	}
	return idx, -1
}

// Set associates value with key. An existing key keeps its position and only
// has its value replaced; a new key is appended to its bucket and may
// trigger a grow.
func (m *BucketMap[K, V]) Set(key K, value V) {
	m.lazyInit()
	idx, pos := m.locate(key)
	if pos >= 0 {
		m.buckets[idx][pos].Value = value
		return
	}
	m.buckets[idx] = append(m.buckets[idx], Pair[K, V]{Key: key, Value: value})
	m.size++
	if growThreshold(m.size, len(m.buckets), m.growFactor) {
		m.resize(true)
	}
}

// Get returns the value stored for key, or an error wrapping ErrKeyNotFound.
func (m *BucketMap[K, V]) Get(key K) (V, error) {
	if v, ok := m.Load(key); ok {
		return v, nil
	}
	return *new(V), keyNotFound(key)
}

// Load returns the value stored for key and whether it was present.
// A stored zero value is reported with ok == true.
func (m *BucketMap[K, V]) Load(key K) (value V, ok bool) {
	if m.Len() == 0 {
		return *new(V), false
	}
	idx, pos := m.locate(key)
	if pos < 0 {
		return *new(V), false
	}
	return m.buckets[idx][pos].Value, true
}

// Contains reports whether key is present, whatever its value.
func (m *BucketMap[K, V]) Contains(key K) bool {
	if m.Len() == 0 {
		return false
	}
	_, pos := m.locate(key)
	return pos >= 0
}

// Delete removes key, or returns an error wrapping ErrKeyNotFound and leaves
// the map untouched. The remaining pairs of the bucket keep their order.
// Removing a pair may trigger a shrink.
func (m *BucketMap[K, V]) Delete(key K) error {
	if m.size == 0 {
		return keyNotFound(key)
	}
	idx, pos := m.locate(key)
	if pos < 0 {
		return keyNotFound(key)
	}
	m.buckets[idx] = slices.Delete(m.buckets[idx], pos, pos+1)
	m.size--
	if m.shrinkOn && shrinkThreshold(m.size, len(m.buckets), m.shrinkFactor) {
		m.resize(false)
	}
	return nil
}

// resize doubles or halves the bucket count and redistributes every pair
// under the new capacity. Redistribution appends directly, without the
// threshold checks Set and Delete perform, so it cannot recurse.
func (m *BucketMap[K, V]) resize(grow bool) {
	from := len(m.buckets)
	to := calcCapacity(from, m.minCap, grow)
	if to == from {
		return
	}

	pairs := m.Items()
	m.buckets = make([][]Pair[K, V], to)
	for _, p := range pairs {
		idx := bucketIndex(m.keyHash(p.Key), to)
		m.buckets[idx] = append(m.buckets[idx], p)
	}

	if grow {
		m.growths++
	} else {
		m.shrinks++
	}
	m.logger.Debug("bucket map resized",
		zap.Bool("grow", grow),
		zap.Int("from", from),
		zap.Int("to", to),
		zap.Int("size", m.size),
	)
}

// Len returns the number of pairs in the map.
// This is an O(1) operation.
func (m *BucketMap[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return m.size
}

// Capacity returns the current number of buckets.
func (m *BucketMap[K, V]) Capacity() int {
	if m == nil || m.buckets == nil {
		return defaultCapacity
	}
	return len(m.buckets)
}

// Keys returns all keys in bucket-then-insertion order.
func (m *BucketMap[K, V]) Keys() []K {
	keys := make([]K, 0, m.Len())
	m.Range(func(k K, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Values returns all values in the same order as Keys.
func (m *BucketMap[K, V]) Values() []V {
	values := make([]V, 0, m.Len())
	m.Range(func(_ K, v V) bool {
		values = append(values, v)
		return true
	})
	return values
}

// Items returns copies of all pairs in the same order as Keys.
func (m *BucketMap[K, V]) Items() []Pair[K, V] {
	items := make([]Pair[K, V], 0, m.Len())
	m.Range(func(k K, v V) bool {
		items = append(items, Pair[K, V]{Key: k, Value: v})
		return true
	})
	return items
}

// Range calls yield for every pair in bucket-then-insertion order until
// yield returns false. The map must not be modified during Range.
func (m *BucketMap[K, V]) Range(yield func(key K, value V) bool) {
	if m == nil {
		return
	}
	for _, b := range m.buckets {
		for _, p := range b {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// All returns an iterator over all pairs for use with range-over-func.
// Every call starts a fresh pass from the first bucket.
func (m *BucketMap[K, V]) All() iter.Seq2[K, V] {
	return m.Range
}

// Equal reports whether both maps hold the same keys, each mapped to an
// equal value. Values are compared with this map's value equality
// (WithValueEqual, IEqualFunc or the built-in comparison). A nil map equals
// an empty one.
func (m *BucketMap[K, V]) Equal(other *BucketMap[K, V]) bool {
	if m.Len() != other.Len() {
		return false
	}
	if m.Len() == 0 {
		return true
	}
	equal := true
	m.Range(func(k K, v V) bool {
		ov, ok := other.Load(k)
		equal = ok && m.valEqual(v, ov)
		return equal
	})
	return equal
}

// Clear removes all pairs and resets the bucket count to the initial
// capacity.
func (m *BucketMap[K, V]) Clear() {
	if m.buckets == nil {
		return
	}
	m.buckets = make([][]Pair[K, V], m.initCap)
	m.size = 0
}

// Clone returns an independent copy with the same configuration, bucket
// layout and pair order.
func (m *BucketMap[K, V]) Clone() *BucketMap[K, V] {
	if m == nil {
		return New[K, V]()
	}
	m.lazyInit()
	clone := *m
	clone.buckets = make([][]Pair[K, V], len(m.buckets))
	for i, b := range m.buckets {
		clone.buckets[i] = slices.Clone(b)
	}
	return &clone
}

// ToMap collects all pairs into a builtin map.
func (m *BucketMap[K, V]) ToMap() map[K]V {
	a := make(map[K]V, m.Len())
	m.Range(func(k K, v V) bool {
		a[k] = v
		return true
	})
	return a
}

// String formats the pairs in iteration order, e.g. [[1 one] [2 two]].
func (m *BucketMap[K, V]) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	first := true
	m.Range(func(k K, v V) bool {
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		sb.WriteString(Pair[K, V]{Key: k, Value: v}.String())
		return true
	})
	sb.WriteByte(']')
	return sb.String()
}

// ============================================================================
// Statistics
// ============================================================================

// MapStats is a snapshot of the bucket layout, intended for diagnostics and
// tests rather than for production decisions.
type MapStats struct {
	// Capacity is the number of buckets.
	Capacity int
	// Size is the number of stored pairs.
	Size int
	// EmptyBuckets is the number of buckets holding no pairs.
	EmptyBuckets int
	// MaxChain is the length of the longest bucket.
	MaxChain int
	// LoadFactor is Size / Capacity.
	LoadFactor float64
	// TotalGrowths is the number of times the map doubled.
	TotalGrowths uint32
	// TotalShrinks is the number of times the map halved.
	TotalShrinks uint32
}

// String returns string representation of map stats.
func (s MapStats) String() string {
	var sb strings.Builder
	sb.WriteString("MapStats{\n")
	sb.WriteString(fmt.Sprintf("Capacity:     %d\n", s.Capacity))
	sb.WriteString(fmt.Sprintf("Size:         %d\n", s.Size))
	sb.WriteString(fmt.Sprintf("EmptyBuckets: %d\n", s.EmptyBuckets))
	sb.WriteString(fmt.Sprintf("MaxChain:     %d\n", s.MaxChain))
	sb.WriteString(fmt.Sprintf("LoadFactor:   %.3f\n", s.LoadFactor))
	sb.WriteString(fmt.Sprintf("TotalGrowths: %d\n", s.TotalGrowths))
	sb.WriteString(fmt.Sprintf("TotalShrinks: %d\n", s.TotalShrinks))
	sb.WriteString("}\n")
	return sb.String()
}

// Stats walks every bucket, so it is O(capacity + size).
func (m *BucketMap[K, V]) Stats() MapStats {
	if m == nil {
		return MapStats{Capacity: defaultCapacity}
	}
	m.lazyInit()
	stats := MapStats{
		Capacity:     len(m.buckets),
		TotalGrowths: m.growths,
		TotalShrinks: m.shrinks,
	}
	for _, b := range m.buckets {
		stats.Size += len(b)
		if len(b) == 0 {
			stats.EmptyBuckets++
		}
		stats.MaxChain = max(stats.MaxChain, len(b))
	}
	stats.LoadFactor = float64(stats.Size) / float64(stats.Capacity)
	return stats
}
