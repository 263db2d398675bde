package bucketmap

import (
	"go.uber.org/zap"
)

// ============================================================================
// Configuration
// ============================================================================

const (
	// defaultCapacity is the number of buckets a new map starts with.
	defaultCapacity = 10
	// defaultMinCapacity is the floor automatic shrinking never goes below.
	defaultMinCapacity = 1
	// defaultGrowFactor triggers doubling once size >= capacity*growFactor.
	defaultGrowFactor = 0.75
	// defaultShrinkFactor triggers halving once size <= capacity*shrinkFactor.
	defaultShrinkFactor = 0.25
)

// MapConfig defines configurable options for BucketMap initialization.
// It is filled in by the With* option functions and consumed once by New;
// changing it afterwards has no effect on an existing map.
type MapConfig struct {
	// keyHash is a type-erased custom key hash, set by WithKeyHasher.
	// If nil, the key type's IHashFunc or the built-in hasher is used.
	keyHash any

	// valEqual is a type-erased custom value equality, set by
	// WithValueEqual. If nil, the value type's IEqualFunc or the built-in
	// comparison is used.
	valEqual any

	// capacity is the initial number of buckets. Zero means default.
	capacity int

	// minCapacity is the shrink floor. Zero means default.
	minCapacity int

	// growFactor and shrinkFactor are the load factor thresholds.
	// Both zero means default.
	growFactor   float64
	shrinkFactor float64

	// growOnly disables automatic shrinking on Delete.
	growOnly bool

	// logger receives resize events. Nil means a no-op logger.
	logger *zap.Logger

	// rejected collects option values that were ignored, so they can be
	// reported once the logger is known.
	rejected []zap.Field
}

// WithCapacity sets the initial number of buckets. Clear also resets the
// map to this capacity. If n is zero or negative, the value is ignored.
func WithCapacity(n int) func(*MapConfig) {
	return func(c *MapConfig) {
		if n <= 0 {
			c.rejected = append(c.rejected, zap.Int("capacity", n))
			return
		}
		c.capacity = n
	}
}

// WithMinCapacity sets the floor automatic shrinking never goes below.
// The default floor is a single bucket. If n is zero or negative, the value
// is ignored.
func WithMinCapacity(n int) func(*MapConfig) {
	return func(c *MapConfig) {
		if n <= 0 {
			c.rejected = append(c.rejected, zap.Int("minCapacity", n))
			return
		}
		c.minCapacity = n
	}
}

// WithLoadFactors overrides the grow and shrink thresholds.
//
// The map doubles its bucket count when, after inserting a new key,
// size >= capacity*grow, and halves it when, after a delete,
// size <= capacity*shrink. The pair is ignored unless
// 0 < shrink < grow and shrink*2 < grow, which keeps a freshly resized
// map clear of the opposite threshold.
func WithLoadFactors(grow, shrink float64) func(*MapConfig) {
	return func(c *MapConfig) {
		if !(shrink > 0 && shrink < grow && shrink*2 < grow) {
			c.rejected = append(c.rejected,
				zap.Float64("growFactor", grow),
				zap.Float64("shrinkFactor", shrink))
			return
		}
		c.growFactor = grow
		c.shrinkFactor = shrink
	}
}

// WithGrowOnly disables automatic halving on Delete. The map still grows.
func WithGrowOnly() func(*MapConfig) {
	return func(c *MapConfig) {
		c.growOnly = true
	}
}

// WithLogger sets the logger receiving resize events at debug level.
func WithLogger(logger *zap.Logger) func(*MapConfig) {
	return func(c *MapConfig) {
		c.logger = logger
	}
}

// WithKeyHasher sets a custom key hashing function for the map.
// The bucket index of a key is keyHash(key) modulo the bucket count, so the
// function must be deterministic for the lifetime of the map and equal keys
// must hash equally. Pass nil to use the default hasher.
//
// Usage:
//
//	// Case-insensitive string keys
//	m := New[string, int](WithKeyHasher(func(s string) uint64 {
//		return xxhash.Sum64String(strings.ToLower(s))
//	}))
func WithKeyHasher[K comparable](keyHash func(key K) uint64) func(*MapConfig) {
	return func(c *MapConfig) {
		if keyHash != nil {
			c.keyHash = keyHash
		}
	}
}

// WithValueEqual sets a custom value equality function, used by Equal.
// This is required for value types whose natural comparison is not the
// desired one, e.g. floating-point tolerance or ID-only struct comparison.
// Pass nil to use the default comparison.
func WithValueEqual[V any](valEqual func(val, val2 V) bool) func(*MapConfig) {
	return func(c *MapConfig) {
		if valEqual != nil {
			c.valEqual = valEqual
		}
	}
}

// IHashFunc defines a custom hash function interface for key types.
// Key types implementing this interface provide their own hash, serving as
// an alternative to WithKeyHasher. An explicit WithKeyHasher wins.
//
// Usage:
//
//	type UserID struct {
//		ID     int64
//		Tenant string
//	}
//
//	func (u UserID) HashFunc() uint64 {
//		return uint64(u.ID) ^ xxhash.Sum64String(u.Tenant)
//	}
type IHashFunc interface {
	HashFunc() uint64
}

// IEqualFunc defines a custom equality interface for value types.
// Value types implementing it provide their own comparison for Equal,
// serving as an alternative to WithValueEqual. An explicit WithValueEqual
// wins.
type IEqualFunc[T any] interface {
	EqualFunc(other T) bool
}

func parseKeyInterface[K comparable]() func(K) uint64 {
	var k K
	if _, ok := any(k).(IHashFunc); ok {
		return func(key K) uint64 {
			return any(key).(IHashFunc).HashFunc()
		}
	}
	return nil
}

func parseValueInterface[V any]() func(V, V) bool {
	var v V
	if _, ok := any(v).(IEqualFunc[V]); ok {
		return func(a, b V) bool {
			return any(a).(IEqualFunc[V]).EqualFunc(b)
		}
	}
	return nil
}

// resolveConfig fills in defaults and returns the effective hash and equality
// functions. Configuration priority, highest first: explicit With* options,
// interface implementations, built-in defaults.
func resolveConfig[K comparable, V any](cfg *MapConfig) (
	keyHash func(K) uint64,
	valEqual func(V, V) bool,
) {
	if cfg.capacity == 0 {
		cfg.capacity = defaultCapacity
	}
	if cfg.minCapacity == 0 {
		cfg.minCapacity = defaultMinCapacity
	}
	cfg.capacity = max(cfg.capacity, cfg.minCapacity)
	if cfg.growFactor == 0 {
		cfg.growFactor = defaultGrowFactor
		cfg.shrinkFactor = defaultShrinkFactor
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if len(cfg.rejected) != 0 {
		cfg.logger.Warn("bucket map option ignored", cfg.rejected...)
	}

	if h, ok := cfg.keyHash.(func(K) uint64); ok {
		keyHash = h
	} else if cfg.keyHash != nil {
		cfg.logger.Warn("bucket map key hasher has wrong key type, using default")
	}
	if keyHash == nil {
		keyHash = parseKeyInterface[K]()
	}
	if keyHash == nil {
		keyHash = defaultHasher[K]()
	}

	if eq, ok := cfg.valEqual.(func(V, V) bool); ok {
		valEqual = eq
	} else if cfg.valEqual != nil {
		cfg.logger.Warn("bucket map value equality has wrong value type, using default")
	}
	if valEqual == nil {
		valEqual = parseValueInterface[V]()
	}
	if valEqual == nil {
		valEqual = defaultEqual[V]
	}
	return keyHash, valEqual
}
