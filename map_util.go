package bucketmap

import (
	"hash/maphash"
	"math"
	"reflect"
	"unsafe"

	"github.com/cespare/xxhash"
)

// ============================================================================
// Capacity Utilities
// ============================================================================

// growThreshold reports whether size has reached the doubling point.
func growThreshold(size, capacity int, factor float64) bool {
	return float64(size) >= float64(capacity)*factor
}

// shrinkThreshold reports whether size has dropped to the halving point.
func shrinkThreshold(size, capacity int, factor float64) bool {
	return float64(size) <= float64(capacity)*factor
}

// calcCapacity returns the bucket count after one resize step, never below
// floor. Halving truncates.
func calcCapacity(capacity, floor int, grow bool) int {
	if grow {
		if capacity > math.MaxInt/2 {
			return math.MaxInt
		}
		return capacity * 2
	}
	return max(capacity/2, floor)
}

// bucketIndex maps a hash onto [0, capacity).
func bucketIndex(hash uint64, capacity int) int {
	return int(hash % uint64(capacity))
}

// noCopy may be added to structs which must not be copied
// after the first use.
//
// See https://golang.org/issues/8005#issuecomment-190753527
// for details.
//
// Note that it must not be embedded, due to the Lock and Unlock methods.
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// ============================================================================
// Hash Utilities
// ============================================================================

// defaultHasher picks the built-in hash function for K.
//
// Integer kinds hash to their own bits and bools to 0/1, so small integer
// keys spread predictably (0 and 10 share a bucket under capacity 10).
// Strings use xxhash. Interface keys dispatch on the held value. Everything
// else falls back to hash/maphash with a per-hasher random seed.
func defaultHasher[K comparable]() func(K) uint64 {
	seed := maphash.MakeSeed()
	kType := reflect.TypeFor[K]()

	switch kType.Kind() {
	case reflect.Int, reflect.Uint, reflect.Uintptr:
		if intSize == 64 {
			return hashWord64[K]
		}
		return hashWord32[K]
	case reflect.Int64, reflect.Uint64:
		return hashWord64[K]
	case reflect.Int32, reflect.Uint32:
		return hashWord32[K]
	case reflect.Int16, reflect.Uint16:
		return hashWord16[K]
	case reflect.Int8, reflect.Uint8:
		return hashWord8[K]
	case reflect.Bool:
		return hashBool[K]
	case reflect.String:
		return hashString[K]
	case reflect.Interface:
		return func(key K) uint64 {
			return hashDynamic(any(key), seed)
		}
	default:
		return func(key K) uint64 {
			return maphash.Comparable(seed, key)
		}
	}
}

const intSize = 32 << (^uint(0) >> 63)

func hashWord64[K comparable](key K) uint64 {
	return *(*uint64)(unsafe.Pointer(&key))
}

func hashWord32[K comparable](key K) uint64 {
	return uint64(*(*uint32)(unsafe.Pointer(&key)))
}

func hashWord16[K comparable](key K) uint64 {
	return uint64(*(*uint16)(unsafe.Pointer(&key)))
}

func hashWord8[K comparable](key K) uint64 {
	return uint64(*(*uint8)(unsafe.Pointer(&key)))
}

func hashBool[K comparable](key K) uint64 {
	if *(*bool)(unsafe.Pointer(&key)) {
		return 1
	}
	return 0
}

func hashString[K comparable](key K) uint64 {
	return xxhash.Sum64String(*(*string)(unsafe.Pointer(&key)))
}

// hashDynamic hashes a value held in an interface key. It panics, like the
// builtin map, if the held value is not comparable.
func hashDynamic(v any, seed maphash.Seed) uint64 {
	switch k := v.(type) {
	case nil:
		return 0
	case IHashFunc:
		return k.HashFunc()
	case int:
		return uint64(k)
	case int64:
		return uint64(k)
	case int32:
		return uint64(uint32(k))
	case int16:
		return uint64(uint16(k))
	case int8:
		return uint64(uint8(k))
	case uint:
		return uint64(k)
	case uint64:
		return k
	case uint32:
		return uint64(k)
	case uint16:
		return uint64(k)
	case uint8:
		return uint64(k)
	case uintptr:
		return uint64(k)
	case bool:
		if k {
			return 1
		}
		return 0
	case string:
		return xxhash.Sum64String(k)
	default:
		return maphash.Comparable(seed, v)
	}
}

// ============================================================================
// Equality Utilities
// ============================================================================

// defaultEqual compares two values with == when both are comparable at run
// time, and with reflect.DeepEqual otherwise, so values holding slices or
// maps compare by content instead of panicking.
func defaultEqual[V any](a, b V) bool {
	va, vb := reflect.ValueOf(any(a)), reflect.ValueOf(any(b))
	if va.Comparable() && vb.Comparable() {
		return any(a) == any(b)
	}
	return reflect.DeepEqual(any(a), any(b))
}
