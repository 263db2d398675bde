package bucketmap

// SyncMap is a BucketMap guarded by a reader/writer lock, for callers that
// share one map between goroutines. Lookups and iteration take the read
// lock; anything that can insert, remove or resize takes the write lock.
//
// Notes:
//   - SyncMap must not be copied after first use; go vet reports copies
//     through the noCopy field.
//   - Range walks a copy of the pairs taken under the read lock, so yield
//     may call any method of the same map.
type SyncMap[K comparable, V any] struct {
	_  noCopy
	mu rwLock
	m  *BucketMap[K, V]
}

// NewSyncMap creates an empty SyncMap configured like New.
func NewSyncMap[K comparable, V any](options ...func(*MapConfig)) *SyncMap[K, V] {
	return &SyncMap[K, V]{m: New[K, V](options...)}
}

func (s *SyncMap[K, V]) inner() *BucketMap[K, V] {
	if s.m == nil {
		s.m = New[K, V]()
	}
	return s.m
}

// Set associates value with key.
func (s *SyncMap[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner().Set(key, value)
}

// Get returns the value stored for key, or an error wrapping ErrKeyNotFound.
func (s *SyncMap[K, V]) Get(key K) (V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.Get(key)
}

// Load returns the value stored for key and whether it was present.
func (s *SyncMap[K, V]) Load(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.Load(key)
}

// Contains reports whether key is present.
func (s *SyncMap[K, V]) Contains(key K) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.Contains(key)
}

// Delete removes key, or returns an error wrapping ErrKeyNotFound.
func (s *SyncMap[K, V]) Delete(key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner().Delete(key)
}

// Compute atomically updates the value of key. fn receives the current
// value and whether it was present; it returns the new value and whether to
// keep the key. Returning keep == false removes a present key and leaves an
// absent one absent.
//
// Usage:
//
//	// Increment a counter
//	s.Compute("hits", func(old int, _ bool) (int, bool) {
//		return old + 1, true
//	})
func (s *SyncMap[K, V]) Compute(
	key K,
	fn func(old V, loaded bool) (value V, keep bool),
) (actual V, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.inner()
	old, loaded := m.Load(key)
	value, keep := fn(old, loaded)
	if !keep {
		if loaded {
			_ = m.Delete(key)
		}
		return *new(V), false
	}
	m.Set(key, value)
	return value, true
}

// Len returns the number of pairs.
func (s *SyncMap[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.Len()
}

// Keys returns all keys in iteration order.
func (s *SyncMap[K, V]) Keys() []K {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.Keys()
}

// Values returns all values in iteration order.
func (s *SyncMap[K, V]) Values() []V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.Values()
}

// Items returns copies of all pairs in iteration order.
func (s *SyncMap[K, V]) Items() []Pair[K, V] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.Items()
}

// Range calls yield for every pair present when Range was called, in
// iteration order, until yield returns false. The lock is released before
// the first call to yield.
func (s *SyncMap[K, V]) Range(yield func(key K, value V) bool) {
	for _, p := range s.Items() {
		if !yield(p.Key, p.Value) {
			return
		}
	}
}

// Clear removes all pairs.
func (s *SyncMap[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner().Clear()
}

// Snapshot returns an unguarded copy of the current contents.
func (s *SyncMap[K, V]) Snapshot() *BucketMap[K, V] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.m == nil {
		return New[K, V]()
	}
	return s.m.Clone()
}
