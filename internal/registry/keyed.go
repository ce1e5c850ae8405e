package registry

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Fingerprint derives the string key a value is stored under.
type Fingerprint[T any] func(T) string

// Identity is the fingerprint of a string.
func Identity(s string) string {
	return s
}

// StringOf fingerprints any fmt.Stringer by its String output.
func StringOf[T fmt.Stringer](v T) string {
	return v.String()
}

// store is the backing map of a keyedMap.
type store[V any] interface {
	get(key string) (V, bool)
	put(key string, value V)
	remove(key string)
	clear()
	len() int
}

type mapStore[V any] map[string]V

func (m mapStore[V]) get(key string) (V, bool) {
	value, ok := m[key]
	return value, ok
}

func (m mapStore[V]) put(key string, value V) { m[key] = value }
func (m mapStore[V]) remove(key string)       { delete(m, key) }
func (m mapStore[V]) clear()                  { clear(m) }
func (m mapStore[V]) len() int                { return len(m) }

// lruStore drops the least recently used key once its capacity is reached.
type lruStore[V any] struct {
	cache *lru.Cache[string, V]
}

func newLRUStore[V any](size int) (*lruStore[V], error) {
	cache, err := lru.New[string, V](size)
	if err != nil {
		return nil, err
	}
	return &lruStore[V]{cache: cache}, nil
}

func (s *lruStore[V]) get(key string) (V, bool) { return s.cache.Get(key) }
func (s *lruStore[V]) put(key string, value V)  { s.cache.Add(key, value) }
func (s *lruStore[V]) remove(key string)        { s.cache.Remove(key) }
func (s *lruStore[V]) clear()                   { s.cache.Purge() }
func (s *lruStore[V]) len() int                 { return s.cache.Len() }

// keyedMap stores values under the fingerprint of K. Only the fingerprint is
// kept, never the key value itself.
type keyedMap[K, V any] struct {
	key   Fingerprint[K]
	store store[V]
}

func newKeyedMap[K, V any](key Fingerprint[K], backing store[V]) *keyedMap[K, V] {
	if backing == nil {
		backing = make(mapStore[V])
	}
	return &keyedMap[K, V]{key: key, store: backing}
}

func (m *keyedMap[K, V]) get(k K) (V, bool) {
	return m.store.get(m.key(k))
}

func (m *keyedMap[K, V]) put(k K, value V) {
	m.store.put(m.key(k), value)
}

// take returns and removes the value stored for k.
func (m *keyedMap[K, V]) take(k K) (V, bool) {
	fp := m.key(k)
	value, ok := m.store.get(fp)
	if ok {
		m.store.remove(fp)
	}
	return value, ok
}

func (m *keyedMap[K, V]) clear() {
	m.store.clear()
}

func (m *keyedMap[K, V]) len() int {
	return m.store.len()
}
