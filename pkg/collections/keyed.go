package collections

import "iter"

// KeyedMap is a map whose missing entries are created on first lookup by a
// factory that receives the key being looked up.
type KeyedMap[K comparable, V any] struct {
	data    map[K]V
	factory func(K) V
}

func NewKeyedMap[K comparable, V any](factory func(K) V) *KeyedMap[K, V] {
	return &KeyedMap[K, V]{
		data:    map[K]V{},
		factory: factory,
	}
}

// GetOrCreate returns the value stored under key. If there is none, the factory
// is called once with key and its result is stored before being returned.
func (m *KeyedMap[K, V]) GetOrCreate(key K) V {
	if value, ok := m.data[key]; ok {
		return value
	}
	value := m.factory(key)
	m.data[key] = value
	return value
}

func (m *KeyedMap[K, V]) Get(key K) (V, bool) {
	value, ok := m.data[key]
	return value, ok
}

func (m *KeyedMap[K, V]) Set(key K, value V) {
	m.data[key] = value
}

func (m *KeyedMap[K, V]) Contains(key K) bool {
	_, ok := m.data[key]
	return ok
}

func (m *KeyedMap[K, V]) Len() int {
	return len(m.data)
}

// All iterates over the stored entries in unspecified order.
func (m *KeyedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for k, v := range m.data {
			if !yield(k, v) {
				return
			}
		}
	}
}

func (m *KeyedMap[K, V]) Keys() []K {
	keys := make([]K, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}
