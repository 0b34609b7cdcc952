package collections

type FillKind int

const (
	FillNone FillKind = iota
	FillUniform
	FillPerKey
)

// Fill selects the value used for a key that an appended row omits.
type Fill[K comparable, V any] struct {
	kind   FillKind
	value  V
	values map[K]V
}

func NoFill[K comparable, V any]() Fill[K, V] {
	return Fill[K, V]{kind: FillNone}
}

// UniformFill uses value for every key.
func UniformFill[K comparable, V any](value V) Fill[K, V] {
	return Fill[K, V]{kind: FillUniform, value: value}
}

// PerKeyFill uses values[k] for key k. Keys absent from values have no fill.
func PerKeyFill[K comparable, V any](values map[K]V) Fill[K, V] {
	copied := make(map[K]V, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Fill[K, V]{kind: FillPerKey, values: copied}
}

func (f Fill[K, V]) Kind() FillKind {
	return f.kind
}

// empty reports whether the policy can never supply a value. An empty
// per-key mapping counts as no fill at all.
func (f Fill[K, V]) empty() bool {
	switch f.kind {
	case FillUniform:
		return false
	case FillPerKey:
		return len(f.values) == 0
	default:
		return true
	}
}

// expand resolves the policy against the accumulator keys.
func (f Fill[K, V]) expand(keys []K) map[K]V {
	result := map[K]V{}
	switch f.kind {
	case FillUniform:
		for _, k := range keys {
			result[k] = f.value
		}
	case FillPerKey:
		for k, v := range f.values {
			result[k] = v
		}
	}
	return result
}
