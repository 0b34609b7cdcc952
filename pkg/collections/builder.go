package collections

import "fmt"

// RowAccumulator collects rows (field name to value) into columns (field name
// to the ordered values of that field across every accepted row).
type RowAccumulator[K comparable, V any] struct {
	keys          []K
	keySet        map[K]struct{}
	columns       map[K][]V
	raiseMismatch bool
	fill          map[K]V
	rows          int
}

// NewRowAccumulator creates an accumulator. A nil keys slice leaves the key set
// unset until the first Append, which then fixes it. A fill policy that can
// supply values requires explicit keys.
func NewRowAccumulator[K comparable, V any](keys []K, raiseMismatch bool, fill Fill[K, V]) (*RowAccumulator[K, V], error) {
	if keys == nil && !fill.empty() {
		return nil, fmt.Errorf("fill value given without explicit keys: %w", ErrConfiguration)
	}

	acc := &RowAccumulator[K, V]{
		raiseMismatch: raiseMismatch,
		columns:       map[K][]V{},
	}
	if keys != nil {
		acc.setKeys(keys)
	}
	acc.fill = fill.expand(acc.keys)
	return acc, nil
}

func (a *RowAccumulator[K, V]) setKeys(keys []K) {
	a.keys = make([]K, 0, len(keys))
	a.keySet = make(map[K]struct{}, len(keys))
	for _, k := range keys {
		if _, seen := a.keySet[k]; seen {
			continue
		}
		a.keySet[k] = struct{}{}
		a.keys = append(a.keys, k)
		a.columns[k] = nil
	}
}

// Append adds row to the columns. The row is checked completely before any
// column is touched, so a failed Append leaves every column unchanged.
func (a *RowAccumulator[K, V]) Append(row map[K]V) error {
	if a.keySet == nil {
		keys := make([]K, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		a.setKeys(keys)
		for _, k := range a.keys {
			a.columns[k] = []V{row[k]}
		}
		a.rows = 1
		return nil
	}

	if a.raiseMismatch && !a.matches(row) {
		return &KeyMismatchError{Expected: a.expected(), Received: a.received(row)}
	}

	values := make([]V, len(a.keys))
	for i, k := range a.keys {
		if v, ok := row[k]; ok {
			values[i] = v
			continue
		}
		v, ok := a.fill[k]
		if !ok {
			return &MissingKeyError{Key: k}
		}
		values[i] = v
	}

	for i, k := range a.keys {
		a.columns[k] = append(a.columns[k], values[i])
	}
	a.rows++
	return nil
}

func (a *RowAccumulator[K, V]) matches(row map[K]V) bool {
	if len(row) != len(a.keySet) {
		return false
	}
	for k := range row {
		if _, ok := a.keySet[k]; !ok {
			return false
		}
	}
	return true
}

func (a *RowAccumulator[K, V]) expected() []any {
	result := make([]any, len(a.keys))
	for i, k := range a.keys {
		result[i] = k
	}
	return result
}

// received lists the row keys, the known ones first in accumulator order.
func (a *RowAccumulator[K, V]) received(row map[K]V) []any {
	result := make([]any, 0, len(row))
	for _, k := range a.keys {
		if _, ok := row[k]; ok {
			result = append(result, k)
		}
	}
	for k := range row {
		if _, ok := a.keySet[k]; !ok {
			result = append(result, k)
		}
	}
	return result
}

// Export returns a copy of the columns accumulated so far. Later appends do
// not show up in a previously exported value.
func (a *RowAccumulator[K, V]) Export() map[K][]V {
	result := make(map[K][]V, len(a.columns))
	for k, column := range a.columns {
		result[k] = append(make([]V, 0, len(column)), column...)
	}
	return result
}

// Keys returns the expected keys, nil while they are still unset.
func (a *RowAccumulator[K, V]) Keys() []K {
	if a.keys == nil {
		return nil
	}
	return append([]K(nil), a.keys...)
}

// Len is the number of accepted rows.
func (a *RowAccumulator[K, V]) Len() int {
	return a.rows
}
