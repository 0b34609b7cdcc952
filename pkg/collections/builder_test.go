package collections

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRowAccumulator_BuildComplete(t *testing.T) {
	c1 := []any{1, 2, 3, 4}
	c2 := []any{"a", "b", "c", "d"}
	c3 := []any{true, false, true, false}
	keys := []any{"X", 5, [2]string{"a", "b"}}

	expected := map[any][]any{keys[0]: c1, keys[1]: c2, keys[2]: c3}

	tests := []struct {
		name string
		keys []any
	}{
		{name: "keys passed", keys: keys},
		{name: "keys inferred", keys: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := NewRowAccumulator[any, any](tt.keys, true, NoFill[any, any]())
			require.NoError(t, err)
			for i := range c1 {
				require.NoError(t, acc.Append(map[any]any{keys[0]: c1[i], keys[1]: c2[i], keys[2]: c3[i]}))
			}
			require.Equal(t, expected, acc.Export())
			require.Equal(t, 4, acc.Len())
			require.ElementsMatch(t, keys, acc.Keys())
		})
	}
}

func TestRowAccumulator_ExactKeysNeverFail(t *testing.T) {
	for _, strict := range []bool{true, false} {
		acc, err := NewRowAccumulator[string, int]([]string{"X", "Y"}, strict, NoFill[string, int]())
		require.NoError(t, err)
		require.NoError(t, acc.Append(map[string]int{"X": 1, "Y": 2}))
	}
}

func TestRowAccumulator_Mismatch(t *testing.T) {
	tests := []struct {
		name   string
		strict bool
		fill   Fill[string, int]
		row    map[string]int
		err    error
	}{
		{name: "strict extra", strict: true, fill: NoFill[string, int](), row: map[string]int{"X": 1, "Y": 2, "Z": 4}, err: ErrKeyMismatch},
		{name: "strict missing", strict: true, fill: NoFill[string, int](), row: map[string]int{"X": 1}, err: ErrKeyMismatch},
		{name: "strict missing with fill", strict: true, fill: UniformFill[string, int](3), row: map[string]int{"X": 1}, err: ErrKeyMismatch},
		{name: "lenient missing no fill", strict: false, fill: NoFill[string, int](), row: map[string]int{"X": 1}, err: ErrMissingKey},
		{name: "lenient extra", strict: false, fill: NoFill[string, int](), row: map[string]int{"X": 1, "Y": 2, "Z": 4}},
		{name: "lenient missing with fill", strict: false, fill: UniformFill[string, int](3), row: map[string]int{"X": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := NewRowAccumulator([]string{"X", "Y"}, tt.strict, tt.fill)
			require.NoError(t, err)
			err = acc.Append(tt.row)
			if tt.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.err)
			require.Equal(t, 0, acc.Len())
		})
	}
}

func TestRowAccumulator_KeyMismatchErrorDetail(t *testing.T) {
	acc, err := NewRowAccumulator[string, int]([]string{"X", "Y"}, true, NoFill[string, int]())
	require.NoError(t, err)

	err = acc.Append(map[string]int{"Y": 1, "Z": 2})
	var mismatch *KeyMismatchError
	require.True(t, errors.As(err, &mismatch))
	require.Equal(t, []any{"X", "Y"}, mismatch.Expected)
	require.Equal(t, []any{"Y", "Z"}, mismatch.Received)
}

func TestRowAccumulator_ExtraKeyDropped(t *testing.T) {
	acc, err := NewRowAccumulator[string, int]([]string{"X", "Y"}, false, NoFill[string, int]())
	require.NoError(t, err)
	require.NoError(t, acc.Append(map[string]int{"X": 1, "Y": 2, "Z": 4}))
	require.Equal(t, map[string][]int{"X": {1}, "Y": {2}}, acc.Export())
}

func TestRowAccumulator_FillWithoutKeys(t *testing.T) {
	_, err := NewRowAccumulator[string, int](nil, false, UniformFill[string, int](5))
	require.ErrorIs(t, err, ErrConfiguration)

	_, err = NewRowAccumulator[string, int](nil, false, PerKeyFill(map[string]int{"X": 1}))
	require.ErrorIs(t, err, ErrConfiguration)

	_, err = NewRowAccumulator[string, int](nil, false, PerKeyFill(map[string]int{}))
	require.NoError(t, err)
}

func TestRowAccumulator_UniformFill(t *testing.T) {
	acc, err := NewRowAccumulator[string, int]([]string{"X", "Y"}, false, UniformFill[string, int](5))
	require.NoError(t, err)
	require.NoError(t, acc.Append(map[string]int{}))
	require.Equal(t, map[string][]int{"X": {5}, "Y": {5}}, acc.Export())
}

func TestRowAccumulator_PerKeyFill(t *testing.T) {
	acc, err := NewRowAccumulator([]string{"X", "Y"}, false, PerKeyFill(map[string]int{"X": 1, "Y": 2}))
	require.NoError(t, err)

	require.NoError(t, acc.Append(map[string]int{"X": 5}))
	require.NoError(t, acc.Append(map[string]int{"Y": 6}))
	require.Equal(t, map[string][]int{"X": {5, 1}, "Y": {2, 6}}, acc.Export())
}

func TestRowAccumulator_PartialPerKeyFill(t *testing.T) {
	acc, err := NewRowAccumulator([]string{"X", "Y"}, false, PerKeyFill(map[string]int{"X": 3}))
	require.NoError(t, err)

	require.NoError(t, acc.Append(map[string]int{"Y": 1}))
	require.Equal(t, map[string][]int{"X": {3}, "Y": {1}}, acc.Export())

	err = acc.Append(map[string]int{})
	var missing *MissingKeyError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, "Y", missing.Key)

	err = acc.Append(map[string]int{"X": 3})
	require.ErrorIs(t, err, ErrMissingKey)

	require.Equal(t, 1, acc.Len())
	for _, column := range acc.Export() {
		require.Len(t, column, 1)
	}
}

func TestRowAccumulator_ExportIsCopy(t *testing.T) {
	acc, err := NewRowAccumulator[string, int]([]string{"X"}, true, NoFill[string, int]())
	require.NoError(t, err)
	require.NoError(t, acc.Append(map[string]int{"X": 1}))

	exported := acc.Export()
	exported["X"][0] = 100
	require.NoError(t, acc.Append(map[string]int{"X": 2}))

	require.Equal(t, []int{100}, exported["X"])
	require.Equal(t, []int{1, 2}, acc.Export()["X"])
}

func TestRowAccumulator_DuplicateKeys(t *testing.T) {
	acc, err := NewRowAccumulator[string, int]([]string{"X", "X", "Y"}, true, NoFill[string, int]())
	require.NoError(t, err)
	require.Equal(t, []string{"X", "Y"}, acc.Keys())
	require.NoError(t, acc.Append(map[string]int{"X": 1, "Y": 2}))
}
