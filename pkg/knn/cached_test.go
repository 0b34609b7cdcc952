package knn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func trainSet() (*mat.Dense, []int) {
	xTrain := mat.NewDense(4, 2, []float64{
		0, 0,
		0, 1,
		3, 0,
		5, 5,
	})
	return xTrain, []int{0, 0, 1, 1}
}

func TestCachedKnn_EndToEnd(t *testing.T) {
	xTrain, labels := trainSet()
	xTest := mat.NewDense(1, 2, []float64{0, 0.4})

	c, err := New(3, xTrain, xTest, Euclidean)
	require.NoError(t, err)
	require.NoError(t, c.Fit(labels))
	require.Equal(t, 2, c.NumClasses())
	require.Equal(t, []int{0, 1, 2}, c.Neighbors().Index[0])

	probas, err := c.PredictProba(3, Uniform)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{2.0 / 3, 1.0 / 3}, probas.RawRowView(0), 1e-9)

	predicted, err := c.Predict(3, Uniform)
	require.NoError(t, err)
	require.Equal(t, []int{0}, predicted)
}

func TestCachedKnn_Weightings(t *testing.T) {
	xTrain := mat.NewDense(3, 1, []float64{1, 2, 4})
	xTest := mat.NewDense(1, 1, []float64{0})
	c, err := New(3, xTrain, xTest, Euclidean)
	require.NoError(t, err)
	require.NoError(t, c.Fit([]int{0, 1, 1}))

	tests := []struct {
		weighting Weighting
		weights   []float64
	}{
		{weighting: Uniform, weights: []float64{1, 1, 1}},
		{weighting: Inverse, weights: []float64{1, 0.5, 0.25}},
		{weighting: RootInverse, weights: []float64{1, 1 / math.Sqrt(2), 0.5}},
	}

	for _, tt := range tests {
		t.Run(string(tt.weighting), func(t *testing.T) {
			total := floats.Sum(tt.weights)
			expected := []float64{tt.weights[0] / total, (tt.weights[1] + tt.weights[2]) / total}

			probas, err := c.PredictProba(AllNeighbors, tt.weighting)
			require.NoError(t, err)
			require.InDeltaSlice(t, expected, probas.RawRowView(0), 1e-9)
			require.InDelta(t, 1.0, floats.Sum(probas.RawRowView(0)), 1e-9)
		})
	}
}

func TestCachedKnn_SmallerK(t *testing.T) {
	xTrain := mat.NewDense(3, 1, []float64{1, 2, 4})
	xTest := mat.NewDense(2, 1, []float64{0, 3.9})
	c, err := New(3, xTrain, xTest, Euclidean)
	require.NoError(t, err)
	require.NoError(t, c.Fit([]int{0, 1, 1}))

	probas, err := c.PredictProba(1, Uniform)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 0, 0, 1}, probas.RawMatrix().Data)

	probas, err = c.PredictProba(100, Uniform)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{1.0 / 3, 2.0 / 3}, probas.RawRowView(0), 1e-9)
}

func TestCachedKnn_FarNeighborsDoNotChangeSmallK(t *testing.T) {
	xTest := mat.NewDense(1, 2, []float64{0, 0.4})
	base, labels := trainSet()
	// the third closest point moves but keeps its rank
	moved := mat.DenseCopyOf(base)
	moved.Set(2, 0, 4)
	moved.Set(2, 1, 4)

	results := make([]*mat.Dense, 0, 2)
	for _, xTrain := range []*mat.Dense{base, moved} {
		c, err := New(3, xTrain, xTest, Euclidean)
		require.NoError(t, err)
		require.NoError(t, c.Fit(labels))
		require.Equal(t, []int{0, 1, 2}, c.Neighbors().Index[0])
		probas, err := c.PredictProba(2, Inverse)
		require.NoError(t, err)
		results = append(results, probas)
	}
	require.True(t, mat.EqualApprox(results[0], results[1], 1e-12))
}

func TestCachedKnn_PredictIsArgmax(t *testing.T) {
	xTrain := mat.NewDense(6, 2, []float64{
		0, 0,
		1, 0,
		0, 1,
		5, 5,
		6, 5,
		5, 6,
	})
	xTest := mat.NewDense(4, 2, []float64{0.2, 0.2, 5.5, 5.5, 2.5, 2.5, 3, 3})
	c, err := New(4, xTrain, xTest, Manhattan)
	require.NoError(t, err)
	require.NoError(t, c.Fit([]int{0, 1, 2, 2, 1, 0}))

	for _, w := range []Weighting{Uniform, Inverse, RootInverse} {
		for k := 1; k <= 4; k++ {
			probas, err := c.PredictProba(k, w)
			require.NoError(t, err)
			predicted, err := c.Predict(k, w)
			require.NoError(t, err)
			for i := range predicted {
				best, _ := argmax(probas.RawRowView(i))
				require.Equal(t, best, predicted[i])
			}
		}
	}
}

func TestCachedKnn_TieGoesToLowestClass(t *testing.T) {
	xTrain := mat.NewDense(2, 1, []float64{-1, 1})
	xTest := mat.NewDense(1, 1, []float64{0})
	c, err := New(2, xTrain, xTest, Euclidean)
	require.NoError(t, err)
	require.NoError(t, c.Fit([]int{1, 0}))

	predicted, err := c.Predict(2, Uniform)
	require.NoError(t, err)
	require.Equal(t, []int{0}, predicted)
}

func TestCachedKnn_Refit(t *testing.T) {
	xTrain, labels := trainSet()
	xTest := mat.NewDense(1, 2, []float64{0, 0.4})
	c, err := New(3, xTrain, xTest, Euclidean)
	require.NoError(t, err)

	require.NoError(t, c.Fit(labels))
	require.NoError(t, c.Fit([]int{1, 1, 0, 2}))
	require.Equal(t, 3, c.NumClasses())

	probas, err := c.PredictProba(3, Uniform)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{1.0 / 3, 2.0 / 3, 0}, probas.RawRowView(0), 1e-9)
}

func TestCachedKnn_Errors(t *testing.T) {
	xTrain, labels := trainSet()
	xTest := mat.NewDense(1, 2, []float64{0, 0.4})

	_, err := New(5, xTrain, xTest, Euclidean)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New(0, xTrain, xTest, Euclidean)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New(2, xTrain, mat.NewDense(1, 3, nil), Euclidean)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New(2, xTrain, xTest, Metric("hamming"))
	require.ErrorIs(t, err, ErrInvalidArgument)

	c, err := New(3, xTrain, xTest, Euclidean)
	require.NoError(t, err)

	_, err = c.PredictProba(3, Uniform)
	require.ErrorIs(t, err, ErrNotFitted)

	require.ErrorIs(t, c.Fit(labels[:3]), ErrCardinality)
	require.NoError(t, c.Fit(labels))

	_, err = c.PredictProba(3, Weighting("distance"))
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = c.Predict(3, Weighting("distance"))
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = c.PredictProba(0, Uniform)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCachedKnn_FromNeighbors(t *testing.T) {
	nb := &Neighbors{
		MaxK:  2,
		Dist:  [][]float64{{0.5, 1}},
		Index: [][]int{{1, 0}},
	}
	c, err := FromNeighbors(2, nb)
	require.NoError(t, err)
	require.NoError(t, c.Fit([]int{0, 1}))

	probas, err := c.PredictProba(2, Inverse)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{1.0 / 3, 2.0 / 3}, probas.RawRowView(0), 1e-9)

	_, err = FromNeighbors(1, nb)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = FromNeighbors(2, &Neighbors{MaxK: 3, Dist: nb.Dist, Index: nb.Index})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestParseWeighting(t *testing.T) {
	w, err := ParseWeighting("root-inverse")
	require.NoError(t, err)
	require.Equal(t, RootInverse, w)

	_, err = ParseWeighting("distance")
	require.ErrorIs(t, err, ErrInvalidArgument)
}
