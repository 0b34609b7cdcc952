// Package knn implements a k-nearest-neighbours classifier whose neighbour
// search runs once, so that predictions for every k up to a maximum and for
// every weighting scheme reuse the same precomputed neighbours.
//
// Labels must be label-encoded, i.e. contiguous integers 0..n_classes-1.
package knn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// AllNeighbors as k uses every precomputed neighbour.
const AllNeighbors = math.MaxInt

type Weighting string

const (
	Uniform     Weighting = "uniform"
	Inverse     Weighting = "inverse"
	RootInverse Weighting = "root-inverse"
)

func ParseWeighting(name string) (Weighting, error) {
	if w := Weighting(name); w.valid() {
		return w, nil
	}
	return "", fmt.Errorf("weighting %q should be one of %s, %s, %s: %w", name, Uniform, Inverse, RootInverse, ErrInvalidArgument)
}

func (w Weighting) valid() bool {
	return w == Uniform || w == Inverse || w == RootInverse
}

// weight maps a neighbour distance to its unnormalized weight. A zero distance
// gives an infinite weight under Inverse and RootInverse.
func (w Weighting) weight(distance float64) float64 {
	switch w {
	case Inverse:
		return 1 / distance
	case RootInverse:
		return 1 / math.Sqrt(distance)
	default:
		return 1
	}
}

type CachedKnn struct {
	nTrain    int
	neighbors *Neighbors

	labels   [][]int
	nClasses int
	fitted   bool
}

// New searches the maxK nearest rows of xTrain for every row of xTest using a
// parallel brute-force search.
func New(maxK int, xTrain, xTest mat.Matrix, metric Metric) (*CachedKnn, error) {
	return NewWithSearcher(maxK, xTrain, xTest, BruteForce{Metric: metric})
}

func NewWithSearcher(maxK int, xTrain, xTest mat.Matrix, searcher Searcher) (*CachedKnn, error) {
	nb, err := searcher.Search(xTrain, xTest, maxK)
	if err != nil {
		return nil, fmt.Errorf("error searching neighbors: %w", err)
	}
	nTrain, _ := xTrain.Dims()
	return FromNeighbors(nTrain, nb)
}

// FromNeighbors builds a classifier over a previously computed search, e.g.
// one loaded from a cache. nTrain is the number of training rows it was
// computed against.
func FromNeighbors(nTrain int, nb *Neighbors) (*CachedKnn, error) {
	if nb == nil || nb.MaxK < 1 {
		return nil, fmt.Errorf("empty neighbor search: %w", ErrInvalidArgument)
	}
	if len(nb.Dist) != len(nb.Index) {
		return nil, fmt.Errorf("neighbor distances have %d rows but indices have %d: %w", len(nb.Dist), len(nb.Index), ErrInvalidArgument)
	}
	for i := range nb.Index {
		if len(nb.Index[i]) != nb.MaxK || len(nb.Dist[i]) != nb.MaxK {
			return nil, fmt.Errorf("neighbor row %d does not hold %d neighbors: %w", i, nb.MaxK, ErrInvalidArgument)
		}
		for _, j := range nb.Index[i] {
			if j < 0 || j >= nTrain {
				return nil, fmt.Errorf("neighbor index %d out of range for %d training rows: %w", j, nTrain, ErrInvalidArgument)
			}
		}
	}
	return &CachedKnn{nTrain: nTrain, neighbors: nb}, nil
}

func (c *CachedKnn) MaxK() int {
	return c.neighbors.MaxK
}

func (c *CachedKnn) NumClasses() int {
	return c.nClasses
}

// Neighbors returns the precomputed search. It must not be modified.
func (c *CachedKnn) Neighbors() *Neighbors {
	return c.neighbors
}

// Fit attaches the training labels, replacing any previous ones. The class
// count is the number of distinct labels.
func (c *CachedKnn) Fit(labels []int) error {
	if len(labels) != c.nTrain {
		return fmt.Errorf("got %d labels for %d training rows: %w", len(labels), c.nTrain, ErrCardinality)
	}

	distinct := map[int]struct{}{}
	for _, l := range labels {
		distinct[l] = struct{}{}
	}

	labelMat := make([][]int, len(c.neighbors.Index))
	for i, row := range c.neighbors.Index {
		labelMat[i] = make([]int, len(row))
		for j, idx := range row {
			labelMat[i][j] = labels[idx]
		}
	}

	c.labels = labelMat
	c.nClasses = len(distinct)
	c.fitted = true
	return nil
}

// PredictProba returns an n_test x n_classes matrix with, per query row, the
// normalized weight of its k nearest neighbours belonging to each class. k is
// capped at MaxK.
func (c *CachedKnn) PredictProba(k int, weighting Weighting) (*mat.Dense, error) {
	if !weighting.valid() {
		return nil, fmt.Errorf("weighting %q should be one of %s, %s, %s: %w", string(weighting), Uniform, Inverse, RootInverse, ErrInvalidArgument)
	}
	if k < 1 {
		return nil, fmt.Errorf("k=%d must be positive: %w", k, ErrInvalidArgument)
	}
	if !c.fitted {
		return nil, ErrNotFitted
	}
	k = min(k, c.neighbors.MaxK)

	nQuery := len(c.labels)
	if nQuery == 0 {
		return &mat.Dense{}, nil
	}
	probas := mat.NewDense(nQuery, c.nClasses, nil)
	weights := make([]float64, k)
	for i := 0; i < nQuery; i++ {
		total := 0.0
		for j := 0; j < k; j++ {
			weights[j] = weighting.weight(c.neighbors.Dist[i][j])
			total += weights[j]
		}
		for j := 0; j < k; j++ {
			class := c.labels[i][j]
			if class < 0 || class >= c.nClasses {
				continue
			}
			probas.Set(i, class, probas.At(i, class)+weights[j]/total)
		}
	}
	return probas, nil
}

// Predict returns the most probable class of every query row, the lowest
// class index winning ties.
func (c *CachedKnn) Predict(k int, weighting Weighting) ([]int, error) {
	probas, err := c.PredictProba(k, weighting)
	if err != nil {
		return nil, err
	}
	if probas.IsEmpty() {
		return []int{}, nil
	}
	n, _ := probas.Dims()
	result := make([]int, n)
	for i := range result {
		result[i], _ = argmax(probas.RawRowView(i))
	}
	return result, nil
}

func argmax(data []float64) (int, float64) {
	maxInd := 0
	for i := range data {
		if data[i] > data[maxInd] {
			maxInd = i
		}
	}
	return maxInd, data[maxInd]
}
