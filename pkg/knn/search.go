package knn

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Neighbors holds, for every query row, the MaxK closest training rows sorted
// by ascending distance.
type Neighbors struct {
	MaxK  int
	Dist  [][]float64
	Index [][]int
}

// Searcher finds the k nearest training rows of every query row.
type Searcher interface {
	Search(train, query mat.Matrix, k int) (*Neighbors, error)
}

// BruteForce compares every query row against every training row. Query rows
// are split among Workers goroutines (GOMAXPROCS when zero).
type BruteForce struct {
	Metric  Metric
	Workers int
}

var _ Searcher = BruteForce{}

func (b BruteForce) Search(train, query mat.Matrix, k int) (*Neighbors, error) {
	distance, err := b.Metric.DistanceFunc()
	if err != nil {
		return nil, err
	}
	nTrain, dim := train.Dims()
	nQuery, queryDim := query.Dims()
	if dim != queryDim {
		return nil, fmt.Errorf("train has %d features but query has %d: %w", dim, queryDim, ErrInvalidArgument)
	}
	if k < 1 || k > nTrain {
		return nil, fmt.Errorf("k=%d must be between 1 and the %d training rows: %w", k, nTrain, ErrInvalidArgument)
	}

	trainRows := rows(train)
	result := &Neighbors{
		MaxK:  k,
		Dist:  make([][]float64, nQuery),
		Index: make([][]int, nQuery),
	}

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := (nQuery + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < nQuery; start += chunk {
		end := min(start+chunk, nQuery)
		g.Go(func() error {
			q := make([]float64, dim)
			for i := start; i < end; i++ {
				mat.Row(q, i, query)
				result.Dist[i], result.Index[i] = nearest(q, trainRows, k, distance)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// nearest keeps the k best candidates sorted while scanning the pool. Equal
// distances keep the lower training index first.
func nearest(q []float64, pool [][]float64, k int, distance func(a, b []float64) float64) ([]float64, []int) {
	dist := make([]float64, 0, k)
	index := make([]int, 0, k)
	for j, row := range pool {
		d := distance(q, row)
		if len(dist) == k && d >= dist[k-1] {
			continue
		}
		pos := len(dist)
		for pos > 0 && dist[pos-1] > d {
			pos--
		}
		if len(dist) < k {
			dist = append(dist, 0)
			index = append(index, 0)
		}
		copy(dist[pos+1:], dist[pos:len(dist)-1])
		copy(index[pos+1:], index[pos:len(index)-1])
		dist[pos], index[pos] = d, j
	}
	return dist, index
}

func rows(m mat.Matrix) [][]float64 {
	n, _ := m.Dims()
	result := make([][]float64, n)
	for i := range result {
		result[i] = mat.Row(nil, i, m)
	}
	return result
}
