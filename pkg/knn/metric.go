package knn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Metric names a distance between two feature vectors of equal length.
type Metric string

const (
	Euclidean Metric = "euclidean"
	Manhattan Metric = "manhattan"
	Chebyshev Metric = "chebyshev"
	Cosine    Metric = "cosine"
)

func ParseMetric(name string) (Metric, error) {
	switch m := Metric(name); m {
	case Euclidean, Manhattan, Chebyshev, Cosine:
		return m, nil
	case "l2":
		return Euclidean, nil
	case "l1", "cityblock":
		return Manhattan, nil
	}
	return "", fmt.Errorf("unknown distance metric %q: %w", name, ErrInvalidArgument)
}

// DistanceFunc returns the function computing m.
func (m Metric) DistanceFunc() (func(a, b []float64) float64, error) {
	switch m {
	case Euclidean:
		return func(a, b []float64) float64 { return floats.Distance(a, b, 2) }, nil
	case Manhattan:
		return func(a, b []float64) float64 { return floats.Distance(a, b, 1) }, nil
	case Chebyshev:
		return func(a, b []float64) float64 { return floats.Distance(a, b, math.Inf(1)) }, nil
	case Cosine:
		return cosineDistance, nil
	}
	return nil, fmt.Errorf("unknown distance metric %q: %w", string(m), ErrInvalidArgument)
}

// cosineDistance is 1 - cosine similarity; zero vectors are at distance 1.
func cosineDistance(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - floats.Dot(a, b)/(na*nb)
}
