// Package eda computes high-level descriptive statistics over columnar data,
// as produced by collections.RowAccumulator.
package eda

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ColumnSummary describes the cardinality and mode importance of a column.
type ColumnSummary struct {
	Column       string
	Uniques      int
	UniquesRatio float64
	Mode         string
	ModeFreq     int
	ModeRatio    float64
}

// UniquesModesProportion summarizes every column named in order. Ties between
// modes go to the smallest value.
func UniquesModesProportion(columns map[string][]string, order []string, decimals int) ([]ColumnSummary, error) {
	result := make([]ColumnSummary, 0, len(order))
	for _, name := range order {
		values, ok := columns[name]
		if !ok {
			return nil, fmt.Errorf("unknown column %s", name)
		}
		counts := ValueCountProp(values, decimals)
		summary := ColumnSummary{Column: name, Uniques: len(counts)}
		if len(values) > 0 {
			summary.UniquesRatio = round(float64(len(counts))/float64(len(values)), decimals)
			summary.Mode = counts[0].Value
			summary.ModeFreq = counts[0].Count
			summary.ModeRatio = round(float64(counts[0].Count)/float64(len(values)), decimals)
		}
		result = append(result, summary)
	}
	return result, nil
}

type ValueCount struct {
	Value   string
	Count   int
	Prop    float64
	CumProp float64
}

// ValueCountProp counts every distinct value, most frequent first (ties by
// value), with its proportion and the running sum of proportions.
func ValueCountProp(values []string, decimals int) []ValueCount {
	counts := map[string]int{}
	for _, v := range values {
		counts[v]++
	}
	result := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		result = append(result, ValueCount{Value: v, Count: c})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Value < result[j].Value
	})

	cumulative := 0.0
	for i := range result {
		result[i].Prop = round(float64(result[i].Count)/float64(len(values)), decimals)
		cumulative += result[i].Prop
		result[i].CumProp = cumulative
	}
	return result
}

// GroupStat describes the target within one value of a feature.
type GroupStat struct {
	Value string
	Size  int
	Mean  float64
	// PValue of a two-sided binomial test of Mean against the global mean; NaN
	// when the target is not binary.
	PValue float64
	Ratio  float64
}

// GroupMeanRatio groups target by feature value and compares each group mean
// against the global mean. With binary set the target must hold 0/1 values.
func GroupMeanRatio(feature []string, target []float64, binary bool) ([]GroupStat, error) {
	if len(feature) != len(target) {
		return nil, fmt.Errorf("feature has %d values but target has %d", len(feature), len(target))
	}
	if len(target) == 0 {
		return nil, nil
	}
	globalMean := stat.Mean(target, nil)

	groups := map[string][]float64{}
	for i, v := range feature {
		groups[v] = append(groups[v], target[i])
	}

	result := make([]GroupStat, 0, len(groups))
	for value, values := range groups {
		mean := stat.Mean(values, nil)
		g := GroupStat{
			Value:  value,
			Size:   len(values),
			Mean:   round(mean, 3),
			PValue: math.NaN(),
			Ratio:  round(mean/globalMean, 2),
		}
		if binary {
			successes := 0
			for _, v := range values {
				switch v {
				case 1:
					successes++
				case 0:
				default:
					return nil, fmt.Errorf("target value %v is not binary", v)
				}
			}
			g.PValue = round(BinomTest(successes, len(values), globalMean), 3)
		}
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Value < result[j].Value })
	return result, nil
}

// BinomTest returns the two-sided p-value of observing k successes in n
// trials with success probability p: the total probability of every outcome
// no more likely than k.
func BinomTest(k, n int, p float64) float64 {
	if p <= 0 || p >= 1 {
		if float64(k) == p*float64(n) {
			return 1
		}
		return 0
	}
	dist := distuv.Binomial{N: float64(n), P: p}
	threshold := dist.Prob(float64(k)) * (1 + 1e-7)
	total := 0.0
	for x := 0; x <= n; x++ {
		if prob := dist.Prob(float64(x)); prob <= threshold {
			total += prob
		}
	}
	return math.Min(1, total)
}

func round(f float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(f*scale) / scale
}
