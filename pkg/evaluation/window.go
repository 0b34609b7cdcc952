package evaluation

import (
	"errors"
	"iter"
	"sort"
	"time"
)

// Pairs yields every consecutive pair of s. The sequence can be ranged over
// any number of times.
func Pairs[T any](s []T) iter.Seq2[T, T] {
	return func(yield func(T, T) bool) {
		for i := 0; i+1 < len(s); i++ {
			if !yield(s[i], s[i+1]) {
				return
			}
		}
	}
}

// SplitExpandingDateWindow cuts the sorted timestamps y into step-long
// windows between minDate and maxDate and yields the (start, end) index pair
// of each. Boundary n is the first position with y >= minDate+n*step, or
// len(y) when there is none.
func SplitExpandingDateWindow(y []time.Time, step time.Duration, minDate, maxDate time.Time) (iter.Seq2[int, int], error) {
	for i := 0; i+1 < len(y); i++ {
		if y[i].After(y[i+1]) {
			return nil, errors.New("timestamps are not sorted")
		}
	}
	if step <= 0 {
		return nil, errors.New("step must be positive")
	}
	nSteps := int(maxDate.Sub(minDate) / step)
	if nSteps <= 0 {
		return nil, errors.New("parameters resulted in 0 steps")
	}

	idxs := make([]int, nSteps+1)
	for n := range idxs {
		start := minDate.Add(time.Duration(n) * step)
		idxs[n] = sort.Search(len(y), func(i int) bool { return !y[i].Before(start) })
	}
	return Pairs(idxs), nil
}
