// Package evaluation compares classifiers on a common validation set.
package evaluation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var ErrNoPositives = errors.New("no positive samples in labels")

// PRCurve holds precision and recall for every decision threshold, ordered by
// increasing threshold, followed by a final point with precision 1 and recall 0
// that has no threshold.
type PRCurve struct {
	Precision  []float64
	Recall     []float64
	Thresholds []float64
}

// PrecisionRecallCurve computes the curve of binary labels y (1 is positive)
// against scores, with one threshold per distinct score.
func PrecisionRecallCurve(y []int, scores []float64) (PRCurve, error) {
	if len(y) != len(scores) {
		return PRCurve{}, fmt.Errorf("got %d labels and %d scores", len(y), len(scores))
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	var tps, fps, thresholds []float64
	tp, fp := 0.0, 0.0
	for i, idx := range order {
		if y[idx] == 1 {
			tp++
		} else {
			fp++
		}
		// one point per distinct score
		if i+1 < len(order) && scores[order[i+1]] == scores[idx] {
			continue
		}
		tps = append(tps, tp)
		fps = append(fps, fp)
		thresholds = append(thresholds, scores[idx])
	}
	if tp == 0 {
		return PRCurve{}, ErrNoPositives
	}

	last := len(tps) - 1
	curve := PRCurve{
		Precision:  make([]float64, 0, last+2),
		Recall:     make([]float64, 0, last+2),
		Thresholds: make([]float64, 0, last+1),
	}
	for i := last; i >= 0; i-- {
		curve.Precision = append(curve.Precision, tps[i]/(tps[i]+fps[i]))
		curve.Recall = append(curve.Recall, tps[i]/tp)
		curve.Thresholds = append(curve.Thresholds, thresholds[i])
	}
	curve.Precision = append(curve.Precision, 1)
	curve.Recall = append(curve.Recall, 0)
	return curve, nil
}

// AveragePrecision is the step-wise area under the curve.
func (c PRCurve) AveragePrecision() float64 {
	ap := 0.0
	for i := 0; i+1 < len(c.Recall); i++ {
		ap += (c.Recall[i] - c.Recall[i+1]) * c.Precision[i]
	}
	return ap
}

// PRCurveRegistry stores precision-recall curves of different models scored
// on the same validation labels.
type PRCurveRegistry struct {
	y      []int
	curves map[string]PRCurve
}

func NewPRCurveRegistry(y []int) *PRCurveRegistry {
	return &PRCurveRegistry{y: y, curves: map[string]PRCurve{}}
}

// Save registers the curve of a model from its class probabilities, column 1
// being the positive class.
func (r *PRCurveRegistry) Save(name string, probas mat.Matrix) error {
	if _, ok := r.curves[name]; ok {
		return fmt.Errorf("key %s already exists", name)
	}
	rows, cols := probas.Dims()
	if cols < 2 {
		return fmt.Errorf("probabilities of %s have %d columns, need a positive class column", name, cols)
	}
	curve, err := PrecisionRecallCurve(r.y, mat.Col(make([]float64, rows), 1, probas))
	if err != nil {
		return fmt.Errorf("error computing curve of %s: %w", name, err)
	}
	r.curves[name] = curve
	return nil
}

// Compare returns the curves of names in the same order.
func (r *PRCurveRegistry) Compare(names []string) ([]PRCurve, error) {
	var notFound []string
	result := make([]PRCurve, 0, len(names))
	for _, name := range names {
		curve, ok := r.curves[name]
		if !ok {
			notFound = append(notFound, name)
			continue
		}
		result = append(result, curve)
	}
	if len(notFound) > 0 {
		return nil, fmt.Errorf("keys %s not found in the registry", strings.Join(notFound, ","))
	}
	return result, nil
}

// Names lists the registered models in sorted order.
func (r *PRCurveRegistry) Names() []string {
	names := make([]string, 0, len(r.curves))
	for name := range r.curves {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
