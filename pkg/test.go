package pkg

import (
	"fmt"
	gio "io"
	"math"
	"sort"

	"github.com/nlpodyssey/spago/pkg/ml/stats"
	"github.com/rs/zerolog/log"

	"github.com/martinerrazquin/utils/pkg/collections"
	"github.com/martinerrazquin/utils/pkg/model"
)

// probabilities below this are clipped when computing the log loss
const minProbability = 1e-15

type classificationEvaluator struct {
	modelName       string
	predictionCount int
	loss            float64
	metrics         *collections.KeyedMap[string, *stats.ClassMetrics]
	targetMap       *model.NameMap
	outputWriter    gio.Writer
}

type classificationPrediction struct {
	predictedClass string
	label          string
	probability    float64
	labelProba     float64
}

func newClassificationEvaluator(modelName string, targetMap *model.NameMap, outputWriter gio.Writer) *classificationEvaluator {
	return &classificationEvaluator{
		modelName: modelName,
		metrics: collections.NewKeyedMap(func(string) *stats.ClassMetrics {
			return stats.NewMetricCounter()
		}),
		targetMap:    targetMap,
		outputWriter: outputWriter,
	}
}

// EvaluatePrediction scores the class probabilities of one query row against
// its label index.
func (c *classificationEvaluator) EvaluatePrediction(probas []float64, target int) {
	prediction := c.decode(probas, target)
	c.loss -= math.Log(math.Max(prediction.labelProba, minProbability))
	c.predictionCount++

	fmt.Fprintf(c.outputWriter, "%s,%s,%s,%.5f\n", c.modelName, prediction.label, prediction.predictedClass, prediction.probability)

	labelClassMetrics := c.metrics.GetOrCreate(prediction.label)
	predictedClassMetrics := c.metrics.GetOrCreate(prediction.predictedClass)

	if prediction.label == prediction.predictedClass {
		labelClassMetrics.IncTruePos()
	} else {
		labelClassMetrics.IncFalseNeg()
		predictedClassMetrics.IncFalsePos()
	}
}

func (c *classificationEvaluator) LogMetrics() {
	// Sort class names for deterministic output
	for _, class := range c.sortedClasses() {
		result, _ := c.metrics.Get(class)
		log.Info().Str("Model", c.modelName).
			Str("Class", class).
			Int("TP", result.TruePos).
			Int("FP", result.FalsePos).
			Int("TN", result.TrueNeg).
			Int("FN", result.FalseNeg).
			Float64("Precision", result.Precision()).
			Float64("Recall", result.Recall()).
			Float64("F1", result.F1Score()).
			Msg("")
	}

	microF1, macroF1 := c.OverallF1()
	log.Info().Str("Model", c.modelName).Float64("MacroF1", macroF1).Float64("MicroF1", microF1).Float64("Loss", c.Loss()).Msg("")
}

// Loss is the mean negative log probability given to the true class.
func (c *classificationEvaluator) Loss() float64 {
	if c.predictionCount == 0 {
		return 0
	}
	return c.loss / float64(c.predictionCount)
}

// OverallF1 returns the micro and macro averaged F1 scores.
func (c *classificationEvaluator) OverallF1() (float64, float64) {
	if c.metrics.Len() == 0 {
		return 0, 0
	}
	macroF1 := 0.0
	micro := stats.NewMetricCounter()
	for _, result := range c.metrics.All() {
		macroF1 += result.F1Score()
		micro.TruePos += result.TruePos
		micro.FalsePos += result.FalsePos
		micro.FalseNeg += result.FalseNeg
		micro.TrueNeg += result.TrueNeg
	}
	macroF1 /= float64(c.metrics.Len())
	return micro.F1Score(), macroF1
}

func (c *classificationEvaluator) decode(probas []float64, target int) classificationPrediction {
	class, probability := argmax(probas)
	labelProba := 0.0
	if target < len(probas) {
		labelProba = probas[target]
	}
	return classificationPrediction{
		predictedClass: c.targetMap.IndexToName[class],
		label:          c.targetMap.IndexToName[target],
		probability:    probability,
		labelProba:     labelProba,
	}
}

func (c *classificationEvaluator) sortedClasses() []string {
	result := c.metrics.Keys()
	sort.Strings(result)
	return result
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
