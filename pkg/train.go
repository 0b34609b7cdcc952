package pkg

import (
	"encoding/csv"
	"errors"
	"fmt"
	gio "io"
	"os"
	"slices"
	"strconv"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/martinerrazquin/utils/pkg/evaluation"
	"github.com/martinerrazquin/utils/pkg/io"
	"github.com/martinerrazquin/utils/pkg/knn"
	"github.com/martinerrazquin/utils/pkg/memo"
	"github.com/martinerrazquin/utils/pkg/model"
)

type KnnParameters struct {
	TrainFile          string
	TestFile           string
	TargetColumn       string
	CategoricalColumns []string
	// TestFraction of the training file held out when there is no TestFile.
	TestFraction float64
	RndSeed      int64

	Metric     string
	Workers    int
	Ks         []int
	Weightings []string
	// MaxK defaults to the largest of Ks.
	MaxK int

	CacheFile       string
	Compression     string
	PredictionsFile string
	CurvesFile      string
}

// ModelReport holds the validation scores of one (k, weighting) pair.
type ModelReport struct {
	Name             string
	K                int
	Weighting        knn.Weighting
	MicroF1          float64
	MacroF1          float64
	Loss             float64
	AveragePrecision float64
}

// RunKnn searches the neighbours of the validation rows once and scores the
// classifier for every combination of p.Ks and p.Weightings.
func RunKnn(p KnnParameters) ([]ModelReport, error) {
	metric, err := knn.ParseMetric(p.Metric)
	if err != nil {
		return nil, err
	}
	weightings := make([]knn.Weighting, len(p.Weightings))
	for i, name := range p.Weightings {
		if weightings[i], err = knn.ParseWeighting(name); err != nil {
			return nil, err
		}
	}
	compression, err := memo.ParseCompression(p.Compression)
	if err != nil {
		return nil, err
	}
	if len(p.Ks) == 0 || len(weightings) == 0 {
		return nil, errors.New("at least one k and one weighting are needed")
	}
	maxK := p.MaxK
	if maxK == 0 {
		maxK = slices.Max(p.Ks)
	}

	metaData, train, test, err := loadKnnData(p)
	if err != nil {
		return nil, err
	}
	if metaData.TargetMap.Size() < 2 {
		return nil, fmt.Errorf("target %s has a single class", p.TargetColumn)
	}
	log.Debug().Strs("Features", metaData.FeatureNames()).
		Int("TrainRows", train.Size()).
		Int("TestRows", test.Size()).
		Int("Classes", metaData.TargetMap.Size()).
		Msg("loaded data")

	var searcher knn.Searcher = knn.BruteForce{Metric: metric, Workers: p.Workers}
	if p.CacheFile != "" {
		searcher = cachedSearcher{
			searcher: searcher,
			path:     p.CacheFile,
			opts:     memo.Options{Compression: compression},
		}
	}
	classifier, err := knn.NewWithSearcher(maxK, train.Matrix(), test.Matrix(), searcher)
	if err != nil {
		return nil, err
	}
	if err := classifier.Fit(train.Targets()); err != nil {
		return nil, err
	}
	if classifier.NumClasses() != metaData.TargetMap.Size() {
		return nil, fmt.Errorf("training rows hold %d of the %d target classes", classifier.NumClasses(), metaData.TargetMap.Size())
	}

	var outputWriter gio.Writer = NoopWriter{}
	if p.PredictionsFile != "" {
		outputFile, err := os.Create(p.PredictionsFile)
		if err != nil {
			return nil, fmt.Errorf("error opening output file %s: %w", p.PredictionsFile, err)
		}
		defer outputFile.Close()
		outputWriter = outputFile
		fmt.Fprintln(outputWriter, "model,label,predicted,probability")
	}

	targets := test.Targets()
	binary := metaData.TargetMap.Size() == 2
	registry := evaluation.NewPRCurveRegistry(targets)

	var reports []ModelReport
	for _, k := range p.Ks {
		for _, weighting := range weightings {
			report, probas, err := evaluateKnn(classifier, k, weighting, metaData, targets, outputWriter)
			if err != nil {
				return nil, err
			}
			if binary {
				report.AveragePrecision = registerCurve(registry, report.Name, probas)
			}
			reports = append(reports, report)
		}
	}

	if binary && p.CurvesFile != "" {
		if err := writeCurves(p.CurvesFile, registry); err != nil {
			return nil, err
		}
	}
	return reports, nil
}

func loadKnnData(p KnnParameters) (*model.Metadata, *io.DataSet, *io.DataSet, error) {
	metaData, data, dataErrors, err := io.LoadData(io.DataParameters{
		DataFile:           p.TrainFile,
		TargetColumn:       p.TargetColumn,
		CategoricalColumns: io.NewSet(p.CategoricalColumns...),
		RndSeed:            p.RndSeed,
	}, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error reading training data: %w", err)
	}
	printDataErrors(dataErrors)
	if data.Size() == 0 {
		return nil, nil, nil, errors.New("no data to train")
	}

	if p.TestFile == "" {
		nTest := int(float64(data.Size()) * p.TestFraction)
		if nTest < 1 || nTest >= data.Size() {
			return nil, nil, nil, fmt.Errorf("test fraction %.3f of %d rows leaves no train or test rows", p.TestFraction, data.Size())
		}
		splits := data.RandomSplit(data.Size()-nTest, nTest)
		return metaData, splits[0], splits[1], nil
	}

	_, test, dataErrors, err := io.LoadData(io.DataParameters{
		DataFile:     p.TestFile,
		TargetColumn: p.TargetColumn,
		RndSeed:      p.RndSeed,
	}, metaData)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error reading test data: %w", err)
	}
	printDataErrors(dataErrors)
	if test.Size() == 0 {
		return nil, nil, nil, errors.New("no data to test")
	}
	return metaData, data, test, nil
}

func evaluateKnn(classifier *knn.CachedKnn, k int, weighting knn.Weighting, metaData *model.Metadata, targets []int, outputWriter gio.Writer) (ModelReport, *mat.Dense, error) {
	name := fmt.Sprintf("knn_k%d_%s", k, weighting)
	probas, err := classifier.PredictProba(k, weighting)
	if err != nil {
		return ModelReport{}, nil, fmt.Errorf("error predicting with %s: %w", name, err)
	}

	evaluator := newClassificationEvaluator(name, metaData.TargetMap, outputWriter)
	for i, target := range targets {
		evaluator.EvaluatePrediction(probas.RawRowView(i), target)
	}
	evaluator.LogMetrics()

	microF1, macroF1 := evaluator.OverallF1()
	return ModelReport{
		Name:      name,
		K:         k,
		Weighting: weighting,
		MicroF1:   microF1,
		MacroF1:   macroF1,
		Loss:      evaluator.Loss(),
	}, probas, nil
}

func registerCurve(registry *evaluation.PRCurveRegistry, name string, probas mat.Matrix) float64 {
	if err := registry.Save(name, probas); err != nil {
		log.Warn().Str("Model", name).Err(err).Msg("skipping precision-recall curve")
		return 0
	}
	curves, _ := registry.Compare([]string{name})
	ap := curves[0].AveragePrecision()
	log.Info().Str("Model", name).Float64("AveragePrecision", ap).Msg("")
	return ap
}

func writeCurves(fileName string, registry *evaluation.PRCurveRegistry) error {
	names := registry.Names()
	curves, err := registry.Compare(names)
	if err != nil {
		return err
	}

	outputFile, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("error opening curves file %s: %w", fileName, err)
	}
	defer outputFile.Close()

	writer := csv.NewWriter(outputFile)
	_ = writer.Write([]string{"model", "threshold", "precision", "recall"})
	for i, curve := range curves {
		for j := range curve.Precision {
			threshold := ""
			if j < len(curve.Thresholds) {
				threshold = formatFloat(curve.Thresholds[j])
			}
			_ = writer.Write([]string{names[i], threshold, formatFloat(curve.Precision[j]), formatFloat(curve.Recall[j])})
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("error writing curves file %s: %w", fileName, err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 5, 64)
}

// cachedSearcher stores the neighbours found by searcher in path and reuses
// them on later runs.
type cachedSearcher struct {
	searcher knn.Searcher
	path     string
	opts     memo.Options
}

func (c cachedSearcher) Search(train, query mat.Matrix, k int) (*knn.Neighbors, error) {
	nb, err := memo.LoadOrExec(c.path, c.opts, func() (*knn.Neighbors, error) {
		return c.searcher.Search(train, query, k)
	})
	if err != nil {
		return nil, err
	}
	nQuery, _ := query.Dims()
	if nb.MaxK != k || len(nb.Index) != nQuery {
		return nil, fmt.Errorf("cached neighbours in %s were computed for %d rows and k=%d, remove the file to search again", c.path, len(nb.Index), nb.MaxK)
	}
	return nb, nil
}
