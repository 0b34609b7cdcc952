package io

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"

	"github.com/martinerrazquin/utils/pkg/collections"
	"github.com/martinerrazquin/utils/pkg/model"
)

type void struct{}

var Void = void{}

type Set map[string]void

func NewSet(values ...string) Set {
	set := Set{}
	for _, val := range values {
		set[val] = Void
	}
	return set
}

type DataParameters struct {
	DataFile           string
	TargetColumn       string
	CategoricalColumns Set
	RndSeed            int64
}

type DataError struct {
	Line  int
	Error string
}

// LoadData reads a CSV file with a header line into a DataSet. The target
// column is label-encoded and every other column becomes a feature:
// categorical columns hold their category index, the rest are parsed as
// floats. When metaData is nil it is built from this file; otherwise unknown
// categories or targets are reported as DataErrors and the line is skipped.
func LoadData(p DataParameters, metaData *model.Metadata) (*model.Metadata, *DataSet, []DataError, error) {
	inputFile, err := os.Open(p.DataFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error opening file: %w", err)
	}
	defer inputFile.Close()

	reader := csv.NewReader(inputFile)
	reader.Comma = ','

	//First line is expected to be a header
	header, err := reader.Read()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error reading data header: %w", err)
	}

	newMetadata := false
	if metaData == nil {
		metaData = model.NewMetadata()
		newMetadata = true
		metaData.Columns = header
		if err := setTargetColumn(p, metaData); err != nil {
			return nil, nil, nil, err
		}
		buildFeatureIndex(p, metaData)
		if metaData.FeatureCount() == 0 {
			return nil, nil, nil, fmt.Errorf("no feature columns besides target %s", p.TargetColumn)
		}
	} else if len(header) != len(metaData.Columns) {
		return nil, nil, nil, fmt.Errorf("data header has %d columns, expected %d", len(header), len(metaData.Columns))
	}

	encoders := collections.NewKeyedMap(func(column int) *model.NameMap {
		names := model.NewNameMap()
		metaData.CategoricalValuesMap[column] = names
		return names
	})
	for column, names := range metaData.CategoricalValuesMap {
		encoders.Set(column, names)
	}

	var dataErrors []DataError
	var records []*DataRecord
	for currentLine := 1; ; currentLine++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				dataErrors = append(dataErrors, DataError{Line: currentLine, Error: err.Error()})
				continue
			}
			return nil, nil, nil, fmt.Errorf("error reading data: %w", err)
		}

		features := make([]float64, metaData.FeatureCount())
		if err := parseContinuousFeatures(metaData, record, features); err != nil {
			dataErrors = append(dataErrors, DataError{Line: currentLine, Error: err.Error()})
			continue
		}
		if err := parseCategoricalFeatures(metaData, encoders, newMetadata, record, features); err != nil {
			dataErrors = append(dataErrors, DataError{Line: currentLine, Error: err.Error()})
			continue
		}

		// parsed last so that rejected lines never add a target class
		target, err := parseTarget(newMetadata, metaData, record[metaData.TargetColumn])
		if err != nil {
			dataErrors = append(dataErrors, DataError{Line: currentLine, Error: err.Error()})
			continue
		}

		records = append(records, &DataRecord{Features: features, Target: target})
	}

	return metaData, NewDataSet(records, rand.New(rand.NewSource(p.RndSeed))), dataErrors, nil
}

func parseCategoricalFeatures(metaData *model.Metadata, encoders *collections.KeyedMap[int, *model.NameMap], newMetadata bool, record []string, features []float64) error {
	for column, index := range metaData.CategoricalFeaturesMap.ColumnToIndex {
		if newMetadata {
			features[index] = float64(encoders.GetOrCreate(column).ValueFor(record[column]))
			continue
		}
		categoryNameMap, ok := encoders.Get(column)
		if !ok {
			return fmt.Errorf("unknown categorical attribute %s (should not happen!)", metaData.Columns[column])
		}
		categoryValue, ok := categoryNameMap.ContainsName(record[column])
		if !ok {
			return fmt.Errorf("unknown value %s for categorical attribute %s", record[column], metaData.Columns[column])
		}
		features[index] = float64(categoryValue)
	}
	return nil
}

func parseContinuousFeatures(metaData *model.Metadata, record []string, features []float64) error {
	for column, index := range metaData.ContinuousFeaturesMap.ColumnToIndex {
		value, err := strconv.ParseFloat(record[column], 64)
		if err != nil {
			return fmt.Errorf("error parsing feature %s: %w", metaData.Columns[column], err)
		}
		features[index] = value
	}
	return nil
}

func parseTarget(newMetadata bool, metaData *model.Metadata, target string) (int, error) {
	if newMetadata {
		return metaData.ParseOrAddCategoricalTarget(target), nil
	}
	targetValue, ok := metaData.ParseCategoricalTarget(target)
	if !ok {
		return 0, fmt.Errorf("unknown categorical target value %s", target)
	}
	return targetValue, nil
}

func buildFeatureIndex(p DataParameters, metaData *model.Metadata) {
	featureIndex := 0
	for i, col := range metaData.Columns {
		if i == metaData.TargetColumn {
			continue
		}
		if _, isCategorical := p.CategoricalColumns[col]; isCategorical {
			metaData.CategoricalFeaturesMap.Set(i, featureIndex)
		} else {
			metaData.ContinuousFeaturesMap.Set(i, featureIndex)
		}
		featureIndex++
	}
}

func setTargetColumn(p DataParameters, metaData *model.Metadata) error {
	for i, col := range metaData.Columns {
		if col == p.TargetColumn {
			metaData.TargetColumn = i
			return nil
		}
	}
	return fmt.Errorf("target column %s not found in data header", p.TargetColumn)
}
