package io

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/martinerrazquin/utils/pkg/collections"
)

type ColumnParameters struct {
	DataFile string
	// Columns restricts loading to these header columns; nil loads all of them.
	Columns []string
	// FillValue replaces empty cells. Without it, lines with empty cells are
	// reported as DataErrors.
	FillValue *string
	// Strict rejects lines with empty cells even when FillValue is set.
	Strict bool
}

// LoadColumns reads a CSV file with a header line into column form. Empty
// cells are left out of their row, so FillValue decides what the column gets.
func LoadColumns(p ColumnParameters) (*collections.RowAccumulator[string, string], []DataError, error) {
	inputFile, err := os.Open(p.DataFile)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening file: %w", err)
	}
	defer inputFile.Close()

	reader := csv.NewReader(inputFile)
	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("error reading data header: %w", err)
	}

	selected, err := selectColumns(header, p.Columns)
	if err != nil {
		return nil, nil, err
	}
	keys := make([]string, len(selected))
	for i, column := range selected {
		keys[i] = header[column]
	}

	fill := collections.NoFill[string, string]()
	if p.FillValue != nil {
		fill = collections.UniformFill[string, string](*p.FillValue)
	}
	acc, err := collections.NewRowAccumulator(keys, p.Strict, fill)
	if err != nil {
		return nil, nil, err
	}

	var dataErrors []DataError
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
			return nil, nil, fmt.Errorf("error reading data: %w", err)
		}

		row := make(map[string]string, len(selected))
		for _, column := range selected {
			if record[column] != "" {
				row[header[column]] = record[column]
			}
		}
		if err := acc.Append(row); err != nil {
			dataErrors = append(dataErrors, DataError{Line: currentLine, Error: err.Error()})
		}
	}
	return acc, dataErrors, nil
}

func selectColumns(header []string, columns []string) ([]int, error) {
	if columns == nil {
		selected := make([]int, len(header))
		for i := range selected {
			selected[i] = i
		}
		return selected, nil
	}

	position := map[string]int{}
	for i, name := range header {
		position[name] = i
	}
	selected := make([]int, 0, len(columns))
	for _, name := range columns {
		i, ok := position[name]
		if !ok {
			return nil, fmt.Errorf("column %s not found in data header", name)
		}
		selected = append(selected, i)
	}
	return selected, nil
}
