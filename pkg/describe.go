package pkg

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/martinerrazquin/utils/pkg/eda"
	"github.com/martinerrazquin/utils/pkg/io"
)

type DescribeParameters struct {
	DataFile  string
	Columns   []string
	FillValue *string
	Strict    bool
	// TargetColumn, when set, is compared against every other column.
	TargetColumn string
	BinaryTarget bool
	Decimals     int
	// TopValues is the number of most frequent values logged per column.
	TopValues int
}

type Description struct {
	Summaries []eda.ColumnSummary
	// Groups holds the target statistics per feature column.
	Groups map[string][]eda.GroupStat
}

// RunDescribe loads the columns of a CSV file and logs their summary
// statistics.
func RunDescribe(p DescribeParameters) (*Description, error) {
	columns := p.Columns
	if columns != nil && p.TargetColumn != "" && !slices.Contains(columns, p.TargetColumn) {
		columns = append(slices.Clone(columns), p.TargetColumn)
	}
	acc, dataErrors, err := io.LoadColumns(io.ColumnParameters{
		DataFile:  p.DataFile,
		Columns:   columns,
		FillValue: p.FillValue,
		Strict:    p.Strict,
	})
	if err != nil {
		return nil, fmt.Errorf("error reading data: %w", err)
	}
	printDataErrors(dataErrors)
	if acc.Len() == 0 {
		return nil, errors.New("no data to describe")
	}

	data := acc.Export()
	summaries, err := eda.UniquesModesProportion(data, acc.Keys(), p.Decimals)
	if err != nil {
		return nil, err
	}
	for _, s := range summaries {
		log.Info().Str("Column", s.Column).
			Int("Uniques", s.Uniques).
			Float64("UniquesRatio", s.UniquesRatio).
			Str("Mode", s.Mode).
			Int("ModeFreq", s.ModeFreq).
			Float64("ModeRatio", s.ModeRatio).
			Msg("")
		for i, count := range eda.ValueCountProp(data[s.Column], p.Decimals) {
			if i >= p.TopValues {
				break
			}
			log.Debug().Str("Column", s.Column).
				Str("Value", count.Value).
				Int("Count", count.Count).
				Float64("Prop", count.Prop).
				Float64("CumProp", count.CumProp).
				Msg("")
		}
	}

	description := &Description{Summaries: summaries, Groups: map[string][]eda.GroupStat{}}
	if p.TargetColumn == "" {
		return description, nil
	}

	target, err := parseTargetValues(data[p.TargetColumn])
	if err != nil {
		return nil, err
	}
	for _, column := range acc.Keys() {
		if column == p.TargetColumn {
			continue
		}
		groups, err := eda.GroupMeanRatio(data[column], target, p.BinaryTarget)
		if err != nil {
			return nil, fmt.Errorf("error grouping %s by %s: %w", p.TargetColumn, column, err)
		}
		for _, g := range groups {
			log.Info().Str("Column", column).
				Str("Value", g.Value).
				Int("Size", g.Size).
				Float64("Mean", g.Mean).
				Float64("Ratio", g.Ratio).
				Float64("PValue", g.PValue).
				Msg("")
		}
		description.Groups[column] = groups
	}
	return description, nil
}

func parseTargetValues(values []string) ([]float64, error) {
	target := make([]float64, len(values))
	for i, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("error parsing target value %q: %w", v, err)
		}
		target[i] = f
	}
	return target, nil
}
