package eda

import (
	"errors"
	"strings"
)

var ErrSingleLevel = errors.New("column labels have only one level")

// FlattenColumnLabels joins multi-level column labels into single names,
// separating levels with sep. With omitUniqueSuffix, a top level that appears
// in a single label keeps just its own name.
func FlattenColumnLabels(labels [][]string, sep string, omitUniqueSuffix bool) ([]string, error) {
	if len(labels) == 0 {
		return nil, nil
	}
	levels := len(labels[0])
	for _, label := range labels {
		if len(label) != levels {
			return nil, errors.New("column labels have different numbers of levels")
		}
	}
	if levels < 2 {
		return nil, ErrSingleLevel
	}

	counts := map[string]int{}
	for _, label := range labels {
		counts[label[0]]++
	}

	result := make([]string, len(labels))
	for i, label := range labels {
		if omitUniqueSuffix && counts[label[0]] == 1 {
			result[i] = label[0]
			continue
		}
		result[i] = strings.TrimSpace(strings.Join(label, sep))
	}
	return result, nil
}
