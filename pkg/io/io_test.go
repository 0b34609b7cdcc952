package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const trainData = `width,color,species
1.5,red,setosa
2.5,blue,virginica
1.0,red,setosa
abc,red,versicolor
3.0,green,virginica
`

const testData = `width,color,species
1.2,red,setosa
2.0,purple,virginica
2.7,blue,versicolor
2.8,green
`

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadData(t *testing.T) {
	params := DataParameters{
		DataFile:           writeFile(t, "train.csv", trainData),
		TargetColumn:       "species",
		CategoricalColumns: NewSet("color"),
	}

	metaData, data, dataErrors, err := LoadData(params, nil)
	require.NoError(t, err)
	require.NotNil(t, metaData)
	require.Equal(t, 4, data.Size())
	require.Len(t, dataErrors, 1)
	require.Equal(t, 4, dataErrors[0].Line)

	// the rejected line must not introduce a class
	require.Equal(t, []string{"setosa", "virginica"}, metaData.TargetMap.IndexToName)
	require.Equal(t, []int{0, 1, 0, 1}, data.Targets())
	require.Equal(t, []string{"width", "color"}, metaData.FeatureNames())

	x := data.Matrix()
	rows, cols := x.Dims()
	require.Equal(t, 4, rows)
	require.Equal(t, 2, cols)
	require.Equal(t, []float64{1.5, 0}, x.RawRowView(0))
	require.Equal(t, []float64{2.5, 1}, x.RawRowView(1))
	require.Equal(t, []float64{3.0, 2}, x.RawRowView(3))

	params.DataFile = writeFile(t, "test.csv", testData)
	testMetaData, testSet, dataErrors, err := LoadData(params, metaData)
	require.NoError(t, err)
	require.Same(t, metaData, testMetaData)
	require.Equal(t, 1, testSet.Size())
	// unknown category, unknown target, short line
	require.Len(t, dataErrors, 3)
	require.Equal(t, []int{2, 3, 4}, []int{dataErrors[0].Line, dataErrors[1].Line, dataErrors[2].Line})
}

func TestLoadData_Errors(t *testing.T) {
	_, _, _, err := LoadData(DataParameters{DataFile: filepath.Join(t.TempDir(), "missing.csv")}, nil)
	require.Error(t, err)

	path := writeFile(t, "data.csv", trainData)
	_, _, _, err = LoadData(DataParameters{DataFile: path, TargetColumn: "label"}, nil)
	require.ErrorContains(t, err, "target column label not found")

	path = writeFile(t, "only_target.csv", "species\nsetosa\n")
	_, _, _, err = LoadData(DataParameters{DataFile: path, TargetColumn: "species"}, nil)
	require.ErrorContains(t, err, "no feature columns")
}

func TestDataSet_RandomSplit(t *testing.T) {
	params := DataParameters{
		DataFile:     writeFile(t, "train.csv", trainData),
		TargetColumn: "species",
		RndSeed:      7,
	}
	params.CategoricalColumns = NewSet("color")
	_, data, _, err := LoadData(params, nil)
	require.NoError(t, err)

	splits := data.RandomSplit(3, 1)
	require.Len(t, splits, 2)
	require.Equal(t, 3, splits[0].Size())
	require.Equal(t, 1, splits[1].Size())

	seen := map[*DataRecord]bool{}
	for _, split := range splits {
		for _, record := range split.Records() {
			require.False(t, seen[record])
			seen[record] = true
		}
	}
	require.Len(t, seen, 4)

	// splitting does not reorder the original view
	require.Equal(t, []int{0, 1, 0, 1}, data.Targets())
}

func TestDataSet_EmptyMatrix(t *testing.T) {
	data := NewDataSet(nil, nil)
	require.Equal(t, 0, data.Size())
	require.True(t, data.Matrix().IsEmpty())
	require.Empty(t, data.Targets())
}
