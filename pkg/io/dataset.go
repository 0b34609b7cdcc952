package io

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

type DataRecord struct {
	Features []float64
	Target   int
}

// DataSet is a view over a subset of records, identified by their indices.
type DataSet struct {
	Data        []*DataRecord
	Rand        *rand.Rand
	dataIndices []int
}

func (d *DataSet) Size() int {
	return len(d.dataIndices)
}

func NewDataSet(data []*DataRecord, rnd *rand.Rand) *DataSet {
	dataIndices := make([]int, len(data))
	for i := range dataIndices {
		dataIndices[i] = i
	}
	return &DataSet{Data: data, Rand: rnd, dataIndices: dataIndices}
}

func NewDataSetSplit(data []*DataRecord, rnd *rand.Rand, indices []int) *DataSet {
	return &DataSet{Data: data, Rand: rnd, dataIndices: indices}
}

// Records returns the records of the view in order.
func (d *DataSet) Records() []*DataRecord {
	result := make([]*DataRecord, len(d.dataIndices))
	for i, index := range d.dataIndices {
		result[i] = d.Data[index]
	}
	return result
}

// RandomSplit shuffles the view and cuts it into consecutive splits of the
// given sizes, which must not add up to more than Size().
func (d *DataSet) RandomSplit(sizes ...int) []*DataSet {
	indices := make([]int, len(d.dataIndices))
	copy(indices, d.dataIndices)
	d.Rand.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	splits := make([]*DataSet, len(sizes))
	idx := 0
	for i := range sizes {
		splitIndices := make([]int, sizes[i])
		for j := range splitIndices {
			splitIndices[j] = indices[idx]
			idx++
		}
		splits[i] = NewDataSetSplit(d.Data, d.Rand, splitIndices)
	}
	return splits
}

// Matrix returns the features as a Size() x feature count matrix.
func (d *DataSet) Matrix() *mat.Dense {
	if d.Size() == 0 {
		return &mat.Dense{}
	}
	cols := len(d.Data[d.dataIndices[0]].Features)
	data := make([]float64, 0, d.Size()*cols)
	for _, index := range d.dataIndices {
		data = append(data, d.Data[index].Features...)
	}
	return mat.NewDense(d.Size(), cols, data)
}

func (d *DataSet) Targets() []int {
	targets := make([]int, len(d.dataIndices))
	for i, index := range d.dataIndices {
		targets[i] = d.Data[index].Target
	}
	return targets
}
