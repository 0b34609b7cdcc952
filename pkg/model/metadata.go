package model

// NameMap implements a bidirectional mapping between a name and an index.
// Indexes are handed out in order of first appearance, starting at 0.
type NameMap struct {
	NameToIndex map[string]int
	IndexToName []string
}

func NewNameMap() *NameMap {
	return &NameMap{NameToIndex: map[string]int{}}
}

// ValueFor returns the index of name, assigning the next free index when name
// has not been seen yet.
func (f *NameMap) ValueFor(name string) int {
	if index, ok := f.NameToIndex[name]; ok {
		return index
	}
	index := len(f.IndexToName)
	f.NameToIndex[name] = index
	f.IndexToName = append(f.IndexToName, name)
	return index
}

func (f *NameMap) ContainsName(name string) (int, bool) {
	index, ok := f.NameToIndex[name]
	return index, ok
}

func (f *NameMap) Size() int {
	return len(f.IndexToName)
}

// ColumnMap is a bidirectional mapping between a data row column index and a
// feature matrix column index.
type ColumnMap struct {
	ColumnToIndex map[int]int
	IndexToColumn map[int]int
}

func (f ColumnMap) Set(column int, index int) {
	f.ColumnToIndex[column] = index
	f.IndexToColumn[index] = column
}

func (f ColumnMap) Size() int {
	return len(f.ColumnToIndex)
}

func (f ColumnMap) GetColumn(column int) (int, bool) {
	index, ok := f.ColumnToIndex[column]
	return index, ok
}

func NewColumnMap() ColumnMap {
	return ColumnMap{
		ColumnToIndex: map[int]int{},
		IndexToColumn: map[int]int{},
	}
}

type Metadata struct {
	Columns []string

	// ContinuousFeaturesMap maps a data row column index to a feature index
	ContinuousFeaturesMap ColumnMap

	// CategoricalFeaturesMap maps a data row column index to a feature index
	CategoricalFeaturesMap ColumnMap

	// CategoricalValuesMap holds, per data row column index, the label encoding
	// of that column's categories
	CategoricalValuesMap map[int]*NameMap

	// TargetColumn points to the column in the data row that contains the prediction target
	TargetColumn int

	// TargetMap label-encodes the target classes
	TargetMap *NameMap
}

func NewMetadata() *Metadata {
	return &Metadata{
		ContinuousFeaturesMap:  NewColumnMap(),
		CategoricalFeaturesMap: NewColumnMap(),
		CategoricalValuesMap:   map[int]*NameMap{},
		TargetMap:              NewNameMap(),
	}
}

func (d *Metadata) FeatureCount() int {
	return d.CategoricalFeaturesMap.Size() + d.ContinuousFeaturesMap.Size()
}

func (d *Metadata) ParseOrAddCategoricalTarget(value string) int {
	return d.TargetMap.ValueFor(value)
}

func (d *Metadata) ParseCategoricalTarget(value string) (int, bool) {
	return d.TargetMap.ContainsName(value)
}

// FeatureNames lists the feature column names in feature index order.
func (d *Metadata) FeatureNames() []string {
	names := make([]string, d.FeatureCount())
	for column, index := range d.ContinuousFeaturesMap.ColumnToIndex {
		names[index] = d.Columns[column]
	}
	for column, index := range d.CategoricalFeaturesMap.ColumnToIndex {
		names[index] = d.Columns[column]
	}
	return names
}
