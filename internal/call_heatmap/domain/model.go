package domain

import "math"

// EntityID names a service in the call graph.
type EntityID string

type CallRecord struct {
	Source      EntityID `json:"from" yaml:"from"`
	Destination EntityID `json:"to" yaml:"to"`
	Weight      float64  `json:"weight" yaml:"weight"`
	// 1-based line in the input file, 0 when the record did not come from a file
	Line int `json:"-" yaml:"-"`
}

// Matrix is a dense pivot of call records. Values[i][j] holds the weight
// for Rows[i] -> Cols[j]; every cell in the domain has a value.
type Matrix struct {
	Rows   []EntityID  `json:"rows" yaml:"rows"`
	Cols   []EntityID  `json:"cols" yaml:"cols"`
	Values [][]float64 `json:"values" yaml:"values"`

	rowIndex map[EntityID]int
	colIndex map[EntityID]int
}

// NewMatrix allocates a zero-filled matrix over the given axes.
func NewMatrix(rows, cols []EntityID) *Matrix {
	m := &Matrix{
		Rows:   append([]EntityID{}, rows...),
		Cols:   append([]EntityID{}, cols...),
		Values: make([][]float64, len(rows)),
	}
	for i := range m.Values {
		m.Values[i] = make([]float64, len(cols))
	}
	m.reindex()
	return m
}

func (m *Matrix) reindex() {
	m.rowIndex = make(map[EntityID]int, len(m.Rows))
	for i, r := range m.Rows {
		m.rowIndex[r] = i
	}
	m.colIndex = make(map[EntityID]int, len(m.Cols))
	for j, c := range m.Cols {
		m.colIndex[c] = j
	}
}

func (m *Matrix) ensureIndex() {
	if m.rowIndex == nil || m.colIndex == nil {
		m.reindex()
	}
}

// Index returns the row and column positions of a cell.
func (m *Matrix) Index(row, col EntityID) (int, int, bool) {
	m.ensureIndex()
	i, ok := m.rowIndex[row]
	if !ok {
		return 0, 0, false
	}
	j, ok := m.colIndex[col]
	if !ok {
		return 0, 0, false
	}
	return i, j, true
}

// At returns the value of a cell. ok is false when the pair lies outside
// the matrix axes.
func (m *Matrix) At(row, col EntityID) (float64, bool) {
	i, j, ok := m.Index(row, col)
	if !ok {
		return 0, false
	}
	return m.Values[i][j], true
}

func (m *Matrix) Dims() (rows, cols int) {
	return len(m.Rows), len(m.Cols)
}

func (m *Matrix) Empty() bool {
	return len(m.Rows) == 0 || len(m.Cols) == 0
}

// Range returns the smallest and largest cell values. Both are 0 for an
// empty matrix.
func (m *Matrix) Range() (lo, hi float64) {
	if m.Empty() {
		return 0, 0
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range m.Values {
		for _, v := range row {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi
}

// Cell is one entry of a matrix in row-major order.
type Cell struct {
	Row   EntityID
	Col   EntityID
	Value float64
}

// Cells lists every cell in row-major order.
func (m *Matrix) Cells() []Cell {
	out := make([]Cell, 0, len(m.Rows)*len(m.Cols))
	for i, r := range m.Rows {
		for j, c := range m.Cols {
			out = append(out, Cell{Row: r, Col: c, Value: m.Values[i][j]})
		}
	}
	return out
}

func (m *Matrix) Clone() *Matrix {
	c := NewMatrix(m.Rows, m.Cols)
	for i := range m.Values {
		copy(c.Values[i], m.Values[i])
	}
	return c
}

// DisplayOptions is the metadata handed to a renderer alongside a matrix.
type DisplayOptions struct {
	Title           string  `yaml:"title" json:"title"`
	RowAxisLabel    string  `yaml:"row_axis_label" json:"row_axis_label"`
	ColumnAxisLabel string  `yaml:"column_axis_label" json:"column_axis_label"`
	ColorbarLabel   string  `yaml:"colorbar_label" json:"colorbar_label"`
	ValueFormat     string  `yaml:"value_format" json:"value_format"`
	Palette         Palette `yaml:"color_scale" json:"color_scale"`
	DPI             int     `yaml:"dpi" json:"dpi" validate:"gte=0,lte=1200"`
	CellSize        int     `yaml:"cell_size" json:"cell_size" validate:"gte=0,lte=512"`
	GridLines       bool    `yaml:"grid_lines" json:"grid_lines"`
}
