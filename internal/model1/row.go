package model1

// Fields represents the cells of a row.
type Fields []string

// Changed returns the indices of the cells that differ from ff, skipping the
// skip column. A length mismatch reports every column of f.
func (f Fields) Changed(ff Fields, skip int) []int {
	var cols []int
	for i := range f {
		if i == skip {
			continue
		}
		if i >= len(ff) || f[i] != ff[i] {
			cols = append(cols, i)
		}
	}
	if len(ff) > len(f) && len(cols) == 0 {
		cols = append(cols, len(f))
	}
	return cols
}

// Diff reports whether the fields differ outside of the skip column.
func (f Fields) Diff(ff Fields, skip int) bool {
	return len(f.Changed(ff, skip)) > 0
}

// Row represents a rendered object.
type Row struct {
	ID     string
	Fields Fields
}

// NewRow returns a row with size empty cells.
func NewRow(size int) Row {
	return Row{Fields: make(Fields, size)}
}

// Len returns the number of cells.
func (r Row) Len() int {
	return len(r.Fields)
}
