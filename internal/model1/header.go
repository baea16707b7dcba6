package model1

// Attrs holds column display attributes.
type Attrs struct {
	// Align is a tview alignment.
	Align int
	// Wide columns are only shown in wide mode.
	Wide bool
	// Time columns hold relative times and are ignored when diffing rows.
	Time bool
	// Numeric columns are right aligned and sorted as numbers.
	Numeric bool
}

// HeaderColumn represents a table header column.
type HeaderColumn struct {
	Name string
	Attrs
}

// Header represents a table header.
type Header []HeaderColumn

// IndexOf returns the position of the named column. Wide columns are
// skipped unless includeWide is set.
func (h Header) IndexOf(name string, includeWide bool) (int, bool) {
	for i, c := range h {
		if c.Wide && !includeWide {
			continue
		}
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

func (h Header) IsNumericCol(col int) bool {
	return col >= 0 && col < len(h) && h[col].Numeric
}

// TimeCol returns the index of the first time column or -1.
func (h Header) TimeCol() int {
	for i, c := range h {
		if c.Time {
			return i
		}
	}
	return -1
}

// Names lists the column names, wide ones included when wide is set.
func (h Header) Names(wide bool) []string {
	nn := make([]string, 0, len(h))
	for _, c := range h {
		if c.Wide && !wide {
			continue
		}
		nn = append(nn, c.Name)
	}
	return nn
}
