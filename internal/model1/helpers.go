package model1

import (
	"strings"

	"github.com/fvbommel/sortorder"
)

// Less returns true if v1 sorts before v2. Equal values fall back to the row ids.
func Less(isNumber bool, id1, id2, v1, v2 string) bool {
	if v1 == v2 {
		return sortorder.NaturalLess(id1, id2)
	}
	if isNumber {
		return lessNumber(v1, v2)
	}
	return sortorder.NaturalLess(strings.ToLower(v1), strings.ToLower(v2))
}

func lessNumber(s1, s2 string) bool {
	v1, v2 := strings.ReplaceAll(s1, ",", ""), strings.ReplaceAll(s2, ",", "")
	return sortorder.NaturalLess(v1, v2)
}

// SortRows orders row events on the given column. Rows are left untouched
// when col is out of range.
func SortRows(re *RowEvents, h Header, col int, asc bool) {
	if col < 0 || col >= len(h) {
		return
	}
	isNumber := h.IsNumericCol(col)
	re.Sort(func(a, b RowEvent) bool {
		var v1, v2 string
		if col < len(a.Row.Fields) {
			v1 = a.Row.Fields[col]
		}
		if col < len(b.Row.Fields) {
			v2 = b.Row.Fields[col]
		}
		if asc {
			return Less(isNumber, a.Row.ID, b.Row.ID, v1, v2)
		}
		return Less(isNumber, b.Row.ID, a.Row.ID, v2, v1)
	})
}
