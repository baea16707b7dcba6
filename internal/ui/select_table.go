package ui

import (
	"strings"

	"github.com/derailed/tview"
)

// SelectTable represents a table with selections.
type SelectTable struct {
	*tview.Table

	model Tabular
}

// SetModel sets the table model.
func (s *SelectTable) SetModel(m Tabular) {
	s.model = m
}

// GetModel returns the table model.
func (s *SelectTable) GetModel() Tabular {
	return s.model
}

// GetSelectedRowID returns the id of the selected row, "" if none.
func (s *SelectTable) GetSelectedRowID() string {
	row, _ := s.GetSelection()
	return s.GetRowID(row)
}

// GetRowID returns the id stored on the first cell of a row.
func (s *SelectTable) GetRowID(row int) string {
	if row < 1 || row >= s.GetRowCount() {
		return ""
	}
	cell := s.GetCell(row, 0)
	if cell == nil {
		return ""
	}
	id, ok := cell.GetReference().(string)
	if !ok {
		return ""
	}
	return id
}

// SelectRowID selects the row with the given id. It returns false when no
// such row is displayed.
func (s *SelectTable) SelectRowID(id string) bool {
	for row := 1; row < s.GetRowCount(); row++ {
		if s.GetRowID(row) == id {
			s.Select(row, 0)
			return true
		}
	}
	return false
}

// SelectFirstRow selects the first data row, if any.
func (s *SelectTable) SelectFirstRow() {
	if s.GetRowCount() > 1 {
		s.Select(1, 0)
	}
}

// TrimCell removes superfluous padding from a table cell.
func TrimCell(tv *SelectTable, row, col int) string {
	c := tv.GetCell(row, col)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text)
}
