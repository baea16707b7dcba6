package model1

// TableData is a rendered batch: a header plus one event per row. It is
// never mutated once built, so it can be handed to the UI goroutine as is.
type TableData struct {
	header Header
	store  string
	rows   *RowEvents
}

// NewTableData returns a batch for store. A nil rows means no rows.
func NewTableData(store string, h Header, rows *RowEvents) *TableData {
	if rows == nil {
		rows = NewRowEvents(0)
	}
	return &TableData{header: h, store: store, rows: rows}
}

func (t *TableData) Header() Header {
	return t.header
}

// Store returns the name of the store the rows came from.
func (t *TableData) Store() string {
	return t.store
}

func (t *TableData) RowEvents() *RowEvents {
	return t.rows
}

func (t *TableData) Empty() bool {
	return t.rows.Empty()
}

func (t *TableData) RowCount() int {
	return t.rows.Len()
}
