package ui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dbrowse/dbrowse/internal/model1"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

const (
	// TitleFmt formats the table title with name, store and count.
	TitleFmt = " <%s>[%s][%d] "

	// FilterTitleFmt formats the table title while filtering.
	FilterTitleFmt = " <%s>[%s][%d] Filter: %s "

	noDataMsg = "No data"
)

// Table represents a table view over a tabular model.
type Table struct {
	*SelectTable

	name         string
	actions      *KeyActions
	colorer      model1.ColorerFunc
	queue        QueueFunc
	selectedFn   func(id string)
	header       model1.Header
	sortColName  string
	sortAsc      bool
	filterText   string
	filterActive bool
	title        string
	fullData     *model1.TableData
	mx           sync.RWMutex
}

// NewTable returns a new table instance.
func NewTable(name string) *Table {
	return &Table{
		SelectTable: &SelectTable{
			Table: tview.NewTable(),
		},
		name:    name,
		actions: NewKeyActions(),
		colorer: model1.DefaultColorer,
		queue:   func(f func()) { f() },
		sortAsc: true,
	}
}

// Init initializes the table component.
func (t *Table) Init() {
	t.SetFixed(1, 0)
	t.SetBorder(true)
	t.SetBorderAttributes(tcell.AttrBold)
	t.SetBorderPadding(0, 0, 1, 1)
	t.SetSelectable(true, false)
	t.SetBackgroundColor(tcell.ColorDefault)
	t.SetBorderColor(tcell.ColorWhite)
	t.setTitle(fmt.Sprintf(TitleFmt, t.name, "-", 0))

	t.showNoData(noDataMsg)

	t.SetInputCapture(t.keyboard)
	t.SetSelectionChangedFunc(t.selectionChanged)
	t.bindKeys()
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// SetColorerFn sets the row colorer.
func (t *Table) SetColorerFn(f model1.ColorerFunc) {
	t.mx.Lock()
	defer t.mx.Unlock()
	if f == nil {
		f = model1.DefaultColorer
	}
	t.colorer = f
}

// SetQueueFn sets how model notifications reach the UI goroutine.
func (t *Table) SetQueueFn(f QueueFunc) {
	t.mx.Lock()
	defer t.mx.Unlock()
	t.queue = f
}

// SetSelectedFn sets the callback fired when the selected row changes.
func (t *Table) SetSelectedFn(f func(id string)) {
	t.mx.Lock()
	defer t.mx.Unlock()
	t.selectedFn = f
}

// SetModel sets the table data model.
func (t *Table) SetModel(m Tabular) {
	if old := t.GetModel(); old != nil {
		old.RemoveListener(t)
	}
	t.SelectTable.SetModel(m)
	if m != nil {
		m.AddListener(t)
	}
}

// Title returns the current table title.
func (t *Table) Title() string {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.title
}

func (t *Table) setTitle(title string) {
	t.mx.Lock()
	t.title = title
	t.mx.Unlock()
	t.SetTitle(title)
}

// Actions returns the key actions.
func (t *Table) Actions() *KeyActions {
	return t.actions
}

// Hints returns menu hints for key bindings.
func (t *Table) Hints() MenuHints {
	return t.actions.Hints()
}

// Filter returns the active filter text.
func (t *Table) Filter() string {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.filterText
}

// Filtering reports whether the table is capturing filter input.
func (t *Table) Filtering() bool {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.filterActive
}

// SetFilter filters rows on a case insensitive substring.
func (t *Table) SetFilter(filter string) {
	t.mx.Lock()
	t.filterText = filter
	t.mx.Unlock()
	t.refresh()
}

// SortColumn returns the sort column name and direction.
func (t *Table) SortColumn() (string, bool) {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.sortColName, t.sortAsc
}

// keyboard handles table keyboard input.
func (t *Table) keyboard(evt *tcell.EventKey) *tcell.EventKey {
	t.mx.RLock()
	filterActive := t.filterActive
	t.mx.RUnlock()

	if filterActive {
		return t.handleFilterInput(evt)
	}

	row, col := t.GetSelection()
	rowCount := t.GetRowCount()

	if evt.Key() == tcell.KeyRune {
		switch evt.Rune() {
		case 'j':
			if row < rowCount-1 {
				t.Select(row+1, col)
			}
			return nil
		case 'k':
			if row > 1 {
				t.Select(row-1, col)
			}
			return nil
		case 'g':
			t.SelectFirstRow()
			return nil
		case 'G':
			if rowCount > 1 {
				t.Select(rowCount-1, col)
			}
			return nil
		}
	}

	if action, ok := t.actions.Get(AsKey(evt)); ok {
		return action.Action(evt)
	}

	return evt
}

// handleFilterInput handles keyboard input when filter mode is active.
func (t *Table) handleFilterInput(evt *tcell.EventKey) *tcell.EventKey {
	switch evt.Key() {
	case tcell.KeyEsc:
		t.mx.Lock()
		t.filterActive, t.filterText = false, ""
		t.mx.Unlock()
		t.refresh()
		return nil

	case tcell.KeyEnter:
		t.mx.Lock()
		t.filterActive = false
		t.mx.Unlock()
		t.updateTitle()
		return nil

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		t.mx.Lock()
		if len(t.filterText) > 0 {
			t.filterText = t.filterText[:len(t.filterText)-1]
		}
		t.mx.Unlock()
		t.refresh()
		return nil

	case tcell.KeyRune:
		t.mx.Lock()
		t.filterText += string(evt.Rune())
		t.mx.Unlock()
		t.refresh()
		return nil
	}

	return evt
}

// bindKeys sets up common table key bindings.
func (t *Table) bindKeys() {
	t.actions.Bulk(KeyMap{
		tcell.KeyCtrlS: NewKeyAction("Sort", t.sortCmd, true),
		KeySlash:       NewKeyAction("Filter", t.filterCmd, true),
		tcell.KeyEsc:   NewKeyAction("Clear Filter", t.clearFilterCmd, false),
	})
}

// sortCmd cycles the sort column, flipping direction after the last column.
func (t *Table) sortCmd(*tcell.EventKey) *tcell.EventKey {
	t.mx.Lock()
	if len(t.header) == 0 {
		t.mx.Unlock()
		return nil
	}

	idx := -1
	for i, col := range t.header {
		if col.Name == t.sortColName {
			idx = i
			break
		}
	}
	next := idx + 1
	if next >= len(t.header) {
		next = 0
		t.sortAsc = !t.sortAsc
	}
	t.sortColName = t.header[next].Name
	t.mx.Unlock()

	t.refresh()
	return nil
}

func (t *Table) filterCmd(*tcell.EventKey) *tcell.EventKey {
	t.mx.Lock()
	t.filterActive, t.filterText = true, ""
	t.mx.Unlock()
	t.updateTitle()
	return nil
}

func (t *Table) clearFilterCmd(*tcell.EventKey) *tcell.EventKey {
	t.mx.Lock()
	wasActive := t.filterActive || t.filterText != ""
	t.filterActive, t.filterText = false, ""
	t.mx.Unlock()

	if wasActive {
		t.refresh()
	}
	return nil
}

func (t *Table) selectionChanged(row, _ int) {
	t.mx.RLock()
	fn := t.selectedFn
	t.mx.RUnlock()

	if fn != nil {
		fn(t.GetRowID(row))
	}
}

// showNoData displays a message when there's no data.
func (t *Table) showNoData(msg string) {
	t.Clear()
	cell := tview.NewTableCell(msg)
	cell.SetTextColor(tcell.ColorGray)
	cell.SetAlign(tview.AlignCenter)
	cell.SetSelectable(false)
	t.SetCell(0, 0, cell)
}

// View returns the rows as displayed: filtered, then sorted.
func (t *Table) View(data *model1.TableData) *model1.TableData {
	t.mx.RLock()
	filter := strings.ToLower(t.filterText)
	sortCol, asc := t.sortColName, t.sortAsc
	t.mx.RUnlock()

	if data == nil {
		return nil
	}
	header := data.Header()

	rows := model1.NewRowEvents(data.RowCount())
	data.RowEvents().Range(func(_ int, re model1.RowEvent) bool {
		if filter == "" || matches(re.Row.Fields, filter) {
			rows.Add(re)
		}
		return true
	})

	if sortCol != "" {
		if col, ok := header.IndexOf(sortCol, true); ok {
			model1.SortRows(rows, header, col, asc)
		}
	}

	return model1.NewTableData(data.Store(), header, rows)
}

func matches(ff model1.Fields, filter string) bool {
	for _, f := range ff {
		if strings.Contains(strings.ToLower(f), filter) {
			return true
		}
	}
	return false
}

// UpdateUI redraws the table from data. Must run on the UI goroutine.
func (t *Table) UpdateUI(data *model1.TableData) {
	t.mx.Lock()
	t.fullData = data
	t.mx.Unlock()

	t.render(data)
}

func (t *Table) refresh() {
	t.mx.RLock()
	data := t.fullData
	t.mx.RUnlock()

	t.render(data)
}

func (t *Table) render(data *model1.TableData) {
	selected := t.GetSelectedRowID()

	view := t.View(data)
	if view == nil || view.Empty() {
		if data != nil {
			t.mx.Lock()
			t.header = data.Header()
			t.mx.Unlock()
		}
		t.showNoData(noDataMsg)
		t.updateTitle()
		return
	}

	t.Clear()
	header := view.Header()
	t.buildHeader(header)

	t.mx.RLock()
	colorer := t.colorer
	t.mx.RUnlock()

	view.RowEvents().Range(func(idx int, re model1.RowEvent) bool {
		t.buildRow(re, header, idx+1, tcell.Color(colorer(view.Store(), header, &re)))
		return true
	})
	t.updateTitle()

	if selected == "" || !t.SelectRowID(selected) {
		t.SelectFirstRow()
	}
}

// updateTitle updates the title with store, count and filter.
func (t *Table) updateTitle() {
	t.mx.RLock()
	filter, filterActive, data := t.filterText, t.filterActive, t.fullData
	t.mx.RUnlock()

	store, count := "-", 0
	if data != nil {
		if s := data.Store(); s != "" {
			store = s
		}
		count = t.GetRowCount() - 1
		if count < 0 {
			count = 0
		}
	}

	if filterActive || filter != "" {
		t.setTitle(fmt.Sprintf(FilterTitleFmt, t.name, store, count, filter))
		return
	}
	t.setTitle(fmt.Sprintf(TitleFmt, t.name, store, count))
}

// buildHeader builds the table header row.
func (t *Table) buildHeader(header model1.Header) {
	t.mx.Lock()
	t.header = header
	sortCol, asc := t.sortColName, t.sortAsc
	t.mx.Unlock()

	for col, h := range header {
		cell := tview.NewTableCell(h.Name)
		cell.SetTextColor(tcell.ColorYellow)
		cell.SetBackgroundColor(tcell.ColorDefault)
		cell.SetAlign(h.Align)
		cell.SetExpansion(1)
		cell.SetSelectable(false)

		if h.Name == sortCol {
			arrow := "↑"
			if !asc {
				arrow = "↓"
			}
			cell.SetText(h.Name + arrow)
			cell.SetAttributes(tcell.AttrBold)
		}

		t.SetCell(0, col, cell)
	}
}

// buildRow builds a single data row.
func (t *Table) buildRow(re model1.RowEvent, header model1.Header, rowIdx int, color tcell.Color) {
	for col, field := range re.Row.Fields {
		if col >= len(header) {
			break
		}

		cell := tview.NewTableCell(field)
		cell.SetTextColor(color)
		cell.SetBackgroundColor(tcell.ColorDefault)
		cell.SetAlign(header[col].Align)
		cell.SetExpansion(1)
		if header.IsNumericCol(col) {
			cell.SetAlign(tview.AlignRight)
		}
		if re.IsChanged(col) {
			cell.SetAttributes(tcell.AttrBold)
		}
		if col == 0 {
			cell.SetReference(re.Row.ID)
		}

		t.SetCell(rowIdx, col, cell)
	}
}

func (t *Table) enqueue(f func()) {
	t.mx.RLock()
	q := t.queue
	t.mx.RUnlock()
	q(f)
}

// TableDataChanged implements model.TableListener.
func (t *Table) TableDataChanged(data *model1.TableData) {
	t.enqueue(func() { t.UpdateUI(data) })
}

// TableNoData implements model.TableListener.
func (t *Table) TableNoData(data *model1.TableData) {
	t.enqueue(func() { t.UpdateUI(data) })
}

// TableLoadFailed implements model.TableListener.
func (t *Table) TableLoadFailed(err error) {
	t.enqueue(func() {
		t.setTitle(fmt.Sprintf(" <%s>[red::b] %v [-::-] ", t.name, err))
	})
}
