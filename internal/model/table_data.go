package model

import (
	"fmt"
	"sync"

	"github.com/dbrowse/dbrowse/internal/model1"
)

// TableData renders browser projections into table rows and tracks how rows
// changed between updates.
type TableData struct {
	renderer  model1.Renderer
	store     string
	data      *model1.TableData
	listeners []TableListener
	mx        sync.RWMutex
}

// NewTableData creates a new table data model.
func NewTableData(r model1.Renderer, store string) *TableData {
	return &TableData{
		renderer:  r,
		store:     store,
		data:      model1.NewTableData(store, nil, nil),
		listeners: make([]TableListener, 0, 2),
	}
}

// SetRenderer sets the renderer for converting objects to rows.
func (t *TableData) SetRenderer(r model1.Renderer) {
	t.mx.Lock()
	defer t.mx.Unlock()
	t.renderer = r
}

// SetStore sets the store name shown with the rows.
func (t *TableData) SetStore(s string) {
	t.mx.Lock()
	defer t.mx.Unlock()
	t.store = s
}

// Header returns the table header.
func (t *TableData) Header() model1.Header {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.data.Header()
}

// RowCount returns the number of rows.
func (t *TableData) RowCount() int {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.data.RowCount()
}

// Empty returns true if no data is available.
func (t *TableData) Empty() bool {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.data.Empty()
}

// Peek returns the current batch.
func (t *TableData) Peek() *model1.TableData {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.data
}

// AddListener registers a table listener.
func (t *TableData) AddListener(l TableListener) {
	t.mx.Lock()
	defer t.mx.Unlock()
	t.listeners = append(t.listeners, l)
}

// RemoveListener unregisters a table listener.
func (t *TableData) RemoveListener(l TableListener) {
	t.mx.Lock()
	defer t.mx.Unlock()

	for i, listener := range t.listeners {
		if listener == l {
			t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
			return
		}
	}
}

// Update renders objects into a new table and notifies listeners. Rows that
// were not part of a non-empty previous table are marked as added, rows whose
// fields changed are marked as updated.
func (t *TableData) Update(objects []any) error {
	t.mx.RLock()
	renderer := t.renderer
	store := t.store
	prev := t.data.RowEvents()
	t.mx.RUnlock()

	if renderer == nil {
		return fmt.Errorf("no renderer configured")
	}

	header := renderer.Header(store)
	timeCol := header.TimeCol()
	firstLoad := prev == nil || prev.Empty()

	rowEvents := model1.NewRowEvents(len(objects))
	for _, o := range objects {
		row := model1.NewRow(len(header))
		if err := renderer.Render(o, store, &row); err != nil {
			t.notifyLoadFailed(err)
			return err
		}

		old, ok := model1.RowEvent{}, false
		if !firstLoad {
			old, ok = prev.Get(row.ID)
		}
		switch {
		case firstLoad:
			rowEvents.Add(model1.NewRowEvent(model1.EventUnchanged, row))
		case !ok:
			rowEvents.Add(model1.NewRowEvent(model1.EventAdd, row))
		case old.Row.Fields.Diff(row.Fields, timeCol):
			rowEvents.Add(model1.NewUpdateEvent(old.Row, row, timeCol))
		default:
			rowEvents.Add(model1.NewRowEvent(model1.EventUnchanged, row))
		}
	}

	newData := model1.NewTableData(store, header, rowEvents)

	t.mx.Lock()
	oldEmpty := t.data.Empty()
	t.data = newData
	t.mx.Unlock()

	if rowEvents.Empty() && !oldEmpty {
		t.notifyNoData(newData)
	} else {
		t.notifyDataChanged(newData)
	}

	return nil
}

// Fail reports a load failure to listeners without touching the rows.
func (t *TableData) Fail(err error) {
	t.notifyLoadFailed(err)
}

func (t *TableData) snapshotListeners() []TableListener {
	t.mx.RLock()
	defer t.mx.RUnlock()

	listeners := make([]TableListener, len(t.listeners))
	copy(listeners, t.listeners)
	return listeners
}

// notifyNoData notifies listeners that no data is available.
func (t *TableData) notifyNoData(data *model1.TableData) {
	for _, l := range t.snapshotListeners() {
		l.TableNoData(data)
	}
}

// notifyDataChanged notifies listeners that data has changed.
func (t *TableData) notifyDataChanged(data *model1.TableData) {
	for _, l := range t.snapshotListeners() {
		l.TableDataChanged(data)
	}
}

// notifyLoadFailed notifies listeners that loading failed.
func (t *TableData) notifyLoadFailed(err error) {
	for _, l := range t.snapshotListeners() {
		l.TableLoadFailed(err)
	}
}
