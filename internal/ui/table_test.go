package ui_test

import (
	"errors"
	"testing"

	"github.com/dbrowse/dbrowse/internal/model"
	"github.com/dbrowse/dbrowse/internal/model1"
	"github.com/dbrowse/dbrowse/internal/ui"
	"github.com/derailed/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kvRenderer struct{}

func (kvRenderer) Header(string) model1.Header {
	return model1.Header{{Name: "NAME"}, {Name: "SCAN", Attrs: model1.Attrs{Numeric: true}}}
}

func (kvRenderer) Render(o any, _ string, row *model1.Row) error {
	kv, ok := o.([2]string)
	if !ok {
		return errors.New("expected a pair")
	}
	row.ID = kv[0]
	row.Fields = model1.Fields{kv[0], kv[1]}
	return nil
}

func (kvRenderer) ColorerFunc() model1.ColorerFunc {
	return model1.DefaultColorer
}

func newTable(t *testing.T) (*ui.Table, *model.TableData) {
	t.Helper()
	tv := ui.NewTable("datasets")
	tv.Init()

	td := model.NewTableData(kvRenderer{}, "lab")
	tv.SetModel(td)
	return tv, td
}

func rowIDs(tv *ui.Table) []string {
	var out []string
	for r := 1; r < tv.GetRowCount(); r++ {
		out = append(out, tv.GetRowID(r))
	}
	return out
}

func TestTableUpdate(t *testing.T) {
	tv, td := newTable(t)

	var picked []string
	tv.SetSelectedFn(func(id string) { picked = append(picked, id) })

	require.NoError(t, td.Update([]any{[2]string{"beta", "10"}, [2]string{"alpha", "9"}}))
	assert.Equal(t, []string{"beta", "alpha"}, rowIDs(tv))
	assert.Equal(t, " <datasets>[lab][2] ", tv.Title())
	assert.Equal(t, "beta", tv.GetSelectedRowID())
	assert.Contains(t, picked, "beta")

	tv.Select(2, 0)
	assert.Equal(t, "alpha", picked[len(picked)-1])

	require.NoError(t, td.Update([]any{[2]string{"gamma", "11"}, [2]string{"beta", "10"}, [2]string{"alpha", "9"}}))
	assert.Equal(t, "alpha", tv.GetSelectedRowID(), "selection follows the row id")

	require.NoError(t, td.Update(nil))
	assert.Empty(t, rowIDs(tv))
	assert.Equal(t, " <datasets>[lab][0] ", tv.Title())
}

func TestTableView(t *testing.T) {
	tv, td := newTable(t)
	require.NoError(t, td.Update([]any{
		[2]string{"scan-10", "1,000"},
		[2]string{"scan-2", "20"},
		[2]string{"other", "3"},
	}))

	tv.SetFilter("SCAN")
	assert.Equal(t, []string{"scan-10", "scan-2"}, rowIDs(tv))
	assert.Equal(t, " <datasets>[lab][2] Filter: SCAN ", tv.Title())

	tv.SetFilter("")
	evt := tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModCtrl)
	a, ok := tv.Actions().Get(tcell.KeyCtrlS)
	require.True(t, ok)

	a.Action(evt)
	col, asc := tv.SortColumn()
	assert.Equal(t, "NAME", col)
	assert.True(t, asc)
	assert.Equal(t, []string{"other", "scan-2", "scan-10"}, rowIDs(tv))

	a.Action(evt)
	assert.Equal(t, []string{"other", "scan-2", "scan-10"}, rowIDs(tv))

	a.Action(evt)
	col, asc = tv.SortColumn()
	assert.Equal(t, "NAME", col)
	assert.False(t, asc)
	assert.Equal(t, []string{"scan-10", "scan-2", "other"}, rowIDs(tv))

	// sorting never reorders the model
	var ids []string
	td.Peek().RowEvents().Range(func(_ int, re model1.RowEvent) bool {
		ids = append(ids, re.Row.ID)
		return true
	})
	assert.Equal(t, []string{"scan-10", "scan-2", "other"}, ids)
}

func TestTableLoadFailed(t *testing.T) {
	tv, _ := newTable(t)
	tv.TableLoadFailed(errors.New("boom"))
	assert.Contains(t, tv.Title(), "boom")
}

func TestTableQueue(t *testing.T) {
	tv, td := newTable(t)

	var queued []func()
	tv.SetQueueFn(func(f func()) { queued = append(queued, f) })

	require.NoError(t, td.Update([]any{[2]string{"a", "1"}}))
	assert.Empty(t, rowIDs(tv))
	require.Len(t, queued, 1)

	queued[0]()
	assert.Equal(t, []string{"a"}, rowIDs(tv))
}
