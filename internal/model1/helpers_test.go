package model1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLess(t *testing.T) {
	uu := map[string]struct {
		num    bool
		v1, v2 string
		e      bool
	}{
		"natural":       {v1: "scan-2", v2: "scan-10", e: true},
		"case":          {v1: "alpha", v2: "Beta", e: true},
		"number":        {num: true, v1: "9", v2: "1,024", e: true},
		"number-desc":   {num: true, v1: "1,024", v2: "9", e: false},
		"same-value-id": {v1: "x", v2: "x", e: true},
	}

	for k := range uu {
		u := uu[k]
		t.Run(k, func(t *testing.T) {
			assert.Equal(t, u.e, Less(u.num, "a", "b", u.v1, u.v2))
		})
	}
}

func makeEvents(rows ...Row) *RowEvents {
	re := NewRowEvents(len(rows))
	for _, r := range rows {
		re.Add(NewRowEvent(EventUnchanged, r))
	}
	return re
}

func ids(re *RowEvents) []string {
	out := make([]string, 0, re.Len())
	re.Range(func(_ int, e RowEvent) bool {
		out = append(out, e.Row.ID)
		return true
	})
	return out
}

func TestSortRows(t *testing.T) {
	h := Header{
		{Name: "NAME"},
		{Name: "SCAN", Attrs: Attrs{Numeric: true}},
	}
	re := makeEvents(
		Row{ID: "r1", Fields: Fields{"gamma", "1,000"}},
		Row{ID: "r2", Fields: Fields{"Alpha", "20"}},
		Row{ID: "r3", Fields: Fields{"beta", "3"}},
	)

	SortRows(re, h, 0, true)
	assert.Equal(t, []string{"r2", "r3", "r1"}, ids(re))

	SortRows(re, h, 1, true)
	assert.Equal(t, []string{"r3", "r2", "r1"}, ids(re))

	SortRows(re, h, 1, false)
	assert.Equal(t, []string{"r1", "r2", "r3"}, ids(re))

	i, ok := re.FindIndex("r3")
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	SortRows(re, h, 5, true)
	assert.Equal(t, []string{"r1", "r2", "r3"}, ids(re))
}

func TestFieldsChanged(t *testing.T) {
	f := Fields{"a", "5m", "c"}

	assert.False(t, f.Diff(Fields{"a", "6m", "c"}, 1))
	assert.True(t, f.Diff(Fields{"a", "6m", "c"}, -1))
	assert.True(t, f.Diff(Fields{"a", "5m", "d"}, 1))
	assert.True(t, f.Diff(Fields{"a"}, 1))
	assert.True(t, f.Diff(Fields{"a", "5m", "c", "x"}, -1))

	assert.Equal(t, []int{2}, f.Changed(Fields{"a", "6m", "d"}, 1))
	assert.Empty(t, f.Changed(Fields{"a", "5m", "c"}, -1))
}

func TestNewUpdateEvent(t *testing.T) {
	h := Header{{Name: "A"}, {Name: "START", Attrs: Attrs{Time: true}}, {Name: "PLAN", Attrs: Attrs{Wide: true}}}
	o := Row{ID: "x", Fields: Fields{"1", "5m", "old"}}
	n := Row{ID: "x", Fields: Fields{"1", "6m", "new"}}

	re := NewUpdateEvent(o, n, h.TimeCol())
	assert.Equal(t, EventUpdate, re.Kind)
	assert.Equal(t, []int{2}, re.Changed)
	assert.True(t, re.IsChanged(2))
	assert.False(t, re.IsChanged(1))

	assert.Equal(t, 1, h.TimeCol())
	assert.Equal(t, []string{"A", "START"}, h.Names(false))
	_, ok := h.IndexOf("PLAN", false)
	assert.False(t, ok)
}

func TestDefaultColorer(t *testing.T) {
	assert.Equal(t, AddColor, DefaultColorer("", nil, &RowEvent{Kind: EventAdd}))
	assert.Equal(t, ModColor, DefaultColorer("", nil, &RowEvent{Kind: EventUpdate}))
	assert.Equal(t, StdColor, DefaultColorer("", nil, &RowEvent{Kind: EventUnchanged}))
}
