package model1

import "sort"

// RowEvent is a row tagged with how it changed since the previous batch.
// Changed lists the updated cells of an EventUpdate row.
type RowEvent struct {
	Kind    ResEvent
	Row     Row
	Changed []int
}

func NewRowEvent(kind ResEvent, row Row) RowEvent {
	return RowEvent{Kind: kind, Row: row}
}

// NewUpdateEvent returns an update event for row against its previous
// rendition, ignoring the skip column.
func NewUpdateEvent(prev, row Row, skip int) RowEvent {
	return RowEvent{
		Kind:    EventUpdate,
		Row:     row,
		Changed: row.Fields.Changed(prev.Fields, skip),
	}
}

// IsChanged reports whether cell col was updated.
func (r RowEvent) IsChanged(col int) bool {
	for _, c := range r.Changed {
		if c == col {
			return true
		}
	}
	return false
}

// RowEvents is an ordered collection of row events indexed by row id.
type RowEvents struct {
	events []RowEvent
	index  map[string]int
}

func NewRowEvents(size int) *RowEvents {
	return &RowEvents{
		events: make([]RowEvent, 0, size),
		index:  make(map[string]int, size),
	}
}

func (r *RowEvents) Add(re RowEvent) {
	r.events = append(r.events, re)
	r.index[re.Row.ID] = len(r.events) - 1
}

func (r *RowEvents) At(i int) (RowEvent, bool) {
	if i < 0 || i >= len(r.events) {
		return RowEvent{}, false
	}
	return r.events[i], true
}

func (r *RowEvents) Get(id string) (RowEvent, bool) {
	i, ok := r.index[id]
	if !ok {
		return RowEvent{}, false
	}
	return r.At(i)
}

func (r *RowEvents) FindIndex(id string) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

func (r *RowEvents) Len() int {
	return len(r.events)
}

func (r *RowEvents) Empty() bool {
	return len(r.events) == 0
}

// Range calls f on each event in order until f returns false.
func (r *RowEvents) Range(f func(int, RowEvent) bool) {
	for i, e := range r.events {
		if !f(i, e) {
			return
		}
	}
}

// Sort orders the events with less and rebuilds the id index.
func (r *RowEvents) Sort(less func(a, b RowEvent) bool) {
	sort.SliceStable(r.events, func(i, j int) bool {
		return less(r.events[i], r.events[j])
	})
	for i, e := range r.events {
		r.index[e.Row.ID] = i
	}
}
