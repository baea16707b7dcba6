package model1

import (
	"github.com/gdamore/tcell/v2"
)

// ResEvent tells how a row changed since the previous batch.
type ResEvent int

const (
	EventUnchanged ResEvent = 1 << iota
	EventAdd
	EventUpdate
)

// ColorerFunc picks the text color of a row.
type ColorerFunc func(store string, h Header, re *RowEvent) tcell.Color

// Renderer turns store objects into table rows.
type Renderer interface {
	Render(o any, store string, row *Row) error
	Header(store string) Header
	ColorerFunc() ColorerFunc
}
