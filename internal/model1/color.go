package model1

import "github.com/gdamore/tcell/v2"

var (
	// StdColor is the color of rows unchanged since the last batch.
	StdColor tcell.Color = tcell.ColorWhite

	// AddColor marks rows new in the batch.
	AddColor tcell.Color = tcell.ColorBlue

	// ModColor marks rows whose cells changed.
	ModColor tcell.Color = tcell.ColorYellow

	// ExternalColor marks data kept outside the metadata store.
	ExternalColor tcell.Color = tcell.ColorOrange
)

// DefaultColorer colors rows by event kind.
func DefaultColorer(_ string, _ Header, re *RowEvent) tcell.Color {
	switch re.Kind {
	case EventAdd:
		return AddColor
	case EventUpdate:
		return ModColor
	default:
		return StdColor
	}
}
