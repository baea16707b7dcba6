package render

import (
	"fmt"

	"github.com/dbrowse/dbrowse/internal/model"
	"github.com/dbrowse/dbrowse/internal/model1"
	"github.com/gdamore/tcell/v2"
)

// Channel renders channel table rows
type Channel struct {
	Base
}

// Header returns the channel header
func (*Channel) Header(string) model1.Header {
	hh := make(model1.Header, 0, len(model.ChannelTitle))
	for _, n := range model.ChannelTitle {
		hh = append(hh, model1.HeaderColumn{Name: n})
	}
	return hh
}

// Render renders a channel row
func (*Channel) Render(o any, _ string, row *model1.Row) error {
	r, ok := o.([]string)
	if !ok {
		return fmt.Errorf("expected []string, got %T", o)
	}
	if len(r) != len(model.ChannelTitle) {
		return fmt.Errorf("expected %d channel columns, got %d", len(model.ChannelTitle), len(r))
	}

	row.ID = r[model.ColKeyName]
	row.Fields = model1.Fields{
		r[model.ColKeyName],
		r[model.ColLocation],
		NA(r[model.ColSource]),
	}
	return nil
}

// ColorerFunc highlights channels stored outside the metadata store
func (*Channel) ColorerFunc() model1.ColorerFunc {
	return func(store string, h model1.Header, re *model1.RowEvent) tcell.Color {
		if len(re.Row.Fields) > model.ColLocation && re.Row.Fields[model.ColLocation] != model.LocalStore {
			return model1.ExternalColor
		}
		return model1.DefaultColorer(store, h, re)
	}
}

// ChannelObjects adapts a channel table for rendering, skipping its title row.
func ChannelObjects(t model.ChannelTable) []any {
	if len(t) < 2 {
		return nil
	}
	oo := make([]any, 0, len(t)-1)
	for _, r := range t[1:] {
		oo = append(oo, r)
	}
	return oo
}
