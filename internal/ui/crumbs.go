package ui

import (
	"fmt"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// Crumbs represents user breadcrumbs.
type Crumbs struct {
	*tview.TextView

	crumbs []string
}

// NewCrumbs returns a new breadcrumb view.
func NewCrumbs() *Crumbs {
	c := &Crumbs{
		TextView: tview.NewTextView(),
	}
	c.SetBackgroundColor(tcell.ColorDefault)
	c.SetTextAlign(tview.AlignLeft)
	c.SetBorderPadding(0, 0, 1, 1)
	c.SetDynamicColors(true)

	return c
}

// SetCrumbs replaces the breadcrumbs. The last one is shown as active.
func (c *Crumbs) SetCrumbs(crumbs ...string) {
	c.crumbs = append(c.crumbs[:0], crumbs...)
	c.refresh()
}

// Crumbs returns the current breadcrumbs.
func (c *Crumbs) Crumbs() []string {
	out := make([]string, len(c.crumbs))
	copy(out, c.crumbs)
	return out
}

func (c *Crumbs) refresh() {
	c.Clear()
	last := len(c.crumbs) - 1

	for i, crumb := range c.crumbs {
		if crumb == "" {
			continue
		}
		if i == last {
			_, _ = fmt.Fprintf(c, "[black:aqua:b] <%s> [-:-:-] ", tview.Escape(crumb))
		} else {
			_, _ = fmt.Fprintf(c, "[gray::-] <%s> [-:-:-] ", tview.Escape(crumb))
		}
	}
}
