package ui

import (
	"fmt"
	"sort"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

const (
	menuFmt = " [yellow::b]<%s>[white::-] %s "
	maxRows = 6
)

// Menu lays out the key hints of the front page.
type Menu struct {
	*tview.Table
}

// NewMenu returns a new menu.
func NewMenu() *Menu {
	m := Menu{Table: tview.NewTable()}
	m.SetBackgroundColor(tcell.ColorDefault)
	m.SetBorderPadding(0, 0, 1, 1)

	return &m
}

// HydrateMenu fills the menu column by column, maxRows hints per column.
// Hidden hints are skipped and the first hint wins on a duplicate mnemonic.
func (m *Menu) HydrateMenu(hh MenuHints) {
	m.Clear()

	vv := visibleHints(hh)
	sort.Stable(vv)
	for i, h := range vv {
		c := tview.NewTableCell(fmt.Sprintf(menuFmt, h.Mnemonic, h.Description))
		c.SetBackgroundColor(tcell.ColorDefault)
		m.SetCell(i%maxRows, i/maxRows, c)
	}
}

func visibleHints(hh MenuHints) MenuHints {
	seen := make(map[string]struct{}, len(hh))
	vv := make(MenuHints, 0, len(hh))
	for _, h := range hh {
		if !h.Visible || h.Mnemonic == "" || h.Description == "" {
			continue
		}
		if _, ok := seen[h.Mnemonic]; ok {
			continue
		}
		seen[h.Mnemonic] = struct{}{}
		vv = append(vv, h)
	}

	return vv
}
