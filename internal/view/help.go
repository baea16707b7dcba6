package view

import (
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// HelpBind represents a single keybinding.
type HelpBind struct {
	Key  string
	Desc string
}

// HelpSection is a titled column of keybindings.
type HelpSection struct {
	Title string
	Binds []HelpBind
}

// Help lists the keybindings of all screens.
type Help struct {
	*tview.Table
	closeFn func()
}

// NewHelp creates a new help view.
func NewHelp() *Help {
	h := &Help{
		Table: tview.NewTable(),
	}
	h.build()
	return h
}

// SetCloseFn sets the callback when help is closed.
func (h *Help) SetCloseFn(fn func()) {
	h.closeFn = fn
}

// HelpSections returns the documented keybindings.
func HelpSections() []HelpSection {
	return []HelpSection{
		{
			Title: "GENERAL",
			Binds: []HelpBind{
				{"<?>", "Help"},
				{"<q>", "Quit/Back"},
				{"<ctrl-c>", "Quit"},
				{"<tab>", "Next Pane"},
				{"<ctrl-t>", "Stores"},
				{"<s>", "Toggle Summary"},
			},
		},
		{
			Title: "DATASETS",
			Binds: []HelpBind{
				{"<n>", "Count"},
				{"<r>", "Re-run"},
				{"<d>", "Describe"},
				{"</>", "Filter"},
				{"<ctrl-s>", "Sort"},
				{"<esc>", "Clear Filter"},
			},
		},
		{
			Title: "NAVIGATION",
			Binds: []HelpBind{
				{"<j>", "Down"},
				{"<k>", "Up"},
				{"<g>", "Top"},
				{"<G>", "Bottom"},
			},
		},
		{
			Title: "DESCRIBE",
			Binds: []HelpBind{
				{"<y>", "YAML"},
				{"<j>", "JSON"},
				{"<w>", "Wrap"},
				{"<esc>", "Back"},
			},
		},
	}
}

func (h *Help) build() {
	h.SetBorder(true)
	h.SetTitle(" Help ")
	h.SetTitleAlign(tview.AlignCenter)
	h.SetBorderColor(tcell.ColorYellow)
	h.SetBackgroundColor(tcell.ColorDefault)
	h.SetSelectable(false, false)

	h.populate(HelpSections())

	h.SetInputCapture(func(evt *tcell.EventKey) *tcell.EventKey {
		switch evt.Key() {
		case tcell.KeyEsc, tcell.KeyEnter:
			if h.closeFn != nil {
				h.closeFn()
			}
			return nil
		}
		return evt
	})
}

// populate lays sections out side by side, key and description columns
// followed by a spacer.
func (h *Help) populate(sections []HelpSection) {
	maxRows := 0
	for _, s := range sections {
		maxRows = max(maxRows, len(s.Binds))
	}

	const colWidth = 3
	for idx, s := range sections {
		base := idx * colWidth
		h.SetCell(0, base, tview.NewTableCell(s.Title).
			SetTextColor(tcell.ColorAqua).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false))

		for i, bind := range s.Binds {
			h.SetCell(i+1, base, tview.NewTableCell(bind.Key).
				SetTextColor(tcell.ColorYellow).
				SetSelectable(false))
			h.SetCell(i+1, base+1, tview.NewTableCell(bind.Desc).
				SetTextColor(tcell.ColorWhite).
				SetSelectable(false).
				SetExpansion(1))
		}

		if idx < len(sections)-1 {
			for row := 0; row <= maxRows; row++ {
				h.SetCell(row, base+2, tview.NewTableCell("").
					SetSelectable(false).
					SetExpansion(1))
			}
		}
	}

	h.SetCell(maxRows+2, 0, tview.NewTableCell("<esc> to close").
		SetTextColor(tcell.ColorGray).
		SetSelectable(false))
}
