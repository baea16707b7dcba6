package view

import (
	"fmt"

	"github.com/dbrowse/dbrowse/internal/ui"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// Stores lists the configured store profiles and switches between them.
type Stores struct {
	*tview.Table

	app     *App
	stores  []string
	current string
	actions *ui.KeyActions
	backFn  func()
}

// NewStores creates a new store switcher view.
func NewStores(app *App) *Stores {
	s := &Stores{
		Table:   tview.NewTable(),
		app:     app,
		actions: ui.NewKeyActions(),
	}

	s.SetBorder(true)
	s.SetTitle(" Stores ")
	s.SetTitleAlign(tview.AlignCenter)
	s.SetBorderColor(tcell.ColorAqua)
	s.SetBackgroundColor(tcell.ColorDefault)
	s.SetSelectable(true, false)
	s.SetFixed(1, 0)

	return s
}

// Init loads the store list and key bindings.
func (s *Stores) Init() {
	s.actions.Bulk(ui.KeyMap{
		tcell.KeyEnter: ui.NewKeyAction("Switch", s.switchCmd, true),
		tcell.KeyEsc:   ui.NewKeyAction("Back", s.backCmd, true),
	})
	s.SetInputCapture(s.keyboard)
	s.load()
}

// Name returns the view name.
func (s *Stores) Name() string {
	return storesPage
}

// Hints returns menu hints.
func (s *Stores) Hints() ui.MenuHints {
	return s.actions.Hints()
}

// SetBackFn sets the callback for back navigation.
func (s *Stores) SetBackFn(fn func()) {
	s.backFn = fn
}

func (s *Stores) keyboard(evt *tcell.EventKey) *tcell.EventKey {
	row, col := s.GetSelection()
	if evt.Key() == tcell.KeyRune {
		switch evt.Rune() {
		case 'j':
			if row < s.GetRowCount()-1 {
				s.Select(row+1, col)
			}
			return nil
		case 'k':
			if row > 1 {
				s.Select(row-1, col)
			}
			return nil
		}
	}

	if action, ok := s.actions.Get(ui.AsKey(evt)); ok {
		return action.Action(evt)
	}
	return evt
}

func (s *Stores) load() {
	s.Clear()

	headers := []string{"", "STORE", "BACKEND", "DATABASE", "HOST"}
	for col, h := range headers {
		s.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false).
			SetExpansion(1))
	}

	f := s.app.Factory()
	if f == nil || f.Client() == nil {
		s.showNoData("No store connection")
		return
	}
	s.current = f.Store()
	s.stores = f.Client().StoreNames()
	if len(s.stores) == 0 {
		s.showNoData("No store profiles found")
		return
	}

	settings := s.app.Config().Settings()
	for i, name := range s.stores {
		row := i + 1

		mark, color := "", tcell.ColorWhite
		if name == s.current {
			mark, color = ui.IndicatorActive, tcell.ColorGreen
		}
		s.SetCell(row, 0, tview.NewTableCell(mark).SetTextColor(tcell.ColorGreen).SetAlign(tview.AlignCenter))
		s.SetCell(row, 1, tview.NewTableCell(name).SetTextColor(color).SetExpansion(1).SetReference(name))

		backend, database, host := "", "", ""
		if settings != nil {
			if cfg, err := settings.GetStore(name); err == nil {
				backend, database, host = string(cfg.Backend), cfg.Database, cfg.Host
			}
		}
		for col, v := range []string{backend, database, host} {
			s.SetCell(row, col+2, tview.NewTableCell(v).SetTextColor(color).SetExpansion(1))
		}
	}

	s.SetTitle(fmt.Sprintf(" Stores [%d] ", len(s.stores)))
	s.Select(1, 0)
}

func (s *Stores) showNoData(msg string) {
	s.SetCell(1, 0, tview.NewTableCell(msg).
		SetTextColor(tcell.ColorGray).
		SetAlign(tview.AlignCenter).
		SetSelectable(false))
}

func (s *Stores) switchCmd(*tcell.EventKey) *tcell.EventKey {
	row, _ := s.GetSelection()
	if row < 1 || row > len(s.stores) {
		return nil
	}

	name := s.stores[row-1]
	if name == s.current {
		s.app.Flash().Infof("Already on store %s", name)
		return nil
	}
	if err := s.app.SwitchStore(name); err != nil {
		s.app.Flash().Err(err)
		return nil
	}
	s.app.Flash().Infof("Switched to store %s", name)

	return s.backCmd(nil)
}

func (s *Stores) backCmd(*tcell.EventKey) *tcell.EventKey {
	if s.backFn != nil {
		s.backFn()
	}
	return nil
}
