package view

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dbrowse/dbrowse/internal/config"
	"github.com/dbrowse/dbrowse/internal/dao"
	"github.com/dbrowse/dbrowse/internal/logger"
	"github.com/dbrowse/dbrowse/internal/model"
	"github.com/dbrowse/dbrowse/internal/render"
	"github.com/dbrowse/dbrowse/internal/ui"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"github.com/rs/zerolog"
)

// Browser is the main screen: the count prompt, the dataset list and the
// summary and channel tables of the selected dataset.
type Browser struct {
	*tview.Flex

	app      *App
	model    *model.Browser
	prompt   *ui.Prompt
	datasets *ui.Table
	summary  *ui.Table
	channels *ui.Table
	details  *tview.Flex
	dsData   *model.TableData
	sumData  *model.TableData
	chanData *model.TableData
	focus    int
	pending  string
	noSum    bool
	log      zerolog.Logger
	mx       sync.RWMutex
}

var _ model.BrowserListener = (*Browser)(nil)

// NewBrowser returns a new browser screen.
func NewBrowser(app *App) *Browser {
	return &Browser{
		Flex:     tview.NewFlex(),
		app:      app,
		prompt:   ui.NewPrompt(" Retrieve last: "),
		datasets: ui.NewTable(render.KindDataset),
		summary:  ui.NewTable(render.KindSummary),
		channels: ui.NewTable(render.KindChannel),
		log:      logger.Get("view"),
	}
}

// Init wires the widgets to the given model.
func (b *Browser) Init(m *model.Browser) error {
	dsR, err := render.RendererFor(render.KindDataset)
	if err != nil {
		return err
	}
	sumR, err := render.RendererFor(render.KindSummary)
	if err != nil {
		return err
	}
	chanR, err := render.RendererFor(render.KindChannel)
	if err != nil {
		return err
	}

	store := b.app.Factory().Store()
	b.dsData = model.NewTableData(dsR, store)
	b.sumData = model.NewTableData(sumR, store)
	b.chanData = model.NewTableData(chanR, store)

	for _, t := range b.tables() {
		t.Init()
		b.bindKeys(t)
	}
	b.datasets.SetModel(b.dsData)
	b.summary.SetModel(b.sumData)
	b.channels.SetModel(b.chanData)
	b.datasets.SetColorerFn(dsR.ColorerFunc())
	b.summary.SetColorerFn(sumR.ColorerFunc())
	b.channels.SetColorerFn(chanR.ColorerFunc())
	b.datasets.SetSelectedFn(b.selectDataset)

	b.prompt.SetCountFn(func(n int) {
		b.retrieve(n)
		b.focusTo(1)
	})
	b.prompt.SetCancelFn(func() { b.focusTo(1) })

	b.layout()

	b.SetModel(m, b.app.Config().Selection())

	return nil
}

// SetModel points the screen at another browser model. selection is a
// dataset uid, or uid prefix, to select once the first batch arrives.
func (b *Browser) SetModel(m *model.Browser, selection string) {
	b.mx.Lock()
	old := b.model
	b.model = m
	b.pending = selection
	b.mx.Unlock()

	if old != nil {
		old.RemoveListener(b)
	}
	m.AddListener(b)

	store := b.app.Factory().Store()
	for _, td := range []*model.TableData{b.dsData, b.sumData, b.chanData} {
		td.SetStore(store)
	}
}

// Model returns the current browser model.
func (b *Browser) Model() *model.Browser {
	b.mx.RLock()
	defer b.mx.RUnlock()
	return b.model
}

// Start runs the first retrieval.
func (b *Browser) Start(n int) {
	b.prompt.SetCount(n)
	b.retrieve(n)
}

// Hints returns the menu hints of the focused table.
func (b *Browser) Hints() ui.MenuHints {
	if t, ok := b.Focused().(*ui.Table); ok {
		return t.Hints()
	}
	return ui.MenuHints{
		{Mnemonic: "enter", Description: "Retrieve", Visible: true},
		{Mnemonic: "esc", Description: "Cancel", Visible: true},
	}
}

// Editing reports whether keystrokes belong to an input.
func (b *Browser) Editing() bool {
	if b.app.GetFocus() == b.prompt {
		return true
	}
	for _, t := range b.tables() {
		if t.Filtering() {
			return true
		}
	}
	return false
}

// Focused returns the widget holding the screen focus.
func (b *Browser) Focused() tview.Primitive {
	b.mx.RLock()
	defer b.mx.RUnlock()
	return b.widgets()[b.focus]
}

// HeadersChanged refreshes the dataset list.
func (b *Browser) HeadersChanged([]*dao.Header) {
	b.app.QueueUpdateDraw(b.refreshDatasets)
}

// SelectionChanged refreshes the summary and channel tables.
func (b *Browser) SelectionChanged(dao.UID, model.Summary, model.ChannelTable) {
	b.app.QueueUpdateDraw(b.refreshSelection)
}

// StatusChanged refreshes the status bar.
func (b *Browser) StatusChanged(model.Status) {
	b.app.QueueUpdateDraw(b.refreshStatus)
}

// retrieve runs a retrieval off the UI goroutine.
func (b *Browser) retrieve(n int) {
	m := b.Model()
	timeout, err := b.app.Config().Dbrowse.GetAPITimeout()
	if err != nil {
		b.log.Warn().Err(err).Msg("using default api timeout")
		timeout = config.DefaultAPITimeout
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		if err := m.SetRetrievalCount(ctx, n); err != nil {
			b.log.Error().Err(err).Int("count", n).Msg("retrieval failed")
			b.app.Flash().Err(err)
			return
		}
		b.log.Debug().Dur("elapsed", time.Since(start)).Int("count", n).Msg("retrieval done")
	}()
}

// The refresh functions run on the UI goroutine and read the model state at
// that time, so late callbacks never show stale data.

func (b *Browser) refreshDatasets() {
	m := b.Model()
	if err := b.dsData.Update(render.DatasetObjects(m.Headers())); err != nil {
		b.app.Flash().Err(err)
		return
	}

	b.mx.Lock()
	pending := b.pending
	b.pending = ""
	b.mx.Unlock()

	if pending != "" {
		if uid, ok := dao.MatchUID(m.Headers(), pending); ok {
			b.datasets.SelectRowID(string(uid))
		} else {
			b.app.Flash().Warnf("Dataset %s is not among the last %d", pending, m.Count())
		}
	}
	b.selectDataset(b.datasets.GetSelectedRowID())

	if ctx := b.app.Config().Dbrowse.ActiveContext(); ctx != nil {
		ctx.SetCount(m.Count())
	}
}

func (b *Browser) refreshSelection() {
	m := b.Model()
	if err := b.sumData.Update(render.SummaryObjects(m.Summary())); err != nil {
		b.app.Flash().Err(err)
	}
	if err := b.chanData.Update(render.ChannelObjects(m.Channels())); err != nil {
		b.app.Flash().Err(err)
	}

	if ctx := b.app.Config().Dbrowse.ActiveContext(); ctx != nil {
		ctx.SetSelection(string(m.Selected()))
	}
}

func (b *Browser) refreshStatus() {
	s := b.Model().Status()
	b.app.Indicator().SetStatus(s.Active, s.Message)
	if !s.Active {
		b.app.Flash().Warn(s.Message)
	}
}

// selectDataset forwards a dataset row change to the model.
func (b *Browser) selectDataset(id string) {
	m := b.Model()
	if m == nil {
		return
	}
	uid := dao.UID(id)
	if uid == m.Selected() && !m.SelectionStale() {
		return
	}
	if err := m.Select(uid); err != nil {
		if errors.Is(err, model.ErrUnknownDataset) {
			b.log.Debug().Err(err).Msg("selection skipped")
			return
		}
		b.app.Flash().Err(err)
	}
}

func (b *Browser) layout() {
	b.details = tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(b.summary, 0, 1, false).
		AddItem(b.channels, 0, 1, false)
	b.SetDirection(tview.FlexRow).
		AddItem(b.prompt, 1, 0, false).
		AddItem(b.datasets, 0, 2, true).
		AddItem(b.details, 0, 3, false)
	b.focus = 1
}

// SummaryVisible reports whether the summary pane is shown.
func (b *Browser) SummaryVisible() bool {
	b.mx.RLock()
	defer b.mx.RUnlock()
	return !b.noSum
}

// toggleSummary shows or hides the summary pane and returns its new state.
// A hidden summary hands its focus to the channels.
func (b *Browser) toggleSummary() bool {
	b.mx.Lock()
	b.noSum = !b.noSum
	hidden := b.noSum
	if hidden && b.focus == 2 {
		b.focus = 3
	}
	b.mx.Unlock()

	if hidden {
		b.details.RemoveItem(b.summary)
	} else {
		b.details.AddItemAtIndex(0, b.summary, 0, 1, false)
	}
	return !hidden
}

func (b *Browser) tables() []*ui.Table {
	return []*ui.Table{b.datasets, b.summary, b.channels}
}

func (b *Browser) widgets() []tview.Primitive {
	return []tview.Primitive{b.prompt, b.datasets, b.summary, b.channels}
}

func (b *Browser) focusTo(idx int) {
	b.mx.Lock()
	ww := b.widgets()
	b.focus = idx % len(ww)
	p := ww[b.focus]
	b.mx.Unlock()

	b.app.SetFocus(p)
	b.app.refreshChrome()
}

func (b *Browser) bindKeys(t *ui.Table) {
	t.Actions().Bulk(ui.KeyMap{
		ui.KeyR:        ui.NewKeyAction("Re-run", b.rerunCmd, true),
		ui.KeyN:        ui.NewKeyAction("Count", b.promptCmd, true),
		tcell.KeyTab:   ui.NewSharedKeyAction("Next Pane", b.nextCmd, true),
		tcell.KeyCtrlT: ui.NewSharedKeyAction("Stores", b.storesCmd, true),
		ui.KeyS:        ui.NewSharedKeyAction("Toggle Summary", b.summaryCmd, true),
	})
	if t == b.datasets {
		t.Actions().Add(ui.KeyD, ui.NewKeyAction("Describe", b.describeCmd, true))
	}
}

func (b *Browser) rerunCmd(*tcell.EventKey) *tcell.EventKey {
	n := b.Model().Count()
	if n < 1 {
		n = b.prompt.Count()
	}
	b.app.Flash().Infof("Retrieving last %d", n)
	b.retrieve(n)
	return nil
}

func (b *Browser) promptCmd(*tcell.EventKey) *tcell.EventKey {
	b.focusTo(0)
	return nil
}

func (b *Browser) nextCmd(*tcell.EventKey) *tcell.EventKey {
	b.mx.RLock()
	next := b.focus + 1
	if b.noSum && next == 2 {
		next++
	}
	b.mx.RUnlock()

	b.focusTo(next)
	return nil
}

func (b *Browser) summaryCmd(*tcell.EventKey) *tcell.EventKey {
	if b.toggleSummary() {
		b.app.Flash().Info("Summary shown")
	} else {
		b.app.Flash().Info("Summary hidden")
	}
	b.mx.RLock()
	focus := b.focus
	b.mx.RUnlock()
	b.focusTo(focus)
	return nil
}

func (b *Browser) describeCmd(*tcell.EventKey) *tcell.EventKey {
	uid := dao.UID(b.datasets.GetSelectedRowID())
	for _, h := range b.Model().Headers() {
		if h.UID == uid {
			b.app.showDescribe(h)
			return nil
		}
	}
	b.app.Flash().Warn("No dataset selected")
	return nil
}

func (b *Browser) storesCmd(*tcell.EventKey) *tcell.EventKey {
	b.app.showStores()
	return nil
}
