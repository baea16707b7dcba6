package view

import (
	"context"
	"fmt"
	"sync"

	"github.com/dbrowse/dbrowse/internal/config"
	"github.com/dbrowse/dbrowse/internal/dao"
	"github.com/dbrowse/dbrowse/internal/logger"
	"github.com/dbrowse/dbrowse/internal/mds"
	"github.com/dbrowse/dbrowse/internal/model"
	"github.com/dbrowse/dbrowse/internal/ui"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"github.com/rs/zerolog"
)

const (
	browserPage  = "datasets"
	describePage = "describe"
	storesPage   = "stores"
	helpPage     = "help"
)

// App represents the dbrowse application.
type App struct {
	*tview.Application

	version   string
	cfg       *config.Config
	factory   dao.Factory
	Main      *tview.Pages
	Content   *ui.Pages
	menu      *ui.Menu
	crumbs    *ui.Crumbs
	indicator *ui.StatusIndicator
	flash     *Flash
	help      *Help
	browser   *Browser
	log       zerolog.Logger
	running   bool
	mx        sync.RWMutex
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config, factory dao.Factory, version string) *App {
	a := &App{
		Application: tview.NewApplication(),
		version:     version,
		cfg:         cfg,
		factory:     factory,
		Main:        tview.NewPages(),
		Content:     ui.NewPages(),
		menu:        ui.NewMenu(),
		crumbs:      ui.NewCrumbs(),
		indicator:   ui.NewStatusIndicator(),
		help:        NewHelp(),
		log:         logger.Get("app"),
	}
	a.flash = NewFlash(a.QueueUpdateDraw)
	a.Application.SetInputCapture(a.keyboard)

	return a
}

// Init builds the browser for the active store and lays out the screen.
func (a *App) Init() error {
	if a.cfg.Dbrowse.UI.EnableMouse {
		a.EnableMouse(true)
	}

	b, err := a.newModel()
	if err != nil {
		return err
	}
	a.browser = NewBrowser(a)
	if err := a.browser.Init(b); err != nil {
		return err
	}

	a.Content.Push(browserPage, a.browser)
	a.Content.AddListener(a.frontChanged)
	a.Main.AddPage("main", a.buildLayout(), true, true)
	a.SetRoot(a.Main, true)
	a.refreshChrome()

	return nil
}

// Run starts the first retrieval and the event loop.
func (a *App) Run() error {
	a.mx.Lock()
	a.running = true
	a.mx.Unlock()

	a.browser.Start(a.cfg.RetrievalCount())

	return a.Application.Run()
}

// Stop saves the store session and stops the application.
func (a *App) Stop() {
	a.mx.Lock()
	defer a.mx.Unlock()

	if err := a.cfg.Dbrowse.SaveContext(); err != nil {
		a.log.Warn().Err(err).Msg("unable to save store session")
	}
	a.running = false
	a.Application.Stop()
}

// IsRunning returns whether the application is currently running.
func (a *App) IsRunning() bool {
	a.mx.RLock()
	defer a.mx.RUnlock()
	return a.running
}

// Flash returns the flash message handler.
func (a *App) Flash() *Flash {
	return a.flash
}

// Config returns the application configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Factory returns the store factory.
func (a *App) Factory() dao.Factory {
	a.mx.RLock()
	defer a.mx.RUnlock()
	return a.factory
}

// Indicator returns the connection status bar.
func (a *App) Indicator() *ui.StatusIndicator {
	return a.indicator
}

// QueueUpdateDraw queues a function to be executed on the UI goroutine.
func (a *App) QueueUpdateDraw(fn func()) {
	go a.Application.QueueUpdateDraw(fn)
}

// SwitchStore activates another store profile and restarts browsing with
// the count last used on it.
func (a *App) SwitchStore(name string) error {
	f := a.Factory()
	if f == nil {
		return fmt.Errorf("factory not initialized")
	}
	if name == f.Store() {
		return nil
	}

	if err := a.cfg.Dbrowse.SaveContext(); err != nil {
		a.log.Warn().Err(err).Msg("unable to save store session")
	}
	if err := f.SetStore(name); err != nil {
		return fmt.Errorf("failed to switch store: %w", err)
	}
	ctx, err := a.cfg.Dbrowse.ActivateStore(name)
	if err != nil {
		return err
	}

	b, err := a.newModel()
	if err != nil {
		return err
	}
	n := ctx.Count()
	if n < 1 {
		n = a.cfg.Dbrowse.NumToRetrieve
	}
	a.browser.SetModel(b, ctx.Selection())
	a.browser.Start(n)
	a.refreshChrome()
	a.log.Info().Str("store", name).Int("count", n).Msg("switched store")
	go a.pingStore(name)

	return nil
}

// pingStore checks a freshly activated store and warns when it is down.
func (a *App) pingStore(name string) {
	broker, err := dao.BrokerFor(a.Factory())
	if err != nil {
		return
	}
	p, ok := broker.(dao.Pinger)
	if !ok {
		return
	}
	timeout, err := a.cfg.Dbrowse.GetAPITimeout()
	if err != nil {
		timeout = config.DefaultAPITimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		a.log.Warn().Err(err).Str("store", name).Msg("store ping failed")
		a.flash.Warnf("Store %s is not reachable", name)
	}
}

func (a *App) newModel() (*model.Browser, error) {
	broker, err := dao.BrokerFor(a.Factory())
	if err != nil {
		return nil, fmt.Errorf("no broker for store %q: %w", a.Factory().Store(), err)
	}
	return model.NewBrowser(broker), nil
}

// storeLabel describes the active store for the status bar.
func (a *App) storeLabel() string {
	f := a.Factory()
	if f == nil || f.Client() == nil {
		return ""
	}
	return mds.Describe(f.Client().Config())
}

func (a *App) buildLayout() *tview.Flex {
	top := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(a.indicator, 0, 1, false)
	if !a.cfg.Dbrowse.UI.Menuless {
		top.AddItem(a.menu, 0, 2, false)
	}

	main := tview.NewFlex().SetDirection(tview.FlexRow)
	if a.cfg.Dbrowse.UI.Menuless {
		main.AddItem(top, 1, 0, false)
	} else {
		main.AddItem(top, 6, 0, false)
	}
	main.AddItem(a.Content, 0, 1, true)
	if !a.cfg.Dbrowse.UI.Crumbsless {
		main.AddItem(a.crumbs, 1, 0, false)
	}
	main.AddItem(a.flash, 1, 0, false)

	return main
}

// refreshChrome updates menu, crumbs and store label for the front page.
func (a *App) refreshChrome() {
	a.indicator.SetStore(a.storeLabel())

	a.crumbs.SetCrumbs(append([]string{a.Factory().Store()}, a.Content.Names()...)...)

	hints := ui.MenuHints{
		{Mnemonic: "?", Description: "Help", Visible: true},
		{Mnemonic: "q", Description: "Quit", Visible: true},
	}
	if h, ok := a.Content.CurrentPage().(ui.Hinter); ok {
		hints = append(hints, h.Hints()...)
	}
	a.menu.HydrateMenu(hints)
}

// inject pushes a page on top of the browser.
func (a *App) inject(name string, p tview.Primitive) {
	a.Content.Push(name, p)
}

// back pops the front page, returning to the browser.
func (a *App) back() {
	a.Content.Pop()
}

func (a *App) frontChanged(name string, p tview.Primitive) {
	if name == browserPage {
		p = a.browser.Focused()
	}
	a.SetFocus(p)
	a.refreshChrome()
}

func (a *App) keyboard(evt *tcell.EventKey) *tcell.EventKey {
	if evt.Key() == tcell.KeyCtrlC {
		a.Stop()
		return nil
	}
	if a.browser != nil && a.browser.Editing() {
		return evt
	}

	switch ui.AsKey(evt) {
	case ui.KeyHelp:
		if a.Content.Current() == helpPage {
			a.back()
			return nil
		}
		a.showHelp()
		return nil
	case ui.KeyQ:
		if a.Content.Current() != browserPage {
			a.back()
			return nil
		}
		a.Stop()
		return nil
	}

	return evt
}

func (a *App) showHelp() {
	a.help.SetCloseFn(a.back)
	a.inject(helpPage, a.help)
}

func (a *App) showDescribe(h *dao.Header) {
	d := NewDescribe(h)
	d.SetBackFn(a.back)
	if err := d.Init(); err != nil {
		a.flash.Err(err)
		return
	}
	a.inject(describePage, d)
}

func (a *App) showStores() {
	s := NewStores(a)
	s.SetBackFn(a.back)
	s.Init()
	a.inject(storesPage, s)
}
