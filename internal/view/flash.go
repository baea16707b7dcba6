package view

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// FlashDelay sets the flash auto-clear delay.
const FlashDelay = 5 * time.Second

// FlashLevel represents flash message severity.
type FlashLevel int

const (
	// FlashInfo represents an info message.
	FlashInfo FlashLevel = iota
	// FlashWarn represents a warning message.
	FlashWarn
	// FlashErr represents an error message.
	FlashErr
)

// Flash shows transient messages below the browser.
type Flash struct {
	*tview.TextView

	queue  func(func())
	level  FlashLevel
	msg    string
	cancel context.CancelFunc
	mx     sync.RWMutex
}

// NewFlash creates a new flash. queue runs updates on the UI goroutine; a
// nil queue applies them in place.
func NewFlash(queue func(func())) *Flash {
	if queue == nil {
		queue = func(f func()) { f() }
	}
	f := &Flash{
		TextView: tview.NewTextView(),
		queue:    queue,
	}
	f.SetDynamicColors(true)
	f.SetTextAlign(tview.AlignLeft)
	f.SetBackgroundColor(tcell.ColorDefault)
	f.SetBorderPadding(0, 0, 1, 1)

	return f
}

// Info displays an informational message.
func (f *Flash) Info(msg string) {
	f.setMessage(FlashInfo, msg)
}

// Infof displays a formatted informational message.
func (f *Flash) Infof(format string, args ...any) {
	f.Info(fmt.Sprintf(format, args...))
}

// Warn displays a warning message.
func (f *Flash) Warn(msg string) {
	f.setMessage(FlashWarn, msg)
}

// Warnf displays a formatted warning message.
func (f *Flash) Warnf(format string, args ...any) {
	f.Warn(fmt.Sprintf(format, args...))
}

// Err displays an error message.
func (f *Flash) Err(err error) {
	if err != nil {
		f.setMessage(FlashErr, err.Error())
	}
}

// Errf displays a formatted error message.
func (f *Flash) Errf(format string, args ...any) {
	f.setMessage(FlashErr, fmt.Sprintf(format, args...))
}

// Message returns the current message and its level.
func (f *Flash) Message() (FlashLevel, string) {
	f.mx.RLock()
	defer f.mx.RUnlock()
	return f.level, f.msg
}

// Clear clears the flash message.
func (f *Flash) Clear() {
	f.mx.Lock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.level, f.msg = FlashInfo, ""
	f.mx.Unlock()

	f.queue(func() {
		f.TextView.Clear()
	})
}

func (f *Flash) setMessage(level FlashLevel, msg string) {
	if msg == "" {
		f.Clear()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	f.mx.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.cancel = cancel
	f.level, f.msg = level, msg
	f.mx.Unlock()

	f.queue(func() {
		f.TextView.Clear()
		f.SetTextColor(flashColor(level))
		fmt.Fprintf(f.TextView, "%s %s", flashPrefix(level), tview.Escape(msg))
	})

	go f.autoClear(ctx)
}

func (f *Flash) autoClear(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(FlashDelay):
		f.Clear()
	}
}

func flashColor(level FlashLevel) tcell.Color {
	switch level {
	case FlashWarn:
		return tcell.ColorYellow
	case FlashErr:
		return tcell.ColorRed
	default:
		return tcell.ColorGreen
	}
}

func flashPrefix(level FlashLevel) string {
	switch level {
	case FlashWarn:
		return "[::b]<warn>[::-]"
	case FlashErr:
		return "[::b]<error>[::-]"
	default:
		return "[::b]<info>[::-]"
	}
}
