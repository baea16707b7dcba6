package ui

import (
	"fmt"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// Status indicator marks.
const (
	IndicatorActive   = "●"
	IndicatorInactive = "○"
)

// StatusIndicator shows the connection state and message of the last
// retrieval.
type StatusIndicator struct {
	*tview.TextView

	active  bool
	message string
	store   string
}

// NewStatusIndicator creates a new status indicator.
func NewStatusIndicator() *StatusIndicator {
	s := &StatusIndicator{
		TextView: tview.NewTextView(),
		message:  "Not connected",
	}

	s.SetDynamicColors(true)
	s.SetBackgroundColor(tcell.ColorDefault)
	s.SetTextColor(tcell.ColorWhite)
	s.SetBorderPadding(0, 0, 1, 1)
	s.refresh()

	return s
}

// SetStore sets the store description shown next to the status.
func (s *StatusIndicator) SetStore(store string) {
	s.store = store
	s.refresh()
}

// SetStatus updates the indicator.
func (s *StatusIndicator) SetStatus(active bool, msg string) {
	s.active, s.message = active, msg
	s.refresh()
}

// IsActive returns whether the last retrieval reached the store.
func (s *StatusIndicator) IsActive() bool {
	return s.active
}

// Message returns the displayed status message.
func (s *StatusIndicator) Message() string {
	return s.message
}

func (s *StatusIndicator) refresh() {
	color, mark := "red", IndicatorInactive
	if s.active {
		color, mark = "green", IndicatorActive
	}

	text := fmt.Sprintf("[%s::b]%s[-::-] %s", color, mark, tview.Escape(s.message))
	if s.store != "" {
		text += fmt.Sprintf("  [gray::]%s[-::]", tview.Escape(s.store))
	}
	s.TextView.SetText(text)
}
