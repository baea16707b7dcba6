package ui

import (
	"strconv"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// CountFn receives a retrieval count entered in the prompt.
type CountFn func(n int)

// Prompt is the retrieval count input field. It accepts digits only.
type Prompt struct {
	*tview.InputField

	countFn  CountFn
	cancelFn func()
	last     int
}

// NewPrompt returns a new count prompt.
func NewPrompt(label string) *Prompt {
	p := &Prompt{
		InputField: tview.NewInputField(),
	}
	p.SetLabel(label)
	p.SetLabelColor(tcell.ColorAqua)
	p.SetFieldWidth(8)
	p.SetFieldBackgroundColor(tcell.ColorDefault)
	p.SetFieldTextColor(tcell.ColorWhite)
	p.SetBackgroundColor(tcell.ColorDefault)
	p.SetAcceptanceFunc(AcceptCount)
	p.SetDoneFunc(p.done)

	return p
}

// AcceptCount accepts input made of digits only.
func AcceptCount(text string, _ rune) bool {
	if text == "" {
		return true
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(text) <= 6
}

// SetCountFn sets the callback fired when a count is submitted.
func (p *Prompt) SetCountFn(fn CountFn) {
	p.countFn = fn
}

// SetCancelFn sets the callback fired when input is abandoned.
func (p *Prompt) SetCancelFn(fn func()) {
	p.cancelFn = fn
}

// SetCount shows a count without submitting it.
func (p *Prompt) SetCount(n int) {
	p.last = n
	p.SetText(strconv.Itoa(n))
}

// Count returns the last submitted or shown count.
func (p *Prompt) Count() int {
	return p.last
}

// Submit parses the current text and fires the count callback. Empty or
// zero input restores the previous count.
func (p *Prompt) Submit() bool {
	n, err := strconv.Atoi(p.GetText())
	if err != nil || n < 1 {
		p.SetCount(p.last)
		return false
	}
	p.last = n
	if p.countFn != nil {
		p.countFn(n)
	}
	return true
}

func (p *Prompt) done(key tcell.Key) {
	switch key {
	case tcell.KeyEnter, tcell.KeyTab:
		p.Submit()
	case tcell.KeyEsc:
		p.SetCount(p.last)
		if p.cancelFn != nil {
			p.cancelFn()
		}
	}
}
