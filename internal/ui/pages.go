package ui

import (
	"github.com/derailed/tview"
)

// PageListener is told about the new front page after a push or a pop.
type PageListener func(name string, p tview.Primitive)

type page struct {
	name string
	p    tview.Primitive
}

// Pages keeps a stack of named pages. The bottom page is never popped.
type Pages struct {
	*tview.Pages

	stack     []page
	listeners []PageListener
}

// NewPages returns an empty page stack.
func NewPages() *Pages {
	return &Pages{Pages: tview.NewPages()}
}

// AddListener registers a front page listener.
func (p *Pages) AddListener(l PageListener) {
	p.listeners = append(p.listeners, l)
}

// Push shows a page on top of the stack. Pushing the front page again is a
// no-op.
func (p *Pages) Push(name string, prim tview.Primitive) {
	if p.Current() == name {
		return
	}
	p.stack = append(p.stack, page{name: name, p: prim})
	p.AddPage(name, prim, true, true)
	p.SwitchToPage(name)
	p.fireChanged()
}

// Pop removes the front page. It returns false when only the bottom page
// is left.
func (p *Pages) Pop() bool {
	if len(p.stack) <= 1 {
		return false
	}
	top := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	p.RemovePage(top.name)
	p.SwitchToPage(p.stack[len(p.stack)-1].name)
	p.fireChanged()

	return true
}

// Current returns the front page name.
func (p *Pages) Current() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1].name
}

// CurrentPage returns the front page.
func (p *Pages) CurrentPage() tview.Primitive {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1].p
}

// Names returns the page names, bottom first.
func (p *Pages) Names() []string {
	nn := make([]string, 0, len(p.stack))
	for _, pg := range p.stack {
		nn = append(nn, pg.name)
	}
	return nn
}

// StackSize returns the stack depth.
func (p *Pages) StackSize() int {
	return len(p.stack)
}

func (p *Pages) fireChanged() {
	name, prim := p.Current(), p.CurrentPage()
	for _, l := range p.listeners {
		l(name, prim)
	}
}
