package ui

import (
	"testing"

	"github.com/derailed/tview"
	"github.com/stretchr/testify/assert"
)

func TestPages(t *testing.T) {
	p := NewPages()
	var fronts []string
	p.AddListener(func(name string, _ tview.Primitive) {
		fronts = append(fronts, name)
	})

	root, help := tview.NewBox(), tview.NewBox()
	p.Push("datasets", root)
	p.Push("help", help)
	p.Push("help", help)

	assert.Equal(t, []string{"datasets", "help"}, p.Names())
	assert.Equal(t, "help", p.Current())
	assert.Equal(t, help, p.CurrentPage())

	assert.True(t, p.Pop())
	assert.False(t, p.Pop())
	assert.Equal(t, "datasets", p.Current())
	assert.Equal(t, 1, p.StackSize())
	assert.Equal(t, []string{"datasets", "help", "datasets"}, fronts)
}

func TestMenu_HydrateMenu(t *testing.T) {
	m := NewMenu()
	m.HydrateMenu(MenuHints{
		{Mnemonic: "tab", Description: "Next Pane", Visible: true},
		{Mnemonic: "r", Description: "Re-run", Visible: true},
		{Mnemonic: "x", Description: "Hidden"},
		{Mnemonic: "q", Description: "Quit", Visible: true},
		{Mnemonic: "q", Description: "Back", Visible: true},
	})

	assert.Equal(t, 3, m.GetRowCount())
	assert.Contains(t, m.GetCell(0, 0).Text, "<q>")
	assert.Contains(t, m.GetCell(0, 0).Text, "Quit")
	assert.Contains(t, m.GetCell(1, 0).Text, "<r>")
	assert.Contains(t, m.GetCell(2, 0).Text, "<tab>")
}
