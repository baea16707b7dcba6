package ui

import (
	"unicode/utf8"

	"github.com/fvbommel/sortorder"

	"github.com/dbrowse/dbrowse/internal/model"
	"github.com/dbrowse/dbrowse/internal/model1"
)

// Tabular is the data source behind a Table.
type Tabular interface {
	Empty() bool
	RowCount() int
	Peek() *model1.TableData
	AddListener(model.TableListener)
	RemoveListener(model.TableListener)
}

// MenuHint represents a keyboard mnemonic.
type MenuHint struct {
	Mnemonic    string
	Description string
	Visible     bool
}

// IsBlank checks if menu hint is a placeholder.
func (m MenuHint) IsBlank() bool {
	return m.Mnemonic == "" && m.Description == "" && !m.Visible
}

func (m MenuHint) named() bool {
	return utf8.RuneCountInString(m.Mnemonic) > 1
}

// MenuHints represents a collection of hints.
type MenuHints []MenuHint

func (h MenuHints) Len() int      { return len(h) }
func (h MenuHints) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

// Less orders single key mnemonics before named keys (tab, ctrl-t...), each
// group in natural order.
func (h MenuHints) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.named() != b.named() {
		return !a.named()
	}
	if a.Mnemonic == b.Mnemonic {
		return a.Description < b.Description
	}
	return sortorder.NaturalLess(a.Mnemonic, b.Mnemonic)
}

// Hinter represent a menu mnemonic provider.
type Hinter interface {
	Hints() MenuHints
}

// QueueFunc runs a function on the UI goroutine.
type QueueFunc func(func())
