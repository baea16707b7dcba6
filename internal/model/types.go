package model

import (
	"errors"

	"github.com/dbrowse/dbrowse/internal/dao"
	"github.com/dbrowse/dbrowse/internal/model1"
)

var (
	// ErrInvalidCount is returned for retrieval counts below one.
	ErrInvalidCount = errors.New("retrieval count must be at least 1")

	// ErrUnknownDataset is returned when selecting a header outside the current batch.
	ErrUnknownDataset = errors.New("dataset not in current batch")
)

// Summary is the flat field projection of one header.
type Summary map[string]any

// ChannelTable lists the channels of one header. Row 0 is ChannelTitle.
type ChannelTable [][]string

// Status reports the outcome of the most recent retrieval.
type Status struct {
	Active  bool
	Message string
}

// BrowserListener is notified of browser state changes. Calls happen on the
// goroutine that changed the state, after the change is visible.
type BrowserListener interface {
	// HeadersChanged fires after a successful retrieval.
	HeadersChanged([]*dao.Header)

	// SelectionChanged fires after Select. uid is empty when the selection was cleared.
	SelectionChanged(uid dao.UID, summary Summary, channels ChannelTable)

	// StatusChanged fires after every retrieval that reached the store.
	StatusChanged(Status)
}

// TableListener represents a table model listener.
type TableListener interface {
	// TableNoData notifies listener no data was found.
	TableNoData(*model1.TableData)

	// TableDataChanged notifies the model data changed.
	TableDataChanged(*model1.TableData)

	// TableLoadFailed notifies the load failed.
	TableLoadFailed(error)
}
