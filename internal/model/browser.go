package model

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dbrowse/dbrowse/internal/dao"
	"github.com/dbrowse/dbrowse/internal/logger"
	"github.com/dbrowse/dbrowse/internal/mds"
	"github.com/rs/zerolog"
	"github.com/wI2L/jsondiff"
)

// Browser retrieves the most recent run headers and keeps per header summary
// and channel projections for the current batch.
type Browser struct {
	broker dao.Broker
	log    zerolog.Logger

	// fetchMx serializes retrieve-then-rebuild sequences.
	fetchMx sync.Mutex

	count      int
	headers    []*dao.Header
	summaries  map[dao.UID]Summary
	channels   map[dao.UID]ChannelTable
	selected   dao.UID
	selSummary Summary
	selChans   ChannelTable
	status     Status
	lastChange jsondiff.Patch
	listeners  []BrowserListener
	mx         sync.RWMutex
}

// NewBrowser returns a browser reading from the given broker.
func NewBrowser(broker dao.Broker) *Browser {
	return &Browser{
		broker:    broker,
		log:       logger.Get("browser"),
		summaries: make(map[dao.UID]Summary),
		channels:  make(map[dao.UID]ChannelTable),
		status:    Status{Message: "Not connected"},
	}
}

// SetLogger replaces the component logger.
func (b *Browser) SetLogger(l zerolog.Logger) {
	b.mx.Lock()
	defer b.mx.Unlock()
	b.log = l
}

// AddListener registers a browser listener.
func (b *Browser) AddListener(l BrowserListener) {
	b.mx.Lock()
	defer b.mx.Unlock()
	b.listeners = append(b.listeners, l)
}

// RemoveListener unregisters a browser listener.
func (b *Browser) RemoveListener(l BrowserListener) {
	b.mx.Lock()
	defer b.mx.Unlock()

	for i, listener := range b.listeners {
		if listener == l {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

// SetRetrievalCount fetches the n most recent headers and rebuilds both
// projections for the new batch.
//
// Store connection failures do not surface as errors. They leave the batch
// untouched, mark the status inactive and return nil. Other failures are
// returned and change nothing.
func (b *Browser) SetRetrievalCount(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCount, n)
	}

	b.fetchMx.Lock()
	defer b.fetchMx.Unlock()

	b.mx.Lock()
	b.count = n
	log := b.log
	b.mx.Unlock()

	headers, err := b.broker.FetchLast(ctx, n)
	if err != nil {
		var se *mds.StoreError
		if !errors.As(err, &se) {
			return fmt.Errorf("retrieve last %d headers: %w", n, err)
		}

		status := Status{Message: failureMessage(se)}
		log.Warn().Err(err).Int("requested", n).Str("kind", se.Kind.String()).Msg("retrieval failed")

		b.mx.Lock()
		b.status = status
		b.mx.Unlock()
		b.notifyStatusChanged(status)

		return nil
	}

	summaries := make(map[dao.UID]Summary, len(headers))
	channels := make(map[dao.UID]ChannelTable, len(headers))
	for _, h := range headers {
		summaries[h.UID] = h.Summary()
		channels[h.UID] = IndexChannels(h)
	}
	status := Status{
		Active:  true,
		Message: fmt.Sprintf("Requested: %d. Found: %d", n, len(headers)),
	}

	b.mx.RLock()
	prev := b.summaries
	b.mx.RUnlock()

	patch, err := jsondiff.Compare(prev, summaries)
	if err != nil {
		log.Debug().Err(err).Msg("unable to diff summaries")
		patch = nil
	}

	b.mx.Lock()
	b.headers = headers
	b.summaries = summaries
	b.channels = channels
	b.status = status
	b.lastChange = patch
	stale := b.selected != "" && summaries[b.selected] == nil
	b.mx.Unlock()

	log.Info().Int("requested", n).Int("found", len(headers)).Msg("retrieved run headers")
	if len(patch) > 0 {
		log.Debug().Int("operations", len(patch)).Str("patch", patch.String()).Msg("summary index changed")
	}
	if stale {
		log.Debug().Msg("selection is not part of the new batch")
	}

	b.notifyHeadersChanged(headers)
	b.notifyStatusChanged(status)

	return nil
}

// Select publishes the cached projections of the given header. An empty uid,
// or any uid while no headers are loaded, clears the selection.
func (b *Browser) Select(uid dao.UID) error {
	b.mx.Lock()

	if uid == "" || len(b.headers) == 0 {
		b.selected, b.selSummary, b.selChans = "", nil, nil
		b.mx.Unlock()
		b.notifySelectionChanged("", nil, nil)
		return nil
	}

	summary, ok := b.summaries[uid]
	if !ok {
		b.mx.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownDataset, uid)
	}
	chans := b.channels[uid]
	b.selected, b.selSummary, b.selChans = uid, summary, chans
	b.mx.Unlock()

	b.notifySelectionChanged(uid, summary, chans)
	return nil
}

// Count returns the last requested retrieval count.
func (b *Browser) Count() int {
	b.mx.RLock()
	defer b.mx.RUnlock()
	return b.count
}

// Headers returns the current batch, newest first.
func (b *Browser) Headers() []*dao.Header {
	b.mx.RLock()
	defer b.mx.RUnlock()

	hh := make([]*dao.Header, len(b.headers))
	copy(hh, b.headers)
	return hh
}

// Selected returns the uid of the selected header, or "".
func (b *Browser) Selected() dao.UID {
	b.mx.RLock()
	defer b.mx.RUnlock()
	return b.selected
}

// SelectionStale reports whether the selected header left the current batch.
func (b *Browser) SelectionStale() bool {
	b.mx.RLock()
	defer b.mx.RUnlock()

	if b.selected == "" {
		return false
	}
	_, ok := b.summaries[b.selected]
	return !ok
}

// Summary returns the summary projection of the selected header.
func (b *Browser) Summary() Summary {
	b.mx.RLock()
	defer b.mx.RUnlock()
	return b.selSummary
}

// Channels returns the channel projection of the selected header.
func (b *Browser) Channels() ChannelTable {
	b.mx.RLock()
	defer b.mx.RUnlock()
	return b.selChans
}

// SummaryIndex returns the cached summaries of the current batch.
func (b *Browser) SummaryIndex() map[dao.UID]Summary {
	b.mx.RLock()
	defer b.mx.RUnlock()

	out := make(map[dao.UID]Summary, len(b.summaries))
	for k, v := range b.summaries {
		out[k] = v
	}
	return out
}

// ChannelIndex returns the cached channel tables of the current batch.
func (b *Browser) ChannelIndex() map[dao.UID]ChannelTable {
	b.mx.RLock()
	defer b.mx.RUnlock()

	out := make(map[dao.UID]ChannelTable, len(b.channels))
	for k, v := range b.channels {
		out[k] = v
	}
	return out
}

// Status returns the outcome of the most recent retrieval.
func (b *Browser) Status() Status {
	b.mx.RLock()
	defer b.mx.RUnlock()
	return b.status
}

// LastChange returns the JSON patch from the previous summary index to the
// current one. It is empty when a retrieval returned the same batch.
func (b *Browser) LastChange() jsondiff.Patch {
	b.mx.RLock()
	defer b.mx.RUnlock()
	return b.lastChange
}

func failureMessage(se *mds.StoreError) string {
	if se.Kind == mds.KindConnectionLost {
		return fmt.Sprintf("Connection to database [[%s]] on [[%s]] was lost", se.Database, se.Host)
	}
	return fmt.Sprintf("Database [[%s]] not available on [[%s]]", se.Database, se.Host)
}

func (b *Browser) snapshotListeners() []BrowserListener {
	b.mx.RLock()
	defer b.mx.RUnlock()

	listeners := make([]BrowserListener, len(b.listeners))
	copy(listeners, b.listeners)
	return listeners
}

func (b *Browser) notifyHeadersChanged(headers []*dao.Header) {
	for _, l := range b.snapshotListeners() {
		l.HeadersChanged(headers)
	}
}

func (b *Browser) notifySelectionChanged(uid dao.UID, summary Summary, chans ChannelTable) {
	for _, l := range b.snapshotListeners() {
		l.SelectionChanged(uid, summary, chans)
	}
}

func (b *Browser) notifyStatusChanged(s Status) {
	for _, l := range b.snapshotListeners() {
		l.StatusChanged(s)
	}
}
