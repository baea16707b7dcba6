package dao

import (
	"context"
	"fmt"
	"sync"

	"github.com/dbrowse/dbrowse/internal/logger"
	"github.com/dbrowse/dbrowse/internal/mds"
	"github.com/rs/zerolog"
)

// StoreResource is the base struct that all brokers embed.
// It provides factory access, backend identification, and caching.
type StoreResource struct {
	Factory
	backend   mds.Backend
	cache     *DocumentCache
	connected bool
	log       zerolog.Logger
	mx        sync.RWMutex
}

// Init initializes the StoreResource with factory and backend.
func (r *StoreResource) Init(f Factory, b mds.Backend) {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.Factory = f
	r.backend = b
	r.log = logger.Get("broker").With().Str("backend", string(b)).Logger()
}

// Backend returns the backend this broker serves.
func (r *StoreResource) Backend() mds.Backend {
	r.mx.RLock()
	defer r.mx.RUnlock()
	return r.backend
}

// getFactory returns the factory in a thread-safe manner.
func (r *StoreResource) getFactory() Factory {
	r.mx.RLock()
	defer r.mx.RUnlock()
	return r.Factory
}

// getCache returns the document cache in a thread-safe manner.
func (r *StoreResource) getCache() *DocumentCache {
	r.mx.RLock()
	defer r.mx.RUnlock()
	return r.cache
}

// SetCache sets the document cache (typically called during initialization).
func (r *StoreResource) SetCache(cache *DocumentCache) {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.cache = cache
}

func (r *StoreResource) logger() zerolog.Logger {
	r.mx.RLock()
	defer r.mx.RUnlock()
	return r.log
}

// client returns the store connection.
func (r *StoreResource) client() (mds.Connection, error) {
	f := r.getFactory()
	if f == nil || f.Client() == nil {
		return nil, mds.ErrNoConnection
	}
	return f.Client(), nil
}

// markConnected records that a store call went through.
func (r *StoreResource) markConnected() {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.connected = true
}

func (r *StoreResource) wasConnected() bool {
	r.mx.RLock()
	defer r.mx.RUnlock()
	return r.connected
}

// classify turns driver errors into store errors for the active store.
func (r *StoreResource) classify(err error, op string) error {
	if err == nil {
		return nil
	}
	c, cerr := r.client()
	if cerr != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	connected := r.wasConnected() || c.ConnectionOK()
	return mds.Classify(err, c.Config(), op, connected)
}

// Ping checks the store through the connection.
func (r *StoreResource) Ping(ctx context.Context) error {
	c, err := r.client()
	if err != nil {
		return err
	}
	if !c.CheckConnectivity(ctx) {
		cfg := c.Config()
		return mds.NewStoreError(mds.KindUnavailable, cfg, "ping", nil)
	}
	r.markConnected()
	return nil
}

// validCount rejects non-positive retrieval counts.
func validCount(n int) error {
	if n < 1 {
		return fmt.Errorf("invalid retrieval count %d", n)
	}
	return nil
}
