package data

import "sync"

// StoreContext holds the per store session state that survives restarts.
type StoreContext struct {
	StoreName     string       `yaml:"store"`
	LastCount     int          `yaml:"lastCount,omitempty"`
	LastSelection string       `yaml:"lastSelection,omitempty"`
	mx            sync.RWMutex `yaml:"-"`
}

// NewStoreContext creates an empty context for the given store.
func NewStoreContext(store string) *StoreContext {
	return &StoreContext{StoreName: store}
}

// Validate ensures the StoreContext has valid settings.
func (c *StoreContext) Validate() {
	c.mx.Lock()
	defer c.mx.Unlock()

	if c.LastCount < 0 {
		c.LastCount = 0
	}
}

// Count returns the last retrieval count, 0 if none was recorded.
func (c *StoreContext) Count() int {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.LastCount
}

// SetCount records the last retrieval count.
func (c *StoreContext) SetCount(n int) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.LastCount = n
}

// Selection returns the uid of the last selected run.
func (c *StoreContext) Selection() string {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.LastSelection
}

// SetSelection records the uid of the selected run.
func (c *StoreContext) SetSelection(uid string) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.LastSelection = uid
}

// ContextName returns the directory name used for this store.
func (c *StoreContext) ContextName() string {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return SanitizeFileName(c.StoreName)
}
