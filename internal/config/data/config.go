package data

import "sync"

// Config represents a store specific configuration loaded from disk.
// This is the data structure for ~/.local/share/dbrowse/stores/{store}/config.yaml
type Config struct {
	Context *StoreContext `yaml:"dbrowse"`
	mx      sync.RWMutex  `yaml:"-"`
}

// NewConfig creates a new Config with the given store context.
func NewConfig(ctx *StoreContext) *Config {
	return &Config{
		Context: ctx,
	}
}

// GetContext returns the store context, thread-safe.
func (c *Config) GetContext() *StoreContext {
	c.mx.RLock()
	defer c.mx.RUnlock()

	return c.Context
}

// SetContext sets the store context, thread-safe.
func (c *Config) SetContext(ctx *StoreContext) {
	c.mx.Lock()
	defer c.mx.Unlock()

	c.Context = ctx
}

// Validate ensures the Config has valid settings.
func (c *Config) Validate() {
	c.mx.Lock()
	defer c.mx.Unlock()

	if c.Context != nil {
		c.Context.Validate()
	}
}
