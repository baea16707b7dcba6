package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/dbrowse/dbrowse/internal/config/data"
)

// DefaultAPITimeout bounds one retrieval.
const DefaultAPITimeout = 30 * time.Second

// Dbrowse represents the dbrowse global configuration.
type Dbrowse struct {
	NumToRetrieve int         `yaml:"numToRetrieve"`
	APITimeout    string      `yaml:"apiTimeout"`
	DefaultStore  string      `yaml:"defaultStore,omitempty"`
	UI            data.UI     `yaml:"ui"`
	Logger        data.Logger `yaml:"logger"`

	activeStore  string
	activeConfig *data.Config
	dir          *data.Dir
	mx           sync.RWMutex
}

// NewDbrowse creates a Dbrowse with default settings.
func NewDbrowse() *Dbrowse {
	return &Dbrowse{
		NumToRetrieve: DefaultNumToRetrieve,
		APITimeout:    DefaultAPITimeout.String(),
		Logger:        data.Logger{Level: data.DefaultLogLevel},
		dir:           data.NewDir(),
	}
}

// Validate ensures Dbrowse has valid settings.
func (d *Dbrowse) Validate() {
	d.mx.Lock()
	defer d.mx.Unlock()

	if d.NumToRetrieve < 1 {
		d.NumToRetrieve = DefaultNumToRetrieve
	}
	if d.APITimeout == "" {
		d.APITimeout = DefaultAPITimeout.String()
	}
	if d.Logger.Level == "" {
		d.Logger.Level = data.DefaultLogLevel
	}
	if d.dir == nil {
		d.dir = data.NewDir()
	}
}

// SetDir points the per store state at another directory.
func (d *Dbrowse) SetDir(dir *data.Dir) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.dir = dir
}

// ActiveStore returns the currently active store name.
func (d *Dbrowse) ActiveStore() string {
	d.mx.RLock()
	defer d.mx.RUnlock()
	return d.activeStore
}

// ActiveContext returns the session state of the active store.
func (d *Dbrowse) ActiveContext() *data.StoreContext {
	d.mx.RLock()
	defer d.mx.RUnlock()

	if d.activeConfig == nil {
		return nil
	}
	return d.activeConfig.GetContext()
}

// ActivateStore makes a store active and loads its session state.
func (d *Dbrowse) ActivateStore(store string) (*data.StoreContext, error) {
	if store == "" {
		return nil, fmt.Errorf("store cannot be empty")
	}

	d.mx.Lock()
	defer d.mx.Unlock()

	if d.dir == nil {
		d.dir = data.NewDir()
	}
	cfg, err := d.dir.Load(store)
	if err != nil {
		return nil, fmt.Errorf("failed to load state for store %q: %w", store, err)
	}

	d.activeStore = store
	d.activeConfig = cfg

	return cfg.GetContext(), nil
}

// SaveContext writes the active store's session state.
func (d *Dbrowse) SaveContext() error {
	d.mx.RLock()
	dir, cfg := d.dir, d.activeConfig
	d.mx.RUnlock()

	if cfg == nil {
		return nil
	}
	return dir.Save(cfg)
}

// Override applies CLI flag overrides to the configuration.
func (d *Dbrowse) Override(flags *data.Flags) {
	if flags == nil {
		return
	}

	d.mx.Lock()
	defer d.mx.Unlock()

	if IsIntSet(flags.Num) {
		d.NumToRetrieve = *flags.Num
	}
	if IsStringSet(flags.Store) {
		d.DefaultStore = *flags.Store
	}
	if IsStringSet(flags.LogLevel) {
		d.Logger.Level = *flags.LogLevel
	}
	if IsStringSet(flags.LogFile) {
		d.Logger.File = *flags.LogFile
	}
}

// LogFile returns the configured log file, AppLogFile when unset.
func (d *Dbrowse) LogFile() string {
	d.mx.RLock()
	defer d.mx.RUnlock()

	if d.Logger.File != "" {
		return d.Logger.File
	}
	return AppLogFile
}

// LogLevel returns the configured log level.
func (d *Dbrowse) LogLevel() string {
	d.mx.RLock()
	defer d.mx.RUnlock()
	return d.Logger.Level
}

// GetAPITimeout returns the parsed API timeout duration.
func (d *Dbrowse) GetAPITimeout() (time.Duration, error) {
	d.mx.RLock()
	timeoutStr := d.APITimeout
	d.mx.RUnlock()

	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return 0, fmt.Errorf("invalid API timeout %q: %w", timeoutStr, err)
	}

	return timeout, nil
}
