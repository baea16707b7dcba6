package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dbrowse/dbrowse/internal/config/data"
	"github.com/dbrowse/dbrowse/internal/mds"
)

// AdhocStore names a store assembled from flags or the environment.
const AdhocStore = "adhoc"

// DemoStore names the in-memory demo store.
const DemoStore = "demo"

// Config is the root configuration for the application.
type Config struct {
	Dbrowse   *Dbrowse `yaml:"dbrowse"`
	settings  mds.ProfileSettings
	store     *mds.StoreConfig
	count     int
	selection string
	mx        sync.RWMutex
}

// NewConfig creates a new Config with the given store profiles.
func NewConfig(settings mds.ProfileSettings) *Config {
	return &Config{
		Dbrowse:  NewDbrowse(),
		settings: settings,
	}
}

// Load loads the configuration from the given path.
// If the file doesn't exist, the current config is kept unless force is set.
func (c *Config) Load(path string, force bool) error {
	c.mx.Lock()
	defer c.mx.Unlock()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if !force {
			return nil
		}
		return fmt.Errorf("config file does not exist: %s", path)
	}

	if err := data.LoadYAML(path, c); err != nil {
		return fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if c.Dbrowse == nil {
		c.Dbrowse = NewDbrowse()
	}
	c.Dbrowse.Validate()

	return nil
}

// Save saves the configuration to the given path.
// If force is false, only saves if the file already exists.
func (c *Config) Save(path string, force bool) error {
	c.mx.RLock()
	defer c.mx.RUnlock()

	if path == "" {
		return fmt.Errorf("no config file path configured")
	}

	if _, err := os.Stat(path); err != nil && !force {
		return nil
	}

	if err := data.SaveYAML(path, c); err != nil {
		return fmt.Errorf("failed to save config to %s: %w", path, err)
	}

	return nil
}

// Refine applies CLI flags, environment and store profiles to determine the
// store to browse and the initial retrieval count.
//
// Store: --demo > --store > config defaultStore > profile default > ad hoc
// flags. Backend, database and host flags override the chosen profile, the
// MDS_* environment sits between the profile and the flags.
// Count: --num > last count of the store > config numToRetrieve.
// Selection: --select > last selection of the store.
func (c *Config) Refine(flags *data.Flags, settings mds.ProfileSettings) error {
	c.mx.Lock()
	defer c.mx.Unlock()

	if c.Dbrowse == nil {
		return fmt.Errorf("config.Dbrowse is nil")
	}
	if settings != nil {
		c.settings = settings
	}

	store, err := c.resolveStore(flags)
	if err != nil {
		return err
	}
	if err := store.Validate(); err != nil {
		return fmt.Errorf("store %q: %w", store.Name, err)
	}

	ctx, err := c.Dbrowse.ActivateStore(store.Name)
	if err != nil {
		return err
	}

	c.Dbrowse.Override(flags)

	count := c.Dbrowse.NumToRetrieve
	if n := ctx.Count(); n > 0 {
		count = n
	}
	if flags != nil && IsIntSet(flags.Num) {
		count = *flags.Num
	}

	selection := ctx.Selection()
	if flags != nil && IsStringSet(flags.Select) {
		selection = *flags.Select
	}

	c.store = store
	c.count = count
	c.selection = selection

	return nil
}

func (c *Config) resolveStore(flags *data.Flags) (*mds.StoreConfig, error) {
	if flags != nil && IsBoolSet(flags.Demo) {
		return &mds.StoreConfig{Name: DemoStore, Backend: mds.BackendDemo}, nil
	}

	name := ""
	switch {
	case flags != nil && IsStringSet(flags.Store):
		name = *flags.Store
	case c.Dbrowse.DefaultStore != "":
		name = c.Dbrowse.DefaultStore
	case c.settings != nil:
		name, _ = c.settings.CurrentStoreName()
	}

	store := &mds.StoreConfig{Name: AdhocStore}
	if name != "" {
		if c.settings == nil {
			return nil, fmt.Errorf("%w: %q", mds.ErrUnknownStore, name)
		}
		profile, err := c.settings.GetStore(name)
		if err != nil {
			return nil, err
		}
		store = profile
		if err := c.settings.SetActiveStore(name); err != nil {
			return nil, err
		}
	}

	if err := store.ApplyEnv(); err != nil {
		return nil, err
	}

	if flags != nil {
		if IsStringSet(flags.Backend) {
			b, err := mds.ParseBackend(*flags.Backend)
			if err != nil {
				return nil, err
			}
			store.Backend = b
		}
		if IsStringSet(flags.Database) {
			store.Database = *flags.Database
		}
		if IsStringSet(flags.Host) {
			store.Host = *flags.Host
		}
	}

	if store.Name == AdhocStore && store.Backend == "" && store.Host == "" && store.Database == "" {
		return nil, errors.New("no store configured: use --store, --demo or --backend/--host/--database")
	}

	return store, nil
}

// StoreConfig returns the store selected by Refine.
func (c *Config) StoreConfig() *mds.StoreConfig {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.store.Clone()
}

// RetrievalCount returns the initial retrieval count selected by Refine.
func (c *Config) RetrievalCount() int {
	c.mx.RLock()
	defer c.mx.RUnlock()

	if c.count < 1 {
		return DefaultNumToRetrieve
	}
	return c.count
}

// Selection returns the dataset uid, or uid prefix, to select once the
// first batch arrives.
func (c *Config) Selection() string {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.selection
}

// Settings returns the store profiles.
func (c *Config) Settings() mds.ProfileSettings {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.settings
}
