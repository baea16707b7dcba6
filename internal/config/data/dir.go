package data

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// defaultStoresDir is set by the config package during initialization.
// This avoids a circular import between data and config packages.
var defaultStoresDir string

// SetDefaultStoresDir sets the default stores directory.
// This should be called by the config package during initialization.
func SetDefaultStoresDir(dir string) {
	defaultStoresDir = dir
}

// Dir manages the per store configuration directory structure.
type Dir struct {
	root string
	mx   sync.RWMutex
}

// NewDir creates a new Dir using the default stores directory.
// Note: SetDefaultStoresDir must be called before using NewDir.
func NewDir() *Dir {
	return &Dir{
		root: defaultStoresDir,
	}
}

// NewDirAt creates a new Dir at the specified root path.
func NewDirAt(root string) *Dir {
	return &Dir{
		root: root,
	}
}

// StorePath returns the path to a store's configuration directory.
// Returns: {root}/{store}/
func (d *Dir) StorePath(store string) string {
	d.mx.RLock()
	defer d.mx.RUnlock()

	return filepath.Join(d.root, SanitizeFileName(store))
}

// ConfigPath returns the path to a store's config.yaml file.
// Returns: {root}/{store}/config.yaml
func (d *Dir) ConfigPath(store string) string {
	return filepath.Join(d.StorePath(store), "config.yaml")
}

// Load loads the configuration for a store.
// Creates a new default config if the file doesn't exist.
func (d *Dir) Load(store string) (*Config, error) {
	if store == "" {
		return nil, errors.New("store name cannot be empty")
	}

	ctx := NewStoreContext(store)
	cfg := NewConfig(ctx)

	if err := LoadYAML(d.ConfigPath(store), ctx); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to load store config: %w", err)
	}
	// The file may name a different store after a manual copy.
	ctx.StoreName = store
	ctx.Validate()

	return cfg, nil
}

// Save saves the configuration for a store.
func (d *Dir) Save(cfg *Config) error {
	if cfg == nil || cfg.GetContext() == nil {
		return fmt.Errorf("cannot save nil config or context")
	}
	ctx := cfg.GetContext()

	if _, err := EnsureDirPath(d.StorePath(ctx.StoreName), 0700); err != nil {
		return fmt.Errorf("failed to ensure store directory: %w", err)
	}

	ctx.mx.RLock()
	defer ctx.mx.RUnlock()
	if err := SaveYAML(d.ConfigPath(ctx.StoreName), ctx); err != nil {
		return fmt.Errorf("failed to save store config: %w", err)
	}

	return nil
}

// ListStores returns the names of all stores that have saved configs.
func (d *Dir) ListStores() ([]string, error) {
	d.mx.RLock()
	root := d.root
	d.mx.RUnlock()

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read stores directory: %w", err)
	}

	var stores []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		configPath := filepath.Join(root, entry.Name(), "config.yaml")
		if _, err := os.Stat(configPath); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		stores = append(stores, entry.Name())
	}
	sort.Strings(stores)

	return stores, nil
}
