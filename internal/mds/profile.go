package mds

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/ini.v1"
)

const storeSectionPrefix = "store "

// ProfileSettings gives access to the named store profiles.
type ProfileSettings interface {
	CurrentStoreName() (string, error)
	StoreNames() []string
	GetStore(name string) (*StoreConfig, error)
	SetActiveStore(name string) error
}

// ProfileManager loads store profiles from an INI file of the form
//
//	[default]
//	store = lab
//
//	[store lab]
//	backend  = postgres
//	database = metadatastore
//	host     = mds.lab.example:5432
type ProfileManager struct {
	path        string
	stores      map[string]*StoreConfig
	activeStore string
	mx          sync.RWMutex
}

// NewProfileManager creates a manager from the given file. A missing file
// yields a manager with no profiles.
func NewProfileManager(path string) (*ProfileManager, error) {
	m := &ProfileManager{
		path:   path,
		stores: make(map[string]*StoreConfig),
	}
	if path == "" {
		return m, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return m, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to access stores file: %w", err)
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load stores file %q: %w", path, err)
	}
	if err := m.load(file); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *ProfileManager) load(file *ini.File) error {
	for _, section := range file.Sections() {
		name := section.Name()
		if !strings.HasPrefix(name, storeSectionPrefix) {
			continue
		}
		storeName := strings.TrimSpace(strings.TrimPrefix(name, storeSectionPrefix))
		if storeName == "" {
			continue
		}

		cfg, err := storeFromSection(storeName, section)
		if err != nil {
			return err
		}
		m.stores[storeName] = cfg
	}

	if def, err := file.GetSection("default"); err == nil && def.HasKey("store") {
		m.activeStore = def.Key("store").String()
	}
	if m.activeStore == "" && len(m.stores) == 1 {
		for name := range m.stores {
			m.activeStore = name
		}
	}

	return nil
}

func storeFromSection(name string, section *ini.Section) (*StoreConfig, error) {
	cfg := &StoreConfig{
		Name:     name,
		Database: section.Key("database").String(),
		Host:     section.Key("host").String(),
		User:     section.Key("user").String(),
		Password: section.Key("password").String(),
		Prefix:   section.Key("prefix").String(),
		Region:   section.Key("region").String(),
	}

	if section.HasKey("backend") {
		b, err := ParseBackend(section.Key("backend").String())
		if err != nil {
			return nil, fmt.Errorf("store %q: %w", name, err)
		}
		cfg.Backend = b
	}

	if section.HasKey("timeout") {
		d, err := time.ParseDuration(section.Key("timeout").String())
		if err != nil {
			return nil, fmt.Errorf("store %q: invalid timeout: %w", name, err)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

// Add registers a store profile, replacing any profile with the same name.
func (m *ProfileManager) Add(cfg *StoreConfig) {
	if cfg == nil || cfg.Name == "" {
		return
	}
	m.mx.Lock()
	defer m.mx.Unlock()

	m.stores[cfg.Name] = cfg.Clone()
	if m.activeStore == "" {
		m.activeStore = cfg.Name
	}
}

// CurrentStoreName returns the active profile name.
func (m *ProfileManager) CurrentStoreName() (string, error) {
	m.mx.RLock()
	defer m.mx.RUnlock()

	if m.activeStore == "" {
		return "", fmt.Errorf("no active store set")
	}
	return m.activeStore, nil
}

// StoreNames returns the sorted profile names.
func (m *ProfileManager) StoreNames() []string {
	m.mx.RLock()
	defer m.mx.RUnlock()

	names := make([]string, 0, len(m.stores))
	for name := range m.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetStore returns a copy of the named profile.
func (m *ProfileManager) GetStore(name string) (*StoreConfig, error) {
	m.mx.RLock()
	defer m.mx.RUnlock()

	cfg, ok := m.stores[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, name)
	}
	return cfg.Clone(), nil
}

// SetActiveStore switches the active profile.
func (m *ProfileManager) SetActiveStore(name string) error {
	m.mx.Lock()
	defer m.mx.Unlock()

	if _, ok := m.stores[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStore, name)
	}
	m.activeStore = name
	return nil
}

// Path returns the file the profiles were loaded from.
func (m *ProfileManager) Path() string {
	return m.path
}
