package dao

import (
	"github.com/dbrowse/dbrowse/internal/mds"
)

// StoreFactory implements the Factory interface using an mds connection.
type StoreFactory struct {
	client mds.Connection
	store  string
}

// NewFactory creates a new StoreFactory with the given client.
func NewFactory(client mds.Connection) *StoreFactory {
	store := ""
	if client != nil {
		store = client.ActiveStore()
	}
	return &StoreFactory{
		client: client,
		store:  store,
	}
}

// Client returns the store connection.
func (f *StoreFactory) Client() mds.Connection {
	return f.client
}

// Store returns the active store profile name.
func (f *StoreFactory) Store() string {
	if f.client != nil {
		return f.client.ActiveStore()
	}
	return f.store
}

// SetStore switches to a different store profile.
func (f *StoreFactory) SetStore(name string) error {
	if f.client == nil {
		return mds.ErrNoConnection
	}
	err := f.client.SwitchStore(name)
	if err == nil {
		f.store = name
	}
	return err
}
