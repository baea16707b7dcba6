package dao

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/dbrowse/dbrowse/internal/mds"
)

// Accessors maps backends to their broker implementations.
type Accessors map[mds.Backend]Accessor

// accessors holds all registered brokers.
var accessors = make(Accessors)

// RegisterBroker adds a broker to the global registry.
func RegisterBroker(b mds.Backend, accessor Accessor) {
	accessors[b] = accessor
}

// BrokerFor returns a new initialized broker for the factory's active store.
func BrokerFor(f Factory) (Accessor, error) {
	if f == nil || f.Client() == nil {
		return nil, mds.ErrNoConnection
	}
	backend := f.Client().Config().Backend

	accessor, ok := accessors[backend]
	if !ok {
		return nil, fmt.Errorf("%w: no broker for %q", mds.ErrUnknownBackend, backend)
	}

	// Create new instance using reflection
	accessorType := reflect.TypeOf(accessor)
	if accessorType.Kind() == reflect.Ptr {
		accessorType = accessorType.Elem()
	}
	newInstance := reflect.New(accessorType).Interface()

	acc, ok := newInstance.(Accessor)
	if !ok {
		return nil, fmt.Errorf("failed to create broker for: %s", backend)
	}

	acc.Init(f, backend)
	return acc, nil
}

// ListBrokers returns all registered backends.
func ListBrokers() []mds.Backend {
	backends := make([]mds.Backend, 0, len(accessors))
	for b := range accessors {
		backends = append(backends, b)
	}
	sort.Slice(backends, func(i, j int) bool { return backends[i] < backends[j] })
	return backends
}
