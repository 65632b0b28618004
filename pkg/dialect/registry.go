package dialect

import (
	"fmt"
	"sort"
	"sync"

	"github.com/quarrylabs/quarry/pkg/core"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[core.Driver]Adapter)
)

// Register adds an adapter to the registry.
// Called by driver implementations in their init() functions; the set is
// fixed once imports have run.
func Register(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[a.Driver()] = a
}

// Get retrieves an adapter by driver.
func Get(driver core.Driver) (Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := registry[driver]
	return a, ok
}

// ForDriver resolves the adapter for a driver. Unknown drivers fail loudly
// with an UnsupportedDriverError listing what is registered; there is no
// silent default.
func ForDriver(driver core.Driver) (Adapter, error) {
	if driver == "" {
		return nil, fmt.Errorf("driver not specified")
	}

	a, ok := Get(driver)
	if !ok {
		return nil, &UnsupportedDriverError{
			Driver:    driver,
			Available: Drivers(),
		}
	}
	return a, nil
}

// Drivers returns all registered drivers (sorted).
func Drivers() []core.Driver {
	registryMu.RLock()
	defer registryMu.RUnlock()
	drivers := make([]core.Driver, 0, len(registry))
	for d := range registry {
		drivers = append(drivers, d)
	}
	sort.Slice(drivers, func(i, j int) bool { return drivers[i] < drivers[j] })
	return drivers
}

// IsRegistered checks if a driver has an adapter.
func IsRegistered(driver core.Driver) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[driver]
	return ok
}

// UnsupportedDriverError is returned when no adapter serves the requested driver.
type UnsupportedDriverError struct {
	Driver    core.Driver
	Available []core.Driver
}

func (e *UnsupportedDriverError) Error() string {
	return fmt.Sprintf("unsupported driver %q\nAvailable drivers: %v\nHint: check the connection's driver in quarry.yaml", e.Driver, e.Available)
}
