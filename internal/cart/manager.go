package cart

import "sync"

// Manager hands out one Cart per device key, hydrating each from the
// store on first access. Within a session a single device's cart has
// one logical writer; the mutex only guards the map itself.
type Manager struct {
	store     Store
	observers []Observer

	mu    sync.Mutex
	carts map[string]*Cart
}

// NewManager creates a manager over the given store. Observers are
// attached to every cart it creates.
func NewManager(store Store, observers ...Observer) *Manager {
	return &Manager{
		store:     store,
		observers: observers,
		carts:     make(map[string]*Cart),
	}
}

// Cart returns the cart for a device key, creating and hydrating it on
// first use.
func (m *Manager) Cart(deviceKey string) *Cart {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.carts[deviceKey]; ok {
		return c
	}
	c := New(deviceKey, m.store, m.observers...)
	m.carts[deviceKey] = c
	return c
}
