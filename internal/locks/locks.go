// Package locks provides a striped mutex manager keyed by server ID.
//
// Operations on different servers proceed independently; operations on the
// same server hash to the same stripe and are serialized, which turns the
// engine's check-then-act sequences into proper read-modify-write critical
// sections.
package locks

import (
	"sync"

	"github.com/twmb/murmur3"
)

// Manager holds a fixed set of mutex stripes.
type Manager struct {
	stripes []sync.Mutex
	mask    uint64
}

// NewManager creates a manager with at least n stripes, rounded up to the
// next power of two so the stripe index is a cheap mask.
func NewManager(n int) *Manager {
	size := 1
	for size < n {
		size <<= 1
	}
	return &Manager{
		stripes: make([]sync.Mutex, size),
		mask:    uint64(size - 1),
	}
}

func (m *Manager) stripe(key string) *sync.Mutex {
	return &m.stripes[murmur3.StringSum64(key)&m.mask]
}

// Lock acquires the stripe for key, blocking until it is free.
func (m *Manager) Lock(key string) {
	m.stripe(key).Lock()
}

// Unlock releases the stripe for key.
func (m *Manager) Unlock(key string) {
	m.stripe(key).Unlock()
}
