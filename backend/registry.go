// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a new executor instance.
type Factory func() Executor

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register registers an executor factory under name. It is typically
// called from init() in executor packages.
//
// Register panics if factory is nil or name is already registered, so
// duplicate registrations surface during program initialization.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("backend: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("backend: Register called twice for " + name)
	}
	factories[name] = factory
}

// Unregister removes an executor from the registry. Used by tests.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Get creates a new executor by name.
func Get(name string) (Executor, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (forgotten import?)", ErrNotRegistered, name)
	}
	return factory(), nil
}

// MustGet is like Get but panics on error.
func MustGet(name string) Executor {
	e, err := Get(name)
	if err != nil {
		panic(err)
	}
	return e
}

// Available returns the registered executor names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}
