// Package di is a small service container with lazily built singletons
// and typed tokens.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry resolves services by name.
type ServiceRegistry interface {
	Get(name string) any
}

// Container is a ServiceRegistry that services can be added to.
type Container interface {
	ServiceRegistry
	Register(name string, value any)
	RegisterFactory(name string, factory func(ServiceRegistry) any)
	Has(name string) bool
}

type entry struct {
	once    sync.Once
	value   any
	factory func(ServiceRegistry) any
}

type container struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewContainer returns an empty container.
func NewContainer() Container {
	return &container{entries: make(map[string]*entry)}
}

// Register stores a ready-made value under name.
func (c *container) Register(name string, value any) {
	e := &entry{value: value}
	e.once.Do(func() {})

	c.mu.Lock()
	c.entries[name] = e
	c.mu.Unlock()
}

// RegisterFactory stores a factory that runs on first Get.
func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	c.entries[name] = &entry{factory: factory}
	c.mu.Unlock()
}

func (c *container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[name]
	return ok
}

// Get resolves name, building it on first use. Unknown names panic:
// a missing registration is a wiring bug.
func (c *container) Get(name string) any {
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("di: service %q is not registered", name))
	}

	e.once.Do(func() {
		e.value = e.factory(c)
	})
	return e.value
}
