package app

import (
	"sort"
	"strings"
	"sync"
)

// Factory builds an uninitialized connector for (chain, network).
// It must not perform I/O.
type Factory func(chain, network string) (*Connector, error)

type instanceKey struct {
	chain   string
	network string
}

// Registry hands out one connector per (chain, network).
type Registry struct {
	mu        sync.Mutex
	factory   Factory
	instances map[instanceKey]*Connector
}

// NewRegistry creates an empty registry.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory:   factory,
		instances: make(map[instanceKey]*Connector),
	}
}

// GetInstance returns the memoized connector for the key, building it on
// first use. Keys are case-insensitive.
func (r *Registry) GetInstance(chain, network string) (*Connector, error) {
	key := instanceKey{chain: strings.ToLower(chain), network: strings.ToLower(network)}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.instances[key]; ok {
		return c, nil
	}

	c, err := r.factory(key.chain, key.network)
	if err != nil {
		return nil, err
	}
	r.instances[key] = c
	return c, nil
}

// Instances returns every connector built so far, ordered by name.
func (r *Registry) Instances() []*Connector {
	r.mu.Lock()
	out := make([]*Connector, 0, len(r.instances))
	for _, c := range r.instances {
		out = append(out, c)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
