package asset

import (
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/balancer-connector/internal/apperror"
)

// Registry holds the tokens of one chain, keyed by checksummed address.
type Registry struct {
	chainID   uint64
	byAddress map[common.Address]*Token
	bySymbol  map[string]*Token
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry for chainID.
func NewRegistry(chainID uint64) *Registry {
	return &Registry{
		chainID:   chainID,
		byAddress: make(map[common.Address]*Token),
		bySymbol:  make(map[string]*Token),
	}
}

// NewRegistryFromRecords builds a registry from a token list. Any invalid
// record fails the whole list.
func NewRegistryFromRecords(chainID uint64, records []TokenRecord) (*Registry, error) {
	r := NewRegistry(chainID)
	for _, rec := range records {
		if err := r.Add(rec); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ChainID returns the chain this registry serves.
func (r *Registry) ChainID() uint64 {
	return r.chainID
}

// Add validates rec and stores it. A later record with the same address
// replaces the earlier one.
func (r *Registry) Add(rec TokenRecord) error {
	t, err := NewToken(r.chainID, rec)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byAddress[t.address]; ok {
		delete(r.bySymbol, strings.ToUpper(prev.symbol))
	}
	r.byAddress[t.address] = t
	r.bySymbol[strings.ToUpper(t.symbol)] = t
	return nil
}

// Get returns the token at addr.
func (r *Registry) Get(addr common.Address) (*Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byAddress[addr]
	return t, ok
}

// Lookup resolves a symbol or hex address (0x optional).
func (r *Registry) Lookup(ref string) (*Token, error) {
	if common.IsHexAddress(ref) {
		addr, _ := ParseAddress(ref)
		if t, ok := r.Get(addr); ok {
			return t, nil
		}
		return nil, apperror.New(apperror.CodeTokenNotFound, apperror.WithContext(addr.Hex()))
	}

	r.mu.RLock()
	t, ok := r.bySymbol[strings.ToUpper(strings.TrimSpace(ref))]
	r.mu.RUnlock()
	if !ok {
		return nil, apperror.New(apperror.CodeTokenNotFound, apperror.WithContext(ref))
	}
	return t, nil
}

// All returns every token, sorted by symbol.
func (r *Registry) All() []*Token {
	r.mu.RLock()
	result := make([]*Token, 0, len(r.byAddress))
	for _, t := range r.byAddress {
		result = append(result, t)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].symbol < result[j].symbol })
	return result
}

// Count returns the number of registered tokens.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byAddress)
}
