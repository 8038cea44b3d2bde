// Package resolver maps human-readable recipient names to addresses before
// a transaction is encoded.
package resolver

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rotisserie/eris"

	"TxEnvelope/txn"
)

var ErrUnknownName = eris.New("unknown name")

// Static resolves names from a fixed table. Lookups ignore case.
type Static struct {
	names map[string]common.Address
}

var _ txn.NameResolver = (*Static)(nil)

// NewStatic builds a resolver from a name to hex address table, as read from
// the configuration file.
func NewStatic(names map[string]string) (*Static, error) {
	s := &Static{names: make(map[string]common.Address, len(names))}
	for name, hex := range names {
		if !common.IsHexAddress(hex) {
			return nil, eris.Errorf("name %q: invalid address %q", name, hex)
		}
		key := strings.ToLower(name)
		if _, dup := s.names[key]; dup {
			return nil, eris.Errorf("name %q is defined twice", name)
		}
		s.names[key] = common.HexToAddress(hex)
	}
	return s, nil
}

func (s *Static) ResolveName(ctx context.Context, name string) (common.Address, error) {
	if err := ctx.Err(); err != nil {
		return common.Address{}, err
	}
	addr, ok := s.names[strings.ToLower(name)]
	if !ok {
		return common.Address{}, eris.Wrapf(ErrUnknownName, "%q", name)
	}
	return addr, nil
}

// Len is the number of names in the table.
func (s *Static) Len() int { return len(s.names) }

// Cached puts an LRU cache in front of another resolver. Failed lookups are
// not cached.
type Cached struct {
	next  txn.NameResolver
	cache *lru.Cache[string, common.Address]
}

var _ txn.NameResolver = (*Cached)(nil)

func NewCached(next txn.NameResolver, size int) (*Cached, error) {
	cache, err := lru.New[string, common.Address](size)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create name cache")
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) ResolveName(ctx context.Context, name string) (common.Address, error) {
	key := strings.ToLower(name)
	if addr, ok := c.cache.Get(key); ok {
		return addr, nil
	}
	addr, err := c.next.ResolveName(ctx, name)
	if err != nil {
		return common.Address{}, err
	}
	c.cache.Add(key, addr)
	log.Trace("Cached resolved name", "name", name, "address", addr)
	return addr, nil
}

// Purge drops every cached entry.
func (c *Cached) Purge() { c.cache.Purge() }
