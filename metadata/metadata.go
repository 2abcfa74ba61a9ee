// Package metadata exposes collection-level naming for an ownership
// registry: a display name, a ticker-style symbol, and the per-token
// metadata URI recorded at mint time.
package metadata

import "github.com/deed-xyz/go-deed/registry"

// Collection pairs static collection strings with a live registry.
type Collection struct {
	name   string
	symbol string
	reg    *registry.Registry
}

// New creates a collection view over a registry.
func New(name, symbol string, reg *registry.Registry) *Collection {
	return &Collection{name: name, symbol: symbol, reg: reg}
}

// Name returns the collection display name.
func (c *Collection) Name() string {
	return c.name
}

// Symbol returns the collection symbol.
func (c *Collection) Symbol() string {
	return c.symbol
}

// TokenURI returns the metadata URI for a token. It fails with
// registry.ErrUnknownToken for ids that were never minted.
func (c *Collection) TokenURI(id registry.TokenID) (string, error) {
	return c.reg.TokenURI(id)
}
