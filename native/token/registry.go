package token

import "sync"

// Resolver maps token symbols to their ledger implementations. Auction
// entries persist the symbol of the token they hold custody of and resolve it
// at call time.
type Resolver interface {
	Token(symbol string) Token
}

// Registry is an in-memory Resolver.
type Registry struct {
	mu     sync.Mutex
	tokens map[string]Token
}

// NewRegistry builds a registry over the given ledgers, keyed by symbol.
func NewRegistry(ledgers ...*Ledger) *Registry {
	r := &Registry{tokens: make(map[string]Token)}
	for _, l := range ledgers {
		r.tokens[l.Symbol()] = l
	}
	return r
}

// Register adds a token under the given symbol.
func (r *Registry) Register(symbol string, tok Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[symbol] = tok
}

// Token implements the Resolver interface; unknown symbols return nil.
func (r *Registry) Token(symbol string) Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tokens[symbol]
}
