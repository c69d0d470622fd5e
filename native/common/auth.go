package common

import (
	"sync"

	"lendcore/crypto"
)

// Authorizer answers whether an address is on a module's delegate allow-list.
type Authorizer interface {
	IsAuthorized(addr crypto.Address) bool
}

// AllowList is a mutable in-memory Authorizer maintained by a module owner.
type AllowList struct {
	mu      sync.Mutex
	allowed map[string]bool
}

// NewAllowList builds an allow-list seeded with the given addresses.
func NewAllowList(addrs ...crypto.Address) *AllowList {
	list := &AllowList{allowed: make(map[string]bool)}
	for _, addr := range addrs {
		list.allowed[string(addr.Bytes())] = true
	}
	return list
}

// Grant adds an address to the list.
func (l *AllowList) Grant(addr crypto.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowed[string(addr.Bytes())] = true
}

// Revoke removes an address from the list.
func (l *AllowList) Revoke(addr crypto.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.allowed, string(addr.Bytes()))
}

// IsAuthorized implements the Authorizer interface.
func (l *AllowList) IsAuthorized(addr crypto.Address) bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allowed[string(addr.Bytes())]
}
