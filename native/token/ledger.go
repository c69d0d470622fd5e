package token

import (
	"math/big"
	"sync"

	"lendcore/crypto"
)

// Ledger is an in-memory token implementation with ERC20-style move
// semantics. The ledger engines only depend on the Token interface; this
// implementation backs tests and the daemon bootstrap.
type Ledger struct {
	mu         sync.Mutex
	symbol     string
	balances   map[string]*big.Int
	allowances map[string]map[string]*big.Int
}

// NewLedger creates an empty token ledger identified by its symbol.
func NewLedger(symbol string) *Ledger {
	return &Ledger{
		symbol:     symbol,
		balances:   make(map[string]*big.Int),
		allowances: make(map[string]map[string]*big.Int),
	}
}

// Symbol returns the token identifier.
func (l *Ledger) Symbol() string { return l.symbol }

func key(addr crypto.Address) string { return string(addr.Bytes()) }

// Mint credits freshly issued units to an account.
func (l *Ledger) Mint(to crypto.Address, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(to, amount)
}

func (l *Ledger) credit(addr crypto.Address, amount *big.Int) {
	balance, ok := l.balances[key(addr)]
	if !ok {
		balance = big.NewInt(0)
	}
	l.balances[key(addr)] = new(big.Int).Add(balance, amount)
}

func (l *Ledger) debit(addr crypto.Address, amount *big.Int) bool {
	balance, ok := l.balances[key(addr)]
	if !ok || balance.Cmp(amount) < 0 {
		return false
	}
	l.balances[key(addr)] = new(big.Int).Sub(balance, amount)
	return true
}

// Transfer moves amount from one account to another. Zero-amount transfers
// succeed without touching state.
func (l *Ledger) Transfer(from, to crypto.Address, amount *big.Int) bool {
	if amount == nil || amount.Sign() < 0 {
		return false
	}
	if amount.Sign() == 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.debit(from, amount) {
		return false
	}
	l.credit(to, amount)
	return true
}

// TransferFrom moves amount out of the owner's account on behalf of an
// approved spender, decrementing the allowance.
func (l *Ledger) TransferFrom(spender, from, to crypto.Address, amount *big.Int) bool {
	if amount == nil || amount.Sign() < 0 {
		return false
	}
	if amount.Sign() == 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if spender.Equal(from) {
		if !l.debit(from, amount) {
			return false
		}
		l.credit(to, amount)
		return true
	}
	granted := l.allowance(from, spender)
	if granted.Cmp(amount) < 0 {
		return false
	}
	if !l.debit(from, amount) {
		return false
	}
	l.allowances[key(from)][key(spender)] = new(big.Int).Sub(granted, amount)
	l.credit(to, amount)
	return true
}

// Approve grants the spender the right to move up to amount out of the
// owner's account.
func (l *Ledger) Approve(owner, spender crypto.Address, amount *big.Int) bool {
	if amount == nil || amount.Sign() < 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	grants, ok := l.allowances[key(owner)]
	if !ok {
		grants = make(map[string]*big.Int)
		l.allowances[key(owner)] = grants
	}
	grants[key(spender)] = new(big.Int).Set(amount)
	return true
}

// Allowance returns the remaining grant from owner to spender.
func (l *Ledger) Allowance(owner, spender crypto.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.allowance(owner, spender))
}

func (l *Ledger) allowance(owner, spender crypto.Address) *big.Int {
	grants, ok := l.allowances[key(owner)]
	if !ok {
		return big.NewInt(0)
	}
	granted, ok := grants[key(spender)]
	if !ok {
		return big.NewInt(0)
	}
	return granted
}

// BalanceOf returns the current balance of the account.
func (l *Ledger) BalanceOf(addr crypto.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	balance, ok := l.balances[key(addr)]
	if !ok {
		return big.NewInt(0)
	}
	return new(big.Int).Set(balance)
}
