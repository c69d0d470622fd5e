package token

import (
	"math/big"

	"lendcore/crypto"
)

// Token is the fungible-token primitive consumed by the ledger engines. Every
// mutation reports success explicitly; callers must treat a false return as a
// failed move and abort the surrounding operation.
type Token interface {
	Transfer(from, to crypto.Address, amount *big.Int) bool
	TransferFrom(spender, from, to crypto.Address, amount *big.Int) bool
	Approve(owner, spender crypto.Address, amount *big.Int) bool
	Allowance(owner, spender crypto.Address) *big.Int
	BalanceOf(addr crypto.Address) *big.Int
}
