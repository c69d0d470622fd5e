package loan

import (
	"math/big"

	"lendcore/crypto"
)

// Status captures the lifecycle of a debt. StatusPaid is terminal; a debt
// never reverts to StatusOngoing once the full obligation has been settled.
type Status uint8

const (
	StatusOngoing Status = iota + 1
	StatusPaid
)

func (s Status) String() string {
	switch s {
	case StatusOngoing:
		return "ongoing"
	case StatusPaid:
		return "paid"
	default:
		return "unknown"
	}
}

// Loan is the ledger record binding a debt model to the parties around it.
// The lender field identifies the current owner of the repayment right and is
// reassignable; LenderBalance accumulates repaid funds held in module custody
// until withdrawn.
type Loan struct {
	ID            uint64
	Creator       crypto.Address
	Borrower      crypto.Address
	Lender        crypto.Address
	Lent          bool
	LenderBalance *big.Int
	Model         Model
}

func (l *Loan) ensureDefaults() {
	if l.LenderBalance == nil {
		l.LenderBalance = big.NewInt(0)
	}
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
