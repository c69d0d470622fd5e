package loan

import (
	"fmt"
	"math/big"
)

// Model is the per-debt state machine. The two variants share the same
// ledger surface: NanoModel services a single installment, InstallmentsModel
// amortizes the principal over N equal installments.
type Model interface {
	// Run recomputes accrued interest up to now. It moves no tokens, is
	// idempotent when no time has elapsed, and is safe to invoke for any
	// caller.
	Run(now int64) error
	// AddPaid runs accrual and applies a payment against ordinary interest,
	// punitory interest and principal, in that order. It returns the amount
	// actually applied; any excess beyond the total obligation is left with
	// the caller.
	AddPaid(amount *big.Int, now int64) (*big.Int, error)
	// ClosingObligation reports the amount required right now to settle the
	// current installment, matching what Run followed by ClosingObligation
	// would produce, without mutating state.
	ClosingObligation(now int64) (*big.Int, error)
	// EstimateObligation projects the closing obligation at a future time.
	EstimateObligation(at int64) (*big.Int, error)
	// Principal reports the total principal of the debt.
	Principal() *big.Int
	// Status reports the lifecycle state.
	Status() Status
	// Paid reports the cumulative amount repaid.
	Paid() *big.Int
	// Checkpoint reports the 1-indexed installment currently being serviced.
	Checkpoint() uint64
	// Clone returns an independent deep copy, used for pure projections.
	Clone() Model
	// Snapshot exports the model for persistence.
	Snapshot() ModelSnapshot
}

// Model kind tags used by persisted snapshots.
const (
	ModelKindNano         = "nano"
	ModelKindInstallments = "installments"
)

// ModelSnapshot is the tagged persistence form of a debt model.
type ModelSnapshot struct {
	Kind         string                `json:"kind"`
	Nano         *NanoSnapshot         `json:"nano,omitempty"`
	Installments *InstallmentsSnapshot `json:"installments,omitempty"`
}

// ModelFromSnapshot rebuilds a debt model from its persisted form.
func ModelFromSnapshot(snapshot ModelSnapshot) (Model, error) {
	switch snapshot.Kind {
	case ModelKindNano:
		if snapshot.Nano == nil {
			return nil, fmt.Errorf("%w: missing nano snapshot", ErrInvalidConfig)
		}
		return nanoFromSnapshot(*snapshot.Nano), nil
	case ModelKindInstallments:
		if snapshot.Installments == nil {
			return nil, fmt.Errorf("%w: missing installments snapshot", ErrInvalidConfig)
		}
		return installmentsFromSnapshot(*snapshot.Installments), nil
	default:
		return nil, fmt.Errorf("%w: unknown model kind %q", ErrInvalidConfig, snapshot.Kind)
	}
}
