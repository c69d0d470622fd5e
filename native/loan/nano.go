package loan

import (
	"math"
	"math/big"

	"lendcore/core/umath"
)

// NanoConfig parameterizes a single-installment debt.
type NanoConfig struct {
	// Amount is the principal.
	Amount *big.Int
	// InterestRate is the ordinary rate encoding applied until the due time.
	InterestRate *big.Int
	// InterestRatePunitory is the penalty rate applied past the due time.
	InterestRatePunitory *big.Int
	// DuesIn is the number of seconds from creation to the due time.
	DuesIn uint64
	// CancelableAt charges this many seconds of ordinary interest in
	// advance; settling the whole debt before the term costs no extra.
	CancelableAt uint64
}

// NanoModel is the single-installment debt state machine. Ordinary interest
// accrues on the unpaid principal until the due time; past it, punitory
// interest accrues on the whole outstanding debt.
type NanoModel struct {
	amount               *big.Int
	interestRate         *big.Int
	interestRatePunitory *big.Int
	dueTime              int64
	interestTimestamp    int64
	interest             *big.Int
	punitoryInterest     *big.Int
	paid                 *big.Int
	status               Status
}

// NanoSnapshot is the persisted form of a NanoModel.
type NanoSnapshot struct {
	Amount               *big.Int `json:"amount"`
	InterestRate         *big.Int `json:"interestRate"`
	InterestRatePunitory *big.Int `json:"interestRatePunitory"`
	DueTime              int64    `json:"dueTime"`
	InterestTimestamp    int64    `json:"interestTimestamp"`
	Interest             *big.Int `json:"interest"`
	PunitoryInterest     *big.Int `json:"punitoryInterest"`
	Paid                 *big.Int `json:"paid"`
	Status               Status   `json:"status"`
}

var minRateBig = big.NewInt(MinRate)

func validRate(rate *big.Int) bool {
	return rate != nil && rate.Cmp(minRateBig) >= 0
}

// NewNanoModel validates the configuration and starts the debt clock at now.
func NewNanoModel(cfg NanoConfig, now int64) (*NanoModel, error) {
	if cfg.Amount == nil || cfg.Amount.Sign() <= 0 {
		return nil, ErrInvalidConfig
	}
	if _, err := umath.Word(cfg.Amount); err != nil {
		return nil, ErrInvalidConfig
	}
	if !validRate(cfg.InterestRate) || !validRate(cfg.InterestRatePunitory) {
		return nil, ErrInvalidConfig
	}
	if cfg.DuesIn == 0 || cfg.CancelableAt > cfg.DuesIn {
		return nil, ErrInvalidConfig
	}
	if cfg.DuesIn > math.MaxInt64 || now > math.MaxInt64-int64(cfg.DuesIn) {
		return nil, ErrInvalidConfig
	}

	m := &NanoModel{
		amount:               cloneBig(cfg.Amount),
		interestRate:         cloneBig(cfg.InterestRate),
		interestRatePunitory: cloneBig(cfg.InterestRatePunitory),
		dueTime:              now + int64(cfg.DuesIn),
		interestTimestamp:    now,
		interest:             big.NewInt(0),
		punitoryInterest:     big.NewInt(0),
		paid:                 big.NewInt(0),
		status:               StatusOngoing,
	}
	if cfg.CancelableAt > 0 {
		if err := m.Run(now + int64(cfg.CancelableAt)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func nanoFromSnapshot(s NanoSnapshot) *NanoModel {
	return &NanoModel{
		amount:               cloneBig(s.Amount),
		interestRate:         cloneBig(s.InterestRate),
		interestRatePunitory: cloneBig(s.InterestRatePunitory),
		dueTime:              s.DueTime,
		interestTimestamp:    s.InterestTimestamp,
		interest:             cloneBig(s.Interest),
		punitoryInterest:     cloneBig(s.PunitoryInterest),
		paid:                 cloneBig(s.Paid),
		status:               s.Status,
	}
}

// Run recomputes accrual up to now. Timestamps only advance by the delta the
// floored interest increments actually represent, so fractional interest is
// carried, never lost.
func (m *NanoModel) Run(now int64) error {
	if m.status == StatusPaid || now <= m.interestTimestamp {
		return nil
	}

	newInterest := cloneBig(m.interest)
	newPunitory := cloneBig(m.punitoryInterest)
	newTimestamp := m.interestTimestamp

	endNonPunitory := minInt64(now, m.dueTime)
	if endNonPunitory > m.interestTimestamp {
		delta := uint64(endNonPunitory - m.interestTimestamp)
		pending := big.NewInt(0)
		if m.paid.Cmp(m.amount) < 0 {
			pending = new(big.Int).Sub(m.amount, m.paid)
		}
		increment, consumed, err := Interest(pending, m.interestRate, delta)
		if err != nil {
			return err
		}
		if newInterest, err = umath.Add(newInterest, increment); err != nil {
			return err
		}
		newTimestamp = m.interestTimestamp + int64(consumed)
	}

	if now > m.dueTime {
		startPunitory := maxInt64(m.dueTime, m.interestTimestamp)
		delta := uint64(now - startPunitory)
		debt, err := umath.Add(m.amount, newInterest)
		if err != nil {
			return err
		}
		withPunitory, err := umath.Add(debt, newPunitory)
		if err != nil {
			return err
		}
		pending := new(big.Int).Sub(withPunitory, m.paid)
		if pending.Sign() < 0 {
			pending.SetInt64(0)
		}
		if pending.Cmp(debt) > 0 {
			pending.Set(debt)
		}
		increment, consumed, err := Interest(pending, m.interestRatePunitory, delta)
		if err != nil {
			return err
		}
		if newPunitory, err = umath.Add(newPunitory, increment); err != nil {
			return err
		}
		newTimestamp = startPunitory + int64(consumed)
	}

	if newInterest.Cmp(m.interest) != 0 || newPunitory.Cmp(m.punitoryInterest) != 0 {
		m.interestTimestamp = newTimestamp
		m.interest = newInterest
		m.punitoryInterest = newPunitory
	}
	return nil
}

func (m *NanoModel) totalObligation() (*big.Int, error) {
	total, err := umath.Add(m.amount, m.interest)
	if err != nil {
		return nil, err
	}
	return umath.Add(total, m.punitoryInterest)
}

// AddPaid runs accrual and consumes the payment against the outstanding
// obligation, never beyond it. The applied amount is returned so the caller
// can refund any excess.
func (m *NanoModel) AddPaid(amount *big.Int, now int64) (*big.Int, error) {
	if amount == nil || amount.Sign() <= 0 {
		return big.NewInt(0), nil
	}
	if err := m.Run(now); err != nil {
		return nil, err
	}
	if m.status == StatusPaid {
		return big.NewInt(0), nil
	}
	total, err := m.totalObligation()
	if err != nil {
		return nil, err
	}
	pending := new(big.Int).Sub(total, m.paid)
	if pending.Sign() <= 0 {
		m.status = StatusPaid
		return big.NewInt(0), nil
	}
	applied := new(big.Int).Set(amount)
	if applied.Cmp(pending) > 0 {
		applied.Set(pending)
	}
	m.paid = new(big.Int).Add(m.paid, applied)
	if m.paid.Cmp(total) >= 0 {
		m.status = StatusPaid
	}
	return applied, nil
}

// ClosingObligation reports the outstanding debt as of now without mutating
// the model.
func (m *NanoModel) ClosingObligation(now int64) (*big.Int, error) {
	clone := m.clone()
	if err := clone.Run(now); err != nil {
		return nil, err
	}
	total, err := clone.totalObligation()
	if err != nil {
		return nil, err
	}
	pending := total.Sub(total, clone.paid)
	if pending.Sign() < 0 {
		pending.SetInt64(0)
	}
	return pending, nil
}

// EstimateObligation projects the outstanding debt at a (possibly future)
// time.
func (m *NanoModel) EstimateObligation(at int64) (*big.Int, error) {
	return m.ClosingObligation(at)
}

// Principal reports the loan principal.
func (m *NanoModel) Principal() *big.Int { return cloneBig(m.amount) }

// Status reports the lifecycle state.
func (m *NanoModel) Status() Status { return m.status }

// Paid reports the cumulative amount repaid.
func (m *NanoModel) Paid() *big.Int { return cloneBig(m.paid) }

// Checkpoint is always 1 for a single-installment debt.
func (m *NanoModel) Checkpoint() uint64 { return 1 }

// DueTime reports the due timestamp.
func (m *NanoModel) DueTime() int64 { return m.dueTime }

// Interest reports the accrued ordinary interest.
func (m *NanoModel) Interest() *big.Int { return cloneBig(m.interest) }

// PunitoryInterest reports the accrued punitory interest.
func (m *NanoModel) PunitoryInterest() *big.Int { return cloneBig(m.punitoryInterest) }

func (m *NanoModel) clone() *NanoModel {
	return nanoFromSnapshot(m.snapshot())
}

// Clone returns an independent deep copy.
func (m *NanoModel) Clone() Model { return m.clone() }

func (m *NanoModel) snapshot() NanoSnapshot {
	return NanoSnapshot{
		Amount:               cloneBig(m.amount),
		InterestRate:         cloneBig(m.interestRate),
		InterestRatePunitory: cloneBig(m.interestRatePunitory),
		DueTime:              m.dueTime,
		InterestTimestamp:    m.interestTimestamp,
		Interest:             cloneBig(m.interest),
		PunitoryInterest:     cloneBig(m.punitoryInterest),
		Paid:                 cloneBig(m.paid),
		Status:               m.status,
	}
}

// Snapshot exports the model for persistence.
func (m *NanoModel) Snapshot() ModelSnapshot {
	s := m.snapshot()
	return ModelSnapshot{Kind: ModelKindNano, Nano: &s}
}
