package loan

import (
	"math"
	"math/big"

	"lendcore/core/umath"
)

// InstallmentsConfig parameterizes a debt amortized over N equal
// installments.
type InstallmentsConfig struct {
	// Amount is the principal of each installment.
	Amount *big.Int
	// InterestRate is the ordinary rate encoding applied to outstanding
	// principal.
	InterestRate *big.Int
	// InterestRatePunitory is the penalty rate applied to matured unpaid
	// obligations.
	InterestRatePunitory *big.Int
	// DuesIn is the number of seconds from creation to the first due time.
	DuesIn uint64
	// CancelableAt charges this many seconds of ordinary interest in
	// advance.
	CancelableAt uint64
	// Installments is the total number of equal installments.
	Installments uint64
	// InstallmentDuration is the number of seconds between consecutive due
	// times after the first.
	InstallmentDuration uint64
}

// InstallmentsModel amortizes a debt across equal installments. Ordinary
// interest accrues on the outstanding principal until the final due time;
// each installment that matures unpaid rolls its obligation into the
// punitory accrual base from its own due time onward.
type InstallmentsModel struct {
	amount               *big.Int
	totalPrincipal       *big.Int
	interestRate         *big.Int
	interestRatePunitory *big.Int
	firstDue             int64
	installmentDuration  uint64
	installments         uint64
	ordinaryTimestamp    int64
	punitoryTimestamp    int64
	interest             *big.Int
	punitoryInterest     *big.Int
	paidInterest         *big.Int
	paidPunitory         *big.Int
	paidPrincipal        *big.Int
	checkpoint           uint64
	status               Status
}

// InstallmentsSnapshot is the persisted form of an InstallmentsModel.
type InstallmentsSnapshot struct {
	Amount               *big.Int `json:"amount"`
	InterestRate         *big.Int `json:"interestRate"`
	InterestRatePunitory *big.Int `json:"interestRatePunitory"`
	FirstDue             int64    `json:"firstDue"`
	InstallmentDuration  uint64   `json:"installmentDuration"`
	Installments         uint64   `json:"installments"`
	OrdinaryTimestamp    int64    `json:"ordinaryTimestamp"`
	PunitoryTimestamp    int64    `json:"punitoryTimestamp"`
	Interest             *big.Int `json:"interest"`
	PunitoryInterest     *big.Int `json:"punitoryInterest"`
	PaidInterest         *big.Int `json:"paidInterest"`
	PaidPunitory         *big.Int `json:"paidPunitory"`
	PaidPrincipal        *big.Int `json:"paidPrincipal"`
	Checkpoint           uint64   `json:"checkpoint"`
	Status               Status   `json:"status"`
}

// NewInstallmentsModel validates the configuration and starts the debt clock
// at now.
func NewInstallmentsModel(cfg InstallmentsConfig, now int64) (*InstallmentsModel, error) {
	if cfg.Amount == nil || cfg.Amount.Sign() <= 0 {
		return nil, ErrInvalidConfig
	}
	if !validRate(cfg.InterestRate) || !validRate(cfg.InterestRatePunitory) {
		return nil, ErrInvalidConfig
	}
	if cfg.DuesIn == 0 || cfg.CancelableAt > cfg.DuesIn {
		return nil, ErrInvalidConfig
	}
	if cfg.Installments == 0 || cfg.InstallmentDuration == 0 {
		return nil, ErrInvalidConfig
	}
	if cfg.DuesIn > math.MaxInt64 || now > math.MaxInt64-int64(cfg.DuesIn) {
		return nil, ErrInvalidConfig
	}
	firstDue := now + int64(cfg.DuesIn)
	span := new(big.Int).Mul(new(big.Int).SetUint64(cfg.Installments-1), new(big.Int).SetUint64(cfg.InstallmentDuration))
	lastDue := new(big.Int).Add(big.NewInt(firstDue), span)
	if !lastDue.IsInt64() {
		return nil, ErrInvalidConfig
	}
	totalPrincipal, err := umath.Mul(cfg.Amount, new(big.Int).SetUint64(cfg.Installments))
	if err != nil {
		return nil, ErrInvalidConfig
	}

	m := &InstallmentsModel{
		amount:               cloneBig(cfg.Amount),
		totalPrincipal:       totalPrincipal,
		interestRate:         cloneBig(cfg.InterestRate),
		interestRatePunitory: cloneBig(cfg.InterestRatePunitory),
		firstDue:             firstDue,
		installmentDuration:  cfg.InstallmentDuration,
		installments:         cfg.Installments,
		ordinaryTimestamp:    now,
		punitoryTimestamp:    now,
		interest:             big.NewInt(0),
		punitoryInterest:     big.NewInt(0),
		paidInterest:         big.NewInt(0),
		paidPunitory:         big.NewInt(0),
		paidPrincipal:        big.NewInt(0),
		checkpoint:           1,
		status:               StatusOngoing,
	}
	if cfg.CancelableAt > 0 {
		if err := m.Run(now + int64(cfg.CancelableAt)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func installmentsFromSnapshot(s InstallmentsSnapshot) *InstallmentsModel {
	m := &InstallmentsModel{
		amount:               cloneBig(s.Amount),
		interestRate:         cloneBig(s.InterestRate),
		interestRatePunitory: cloneBig(s.InterestRatePunitory),
		firstDue:             s.FirstDue,
		installmentDuration:  s.InstallmentDuration,
		installments:         s.Installments,
		ordinaryTimestamp:    s.OrdinaryTimestamp,
		punitoryTimestamp:    s.PunitoryTimestamp,
		interest:             cloneBig(s.Interest),
		punitoryInterest:     cloneBig(s.PunitoryInterest),
		paidInterest:         cloneBig(s.PaidInterest),
		paidPunitory:         cloneBig(s.PaidPunitory),
		paidPrincipal:        cloneBig(s.PaidPrincipal),
		checkpoint:           s.Checkpoint,
		status:               s.Status,
	}
	m.totalPrincipal = new(big.Int).Mul(m.amount, new(big.Int).SetUint64(m.installments))
	return m
}

// dueTime reports the due timestamp of the 1-indexed installment k.
func (m *InstallmentsModel) dueTime(k uint64) int64 {
	return m.firstDue + int64(k-1)*int64(m.installmentDuration)
}

// maturedAt reports how many installments are due at or before ts.
func (m *InstallmentsModel) maturedAt(ts int64) uint64 {
	if ts < m.firstDue {
		return 0
	}
	matured := 1 + uint64(ts-m.firstDue)/m.installmentDuration
	if matured > m.installments {
		matured = m.installments
	}
	return matured
}

func (m *InstallmentsModel) paidTotal() *big.Int {
	total := new(big.Int).Add(m.paidInterest, m.paidPunitory)
	return total.Add(total, m.paidPrincipal)
}

func (m *InstallmentsModel) pendingPrincipal() *big.Int {
	pending := new(big.Int).Sub(m.totalPrincipal, m.paidPrincipal)
	if pending.Sign() < 0 {
		pending.SetInt64(0)
	}
	return pending
}

// punitoryPending reports the penalty accrual base: the matured obligation
// not yet covered by payments, capped at the matured debt itself.
func (m *InstallmentsModel) punitoryPending(matured uint64) (*big.Int, error) {
	maturedPrincipal, err := umath.Mul(m.amount, new(big.Int).SetUint64(matured))
	if err != nil {
		return nil, err
	}
	debt, err := umath.Add(maturedPrincipal, m.interest)
	if err != nil {
		return nil, err
	}
	withPunitory, err := umath.Add(debt, m.punitoryInterest)
	if err != nil {
		return nil, err
	}
	pending := withPunitory.Sub(withPunitory, m.paidTotal())
	if pending.Sign() < 0 {
		pending.SetInt64(0)
	}
	if pending.Cmp(debt) > 0 {
		pending.Set(debt)
	}
	return pending, nil
}

// Run recomputes ordinary and punitory accrual up to now.
func (m *InstallmentsModel) Run(now int64) error {
	if m.status == StatusPaid {
		return nil
	}

	// Ordinary interest on outstanding principal, capped at the final due
	// time as with the single-installment model.
	endOrdinary := minInt64(now, m.dueTime(m.installments))
	if endOrdinary > m.ordinaryTimestamp {
		pending := m.pendingPrincipal()
		if pending.Sign() == 0 {
			m.ordinaryTimestamp = endOrdinary
		} else {
			delta := uint64(endOrdinary - m.ordinaryTimestamp)
			increment, consumed, err := Interest(pending, m.interestRate, delta)
			if err != nil {
				return err
			}
			if increment.Sign() > 0 {
				if m.interest, err = umath.Add(m.interest, increment); err != nil {
					return err
				}
				m.ordinaryTimestamp += int64(consumed)
			}
		}
	}

	// Punitory interest, walking the due-time boundaries so each matured
	// installment joins the base from its own due time onward.
	for m.punitoryTimestamp < now {
		matured := m.maturedAt(m.punitoryTimestamp)
		if matured == 0 {
			m.punitoryTimestamp = minInt64(now, m.firstDue)
			continue
		}
		target := now
		if matured < m.installments {
			target = minInt64(now, m.dueTime(matured+1))
		}
		base, err := m.punitoryPending(matured)
		if err != nil {
			return err
		}
		if base.Sign() == 0 {
			m.punitoryTimestamp = target
			continue
		}
		increment, consumed, err := Interest(base, m.interestRatePunitory, uint64(target-m.punitoryTimestamp))
		if err != nil {
			return err
		}
		if consumed == 0 {
			break
		}
		if m.punitoryInterest, err = umath.Add(m.punitoryInterest, increment); err != nil {
			return err
		}
		m.punitoryTimestamp += int64(consumed)
		if m.punitoryTimestamp < target {
			break
		}
	}

	m.settle()
	return nil
}

// settle advances the checkpoint over fully covered installments and marks
// the debt paid once the whole obligation is met.
func (m *InstallmentsModel) settle() {
	paid := m.paidTotal()
	for m.checkpoint < m.installments {
		obligation := new(big.Int).Mul(m.amount, new(big.Int).SetUint64(m.checkpoint))
		obligation.Add(obligation, m.interest)
		obligation.Add(obligation, m.punitoryInterest)
		if paid.Cmp(obligation) < 0 {
			break
		}
		m.checkpoint++
	}
	total := m.totalObligation()
	if paid.Cmp(total) >= 0 && m.pendingPrincipal().Sign() == 0 {
		m.checkpoint = m.installments
		m.status = StatusPaid
	}
}

func (m *InstallmentsModel) totalObligation() *big.Int {
	total := new(big.Int).Add(m.totalPrincipal, m.interest)
	return total.Add(total, m.punitoryInterest)
}

// AddPaid runs accrual and applies the payment against ordinary interest,
// punitory interest and principal in that order, crossing installment
// boundaries as needed.
func (m *InstallmentsModel) AddPaid(amount *big.Int, now int64) (*big.Int, error) {
	if amount == nil || amount.Sign() <= 0 {
		return big.NewInt(0), nil
	}
	if err := m.Run(now); err != nil {
		return nil, err
	}
	if m.status == StatusPaid {
		return big.NewInt(0), nil
	}

	remaining := new(big.Int).Set(amount)
	apply := func(owed *big.Int, bucket *big.Int) *big.Int {
		if owed.Sign() <= 0 || remaining.Sign() == 0 {
			return bucket
		}
		portion := new(big.Int).Set(remaining)
		if portion.Cmp(owed) > 0 {
			portion.Set(owed)
		}
		remaining.Sub(remaining, portion)
		return new(big.Int).Add(bucket, portion)
	}

	m.paidInterest = apply(new(big.Int).Sub(m.interest, m.paidInterest), m.paidInterest)
	m.paidPunitory = apply(new(big.Int).Sub(m.punitoryInterest, m.paidPunitory), m.paidPunitory)
	m.paidPrincipal = apply(m.pendingPrincipal(), m.paidPrincipal)

	applied := new(big.Int).Sub(amount, remaining)
	m.settle()
	return applied, nil
}

// ClosingObligation reports the amount needed right now to settle the
// current installment, without mutating state.
func (m *InstallmentsModel) ClosingObligation(now int64) (*big.Int, error) {
	clone := m.clone()
	if err := clone.Run(now); err != nil {
		return nil, err
	}
	if clone.status == StatusPaid {
		return big.NewInt(0), nil
	}
	obligation := new(big.Int).Mul(clone.amount, new(big.Int).SetUint64(clone.checkpoint))
	obligation.Add(obligation, clone.interest)
	obligation.Add(obligation, clone.punitoryInterest)
	obligation.Sub(obligation, clone.paidTotal())
	if obligation.Sign() < 0 {
		obligation.SetInt64(0)
	}
	return obligation, nil
}

// EstimateObligation projects the closing obligation at a future time.
func (m *InstallmentsModel) EstimateObligation(at int64) (*big.Int, error) {
	return m.ClosingObligation(at)
}

// Principal reports the total principal across all installments.
func (m *InstallmentsModel) Principal() *big.Int { return cloneBig(m.totalPrincipal) }

// Status reports the lifecycle state.
func (m *InstallmentsModel) Status() Status { return m.status }

// Paid reports the cumulative amount repaid.
func (m *InstallmentsModel) Paid() *big.Int { return m.paidTotal() }

// Checkpoint reports the installment currently being serviced.
func (m *InstallmentsModel) Checkpoint() uint64 { return m.checkpoint }

// Interest reports the accrued ordinary interest.
func (m *InstallmentsModel) Interest() *big.Int { return cloneBig(m.interest) }

// PunitoryInterest reports the accrued punitory interest.
func (m *InstallmentsModel) PunitoryInterest() *big.Int { return cloneBig(m.punitoryInterest) }

func (m *InstallmentsModel) clone() *InstallmentsModel {
	return installmentsFromSnapshot(m.snapshot())
}

// Clone returns an independent deep copy.
func (m *InstallmentsModel) Clone() Model { return m.clone() }

func (m *InstallmentsModel) snapshot() InstallmentsSnapshot {
	return InstallmentsSnapshot{
		Amount:               cloneBig(m.amount),
		InterestRate:         cloneBig(m.interestRate),
		InterestRatePunitory: cloneBig(m.interestRatePunitory),
		FirstDue:             m.firstDue,
		InstallmentDuration:  m.installmentDuration,
		Installments:         m.installments,
		OrdinaryTimestamp:    m.ordinaryTimestamp,
		PunitoryTimestamp:    m.punitoryTimestamp,
		Interest:             cloneBig(m.interest),
		PunitoryInterest:     cloneBig(m.punitoryInterest),
		PaidInterest:         cloneBig(m.paidInterest),
		PaidPunitory:         cloneBig(m.paidPunitory),
		PaidPrincipal:        cloneBig(m.paidPrincipal),
		Checkpoint:           m.checkpoint,
		Status:               m.status,
	}
}

// Snapshot exports the model for persistence.
func (m *InstallmentsModel) Snapshot() ModelSnapshot {
	s := m.snapshot()
	return ModelSnapshot{Kind: ModelKindInstallments, Installments: &s}
}
