package loan

import (
	"log/slog"
	"math/big"
	"time"

	"lendcore/core/events"
	"lendcore/crypto"
	nativecommon "lendcore/native/common"
	"lendcore/native/oracle"
	"lendcore/native/token"
	"lendcore/observability/metrics"
)

const moduleName = "loan"

type engineState interface {
	GetLoan(id uint64) (*Loan, error)
	PutLoan(loan *Loan) error
	NextLoanID() (uint64, error)
}

// Engine is the loan ledger: it allocates debts, moves the principal and the
// repayments through the base token, and tracks ownership of the repayment
// right. All interest accounting is delegated to the per-loan debt model.
type Engine struct {
	state         engineState
	token         token.Token
	oracle        oracle.Source
	moduleAddress crypto.Address
	pauses        nativecommon.PauseView
	emitter       events.Emitter
	log           *slog.Logger
	nowFn         func() int64
}

// NewEngine constructs a loan engine holding repayments in custody under the
// module address and moving funds through the provided token.
func NewEngine(moduleAddr crypto.Address, tok token.Token) *Engine {
	return &Engine{
		token:         tok,
		moduleAddress: moduleAddr,
		emitter:       events.NoopEmitter{},
		nowFn:         func() int64 { return time.Now().Unix() },
	}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetOracle configures the rate source used to convert loan-currency amounts
// into base-token amounts. Without one, amounts convert 1:1.
func (e *Engine) SetOracle(src oracle.Source) { e.oracle = src }

// SetPauses wires the administrative pause switches.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetLogger attaches a structured logger to the engine.
func (e *Engine) SetLogger(log *slog.Logger) { e.log = log }

// SetNowFunc overrides the time source. Primarily intended for tests.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) now() int64 { return e.nowFn() }

func (e *Engine) emit(evt events.Event) {
	if e.emitter != nil {
		e.emitter.Emit(evt)
	}
}

func (e *Engine) info(msg string, args ...any) {
	if e.log != nil {
		e.log.Info(msg, args...)
	}
}

func (e *Engine) loadLoan(id uint64) (*Loan, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	l, err := e.state.GetLoan(id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrNotFound
	}
	l.ensureDefaults()
	return l, nil
}

// Create registers a new loan backed by the given debt model and returns its
// identifier.
func (e *Engine) Create(creator, borrower crypto.Address, model Model) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return 0, err
	}
	if model == nil {
		return 0, ErrInvalidConfig
	}
	id, err := e.state.NextLoanID()
	if err != nil {
		return 0, err
	}
	if existing, err := e.state.GetLoan(id); err != nil {
		return 0, err
	} else if existing != nil {
		return 0, ErrAlreadyExists
	}
	l := &Loan{
		ID:            id,
		Creator:       creator,
		Borrower:      borrower,
		LenderBalance: big.NewInt(0),
		Model:         model,
	}
	if err := e.state.PutLoan(l); err != nil {
		return 0, err
	}
	metrics.Ledger().LoanCreated()
	e.emit(newLoanEvent(EventTypeLoanCreated, l, nil))
	e.info("loan created", "id", id, "borrower", borrower.String())
	return id, nil
}

// Lend funds the loan: the lender sends the converted principal to the
// borrower and becomes the owner of the repayment right.
func (e *Engine) Lend(lender crypto.Address, id uint64) error {
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if e.token == nil {
		return errNilToken
	}
	l, err := e.loadLoan(id)
	if err != nil {
		return err
	}
	if l.Lent {
		return ErrAlreadyLent
	}
	if lender.Equal(l.Borrower) {
		return ErrUnauthorized
	}
	cost, err := oracle.Convert(e.oracle, l.Model.Principal())
	if err != nil {
		return err
	}
	if !e.token.TransferFrom(e.moduleAddress, lender, l.Borrower, cost) {
		return ErrTransferFailed
	}
	l.Lender = lender
	l.Lent = true
	if err := e.state.PutLoan(l); err != nil {
		return err
	}
	metrics.Ledger().LoanLent()
	e.emit(newLoanEvent(EventTypeLoanLent, l, map[string]string{"cost": cost.String()}))
	e.info("loan lent", "id", id, "lender", lender.String(), "cost", cost.String())
	return nil
}

// Pay applies a payment to the loan. Only the cost of the applied portion is
// pulled from the payer; any excess stays untouched in the payer's account.
// The applied amount (in loan currency) is returned.
func (e *Engine) Pay(payer crypto.Address, id uint64, amount *big.Int) (*big.Int, error) {
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if e.token == nil {
		return nil, errNilToken
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidConfig
	}
	l, err := e.loadLoan(id)
	if err != nil {
		return nil, err
	}
	if !l.Lent {
		return nil, ErrNotLent
	}

	// Mutate a clone so a failed transfer leaves the stored model intact.
	model := l.Model.Clone()
	applied, err := model.AddPaid(amount, e.now())
	if err != nil {
		return nil, err
	}
	if applied.Sign() == 0 {
		return big.NewInt(0), nil
	}
	cost, err := oracle.Convert(e.oracle, applied)
	if err != nil {
		return nil, err
	}
	if !e.token.TransferFrom(e.moduleAddress, payer, e.moduleAddress, cost) {
		return nil, ErrTransferFailed
	}
	l.Model = model
	l.LenderBalance = new(big.Int).Add(l.LenderBalance, cost)
	if err := e.state.PutLoan(l); err != nil {
		return nil, err
	}
	metrics.Ledger().PaymentApplied()
	e.emit(newLoanEvent(EventTypeLoanPaid, l, map[string]string{
		"payer":   payer.String(),
		"applied": applied.String(),
	}))
	if model.Status() == StatusPaid {
		metrics.Ledger().LoanFullyPaid()
		e.emit(newLoanEvent(EventTypeLoanFullyPaid, l, nil))
		e.info("loan fully paid", "id", id)
	}
	return applied, nil
}

// RunLoan recomputes the loan's accrual up to now. It moves no tokens and may
// be invoked by anyone.
func (e *Engine) RunLoan(id uint64) error {
	l, err := e.loadLoan(id)
	if err != nil {
		return err
	}
	if err := l.Model.Run(e.now()); err != nil {
		return err
	}
	return e.state.PutLoan(l)
}

// Withdraw moves repaid funds held for the lender out of module custody.
func (e *Engine) Withdraw(caller crypto.Address, id uint64, to crypto.Address, amount *big.Int) error {
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if e.token == nil {
		return errNilToken
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidConfig
	}
	l, err := e.loadLoan(id)
	if err != nil {
		return err
	}
	if !caller.Equal(l.Lender) {
		return ErrUnauthorized
	}
	if l.LenderBalance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	l.LenderBalance = new(big.Int).Sub(l.LenderBalance, amount)
	if !e.token.Transfer(e.moduleAddress, to, amount) {
		return ErrTransferFailed
	}
	if err := e.state.PutLoan(l); err != nil {
		return err
	}
	e.emit(newLoanEvent(EventTypeLoanWithdrawn, l, map[string]string{"amount": amount.String()}))
	return nil
}

// Transfer reassigns the repayment right to another lender.
func (e *Engine) Transfer(caller crypto.Address, id uint64, to crypto.Address) error {
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	l, err := e.loadLoan(id)
	if err != nil {
		return err
	}
	if !l.Lent || !caller.Equal(l.Lender) {
		return ErrUnauthorized
	}
	if to.IsZero() {
		return ErrInvalidConfig
	}
	l.Lender = to
	if err := e.state.PutLoan(l); err != nil {
		return err
	}
	e.emit(newLoanEvent(EventTypeLoanTransferred, l, map[string]string{"from": caller.String()}))
	return nil
}

// Loan returns the stored loan record.
func (e *Engine) Loan(id uint64) (*Loan, error) {
	return e.loadLoan(id)
}

// ClosingObligation reports the amount needed right now to settle the loan's
// current installment.
func (e *Engine) ClosingObligation(id uint64) (*big.Int, error) {
	l, err := e.loadLoan(id)
	if err != nil {
		return nil, err
	}
	return l.Model.ClosingObligation(e.now())
}

// EstimateObligation projects the closing obligation at a future time.
func (e *Engine) EstimateObligation(id uint64, at int64) (*big.Int, error) {
	l, err := e.loadLoan(id)
	if err != nil {
		return nil, err
	}
	return l.Model.EstimateObligation(at)
}
