package auction

import (
	"errors"
	"log/slog"
	"math/big"
	"time"

	"lendcore/core/events"
	"lendcore/crypto"
	nativecommon "lendcore/native/common"
	"lendcore/native/token"
	"lendcore/observability/metrics"
)

const moduleName = "auction"

var (
	errNilState = errors.New("collateral auction: state not configured")
	errNilToken = errors.New("collateral auction: token not configured")

	// ErrNotFound is returned for operations on unknown auction identifiers.
	ErrNotFound = errors.New("collateral auction: auction not found")
	// ErrInvalidBounds rejects a creation where the start, reference and
	// limit prices are not strictly increasing.
	ErrInvalidBounds = errors.New("collateral auction: invalid auction bounds")
	// ErrInvalidAmount rejects non-positive amounts.
	ErrInvalidAmount = errors.New("collateral auction: amount must be positive")
	// ErrUnknownToken is returned when the collateral token cannot be
	// resolved.
	ErrUnknownToken = errors.New("collateral auction: unknown token")
	// ErrAuctionExhausted is returned once the full collateral amount has
	// been sold.
	ErrAuctionExhausted = errors.New("collateral auction: auction exhausted")
	// ErrInsufficientPayment is returned when the tendered base amount does
	// not cover the current offer.
	ErrInsufficientPayment = errors.New("collateral auction: insufficient payment")
	// ErrTransferFailed signals a failed token move.
	ErrTransferFailed = errors.New("collateral auction: token transfer failed")
)

type engineState interface {
	GetAuction(id uint64) (*Auction, error)
	PutAuction(a *Auction) error
	NextAuctionID() (uint64, error)
}

// TakeCallback is notified after every take with the remaining collateral and
// the base tokens received, letting the auction owner settle the underlying
// debt position.
type TakeCallback interface {
	OnTake(id uint64, leftover, received *big.Int, data []byte)
}

// Engine runs time-priced collateral sales. Collateral is held in custody
// under the module address; proceeds flow to the auction owner.
type Engine struct {
	state         engineState
	base          token.Token
	tokens        token.Resolver
	moduleAddress crypto.Address
	decayInterval uint64
	callback      TakeCallback
	pauses        nativecommon.PauseView
	emitter       events.Emitter
	log           *slog.Logger
	nowFn         func() int64
}

// NewEngine constructs a collateral auction engine selling against the base
// token.
func NewEngine(moduleAddr crypto.Address, base token.Token, tokens token.Resolver) *Engine {
	return &Engine{
		base:          base,
		tokens:        tokens,
		moduleAddress: moduleAddr,
		decayInterval: DefaultDecayInterval,
		emitter:       events.NoopEmitter{},
		nowFn:         func() int64 { return time.Now().Unix() },
	}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetDecayInterval overrides the plateau quantity-halving period.
func (e *Engine) SetDecayInterval(seconds uint64) { e.decayInterval = seconds }

// SetCallback registers the sink notified after each take.
func (e *Engine) SetCallback(cb TakeCallback) { e.callback = cb }

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

func (e *Engine) resolve(symbol string) (token.Token, error) {
	if e.tokens == nil {
		return nil, ErrUnknownToken
	}
	tok := e.tokens.Token(symbol)
	if tok == nil {
		return nil, ErrUnknownToken
	}
	return tok, nil
}

func (e *Engine) loadAuction(id uint64) (*Auction, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	a, err := e.state.GetAuction(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

// Create opens an auction selling amount of the collateral token in lots of
// sellQuantity, pulling the collateral from the creator into custody.
func (e *Engine) Create(creator crypto.Address, fromToken string, startOffer, refOffer, limit, amount, sellQuantity *big.Int) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return 0, err
	}
	if startOffer == nil || refOffer == nil || limit == nil ||
		startOffer.Sign() <= 0 || startOffer.Cmp(refOffer) >= 0 || refOffer.Cmp(limit) >= 0 {
		return 0, ErrInvalidBounds
	}
	if amount == nil || amount.Sign() <= 0 || sellQuantity == nil || sellQuantity.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	collateral, err := e.resolve(fromToken)
	if err != nil {
		return 0, err
	}
	delta, err := limitDelta(startOffer, refOffer, limit)
	if err != nil {
		return 0, err
	}
	id, err := e.state.NextAuctionID()
	if err != nil {
		return 0, err
	}
	if !collateral.TransferFrom(e.moduleAddress, creator, e.moduleAddress, amount) {
		return 0, ErrTransferFailed
	}
	a := &Auction{
		ID:           id,
		Owner:        creator,
		FromToken:    fromToken,
		StartTime:    e.now(),
		StartOffer:   new(big.Int).Set(startOffer),
		RefOffer:     new(big.Int).Set(refOffer),
		Limit:        new(big.Int).Set(limit),
		LimitDelta:   delta,
		Amount:       new(big.Int).Set(amount),
		SellQuantity: new(big.Int).Set(sellQuantity),
	}
	if err := e.state.PutAuction(a); err != nil {
		return 0, err
	}
	metrics.Ledger().AuctionCreated()
	e.emit(newAuctionEvent(EventTypeAuctionCreated, a, nil))
	if e.log != nil {
		e.log.Info("collateral auction created", "id", id, "token", fromToken, "amount", amount.String())
	}
	return id, nil
}

// Offer reports the current price and quantity without mutating state.
func (e *Engine) Offer(id uint64) (*big.Int, *big.Int, error) {
	a, err := e.loadAuction(id)
	if err != nil {
		return nil, nil, err
	}
	if a.Amount.Sign() == 0 {
		return nil, nil, ErrAuctionExhausted
	}
	return a.offerAt(e.now(), e.decayInterval)
}

// Take buys collateral at the current offer. Full takes pay the quoted price
// for the full quoted quantity; partial takes receive the proportional share
// of the tendered amount, with the cost rounded against the taker. The
// collateral quantity bought and the base cost paid are returned.
func (e *Engine) Take(taker crypto.Address, id uint64, tendered *big.Int, data []byte, partial bool) (*big.Int, *big.Int, error) {
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, nil, err
	}
	if e.base == nil {
		return nil, nil, errNilToken
	}
	if tendered == nil || tendered.Sign() <= 0 {
		return nil, nil, ErrInsufficientPayment
	}
	a, err := e.loadAuction(id)
	if err != nil {
		return nil, nil, err
	}
	if a.Amount.Sign() == 0 {
		return nil, nil, ErrAuctionExhausted
	}
	collateral, err := e.resolve(a.FromToken)
	if err != nil {
		return nil, nil, err
	}

	price, quantity, err := a.offerAt(e.now(), e.decayInterval)
	if err != nil {
		return nil, nil, err
	}
	if quantity.Sign() == 0 {
		return nil, nil, ErrAuctionExhausted
	}

	taken := new(big.Int)
	cost := new(big.Int)
	if partial {
		taken.Mul(quantity, tendered)
		taken.Quo(taken, price)
		if taken.Cmp(quantity) > 0 {
			taken.Set(quantity)
		}
		if taken.Sign() == 0 {
			return nil, nil, ErrInsufficientPayment
		}
		cost.Mul(price, taken)
		cost.Add(cost, new(big.Int).Sub(quantity, big.NewInt(1)))
		cost.Quo(cost, quantity)
	} else {
		if tendered.Cmp(price) < 0 {
			return nil, nil, ErrInsufficientPayment
		}
		taken.Set(quantity)
		cost.Set(price)
	}

	// The remaining amount is decremented on a working copy before any
	// external call, and the copy is swapped in only once both transfers
	// have succeeded. A failed take leaves the stored auction untouched.
	updated := *a
	updated.Amount = new(big.Int).Sub(a.Amount, taken)

	if !e.base.TransferFrom(e.moduleAddress, taker, a.Owner, cost) {
		return nil, nil, ErrTransferFailed
	}
	if !collateral.Transfer(e.moduleAddress, taker, taken) {
		return nil, nil, ErrTransferFailed
	}
	if err := e.state.PutAuction(&updated); err != nil {
		return nil, nil, err
	}
	if e.callback != nil {
		e.callback.OnTake(id, new(big.Int).Set(updated.Amount), new(big.Int).Set(cost), data)
	}

	mode := "full"
	if partial {
		mode = "partial"
	}
	metrics.Ledger().AuctionTake(mode)
	e.emit(newAuctionEvent(EventTypeAuctionTaken, &updated, map[string]string{
		"taker": taker.String(),
		"taken": taken.String(),
		"cost":  cost.String(),
	}))
	return taken, cost, nil
}
