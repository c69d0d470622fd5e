package burner

import (
	"errors"
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

const moduleName = "burner"

var (
	errNilState = errors.New("burner: state not configured")
	errNilToken = errors.New("burner: token not configured")

	// ErrNotLive is returned once the kill switch has disabled the module.
	ErrNotLive = errors.New("burner: module not live")
	// ErrStillLive rejects reclaims while the module is operating normally.
	ErrStillLive = errors.New("burner: module still live")
	// ErrNotFound is returned for operations on unknown auction identifiers.
	ErrNotFound = errors.New("burner: auction not found")
	// ErrUnauthorized is returned when the caller lacks the required role.
	ErrUnauthorized = errors.New("burner: caller not authorized")
	// ErrBelowMinimum rejects auctions selling less than the configured
	// minimum lot.
	ErrBelowMinimum = errors.New("burner: sold amount below minimum")
	// ErrInsufficientReserve is returned when the module does not hold the
	// lot being auctioned.
	ErrInsufficientReserve = errors.New("burner: insufficient reserve")
	// ErrBidTooHigh rejects seed bids at or above the oracle fair value.
	ErrBidTooHigh = errors.New("burner: seed bid not below fair value")
	// ErrAuctionFinished is returned for offers after the deadline.
	ErrAuctionFinished = errors.New("burner: auction finished")
	// ErrAuctionNotFinished is returned for claims before the deadline.
	ErrAuctionNotFinished = errors.New("burner: auction not finished")
	// ErrBidderNotSet signals an auction whose bid record was already
	// settled.
	ErrBidderNotSet = errors.New("burner: bidder not set")
	// ErrBidExpired is returned when the current bid window has lapsed.
	ErrBidExpired = errors.New("burner: bid window expired")
	// ErrBidNotHigher requires strictly increasing bids.
	ErrBidNotHigher = errors.New("burner: bid not higher than current")
	// ErrInsufficientIncrease enforces the minimum percentage raise.
	ErrInsufficientIncrease = errors.New("burner: bid increase below increment")
	// ErrBidContested rejects restarts once a competing bid was placed.
	ErrBidContested = errors.New("burner: auction already contested")
	// ErrInvalidAmount rejects non-positive amounts and parameters.
	ErrInvalidAmount = errors.New("burner: invalid amount")
	// ErrTransferFailed signals a failed token move.
	ErrTransferFailed = errors.New("burner: token transfer failed")
)

type engineState interface {
	GetBid(id uint64) (*Bid, error)
	PutBid(b *Bid) error
	NextBidID() (uint64, error)
}

// Engine liquidates the module's reserve of the sold token through rising-bid
// auctions denominated in the burn token. Winning stakes stay under the
// module address to be destroyed by an external process.
type Engine struct {
	state         engineState
	burnToken     token.Token
	soldToken     token.Token
	rates         oracle.Source
	moduleAddress crypto.Address
	owner         crypto.Address
	auth          nativecommon.Authorizer

	live              bool
	bidIncrement      *big.Int
	auctionDuration   int64
	bidWindow         int64
	minimumSoldAmount *big.Int
	committedReserve  *big.Int

	pauses  nativecommon.PauseView
	emitter events.Emitter
	log     *slog.Logger
	nowFn   func() int64
}

// NewEngine constructs a burner engine owned by the given admin address.
func NewEngine(moduleAddr, owner crypto.Address, burnToken, soldToken token.Token) *Engine {
	return &Engine{
		burnToken:         burnToken,
		soldToken:         soldToken,
		moduleAddress:     moduleAddr,
		owner:             owner,
		live:              true,
		bidIncrement:      DefaultBidIncrement(),
		auctionDuration:   DefaultAuctionDuration,
		bidWindow:         DefaultBidWindow,
		minimumSoldAmount: big.NewInt(0),
		committedReserve:  big.NewInt(0),
		emitter:           events.NoopEmitter{},
		nowFn:             func() int64 { return time.Now().Unix() },
	}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetOracle configures the burn-per-sold rate source used to price seed bids.
func (e *Engine) SetOracle(src oracle.Source) { e.rates = src }

// SetAuthorizer restricts StartAuction to the given allow-list. A nil
// authorizer leaves the entry point open.
func (e *Engine) SetAuthorizer(auth nativecommon.Authorizer) { e.auth = auth }

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

func (e *Engine) releaseReserve(amount *big.Int) {
	e.committedReserve.Sub(e.committedReserve, amount)
	if e.committedReserve.Sign() < 0 {
		e.committedReserve.SetInt64(0)
	}
}

func (e *Engine) requireOwner(caller crypto.Address) error {
	if !caller.Equal(e.owner) {
		return ErrUnauthorized
	}
	return nil
}

// SetBidIncrement updates the WAD-scaled minimum raise ratio. Owner only.
func (e *Engine) SetBidIncrement(caller crypto.Address, increment *big.Int) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if increment == nil || increment.Cmp(big.NewInt(WAD)) < 0 {
		return ErrInvalidAmount
	}
	e.bidIncrement = new(big.Int).Set(increment)
	return nil
}

// SetAuctionDuration updates the auction deadline window. Owner only.
func (e *Engine) SetAuctionDuration(caller crypto.Address, seconds int64) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if seconds <= 0 {
		return ErrInvalidAmount
	}
	e.auctionDuration = seconds
	return nil
}

// SetBidWindow updates how long a leading bid stands before the auction can
// settle. Owner only.
func (e *Engine) SetBidWindow(caller crypto.Address, seconds int64) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if seconds <= 0 {
		return ErrInvalidAmount
	}
	e.bidWindow = seconds
	return nil
}

// SetMinimumSoldAmount updates the smallest lot an auction may sell. Owner
// only.
func (e *Engine) SetMinimumSoldAmount(caller crypto.Address, minimum *big.Int) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if minimum == nil || minimum.Sign() < 0 {
		return ErrInvalidAmount
	}
	e.minimumSoldAmount = new(big.Int).Set(minimum)
	return nil
}

// Kill flips the global kill switch, disabling auctions and enabling
// Reclaim. Owner only and irreversible.
func (e *Engine) Kill(caller crypto.Address) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	e.live = false
	if e.log != nil {
		e.log.Warn("burner kill switch triggered", "caller", caller.String())
	}
	return nil
}

// Live reports whether the module still accepts auctions.
func (e *Engine) Live() bool { return e.live }

func (e *Engine) loadBid(id uint64) (*Bid, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	b, err := e.state.GetBid(id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}
	b.ensureDefaults()
	return b, nil
}

// Bid returns the stored record for an auction.
func (e *Engine) Bid(id uint64) (*Bid, error) { return e.loadBid(id) }

// StartAuction opens a new auction selling soldAmount from the module's
// reserve, seeded with the creator's burnBid stake. The seed must price the
// lot strictly below its oracle fair value.
func (e *Engine) StartAuction(creator crypto.Address, burnBid, soldAmount *big.Int) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	if !e.live {
		return 0, ErrNotLive
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return 0, err
	}
	if e.burnToken == nil || e.soldToken == nil {
		return 0, errNilToken
	}
	if e.auth != nil && !e.auth.IsAuthorized(creator) {
		return 0, ErrUnauthorized
	}
	if burnBid == nil || burnBid.Sign() <= 0 || soldAmount == nil || soldAmount.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	if soldAmount.Cmp(e.minimumSoldAmount) < 0 {
		return 0, ErrBelowMinimum
	}
	// Lots already promised to open auctions stay committed until claimed
	// or reclaimed, so concurrent auctions cannot oversell the reserve.
	available := new(big.Int).Sub(e.soldToken.BalanceOf(e.moduleAddress), e.committedReserve)
	if available.Cmp(soldAmount) < 0 {
		return 0, ErrInsufficientReserve
	}
	fair, err := oracle.Convert(e.rates, soldAmount)
	if err != nil {
		return 0, err
	}
	if burnBid.Cmp(fair) >= 0 {
		return 0, ErrBidTooHigh
	}
	id, err := e.state.NextBidID()
	if err != nil {
		return 0, err
	}
	if !e.burnToken.TransferFrom(e.moduleAddress, creator, e.moduleAddress, burnBid) {
		return 0, ErrTransferFailed
	}
	now := e.now()
	b := &Bid{
		ID:         id,
		Creator:    creator,
		Bidder:     creator,
		BurnBid:    new(big.Int).Set(burnBid),
		SoldAmount: new(big.Int).Set(soldAmount),
		End:        now + e.auctionDuration,
	}
	if err := e.state.PutBid(b); err != nil {
		return 0, err
	}
	e.committedReserve.Add(e.committedReserve, soldAmount)
	metrics.Ledger().BurnerStarted()
	e.emit(newBidEvent(EventTypeBurnerStarted, b, nil))
	if e.log != nil {
		e.log.Info("burner auction started", "id", id, "soldAmount", soldAmount.String(), "seedBid", burnBid.String())
	}
	return id, nil
}

// Offer places a competing bid, refunding the previous bidder's stake and
// resetting the bid window.
func (e *Engine) Offer(bidder crypto.Address, id uint64, newBid *big.Int) error {
	if !e.live {
		return ErrNotLive
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if newBid == nil || newBid.Sign() <= 0 {
		return ErrInvalidAmount
	}
	b, err := e.loadBid(id)
	if err != nil {
		return err
	}
	now := e.now()
	if now >= b.End {
		return ErrAuctionFinished
	}
	if b.Bidder.IsZero() {
		return ErrBidderNotSet
	}
	if b.ExpirationTime != 0 && now >= b.ExpirationTime {
		return ErrBidExpired
	}
	if newBid.Cmp(b.BurnBid) <= 0 {
		return ErrBidNotHigher
	}
	// newBid * WAD >= bidIncrement * currentBid enforces the percentage
	// raise without fixed-point division.
	lhs := new(big.Int).Mul(newBid, big.NewInt(WAD))
	rhs := new(big.Int).Mul(e.bidIncrement, b.BurnBid)
	if lhs.Cmp(rhs) < 0 {
		return ErrInsufficientIncrease
	}

	if !e.burnToken.TransferFrom(e.moduleAddress, bidder, e.moduleAddress, newBid) {
		return ErrTransferFailed
	}
	if !e.burnToken.Transfer(e.moduleAddress, b.Bidder, b.BurnBid) {
		// Returning the incoming stake keeps the module's holdings in
		// step with the stored record, which still names the old bidder.
		e.burnToken.Transfer(e.moduleAddress, bidder, newBid)
		return ErrTransferFailed
	}

	b.Bidder = bidder
	b.BurnBid = new(big.Int).Set(newBid)
	b.ExpirationTime = now + e.bidWindow
	if err := e.state.PutBid(b); err != nil {
		return err
	}
	metrics.Ledger().BurnerBid()
	e.emit(newBidEvent(EventTypeBurnerBid, b, nil))
	return nil
}

// Claim settles a finished auction, sending the lot to the winning bidder.
// The winning burn stake stays under the module address for destruction.
func (e *Engine) Claim(id uint64) error {
	if !e.live {
		return ErrNotLive
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	b, err := e.loadBid(id)
	if err != nil {
		return err
	}
	if b.Bidder.IsZero() {
		return ErrBidderNotSet
	}
	if !b.finished(e.now()) {
		return ErrAuctionNotFinished
	}

	// The payout runs before the record is settled so a failed transfer
	// leaves the bid intact and the stake still reclaimable.
	winner := b.Bidder
	if !e.soldToken.Transfer(e.moduleAddress, winner, b.SoldAmount) {
		return ErrTransferFailed
	}
	b.Bidder = crypto.Address{}
	if err := e.state.PutBid(b); err != nil {
		return err
	}
	e.releaseReserve(b.SoldAmount)
	metrics.Ledger().BurnerClaim()
	e.emit(newBidEvent(EventTypeBurnerClaimed, b, map[string]string{"winner": winner.String()}))
	if e.log != nil {
		e.log.Info("burner auction claimed", "id", id, "winner", winner.String(), "retained", b.BurnBid.String())
	}
	return nil
}

// RestartAuction reopens a finished auction that never attracted a competing
// bid, pushing the deadline forward.
func (e *Engine) RestartAuction(id uint64) error {
	if !e.live {
		return ErrNotLive
	}
	b, err := e.loadBid(id)
	if err != nil {
		return err
	}
	if b.Bidder.IsZero() {
		return ErrBidderNotSet
	}
	now := e.now()
	if !b.finished(now) {
		return ErrAuctionNotFinished
	}
	if b.contested() {
		return ErrBidContested
	}
	b.End = now + e.auctionDuration
	b.ExpirationTime = 0
	if err := e.state.PutBid(b); err != nil {
		return err
	}
	e.emit(newBidEvent(EventTypeBurnerRestarted, b, nil))
	return nil
}

// Reclaim returns the current bidder's stake after the kill switch fired.
func (e *Engine) Reclaim(id uint64) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.live {
		return ErrStillLive
	}
	b, err := e.loadBid(id)
	if err != nil {
		return err
	}
	if b.Bidder.IsZero() {
		return ErrBidderNotSet
	}
	bidder := b.Bidder
	stake := new(big.Int).Set(b.BurnBid)
	if !e.burnToken.Transfer(e.moduleAddress, bidder, stake) {
		return ErrTransferFailed
	}
	b.Bidder = crypto.Address{}
	if err := e.state.PutBid(b); err != nil {
		return err
	}
	e.releaseReserve(b.SoldAmount)
	e.emit(newBidEvent(EventTypeBurnerReclaimed, b, map[string]string{"bidder": bidder.String()}))
	return nil
}
