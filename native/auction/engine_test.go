package auction

import (
	"math/big"
	"testing"

	"lendcore/crypto"
	"lendcore/native/token"
)

type mockAuctionState struct {
	auctions map[uint64]*Auction
	nextID   uint64
}

func newMockAuctionState() *mockAuctionState {
	return &mockAuctionState{auctions: make(map[uint64]*Auction), nextID: 1}
}

func (m *mockAuctionState) GetAuction(id uint64) (*Auction, error) {
	return m.auctions[id], nil
}

func (m *mockAuctionState) PutAuction(a *Auction) error {
	m.auctions[a.ID] = a
	return nil
}

func (m *mockAuctionState) NextAuctionID() (uint64, error) {
	id := m.nextID
	m.nextID++
	return id, nil
}

type recordedTake struct {
	id       uint64
	leftover *big.Int
	received *big.Int
	data     []byte
}

type recordingCallback struct {
	takes []recordedTake
}

func (r *recordingCallback) OnTake(id uint64, leftover, received *big.Int, data []byte) {
	r.takes = append(r.takes, recordedTake{id: id, leftover: leftover, received: received, data: data})
}

func testAddr(tag byte) crypto.Address {
	raw := make([]byte, 20)
	raw[19] = tag
	return crypto.NewAddress(crypto.LendPrefix, raw)
}

type auctionFixture struct {
	engine   *Engine
	state    *mockAuctionState
	base     *token.Ledger
	coll     *token.Ledger
	module   crypto.Address
	owner    crypto.Address
	taker    crypto.Address
	now      int64
	callback *recordingCallback
}

func newAuctionFixture(t *testing.T) *auctionFixture {
	t.Helper()
	fx := &auctionFixture{
		state:    newMockAuctionState(),
		base:     token.NewLedger("BASE"),
		coll:     token.NewLedger("COLL"),
		module:   testAddr(0x01),
		owner:    testAddr(0x02),
		taker:    testAddr(0x03),
		callback: &recordingCallback{},
	}
	registry := token.NewRegistry(fx.coll)
	fx.engine = NewEngine(fx.module, fx.base, registry)
	fx.engine.SetState(fx.state)
	fx.engine.SetCallback(fx.callback)
	fx.engine.SetNowFunc(func() int64 { return fx.now })

	fx.coll.Mint(fx.owner, big.NewInt(1_000_000))
	fx.coll.Approve(fx.owner, fx.module, big.NewInt(1_000_000))
	fx.base.Mint(fx.taker, big.NewInt(10_000_000))
	fx.base.Approve(fx.taker, fx.module, big.NewInt(10_000_000))
	return fx
}

func (fx *auctionFixture) create(t *testing.T, startOffer, refOffer, limit, amount, sellQuantity int64) uint64 {
	t.Helper()
	id, err := fx.engine.Create(fx.owner, "COLL",
		big.NewInt(startOffer), big.NewInt(refOffer), big.NewInt(limit),
		big.NewInt(amount), big.NewInt(sellQuantity))
	if err != nil {
		t.Fatalf("create auction: %v", err)
	}
	return id
}

func TestCreateValidatesBounds(t *testing.T) {
	fx := newAuctionFixture(t)
	cases := []struct {
		name                         string
		startOffer, refOffer, limit  int64
		amount, sellQuantity         int64
		wantErr                      error
	}{
		{"start above ref", 1000, 950, 2000, 100, 10, ErrInvalidBounds},
		{"ref above limit", 950, 2000, 1000, 100, 10, ErrInvalidBounds},
		{"equal bounds", 950, 950, 2000, 100, 10, ErrInvalidBounds},
		{"zero amount", 950, 1000, 2000, 0, 10, ErrInvalidAmount},
		{"zero quantity", 950, 1000, 2000, 100, 0, ErrInvalidAmount},
	}
	for _, tc := range cases {
		_, err := fx.engine.Create(fx.owner, "COLL",
			big.NewInt(tc.startOffer), big.NewInt(tc.refOffer), big.NewInt(tc.limit),
			big.NewInt(tc.amount), big.NewInt(tc.sellQuantity))
		if err != tc.wantErr {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestCreatePullsCollateralIntoCustody(t *testing.T) {
	fx := newAuctionFixture(t)
	id := fx.create(t, 950, 1000, 2000, 500, 50)
	if got := fx.coll.BalanceOf(fx.module); got.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("module collateral = %s, want 500", got)
	}
	a, err := fx.state.GetAuction(id)
	if err != nil || a == nil {
		t.Fatalf("stored auction missing: %v", err)
	}
	if a.LimitDelta != 12600 {
		t.Fatalf("limitDelta = %d, want 12600", a.LimitDelta)
	}
}

func TestOfferPriceSchedule(t *testing.T) {
	fx := newAuctionFixture(t)
	id := fx.create(t, 950, 1000, 2000, 500, 50)

	cases := []struct {
		at            int64
		price, amount int64
	}{
		{0, 950, 50},
		{300, 975, 50},
		{600, 1000, 50},
		{6300, 1475, 50},
		{12600, 2000, 50},
		{12600 + 43199, 2000, 50},
		{12600 + 43200, 2000, 25},
		{12600 + 2*43200, 2000, 12},
	}
	for _, tc := range cases {
		fx.now = tc.at
		price, quantity, err := fx.engine.Offer(id)
		if err != nil {
			t.Fatalf("offer at %d: %v", tc.at, err)
		}
		if price.Cmp(big.NewInt(tc.price)) != 0 {
			t.Fatalf("price at %d = %s, want %d", tc.at, price, tc.price)
		}
		if quantity.Cmp(big.NewInt(tc.amount)) != 0 {
			t.Fatalf("quantity at %d = %s, want %d", tc.at, quantity, tc.amount)
		}
	}
}

func TestOfferQuantityCappedAtRemaining(t *testing.T) {
	fx := newAuctionFixture(t)
	id := fx.create(t, 950, 1000, 2000, 30, 50)
	_, quantity, err := fx.engine.Offer(id)
	if err != nil {
		t.Fatalf("offer: %v", err)
	}
	if quantity.Cmp(big.NewInt(30)) != 0 {
		t.Fatalf("quantity = %s, want 30", quantity)
	}
}

func TestFullTakeSettlesBothLegs(t *testing.T) {
	fx := newAuctionFixture(t)
	id := fx.create(t, 950, 1000, 2000, 500, 50)
	fx.now = 6300

	taken, cost, err := fx.engine.Take(fx.taker, id, big.NewInt(1475), nil, false)
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if taken.Cmp(big.NewInt(50)) != 0 || cost.Cmp(big.NewInt(1475)) != 0 {
		t.Fatalf("take = (%s, %s), want (50, 1475)", taken, cost)
	}
	if got := fx.coll.BalanceOf(fx.taker); got.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("taker collateral = %s, want 50", got)
	}
	if got := fx.base.BalanceOf(fx.owner); got.Cmp(big.NewInt(1475)) != 0 {
		t.Fatalf("owner proceeds = %s, want 1475", got)
	}
	a, _ := fx.state.GetAuction(id)
	if a.Amount.Cmp(big.NewInt(450)) != 0 {
		t.Fatalf("remaining = %s, want 450", a.Amount)
	}
	if len(fx.callback.takes) != 1 {
		t.Fatalf("callback invocations = %d, want 1", len(fx.callback.takes))
	}
	rec := fx.callback.takes[0]
	if rec.leftover.Cmp(big.NewInt(450)) != 0 || rec.received.Cmp(big.NewInt(1475)) != 0 {
		t.Fatalf("callback = (%s, %s), want (450, 1475)", rec.leftover, rec.received)
	}
}

func TestFullTakeRejectsUnderpayment(t *testing.T) {
	fx := newAuctionFixture(t)
	id := fx.create(t, 950, 1000, 2000, 500, 50)
	fx.now = 6300
	if _, _, err := fx.engine.Take(fx.taker, id, big.NewInt(1474), nil, false); err != ErrInsufficientPayment {
		t.Fatalf("err = %v, want ErrInsufficientPayment", err)
	}
}

func TestPartialTakeProRata(t *testing.T) {
	fx := newAuctionFixture(t)
	id := fx.create(t, 950, 1000, 2000, 500, 50)
	fx.now = 600

	// Offer is (1000, 50). Tendering 300 buys floor(50*300/1000) = 15
	// units at a cost of ceil(1000*15/50) = 300.
	taken, cost, err := fx.engine.Take(fx.taker, id, big.NewInt(300), nil, true)
	if err != nil {
		t.Fatalf("partial take: %v", err)
	}
	if taken.Cmp(big.NewInt(15)) != 0 || cost.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("take = (%s, %s), want (15, 300)", taken, cost)
	}
	a, _ := fx.state.GetAuction(id)
	if a.Amount.Cmp(big.NewInt(485)) != 0 {
		t.Fatalf("remaining = %s, want 485", a.Amount)
	}
}

func TestPartialTakeRoundsCostUp(t *testing.T) {
	fx := newAuctionFixture(t)
	id := fx.create(t, 950, 1000, 2000, 500, 50)
	fx.now = 600

	// Tendering 99 buys floor(50*99/1000) = 4 units; the fair cost
	// 1000*4/50 = 80 divides evenly, so check an uneven quote too.
	taken, cost, err := fx.engine.Take(fx.taker, id, big.NewInt(99), nil, true)
	if err != nil {
		t.Fatalf("partial take: %v", err)
	}
	if taken.Cmp(big.NewInt(4)) != 0 || cost.Cmp(big.NewInt(80)) != 0 {
		t.Fatalf("take = (%s, %s), want (4, 80)", taken, cost)
	}

	fx.now = 6300
	// Offer is (1475, 50). Tendering 100 buys floor(50*100/1475) = 3
	// units at ceil(1475*3/50) = 89.
	taken, cost, err = fx.engine.Take(fx.taker, id, big.NewInt(100), nil, true)
	if err != nil {
		t.Fatalf("partial take: %v", err)
	}
	if taken.Cmp(big.NewInt(3)) != 0 || cost.Cmp(big.NewInt(89)) != 0 {
		t.Fatalf("take = (%s, %s), want (3, 89)", taken, cost)
	}
}

func TestPartialTakeBelowUnitPrice(t *testing.T) {
	fx := newAuctionFixture(t)
	id := fx.create(t, 950, 1000, 2000, 500, 50)
	fx.now = 600
	if _, _, err := fx.engine.Take(fx.taker, id, big.NewInt(19), nil, true); err != ErrInsufficientPayment {
		t.Fatalf("err = %v, want ErrInsufficientPayment", err)
	}
}

func TestTakeExhaustsAuction(t *testing.T) {
	fx := newAuctionFixture(t)
	id := fx.create(t, 950, 1000, 2000, 50, 50)
	fx.now = 600

	if _, _, err := fx.engine.Take(fx.taker, id, big.NewInt(1000), nil, false); err != nil {
		t.Fatalf("take: %v", err)
	}
	if _, _, err := fx.engine.Take(fx.taker, id, big.NewInt(1000), nil, false); err != ErrAuctionExhausted {
		t.Fatalf("err = %v, want ErrAuctionExhausted", err)
	}
	if _, _, err := fx.engine.Offer(id); err != ErrAuctionExhausted {
		t.Fatalf("offer err = %v, want ErrAuctionExhausted", err)
	}
}

func TestFailedTakeLeavesAuctionIntact(t *testing.T) {
	fx := newAuctionFixture(t)
	id := fx.create(t, 950, 1000, 2000, 2000, 50)
	fx.now = 600

	// Revoking the taker's allowance makes the payment leg fail.
	fx.base.Approve(fx.taker, fx.module, big.NewInt(0))
	if _, _, err := fx.engine.Take(fx.taker, id, big.NewInt(1000), nil, false); err != ErrTransferFailed {
		t.Fatalf("err = %v, want ErrTransferFailed", err)
	}

	a, _ := fx.state.GetAuction(id)
	if a.Amount.Cmp(big.NewInt(2000)) != 0 {
		t.Fatalf("remaining after failed take = %s, want 2000", a.Amount)
	}
	if got := fx.coll.BalanceOf(fx.taker); got.Sign() != 0 {
		t.Fatalf("taker collateral = %s, want 0", got)
	}
	if len(fx.callback.takes) != 0 {
		t.Fatalf("callback invocations = %d, want 0", len(fx.callback.takes))
	}

	// With the allowance restored the same take settles normally.
	fx.base.Approve(fx.taker, fx.module, big.NewInt(10_000_000))
	taken, cost, err := fx.engine.Take(fx.taker, id, big.NewInt(1000), nil, false)
	if err != nil {
		t.Fatalf("retried take: %v", err)
	}
	if taken.Cmp(big.NewInt(50)) != 0 || cost.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("take = (%s, %s), want (50, 1000)", taken, cost)
	}
	a, _ = fx.state.GetAuction(id)
	if a.Amount.Cmp(big.NewInt(1950)) != 0 {
		t.Fatalf("remaining = %s, want 1950", a.Amount)
	}
}

func TestTakeUnknownAuction(t *testing.T) {
	fx := newAuctionFixture(t)
	if _, _, err := fx.engine.Take(fx.taker, 99, big.NewInt(1000), nil, false); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
