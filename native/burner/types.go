package burner

import (
	"math/big"

	"lendcore/crypto"
)

// Default auction parameters. The bid increment is a WAD-scaled ratio, so
// 1.05e18 requires each competing bid to beat the leader by at least 5%.
const (
	// WAD is the fixed-point scale for the bid increment ratio.
	WAD = 1_000_000_000_000_000_000

	DefaultAuctionDuration = 48 * 60 * 60
	DefaultBidWindow       = 3 * 60 * 60
)

// DefaultBidIncrement returns the 5% minimum raise ratio.
func DefaultBidIncrement() *big.Int {
	return big.NewInt(1_050_000_000_000_000_000)
}

// Bid is one rising-bid auction selling a fixed reserve lot for the burn
// token. The creator seeds the opening bid and remains the bidder until a
// competing offer arrives.
type Bid struct {
	ID             uint64         `json:"id"`
	Creator        crypto.Address `json:"creator"`
	Bidder         crypto.Address `json:"bidder"`
	BurnBid        *big.Int       `json:"burnBid"`
	SoldAmount     *big.Int       `json:"soldAmount"`
	ExpirationTime int64          `json:"expirationTime"`
	End            int64          `json:"end"`
}

func (b *Bid) ensureDefaults() {
	if b.BurnBid == nil {
		b.BurnBid = big.NewInt(0)
	}
	if b.SoldAmount == nil {
		b.SoldAmount = big.NewInt(0)
	}
}

// finished reports whether both the auction deadline and the live bid window
// have lapsed at the supplied time.
func (b *Bid) finished(now int64) bool {
	if now < b.End {
		return false
	}
	return b.ExpirationTime == 0 || now >= b.ExpirationTime
}

// contested reports whether a competing bid has replaced the creator's seed.
func (b *Bid) contested() bool {
	return !b.Bidder.Equal(b.Creator)
}
