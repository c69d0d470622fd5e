package auction

import (
	"math/big"

	"lendcore/core/umath"
	"lendcore/crypto"
)

// Reference window: the offer climbs from the start price to the reference
// price over these many seconds.
const refWindow = 600

// DefaultDecayInterval is the period after the price plateau over which the
// offered quantity halves.
const DefaultDecayInterval = 43_200

// Auction is a collateral sale priced by elapsed time. The price climbs from
// StartOffer to RefOffer over the reference window, then to Limit over the
// derived LimitDelta, and plateaus there; past the plateau the quantity
// offered per take halves every decay interval so the economic value decays
// instead of the price.
type Auction struct {
	ID           uint64
	Owner        crypto.Address
	FromToken    string
	StartTime    int64
	StartOffer   *big.Int
	RefOffer     *big.Int
	Limit        *big.Int
	LimitDelta   uint64
	Amount       *big.Int
	SellQuantity *big.Int
}

// limitDelta derives the seconds from start until the price reaches the
// absolute limit, extrapolating the slope of the reference window.
func limitDelta(startOffer, refOffer, limit *big.Int) (uint64, error) {
	num := new(big.Int).Sub(limit, startOffer)
	den := new(big.Int).Sub(refOffer, startOffer)
	delta, err := umath.MulDiv(big.NewInt(refWindow), num, den)
	if err != nil {
		return 0, err
	}
	if !delta.IsUint64() {
		return 0, ErrInvalidBounds
	}
	return delta.Uint64(), nil
}

// offerAt computes the current price and offered quantity. The price is
// non-decreasing in time and never exceeds the limit; the quantity is
// non-increasing once decay starts and never exceeds the remaining amount.
func (a *Auction) offerAt(now int64, decayInterval uint64) (*big.Int, *big.Int, error) {
	elapsed := now - a.StartTime
	if elapsed < 0 {
		elapsed = 0
	}
	t := uint64(elapsed)

	var price *big.Int
	quantity := new(big.Int).Set(a.SellQuantity)
	switch {
	case t <= refWindow:
		span := new(big.Int).Sub(a.RefOffer, a.StartOffer)
		rise, err := umath.MulDiv(span, new(big.Int).SetUint64(t), big.NewInt(refWindow))
		if err != nil {
			return nil, nil, err
		}
		price = new(big.Int).Add(a.StartOffer, rise)
	case t <= a.LimitDelta:
		span := new(big.Int).Sub(a.Limit, a.RefOffer)
		rise, err := umath.MulDiv(span, new(big.Int).SetUint64(t-refWindow), new(big.Int).SetUint64(a.LimitDelta-refWindow))
		if err != nil {
			return nil, nil, err
		}
		price = new(big.Int).Add(a.RefOffer, rise)
	default:
		price = new(big.Int).Set(a.Limit)
		if decayInterval > 0 {
			halvings := (t - a.LimitDelta) / decayInterval
			if halvings >= uint64(quantity.BitLen()) {
				quantity.SetInt64(0)
			} else {
				quantity.Rsh(quantity, uint(halvings))
			}
		}
	}

	if quantity.Cmp(a.Amount) > 0 {
		quantity.Set(a.Amount)
	}
	return price, quantity, nil
}
