package loan

import (
	"errors"
	"math/big"

	"lendcore/core/umath"
)

// Rates encode "seconds for the debt to double", scaled so that the interest
// accrued by a base over delta seconds is 100000*base*delta/rate. Lower rate
// values therefore mean higher interest; values below MinRate are rejected as
// abnormally high at loan creation.
const (
	ratePrecision = 100_000
	// MinRate is the sanity floor for interest rate encodings.
	MinRate = 1000
	// secondsPerYear uses the 360-day financial year of the rate encoding.
	secondsPerYear = 360 * 86400
)

var ratePrecisionBig = big.NewInt(ratePrecision)

// AnnualRate converts an annual percentage into the rate encoding, e.g.
// AnnualRate(28) for 28% a year.
func AnnualRate(percent uint64) *big.Int {
	rate := new(big.Int).Mul(big.NewInt(10_000_000), big.NewInt(secondsPerYear))
	return rate.Quo(rate, new(big.Int).SetUint64(percent))
}

// Interest computes the interest accrued by a base amount over delta seconds
// at the given rate, together with the number of seconds actually represented
// by the floored increment. Callers advance their accrual timestamp by the
// consumed delta only, carrying the fractional remainder into the next call.
//
// The product 100000*amount*delta is evaluated in checked 256-bit arithmetic.
// When the full-precision order overflows, the division by rate is applied
// first; if both orders overflow the call fails rather than wrapping.
func Interest(amount, rate *big.Int, delta uint64) (*big.Int, uint64, error) {
	if rate == nil || rate.Sign() <= 0 {
		return nil, 0, umath.ErrDivisionByZero
	}
	if amount == nil || amount.Sign() == 0 {
		return big.NewInt(0), delta, nil
	}
	if delta == 0 {
		return big.NewInt(0), 0, nil
	}

	scaled, err := umath.Mul(amount, ratePrecisionBig)
	if err != nil {
		return nil, 0, err
	}
	deltaBig := new(big.Int).SetUint64(delta)

	var increment *big.Int
	product, err := umath.Mul(scaled, deltaBig)
	switch {
	case err == nil:
		if increment, err = umath.Div(product, rate); err != nil {
			return nil, 0, err
		}
	case errors.Is(err, umath.ErrOverflow):
		// Divide before multiplying at the cost of sub-second precision.
		perSecond, divErr := umath.Div(scaled, rate)
		if divErr != nil {
			return nil, 0, divErr
		}
		if increment, err = umath.Mul(perSecond, deltaBig); err != nil {
			return nil, 0, err
		}
	default:
		return nil, 0, err
	}

	if increment.Sign() == 0 {
		return big.NewInt(0), 0, nil
	}
	consumedBig, err := umath.MulDiv(increment, rate, scaled)
	if err != nil {
		return nil, 0, err
	}
	consumed := consumedBig.Uint64()
	if consumed > delta {
		consumed = delta
	}
	return increment, consumed, nil
}
