package oracle

import (
	"errors"
	"math/big"
)

var (
	// ErrInvalidResponse is returned when a source reports an unusable rate,
	// most notably a zero denominator.
	ErrInvalidResponse = errors.New("oracle: invalid response")
)

// Source reports an exchange rate as a numerator/denominator pair. Converting
// an amount from the quoted currency into the base currency multiplies by the
// numerator and divides by the denominator.
type Source interface {
	Rate() (num, den *big.Int, err error)
}

// Fixed is a source pinned to a constant rate. It backs tests and bootstrap
// wiring where no live feed exists.
type Fixed struct {
	Num *big.Int
	Den *big.Int
}

// NewFixed pins a rate of num/den.
func NewFixed(num, den int64) *Fixed {
	return &Fixed{Num: big.NewInt(num), Den: big.NewInt(den)}
}

// Rate implements the Source interface.
func (f *Fixed) Rate() (*big.Int, *big.Int, error) {
	if f == nil || f.Num == nil || f.Den == nil || f.Den.Sign() == 0 {
		return nil, nil, ErrInvalidResponse
	}
	return new(big.Int).Set(f.Num), new(big.Int).Set(f.Den), nil
}

// Convert applies the source rate to an amount, flooring the result. A nil
// source converts 1:1.
func Convert(src Source, amount *big.Int) (*big.Int, error) {
	if amount == nil {
		return big.NewInt(0), nil
	}
	if src == nil {
		return new(big.Int).Set(amount), nil
	}
	num, den, err := src.Rate()
	if err != nil {
		return nil, err
	}
	if num == nil || den == nil || den.Sign() == 0 {
		return nil, ErrInvalidResponse
	}
	out := new(big.Int).Mul(amount, num)
	return out.Quo(out, den), nil
}
