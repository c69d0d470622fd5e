package umath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	// ErrOverflow is returned whenever a checked operation would exceed 256
	// bits. Ledger arithmetic must never wrap silently.
	ErrOverflow = errors.New("umath: arithmetic overflow")
	// ErrDivisionByZero is returned for a zero divisor.
	ErrDivisionByZero = errors.New("umath: division by zero")
	// ErrNegative is returned when a signed big integer below zero is passed
	// into the unsigned 256-bit domain.
	ErrNegative = errors.New("umath: negative operand")
)

// Word converts a big integer into the checked 256-bit domain. Nil values are
// treated as zero to match the defaulting behaviour of the ledger entities.
func Word(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, ErrNegative
	}
	w, overflow := uint256.FromBig(v)
	if overflow {
		return nil, ErrOverflow
	}
	return w, nil
}

// Add returns a+b or ErrOverflow.
func Add(a, b *big.Int) (*big.Int, error) {
	x, err := Word(a)
	if err != nil {
		return nil, err
	}
	y, err := Word(b)
	if err != nil {
		return nil, err
	}
	sum, carry := new(uint256.Int).AddOverflow(x, y)
	if carry {
		return nil, ErrOverflow
	}
	return sum.ToBig(), nil
}

// Sub returns a-b and fails instead of wrapping below zero.
func Sub(a, b *big.Int) (*big.Int, error) {
	x, err := Word(a)
	if err != nil {
		return nil, err
	}
	y, err := Word(b)
	if err != nil {
		return nil, err
	}
	if x.Lt(y) {
		return nil, ErrOverflow
	}
	return new(uint256.Int).Sub(x, y).ToBig(), nil
}

// Mul returns a*b or ErrOverflow.
func Mul(a, b *big.Int) (*big.Int, error) {
	x, err := Word(a)
	if err != nil {
		return nil, err
	}
	y, err := Word(b)
	if err != nil {
		return nil, err
	}
	product, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, ErrOverflow
	}
	return product.ToBig(), nil
}

// Div returns floor(a/b).
func Div(a, b *big.Int) (*big.Int, error) {
	x, err := Word(a)
	if err != nil {
		return nil, err
	}
	y, err := Word(b)
	if err != nil {
		return nil, err
	}
	if y.IsZero() {
		return nil, ErrDivisionByZero
	}
	return new(uint256.Int).Div(x, y).ToBig(), nil
}

// MulDiv returns floor(a*b/den) using a 512-bit intermediate product, so the
// operation only fails when the final quotient itself does not fit 256 bits.
func MulDiv(a, b, den *big.Int) (*big.Int, error) {
	x, err := Word(a)
	if err != nil {
		return nil, err
	}
	y, err := Word(b)
	if err != nil {
		return nil, err
	}
	d, err := Word(den)
	if err != nil {
		return nil, err
	}
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	quot, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, ErrOverflow
	}
	return quot.ToBig(), nil
}
