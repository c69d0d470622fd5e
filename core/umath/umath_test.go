package umath

import (
	"errors"
	"math/big"
	"testing"
)

func maxWord() *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), 256)
	return max.Sub(max, big.NewInt(1))
}

func TestWordRejectsOutOfDomain(t *testing.T) {
	if _, err := Word(big.NewInt(-1)); !errors.Is(err, ErrNegative) {
		t.Fatalf("negative err = %v, want ErrNegative", err)
	}
	over := new(big.Int).Add(maxWord(), big.NewInt(1))
	if _, err := Word(over); !errors.Is(err, ErrOverflow) {
		t.Fatalf("overflow err = %v, want ErrOverflow", err)
	}
	w, err := Word(nil)
	if err != nil || !w.IsZero() {
		t.Fatalf("nil word = (%v, %v), want zero", w, err)
	}
}

func TestAddOverflow(t *testing.T) {
	sum, err := Add(big.NewInt(2), big.NewInt(3))
	if err != nil || sum.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("add = (%s, %v), want 5", sum, err)
	}
	if _, err := Add(maxWord(), big.NewInt(1)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("err = %v, want ErrOverflow", err)
	}
}

func TestSubRefusesUnderflow(t *testing.T) {
	diff, err := Sub(big.NewInt(5), big.NewInt(3))
	if err != nil || diff.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("sub = (%s, %v), want 2", diff, err)
	}
	if _, err := Sub(big.NewInt(3), big.NewInt(5)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("err = %v, want ErrOverflow", err)
	}
}

func TestMulOverflow(t *testing.T) {
	product, err := Mul(big.NewInt(6), big.NewInt(7))
	if err != nil || product.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("mul = (%s, %v), want 42", product, err)
	}
	half := new(big.Int).Lsh(big.NewInt(1), 200)
	if _, err := Mul(half, half); !errors.Is(err, ErrOverflow) {
		t.Fatalf("err = %v, want ErrOverflow", err)
	}
}

func TestDivFloorsAndChecksZero(t *testing.T) {
	quot, err := Div(big.NewInt(7), big.NewInt(2))
	if err != nil || quot.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("div = (%s, %v), want 3", quot, err)
	}
	if _, err := Div(big.NewInt(1), big.NewInt(0)); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("err = %v, want ErrDivisionByZero", err)
	}
}

func TestMulDivUsesWideIntermediate(t *testing.T) {
	// a*b overflows 256 bits but the quotient fits.
	a := new(big.Int).Lsh(big.NewInt(1), 200)
	b := new(big.Int).Lsh(big.NewInt(1), 100)
	den := new(big.Int).Lsh(big.NewInt(1), 60)
	want := new(big.Int).Lsh(big.NewInt(1), 240)

	quot, err := MulDiv(a, b, den)
	if err != nil {
		t.Fatalf("muldiv: %v", err)
	}
	if quot.Cmp(want) != 0 {
		t.Fatalf("muldiv = %s, want %s", quot, want)
	}

	if _, err := MulDiv(a, b, big.NewInt(1)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("err = %v, want ErrOverflow", err)
	}
	if _, err := MulDiv(a, b, big.NewInt(0)); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("err = %v, want ErrDivisionByZero", err)
	}
}
