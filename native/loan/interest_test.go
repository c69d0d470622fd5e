package loan

import (
	"errors"
	"math/big"
	"testing"

	"lendcore/core/umath"
)

const day = 86400

func TestAnnualRateEncoding(t *testing.T) {
	cases := []struct {
		percent uint64
		want    int64
	}{
		{28, 11108571428571},
		{42, 7405714285714},
	}
	for _, tc := range cases {
		if got := AnnualRate(tc.percent); got.Cmp(big.NewInt(tc.want)) != 0 {
			t.Fatalf("AnnualRate(%d) = %s, want %d", tc.percent, got, tc.want)
		}
	}
}

func TestInterestAccrual(t *testing.T) {
	rate := AnnualRate(28)

	increment, consumed, err := Interest(big.NewInt(10000), rate, 30*day)
	if err != nil {
		t.Fatalf("interest: %v", err)
	}
	if increment.Cmp(big.NewInt(233)) != 0 {
		t.Fatalf("increment = %s, want 233", increment)
	}
	if consumed == 0 || consumed > 30*day {
		t.Fatalf("consumed = %d, want within (0, %d]", consumed, 30*day)
	}
}

func TestInterestZeroCases(t *testing.T) {
	rate := AnnualRate(28)

	increment, consumed, err := Interest(big.NewInt(10000), rate, 0)
	if err != nil || increment.Sign() != 0 || consumed != 0 {
		t.Fatalf("zero delta = (%s, %d, %v), want (0, 0, nil)", increment, consumed, err)
	}
	increment, consumed, err = Interest(big.NewInt(0), rate, 1000)
	if err != nil || increment.Sign() != 0 || consumed != 1000 {
		t.Fatalf("zero amount = (%s, %d, %v), want (0, 1000, nil)", increment, consumed, err)
	}
	// One second on a small base floors to zero and consumes nothing, so
	// the caller carries the whole delta forward.
	increment, consumed, err = Interest(big.NewInt(100), rate, 1)
	if err != nil || increment.Sign() != 0 || consumed != 0 {
		t.Fatalf("sub-unit accrual = (%s, %d, %v), want (0, 0, nil)", increment, consumed, err)
	}
}

func TestInterestMonotonicInDelta(t *testing.T) {
	rate := AnnualRate(42)
	prev := big.NewInt(0)
	for _, delta := range []uint64{day, 7 * day, 30 * day, 91 * day, 360 * day} {
		increment, _, err := Interest(big.NewInt(10000), rate, delta)
		if err != nil {
			t.Fatalf("interest(%d): %v", delta, err)
		}
		if increment.Cmp(prev) < 0 {
			t.Fatalf("interest decreased at delta %d: %s < %s", delta, increment, prev)
		}
		prev = increment
	}
}

func TestInterestOverflowFallback(t *testing.T) {
	rate := AnnualRate(28)
	// amount*100000*delta exceeds 256 bits, forcing the divide-first order.
	amount := new(big.Int).Lsh(big.NewInt(1), 230)
	increment, consumed, err := Interest(amount, rate, 1<<40)
	if err != nil {
		t.Fatalf("fallback order: %v", err)
	}
	if increment.Sign() <= 0 {
		t.Fatalf("increment = %s, want positive", increment)
	}
	if consumed == 0 {
		t.Fatalf("consumed = 0, want positive")
	}

	// Both orders overflowing must fail, not wrap.
	amount = new(big.Int).Lsh(big.NewInt(1), 250)
	if _, _, err := Interest(amount, rate, 1<<60); !errors.Is(err, umath.ErrOverflow) {
		t.Fatalf("err = %v, want ErrOverflow", err)
	}
}

func TestInterestRejectsBadRate(t *testing.T) {
	if _, _, err := Interest(big.NewInt(10000), nil, day); !errors.Is(err, umath.ErrDivisionByZero) {
		t.Fatalf("nil rate err = %v, want ErrDivisionByZero", err)
	}
	if _, _, err := Interest(big.NewInt(10000), big.NewInt(0), day); !errors.Is(err, umath.ErrDivisionByZero) {
		t.Fatalf("zero rate err = %v, want ErrDivisionByZero", err)
	}
}
