package oracle

import (
	"errors"
	"math/big"
	"testing"
)

func TestConvertAppliesRate(t *testing.T) {
	src := NewFixed(3, 2)
	got, err := Convert(src, big.NewInt(100))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got.Cmp(big.NewInt(150)) != 0 {
		t.Fatalf("converted = %s, want 150", got)
	}
}

func TestConvertFloors(t *testing.T) {
	src := NewFixed(1, 3)
	got, err := Convert(src, big.NewInt(100))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got.Cmp(big.NewInt(33)) != 0 {
		t.Fatalf("converted = %s, want 33", got)
	}
}

func TestConvertWithoutSourceIsIdentity(t *testing.T) {
	got, err := Convert(nil, big.NewInt(777))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got.Cmp(big.NewInt(777)) != 0 {
		t.Fatalf("converted = %s, want 777", got)
	}
}

func TestConvertRejectsZeroDenominator(t *testing.T) {
	src := NewFixed(1, 0)
	if _, err := Convert(src, big.NewInt(100)); !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
}
