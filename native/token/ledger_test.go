package token

import (
	"math/big"
	"testing"

	"lendcore/crypto"
)

func testAddr(tag byte) crypto.Address {
	raw := make([]byte, 20)
	raw[19] = tag
	return crypto.NewAddress(crypto.LendPrefix, raw)
}

func TestTransferChecksBalance(t *testing.T) {
	ledger := NewLedger("BASE")
	a, b := testAddr(0x01), testAddr(0x02)
	ledger.Mint(a, big.NewInt(100))

	if !ledger.Transfer(a, b, big.NewInt(60)) {
		t.Fatalf("transfer within balance failed")
	}
	if ledger.Transfer(a, b, big.NewInt(50)) {
		t.Fatalf("transfer beyond balance succeeded")
	}
	if got := ledger.BalanceOf(a); got.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("sender balance = %s, want 40", got)
	}
	if got := ledger.BalanceOf(b); got.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("recipient balance = %s, want 60", got)
	}
}

func TestZeroAmountTransfersSucceed(t *testing.T) {
	ledger := NewLedger("BASE")
	a, b := testAddr(0x01), testAddr(0x02)
	if !ledger.Transfer(a, b, big.NewInt(0)) {
		t.Fatalf("zero transfer failed")
	}
	if !ledger.TransferFrom(b, a, b, big.NewInt(0)) {
		t.Fatalf("zero transferFrom failed")
	}
}

func TestTransferFromConsumesAllowance(t *testing.T) {
	ledger := NewLedger("BASE")
	owner, spender, dest := testAddr(0x01), testAddr(0x02), testAddr(0x03)
	ledger.Mint(owner, big.NewInt(100))

	if ledger.TransferFrom(spender, owner, dest, big.NewInt(10)) {
		t.Fatalf("transferFrom without allowance succeeded")
	}
	ledger.Approve(owner, spender, big.NewInt(30))
	if !ledger.TransferFrom(spender, owner, dest, big.NewInt(20)) {
		t.Fatalf("transferFrom within allowance failed")
	}
	if got := ledger.Allowance(owner, spender); got.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("allowance = %s, want 10", got)
	}
	if ledger.TransferFrom(spender, owner, dest, big.NewInt(20)) {
		t.Fatalf("transferFrom beyond allowance succeeded")
	}
}

func TestSelfSpendBypassesAllowance(t *testing.T) {
	ledger := NewLedger("BASE")
	owner, dest := testAddr(0x01), testAddr(0x02)
	ledger.Mint(owner, big.NewInt(100))

	if !ledger.TransferFrom(owner, owner, dest, big.NewInt(40)) {
		t.Fatalf("self transferFrom failed")
	}
	if got := ledger.BalanceOf(dest); got.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("recipient balance = %s, want 40", got)
	}
}

func TestRegistryResolvesBySymbol(t *testing.T) {
	base := NewLedger("BASE")
	coll := NewLedger("COLL")
	registry := NewRegistry(base, coll)

	if registry.Token("COLL") != coll {
		t.Fatalf("registry did not resolve COLL")
	}
	if registry.Token("UNKNOWN") != nil {
		t.Fatalf("unknown symbol resolved")
	}
}
