package common

import (
	"testing"

	"lendcore/crypto"
)

type pauseMap map[string]bool

func (p pauseMap) IsPaused(module string) bool { return p[module] }

func TestGuard(t *testing.T) {
	pauses := pauseMap{"loan": true}

	if err := Guard(pauses, "loan"); err != ErrModulePaused {
		t.Fatalf("paused module err = %v, want ErrModulePaused", err)
	}
	if err := Guard(pauses, "auction"); err != nil {
		t.Fatalf("unpaused module err = %v", err)
	}
	if err := Guard(nil, "loan"); err != nil {
		t.Fatalf("nil view err = %v", err)
	}
}

func TestAllowList(t *testing.T) {
	raw := make([]byte, 20)
	raw[19] = 0x01
	addr := crypto.NewAddress(crypto.LendPrefix, raw)

	list := NewAllowList()
	if list.IsAuthorized(addr) {
		t.Fatalf("empty list authorized address")
	}
	list.Grant(addr)
	if !list.IsAuthorized(addr) {
		t.Fatalf("granted address not authorized")
	}
	list.Revoke(addr)
	if list.IsAuthorized(addr) {
		t.Fatalf("revoked address still authorized")
	}
}
