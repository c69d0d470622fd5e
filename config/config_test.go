package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default file not written: %v", err)
	}
	if cfg.ListenAddress != ":8080" {
		t.Fatalf("ListenAddress = %q, want :8080", cfg.ListenAddress)
	}
	increment, err := cfg.BidIncrementValue()
	if err != nil {
		t.Fatalf("bid increment: %v", err)
	}
	want, _ := new(big.Int).SetString("1050000000000000000", 10)
	if increment.Cmp(want) != 0 {
		t.Fatalf("bid increment = %s, want %s", increment, want)
	}
}

func TestLoadFillsMissingFieldsWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "ListenAddress = \":9000\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddress != ":9000" {
		t.Fatalf("ListenAddress = %q, want :9000", cfg.ListenAddress)
	}
	if cfg.AuctionDurationSecs != 48*60*60 {
		t.Fatalf("AuctionDurationSeconds = %d, want %d", cfg.AuctionDurationSecs, 48*60*60)
	}
	if cfg.DecayIntervalSecs != 43200 {
		t.Fatalf("DecayIntervalSeconds = %d, want 43200", cfg.DecayIntervalSecs)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad increment", "BidIncrement = \"not-a-number\"\n"},
		{"negative duration", "AuctionDurationSeconds = -1\n"},
		{"same tokens", "BaseToken = \"X\"\nBurnToken = \"X\"\n"},
	}
	for _, tc := range cases {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: load succeeded, want error", tc.name)
		}
	}
}
