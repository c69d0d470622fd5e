package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the daemon configuration, loaded from a TOML file. Missing files
// are created with defaults so a fresh checkout starts without ceremony.
type Config struct {
	ListenAddress  string `toml:"ListenAddress"`
	MetricsAddress string `toml:"MetricsAddress"`
	DataDir        string `toml:"DataDir"`
	LogFile        string `toml:"LogFile"`
	BaseToken      string `toml:"BaseToken"`
	BurnToken      string `toml:"BurnToken"`

	// BidIncrement is a WAD-scaled ratio kept as a decimal string so the
	// full 18-digit precision survives TOML round-trips.
	BidIncrement        string `toml:"BidIncrement"`
	AuctionDurationSecs int64  `toml:"AuctionDurationSeconds"`
	BidWindowSecs       int64  `toml:"BidWindowSeconds"`
	MinimumSoldAmount   string `toml:"MinimumSoldAmount"`
	DecayIntervalSecs   uint64 `toml:"DecayIntervalSeconds"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := defaultConfig()
	if strings.TrimSpace(c.ListenAddress) == "" {
		c.ListenAddress = def.ListenAddress
	}
	if strings.TrimSpace(c.MetricsAddress) == "" {
		c.MetricsAddress = def.MetricsAddress
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = def.DataDir
	}
	if strings.TrimSpace(c.BaseToken) == "" {
		c.BaseToken = def.BaseToken
	}
	if strings.TrimSpace(c.BurnToken) == "" {
		c.BurnToken = def.BurnToken
	}
	if strings.TrimSpace(c.BidIncrement) == "" {
		c.BidIncrement = def.BidIncrement
	}
	if c.AuctionDurationSecs == 0 {
		c.AuctionDurationSecs = def.AuctionDurationSecs
	}
	if c.BidWindowSecs == 0 {
		c.BidWindowSecs = def.BidWindowSecs
	}
	if strings.TrimSpace(c.MinimumSoldAmount) == "" {
		c.MinimumSoldAmount = def.MinimumSoldAmount
	}
	if c.DecayIntervalSecs == 0 {
		c.DecayIntervalSecs = def.DecayIntervalSecs
	}
}

// Validate rejects configurations the engines cannot run with.
func (c *Config) Validate() error {
	if _, err := c.BidIncrementValue(); err != nil {
		return err
	}
	if _, err := c.MinimumSoldAmountValue(); err != nil {
		return err
	}
	if c.AuctionDurationSecs <= 0 {
		return fmt.Errorf("config: AuctionDurationSeconds must be positive")
	}
	if c.BidWindowSecs <= 0 {
		return fmt.Errorf("config: BidWindowSeconds must be positive")
	}
	if c.BaseToken == c.BurnToken {
		return fmt.Errorf("config: BaseToken and BurnToken must differ")
	}
	return nil
}

// BidIncrementValue parses the bid increment ratio.
func (c *Config) BidIncrementValue() (*big.Int, error) {
	v, ok := new(big.Int).SetString(c.BidIncrement, 10)
	if !ok || v.Sign() <= 0 {
		return nil, fmt.Errorf("config: invalid BidIncrement %q", c.BidIncrement)
	}
	return v, nil
}

// MinimumSoldAmountValue parses the minimum burner lot size.
func (c *Config) MinimumSoldAmountValue() (*big.Int, error) {
	v, ok := new(big.Int).SetString(c.MinimumSoldAmount, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("config: invalid MinimumSoldAmount %q", c.MinimumSoldAmount)
	}
	return v, nil
}

func defaultConfig() *Config {
	return &Config{
		ListenAddress:       ":8080",
		MetricsAddress:      ":9090",
		DataDir:             "./lendcore-data",
		BaseToken:           "BASE",
		BurnToken:           "BURN",
		BidIncrement:        "1050000000000000000",
		AuctionDurationSecs: 48 * 60 * 60,
		BidWindowSecs:       3 * 60 * 60,
		MinimumSoldAmount:   "0",
		DecayIntervalSecs:   43200,
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := defaultConfig()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
