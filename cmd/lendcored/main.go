package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"lendcore/config"
	"lendcore/crypto"
	"lendcore/native/auction"
	"lendcore/native/burner"
	"lendcore/native/loan"
	"lendcore/native/token"
	"lendcore/observability/logging"
	"lendcore/storage"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	logger := logging.Setup("lendcored", cfg.LogFile)

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "state"))
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()
	store := storage.NewStore(db)

	base := token.NewLedger(cfg.BaseToken)
	burn := token.NewLedger(cfg.BurnToken)
	registry := token.NewRegistry(base, burn)

	operator, err := loadOperatorKey(filepath.Join(cfg.DataDir, "operator.key"))
	if err != nil {
		panic(fmt.Sprintf("Failed to load operator key: %v", err))
	}
	ownerAddr := operator.PubKey().Address()

	loans := loan.NewEngine(moduleAddress("loanengine"), base)
	loans.SetState(store)
	loans.SetLogger(logger)

	auctions := auction.NewEngine(moduleAddress("collateral"), base, registry)
	auctions.SetState(store)
	auctions.SetLogger(logger)
	auctions.SetDecayInterval(cfg.DecayIntervalSecs)

	burners := burner.NewEngine(moduleAddress("burnerpool"), ownerAddr, burn, base)
	burners.SetState(store)
	burners.SetLogger(logger)
	if err := configureBurner(burners, ownerAddr, cfg); err != nil {
		logger.Error("Failed to configure burner engine", slog.Any("error", err))
		os.Exit(1)
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info("metrics listening", "address", cfg.MetricsAddress)
		if err := http.ListenAndServe(cfg.MetricsAddress, mux); err != nil {
			logger.Error("metrics server stopped", slog.Any("error", err))
		}
	}()

	srv := newServer(loans, auctions, burners, logger)
	logger.Info("lendcored listening", "address", cfg.ListenAddress)
	if err := http.ListenAndServe(cfg.ListenAddress, srv.router()); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func configureBurner(e *burner.Engine, owner crypto.Address, cfg *config.Config) error {
	increment, err := cfg.BidIncrementValue()
	if err != nil {
		return err
	}
	if err := e.SetBidIncrement(owner, increment); err != nil {
		return err
	}
	if err := e.SetAuctionDuration(owner, cfg.AuctionDurationSecs); err != nil {
		return err
	}
	if err := e.SetBidWindow(owner, cfg.BidWindowSecs); err != nil {
		return err
	}
	minimum, err := cfg.MinimumSoldAmountValue()
	if err != nil {
		return err
	}
	return e.SetMinimumSoldAmount(owner, minimum)
}

// loadOperatorKey reads the persisted operator key, generating and storing a
// fresh one on first start so the burner owner survives restarts.
func loadOperatorKey(path string) (*crypto.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err == nil {
		return crypto.PrivateKeyFromBytes(raw)
	}
	if !os.IsNotExist(err) {
		return nil, err
	}
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, key.Bytes(), 0o600); err != nil {
		return nil, err
	}
	return key, nil
}

// moduleAddress derives a stable custody address from a module tag.
func moduleAddress(tag string) crypto.Address {
	raw := make([]byte, 20)
	copy(raw, tag)
	return crypto.NewAddress(crypto.LendPrefix, raw)
}
