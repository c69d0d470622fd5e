package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"lendcore/crypto"
	"lendcore/native/auction"
	"lendcore/native/burner"
	"lendcore/native/loan"
)

const (
	loanKeyPrefix    = "loan/"
	auctionKeyPrefix = "auction/"
	bidKeyPrefix     = "burner/"

	loanSeqKey    = "seq/loan"
	auctionSeqKey = "seq/auction"
	bidSeqKey     = "seq/burner"
)

// Store persists ledger entities as JSON documents in a Database and hands
// out the sequential identifiers the engines allocate from. One Store backs
// all three engines.
type Store struct {
	db Database
}

// NewStore wraps a Database in the ledger state layer.
func NewStore(db Database) *Store {
	return &Store{db: db}
}

func (s *Store) getJSON(key string, out any) (bool, error) {
	raw, err := s.db.Get([]byte(key))
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("storage: decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) putJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	return s.db.Put([]byte(key), raw)
}

func (s *Store) nextID(key string) (uint64, error) {
	var next uint64 = 1
	raw, err := s.db.Get([]byte(key))
	switch {
	case errors.Is(err, ErrKeyNotFound):
	case err != nil:
		return 0, err
	default:
		next = binary.BigEndian.Uint64(raw) + 1
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	if err := s.db.Put([]byte(key), buf); err != nil {
		return 0, err
	}
	return next, nil
}

// loanRecord is the persisted form of a loan. The debt model is stored as a
// tagged snapshot so either variant round-trips through JSON.
type loanRecord struct {
	ID            uint64             `json:"id"`
	Creator       crypto.Address     `json:"creator"`
	Borrower      crypto.Address     `json:"borrower"`
	Lender        crypto.Address     `json:"lender"`
	Lent          bool               `json:"lent"`
	LenderBalance *big.Int           `json:"lenderBalance"`
	Model         loan.ModelSnapshot `json:"model"`
}

// GetLoan loads a loan by identifier, returning nil when absent.
func (s *Store) GetLoan(id uint64) (*loan.Loan, error) {
	var rec loanRecord
	ok, err := s.getJSON(loanKeyPrefix+formatID(id), &rec)
	if err != nil || !ok {
		return nil, err
	}
	model, err := loan.ModelFromSnapshot(rec.Model)
	if err != nil {
		return nil, err
	}
	return &loan.Loan{
		ID:            rec.ID,
		Creator:       rec.Creator,
		Borrower:      rec.Borrower,
		Lender:        rec.Lender,
		Lent:          rec.Lent,
		LenderBalance: rec.LenderBalance,
		Model:         model,
	}, nil
}

// PutLoan stores a loan.
func (s *Store) PutLoan(l *loan.Loan) error {
	rec := loanRecord{
		ID:            l.ID,
		Creator:       l.Creator,
		Borrower:      l.Borrower,
		Lender:        l.Lender,
		Lent:          l.Lent,
		LenderBalance: l.LenderBalance,
		Model:         l.Model.Snapshot(),
	}
	return s.putJSON(loanKeyPrefix+formatID(l.ID), rec)
}

// NextLoanID allocates the next loan identifier.
func (s *Store) NextLoanID() (uint64, error) {
	return s.nextID(loanSeqKey)
}

// GetAuction loads a collateral auction by identifier, returning nil when
// absent.
func (s *Store) GetAuction(id uint64) (*auction.Auction, error) {
	var a auction.Auction
	ok, err := s.getJSON(auctionKeyPrefix+formatID(id), &a)
	if err != nil || !ok {
		return nil, err
	}
	return &a, nil
}

// PutAuction stores a collateral auction.
func (s *Store) PutAuction(a *auction.Auction) error {
	return s.putJSON(auctionKeyPrefix+formatID(a.ID), a)
}

// NextAuctionID allocates the next auction identifier.
func (s *Store) NextAuctionID() (uint64, error) {
	return s.nextID(auctionSeqKey)
}

// GetBid loads a burner auction by identifier, returning nil when absent.
func (s *Store) GetBid(id uint64) (*burner.Bid, error) {
	var b burner.Bid
	ok, err := s.getJSON(bidKeyPrefix+formatID(id), &b)
	if err != nil || !ok {
		return nil, err
	}
	return &b, nil
}

// PutBid stores a burner auction.
func (s *Store) PutBid(b *burner.Bid) error {
	return s.putJSON(bidKeyPrefix+formatID(b.ID), b)
}

// NextBidID allocates the next burner auction identifier.
func (s *Store) NextBidID() (uint64, error) {
	return s.nextID(bidSeqKey)
}

func formatID(id uint64) string {
	return fmt.Sprintf("%016x", id)
}
