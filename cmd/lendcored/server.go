package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lendcore/crypto"
	"lendcore/native/auction"
	"lendcore/native/burner"
	"lendcore/native/loan"
)

// addrString renders an address, leaving unset ones empty.
func addrString(a crypto.Address) string {
	if a.IsZero() {
		return ""
	}
	return a.String()
}

// server exposes the read side of the ledgers over HTTP. Mutating operations
// arrive through the transaction pipeline, not this surface.
type server struct {
	loans    *loan.Engine
	auctions *auction.Engine
	burners  *burner.Engine
	log      *slog.Logger
}

func newServer(loans *loan.Engine, auctions *auction.Engine, burners *burner.Engine, log *slog.Logger) *server {
	return &server{loans: loans, auctions: auctions, burners: burners, log: log}
}

func (s *server) router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.healthz)
	r.Get("/loans/{id}", s.getLoan)
	r.Get("/loans/{id}/obligation", s.getObligation)
	r.Get("/auctions/{id}/offer", s.getOffer)
	r.Get("/burner/{id}", s.getBid)
	return r
}

func (s *server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
}

func (s *server) getLoan(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	l, err := s.loans.Loan(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":            l.ID,
		"borrower":      addrString(l.Borrower),
		"lender":        addrString(l.Lender),
		"lent":          l.Lent,
		"status":        l.Model.Status().String(),
		"principal":     l.Model.Principal().String(),
		"paid":          l.Model.Paid().String(),
		"checkpoint":    l.Model.Checkpoint(),
		"lenderBalance": l.LenderBalance.String(),
	})
}

func (s *server) getObligation(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	owed, err := s.loans.ClosingObligation(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"obligation": owed.String()})
}

func (s *server) getOffer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	price, quantity, err := s.auctions.Offer(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"price":    price.String(),
		"quantity": quantity.String(),
	})
}

func (s *server) getBid(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	b, err := s.burners.Bid(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":             b.ID,
		"bidder":         addrString(b.Bidder),
		"burnBid":        b.BurnBid.String(),
		"soldAmount":     b.SoldAmount.String(),
		"expirationTime": b.ExpirationTime,
		"end":            b.End,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, loan.ErrNotFound),
		errors.Is(err, auction.ErrNotFound),
		errors.Is(err, burner.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
