package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics aggregates the counters exposed by the loan, auction and
// burner engines.
type LedgerMetrics struct {
	loansCreated    prometheus.Counter
	loansLent       prometheus.Counter
	paymentsApplied prometheus.Counter
	loansFullyPaid  prometheus.Counter
	auctionsCreated prometheus.Counter
	auctionTakes    *prometheus.CounterVec
	burnerStarted   prometheus.Counter
	burnerBids      prometheus.Counter
	burnerClaims    prometheus.Counter
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *LedgerMetrics
)

// Ledger returns the process-wide ledger metrics registry.
func Ledger() *LedgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			loansCreated: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ledger_loans_created_total",
				Help: "Count of loans registered in the ledger.",
			}),
			loansLent: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ledger_loans_lent_total",
				Help: "Count of loans funded by a lender.",
			}),
			paymentsApplied: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ledger_payments_applied_total",
				Help: "Count of loan payments applied.",
			}),
			loansFullyPaid: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ledger_loans_fully_paid_total",
				Help: "Count of loans settled in full.",
			}),
			auctionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ledger_collateral_auctions_created_total",
				Help: "Count of collateral auctions opened.",
			}),
			auctionTakes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ledger_collateral_auction_takes_total",
				Help: "Count of collateral auction takes by fill mode.",
			}, []string{"mode"}),
			burnerStarted: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ledger_burner_auctions_started_total",
				Help: "Count of burner auctions started.",
			}),
			burnerBids: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ledger_burner_bids_total",
				Help: "Count of accepted burner auction bids.",
			}),
			burnerClaims: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ledger_burner_claims_total",
				Help: "Count of claimed burner auctions.",
			}),
		}
		prometheus.MustRegister(
			ledgerRegistry.loansCreated,
			ledgerRegistry.loansLent,
			ledgerRegistry.paymentsApplied,
			ledgerRegistry.loansFullyPaid,
			ledgerRegistry.auctionsCreated,
			ledgerRegistry.auctionTakes,
			ledgerRegistry.burnerStarted,
			ledgerRegistry.burnerBids,
			ledgerRegistry.burnerClaims,
		)
	})
	return ledgerRegistry
}

// LoanCreated increments the created-loan counter.
func (m *LedgerMetrics) LoanCreated() { m.loansCreated.Inc() }

// LoanLent increments the funded-loan counter.
func (m *LedgerMetrics) LoanLent() { m.loansLent.Inc() }

// PaymentApplied increments the payment counter.
func (m *LedgerMetrics) PaymentApplied() { m.paymentsApplied.Inc() }

// LoanFullyPaid increments the settled-loan counter.
func (m *LedgerMetrics) LoanFullyPaid() { m.loansFullyPaid.Inc() }

// AuctionCreated increments the collateral auction counter.
func (m *LedgerMetrics) AuctionCreated() { m.auctionsCreated.Inc() }

// AuctionTake increments the take counter for the given fill mode.
func (m *LedgerMetrics) AuctionTake(mode string) { m.auctionTakes.WithLabelValues(mode).Inc() }

// BurnerStarted increments the started-burner-auction counter.
func (m *LedgerMetrics) BurnerStarted() { m.burnerStarted.Inc() }

// BurnerBid increments the accepted-bid counter.
func (m *LedgerMetrics) BurnerBid() { m.burnerBids.Inc() }

// BurnerClaim increments the claimed-auction counter.
func (m *LedgerMetrics) BurnerClaim() { m.burnerClaims.Inc() }
