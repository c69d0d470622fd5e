package loan

import (
	"strconv"

	"lendcore/core/events"
)

const (
	EventTypeLoanCreated     = "loan.created"
	EventTypeLoanLent        = "loan.lent"
	EventTypeLoanPaid        = "loan.paid"
	EventTypeLoanFullyPaid   = "loan.fully_paid"
	EventTypeLoanTransferred = "loan.transferred"
	EventTypeLoanWithdrawn   = "loan.withdrawn"
)

func newLoanEvent(eventType string, l *Loan, extra map[string]string) events.Event {
	attrs := map[string]string{
		"id":       strconv.FormatUint(l.ID, 10),
		"borrower": l.Borrower.String(),
		"status":   l.Model.Status().String(),
	}
	if !l.Lender.IsZero() {
		attrs["lender"] = l.Lender.String()
	}
	for k, v := range extra {
		attrs[k] = v
	}
	return events.New(eventType, attrs)
}
