package loan

import "errors"

var (
	errNilState = errors.New("loan engine: state not configured")
	errNilToken = errors.New("loan engine: token not configured")

	// ErrInvalidConfig rejects loan creation parameters that violate the
	// model invariants (zero amount, rate below the floor, inconsistent
	// grace period).
	ErrInvalidConfig = errors.New("loan: invalid configuration")
	// ErrAlreadyExists rejects a duplicate loan identifier.
	ErrAlreadyExists = errors.New("loan: loan already exists")
	// ErrNotFound is returned for operations on unknown loan identifiers.
	ErrNotFound = errors.New("loan: loan not found")
	// ErrNotLent is returned when an operation requires an active (funded)
	// loan.
	ErrNotLent = errors.New("loan: loan not lent")
	// ErrAlreadyLent is returned when a loan is funded twice.
	ErrAlreadyLent = errors.New("loan: loan already lent")
	// ErrTransferFailed signals a failed token move; the whole operation is
	// aborted with no state change.
	ErrTransferFailed = errors.New("loan: token transfer failed")
	// ErrUnauthorized is returned when the caller lacks the required
	// relationship to the loan (lender-only operations).
	ErrUnauthorized = errors.New("loan: caller not authorized")
	// ErrInsufficientFunds is returned when a withdrawal exceeds the funds
	// held for the lender.
	ErrInsufficientFunds = errors.New("loan: insufficient lender funds")
)
