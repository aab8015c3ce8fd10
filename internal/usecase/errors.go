package usecase

import "errors"

// Typed business outcomes. Handlers map these with errors.Is; they are
// expected results of the reservation flow, not system faults.
var (
	ErrShowNotFound  = errors.New("show not found")
	ErrInvalidSeats  = errors.New("invalid seat selection")
	ErrInvalidShowID = errors.New("invalid show ID")

	// ErrBadSignature marks a webhook that failed verification. Nothing
	// was mutated; the caller gets a client error with no retry semantics.
	ErrBadSignature = errors.New("webhook signature verification failed")

	// ErrLatePayment marks a confirmed payment for a booking that was
	// already expired and released. The booking is not reinstated; the
	// case is flagged for out-of-band reconciliation.
	ErrLatePayment = errors.New("payment confirmed for expired booking")
)
