package engine

import "errors"

// Validation errors surfaced directly to the caller. All of them are
// recoverable: the caller fixes the input and retries. Persistence failures
// are not wrapped into these; they propagate from the store unchanged.
var (
	ErrInvalidTransition         = errors.New("invalid order status transition")
	ErrMissingComment            = errors.New("a comment is required for this transition")
	ErrMissingResponsible        = errors.New("a responsible is required to receive an order")
	ErrMissingInactivationReason = errors.New("an inactivation reason is required")
	ErrBudgetExceeded            = errors.New("stoppage exceeds the machine's remaining daily budget")
)
