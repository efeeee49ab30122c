package conquest

import "errors"

var (
	// ErrInvalidAction is returned when an action fails rule validation.
	ErrInvalidAction = errors.New("conquest: action not allowed")

	// ErrNoWinner is returned when a battle outcome is applied without a
	// decided winner. Battles always decide a winner; hitting this means
	// the resolution flow is broken.
	ErrNoWinner = errors.New("conquest: battle has no decided winner")

	// ErrNoOwner is returned when a battle targets a region that has no
	// owner or whose owner does not match the recorded defender.
	ErrNoOwner = errors.New("conquest: battle target owner mismatch")

	// ErrInconsistentState is returned by Validate when ownership
	// bookkeeping disagrees between players and regions.
	ErrInconsistentState = errors.New("conquest: inconsistent game state")
)
