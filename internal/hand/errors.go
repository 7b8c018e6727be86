package hand

import "errors"

// User-correctable errors from selection mutation (spec.md §7).
var (
	// ErrFull is returned by Add when the selection already holds 5 cards.
	ErrFull = errors.New("hand: selection already holds 5 cards")
	// ErrDuplicate is returned by Add when the card is already selected.
	ErrDuplicate = errors.New("hand: card already selected")
)
