package services

import "errors"

// Named error kinds surfaced by the accounting core. Controllers map these to
// HTTP statuses with errors.Is; the core never deals in status codes.
var (
	// ErrAlreadySigned covers both the synchronous same-day check and the
	// unique-constraint race, which are identical to the caller.
	ErrAlreadySigned = errors.New("already signed in today")

	ErrZeroDelta          = errors.New("adjustment delta cannot be zero")
	ErrInvalidDate        = errors.New("invalid date format")
	ErrFutureDate         = errors.New("cannot make up a future date")
	ErrBeforeInstall      = errors.New("date precedes the earliest ledger date")
	ErrAlreadyRecorded    = errors.New("a signin already exists for that date")
	ErrNoMakeupCards      = errors.New("no makeup cards left")
	ErrInsufficientPoints = errors.New("insufficient points")

	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrOutOfStock      = errors.New("insufficient stock")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrInvalidStake    = errors.New("invalid bet amount")
)
