package reconciler

import "errors"

// Failure taxonomy for reconciler operations. Handlers match these with
// errors.Is to pick response codes; wrapped messages carry the
// human-readable reason.
var (
	// ErrSymbolNotFound means no quote exists for the requested ticker.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrInsufficientFunds means the buy total exceeds the cash balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientHoldings means a sell exceeds the held quantity.
	ErrInsufficientHoldings = errors.New("insufficient holdings")

	// ErrInvalidQuantity means a buy/sell quantity is not a positive whole
	// number of units. Raised before any balance check.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidAmount means a deposit amount is not positive.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrBelowMinimumInvestment means a buy total is below the instrument's
	// minimum investment.
	ErrBelowMinimumInvestment = errors.New("below minimum investment")

	// ErrConcurrentModification means the atomic apply step detected a
	// conflicting concurrent mutation and aborted. The reconciler retries
	// the whole step once before surfacing it.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrRecordingFailed means the trade audit insert failed. Because the
	// audit record is written inside the same atomic unit as the balance
	// mutation, this aborts the unit; nothing is committed without its
	// trade record.
	ErrRecordingFailed = errors.New("trade recording failed")
)
