package distribution

import "errors"

// Caller-facing failures. Every operation surfaces one of these (wrapped
// with context) so callers can branch on the cause and retry where that is
// meaningful.
var (
	// Configuration errors.
	ErrInvalidPolicy     = errors.New("distribution: invalid policy")
	ErrQuoteMintMismatch = errors.New("distribution: quote mint mismatch")
	ErrUnauthorized      = errors.New("distribution: caller is not the policy authority")

	// Timing errors. The caller may retry later.
	ErrTooSoonToDistribute = errors.New("distribution: a distribution already ran this day")
	ErrClaimCooldown       = errors.New("distribution: claim cooldown not elapsed")

	// Integrity violations. Never retried blindly.
	ErrBaseFeesClaimed          = errors.New("distribution: claim produced base token fees")
	ErrDuplicatePage            = errors.New("distribution: page already processed")
	ErrTreasuryBalanceMismatch  = errors.New("distribution: treasury balance does not match claimed amount")
	ErrPositionMetadataMismatch = errors.New("distribution: position does not match recorded metadata")

	// State machine preconditions.
	ErrDayNotStarted        = errors.New("distribution: no distribution started for this day")
	ErrDayAlreadyStarted    = errors.New("distribution: distribution already started for this day")
	ErrDayComplete          = errors.New("distribution: distribution day already complete")
	ErrInvestorsRemaining   = errors.New("distribution: investors remain unprocessed")
	ErrNoInvestorsRemaining = errors.New("distribution: all investors already processed")
	ErrEmptyPage            = errors.New("distribution: page is empty")
	ErrPageTooLarge         = errors.New("distribution: page exceeds the maximum page size")
	ErrPageMismatch         = errors.New("distribution: page does not match the stream set recorded at day start")
	ErrNothingToDistribute  = errors.New("distribution: treasury balance is zero")
)
