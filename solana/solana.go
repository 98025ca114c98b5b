// Package solana carries the low-level chain helpers shared by the fee
// router: account fetching, token account layouts, ATA preparation, payout
// transfer instructions, and the send/confirm transaction flow.
package solana

// IsSimulate indicates whether simulation mode is enabled globally. The
// router's own option takes precedence; this is the package-level default.
var IsSimulate bool
