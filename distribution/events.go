package distribution

import (
	"log/slog"

	"github.com/gagliardetto/solana-go"
)

// Events are emitted once per committed state transition, through the
// engine's logger. Each event implements slog.LogValuer so the fields land
// as structured attributes.

type Event interface {
	slog.LogValuer
	eventName() string
}

type DayStarted struct {
	Day            int64
	TotalAmount    uint64
	TotalInvestors uint64
	DailyCap       uint64
}

func (ev DayStarted) eventName() string { return "day_started" }

func (ev DayStarted) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("day", ev.Day),
		slog.Uint64("total_amount", ev.TotalAmount),
		slog.Uint64("total_investors", ev.TotalInvestors),
		slog.Uint64("daily_cap", ev.DailyCap),
	)
}

type PageProcessed struct {
	Day            int64
	Page           uint64
	Investors      uint64
	AmountPaid     uint64
	Dust           uint64
	CapApplied     bool
	FailedPayouts  uint64
	SnapshotErrors uint64
}

func (ev PageProcessed) eventName() string { return "page_processed" }

func (ev PageProcessed) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("day", ev.Day),
		slog.Uint64("page", ev.Page),
		slog.Uint64("investors", ev.Investors),
		slog.Uint64("amount_paid", ev.AmountPaid),
		slog.Uint64("dust", ev.Dust),
		slog.Bool("cap_applied", ev.CapApplied),
		slog.Uint64("failed_payouts", ev.FailedPayouts),
		slog.Uint64("snapshot_errors", ev.SnapshotErrors),
	)
}

type CreatorPaid struct {
	Day     int64
	Creator solana.PublicKey
	Amount  uint64
}

func (ev CreatorPaid) eventName() string { return "creator_paid" }

func (ev CreatorPaid) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("day", ev.Day),
		slog.String("creator", ev.Creator.String()),
		slog.Uint64("amount", ev.Amount),
	)
}

type DayCompleted struct {
	Day               int64
	AmountToInvestors uint64
	CreatorRemainder  uint64
	PagesProcessed    uint64
	Aborted           bool
}

func (ev DayCompleted) eventName() string { return "day_completed" }

func (ev DayCompleted) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("day", ev.Day),
		slog.Uint64("amount_to_investors", ev.AmountToInvestors),
		slog.Uint64("creator_remainder", ev.CreatorRemainder),
		slog.Uint64("pages_processed", ev.PagesProcessed),
		slog.Bool("aborted", ev.Aborted),
	)
}

type FeesClaimed struct {
	QuoteMint    solana.PublicKey
	QuoteClaimed uint64
	TotalClaimed uint64
	ClaimCount   uint64
}

func (ev FeesClaimed) eventName() string { return "fees_claimed" }

func (ev FeesClaimed) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("quote_mint", ev.QuoteMint.String()),
		slog.Uint64("quote_claimed", ev.QuoteClaimed),
		slog.Uint64("total_claimed", ev.TotalClaimed),
		slog.Uint64("claim_count", ev.ClaimCount),
	)
}

func (e *Engine) emit(ev Event) {
	e.log.Info(ev.eventName(), "event", ev)
}
