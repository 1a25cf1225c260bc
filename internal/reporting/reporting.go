package reporting

import (
	"context"
	"time"

	"wager-platform/internal/settlement"
	"wager-platform/internal/wallet"
)

// LedgerSource is the read side of the settlement store that reporting
// consumes. Both the Postgres and the in-memory stores satisfy it.
type LedgerSource interface {
	ListTransactions(ctx context.Context, userID string, f settlement.TransactionFilter, p settlement.Page) ([]wallet.Transaction, error)
	SumTransactionsByType(ctx context.Context, userID string, status wallet.TransactionStatus) (map[wallet.TransactionType]int64, error)
}

// TurnoverSummary aggregates a user's COMPLETED ledger activity. All values
// are non-negative magnitudes except NetMinor, which is signed from the
// player's point of view.
type TurnoverSummary struct {
	UserID string `json:"user_id"`

	DepositsMinor    int64 `json:"deposits_minor"`
	WithdrawalsMinor int64 `json:"withdrawals_minor"`
	WageredMinor     int64 `json:"wagered_minor"`
	WonMinor         int64 `json:"won_minor"`
	RefundedMinor    int64 `json:"refunded_minor"`
	AdjustmentsMinor int64 `json:"adjustments_minor"`

	// NetMinor is winnings plus refunds minus stakes: the player's gaming
	// result, independent of deposits and withdrawals.
	NetMinor int64 `json:"net_minor"`
}

type Service struct {
	src LedgerSource
}

func NewService(src LedgerSource) *Service { return &Service{src: src} }

// Turnover summarizes the user's settled activity. Only COMPLETED entries
// count; pending reservations and failed rows are excluded.
func (s *Service) Turnover(ctx context.Context, userID string) (TurnoverSummary, error) {
	sums, err := s.src.SumTransactionsByType(ctx, userID, wallet.StatusCompleted)
	if err != nil {
		return TurnoverSummary{}, err
	}
	out := TurnoverSummary{
		UserID:           userID,
		DepositsMinor:    sums[wallet.TypeDeposit],
		WithdrawalsMinor: sums[wallet.TypeWithdrawal],
		WageredMinor:     sums[wallet.TypeBetPlaced],
		WonMinor:         sums[wallet.TypeBetWon],
		RefundedMinor:    sums[wallet.TypeBetRefund],
		AdjustmentsMinor: sums[wallet.TypeAdjustment],
	}
	out.NetMinor = out.WonMinor + out.RefundedMinor - out.WageredMinor
	return out, nil
}

// Statement returns the user's ledger slice for a period, newest first.
func (s *Service) Statement(ctx context.Context, userID string, from, to time.Time, p settlement.Page) ([]wallet.Transaction, error) {
	return s.src.ListTransactions(ctx, userID, settlement.TransactionFilter{From: from, To: to}, p)
}
