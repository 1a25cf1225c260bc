package reporting

import (
	"context"
	"testing"
	"time"

	"wager-platform/internal/settlement"
	"wager-platform/internal/wallet"
)

func seedLedger(t *testing.T) *settlement.MemoryStore {
	t.Helper()
	store := settlement.NewMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	entries := []wallet.Transaction{
		{ID: "t1", Type: wallet.TypeDeposit, Status: wallet.StatusCompleted, AmountMinor: 1000, BalanceBefore: 0, BalanceAfter: 1000},
		{ID: "t2", Type: wallet.TypeBetPlaced, Status: wallet.StatusCompleted, AmountMinor: 200, BalanceBefore: 1000, BalanceAfter: 800},
		{ID: "t3", Type: wallet.TypeBetWon, Status: wallet.StatusCompleted, AmountMinor: 500, BalanceBefore: 800, BalanceAfter: 1300},
		{ID: "t4", Type: wallet.TypeBetPlaced, Status: wallet.StatusCompleted, AmountMinor: 300, BalanceBefore: 1300, BalanceAfter: 1000},
		{ID: "t5", Type: wallet.TypeBetLost, Status: wallet.StatusCompleted, BalanceBefore: 1000, BalanceAfter: 1000},
		// Pending reservation must not count toward turnover.
		{ID: "t6", Type: wallet.TypeWithdrawal, Status: wallet.StatusPending, AmountMinor: 400, BalanceBefore: 1000, BalanceAfter: 600},
	}
	err := store.Update(context.Background(), func(ctx context.Context, tx settlement.Tx) error {
		for i := range entries {
			e := &entries[i]
			e.UserID = "u1"
			e.WalletID = "w1"
			e.Currency = "BDT"
			e.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			if err := tx.AppendTransaction(ctx, *e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func TestTurnover_CountsCompletedOnly(t *testing.T) {
	svc := NewService(seedLedger(t))

	got, err := svc.Turnover(context.Background(), "u1")
	if err != nil {
		t.Fatalf("turnover: %v", err)
	}
	want := TurnoverSummary{
		UserID:        "u1",
		DepositsMinor: 1000,
		WageredMinor:  500,
		WonMinor:      500,
		NetMinor:      0,
	}
	if got != want {
		t.Fatalf("turnover = %+v, want %+v", got, want)
	}
}

func TestStatement_PeriodFilter(t *testing.T) {
	svc := NewService(seedLedger(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := svc.Statement(context.Background(), "u1", base.Add(time.Minute), base.Add(3*time.Minute), settlement.Page{})
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if len(got) != 2 || got[0].ID != "t3" || got[1].ID != "t2" {
		t.Fatalf("unexpected statement slice: %+v", got)
	}
}
