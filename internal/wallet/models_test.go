package wallet

import (
	"errors"
	"testing"
)

func entry(typ TransactionType, amount, before, after int64) Transaction {
	return Transaction{
		ID:            "t1",
		UserID:        "u1",
		WalletID:      "w1",
		Type:          typ,
		Status:        StatusCompleted,
		AmountMinor:   amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Currency:      "BDT",
	}
}

func TestTransaction_SignedDeltaPerType(t *testing.T) {
	cases := []struct {
		typ    TransactionType
		amount int64
		want   int64
	}{
		{TypeDeposit, 200, 200},
		{TypeBetWon, 125, 125},
		{TypeBetRefund, 50, 50},
		{TypeWithdrawal, 300, -300},
		{TypeBetPlaced, 50, -50},
		{TypeBetLost, 0, 0},
		{TypeAdjustment, 300, 300},
		{TypeAdjustment, -300, -300},
	}
	for _, tc := range cases {
		got := Transaction{Type: tc.typ, AmountMinor: tc.amount}.SignedDelta()
		if got != tc.want {
			t.Fatalf("%s amount=%d: expected delta %d, got %d", tc.typ, tc.amount, tc.want, got)
		}
	}
}

func TestTransaction_ValidateAcceptsConsistentSnapshots(t *testing.T) {
	if err := entry(TypeDeposit, 200, 500, 700).Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := entry(TypeBetPlaced, 50, 500, 450).Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := entry(TypeBetLost, 0, 450, 450).Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestTransaction_ValidateRejectsSnapshotMismatch(t *testing.T) {
	err := entry(TypeDeposit, 200, 500, 600).Validate()
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}
}

func TestTransaction_ValidateRejectsNegativeResult(t *testing.T) {
	err := entry(TypeWithdrawal, 600, 500, -100).Validate()
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestTransaction_ValidateRejectsBadAmounts(t *testing.T) {
	if err := entry(TypeDeposit, 0, 500, 500).Validate(); err == nil {
		t.Fatalf("expected error for zero deposit amount")
	}
	if err := entry(TypeBetLost, 10, 500, 500).Validate(); err == nil {
		t.Fatalf("expected error for BET_LOST with amount")
	}
}

func TestWallet_TotalMinor(t *testing.T) {
	w := Wallet{BalanceMinor: 300, LockedMinor: 200}
	if w.TotalMinor() != 500 {
		t.Fatalf("expected total 500, got %d", w.TotalMinor())
	}
}
