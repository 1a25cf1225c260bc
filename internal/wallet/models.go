package wallet

import (
	"errors"
	"time"
)

var (
	// ErrInsufficientFunds is returned when a debit would take the spendable
	// balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvariantViolation marks a ledger row whose snapshots do not match
	// its declared delta. Treated as a bug: the settlement aborts and the
	// row is never written.
	ErrInvariantViolation = errors.New("ledger invariant violation")

	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// Wallet holds a user's spendable and reserved money, 1:1 per user.
// Invariants:
// - BalanceMinor >= 0 and LockedMinor >= 0 at all times.
// - Balances change only through the settlement engine, together with a
//   ledger entry; no code path sets them directly.
// - Created lazily on first funding action; never deleted while the owning
//   user exists.
type Wallet struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	// BalanceMinor is the spendable balance in minor units (e.g. cents).
	BalanceMinor int64 `json:"balance_minor" db:"balance_minor"`
	// LockedMinor is reserved for in-flight withdrawals, excluded from
	// spendable balance.
	LockedMinor int64  `json:"locked_minor" db:"locked_minor"`
	Currency    string `json:"currency" db:"currency"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TotalMinor is spendable plus reserved; conserved across a withdrawal
// reservation round trip.
func (w Wallet) TotalMinor() int64 { return w.BalanceMinor + w.LockedMinor }

type TransactionType string

const (
	TypeDeposit    TransactionType = "DEPOSIT"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
	TypeBetPlaced  TransactionType = "BET_PLACED"
	TypeBetWon     TransactionType = "BET_WON"
	TypeBetLost    TransactionType = "BET_LOST"
	TypeBetRefund  TransactionType = "BET_REFUND"
	TypeAdjustment TransactionType = "ADJUSTMENT"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
)

// Transaction is an immutable, append-only ledger entry.
// A COMPLETED row is never edited; corrections are new rows. A PENDING row
// may only have its status finalized (COMPLETED or FAILED), never re-valued.
//
// A row finalized FAILED keeps its original snapshots and its effect is NOT
// reversed in place: the reversal is a separate COMPLETED ADJUSTMENT row
// (e.g. a rejected withdrawal keeps its FAILED WITHDRAWAL debit and gains an
// ADJUSTMENT credit). Balance conservation therefore holds over the snapshot
// chain of consecutive rows, not over a sum of COMPLETED deltas alone.
type Transaction struct {
	ID       string `json:"id" db:"id"`
	UserID   string `json:"user_id" db:"user_id"`
	WalletID string `json:"wallet_id" db:"wallet_id"`

	Type   TransactionType   `json:"type" db:"type"`
	Status TransactionStatus `json:"status" db:"status"`

	// AmountMinor is a non-negative magnitude for all types except
	// ADJUSTMENT, where it is signed. The balance direction is implied by
	// Type (see SignedDelta).
	AmountMinor int64 `json:"amount_minor" db:"amount_minor"`

	// BalanceBefore/BalanceAfter snapshot the spendable balance around the
	// entry; BalanceAfter must equal BalanceBefore + SignedDelta().
	BalanceBefore int64  `json:"balance_before" db:"balance_before"`
	BalanceAfter  int64  `json:"balance_after" db:"balance_after"`
	Currency      string `json:"currency" db:"currency"`

	// Back-references for audit; at most one of them is set.
	BetID     string `json:"bet_id,omitempty" db:"bet_id"`
	RequestID string `json:"request_id,omitempty" db:"request_id"`

	// Metadata is optional JSON for audit/debug (store as JSONB in Postgres).
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SignedDelta returns the spendable-balance delta this entry applies.
// BET_LOST is zero-delta: the stake was already debited by BET_PLACED.
func (t Transaction) SignedDelta() int64 {
	switch t.Type {
	case TypeDeposit, TypeBetWon, TypeBetRefund:
		return t.AmountMinor
	case TypeWithdrawal, TypeBetPlaced:
		return -t.AmountMinor
	case TypeAdjustment:
		return t.AmountMinor // signed as written
	case TypeBetLost:
		return 0
	}
	return 0
}

// Validate checks the entry before it is appended. A snapshot mismatch is an
// InvariantViolation and must abort the settlement.
func (t Transaction) Validate() error {
	if t.ID == "" || t.UserID == "" || t.WalletID == "" {
		return errors.New("ledger entry: missing identifiers")
	}
	if t.Currency == "" {
		return errors.New("ledger entry: currency required")
	}
	switch t.Type {
	case TypeDeposit, TypeWithdrawal, TypeBetPlaced, TypeBetWon, TypeBetRefund:
		if t.AmountMinor <= 0 {
			return errors.New("ledger entry: amount must be positive")
		}
	case TypeBetLost:
		if t.AmountMinor != 0 {
			return errors.New("ledger entry: BET_LOST carries no amount")
		}
	case TypeAdjustment:
		if t.AmountMinor == 0 {
			return errors.New("ledger entry: adjustment amount required")
		}
	default:
		return errors.New("ledger entry: unknown type")
	}
	switch t.Status {
	case StatusPending, StatusCompleted, StatusFailed:
	default:
		return errors.New("ledger entry: unknown status")
	}
	if t.BalanceAfter != t.BalanceBefore+t.SignedDelta() {
		return ErrInvariantViolation
	}
	if t.BalanceAfter < 0 {
		return ErrInsufficientFunds
	}
	return nil
}
