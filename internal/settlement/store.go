package settlement

import (
	"context"
	"time"

	"wager-platform/internal/bet"
	"wager-platform/internal/deposit"
	"wager-platform/internal/wallet"
	"wager-platform/internal/withdrawal"
)

// Page bounds list queries. Limit <= 0 falls back to a store default.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) withDefaults() Page {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Limit > 500 {
		p.Limit = 500
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// TransactionFilter narrows ledger listings. Zero values match everything.
type TransactionFilter struct {
	Type   wallet.TransactionType
	Status wallet.TransactionStatus
	From   time.Time
	To     time.Time
}

func (f TransactionFilter) matches(t wallet.Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && t.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !t.CreatedAt.Before(f.To) {
		return false
	}
	return true
}

// Store is the persistence boundary of the settlement engine. Update runs fn
// inside one atomic transaction: every read in fn sees a consistent snapshot,
// and either all writes commit or none do. Reads outside Update are
// non-transactional conveniences for the API layer.
type Store interface {
	Update(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	Wallet(ctx context.Context, userID string) (wallet.Wallet, error)
	ListTransactions(ctx context.Context, userID string, f TransactionFilter, p Page) ([]wallet.Transaction, error)
	// SumTransactionsByType aggregates COMPLETED-or-given-status amounts per
	// type for turnover reporting.
	SumTransactionsByType(ctx context.Context, userID string, status wallet.TransactionStatus) (map[wallet.TransactionType]int64, error)

	Deposit(ctx context.Context, id string) (deposit.Request, error)
	ListDeposits(ctx context.Context, userID string, status deposit.Status, p Page) ([]deposit.Request, error)

	Withdrawal(ctx context.Context, id string) (withdrawal.Request, error)
	ListWithdrawals(ctx context.Context, userID string, status withdrawal.Status, p Page) ([]withdrawal.Request, error)

	Bet(ctx context.Context, id string) (bet.Bet, error)
	ListBets(ctx context.Context, userID string, status bet.Status, p Page) ([]bet.Bet, error)
}

// Tx is the write surface available inside Store.Update. Row reads take the
// lock needed to make the enclosing settlement serializable (SELECT ... FOR
// UPDATE on Postgres).
type Tx interface {
	// WalletByUser locks and returns the user's wallet. ErrNotFound when the
	// user has no wallet yet.
	WalletByUser(ctx context.Context, userID string) (wallet.Wallet, error)
	CreateWallet(ctx context.Context, w wallet.Wallet) error
	// UpdateWalletBalances persists new balance/locked values. Negative
	// values are rejected with wallet.ErrInvariantViolation.
	UpdateWalletBalances(ctx context.Context, walletID string, balanceMinor, lockedMinor int64, now time.Time) error

	// AppendTransaction validates and writes a ledger entry. The row is
	// immutable once written except for FinalizeTransaction.
	AppendTransaction(ctx context.Context, t wallet.Transaction) error
	// FinalizeTransaction moves a PENDING entry to COMPLETED or FAILED.
	// Amounts and snapshots are never re-valued.
	FinalizeTransaction(ctx context.Context, id string, status wallet.TransactionStatus) error

	DepositByID(ctx context.Context, id string) (deposit.Request, error)
	CountPendingDeposits(ctx context.Context, userID string) (int, error)
	DepositProviderRefExists(ctx context.Context, providerRef string) (bool, error)
	CreateDeposit(ctx context.Context, r deposit.Request) error
	UpdateDeposit(ctx context.Context, r deposit.Request) error

	WithdrawalByID(ctx context.Context, id string) (withdrawal.Request, error)
	CreateWithdrawal(ctx context.Context, r withdrawal.Request) error
	UpdateWithdrawal(ctx context.Context, r withdrawal.Request) error

	BetByID(ctx context.Context, id string) (bet.Bet, error)
	// PendingBetsByStake lists the user's PENDING bets with the given stake,
	// oldest first. Used by stake-matched cash-out.
	PendingBetsByStake(ctx context.Context, userID string, stakeMinor int64) ([]bet.Bet, error)
	CreateBet(ctx context.Context, b bet.Bet) error
	UpdateBet(ctx context.Context, b bet.Bet) error
}
