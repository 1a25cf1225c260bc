package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"wager-platform/internal/bet"
	"wager-platform/internal/deposit"
	"wager-platform/internal/wallet"
	"wager-platform/internal/withdrawal"
	"wager-platform/pkg/utils"
)

// PostgresStore implements Store on Postgres. Update wraps the settlement
// callback in one SQL transaction; wallet reads inside it take SELECT ...
// FOR UPDATE so concurrent settlements on the same wallet serialize.
//
// NOTE: expected schema:
//
//	CREATE TABLE wallets (
//	    id            UUID PRIMARY KEY,
//	    user_id       UUID NOT NULL UNIQUE,
//	    balance_minor BIGINT NOT NULL CHECK (balance_minor >= 0),
//	    locked_minor  BIGINT NOT NULL CHECK (locked_minor >= 0),
//	    currency      TEXT NOT NULL,
//	    created_at    TIMESTAMPTZ NOT NULL,
//	    updated_at    TIMESTAMPTZ NOT NULL
//	);
//	CREATE TABLE transactions (
//	    id             UUID PRIMARY KEY,
//	    user_id        UUID NOT NULL,
//	    wallet_id      UUID NOT NULL REFERENCES wallets(id),
//	    type           TEXT NOT NULL,
//	    status         TEXT NOT NULL,
//	    amount_minor   BIGINT NOT NULL,
//	    balance_before BIGINT NOT NULL,
//	    balance_after  BIGINT NOT NULL,
//	    currency       TEXT NOT NULL,
//	    bet_id         TEXT NOT NULL DEFAULT '',
//	    request_id     TEXT NOT NULL DEFAULT '',
//	    metadata       JSONB,
//	    created_at     TIMESTAMPTZ NOT NULL
//	);
//	CREATE TABLE deposit_requests (
//	    id               UUID PRIMARY KEY,
//	    user_id          UUID NOT NULL,
//	    amount_minor     BIGINT NOT NULL,
//	    currency         TEXT NOT NULL,
//	    payment_method   TEXT NOT NULL,
//	    provider_ref     TEXT NOT NULL UNIQUE,
//	    sender_number    TEXT NOT NULL,
//	    proof_image_url  TEXT NOT NULL DEFAULT '',
//	    status           TEXT NOT NULL,
//	    reviewed_by      TEXT NOT NULL DEFAULT '',
//	    reviewed_at      TIMESTAMPTZ,
//	    rejection_reason TEXT NOT NULL DEFAULT '',
//	    admin_notes      TEXT NOT NULL DEFAULT '',
//	    transaction_id   TEXT NOT NULL DEFAULT '',
//	    created_at       TIMESTAMPTZ NOT NULL,
//	    updated_at       TIMESTAMPTZ NOT NULL
//	);
//	CREATE TABLE withdrawal_requests (
//	    id               UUID PRIMARY KEY,
//	    user_id          UUID NOT NULL,
//	    amount_minor     BIGINT NOT NULL,
//	    currency         TEXT NOT NULL,
//	    payment_method   TEXT NOT NULL,
//	    recipient_number TEXT NOT NULL,
//	    status           TEXT NOT NULL,
//	    reviewed_by      TEXT NOT NULL DEFAULT '',
//	    reviewed_at      TIMESTAMPTZ,
//	    rejection_reason TEXT NOT NULL DEFAULT '',
//	    admin_notes      TEXT NOT NULL DEFAULT '',
//	    payout_ref       TEXT NOT NULL DEFAULT '',
//	    transaction_id   TEXT NOT NULL DEFAULT '',
//	    created_at       TIMESTAMPTZ NOT NULL,
//	    updated_at       TIMESTAMPTZ NOT NULL
//	);
//	CREATE TABLE bets (
//	    id                  UUID PRIMARY KEY,
//	    user_id             UUID NOT NULL,
//	    stake_minor         BIGINT NOT NULL,
//	    currency            TEXT NOT NULL,
//	    game                TEXT NOT NULL DEFAULT '',
//	    status              TEXT NOT NULL,
//	    actual_win_minor    BIGINT NOT NULL DEFAULT 0,
//	    total_odds          DOUBLE PRECISION NOT NULL DEFAULT 0,
//	    settled_at          TIMESTAMPTZ,
//	    cashout_at          TIMESTAMPTZ,
//	    cashout_value_minor BIGINT NOT NULL DEFAULT 0,
//	    created_at          TIMESTAMPTZ NOT NULL,
//	    updated_at          TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

func (s *PostgresStore) Update(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	return utils.WithTx(ctx, s.db, opts, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, &sqlTx{tx: tx})
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

const walletCols = `id, user_id, balance_minor, locked_minor, currency, created_at, updated_at`

func scanWallet(row rowScanner) (wallet.Wallet, error) {
	var w wallet.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.BalanceMinor, &w.LockedMinor, &w.Currency, &w.CreatedAt, &w.UpdatedAt)
	return w, notFound(err)
}

const txnCols = `id, user_id, wallet_id, type, status, amount_minor, balance_before, balance_after,
	currency, bet_id, request_id, COALESCE(metadata::text, ''), created_at`

func scanTransaction(row rowScanner) (wallet.Transaction, error) {
	var t wallet.Transaction
	err := row.Scan(
		&t.ID, &t.UserID, &t.WalletID, &t.Type, &t.Status,
		&t.AmountMinor, &t.BalanceBefore, &t.BalanceAfter,
		&t.Currency, &t.BetID, &t.RequestID, &t.Metadata, &t.CreatedAt,
	)
	return t, notFound(err)
}

const depositCols = `id, user_id, amount_minor, currency, payment_method, provider_ref, sender_number,
	proof_image_url, status, reviewed_by, reviewed_at, rejection_reason, admin_notes,
	transaction_id, created_at, updated_at`

func scanDeposit(row rowScanner) (deposit.Request, error) {
	var (
		r          deposit.Request
		reviewedAt sql.NullTime
	)
	err := row.Scan(
		&r.ID, &r.UserID, &r.AmountMinor, &r.Currency, &r.PaymentMethod, &r.ProviderRef, &r.SenderNumber,
		&r.ProofImageURL, &r.Status, &r.ReviewedBy, &reviewedAt, &r.RejectionReason, &r.AdminNotes,
		&r.TransactionID, &r.CreatedAt, &r.UpdatedAt,
	)
	if reviewedAt.Valid {
		r.ReviewedAt = &reviewedAt.Time
	}
	return r, notFound(err)
}

const withdrawalCols = `id, user_id, amount_minor, currency, payment_method, recipient_number,
	status, reviewed_by, reviewed_at, rejection_reason, admin_notes, payout_ref,
	transaction_id, created_at, updated_at`

func scanWithdrawal(row rowScanner) (withdrawal.Request, error) {
	var (
		r          withdrawal.Request
		reviewedAt sql.NullTime
	)
	err := row.Scan(
		&r.ID, &r.UserID, &r.AmountMinor, &r.Currency, &r.PaymentMethod, &r.RecipientNumber,
		&r.Status, &r.ReviewedBy, &reviewedAt, &r.RejectionReason, &r.AdminNotes, &r.PayoutRef,
		&r.TransactionID, &r.CreatedAt, &r.UpdatedAt,
	)
	if reviewedAt.Valid {
		r.ReviewedAt = &reviewedAt.Time
	}
	return r, notFound(err)
}

const betCols = `id, user_id, stake_minor, currency, game, status, actual_win_minor, total_odds,
	settled_at, cashout_at, cashout_value_minor, created_at, updated_at`

func scanBet(row rowScanner) (bet.Bet, error) {
	var (
		b         bet.Bet
		settledAt sql.NullTime
		cashoutAt sql.NullTime
	)
	err := row.Scan(
		&b.ID, &b.UserID, &b.StakeMinor, &b.Currency, &b.Game, &b.Status, &b.ActualWinMinor, &b.TotalOdds,
		&settledAt, &cashoutAt, &b.CashoutValueMinor, &b.CreatedAt, &b.UpdatedAt,
	)
	if settledAt.Valid {
		b.SettledAt = &settledAt.Time
	}
	if cashoutAt.Valid {
		b.CashoutAt = &cashoutAt.Time
	}
	return b, notFound(err)
}

func (s *PostgresStore) Wallet(ctx context.Context, userID string) (wallet.Wallet, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+walletCols+` FROM wallets WHERE user_id = $1`, userID)
	return scanWallet(row)
}

func (s *PostgresStore) ListTransactions(ctx context.Context, userID string, f TransactionFilter, p Page) ([]wallet.Transaction, error) {
	p = p.withDefaults()

	var (
		where = []string{"user_id = $1"}
		args  = []any{userID}
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if !f.From.IsZero() {
		add("created_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("created_at < $%d", f.To)
	}
	args = append(args, p.Limit, p.Offset)

	query := `SELECT ` + txnCols + ` FROM transactions WHERE ` + strings.Join(where, " AND ") +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []wallet.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SumTransactionsByType(ctx context.Context, userID string, status wallet.TransactionStatus) (map[wallet.TransactionType]int64, error) {
	query := `SELECT type, COALESCE(SUM(amount_minor), 0) FROM transactions WHERE user_id = $1`
	args := []any{userID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` GROUP BY type`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := map[wallet.TransactionType]int64{}
	for rows.Next() {
		var (
			typ wallet.TransactionType
			sum int64
		)
		if err := rows.Scan(&typ, &sum); err != nil {
			return nil, err
		}
		sums[typ] = sum
	}
	return sums, rows.Err()
}

func (s *PostgresStore) Deposit(ctx context.Context, id string) (deposit.Request, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+depositCols+` FROM deposit_requests WHERE id = $1`, id)
	return scanDeposit(row)
}

func (s *PostgresStore) ListDeposits(ctx context.Context, userID string, status deposit.Status, p Page) ([]deposit.Request, error) {
	p = p.withDefaults()
	query, args := listRequestQuery(`deposit_requests`, depositCols, userID, string(status), p)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []deposit.Request
	for rows.Next() {
		r, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Withdrawal(ctx context.Context, id string) (withdrawal.Request, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+withdrawalCols+` FROM withdrawal_requests WHERE id = $1`, id)
	return scanWithdrawal(row)
}

func (s *PostgresStore) ListWithdrawals(ctx context.Context, userID string, status withdrawal.Status, p Page) ([]withdrawal.Request, error) {
	p = p.withDefaults()
	query, args := listRequestQuery(`withdrawal_requests`, withdrawalCols, userID, string(status), p)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []withdrawal.Request
	for rows.Next() {
		r, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Bet(ctx context.Context, id string) (bet.Bet, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+betCols+` FROM bets WHERE id = $1`, id)
	return scanBet(row)
}

func (s *PostgresStore) ListBets(ctx context.Context, userID string, status bet.Status, p Page) ([]bet.Bet, error) {
	p = p.withDefaults()
	query, args := listRequestQuery(`bets`, betCols, userID, string(status), p)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []bet.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// listRequestQuery builds the shared "filter by optional user and status,
// newest first" listing used by all three request-like tables.
func listRequestQuery(table, cols, userID, status string, p Page) (string, []any) {
	var (
		where []string
		args  []any
	)
	if userID != "" {
		args = append(args, userID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if status != "" {
		args = append(args, status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + cols + ` FROM ` + table
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, p.Limit, p.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	return query, args
}

// sqlTx is the transactional write surface over *sql.Tx.
type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) WalletByUser(ctx context.Context, userID string) (wallet.Wallet, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+walletCols+` FROM wallets WHERE user_id = $1 FOR UPDATE`, userID)
	return scanWallet(row)
}

func (t *sqlTx) CreateWallet(ctx context.Context, w wallet.Wallet) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO wallets (id, user_id, balance_minor, locked_minor, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.ID, w.UserID, w.BalanceMinor, w.LockedMinor, w.Currency, w.CreatedAt, w.UpdatedAt,
	)
	return err
}

func (t *sqlTx) UpdateWalletBalances(ctx context.Context, walletID string, balanceMinor, lockedMinor int64, now time.Time) error {
	if balanceMinor < 0 || lockedMinor < 0 {
		return wallet.ErrInvariantViolation
	}
	res, err := t.tx.ExecContext(ctx, `
		UPDATE wallets SET balance_minor = $2, locked_minor = $3, updated_at = $4
		WHERE id = $1`,
		walletID, balanceMinor, lockedMinor, now,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (t *sqlTx) AppendTransaction(ctx context.Context, txn wallet.Transaction) error {
	if err := txn.Validate(); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO transactions
		    (id, user_id, wallet_id, type, status, amount_minor, balance_before, balance_after,
		     currency, bet_id, request_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, '')::jsonb, $13)`,
		txn.ID, txn.UserID, txn.WalletID, txn.Type, txn.Status,
		txn.AmountMinor, txn.BalanceBefore, txn.BalanceAfter,
		txn.Currency, txn.BetID, txn.RequestID, txn.Metadata, txn.CreatedAt,
	)
	return err
}

func (t *sqlTx) FinalizeTransaction(ctx context.Context, id string, status wallet.TransactionStatus) error {
	if status != wallet.StatusCompleted && status != wallet.StatusFailed {
		return wallet.ErrInvariantViolation
	}
	res, err := t.tx.ExecContext(ctx, `
		UPDATE transactions SET status = $2
		WHERE id = $1 AND status = $3`,
		id, status, wallet.StatusPending,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (t *sqlTx) DepositByID(ctx context.Context, id string) (deposit.Request, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+depositCols+` FROM deposit_requests WHERE id = $1 FOR UPDATE`, id)
	return scanDeposit(row)
}

func (t *sqlTx) CountPendingDeposits(ctx context.Context, userID string) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM deposit_requests WHERE user_id = $1 AND status = $2`,
		userID, deposit.StatusPending,
	).Scan(&n)
	return n, err
}

func (t *sqlTx) DepositProviderRefExists(ctx context.Context, providerRef string) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM deposit_requests WHERE provider_ref = $1)`,
		providerRef,
	).Scan(&exists)
	return exists, err
}

func (t *sqlTx) CreateDeposit(ctx context.Context, r deposit.Request) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO deposit_requests
		    (id, user_id, amount_minor, currency, payment_method, provider_ref, sender_number,
		     proof_image_url, status, reviewed_by, rejection_reason, admin_notes,
		     transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		r.ID, r.UserID, r.AmountMinor, r.Currency, r.PaymentMethod, r.ProviderRef, r.SenderNumber,
		r.ProofImageURL, r.Status, r.ReviewedBy, r.RejectionReason, r.AdminNotes,
		r.TransactionID, r.CreatedAt, r.UpdatedAt,
	)
	return translateDepositInsertErr(err)
}

// pgUniqueViolation is the Postgres error code for unique_violation.
const pgUniqueViolation = "23505"

// translateDepositInsertErr maps a provider_ref unique-constraint hit onto
// the domain error. The pre-insert existence check loses the race against a
// concurrent submitter in another transaction; the constraint is the
// backstop and its loser must still surface as a duplicate, not a 500.
func translateDepositInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && strings.Contains(pgErr.ConstraintName, "provider_ref") {
		return deposit.ErrDuplicateProviderRef
	}
	return err
}

func (t *sqlTx) UpdateDeposit(ctx context.Context, r deposit.Request) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE deposit_requests SET
		    status = $2, reviewed_by = $3, reviewed_at = $4, rejection_reason = $5,
		    admin_notes = $6, transaction_id = $7, updated_at = $8
		WHERE id = $1`,
		r.ID, r.Status, r.ReviewedBy, nullTime(r.ReviewedAt), r.RejectionReason,
		r.AdminNotes, r.TransactionID, r.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (t *sqlTx) WithdrawalByID(ctx context.Context, id string) (withdrawal.Request, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+withdrawalCols+` FROM withdrawal_requests WHERE id = $1 FOR UPDATE`, id)
	return scanWithdrawal(row)
}

func (t *sqlTx) CreateWithdrawal(ctx context.Context, r withdrawal.Request) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO withdrawal_requests
		    (id, user_id, amount_minor, currency, payment_method, recipient_number,
		     status, reviewed_by, rejection_reason, admin_notes, payout_ref,
		     transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		r.ID, r.UserID, r.AmountMinor, r.Currency, r.PaymentMethod, r.RecipientNumber,
		r.Status, r.ReviewedBy, r.RejectionReason, r.AdminNotes, r.PayoutRef,
		r.TransactionID, r.CreatedAt, r.UpdatedAt,
	)
	return err
}

func (t *sqlTx) UpdateWithdrawal(ctx context.Context, r withdrawal.Request) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE withdrawal_requests SET
		    status = $2, reviewed_by = $3, reviewed_at = $4, rejection_reason = $5,
		    admin_notes = $6, payout_ref = $7, updated_at = $8
		WHERE id = $1`,
		r.ID, r.Status, r.ReviewedBy, nullTime(r.ReviewedAt), r.RejectionReason,
		r.AdminNotes, r.PayoutRef, r.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (t *sqlTx) BetByID(ctx context.Context, id string) (bet.Bet, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+betCols+` FROM bets WHERE id = $1 FOR UPDATE`, id)
	return scanBet(row)
}

func (t *sqlTx) PendingBetsByStake(ctx context.Context, userID string, stakeMinor int64) ([]bet.Bet, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT `+betCols+` FROM bets
		WHERE user_id = $1 AND status = $2 AND stake_minor = $3
		ORDER BY created_at ASC
		FOR UPDATE`,
		userID, bet.StatusPending, stakeMinor,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []bet.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (t *sqlTx) CreateBet(ctx context.Context, b bet.Bet) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO bets
		    (id, user_id, stake_minor, currency, game, status, actual_win_minor, total_odds,
		     settled_at, cashout_at, cashout_value_minor, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		b.ID, b.UserID, b.StakeMinor, b.Currency, b.Game, b.Status, b.ActualWinMinor, b.TotalOdds,
		nullTime(b.SettledAt), nullTime(b.CashoutAt), b.CashoutValueMinor, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (t *sqlTx) UpdateBet(ctx context.Context, b bet.Bet) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE bets SET
		    status = $2, actual_win_minor = $3, total_odds = $4,
		    settled_at = $5, cashout_at = $6, cashout_value_minor = $7, updated_at = $8
		WHERE id = $1`,
		b.ID, b.Status, b.ActualWinMinor, b.TotalOdds,
		nullTime(b.SettledAt), nullTime(b.CashoutAt), b.CashoutValueMinor, b.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
