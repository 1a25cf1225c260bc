package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"wager-platform/internal/audit"
	"wager-platform/internal/bet"
	"wager-platform/internal/deposit"
	"wager-platform/internal/notify"
	"wager-platform/internal/rbac"
	"wager-platform/internal/wallet"
	"wager-platform/internal/withdrawal"
)

// Actor is the authenticated identity driving a settlement, resolved from
// the access token by the API layer.
type Actor struct {
	ID     string
	Role   string
	Active bool
}

// Config carries the platform money rules. Amounts are minor units.
type Config struct {
	Currency           string
	PaymentMethods     []string
	MaxPendingDeposits int

	MinDepositMinor    int64
	MaxDepositMinor    int64
	MinWithdrawalMinor int64
	MaxWithdrawalMinor int64
	MinStakeMinor      int64
	MaxStakeMinor      int64
}

func (c Config) withDefaults() Config {
	if c.Currency == "" {
		c.Currency = "BDT"
	}
	if len(c.PaymentMethods) == 0 {
		c.PaymentMethods = []string{"BKASH", "NAGAD", "ROCKET"}
	}
	if c.MaxPendingDeposits <= 0 {
		c.MaxPendingDeposits = 3
	}
	if c.MinDepositMinor <= 0 {
		c.MinDepositMinor = 1
	}
	if c.MaxDepositMinor <= 0 {
		c.MaxDepositMinor = math.MaxInt64
	}
	if c.MinWithdrawalMinor <= 0 {
		c.MinWithdrawalMinor = 1
	}
	if c.MaxWithdrawalMinor <= 0 {
		c.MaxWithdrawalMinor = math.MaxInt64
	}
	if c.MinStakeMinor <= 0 {
		c.MinStakeMinor = 1
	}
	if c.MaxStakeMinor <= 0 {
		c.MaxStakeMinor = math.MaxInt64
	}
	return c
}

func (c Config) allowsMethod(method string) bool {
	for _, m := range c.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

// Engine runs every money movement as one atomic settlement: decide, write
// the ledger entry with balance snapshots, move the balance, flip the
// request or bet state. Notifications and audit events go out only after
// the settlement commits.
type Engine struct {
	store Store
	emit  notify.Emitter
	audit *audit.Service
	log   *slog.Logger
	cfg   Config
	now   func() time.Time
}

func NewEngine(store Store, emit notify.Emitter, aud *audit.Service, log *slog.Logger, cfg Config) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store: store,
		emit:  emit,
		audit: aud,
		log:   log,
		cfg:   cfg.withDefaults(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// staged is a notification held back until the settlement commits.
type staged struct {
	broadcast bool
	n         notify.Notification
}

func (e *Engine) deliver(ctx context.Context, pending []staged) {
	if e.emit == nil {
		return
	}
	for _, s := range pending {
		if s.broadcast {
			e.emit.Broadcast(ctx, s.n)
		} else {
			e.emit.Notify(ctx, s.n)
		}
	}
}

func (e *Engine) requirePlayer(actor Actor) error {
	if actor.ID == "" {
		return ErrInvalidArgument
	}
	if !actor.Active {
		return ErrForbidden
	}
	return nil
}

func (e *Engine) requireAdmin(actor Actor) error {
	if actor.ID == "" || !actor.Active || !rbac.IsAdmin(actor.Role) {
		return ErrForbidden
	}
	return nil
}

// getOrCreateWallet locks the user's wallet, creating it lazily on the first
// funding action.
func (e *Engine) getOrCreateWallet(ctx context.Context, tx Tx, userID string, now time.Time) (wallet.Wallet, error) {
	w, err := tx.WalletByUser(ctx, userID)
	if err == nil {
		if w.Currency != e.cfg.Currency {
			return wallet.Wallet{}, wallet.ErrCurrencyMismatch
		}
		return w, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return wallet.Wallet{}, err
	}
	w = wallet.Wallet{
		ID:        uuid.NewString(),
		UserID:    userID,
		Currency:  e.cfg.Currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.CreateWallet(ctx, w); err != nil {
		return wallet.Wallet{}, err
	}
	return w, nil
}

// SubmitDepositInput is the user's claim of an external payment.
type SubmitDepositInput struct {
	AmountMinor   int64  `json:"amount_minor"`
	PaymentMethod string `json:"payment_method"`
	ProviderRef   string `json:"provider_ref"`
	SenderNumber  string `json:"sender_number"`
	ProofImageURL string `json:"proof_image_url"`
}

// SubmitDeposit files a deposit request for admin review. The wallet is not
// touched; money appears only on approval.
func (e *Engine) SubmitDeposit(ctx context.Context, actor Actor, in SubmitDepositInput) (deposit.Request, error) {
	if err := e.requirePlayer(actor); err != nil {
		return deposit.Request{}, err
	}
	if in.AmountMinor < e.cfg.MinDepositMinor || in.AmountMinor > e.cfg.MaxDepositMinor {
		return deposit.Request{}, fmt.Errorf("%w: deposit amount out of bounds", ErrInvalidArgument)
	}
	if !e.cfg.allowsMethod(in.PaymentMethod) {
		return deposit.Request{}, fmt.Errorf("%w: unknown payment method %q", ErrInvalidArgument, in.PaymentMethod)
	}
	if in.ProviderRef == "" || in.SenderNumber == "" {
		return deposit.Request{}, fmt.Errorf("%w: provider reference and sender number required", ErrInvalidArgument)
	}

	now := e.now()
	req := deposit.Request{
		ID:            uuid.NewString(),
		UserID:        actor.ID,
		AmountMinor:   in.AmountMinor,
		Currency:      e.cfg.Currency,
		PaymentMethod: in.PaymentMethod,
		ProviderRef:   in.ProviderRef,
		SenderNumber:  in.SenderNumber,
		ProofImageURL: in.ProofImageURL,
		Status:        deposit.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := e.store.Update(ctx, func(ctx context.Context, tx Tx) error {
		// The wallet row lock serializes this user's submissions; the pending
		// count and the ref check stay stable for the rest of the transaction.
		if _, err := e.getOrCreateWallet(ctx, tx, actor.ID, now); err != nil {
			return err
		}
		n, err := tx.CountPendingDeposits(ctx, actor.ID)
		if err != nil {
			return err
		}
		if n >= e.cfg.MaxPendingDeposits {
			return deposit.ErrTooManyPending
		}
		dup, err := tx.DepositProviderRefExists(ctx, in.ProviderRef)
		if err != nil {
			return err
		}
		if dup {
			return deposit.ErrDuplicateProviderRef
		}
		return tx.CreateDeposit(ctx, req)
	})
	if err != nil {
		return deposit.Request{}, err
	}

	e.deliver(ctx, []staged{
		{n: notify.Notification{
			UserID:    actor.ID,
			Kind:      notify.KindSystem,
			Payload:   map[string]any{"event": "deposit_submitted", "request_id": req.ID, "amount_minor": req.AmountMinor},
			CreatedAt: now,
		}},
		{broadcast: true, n: notify.Notification{
			Kind:      notify.KindSystem,
			Payload:   map[string]any{"event": "deposit_submitted", "request_id": req.ID, "user_id": actor.ID, "amount_minor": req.AmountMinor},
			CreatedAt: now,
		}},
	})
	e.log.Info("deposit submitted", "request_id", req.ID, "user_id", actor.ID, "amount_minor", req.AmountMinor, "method", req.PaymentMethod)
	return req, nil
}

// DepositDecision is an admin's verdict on a pending deposit request.
type DepositDecision struct {
	RequestID string
	Approve   bool
	Reason    string
	Notes     string
	IPAddress string
}

// ReviewDeposit settles a pending deposit request. Approval credits the
// wallet and writes the DEPOSIT ledger entry in the same transaction;
// rejection leaves the wallet untouched.
func (e *Engine) ReviewDeposit(ctx context.Context, actor Actor, d DepositDecision) (deposit.Request, error) {
	if err := e.requireAdmin(actor); err != nil {
		return deposit.Request{}, err
	}

	now := e.now()
	var (
		req     deposit.Request
		pending []staged
	)
	err := e.store.Update(ctx, func(ctx context.Context, tx Tx) error {
		pending = pending[:0]

		r, err := tx.DepositByID(ctx, d.RequestID)
		if err != nil {
			return err
		}

		if !d.Approve {
			if err := r.Reject(actor.ID, d.Reason, d.Notes, now); err != nil {
				return err
			}
			if err := tx.UpdateDeposit(ctx, r); err != nil {
				return err
			}
			req = r
			pending = append(pending, staged{n: notify.Notification{
				UserID:    r.UserID,
				Kind:      notify.KindDepositRejected,
				Payload:   map[string]any{"request_id": r.ID, "amount_minor": r.AmountMinor, "reason": d.Reason},
				CreatedAt: now,
			}})
			return nil
		}

		w, err := e.getOrCreateWallet(ctx, tx, r.UserID, now)
		if err != nil {
			return err
		}
		if r.Currency != w.Currency {
			return wallet.ErrCurrencyMismatch
		}

		txn := wallet.Transaction{
			ID:            uuid.NewString(),
			UserID:        r.UserID,
			WalletID:      w.ID,
			Type:          wallet.TypeDeposit,
			Status:        wallet.StatusCompleted,
			AmountMinor:   r.AmountMinor,
			BalanceBefore: w.BalanceMinor,
			BalanceAfter:  w.BalanceMinor + r.AmountMinor,
			Currency:      w.Currency,
			RequestID:     r.ID,
			CreatedAt:     now,
		}
		if err := tx.AppendTransaction(ctx, txn); err != nil {
			return err
		}
		if err := tx.UpdateWalletBalances(ctx, w.ID, txn.BalanceAfter, w.LockedMinor, now); err != nil {
			return err
		}
		if err := r.Approve(actor.ID, txn.ID, d.Notes, now); err != nil {
			return err
		}
		if err := tx.UpdateDeposit(ctx, r); err != nil {
			return err
		}
		req = r
		pending = append(pending, staged{n: notify.Notification{
			UserID:    r.UserID,
			Kind:      notify.KindDepositSuccess,
			Payload:   map[string]any{"request_id": r.ID, "amount_minor": r.AmountMinor, "balance_minor": txn.BalanceAfter},
			CreatedAt: now,
		}})
		return nil
	})
	if err != nil {
		return deposit.Request{}, err
	}

	e.deliver(ctx, pending)
	e.audit.Record(ctx, audit.Event{
		Type:        audit.TypeAdminReview,
		ActorUserID: actor.ID,
		ActorRole:   actor.Role,
		IPAddress:   d.IPAddress,
		RequestID:   req.ID,
		Message:     fmt.Sprintf("deposit %s", req.Status),
	})
	e.log.Info("deposit reviewed", "request_id", req.ID, "status", req.Status, "reviewer", actor.ID)
	return req, nil
}

// SubmitWithdrawalInput asks to pay out part of the spendable balance.
type SubmitWithdrawalInput struct {
	AmountMinor     int64  `json:"amount_minor"`
	PaymentMethod   string `json:"payment_method"`
	RecipientNumber string `json:"recipient_number"`
}

// SubmitWithdrawal reserves the amount (balance -> locked) and files the
// request. The reservation is recorded as a PENDING WITHDRAWAL ledger entry
// so the debit is visible in the history while the request awaits review.
func (e *Engine) SubmitWithdrawal(ctx context.Context, actor Actor, in SubmitWithdrawalInput) (withdrawal.Request, error) {
	if err := e.requirePlayer(actor); err != nil {
		return withdrawal.Request{}, err
	}
	if in.AmountMinor < e.cfg.MinWithdrawalMinor || in.AmountMinor > e.cfg.MaxWithdrawalMinor {
		return withdrawal.Request{}, fmt.Errorf("%w: withdrawal amount out of bounds", ErrInvalidArgument)
	}
	if !e.cfg.allowsMethod(in.PaymentMethod) {
		return withdrawal.Request{}, fmt.Errorf("%w: unknown payment method %q", ErrInvalidArgument, in.PaymentMethod)
	}
	if in.RecipientNumber == "" {
		return withdrawal.Request{}, fmt.Errorf("%w: recipient number required", ErrInvalidArgument)
	}

	now := e.now()
	var req withdrawal.Request
	err := e.store.Update(ctx, func(ctx context.Context, tx Tx) error {
		w, err := e.getOrCreateWallet(ctx, tx, actor.ID, now)
		if err != nil {
			return err
		}
		if w.BalanceMinor < in.AmountMinor {
			return wallet.ErrInsufficientFunds
		}

		txn := wallet.Transaction{
			ID:            uuid.NewString(),
			UserID:        actor.ID,
			WalletID:      w.ID,
			Type:          wallet.TypeWithdrawal,
			Status:        wallet.StatusPending,
			AmountMinor:   in.AmountMinor,
			BalanceBefore: w.BalanceMinor,
			BalanceAfter:  w.BalanceMinor - in.AmountMinor,
			Currency:      w.Currency,
			CreatedAt:     now,
		}
		req = withdrawal.Request{
			ID:              uuid.NewString(),
			UserID:          actor.ID,
			AmountMinor:     in.AmountMinor,
			Currency:        w.Currency,
			PaymentMethod:   in.PaymentMethod,
			RecipientNumber: in.RecipientNumber,
			Status:          withdrawal.StatusPending,
			TransactionID:   txn.ID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		txn.RequestID = req.ID

		if err := tx.AppendTransaction(ctx, txn); err != nil {
			return err
		}
		if err := tx.UpdateWalletBalances(ctx, w.ID, txn.BalanceAfter, w.LockedMinor+in.AmountMinor, now); err != nil {
			return err
		}
		return tx.CreateWithdrawal(ctx, req)
	})
	if err != nil {
		return withdrawal.Request{}, err
	}

	e.deliver(ctx, []staged{
		{n: notify.Notification{
			UserID:    actor.ID,
			Kind:      notify.KindSystem,
			Payload:   map[string]any{"event": "withdrawal_submitted", "request_id": req.ID, "amount_minor": req.AmountMinor},
			CreatedAt: now,
		}},
		{broadcast: true, n: notify.Notification{
			Kind:      notify.KindSystem,
			Payload:   map[string]any{"event": "withdrawal_submitted", "request_id": req.ID, "user_id": actor.ID, "amount_minor": req.AmountMinor},
			CreatedAt: now,
		}},
	})
	e.log.Info("withdrawal submitted", "request_id", req.ID, "user_id", actor.ID, "amount_minor", req.AmountMinor)
	return req, nil
}

// WithdrawalDecision is an admin's verdict on a pending withdrawal request.
type WithdrawalDecision struct {
	RequestID string
	Approve   bool
	PayoutRef string
	Reason    string
	Notes     string
	IPAddress string
}

// ReviewWithdrawal settles a pending withdrawal. Approval finalizes the
// reservation entry as COMPLETED and releases the locked amount to the
// payout; rejection finalizes it as FAILED and returns the money to the
// spendable balance through a compensating ADJUSTMENT entry.
func (e *Engine) ReviewWithdrawal(ctx context.Context, actor Actor, d WithdrawalDecision) (withdrawal.Request, error) {
	if err := e.requireAdmin(actor); err != nil {
		return withdrawal.Request{}, err
	}

	now := e.now()
	var (
		req     withdrawal.Request
		pending []staged
	)
	err := e.store.Update(ctx, func(ctx context.Context, tx Tx) error {
		pending = pending[:0]

		r, err := tx.WithdrawalByID(ctx, d.RequestID)
		if err != nil {
			return err
		}
		w, err := tx.WalletByUser(ctx, r.UserID)
		if err != nil {
			return err
		}
		if w.LockedMinor < r.AmountMinor {
			// The reservation should still be held; anything else is a bug.
			return wallet.ErrInvariantViolation
		}

		if d.Approve {
			if err := r.Approve(actor.ID, d.PayoutRef, d.Notes, now); err != nil {
				return err
			}
			if err := tx.FinalizeTransaction(ctx, r.TransactionID, wallet.StatusCompleted); err != nil {
				return err
			}
			if err := tx.UpdateWalletBalances(ctx, w.ID, w.BalanceMinor, w.LockedMinor-r.AmountMinor, now); err != nil {
				return err
			}
			pending = append(pending, staged{n: notify.Notification{
				UserID:    r.UserID,
				Kind:      notify.KindWithdrawalSuccess,
				Payload:   map[string]any{"request_id": r.ID, "amount_minor": r.AmountMinor, "payout_ref": d.PayoutRef},
				CreatedAt: now,
			}})
		} else {
			if err := r.Reject(actor.ID, d.Reason, d.Notes, now); err != nil {
				return err
			}
			if err := tx.FinalizeTransaction(ctx, r.TransactionID, wallet.StatusFailed); err != nil {
				return err
			}
			refund := wallet.Transaction{
				ID:            uuid.NewString(),
				UserID:        r.UserID,
				WalletID:      w.ID,
				Type:          wallet.TypeAdjustment,
				Status:        wallet.StatusCompleted,
				AmountMinor:   r.AmountMinor,
				BalanceBefore: w.BalanceMinor,
				BalanceAfter:  w.BalanceMinor + r.AmountMinor,
				Currency:      w.Currency,
				RequestID:     r.ID,
				Metadata:      fmt.Sprintf(`{"reason":"withdrawal rejected","request_id":%q}`, r.ID),
				CreatedAt:     now,
			}
			if err := tx.AppendTransaction(ctx, refund); err != nil {
				return err
			}
			if err := tx.UpdateWalletBalances(ctx, w.ID, refund.BalanceAfter, w.LockedMinor-r.AmountMinor, now); err != nil {
				return err
			}
			pending = append(pending, staged{n: notify.Notification{
				UserID:    r.UserID,
				Kind:      notify.KindWithdrawalRejected,
				Payload:   map[string]any{"request_id": r.ID, "amount_minor": r.AmountMinor, "reason": d.Reason},
				CreatedAt: now,
			}})
		}

		if err := tx.UpdateWithdrawal(ctx, r); err != nil {
			return err
		}
		req = r
		return nil
	})
	if err != nil {
		return withdrawal.Request{}, err
	}

	e.deliver(ctx, pending)
	e.audit.Record(ctx, audit.Event{
		Type:        audit.TypeAdminReview,
		ActorUserID: actor.ID,
		ActorRole:   actor.Role,
		IPAddress:   d.IPAddress,
		RequestID:   req.ID,
		Message:     fmt.Sprintf("withdrawal %s", req.Status),
	})
	e.log.Info("withdrawal reviewed", "request_id", req.ID, "status", req.Status, "reviewer", actor.ID)
	return req, nil
}

// PlaceBetInput accepts a stake into a game round.
type PlaceBetInput struct {
	StakeMinor int64  `json:"stake_minor"`
	Game       string `json:"game"`
}

// PlaceBet debits the stake and opens a PENDING bet in one settlement.
func (e *Engine) PlaceBet(ctx context.Context, actor Actor, in PlaceBetInput) (bet.Bet, error) {
	if err := e.requirePlayer(actor); err != nil {
		return bet.Bet{}, err
	}
	if in.StakeMinor < e.cfg.MinStakeMinor || in.StakeMinor > e.cfg.MaxStakeMinor {
		return bet.Bet{}, fmt.Errorf("%w: stake out of bounds", ErrInvalidArgument)
	}

	now := e.now()
	var placed bet.Bet
	err := e.store.Update(ctx, func(ctx context.Context, tx Tx) error {
		w, err := e.getOrCreateWallet(ctx, tx, actor.ID, now)
		if err != nil {
			return err
		}
		if w.BalanceMinor < in.StakeMinor {
			return wallet.ErrInsufficientFunds
		}

		placed = bet.Bet{
			ID:         uuid.NewString(),
			UserID:     actor.ID,
			StakeMinor: in.StakeMinor,
			Currency:   w.Currency,
			Game:       in.Game,
			Status:     bet.StatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		txn := wallet.Transaction{
			ID:            uuid.NewString(),
			UserID:        actor.ID,
			WalletID:      w.ID,
			Type:          wallet.TypeBetPlaced,
			Status:        wallet.StatusCompleted,
			AmountMinor:   in.StakeMinor,
			BalanceBefore: w.BalanceMinor,
			BalanceAfter:  w.BalanceMinor - in.StakeMinor,
			Currency:      w.Currency,
			BetID:         placed.ID,
			CreatedAt:     now,
		}
		if err := tx.AppendTransaction(ctx, txn); err != nil {
			return err
		}
		if err := tx.UpdateWalletBalances(ctx, w.ID, txn.BalanceAfter, w.LockedMinor, now); err != nil {
			return err
		}
		return tx.CreateBet(ctx, placed)
	})
	if err != nil {
		return bet.Bet{}, err
	}

	e.log.Info("bet placed", "bet_id", placed.ID, "user_id", actor.ID, "stake_minor", placed.StakeMinor, "game", placed.Game)
	return placed, nil
}

// ResolveBetInput settles a bet from the game outcome.
type ResolveBetInput struct {
	BetID string  `json:"bet_id"`
	Won   bool    `json:"won"`
	Odds  float64 `json:"odds"`
}

// ResolveBet settles a PENDING bet as WON or LOST. A win credits
// round(stake * odds) through a BET_WON entry; a loss writes a zero-amount
// BET_LOST marker entry, the stake having left the wallet at placement.
func (e *Engine) ResolveBet(ctx context.Context, actor Actor, in ResolveBetInput) (bet.Bet, error) {
	if err := e.requireAdmin(actor); err != nil {
		return bet.Bet{}, err
	}
	if in.Won && in.Odds <= 0 {
		return bet.Bet{}, fmt.Errorf("%w: winning odds must be positive", ErrInvalidArgument)
	}

	now := e.now()
	var settled bet.Bet
	err := e.store.Update(ctx, func(ctx context.Context, tx Tx) error {
		b, err := tx.BetByID(ctx, in.BetID)
		if err != nil {
			return err
		}
		w, err := tx.WalletByUser(ctx, b.UserID)
		if err != nil {
			return err
		}

		if in.Won {
			win := int64(math.Round(float64(b.StakeMinor) * in.Odds))
			if err := b.MarkWon(win, in.Odds, now); err != nil {
				return err
			}
			txn := wallet.Transaction{
				ID:            uuid.NewString(),
				UserID:        b.UserID,
				WalletID:      w.ID,
				Type:          wallet.TypeBetWon,
				Status:        wallet.StatusCompleted,
				AmountMinor:   win,
				BalanceBefore: w.BalanceMinor,
				BalanceAfter:  w.BalanceMinor + win,
				Currency:      w.Currency,
				BetID:         b.ID,
				CreatedAt:     now,
			}
			if err := tx.AppendTransaction(ctx, txn); err != nil {
				return err
			}
			if err := tx.UpdateWalletBalances(ctx, w.ID, txn.BalanceAfter, w.LockedMinor, now); err != nil {
				return err
			}
		} else {
			if err := b.MarkLost(now); err != nil {
				return err
			}
			// Zero-delta marker so losses stay visible in the ledger.
			txn := wallet.Transaction{
				ID:            uuid.NewString(),
				UserID:        b.UserID,
				WalletID:      w.ID,
				Type:          wallet.TypeBetLost,
				Status:        wallet.StatusCompleted,
				BalanceBefore: w.BalanceMinor,
				BalanceAfter:  w.BalanceMinor,
				Currency:      w.Currency,
				BetID:         b.ID,
				Metadata:      fmt.Sprintf(`{"stake_minor":%d}`, b.StakeMinor),
				CreatedAt:     now,
			}
			if err := tx.AppendTransaction(ctx, txn); err != nil {
				return err
			}
		}

		if err := tx.UpdateBet(ctx, b); err != nil {
			return err
		}
		settled = b
		return nil
	})
	if err != nil {
		return bet.Bet{}, err
	}

	e.log.Info("bet resolved", "bet_id", settled.ID, "status", settled.Status, "win_minor", settled.ActualWinMinor)
	return settled, nil
}

// CashOutInput settles a running bet early at a caller-supplied multiplier.
// BetID is preferred; when absent the engine matches the caller's single
// PENDING bet with the given stake.
type CashOutInput struct {
	BetID      string  `json:"bet_id"`
	StakeMinor int64   `json:"stake_minor"`
	ValueMinor int64   `json:"value_minor"`
	Multiplier float64 `json:"multiplier"`
}

// CashOut settles a PENDING bet as CASHOUT and credits the cash-out value.
// With no explicit bet id, zero matching bets is ErrNoPendingBet and more
// than one is ErrAmbiguousStake; the engine never guesses.
func (e *Engine) CashOut(ctx context.Context, actor Actor, in CashOutInput) (bet.Bet, error) {
	if err := e.requirePlayer(actor); err != nil {
		return bet.Bet{}, err
	}
	if in.ValueMinor <= 0 {
		return bet.Bet{}, fmt.Errorf("%w: cash-out value must be positive", ErrInvalidArgument)
	}
	if in.Multiplier < 1 {
		return bet.Bet{}, fmt.Errorf("%w: cash-out multiplier must be at least 1", ErrInvalidArgument)
	}

	now := e.now()
	var settled bet.Bet
	err := e.store.Update(ctx, func(ctx context.Context, tx Tx) error {
		var b bet.Bet
		if in.BetID != "" {
			var err error
			b, err = tx.BetByID(ctx, in.BetID)
			if err != nil {
				return err
			}
			if b.UserID != actor.ID {
				return ErrNotFound
			}
		} else {
			matches, err := tx.PendingBetsByStake(ctx, actor.ID, in.StakeMinor)
			if err != nil {
				return err
			}
			switch len(matches) {
			case 0:
				return bet.ErrNoPendingBet
			case 1:
				b = matches[0]
			default:
				return bet.ErrAmbiguousStake
			}
		}

		w, err := tx.WalletByUser(ctx, actor.ID)
		if err != nil {
			return err
		}
		if err := b.MarkCashout(in.ValueMinor, in.Multiplier, now); err != nil {
			return err
		}

		txn := wallet.Transaction{
			ID:            uuid.NewString(),
			UserID:        actor.ID,
			WalletID:      w.ID,
			Type:          wallet.TypeBetWon,
			Status:        wallet.StatusCompleted,
			AmountMinor:   in.ValueMinor,
			BalanceBefore: w.BalanceMinor,
			BalanceAfter:  w.BalanceMinor + in.ValueMinor,
			Currency:      w.Currency,
			BetID:         b.ID,
			Metadata:      fmt.Sprintf(`{"cashout_multiplier":%g}`, in.Multiplier),
			CreatedAt:     now,
		}
		if err := tx.AppendTransaction(ctx, txn); err != nil {
			return err
		}
		if err := tx.UpdateWalletBalances(ctx, w.ID, txn.BalanceAfter, w.LockedMinor, now); err != nil {
			return err
		}
		if err := tx.UpdateBet(ctx, b); err != nil {
			return err
		}
		settled = b
		return nil
	})
	if err != nil {
		return bet.Bet{}, err
	}

	e.log.Info("bet cashed out", "bet_id", settled.ID, "user_id", actor.ID, "value_minor", settled.CashoutValueMinor, "multiplier", settled.TotalOdds)
	return settled, nil
}

// RefundBet voids a PENDING bet (for example a cancelled round) and returns
// the stake through a BET_REFUND entry. Admin only.
func (e *Engine) RefundBet(ctx context.Context, actor Actor, betID, reason string) (bet.Bet, error) {
	if err := e.requireAdmin(actor); err != nil {
		return bet.Bet{}, err
	}

	now := e.now()
	var refunded bet.Bet
	err := e.store.Update(ctx, func(ctx context.Context, tx Tx) error {
		b, err := tx.BetByID(ctx, betID)
		if err != nil {
			return err
		}
		w, err := tx.WalletByUser(ctx, b.UserID)
		if err != nil {
			return err
		}
		if err := b.MarkRefunded(now); err != nil {
			return err
		}

		txn := wallet.Transaction{
			ID:            uuid.NewString(),
			UserID:        b.UserID,
			WalletID:      w.ID,
			Type:          wallet.TypeBetRefund,
			Status:        wallet.StatusCompleted,
			AmountMinor:   b.StakeMinor,
			BalanceBefore: w.BalanceMinor,
			BalanceAfter:  w.BalanceMinor + b.StakeMinor,
			Currency:      w.Currency,
			BetID:         b.ID,
			Metadata:      fmt.Sprintf(`{"reason":%q}`, reason),
			CreatedAt:     now,
		}
		if err := tx.AppendTransaction(ctx, txn); err != nil {
			return err
		}
		if err := tx.UpdateWalletBalances(ctx, w.ID, txn.BalanceAfter, w.LockedMinor, now); err != nil {
			return err
		}
		if err := tx.UpdateBet(ctx, b); err != nil {
			return err
		}
		refunded = b
		return nil
	})
	if err != nil {
		return bet.Bet{}, err
	}

	e.audit.Record(ctx, audit.Event{
		Type:        audit.TypeBetRefund,
		ActorUserID: actor.ID,
		ActorRole:   actor.Role,
		BetID:       refunded.ID,
		Message:     reason,
	})
	e.log.Info("bet refunded", "bet_id", refunded.ID, "user_id", refunded.UserID, "stake_minor", refunded.StakeMinor)
	return refunded, nil
}

// Wallet returns the user's wallet; a user who never funded gets a zero
// wallet rather than an error.
func (e *Engine) Wallet(ctx context.Context, userID string) (wallet.Wallet, error) {
	w, err := e.store.Wallet(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return wallet.Wallet{UserID: userID, Currency: e.cfg.Currency}, nil
	}
	return w, err
}

func (e *Engine) Transactions(ctx context.Context, userID string, f TransactionFilter, p Page) ([]wallet.Transaction, error) {
	return e.store.ListTransactions(ctx, userID, f, p)
}

func (e *Engine) Deposits(ctx context.Context, userID string, status deposit.Status, p Page) ([]deposit.Request, error) {
	return e.store.ListDeposits(ctx, userID, status, p)
}

func (e *Engine) Withdrawals(ctx context.Context, userID string, status withdrawal.Status, p Page) ([]withdrawal.Request, error) {
	return e.store.ListWithdrawals(ctx, userID, status, p)
}

func (e *Engine) Bets(ctx context.Context, userID string, status bet.Status, p Page) ([]bet.Bet, error) {
	return e.store.ListBets(ctx, userID, status, p)
}

// DepositRequest loads one request. A non-empty forUser scopes the lookup to
// that owner; requests of other users read as not found.
func (e *Engine) DepositRequest(ctx context.Context, id, forUser string) (deposit.Request, error) {
	r, err := e.store.Deposit(ctx, id)
	if err != nil {
		return deposit.Request{}, err
	}
	if forUser != "" && r.UserID != forUser {
		return deposit.Request{}, ErrNotFound
	}
	return r, nil
}

func (e *Engine) WithdrawalRequest(ctx context.Context, id, forUser string) (withdrawal.Request, error) {
	r, err := e.store.Withdrawal(ctx, id)
	if err != nil {
		return withdrawal.Request{}, err
	}
	if forUser != "" && r.UserID != forUser {
		return withdrawal.Request{}, ErrNotFound
	}
	return r, nil
}

func (e *Engine) BetByID(ctx context.Context, id, forUser string) (bet.Bet, error) {
	b, err := e.store.Bet(ctx, id)
	if err != nil {
		return bet.Bet{}, err
	}
	if forUser != "" && b.UserID != forUser {
		return bet.Bet{}, ErrNotFound
	}
	return b, nil
}
