package settlement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"wager-platform/internal/audit"
	"wager-platform/internal/bet"
	"wager-platform/internal/deposit"
	"wager-platform/internal/notify"
	"wager-platform/internal/rbac"
	"wager-platform/internal/wallet"
	"wager-platform/internal/withdrawal"
)

var (
	player = Actor{ID: "user-1", Role: rbac.RolePlayer, Active: true}
	admin  = Actor{ID: "admin-1", Role: rbac.RoleAdmin, Active: true}
)

type testRig struct {
	engine  *Engine
	store   *MemoryStore
	emitter *notify.MemoryEmitter
	audits  *audit.MemoryRepo
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	store := NewMemoryStore()
	emitter := notify.NewMemoryEmitter()
	audits := audit.NewMemoryRepo()
	engine := NewEngine(store, emitter, audit.NewService(audits, nil), nil, Config{
		Currency:           "BDT",
		PaymentMethods:     []string{"BKASH", "NAGAD", "ROCKET"},
		MaxPendingDeposits: 3,
		MinDepositMinor:    100,
		MaxDepositMinor:    10_000_000,
		MinWithdrawalMinor: 100,
		MaxWithdrawalMinor: 10_000_000,
		MinStakeMinor:      10,
		MaxStakeMinor:      1_000_000,
	})
	return &testRig{engine: engine, store: store, emitter: emitter, audits: audits}
}

// fund credits the player's wallet through a full deposit round trip.
func (r *testRig) fund(t *testing.T, actor Actor, amount int64, providerRef string) {
	t.Helper()
	ctx := context.Background()
	req, err := r.engine.SubmitDeposit(ctx, actor, SubmitDepositInput{
		AmountMinor:   amount,
		PaymentMethod: "BKASH",
		ProviderRef:   providerRef,
		SenderNumber:  "01700000000",
	})
	if err != nil {
		t.Fatalf("submit deposit: %v", err)
	}
	if _, err := r.engine.ReviewDeposit(ctx, admin, DepositDecision{RequestID: req.ID, Approve: true}); err != nil {
		t.Fatalf("approve deposit: %v", err)
	}
}

func (r *testRig) balance(t *testing.T, userID string) (balanceMinor, lockedMinor int64) {
	t.Helper()
	w, err := r.engine.Wallet(context.Background(), userID)
	if err != nil {
		t.Fatalf("wallet: %v", err)
	}
	return w.BalanceMinor, w.LockedMinor
}

func TestDepositApproval_CreditsWalletWithSnapshots(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	rig.fund(t, player, 500, "SEED-1")

	req, err := rig.engine.SubmitDeposit(ctx, player, SubmitDepositInput{
		AmountMinor:   200,
		PaymentMethod: "BKASH",
		ProviderRef:   "TX1",
		SenderNumber:  "01700000000",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if bal, _ := rig.balance(t, player.ID); bal != 500 {
		t.Fatalf("submission must not touch the wallet, balance = %d", bal)
	}

	reviewed, err := rig.engine.ReviewDeposit(ctx, admin, DepositDecision{RequestID: req.ID, Approve: true})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if reviewed.Status != deposit.StatusApproved || reviewed.TransactionID == "" {
		t.Fatalf("unexpected request state: %+v", reviewed)
	}
	if bal, _ := rig.balance(t, player.ID); bal != 700 {
		t.Fatalf("balance = %d, want 700", bal)
	}

	txns, err := rig.engine.Transactions(ctx, player.ID, TransactionFilter{Type: wallet.TypeDeposit}, Page{})
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	latest := txns[0]
	if latest.BalanceBefore != 500 || latest.BalanceAfter != 700 || latest.RequestID != req.ID {
		t.Fatalf("unexpected ledger entry: %+v", latest)
	}

	// Second verdict must fail without touching the wallet.
	if _, err := rig.engine.ReviewDeposit(ctx, admin, DepositDecision{RequestID: req.ID, Approve: true}); !errors.Is(err, deposit.ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
	if bal, _ := rig.balance(t, player.ID); bal != 700 {
		t.Fatalf("double approve credited twice, balance = %d", bal)
	}
}

func TestDepositRejection_LeavesWalletUntouched(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	req, err := rig.engine.SubmitDeposit(ctx, player, SubmitDepositInput{
		AmountMinor:   300,
		PaymentMethod: "NAGAD",
		ProviderRef:   "TX-REJ",
		SenderNumber:  "01700000000",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := rig.engine.ReviewDeposit(ctx, admin, DepositDecision{RequestID: req.ID}); !errors.Is(err, deposit.ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}
	reviewed, err := rig.engine.ReviewDeposit(ctx, admin, DepositDecision{RequestID: req.ID, Reason: "proof unreadable"})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if reviewed.Status != deposit.StatusRejected {
		t.Fatalf("unexpected status %s", reviewed.Status)
	}
	if bal, _ := rig.balance(t, player.ID); bal != 0 {
		t.Fatalf("rejection must not credit, balance = %d", bal)
	}

	var rejected bool
	for _, n := range rig.emitter.Sent() {
		if n.Kind == notify.KindDepositRejected && n.UserID == player.ID {
			rejected = true
		}
	}
	if !rejected {
		t.Fatalf("expected DEPOSIT_REJECTED notification, got %+v", rig.emitter.Sent())
	}
}

func TestSubmitDeposit_EnforcesPendingCap(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	refs := []string{"CAP-1", "CAP-2", "CAP-3"}
	var first deposit.Request
	for i, ref := range refs {
		req, err := rig.engine.SubmitDeposit(ctx, player, SubmitDepositInput{
			AmountMinor:   200,
			PaymentMethod: "BKASH",
			ProviderRef:   ref,
			SenderNumber:  "01700000000",
		})
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if i == 0 {
			first = req
		}
	}

	_, err := rig.engine.SubmitDeposit(ctx, player, SubmitDepositInput{
		AmountMinor:   200,
		PaymentMethod: "BKASH",
		ProviderRef:   "CAP-4",
		SenderNumber:  "01700000000",
	})
	if !errors.Is(err, deposit.ErrTooManyPending) {
		t.Fatalf("expected ErrTooManyPending, got %v", err)
	}

	// Resolving one frees a slot.
	if _, err := rig.engine.ReviewDeposit(ctx, admin, DepositDecision{RequestID: first.ID, Approve: true}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := rig.engine.SubmitDeposit(ctx, player, SubmitDepositInput{
		AmountMinor:   200,
		PaymentMethod: "BKASH",
		ProviderRef:   "CAP-5",
		SenderNumber:  "01700000000",
	}); err != nil {
		t.Fatalf("submit after free slot: %v", err)
	}
}

func TestSubmitDeposit_ConcurrentRespectsCap(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	const attempts = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		accepted  int
		overflows int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := rig.engine.SubmitDeposit(ctx, player, SubmitDepositInput{
				AmountMinor:   200,
				PaymentMethod: "BKASH",
				ProviderRef:   fmt.Sprintf("RACE-%d", i),
				SenderNumber:  "01700000000",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, deposit.ErrTooManyPending):
				overflows++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if accepted != 3 || overflows != attempts-3 {
		t.Fatalf("accepted=%d overflows=%d, want 3/%d", accepted, overflows, attempts-3)
	}
	pending, err := rig.engine.Deposits(ctx, player.ID, deposit.StatusPending, Page{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("%d PENDING requests persisted, cap is 3", len(pending))
	}
}

func TestSubmitDeposit_RejectsDuplicateProviderRef(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	in := SubmitDepositInput{
		AmountMinor:   200,
		PaymentMethod: "BKASH",
		ProviderRef:   "DUP-1",
		SenderNumber:  "01700000000",
	}
	if _, err := rig.engine.SubmitDeposit(ctx, player, in); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := rig.engine.SubmitDeposit(ctx, player, in); !errors.Is(err, deposit.ErrDuplicateProviderRef) {
		t.Fatalf("expected ErrDuplicateProviderRef, got %v", err)
	}
}

func TestSubmitDeposit_ValidatesInput(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	cases := []SubmitDepositInput{
		{AmountMinor: 50, PaymentMethod: "BKASH", ProviderRef: "V1", SenderNumber: "x"},   // below min
		{AmountMinor: 200, PaymentMethod: "PAYPAL", ProviderRef: "V2", SenderNumber: "x"}, // unknown method
		{AmountMinor: 200, PaymentMethod: "BKASH", SenderNumber: "x"},                     // no ref
	}
	for i, in := range cases {
		if _, err := rig.engine.SubmitDeposit(ctx, player, in); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("case %d: expected ErrInvalidArgument, got %v", i, err)
		}
	}
}

func TestWithdrawal_ReservationRoundTrip(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	rig.fund(t, player, 1000, "WD-SEED")

	req, err := rig.engine.SubmitWithdrawal(ctx, player, SubmitWithdrawalInput{
		AmountMinor:     300,
		PaymentMethod:   "NAGAD",
		RecipientNumber: "01800000000",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	bal, locked := rig.balance(t, player.ID)
	if bal != 700 || locked != 300 {
		t.Fatalf("reservation: balance=%d locked=%d, want 700/300", bal, locked)
	}
	if bal+locked != 1000 {
		t.Fatalf("reservation must conserve total, got %d", bal+locked)
	}

	// Rejection releases the reservation through a compensating entry.
	if _, err := rig.engine.ReviewWithdrawal(ctx, admin, WithdrawalDecision{RequestID: req.ID, Reason: "name mismatch"}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	bal, locked = rig.balance(t, player.ID)
	if bal != 1000 || locked != 0 {
		t.Fatalf("after reject: balance=%d locked=%d, want 1000/0", bal, locked)
	}

	txns, err := rig.engine.Transactions(ctx, player.ID, TransactionFilter{}, Page{})
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	var sawFailedWithdrawal, sawAdjustment bool
	for _, txn := range txns {
		if txn.Type == wallet.TypeWithdrawal && txn.Status == wallet.StatusFailed && txn.ID == req.TransactionID {
			sawFailedWithdrawal = true
		}
		if txn.Type == wallet.TypeAdjustment && txn.Status == wallet.StatusCompleted && txn.RequestID == req.ID {
			sawAdjustment = true
		}
	}
	if !sawFailedWithdrawal || !sawAdjustment {
		t.Fatalf("expected FAILED withdrawal + compensating adjustment, got %+v", txns)
	}
}

func TestWithdrawal_ApprovalReleasesLocked(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	rig.fund(t, player, 1000, "WD-OK")

	req, err := rig.engine.SubmitWithdrawal(ctx, player, SubmitWithdrawalInput{
		AmountMinor:     400,
		PaymentMethod:   "BKASH",
		RecipientNumber: "01800000000",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	reviewed, err := rig.engine.ReviewWithdrawal(ctx, admin, WithdrawalDecision{
		RequestID: req.ID, Approve: true, PayoutRef: "PAYOUT-9",
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if reviewed.Status != withdrawal.StatusApproved || reviewed.PayoutRef != "PAYOUT-9" {
		t.Fatalf("unexpected request: %+v", reviewed)
	}

	bal, locked := rig.balance(t, player.ID)
	if bal != 600 || locked != 0 {
		t.Fatalf("after approve: balance=%d locked=%d, want 600/0", bal, locked)
	}

	txn, err := rig.engine.Transactions(ctx, player.ID, TransactionFilter{Type: wallet.TypeWithdrawal}, Page{})
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txn) != 1 || txn[0].Status != wallet.StatusCompleted {
		t.Fatalf("reservation entry must be COMPLETED: %+v", txn)
	}
}

func TestSubmitWithdrawal_InsufficientFunds(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	rig.fund(t, player, 200, "POOR-1")

	_, err := rig.engine.SubmitWithdrawal(ctx, player, SubmitWithdrawalInput{
		AmountMinor:     500,
		PaymentMethod:   "BKASH",
		RecipientNumber: "01800000000",
	})
	if !errors.Is(err, wallet.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	// Nothing may leak from the failed settlement.
	bal, locked := rig.balance(t, player.ID)
	if bal != 200 || locked != 0 {
		t.Fatalf("failed settlement leaked state: balance=%d locked=%d", bal, locked)
	}
	if reqs, _ := rig.engine.Withdrawals(ctx, player.ID, "", Page{}); len(reqs) != 0 {
		t.Fatalf("failed settlement left a request behind: %+v", reqs)
	}
}

func TestReview_RequiresActiveAdmin(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	req, err := rig.engine.SubmitDeposit(ctx, player, SubmitDepositInput{
		AmountMinor:   200,
		PaymentMethod: "BKASH",
		ProviderRef:   "ADM-1",
		SenderNumber:  "01700000000",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	for _, actor := range []Actor{
		{ID: "user-2", Role: rbac.RolePlayer, Active: true},
		{ID: "admin-2", Role: rbac.RoleAdmin, Active: false},
	} {
		if _, err := rig.engine.ReviewDeposit(ctx, actor, DepositDecision{RequestID: req.ID, Approve: true}); !errors.Is(err, ErrForbidden) {
			t.Fatalf("actor %+v: expected ErrForbidden, got %v", actor, err)
		}
	}
}

func TestPlaceAndResolveBet(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	rig.fund(t, player, 1000, "BET-SEED")

	b, err := rig.engine.PlaceBet(ctx, player, PlaceBetInput{StakeMinor: 100, Game: "dice"})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if bal, _ := rig.balance(t, player.ID); bal != 900 {
		t.Fatalf("stake not debited, balance = %d", bal)
	}

	won, err := rig.engine.ResolveBet(ctx, admin, ResolveBetInput{BetID: b.ID, Won: true, Odds: 2.5})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if won.Status != bet.StatusWon || won.ActualWinMinor != 250 {
		t.Fatalf("unexpected bet: %+v", won)
	}
	if bal, _ := rig.balance(t, player.ID); bal != 1150 {
		t.Fatalf("win not credited, balance = %d", bal)
	}

	// A settled bet never settles again.
	if _, err := rig.engine.ResolveBet(ctx, admin, ResolveBetInput{BetID: b.ID, Won: false}); !errors.Is(err, bet.ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}
	if bal, _ := rig.balance(t, player.ID); bal != 1150 {
		t.Fatalf("second settle moved money, balance = %d", bal)
	}
}

func TestResolveBet_LostWritesZeroDeltaEntry(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	rig.fund(t, player, 500, "LOST-SEED")

	b, err := rig.engine.PlaceBet(ctx, player, PlaceBetInput{StakeMinor: 80, Game: "mines"})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := rig.engine.ResolveBet(ctx, admin, ResolveBetInput{BetID: b.ID}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if bal, _ := rig.balance(t, player.ID); bal != 420 {
		t.Fatalf("loss must not move money, balance = %d", bal)
	}

	txns, err := rig.engine.Transactions(ctx, player.ID, TransactionFilter{Type: wallet.TypeBetLost}, Page{})
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected one BET_LOST entry, got %d", len(txns))
	}
	if txns[0].AmountMinor != 0 || txns[0].BalanceBefore != txns[0].BalanceAfter {
		t.Fatalf("BET_LOST must be zero-delta: %+v", txns[0])
	}
}

func TestCashOut_Scenario(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	rig.fund(t, player, 500, "CO-SEED")

	b, err := rig.engine.PlaceBet(ctx, player, PlaceBetInput{StakeMinor: 50, Game: "crash"})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if bal, _ := rig.balance(t, player.ID); bal != 450 {
		t.Fatalf("balance = %d, want 450", bal)
	}

	// Stake-matched: the single pending 50 bet is the target.
	out, err := rig.engine.CashOut(ctx, player, CashOutInput{StakeMinor: 50, ValueMinor: 125, Multiplier: 2.5})
	if err != nil {
		t.Fatalf("cash out: %v", err)
	}
	if out.ID != b.ID || out.Status != bet.StatusCashout || out.ActualWinMinor != 125 {
		t.Fatalf("unexpected bet: %+v", out)
	}
	if bal, _ := rig.balance(t, player.ID); bal != 575 {
		t.Fatalf("balance = %d, want 575", bal)
	}

	if _, err := rig.engine.CashOut(ctx, player, CashOutInput{StakeMinor: 50, ValueMinor: 125, Multiplier: 2.5}); !errors.Is(err, bet.ErrNoPendingBet) {
		t.Fatalf("expected ErrNoPendingBet, got %v", err)
	}
}

func TestCashOut_AmbiguousStakeNeverGuesses(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	rig.fund(t, player, 500, "AMB-SEED")

	b1, err := rig.engine.PlaceBet(ctx, player, PlaceBetInput{StakeMinor: 50, Game: "crash"})
	if err != nil {
		t.Fatalf("place 1: %v", err)
	}
	if _, err := rig.engine.PlaceBet(ctx, player, PlaceBetInput{StakeMinor: 50, Game: "crash"}); err != nil {
		t.Fatalf("place 2: %v", err)
	}

	if _, err := rig.engine.CashOut(ctx, player, CashOutInput{StakeMinor: 50, ValueMinor: 100, Multiplier: 2}); !errors.Is(err, bet.ErrAmbiguousStake) {
		t.Fatalf("expected ErrAmbiguousStake, got %v", err)
	}

	// An explicit bet id disambiguates.
	out, err := rig.engine.CashOut(ctx, player, CashOutInput{BetID: b1.ID, ValueMinor: 100, Multiplier: 2})
	if err != nil {
		t.Fatalf("explicit cash out: %v", err)
	}
	if out.ID != b1.ID {
		t.Fatalf("settled wrong bet: %+v", out)
	}
}

func TestCashOut_ConcurrentSettlesAtMostOnce(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	rig.fund(t, player, 1000, "CONC-SEED")

	b, err := rig.engine.PlaceBet(ctx, player, PlaceBetInput{StakeMinor: 100, Game: "crash"})
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := rig.engine.CashOut(ctx, player, CashOutInput{BetID: b.ID, ValueMinor: 250, Multiplier: 2.5})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if !errors.Is(err, bet.ErrAlreadySettled) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("bet settled %d times, want exactly 1", successes)
	}
	if bal, _ := rig.balance(t, player.ID); bal != 1150 {
		t.Fatalf("balance = %d, want 1150 (credited once)", bal)
	}
}

func TestRefundBet_ReturnsStake(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	rig.fund(t, player, 500, "REF-SEED")

	b, err := rig.engine.PlaceBet(ctx, player, PlaceBetInput{StakeMinor: 120, Game: "dice"})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := rig.engine.RefundBet(ctx, player, b.ID, "round voided"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("players must not refund, got %v", err)
	}

	refunded, err := rig.engine.RefundBet(ctx, admin, b.ID, "round voided")
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refunded.Status != bet.StatusRefunded {
		t.Fatalf("unexpected bet: %+v", refunded)
	}
	if bal, _ := rig.balance(t, player.ID); bal != 500 {
		t.Fatalf("stake not returned, balance = %d", bal)
	}

	events := rig.audits.Events()
	if len(events) == 0 || events[len(events)-1].Type != audit.TypeBetRefund {
		t.Fatalf("expected refund audit event, got %+v", events)
	}
}

func TestLedger_SnapshotsChain(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	rig.fund(t, player, 1000, "CHAIN-1")
	b, _ := rig.engine.PlaceBet(ctx, player, PlaceBetInput{StakeMinor: 200, Game: "dice"})
	_, _ = rig.engine.ResolveBet(ctx, admin, ResolveBetInput{BetID: b.ID, Won: true, Odds: 2})
	wd, _ := rig.engine.SubmitWithdrawal(ctx, player, SubmitWithdrawalInput{
		AmountMinor: 300, PaymentMethod: "BKASH", RecipientNumber: "018",
	})
	_, _ = rig.engine.ReviewWithdrawal(ctx, admin, WithdrawalDecision{RequestID: wd.ID, Reason: "kyc"})

	txns, err := rig.engine.Transactions(ctx, player.ID, TransactionFilter{}, Page{})
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	// Newest first; replay oldest first and verify each entry chains.
	for i := len(txns) - 1; i > 0; i-- {
		cur, next := txns[i], txns[i-1]
		if cur.BalanceAfter != next.BalanceBefore {
			t.Fatalf("snapshot chain broken between %s and %s: %d != %d", cur.ID, next.ID, cur.BalanceAfter, next.BalanceBefore)
		}
	}
	bal, _ := rig.balance(t, player.ID)
	if txns[0].BalanceAfter != bal {
		t.Fatalf("wallet balance %d diverges from last snapshot %d", bal, txns[0].BalanceAfter)
	}
}

func TestNotifications_EmittedAfterCommitOnly(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	// A failed settlement must emit nothing.
	_, err := rig.engine.ReviewDeposit(ctx, admin, DepositDecision{RequestID: "missing", Approve: true})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := rig.emitter.Sent(); len(got) != 0 {
		t.Fatalf("failed settlement emitted notifications: %+v", got)
	}

	rig.fund(t, player, 500, "NOTIF-1")
	var success bool
	for _, n := range rig.emitter.Sent() {
		if n.Kind == notify.KindDepositSuccess && n.UserID == player.ID {
			success = true
		}
	}
	if !success {
		t.Fatalf("expected DEPOSIT_SUCCESS notification, got %+v", rig.emitter.Sent())
	}
	if got := rig.emitter.Broadcasts(); len(got) != 1 {
		t.Fatalf("expected one admin broadcast for the submission, got %+v", got)
	}
}
