package settlement

import (
	"context"
	"sort"
	"sync"
	"time"

	"wager-platform/internal/bet"
	"wager-platform/internal/deposit"
	"wager-platform/internal/wallet"
	"wager-platform/internal/withdrawal"
)

// memState is the whole dataset. Update works on a deep copy and swaps it in
// on success, so a failed settlement leaves no partial writes behind.
type memState struct {
	wallets      map[string]wallet.Wallet // by user id
	transactions map[string]wallet.Transaction
	txnOrder     []string
	deposits     map[string]deposit.Request
	withdrawals  map[string]withdrawal.Request
	bets         map[string]bet.Bet
}

func newMemState() *memState {
	return &memState{
		wallets:      map[string]wallet.Wallet{},
		transactions: map[string]wallet.Transaction{},
		deposits:     map[string]deposit.Request{},
		withdrawals:  map[string]withdrawal.Request{},
		bets:         map[string]bet.Bet{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.wallets {
		c.wallets[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	c.txnOrder = append([]string(nil), s.txnOrder...)
	for k, v := range s.deposits {
		c.deposits[k] = v
	}
	for k, v := range s.withdrawals {
		c.withdrawals[k] = v
	}
	for k, v := range s.bets {
		c.bets[k] = v
	}
	return c
}

// MemoryStore is an in-process Store for tests. A single mutex serializes
// settlements, which gives the same effective isolation the SQL store gets
// from row locks.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState()}
}

func (s *MemoryStore) Update(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	draft := s.state.clone()
	if err := fn(ctx, &memTx{state: draft}); err != nil {
		return err
	}
	s.state = draft
	return nil
}

func (s *MemoryStore) Wallet(ctx context.Context, userID string) (wallet.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.state.wallets[userID]
	if !ok {
		return wallet.Wallet{}, ErrNotFound
	}
	return w, nil
}

func (s *MemoryStore) ListTransactions(ctx context.Context, userID string, f TransactionFilter, p Page) ([]wallet.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p = p.withDefaults()

	var out []wallet.Transaction
	// txnOrder is append order; newest first for the API.
	for i := len(s.state.txnOrder) - 1; i >= 0; i-- {
		t := s.state.transactions[s.state.txnOrder[i]]
		if t.UserID != userID || !f.matches(t) {
			continue
		}
		out = append(out, t)
	}
	return paginate(out, p), nil
}

func (s *MemoryStore) SumTransactionsByType(ctx context.Context, userID string, status wallet.TransactionStatus) (map[wallet.TransactionType]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sums := map[wallet.TransactionType]int64{}
	for _, id := range s.state.txnOrder {
		t := s.state.transactions[id]
		if t.UserID != userID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		sums[t.Type] += t.AmountMinor
	}
	return sums, nil
}

func (s *MemoryStore) Deposit(ctx context.Context, id string) (deposit.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.state.deposits[id]
	if !ok {
		return deposit.Request{}, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) ListDeposits(ctx context.Context, userID string, status deposit.Status, p Page) ([]deposit.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []deposit.Request
	for _, r := range s.state.deposits {
		if userID != "" && r.UserID != userID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, p.withDefaults()), nil
}

func (s *MemoryStore) Withdrawal(ctx context.Context, id string) (withdrawal.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.state.withdrawals[id]
	if !ok {
		return withdrawal.Request{}, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) ListWithdrawals(ctx context.Context, userID string, status withdrawal.Status, p Page) ([]withdrawal.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []withdrawal.Request
	for _, r := range s.state.withdrawals {
		if userID != "" && r.UserID != userID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, p.withDefaults()), nil
}

func (s *MemoryStore) Bet(ctx context.Context, id string) (bet.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.state.bets[id]
	if !ok {
		return bet.Bet{}, ErrNotFound
	}
	return b, nil
}

func (s *MemoryStore) ListBets(ctx context.Context, userID string, status bet.Status, p Page) ([]bet.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []bet.Bet
	for _, b := range s.state.bets {
		if userID != "" && b.UserID != userID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, p.withDefaults()), nil
}

func paginate[T any](in []T, p Page) []T {
	if p.Offset >= len(in) {
		return nil
	}
	in = in[p.Offset:]
	if len(in) > p.Limit {
		in = in[:p.Limit]
	}
	return in
}

// memTx mutates the draft state; the store swaps it in only if the whole
// settlement callback succeeds.
type memTx struct {
	state *memState
}

func (tx *memTx) WalletByUser(ctx context.Context, userID string) (wallet.Wallet, error) {
	w, ok := tx.state.wallets[userID]
	if !ok {
		return wallet.Wallet{}, ErrNotFound
	}
	return w, nil
}

func (tx *memTx) CreateWallet(ctx context.Context, w wallet.Wallet) error {
	if _, ok := tx.state.wallets[w.UserID]; ok {
		return wallet.ErrInvariantViolation
	}
	tx.state.wallets[w.UserID] = w
	return nil
}

func (tx *memTx) UpdateWalletBalances(ctx context.Context, walletID string, balanceMinor, lockedMinor int64, now time.Time) error {
	if balanceMinor < 0 || lockedMinor < 0 {
		return wallet.ErrInvariantViolation
	}
	for userID, w := range tx.state.wallets {
		if w.ID != walletID {
			continue
		}
		w.BalanceMinor = balanceMinor
		w.LockedMinor = lockedMinor
		w.UpdatedAt = now
		tx.state.wallets[userID] = w
		return nil
	}
	return ErrNotFound
}

func (tx *memTx) AppendTransaction(ctx context.Context, t wallet.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if _, ok := tx.state.transactions[t.ID]; ok {
		return wallet.ErrInvariantViolation
	}
	tx.state.transactions[t.ID] = t
	tx.state.txnOrder = append(tx.state.txnOrder, t.ID)
	return nil
}

func (tx *memTx) FinalizeTransaction(ctx context.Context, id string, status wallet.TransactionStatus) error {
	t, ok := tx.state.transactions[id]
	if !ok {
		return ErrNotFound
	}
	if t.Status != wallet.StatusPending {
		return wallet.ErrInvariantViolation
	}
	if status != wallet.StatusCompleted && status != wallet.StatusFailed {
		return wallet.ErrInvariantViolation
	}
	t.Status = status
	tx.state.transactions[id] = t
	return nil
}

func (tx *memTx) DepositByID(ctx context.Context, id string) (deposit.Request, error) {
	r, ok := tx.state.deposits[id]
	if !ok {
		return deposit.Request{}, ErrNotFound
	}
	return r, nil
}

func (tx *memTx) CountPendingDeposits(ctx context.Context, userID string) (int, error) {
	n := 0
	for _, r := range tx.state.deposits {
		if r.UserID == userID && r.Status == deposit.StatusPending {
			n++
		}
	}
	return n, nil
}

func (tx *memTx) DepositProviderRefExists(ctx context.Context, providerRef string) (bool, error) {
	for _, r := range tx.state.deposits {
		if r.ProviderRef == providerRef {
			return true, nil
		}
	}
	return false, nil
}

func (tx *memTx) CreateDeposit(ctx context.Context, r deposit.Request) error {
	tx.state.deposits[r.ID] = r
	return nil
}

func (tx *memTx) UpdateDeposit(ctx context.Context, r deposit.Request) error {
	if _, ok := tx.state.deposits[r.ID]; !ok {
		return ErrNotFound
	}
	tx.state.deposits[r.ID] = r
	return nil
}

func (tx *memTx) WithdrawalByID(ctx context.Context, id string) (withdrawal.Request, error) {
	r, ok := tx.state.withdrawals[id]
	if !ok {
		return withdrawal.Request{}, ErrNotFound
	}
	return r, nil
}

func (tx *memTx) CreateWithdrawal(ctx context.Context, r withdrawal.Request) error {
	tx.state.withdrawals[r.ID] = r
	return nil
}

func (tx *memTx) UpdateWithdrawal(ctx context.Context, r withdrawal.Request) error {
	if _, ok := tx.state.withdrawals[r.ID]; !ok {
		return ErrNotFound
	}
	tx.state.withdrawals[r.ID] = r
	return nil
}

func (tx *memTx) BetByID(ctx context.Context, id string) (bet.Bet, error) {
	b, ok := tx.state.bets[id]
	if !ok {
		return bet.Bet{}, ErrNotFound
	}
	return b, nil
}

func (tx *memTx) PendingBetsByStake(ctx context.Context, userID string, stakeMinor int64) ([]bet.Bet, error) {
	var out []bet.Bet
	for _, b := range tx.state.bets {
		if b.UserID == userID && b.Status == bet.StatusPending && b.StakeMinor == stakeMinor {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (tx *memTx) CreateBet(ctx context.Context, b bet.Bet) error {
	tx.state.bets[b.ID] = b
	return nil
}

func (tx *memTx) UpdateBet(ctx context.Context, b bet.Bet) error {
	if _, ok := tx.state.bets[b.ID]; !ok {
		return ErrNotFound
	}
	tx.state.bets[b.ID] = b
	return nil
}
