package bet

import (
	"errors"
	"time"
)

var (
	// ErrAlreadySettled rejects a second settling event on the same bet.
	ErrAlreadySettled = errors.New("bet already settled")

	// ErrNoPendingBet: no PENDING bet matches the cash-out target.
	ErrNoPendingBet = errors.New("no pending bet")

	// ErrAmbiguousStake: more than one PENDING bet carries the same stake.
	// The caller must retry with an explicit bet id; the engine never picks
	// one silently.
	ErrAmbiguousStake = errors.New("ambiguous pending bets for stake")
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusWon      Status = "WON"
	StatusLost     Status = "LOST"
	StatusCashout  Status = "CASHOUT"
	StatusRefunded Status = "REFUNDED"
)

// Bet is one wager in a game round. The stake is debited by a BET_PLACED
// ledger entry when the bet is accepted; exactly one settling event moves it
// out of PENDING.
type Bet struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	StakeMinor int64  `json:"stake_minor" db:"stake_minor"`
	Currency   string `json:"currency" db:"currency"`
	// Game tags the round type (dice, mines, crash, ...); informational.
	Game string `json:"game,omitempty" db:"game"`

	Status Status `json:"status" db:"status"`

	ActualWinMinor int64   `json:"actual_win_minor" db:"actual_win_minor"`
	TotalOdds      float64 `json:"total_odds" db:"total_odds"`

	SettledAt         *time.Time `json:"settled_at,omitempty" db:"settled_at"`
	CashoutAt         *time.Time `json:"cashout_at,omitempty" db:"cashout_at"`
	CashoutValueMinor int64      `json:"cashout_value_minor" db:"cashout_value_minor"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// MarkWon settles PENDING -> WON.
func (b *Bet) MarkWon(winMinor int64, odds float64, now time.Time) error {
	if b.Status != StatusPending {
		return ErrAlreadySettled
	}
	b.Status = StatusWon
	b.ActualWinMinor = winMinor
	b.TotalOdds = odds
	b.SettledAt = &now
	b.UpdatedAt = now
	return nil
}

// MarkLost settles PENDING -> LOST. The stake stays with the house; no
// wallet mutation accompanies this transition.
func (b *Bet) MarkLost(now time.Time) error {
	if b.Status != StatusPending {
		return ErrAlreadySettled
	}
	b.Status = StatusLost
	b.ActualWinMinor = 0
	b.SettledAt = &now
	b.UpdatedAt = now
	return nil
}

// MarkCashout settles PENDING -> CASHOUT at the caller-supplied multiplier.
func (b *Bet) MarkCashout(valueMinor int64, multiplier float64, now time.Time) error {
	if b.Status != StatusPending {
		return ErrAlreadySettled
	}
	b.Status = StatusCashout
	b.ActualWinMinor = valueMinor
	b.CashoutValueMinor = valueMinor
	b.TotalOdds = multiplier
	b.CashoutAt = &now
	b.SettledAt = &now
	b.UpdatedAt = now
	return nil
}

// MarkRefunded voids PENDING -> REFUNDED (admin action, e.g. a voided
// round); the stake is returned via a BET_REFUND ledger entry.
func (b *Bet) MarkRefunded(now time.Time) error {
	if b.Status != StatusPending {
		return ErrAlreadySettled
	}
	b.Status = StatusRefunded
	b.ActualWinMinor = 0
	b.SettledAt = &now
	b.UpdatedAt = now
	return nil
}
