package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wager-platform/internal/bet"
	"wager-platform/internal/deposit"
	"wager-platform/internal/settlement"
	"wager-platform/internal/wallet"
	"wager-platform/internal/withdrawal"
	"wager-platform/pkg/logger"
)

// statusOf maps engine errors onto HTTP statuses. Conflicts (409) cover
// everything where the request was well-formed but lost a race or repeats a
// decision already taken.
func statusOf(err error) int {
	switch {
	case errors.Is(err, settlement.ErrInvalidArgument),
		errors.Is(err, deposit.ErrReasonRequired),
		errors.Is(err, withdrawal.ErrReasonRequired),
		errors.Is(err, wallet.ErrCurrencyMismatch):
		return http.StatusBadRequest
	case errors.Is(err, wallet.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, settlement.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, settlement.ErrNotFound),
		errors.Is(err, bet.ErrNoPendingBet):
		return http.StatusNotFound
	case errors.Is(err, deposit.ErrAlreadyReviewed),
		errors.Is(err, withdrawal.ErrAlreadyReviewed),
		errors.Is(err, deposit.ErrDuplicateProviderRef),
		errors.Is(err, deposit.ErrTooManyPending),
		errors.Is(err, bet.ErrAlreadySettled),
		errors.Is(err, bet.ErrAmbiguousStake):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.FromGin(c).Error("request failed", "err", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
