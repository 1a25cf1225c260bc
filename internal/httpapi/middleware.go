package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"wager-platform/pkg/logger"
	"wager-platform/pkg/utils"
)

const (
	submissionSlotTTL   = 30 * time.Second
	submissionSlotLimit = 4
)

// submissionCap bounds a user's in-flight money-posting requests at the HTTP
// edge. Fail-open on Redis errors: the ledger's own preconditions stay the
// source of truth, this only sheds abusive request floods.
func (s *Server) submissionCap() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.rdb == nil {
			c.Next()
			return
		}
		key := "submit:" + c.GetString("user_id")
		ctx := c.Request.Context()

		ok, err := utils.AcquireSubmissionSlot(ctx, s.rdb, key, submissionSlotLimit, submissionSlotTTL)
		if err != nil {
			logger.FromGin(c).Warn("submission slot acquire failed", "err", err)
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many concurrent submissions"})
			return
		}
		defer func() {
			if err := utils.ReleaseSubmissionSlot(ctx, s.rdb, key); err != nil {
				logger.FromGin(c).Warn("submission slot release failed", "err", err)
			}
		}()
		c.Next()
	}
}
