package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"wager-platform/internal/bet"
	"wager-platform/internal/deposit"
	"wager-platform/internal/settlement"
	"wager-platform/internal/wallet"
	"wager-platform/internal/withdrawal"
)

func pageFrom(c *gin.Context) settlement.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return settlement.Page{Limit: limit, Offset: offset}
}

func timeQuery(c *gin.Context, key string) time.Time {
	v := c.Query(key)
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s *Server) getWallet(c *gin.Context) {
	w, err := s.engine.Wallet(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (s *Server) listTransactions(c *gin.Context) {
	f := settlement.TransactionFilter{
		Type:   wallet.TransactionType(c.Query("type")),
		Status: wallet.TransactionStatus(c.Query("status")),
		From:   timeQuery(c, "from"),
		To:     timeQuery(c, "to"),
	}
	txns, err := s.engine.Transactions(c.Request.Context(), c.GetString("user_id"), f, pageFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}

func (s *Server) getTurnover(c *gin.Context) {
	sum, err := s.reports.Turnover(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) submitDeposit(c *gin.Context) {
	var in settlement.SubmitDepositInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req, err := s.engine.SubmitDeposit(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (s *Server) listDeposits(c *gin.Context) {
	reqs, err := s.engine.Deposits(c.Request.Context(), c.GetString("user_id"), deposit.Status(c.Query("status")), pageFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposits": reqs})
}

func (s *Server) submitWithdrawal(c *gin.Context) {
	var in settlement.SubmitWithdrawalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req, err := s.engine.SubmitWithdrawal(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (s *Server) listWithdrawals(c *gin.Context) {
	reqs, err := s.engine.Withdrawals(c.Request.Context(), c.GetString("user_id"), withdrawal.Status(c.Query("status")), pageFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": reqs})
}

func (s *Server) placeBet(c *gin.Context) {
	var in settlement.PlaceBetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	b, err := s.engine.PlaceBet(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (s *Server) listBets(c *gin.Context) {
	bets, err := s.engine.Bets(c.Request.Context(), c.GetString("user_id"), bet.Status(c.Query("status")), pageFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bets": bets})
}

func (s *Server) cashOut(c *gin.Context) {
	var in settlement.CashOutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	b, err := s.engine.CashOut(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) getDeposit(c *gin.Context) {
	req, err := s.engine.DepositRequest(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (s *Server) getWithdrawal(c *gin.Context) {
	req, err := s.engine.WithdrawalRequest(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (s *Server) getBet(c *gin.Context) {
	b, err := s.engine.BetByID(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

/* ===================== ADMIN ===================== */

type reviewBody struct {
	Approve   bool   `json:"approve"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`
	PayoutRef string `json:"payout_ref"`
}

func (s *Server) adminListDeposits(c *gin.Context) {
	reqs, err := s.engine.Deposits(c.Request.Context(), c.Query("user_id"), deposit.Status(c.Query("status")), pageFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposits": reqs})
}

func (s *Server) reviewDeposit(c *gin.Context) {
	var body reviewBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req, err := s.engine.ReviewDeposit(c.Request.Context(), actorFrom(c), settlement.DepositDecision{
		RequestID: c.Param("id"),
		Approve:   body.Approve,
		Reason:    body.Reason,
		Notes:     body.Notes,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (s *Server) adminGetDeposit(c *gin.Context) {
	req, err := s.engine.DepositRequest(c.Request.Context(), c.Param("id"), "")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (s *Server) adminGetWithdrawal(c *gin.Context) {
	req, err := s.engine.WithdrawalRequest(c.Request.Context(), c.Param("id"), "")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (s *Server) adminListWithdrawals(c *gin.Context) {
	reqs, err := s.engine.Withdrawals(c.Request.Context(), c.Query("user_id"), withdrawal.Status(c.Query("status")), pageFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": reqs})
}

func (s *Server) reviewWithdrawal(c *gin.Context) {
	var body reviewBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req, err := s.engine.ReviewWithdrawal(c.Request.Context(), actorFrom(c), settlement.WithdrawalDecision{
		RequestID: c.Param("id"),
		Approve:   body.Approve,
		PayoutRef: body.PayoutRef,
		Reason:    body.Reason,
		Notes:     body.Notes,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (s *Server) resolveBet(c *gin.Context) {
	var body struct {
		Won  bool    `json:"won"`
		Odds float64 `json:"odds"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	b, err := s.engine.ResolveBet(c.Request.Context(), actorFrom(c), settlement.ResolveBetInput{
		BetID: c.Param("id"),
		Won:   body.Won,
		Odds:  body.Odds,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) refundBet(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	b, err := s.engine.RefundBet(c.Request.Context(), actorFrom(c), c.Param("id"), body.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) adminGetWallet(c *gin.Context) {
	w, err := s.engine.Wallet(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (s *Server) adminListTransactions(c *gin.Context) {
	f := settlement.TransactionFilter{
		Type:   wallet.TransactionType(c.Query("type")),
		Status: wallet.TransactionStatus(c.Query("status")),
		From:   timeQuery(c, "from"),
		To:     timeQuery(c, "to"),
	}
	txns, err := s.engine.Transactions(c.Request.Context(), c.Param("id"), f, pageFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}

func (s *Server) adminGetTurnover(c *gin.Context) {
	sum, err := s.reports.Turnover(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
