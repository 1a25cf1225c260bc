package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"wager-platform/internal/auth"
	"wager-platform/internal/rbac"
	"wager-platform/internal/reporting"
	"wager-platform/internal/settlement"
	"wager-platform/pkg/utils"
)

// Server wires the settlement engine and reporting behind the HTTP surface.
// db and rdb are optional; when nil the health check and submission cap
// degrade gracefully (useful in tests).
type Server struct {
	engine  *settlement.Engine
	reports *reporting.Service
	db      *sql.DB
	rdb     *redis.Client
	log     *slog.Logger
}

func NewServer(engine *settlement.Engine, reports *reporting.Service, db *sql.DB, rdb *redis.Client, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{engine: engine, reports: reports, db: db, rdb: rdb, log: log}
}

// Register mounts all routes on r. Token verification guards everything
// under /v1; role checks sit on the admin group.
func (s *Server) Register(r *gin.Engine, tokens *auth.Manager) {
	r.GET("/healthz", s.health)

	v1 := r.Group("/v1", auth.RequireAccessToken(tokens))

	player := v1.Group("", rbac.RequireActive())
	{
		player.GET("/wallet", s.getWallet)
		player.GET("/wallet/transactions", s.listTransactions)
		player.GET("/turnover", s.getTurnover)

		player.POST("/deposits", s.submissionCap(), s.submitDeposit)
		player.GET("/deposits", s.listDeposits)
		player.GET("/deposits/:id", s.getDeposit)

		player.POST("/withdrawals", s.submissionCap(), s.submitWithdrawal)
		player.GET("/withdrawals", s.listWithdrawals)
		player.GET("/withdrawals/:id", s.getWithdrawal)

		player.POST("/bets", s.submissionCap(), s.placeBet)
		player.GET("/bets", s.listBets)
		player.GET("/bets/:id", s.getBet)
		player.POST("/bets/cashout", s.submissionCap(), s.cashOut)
	}

	admin := v1.Group("/admin", rbac.RequireActive(), rbac.RequireAnyRole(rbac.RoleAdmin))
	{
		admin.GET("/deposits", s.adminListDeposits)
		admin.GET("/deposits/:id", s.adminGetDeposit)
		admin.POST("/deposits/:id/review", s.reviewDeposit)

		admin.GET("/withdrawals", s.adminListWithdrawals)
		admin.GET("/withdrawals/:id", s.adminGetWithdrawal)
		admin.POST("/withdrawals/:id/review", s.reviewWithdrawal)

		admin.POST("/bets/:id/resolve", s.resolveBet)
		admin.POST("/bets/:id/refund", s.refundBet)

		admin.GET("/users/:id/wallet", s.adminGetWallet)
		admin.GET("/users/:id/transactions", s.adminListTransactions)
		admin.GET("/users/:id/turnover", s.adminGetTurnover)
	}
}

func (s *Server) health(c *gin.Context) {
	ctx := c.Request.Context()
	if s.db != nil {
		if err := utils.HealthCheck(ctx, s.db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": err.Error()})
			return
		}
	}
	if s.rdb != nil {
		if err := s.rdb.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// actorFrom rebuilds the settlement actor from the verified token claims the
// auth middleware stored on the gin context.
func actorFrom(c *gin.Context) settlement.Actor {
	return settlement.Actor{
		ID:     c.GetString("user_id"),
		Role:   c.GetString("role"),
		Active: c.GetBool("active"),
	}
}
