package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"

	"wager-platform/internal/audit"
	"wager-platform/internal/auth"
	"wager-platform/internal/config"
	"wager-platform/internal/httpapi"
	"wager-platform/internal/notify"
	"wager-platform/internal/reporting"
	"wager-platform/internal/settlement"
	"wager-platform/pkg/logger"
	"wager-platform/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		// Logger needs config; fall back to stderr.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	log.Info("starting api", "env", cfg.App.Env, "addr", cfg.HTTPAddr())

	db, err := utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres open failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis open failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	tokens, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth manager init failed", "err", err)
		os.Exit(1)
	}

	store := settlement.NewPostgresStore(db)
	emitter := notify.NewRedisEmitter(rdb, log)
	audits := audit.NewService(audit.NewPostgresRepo(db), log)
	engine := settlement.NewEngine(store, emitter, audits, log, settlement.Config{
		Currency:           cfg.Platform.Currency,
		PaymentMethods:     cfg.Platform.PaymentMethods,
		MaxPendingDeposits: cfg.Platform.MaxPendingDeposits,
		MinDepositMinor:    cfg.Platform.MinDepositMinor,
		MaxDepositMinor:    cfg.Platform.MaxDepositMinor,
		MinWithdrawalMinor: cfg.Platform.MinWithdrawalMinor,
		MaxWithdrawalMinor: cfg.Platform.MaxWithdrawalMinor,
		MinStakeMinor:      cfg.Platform.MinStakeMinor,
		MaxStakeMinor:      cfg.Platform.MaxStakeMinor,
	})
	reports := reporting.NewService(store)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logger.Middleware(log))

	srv := httpapi.NewServer(engine, reports, db, rdb, log)
	srv.Register(router, tokens)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
	_ = logger.ShutdownFlush(shutdownCtx, time.Second)
	log.Info("api stopped")
}
