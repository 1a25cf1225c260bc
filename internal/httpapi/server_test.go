package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"wager-platform/internal/audit"
	"wager-platform/internal/auth"
	"wager-platform/internal/config"
	"wager-platform/internal/notify"
	"wager-platform/internal/rbac"
	"wager-platform/internal/reporting"
	"wager-platform/internal/settlement"
)

type apiRig struct {
	router *gin.Engine
	tokens *auth.Manager
}

func newAPIRig(t *testing.T) *apiRig {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewManager(config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	store := settlement.NewMemoryStore()
	engine := settlement.NewEngine(store, notify.NewMemoryEmitter(), audit.NewService(audit.NewMemoryRepo(), nil), nil, settlement.Config{
		MinDepositMinor:    100,
		MinWithdrawalMinor: 100,
		MinStakeMinor:      10,
	})
	srv := NewServer(engine, reporting.NewService(store), nil, nil, nil)

	router := gin.New()
	srv.Register(router, tokens)
	return &apiRig{router: router, tokens: tokens}
}

func (r *apiRig) token(t *testing.T, userID, role string, active bool) string {
	t.Helper()
	pair, err := r.tokens.IssuePair(time.Now(), userID, role, active)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}
	return pair.AccessToken
}

func (r *apiRig) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.router.ServeHTTP(rec, req)
	return rec
}

func TestAPI_RequiresToken(t *testing.T) {
	rig := newAPIRig(t)
	if rec := rig.do(t, http.MethodGet, "/v1/wallet", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAPI_InactiveAccountBlocked(t *testing.T) {
	rig := newAPIRig(t)
	tok := rig.token(t, "u-banned", rbac.RolePlayer, false)
	if rec := rig.do(t, http.MethodGet, "/v1/wallet", tok, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestAPI_PlayerCannotReachAdminRoutes(t *testing.T) {
	rig := newAPIRig(t)
	tok := rig.token(t, "u1", rbac.RolePlayer, true)
	if rec := rig.do(t, http.MethodGet, "/v1/admin/deposits", tok, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestAPI_DepositLifecycle(t *testing.T) {
	rig := newAPIRig(t)
	playerTok := rig.token(t, "u1", rbac.RolePlayer, true)
	adminTok := rig.token(t, "adm1", rbac.RoleAdmin, true)

	rec := rig.do(t, http.MethodPost, "/v1/deposits", playerTok,
		`{"amount_minor":500,"payment_method":"BKASH","provider_ref":"TX-100","sender_number":"017"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var submitted struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Duplicate provider reference is a conflict.
	rec = rig.do(t, http.MethodPost, "/v1/deposits", playerTok,
		`{"amount_minor":500,"payment_method":"BKASH","provider_ref":"TX-100","sender_number":"017"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", rec.Code)
	}

	rec = rig.do(t, http.MethodPost, fmt.Sprintf("/v1/admin/deposits/%s/review", submitted.ID), adminTok,
		`{"approve":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("review status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = rig.do(t, http.MethodGet, "/v1/wallet", playerTok, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("wallet status = %d", rec.Code)
	}
	var w struct {
		BalanceMinor int64 `json:"balance_minor"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &w); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w.BalanceMinor != 500 {
		t.Fatalf("balance = %d, want 500", w.BalanceMinor)
	}

	// Second review is a conflict, unknown request a 404.
	rec = rig.do(t, http.MethodPost, fmt.Sprintf("/v1/admin/deposits/%s/review", submitted.ID), adminTok, `{"approve":true}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("double review status = %d, want 409", rec.Code)
	}
	rec = rig.do(t, http.MethodPost, "/v1/admin/deposits/nope/review", adminTok, `{"approve":true}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing review status = %d, want 404", rec.Code)
	}
}

func TestAPI_WithdrawalInsufficientFunds(t *testing.T) {
	rig := newAPIRig(t)
	tok := rig.token(t, "u-poor", rbac.RolePlayer, true)

	rec := rig.do(t, http.MethodPost, "/v1/withdrawals", tok,
		`{"amount_minor":500,"payment_method":"BKASH","recipient_number":"018"}`)
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402; body = %s", rec.Code, rec.Body.String())
	}
}

func TestAPI_BetFlowAndTurnover(t *testing.T) {
	rig := newAPIRig(t)
	playerTok := rig.token(t, "u2", rbac.RolePlayer, true)
	adminTok := rig.token(t, "adm1", rbac.RoleAdmin, true)

	rec := rig.do(t, http.MethodPost, "/v1/deposits", playerTok,
		`{"amount_minor":1000,"payment_method":"NAGAD","provider_ref":"TX-BET","sender_number":"017"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d", rec.Code)
	}
	var dep struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &dep)
	if rec = rig.do(t, http.MethodPost, "/v1/admin/deposits/"+dep.ID+"/review", adminTok, `{"approve":true}`); rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d", rec.Code)
	}

	rec = rig.do(t, http.MethodPost, "/v1/bets", playerTok, `{"stake_minor":200,"game":"crash"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("place status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = rig.do(t, http.MethodPost, "/v1/bets/cashout", playerTok,
		`{"stake_minor":200,"value_minor":500,"multiplier":2.5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("cashout status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Cashing out again finds no pending bet.
	rec = rig.do(t, http.MethodPost, "/v1/bets/cashout", playerTok,
		`{"stake_minor":200,"value_minor":500,"multiplier":2.5}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second cashout status = %d, want 404", rec.Code)
	}

	rec = rig.do(t, http.MethodGet, "/v1/turnover", playerTok, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("turnover status = %d", rec.Code)
	}
	var sum struct {
		WageredMinor int64 `json:"wagered_minor"`
		WonMinor     int64 `json:"won_minor"`
		NetMinor     int64 `json:"net_minor"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.WageredMinor != 200 || sum.WonMinor != 500 || sum.NetMinor != 300 {
		t.Fatalf("unexpected turnover: %+v", sum)
	}
}
