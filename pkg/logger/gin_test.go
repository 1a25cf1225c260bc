package logger

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMiddleware_PropagatesRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	base := slog.New(slog.NewJSONHandler(io.Discard, nil))
	r := gin.New()
	r.Use(Middleware(base))

	var fromGin, fromCtx *slog.Logger
	r.GET("/ping", func(c *gin.Context) {
		fromGin = FromGin(c)
		fromCtx = From(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Header().Get(headerRequestID) == "" {
		t.Fatalf("expected %s response header", headerRequestID)
	}
	if fromGin == nil || fromGin == slog.Default() {
		t.Fatalf("handler saw the default logger, not the request-scoped one")
	}
	if fromCtx != fromGin {
		t.Fatalf("request context carries a different logger than the gin context")
	}
}

func TestMiddleware_KeepsCallerRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Middleware(slog.New(slog.NewJSONHandler(io.Discard, nil))))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerRequestID, "rid-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(headerRequestID); got != "rid-123" {
		t.Fatalf("request id = %q, want rid-123", got)
	}
}
