package handlers_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"pazarnet.com/app/internal/http/handlers"
	"pazarnet.com/app/internal/http/middleware"
	"pazarnet.com/app/internal/mailer"
	"pazarnet.com/app/internal/modules/ops"
	"pazarnet.com/app/internal/modules/payments"
	"pazarnet.com/app/internal/modules/settlement"
	"pazarnet.com/app/internal/testutil"
)

func newCronRouter(t *testing.T, secret string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	release := settlement.NewReleaseService(db, map[string]payments.Provider{}, ops.NewNotifier(&mailer.Mock{}, "alerts@pazarnet.com", nil))
	h := handlers.NewCronHandler(secret, settlement.NewReconciler(db, release))

	r := gin.New()
	r.Use(middleware.ErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.GET("/cron/payout-reconciliation", h.PayoutReconciliation)
	return r
}

func TestCronRequiresSecret(t *testing.T) {
	r := newCronRouter(t, "cron-secret")

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cron/payout-reconciliation", nil))
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cron/payout-reconciliation", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cron/payout-reconciliation", nil)
		req.Header.Set("Authorization", "Bearer cron-secret")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"scanned":0`)
	})
}

func TestCronRejectsWhenSecretUnset(t *testing.T) {
	// Secret yapılandırılmamışsa endpoint kapalıdır.
	r := newCronRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/cron/payout-reconciliation", nil)
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
