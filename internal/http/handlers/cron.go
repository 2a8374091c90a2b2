package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pazarnet.com/app/internal/http/middleware"
	"pazarnet.com/app/internal/modules/settlement"
	"pazarnet.com/app/internal/shared/apperr"
)

// CronHandler serves scheduler-triggered endpoints. Auth is a shared secret
// in the Authorization header; the scheduler is the only caller.
type CronHandler struct {
	Secret     string
	Reconciler *settlement.Reconciler
}

func NewCronHandler(secret string, rec *settlement.Reconciler) *CronHandler {
	return &CronHandler{Secret: secret, Reconciler: rec}
}

func (h *CronHandler) authorized(c *gin.Context) bool {
	if h.Secret == "" {
		return false
	}
	got := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.Secret)) == 1
}

// GET /cron/payout-reconciliation
func (h *CronHandler) PayoutReconciliation(c *gin.Context) {
	if !h.authorized(c) {
		middleware.Fail(c, apperr.UnauthorizedErr("Yetkisiz."))
		return
	}

	report, err := h.Reconciler.Run(c.Request.Context())
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scanned":  report.Scanned,
		"released": report.Released,
		"failed":   report.Failed,
	})
}
