package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pazarnet.com/app/internal/http/middleware"
	"pazarnet.com/app/internal/modules/ledger"
	"pazarnet.com/app/internal/modules/settlement"
	"pazarnet.com/app/internal/shared/apperr"
	"gorm.io/gorm"
)

type SettlementHandler struct {
	Confirm *settlement.ConfirmService
	Release *settlement.ReleaseService
	DB      *gorm.DB
}

func NewSettlementHandler(confirm *settlement.ConfirmService, release *settlement.ReleaseService, db *gorm.DB) *SettlementHandler {
	return &SettlementHandler{Confirm: confirm, Release: release, DB: db}
}

// POST /api/orders/:id/confirm-delivery
func (h *SettlementHandler) ConfirmDelivery(c *gin.Context) {
	res, err := h.Confirm.ConfirmDelivery(c.Request.Context(), c.Param("id"), middleware.GetCompanyID(c))
	if err != nil {
		middleware.Fail(c, toAppErr(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orderId":          res.OrderID,
		"alreadyConfirmed": res.AlreadyConfirmed,
		"payoutReleased":   res.PayoutReleased,
		"message":          res.Message,
	})
}

// POST /api/admin/payouts/:orderId/retry
// Operator entry point: retries only the fund release, never the delivery
// confirmation.
func (h *SettlementHandler) RetryPayout(c *gin.Context) {
	released, err := h.Release.RetryRelease(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		middleware.Fail(c, toAppErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": released})
}

// GET /api/network/earnings
func (h *SettlementHandler) Earnings(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)

	balance, err := ledger.SellerBalance(c.Request.Context(), h.DB, companyID)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := ledger.ListSellerEntries(c.Request.Context(), h.DB, companyID, limit)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"orderId":     e.OrderID,
			"amountCents": e.AmountCents,
			"currency":    e.Currency,
			"type":        e.Type,
			"createdAt":   e.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"balanceCents": balance,
		"entries":      out,
	})
}
