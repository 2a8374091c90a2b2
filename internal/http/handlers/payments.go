package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pazarnet.com/app/internal/http/middleware"
	"pazarnet.com/app/internal/http/validation"
	"pazarnet.com/app/internal/modules/payments"
	"pazarnet.com/app/internal/shared/apperr"
)

type PaymentHandler struct {
	Svc *payments.Service
}

func NewPaymentHandler(svc *payments.Service) *PaymentHandler {
	return &PaymentHandler{Svc: svc}
}

type initiatePaymentRequest struct {
	Mode string `json:"mode" binding:"omitempty,oneof=DIRECT ESCROW"`
}

// POST /api/orders/:id/pay
func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req initiatePaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.Fail(c, apperr.InvalidErr("Geçersiz istek.", validation.FromBindError(err, &req)))
			return
		}
	}
	if req.Mode == "" {
		req.Mode = payments.ModeDirect
	}

	res, err := h.Svc.InitiatePayment(c.Request.Context(), payments.InitiatePaymentInput{
		OrderID:        c.Param("id"),
		BuyerCompanyID: middleware.GetCompanyID(c),
		Mode:           req.Mode,
	})
	if err != nil {
		middleware.Fail(c, toAppErr(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"paymentId":   res.PaymentID,
		"checkoutUrl": res.CheckoutURL,
		"mode":        res.Mode,
		"provider":    res.Provider,
		"idempotent":  res.Idempotent,
	})
}
