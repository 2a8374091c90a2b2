package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pazarnet.com/app/internal/modules/payments"
)

type WebhookHandler struct {
	Logger    *slog.Logger
	Providers map[string]payments.Provider // path param → provider
	Svc       *payments.WebhookService
}

func NewWebhookHandler(logger *slog.Logger, providers map[string]payments.Provider, svc *payments.WebhookService) *WebhookHandler {
	return &WebhookHandler{Logger: logger, Providers: providers, Svc: svc}
}

// POST /webhooks/:provider
// Body is raw JSON; signature header validated by the provider adapter.
// 200 hem başarıda hem kalıcı hatada döner; 500 sadece inbox yazılamadıysa
// (provider retry etsin diye).
func (h *WebhookHandler) Handle(c *gin.Context) {
	provider, ok := h.Providers[c.Param("provider")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "unknown provider"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	payload, err := provider.VerifyAndParseWebhook(c.Request.Header, body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid signature or payload"})
		return
	}

	handled, err := h.Svc.ProcessEvent(c.Request.Context(), payload)
	if err != nil {
		h.Logger.Error("webhook inbox write failed", "event_id", payload.ProviderEventID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "handled": handled})
}
