package payments

import (
	"context"
	"encoding/json"
	"net/http"
)

type CheckoutRequest struct {
	OrderID     string
	AmountCents int64
	Currency    string
	Mode        string
}

type CheckoutResponse struct {
	ProviderPaymentID string
	CheckoutURL       string
}

type ReleaseRequest struct {
	OrderID           string
	PaymentID         string
	ProviderPaymentID string
	AmountCents       int64
	Currency          string
}

type ReleaseResponse struct {
	ProviderEventID string
	Raw             json.RawMessage
}

// WebhookPayload is the parsed shape of one inbound payment event.
type WebhookPayload struct {
	Provider          string  `json:"provider"`
	ProviderEventID   string  `json:"providerEventId"`
	ProviderPaymentID string  `json:"providerPaymentId"`
	PaidStatus        string  `json:"paidStatus"` // "success" | diğerleri
	PaidAmount        float64 `json:"paidAmount"`
	Currency          string  `json:"currency"`

	Raw json.RawMessage `json:"-"` // audit için ham gövde
}

// ParseWebhookBody decodes a raw webhook body, stamping the provider name and
// retaining the verbatim payload for audit.
func ParseWebhookBody(provider string, body []byte) (WebhookPayload, error) {
	var p WebhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return WebhookPayload{}, err
	}
	p.Provider = provider
	p.Raw = json.RawMessage(body)
	if p.ProviderEventID == "" {
		return WebhookPayload{}, errMissingEventID
	}
	return p, nil
}

type Provider interface {
	Name() string
	SupportsEscrow() bool

	CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutResponse, error)
	ReleaseFunds(ctx context.Context, req ReleaseRequest) (ReleaseResponse, error)

	// Webhook: verify signature + parse event
	VerifyAndParseWebhook(headers http.Header, body []byte) (WebhookPayload, error)
}
