package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const SignatureHeader = "X-Webhook-Signature"

// MockProvider simulates a payment provider. It is used both as the local
// development provider and as the test double; real integrations (IYZICO,
// ODEL) implement the same interface.
type MockProvider struct {
	name          string
	secret        []byte
	escrowCapable bool
	checkoutBase  string

	mu          sync.Mutex
	failRelease bool
}

func NewMockProvider(name, secret string, escrowCapable bool) *MockProvider {
	return &MockProvider{
		name:          name,
		secret:        []byte(secret),
		escrowCapable: escrowCapable,
		checkoutBase:  "https://checkout.mock.pazarnet.com",
	}
}

func (p *MockProvider) Name() string         { return p.name }
func (p *MockProvider) SupportsEscrow() bool { return p.escrowCapable }

// SetFailRelease makes subsequent ReleaseFunds calls fail. Test hook.
func (p *MockProvider) SetFailRelease(fail bool) {
	p.mu.Lock()
	p.failRelease = fail
	p.mu.Unlock()
}

func (p *MockProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutResponse, error) {
	_ = ctx
	id := "pay_" + uuid.NewString()
	return CheckoutResponse{
		ProviderPaymentID: id,
		CheckoutURL:       fmt.Sprintf("%s/%s", p.checkoutBase, id),
	}, nil
}

func (p *MockProvider) ReleaseFunds(ctx context.Context, req ReleaseRequest) (ReleaseResponse, error) {
	_ = ctx
	p.mu.Lock()
	fail := p.failRelease
	p.mu.Unlock()
	if fail {
		return ReleaseResponse{}, errors.New("mock provider: release rejected")
	}

	evtID := "po_" + uuid.NewString()
	raw := fmt.Sprintf(`{"eventId":%q,"paymentId":%q,"amount":%d,"currency":%q}`,
		evtID, req.ProviderPaymentID, req.AmountCents, req.Currency)
	return ReleaseResponse{ProviderEventID: evtID, Raw: []byte(raw)}, nil
}

// VerifyAndParseWebhook validates the "t=<unix>,v1=<hex>" HMAC header and
// decodes the payload. Timestamp drift above 5 minutes is rejected.
func (p *MockProvider) VerifyAndParseWebhook(headers http.Header, body []byte) (WebhookPayload, error) {
	sig := headers.Get(SignatureHeader)
	if sig == "" {
		return WebhookPayload{}, errors.New("missing signature header")
	}

	t, v1, err := parseSigHeader(sig)
	if err != nil {
		return WebhookPayload{}, err
	}

	if d := time.Since(time.Unix(t, 0)); d > 5*time.Minute || d < -5*time.Minute {
		return WebhookPayload{}, errors.New("signature timestamp out of tolerance")
	}

	expected := ComputeSignature(p.secret, t, body)
	if !hmac.Equal([]byte(expected), []byte(v1)) {
		return WebhookPayload{}, errors.New("signature mismatch")
	}

	return ParseWebhookBody(p.name, body)
}

func parseSigHeader(sig string) (int64, string, error) {
	var tPart, vPart string
	for _, part := range strings.Split(sig, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			tPart = v
		case "v1":
			vPart = v
		}
	}
	if tPart == "" || vPart == "" {
		return 0, "", errors.New("malformed signature header")
	}
	t, err := strconv.ParseInt(tPart, 10, 64)
	if err != nil {
		return 0, "", errors.New("malformed signature timestamp")
	}
	return t, vPart, nil
}

// ComputeSignature, mockwebhook aracı ile paylaşılıyor.
func ComputeSignature(secret []byte, t int64, body []byte) string {
	m := hmac.New(sha256.New, secret)
	m.Write([]byte(strconv.FormatInt(t, 10)))
	m.Write([]byte("."))
	m.Write(body)
	return hex.EncodeToString(m.Sum(nil))
}
