package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"pazarnet.com/app/internal/http/handlers"
	"pazarnet.com/app/internal/modules/orders"
	"pazarnet.com/app/internal/modules/payments"
	"pazarnet.com/app/internal/testutil"
)

func newWebhookRouter(t *testing.T, db *gorm.DB, provider payments.Provider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := handlers.NewWebhookHandler(
		slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil)),
		map[string]payments.Provider{provider.Name(): provider},
		payments.NewWebhookService(db),
	)

	r := gin.New()
	r.POST("/webhooks/:provider", h.Handle)
	return r
}

func seedPayable(t *testing.T, db *gorm.DB) (orders.Order, payments.Payment) {
	t.Helper()
	now := time.Now()
	ord := orders.Order{
		ID:              uuid.NewString(),
		BuyerCompanyID:  uuid.NewString(),
		SellerCompanyID: uuid.NewString(),
		SubtotalCents:   4500,
		ShippingCents:   500,
		CommissionCents: 45,
		TotalCents:      5000,
		Currency:        "TRY",
		Status:          orders.StatusPendingPayment,
		ItemsJSON:       datatypes.JSON(`[]`),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, db.Create(&ord).Error)

	providerKey := "ODEL:pay_test123"
	p := payments.Payment{
		ID:                 uuid.NewString(),
		OrderID:            ord.ID,
		Provider:           "ODEL",
		Mode:               payments.ModeDirect,
		Status:             payments.StatusInitiated,
		AmountCents:        ord.TotalCents,
		Currency:           ord.Currency,
		InitKey:            payments.InitKeyFor(ord.ID),
		ProviderPaymentKey: &providerKey,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, db.Create(&p).Error)
	return ord, p
}

func signedRequest(t *testing.T, secret string, body []byte) *http.Request {
	t.Helper()
	ts := time.Now().Unix()
	sig := fmt.Sprintf("t=%d,v1=%s", ts, payments.ComputeSignature([]byte(secret), ts, body))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/ODEL", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(payments.SignatureHeader, sig)
	return req
}

func TestWebhookEndToEnd(t *testing.T) {
	db := testutil.NewDB(t)
	provider := payments.NewMockProvider("ODEL", "topsecret", false)
	r := newWebhookRouter(t, db, provider)
	ord, _ := seedPayable(t, db)

	body, err := json.Marshal(map[string]any{
		"providerEventId":   "evt_http_1",
		"providerPaymentId": "pay_test123",
		"paidStatus":        "success",
		"paidAmount":        50.00,
		"currency":          "TRY",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest(t, "topsecret", body))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK      bool `json:"ok"`
		Handled bool `json:"handled"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	require.True(t, resp.Handled)

	var gotOrder orders.Order
	require.NoError(t, db.First(&gotOrder, "id = ?", ord.ID).Error)
	require.Equal(t, orders.StatusPaid, gotOrder.Status)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	db := testutil.NewDB(t)
	provider := payments.NewMockProvider("ODEL", "topsecret", false)
	r := newWebhookRouter(t, db, provider)
	seedPayable(t, db)

	body := []byte(`{"providerEventId":"evt_forged","paidStatus":"success"}`)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest(t, "wrong-secret", body))
	require.Equal(t, http.StatusBadRequest, w.Code)

	// İmza doğrulanamayan event inbox'a bile girmez.
	var count int64
	require.NoError(t, db.Model(&payments.PaymentEventInbox{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestWebhookUnknownProvider(t *testing.T) {
	db := testutil.NewDB(t)
	provider := payments.NewMockProvider("ODEL", "topsecret", false)
	r := newWebhookRouter(t, db, provider)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/NOPE", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookDuplicateDelivery(t *testing.T) {
	db := testutil.NewDB(t)
	provider := payments.NewMockProvider("ODEL", "topsecret", false)
	r := newWebhookRouter(t, db, provider)
	seedPayable(t, db)

	body, err := json.Marshal(map[string]any{
		"providerEventId":   "evt_http_dup",
		"providerPaymentId": "pay_test123",
		"paidStatus":        "success",
		"paidAmount":        50.00,
		"currency":          "TRY",
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, signedRequest(t, "topsecret", body))
		require.Equal(t, http.StatusOK, w.Code)
	}

	var count int64
	require.NoError(t, db.Model(&payments.PaymentEventInbox{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
