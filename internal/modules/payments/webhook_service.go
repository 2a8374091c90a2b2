package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pazarnet.com/app/internal/modules/orders"
	"pazarnet.com/app/internal/shared/dbx"
)

// WebhookService consumes payment provider events through a durable inbox.
// A given provider event id is processed at most once; the inbox row is the
// dedupe gate and ends in exactly one terminal status.
type WebhookService struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewWebhookService(db *gorm.DB) *WebhookService {
	return &WebhookService{db: db, logger: slog.Default()}
}

func (s *WebhookService) SetLogger(logger *slog.Logger) { s.logger = logger }

// ProcessEvent returns handled=true when the event is safe to ack to the
// provider — including duplicates, ignorable failures and already-settled
// replays. handled=false means the inbox row was marked FAILED for operator
// triage; the caller still acks so the provider does not retry forever.
// A non-nil error means the inbox row itself could not be written; only then
// should the caller return a retryable status.
func (s *WebhookService) ProcessEvent(ctx context.Context, p WebhookPayload) (bool, error) {
	if p.ProviderEventID == "" {
		return false, errMissingEventID
	}

	inbox := PaymentEventInbox{
		ID:              uuid.NewString(),
		Provider:        p.Provider,
		ProviderEventID: p.ProviderEventID,
		Status:          InboxReceived,
		RawJSON:         p.Raw,
		ReceivedAt:      time.Now(),
	}
	if p.ProviderPaymentID != "" {
		v := p.ProviderPaymentID
		inbox.ProviderPaymentID = &v
	}

	// Idempotency gate: unique(provider, provider_event_id). İş mantığı
	// ancak ilk insert başarılıysa çalışır.
	if err := s.db.WithContext(ctx).Create(&inbox).Error; err != nil {
		if dbx.IsDup(err) {
			s.logger.InfoContext(ctx, "payment event deduplicated",
				"provider", p.Provider, "event_id", p.ProviderEventID)
			return true, nil
		}
		return false, err
	}

	handled, ferr := s.apply(ctx, inbox.ID, p)
	if ferr != nil {
		s.markInbox(ctx, inbox.ID, InboxFailed, ferr.Error(), nil)
		s.logger.ErrorContext(ctx, "payment event failed",
			"provider", p.Provider, "event_id", p.ProviderEventID, "err", ferr)
		return false, nil
	}
	return handled, nil
}

// apply runs the business logic for a freshly inserted inbox row. A returned
// error flips the row to FAILED; otherwise apply has already written the
// terminal status.
func (s *WebhookService) apply(ctx context.Context, inboxID string, p WebhookPayload) (bool, error) {
	if p.PaidStatus != "success" {
		// Başarısız ödeme denemesi beklenen bir durum, hata değil.
		s.markInbox(ctx, inboxID, InboxIgnored, "event status not success", nil)
		return true, nil
	}

	if p.ProviderPaymentID == "" {
		return false, errors.New("missing providerPaymentId in success event")
	}

	providerKey := p.Provider + ":" + p.ProviderPaymentID

	var payment Payment
	if err := s.db.WithContext(ctx).First(&payment, "provider_payment_key = ?", providerKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Veri bütünlüğü sorunu: operator takibi için FAILED.
			return false, fmt.Errorf("payment not found for provider key %s", providerKey)
		}
		return false, err
	}

	if payment.Status == StatusPaid {
		s.markInbox(ctx, inboxID, InboxProcessed, "payment already processed previously", &payment.ID)
		return true, nil
	}

	incomingCents := int64(math.Round(p.PaidAmount * 100))
	if diff := payment.AmountCents - incomingCents; diff > 1 || diff < -1 {
		return false, fmt.Errorf("amount mismatch: expected %d, got %d", payment.AmountCents, incomingCents)
	}
	if p.Currency != "" && p.Currency != payment.Currency {
		return false, fmt.Errorf("currency mismatch: expected %s, got %s", payment.Currency, p.Currency)
	}

	// Payment PAID + koşullu order geçişi tek transaction'da. Order güncellemesi
	// yazma anında "hala PENDING_PAYMENT" şartını kontrol eder; sıra dışı veya
	// tekrar gelen bir event ilerlemiş bir order'ı geri süremez.
	var orderAlreadyAdvanced bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		if err := tx.Model(&Payment{}).
			Where("id = ?", payment.ID).
			Updates(map[string]any{"status": StatusPaid, "updated_at": now}).Error; err != nil {
			return err
		}

		paidAt := now
		res := tx.Model(&orders.Order{}).
			Where("id = ? AND status = ?", payment.OrderID, orders.StatusPendingPayment).
			Updates(map[string]any{
				"status":     orders.StatusPaid,
				"paid_at":    &paidAt,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			orderAlreadyAdvanced = true
			return nil
		}

		ev := orders.OrderEvent{
			ID:         uuid.NewString(),
			OrderID:    payment.OrderID,
			Action:     "payment_webhook",
			FromStatus: orders.StatusPendingPayment,
			ToStatus:   orders.StatusPaid,
			CreatedAt:  now,
		}
		return tx.Create(&ev).Error
	})
	if err != nil {
		return false, err
	}

	if orderAlreadyAdvanced {
		// Yarışı başka bir aktör kazandı; event kayıp değil, gereksiz.
		s.markInbox(ctx, inboxID, InboxIgnored, "order already paid or not pending", &payment.ID)
		return true, nil
	}

	s.markInbox(ctx, inboxID, InboxProcessed, "", &payment.ID)
	s.logger.InfoContext(ctx, "payment event processed",
		"provider", p.Provider, "event_id", p.ProviderEventID,
		"payment_id", payment.ID, "order_id", payment.OrderID)
	return true, nil
}

func (s *WebhookService) markInbox(ctx context.Context, id, status, errMsg string, paymentID *string) {
	now := time.Now()
	updates := map[string]any{
		"status":       status,
		"processed_at": &now,
	}
	if errMsg != "" {
		updates["error_message"] = truncate(errMsg, 250)
	}
	if paymentID != nil {
		updates["payment_id"] = *paymentID
	}

	if err := s.db.WithContext(ctx).Model(&PaymentEventInbox{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		s.logger.ErrorContext(ctx, "failed to update payment event inbox", "inbox_id", id, "err", err)
	}
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
