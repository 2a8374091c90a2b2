package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pazarnet.com/app/internal/modules/ledger"
	"pazarnet.com/app/internal/modules/ops"
	"pazarnet.com/app/internal/modules/orders"
	"pazarnet.com/app/internal/modules/payments"
	"pazarnet.com/app/internal/shared/dbx"
)

var (
	ErrNoReleasablePayout = errors.New("no releasable payout for order")
)

// ReleaseService drives escrow fund release and the ledger postings that
// follow. The provider call happens outside the transaction; the local
// writes are idempotent, so a crash between the two is recoverable by
// re-running the release.
type ReleaseService struct {
	db        *gorm.DB
	providers map[string]payments.Provider
	notifier  *ops.Notifier
	logger    *slog.Logger
}

func NewReleaseService(db *gorm.DB, providers map[string]payments.Provider, notifier *ops.Notifier) *ReleaseService {
	return &ReleaseService{db: db, providers: providers, notifier: notifier, logger: slog.Default()}
}

func (s *ReleaseService) SetLogger(logger *slog.Logger) { s.logger = logger }

// Release attempts the escrow payout for a PAID escrow payment. It reports
// released=false on provider failure without returning an error: the failure
// is recorded durably (payout FAILED + inbox row) and is retryable on its
// own, independent of whatever user action triggered the release.
func (s *ReleaseService) Release(ctx context.Context, ord orders.Order, p payments.Payment) (bool, error) {
	if p.PayoutStatus == payments.PayoutReleased {
		// Replay sonrası yarım kalmış ledger yazımını tamamla.
		return true, s.postLedger(ctx, ord, p, nil)
	}

	provider, ok := s.providers[p.Provider]
	if !ok {
		s.recordFailure(ctx, ord, p, fmt.Sprintf("no provider registered for %s", p.Provider))
		return false, nil
	}

	providerPaymentID := ""
	if p.ProviderPaymentKey != nil {
		// "{provider}:{providerPaymentId}"
		if prefix := p.Provider + ":"; len(*p.ProviderPaymentKey) > len(prefix) {
			providerPaymentID = (*p.ProviderPaymentKey)[len(prefix):]
		}
	}

	resp, err := provider.ReleaseFunds(ctx, payments.ReleaseRequest{
		OrderID:           ord.ID,
		PaymentID:         p.ID,
		ProviderPaymentID: providerPaymentID,
		AmountCents:       p.AmountCents,
		Currency:          p.Currency,
	})
	if err != nil {
		s.recordFailure(ctx, ord, p, err.Error())
		return false, nil
	}

	if err := s.postLedger(ctx, ord, p, &resp); err != nil {
		return false, err
	}

	s.logger.InfoContext(ctx, "payout released",
		"order_id", ord.ID, "payment_id", p.ID,
		"provider", p.Provider, "amount_cents", p.AmountCents)
	return true, nil
}

// postLedger runs the release finalization transaction: payout sub-state to
// RELEASED, seller credit and platform commission upserts, payout inbox row.
// Every write in here is conditional or keyed; replays change nothing.
func (s *ReleaseService) postLedger(ctx context.Context, ord orders.Order, p payments.Payment, resp *payments.ReleaseResponse) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		attemptKey := ReleaseAttemptKeyFor(ord.ID)

		if err := tx.Model(&payments.Payment{}).
			Where("id = ? AND payout_status <> ?", p.ID, payments.PayoutReleased).
			Updates(map[string]any{
				"payout_status":       payments.PayoutReleased,
				"released_at":         &now,
				"release_attempt_key": attemptKey,
				"updated_at":          now,
			}).Error; err != nil {
			return err
		}

		creditCents := ord.SubtotalCents - ord.CommissionCents
		if err := ledger.EnsureSellerCredit(ctx, tx, ord.SellerCompanyID, ord.ID, creditCents, ord.Currency); err != nil {
			return err
		}
		if err := ledger.EnsurePlatformCommission(ctx, tx, ord.ID, ord.CommissionCents, ord.Currency); err != nil {
			return err
		}

		if resp != nil && resp.ProviderEventID != "" {
			inbox := PayoutEventInbox{
				ID:              uuid.NewString(),
				Provider:        p.Provider,
				ProviderEventID: resp.ProviderEventID,
				Status:          payments.InboxProcessed,
				RawJSON:         resp.Raw,
				ReceivedAt:      now,
				ProcessedAt:     &now,
			}
			if err := tx.Create(&inbox).Error; err != nil && !dbx.IsDup(err) {
				return err
			}
		}
		return nil
	})
}

func (s *ReleaseService) recordFailure(ctx context.Context, ord orders.Order, p payments.Payment, reason string) {
	now := time.Now()

	if err := s.db.WithContext(ctx).Model(&payments.Payment{}).
		Where("id = ? AND payout_status <> ?", p.ID, payments.PayoutReleased).
		Updates(map[string]any{"payout_status": payments.PayoutFailed, "updated_at": now}).Error; err != nil {
		s.logger.ErrorContext(ctx, "failed to mark payout FAILED", "payment_id", p.ID, "err", err)
	}

	inbox := PayoutEventInbox{
		ID:              uuid.NewString(),
		Provider:        p.Provider,
		ProviderEventID: fmt.Sprintf("failed_%d_%s", now.UnixMilli(), p.ID),
		Status:          payments.InboxFailed,
		RawJSON:         []byte(fmt.Sprintf(`{"reason":"payout release failed","trace":%q}`, reason)),
		ReceivedAt:      now,
	}
	if err := s.db.WithContext(ctx).Create(&inbox).Error; err != nil && !dbx.IsDup(err) {
		s.logger.ErrorContext(ctx, "failed to record payout failure", "payment_id", p.ID, "err", err)
	}

	s.logger.ErrorContext(ctx, "payout release failed",
		"order_id", ord.ID, "payment_id", p.ID, "provider", p.Provider, "reason", reason)

	if s.notifier != nil {
		s.notifier.PayoutFailed(ctx, ord.ID, p.ID, p.Provider, reason)
	}
}

// RetryRelease re-drives the payout of a COMPLETED escrow order whose release
// previously failed (or never ran). Operator entry point: it retries only the
// fund movement, never the delivery confirmation.
func (s *ReleaseService) RetryRelease(ctx context.Context, orderID string) (bool, error) {
	var ord orders.Order
	if err := s.db.WithContext(ctx).First(&ord, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, orders.ErrNotFound
		}
		return false, err
	}
	if ord.Status != orders.StatusCompleted {
		return false, orders.ErrInvalidState
	}

	var p payments.Payment
	err := s.db.WithContext(ctx).
		Order("updated_at DESC").
		First(&p, "order_id = ? AND status = ? AND mode = ?",
			ord.ID, payments.StatusPaid, payments.ModeEscrow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNoReleasablePayout
		}
		return false, err
	}

	return s.Release(ctx, ord, p)
}
