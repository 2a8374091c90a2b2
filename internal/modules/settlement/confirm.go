package settlement

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pazarnet.com/app/internal/modules/ledger"
	"pazarnet.com/app/internal/modules/orders"
	"pazarnet.com/app/internal/modules/payments"
	"pazarnet.com/app/internal/modules/shipments"
)

// ConfirmService is the top-level entry point of the settlement pipeline:
// the buyer's delivery confirmation drives the order's terminal transition
// and, for escrow payments, the fund release.
type ConfirmService struct {
	db      *gorm.DB
	release *ReleaseService
	logger  *slog.Logger
}

func NewConfirmService(db *gorm.DB, release *ReleaseService) *ConfirmService {
	return &ConfirmService{db: db, release: release, logger: slog.Default()}
}

func (s *ConfirmService) SetLogger(logger *slog.Logger) { s.logger = logger }

type ConfirmResult struct {
	OrderID          string
	AlreadyConfirmed bool
	PayoutReleased   bool
	Message          string
}

func (s *ConfirmService) ConfirmDelivery(ctx context.Context, orderID, buyerCompanyID string) (ConfirmResult, error) {
	var ord orders.Order
	if err := s.db.WithContext(ctx).First(&ord, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ConfirmResult{}, orders.ErrNotFound
		}
		return ConfirmResult{}, err
	}

	if ord.BuyerCompanyID != buyerCompanyID {
		return ConfirmResult{}, orders.ErrForbidden
	}
	if ord.Status != orders.StatusDelivered && ord.Status != orders.StatusCompleted {
		return ConfirmResult{}, orders.ErrInvalidState
	}

	// İdempotent replay: zaten onaylanmışsa hata değil.
	if ord.ConfirmedAt != nil || ord.Status == orders.StatusCompleted {
		return ConfirmResult{OrderID: ord.ID, AlreadyConfirmed: true, Message: "already confirmed"}, nil
	}

	// Tüm parçalar teslim edilmeden onay yok; kısmi onay diye bir şey yok.
	undelivered, err := shipments.CountUndelivered(ctx, s.db, ord.ID)
	if err != nil {
		return ConfirmResult{}, err
	}
	if undelivered > 0 {
		return ConfirmResult{}, orders.ErrInvalidState
	}

	// Yazma anında kontrol edilen koşul: hala DELIVERED ve onaysız olan
	// satırı COMPLETED'a çek. Sıfır satır = yarışı başkası kazandı.
	now := time.Now()
	completionKey := CompletionKeyFor(ord.ID)
	res := s.db.WithContext(ctx).Model(&orders.Order{}).
		Where("id = ? AND status = ? AND confirmed_at IS NULL", ord.ID, orders.StatusDelivered).
		Updates(map[string]any{
			"status":         orders.StatusCompleted,
			"confirmed_at":   &now,
			"completed_at":   &now,
			"completion_key": completionKey,
			"updated_at":     now,
		})
	if res.Error != nil {
		return ConfirmResult{}, res.Error
	}
	if res.RowsAffected == 0 {
		return ConfirmResult{OrderID: ord.ID, AlreadyConfirmed: true, Message: "already confirmed"}, nil
	}

	ev := orders.OrderEvent{
		ID:             uuid.NewString(),
		OrderID:        ord.ID,
		ActorCompanyID: &buyerCompanyID,
		Action:         "confirm_delivery",
		FromStatus:     orders.StatusDelivered,
		ToStatus:       orders.StatusCompleted,
		CreatedAt:      now,
	}
	if err := s.db.WithContext(ctx).Create(&ev).Error; err != nil {
		s.logger.ErrorContext(ctx, "failed to record order event", "order_id", ord.ID, "err", err)
	}

	s.logger.InfoContext(ctx, "order completed", "order_id", ord.ID, "buyer_company_id", buyerCompanyID)

	var payment payments.Payment
	err = s.db.WithContext(ctx).
		Order("updated_at DESC").
		First(&payment, "order_id = ? AND status = ?", ord.ID, payments.StatusPaid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Takip edilen bir ödeme yok; para hareketi de yok.
			s.logger.WarnContext(ctx, "order confirmed but no PAID payment found", "order_id", ord.ID)
			return ConfirmResult{OrderID: ord.ID, Message: "no tracking payment found"}, nil
		}
		return ConfirmResult{}, err
	}

	switch payment.Mode {
	case payments.ModeEscrow:
		released, err := s.release.Release(ctx, ord, payment)
		if err != nil {
			return ConfirmResult{}, err
		}
		if !released {
			// Alıcının onayı payout hatası yüzünden geri alınmaz.
			return ConfirmResult{
				OrderID: ord.ID,
				Message: "delivery confirmed but escrow payout failed",
			}, nil
		}
		return ConfirmResult{
			OrderID:        ord.ID,
			PayoutReleased: true,
			Message:        "delivery confirmed, payout released",
		}, nil

	case payments.ModeDirect:
		// Para zaten satıcıda; defter kaydı eşitliği için aynı iki entry.
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := ledger.EnsureSellerCredit(ctx, tx, ord.SellerCompanyID, ord.ID, ord.TotalCents, ord.Currency); err != nil {
				return err
			}
			return ledger.EnsurePlatformCommission(ctx, tx, ord.ID, ord.CommissionCents, ord.Currency)
		})
		if err != nil {
			return ConfirmResult{}, err
		}
		return ConfirmResult{OrderID: ord.ID, Message: "delivery confirmed for direct payment"}, nil
	}

	return ConfirmResult{OrderID: ord.ID}, nil
}
