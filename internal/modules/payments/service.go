package payments

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pazarnet.com/app/internal/modules/orders"
	"pazarnet.com/app/internal/shared/dbx"
)

// Service creates payment attempts. At most one payment row can exist per
// order; concurrent duplicate requests resolve to the row that won the insert.
type Service struct {
	db     *gorm.DB
	direct Provider
	escrow Provider // nil ise escrow istekleri direct'e düşer
	logger *slog.Logger
}

func NewService(db *gorm.DB, direct, escrow Provider) *Service {
	return &Service{db: db, direct: direct, escrow: escrow, logger: slog.Default()}
}

func (s *Service) SetLogger(logger *slog.Logger) { s.logger = logger }

type InitiatePaymentInput struct {
	OrderID        string
	BuyerCompanyID string
	Mode           string // DIRECT | ESCROW
}

type InitiatePaymentResult struct {
	PaymentID   string
	CheckoutURL string
	Mode        string
	Provider    string
	Idempotent  bool
}

func (s *Service) InitiatePayment(ctx context.Context, in InitiatePaymentInput) (InitiatePaymentResult, error) {
	if in.OrderID == "" {
		return InitiatePaymentResult{}, ErrOrderNotPayable
	}

	initKey := InitKeyFor(in.OrderID)

	// Idempotent replay: çift tıklama / client retry buradan döner.
	var existing Payment
	err := s.db.WithContext(ctx).First(&existing, "init_key = ?", initKey).Error
	if err == nil {
		return resultFrom(existing, true), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return InitiatePaymentResult{}, err
	}

	ord, err := s.loadPayableOrder(ctx, in)
	if err != nil {
		return InitiatePaymentResult{}, err
	}

	provider, mode := s.selectProvider(in.Mode)

	// Provider çağrısı tx dışında. Yazma yarışı kaybedilirse checkout
	// referansı çöpe gider; zararsız.
	checkout, err := provider.CreateCheckout(ctx, CheckoutRequest{
		OrderID:     ord.ID,
		AmountCents: ord.TotalCents,
		Currency:    ord.Currency,
		Mode:        mode,
	})
	if err != nil {
		return InitiatePaymentResult{}, err
	}

	now := time.Now()
	providerKey := provider.Name() + ":" + checkout.ProviderPaymentID
	checkoutURL := checkout.CheckoutURL

	payoutStatus := ""
	if mode == ModeEscrow {
		payoutStatus = PayoutInitiated
	}

	p := Payment{
		ID:                 uuid.NewString(),
		OrderID:            ord.ID,
		Provider:           provider.Name(),
		Mode:               mode,
		Status:             StatusInitiated,
		PayoutStatus:       payoutStatus,
		AmountCents:        ord.TotalCents,
		Currency:           ord.Currency,
		InitKey:            initKey,
		ProviderPaymentKey: &providerKey,
		CheckoutURL:        &checkoutURL,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		if dbx.IsDup(err) {
			// Eşzamanlı istek kazandı; kazananı okuyup onu döndür.
			var winner Payment
			if rerr := s.db.WithContext(ctx).First(&winner, "init_key = ?", initKey).Error; rerr != nil {
				return InitiatePaymentResult{}, rerr
			}
			s.logger.InfoContext(ctx, "payment init race resolved by re-read",
				"order_id", ord.ID, "payment_id", winner.ID)
			return resultFrom(winner, true), nil
		}
		return InitiatePaymentResult{}, err
	}

	s.logger.InfoContext(ctx, "payment initiated",
		"order_id", ord.ID, "payment_id", p.ID, "provider", p.Provider, "mode", p.Mode)

	return resultFrom(p, false), nil
}

func (s *Service) loadPayableOrder(ctx context.Context, in InitiatePaymentInput) (orders.Order, error) {
	var ord orders.Order
	if err := s.db.WithContext(ctx).First(&ord, "id = ?", in.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return orders.Order{}, orders.ErrNotFound
		}
		return orders.Order{}, err
	}

	if in.BuyerCompanyID != "" && ord.BuyerCompanyID != in.BuyerCompanyID {
		return orders.Order{}, ErrForbidden
	}
	if ord.Status != orders.StatusPendingPayment {
		return orders.Order{}, ErrOrderNotPayable
	}
	return ord, nil
}

func (s *Service) selectProvider(requestedMode string) (Provider, string) {
	if requestedMode == ModeEscrow && s.escrow != nil && s.escrow.SupportsEscrow() {
		return s.escrow, ModeEscrow
	}
	return s.direct, ModeDirect
}

func resultFrom(p Payment, idempotent bool) InitiatePaymentResult {
	url := ""
	if p.CheckoutURL != nil {
		url = *p.CheckoutURL
	}
	return InitiatePaymentResult{
		PaymentID:   p.ID,
		CheckoutURL: url,
		Mode:        p.Mode,
		Provider:    p.Provider,
		Idempotent:  idempotent,
	}
}
