package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pazarnet.com/app/internal/shared/dbx"
)

// EnsureSellerCredit posts the seller credit for an order if not already
// posted. Insert-or-no-op on the idempotency key; runs in the caller's tx.
func EnsureSellerCredit(ctx context.Context, tx *gorm.DB, sellerCompanyID, orderID string, amountCents int64, currency string) error {
	e := SellerBalanceLedger{
		ID:              uuid.NewString(),
		SellerCompanyID: sellerCompanyID,
		OrderID:         orderID,
		AmountCents:     amountCents,
		Currency:        currency,
		Type:            TypeCredit,
		IdempotencyKey:  CreditKeyFor(orderID),
		CreatedAt:       time.Now(),
	}
	if err := tx.WithContext(ctx).Create(&e).Error; err != nil {
		if dbx.IsDup(err) {
			return nil
		}
		return err
	}
	return nil
}

// EnsurePlatformCommission posts the platform commission for an order if not
// already posted.
func EnsurePlatformCommission(ctx context.Context, tx *gorm.DB, orderID string, amountCents int64, currency string) error {
	e := PlatformCommissionLedger{
		ID:             uuid.NewString(),
		OrderID:        orderID,
		AmountCents:    amountCents,
		Currency:       currency,
		IdempotencyKey: CommissionKeyFor(orderID),
		CreatedAt:      time.Now(),
	}
	if err := tx.WithContext(ctx).Create(&e).Error; err != nil {
		if dbx.IsDup(err) {
			return nil
		}
		return err
	}
	return nil
}

// SellerBalance sums a seller's ledger (credits positive, debits negative).
func SellerBalance(ctx context.Context, db *gorm.DB, sellerCompanyID string) (int64, error) {
	var credit, debit int64

	if err := db.WithContext(ctx).Model(&SellerBalanceLedger{}).
		Where("seller_company_id = ? AND type = ?", sellerCompanyID, TypeCredit).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&credit).Error; err != nil {
		return 0, err
	}
	if err := db.WithContext(ctx).Model(&SellerBalanceLedger{}).
		Where("seller_company_id = ? AND type = ?", sellerCompanyID, TypeDebit).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&debit).Error; err != nil {
		return 0, err
	}
	return credit - debit, nil
}

// ListSellerEntries returns a seller's ledger rows, newest first.
func ListSellerEntries(ctx context.Context, db *gorm.DB, sellerCompanyID string, limit int) ([]SellerBalanceLedger, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	var entries []SellerBalanceLedger
	err := db.WithContext(ctx).
		Where("seller_company_id = ?", sellerCompanyID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
