package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pazarnet.com/app/internal/shared/dbx"
)

type MovementLine struct {
	ProductID string
	Qty       int
}

// EnsureOutMovements posts one OUT movement per shipped line inside the
// caller's transaction. Key "{referenceID}:{productID}"; duplicates no-op.
func EnsureOutMovements(ctx context.Context, tx *gorm.DB, companyID, referenceID, description string, lines []MovementLine) error {
	now := time.Now()
	for _, ln := range lines {
		if ln.ProductID == "" {
			continue
		}
		qty := ln.Qty
		if qty < 1 {
			qty = 1
		}

		m := StockMovement{
			ID:             uuid.NewString(),
			ProductID:      ln.ProductID,
			CompanyID:      companyID,
			Type:           MovementOut,
			Quantity:       qty,
			ReferenceID:    referenceID,
			IdempotencyKey: fmt.Sprintf("%s:%s", referenceID, ln.ProductID),
			Description:    description,
			MovedAt:        now,
			CreatedAt:      now,
		}
		if err := tx.WithContext(ctx).Create(&m).Error; err != nil {
			if dbx.IsDup(err) {
				continue // tekrar deneme; düşüm zaten yazılmış
			}
			return err
		}
	}
	return nil
}
