package shipments

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) ListByOrder(ctx context.Context, orderID string) ([]Shipment, error) {
	// Normalize UUID to lowercase
	orderID = strings.ToLower(strings.TrimSpace(orderID))

	var shipments []Shipment
	err := r.db.WithContext(ctx).
		Order("sequence ASC").
		Find(&shipments, "order_id = ?", orderID).Error
	return shipments, err
}

// CountUndelivered returns how many of the order's shipments have not yet
// reached DELIVERED.
func CountUndelivered(ctx context.Context, db *gorm.DB, orderID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&Shipment{}).
		Where("order_id = ? AND status <> ?", orderID, StatusDelivered).
		Count(&n).Error
	return n, err
}
