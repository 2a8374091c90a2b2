package shipments

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pazarnet.com/app/internal/modules/orders"
)

// TrackingService ingests carrier status updates. Every transition is a
// conditional update guarded by the current state; out-of-order or repeated
// updates resolve to no-ops instead of regressions.
type TrackingService struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewTrackingService(db *gorm.DB) *TrackingService {
	return &TrackingService{db: db, logger: slog.Default()}
}

func (s *TrackingService) SetLogger(logger *slog.Logger) { s.logger = logger }

// MarkInTransit moves a shipment LABEL_CREATED → IN_TRANSIT and, on the first
// parcel leaving, the order PAID → SHIPPED.
func (s *TrackingService) MarkInTransit(ctx context.Context, shipmentID string) error {
	shp, err := s.get(ctx, shipmentID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		res := tx.Model(&Shipment{}).
			Where("id = ? AND status = ?", shp.ID, StatusLabelCreated).
			Updates(map[string]any{"status": StatusInTransit, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // zaten yolda veya teslim edilmiş
		}

		if err := s.recordEvent(ctx, tx, shp.ID, StatusInTransit, "Carrier picked up parcel"); err != nil {
			return err
		}

		// İlk parça yola çıktığında order SHIPPED olur.
		res = tx.Model(&orders.Order{}).
			Where("id = ? AND status = ?", shp.OrderID, orders.StatusPaid).
			Updates(map[string]any{"status": orders.StatusShipped, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return s.recordOrderEvent(ctx, tx, shp.OrderID, orders.StatusPaid, orders.StatusShipped)
		}
		return nil
	})
}

// MarkDelivered moves a shipment to DELIVERED and, when it is the last
// undelivered parcel, the order to DELIVERED.
func (s *TrackingService) MarkDelivered(ctx context.Context, shipmentID string) error {
	shp, err := s.get(ctx, shipmentID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		res := tx.Model(&Shipment{}).
			Where("id = ? AND status <> ?", shp.ID, StatusDelivered).
			Updates(map[string]any{
				"status":       StatusDelivered,
				"delivered_at": &now,
				"updated_at":   now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // idempotent: zaten teslim edilmiş
		}

		if err := s.recordEvent(ctx, tx, shp.ID, StatusDelivered, "Parcel delivered"); err != nil {
			return err
		}

		var undelivered int64
		if err := tx.Model(&Shipment{}).
			Where("order_id = ? AND status <> ?", shp.OrderID, StatusDelivered).
			Count(&undelivered).Error; err != nil {
			return err
		}
		if undelivered > 0 {
			return nil
		}

		// Son parça teslim edildi; order DELIVERED'a ilerler. MANUAL modda
		// IN_TRANSIT adımı hiç görülmemiş olabilir, PAID'den de geçilir.
		res = tx.Model(&orders.Order{}).
			Where("id = ? AND status IN ?", shp.OrderID, []string{orders.StatusPaid, orders.StatusShipped}).
			Updates(map[string]any{"status": orders.StatusDelivered, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return s.recordOrderEvent(ctx, tx, shp.OrderID, orders.StatusShipped, orders.StatusDelivered)
		}
		return nil
	})
}

func (s *TrackingService) get(ctx context.Context, shipmentID string) (Shipment, error) {
	var shp Shipment
	if err := s.db.WithContext(ctx).First(&shp, "id = ?", shipmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Shipment{}, ErrNotFound
		}
		return Shipment{}, err
	}
	return shp, nil
}

func (s *TrackingService) recordEvent(ctx context.Context, tx *gorm.DB, shipmentID, status, desc string) error {
	ev := ShipmentEvent{
		ID:          uuid.NewString(),
		ShipmentID:  shipmentID,
		Status:      status,
		Description: desc,
		CreatedAt:   time.Now(),
	}
	return tx.WithContext(ctx).Create(&ev).Error
}

func (s *TrackingService) recordOrderEvent(ctx context.Context, tx *gorm.DB, orderID, from, to string) error {
	ev := orders.OrderEvent{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		Action:     "tracking",
		FromStatus: from,
		ToStatus:   to,
		CreatedAt:  time.Now(),
	}
	return tx.WithContext(ctx).Create(&ev).Error
}
